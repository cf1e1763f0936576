package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into the binary at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// PromptProvider is implemented by PromptManager and by test doubles.
type PromptProvider interface {
	BuildPrompt(mode, difficulty string, data map[string]string) (string, error)
	GetTemplates() map[string]map[string]string
}

type PromptManager struct {
	prompts map[string]map[string]string // mode -> difficulty -> complete prompt
}

// loaded prompt template
type PromptTemplate struct {
	BasePrompt       string            `yaml:"base_prompt"`
	DifficultyLevels map[string]string `yaml:"difficulty_levels"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		prompts: make(map[string]map[string]string),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// builds a prompt for the given mode and difficulty, substituting {{.Key}}
// placeholders from data
func (pm *PromptManager) BuildPrompt(mode, difficulty string, data map[string]string) (string, error) {
	modePrompts, exists := pm.prompts[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}

	promptTemplate, exists := modePrompts[difficulty]
	if !exists {
		return "", fmt.Errorf("difficulty '%s' not found for mode '%s'", difficulty, mode)
	}

	// Simple string replacement instead of template execution
	result := promptTemplate
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}

	return result, nil
}

// GetTemplates exposes the loaded prompt table (used by readiness checks)
func (pm *PromptManager) GetTemplates() map[string]map[string]string {
	return pm.prompts
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		raw, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", entry.Name(), err)
		}

		var tmpl PromptTemplate
		if err := yaml.Unmarshal(raw, &tmpl); err != nil {
			return fmt.Errorf("failed to parse template %s: %w", entry.Name(), err)
		}

		mode := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.prompts[mode] = make(map[string]string)

		if len(tmpl.DifficultyLevels) == 0 {
			return fmt.Errorf("template %s defines no difficulty levels", entry.Name())
		}

		for level, extra := range tmpl.DifficultyLevels {
			prompt := tmpl.BasePrompt
			if strings.TrimSpace(extra) != "" {
				prompt = prompt + "\n" + extra
			}
			pm.prompts[mode][level] = prompt
		}
	}

	if len(pm.prompts) == 0 {
		return fmt.Errorf("no prompt templates found")
	}

	return nil
}
