package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Storage modes for the persistence sink.
const (
	StorageModeDB  = "db"
	StorageModeOff = "off"
)

// app config: evaluator provider, interview policy, and persistence knobs
type Config struct {
	Provider string

	// interview policy
	TotalQuestions   int
	EvaluatorTimeout time.Duration

	// hire recommendation bands, inclusive lower bounds on the average score
	StrongYesThreshold float64
	YesThreshold       float64
	MaybeThreshold     float64

	// completed sessions stay fetchable for this long before eviction
	SessionRetention time.Duration

	StorageMode string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:           getEnvOrDefault("AI_PROVIDER", "gemini"),
		TotalQuestions:     getEnvInt("INTERVIEW_TOTAL_QUESTIONS", 5),
		EvaluatorTimeout:   getEnvDuration("EVALUATOR_TIMEOUT", 30*time.Second),
		StrongYesThreshold: getEnvFloat("HIRE_STRONG_YES_THRESHOLD", 7.0),
		YesThreshold:       getEnvFloat("HIRE_YES_THRESHOLD", 6.0),
		MaybeThreshold:     getEnvFloat("HIRE_MAYBE_THRESHOLD", 5.0),
		SessionRetention:   getEnvDuration("SESSION_RETENTION", 15*time.Minute),
		StorageMode:        getEnvOrDefault("STORAGE_MODE", StorageModeDB),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	if config.TotalQuestions < 1 {
		return fmt.Errorf("INTERVIEW_TOTAL_QUESTIONS must be at least 1, got %d", config.TotalQuestions)
	}
	if config.EvaluatorTimeout <= 0 {
		return errors.New("EVALUATOR_TIMEOUT must be positive")
	}
	if config.SessionRetention <= 0 {
		return errors.New("SESSION_RETENTION must be positive")
	}
	if !(config.StrongYesThreshold >= config.YesThreshold && config.YesThreshold >= config.MaybeThreshold) {
		return errors.New("hire recommendation thresholds must be non-increasing: strong yes >= yes >= maybe")
	}
	if config.StorageMode != StorageModeDB && config.StorageMode != StorageModeOff {
		return errors.New("STORAGE_MODE must be 'db' or 'off', got " + config.StorageMode)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
