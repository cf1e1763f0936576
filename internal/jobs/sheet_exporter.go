package jobs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xuri/excelize/v2"

	"voicehire/backend/internal/models"
	"voicehire/backend/internal/storage"
)

// SheetExporterJob periodically exports completed interviews to a spreadsheet
// workbook, standing in for the original Google Sheets upload.
type SheetExporterJob struct {
	store  *storage.Store
	config *ExporterConfig
	cron   *cron.Cron
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule  string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir string // Directory to store exported workbooks
	SheetName string // Worksheet name inside each workbook
	Enabled   bool   // Whether to run exports
}

func NewSheetExporterJob(store *storage.Store, config *ExporterConfig) *SheetExporterJob {
	return &SheetExporterJob{
		store:  store,
		config: config,
		cron:   cron.New(),
	}
}

// Start begins the scheduled export job
func (sej *SheetExporterJob) Start() error {
	if !sej.config.Enabled {
		log.Println("Interview export is disabled, skipping scheduler")
		return nil
	}

	log.Printf("Starting interview exporter with schedule: %s", sej.config.Schedule)

	_, err := sej.cron.AddFunc(sej.config.Schedule, func() {
		if err := sej.RunExport(); err != nil {
			log.Printf("Export job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	sej.cron.Start()
	return nil
}

// Stop stops the scheduled export job
func (sej *SheetExporterJob) Stop() {
	if sej.cron != nil {
		sej.cron.Stop()
		log.Println("Interview exporter stopped")
	}
}

// RunExport performs a single export run: every unexported interview record
// becomes one worksheet row, then the records are marked exported.
func (sej *SheetExporterJob) RunExport() error {
	records, err := sej.store.GetUnexported(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to get unexported interviews: %w", err)
	}

	if len(records) == 0 {
		log.Println("No unexported interviews found")
		return nil
	}

	log.Printf("Exporting %d interview records", len(records))

	if err := os.MkdirAll(sej.config.ExportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := filepath.Join(sej.config.ExportDir,
		fmt.Sprintf("interviews_%s.xlsx", time.Now().Format("20060102_150405")))

	if err := writeWorkbook(filename, sej.config.SheetName, records); err != nil {
		return err
	}

	recordIDs := make([]uint, len(records))
	for i, record := range records {
		recordIDs[i] = record.ID
	}
	if err := sej.store.MarkExported(recordIDs); err != nil {
		return err
	}

	log.Printf("Exported %d interviews to %s", len(records), filename)
	return nil
}

var exportHeaders = []string{
	"Session ID",
	"Candidate",
	"Difficulty",
	"Experience (years)",
	"Questions",
	"Average Score",
	"Recommendation",
	"Started At",
	"Ended At",
}

func writeWorkbook(filename, sheetName string, records []models.InterviewRecord) error {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, record := range records {
		values := []interface{}{
			record.SessionID,
			record.CandidateName,
			record.Difficulty,
			record.ExperienceYears,
			record.TotalQuestions,
			record.AverageScore,
			record.HireRecommendation,
			record.StartedAt.Format(time.RFC3339),
			record.EndedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
