// Package excel imports recipient enrollments in bulk from Excel or CSV
// files.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/coachmail/internal/database"
	"github.com/example/coachmail/pkg/models"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	EmailColumn    string // Column with the recipient email
	TimezoneColumn string // Column with the IANA timezone identifier
	GoalsColumn    string // Column with the stated goals text
	SheetName      string // Name of the sheet to import
	SkipHeader     bool   // Skip the header row
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		EmailColumn:    "A",
		TimezoneColumn: "B",
		GoalsColumn:    "C",
		SheetName:      "Sheet1",
		SkipHeader:     true,
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// ImportRecipients imports recipient enrollments from an Excel or CSV file
func ImportRecipients(ctx context.Context, store *database.Store, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	if ext == ".csv" {
		return importFromCSV(ctx, store, config)
	}

	return importFromExcel(ctx, store, config)
}

// importFromExcel processes an xlsx workbook
func importFromExcel(ctx context.Context, store *database.Store, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %v", config.SheetName, err)
	}

	emailCol, tzCol, goalsCol, err := columnIndexes(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range rows {
		if i+1 < config.StartRow {
			continue
		}
		enrollRow(ctx, store, result, i+1, cell(row, emailCol), cell(row, tzCol), cell(row, goalsCol))
	}

	return result, nil
}

// importFromCSV processes a CSV file using the same column configuration
func importFromCSV(ctx context.Context, store *database.Store, config ImportConfig) (*ImportResult, error) {
	f, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %v", err)
	}
	defer f.Close()

	emailCol, tzCol, goalsCol, err := columnIndexes(config)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	result := &ImportResult{}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %v", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		enrollRow(ctx, store, result, rowNum, cell(row, emailCol), cell(row, tzCol), cell(row, goalsCol))
	}

	return result, nil
}

// enrollRow creates or refreshes one enrollment
func enrollRow(ctx context.Context, store *database.Store, result *ImportResult, rowNum int, email, timezone, goals string) {
	result.TotalProcessed++

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: invalid email %q", rowNum, email))
		return
	}

	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		timezone = "UTC"
	} else if _, err := time.LoadLocation(timezone); err != nil {
		log.Printf("Unknown timezone %q for %s, enrolling with UTC", timezone, email)
		timezone = "UTC"
	}

	existing, err := store.FindRecipientByEmail(ctx, email)
	if err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", email, err))
		return
	}

	if existing == nil {
		recipient := &models.Recipient{
			ID:        uuid.NewString(),
			Email:     email,
			Timezone:  timezone,
			GoalsText: strings.TrimSpace(goals),
			Active:    true,
		}
		if err := store.CreateRecipient(ctx, recipient); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", email, err))
			return
		}
		result.Created++
		return
	}

	existing.Timezone = timezone
	existing.GoalsText = strings.TrimSpace(goals)
	existing.Active = true
	if err := store.UpdateEnrollment(ctx, existing); err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", email, err))
		return
	}
	result.Updated++
}

// columnIndexes converts the configured column letters to zero-based indexes
func columnIndexes(config ImportConfig) (email, tz, goals int, err error) {
	email, err = columnIndex(config.EmailColumn)
	if err != nil {
		return 0, 0, 0, err
	}
	tz, err = columnIndex(config.TimezoneColumn)
	if err != nil {
		return 0, 0, 0, err
	}
	goals, err = columnIndex(config.GoalsColumn)
	if err != nil {
		return 0, 0, 0, err
	}
	return email, tz, goals, nil
}

func columnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %v", name, err)
	}
	return n - 1, nil
}

// cell returns the trimmed cell value or empty when the row is short
func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
