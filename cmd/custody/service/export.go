package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/common/logger"
)

// exportHeader lists the stable, self-describing ledger columns
var exportHeader = []string{"Serial", "Holder Code", "Holder Name", "Action", "Recorded By", "Timestamp"}

// ExportService flattens the custody ledger to tabular formats for the
// reporting collaborator.
type ExportService struct {
	ledger LedgerStore
	log    *logger.Logger
}

// NewExportService creates a new export service
func NewExportService(ledger LedgerStore, log *logger.Logger) *ExportService {
	return &ExportService{
		ledger: ledger,
		log:    log,
	}
}

func eventRow(event *models.CustodyEvent) []string {
	return []string{
		event.Serial,
		event.HolderCode,
		event.HolderName,
		string(event.Action),
		event.RecordedBy,
		event.OccurredAt.Format(time.RFC3339),
	}
}

// WriteCSV streams the full ledger as CSV
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) error {
	events, err := s.ledger.ListAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, event := range events {
		if err := cw.Write(eventRow(event)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.log.Info("custody ledger exported", "format", "csv", "events", len(events))

	return nil
}

// BuildXLSX renders the full ledger as an XLSX workbook
func (s *ExportService) BuildXLSX(ctx context.Context) ([]byte, error) {
	events, err := s.ledger.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Custody Ledger"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}
	}

	for rowIdx, event := range events {
		for col, value := range eventRow(event) {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.log.Info("custody ledger exported", "format", "xlsx", "events", len(events))

	return buf.Bytes(), nil
}
