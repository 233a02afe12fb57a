package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

var progressHeaders = []string{
	"File", "Question ID", "Rank", "Question Type", "Source", "Question",
}

const progressSheet = "Progress"

// ExportService writes progress reports of the loaded questions.
type ExportService struct {
	bank   *QuestionBankService
	logger *slog.Logger
}

func NewExportService(bank *QuestionBankService, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{bank: bank, logger: logger}
}

// Export dispatches on req.Format, defaulting to CSV.
func (s *ExportService) Export(ctx context.Context, req models.ExportRequest) ([]byte, error) {
	switch req.Format {
	case models.ExportCSV, "":
		return s.ExportProgressCSV(ctx, req.FileIDs)
	case models.ExportXLSX:
		return s.ExportProgressExcel(ctx, req.FileIDs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExport, req.Format)
	}
}

// ProgressRows lists the loaded questions of fileIDs, or of every loaded file
// when fileIDs is empty.
func (s *ExportService) ProgressRows(fileIDs []string) []models.ProgressRow {
	names := make(map[string]string)
	for _, file := range s.bank.GetAllAvailableFiles() {
		names[file.ID] = file.Name
	}

	questions := s.bank.QueryQuestions(QuestionFilter{FileIDs: fileIDs})
	rows := make([]models.ProgressRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, models.ProgressRow{
			FileName:     names[q.FileID],
			QuestionID:   q.ID,
			Rank:         q.Rank,
			QuestionType: string(q.QuestionType),
			Source:       q.Source,
			Question:     q.Text,
		})
	}
	return rows
}

func (s *ExportService) ExportProgressCSV(ctx context.Context, fileIDs []string) ([]byte, error) {
	rows := s.ProgressRows(fileIDs)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(progressHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(progressRecord(row)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported progress", "format", models.ExportCSV, "rows", len(rows))
	return buf.Bytes(), nil
}

func (s *ExportService) ExportProgressExcel(ctx context.Context, fileIDs []string) ([]byte, error) {
	rows := s.ProgressRows(fileIDs)

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(progressSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	header := make([]interface{}, len(progressHeaders))
	for i, h := range progressHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(progressSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write Excel header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			row.FileName, row.QuestionID, row.Rank, row.QuestionType, row.Source, row.Question,
		}
		if err := f.SetSheetRow(progressSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "Exported progress", "format", models.ExportXLSX, "rows", len(rows))
	return buf.Bytes(), nil
}

func progressRecord(row models.ProgressRow) []string {
	return []string{
		row.FileName,
		row.QuestionID,
		strconv.Itoa(row.Rank),
		row.QuestionType,
		row.Source,
		row.Question,
	}
}
