package parsers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

// ExcelParser reads the first sheet of an .xlsx workbook laid out like the CSV
// dialect.
type ExcelParser struct {
	validator *validator.Validator
}

func NewExcelParser(v *validator.Validator) *ExcelParser {
	return &ExcelParser{validator: v}
}

func (p *ExcelParser) Format() Format { return FormatXLSX }

// CountQuestions returns non-empty rows minus the header; unreadable workbooks
// count as 0.
func (p *ExcelParser) CountQuestions(raw []byte) int {
	rows, err := readRows(raw)
	if err != nil {
		return 0
	}
	n := 0
	for _, row := range rows {
		if !isEmptyRow(row) {
			n++
		}
	}
	return max(0, n-1)
}

func (p *ExcelParser) Parse(raw []byte, fileID string, rankings map[string]int) (*Result, error) {
	rows, err := readRows(raw)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Result{}, nil
	}

	header, err := newHeaderIndex(rows[0])
	if err != nil {
		return nil, err
	}

	builder := newRecordBuilder(fileID, rankings, p.validator)
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		parseRow(builder, header, row, i+2)
	}

	return builder.result, nil
}

func readRows(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rows, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
