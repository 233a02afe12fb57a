package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

// CSVParser reads files with the header
// question,answer1,answer2,answer3,answer4,correct,source.
type CSVParser struct {
	validator *validator.Validator
}

func NewCSVParser(v *validator.Validator) *CSVParser {
	return &CSVParser{validator: v}
}

func (p *CSVParser) Format() Format { return FormatCSV }

// CountQuestions returns non-blank lines minus the header, floored at 0.
func (p *CSVParser) CountQuestions(raw []byte) int {
	n := 0
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return max(0, n-1)
}

func (p *CSVParser) Parse(raw []byte, fileID string, rankings map[string]int) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return &Result{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	header, err := newHeaderIndex(headers)
	if err != nil {
		return nil, err
	}

	builder := newRecordBuilder(fileID, rankings, p.validator)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				builder.warn(parseErr.StartLine, parseErr.Err.Error(), "")
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rowNum, _ := reader.FieldPos(0)
		parseRow(builder, header, record, rowNum)
	}

	return builder.result, nil
}
