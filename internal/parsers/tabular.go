package parsers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// Columns of the tabular (CSV and XLSX) dialects.
const (
	columnQuestion = "question"
	columnCorrect  = "correct"
	columnSource   = "source"
)

var answerColumns = []string{"answer1", "answer2", "answer3", "answer4"}

// headerIndex maps lower-cased, trimmed header names to column positions.
type headerIndex map[string]int

func newHeaderIndex(headers []string) (headerIndex, error) {
	index := make(headerIndex, len(headers))
	for i, header := range headers {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}
	if _, ok := index[columnQuestion]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, columnQuestion)
	}
	return index, nil
}

func (h headerIndex) get(record []string, name string) string {
	if i, ok := h[name]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

// parseRow turns one data row into a record, or a warning. Blank question rows
// are dropped silently.
func parseRow(builder *recordBuilder, header headerIndex, record []string, rowNum int) {
	text := header.get(record, columnQuestion)
	if text == "" {
		return
	}

	correctStr := header.get(record, columnCorrect)
	if correctStr == "" {
		builder.warn(rowNum, "no correct answer specified", text)
		return
	}

	correct, err := parseCorrect(correctStr)
	if err != nil {
		builder.warn(rowNum, err.Error(), correctStr)
		return
	}

	questionType := models.SingleChoice
	if strings.Contains(correctStr, ",") {
		questionType = models.MultipleChoice
	}

	var answers []models.Answer
	for i, column := range answerColumns {
		answerText := header.get(record, column)
		if answerText == "" {
			continue
		}
		answers = append(answers, models.Answer{
			Text:      answerText,
			IsCorrect: correct[i+1],
		})
	}

	if len(answers) < 2 {
		builder.warn(rowNum, "fewer than 2 answers", text)
		return
	}

	builder.emit(rowNum, text, header.get(record, columnSource), questionType, answers)
}

// parseCorrect reads "2" or "1,3" into a set of 1-based answer columns.
func parseCorrect(value string) (map[int]bool, error) {
	set := make(map[int]bool)
	for _, token := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, fmt.Errorf("invalid correct value %q", token)
		}
		set[n] = true
	}
	return set, nil
}
