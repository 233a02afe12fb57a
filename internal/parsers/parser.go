// Package parsers turns question files into QuestionRecords. Every dialect offers a
// cheap structural count, used to size fresh metadata, and a full parse that
// validates each record and skips bad ones with a warning.
package parsers

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/identity"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/ranking"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported question file format")
	ErrMissingColumn     = errors.New("missing required column")
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
)

type Parser interface {
	Format() Format
	// CountQuestions is a fast structural estimate, not the number Parse emits.
	CountQuestions(raw []byte) int
	// Parse builds records numbered 1..n in emission order. Ranks come from
	// rankings keyed by "%03d" sequence; missing keys get the default rank.
	Parse(raw []byte, fileID string, rankings map[string]int) (*Result, error)
}

type Result struct {
	Questions []*models.QuestionRecord
	Warnings  []models.ParseWarning
}

// Registry maps file extensions to parsers.
type Registry struct {
	parsers map[string]Parser
}

func NewRegistry(v *validator.Validator) *Registry {
	if v == nil {
		v = validator.New()
	}
	return &Registry{
		parsers: map[string]Parser{
			".md":   NewMarkdownParser(v),
			".csv":  NewCSVParser(v),
			".xlsx": NewExcelParser(v),
		},
	}
}

func (r *Registry) ForPath(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if p, ok := r.parsers[ext]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

func (r *Registry) Supports(path string) bool {
	_, err := r.ForPath(path)
	return err == nil
}

// Extensions lists the supported extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// recordBuilder numbers, ranks and validates records for one parse.
type recordBuilder struct {
	fileID    string
	rankings  map[string]int
	validator *validator.Validator
	seq       int
	result    *Result
}

func newRecordBuilder(fileID string, rankings map[string]int, v *validator.Validator) *recordBuilder {
	return &recordBuilder{
		fileID:    fileID,
		rankings:  rankings,
		validator: v,
		result:    &Result{},
	}
}

// emit appends a record and returns true, or records a warning and returns false.
// The sequence number only advances on success. Answer-level problems, such as
// no answer marked correct, are reported but keep the record so later sequence
// numbers still line up with their rankings keys.
func (b *recordBuilder) emit(location int, text, source string, questionType models.QuestionType, answers []models.Answer) bool {
	seq := b.seq + 1
	rank := ranking.DefaultRank
	if r, ok := b.rankings[identity.SequenceKey(seq)]; ok {
		rank = ranking.Clamp(r)
	}

	record := &models.QuestionRecord{
		ID:             identity.QuestionID(b.fileID, seq),
		FileID:         b.fileID,
		SequenceNumber: seq,
		Text:           text,
		Source:         source,
		Rank:           rank,
		Answers:        answers,
		QuestionType:   questionType,
	}

	if err := b.validator.Question().ValidateRecord(record); err != nil {
		b.warn(location, err.Error(), text)
		return false
	}
	if err := b.validator.Question().ValidateAnswers(record.QuestionType, record.Answers); err != nil {
		b.warn(location, err.Error(), text)
	}

	b.seq = seq
	b.result.Questions = append(b.result.Questions, record)
	return true
}

func (b *recordBuilder) warn(location int, message, value string) {
	b.result.Warnings = append(b.result.Warnings, models.ParseWarning{
		FileID:   b.fileID,
		Location: location,
		Message:  message,
		Value:    value,
	})
}
