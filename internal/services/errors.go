package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/flashcard-service/internal/errors"
	"github.com/SAP-F-2025/flashcard-service/internal/parsers"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrInvalidRank       = errors.New("invalid rank")
	ErrNoQuestionsLoaded = errors.New("no questions loaded")
	ErrInvalidSelection  = errors.New("invalid answer selection")
	ErrValidationFailed  = errors.New("validation failed")
	ErrInvalidQuestionID = errors.New("invalid question id")
	ErrUnsupportedExport = errors.New("unsupported export format")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// FileError ties a failure to the question file it happened in
type FileError struct {
	FileName string
	Op       string
	Err      error
}

func (fe *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", fe.Op, fe.FileName, fe.Err)
}

func (fe *FileError) Unwrap() error {
	return fe.Err
}

// ===== ERROR HELPERS =====

func newFileError(op, fileName string, err error) *FileError {
	return &FileError{FileName: fileName, Op: op, Err: err}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrNoQuestionsLoaded)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidRank) ||
		errors.Is(err, ErrInvalidSelection) ||
		errors.Is(err, ErrInvalidQuestionID) ||
		errors.Is(err, ErrUnsupportedExport) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsCorruptFile checks if a file or its sidecar could not be understood
func IsCorruptFile(err error) bool {
	return errors.Is(err, repositories.ErrCorruptMetadata) ||
		errors.Is(err, parsers.ErrMissingColumn) ||
		errors.Is(err, parsers.ErrUnsupportedFormat)
}
