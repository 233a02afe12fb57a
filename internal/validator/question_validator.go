package validator

import (
	"fmt"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct {
	parent *Validator
}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator(parent *Validator) *QuestionValidator {
	return &QuestionValidator{parent: parent}
}

// ValidateRecord checks the struct tags of a parsed record: text, rank, type
// and at least one answer.
func (v *QuestionValidator) ValidateRecord(q *models.QuestionRecord) error {
	if q == nil {
		return fmt.Errorf("question cannot be nil")
	}
	return v.parent.Validate(q)
}

// ValidateAnswers enforces at least one correct answer, and exactly one for
// single choice questions.
func (v *QuestionValidator) ValidateAnswers(questionType models.QuestionType, answers []models.Answer) error {
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}

	if correct == 0 {
		return NewValidationError("answers", "at least one answer must be correct", len(answers))
	}
	if questionType == models.SingleChoice && correct != 1 {
		return NewValidationError("answers", "single choice questions need exactly one correct answer", correct)
	}
	return nil
}
