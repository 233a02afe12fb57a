package models

import (
	"slices"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
)

func (t QuestionType) IsValid() bool {
	return t == SingleChoice || t == MultipleChoice
}

type Answer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionRecord is one parsed question. Only Rank outlives a reload; everything
// else is rebuilt from the source file on every parse.
type QuestionRecord struct {
	ID             string       `json:"id" validate:"required"`
	FileID         string       `json:"file_id" validate:"required,len=8,hexadecimal"`
	SequenceNumber int          `json:"sequence_number" validate:"min=1"`
	Text           string       `json:"text" validate:"required"`
	Source         string       `json:"source"`
	Rank           int          `json:"rank" validate:"rank"`
	Answers        []Answer     `json:"answers" validate:"min=1"`
	QuestionType   QuestionType `json:"question_type" validate:"question_type"`
}

// CorrectAnswers returns the texts of all answers marked correct.
func (q *QuestionRecord) CorrectAnswers() []string {
	var out []string
	for _, a := range q.Answers {
		if a.IsCorrect {
			out = append(out, a.Text)
		}
	}
	return out
}

// CorrectIndexes returns the 0-based positions of all correct answers.
func (q *QuestionRecord) CorrectIndexes() []int {
	var out []int
	for i, a := range q.Answers {
		if a.IsCorrect {
			out = append(out, i)
		}
	}
	return out
}

// IsCorrectSelection reports whether selected names exactly the set of correct
// answers. Order and duplicates in selected are ignored.
func (q *QuestionRecord) IsCorrectSelection(selected []int) bool {
	if len(selected) == 0 {
		return false
	}
	picked := slices.Clone(selected)
	slices.Sort(picked)
	picked = slices.Compact(picked)
	return slices.Equal(picked, q.CorrectIndexes())
}

// QuestionFile is a discoverable question source in the questions directory.
type QuestionFile struct {
	Path           string    `json:"path"`
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	TotalQuestions int       `json:"total_questions"`
	LastUpdated    Timestamp `json:"last_updated"`
	IsSelected     bool      `json:"is_selected"`
}
