package parsers

import (
	"testing"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `question,answer1,answer2,answer3,answer4,correct,source
"What is 2+2?",3,4,5,6,2,Math
"Which are prime?",2,3,4,5,"1,2",Numbers
,a,b,,,1,

"Bad correct",a,b,,,x,
"One answer",a,,,,1,
"Out of range",a,b,,,5,
"Third",yes,no,,,1,Logic
`

func TestCSVParser_Parse(t *testing.T) {
	p := NewCSVParser(validator.New())

	result, err := p.Parse([]byte(sampleCSV), "abcd1234", map[string]int{"002": 1})
	require.NoError(t, err)
	require.Len(t, result.Questions, 4)

	single := result.Questions[0]
	assert.Equal(t, "What is 2+2?", single.Text)
	assert.Equal(t, models.SingleChoice, single.QuestionType)
	assert.Len(t, single.Answers, 4)
	assert.Equal(t, []string{"4"}, single.CorrectAnswers())
	assert.Equal(t, "Math", single.Source)
	assert.Equal(t, 2, single.Rank)

	multi := result.Questions[1]
	assert.Equal(t, models.MultipleChoice, multi.QuestionType)
	assert.Equal(t, []models.Answer{
		{Text: "2", IsCorrect: true},
		{Text: "3", IsCorrect: true},
		{Text: "4"},
		{Text: "5"},
	}, multi.Answers)
	assert.Equal(t, "Numbers", multi.Source)
	assert.Equal(t, 1, multi.Rank)

	// A correct index pointing past the answers still yields a record.
	noCorrect := result.Questions[2]
	assert.Equal(t, "abcd1234-003", noCorrect.ID)
	assert.Equal(t, "Out of range", noCorrect.Text)
	assert.Empty(t, noCorrect.CorrectAnswers())

	fourth := result.Questions[3]
	assert.Equal(t, "abcd1234-004", fourth.ID)
	assert.Equal(t, 4, fourth.SequenceNumber)
	assert.Equal(t, []models.Answer{{Text: "yes", IsCorrect: true}, {Text: "no"}}, fourth.Answers)

	require.Len(t, result.Warnings, 3)
	assert.Equal(t, 6, result.Warnings[0].Location)
	assert.Equal(t, "x", result.Warnings[0].Value)
	assert.Equal(t, "fewer than 2 answers", result.Warnings[1].Message)
	assert.Equal(t, 8, result.Warnings[2].Location)
	assert.Contains(t, result.Warnings[2].Message, "at least one answer must be correct")
}

func TestCSVParser_HeaderHandling(t *testing.T) {
	p := NewCSVParser(validator.New())

	t.Run("missing question column", func(t *testing.T) {
		_, err := p.Parse([]byte("prompt,answer1,answer2,correct\nx,a,b,1\n"), "abcd1234", nil)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("empty file", func(t *testing.T) {
		result, err := p.Parse(nil, "abcd1234", nil)
		require.NoError(t, err)
		assert.Empty(t, result.Questions)
	})

	t.Run("reordered mixed-case columns", func(t *testing.T) {
		src := "Source, Correct ,Answer2,Answer1,Question\nGeo,1,Lyon,Paris,Capital of France?\n"
		result, err := p.Parse([]byte(src), "abcd1234", nil)
		require.NoError(t, err)
		require.Len(t, result.Questions, 1)
		assert.Equal(t, []string{"Paris"}, result.Questions[0].CorrectAnswers())
		assert.Equal(t, "Geo", result.Questions[0].Source)
	})
}

func TestCSVParser_CountQuestions(t *testing.T) {
	p := NewCSVParser(validator.New())

	assert.Equal(t, 7, p.CountQuestions([]byte(sampleCSV)))
	assert.Equal(t, 0, p.CountQuestions([]byte("question,answer1\n")))
	assert.Equal(t, 0, p.CountQuestions(nil))
}
