package parsers

import (
	"regexp"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

// separatorPattern matches the horizontal rule between blocks, e.g. "| ------- |".
var separatorPattern = regexp.MustCompile(`\|\s*-+\s*\|`)

var (
	instructionPhrases = []string{
		"please choose",
		"there are",
		"correct answers to this question",
	}
	multipleChoicePattern = regexp.MustCompile(`\b[2-5] correct`)
)

const (
	answerPrefix = "| |"
	sourcePrefix = "Source:"
)

// MarkdownParser reads the pipe-delimited markdown dialect: a preamble block, then
// alternating question and answer blocks split by separator lines.
//
//	| ------- |
//	What is the capital of France?
//	| | Please choose one answer |
//	| ------- |
//	| | Paris | True |
//	| | Lyon | False |
//	Source: Geography 101
type MarkdownParser struct {
	validator *validator.Validator
}

func NewMarkdownParser(v *validator.Validator) *MarkdownParser {
	return &MarkdownParser{validator: v}
}

func (p *MarkdownParser) Format() Format { return FormatMarkdown }

// CountQuestions returns separators minus the header separator, floored at 0.
func (p *MarkdownParser) CountQuestions(raw []byte) int {
	return max(0, len(separatorPattern.FindAllIndex(raw, -1))-1)
}

func (p *MarkdownParser) Parse(raw []byte, fileID string, rankings map[string]int) (*Result, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	builder := newRecordBuilder(fileID, rankings, p.validator)

	blocks, lines := splitBlocks(text)
	for i := 1; i < len(blocks); i += 2 {
		if i+1 >= len(blocks) {
			if strings.TrimSpace(blocks[i]) != "" {
				builder.warn(lines[i], "question block has no answer block", firstLine(blocks[i]))
			}
			break
		}

		questionText, questionType := parseQuestionBlock(blocks[i])
		answers, source := parseAnswerBlock(blocks[i+1], lines[i+1], builder)

		if questionText == "" || len(answers) == 0 {
			if strings.TrimSpace(blocks[i]) != "" || strings.TrimSpace(blocks[i+1]) != "" {
				builder.warn(lines[i], "skipped block without question text or answers", questionText)
			}
			continue
		}

		if questionType == models.SingleChoice && countCorrect(answers) > 1 {
			questionType = models.MultipleChoice
		}

		builder.emit(lines[i], questionText, source, questionType, answers)
	}

	return builder.result, nil
}

// splitBlocks splits text on separators and reports the 1-based line each block's
// content starts on.
func splitBlocks(text string) ([]string, []int) {
	matches := separatorPattern.FindAllStringIndex(text, -1)
	blocks := make([]string, 0, len(matches)+1)
	lines := make([]int, 0, len(matches)+1)

	add := func(start, end int) {
		block := text[start:end]
		line := 1 + strings.Count(text[:start], "\n")
		if strings.HasPrefix(block, "\n") {
			block = block[1:]
			line++
		}
		blocks = append(blocks, block)
		lines = append(lines, line)
	}

	start := 0
	for _, m := range matches {
		add(start, m[0])
		start = m[1]
	}
	add(start, len(text))
	return blocks, lines
}

func parseQuestionBlock(block string) (string, models.QuestionType) {
	questionType := models.SingleChoice
	var questionText string

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isInstruction(line) {
			if hasMultipleChoiceSignal(line) {
				questionType = models.MultipleChoice
			}
			continue
		}

		if questionText == "" {
			questionText = line
		}
	}

	return questionText, questionType
}

func parseAnswerBlock(block string, firstLineNo int, builder *recordBuilder) ([]models.Answer, string) {
	var answers []models.Answer
	var source string

	for offset, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, answerPrefix):
			parts := strings.Split(strings.TrimSpace(line[len(answerPrefix):]), "|")
			for j := range parts {
				parts[j] = strings.TrimSpace(parts[j])
			}
			if len(parts) < 2 {
				builder.warn(firstLineNo+offset, "malformed answer line", line)
				continue
			}
			answers = append(answers, models.Answer{
				Text:      parts[0],
				IsCorrect: strings.EqualFold(parts[1], "true"),
			})
		case strings.HasPrefix(line, sourcePrefix):
			source = strings.TrimSpace(strings.TrimPrefix(line, sourcePrefix))
		}
	}

	return answers, source
}

func isInstruction(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range instructionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func hasMultipleChoiceSignal(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "correct answers") || multipleChoicePattern.MatchString(lower)
}

func countCorrect(answers []models.Answer) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

func firstLine(block string) string {
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
