package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// practice asks up to count weighted random questions from the chosen files,
// moving each question's rank by the answer given.
func (a *app) practice(ctx context.Context, files []string, count int) error {
	if count <= 0 {
		pterm.Warning.Println("Number of questions must be positive.")
		return nil
	}

	if len(files) == 0 {
		var err error
		files, err = a.promptFiles()
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		pterm.Warning.Println("No files selected.")
		return nil
	}

	if err := a.bank.SelectFiles(ctx, files); err != nil {
		return err
	}
	loaded := a.bank.GetAllLoadedQuestions()
	if len(loaded) == 0 {
		pterm.Warning.Println("No questions available in this selection.")
		return nil
	}

	pterm.DefaultHeader.Printf("PRACTICE: %d questions from %s", count, strings.Join(files, ", "))

	correctCount := 0
	asked := 0
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			break
		}
		q, ok := a.bank.GetWeightedRandomQuestion()
		if !ok {
			break
		}

		pterm.DefaultSection.Printf("Question %d/%d (rank %d)", i+1, count, q.Rank)
		pterm.FgLightBlue.Println(q.Text)
		if q.Source != "" {
			pterm.FgGray.Println("Source:", q.Source)
		}

		selected, err := askAnswers(q)
		if err != nil {
			return err
		}
		asked++

		result, err := a.bank.SubmitAnswer(ctx, q.ID, selected)
		if err != nil {
			return err
		}
		if result.Correct {
			correctCount++
			pterm.Success.Printf("Correct! Rank %d -> %d\n", result.OldRank, result.NewRank)
			continue
		}
		pterm.Error.Print("Incorrect. ")
		pterm.FgRed.Printf("The correct answer(s): %s (rank %d -> %d)\n",
			strings.Join(result.CorrectAnswers, ", "), result.OldRank, result.NewRank)
	}

	if asked == 0 {
		return nil
	}
	score := float64(correctCount) / float64(asked) * 100
	pterm.Info.Printf("Practice complete! You got %d/%d correct (%.1f%%).\n", correctCount, asked, score)
	return nil
}

func (a *app) promptFiles() ([]string, error) {
	var options []string
	for _, f := range a.bank.GetAllAvailableFiles() {
		options = append(options, f.Name)
	}
	if len(options) == 0 {
		pterm.Warning.Printf("No question files found in '%s'.\n", a.cfg.QuestionsDir)
		return nil, nil
	}

	return pterm.DefaultInteractiveMultiselect.
		WithOptions(options).
		WithDefaultText("Select question files").
		Show()
}

// askAnswers shows the answer options and returns the 0-based indexes picked.
func askAnswers(q *models.QuestionRecord) ([]int, error) {
	options := make([]string, len(q.Answers))
	index := make(map[string]int, len(q.Answers))
	for i, answer := range q.Answers {
		options[i] = fmt.Sprintf("%d. %s", i+1, answer.Text)
		index[options[i]] = i
	}

	if q.QuestionType == models.MultipleChoice {
		picked, err := pterm.DefaultInteractiveMultiselect.
			WithOptions(options).
			WithDefaultText(fmt.Sprintf("Select all %d correct answers", len(q.CorrectIndexes()))).
			Show()
		if err != nil {
			return nil, err
		}
		selected := make([]int, 0, len(picked))
		for _, p := range picked {
			selected = append(selected, index[p])
		}
		if len(selected) == 0 {
			// an empty pick counts as a wrong answer
			selected = append(selected, wrongIndex(q))
		}
		return selected, nil
	}

	picked, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultText("Select your answer").
		Show()
	if err != nil {
		return nil, err
	}
	return []int{index[picked]}, nil
}

// wrongIndex returns an incorrect answer index, or 0 when every answer is correct.
func wrongIndex(q *models.QuestionRecord) int {
	for i, a := range q.Answers {
		if !a.IsCorrect {
			return i
		}
	}
	return 0
}
