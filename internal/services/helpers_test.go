package services

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

const bioMarkdown = `# Biology
| ------- |
What is the powerhouse of the cell?
| ------- |
| | Mitochondria | True |
| | Nucleus | False |
Source: Bio 101
| ------- |
Which are mammals?
| | There are 2 correct answers to this question |
| ------- |
| | Whale | True |
| | Bat | True |
| | Shark | False |
Source: Zoology
`

const mathCSV = `question,answer1,answer2,answer3,answer4,correct,source
"What is 2+2?",3,4,5,6,2,Math
"Which are prime?",2,3,4,5,"1,2",Numbers
`

type testBank struct {
	dir       string
	service   *QuestionBankService
	publisher *events.MockEventPublisher
	repo      repositories.MetadataRepository
	now       time.Time
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBank writes files into a temp dir and builds a service over it with a
// seeded rng and a clock that ticks one second per call.
func newTestBank(t *testing.T, files map[string]string) *testBank {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeFile(t, dir, name, content)
	}

	tb := &testBank{
		dir:       dir,
		publisher: events.NewMockEventPublisher(discardLogger()),
		repo:      repositories.NewMetadataRepository(),
		now:       time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time {
		tb.now = tb.now.Add(time.Second)
		return tb.now
	}
	tb.service = NewQuestionBankService(dir, tb.repo, tb.publisher, discardLogger(), validator.New(),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithClock(clock),
	)
	return tb
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func intPtr(v int) *int {
	return &v
}
