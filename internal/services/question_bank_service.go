package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/identity"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/parsers"
	"github.com/SAP-F-2025/flashcard-service/internal/ranking"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

// QuestionFilter narrows QueryQuestions. Nil bounds and empty lists match
// everything; set filters are combined with AND.
type QuestionFilter struct {
	MinRank *int     `json:"min_rank,omitempty"`
	MaxRank *int     `json:"max_rank,omitempty"`
	FileIDs []string `json:"file_ids,omitempty"`
	Sources []string `json:"sources,omitempty"`
}

// AnswerResult reports how a submitted answer was graded and the rank change it caused.
type AnswerResult struct {
	QuestionID     string   `json:"question_id"`
	Correct        bool     `json:"correct"`
	OldRank        int      `json:"old_rank"`
	NewRank        int      `json:"new_rank"`
	CorrectIndexes []int    `json:"correct_indexes"`
	CorrectAnswers []string `json:"correct_answers"`
}

type Option func(*QuestionBankService)

// WithRand sets the source used by GetWeightedRandomQuestion.
func WithRand(rng *rand.Rand) Option {
	return func(s *QuestionBankService) {
		s.rng = rng
	}
}

// WithClock sets the clock used to stamp metadata.
func WithClock(clock func() time.Time) Option {
	return func(s *QuestionBankService) {
		s.clock = clock
	}
}

// QuestionBankService tracks the question files of one directory, the
// questions of the selected files, and keeps every rank change on disk.
// It is safe for concurrent use.
type QuestionBankService struct {
	mu sync.Mutex

	dir      string
	store    *MetadataStore
	parsers  *parsers.Registry
	notifier ProgressEventService
	logger   *ServiceLogger
	rng      *rand.Rand
	clock    func() time.Time

	available map[string]*models.QuestionFile
	loaded    map[string][]*models.QuestionRecord
	// loadOrder holds loaded file ids in selection order.
	loadOrder []string
}

func NewQuestionBankService(
	dir string,
	repo repositories.MetadataRepository,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
	opts ...Option,
) *QuestionBankService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &QuestionBankService{
		dir:       dir,
		parsers:   parsers.NewRegistry(v),
		notifier:  NewProgressEventService(eventPublisher, logger),
		logger:    NewServiceLogger(logger, LogConfig{Service: "flashcard-service", Component: "question_bank"}),
		clock:     time.Now,
		available: make(map[string]*models.QuestionFile),
		loaded:    make(map[string][]*models.QuestionRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		now := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(now, now>>1))
	}
	s.store = NewMetadataStore(repo, s.parsers, s.clock)
	return s
}

// Dir returns the directory the last scan read.
func (s *QuestionBankService) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// ===== SCANNING =====

func (s *QuestionBankService) Scan(ctx context.Context) ([]models.QuestionFile, error) {
	return s.ScanDir(ctx, s.Dir())
}

// ScanDir discovers the supported question files in dir and reconciles the
// available set with it. Files no longer present are dropped together with
// their loaded questions; files seen before keep their selection.
func (s *QuestionBankService) ScanDir(ctx context.Context, dir string) ([]models.QuestionFile, error) {
	op := s.logger.WithOperation(ctx, "scan")

	entries, err := os.ReadDir(dir)
	if err != nil {
		err = fmt.Errorf("failed to read questions directory: %w", err)
		op.LogResult("", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := make(map[string]*models.QuestionFile)
	sidecars := make(map[string]string)
	var files []models.QuestionFile

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !s.parsers.Supports(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		sidecar := s.store.repo.PathFor(path)
		if owner, taken := sidecars[sidecar]; taken {
			s.logger.Logger().WarnContext(ctx, "Question files share a metadata file, skipping",
				"file", entry.Name(),
				"shared_with", owner,
				"metadata", sidecar)
			continue
		}

		metadata, err := s.store.LoadOrCreate(path)
		if err != nil {
			s.logger.LogFileSkipped(ctx, "scan", path, err)
			continue
		}
		sidecars[sidecar] = entry.Name()

		file := &models.QuestionFile{
			Path:           path,
			ID:             identity.FileID(entry.Name()),
			Name:           entry.Name(),
			TotalQuestions: metadata.TotalQuestions,
			LastUpdated:    metadata.LastUpdated,
		}
		if prev, ok := s.available[file.ID]; ok && prev.Path == path {
			file.IsSelected = prev.IsSelected
		}
		found[file.ID] = file
		files = append(files, *file)
	}

	for id := range s.loaded {
		if file, ok := found[id]; !ok || !file.IsSelected {
			s.unloadLocked(id)
		}
	}
	s.available = found
	s.dir = dir

	op.LogResult("", nil)
	return files, nil
}

// ===== SELECTION =====

// SelectFiles replaces the active question pool with the questions of the named
// files, loaded in the order given. Unknown names are ignored. A file that
// fails to parse is logged and stays unselected.
func (s *QuestionBankService) SelectFiles(ctx context.Context, names []string) error {
	op := s.logger.WithOperation(ctx, "select_files")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range s.available {
		file.IsSelected = false
	}
	clear(s.loaded)
	s.loadOrder = nil

	questionCount := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			op.LogResult("", err)
			return err
		}
		file := s.fileByNameLocked(name)
		if file == nil || file.IsSelected {
			continue
		}

		questions, err := s.loadFileLocked(ctx, file)
		if err != nil {
			s.logger.LogFileSkipped(ctx, "select_files", file.Path, err)
			continue
		}
		file.IsSelected = true
		s.loaded[file.ID] = questions
		s.loadOrder = append(s.loadOrder, file.ID)
		questionCount += len(questions)
	}

	_ = s.notifier.NotifyFilesSelected(ctx, slices.Clone(s.loadOrder), questionCount)
	op.LogResult("", nil)
	return nil
}

// DeselectFiles unselects the named files and drops their questions.
func (s *QuestionBankService) DeselectFiles(ctx context.Context, names []string) {
	op := s.logger.WithOperation(ctx, "deselect_files")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		if file := s.fileByNameLocked(name); file != nil {
			file.IsSelected = false
			s.unloadLocked(file.ID)
		}
	}
	op.LogResult("", nil)
}

func (s *QuestionBankService) loadFileLocked(ctx context.Context, file *models.QuestionFile) ([]*models.QuestionRecord, error) {
	parser, err := s.parsers.ForPath(file.Path)
	if err != nil {
		return nil, err
	}
	metadata, err := s.store.LoadOrCreate(file.Path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file: %w", err)
	}

	result, err := parser.Parse(raw, file.ID, metadata.Rankings)
	if err != nil {
		return nil, err
	}
	s.logger.LogParseWarnings(ctx, file.Name, result.Warnings)

	file.TotalQuestions = metadata.TotalQuestions
	file.LastUpdated = metadata.LastUpdated
	return result.Questions, nil
}

func (s *QuestionBankService) unloadLocked(fileID string) {
	delete(s.loaded, fileID)
	s.loadOrder = slices.DeleteFunc(s.loadOrder, func(id string) bool { return id == fileID })
}

func (s *QuestionBankService) fileByNameLocked(name string) *models.QuestionFile {
	for _, file := range s.available {
		if file.Name == name {
			return file
		}
	}
	return nil
}

// ===== QUERIES =====

// GetAllAvailableFiles returns the scanned files sorted by name.
func (s *QuestionBankService) GetAllAvailableFiles() []models.QuestionFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]models.QuestionFile, 0, len(s.available))
	for _, file := range s.available {
		files = append(files, *file)
	}
	slices.SortFunc(files, func(a, b models.QuestionFile) int {
		return strings.Compare(a.Name, b.Name)
	})
	return files
}

// GetFile resolves a file by id or by name.
func (s *QuestionBankService) GetFile(idOrName string) (*models.QuestionFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.resolveFileLocked(idOrName)
	if err != nil {
		return nil, err
	}
	out := *file
	return &out, nil
}

// GetAllLoadedQuestions returns copies of the loaded questions in selection
// order, then parse order within a file.
func (s *QuestionBankService) GetAllLoadedQuestions() []models.QuestionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(QuestionFilter{})
}

func (s *QuestionBankService) QueryQuestions(filter QuestionFilter) []models.QuestionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(filter)
}

func (s *QuestionBankService) queryLocked(filter QuestionFilter) []models.QuestionRecord {
	out := make([]models.QuestionRecord, 0)
	for _, fileID := range s.loadOrder {
		if len(filter.FileIDs) > 0 && !slices.Contains(filter.FileIDs, fileID) {
			continue
		}
		for _, q := range s.loaded[fileID] {
			if filter.MinRank != nil && q.Rank < *filter.MinRank {
				continue
			}
			if filter.MaxRank != nil && q.Rank > *filter.MaxRank {
				continue
			}
			if len(filter.Sources) > 0 && !slices.Contains(filter.Sources, q.Source) {
				continue
			}
			out = append(out, copyRecord(q))
		}
	}
	return out
}

// GetWeightedRandomQuestion draws a loaded question with probability
// proportional to the weight of its rank. It returns false when nothing is loaded.
func (s *QuestionBankService) GetWeightedRandomQuestion() (*models.QuestionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pool []*models.QuestionRecord
	for _, fileID := range s.loadOrder {
		pool = append(pool, s.loaded[fileID]...)
	}
	if len(pool) == 0 {
		return nil, false
	}

	ranks := make([]int, len(pool))
	for i, q := range pool {
		ranks[i] = q.Rank
	}
	idx := ranking.NewRankSampler(ranks).Draw(s.rng)
	if idx < 0 {
		return nil, false
	}
	q := copyRecord(pool[idx])
	return &q, true
}

// GetQuestionByID looks up a loaded question by its "<fileId>-<nnn>" id.
func (s *QuestionBankService) GetQuestionByID(id string) (*models.QuestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.questionByIDLocked(id)
	if err != nil {
		return nil, err
	}
	out := copyRecord(q)
	return &out, nil
}

func (s *QuestionBankService) questionByIDLocked(id string) (*models.QuestionRecord, error) {
	fileID, seq, err := identity.ParseQuestionID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionID, err)
	}
	if q := s.loadedRecordLocked(fileID, seq); q != nil {
		return q, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
}

func (s *QuestionBankService) loadedRecordLocked(fileID string, seq int) *models.QuestionRecord {
	for _, q := range s.loaded[fileID] {
		if q.SequenceNumber == seq {
			return q
		}
	}
	return nil
}

// ===== RANK UPDATES =====

// UpdateRank stores newRank for one question and mirrors it into the loaded
// record. The returned record is nil when the file is not loaded.
func (s *QuestionBankService) UpdateRank(ctx context.Context, fileID string, seq, newRank int) (*models.QuestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateRankLocked(ctx, fileID, seq, newRank)
}

func (s *QuestionBankService) updateRankLocked(ctx context.Context, fileID string, seq, newRank int) (*models.QuestionRecord, error) {
	op := s.logger.WithOperation(ctx, "update_rank")

	if !ranking.IsValid(newRank) {
		err := fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidRank, newRank, ranking.MinRank, ranking.MaxRank)
		op.LogResult(fileID, err)
		return nil, err
	}
	if seq < 1 {
		err := fmt.Errorf("%w: sequence number %d", ErrInvalidQuestionID, seq)
		op.LogResult(fileID, err)
		return nil, err
	}
	file, ok := s.available[fileID]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrFileNotFound, fileID)
		op.LogResult(fileID, err)
		return nil, err
	}

	metadata, err := s.store.LoadOrCreate(file.Path)
	if err != nil {
		err = newFileError("update rank", file.Name, err)
		op.LogResult(fileID, err)
		return nil, err
	}

	key := identity.SequenceKey(seq)
	oldRank, ok := metadata.Rankings[key]
	if !ok {
		oldRank = ranking.DefaultRank
	}
	now := s.clock()
	metadata.Rankings[key] = newRank
	metadata.LastUpdated = models.NewTimestamp(now)
	if err := s.store.Write(file.Path, metadata); err != nil {
		err = newFileError("update rank", file.Name, err)
		op.LogResult(fileID, err)
		return nil, err
	}
	file.LastUpdated = metadata.LastUpdated

	changed := &models.QuestionRecord{
		ID:             identity.QuestionID(fileID, seq),
		FileID:         fileID,
		SequenceNumber: seq,
		Rank:           newRank,
	}
	var result *models.QuestionRecord
	if q := s.loadedRecordLocked(fileID, seq); q != nil {
		q.Rank = newRank
		out := copyRecord(q)
		result = &out
		changed = q
	}

	_ = s.notifier.NotifyRankChanged(ctx, changed, oldRank, now)
	op.LogResult(fileID, nil)
	return result, nil
}

// QuickRankUp moves q one box up, capped at the top box. On success q.Rank
// holds the new rank.
func (s *QuestionBankService) QuickRankUp(ctx context.Context, q *models.QuestionRecord) (*models.QuestionRecord, error) {
	return s.quickRank(ctx, q, ranking.Promote)
}

// QuickRankDown moves q one box down, floored at the bottom box. On success
// q.Rank holds the new rank.
func (s *QuestionBankService) QuickRankDown(ctx context.Context, q *models.QuestionRecord) (*models.QuestionRecord, error) {
	return s.quickRank(ctx, q, ranking.Demote)
}

func (s *QuestionBankService) quickRank(ctx context.Context, q *models.QuestionRecord, step func(int) int) (*models.QuestionRecord, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: nil question", ErrQuestionNotFound)
	}
	newRank := step(q.Rank)
	updated, err := s.UpdateRank(ctx, q.FileID, q.SequenceNumber, newRank)
	if err != nil {
		return nil, err
	}
	q.Rank = newRank
	return updated, nil
}

// RankUpByID promotes the loaded question with the given id. Lookup and write
// happen under one lock, so concurrent calls never lose a step.
func (s *QuestionBankService) RankUpByID(ctx context.Context, id string) (*models.QuestionRecord, error) {
	return s.rankByID(ctx, id, ranking.Promote)
}

// RankDownByID demotes the loaded question with the given id.
func (s *QuestionBankService) RankDownByID(ctx context.Context, id string) (*models.QuestionRecord, error) {
	return s.rankByID(ctx, id, ranking.Demote)
}

// SetRankByID stores rank for the loaded question with the given id.
func (s *QuestionBankService) SetRankByID(ctx context.Context, id string, rank int) (*models.QuestionRecord, error) {
	return s.rankByID(ctx, id, func(int) int { return rank })
}

func (s *QuestionBankService) rankByID(ctx context.Context, id string, step func(int) int) (*models.QuestionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.questionByIDLocked(id)
	if err != nil {
		return nil, err
	}
	return s.updateRankLocked(ctx, q.FileID, q.SequenceNumber, step(q.Rank))
}

// SubmitAnswer grades a selection of 0-based answer indexes. A correct answer
// promotes the question, a wrong one demotes it.
func (s *QuestionBankService) SubmitAnswer(ctx context.Context, questionID string, selected []int) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.questionByIDLocked(questionID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no answer selected", ErrInvalidSelection)
	}
	for _, idx := range selected {
		if idx < 0 || idx >= len(q.Answers) {
			return nil, fmt.Errorf("%w: answer %d does not exist", ErrInvalidSelection, idx)
		}
	}

	correct := q.IsCorrectSelection(selected)
	oldRank := q.Rank
	newRank := ranking.Demote(oldRank)
	if correct {
		newRank = ranking.Promote(oldRank)
	}

	if _, err := s.updateRankLocked(ctx, q.FileID, q.SequenceNumber, newRank); err != nil {
		return nil, err
	}

	return &AnswerResult{
		QuestionID:     q.ID,
		Correct:        correct,
		OldRank:        oldRank,
		NewRank:        newRank,
		CorrectIndexes: q.CorrectIndexes(),
		CorrectAnswers: q.CorrectAnswers(),
	}, nil
}

// ===== METADATA MAINTENANCE =====

// ResetMetadata puts every question of the named file back at the default rank,
// on disk and in memory. Selection is unchanged.
func (s *QuestionBankService) ResetMetadata(ctx context.Context, name string) error {
	op := s.logger.WithOperation(ctx, "reset_metadata")

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.resolveFileLocked(name)
	if err != nil {
		op.LogResult("", err)
		return err
	}

	metadata, err := s.store.Reset(file.Path)
	if err != nil {
		err = newFileError("reset metadata", file.Name, err)
		op.LogResult(file.ID, err)
		return err
	}
	file.TotalQuestions = metadata.TotalQuestions
	file.LastUpdated = metadata.LastUpdated

	for _, q := range s.loaded[file.ID] {
		q.Rank = ranking.DefaultRank
	}

	_ = s.notifier.NotifyMetadataReset(ctx, *file)
	op.LogResult(file.ID, nil)
	return nil
}

// DeleteMetadata removes the sidecar of the named file and drops its loaded
// questions. Selection is unchanged. A missing sidecar is not an error.
func (s *QuestionBankService) DeleteMetadata(ctx context.Context, name string) error {
	op := s.logger.WithOperation(ctx, "delete_metadata")

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.resolveFileLocked(name)
	if err != nil {
		op.LogResult("", err)
		return err
	}

	if err := s.store.Delete(file.Path); err != nil {
		err = newFileError("delete metadata", file.Name, err)
		op.LogResult(file.ID, err)
		return err
	}
	s.unloadLocked(file.ID)

	_ = s.notifier.NotifyMetadataDeleted(ctx, *file)
	op.LogResult(file.ID, nil)
	return nil
}

// resolveFileLocked accepts a file name or a file id.
func (s *QuestionBankService) resolveFileLocked(idOrName string) (*models.QuestionFile, error) {
	if file := s.fileByNameLocked(idOrName); file != nil {
		return file, nil
	}
	if file, ok := s.available[idOrName]; ok {
		return file, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, idOrName)
}

// ===== STATISTICS =====

// GetFileStats reports the rank distribution stored in each available file's
// sidecar. Files without a sidecar report zero counts.
func (s *QuestionBankService) GetFileStats(ctx context.Context) ([]models.FileStats, error) {
	files := s.GetAllAvailableFiles()
	stats := make([]models.FileStats, 0, len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := models.FileStats{
			FileID:         file.ID,
			Name:           file.Name,
			TotalQuestions: file.TotalQuestions,
			IsSelected:     file.IsSelected,
		}

		metadata, err := s.store.Load(file.Path)
		switch {
		case err == nil:
			entry.TotalQuestions = metadata.TotalQuestions
			for _, rank := range metadata.Rankings {
				entry.Add(ranking.Clamp(rank))
			}
		case repositories.IsNotFoundError(err):
		default:
			s.logger.LogFileSkipped(ctx, "file_stats", file.Path, err)
			continue
		}

		entry.Finalize()
		stats = append(stats, entry)
	}
	return stats, nil
}

func copyRecord(q *models.QuestionRecord) models.QuestionRecord {
	out := *q
	out.Answers = slices.Clone(q.Answers)
	return out
}
