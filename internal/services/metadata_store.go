package services

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/identity"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/parsers"
	"github.com/SAP-F-2025/flashcard-service/internal/ranking"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
)

// MetadataStore decides what a sidecar should contain; the repository only
// moves bytes.
type MetadataStore struct {
	repo    repositories.MetadataRepository
	parsers *parsers.Registry
	clock   func() time.Time
}

func NewMetadataStore(repo repositories.MetadataRepository, registry *parsers.Registry, clock func() time.Time) *MetadataStore {
	if clock == nil {
		clock = time.Now
	}
	return &MetadataStore{repo: repo, parsers: registry, clock: clock}
}

// LoadOrCreate returns the sidecar of the question file at path, creating and
// persisting a default one when none exists.
func (s *MetadataStore) LoadOrCreate(path string) (*models.FileMetadata, error) {
	metadata, err := s.repo.Load(path)
	if err == nil {
		return metadata, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	metadata, err = s.fresh(path)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(path, metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// Load returns the sidecar without creating one.
func (s *MetadataStore) Load(path string) (*models.FileMetadata, error) {
	return s.repo.Load(path)
}

func (s *MetadataStore) Write(path string, metadata *models.FileMetadata) error {
	return s.repo.Save(path, metadata)
}

func (s *MetadataStore) Delete(path string) error {
	return s.repo.Delete(path)
}

// Reset overwrites the sidecar with every ranking back at the default rank.
func (s *MetadataStore) Reset(path string) (*models.FileMetadata, error) {
	metadata, err := s.fresh(path)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(path, metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

func (s *MetadataStore) fresh(path string) (*models.FileMetadata, error) {
	parser, err := s.parsers.ForPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file: %w", err)
	}

	name := filepath.Base(path)
	total := parser.CountQuestions(raw)
	rankings := make(map[string]int, total)
	for seq := 1; seq <= total; seq++ {
		rankings[identity.SequenceKey(seq)] = ranking.DefaultRank
	}

	return &models.FileMetadata{
		FileID:         identity.FileID(name),
		SourceFileName: name,
		LastUpdated:    models.NewTimestamp(s.clock()),
		TotalQuestions: total,
		Rankings:       rankings,
	}, nil
}
