package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

const MetadataSuffix = ".meta.json"

type sidecarRepository struct{}

// NewMetadataRepository stores metadata as indented JSON next to each question
// file, "quiz.md" -> "quiz.meta.json".
func NewMetadataRepository() MetadataRepository {
	return &sidecarRepository{}
}

func (r *sidecarRepository) PathFor(sourcePath string) string {
	return strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath)) + MetadataSuffix
}

func (r *sidecarRepository) Load(sourcePath string) (*models.FileMetadata, error) {
	path := r.PathFor(sourcePath)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMetadataNotFound
		}
		return nil, fmt.Errorf("failed to read metadata %s: %w", path, err)
	}

	var metadata models.FileMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptMetadata, path, err)
	}
	if metadata.Rankings == nil {
		metadata.Rankings = make(map[string]int)
	}
	return &metadata, nil
}

func (r *sidecarRepository) Save(sourcePath string, metadata *models.FileMetadata) error {
	if metadata == nil {
		return fmt.Errorf("metadata cannot be nil")
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	path := r.PathFor(sourcePath)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp metadata file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close metadata: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace metadata %s: %w", path, err)
	}
	return nil
}

func (r *sidecarRepository) Delete(sourcePath string) error {
	path := r.PathFor(sourcePath)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete metadata %s: %w", path, err)
	}
	return nil
}
