package repositories

import (
	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// MetadataRepository persists FileMetadata sidecars. Every method takes the path
// of the question file, not the sidecar.
type MetadataRepository interface {
	// PathFor returns the sidecar location for a question file.
	PathFor(sourcePath string) string
	// Load returns ErrMetadataNotFound when no sidecar exists and wraps
	// ErrCorruptMetadata when it cannot be decoded.
	Load(sourcePath string) (*models.FileMetadata, error)
	// Save replaces the sidecar without exposing a partially written file.
	Save(sourcePath string, metadata *models.FileMetadata) error
	// Delete removes the sidecar; a missing sidecar is not an error.
	Delete(sourcePath string) error
}
