package repositories

import "errors"

var (
	ErrMetadataNotFound = errors.New("metadata not found")
	ErrCorruptMetadata  = errors.New("metadata is corrupt")
)

// IsNotFoundError checks if the error means the sidecar does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrMetadataNotFound)
}
