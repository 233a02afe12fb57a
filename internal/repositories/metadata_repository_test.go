package repositories

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataRepository_PathFor(t *testing.T) {
	repo := NewMetadataRepository()

	assert.Equal(t, "/q/bio.meta.json", repo.PathFor("/q/bio.md"))
	assert.Equal(t, "/q/math.v2.meta.json", repo.PathFor("/q/math.v2.csv"))
	assert.Equal(t, "noext.meta.json", repo.PathFor("noext"))
}

func TestMetadataRepository_SaveLoadDelete(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "bio.md")
	repo := NewMetadataRepository()

	_, err := repo.Load(source)
	assert.ErrorIs(t, err, ErrMetadataNotFound)
	assert.True(t, IsNotFoundError(err))

	assert.NoFileExists(t, repo.PathFor(source))

	stamp := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	meta := &models.FileMetadata{
		FileID:         "abcd1234",
		SourceFileName: "bio.md",
		LastUpdated:    models.NewTimestamp(stamp),
		TotalQuestions: 2,
		Rankings:       map[string]int{"001": 2, "002": 5},
	}
	require.NoError(t, repo.Save(source, meta))

	raw, err := os.ReadFile(filepath.Join(dir, "bio.meta.json"))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "abcd1234", doc["file_hash"])
	assert.Equal(t, "bio.md", doc["source_file"])
	assert.Equal(t, "2025-03-01T10:30:00Z", doc["last_updated"])
	assert.EqualValues(t, 2, doc["total_questions"])
	assert.Equal(t, map[string]interface{}{"001": 2.0, "002": 5.0}, doc["rankings"])

	loaded, err := repo.Load(source)
	require.NoError(t, err)
	assert.Equal(t, meta.Rankings, loaded.Rankings)
	assert.True(t, stamp.Equal(loaded.LastUpdated.Time))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, repo.Delete(source))
	_, err = repo.Load(source)
	assert.ErrorIs(t, err, ErrMetadataNotFound)
	assert.NoError(t, repo.Delete(source), "deleting twice is a no-op")
}

func TestMetadataRepository_Corrupt(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "bio.md")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bio.meta.json"), []byte("{not json"), 0o644))

	_, err := NewMetadataRepository().Load(source)
	assert.ErrorIs(t, err, ErrCorruptMetadata)
	assert.False(t, IsNotFoundError(err))
}

func TestMetadataRepository_LegacyTimestamp(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "bio.csv")
	legacy := `{
  "file_hash": "abcd1234",
  "source_file": "bio.csv",
  "last_updated": "2024-11-02T18:04:05.123456",
  "total_questions": 1,
  "rankings": {"001": 4}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bio.meta.json"), []byte(legacy), 0o644))

	meta, err := NewMetadataRepository().Load(source)
	require.NoError(t, err)
	assert.Equal(t, 2024, meta.LastUpdated.Year())
	assert.Equal(t, 4, meta.Rankings["001"])
}
