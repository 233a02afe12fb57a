package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of study progress events
type EventType string

const (
	EventRankChanged     EventType = "rank.changed"
	EventMetadataReset   EventType = "metadata.reset"
	EventMetadataDeleted EventType = "metadata.deleted"
	EventFilesSelected   EventType = "files.selected"
)

const (
	eventSource  = "flashcard-service"
	eventVersion = "1.0"
)

// ProgressEvent is the envelope for every published event
type ProgressEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type RankChangedEvent struct {
	FileID         string    `json:"file_id"`
	QuestionID     string    `json:"question_id"`
	SequenceNumber int       `json:"sequence_number"`
	OldRank        int       `json:"old_rank"`
	NewRank        int       `json:"new_rank"`
	ChangedAt      time.Time `json:"changed_at"`
}

type MetadataResetEvent struct {
	FileID         string `json:"file_id"`
	FileName       string `json:"file_name"`
	TotalQuestions int    `json:"total_questions"`
}

type MetadataDeletedEvent struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
}

type FilesSelectedEvent struct {
	FileIDs       []string `json:"file_ids"`
	QuestionCount int      `json:"question_count"`
}

// Event factory functions

func NewRankChangedEvent(fileID, questionID string, seq, oldRank, newRank int, changedAt time.Time) *ProgressEvent {
	return newEvent(EventRankChanged, RankChangedEvent{
		FileID:         fileID,
		QuestionID:     questionID,
		SequenceNumber: seq,
		OldRank:        oldRank,
		NewRank:        newRank,
		ChangedAt:      changedAt,
	})
}

func NewMetadataResetEvent(fileID, fileName string, totalQuestions int) *ProgressEvent {
	return newEvent(EventMetadataReset, MetadataResetEvent{
		FileID:         fileID,
		FileName:       fileName,
		TotalQuestions: totalQuestions,
	})
}

func NewMetadataDeletedEvent(fileID, fileName string) *ProgressEvent {
	return newEvent(EventMetadataDeleted, MetadataDeletedEvent{
		FileID:   fileID,
		FileName: fileName,
	})
}

func NewFilesSelectedEvent(fileIDs []string, questionCount int) *ProgressEvent {
	return newEvent(EventFilesSelected, FilesSelectedEvent{
		FileIDs:       fileIDs,
		QuestionCount: questionCount,
	})
}

func newEvent(eventType EventType, data interface{}) *ProgressEvent {
	return &ProgressEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
