package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// ProgressEventService announces study progress through the event publisher.
// A publish failure never undoes the change that caused it.
type ProgressEventService interface {
	NotifyRankChanged(ctx context.Context, question *models.QuestionRecord, oldRank int, changedAt time.Time) error
	NotifyMetadataReset(ctx context.Context, file models.QuestionFile) error
	NotifyMetadataDeleted(ctx context.Context, file models.QuestionFile) error
	NotifyFilesSelected(ctx context.Context, fileIDs []string, questionCount int) error
}

type progressEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewProgressEventService(eventPublisher events.EventPublisher, logger *slog.Logger) ProgressEventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &progressEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *progressEventService) NotifyRankChanged(ctx context.Context, question *models.QuestionRecord, oldRank int, changedAt time.Time) error {
	event := events.NewRankChangedEvent(question.FileID, question.ID, question.SequenceNumber, oldRank, question.Rank, changedAt)
	return s.publish(ctx, event)
}

func (s *progressEventService) NotifyMetadataReset(ctx context.Context, file models.QuestionFile) error {
	return s.publish(ctx, events.NewMetadataResetEvent(file.ID, file.Name, file.TotalQuestions))
}

func (s *progressEventService) NotifyMetadataDeleted(ctx context.Context, file models.QuestionFile) error {
	return s.publish(ctx, events.NewMetadataDeletedEvent(file.ID, file.Name))
}

func (s *progressEventService) NotifyFilesSelected(ctx context.Context, fileIDs []string, questionCount int) error {
	return s.publish(ctx, events.NewFilesSelectedEvent(fileIDs, questionCount))
}

func (s *progressEventService) publish(ctx context.Context, event *events.ProgressEvent) error {
	if s.eventPublisher == nil {
		return nil
	}
	if err := s.eventPublisher.PublishProgressEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish progress event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
		return err
	}
	return nil
}
