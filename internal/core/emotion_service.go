package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	maxNoteLength = 500
	// MaxRangeDays bounds the days parameter of averages and insights.
	MaxRangeDays = 365
)

type emotionService struct {
	emotionRepo db.EmotionRepository
	logger      *zap.Logger
	location    *time.Location
	now         func() time.Time
}

// NewEmotionService creates an EmotionService. Records are bucketed by date in loc.
func NewEmotionService(emotionRepo db.EmotionRepository, loc *time.Location, logger *zap.Logger) EmotionService {
	if loc == nil {
		loc = time.UTC
	}
	return &emotionService{
		emotionRepo: emotionRepo,
		logger:      logger,
		location:    loc,
		now:         time.Now,
	}
}

func (s *emotionService) today() time.Time {
	return s.now().In(s.location)
}

// RecordEmotion stores the record and then recomputes that day's average.
func (s *emotionService) RecordEmotion(ctx context.Context, userID string, req models.RecordEmotionRequest) (*models.EmotionRecord, error) {
	value, ok := models.EmotionValues[req.EmotionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmotion, req.EmotionID)
	}
	note := strings.TrimSpace(req.Note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, fmt.Errorf("%w: note must be at most %d characters", ErrInvalidEmotion, maxNoteLength)
	}

	now := s.today()
	record := &models.EmotionRecord{
		EmotionID: req.EmotionID,
		Value:     value,
		Note:      note,
		Timestamp: now.UTC(),
		Date:      now.Format(DateLayout),
	}
	if _, err := s.emotionRepo.Create(ctx, userID, record); err != nil {
		return nil, fmt.Errorf("failed to record emotion for user '%s': %w", userID, err)
	}

	if err := s.recomputeDailyAverage(ctx, userID, record.Date); err != nil {
		// The record is stored; the aggregate catches up on the next write of the day.
		s.logger.Error("Failed to recompute daily average",
			zap.String("userID", userID), zap.String("date", record.Date), zap.Error(err))
	}
	return record, nil
}

func (s *emotionService) recomputeDailyAverage(ctx context.Context, userID, date string) error {
	records, err := s.emotionRepo.ListByDate(ctx, userID, date)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return s.emotionRepo.DeleteDailyAverage(ctx, userID, date)
	}
	return s.emotionRepo.SaveDailyAverage(ctx, userID, DailyAverageOf(date, records))
}

// ListEmotions returns records newest first.
func (s *emotionService) ListEmotions(ctx context.Context, userID string, filter models.EmotionFilter) ([]*models.EmotionRecord, error) {
	for _, d := range []string{filter.From, filter.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return nil, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidRange, d)
		}
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return nil, fmt.Errorf("%w: from is after to", ErrInvalidRange)
	}
	if filter.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrInvalidRange)
	}

	records, err := s.emotionRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list emotions for user '%s': %w", userID, err)
	}
	if records == nil {
		records = []*models.EmotionRecord{}
	}
	return records, nil
}

func (s *emotionService) fromDate(days int) (string, error) {
	if days < 1 || days > MaxRangeDays {
		return "", fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidRange, MaxRangeDays)
	}
	return s.today().AddDate(0, 0, -(days - 1)).Format(DateLayout), nil
}

// GetDailyAverages returns the aggregates of the last days, oldest first.
func (s *emotionService) GetDailyAverages(ctx context.Context, userID string, days int) ([]*models.DailyAverage, error) {
	from, err := s.fromDate(days)
	if err != nil {
		return nil, err
	}
	averages, err := s.emotionRepo.ListDailyAverages(ctx, userID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily averages for user '%s': %w", userID, err)
	}
	if averages == nil {
		averages = []*models.DailyAverage{}
	}
	return averages, nil
}

func (s *emotionService) GetInsights(ctx context.Context, userID string, days int) (*models.Insights, error) {
	from, err := s.fromDate(days)
	if err != nil {
		return nil, err
	}
	records, err := s.emotionRepo.List(ctx, userID, models.EmotionFilter{From: from})
	if err != nil {
		return nil, fmt.Errorf("failed to list emotions for user '%s': %w", userID, err)
	}
	averages, err := s.emotionRepo.ListDailyAverages(ctx, userID, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily averages for user '%s': %w", userID, err)
	}

	insights := BuildInsights(days, records, averages, s.today())
	return &insights, nil
}

// DeleteEmotion removes a record and recomputes its day's average.
func (s *emotionService) DeleteEmotion(ctx context.Context, userID, recordID string) error {
	record, err := s.emotionRepo.GetByID(ctx, userID, recordID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrEmotionNotFound, recordID)
		}
		return fmt.Errorf("failed to get emotion record '%s': %w", recordID, err)
	}
	if err := s.emotionRepo.Delete(ctx, userID, recordID); err != nil {
		return fmt.Errorf("failed to delete emotion record '%s': %w", recordID, err)
	}
	if err := s.recomputeDailyAverage(ctx, userID, record.Date); err != nil {
		s.logger.Error("Failed to recompute daily average",
			zap.String("userID", userID), zap.String("date", record.Date), zap.Error(err))
	}
	return nil
}
