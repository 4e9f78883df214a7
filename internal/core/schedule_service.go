package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/models"
)

const maxEventsPerDay = 48

type scheduleService struct {
	scheduleRepo db.ScheduleRepository
	logger       *zap.Logger
}

// NewScheduleService creates a ScheduleService.
func NewScheduleService(scheduleRepo db.ScheduleRepository, logger *zap.Logger) ScheduleService {
	return &scheduleService{scheduleRepo: scheduleRepo, logger: logger}
}

func emptyWeek() map[string][]models.Event {
	days := make(map[string][]models.Event, len(models.Weekdays))
	for _, d := range models.Weekdays {
		days[d] = []models.Event{}
	}
	return days
}

func isWeekday(day string) bool {
	for _, d := range models.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// GetSchedule returns the stored schedule, or an empty week when there is none.
func (s *scheduleService) GetSchedule(ctx context.Context, userID string) (*models.Schedule, error) {
	schedule, err := s.scheduleRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &models.Schedule{UserID: userID, Days: emptyWeek()}, nil
		}
		return nil, fmt.Errorf("failed to get schedule for user '%s': %w", userID, err)
	}

	week := emptyWeek()
	for day, events := range schedule.Days {
		if isWeekday(day) && events != nil {
			week[day] = events
		}
	}
	schedule.Days = week
	return schedule, nil
}

// SaveSchedule validates and overwrites the whole week.
func (s *scheduleService) SaveSchedule(ctx context.Context, userID string, req models.SaveScheduleRequest) (*models.Schedule, error) {
	week := emptyWeek()
	seen := make(map[string]string, len(req.Days))
	for key, events := range req.Days {
		day := strings.ToLower(key)
		if !isWeekday(day) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDay, key)
		}
		if other, dup := seen[day]; dup {
			return nil, fmt.Errorf("%w: %q and %q name the same day", ErrInvalidSchedule, other, key)
		}
		seen[day] = key
		if len(events) > maxEventsPerDay {
			return nil, fmt.Errorf("%w: %s has more than %d events", ErrInvalidSchedule, day, maxEventsPerDay)
		}
		valid, err := ValidateEvents(day, events, uuid.NewString)
		if err != nil {
			return nil, err
		}
		week[day] = valid
	}

	schedule := &models.Schedule{UserID: userID, Days: week}
	if err := s.scheduleRepo.Save(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to save schedule for user '%s': %w", userID, err)
	}
	schedule.UpdatedAt = time.Now().UTC()
	s.logger.Debug("Saved schedule", zap.String("userID", userID))
	return schedule, nil
}

func (s *scheduleService) GetFreeSlots(ctx context.Context, userID, day string) ([]models.TimeSlot, error) {
	day = strings.ToLower(day)
	if !isWeekday(day) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	schedule, err := s.GetSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FreeSlots(schedule.Days[day]), nil
}

func (s *scheduleService) GetSleepAnalysis(ctx context.Context, userID string) (*models.SleepReport, error) {
	schedule, err := s.GetSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	report := SleepAnalysis(schedule)
	return &report, nil
}

func (s *scheduleService) GetWeeklySummary(ctx context.Context, userID string) ([]models.DaySummary, error) {
	schedule, err := s.GetSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	return WeeklySummary(schedule), nil
}
