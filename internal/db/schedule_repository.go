package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const schedulesCollection = "schedules"

type firestoreScheduleRepository struct {
	client *firestore.Client
}

// NewFirestoreScheduleRepository keeps one schedules/{uid} document per user.
func NewFirestoreScheduleRepository(client *firestore.Client) ScheduleRepository {
	return &firestoreScheduleRepository{client: client}
}

func (r *firestoreScheduleRepository) Get(ctx context.Context, userID string) (*models.Schedule, error) {
	snap, err := r.client.Collection(schedulesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("schedule for user '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get schedule for user '%s': %w", userID, err)
	}
	var schedule models.Schedule
	if err := snap.DataTo(&schedule); err != nil {
		return nil, fmt.Errorf("failed to decode schedule for user '%s': %w", userID, err)
	}
	schedule.UserID = userID
	return &schedule, nil
}

// Save overwrites the whole document; the client always sends the full week.
func (r *firestoreScheduleRepository) Save(ctx context.Context, schedule *models.Schedule) error {
	if schedule.UserID == "" {
		return errors.New("schedule user ID cannot be empty for Save operation")
	}
	if _, err := r.client.Collection(schedulesCollection).Doc(schedule.UserID).Set(ctx, schedule); err != nil {
		return fmt.Errorf("failed to save schedule for user '%s': %w", schedule.UserID, err)
	}
	return nil
}
