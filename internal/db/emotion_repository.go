package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	emotionsCollection      = "emotions"
	dailyAveragesCollection = "dailyAverages"
)

type firestoreEmotionRepository struct {
	client *firestore.Client
}

// NewFirestoreEmotionRepository stores records under users/{uid}/emotions and
// aggregates under users/{uid}/dailyAverages/{date}.
func NewFirestoreEmotionRepository(client *firestore.Client) EmotionRepository {
	return &firestoreEmotionRepository{client: client}
}

func (r *firestoreEmotionRepository) emotions(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(emotionsCollection)
}

func (r *firestoreEmotionRepository) averages(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(dailyAveragesCollection)
}

func (r *firestoreEmotionRepository) Create(ctx context.Context, userID string, record *models.EmotionRecord) (string, error) {
	docRef := r.emotions(userID).NewDoc()
	record.ID = docRef.ID
	if _, err := docRef.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to create emotion record for user '%s': %w", userID, err)
	}
	return docRef.ID, nil
}

func (r *firestoreEmotionRepository) GetByID(ctx context.Context, userID, recordID string) (*models.EmotionRecord, error) {
	snap, err := r.emotions(userID).Doc(recordID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("emotion record '%s' not found: %w", recordID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get emotion record '%s': %w", recordID, err)
	}
	return decodeEmotion(snap)
}

func (r *firestoreEmotionRepository) Delete(ctx context.Context, userID, recordID string) error {
	if _, err := r.emotions(userID).Doc(recordID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete emotion record '%s': %w", recordID, err)
	}
	return nil
}

// List returns records newest first, optionally bounded by date bucket.
func (r *firestoreEmotionRepository) List(ctx context.Context, userID string, filter models.EmotionFilter) ([]*models.EmotionRecord, error) {
	query := r.emotions(userID).Query
	if filter.From != "" {
		query = query.Where("date", ">=", filter.From)
	}
	if filter.To != "" {
		query = query.Where("date", "<=", filter.To)
	}
	query = query.OrderBy("date", firestore.Desc).OrderBy("timestamp", firestore.Desc)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return collectEmotions(query.Documents(ctx))
}

func (r *firestoreEmotionRepository) ListByDate(ctx context.Context, userID, date string) ([]*models.EmotionRecord, error) {
	return collectEmotions(r.emotions(userID).Where("date", "==", date).Documents(ctx))
}

// SaveDailyAverage overwrites the aggregate document of avg.Date.
func (r *firestoreEmotionRepository) SaveDailyAverage(ctx context.Context, userID string, avg *models.DailyAverage) error {
	if _, err := r.averages(userID).Doc(avg.Date).Set(ctx, avg); err != nil {
		return fmt.Errorf("failed to save daily average %s for user '%s': %w", avg.Date, userID, err)
	}
	return nil
}

func (r *firestoreEmotionRepository) DeleteDailyAverage(ctx context.Context, userID, date string) error {
	if _, err := r.averages(userID).Doc(date).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete daily average %s for user '%s': %w", date, userID, err)
	}
	return nil
}

// ListDailyAverages returns aggregates from fromDate on, oldest first.
func (r *firestoreEmotionRepository) ListDailyAverages(ctx context.Context, userID, fromDate string) ([]*models.DailyAverage, error) {
	query := r.averages(userID).Query
	if fromDate != "" {
		query = query.Where("date", ">=", fromDate)
	}
	iter := query.OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*models.DailyAverage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate daily averages for user '%s': %w", userID, err)
		}
		var avg models.DailyAverage
		if err := doc.DataTo(&avg); err != nil {
			return nil, fmt.Errorf("failed to decode daily average '%s': %w", doc.Ref.ID, err)
		}
		out = append(out, &avg)
	}
	return out, nil
}

func collectEmotions(iter *firestore.DocumentIterator) ([]*models.EmotionRecord, error) {
	defer iter.Stop()

	var records []*models.EmotionRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate emotion records: %w", err)
		}
		rec, err := decodeEmotion(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeEmotion(snap *firestore.DocumentSnapshot) (*models.EmotionRecord, error) {
	var rec models.EmotionRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode emotion record '%s': %w", snap.Ref.ID, err)
	}
	rec.ID = snap.Ref.ID
	return &rec, nil
}
