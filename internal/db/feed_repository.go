package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const sharedStatesCollection = "sharedStates"

// Firestore caps the number of values of an "in" filter.
const maxInValues = 30

type firestoreFeedRepository struct {
	client *firestore.Client
}

// NewFirestoreFeedRepository creates a FeedRepository backed by Firestore.
func NewFirestoreFeedRepository(client *firestore.Client) FeedRepository {
	return &firestoreFeedRepository{client: client}
}

// Create stores the state and bumps the author's sharedStatesCount.
func (r *firestoreFeedRepository) Create(ctx context.Context, state *models.SharedState) (string, error) {
	docRef := r.client.Collection(sharedStatesCollection).NewDoc()
	userRef := r.client.Collection(usersCollection).Doc(state.UserID)
	if state.Likes == nil {
		state.Likes = []string{}
	}
	if state.Comments == nil {
		state.Comments = []models.Comment{}
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(docRef, state); err != nil {
			return err
		}
		return tx.Update(userRef, []firestore.Update{{Path: "sharedStatesCount", Value: firestore.Increment(1)}})
	})
	if err != nil {
		return "", fmt.Errorf("failed to create shared state for user '%s': %w", state.UserID, err)
	}
	state.ID = docRef.ID
	return docRef.ID, nil
}

func (r *firestoreFeedRepository) GetByID(ctx context.Context, stateID string) (*models.SharedState, error) {
	snap, err := r.client.Collection(sharedStatesCollection).Doc(stateID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("shared state '%s': %w", stateID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get shared state '%s': %w", stateID, err)
	}
	return decodeState(snap)
}

func (r *firestoreFeedRepository) Delete(ctx context.Context, state *models.SharedState) error {
	docRef := r.client.Collection(sharedStatesCollection).Doc(state.ID)
	userRef := r.client.Collection(usersCollection).Doc(state.UserID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Delete(docRef); err != nil {
			return err
		}
		return tx.Update(userRef, []firestore.Update{{Path: "sharedStatesCount", Value: firestore.Increment(-1)}})
	})
	if err != nil {
		return fmt.Errorf("failed to delete shared state '%s': %w", state.ID, err)
	}
	return nil
}

// ListByUsers merges the newest states of userIDs, querying in chunks of maxInValues.
func (r *firestoreFeedRepository) ListByUsers(ctx context.Context, userIDs []string, limit int) ([]*models.SharedState, error) {
	var all []*models.SharedState
	for start := 0; start < len(userIDs); start += maxInValues {
		end := start + maxInValues
		if end > len(userIDs) {
			end = len(userIDs)
		}
		query := r.client.Collection(sharedStatesCollection).
			Where("userId", "in", userIDs[start:end]).
			OrderBy("createdAt", firestore.Desc)
		if limit > 0 {
			query = query.Limit(limit)
		}
		states, err := collectStates(query.Documents(ctx))
		if err != nil {
			return nil, err
		}
		all = append(all, states...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

var errNoChange = errors.New("no change")

// AddLike appends userID to likes and increments the owner's receivedLikesCount.
func (r *firestoreFeedRepository) AddLike(ctx context.Context, stateID, userID string) error {
	return r.toggleLike(ctx, stateID, userID, true)
}

// RemoveLike removes userID from likes and decrements the owner's receivedLikesCount.
func (r *firestoreFeedRepository) RemoveLike(ctx context.Context, stateID, userID string) error {
	return r.toggleLike(ctx, stateID, userID, false)
}

func (r *firestoreFeedRepository) toggleLike(ctx context.Context, stateID, userID string, like bool) error {
	docRef := r.client.Collection(sharedStatesCollection).Doc(stateID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("shared state '%s': %w", stateID, ErrNotFound)
			}
			return err
		}
		state, err := decodeState(snap)
		if err != nil {
			return err
		}
		liked := containsString(state.Likes, userID)
		if liked == like {
			return errNoChange
		}

		if err := tx.Update(docRef, likeUpdates(userID, like)); err != nil {
			return err
		}
		ownerRef := r.client.Collection(usersCollection).Doc(state.UserID)
		return tx.Update(ownerRef, []firestore.Update{{Path: "receivedLikesCount", Value: firestore.Increment(likeDelta(like))}})
	})
	switch {
	case errors.Is(err, errNoChange) && like:
		return fmt.Errorf("like by '%s' on '%s': %w", userID, stateID, ErrAlreadyExists)
	case errors.Is(err, errNoChange):
		return fmt.Errorf("like by '%s' on '%s': %w", userID, stateID, ErrNotFound)
	case err != nil:
		return fmt.Errorf("failed to update likes of shared state '%s': %w", stateID, err)
	}
	return nil
}

func likeUpdates(userID string, like bool) []firestore.Update {
	if like {
		return []firestore.Update{{Path: "likes", Value: firestore.ArrayUnion(userID)}}
	}
	return []firestore.Update{{Path: "likes", Value: firestore.ArrayRemove(userID)}}
}

func likeDelta(like bool) int {
	if like {
		return 1
	}
	return -1
}

func (r *firestoreFeedRepository) AddComment(ctx context.Context, stateID string, comment models.Comment) error {
	_, err := r.client.Collection(sharedStatesCollection).Doc(stateID).Update(ctx, []firestore.Update{
		{Path: "comments", Value: firestore.ArrayUnion(comment)},
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("shared state '%s': %w", stateID, ErrNotFound)
		}
		return fmt.Errorf("failed to add comment to shared state '%s': %w", stateID, err)
	}
	return nil
}

func collectStates(iter *firestore.DocumentIterator) ([]*models.SharedState, error) {
	defer iter.Stop()

	var out []*models.SharedState
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate shared states: %w", err)
		}
		state, err := decodeState(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, state)
	}
	return out, nil
}

func decodeState(snap *firestore.DocumentSnapshot) (*models.SharedState, error) {
	var state models.SharedState
	if err := snap.DataTo(&state); err != nil {
		return nil, fmt.Errorf("failed to decode shared state '%s': %w", snap.Ref.ID, err)
	}
	state.ID = snap.Ref.ID
	return &state, nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
