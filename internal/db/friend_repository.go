package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	friendRequestsCollection = "friendRequests"
	friendshipsCollection    = "friendships"
)

// RequestID is the composite document id of a friend request.
func RequestID(fromUserID, toUserID string) string {
	return fromUserID + "_" + toUserID
}

// FriendshipID is the composite document id of one friendship direction.
func FriendshipID(userID, friendID string) string {
	return userID + "_" + friendID
}

type firestoreFriendRepository struct {
	client *firestore.Client
}

// NewFirestoreFriendRepository creates a FriendRepository backed by Firestore.
func NewFirestoreFriendRepository(client *firestore.Client) FriendRepository {
	return &firestoreFriendRepository{client: client}
}

func (r *firestoreFriendRepository) requestRef(fromUserID, toUserID string) *firestore.DocumentRef {
	return r.client.Collection(friendRequestsCollection).Doc(RequestID(fromUserID, toUserID))
}

func (r *firestoreFriendRepository) friendshipRef(userID, friendID string) *firestore.DocumentRef {
	return r.client.Collection(friendshipsCollection).Doc(FriendshipID(userID, friendID))
}

func (r *firestoreFriendRepository) GetRequest(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error) {
	snap, err := r.requestRef(fromUserID, toUserID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("friend request %s: %w", RequestID(fromUserID, toUserID), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get friend request %s: %w", RequestID(fromUserID, toUserID), err)
	}
	return decodeRequest(snap)
}

func (r *firestoreFriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	ref := r.requestRef(req.FromUserID, req.ToUserID)
	req.ID = ref.ID
	if _, err := ref.Create(ctx, req); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("friend request %s: %w", ref.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create friend request %s: %w", ref.ID, err)
	}
	return nil
}

func (r *firestoreFriendRepository) DeleteRequest(ctx context.Context, fromUserID, toUserID string) error {
	if _, err := r.requestRef(fromUserID, toUserID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete friend request %s: %w", RequestID(fromUserID, toUserID), err)
	}
	return nil
}

func (r *firestoreFriendRepository) ListIncoming(ctx context.Context, userID string) ([]*models.FriendRequest, error) {
	query := r.client.Collection(friendRequestsCollection).
		Where("toUserId", "==", userID).
		Where("status", "==", models.FriendRequestPending)
	return collectRequests(query.Documents(ctx))
}

func (r *firestoreFriendRepository) ListOutgoing(ctx context.Context, userID string) ([]*models.FriendRequest, error) {
	query := r.client.Collection(friendRequestsCollection).
		Where("fromUserId", "==", userID).
		Where("status", "==", models.FriendRequestPending)
	return collectRequests(query.Documents(ctx))
}

// Accept turns a pending request into two mirrored friendship documents.
func (r *firestoreFriendRepository) Accept(ctx context.Context, req *models.FriendRequest) error {
	reqRef := r.requestRef(req.FromUserID, req.ToUserID)
	users := r.client.Collection(usersCollection)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(reqRef); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("friend request %s: %w", reqRef.ID, ErrNotFound)
			}
			return err
		}
		forward := &models.Friendship{UserID: req.FromUserID, FriendID: req.ToUserID, FriendName: req.ToName}
		backward := &models.Friendship{UserID: req.ToUserID, FriendID: req.FromUserID, FriendName: req.FromName}
		if err := tx.Set(r.friendshipRef(req.FromUserID, req.ToUserID), forward); err != nil {
			return err
		}
		if err := tx.Set(r.friendshipRef(req.ToUserID, req.FromUserID), backward); err != nil {
			return err
		}
		if err := tx.Delete(reqRef); err != nil {
			return err
		}
		for _, id := range []string{req.FromUserID, req.ToUserID} {
			if err := tx.Update(users.Doc(id), []firestore.Update{{Path: "friendsCount", Value: firestore.Increment(1)}}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to accept friend request %s: %w", reqRef.ID, err)
	}
	return nil
}

// Remove deletes both directions of a friendship.
func (r *firestoreFriendRepository) Remove(ctx context.Context, userID, friendID string) error {
	forwardRef := r.friendshipRef(userID, friendID)
	backwardRef := r.friendshipRef(friendID, userID)
	users := r.client.Collection(usersCollection)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(forwardRef); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("friendship %s: %w", forwardRef.ID, ErrNotFound)
			}
			return err
		}
		if err := tx.Delete(forwardRef); err != nil {
			return err
		}
		if err := tx.Delete(backwardRef); err != nil {
			return err
		}
		for _, id := range []string{userID, friendID} {
			if err := tx.Update(users.Doc(id), []firestore.Update{{Path: "friendsCount", Value: firestore.Increment(-1)}}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove friendship %s: %w", forwardRef.ID, err)
	}
	return nil
}

func (r *firestoreFriendRepository) GetFriendship(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	snap, err := r.friendshipRef(userID, friendID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("friendship %s: %w", FriendshipID(userID, friendID), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get friendship %s: %w", FriendshipID(userID, friendID), err)
	}
	return decodeFriendship(snap)
}

func (r *firestoreFriendRepository) ListFriendships(ctx context.Context, userID string) ([]*models.Friendship, error) {
	iter := r.client.Collection(friendshipsCollection).Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var out []*models.Friendship
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate friendships for user '%s': %w", userID, err)
		}
		f, err := decodeFriendship(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func collectRequests(iter *firestore.DocumentIterator) ([]*models.FriendRequest, error) {
	defer iter.Stop()

	var out []*models.FriendRequest
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate friend requests: %w", err)
		}
		req, err := decodeRequest(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func decodeRequest(snap *firestore.DocumentSnapshot) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := snap.DataTo(&req); err != nil {
		return nil, fmt.Errorf("failed to decode friend request '%s': %w", snap.Ref.ID, err)
	}
	req.ID = snap.Ref.ID
	return &req, nil
}

func decodeFriendship(snap *firestore.DocumentSnapshot) (*models.Friendship, error) {
	var f models.Friendship
	if err := snap.DataTo(&f); err != nil {
		return nil, fmt.Errorf("failed to decode friendship '%s': %w", snap.Ref.ID, err)
	}
	f.ID = snap.Ref.ID
	return &f, nil
}
