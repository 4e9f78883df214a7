package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const chatMessagesCollection = "chatMessages"

type firestoreChatRepository struct {
	client *firestore.Client
}

// NewFirestoreChatRepository stores messages under users/{uid}/chatMessages.
func NewFirestoreChatRepository(client *firestore.Client) ChatRepository {
	return &firestoreChatRepository{client: client}
}

func (r *firestoreChatRepository) messages(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(chatMessagesCollection)
}

func (r *firestoreChatRepository) Add(ctx context.Context, userID string, msg *models.ChatMessage) (string, error) {
	docRef := r.messages(userID).NewDoc()
	if _, err := docRef.Create(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to store chat message for user '%s': %w", userID, err)
	}
	msg.ID = docRef.ID
	return docRef.ID, nil
}

// ListRecent returns the last limit messages in chronological order.
func (r *firestoreChatRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error) {
	iter := r.messages(userID).OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer iter.Stop()

	var out []*models.ChatMessage
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate chat messages for user '%s': %w", userID, err)
		}
		var msg models.ChatMessage
		if err := doc.DataTo(&msg); err != nil {
			return nil, fmt.Errorf("failed to decode chat message '%s': %w", doc.Ref.ID, err)
		}
		msg.ID = doc.Ref.ID
		out = append(out, &msg)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeleteAll removes the whole conversation and returns how many messages were deleted.
func (r *firestoreChatRepository) DeleteAll(ctx context.Context, userID string) (int, error) {
	refs, err := r.messages(userID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list chat messages for user '%s': %w", userID, err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	for _, ref := range refs {
		if _, err := bw.Delete(ref); err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to enqueue delete of chat message '%s': %w", ref.ID, err)
		}
	}
	bw.End()
	return len(refs), nil
}
