package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/models"
	"github.com/tranki-app/tranki-backend/pkg/messagequeue"
)

type fakeQueue struct {
	published map[string][][]byte
	err       error
}

func (q *fakeQueue) Publish(_ context.Context, queueName string, body []byte) error {
	if q.err != nil {
		return q.err
	}
	if q.published == nil {
		q.published = map[string][][]byte{}
	}
	q.published[queueName] = append(q.published[queueName], body)
	return nil
}

func (q *fakeQueue) Consume(context.Context, string, messagequeue.Handler) error { return nil }
func (q *fakeQueue) Close() error                                                { return nil }

type fakeUsers struct {
	db.UserRepository
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, db.ErrNotFound)
	}
	return u, nil
}

type sentEmail struct{ to, subject, body string }

type fakeSender struct {
	sent []sentEmail
	err  error
}

func (s *fakeSender) SendEmail(recipient, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{recipient, subject, body})
	return nil
}

func TestQueuePublisher(t *testing.T) {
	q := &fakeQueue{}
	p := NewQueuePublisher(q, "tranki.social", zap.NewNop())

	p.Publish(context.Background(), models.SocialEvent{
		Type: models.EventFriendRequestSent, ActorID: "a", TargetID: "b", Recipients: []string{"b"},
	})
	p.Publish(context.Background(), models.SocialEvent{Type: models.EventStateShared, ActorID: "a", TargetID: "a"})
	p.Publish(context.Background(), models.SocialEvent{Type: models.EventStateLiked, ActorID: "a", TargetID: "a"})

	require.Len(t, q.published["tranki.social"], 1)
	var got models.SocialEvent
	require.NoError(t, json.Unmarshal(q.published["tranki.social"][0], &got))
	assert.Equal(t, models.EventFriendRequestSent, got.Type)
	assert.Equal(t, "b", got.TargetID)
	assert.Empty(t, got.Recipients)
}

func TestQueuePublisherSwallowsErrors(t *testing.T) {
	q := &fakeQueue{err: errors.New("broker down")}
	p := NewQueuePublisher(q, "tranki.social", zap.NewNop())
	assert.NotPanics(t, func() {
		p.Publish(context.Background(), models.SocialEvent{Type: models.EventStateLiked, ActorID: "a", TargetID: "b"})
	})
}

func encode(t *testing.T, e models.SocialEvent) []byte {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return b
}

func TestNotifierHandle(t *testing.T) {
	users := &fakeUsers{users: map[string]*models.User{
		"bob": {ID: "bob", Name: "Bob", Email: "bob@example.com"},
	}}
	sender := &fakeSender{}
	n := NewNotifier(users, sender, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, encode(t, models.SocialEvent{
		Type: models.EventStateCommented, ActorID: "ana", ActorName: "Ana <3", TargetID: "bob", Text: "<b>ánimo</b>",
	})))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "bob@example.com", sender.sent[0].to)
	assert.Equal(t, "Nuevo comentario en tu estado", sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, "Ana &lt;3")
	assert.Contains(t, sender.sent[0].body, "&lt;b&gt;ánimo&lt;/b&gt;")

	t.Run("events without email are skipped", func(t *testing.T) {
		require.NoError(t, n.Handle(ctx, encode(t, models.SocialEvent{Type: models.EventStateUnliked, ActorID: "ana", TargetID: "bob"})))
		assert.Len(t, sender.sent, 1)
	})

	t.Run("malformed body is dropped", func(t *testing.T) {
		assert.NoError(t, n.Handle(ctx, []byte("{not json")))
	})

	t.Run("unknown target is dropped", func(t *testing.T) {
		assert.NoError(t, n.Handle(ctx, encode(t, models.SocialEvent{Type: models.EventStateLiked, ActorID: "ana", TargetID: "ghost"})))
		assert.Len(t, sender.sent, 1)
	})
}

func TestNotifierRetriesOnFailure(t *testing.T) {
	event := models.SocialEvent{Type: models.EventFriendRequestSent, ActorID: "ana", TargetID: "bob"}

	n := NewNotifier(&fakeUsers{err: errors.New("firestore unavailable")}, &fakeSender{}, zap.NewNop())
	assert.Error(t, n.Handle(context.Background(), encode(t, event)))

	users := &fakeUsers{users: map[string]*models.User{"bob": {ID: "bob", Email: "bob@example.com"}}}
	n = NewNotifier(users, &fakeSender{err: errors.New("smtp timeout")}, zap.NewNop())
	assert.Error(t, n.Handle(context.Background(), encode(t, event)))
}
