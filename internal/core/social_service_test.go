package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranki-app/tranki-backend/internal/models"
)

type socialFixture struct {
	users   *fakeUserRepo
	friends *fakeFriendRepo
	feed    *fakeFeedRepo
	events  *recordingPublisher
	svc     *socialService
	clock   time.Time
}

func newSocialFixture() *socialFixture {
	f := &socialFixture{
		users: newFakeUserRepo(
			&models.User{ID: "ana", Name: "Ana"},
			&models.User{ID: "beto", Name: "Beto"},
			&models.User{ID: "caro", Name: "Caro"},
		),
		events: &recordingPublisher{},
		clock:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.friends = newFakeFriendRepo(f.users)
	f.feed = newFakeFeedRepo(f.users)
	f.svc = NewSocialService(f.users, f.friends, f.feed, f.events, testLogger()).(*socialService)
	f.svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Minute)
		return f.clock
	}
	return f
}

func (f *socialFixture) befriend(t *testing.T, a, b string) {
	t.Helper()
	_, _, err := f.svc.SendFriendRequest(context.Background(), a, b)
	require.NoError(t, err)
	require.NoError(t, f.svc.AcceptFriendRequest(context.Background(), b, a))
}

func TestSendFriendRequestValidation(t *testing.T) {
	f := newSocialFixture()
	ctx := context.Background()

	_, _, err := f.svc.SendFriendRequest(ctx, "ana", "ana")
	assert.ErrorIs(t, err, ErrSelfFriendRequest)

	_, _, err = f.svc.SendFriendRequest(ctx, "ana", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	req, accepted, err := f.svc.SendFriendRequest(ctx, "ana", "beto")
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.Equal(t, "ana_beto", req.ID)
	assert.Equal(t, "Ana", req.FromName)
	assert.Equal(t, models.FriendRequestPending, req.Status)

	_, _, err = f.svc.SendFriendRequest(ctx, "ana", "beto")
	assert.ErrorIs(t, err, ErrFriendRequestExists)

	require.NoError(t, f.svc.AcceptFriendRequest(ctx, "beto", "ana"))
	_, _, err = f.svc.SendFriendRequest(ctx, "beto", "ana")
	assert.ErrorIs(t, err, ErrAlreadyFriends)
}

func TestSendFriendRequestAcceptsReverse(t *testing.T) {
	f := newSocialFixture()
	ctx := context.Background()

	_, _, err := f.svc.SendFriendRequest(ctx, "ana", "beto")
	require.NoError(t, err)

	_, accepted, err := f.svc.SendFriendRequest(ctx, "beto", "ana")
	require.NoError(t, err)
	assert.True(t, accepted)
	assert.Empty(t, f.friends.requests)
	assert.Contains(t, f.friends.friendships, "ana_beto")
	assert.Contains(t, f.friends.friendships, "beto_ana")
	assert.Equal(t, []string{models.EventFriendRequestSent, models.EventFriendRequestAccepted}, f.events.types())
}

func TestAcceptRejectAndRemove(t *testing.T) {
	f := newSocialFixture()
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.AcceptFriendRequest(ctx, "beto", "ana"), ErrFriendRequestNotFound)

	f.befriend(t, "ana", "beto")
	assert.Equal(t, 1, f.users.users["ana"].FriendsCount)
	assert.Equal(t, 1, f.users.users["beto"].FriendsCount)

	friends, err := f.svc.ListFriends(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "beto", friends[0].FriendID)
	assert.Equal(t, "Beto", friends[0].FriendName)

	_, _, err = f.svc.SendFriendRequest(ctx, "caro", "ana")
	require.NoError(t, err)
	incoming, err := f.svc.ListIncomingRequests(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	outgoing, err := f.svc.ListOutgoingRequests(ctx, "caro")
	require.NoError(t, err)
	require.Len(t, outgoing, 1)

	require.NoError(t, f.svc.RejectFriendRequest(ctx, "ana", "caro"))
	assert.ErrorIs(t, f.svc.RejectFriendRequest(ctx, "ana", "caro"), ErrFriendRequestNotFound)

	require.NoError(t, f.svc.RemoveFriend(ctx, "beto", "ana"))
	assert.Empty(t, f.friends.friendships)
	assert.Zero(t, f.users.users["ana"].FriendsCount)
	assert.ErrorIs(t, f.svc.RemoveFriend(ctx, "beto", "ana"), ErrFriendshipNotFound)
}

func TestShareStateAndFeed(t *testing.T) {
	f := newSocialFixture()
	ctx := context.Background()
	f.befriend(t, "ana", "beto")

	s1, err := f.svc.ShareState(ctx, "ana", models.ShareStateRequest{EmotionID: models.EmotionTranki, Message: " Día tranquilo "})
	require.NoError(t, err)
	assert.Equal(t, 3, s1.Value)
	assert.Equal(t, "Día tranquilo", s1.Message)
	assert.Equal(t, 1, f.users.users["ana"].SharedStatesCount)

	s2, err := f.svc.ShareState(ctx, "beto", models.ShareStateRequest{EmotionID: models.EmotionStressed})
	require.NoError(t, err)
	_, err = f.svc.ShareState(ctx, "caro", models.ShareStateRequest{EmotionID: models.EmotionNeutral})
	require.NoError(t, err)

	_, err = f.svc.ShareState(ctx, "ana", models.ShareStateRequest{EmotionID: "meh"})
	assert.ErrorIs(t, err, ErrInvalidEmotion)

	feed, err := f.svc.GetFeed(ctx, "ana", 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, s2.ID, feed[0].ID, "newest first")
	assert.Equal(t, s1.ID, feed[1].ID)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, models.EventStateShared, last.Type)
	assert.ElementsMatch(t, []string{"caro"}, last.Recipients)

	shared := f.events.events[len(f.events.events)-3]
	assert.ElementsMatch(t, []string{"ana", "beto"}, shared.Recipients)
}

func TestLikeUnlikeComment(t *testing.T) {
	f := newSocialFixture()
	ctx := context.Background()
	f.befriend(t, "ana", "beto")

	state, err := f.svc.ShareState(ctx, "ana", models.ShareStateRequest{EmotionID: models.EmotionNeutral})
	require.NoError(t, err)

	require.NoError(t, f.svc.LikeState(ctx, "beto", state.ID))
	assert.Equal(t, []string{"beto"}, f.feed.states[state.ID].Likes)
	assert.Equal(t, 1, f.users.users["ana"].ReceivedLikesCount)
	assert.ErrorIs(t, f.svc.LikeState(ctx, "beto", state.ID), ErrAlreadyLiked)
	assert.Equal(t, 1, f.users.users["ana"].ReceivedLikesCount)

	assert.ErrorIs(t, f.svc.LikeState(ctx, "caro", state.ID), ErrNotAllowed)
	assert.ErrorIs(t, f.svc.LikeState(ctx, "beto", "missing"), ErrSharedStateNotFound)

	require.NoError(t, f.svc.UnlikeState(ctx, "beto", state.ID))
	assert.Empty(t, f.feed.states[state.ID].Likes)
	assert.Zero(t, f.users.users["ana"].ReceivedLikesCount)
	assert.ErrorIs(t, f.svc.UnlikeState(ctx, "beto", state.ID), ErrNotLiked)

	comment, err := f.svc.CommentOnState(ctx, "beto", state.ID, "  ¡Ánimo!  ")
	require.NoError(t, err)
	assert.Equal(t, "¡Ánimo!", comment.Text)
	assert.Equal(t, "Beto", comment.UserName)
	assert.NotEmpty(t, comment.ID)
	require.Len(t, f.feed.states[state.ID].Comments, 1)

	_, err = f.svc.CommentOnState(ctx, "beto", state.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyComment)

	last := f.events.events[len(f.events.events)-1]
	assert.Equal(t, models.EventStateCommented, last.Type)
	assert.Equal(t, "ana", last.TargetID)
}

func TestDeleteSharedState(t *testing.T) {
	f := newSocialFixture()
	ctx := context.Background()

	state, err := f.svc.ShareState(ctx, "ana", models.ShareStateRequest{EmotionID: models.EmotionNeutral})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteSharedState(ctx, "beto", state.ID), ErrNotStateOwner)
	require.NoError(t, f.svc.DeleteSharedState(ctx, "ana", state.ID))
	assert.Zero(t, f.users.users["ana"].SharedStatesCount)
	assert.ErrorIs(t, f.svc.DeleteSharedState(ctx, "ana", state.ID), ErrSharedStateNotFound)
}
