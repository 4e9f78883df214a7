package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	maxStateMessageLength = 280
	maxCommentLength      = 500
	// DefaultFeedLimit and MaxFeedLimit bound GetFeed.
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

type socialService struct {
	userRepo   db.UserRepository
	friendRepo db.FriendRepository
	feedRepo   db.FeedRepository
	publisher  EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewSocialService creates a SocialService. publisher may be nil.
func NewSocialService(userRepo db.UserRepository, friendRepo db.FriendRepository, feedRepo db.FeedRepository, publisher EventPublisher, logger *zap.Logger) SocialService {
	if publisher == nil {
		publisher = Publishers{}
	}
	return &socialService{
		userRepo:   userRepo,
		friendRepo: friendRepo,
		feedRepo:   feedRepo,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *socialService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return user, nil
}

func (s *socialService) areFriends(ctx context.Context, userID, otherID string) (bool, error) {
	_, err := s.friendRepo.GetFriendship(ctx, userID, otherID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check friendship %s: %w", db.FriendshipID(userID, otherID), err)
	}
}

func (s *socialService) friendIDs(ctx context.Context, userID string) ([]string, error) {
	friendships, err := s.friendRepo.ListFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends of user '%s': %w", userID, err)
	}
	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		ids = append(ids, f.FriendID)
	}
	return ids, nil
}

// audience is the owner plus the owner's friends: everyone whose feed shows the owner's states.
func (s *socialService) audience(ctx context.Context, ownerID string) []string {
	ids, err := s.friendIDs(ctx, ownerID)
	if err != nil {
		s.logger.Warn("Failed to resolve event audience", zap.String("userID", ownerID), zap.Error(err))
		return []string{ownerID}
	}
	return append(ids, ownerID)
}

func (s *socialService) publish(ctx context.Context, event models.SocialEvent) {
	event.OccurredAt = s.now().UTC()
	s.publisher.Publish(ctx, event)
}

// SendFriendRequest creates a pending request. When the target already sent one
// to the caller, that request is accepted instead.
func (s *socialService) SendFriendRequest(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, bool, error) {
	if fromUserID == toUserID {
		return nil, false, ErrSelfFriendRequest
	}
	target, err := s.getUser(ctx, toUserID)
	if err != nil {
		return nil, false, err
	}
	sender, err := s.getUser(ctx, fromUserID)
	if err != nil {
		return nil, false, err
	}

	friends, err := s.areFriends(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, false, err
	}
	if friends {
		return nil, false, ErrAlreadyFriends
	}

	reverse, err := s.friendRepo.GetRequest(ctx, toUserID, fromUserID)
	if err == nil {
		if err := s.acceptRequest(ctx, reverse); err != nil {
			return nil, false, err
		}
		return reverse, true, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to check reverse friend request: %w", err)
	}

	req := &models.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		FromName:   sender.Name,
		ToName:     target.Name,
		Status:     models.FriendRequestPending,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, false, ErrFriendRequestExists
		}
		return nil, false, fmt.Errorf("failed to create friend request: %w", err)
	}

	s.publish(ctx, models.SocialEvent{
		Type:       models.EventFriendRequestSent,
		ActorID:    fromUserID,
		ActorName:  sender.Name,
		TargetID:   toUserID,
		Recipients: []string{toUserID},
	})
	return req, false, nil
}

func (s *socialService) acceptRequest(ctx context.Context, req *models.FriendRequest) error {
	if err := s.friendRepo.Accept(ctx, req); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrFriendRequestNotFound
		}
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	s.logger.Info("Friendship created", zap.String("userID", req.ToUserID), zap.String("friendID", req.FromUserID))
	s.publish(ctx, models.SocialEvent{
		Type:       models.EventFriendRequestAccepted,
		ActorID:    req.ToUserID,
		ActorName:  req.ToName,
		TargetID:   req.FromUserID,
		Recipients: []string{req.FromUserID, req.ToUserID},
	})
	return nil
}

// AcceptFriendRequest accepts the pending request fromUserID sent to userID.
func (s *socialService) AcceptFriendRequest(ctx context.Context, userID, fromUserID string) error {
	req, err := s.friendRepo.GetRequest(ctx, fromUserID, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrFriendRequestNotFound
		}
		return fmt.Errorf("failed to get friend request: %w", err)
	}
	return s.acceptRequest(ctx, req)
}

func (s *socialService) RejectFriendRequest(ctx context.Context, userID, fromUserID string) error {
	req, err := s.friendRepo.GetRequest(ctx, fromUserID, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrFriendRequestNotFound
		}
		return fmt.Errorf("failed to get friend request: %w", err)
	}
	if err := s.friendRepo.DeleteRequest(ctx, fromUserID, userID); err != nil {
		return fmt.Errorf("failed to reject friend request: %w", err)
	}
	s.publish(ctx, models.SocialEvent{
		Type:      models.EventFriendRequestRejected,
		ActorID:   userID,
		ActorName: req.ToName,
		TargetID:  fromUserID,
	})
	return nil
}

func (s *socialService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if err := s.friendRepo.Remove(ctx, userID, friendID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrFriendshipNotFound
		}
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	s.publish(ctx, models.SocialEvent{
		Type:       models.EventFriendRemoved,
		ActorID:    userID,
		TargetID:   friendID,
		Recipients: []string{userID, friendID},
	})
	return nil
}

func (s *socialService) ListFriends(ctx context.Context, userID string) ([]*models.Friendship, error) {
	friendships, err := s.friendRepo.ListFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends of user '%s': %w", userID, err)
	}
	if friendships == nil {
		friendships = []*models.Friendship{}
	}
	return friendships, nil
}

func (s *socialService) ListIncomingRequests(ctx context.Context, userID string) ([]*models.FriendRequest, error) {
	reqs, err := s.friendRepo.ListIncoming(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming requests of user '%s': %w", userID, err)
	}
	if reqs == nil {
		reqs = []*models.FriendRequest{}
	}
	return reqs, nil
}

func (s *socialService) ListOutgoingRequests(ctx context.Context, userID string) ([]*models.FriendRequest, error) {
	reqs, err := s.friendRepo.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing requests of user '%s': %w", userID, err)
	}
	if reqs == nil {
		reqs = []*models.FriendRequest{}
	}
	return reqs, nil
}

// ShareState publishes an emotion to the user's friends.
func (s *socialService) ShareState(ctx context.Context, userID string, req models.ShareStateRequest) (*models.SharedState, error) {
	value, ok := models.EmotionValues[req.EmotionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEmotion, req.EmotionID)
	}
	message := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(message) > maxStateMessageLength {
		return nil, fmt.Errorf("%w: message must be at most %d characters", ErrInvalidEmotion, maxStateMessageLength)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	state := &models.SharedState{
		UserID:    userID,
		UserName:  user.Name,
		EmotionID: req.EmotionID,
		Value:     value,
		Message:   message,
		Likes:     []string{},
		Comments:  []models.Comment{},
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.feedRepo.Create(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to share state: %w", err)
	}

	s.publish(ctx, models.SocialEvent{
		Type:       models.EventStateShared,
		ActorID:    userID,
		ActorName:  user.Name,
		TargetID:   userID,
		StateID:    state.ID,
		Text:       message,
		Recipients: s.audience(ctx, userID),
	})
	return state, nil
}

// GetFeed returns the newest states of the user and their friends.
func (s *socialService) GetFeed(ctx context.Context, userID string, limit int) ([]*models.SharedState, error) {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}
	ids, err := s.friendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids = append(ids, userID)

	states, err := s.feedRepo.ListByUsers(ctx, ids, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed of user '%s': %w", userID, err)
	}
	if states == nil {
		states = []*models.SharedState{}
	}
	return states, nil
}

// visibleState loads a state the user may interact with: their own or a friend's.
func (s *socialService) visibleState(ctx context.Context, userID, stateID string) (*models.SharedState, error) {
	state, err := s.feedRepo.GetByID(ctx, stateID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrSharedStateNotFound
		}
		return nil, fmt.Errorf("failed to get shared state '%s': %w", stateID, err)
	}
	if state.UserID == userID {
		return state, nil
	}
	friends, err := s.areFriends(ctx, userID, state.UserID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, ErrNotAllowed
	}
	return state, nil
}

func (s *socialService) LikeState(ctx context.Context, userID, stateID string) error {
	state, err := s.visibleState(ctx, userID, stateID)
	if err != nil {
		return err
	}
	if err := s.feedRepo.AddLike(ctx, stateID, userID); err != nil {
		switch {
		case errors.Is(err, db.ErrAlreadyExists):
			return ErrAlreadyLiked
		case errors.Is(err, db.ErrNotFound):
			return ErrSharedStateNotFound
		}
		return fmt.Errorf("failed to like shared state '%s': %w", stateID, err)
	}

	s.publish(ctx, models.SocialEvent{
		Type:       models.EventStateLiked,
		ActorID:    userID,
		ActorName:  s.displayName(ctx, userID),
		TargetID:   state.UserID,
		StateID:    stateID,
		Recipients: s.audience(ctx, state.UserID),
	})
	return nil
}

func (s *socialService) UnlikeState(ctx context.Context, userID, stateID string) error {
	state, err := s.visibleState(ctx, userID, stateID)
	if err != nil {
		return err
	}
	if err := s.feedRepo.RemoveLike(ctx, stateID, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrNotLiked
		}
		return fmt.Errorf("failed to unlike shared state '%s': %w", stateID, err)
	}

	s.publish(ctx, models.SocialEvent{
		Type:       models.EventStateUnliked,
		ActorID:    userID,
		TargetID:   state.UserID,
		StateID:    stateID,
		Recipients: s.audience(ctx, state.UserID),
	})
	return nil
}

func (s *socialService) CommentOnState(ctx context.Context, userID, stateID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment must be at most %d characters", ErrEmptyComment, maxCommentLength)
	}
	state, err := s.visibleState(ctx, userID, stateID)
	if err != nil {
		return nil, err
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  user.Name,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.feedRepo.AddComment(ctx, stateID, comment); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrSharedStateNotFound
		}
		return nil, fmt.Errorf("failed to comment on shared state '%s': %w", stateID, err)
	}

	s.publish(ctx, models.SocialEvent{
		Type:       models.EventStateCommented,
		ActorID:    userID,
		ActorName:  user.Name,
		TargetID:   state.UserID,
		StateID:    stateID,
		Text:       text,
		Recipients: s.audience(ctx, state.UserID),
	})
	return &comment, nil
}

// DeleteSharedState removes a state; only its author may do so.
func (s *socialService) DeleteSharedState(ctx context.Context, userID, stateID string) error {
	state, err := s.feedRepo.GetByID(ctx, stateID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return ErrSharedStateNotFound
		}
		return fmt.Errorf("failed to get shared state '%s': %w", stateID, err)
	}
	if state.UserID != userID {
		return ErrNotStateOwner
	}
	if err := s.feedRepo.Delete(ctx, state); err != nil {
		return fmt.Errorf("failed to delete shared state '%s': %w", stateID, err)
	}

	s.publish(ctx, models.SocialEvent{
		Type:       models.EventStateDeleted,
		ActorID:    userID,
		TargetID:   userID,
		StateID:    stateID,
		Recipients: s.audience(ctx, userID),
	})
	return nil
}

func (s *socialService) displayName(ctx context.Context, userID string) string {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Name
}
