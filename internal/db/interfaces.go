package db

import (
	"context"

	"github.com/tranki-app/tranki-backend/internal/models"
)

// UserRepository defines the interface for user profile storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByIDs(ctx context.Context, userIDs []string) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error
	FindByEmail(ctx context.Context, email string) ([]*models.User, error)
	FindByNamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error)
}

// EmotionRepository stores emotion records and their per-day averages.
type EmotionRepository interface {
	Create(ctx context.Context, userID string, record *models.EmotionRecord) (string, error)
	GetByID(ctx context.Context, userID, recordID string) (*models.EmotionRecord, error)
	Delete(ctx context.Context, userID, recordID string) error
	List(ctx context.Context, userID string, filter models.EmotionFilter) ([]*models.EmotionRecord, error)
	ListByDate(ctx context.Context, userID, date string) ([]*models.EmotionRecord, error)
	SaveDailyAverage(ctx context.Context, userID string, avg *models.DailyAverage) error
	DeleteDailyAverage(ctx context.Context, userID, date string) error
	ListDailyAverages(ctx context.Context, userID, fromDate string) ([]*models.DailyAverage, error)
}

// ScheduleRepository stores one weekly schedule document per user.
type ScheduleRepository interface {
	Get(ctx context.Context, userID string) (*models.Schedule, error)
	Save(ctx context.Context, schedule *models.Schedule) error
}

// FriendRepository stores friend requests and mirrored friendship documents.
type FriendRepository interface {
	GetRequest(ctx context.Context, fromUserID, toUserID string) (*models.FriendRequest, error)
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	DeleteRequest(ctx context.Context, fromUserID, toUserID string) error
	ListIncoming(ctx context.Context, userID string) ([]*models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]*models.FriendRequest, error)
	// Accept writes both friendship directions, deletes the request and bumps both friendsCount.
	Accept(ctx context.Context, req *models.FriendRequest) error
	// Remove deletes both friendship directions and decrements both friendsCount.
	Remove(ctx context.Context, userID, friendID string) error
	GetFriendship(ctx context.Context, userID, friendID string) (*models.Friendship, error)
	ListFriendships(ctx context.Context, userID string) ([]*models.Friendship, error)
}

// FeedRepository stores shared states with their like and comment arrays.
type FeedRepository interface {
	Create(ctx context.Context, state *models.SharedState) (string, error)
	GetByID(ctx context.Context, stateID string) (*models.SharedState, error)
	Delete(ctx context.Context, state *models.SharedState) error
	ListByUsers(ctx context.Context, userIDs []string, limit int) ([]*models.SharedState, error)
	// AddLike returns ErrAlreadyExists when userID already liked the state.
	AddLike(ctx context.Context, stateID, userID string) error
	// RemoveLike returns ErrNotFound when userID had not liked the state.
	RemoveLike(ctx context.Context, stateID, userID string) error
	AddComment(ctx context.Context, stateID string, comment models.Comment) error
}

// ChatRepository stores the assistant conversation of each user.
type ChatRepository interface {
	Add(ctx context.Context, userID string, msg *models.ChatMessage) (string, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error)
	DeleteAll(ctx context.Context, userID string) (int, error)
}
