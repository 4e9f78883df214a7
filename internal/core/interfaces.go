package core

import (
	"context"
	"io"

	"github.com/tranki-app/tranki-backend/internal/models"
)

// UserService manages user profiles.
type UserService interface {
	// GetOrCreate retrieves a user by ID, creating the profile on first login.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	UploadProfilePicture(ctx context.Context, userID string, file io.Reader) (*models.User, error)
	SearchUsers(ctx context.Context, userID, query string) ([]models.PublicUser, error)
}

// EmotionService records emotions and derives daily averages and insights.
type EmotionService interface {
	RecordEmotion(ctx context.Context, userID string, req models.RecordEmotionRequest) (*models.EmotionRecord, error)
	ListEmotions(ctx context.Context, userID string, filter models.EmotionFilter) ([]*models.EmotionRecord, error)
	GetDailyAverages(ctx context.Context, userID string, days int) ([]*models.DailyAverage, error)
	GetInsights(ctx context.Context, userID string, days int) (*models.Insights, error)
	DeleteEmotion(ctx context.Context, userID, recordID string) error
}

// ScheduleService manages the weekly schedule and its analyses.
type ScheduleService interface {
	GetSchedule(ctx context.Context, userID string) (*models.Schedule, error)
	SaveSchedule(ctx context.Context, userID string, req models.SaveScheduleRequest) (*models.Schedule, error)
	GetFreeSlots(ctx context.Context, userID, day string) ([]models.TimeSlot, error)
	GetSleepAnalysis(ctx context.Context, userID string) (*models.SleepReport, error)
	GetWeeklySummary(ctx context.Context, userID string) ([]models.DaySummary, error)
}

// SocialService manages friendships and the shared-state feed.
type SocialService interface {
	// SendFriendRequest returns accepted=true when a pending reverse request was accepted instead.
	SendFriendRequest(ctx context.Context, fromUserID, toUserID string) (req *models.FriendRequest, accepted bool, err error)
	AcceptFriendRequest(ctx context.Context, userID, fromUserID string) error
	RejectFriendRequest(ctx context.Context, userID, fromUserID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
	ListFriends(ctx context.Context, userID string) ([]*models.Friendship, error)
	ListIncomingRequests(ctx context.Context, userID string) ([]*models.FriendRequest, error)
	ListOutgoingRequests(ctx context.Context, userID string) ([]*models.FriendRequest, error)

	ShareState(ctx context.Context, userID string, req models.ShareStateRequest) (*models.SharedState, error)
	GetFeed(ctx context.Context, userID string, limit int) ([]*models.SharedState, error)
	LikeState(ctx context.Context, userID, stateID string) error
	UnlikeState(ctx context.Context, userID, stateID string) error
	CommentOnState(ctx context.Context, userID, stateID, text string) (*models.Comment, error)
	DeleteSharedState(ctx context.Context, userID, stateID string) error
}

// ChatService runs the wellness assistant conversation.
type ChatService interface {
	SendMessage(ctx context.Context, userID, text string) (*models.ChatMessage, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]*models.ChatMessage, error)
	ClearHistory(ctx context.Context, userID string) (int, error)
}

// PlacesService finds relaxation venues near the user.
type PlacesService interface {
	Nearby(ctx context.Context, query models.NearbyQuery) ([]models.Place, error)
	PlaceDetails(ctx context.Context, placeID string) (*models.PlaceDetails, error)
}

// ImageUploader stores profile pictures with an image host.
type ImageUploader interface {
	// UploadAvatar stores file under publicID and returns its secure URL and the host's public id.
	UploadAvatar(ctx context.Context, file io.Reader, publicID string) (secureURL, storedID string, err error)
}

// ChatCompleter calls a chat-completions model.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}

// PlacesProvider queries an upstream places API.
type PlacesProvider interface {
	Nearby(ctx context.Context, location models.Location, radius int, placeType, keyword string) ([]models.Place, error)
	Details(ctx context.Context, placeID string) (*models.PlaceDetails, error)
}

// TextCipher encrypts values stored at rest.
type TextCipher interface {
	Encrypt(plainText string) (string, error)
	Decrypt(cipherText string) (string, error)
}

// EventPublisher delivers social events to notification channels. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event models.SocialEvent)
}

// Publishers fans an event out to several publishers.
type Publishers []EventPublisher

func (p Publishers) Publish(ctx context.Context, event models.SocialEvent) {
	for _, pub := range p {
		pub.Publish(ctx, event)
	}
}
