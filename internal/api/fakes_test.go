package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"firebase.google.com/go/v4/auth"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const testToken = "valid-token"

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != testToken {
		return nil, errors.New("invalid token")
	}
	return &auth.Token{UID: "user-1", Claims: map[string]interface{}{"email": "ana@example.com", "name": "Ana"}}, nil
}

// Fake services call the funcs each test sets; unset funcs panic.
type fakeUserService struct {
	getOrCreate func(uid, email, name, photo string) (*models.User, bool, error)
	getByID     func(uid string) (*models.User, error)
	update      func(uid string, req models.UpdateProfileRequest) (*models.User, error)
	upload      func(uid string, file io.Reader) (*models.User, error)
	search      func(uid, q string) ([]models.PublicUser, error)
}

func (f *fakeUserService) GetOrCreate(_ context.Context, uid, email, name, photo string) (*models.User, bool, error) {
	return f.getOrCreate(uid, email, name, photo)
}
func (f *fakeUserService) GetByID(_ context.Context, uid string) (*models.User, error) {
	return f.getByID(uid)
}
func (f *fakeUserService) UpdateProfile(_ context.Context, uid string, req models.UpdateProfileRequest) (*models.User, error) {
	return f.update(uid, req)
}
func (f *fakeUserService) UploadProfilePicture(_ context.Context, uid string, file io.Reader) (*models.User, error) {
	return f.upload(uid, file)
}
func (f *fakeUserService) SearchUsers(_ context.Context, uid, q string) ([]models.PublicUser, error) {
	return f.search(uid, q)
}

type fakeEmotionService struct {
	record   func(uid string, req models.RecordEmotionRequest) (*models.EmotionRecord, error)
	list     func(uid string, f models.EmotionFilter) ([]*models.EmotionRecord, error)
	averages func(uid string, days int) ([]*models.DailyAverage, error)
	insights func(uid string, days int) (*models.Insights, error)
	del      func(uid, id string) error
}

func (f *fakeEmotionService) RecordEmotion(_ context.Context, uid string, req models.RecordEmotionRequest) (*models.EmotionRecord, error) {
	return f.record(uid, req)
}
func (f *fakeEmotionService) ListEmotions(_ context.Context, uid string, filter models.EmotionFilter) ([]*models.EmotionRecord, error) {
	return f.list(uid, filter)
}
func (f *fakeEmotionService) GetDailyAverages(_ context.Context, uid string, days int) ([]*models.DailyAverage, error) {
	return f.averages(uid, days)
}
func (f *fakeEmotionService) GetInsights(_ context.Context, uid string, days int) (*models.Insights, error) {
	return f.insights(uid, days)
}
func (f *fakeEmotionService) DeleteEmotion(_ context.Context, uid, id string) error {
	return f.del(uid, id)
}

type fakeScheduleService struct {
	get       func(uid string) (*models.Schedule, error)
	save      func(uid string, req models.SaveScheduleRequest) (*models.Schedule, error)
	freeSlots func(uid, day string) ([]models.TimeSlot, error)
	sleep     func(uid string) (*models.SleepReport, error)
	summary   func(uid string) ([]models.DaySummary, error)
}

func (f *fakeScheduleService) GetSchedule(_ context.Context, uid string) (*models.Schedule, error) {
	return f.get(uid)
}
func (f *fakeScheduleService) SaveSchedule(_ context.Context, uid string, req models.SaveScheduleRequest) (*models.Schedule, error) {
	return f.save(uid, req)
}
func (f *fakeScheduleService) GetFreeSlots(_ context.Context, uid, day string) ([]models.TimeSlot, error) {
	return f.freeSlots(uid, day)
}
func (f *fakeScheduleService) GetSleepAnalysis(_ context.Context, uid string) (*models.SleepReport, error) {
	return f.sleep(uid)
}
func (f *fakeScheduleService) GetWeeklySummary(_ context.Context, uid string) ([]models.DaySummary, error) {
	return f.summary(uid)
}

type fakeSocialService struct {
	sendRequest func(from, to string) (*models.FriendRequest, bool, error)
	accept      func(uid, from string) error
	reject      func(uid, from string) error
	remove      func(uid, friend string) error
	friends     func(uid string) ([]*models.Friendship, error)
	incoming    func(uid string) ([]*models.FriendRequest, error)
	outgoing    func(uid string) ([]*models.FriendRequest, error)
	share       func(uid string, req models.ShareStateRequest) (*models.SharedState, error)
	feed        func(uid string, limit int) ([]*models.SharedState, error)
	like        func(uid, id string) error
	unlike      func(uid, id string) error
	comment     func(uid, id, text string) (*models.Comment, error)
	deleteState func(uid, id string) error
}

func (f *fakeSocialService) SendFriendRequest(_ context.Context, from, to string) (*models.FriendRequest, bool, error) {
	return f.sendRequest(from, to)
}
func (f *fakeSocialService) AcceptFriendRequest(_ context.Context, uid, from string) error {
	return f.accept(uid, from)
}
func (f *fakeSocialService) RejectFriendRequest(_ context.Context, uid, from string) error {
	return f.reject(uid, from)
}
func (f *fakeSocialService) RemoveFriend(_ context.Context, uid, friend string) error {
	return f.remove(uid, friend)
}
func (f *fakeSocialService) ListFriends(_ context.Context, uid string) ([]*models.Friendship, error) {
	return f.friends(uid)
}
func (f *fakeSocialService) ListIncomingRequests(_ context.Context, uid string) ([]*models.FriendRequest, error) {
	return f.incoming(uid)
}
func (f *fakeSocialService) ListOutgoingRequests(_ context.Context, uid string) ([]*models.FriendRequest, error) {
	return f.outgoing(uid)
}
func (f *fakeSocialService) ShareState(_ context.Context, uid string, req models.ShareStateRequest) (*models.SharedState, error) {
	return f.share(uid, req)
}
func (f *fakeSocialService) GetFeed(_ context.Context, uid string, limit int) ([]*models.SharedState, error) {
	return f.feed(uid, limit)
}
func (f *fakeSocialService) LikeState(_ context.Context, uid, id string) error {
	return f.like(uid, id)
}
func (f *fakeSocialService) UnlikeState(_ context.Context, uid, id string) error {
	return f.unlike(uid, id)
}
func (f *fakeSocialService) CommentOnState(_ context.Context, uid, id, text string) (*models.Comment, error) {
	return f.comment(uid, id, text)
}
func (f *fakeSocialService) DeleteSharedState(_ context.Context, uid, id string) error {
	return f.deleteState(uid, id)
}

type fakeChatService struct {
	send    func(uid, text string) (*models.ChatMessage, error)
	history func(uid string, limit int) ([]*models.ChatMessage, error)
	clear   func(uid string) (int, error)
}

func (f *fakeChatService) SendMessage(_ context.Context, uid, text string) (*models.ChatMessage, error) {
	return f.send(uid, text)
}
func (f *fakeChatService) GetHistory(_ context.Context, uid string, limit int) ([]*models.ChatMessage, error) {
	return f.history(uid, limit)
}
func (f *fakeChatService) ClearHistory(_ context.Context, uid string) (int, error) {
	return f.clear(uid)
}

type fakePlacesService struct {
	nearby  func(q models.NearbyQuery) ([]models.Place, error)
	details func(id string) (*models.PlaceDetails, error)
}

func (f *fakePlacesService) Nearby(_ context.Context, q models.NearbyQuery) ([]models.Place, error) {
	return f.nearby(q)
}
func (f *fakePlacesService) PlaceDetails(_ context.Context, id string) (*models.PlaceDetails, error) {
	return f.details(id)
}

type fakeStreamer struct{ userID string }

func (f *fakeStreamer) ServeWS(w http.ResponseWriter, _ *http.Request, userID string) error {
	f.userID = userID
	w.WriteHeader(http.StatusOK)
	return nil
}
