package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/models"
)

var errBoom = errors.New("boom")

func testLogger() *zap.Logger { return zap.NewNop() }

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, db.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, err := r.GetByID(ctx, id); err == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if _, ok := r.users[u.ID]; ok {
		return db.ErrAlreadyExists
	}
	u.NameLower = strings.ToLower(u.Name)
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	u, ok := r.users[id]
	if !ok {
		return db.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
			u.NameLower = strings.ToLower(u.Name)
		case "age":
			u.Age = v.(int)
		case "role":
			u.Role = v.(string)
		case "profilePicture":
			u.ProfilePicture = v.(string)
		case "profilePicturePublicId":
			u.ProfilePicturePublicID = v.(string)
		}
	}
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if u.Email == email {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByNamePrefix(_ context.Context, prefix string, limit int) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if strings.HasPrefix(strings.ToLower(u.Name), strings.ToLower(prefix)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeEmotionRepo struct {
	records  map[string]*models.EmotionRecord
	averages map[string]*models.DailyAverage
	nextID   int
	saveErr  error
}

func newFakeEmotionRepo() *fakeEmotionRepo {
	return &fakeEmotionRepo{records: map[string]*models.EmotionRecord{}, averages: map[string]*models.DailyAverage{}}
}

func (r *fakeEmotionRepo) Create(_ context.Context, _ string, rec *models.EmotionRecord) (string, error) {
	r.nextID++
	rec.ID = fmt.Sprintf("e%d", r.nextID)
	cp := *rec
	r.records[rec.ID] = &cp
	return rec.ID, nil
}

func (r *fakeEmotionRepo) GetByID(_ context.Context, _, id string) (*models.EmotionRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return rec, nil
}

func (r *fakeEmotionRepo) Delete(_ context.Context, _, id string) error {
	delete(r.records, id)
	return nil
}

func (r *fakeEmotionRepo) List(_ context.Context, _ string, f models.EmotionFilter) ([]*models.EmotionRecord, error) {
	var out []*models.EmotionRecord
	for _, rec := range r.records {
		if (f.From == "" || rec.Date >= f.From) && (f.To == "" || rec.Date <= f.To) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *fakeEmotionRepo) ListByDate(ctx context.Context, uid, date string) ([]*models.EmotionRecord, error) {
	return r.List(ctx, uid, models.EmotionFilter{From: date, To: date})
}

func (r *fakeEmotionRepo) SaveDailyAverage(_ context.Context, _ string, avg *models.DailyAverage) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.averages[avg.Date] = avg
	return nil
}

func (r *fakeEmotionRepo) DeleteDailyAverage(_ context.Context, _, date string) error {
	delete(r.averages, date)
	return nil
}

func (r *fakeEmotionRepo) ListDailyAverages(_ context.Context, _, from string) ([]*models.DailyAverage, error) {
	var out []*models.DailyAverage
	for _, a := range r.averages {
		if a.Date >= from {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

type fakeScheduleRepo struct {
	schedules map[string]*models.Schedule
	getErr    error
}

func (r *fakeScheduleRepo) Get(_ context.Context, uid string) (*models.Schedule, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.schedules[uid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return s, nil
}

func (r *fakeScheduleRepo) Save(_ context.Context, s *models.Schedule) error {
	if r.schedules == nil {
		r.schedules = map[string]*models.Schedule{}
	}
	r.schedules[s.UserID] = s
	return nil
}

type fakeFriendRepo struct {
	users       *fakeUserRepo
	requests    map[string]*models.FriendRequest
	friendships map[string]*models.Friendship
}

func newFakeFriendRepo(users *fakeUserRepo) *fakeFriendRepo {
	return &fakeFriendRepo{users: users, requests: map[string]*models.FriendRequest{}, friendships: map[string]*models.Friendship{}}
}

func (r *fakeFriendRepo) GetRequest(_ context.Context, from, to string) (*models.FriendRequest, error) {
	req, ok := r.requests[db.RequestID(from, to)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return req, nil
}

func (r *fakeFriendRepo) CreateRequest(_ context.Context, req *models.FriendRequest) error {
	id := db.RequestID(req.FromUserID, req.ToUserID)
	if _, ok := r.requests[id]; ok {
		return db.ErrAlreadyExists
	}
	req.ID = id
	r.requests[id] = req
	return nil
}

func (r *fakeFriendRepo) DeleteRequest(_ context.Context, from, to string) error {
	delete(r.requests, db.RequestID(from, to))
	return nil
}

func (r *fakeFriendRepo) listRequests(match func(*models.FriendRequest) bool) []*models.FriendRequest {
	var out []*models.FriendRequest
	for _, req := range r.requests {
		if match(req) {
			out = append(out, req)
		}
	}
	return out
}

func (r *fakeFriendRepo) ListIncoming(_ context.Context, uid string) ([]*models.FriendRequest, error) {
	return r.listRequests(func(req *models.FriendRequest) bool { return req.ToUserID == uid }), nil
}

func (r *fakeFriendRepo) ListOutgoing(_ context.Context, uid string) ([]*models.FriendRequest, error) {
	return r.listRequests(func(req *models.FriendRequest) bool { return req.FromUserID == uid }), nil
}

func (r *fakeFriendRepo) Accept(_ context.Context, req *models.FriendRequest) error {
	id := db.RequestID(req.FromUserID, req.ToUserID)
	if _, ok := r.requests[id]; !ok {
		return db.ErrNotFound
	}
	r.friendships[db.FriendshipID(req.FromUserID, req.ToUserID)] = &models.Friendship{UserID: req.FromUserID, FriendID: req.ToUserID, FriendName: req.ToName}
	r.friendships[db.FriendshipID(req.ToUserID, req.FromUserID)] = &models.Friendship{UserID: req.ToUserID, FriendID: req.FromUserID, FriendName: req.FromName}
	delete(r.requests, id)
	r.users.users[req.FromUserID].FriendsCount++
	r.users.users[req.ToUserID].FriendsCount++
	return nil
}

func (r *fakeFriendRepo) Remove(_ context.Context, uid, fid string) error {
	if _, ok := r.friendships[db.FriendshipID(uid, fid)]; !ok {
		return db.ErrNotFound
	}
	delete(r.friendships, db.FriendshipID(uid, fid))
	delete(r.friendships, db.FriendshipID(fid, uid))
	r.users.users[uid].FriendsCount--
	r.users.users[fid].FriendsCount--
	return nil
}

func (r *fakeFriendRepo) GetFriendship(_ context.Context, uid, fid string) (*models.Friendship, error) {
	f, ok := r.friendships[db.FriendshipID(uid, fid)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return f, nil
}

func (r *fakeFriendRepo) ListFriendships(_ context.Context, uid string) ([]*models.Friendship, error) {
	var out []*models.Friendship
	for _, f := range r.friendships {
		if f.UserID == uid {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FriendID < out[j].FriendID })
	return out, nil
}

type fakeFeedRepo struct {
	users  *fakeUserRepo
	states map[string]*models.SharedState
	nextID int
}

func newFakeFeedRepo(users *fakeUserRepo) *fakeFeedRepo {
	return &fakeFeedRepo{users: users, states: map[string]*models.SharedState{}}
}

func (r *fakeFeedRepo) Create(_ context.Context, s *models.SharedState) (string, error) {
	r.nextID++
	s.ID = fmt.Sprintf("s%d", r.nextID)
	r.states[s.ID] = s
	r.users.users[s.UserID].SharedStatesCount++
	return s.ID, nil
}

func (r *fakeFeedRepo) GetByID(_ context.Context, id string) (*models.SharedState, error) {
	s, ok := r.states[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return s, nil
}

func (r *fakeFeedRepo) Delete(_ context.Context, s *models.SharedState) error {
	delete(r.states, s.ID)
	r.users.users[s.UserID].SharedStatesCount--
	return nil
}

func (r *fakeFeedRepo) ListByUsers(_ context.Context, ids []string, limit int) ([]*models.SharedState, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*models.SharedState
	for _, s := range r.states {
		if want[s.UserID] {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFeedRepo) AddLike(_ context.Context, stateID, uid string) error {
	s, ok := r.states[stateID]
	if !ok {
		return db.ErrNotFound
	}
	for _, l := range s.Likes {
		if l == uid {
			return db.ErrAlreadyExists
		}
	}
	s.Likes = append(s.Likes, uid)
	r.users.users[s.UserID].ReceivedLikesCount++
	return nil
}

func (r *fakeFeedRepo) RemoveLike(_ context.Context, stateID, uid string) error {
	s, ok := r.states[stateID]
	if !ok {
		return db.ErrNotFound
	}
	for i, l := range s.Likes {
		if l == uid {
			s.Likes = append(s.Likes[:i], s.Likes[i+1:]...)
			r.users.users[s.UserID].ReceivedLikesCount--
			return nil
		}
	}
	return db.ErrNotFound
}

func (r *fakeFeedRepo) AddComment(_ context.Context, stateID string, c models.Comment) error {
	s, ok := r.states[stateID]
	if !ok {
		return db.ErrNotFound
	}
	s.Comments = append(s.Comments, c)
	return nil
}

type fakeChatRepo struct {
	messages map[string][]*models.ChatMessage
	nextID   int
}

func (r *fakeChatRepo) Add(_ context.Context, uid string, m *models.ChatMessage) (string, error) {
	if r.messages == nil {
		r.messages = map[string][]*models.ChatMessage{}
	}
	r.nextID++
	cp := *m
	cp.ID = fmt.Sprintf("m%d", r.nextID)
	r.messages[uid] = append(r.messages[uid], &cp)
	return cp.ID, nil
}

func (r *fakeChatRepo) ListRecent(_ context.Context, uid string, limit int) ([]*models.ChatMessage, error) {
	all := r.messages[uid]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]*models.ChatMessage, len(all))
	for i, m := range all {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (r *fakeChatRepo) DeleteAll(_ context.Context, uid string) (int, error) {
	n := len(r.messages[uid])
	delete(r.messages, uid)
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.SocialEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e models.SocialEvent) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *recordingPublisher) types() []string {
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeUploader struct {
	publicID string
	err      error
}

func (u *fakeUploader) UploadAvatar(_ context.Context, file io.Reader, publicID string) (string, string, error) {
	if u.err != nil {
		return "", "", u.err
	}
	if _, err := io.ReadAll(file); err != nil {
		return "", "", err
	}
	u.publicID = publicID
	return "https://res.cloudinary.com/demo/" + publicID + ".jpg", "tranki/avatars/" + publicID, nil
}

type fakeCompleter struct {
	reply    string
	err      error
	received []models.ChatMessage
}

func (c *fakeCompleter) Complete(_ context.Context, msgs []models.ChatMessage) (string, error) {
	c.received = msgs
	return c.reply, c.err
}

// reverseCipher is a reversible stand-in for AES-GCM.
type reverseCipher struct{}

func (reverseCipher) Encrypt(s string) (string, error) { return "enc:" + reverse(s), nil }

func (reverseCipher) Decrypt(s string) (string, error) {
	if !strings.HasPrefix(s, "enc:") {
		return "", errors.New("malformed")
	}
	return reverse(strings.TrimPrefix(s, "enc:")), nil
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

type fakePlacesProvider struct {
	places  []models.Place
	details *models.PlaceDetails
	err     error
	calls   int
	lastArg struct {
		radius             int
		placeType, keyword string
	}
}

func (p *fakePlacesProvider) Nearby(_ context.Context, _ models.Location, radius int, placeType, keyword string) ([]models.Place, error) {
	p.calls++
	p.lastArg.radius, p.lastArg.placeType, p.lastArg.keyword = radius, placeType, keyword
	if p.err != nil {
		return nil, p.err
	}
	out := make([]models.Place, len(p.places))
	copy(out, p.places)
	return out, nil
}

func (p *fakePlacesProvider) Details(_ context.Context, _ string) (*models.PlaceDetails, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.details, nil
}
