package models

import "time"

// FriendRequestPending is the only persisted request status; accepted or
// rejected requests are deleted.
const FriendRequestPending = "pending"

// FriendRequest is stored under the composite id "{from}_{to}".
type FriendRequest struct {
	ID         string    `json:"id" firestore:"-"`
	FromUserID string    `json:"fromUserId" firestore:"fromUserId"`
	ToUserID   string    `json:"toUserId" firestore:"toUserId"`
	FromName   string    `json:"fromName" firestore:"fromName"`
	ToName     string    `json:"toName" firestore:"toName"`
	Status     string    `json:"status" firestore:"status"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Friendship is one direction of a mutual friendship, stored under "{user}_{friend}".
type Friendship struct {
	ID         string    `json:"id" firestore:"-"`
	UserID     string    `json:"userId" firestore:"userId"`
	FriendID   string    `json:"friendId" firestore:"friendId"`
	FriendName string    `json:"friendName" firestore:"friendName"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Comment is appended to a shared state's comments array.
type Comment struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"userId" firestore:"userId"`
	UserName  string    `json:"userName" firestore:"userName"`
	Text      string    `json:"text" firestore:"text"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// SharedState is an emotion published to friends.
type SharedState struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	UserName  string    `json:"userName" firestore:"userName"`
	EmotionID string    `json:"emotionId" firestore:"emotionId"`
	Value     int       `json:"value" firestore:"value"`
	Message   string    `json:"message,omitempty" firestore:"message,omitempty"`
	Likes     []string  `json:"likes" firestore:"likes"`
	Comments  []Comment `json:"comments" firestore:"comments"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// Social event types.
const (
	EventFriendRequestSent     = "friend_request.sent"
	EventFriendRequestAccepted = "friend_request.accepted"
	EventFriendRequestRejected = "friend_request.rejected"
	EventFriendRemoved         = "friend.removed"
	EventStateShared           = "state.shared"
	EventStateDeleted          = "state.deleted"
	EventStateLiked            = "state.liked"
	EventStateUnliked          = "state.unliked"
	EventStateCommented        = "state.commented"
)

// SocialEvent is published after a social mutation. Recipients are the users
// whose open feed connections should receive it.
type SocialEvent struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actorId"`
	ActorName  string    `json:"actorName"`
	TargetID   string    `json:"targetId"`
	StateID    string    `json:"stateId,omitempty"`
	Text       string    `json:"text,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Recipients []string  `json:"recipients,omitempty"`
}
