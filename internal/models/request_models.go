package models

// UpdateProfileRequest is the body of PUT /users/me. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty"`
	Age  *int    `json:"age,omitempty"`
	Role *string `json:"role,omitempty"`
}

// RecordEmotionRequest is the body of POST /emotions.
type RecordEmotionRequest struct {
	EmotionID string `json:"emotionId" binding:"required"`
	Note      string `json:"note,omitempty"`
}

// SaveScheduleRequest is the body of PUT /schedule.
type SaveScheduleRequest struct {
	Days map[string][]Event `json:"days" binding:"required"`
}

// SendMessageRequest is the body of POST /chat/messages.
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// FriendRequestBody is the body of POST /friends/requests.
type FriendRequestBody struct {
	ToUserID string `json:"toUserId" binding:"required"`
}

// ShareStateRequest is the body of POST /feed.
type ShareStateRequest struct {
	EmotionID string `json:"emotionId" binding:"required"`
	Message   string `json:"message,omitempty"`
}

// CommentRequest is the body of POST /feed/:stateId/comments.
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}
