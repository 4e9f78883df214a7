package api

import "github.com/tranki-app/tranki-backend/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// FriendRequestResponse is returned by POST /friends/requests. Accepted is true
// when the target had already sent a request and both became friends.
type FriendRequestResponse struct {
	Request  *models.FriendRequest `json:"request,omitempty"`
	Accepted bool                  `json:"accepted"`
}

// ClearHistoryResponse is returned by DELETE /chat/messages.
type ClearHistoryResponse struct {
	Deleted int `json:"deleted"`
}
