package core

import "errors"

var (
	// ErrUserNotFound is returned when a user profile does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidProfile is returned when a profile update fails validation.
	ErrInvalidProfile = errors.New("invalid profile data")
	// ErrInvalidImage is returned for empty or non-image uploads.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidEmotion is returned for an unknown emotion id.
	ErrInvalidEmotion = errors.New("invalid emotion id")
	// ErrEmotionNotFound is returned when an emotion record does not exist.
	ErrEmotionNotFound = errors.New("emotion record not found")
	// ErrInvalidRange is returned for malformed date ranges or day counts.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrInvalidSchedule is returned when a schedule fails validation.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrInvalidDay is returned for an unknown weekday name.
	ErrInvalidDay = errors.New("invalid weekday")
	// ErrInvalidClock is returned for a time that is not "HH:MM".
	ErrInvalidClock = errors.New("invalid time, expected HH:MM")

	ErrSelfFriendRequest     = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends        = errors.New("users are already friends")
	ErrFriendRequestExists   = errors.New("friend request already sent")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrFriendshipNotFound    = errors.New("friendship not found")
	ErrSharedStateNotFound   = errors.New("shared state not found")
	ErrNotStateOwner         = errors.New("only the author can delete a shared state")
	ErrAlreadyLiked          = errors.New("shared state already liked")
	ErrNotLiked              = errors.New("shared state not liked")
	ErrNotAllowed            = errors.New("shared state is not visible to this user")
	ErrEmptyComment          = errors.New("comment text is empty")

	// ErrEmptyMessage is returned for a blank chat message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrAssistantUnavailable is returned when the chat-completions upstream fails.
	ErrAssistantUnavailable = errors.New("assistant unavailable")

	// ErrInvalidLocation is returned for out-of-range coordinates.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrInvalidCategory is returned for an unsupported place category.
	ErrInvalidCategory = errors.New("invalid place category")
	// ErrPlaceNotFound is returned when the places API has no such place.
	ErrPlaceNotFound = errors.New("place not found")
	// ErrPlacesUnavailable is returned when the places upstream fails.
	ErrPlacesUnavailable = errors.New("places service unavailable")
)
