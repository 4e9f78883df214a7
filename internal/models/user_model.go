package models

import "time"

// User represents a user profile. The Firebase Auth UID is the document ID.
type User struct {
	ID                     string    `json:"id" firestore:"-"`
	Name                   string    `json:"name" firestore:"name"`
	NameLower              string    `json:"-" firestore:"nameLower"`
	Email                  string    `json:"email" firestore:"email"`
	Age                    int       `json:"age,omitempty" firestore:"age,omitempty"`
	Role                   string    `json:"role,omitempty" firestore:"role,omitempty"` // e.g. "student", "worker"
	ProfilePicture         string    `json:"profilePicture,omitempty" firestore:"profilePicture,omitempty"`
	ProfilePicturePublicID string    `json:"-" firestore:"profilePicturePublicId,omitempty"`
	FriendsCount           int       `json:"friendsCount" firestore:"friendsCount"`
	SharedStatesCount      int       `json:"sharedStatesCount" firestore:"sharedStatesCount"`
	ReceivedLikesCount     int       `json:"receivedLikesCount" firestore:"receivedLikesCount"`
	CreatedAt              time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt              time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// PublicUser is the subset of a profile visible to other users.
type PublicUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	FriendsCount   int    `json:"friendsCount"`
}

// Public strips private fields from the profile.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		FriendsCount:   u.FriendsCount,
	}
}
