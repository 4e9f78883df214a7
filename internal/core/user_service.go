package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/db"
	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	maxNameLength     = 50
	maxRoleLength     = 50
	maxAge            = 120
	searchLimit       = 20
	minSearchQueryLen = 2
)

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
	uploader ImageUploader
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, uploader ImageUploader, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
		logger:   logger,
		now:      time.Now,
	}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one.
// Returns the user, a boolean indicating if the user was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		// Fall back to the local part of the email.
		name, _, _ = strings.Cut(email, "@")
	}
	now := s.now().UTC()
	newUser := &models.User{
		ID:             userID,
		Name:           name,
		Email:          strings.ToLower(email),
		ProfilePicture: photoURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			// Concurrent initialize from two devices.
			existing, getErr := s.userRepo.GetByID(ctx, userID)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, err)
	}
	s.logger.Info("Created user profile", zap.String("userID", userID))
	return newUser, true, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLength {
			return nil, fmt.Errorf("%w: name must be between 1 and %d characters", ErrInvalidProfile, maxNameLength)
		}
		fields["name"] = name
	}
	if req.Age != nil {
		if *req.Age < 0 || *req.Age > maxAge {
			return nil, fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidProfile, maxAge)
		}
		fields["age"] = *req.Age
	}
	if req.Role != nil {
		role := strings.TrimSpace(*req.Role)
		if utf8.RuneCountInString(role) > maxRoleLength {
			return nil, fmt.Errorf("%w: role must be at most %d characters", ErrInvalidProfile, maxRoleLength)
		}
		fields["role"] = role
	}

	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, fmt.Errorf("failed to update profile of user '%s': %w", userID, err)
		}
	}
	return s.GetByID(ctx, userID)
}

// UploadProfilePicture stores the image under the user's id and saves its secure URL.
func (s *userService) UploadProfilePicture(ctx context.Context, userID string, file io.Reader) (*models.User, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file provided", ErrInvalidImage)
	}
	if _, err := s.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	url, publicID, err := s.uploader.UploadAvatar(ctx, file, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile picture for user '%s': %w", userID, err)
	}
	err = s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{
		"profilePicture":         url,
		"profilePicturePublicId": publicID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store profile picture for user '%s': %w", userID, err)
	}
	s.logger.Info("Updated profile picture", zap.String("userID", userID), zap.String("publicID", publicID))
	return s.GetByID(ctx, userID)
}

// SearchUsers matches an exact email when the query contains "@", otherwise a name prefix.
// The caller is excluded from the results.
func (s *userService) SearchUsers(ctx context.Context, userID, query string) ([]models.PublicUser, error) {
	query = strings.TrimSpace(query)
	results := []models.PublicUser{}
	if utf8.RuneCountInString(query) < minSearchQueryLen {
		return results, nil
	}

	var (
		users []*models.User
		err   error
	)
	if strings.Contains(query, "@") {
		users, err = s.userRepo.FindByEmail(ctx, strings.ToLower(query))
	} else {
		users, err = s.userRepo.FindByNamePrefix(ctx, query, searchLimit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search users for %q: %w", query, err)
	}

	for _, u := range users {
		if u.ID == userID {
			continue
		}
		results = append(results, u.Public())
		if len(results) == searchLimit {
			break
		}
	}
	return results, nil
}
