package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const usersCollection = "users"

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	return &firestoreUserRepository{client: client}
}

// Create adds a new user document keyed by the Firebase Auth UID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	user.NameLower = strings.ToLower(user.Name)
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("user with ID '%s': %w", user.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user document by its ID (Firebase Auth UID).
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	return decodeUser(docSnap)
}

// GetByIDs fetches several profiles in one round trip. Missing users are skipped.
func (r *firestoreUserRepository) GetByIDs(ctx context.Context, userIDs []string) ([]*models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(userIDs))
	for _, id := range userIDs {
		refs = append(refs, r.client.Collection(usersCollection).Doc(id))
	}
	snaps, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to get %d users: %w", len(userIDs), err)
	}
	users := make([]*models.User, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		user, err := decodeUser(snap)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// UpdateFields applies a partial update. The document must exist.
func (r *firestoreUserRepository) UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	if userID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	updates := make([]firestore.Update, 0, len(fields)+2)
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
		if path == "name" {
			if name, ok := value.(string); ok {
				updates = append(updates, firestore.Update{Path: "nameLower", Value: strings.ToLower(name)})
			}
		}
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, updates)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("failed to update user with ID '%s': %w", userID, err)
	}
	return nil
}

// FindByEmail returns the users registered with an exact email.
func (r *firestoreUserRepository) FindByEmail(ctx context.Context, email string) ([]*models.User, error) {
	query := r.client.Collection(usersCollection).Where("email", "==", email).Limit(5)
	return collectUsers(query.Documents(ctx))
}

// FindByNamePrefix matches the lowercase name prefix.
func (r *firestoreUserRepository) FindByNamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error) {
	p := strings.ToLower(prefix)
	query := r.client.Collection(usersCollection).
		Where("nameLower", ">=", p).
		Where("nameLower", "<", p+"\uf8ff").
		OrderBy("nameLower", firestore.Asc).
		Limit(limit)
	return collectUsers(query.Documents(ctx))
}

func collectUsers(iter *firestore.DocumentIterator) ([]*models.User, error) {
	defer iter.Stop()

	var users []*models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", snap.Ref.ID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}
