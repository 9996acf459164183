package repository

import (
	"context"

	"github.com/bravo68web/scribe/internal/domain/models"
)

// UserRepository defines the interface for user data access operations
type UserRepository interface {
	// Create creates a new user in the database
	Create(ctx context.Context, user *models.User) error

	// FindByID retrieves a user by their ID
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// FindByUsername retrieves a user by their username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByToken retrieves a user by their session token
	FindByToken(ctx context.Context, token string) (*models.User, error)

	// Update updates an existing user's information
	Update(ctx context.Context, user *models.User) error

	// Delete removes a user from the database by their ID
	Delete(ctx context.Context, id int64) error

	// List retrieves all users
	List(ctx context.Context) ([]*models.User, error)

	// Count returns the total number of users
	Count(ctx context.Context) (int64, error)
}
