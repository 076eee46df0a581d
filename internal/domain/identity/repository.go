package identity

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to user accounts
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, u *User) error
}
