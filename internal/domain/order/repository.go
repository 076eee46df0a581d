package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/outpost-commerce/backend/internal/domain/shared"
)

// ErrDuplicateOrderNumber reports a save that lost the race for an order
// number. The caller should generate a fresh number and retry.
var ErrDuplicateOrderNumber = shared.NewDomainError("CONCURRENCY_CONFLICT", "Order number already taken")

// Repository provides access to placed orders
type Repository interface {
	// FindByID retrieves an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUserID retrieves a user's orders, newest first
	FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// Save persists an order and its items
	Save(ctx context.Context, o *Order) error

	// GenerateOrderNumber produces the next human-readable order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
