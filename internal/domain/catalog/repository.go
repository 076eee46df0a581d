package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/outpost-commerce/backend/internal/domain/shared"
)

// Repository provides access to catalog products.
// Listing uses shared.Filter: Search matches names case-insensitively,
// and the Filters map understands "category", "min_price" and "max_price".
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Product], error)
	Save(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
