package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/outpost-commerce/backend/internal/domain/catalog"
	"github.com/outpost-commerce/backend/internal/domain/identity"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// productSeed describes one catalog entry to insert on first boot
type productSeed struct {
	sku          string
	name         string
	imageURL     string
	description  string
	category     string
	price        float64
	countInStock int
	rating       float64
	numReviews   int
	material     string
	designStyle  string
}

var productSeeds = []productSeed{
	{
		sku:          "FURN-SOFA-001",
		name:         "Hampstead Three-Seater Sofa",
		imageURL:     "/images/hampstead-sofa.jpg",
		description:  "Deep-seated three-seater upholstered in brushed linen with solid oak legs.",
		category:     "Sofas",
		price:        899.00,
		countInStock: 7,
		rating:       4.6,
		numReviews:   12,
		material:     "Linen, Oak",
		designStyle:  "Modern UK",
	},
	{
		sku:          "FURN-TABL-002",
		name:         "Camden Extending Dining Table",
		imageURL:     "/images/camden-table.jpg",
		description:  "Six-to-eight seat extending table in smoked oak with a butterfly leaf.",
		category:     "Tables",
		price:        549.00,
		countInStock: 4,
		rating:       4.8,
		numReviews:   9,
		material:     "Smoked Oak",
		designStyle:  "Modern UK",
	},
	{
		sku:          "FURN-CHAI-003",
		name:         "Shoreditch Accent Chair",
		imageURL:     "/images/shoreditch-chair.jpg",
		description:  "Mid-century accent chair with walnut frame and wool-blend cushioning.",
		category:     "Chairs",
		price:        249.00,
		countInStock: 15,
		rating:       4.3,
		numReviews:   21,
		material:     "Walnut, Wool",
		designStyle:  "Mid-Century",
	},
	{
		sku:          "FURN-SHEL-004",
		name:         "Islington Ladder Bookshelf",
		imageURL:     "/images/islington-shelf.jpg",
		description:  "Five-tier leaning bookshelf in powder-coated steel and reclaimed pine.",
		category:     "Storage",
		price:        179.00,
		countInStock: 11,
		rating:       4.1,
		numReviews:   6,
		material:     "Steel, Pine",
		designStyle:  "Industrial",
	},
	{
		sku:          "FURN-BEDS-005",
		name:         "Kensington King Bed Frame",
		imageURL:     "/images/kensington-bed.jpg",
		description:  "Upholstered king-size frame with a buttoned headboard and solid slats.",
		category:     "Beds",
		price:        699.00,
		countInStock: 3,
		rating:       4.9,
		numReviews:   17,
		material:     "Velvet, Beech",
		designStyle:  "Modern UK",
	},
	{
		sku:          "FURN-DESK-006",
		name:         "Borough Writing Desk",
		imageURL:     "/images/borough-desk.jpg",
		description:  "Compact writing desk with two soft-close drawers and cable routing.",
		category:     "Desks",
		price:        219.00,
		countInStock: 0,
		rating:       3.9,
		numReviews:   4,
		material:     "Ash",
		designStyle:  "Scandinavian",
	},
}

type userSeed struct {
	name     string
	email    string
	password string
	isAdmin  bool
}

var userSeeds = []userSeed{
	{name: "Admin", email: "admin@outpost.test", password: "changeme-admin", isAdmin: true},
	{name: "John Doe", email: "john@example.com", password: "password123"},
	{name: "Jane Smith", email: "jane@example.com", password: "password123"},
}

// Seeder populates an empty database with sample data on startup
type Seeder struct {
	products catalog.Repository
	users    identity.Repository
	logger   *zap.Logger
}

// NewSeeder creates a seeder writing through the domain repositories
func NewSeeder(products catalog.Repository, users identity.Repository, logger *zap.Logger) *Seeder {
	return &Seeder{
		products: products,
		users:    users,
		logger:   logger,
	}
}

// Run seeds products and demo users if the catalog is empty.
// A non-empty catalog means a previous boot already seeded, so Run is a no-op.
func (s *Seeder) Run(ctx context.Context) error {
	count, err := s.products.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		s.logger.Debug("Catalog not empty, skipping seed", zap.Int64("products", count))
		return nil
	}

	s.logger.Info("Catalog empty, seeding sample data")

	for _, ps := range productSeeds {
		price := valueobject.NewMoneyGBPFromFloat(ps.price)
		product, err := catalog.NewProduct(ps.sku, ps.name, price, ps.countInStock)
		if err != nil {
			return fmt.Errorf("invalid seed product %s: %w", ps.sku, err)
		}
		if err := product.UpdateDetails(ps.name, ps.imageURL, ps.description, ps.category, ps.material, ps.designStyle); err != nil {
			return fmt.Errorf("invalid seed product %s: %w", ps.sku, err)
		}
		product.Rating = ps.rating
		product.NumReviews = ps.numReviews

		if err := s.products.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", ps.sku, err)
		}
	}

	for _, us := range userSeeds {
		user, err := identity.NewUser(us.name, us.email, us.password)
		if err != nil {
			return fmt.Errorf("invalid seed user %s: %w", us.email, err)
		}
		user.IsAdmin = us.isAdmin

		if err := s.users.Save(ctx, user); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", us.email, err)
		}
	}

	s.logger.Info("Database seeded",
		zap.Int("products", len(productSeeds)),
		zap.Int("users", len(userSeeds)),
	)
	return nil
}
