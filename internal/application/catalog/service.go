package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/outpost-commerce/backend/internal/domain/catalog"
	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// Service handles catalog browsing and admin product management
type Service struct {
	products catalog.Repository
}

// NewService creates a new catalog service
func NewService(products catalog.Repository) *Service {
	return &Service{products: products}
}

// List retrieves a page of products matching the browse filters
func (s *Service) List(ctx context.Context, filter ProductListFilter) (*ProductListResponse, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	domainFilter.Search = filter.Keyword
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.MinPrice != nil {
		domainFilter.Filters["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		domainFilter.Filters["max_price"] = *filter.MaxPrice
	}

	page, err := s.products.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	products := make([]ProductResponse, 0, len(page.Items))
	for i := range page.Items {
		products = append(products, ToProductResponse(&page.Items[i]))
	}

	return &ProductListResponse{
		Products: products,
		Page:     page.Page,
		Pages:    page.TotalPages,
	}, nil
}

// GetByID retrieves a single product
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	resp := ToProductResponse(p)
	return &resp, nil
}

// Create adds a new product to the catalog. Admin only, enforced upstream.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	p, err := catalog.NewProduct(req.SKU, req.Name, valueobject.NewMoneyGBPFromFloat(req.Price), req.CountInStock)
	if err != nil {
		return nil, err
	}
	if err := p.UpdateDetails(req.Name, req.ImageURL, req.Description, req.Category, req.Material, req.DesignStyle); err != nil {
		return nil, err
	}

	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToProductResponse(p)
	return &resp, nil
}

// Update modifies an existing product. Admin only.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	if err := p.UpdateDetails(req.Name, req.ImageURL, req.Description, req.Category, req.Material, req.DesignStyle); err != nil {
		return nil, err
	}
	if req.Price != nil {
		if err := p.SetPrice(valueobject.NewMoneyGBPFromFloat(*req.Price)); err != nil {
			return nil, err
		}
	}
	if req.CountInStock != nil {
		if err := p.SetStock(*req.CountInStock); err != nil {
			return nil, err
		}
	}

	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}

	resp := ToProductResponse(p)
	return &resp, nil
}

// Delete removes a product from the catalog. Admin only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code
}
