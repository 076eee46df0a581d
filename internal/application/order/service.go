package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/outpost-commerce/backend/internal/domain/checkout"
	"github.com/outpost-commerce/backend/internal/domain/order"
	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// orderNumberRetries bounds how often a create redraws its order number
// after losing the unique-index race to a concurrent create
const orderNumberRetries = 3

// Service handles order placement and retrieval
type Service struct {
	orders      order.Repository
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	pricing     checkout.PricingConfig
}

// NewService creates a new order service. The idempotency store may be nil,
// in which case every create request places a fresh order.
func NewService(orders order.Repository, idempotency shared.IdempotencyStore, pricing checkout.PricingConfig) *Service {
	return &Service{
		orders:      orders,
		idempotency: idempotency,
		idemConfig:  shared.DefaultIdempotencyConfig(),
		pricing:     pricing,
	}
}

// Create places an order for the given user. The returned bool is true when
// a new order was stored and false when idempotencyKey matched an earlier
// request and the original order is returned instead.
//
// Without a key, retries are indistinguishable from new requests and each
// one places a separate order.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest, idempotencyKey string) (*OrderResponse, bool, error) {
	if len(req.OrderItems) == 0 {
		return nil, false, shared.NewDomainError("VALIDATION_ERROR", "No order items")
	}

	if idempotencyKey != "" && s.idempotency != nil {
		existing, err := s.idempotency.Lookup(ctx, idempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != "" {
			if resp, found, err := s.findRemembered(ctx, existing); err != nil {
				return nil, false, err
			} else if found {
				return resp, false, nil
			}
			// Token points at an order that never made it to storage.
			// Treat the request as fresh.
		}
	}

	var addressOpts []valueobject.AddressOption
	if req.ShippingAddress.Country != "" {
		addressOpts = append(addressOpts, valueobject.WithCountry(req.ShippingAddress.Country))
	}
	address, err := valueobject.NewAddress(
		req.ShippingAddress.Address,
		req.ShippingAddress.City,
		req.ShippingAddress.PostalCode,
		addressOpts...,
	)
	if err != nil {
		return nil, false, err
	}

	lines := make([]checkout.LineItem, 0, len(req.OrderItems))
	items := make([]order.OrderItem, 0, len(req.OrderItems))
	for _, input := range req.OrderItems {
		price := valueobject.NewMoneyGBPFromFloat(input.Price)

		line, err := checkout.NewLineItem(input.Product, input.Name, price, input.Image, input.Qty, input.CountInStock)
		if err != nil {
			return nil, false, err
		}
		lines = append(lines, line)

		item, err := order.NewOrderItem(uuid.Nil, input.Product, input.Name, price, input.Image, input.Qty)
		if err != nil {
			return nil, false, err
		}
		items = append(items, *item)
	}

	orderNumber, err := s.orders.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, false, err
	}

	o, err := order.NewOrder(orderNumber, userID, items, address, req.PaymentMethod)
	if err != nil {
		return nil, false, err
	}

	// Prices are always recomputed here; client-sent totals are ignored
	quote := checkout.ComputeQuote(lines, s.pricing)
	o.SetPrices(quote.ItemsPrice, quote.ShippingPrice, quote.TaxPrice, quote.TotalPrice)

	if idempotencyKey != "" && s.idempotency != nil {
		o.IdempotencyKey = idempotencyKey

		// Claim the token before storing so a concurrent retry cannot
		// place a second order under the same key
		stored, winner, err := s.idempotency.Remember(ctx, idempotencyKey, o.ID.String(), s.idemConfig.TTL)
		if err != nil {
			return nil, false, err
		}
		if !stored && winner != o.ID.String() {
			if resp, found, err := s.findRemembered(ctx, winner); err != nil {
				return nil, false, err
			} else if found {
				return resp, false, nil
			}
		}
	}

	// Two concurrent creates can mint the same number; the loser of that
	// race draws a fresh one and saves again
	for attempt := 0; ; attempt++ {
		err := s.orders.Save(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, order.ErrDuplicateOrderNumber) || attempt >= orderNumberRetries {
			return nil, false, err
		}
		number, genErr := s.orders.GenerateOrderNumber(ctx)
		if genErr != nil {
			return nil, false, genErr
		}
		o.OrderNumber = number
	}

	resp := ToOrderResponse(o)
	return &resp, true, nil
}

// findRemembered resolves an order ID recorded under an idempotency token.
// A missing order is not an error: the token is stale and the caller falls
// back to normal placement.
func (s *Service) findRemembered(ctx context.Context, id string) (*OrderResponse, bool, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, false, nil
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	resp := ToOrderResponse(o)
	return &resp, true, nil
}

// GetByID retrieves an order, enforcing that it belongs to the requester.
// Admins may read any order.
func (s *Service) GetByID(ctx context.Context, requesterID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}

	if !o.BelongsTo(requesterID) && !isAdmin {
		return nil, shared.ErrForbidden
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListMine retrieves the requesting user's orders, newest first
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, filter OrderListFilter) ([]OrderResponse, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	orders, err := s.orders.FindByUserID(ctx, userID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToOrderResponse(&orders[i]))
	}
	return responses, nil
}

// MarkDelivered records delivery of an order. Admin only, enforced upstream.
func (s *Service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}

	if err := o.MarkDelivered(time.Now()); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

// MarkPaid records settlement of a cash-on-delivery order. Admin only.
func (s *Service) MarkPaid(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}

	if err := o.MarkPaid(time.Now()); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	resp := ToOrderResponse(o)
	return &resp, nil
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code
}
