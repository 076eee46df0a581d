package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	orderapp "github.com/outpost-commerce/backend/internal/application/order"
	"github.com/outpost-commerce/backend/internal/domain/checkout"
	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// StorageFactory builds the durable slot backend for a checkout session
type StorageFactory func(sessionID string) checkout.Storage

// sessionTTL is how long an idle session handle is kept in memory. The
// durable cart state lives in storage, so an evicted session rehydrates on
// the next request.
const sessionTTL = 30 * time.Minute

// session pairs a cart store with the buyer's position in the flow. Its
// mutex serializes stage reads and writes for concurrent requests on one
// session key.
type session struct {
	mu       sync.Mutex
	store    *checkout.Store
	stage    checkout.Stage
	lastSeen time.Time
}

// Service drives carts through the checkout flow. Each session key owns an
// independent cart store and stage; the order service is called at placement.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*session

	newStorage StorageFactory
	pricing    checkout.PricingConfig
	orders     *orderapp.Service

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewService creates a checkout service. It starts a background goroutine
// that evicts session handles idle past their TTL; call Close to stop it.
func NewService(newStorage StorageFactory, pricing checkout.PricingConfig, orders *orderapp.Service) *Service {
	s := &Service{
		sessions:   make(map[string]*session),
		newStorage: newStorage,
		pricing:    pricing,
		orders:     orders,
		stopChan:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Close stops the eviction goroutine. Safe to call multiple times.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// sessionFor returns the session for key, rehydrating it from storage on
// first access
func (s *Service) sessionFor(ctx context.Context, key string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		sess.lastSeen = time.Now()
		return sess
	}
	sess := &session{
		store:    checkout.NewStore(ctx, s.newStorage(key)),
		stage:    checkout.StageCart,
		lastSeen: time.Now(),
	}
	s.sessions[key] = sess
	return sess
}

// cleanupLoop periodically evicts idle sessions
func (s *Service) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.evictIdle(time.Now())
		}
	}
}

// evictIdle drops session handles not seen since cutoff minus the TTL
func (s *Service) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > sessionTTL {
			delete(s.sessions, key)
		}
	}
}

// sessionCount returns the number of live session handles
func (s *Service) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// GetCart returns the priced view of a session's cart
func (s *Service) GetCart(ctx context.Context, sessionID string) CartResponse {
	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cart := sess.store.Cart()
	return toCartResponse(cart, sess.stage, checkout.ComputeQuote(cart.LineItems, s.pricing))
}

// AddItem adds or replaces a cart line. The quantity is absolute.
func (s *Service) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (CartResponse, error) {
	item, err := checkout.NewLineItem(
		req.Product,
		req.Name,
		valueobject.NewMoneyGBPFromFloat(req.Price),
		req.Image,
		req.Qty,
		req.CountInStock,
	)
	if err != nil {
		return CartResponse{}, err
	}

	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cart := sess.store.Dispatch(ctx, checkout.AddItem{Item: item})
	return toCartResponse(cart, sess.stage, checkout.ComputeQuote(cart.LineItems, s.pricing)), nil
}

// RemoveItem removes a cart line; removing an absent ref is a no-op
func (s *Service) RemoveItem(ctx context.Context, sessionID, productRef string) CartResponse {
	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cart := sess.store.Dispatch(ctx, checkout.RemoveItem{ProductRef: productRef})
	return toCartResponse(cart, sess.stage, checkout.ComputeQuote(cart.LineItems, s.pricing))
}

// SetPayment selects the payment method for the session
func (s *Service) SetPayment(ctx context.Context, sessionID, method string) CartResponse {
	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cart := sess.store.Dispatch(ctx, checkout.SetPayment{Method: method})
	return toCartResponse(cart, sess.stage, checkout.ComputeQuote(cart.LineItems, s.pricing))
}

// ClearCart empties the line items, keeping address and payment method
func (s *Service) ClearCart(ctx context.Context, sessionID string) CartResponse {
	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cart := sess.store.Dispatch(ctx, checkout.Clear{})
	return toCartResponse(cart, sess.stage, checkout.ComputeQuote(cart.LineItems, s.pricing))
}

// BeginCheckout moves the session from browsing into the shipping stage.
// An empty cart cannot enter checkout.
func (s *Service) BeginCheckout(ctx context.Context, sessionID string) (CartResponse, error) {
	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.store.Cart().IsEmpty() {
		return CartResponse{}, shared.NewDomainError("INVALID_STATE", "Cart is empty")
	}
	if err := s.advance(sess, checkout.StageShipping); err != nil {
		return CartResponse{}, err
	}

	cart := sess.store.Cart()
	return toCartResponse(cart, sess.stage, checkout.ComputeQuote(cart.LineItems, s.pricing)), nil
}

// SubmitShipping records the shipping address and advances to review.
// Every address field a courier needs must be present.
func (s *Service) SubmitShipping(ctx context.Context, sessionID string, req SetAddressRequest) (CartResponse, error) {
	var opts []valueobject.AddressOption
	if req.Country != "" {
		opts = append(opts, valueobject.WithCountry(req.Country))
	}
	address, err := valueobject.NewAddress(req.Address, req.City, req.PostalCode, opts...)
	if err != nil {
		return CartResponse{}, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	if !address.IsComplete() {
		return CartResponse{}, shared.NewDomainError("VALIDATION_ERROR", "Shipping address is incomplete")
	}

	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cart := sess.store.Dispatch(ctx, checkout.SetAddress{Address: address})

	if err := s.advance(sess, checkout.StageReview); err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(cart, sess.stage, checkout.ComputeQuote(cart.LineItems, s.pricing)), nil
}

// PlaceOrder turns the reviewed cart into an order. On success the cart is
// cleared and the session starts a fresh flow with the address and payment
// method retained; on failure the session stays in review so the buyer can
// retry.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, userID uuid.UUID, idempotencyKey string) (*orderapp.OrderResponse, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}

	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.stage != checkout.StageReview {
		return nil, shared.NewDomainError("INVALID_STATE", "Checkout is not in review")
	}

	cart := sess.store.Cart()
	if cart.IsEmpty() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "No order items")
	}

	req := orderapp.CreateOrderRequest{
		ShippingAddress: orderapp.AddressInput{
			Address:    cart.ShippingAddress.Line1(),
			City:       cart.ShippingAddress.City(),
			PostalCode: cart.ShippingAddress.PostalCode(),
			Country:    cart.ShippingAddress.Country(),
		},
		PaymentMethod: cart.PaymentMethod,
	}
	for _, li := range cart.LineItems {
		req.OrderItems = append(req.OrderItems, orderapp.CreateOrderItemInput{
			Product:      li.ProductRef,
			Name:         li.Name,
			Price:        li.UnitPrice.Float64(),
			Image:        li.ImageRef,
			Qty:          li.Qty,
			CountInStock: li.StockAtAddTime,
		})
	}

	resp, _, err := s.orders.Create(ctx, userID, req, idempotencyKey)
	if err != nil {
		// The session stays in review; a retry keeps the cart intact
		return nil, err
	}

	sess.store.Dispatch(ctx, checkout.Clear{})
	// Placement retires this attempt's machine. The session returns to the
	// cart stage so the same cookie can check out again later.
	sess.stage = checkout.StageCart
	return resp, nil
}

// Abandon marks a reviewed checkout attempt as failed. The cart survives and
// the session returns to the cart stage for the next attempt.
func (s *Service) Abandon(ctx context.Context, sessionID string) error {
	sess := s.sessionFor(ctx, sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := s.advance(sess, checkout.StageFailed); err != nil {
		return err
	}
	sess.stage = checkout.StageCart
	return nil
}

func (s *Service) advance(sess *session, target checkout.Stage) error {
	if !sess.stage.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot move from "+sess.stage.String()+" to "+target.String())
	}
	sess.stage = target
	return nil
}
