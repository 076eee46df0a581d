package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	orderapp "github.com/outpost-commerce/backend/internal/application/order"
	"github.com/outpost-commerce/backend/internal/domain/checkout"
	"github.com/outpost-commerce/backend/internal/domain/order"
	"github.com/outpost-commerce/backend/internal/domain/shared"
)

// memoryStorage is a map-backed slot store for tests
type memoryStorage struct {
	slots map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{slots: make(map[string][]byte)}
}

func (m *memoryStorage) Read(ctx context.Context, slot string) ([]byte, error) {
	return m.slots[slot], nil
}

func (m *memoryStorage) Write(ctx context.Context, slot string, data []byte) error {
	m.slots[slot] = data
	return nil
}

func (m *memoryStorage) Delete(ctx context.Context, slot string) error {
	delete(m.slots, slot)
	return nil
}

type stubOrderRepository struct {
	mock.Mock
}

func (m *stubOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *stubOrderRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *stubOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *stubOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func newTestService(repo *stubOrderRepository) *Service {
	storages := make(map[string]*memoryStorage)
	factory := func(sessionID string) checkout.Storage {
		if st, ok := storages[sessionID]; ok {
			return st
		}
		st := newMemoryStorage()
		storages[sessionID] = st
		return st
	}
	pricing := checkout.DefaultPricingConfig()
	orders := orderapp.NewService(repo, nil, pricing)
	return NewService(factory, pricing, orders)
}

func addSofa(t *testing.T, svc *Service, sessionID string, qty int) CartResponse {
	t.Helper()
	resp, err := svc.AddItem(context.Background(), sessionID, AddItemRequest{
		Product:      "prod-sofa",
		Name:         "Hampstead Sofa",
		Price:        200,
		Qty:          qty,
		CountInStock: 5,
	})
	require.NoError(t, err)
	return resp
}

func reachReview(t *testing.T, svc *Service, sessionID string) {
	t.Helper()
	ctx := context.Background()
	addSofa(t, svc, sessionID, 2)
	_, err := svc.BeginCheckout(ctx, sessionID)
	require.NoError(t, err)
	_, err = svc.SubmitShipping(ctx, sessionID, SetAddressRequest{
		Address: "1 High Street", City: "London", PostalCode: "SW1A 1AA",
	})
	require.NoError(t, err)
}

// ============================================================================
// Cart commands
// ============================================================================

func TestService_CartCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("add prices the cart", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		resp := addSofa(t, svc, "sess-1", 2)

		require.Len(t, resp.Items, 1)
		assert.InDelta(t, 400.0, resp.ItemsPrice, 0.001)
		assert.InDelta(t, 50.0, resp.ShippingPrice, 0.001)
		assert.InDelta(t, 450.0, resp.TotalPrice, 0.001)
		assert.Equal(t, "CART", resp.Stage)
		assert.Equal(t, "COD", resp.PaymentMethod)
	})

	t.Run("re-adding replaces the quantity", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		addSofa(t, svc, "sess-1", 2)
		resp := addSofa(t, svc, "sess-1", 3)

		require.Len(t, resp.Items, 1)
		assert.Equal(t, 3, resp.Items[0].Qty)
	})

	t.Run("remove and clear", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		addSofa(t, svc, "sess-1", 1)

		resp := svc.RemoveItem(ctx, "sess-1", "prod-sofa")
		assert.Empty(t, resp.Items)

		addSofa(t, svc, "sess-1", 1)
		resp = svc.ClearCart(ctx, "sess-1")
		assert.Empty(t, resp.Items)
	})

	t.Run("sessions are independent", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		addSofa(t, svc, "sess-a", 1)

		resp := svc.GetCart(ctx, "sess-b")
		assert.Empty(t, resp.Items)
	})
}

// ============================================================================
// Stage machine
// ============================================================================

func TestService_StageFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart cannot enter checkout", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))

		_, err := svc.BeginCheckout(ctx, "sess-1")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("incomplete address blocks review", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		addSofa(t, svc, "sess-1", 1)
		_, err := svc.BeginCheckout(ctx, "sess-1")
		require.NoError(t, err)

		_, err = svc.SubmitShipping(ctx, "sess-1", SetAddressRequest{Address: "1 High Street"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})

	t.Run("shipping before cart stage is illegal", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		addSofa(t, svc, "sess-1", 1)

		// Still in CART, review is two steps away
		_, err := svc.SubmitShipping(ctx, "sess-1", SetAddressRequest{
			Address: "1 High Street", City: "London", PostalCode: "SW1A 1AA",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("country defaults for domestic buyers", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		addSofa(t, svc, "sess-1", 1)
		_, err := svc.BeginCheckout(ctx, "sess-1")
		require.NoError(t, err)

		resp, err := svc.SubmitShipping(ctx, "sess-1", SetAddressRequest{
			Address: "1 High Street", City: "London", PostalCode: "SW1A 1AA",
		})

		require.NoError(t, err)
		assert.Equal(t, "UK", resp.ShippingAddress.Country)
		assert.Equal(t, "REVIEW", resp.Stage)
	})
}

// ============================================================================
// Placement
// ============================================================================

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("places the order and clears the cart", func(t *testing.T) {
		repo := new(stubOrderRepository)
		svc := newTestService(repo)
		reachReview(t, svc, "sess-1")

		repo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00001", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := svc.PlaceOrder(ctx, "sess-1", userID, "")

		require.NoError(t, err)
		assert.Equal(t, "ORD-2026-00001", resp.OrderNumber)

		cart := svc.GetCart(ctx, "sess-1")
		assert.Empty(t, cart.Items)
		assert.Equal(t, "CART", cart.Stage, "a finished attempt starts the flow over")
		// Address outlives the purchase for next time
		assert.Equal(t, "London", cart.ShippingAddress.City)
	})

	t.Run("same session can check out again after placing", func(t *testing.T) {
		repo := new(stubOrderRepository)
		svc := newTestService(repo)
		reachReview(t, svc, "sess-1")

		repo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00001", nil).Once()
		repo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		_, err := svc.PlaceOrder(ctx, "sess-1", userID, "")
		require.NoError(t, err)

		// Second purchase on the same 30-day cookie
		reachReview(t, svc, "sess-1")
		repo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00002", nil).Once()

		resp, err := svc.PlaceOrder(ctx, "sess-1", userID, "")
		require.NoError(t, err)
		assert.Equal(t, "ORD-2026-00002", resp.OrderNumber)
	})

	t.Run("same session can check out again after abandoning", func(t *testing.T) {
		repo := new(stubOrderRepository)
		svc := newTestService(repo)
		reachReview(t, svc, "sess-1")

		require.NoError(t, svc.Abandon(ctx, "sess-1"))

		cart := svc.GetCart(ctx, "sess-1")
		assert.Equal(t, "CART", cart.Stage)
		assert.Len(t, cart.Items, 1, "cart survives an abandoned attempt")

		reachReview(t, svc, "sess-1")
		repo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00003", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := svc.PlaceOrder(ctx, "sess-1", userID, "")
		require.NoError(t, err)
		assert.Equal(t, "ORD-2026-00003", resp.OrderNumber)
	})

	t.Run("abandon outside review is illegal", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		addSofa(t, svc, "sess-1", 1)

		err := svc.Abandon(ctx, "sess-1")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("concurrent double submit places exactly one order", func(t *testing.T) {
		repo := new(stubOrderRepository)
		svc := newTestService(repo)
		reachReview(t, svc, "sess-1")

		repo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00004", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.PlaceOrder(ctx, "sess-1", userID, "")
			}(i)
		}
		wg.Wait()

		// One request wins the review stage, the other finds the fresh flow
		var placed, rejected int
		for _, err := range errs {
			if err == nil {
				placed++
				continue
			}
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "INVALID_STATE", domainErr.Code)
			rejected++
		}
		assert.Equal(t, 1, placed)
		assert.Equal(t, 1, rejected)
		repo.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("unauthenticated placement is unauthorized", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		reachReview(t, svc, "sess-1")

		_, err := svc.PlaceOrder(ctx, "sess-1", uuid.Nil, "")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNAUTHORIZED", domainErr.Code)
	})

	t.Run("failed placement keeps the session in review", func(t *testing.T) {
		repo := new(stubOrderRepository)
		svc := newTestService(repo)
		reachReview(t, svc, "sess-1")

		repo.On("GenerateOrderNumber", ctx).Return("", shared.ErrNetworkFailure).Once()

		_, err := svc.PlaceOrder(ctx, "sess-1", userID, "")
		require.Error(t, err)

		cart := svc.GetCart(ctx, "sess-1")
		assert.Equal(t, "REVIEW", cart.Stage)
		assert.Len(t, cart.Items, 1, "cart survives a failed placement")

		// Retry succeeds once downstream recovers
		repo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00002", nil)
		repo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		resp, err := svc.PlaceOrder(ctx, "sess-1", userID, "")
		require.NoError(t, err)
		assert.Equal(t, "ORD-2026-00002", resp.OrderNumber)
	})

	t.Run("placement outside review is illegal", func(t *testing.T) {
		svc := newTestService(new(stubOrderRepository))
		addSofa(t, svc, "sess-1", 1)

		_, err := svc.PlaceOrder(ctx, "sess-1", userID, "")

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

// ============================================================================
// Session eviction
// ============================================================================

func TestService_SessionEviction(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(new(stubOrderRepository))
	defer svc.Close()

	addSofa(t, svc, "sess-1", 2)
	for i := 0; i < 50; i++ {
		svc.GetCart(ctx, "attacker-minted-"+uuid.NewString())
	}
	require.Equal(t, 51, svc.sessionCount())

	svc.evictIdle(time.Now().Add(sessionTTL + time.Minute))
	assert.Equal(t, 0, svc.sessionCount())

	// The durable slots outlive the handle; the cart rehydrates on next access
	cart := svc.GetCart(ctx, "sess-1")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Qty)
}

// ============================================================================
// Redirect helper
// ============================================================================

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/login?redirect=%2Fshipping", LoginRedirect("/shipping").Redirect)
	assert.Equal(t, "/login?redirect=%2F", LoginRedirect("").Redirect)
}
