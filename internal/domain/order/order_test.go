package order

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// ============================================================================
// Test Helpers
// ============================================================================

func testOrderItem(t *testing.T, ref string, price float64, qty int) *OrderItem {
	t.Helper()
	item, err := NewOrderItem(uuid.Nil, ref, "Item "+ref, valueobject.NewMoneyGBPFromFloat(price), "", qty)
	require.NoError(t, err)
	return item
}

func testShippingAddress(t *testing.T) valueobject.Address {
	t.Helper()
	addr, err := valueobject.NewAddressFull("1 High Street", "London", "SW1A 1AA", "UK")
	require.NoError(t, err)
	return addr
}

// ============================================================================
// OrderItem Tests
// ============================================================================

func TestNewOrderItem(t *testing.T) {
	price := valueobject.NewMoneyGBPFromFloat(25)

	t.Run("creates valid item", func(t *testing.T) {
		item, err := NewOrderItem(uuid.New(), "prod-1", "Oak Table", price, "/images/table.jpg", 2)
		require.NoError(t, err)
		assert.Equal(t, "prod-1", item.ProductRef)
		assert.Equal(t, 2, item.Qty)
		assert.Equal(t, "50.00", item.Subtotal().StringFixed(2))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewOrderItem(uuid.New(), "", "Oak Table", price, "", 1)
		assert.Error(t, err)

		_, err = NewOrderItem(uuid.New(), "prod-1", "", price, "", 1)
		assert.Error(t, err)

		_, err = NewOrderItem(uuid.New(), "prod-1", "Oak Table", price, "", 0)
		assert.Error(t, err)
	})
}

// ============================================================================
// Order Tests
// ============================================================================

func TestNewOrder(t *testing.T) {
	userID := uuid.New()
	addr := testShippingAddress(t)

	t.Run("creates order with copied items", func(t *testing.T) {
		items := []OrderItem{*testOrderItem(t, "a", 10, 1), *testOrderItem(t, "b", 20, 2)}
		o, err := NewOrder("ORD-2026-00001", userID, items, addr, PaymentMethodCOD)
		require.NoError(t, err)

		assert.Equal(t, "ORD-2026-00001", o.OrderNumber)
		assert.Equal(t, userID, o.UserID)
		require.Len(t, o.Items, 2)
		for _, item := range o.Items {
			assert.Equal(t, o.ID, item.OrderID)
		}
		assert.False(t, o.IsDelivered)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewOrder("ORD-2026-00001", userID, nil, addr, PaymentMethodCOD)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		assert.Equal(t, "No order items", domainErr.Message)
	})

	t.Run("rejects missing user", func(t *testing.T) {
		items := []OrderItem{*testOrderItem(t, "a", 10, 1)}
		_, err := NewOrder("ORD-2026-00001", uuid.Nil, items, addr, PaymentMethodCOD)
		assert.Error(t, err)
	})

	t.Run("cash on delivery starts unpaid", func(t *testing.T) {
		items := []OrderItem{*testOrderItem(t, "a", 10, 1)}
		o, err := NewOrder("ORD-2026-00001", userID, items, addr, PaymentMethodCOD)
		require.NoError(t, err)

		assert.False(t, o.IsPaid)
		assert.Nil(t, o.PaidAt)
	})

	t.Run("other payment methods start paid", func(t *testing.T) {
		items := []OrderItem{*testOrderItem(t, "a", 10, 1)}
		o, err := NewOrder("ORD-2026-00001", userID, items, addr, "Card")
		require.NoError(t, err)

		assert.True(t, o.IsPaid)
		require.NotNil(t, o.PaidAt)
	})

	t.Run("empty payment method defaults to cash on delivery", func(t *testing.T) {
		items := []OrderItem{*testOrderItem(t, "a", 10, 1)}
		o, err := NewOrder("ORD-2026-00001", userID, items, addr, "")
		require.NoError(t, err)

		assert.Equal(t, PaymentMethodCOD, o.PaymentMethod)
		assert.False(t, o.IsPaid)
	})
}

func TestOrder_MarkPaid(t *testing.T) {
	items := []OrderItem{*testOrderItem(t, "a", 10, 1)}
	o, err := NewOrder("ORD-2026-00001", uuid.New(), items, testShippingAddress(t), PaymentMethodCOD)
	require.NoError(t, err)

	paidAt := time.Now()
	require.NoError(t, o.MarkPaid(paidAt))
	assert.True(t, o.IsPaid)

	err = o.MarkPaid(paidAt)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestOrder_MarkDelivered(t *testing.T) {
	items := []OrderItem{*testOrderItem(t, "a", 10, 1)}
	o, err := NewOrder("ORD-2026-00001", uuid.New(), items, testShippingAddress(t), PaymentMethodCOD)
	require.NoError(t, err)

	require.NoError(t, o.MarkDelivered(time.Now()))
	assert.True(t, o.IsDelivered)
	assert.Error(t, o.MarkDelivered(time.Now()))
}

func TestOrder_BelongsTo(t *testing.T) {
	owner := uuid.New()
	items := []OrderItem{*testOrderItem(t, "a", 10, 1)}
	o, err := NewOrder("ORD-2026-00001", owner, items, testShippingAddress(t), PaymentMethodCOD)
	require.NoError(t, err)

	assert.True(t, o.BelongsTo(owner))
	assert.False(t, o.BelongsTo(uuid.New()))
}
