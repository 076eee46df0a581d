package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage is an in-memory Storage with injectable failures
type fakeStorage struct {
	slots    map[string][]byte
	readErr  error
	writeErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{slots: make(map[string][]byte)}
}

func (f *fakeStorage) Read(_ context.Context, slot string) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.slots[slot], nil
}

func (f *fakeStorage) Write(_ context.Context, slot string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.slots[slot] = data
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, slot string) error {
	delete(f.slots, slot)
	return nil
}

func TestStore_DispatchPersistsItems(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()

	store := NewStore(ctx, storage)
	store.Dispatch(ctx, AddItem{Item: testItem(t, "a", 10, 2)})

	// A fresh store over the same storage sees the items
	reloaded := NewStore(ctx, storage)
	cart := reloaded.Cart()
	require.Len(t, cart.LineItems, 1)
	assert.Equal(t, "a", cart.LineItems[0].ProductRef)
	assert.Equal(t, 2, cart.LineItems[0].Qty)
}

func TestStore_DispatchPersistsAddress(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	addr := testAddress(t)

	store := NewStore(ctx, storage)
	store.Dispatch(ctx, SetAddress{Address: addr})

	reloaded := NewStore(ctx, storage)
	assert.True(t, reloaded.Cart().ShippingAddress.Equals(addr))
}

func TestStore_CorruptItemsSlotFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	storage.slots[SlotItems] = []byte("{not json")

	addr := testAddress(t)
	data, err := addr.MarshalJSON()
	require.NoError(t, err)
	storage.slots[SlotAddress] = data

	store := NewStore(ctx, storage)
	cart := store.Cart()

	// The broken slot is discarded; the healthy slot still loads
	assert.Empty(t, cart.LineItems)
	assert.True(t, cart.ShippingAddress.Equals(addr))
	assert.Equal(t, PaymentMethodCOD, cart.PaymentMethod)
}

func TestStore_CorruptAddressSlotFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	storage.slots[SlotAddress] = []byte("42")

	store := NewStore(ctx, storage)
	store.Dispatch(ctx, AddItem{Item: testItem(t, "a", 10, 1)})

	cart := store.Cart()
	assert.True(t, cart.ShippingAddress.IsEmpty())
	assert.Len(t, cart.LineItems, 1)
}

func TestStore_StorageFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	storage.readErr = errors.New("disk gone")
	storage.writeErr = errors.New("disk gone")

	store := NewStore(ctx, storage)
	cart := store.Dispatch(ctx, AddItem{Item: testItem(t, "a", 10, 1)})

	// The in-memory cart keeps working even when persistence is down
	require.Len(t, cart.LineItems, 1)
}

func TestStore_PaymentMethodIsSessionOnly(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()

	store := NewStore(ctx, storage)
	store.Dispatch(ctx, SetPayment{Method: "Card"})
	assert.Equal(t, "Card", store.Cart().PaymentMethod)

	reloaded := NewStore(ctx, storage)
	assert.Equal(t, PaymentMethodCOD, reloaded.Cart().PaymentMethod)
}

func TestStore_ClearKeepsAddressSlot(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	addr := testAddress(t)

	store := NewStore(ctx, storage)
	store.Dispatch(ctx, AddItem{Item: testItem(t, "a", 10, 1)})
	store.Dispatch(ctx, SetAddress{Address: addr})
	store.Dispatch(ctx, Clear{})

	reloaded := NewStore(ctx, storage)
	cart := reloaded.Cart()
	assert.Empty(t, cart.LineItems)
	assert.True(t, cart.ShippingAddress.Equals(addr))
}
