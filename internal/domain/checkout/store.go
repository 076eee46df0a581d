package checkout

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// Slot names under which cart state is durably persisted. Line items and
// the shipping address live in independent slots so corruption of one
// never takes the other down with it.
const (
	SlotItems   = "cartItems"
	SlotAddress = "shippingAddress"
)

// Storage persists opaque slot values durably. Read returns (nil, nil)
// for an absent slot.
type Storage interface {
	Read(ctx context.Context, slot string) ([]byte, error)
	Write(ctx context.Context, slot string, data []byte) error
	Delete(ctx context.Context, slot string) error
}

// Store is an explicit cart holder: in-memory cart state, mutated only
// through the Apply reducer, persisted slot-by-slot after every dispatch.
// A corrupt or unreadable slot is silently discarded and replaced by the
// default value; storage trouble never propagates as a failure.
type Store struct {
	storage Storage

	mu   sync.Mutex
	cart Cart
}

// NewStore builds a store and rehydrates it from storage
func NewStore(ctx context.Context, storage Storage) *Store {
	s := &Store{
		storage: storage,
		cart:    NewCart(),
	}
	s.rehydrate(ctx)
	return s
}

// Cart returns a snapshot of the current cart
func (s *Store) Cart() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.cart)
}

// Dispatch applies a command through the reducer, persists the affected
// slot, and returns the resulting cart snapshot.
func (s *Store) Dispatch(ctx context.Context, cmd Command) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = Apply(s.cart, cmd)

	switch cmd.(type) {
	case AddItem, RemoveItem, Clear:
		s.persistItems(ctx)
	case SetAddress:
		s.persistAddress(ctx)
	}
	// SetPayment is session-only; COD is re-defaulted on rehydration.

	return snapshot(s.cart)
}

func (s *Store) rehydrate(ctx context.Context) {
	if data, err := s.storage.Read(ctx, SlotItems); err == nil && len(data) > 0 {
		var items []LineItem
		if json.Unmarshal(data, &items) == nil {
			s.cart.LineItems = items
		}
	}

	if data, err := s.storage.Read(ctx, SlotAddress); err == nil && len(data) > 0 {
		var addr valueobject.Address
		if json.Unmarshal(data, &addr) == nil {
			s.cart.ShippingAddress = addr
		}
	}
}

func (s *Store) persistItems(ctx context.Context) {
	data, err := json.Marshal(s.cart.LineItems)
	if err != nil {
		return
	}
	_ = s.storage.Write(ctx, SlotItems, data)
}

func (s *Store) persistAddress(ctx context.Context) {
	data, err := json.Marshal(s.cart.ShippingAddress)
	if err != nil {
		return
	}
	_ = s.storage.Write(ctx, SlotAddress, data)
}

func snapshot(c Cart) Cart {
	out := c
	out.LineItems = make([]LineItem, len(c.LineItems))
	copy(out.LineItems, c.LineItems)
	return out
}
