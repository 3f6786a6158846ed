package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Skotchmaster/storefront/internal/kvstore"
)

var (
	// ErrInvalidQuantity rejects AddItem calls with a quantity below one.
	// The call does not mutate state.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrPersistence reports a failed write-through. The in-memory state
	// change is kept; the caller decides whether to warn or retry.
	ErrPersistence = errors.New("cart persistence write failed")
)

const stateKey = "cart"

// Observer receives the new snapshot after every applied mutation.
type Observer func(State)

type Store struct {
	mu        sync.Mutex
	state     State
	kv        kvstore.Adapter
	log       *slog.Logger
	observers []Observer
}

// NewStore hydrates from the adapter. Absent or malformed persisted data
// yields an empty cart; hydration never fails. Persisted totals are discarded
// and recomputed from the item list.
func NewStore(ctx context.Context, kv kvstore.Adapter, log *slog.Logger) *Store {
	s := &Store{
		state: State{Items: []LineItem{}},
		kv:    kv,
		log:   log,
	}

	raw, err := kv.Read(ctx, stateKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Warn("cart_hydrate_failed", "error", err)
		}
		return s
	}

	var persisted State
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		log.Warn("discarding malformed persisted cart", "error", err)
		return s
	}

	s.state = finalize(persisted.Items)
	if s.state.Items == nil {
		s.state.Items = []LineItem{}
	}
	return s
}

// AddItem merges quantity into an existing line for the product or appends a
// new line at the end. The Quantity field of item is overwritten by quantity.
func (s *Store) AddItem(ctx context.Context, item LineItem, quantity int) (State, error) {
	if quantity < 1 {
		return s.Snapshot(), fmt.Errorf("add item %d: %w", item.ProductID, ErrInvalidQuantity)
	}
	item.Quantity = quantity
	return s.dispatch(ctx, addItem{Item: item})
}

// RemoveItem drops the matching line. Removing an absent product is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID int) (State, error) {
	return s.dispatch(ctx, removeItem{ProductID: productID})
}

// UpdateQuantity overwrites a line's quantity. A quantity of zero or less
// removes the line. Unknown product ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID, quantity int) (State, error) {
	return s.dispatch(ctx, updateQuantity{ProductID: productID, Quantity: quantity})
}

// Clear resets to the empty cart.
func (s *Store) Clear(ctx context.Context) (State, error) {
	return s.dispatch(ctx, clearCart{})
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.state)
}

// Subscribe registers an observer called synchronously with each new
// snapshot. Observers must not call back into the store.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// dispatch serializes the read-modify-write-persist sequence. The persistence
// write happens under the lock so no later mutation can interleave with it.
func (s *Store) dispatch(ctx context.Context, cmd command) (State, error) {
	s.mu.Lock()
	next := apply(s.state, cmd)
	s.state = next

	var persistErr error
	if err := s.persist(ctx, next); err != nil {
		s.log.Error("cart_persist_failed", "error", err)
		persistErr = fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	snap := snapshotOf(next)
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(snapshotOf(next))
	}
	return snap, persistErr
}

func (s *Store) persist(ctx context.Context, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.kv.Write(ctx, stateKey, string(data))
}

func snapshotOf(st State) State {
	st.Items = cloneItems(st.Items)
	return st
}
