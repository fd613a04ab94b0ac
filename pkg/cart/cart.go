// Package cart mirrors the server-side cart. Every successful round-trip
// replaces the snapshot with the server's answer; nothing is computed
// locally. A logout resets the store and discards responses of requests
// that were started before it.
package cart

import (
	"context"
	"errors"
	"sync"

	clierrors "github.com/William2207/uteshop/cli/pkg/errors"
	"github.com/William2207/uteshop/cli/pkg/events"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/William2207/uteshop/cli/pkg/models"
	"github.com/William2207/uteshop/cli/pkg/validate"
	"github.com/shopspring/decimal"
)

// ErrStale is returned when a response arrives after the session it was
// requested in has ended. The response is not applied.
var ErrStale = errors.New("cart response discarded: session ended while the request was in flight")

// API is the part of the storefront API the cart needs
type API interface {
	GetCart(ctx context.Context) (*models.Cart, error)
	AddToCart(ctx context.Context, productID string, quantity int) (*models.AddToCartResult, error)
	UpdateCartItem(ctx context.Context, productID string, quantity int) (*models.Cart, error)
	RemoveFromCart(ctx context.Context, productID string) (*models.Cart, error)
	ClearCart(ctx context.Context) (*models.Cart, error)
	CartCount(ctx context.Context) (int, error)
}

// State is a snapshot of the cart. BadgeCount always equals TotalItems after
// a successful round-trip.
type State struct {
	Items       []models.CartItem
	TotalItems  int
	TotalAmount decimal.Decimal
	BadgeCount  int
	Loading     bool
	Err         string
}

// AddResult tells the caller how the server applied an add
type AddResult struct {
	IsNewProduct bool
	Message      string
}

// Store holds the cart
type Store struct {
	api API
	bus *events.Bus

	mu       sync.RWMutex
	state    State
	epoch    uint64
	inflight int

	subMu       sync.RWMutex
	subscribers map[int]func(State)
	nextSubID   int

	unsubscribe func()
}

// NewStore creates an empty cart store that resets itself on every
// LoggedOut event published on bus.
func NewStore(api API, bus *events.Bus) *Store {
	s := &Store{
		api:         api,
		bus:         bus,
		state:       State{Items: []models.CartItem{}, TotalAmount: decimal.Zero},
		subscribers: make(map[int]func(State)),
	}
	if bus != nil {
		s.unsubscribe = bus.Subscribe(events.LoggedOut, func(events.Event) { s.Reset() })
	}
	return s
}

// Close detaches the store from the event bus
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// snapshot copies the state. Callers hold s.mu.
func (s *Store) snapshot() State {
	st := s.state
	st.Items = make([]models.CartItem, len(s.state.Items))
	copy(st.Items, s.state.Items)
	return st
}

// Subscribe registers fn to receive every new state. It returns the
// unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(st State) {
	s.subMu.RLock()
	fns := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(st)
	}
}

// Reset empties the cart and invalidates every request in flight
func (s *Store) Reset() {
	s.mu.Lock()
	s.epoch++
	s.inflight = 0
	s.state = State{Items: []models.CartItem{}, TotalAmount: decimal.Zero}
	st := s.snapshot()
	s.mu.Unlock()

	logger.Debug("Cart reset")
	s.notify(st)
}

// begin marks a request in flight and returns the epoch it belongs to.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	s.inflight++
	s.state.Loading = true
	s.state.Err = ""
	epoch := s.epoch
	st := s.snapshot()
	s.mu.Unlock()

	s.notify(st)
	return epoch
}

// settle ends a request of epoch and applies fn to the state unless the epoch
// has passed. It reports whether fn was applied.
func (s *Store) settle(epoch uint64, fn func(st *State)) bool {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		logger.Debug("Discarding stale cart response", "epoch", epoch)
		return false
	}
	s.inflight--
	s.state.Loading = s.inflight > 0
	fn(&s.state)
	st := s.snapshot()
	s.mu.Unlock()

	s.notify(st)
	return true
}

func (s *Store) replace(epoch uint64, cart *models.Cart) error {
	applied := s.settle(epoch, func(st *State) {
		st.Items = cart.Items
		if st.Items == nil {
			st.Items = []models.CartItem{}
		}
		st.TotalItems = cart.TotalItems
		st.TotalAmount = cart.TotalAmount
		st.BadgeCount = cart.TotalItems
		st.Err = ""
	})
	if !applied {
		return ErrStale
	}

	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.CartChanged, Payload: *cart})
	}
	return nil
}

func (s *Store) fail(epoch uint64, err error) error {
	applied := s.settle(epoch, func(st *State) {
		st.Err = clierrors.CategorizeError(err).Message
	})
	if !applied {
		return ErrStale
	}
	return err
}

// Fetch replaces the snapshot with the server cart
func (s *Store) Fetch(ctx context.Context) error {
	epoch := s.begin()
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		return s.fail(epoch, err)
	}
	return s.replace(epoch, cart)
}

// AddItem adds quantity of productID and replaces the snapshot with the
// server's cart
func (s *Store) AddItem(ctx context.Context, productID string, quantity int) (*AddResult, error) {
	if err := validateItem(productID, quantity); err != nil {
		return nil, err
	}

	epoch := s.begin()
	res, err := s.api.AddToCart(ctx, productID, quantity)
	if err != nil {
		return nil, s.fail(epoch, err)
	}
	if err := s.replace(epoch, &res.Cart); err != nil {
		return nil, err
	}

	logger.Debug("Added to cart", "product_id", productID, "quantity", quantity, "new_product", res.IsNewProduct)
	return &AddResult{IsNewProduct: res.IsNewProduct, Message: res.Message}, nil
}

// UpdateItem sets the quantity of productID
func (s *Store) UpdateItem(ctx context.Context, productID string, quantity int) error {
	if err := validateItem(productID, quantity); err != nil {
		return err
	}

	epoch := s.begin()
	cart, err := s.api.UpdateCartItem(ctx, productID, quantity)
	if err != nil {
		return s.fail(epoch, err)
	}
	return s.replace(epoch, cart)
}

// RemoveItem removes the line of productID
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	if err := validate.Var("productId", productID, "required"); err != nil {
		return err
	}

	epoch := s.begin()
	cart, err := s.api.RemoveFromCart(ctx, productID)
	if err != nil {
		return s.fail(epoch, err)
	}
	return s.replace(epoch, cart)
}

// Clear empties the server cart
func (s *Store) Clear(ctx context.Context) error {
	epoch := s.begin()
	cart, err := s.api.ClearCart(ctx)
	if err != nil {
		return s.fail(epoch, err)
	}
	return s.replace(epoch, cart)
}

// ItemCount refreshes TotalItems and BadgeCount from the count endpoint
// without pulling the items.
func (s *Store) ItemCount(ctx context.Context) (int, error) {
	epoch := s.begin()
	count, err := s.api.CartCount(ctx)
	if err != nil {
		return 0, s.fail(epoch, err)
	}

	applied := s.settle(epoch, func(st *State) {
		st.TotalItems = count
		st.BadgeCount = count
		st.Err = ""
	})
	if !applied {
		return 0, ErrStale
	}
	return count, nil
}

func validateItem(productID string, quantity int) error {
	if err := validate.Var("productId", productID, "required"); err != nil {
		return err
	}
	return validate.Var("quantity", quantity, "min=1")
}
