package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/port"
)

// DefaultPublishTimeout bounds one cart event publish.
const DefaultPublishTimeout = time.Second

// A CartStore reads and writes one visitor's cart under [port.KeyCart].
//
// Every mutation is a read-modify-write against the store with no lock
// spanning it. Two page views mutating the same cart concurrently race and
// the last persisted write wins. This is a known limitation; there is no
// merge step.
type CartStore struct {
	visitorID string
	store     port.KeyValueStore
	events    port.CartEventsProducer
	now       func() time.Time

	publishTimeout time.Duration
}

// NewCartStore returns a store for visitorID. events may be nil.
func NewCartStore(
	visitorID string, store port.KeyValueStore, events port.CartEventsProducer,
) *CartStore {
	return &CartStore{
		visitorID: visitorID,
		store:     store,
		events:    events,
		now:       time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
}

// WithPublishTimeout replaces [DefaultPublishTimeout]. A non-positive d is
// ignored.
func (s *CartStore) WithPublishTimeout(d time.Duration) *CartStore {
	if d > 0 {
		s.publishTimeout = d
	}
	return s
}

// Load reads the persisted cart. A missing or corrupt value is an empty cart.
func (s *CartStore) Load(ctx context.Context) (domain.Cart, error) {
	const op = "CartStore.Load"

	raw, ok, err := s.store.Get(ctx, port.KeyCart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cart := make(domain.Cart)
	if !ok || raw == "" {
		return cart, nil
	}
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		slog.Warn("discard corrupt cart", "op", op, "visitor", s.visitorID, "err", err)
		return make(domain.Cart), nil
	}
	return cart.Normalize(), nil
}

func (s *CartStore) Persist(ctx context.Context, cart domain.Cart) error {
	const op = "CartStore.Persist"

	b, err := json.Marshal(cart.Normalize())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Set(ctx, port.KeyCart, string(b)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Add increments the quantity of productID, inserting it when absent.
// qty must be at least 1.
func (s *CartStore) Add(
	ctx context.Context, productID int64, qty int,
) (domain.Cart, error) {
	const op = "CartStore.Add"

	if qty < 1 {
		return nil, fmt.Errorf("%s: %w: %d", op, domain.ErrInvalidQuantity, qty)
	}

	cart, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cart[productID] += qty
	if err := s.commit(ctx, cart, productID, domain.CartActionAdd, qty); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

func (s *CartStore) Remove(
	ctx context.Context, productID int64,
) (domain.Cart, error) {
	const op = "CartStore.Remove"

	cart, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	delete(cart, productID)
	if err := s.commit(ctx, cart, productID, domain.CartActionRemove, 0); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

// SetQuantity replaces the quantity of productID; qty <= 0 removes it.
func (s *CartStore) SetQuantity(
	ctx context.Context, productID int64, qty int,
) (domain.Cart, error) {
	if qty <= 0 {
		return s.Remove(ctx, productID)
	}

	const op = "CartStore.SetQuantity"

	cart, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cart[productID] = qty
	if err := s.commit(ctx, cart, productID, domain.CartActionSet, qty); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cart, nil
}

// Total re-reads the store on every call; another page may have written.
func (s *CartStore) Total(ctx context.Context) (int, error) {
	cart, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return cart.Total(), nil
}

// Subtotal prices the cart against catalog in base currency. Ids no longer
// in the catalog are ignored.
func (s *CartStore) Subtotal(
	ctx context.Context, catalog domain.Catalog,
) (float64, error) {
	cart, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	var sum float64
	for id, qty := range cart {
		if p, ok := catalog.Find(id); ok {
			sum += p.Price * float64(qty)
		}
	}
	return sum, nil
}

func (s *CartStore) commit(
	ctx context.Context,
	cart domain.Cart,
	productID int64,
	action domain.CartAction,
	qty int,
) error {
	if err := s.Persist(ctx, cart); err != nil {
		return err
	}
	s.publish(ctx, domain.CartEvent{
		VisitorID:  s.visitorID,
		ProductID:  productID,
		Action:     action,
		Quantity:   qty,
		CartTotal:  cart.Total(),
		OccurredAt: s.now(),
	})
	return nil
}

// publish is best effort. The cart is already persisted, so the event gets
// its own deadline and survives the request being cancelled.
func (s *CartStore) publish(ctx context.Context, evt domain.CartEvent) {
	const op = "CartStore.publish"

	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.events.ProduceCartEvent(ctx, evt); err != nil {
		slog.Warn("failed to publish cart event", "op", op, "err", err)
	}
}
