package page

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
)

const (
	ActionAddToCart      = "add-to-cart"
	ActionRemoveFromCart = "remove-from-cart"
	ActionSetQuantity    = "set-quantity"
	ActionSetLanguage    = "set-language"
	ActionSetCurrency    = "set-currency"
)

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// A Notification is shown once and dismissed by the page after
// DismissAfter.
type Notification struct {
	Message      string
	Kind         NotificationKind
	DismissAfter time.Duration
}

type Result struct {
	Notification *Notification
	CartCount    int
}

type ActionFunc func(ctx context.Context, st *AppState, args url.Values) (Result, error)

// A Dispatcher maps the action names rendered into pages to handlers.
type Dispatcher struct {
	handlers map[string]ActionFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]ActionFunc)}
}

func (d *Dispatcher) Register(name string, fn ActionFunc) {
	d.handlers[name] = fn
}

func (d *Dispatcher) Actions() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (d *Dispatcher) Dispatch(
	ctx context.Context, st *AppState, name string, args url.Values,
) (Result, error) {
	const op = "Dispatcher.Dispatch"

	fn, ok := d.handlers[name]
	if !ok {
		return Result{}, fmt.Errorf("%s: %w: %q", op, domain.ErrUnknownAction, name)
	}
	res, err := fn(ctx, st, args)
	if err != nil {
		return res, fmt.Errorf("%s: %s: %w", op, name, err)
	}
	return res, nil
}

// Dispatcher returns a dispatcher with the storefront actions registered.
func (s *Storefront) Dispatcher() *Dispatcher {
	d := NewDispatcher()
	d.Register(ActionAddToCart, s.addToCart)
	d.Register(ActionRemoveFromCart, s.removeFromCart)
	d.Register(ActionSetQuantity, s.setQuantity)
	d.Register(ActionSetLanguage, s.setLanguage)
	d.Register(ActionSetCurrency, s.setCurrency)
	return d
}

func (s *Storefront) notify(
	st *AppState, kind NotificationKind, key string, pairs ...string,
) *Notification {
	return &Notification{
		Message:      s.bundle.Tf(st.Language, key, pairs...),
		Kind:         kind,
		DismissAfter: s.settings.NotifyDismiss,
	}
}

// addToCart expects id and an optional qty. Unknown and out of stock
// products are refused.
func (s *Storefront) addToCart(
	ctx context.Context, st *AppState, args url.Values,
) (Result, error) {
	p, err := findProduct(st.Catalog, args.Get("id"))
	if err != nil {
		return Result{CartCount: st.CartCount(ctx)}, err
	}
	if !p.InStock() {
		return Result{
			Notification: s.notify(st, NotifyError, "notify.out_of_stock"),
			CartCount:    st.CartCount(ctx),
		}, fmt.Errorf("%w: id %d", domain.ErrOutOfStock, p.ID)
	}

	qty := 1
	if raw := args.Get("qty"); raw != "" {
		qty = ClampQuantity(p, raw)
	}
	if _, err := st.Cart.Add(ctx, p.ID, qty); err != nil {
		return Result{}, err
	}

	n := s.notify(st, NotifySuccess, "notify.added")
	if qty > 1 {
		n = s.notify(st, NotifySuccess, "notify.added_qty", "count", strconv.Itoa(qty))
	}
	return Result{Notification: n, CartCount: st.CartCount(ctx)}, nil
}

func (s *Storefront) removeFromCart(
	ctx context.Context, st *AppState, args url.Values,
) (Result, error) {
	id, err := parseID(args.Get("id"))
	if err != nil {
		return Result{}, err
	}
	if _, err := st.Cart.Remove(ctx, id); err != nil {
		return Result{}, err
	}
	return Result{CartCount: st.CartCount(ctx)}, nil
}

// setQuantity expects id and qty; qty <= 0 removes the line.
func (s *Storefront) setQuantity(
	ctx context.Context, st *AppState, args url.Values,
) (Result, error) {
	id, err := parseID(args.Get("id"))
	if err != nil {
		return Result{}, err
	}
	raw := strings.TrimSpace(args.Get("qty"))
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrInvalidQuantity, raw)
	}
	if p, ok := st.Catalog.Find(id); ok {
		qty = min(qty, MaxQuantity(p))
	}
	if _, err := st.Cart.SetQuantity(ctx, id, qty); err != nil {
		return Result{}, err
	}
	return Result{CartCount: st.CartCount(ctx)}, nil
}

func (s *Storefront) setLanguage(
	ctx context.Context, st *AppState, args url.Values,
) (Result, error) {
	lang := args.Get("language")
	if err := st.Prefs.SetLanguage(ctx, lang); err != nil {
		return Result{}, err
	}
	st.Language = lang
	return Result{CartCount: st.CartCount(ctx)}, nil
}

func (s *Storefront) setCurrency(
	ctx context.Context, st *AppState, args url.Values,
) (Result, error) {
	cur := args.Get("currency")
	if err := st.Prefs.SetCurrency(ctx, cur); err != nil {
		return Result{}, err
	}
	st.Currency = cur
	return Result{CartCount: st.CartCount(ctx)}, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q", domain.ErrProductNotFound, raw)
	}
	return id, nil
}
