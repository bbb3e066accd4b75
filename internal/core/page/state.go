// Package page holds the page controllers. Every request is one page view:
// it boots an AppState from the catalog feed, the query and the visitor's
// persisted storage, and hands it by pointer to the controller for the page.
package page

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/port"
	"github.com/niksmo/gsm-storefront/internal/core/service"
	"github.com/niksmo/gsm-storefront/internal/locale"
)

type CatalogSource interface {
	Load(context.Context) (domain.Catalog, error)
}

type Settings struct {
	PageSize       int
	FeaturedCount  int
	RelatedCount   int
	SearchDebounce time.Duration
	PriceDebounce  time.Duration
	ChatReplyDelay time.Duration
	NotifyDismiss  time.Duration
	// PublishTimeout bounds one cart event publish.
	PublishTimeout time.Duration

	DefaultCurrency string
}

func DefaultSettings() Settings {
	return Settings{
		PageSize:        12,
		FeaturedCount:   6,
		RelatedCount:    4,
		SearchDebounce:  300 * time.Millisecond,
		PriceDebounce:   500 * time.Millisecond,
		ChatReplyDelay:  service.DefaultChatReplyDelay,
		NotifyDismiss:   3 * time.Second,
		PublishTimeout:  service.DefaultPublishTimeout,
		DefaultCurrency: locale.DefaultCurrency,
	}
}

// Storefront wires the collaborators shared by every page view.
type Storefront struct {
	catalog  CatalogSource
	stores   port.StoreOpener
	events   port.CartEventsProducer
	blog     port.BlogSource
	bundle   *locale.Bundle
	settings Settings
}

// New returns a Storefront. events and blog may be nil.
func New(
	catalog CatalogSource,
	stores port.StoreOpener,
	events port.CartEventsProducer,
	blog port.BlogSource,
	bundle *locale.Bundle,
	settings Settings,
) *Storefront {
	def := DefaultSettings()
	if settings.PageSize <= 0 {
		settings.PageSize = def.PageSize
	}
	if settings.FeaturedCount <= 0 {
		settings.FeaturedCount = def.FeaturedCount
	}
	if settings.RelatedCount <= 0 {
		settings.RelatedCount = def.RelatedCount
	}
	if settings.SearchDebounce <= 0 {
		settings.SearchDebounce = def.SearchDebounce
	}
	if settings.PriceDebounce <= 0 {
		settings.PriceDebounce = def.PriceDebounce
	}
	if settings.ChatReplyDelay <= 0 {
		settings.ChatReplyDelay = def.ChatReplyDelay
	}
	if settings.NotifyDismiss <= 0 {
		settings.NotifyDismiss = def.NotifyDismiss
	}
	if settings.PublishTimeout <= 0 {
		settings.PublishTimeout = def.PublishTimeout
	}
	if !locale.IsCurrency(settings.DefaultCurrency) {
		settings.DefaultCurrency = def.DefaultCurrency
	}
	return &Storefront{
		catalog:  catalog,
		stores:   stores,
		events:   events,
		blog:     blog,
		bundle:   bundle,
		settings: settings,
	}
}

func (s *Storefront) Settings() Settings { return s.settings }

func (s *Storefront) Bundle() *locale.Bundle { return s.bundle }

// AppState is the state of one page view. Controllers read and write it
// explicitly; nothing else holds a reference to it after the view ends.
type AppState struct {
	VisitorID string
	Catalog   domain.Catalog
	// CatalogErr is set when the feed could not be loaded. Catalog is
	// empty then and pages render their empty state.
	CatalogErr error
	Criteria   domain.FilterCriteria
	Language   string
	Currency   string

	Store port.KeyValueStore
	Cart  *service.CartStore
	Prefs *service.Preferences
}

// Boot builds the state of a page view. It never fails: a missing feed
// leaves an empty catalog and unreadable preferences fall back to
// acceptLanguage and the default currency.
func (s *Storefront) Boot(
	ctx context.Context, visitorID, acceptLanguage string,
) *AppState {
	const op = "Storefront.Boot"
	log := slog.With("op", op, "visitor", visitorID)

	store := s.stores.Open(visitorID)
	st := &AppState{
		VisitorID: visitorID,
		Criteria:  domain.DefaultCriteria(),
		Store:     store,
		Cart: service.NewCartStore(visitorID, store, s.events).
			WithPublishTimeout(s.settings.PublishTimeout),
		Prefs: service.NewPreferences(
			store, s.bundle.Supported(), locale.Currencies,
		),
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		st.CatalogErr = err
		catalog = domain.Catalog{}
	}
	st.Catalog = catalog

	lang, ok, err := st.Prefs.Language(ctx)
	if err != nil {
		log.Warn("failed to read language", "err", err)
	}
	if !ok {
		lang = s.bundle.Resolve(acceptLanguage)
	}
	st.Language = lang

	cur, ok, err := st.Prefs.Currency(ctx)
	if err != nil {
		log.Warn("failed to read currency", "err", err)
	}
	if !ok {
		cur = s.settings.DefaultCurrency
	}
	st.Currency = cur

	return st
}

// CartCount re-reads the persisted cart. Read errors show as zero.
func (st *AppState) CartCount(ctx context.Context) int {
	n, err := st.Cart.Total(ctx)
	if err != nil {
		slog.Warn("failed to read cart", "op", "AppState.CartCount", "err", err)
		return 0
	}
	return n
}

// FeedUnavailable reports whether the catalog failed to load.
func (st *AppState) FeedUnavailable() bool {
	return errors.Is(st.CatalogErr, domain.ErrFeedUnavailable)
}

// Chrome is what every page renders around its content.
type Chrome struct {
	Language   string
	Currency   string
	Languages  []string
	Currencies []string
	CartCount  int
}

func (s *Storefront) chrome(ctx context.Context, st *AppState) Chrome {
	return Chrome{
		Language:   st.Language,
		Currency:   st.Currency,
		Languages:  s.bundle.Supported(),
		Currencies: locale.Currencies,
		CartCount:  st.CartCount(ctx),
	}
}
