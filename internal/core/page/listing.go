package page

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/service"
	"github.com/niksmo/gsm-storefront/pkg/debounce"
	"golang.org/x/text/language"
)

type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

func parseViewMode(s string) ViewMode {
	if ViewMode(s) == ViewList {
		return ViewList
	}
	return ViewGrid
}

type ListingView struct {
	Items       []domain.Product
	CurrentPage int
	TotalPages  int
	Links       []domain.PageLink

	// Shown is the number of filtered results, Total the catalog size.
	Shown int
	Total int

	Criteria        domain.FilterCriteria
	Categories      []string
	Brands          []string
	View            ViewMode
	FeedUnavailable bool

	// Quiescence windows the browser waits before submitting typed input.
	SearchDebounce time.Duration
	PriceDebounce  time.Duration
}

// A Listing is the product listing page controller. Its input handlers
// may be called from any goroutine; debounced ones apply after their
// quiescence window. Every filter change returns to page 1 and reports the
// new view to onChange.
type Listing struct {
	mu       sync.Mutex
	st       *AppState
	tag      language.Tag
	pager    *service.Pager
	results  []domain.Product
	view     ViewMode
	onChange func(ListingView)

	searchWindow time.Duration
	priceWindow  time.Duration

	search   *debounce.Invoker[string]
	priceMin *debounce.Invoker[string]
	priceMax *debounce.Invoker[string]
}

// Listing boots the listing controller from the page query. onChange may
// be nil. Call Close when the page view ends.
func (s *Storefront) Listing(
	st *AppState, query url.Values, onChange func(ListingView),
) *Listing {
	const op = "Storefront.Listing"
	log := slog.With("op", op)

	l := &Listing{
		st:       st,
		tag:      language.Make(st.Language),
		view:     parseViewMode(query.Get("view")),
		onChange: onChange,

		searchWindow: s.settings.SearchDebounce,
		priceWindow:  s.settings.PriceDebounce,
	}
	l.search = debounce.New(s.settings.SearchDebounce, l.applySearch)
	l.priceMin = debounce.New(s.settings.PriceDebounce, l.applyPriceMin)
	l.priceMax = debounce.New(s.settings.PriceDebounce, l.applyPriceMax)

	c := domain.DefaultCriteria()
	c.Search = query.Get("search")
	c.Category = query.Get("category")
	c.Brand = query.Get("brand")
	c.Sort = domain.ParseSortOrder(query.Get("sort"))
	if err := c.SetPriceMin(query.Get("min")); err != nil {
		log.Debug("ignore price bound", "err", err)
	}
	if err := c.SetPriceMax(query.Get("max")); err != nil {
		log.Debug("ignore price bound", "err", err)
	}
	st.Criteria = c

	l.results = service.ApplyLocale(st.Catalog, c, l.tag)
	l.pager = service.NewPager(l.results, s.settings.PageSize)
	if raw := query.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			l.pager.GoTo(n)
		}
	}
	return l
}

// ListingPage renders one listing page view for a request.
func (s *Storefront) ListingPage(
	ctx context.Context, st *AppState, query url.Values,
) (Chrome, ListingView) {
	l := s.Listing(st, query, nil)
	defer l.Close()
	return s.chrome(ctx, st), l.View()
}

func (l *Listing) View() ListingView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked()
}

func (l *Listing) viewLocked() ListingView {
	pv := l.pager.View()
	return ListingView{
		Items:           pv.Items,
		CurrentPage:     pv.CurrentPage,
		TotalPages:      pv.TotalPages,
		Links:           service.PageLinks(pv.CurrentPage, pv.TotalPages, service.MaxVisiblePages),
		Shown:           len(l.results),
		Total:           len(l.st.Catalog),
		Criteria:        l.st.Criteria,
		Categories:      l.st.Catalog.Categories(),
		Brands:          l.st.Catalog.Brands(),
		View:            l.view,
		FeedUnavailable: l.st.FeedUnavailable(),
		SearchDebounce:  l.searchWindow,
		PriceDebounce:   l.priceWindow,
	}
}

func (l *Listing) OnSearchInput(v string)   { l.search.Call(v) }
func (l *Listing) OnPriceMinInput(v string) { l.priceMin.Call(v) }
func (l *Listing) OnPriceMaxInput(v string) { l.priceMax.Call(v) }

func (l *Listing) OnCategoryChange(v string) {
	l.update(func(c *domain.FilterCriteria) { c.Category = v })
}

func (l *Listing) OnBrandChange(v string) {
	l.update(func(c *domain.FilterCriteria) { c.Brand = v })
}

func (l *Listing) OnSortChange(v string) {
	l.update(func(c *domain.FilterCriteria) { c.Sort = domain.ParseSortOrder(v) })
}

// ResetFilters drops pending input and restores the default criteria.
func (l *Listing) ResetFilters() {
	l.search.Cancel()
	l.priceMin.Cancel()
	l.priceMax.Cancel()
	l.update(func(c *domain.FilterCriteria) { *c = domain.DefaultCriteria() })
}

// GoToPage moves to page n. Out of range pages are ignored.
func (l *Listing) GoToPage(n int) bool {
	l.mu.Lock()
	if !l.pager.GoTo(n) {
		l.mu.Unlock()
		return false
	}
	v := l.viewLocked()
	l.mu.Unlock()

	l.notify(v)
	return true
}

func (l *Listing) SetGridView(mode string) {
	l.mu.Lock()
	l.view = parseViewMode(mode)
	v := l.viewLocked()
	l.mu.Unlock()

	l.notify(v)
}

// Flush applies pending debounced input now.
func (l *Listing) Flush() {
	l.search.Flush()
	l.priceMin.Flush()
	l.priceMax.Flush()
}

// Close drops pending debounced input.
func (l *Listing) Close() {
	l.search.Cancel()
	l.priceMin.Cancel()
	l.priceMax.Cancel()
}

func (l *Listing) applySearch(v string) {
	l.update(func(c *domain.FilterCriteria) { c.Search = v })
}

func (l *Listing) applyPriceMin(v string) {
	l.update(func(c *domain.FilterCriteria) {
		if err := c.SetPriceMin(v); err != nil {
			slog.Debug("ignore price bound", "op", "Listing.applyPriceMin", "err", err)
		}
	})
}

func (l *Listing) applyPriceMax(v string) {
	l.update(func(c *domain.FilterCriteria) {
		if err := c.SetPriceMax(v); err != nil {
			slog.Debug("ignore price bound", "op", "Listing.applyPriceMax", "err", err)
		}
	})
}

func (l *Listing) update(mutate func(*domain.FilterCriteria)) {
	l.mu.Lock()
	mutate(&l.st.Criteria)
	l.results = service.ApplyLocale(l.st.Catalog, l.st.Criteria, l.tag)
	l.pager.Reset(l.results)
	v := l.viewLocked()
	l.mu.Unlock()

	l.notify(v)
}

func (l *Listing) notify(v ListingView) {
	if l.onChange != nil {
		l.onChange(v)
	}
}
