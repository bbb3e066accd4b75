// Package render turns page views into HTML documents.
//
// Every page is parsed into its own template set made of the shared layout,
// the partials and the page file. Pages only carry data: interactive
// elements are forms and data-action attributes posting to /actions/{name}.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/page"
	"github.com/niksmo/gsm-storefront/internal/locale"
	"github.com/yuin/goldmark"
)

var (
	//go:embed templates/*.html
	templatesFS embed.FS

	//go:embed assets
	assetsFS embed.FS
)

const (
	pageHome     = "home"
	pageListing  = "listing"
	pageDetail   = "detail"
	pageNotFound = "notfound"
	pageCart     = "cart"
	pageChat     = "chat"
)

var pageNames = []string{
	pageHome, pageListing, pageDetail, pageNotFound, pageCart, pageChat,
}

// A Renderer is safe for concurrent use.
type Renderer struct {
	bundle *locale.Bundle
	md     goldmark.Markdown
	policy *bluemonday.Policy
	pages  map[string]*template.Template
}

func New(bundle *locale.Bundle) (*Renderer, error) {
	const op = "render.New"

	r := &Renderer{
		bundle: bundle,
		md:     goldmark.New(),
		policy: newMarkdownPolicy(),
		pages:  make(map[string]*template.Template, len(pageNames)),
	}

	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(r.funcs()).ParseFS(
			templatesFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

func newMarkdownPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// document is the data every layout executes with. Body is the page view.
type document struct {
	page.Chrome
	Title string
	Body  any
}

func (r *Renderer) Home(w io.Writer, v page.HomeView) error {
	return r.execute(w, pageHome, document{
		Chrome: v.Chrome,
		Title:  r.bundle.T(v.Language, "hero.title"),
		Body:   v,
	})
}

func (r *Renderer) Listing(
	w io.Writer, chrome page.Chrome, v page.ListingView,
) error {
	return r.execute(w, pageListing, document{
		Chrome: chrome,
		Title:  r.bundle.T(chrome.Language, "listing.title"),
		Body:   v,
	})
}

func (r *Renderer) Detail(w io.Writer, v page.DetailView) error {
	return r.execute(w, pageDetail, document{
		Chrome: v.Chrome,
		Title:  v.Product.Name,
		Body:   v,
	})
}

// NotFound renders the missing product panel.
func (r *Renderer) NotFound(w io.Writer, chrome page.Chrome) error {
	return r.execute(w, pageNotFound, document{
		Chrome: chrome,
		Title:  r.bundle.T(chrome.Language, "detail.not_found"),
	})
}

func (r *Renderer) Cart(w io.Writer, v page.CartView) error {
	return r.execute(w, pageCart, document{
		Chrome: v.Chrome,
		Title:  r.bundle.T(v.Language, "cart.title"),
		Body:   v,
	})
}

func (r *Renderer) Chat(w io.Writer, v page.ChatView) error {
	return r.execute(w, pageChat, document{
		Chrome: v.Chrome,
		Title:  r.bundle.T(v.Language, "chat.title"),
		Body:   v,
	})
}

// execute renders into a buffer first so a failing template never leaves
// a half written response.
func (r *Renderer) execute(w io.Writer, name string, doc document) error {
	const op = "Renderer.execute"

	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("%s: unknown page %q", op, name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", doc); err != nil {
		return fmt.Errorf("%s: %s: %w", op, name, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// card is the data of the product card partial.
type card struct {
	Language string
	Currency string
	Product  domain.Product
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"t": r.bundle.T,
		"tf": func(lang, key string, pairs ...any) string {
			ss := make([]string, len(pairs))
			for i, p := range pairs {
				ss[i] = fmt.Sprint(p)
			}
			return r.bundle.Tf(lang, key, ss...)
		},
		"price":    locale.FormatPrice,
		"markdown": r.markdown,
		"trusted":  func(s string) template.HTML { return template.HTML(s) },
		"date":     func(t time.Time) string { return t.Format("January 2, 2006") },
		"card": func(lang, currency string, p domain.Product) card {
			return card{lang, currency, p}
		},
		"productHref": ProductHref,
		"pageHref":    PageHref,
		"sortOrders": func() []domain.SortOrder {
			return []domain.SortOrder{
				domain.SortDefault, domain.SortPriceAsc, domain.SortPriceDesc,
				domain.SortNameAsc, domain.SortNameDesc,
			}
		},
		"bound": formatBound,
		"ms":    func(d time.Duration) int64 { return d.Milliseconds() },
	}
}

// markdown converts blog markdown to sanitized markup. Conversion errors
// render nothing.
func (r *Renderer) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		slog.Warn("failed to convert markdown", "op", "Renderer.markdown", "err", err)
		return ""
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// AssetsHandler serves the embedded static files under /assets/.
func AssetsHandler() http.Handler {
	return http.FileServerFS(assetsFS)
}

func ProductHref(id int64) string {
	return "/product?id=" + strconv.FormatInt(id, 10)
}

// ListingQuery encodes criteria, view and page the way the listing page
// reads them back. Defaults are omitted.
func ListingQuery(c domain.FilterCriteria, view page.ViewMode, n int) url.Values {
	q := url.Values{}
	if c.Search != "" {
		q.Set("search", c.Search)
	}
	if c.Category != "" {
		q.Set("category", c.Category)
	}
	if c.Brand != "" {
		q.Set("brand", c.Brand)
	}
	if c.PriceMin > 0 {
		q.Set("min", formatBound(c.PriceMin))
	}
	if c.HasPriceMax() {
		q.Set("max", formatBound(c.PriceMax))
	}
	if c.Sort != "" && c.Sort != domain.SortDefault {
		q.Set("sort", string(c.Sort))
	}
	if view == page.ViewList {
		q.Set("view", string(view))
	}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	return q
}

func PageHref(c domain.FilterCriteria, view page.ViewMode, n int) string {
	q := ListingQuery(c, view, n)
	if len(q) == 0 {
		return "/products"
	}
	return "/products?" + q.Encode()
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
