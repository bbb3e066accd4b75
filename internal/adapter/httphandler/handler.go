package httphandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/niksmo/gsm-storefront/internal/adapter/render"
	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/page"
)

// GET  /                     home
// GET  /search?q=            redirect to the filtered listing
// GET  /products             listing (search, category, brand, min, max, sort, page, view)
// GET  /product?id=          detail, 404 panel for unknown ids
// GET  /cart                 cart page
// GET  /chat, POST /chat     support chat (POST is rate limited per visitor)
// POST /actions/{action}     page.Dispatcher actions, JSON when Accept asks for it
// GET  /api/products         listing as JSON
// GET  /api/cart             cart as JSON
// GET  /healthz

type Options struct {
	// FetchTimeout bounds booting a page view, catalog fetch included.
	FetchTimeout  time.Duration
	ChatLimiter   *VisitorLimiter
	SecureCookies bool
}

type StorefrontHandler struct {
	sf           *page.Storefront
	actions      *page.Dispatcher
	renderer     *render.Renderer
	chatLimiter  *VisitorLimiter
	fetchTimeout time.Duration
}

func NewRouter(
	sf *page.Storefront, renderer *render.Renderer, opts Options,
) http.Handler {
	limiter := opts.ChatLimiter
	if limiter == nil {
		limiter = NewVisitorLimiter(0, 1)
	}
	h := StorefrontHandler{
		sf:           sf,
		actions:      sf.Dispatcher(),
		renderer:     renderer,
		chatLimiter:  limiter,
		fetchTimeout: opts.FetchTimeout,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Visitor(opts.SecureCookies))
	r.Use(Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/assets/*", render.AssetsHandler())

	r.Get("/", h.Home)
	r.Get("/search", h.Search)
	r.Get("/products", h.Products)
	r.Get("/product", h.Product)
	r.Get("/cart", h.Cart)
	r.Get("/chat", h.Chat)
	r.With(AllowForm).Post("/chat", h.SendChat)
	r.With(AllowForm).Post("/actions/{action}", h.Action)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.APIProducts)
		r.Get("/cart", h.APICart)
	})
	return r
}

func (h StorefrontHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.Home"

	st := h.boot(r, op)
	v := h.sf.Home(r.Context(), st)
	h.html(w, op, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Home(w, v)
	})
}

func (h StorefrontHandler) Search(w http.ResponseWriter, r *http.Request) {
	target, ok := page.SearchTarget(r.URL.Query().Get("q"))
	if !ok {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h StorefrontHandler) Products(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.Products"

	st := h.boot(r, op)
	chrome, v := h.sf.ListingPage(r.Context(), st, r.URL.Query())
	h.html(w, op, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Listing(w, chrome, v)
	})
}

func (h StorefrontHandler) Product(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.Product"
	log := slog.With("op", op)

	st := h.boot(r, op)
	v, err := h.sf.Detail(r.Context(), st, r.URL.Query().Get("id"))
	if err != nil {
		log.Debug("product not shown", "err", err)
		h.html(w, op, http.StatusNotFound, func(w io.Writer) error {
			return h.renderer.NotFound(w, v.Chrome)
		})
		return
	}
	h.html(w, op, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Detail(w, v)
	})
}

func (h StorefrontHandler) Cart(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.Cart"
	log := slog.With("op", op)

	st := h.boot(r, op)
	v, err := h.sf.CartPage(r.Context(), st)
	if err != nil {
		log.Error("failed to load cart", "err", err)
	}
	h.html(w, op, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Cart(w, v)
	})
}

func (h StorefrontHandler) Chat(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.Chat"
	log := slog.With("op", op)

	st := h.boot(r, op)
	v, err := h.sf.Chat(r.Context(), st)
	if err != nil {
		log.Error("failed to load transcript", "err", err)
	}
	h.html(w, op, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Chat(w, v)
	})
}

func (h StorefrontHandler) SendChat(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.SendChat"
	log := slog.With("op", op)

	visitor := VisitorFromContext(r.Context())
	if !h.chatLimiter.Allow(visitor) {
		http.Error(w, "too many messages", http.StatusTooManyRequests)
		log.Warn("chat rate limited", "visitor", visitor)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		log.Warn("failed to parse form", "err", err)
		return
	}

	st := h.boot(r, op)
	if _, err := h.sf.SendChat(r.Context(), st, r.PostForm.Get("message")); err != nil {
		http.Error(w, "failed to send message", http.StatusInternalServerError)
		log.Error("failed to send message", "err", err)
		return
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// Action runs a dispatcher action. Form posts are redirected back to the
// referring page; fetch requests asking for JSON get an [ActionResponse].
func (h StorefrontHandler) Action(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.Action"
	name := chi.URLParam(r, "action")
	log := slog.With("op", op, "action", name)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		log.Warn("failed to parse form", "err", err)
		return
	}

	st := h.boot(r, op)
	res, err := h.actions.Dispatch(r.Context(), st, name, r.Form)
	status := http.StatusOK
	if err != nil {
		status = actionStatus(err)
		if status == http.StatusInternalServerError {
			log.Error("action failed", "err", err)
		} else {
			log.Info("action refused", "err", err)
		}
	}

	if wantsJSON(r) {
		resp := fromResult(res)
		if err != nil {
			resp.Error = http.StatusText(status)
			resp.CartCount = st.CartCount(r.Context())
		}
		writeJSON(w, op, status, resp)
		return
	}

	if errors.Is(err, domain.ErrUnknownAction) {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, back(r), http.StatusSeeOther)
}

func (h StorefrontHandler) APIProducts(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.APIProducts"

	st := h.boot(r, op)
	if st.CatalogErr != nil {
		writeJSON(w, op, http.StatusServiceUnavailable, ActionResponse{
			Error: domain.ErrFeedUnavailable.Error(),
		})
		return
	}
	_, v := h.sf.ListingPage(r.Context(), st, r.URL.Query())
	writeJSON(w, op, http.StatusOK, fromListingView(v))
}

func (h StorefrontHandler) APICart(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.APICart"
	log := slog.With("op", op)

	st := h.boot(r, op)
	v, err := h.sf.CartPage(r.Context(), st)
	if err != nil {
		http.Error(w, "failed to load cart", http.StatusInternalServerError)
		log.Error("failed to load cart", "err", err)
		return
	}
	writeJSON(w, op, http.StatusOK, fromCartView(v))
}

func (h StorefrontHandler) boot(r *http.Request, op string) *page.AppState {
	ctx := r.Context()
	if h.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.fetchTimeout)
		defer cancel()
	}

	st := h.sf.Boot(
		ctx, VisitorFromContext(r.Context()), r.Header.Get("Accept-Language"),
	)
	if st.CatalogErr != nil {
		slog.Warn("catalog unavailable", "op", op, "err", st.CatalogErr)
	}
	return st
}

// html renders into a buffer so a template error can still be answered
// with a 500.
func (h StorefrontHandler) html(
	w http.ResponseWriter, op string, status int, fn func(io.Writer) error,
) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		slog.Error("failed to render page", "op", op, "err", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, op string, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		slog.Error("failed to encode response", "op", op, "err", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}

func actionStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrUnsupportedPreference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// back returns the same-site page the request came from, "/" otherwise.
func back(r *http.Request) string {
	ref := r.Referer()
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return "/"
	}
	target := u.RequestURI()
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
