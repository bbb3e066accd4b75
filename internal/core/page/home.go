package page

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
)

type HomeView struct {
	Chrome
	Featured []domain.Product
	Posts    []domain.BlogPost
}

// Home shows the first products of the catalog and the latest posts.
func (s *Storefront) Home(ctx context.Context, st *AppState) HomeView {
	const op = "Storefront.Home"

	n := min(s.settings.FeaturedCount, len(st.Catalog))
	v := HomeView{
		Chrome:   s.chrome(ctx, st),
		Featured: st.Catalog[:n],
	}

	if s.blog != nil {
		posts, err := s.blog.Posts(ctx)
		if err != nil {
			slog.Warn("failed to load posts", "op", op, "err", err)
		}
		v.Posts = posts
	}
	return v
}

// SearchTarget returns the listing URL for a home page search. Blank
// queries stay on the page.
func SearchTarget(query string) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}
	return "/products?" + url.Values{"search": {query}}.Encode(), true
}
