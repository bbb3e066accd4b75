package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/port"
	"github.com/tidwall/gjson"
)

var feedValidator = validator.New()

// feedEntry is one element of the catalog feed array.
type feedEntry struct {
	ID       *int64   `json:"id" validate:"required,gt=0"`
	Name     *string  `json:"name" validate:"required,min=1"`
	Desc     string   `json:"desc"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Stock    int      `json:"stock" validate:"gte=0"`
	Category string   `json:"category"`
	Brand    string   `json:"brand"`
	Image    string   `json:"image"`
	Featured bool     `json:"featured"`
	Sale     bool     `json:"sale"`
}

func (e feedEntry) toDomain() domain.Product {
	return domain.Product{
		ID:          *e.ID,
		Name:        *e.Name,
		Description: e.Desc,
		Price:       *e.Price,
		Stock:       e.Stock,
		Category:    e.Category,
		Brand:       e.Brand,
		Image:       e.Image,
		Featured:    e.Featured,
		Sale:        e.Sale,
	}
}

// A CatalogLoader fetches the product feed once per page view.
type CatalogLoader struct {
	fetcher port.FeedFetcher
}

func NewCatalogLoader(fetcher port.FeedFetcher) CatalogLoader {
	return CatalogLoader{fetcher}
}

// Load never retries. On failure it returns an empty catalog together with
// an error wrapping [domain.ErrFeedUnavailable]; callers render the empty
// state instead of failing the page.
func (l CatalogLoader) Load(ctx context.Context) (domain.Catalog, error) {
	const op = "CatalogLoader.Load"
	log := slog.With("op", op)

	data, err := l.fetcher.FetchFeed(ctx)
	if err != nil {
		log.Error("failed to load products", "err", err)
		return domain.Catalog{}, fmt.Errorf(
			"%s: %w: %w", op, domain.ErrFeedUnavailable, err,
		)
	}

	catalog, err := ParseFeed(data)
	if err != nil {
		log.Error("failed to parse products", "err", err)
		return domain.Catalog{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("catalog loaded", "nProducts", len(catalog))
	return catalog, nil
}

// ParseFeed decodes a JSON product array. Malformed entries are skipped,
// a document that is not a JSON array is [domain.ErrFeedUnavailable].
func ParseFeed(data []byte) (domain.Catalog, error) {
	const op = "ParseFeed"
	log := slog.With("op", op)

	if !gjson.ValidBytes(data) {
		return domain.Catalog{}, fmt.Errorf(
			"%s: %w: invalid JSON", op, domain.ErrFeedUnavailable,
		)
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return domain.Catalog{}, fmt.Errorf(
			"%s: %w: top level is not an array", op, domain.ErrFeedUnavailable,
		)
	}

	catalog := make(domain.Catalog, 0, len(doc.Array()))
	seen := make(map[int64]struct{})
	var skipped int

	doc.ForEach(func(key, value gjson.Result) bool {
		var e feedEntry
		if err := json.Unmarshal([]byte(value.Raw), &e); err != nil {
			skipped++
			log.Warn("skip undecodable entry", "index", key.Int(), "err", err)
			return true
		}
		if err := feedValidator.Struct(e); err != nil {
			skipped++
			log.Warn("skip malformed entry", "index", key.Int(), "err", err)
			return true
		}
		if _, dup := seen[*e.ID]; dup {
			skipped++
			log.Warn("skip duplicate entry", "id", *e.ID)
			return true
		}
		seen[*e.ID] = struct{}{}
		catalog = append(catalog, e.toDomain())
		return true
	})

	if skipped != 0 {
		log.Info("feed entries skipped", "nSkipped", skipped, "nKept", len(catalog))
	}
	return catalog, nil
}
