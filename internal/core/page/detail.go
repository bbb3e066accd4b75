package page

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/locale"
)

// UnknownStockLimit caps the quantity stepper when the feed has no stock.
const UnknownStockLimit = 999

const (
	defaultCategory = "General"
	defaultBrand    = "GSM Technology"
)

type Spec struct {
	Label string
	Value string
}

type DetailView struct {
	Chrome
	Product     domain.Product
	Price       string
	Specs       []Spec
	Related     []domain.Product
	MaxQuantity int
}

// Detail shows the product named by rawID. A missing, malformed or
// unknown id reports [domain.ErrProductNotFound]; the returned view still
// carries the page chrome.
func (s *Storefront) Detail(
	ctx context.Context, st *AppState, rawID string,
) (DetailView, error) {
	const op = "Storefront.Detail"

	v := DetailView{Chrome: s.chrome(ctx, st)}

	p, err := findProduct(st.Catalog, rawID)
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, err)
	}

	v.Product = p
	v.Price = locale.FormatPrice(p.Price, st.Currency)
	v.Specs = s.specs(st, p)
	v.Related = related(st.Catalog, p, s.settings.RelatedCount)
	v.MaxQuantity = MaxQuantity(p)
	return v, nil
}

func findProduct(catalog domain.Catalog, rawID string) (domain.Product, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return domain.Product{}, fmt.Errorf("%w: missing id", domain.ErrProductNotFound)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id == 0 {
		return domain.Product{}, fmt.Errorf("%w: id %q", domain.ErrProductNotFound, rawID)
	}
	p, ok := catalog.Find(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
	}
	return p, nil
}

func (s *Storefront) specs(st *AppState, p domain.Product) []Spec {
	t := func(key string) string { return s.bundle.T(st.Language, key) }

	availability := t("out_of_stock")
	if p.InStock() {
		availability = s.bundle.Tf(st.Language, "spec.in_stock_units",
			"count", strconv.Itoa(p.Stock))
	}
	category := p.Category
	if category == "" {
		category = defaultCategory
	}
	brand := p.Brand
	if brand == "" {
		brand = defaultBrand
	}

	return []Spec{
		{t("spec.sku"), strconv.FormatInt(p.ID, 10)},
		{t("spec.price"), locale.FormatPrice(p.Price, st.Currency)},
		{t("spec.stock"), availability},
		{t("spec.category"), category},
		{t("spec.brand"), brand},
		{t("spec.warranty"), t("spec.warranty_value")},
		{t("spec.shipping"), t("spec.shipping_value")},
		{t("spec.returns"), t("spec.returns_value")},
	}
}

// related returns up to n other priced products in catalog order.
func related(catalog domain.Catalog, p domain.Product, n int) []domain.Product {
	out := make([]domain.Product, 0, n)
	for _, c := range catalog {
		if len(out) == n {
			break
		}
		if c.ID == p.ID || c.Price <= 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MaxQuantity bounds the quantity stepper of p.
func MaxQuantity(p domain.Product) int {
	if p.Stock > 0 {
		return p.Stock
	}
	return UnknownStockLimit
}

// ClampQuantity parses a stepper value. Unparseable or non-positive input
// is 1; values above the product's bound are capped.
func ClampQuantity(p domain.Product, raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, MaxQuantity(p))
}
