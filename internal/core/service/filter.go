package service

import (
	"cmp"
	"slices"
	"strings"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Apply filters and sorts catalog with English name collation.
//
// The result is a new slice holding a subset of catalog. Equal sort keys
// keep their catalog order.
func Apply(catalog domain.Catalog, c domain.FilterCriteria) []domain.Product {
	return ApplyLocale(catalog, c, language.English)
}

// ApplyLocale is [Apply] with names compared by the collation rules of tag.
func ApplyLocale(
	catalog domain.Catalog, c domain.FilterCriteria, tag language.Tag,
) []domain.Product {
	search := strings.ToLower(c.Search)

	out := make([]domain.Product, 0, len(catalog))
	for _, p := range catalog {
		if matches(p, c, search) {
			out = append(out, p)
		}
	}

	sortProducts(out, c.Sort, tag)
	return out
}

func matches(p domain.Product, c domain.FilterCriteria, search string) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(p.Name), search) &&
		!strings.Contains(strings.ToLower(p.Description), search) {
		return false
	}
	if c.Category != "" && p.Category != c.Category {
		return false
	}
	if c.Brand != "" && p.Brand != c.Brand {
		return false
	}
	return p.Price >= c.PriceMin && p.Price <= c.PriceMax
}

func sortProducts(ps []domain.Product, order domain.SortOrder, tag language.Tag) {
	switch order {
	case domain.SortPriceAsc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case domain.SortNameAsc:
		// collate.Collator keeps internal buffers and is not safe to share.
		cl := collate.New(tag)
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cl.CompareString(a.Name, b.Name)
		})
	case domain.SortNameDesc:
		cl := collate.New(tag)
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cl.CompareString(b.Name, a.Name)
		})
	}
}
