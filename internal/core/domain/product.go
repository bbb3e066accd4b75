package domain

const PlaceholderImage = "assets/images/placeholder.svg"

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
	Brand       string
	Image       string
	Featured    bool
	Sale        bool
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// Badge returns the card badge label. Featured wins over sale.
func (p Product) Badge() string {
	switch {
	case p.Featured:
		return "NEW"
	case p.Sale:
		return "SALE"
	default:
		return ""
	}
}

func (p Product) ImageOrPlaceholder() string {
	if p.Image == "" {
		return PlaceholderImage
	}
	return p.Image
}

// A Catalog is the ordered, read-only product set of one page view.
type Catalog []Product

func (c Catalog) Find(id int64) (Product, bool) {
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Brands returns distinct non-empty brands in first-seen order.
func (c Catalog) Brands() []string {
	return c.distinct(func(p Product) string { return p.Brand })
}

// Categories returns distinct non-empty categories in first-seen order.
func (c Catalog) Categories() []string {
	return c.distinct(func(p Product) string { return p.Category })
}

func (c Catalog) distinct(field func(Product) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range c {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
