package httphandler

import (
	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/page"
)

type (
	Product struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"desc,omitempty"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Category    string  `json:"category,omitempty"`
		Brand       string  `json:"brand,omitempty"`
		Image       string  `json:"image"`
		Featured    bool    `json:"featured"`
		Sale        bool    `json:"sale"`
	}

	ProductsPage struct {
		Items       []Product `json:"items"`
		CurrentPage int       `json:"currentPage"`
		TotalPages  int       `json:"totalPages"`
		Shown       int       `json:"shown"`
		Total       int       `json:"total"`
	}
)

type (
	CartLine struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Quantity  int    `json:"quantity"`
		UnitPrice string `json:"unitPrice"`
		LineTotal string `json:"lineTotal"`
	}

	Cart struct {
		Count    int        `json:"count"`
		Lines    []CartLine `json:"lines"`
		Subtotal string     `json:"subtotal"`
		Currency string     `json:"currency"`
	}
)

type (
	Notification struct {
		Message        string `json:"message"`
		Kind           string `json:"kind"`
		DismissAfterMs int64  `json:"dismissAfterMs"`
	}

	ActionResponse struct {
		Notification *Notification `json:"notification,omitempty"`
		CartCount    int           `json:"cartCount"`
		Error        string        `json:"error,omitempty"`
	}
)

func fromDomainProduct(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		Brand:       p.Brand,
		Image:       p.ImageOrPlaceholder(),
		Featured:    p.Featured,
		Sale:        p.Sale,
	}
}

func fromListingView(v page.ListingView) ProductsPage {
	items := make([]Product, len(v.Items))
	for i, p := range v.Items {
		items[i] = fromDomainProduct(p)
	}
	return ProductsPage{
		Items:       items,
		CurrentPage: v.CurrentPage,
		TotalPages:  v.TotalPages,
		Shown:       v.Shown,
		Total:       v.Total,
	}
}

func fromCartView(v page.CartView) Cart {
	lines := make([]CartLine, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = CartLine{
			ID:        l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		}
	}
	return Cart{
		Count:    v.CartCount,
		Lines:    lines,
		Subtotal: v.Subtotal,
		Currency: v.Currency,
	}
}

func fromResult(res page.Result) ActionResponse {
	resp := ActionResponse{CartCount: res.CartCount}
	if n := res.Notification; n != nil {
		resp.Notification = &Notification{
			Message:        n.Message,
			Kind:           string(n.Kind),
			DismissAfterMs: n.DismissAfter.Milliseconds(),
		}
	}
	return resp
}
