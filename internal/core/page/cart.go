package page

import (
	"context"
	"fmt"
	"slices"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/locale"
)

type CartLine struct {
	Product   domain.Product
	Quantity  int
	UnitPrice string
	LineTotal string
}

type CartView struct {
	Chrome
	Lines    []CartLine
	Subtotal string
}

// CartPage lists the persisted cart by product id. Ids that are no
// longer in the catalog stay in storage but are not shown.
func (s *Storefront) CartPage(ctx context.Context, st *AppState) (CartView, error) {
	const op = "Storefront.CartPage"

	v := CartView{Chrome: s.chrome(ctx, st)}

	cart, err := st.Cart.Load(ctx)
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, err)
	}
	subtotal, err := st.Cart.Subtotal(ctx, st.Catalog)
	if err != nil {
		return v, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]int64, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		p, ok := st.Catalog.Find(id)
		if !ok {
			continue
		}
		qty := cart[id]
		v.Lines = append(v.Lines, CartLine{
			Product:   p,
			Quantity:  qty,
			UnitPrice: locale.FormatPrice(p.Price, st.Currency),
			LineTotal: locale.FormatPrice(p.Price*float64(qty), st.Currency),
		})
	}
	v.Subtotal = locale.FormatPrice(subtotal, st.Currency)
	return v, nil
}
