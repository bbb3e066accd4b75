package page_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/niksmo/gsm-storefront/internal/adapter/storage"
	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/page"
	"github.com/niksmo/gsm-storefront/internal/core/port"
	"github.com/niksmo/gsm-storefront/internal/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogStub struct {
	catalog domain.Catalog
	err     error
}

func (c catalogStub) Load(context.Context) (domain.Catalog, error) {
	return c.catalog, c.err
}

type blogStub []domain.BlogPost

func (b blogStub) Posts(context.Context) ([]domain.BlogPost, error) {
	return b, nil
}

type MockCartEventsProducer struct {
	mock.Mock
}

func (m *MockCartEventsProducer) ProduceCartEvent(
	ctx context.Context, evt domain.CartEvent,
) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

var _ port.CartEventsProducer = (*MockCartEventsProducer)(nil)

// fixtureCatalog returns 25 products: odd ids are cables, even ids boxes,
// every fifth product is out of stock.
func fixtureCatalog() domain.Catalog {
	c := make(domain.Catalog, 0, 25)
	for i := 1; i <= 25; i++ {
		p := domain.Product{
			ID:       int64(i),
			Price:    float64(i),
			Stock:    i % 5,
			Category: "boxes",
			Brand:    "Volt",
		}
		if i%2 == 1 {
			p.Name = fmt.Sprintf("Cable %02d", i)
			p.Category = "cables"
		} else {
			p.Name = fmt.Sprintf("Box %02d", i)
		}
		if i%3 == 0 {
			p.Brand = "Acme"
		}
		c = append(c, p)
	}
	return c
}

func testSettings() page.Settings {
	return page.Settings{
		SearchDebounce: 10 * time.Millisecond,
		PriceDebounce:  10 * time.Millisecond,
		ChatReplyDelay: 10 * time.Millisecond,
		PublishTimeout: 20 * time.Millisecond,
	}
}

type fixture struct {
	sf     *page.Storefront
	stores *storage.MemoryStore
}

func newFixture(
	t *testing.T, src page.CatalogSource, events port.CartEventsProducer,
) fixture {
	t.Helper()
	bundle, err := locale.NewBundle("en", nil)
	require.NoError(t, err)

	stores := storage.NewMemoryStore()
	posts := blogStub{{ID: 1, Title: "Hello"}}
	sf := page.New(src, stores, events, posts, bundle, testSettings())
	return fixture{sf: sf, stores: stores}
}

func TestBoot(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsFromRequest", func(t *testing.T) {
		f := newFixture(t, catalogStub{catalog: fixtureCatalog()}, nil)

		st := f.sf.Boot(ctx, "v1", "fr-FR,fr;q=0.9")
		assert.Equal(t, "v1", st.VisitorID)
		assert.Len(t, st.Catalog, 25)
		assert.NoError(t, st.CatalogErr)
		assert.Equal(t, "fr", st.Language)
		assert.Equal(t, "USD", st.Currency)
		assert.Equal(t, domain.DefaultCriteria(), st.Criteria)
		assert.Zero(t, st.CartCount(ctx))
	})

	t.Run("PersistedPreferencesWin", func(t *testing.T) {
		f := newFixture(t, catalogStub{catalog: fixtureCatalog()}, nil)
		store := f.stores.Open("v1")
		require.NoError(t, store.Set(ctx, port.KeyLanguage, `"de"`))
		require.NoError(t, store.Set(ctx, port.KeyCurrency, `"GBP"`))

		st := f.sf.Boot(ctx, "v1", "fr")
		assert.Equal(t, "de", st.Language)
		assert.Equal(t, "GBP", st.Currency)
	})

	t.Run("FeedUnavailableRendersEmpty", func(t *testing.T) {
		feedErr := fmt.Errorf("load: %w", domain.ErrFeedUnavailable)
		f := newFixture(t, catalogStub{err: feedErr}, nil)

		st := f.sf.Boot(ctx, "v1", "")
		assert.Empty(t, st.Catalog)
		assert.True(t, st.FeedUnavailable())

		home := f.sf.Home(ctx, st)
		assert.Empty(t, home.Featured)
	})
}

func TestHome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalogStub{catalog: fixtureCatalog()}, nil)
	st := f.sf.Boot(ctx, "v1", "")
	_, err := st.Cart.Add(ctx, 1, 2)
	require.NoError(t, err)

	v := f.sf.Home(ctx, st)
	require.Len(t, v.Featured, 6)
	for i, p := range v.Featured {
		assert.Equal(t, int64(i+1), p.ID)
	}
	assert.Len(t, v.Posts, 1)
	assert.Equal(t, 2, v.CartCount)
	assert.Equal(t, locale.Currencies, v.Currencies)
}

func TestSearchTarget(t *testing.T) {
	target, ok := page.SearchTarget("  usb cable ")
	assert.True(t, ok)
	assert.Equal(t, "/products?search=usb+cable", target)

	_, ok = page.SearchTarget("   ")
	assert.False(t, ok)
}

func TestDetail(t *testing.T) {
	ctx := context.Background()
	catalog := fixtureCatalog()
	f := newFixture(t, catalogStub{catalog: catalog}, nil)
	st := f.sf.Boot(ctx, "v1", "en")

	t.Run("Found", func(t *testing.T) {
		v, err := f.sf.Detail(ctx, st, "3")
		require.NoError(t, err)
		assert.Equal(t, "Cable 03", v.Product.Name)
		assert.Equal(t, "$3.00", v.Price)
		assert.Equal(t, 3, v.MaxQuantity)

		require.Len(t, v.Related, 4)
		for _, p := range v.Related {
			assert.NotEqual(t, int64(3), p.ID)
		}
		assert.Equal(t, int64(1), v.Related[0].ID)
		assert.Equal(t, int64(5), v.Related[3].ID)

		assert.Equal(t, page.Spec{Label: "Product ID", Value: "3"}, v.Specs[0])
		assert.Equal(t, page.Spec{Label: "Availability", Value: "In Stock (3 units)"}, v.Specs[2])
		assert.Equal(t, page.Spec{Label: "Brand", Value: "Acme"}, v.Specs[4])
	})

	t.Run("OutOfStockProduct", func(t *testing.T) {
		v, err := f.sf.Detail(ctx, st, "5")
		require.NoError(t, err)
		assert.Equal(t, page.UnknownStockLimit, v.MaxQuantity)
		assert.Equal(t, "Out of Stock", v.Specs[2].Value)
	})

	for _, raw := range []string{"", "abc", "0", "999"} {
		t.Run("NotFound/"+raw, func(t *testing.T) {
			v, err := f.sf.Detail(ctx, st, raw)
			require.ErrorIs(t, err, domain.ErrProductNotFound)
			assert.Zero(t, v.Product.ID)
		})
	}
}

func TestClampQuantity(t *testing.T) {
	p := domain.Product{Stock: 4}
	assert.Equal(t, 1, page.ClampQuantity(p, ""))
	assert.Equal(t, 1, page.ClampQuantity(p, "-3"))
	assert.Equal(t, 3, page.ClampQuantity(p, " 3 "))
	assert.Equal(t, 4, page.ClampQuantity(p, "10"))
	assert.Equal(t, 500, page.ClampQuantity(domain.Product{}, "500"))
	assert.Equal(t, 999, page.ClampQuantity(domain.Product{}, "5000"))
}

func TestCartPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalogStub{catalog: fixtureCatalog()}, nil)
	st := f.sf.Boot(ctx, "v1", "")
	st.Currency = "EUR"

	_, err := st.Cart.Add(ctx, 2, 3)
	require.NoError(t, err)
	_, err = st.Cart.Add(ctx, 1, 1)
	require.NoError(t, err)
	_, err = st.Cart.Add(ctx, 404, 1)
	require.NoError(t, err)

	v, err := f.sf.CartPage(ctx, st)
	require.NoError(t, err)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, int64(1), v.Lines[0].Product.ID)
	assert.Equal(t, "€0.92", v.Lines[0].UnitPrice)
	assert.Equal(t, 3, v.Lines[1].Quantity)
	assert.Equal(t, "€5.52", v.Lines[1].LineTotal)
	assert.Equal(t, "€6.44", v.Subtotal)
	assert.Equal(t, 5, v.CartCount)
}

func TestChat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalogStub{}, nil)
	st := f.sf.Boot(ctx, "v1", "")

	sent, err := f.sf.SendChat(ctx, st, "   ")
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = f.sf.SendChat(ctx, st, "<b>hi</b>")
	require.NoError(t, err)
	assert.True(t, sent)

	v, err := f.sf.Chat(ctx, st)
	require.NoError(t, err)
	assert.Contains(t, v.Transcript, "&lt;b&gt;hi&lt;/b&gt;")

	require.Eventually(t, func() bool {
		v, err := f.sf.Chat(ctx, st)
		return err == nil &&
			strings.Contains(v.Transcript, "<strong>Support:</strong>") &&
			strings.Contains(v.Transcript, "Thanks, we will message you shortly.")
	}, time.Second, 5*time.Millisecond)
}
