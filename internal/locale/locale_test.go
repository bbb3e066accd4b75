package locale_test

import (
	"math"
	"testing"

	"github.com/niksmo/gsm-storefront/internal/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     string
	}{
		{"USD", 19.999, "USD", "$20.00"},
		{"EUR", 10, "EUR", "€9.20"},
		{"GBP", 100, "GBP", "£79.00"},
		{"JPYRoundsToInteger", 19.999, "JPY", "¥2990"},
		{"CNY", 10, "CNY", "¥72"},
		{"Zero", 0, "USD", "$0.00"},
		{"UnknownCurrencyFallsBackToUSD", 5, "XYZ", "$5.00"},
		{"NaN", math.NaN(), "USD", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, locale.FormatPrice(tt.amount, tt.currency))
		})
	}
}

func TestIsCurrency(t *testing.T) {
	for _, c := range locale.Currencies {
		assert.True(t, locale.IsCurrency(c), c)
	}
	assert.False(t, locale.IsCurrency("usd"))
}

func TestBundle(t *testing.T) {
	b, err := locale.NewBundle("en", nil)
	require.NoError(t, err)

	t.Run("Supported", func(t *testing.T) {
		assert.Equal(t, locale.Languages, b.Supported())
		assert.Equal(t, "en", b.Fallback())
	})

	t.Run("SelectedLanguage", func(t *testing.T) {
		assert.Equal(t, "In den Warenkorb", b.T("de", "add_to_cart"))
	})

	t.Run("FallsBackToDefaultLanguage", func(t *testing.T) {
		assert.Equal(t, "Featured Promotions", b.T("de", "featured.title"))
	})

	t.Run("UnknownLanguageUsesDefault", func(t *testing.T) {
		assert.Equal(t, "Add to Cart", b.T("ko", "add_to_cart"))
	})

	t.Run("MissingKeyReturnsKey", func(t *testing.T) {
		assert.Equal(t, "no.such.key", b.T("fr", "no.such.key"))
	})

	t.Run("Placeholders", func(t *testing.T) {
		assert.Equal(t, "Showing 12 of 25 products",
			b.Tf("en", "results.showing", "shown", "12", "total", "25"))
		assert.Equal(t, "Add to Cart", b.Tf("en", "add_to_cart", "odd"))
	})
}

func TestBundleResolve(t *testing.T) {
	b, err := locale.NewBundle("en", nil)
	require.NoError(t, err)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"de-DE,de;q=0.9,en;q=0.8", "de"},
		{"fr;q=0.5, zh;q=0.9", "zh"},
		{"es-MX", "es"},
		{"ja", "en"},
		{"not a header;;", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Resolve(tt.header))
		})
	}
}

func TestNewBundleRestrictsLanguages(t *testing.T) {
	b, err := locale.NewBundle("fr", []string{"de"})
	require.NoError(t, err)

	assert.Equal(t, []string{"fr", "de"}, b.Supported())
	assert.False(t, b.IsSupported("en"))
	assert.Equal(t, "Ajouter au Panier", b.T("es", "add_to_cart"))
	assert.Equal(t, "fr", b.Resolve("en-US"))
}

func TestNewBundleMissingFallback(t *testing.T) {
	_, err := locale.NewBundle("ko", []string{"en"})
	require.Error(t, err)
}
