package locale

import (
	"math"
	"strconv"
)

const DefaultCurrency = "USD"

type currency struct {
	rate     float64
	symbol   string
	decimals int
}

// Static rates against the catalog's base currency (USD).
var currencies = map[string]currency{
	"USD": {1, "$", 2},
	"EUR": {0.92, "€", 2},
	"GBP": {0.79, "£", 2},
	"JPY": {149.50, "¥", 0},
	"CNY": {7.24, "¥", 0},
}

// Currencies lists the supported codes in display order.
var Currencies = []string{"USD", "EUR", "GBP", "JPY", "CNY"}

func IsCurrency(code string) bool {
	_, ok := currencies[code]
	return ok
}

// FormatPrice converts amount from the base currency and prefixes the
// currency symbol. Unknown codes format as USD, NaN formats as "".
func FormatPrice(amount float64, code string) string {
	if math.IsNaN(amount) {
		return ""
	}
	c, ok := currencies[code]
	if !ok {
		c = currencies[DefaultCurrency]
	}
	return c.symbol + strconv.FormatFloat(amount*c.rate, 'f', c.decimals, 64)
}
