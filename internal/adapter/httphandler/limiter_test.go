package httphandler_test

import (
	"testing"

	"github.com/niksmo/gsm-storefront/internal/adapter/httphandler"
	"github.com/stretchr/testify/assert"
)

func TestVisitorLimiter(t *testing.T) {
	t.Run("Per visitor bucket", func(t *testing.T) {
		l := httphandler.NewVisitorLimiter(0.001, 2)

		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))

		assert.True(t, l.Allow("b"))
	})

	t.Run("Disabled", func(t *testing.T) {
		l := httphandler.NewVisitorLimiter(0, 0)
		for range 100 {
			assert.True(t, l.Allow("a"))
		}
	})
}
