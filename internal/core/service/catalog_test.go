package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedStub struct {
	data []byte
	err  error
}

func (f feedStub) FetchFeed(context.Context) ([]byte, error) {
	return f.data, f.err
}

func TestParseFeed(t *testing.T) {
	t.Run("ValidFeed", func(t *testing.T) {
		data := []byte(`[
			{"id": 1, "name": "Cable A", "price": 10, "stock": 5,
			 "desc": "1m", "category": "cables", "brand": "Volt",
			 "image": "a.png", "featured": true},
			{"id": 2, "name": "Box B", "price": 20, "sale": true}
		]`)
		catalog, err := service.ParseFeed(data)
		require.NoError(t, err)
		assert.Equal(t, domain.Catalog{
			{
				ID: 1, Name: "Cable A", Description: "1m", Price: 10, Stock: 5,
				Category: "cables", Brand: "Volt", Image: "a.png", Featured: true,
			},
			{ID: 2, Name: "Box B", Price: 20, Sale: true},
		}, catalog)
	})

	t.Run("MalformedEntriesAreDropped", func(t *testing.T) {
		data := []byte(`[
			{"id": 1, "name": "ok", "price": 1},
			{"id": 2, "price": 1},
			{"id": 3, "name": "", "price": 1},
			{"id": 4, "name": "no price"},
			{"name": "no id", "price": 1},
			{"id": 5, "name": "negative", "price": -1},
			{"id": 6, "name": "bad stock", "price": 1, "stock": -2},
			{"id": "7", "name": "string id", "price": 1},
			"not an object",
			{"id": 8, "name": "free", "price": 0},
			{"id": 1, "name": "duplicate", "price": 3}
		]`)
		catalog, err := service.ParseFeed(data)
		require.NoError(t, err)
		require.Len(t, catalog, 2)
		assert.Equal(t, "ok", catalog[0].Name)
		assert.Equal(t, int64(8), catalog[1].ID)
	})

	t.Run("NonPositiveIDsAreDropped", func(t *testing.T) {
		data := []byte(`[
			{"id": 0, "name": "Zero", "price": 5, "stock": 3},
			{"id": -4, "name": "Negative", "price": 5},
			{"id": 9, "name": "Nine", "price": 5}
		]`)
		catalog, err := service.ParseFeed(data)
		require.NoError(t, err)
		require.Len(t, catalog, 1)
		assert.Equal(t, int64(9), catalog[0].ID)
	})

	t.Run("EmptyArray", func(t *testing.T) {
		catalog, err := service.ParseFeed([]byte(`[]`))
		require.NoError(t, err)
		assert.Empty(t, catalog)
	})

	for name, data := range map[string]string{
		"InvalidJSON": `[{"id": 1,`,
		"NotAnArray":  `{"products": []}`,
		"Empty":       ``,
	} {
		t.Run(name, func(t *testing.T) {
			catalog, err := service.ParseFeed([]byte(data))
			require.ErrorIs(t, err, domain.ErrFeedUnavailable)
			assert.Empty(t, catalog)
		})
	}
}

func TestCatalogLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		l := service.NewCatalogLoader(feedStub{
			data: []byte(`[{"id": 1, "name": "a", "price": 1}]`),
		})
		catalog, err := l.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, catalog, 1)
	})

	t.Run("FetchFailure", func(t *testing.T) {
		errNet := errors.New("connection refused")
		l := service.NewCatalogLoader(feedStub{err: errNet})

		catalog, err := l.Load(ctx)
		require.ErrorIs(t, err, domain.ErrFeedUnavailable)
		require.ErrorIs(t, err, errNet)
		assert.NotNil(t, catalog)
		assert.Empty(t, catalog)
	})

	t.Run("ParseFailure", func(t *testing.T) {
		l := service.NewCatalogLoader(feedStub{data: []byte(`<html>`)})

		catalog, err := l.Load(ctx)
		require.ErrorIs(t, err, domain.ErrFeedUnavailable)
		assert.Empty(t, catalog)
	})
}
