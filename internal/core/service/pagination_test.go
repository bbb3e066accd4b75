package service_test

import (
	"testing"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nProducts(n int) []domain.Product {
	ps := make([]domain.Product, n)
	for i := range ps {
		ps[i] = domain.Product{ID: int64(i + 1)}
	}
	return ps
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, service.TotalPages(0, 12))
	assert.Equal(t, 1, service.TotalPages(12, 12))
	assert.Equal(t, 2, service.TotalPages(13, 12))
	assert.Equal(t, 3, service.TotalPages(25, 12))
	assert.Equal(t, 0, service.TotalPages(5, 0))
}

func TestPaginate(t *testing.T) {
	results := nProducts(25)

	t.Run("LastPage", func(t *testing.T) {
		v, err := service.Paginate(results, 12, 3)
		require.NoError(t, err)
		require.Len(t, v.Items, 1)
		assert.Equal(t, int64(25), v.Items[0].ID)
		assert.Equal(t, 3, v.CurrentPage)
		assert.Equal(t, 3, v.TotalPages)
	})

	t.Run("FirstPage", func(t *testing.T) {
		v, err := service.Paginate(results, 12, 1)
		require.NoError(t, err)
		assert.Len(t, v.Items, 12)
		assert.Equal(t, int64(1), v.Items[0].ID)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		for _, page := range []int{-1, 0, 4} {
			_, err := service.Paginate(results, 12, page)
			require.ErrorIs(t, err, domain.ErrPageOutOfRange, "page %d", page)
		}
	})

	t.Run("EmptyResults", func(t *testing.T) {
		v, err := service.Paginate(nil, 12, 1)
		require.NoError(t, err)
		assert.Empty(t, v.Items)
		assert.Zero(t, v.TotalPages)

		_, err = service.Paginate(nil, 12, 2)
		require.ErrorIs(t, err, domain.ErrPageOutOfRange)
	})

	t.Run("InvalidPageSize", func(t *testing.T) {
		_, err := service.Paginate(results, 0, 1)
		require.Error(t, err)
	})
}

func TestPager(t *testing.T) {
	p := service.NewPager(nProducts(25), 12)
	assert.Equal(t, 1, p.Current())
	assert.Equal(t, 3, p.TotalPages())

	assert.True(t, p.GoTo(3))
	assert.Len(t, p.View().Items, 1)

	assert.False(t, p.GoTo(4))
	assert.False(t, p.GoTo(0))
	assert.Equal(t, 3, p.Current(), "rejected page must keep the current one")

	p.Reset(nProducts(5))
	assert.Equal(t, 1, p.Current())
	assert.Equal(t, 1, p.TotalPages())
	assert.Len(t, p.View().Items, 5)
}

type link struct {
	kind     domain.PageLinkKind
	n        int
	active   bool
	disabled bool
}

func layout(ls []domain.PageLink) []link {
	out := make([]link, 0, len(ls))
	for _, l := range ls {
		n := l.Number
		if l.Kind == domain.PageLinkEllipsis {
			n = 0
		}
		out = append(out, link{l.Kind, n, l.Active, l.Disabled})
	}
	return out
}

func pages(ls []domain.PageLink) []int {
	var out []int
	for _, l := range ls {
		switch l.Kind {
		case domain.PageLinkPage:
			out = append(out, l.Number)
		case domain.PageLinkEllipsis:
			out = append(out, 0)
		}
	}
	return out
}

func TestPageLinks(t *testing.T) {
	t.Run("SinglePage", func(t *testing.T) {
		assert.Nil(t, service.PageLinks(1, 1, 7))
		assert.Nil(t, service.PageLinks(1, 0, 7))
	})

	t.Run("FewPages", func(t *testing.T) {
		got := layout(service.PageLinks(1, 3, 7))
		assert.Equal(t, []link{
			{domain.PageLinkPrev, 0, false, true},
			{domain.PageLinkPage, 1, true, false},
			{domain.PageLinkPage, 2, false, false},
			{domain.PageLinkPage, 3, false, false},
			{domain.PageLinkNext, 2, false, false},
		}, got)
	})

	t.Run("LastPageDisablesNext", func(t *testing.T) {
		ls := service.PageLinks(3, 3, 7)
		assert.True(t, ls[len(ls)-1].Disabled)
		assert.False(t, ls[0].Disabled)
	})

	// 0 marks an ellipsis.
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"WindowAtStart", 1, 20, []int{1, 2, 3, 4, 5, 6, 7, 0, 20}},
		{"WindowCentred", 10, 20, []int{1, 0, 7, 8, 9, 10, 11, 12, 13, 0, 20}},
		{"WindowShiftedAtEnd", 20, 20, []int{1, 0, 14, 15, 16, 17, 18, 19, 20}},
		{"NoGapBeforeSecond", 5, 20, []int{1, 2, 3, 4, 5, 6, 7, 8, 0, 20}},
		{"NoGapBeforeLast", 16, 20, []int{1, 0, 13, 14, 15, 16, 17, 18, 19, 20}},
		{"ExactlyMaxVisible", 4, 7, []int{1, 2, 3, 4, 5, 6, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := service.PageLinks(tt.current, tt.total, service.MaxVisiblePages)
			assert.Equal(t, tt.want, pages(ls))
			for _, l := range ls {
				if l.Kind == domain.PageLinkPage {
					assert.Equal(t, l.Number == tt.current, l.Active)
					assert.GreaterOrEqual(t, l.Number, 1)
					assert.LessOrEqual(t, l.Number, tt.total)
				}
			}
		})
	}
}
