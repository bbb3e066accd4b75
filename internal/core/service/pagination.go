package service

import (
	"fmt"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
)

const MaxVisiblePages = 7

func TotalPages(nResults, pageSize int) int {
	if pageSize <= 0 || nResults <= 0 {
		return 0
	}
	return (nResults + pageSize - 1) / pageSize
}

// Paginate returns page of results. Pages outside [1, totalPages] are
// rejected with [domain.ErrPageOutOfRange]; page 1 of an empty result set
// is an empty view.
func Paginate(
	results []domain.Product, pageSize, page int,
) (domain.PageView, error) {
	const op = "Paginate"

	if pageSize <= 0 {
		return domain.PageView{}, fmt.Errorf("%s: page size %d", op, pageSize)
	}

	total := TotalPages(len(results), pageSize)
	if page < 1 || page > max(total, 1) {
		return domain.PageView{}, fmt.Errorf(
			"%s: %w: %d of %d", op, domain.ErrPageOutOfRange, page, total,
		)
	}

	start := min((page-1)*pageSize, len(results))
	end := min(start+pageSize, len(results))
	return domain.PageView{
		Items:       results[start:end],
		CurrentPage: page,
		TotalPages:  total,
	}, nil
}

// A Pager holds the current page of a result set.
type Pager struct {
	results  []domain.Product
	pageSize int
	current  int
}

func NewPager(results []domain.Product, pageSize int) *Pager {
	return &Pager{results: results, pageSize: pageSize, current: 1}
}

// Reset replaces the result set and returns to page 1.
func (p *Pager) Reset(results []domain.Product) {
	p.results = results
	p.current = 1
}

// GoTo moves to page n. Out of range requests are ignored and report false.
func (p *Pager) GoTo(n int) bool {
	if n < 1 || n > p.TotalPages() {
		return false
	}
	p.current = n
	return true
}

func (p *Pager) Current() int { return p.current }

func (p *Pager) TotalPages() int {
	return TotalPages(len(p.results), p.pageSize)
}

func (p *Pager) View() domain.PageView {
	v, err := Paginate(p.results, p.pageSize, p.current)
	if err != nil {
		return domain.PageView{CurrentPage: p.current, TotalPages: p.TotalPages()}
	}
	return v
}

// PageLinks lays out the page selector: prev, first, a window of up to
// maxVisible pages around current, last, next. Gaps become ellipses. The
// window is shifted rather than clipped at both ends. Nothing is shown for
// a single page.
func PageLinks(current, total, maxVisible int) []domain.PageLink {
	if total <= 1 {
		return nil
	}
	if maxVisible < 1 {
		maxVisible = MaxVisiblePages
	}
	current = min(max(current, 1), total)

	start := max(1, current-maxVisible/2)
	end := min(total, start+maxVisible-1)
	if end-start < maxVisible-1 {
		start = max(1, end-maxVisible+1)
	}

	links := []domain.PageLink{{
		Kind:     domain.PageLinkPrev,
		Number:   current - 1,
		Disabled: current == 1,
	}}

	if start > 1 {
		links = append(links, pageLink(1, current))
		if start > 2 {
			links = append(links, domain.PageLink{Kind: domain.PageLinkEllipsis})
		}
	}

	for i := start; i <= end; i++ {
		links = append(links, pageLink(i, current))
	}

	if end < total {
		if end < total-1 {
			links = append(links, domain.PageLink{Kind: domain.PageLinkEllipsis})
		}
		links = append(links, pageLink(total, current))
	}

	return append(links, domain.PageLink{
		Kind:     domain.PageLinkNext,
		Number:   current + 1,
		Disabled: current == total,
	})
}

func pageLink(n, current int) domain.PageLink {
	return domain.PageLink{
		Kind:   domain.PageLinkPage,
		Number: n,
		Active: n == current,
	}
}
