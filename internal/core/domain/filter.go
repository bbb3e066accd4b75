package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type SortOrder string

const (
	SortDefault   SortOrder = "default"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortNameAsc   SortOrder = "name-asc"
	SortNameDesc  SortOrder = "name-desc"
)

// ParseSortOrder maps unknown values to [SortDefault].
func ParseSortOrder(s string) SortOrder {
	switch v := SortOrder(strings.TrimSpace(s)); v {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return v
	default:
		return SortDefault
	}
}

type FilterCriteria struct {
	Search   string
	Category string
	Brand    string
	PriceMin float64
	PriceMax float64
	Sort     SortOrder
}

func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		PriceMin: 0,
		PriceMax: math.Inf(1),
		Sort:     SortDefault,
	}
}

// SetPriceMin normalizes raw input. An empty bound resets to 0; a
// non-numeric, infinite or negative one does too and reports
// ErrInvalidFilterInput for logging only.
func (c *FilterCriteria) SetPriceMin(raw string) error {
	c.PriceMin = 0
	v, ok, err := parseBound(raw)
	if err != nil || !ok {
		return err
	}
	if math.IsInf(v, 1) {
		return fmt.Errorf("%w: %q", ErrInvalidFilterInput, raw)
	}
	c.PriceMin = v
	return nil
}

// SetPriceMax normalizes raw input. An empty bound resets to +Inf; a
// non-numeric or negative one does too and reports ErrInvalidFilterInput
// for logging only.
func (c *FilterCriteria) SetPriceMax(raw string) error {
	c.PriceMax = math.Inf(1)
	v, ok, err := parseBound(raw)
	if err != nil || !ok {
		return err
	}
	c.PriceMax = v
	return nil
}

// HasPriceMax reports whether an upper bound is set.
func (c FilterCriteria) HasPriceMax() bool {
	return !math.IsInf(c.PriceMax, 1)
}

func parseBound(raw string) (v float64, ok bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidFilterInput, raw)
	}
	return v, true, nil
}
