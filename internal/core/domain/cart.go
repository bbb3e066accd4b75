package domain

import "time"

// A Cart maps product id to a positive quantity.
type Cart map[int64]int

// Total is the sum of all quantities.
func (c Cart) Total() int {
	var n int
	for _, qty := range c {
		n += qty
	}
	return n
}

// Normalize drops entries with non-positive quantities.
func (c Cart) Normalize() Cart {
	for id, qty := range c {
		if qty <= 0 {
			delete(c, id)
		}
	}
	return c
}

type CartAction string

const (
	CartActionAdd    CartAction = "add"
	CartActionRemove CartAction = "remove"
	CartActionSet    CartAction = "set"
)

// A CartEvent describes one persisted cart mutation.
type CartEvent struct {
	VisitorID  string
	ProductID  int64
	Action     CartAction
	Quantity   int
	CartTotal  int
	OccurredAt time.Time
}
