package domain

import "errors"

var (
	ErrFeedUnavailable    = errors.New("catalog feed unavailable")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidFilterInput = errors.New("invalid filter input")
	ErrPageOutOfRange     = errors.New("page out of range")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrUnknownAction      = errors.New("unknown action")
	ErrInvalidQuantity    = errors.New("invalid quantity")

	ErrUnsupportedPreference = errors.New("unsupported preference")
)
