package port

import (
	"context"

	"github.com/niksmo/gsm-storefront/internal/core/domain"
)

// Persisted keys shared by every page.
const (
	KeyCart           = "cart"
	KeyLanguage       = "language"
	KeyCurrency       = "currency"
	KeyChatTranscript = "chat_transcript"
)

type FeedFetcher interface {
	FetchFeed(context.Context) ([]byte, error)
}

// A KeyValueStore is one visitor's persisted storage.
//
// Writes are atomic per key only. Nothing makes a read-modify-write cycle
// atomic, so concurrent page views of one visitor race with last write wins.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type StoreOpener interface {
	Open(visitorID string) KeyValueStore
}

type CartEventsProducer interface {
	ProduceCartEvent(context.Context, domain.CartEvent) error
}

type BlogSource interface {
	Posts(context.Context) ([]domain.BlogPost, error)
}

type Translator interface {
	T(lang, key string) string
}
