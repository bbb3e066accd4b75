package kafka_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/gsm-storefront/internal/adapter/kafka"
	"github.com/niksmo/gsm-storefront/internal/core/domain"
	"github.com/niksmo/gsm-storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type MockProducerClient struct {
	mock.Mock
}

func (m *MockProducerClient) ProduceSync(
	ctx context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	args := m.Called(ctx, rs)
	return args.Get(0).(kgo.ProduceResults)
}

func (m *MockProducerClient) Close() {
	m.Called()
}

type MockEncoder struct {
	mock.Mock
}

func (m *MockEncoder) Encode(v any) ([]byte, error) {
	args := m.Called(v)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func testEvent() domain.CartEvent {
	return domain.CartEvent{
		VisitorID:  "visitor-1",
		ProductID:  3,
		Action:     domain.CartActionAdd,
		Quantity:   2,
		CartTotal:  4,
		OccurredAt: time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newProducer(
	t *testing.T, cl kafka.ProducerClient, enc kafka.Encoder,
) kafka.CartEventsProducer {
	t.Helper()
	p, err := kafka.NewCartEventsProducer(
		kafka.ProducerWithClientOpt(cl),
		kafka.ProducerEncoderOpt(enc),
	)
	require.NoError(t, err)
	return p
}

func TestCartEventsProducer(t *testing.T) {
	t.Run("TooFewOpts", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = kafka.NewCartEventsProducer(kafka.ProducerEncoderOpt(new(MockEncoder)))
		})
	})

	t.Run("NilEncoder", func(t *testing.T) {
		_, err := kafka.NewCartEventsProducer(
			kafka.ProducerWithClientOpt(new(MockProducerClient)),
			kafka.ProducerEncoderOpt(nil),
		)
		require.Error(t, err)
	})

	t.Run("Produce", func(t *testing.T) {
		cl := new(MockProducerClient)
		enc := new(MockEncoder)
		evt := testEvent()

		enc.On("Encode", schema.CartEventV1{
			VisitorID:  "visitor-1",
			ProductID:  3,
			Action:     "add",
			Quantity:   2,
			CartTotal:  4,
			OccurredAt: evt.OccurredAt,
		}).Return([]byte("payload"), nil)

		cl.On("ProduceSync", mock.Anything, mock.MatchedBy(func(rs []*kgo.Record) bool {
			return len(rs) == 1 &&
				string(rs[0].Key) == "visitor-1" &&
				string(rs[0].Value) == "payload"
		})).Return(kgo.ProduceResults{{}})

		p := newProducer(t, cl, enc)
		require.NoError(t, p.ProduceCartEvent(t.Context(), evt))

		enc.AssertExpectations(t)
		cl.AssertExpectations(t)
	})

	t.Run("BrokerError", func(t *testing.T) {
		errBroker := errors.New("broker is down")
		cl := new(MockProducerClient)
		enc := new(MockEncoder)

		enc.On("Encode", mock.Anything).Return([]byte("payload"), nil)
		cl.On("ProduceSync", mock.Anything, mock.Anything).
			Return(kgo.ProduceResults{{Err: errBroker}})

		p := newProducer(t, cl, enc)
		err := p.ProduceCartEvent(t.Context(), testEvent())
		assert.ErrorIs(t, err, errBroker)
	})

	t.Run("EncodeError", func(t *testing.T) {
		errEncode := errors.New("bad record")
		cl := new(MockProducerClient)
		enc := new(MockEncoder)

		enc.On("Encode", mock.Anything).Return(nil, errEncode)

		p := newProducer(t, cl, enc)
		err := p.ProduceCartEvent(t.Context(), testEvent())
		assert.ErrorIs(t, err, errEncode)
		cl.AssertNotCalled(t, "ProduceSync", mock.Anything, mock.Anything)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cl := new(MockProducerClient)
		enc := new(MockEncoder)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		p := newProducer(t, cl, enc)
		err := p.ProduceCartEvent(ctx, testEvent())
		assert.ErrorIs(t, err, context.Canceled)
		enc.AssertNotCalled(t, "Encode", mock.Anything)
	})

	t.Run("Close", func(t *testing.T) {
		cl := new(MockProducerClient)
		cl.On("Close").Return()

		p := newProducer(t, cl, new(MockEncoder))
		p.Close()
		cl.AssertExpectations(t)
	})
}
