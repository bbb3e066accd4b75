package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

// Serde frames avro payloads with the schema registry header: a zero magic
// byte and the big-endian schema id.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// SubjectForTopic names the value subject of topic under the registry's
// default topic naming strategy.
func SubjectForTopic(topic string) string {
	return topic + "-value"
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

// SubjectOpt and SchemaIdentifierOpt are both required.
func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = si
		return nil
	}
}

func collectOpts(opts []Opt) (serdeOpts, error) {
	var so serdeOpts
	if len(opts) != 2 {
		return so, ErrTooFewOpts
	}
	for _, o := range opts {
		if err := o(&so); err != nil {
			return so, err
		}
	}
	if so.subject == "" || so.si == nil {
		return so, ErrTooFewOpts
	}
	return so, nil
}

// NewSerdeCartEventV1 registers [CartEventSchemaTextV1] under the subject
// and binds it to [CartEventV1].
func NewSerdeCartEventV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeCartEventV1"

	s, err := registerAvro(ctx, CartEventSchemaTextV1, CartEventV1{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// registerAvro parses schemaText before asking the registry for an id, so a
// broken schema never reaches the registry.
func registerAvro(
	ctx context.Context, schemaText string, example any, opts []Opt,
) (*sr.Serde, error) {
	so, err := collectOpts(opts)
	if err != nil {
		return nil, err
	}

	avroSchema, err := avro.Parse(schemaText)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	id, err := so.si.DetermineID(ctx, so.subject, schemaText)
	if err != nil {
		return nil, fmt.Errorf("subject %q: %w", so.subject, err)
	}

	s := new(sr.Serde)
	s.Register(
		id,
		example,
		sr.EncodeFn(func(v any) ([]byte, error) {
			return avro.Marshal(avroSchema, v)
		}),
		sr.DecodeFn(func(data []byte, v any) error {
			return avro.Unmarshal(avroSchema, data, v)
		}),
	)
	return s, nil
}
