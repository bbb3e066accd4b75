package schema

import "time"

const CartEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "cart_event",
	"fields": [
		{"name": "visitor_id", "type": "string"},
		{"name": "product_id", "type": "long"},
		{"name": "action", "type": {
			"type": "enum",
			"name": "cart_action",
			"symbols": ["add", "remove", "set"]
		}},
		{"name": "quantity", "type": "int"},
		{"name": "cart_total", "type": "int"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type CartEventV1 struct {
	VisitorID  string    `avro:"visitor_id"`
	ProductID  int64     `avro:"product_id"`
	Action     string    `avro:"action"`
	Quantity   int       `avro:"quantity"`
	CartTotal  int       `avro:"cart_total"`
	OccurredAt time.Time `avro:"occurred_at"`
}
