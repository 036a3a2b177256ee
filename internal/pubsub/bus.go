package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
)

// Envelope types carried on round channels.
const (
	TypeRoundState   = "round_state"
	TypeRoundSettled = "round_settled"
)

// Bus is a fire-and-forget fan-out. Subscribers only see messages published
// after Subscribe returns; the channel closes when ctx is done.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Envelope is the wire shape of every stream message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RoundChannel names the channel carrying updates for one market.
func RoundChannel(marketID string) string {
	return "rounds:" + marketID
}

// Encode wraps payload in an envelope of the given type.
func Encode(typ string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("pubsub: encode %s: %w", typ, err)
	}
	return json.Marshal(Envelope{Type: typ, Payload: raw})
}

// PublishEnvelope encodes and publishes in one step.
func PublishEnvelope(ctx context.Context, bus Bus, channel, typ string, payload interface{}) error {
	msg, err := Encode(typ, payload)
	if err != nil {
		return err
	}
	return bus.Publish(ctx, channel, msg)
}
