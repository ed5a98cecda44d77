package wsclient

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope WS envelope: {"type":"...","data":{...},"timestamp":"..."}
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// heartbeat frames; everything else is opaque to this package
const (
	TypePing = "PING"
	TypePong = "PONG"
)

// TimestampPayload is the data of PING and PONG.
type TimestampPayload struct {
	Timestamp string `json:"timestamp"`
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Timestamp formats t the way the server expects (ISO-8601, UTC, millis).
func Timestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// NewEnvelope wraps data as an outbound message stamped with the current time.
// A nil data encodes as {}.
func NewEnvelope(typ string, data any) (Envelope, error) {
	raw := json.RawMessage(`{}`)
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return Envelope{}, fmt.Errorf("wsclient: encode %s: %w", typ, err)
		}
		raw = b
	}
	return Envelope{Type: typ, Data: raw, Timestamp: Timestamp(time.Now())}, nil
}

// Decode unmarshals the data into v. Missing data decodes as an empty object.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return json.Unmarshal([]byte(`{}`), v)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("wsclient: decode %s: %w", e.Type, err)
	}
	return nil
}
