package message

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/c360/edistreams/errors"
)

// Meta carries message transport metadata.
type Meta struct {
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
}

// BaseMessage is the standard message envelope: a typed payload plus
// identity and metadata. It is immutable after construction; all fields are
// set up front and never modified in flight.
type BaseMessage struct {
	id      string
	msgType Type
	payload Payload
	meta    Meta
}

// Option configures BaseMessage construction.
type Option func(*BaseMessage)

// WithTime sets a specific creation timestamp instead of time.Now, for
// historical imports and tests.
func WithTime(createdAt time.Time) Option {
	return func(m *BaseMessage) {
		m.meta.CreatedAt = createdAt
	}
}

// NewBaseMessage builds a message around a payload. source names the
// component that produced it.
func NewBaseMessage(msgType Type, payload Payload, source string, opts ...Option) *BaseMessage {
	m := &BaseMessage{
		id:      uuid.New().String(),
		msgType: msgType,
		payload: payload,
		meta:    Meta{CreatedAt: time.Now().UTC(), Source: source},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns the unique message identifier.
func (m *BaseMessage) ID() string {
	return m.id
}

// Type returns the structured message type.
func (m *BaseMessage) Type() Type {
	return m.msgType
}

// Payload returns the message payload.
func (m *BaseMessage) Payload() Payload {
	return m.payload
}

// Meta returns the message metadata.
func (m *BaseMessage) Meta() Meta {
	return m.meta
}

// Hash returns a SHA256 hash over the message type and payload bytes,
// suitable for deduplication.
func (m *BaseMessage) Hash() string {
	h := sha256.New()
	h.Write([]byte(m.msgType.String()))
	if data, err := m.payload.MarshalJSON(); err == nil {
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Validate checks the type, payload, and metadata.
func (m *BaseMessage) Validate() error {
	if !m.msgType.IsValid() {
		return errors.WrapInvalid(errors.ErrInvalidData, "BaseMessage", "Validate",
			fmt.Sprintf("invalid message type: %s", m.msgType.String()))
	}
	if m.payload == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "BaseMessage", "Validate",
			"payload cannot be nil")
	}
	if err := m.payload.Validate(); err != nil {
		return errors.WrapInvalid(err, "BaseMessage", "Validate", "invalid payload")
	}
	return nil
}

// wireFormat is the JSON shape of a BaseMessage.
type wireFormat struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Meta    Meta            `json:"meta"`
}

// MarshalJSON implements json.Marshaler.
func (m *BaseMessage) MarshalJSON() ([]byte, error) {
	payloadData, err := m.payload.MarshalJSON()
	if err != nil {
		return nil, errors.WrapInvalid(err, "BaseMessage", "MarshalJSON", "payload marshal")
	}
	return json.Marshal(wireFormat{
		ID:      m.id,
		Type:    m.msgType,
		Payload: payloadData,
		Meta:    m.meta,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The payload type must have
// been registered via RegisterPayload.
func (m *BaseMessage) UnmarshalJSON(data []byte) error {
	var wire wireFormat
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WrapInvalid(err, "BaseMessage", "UnmarshalJSON", "wire format")
	}

	m.id = wire.ID
	m.msgType = wire.Type
	m.meta = wire.Meta

	payload := newPayload(wire.Type)
	if payload == nil {
		return errors.WrapInvalid(
			fmt.Errorf("unregistered payload type: %s", wire.Type.String()),
			"BaseMessage", "UnmarshalJSON", "payload type lookup")
	}
	if err := payload.UnmarshalJSON(wire.Payload); err != nil {
		return errors.WrapInvalid(err, "BaseMessage", "UnmarshalJSON", "payload unmarshal")
	}
	m.payload = payload

	return nil
}
