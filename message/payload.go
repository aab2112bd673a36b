package message

import (
	"encoding/json"
	"sync"
)

// Payload is the data carried by a message. Payloads declare their schema,
// validate themselves, and serialize deterministically.
type Payload interface {
	// Schema returns the Type describing this payload's structure.
	Schema() Type

	// Validate checks the payload for correctness: required fields
	// present, values in range.
	Validate() error

	json.Marshaler
	json.Unmarshaler
}

var (
	payloadMu      sync.RWMutex
	payloadFactory = make(map[string]func() Payload)
)

// RegisterPayload associates a message type with a payload constructor so
// UnmarshalJSON can rebuild typed payloads from the wire. Registration
// normally happens in an init function of the package defining the payload.
func RegisterPayload(t Type, factory func() Payload) {
	payloadMu.Lock()
	defer payloadMu.Unlock()
	payloadFactory[t.Key()] = factory
}

// newPayload constructs an empty payload for a registered type, or nil.
func newPayload(t Type) Payload {
	payloadMu.RLock()
	defer payloadMu.RUnlock()
	if factory, ok := payloadFactory[t.Key()]; ok {
		return factory()
	}
	return nil
}
