// Package surface holds the generative-UI surface protocol: envelopes sent by
// the agent, the registry of live surfaces they mutate, and the client events
// that flow back when the user interacts with a rendered surface.
package surface

import (
	"encoding/json"
	"errors"
)

// Action is the discriminator of a protocol envelope.
type Action string

const (
	BeginRendering  Action = "beginRendering"
	SurfaceUpdate   Action = "surfaceUpdate"
	DataModelUpdate Action = "dataModelUpdate"
	DeleteSurface   Action = "deleteSurface"
)

// Type is the declared type of a surface. Values outside the known set are
// legal and are carried through untouched.
type Type string

const (
	TypeTable          Type = "table"
	TypeCardComparison Type = "card-comparison"
	TypeBookingForm    Type = "booking-form"
)

// Client event types produced by renderers.
const (
	EventRowSelect  = "rowSelect"
	EventCardAction = "cardAction"
	EventFormSubmit = "formSubmit"
	EventCancel     = "cancel"
	EventUnknown    = "unknown"
)

// Card actions carried in the payload of a cardAction event.
const (
	CardActionBook          = "book"
	CardActionCancelBooking = "cancelBooking"
)

// ErrNotEnvelope is returned for input that lacks an action or a surface id.
var ErrNotEnvelope = errors.New("not a protocol envelope")

// ErrCarNotFound is returned when a comparison has no car with the given id.
var ErrCarNotFound = errors.New("car not found")

// Envelope is one protocol message from the agent.
type Envelope struct {
	Action      Action          `json:"action"`
	SurfaceID   string          `json:"surfaceId"`
	SurfaceType Type            `json:"surfaceType,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Surface is the registry's view of one live surface.
type Surface struct {
	ID   string
	Type Type
	Data json.RawMessage
}

// Snapshot is a copy of the registry, owned by whoever received it.
type Snapshot map[string]Surface

// ClientEvent is a user interaction on a surface, bound for the agent.
// Payload always carries the originating surfaceId.
type ClientEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// SurfaceID returns the originating surface of the event.
func (e ClientEvent) SurfaceID() string {
	s, _ := e.Payload["surfaceId"].(string)
	return s
}

// Has reports whether the payload carries key.
func (e ClientEvent) Has(key string) bool {
	_, ok := e.Payload[key]
	return ok
}

// Field returns a payload value as text, or "" when absent.
func (e ClientEvent) Field(key string) string {
	switch v := e.Payload[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return scalarText(v)
	}
}

func cloneRaw(data json.RawMessage) json.RawMessage {
	if data == nil {
		return nil
	}
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out
}
