// Package agent is the network boundary: it carries chat text and client
// events to a conversational agent and returns its text reply.
package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/openfloorcontrol/showroom/surface"
)

// EventPrefix marks a request that carries a client event instead of chat.
const EventPrefix = "EVENT: "

// Reply is the agent's answer. Text is either prose or a JSON envelope.
type Reply struct {
	Text string
}

// Transport sends one request to the agent and waits for its reply.
// Implementations must be safe to call from several goroutines.
type Transport interface {
	Send(ctx context.Context, text string) (Reply, error)
	Close() error
}

// FormatEvent builds the request text for a client event.
func FormatEvent(ev surface.ClientEvent) string {
	payload := ev.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	b, err := json.Marshal(struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}{ev.Type, payload})
	if err != nil {
		// Keep the type and surface id when the payload does not encode.
		b, _ = json.Marshal(map[string]any{"type": ev.Type, "payload": map[string]any{"surfaceId": ev.SurfaceID()}})
	}
	return EventPrefix + string(b)
}

// ParseEvent reverses FormatEvent. ok is false when text is not an event.
func ParseEvent(text string) (surface.ClientEvent, bool) {
	idx := strings.Index(text, EventPrefix)
	if idx < 0 {
		return surface.ClientEvent{}, false
	}
	var ev surface.ClientEvent
	if err := json.Unmarshal([]byte(text[idx+len(EventPrefix):]), &ev); err != nil {
		return surface.ClientEvent{}, false
	}
	if ev.Payload == nil {
		ev.Payload = map[string]any{}
	}
	return ev, true
}
