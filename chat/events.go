package chat

import "github.com/openfloorcontrol/showroom/surface"

// Event is the base interface for all chat events.
// Sealed: only types in this package implement it.
type Event interface {
	eventMarker()
}

// Origin says what produced an outbound request.
type Origin int

const (
	OriginChat  Origin = iota // a message the user typed
	OriginEvent               // a surface interaction
)

func (o Origin) String() string {
	if o == OriginEvent {
		return "event"
	}
	return "chat"
}

// --- Inbound events (to controller) ---

// UserMessage is sent when the user types a chat message.
type UserMessage struct {
	Content string
}

// UserCommand is sent for slash commands (/quit, /clear, /surfaces, /render).
type UserCommand struct {
	Command string
}

// SurfaceCommand is a surface command the frontend already carried out
// locally (CLI /select, /book, ...). It hands the turn back to the loop.
type SurfaceCommand struct {
	Command string
}

// ClientEventRaised carries an interaction from a rendered surface.
type ClientEventRaised struct {
	Event surface.ClientEvent
}

// AgentReplied is the agent's text answer to request Seq.
type AgentReplied struct {
	Seq       int
	Origin    Origin
	EventType string // client event type when Origin is OriginEvent
	Text      string
}

// AgentFailed reports a transport failure for request Seq.
type AgentFailed struct {
	Seq       int
	Origin    Origin
	EventType string
	Err       error
}

// --- Outbound events (from controller) ---

// SendRequest tells the coordinator to send Text to the agent.
type SendRequest struct {
	Seq       int
	Origin    Origin
	EventType string
	Text      string
}

// ShowText adds prose to the transcript.
type ShowText struct {
	Sender string
	Text   string
}

// ShowSurface adds a surface reference to the transcript.
type ShowSurface struct {
	SurfaceID string
	Type      surface.Type
}

// SurfacesChanged carries the registry snapshot after a mutation.
type SurfacesChanged struct {
	Snapshot surface.Snapshot
}

// LoadingChanged toggles the pending-response indicator.
type LoadingChanged struct {
	Loading bool
}

// BookingCompleted tells renderers a booking went through.
type BookingCompleted struct{}

// WaitingForUser indicates the turn has returned to the user.
type WaitingForUser struct{}

// ConversationCleared indicates /clear was processed.
type ConversationCleared struct{}

// SessionStopped indicates /quit was processed.
type SessionStopped struct{}

// SystemInfo is an informational message.
type SystemInfo struct {
	Text string
}

// Seal the interface; only chat package types can implement Event.
func (UserMessage) eventMarker()         {}
func (UserCommand) eventMarker()         {}
func (SurfaceCommand) eventMarker()      {}
func (ClientEventRaised) eventMarker()   {}
func (AgentReplied) eventMarker()        {}
func (AgentFailed) eventMarker()         {}
func (SendRequest) eventMarker()         {}
func (ShowText) eventMarker()            {}
func (ShowSurface) eventMarker()         {}
func (SurfacesChanged) eventMarker()     {}
func (LoadingChanged) eventMarker()      {}
func (BookingCompleted) eventMarker()    {}
func (WaitingForUser) eventMarker()      {}
func (ConversationCleared) eventMarker() {}
func (SessionStopped) eventMarker()      {}
func (SystemInfo) eventMarker()          {}
