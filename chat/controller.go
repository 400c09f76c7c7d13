package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openfloorcontrol/showroom/agent"
	"github.com/openfloorcontrol/showroom/surface"
)

// Transcript messages for failures the user should see.
const (
	MsgEmptyResponse  = "Sorry, I couldn't generate a response."
	MsgTransportError = "Error interacting with agent."
	MsgStaleReply     = "Discarded a stale reply; a newer one was already applied."
)

// Transcript sender labels.
const (
	AgentSender = "agent"
	UserSender  = "@user"
)

// Controller is the pure-logic heart of the chat session. It sits on the
// boundary between the agent and the surface registry: it decides whether a
// reply is an envelope or prose, applies local-only surface mutations, and
// decides which client events go over the network.
// It has NO I/O, NO goroutines, NO channels.
type Controller struct {
	processor      *surface.Processor
	RenderSurfaces bool
	DebugFunc      func(string) // injected for debug logging; no-op in tests

	lastSeq     int // last request sequence number handed out
	applied     int // highest sequence number whose reply was applied
	pendingChat int // chat request the loading indicator waits on; 0 if none
	loading     bool
}

// NewController creates a controller over the given processor.
func NewController(p *surface.Processor, renderSurfaces bool) *Controller {
	return &Controller{
		processor:      p,
		RenderSurfaces: renderSurfaces,
		DebugFunc:      func(string) {},
	}
}

// Registry returns the surface registry the controller mutates.
func (c *Controller) Registry() *surface.Registry { return c.processor.Registry() }

// Loading reports whether a chat request is awaiting its reply.
func (c *Controller) Loading() bool { return c.loading }

// HandleEvent processes one event and returns zero or more response events.
func (c *Controller) HandleEvent(ev Event) []Event {
	switch e := ev.(type) {
	case UserMessage:
		return c.handleUserMessage(e)
	case UserCommand:
		return c.handleUserCommand(e)
	case ClientEventRaised:
		return c.handleClientEvent(e.Event)
	case AgentReplied:
		return c.handleReply(e)
	case AgentFailed:
		return c.handleFailure(e)
	default:
		return nil
	}
}

func (c *Controller) handleUserMessage(e UserMessage) []Event {
	text := strings.TrimSpace(e.Content)
	if text == "" {
		return nil
	}
	seq := c.nextSeq()
	c.pendingChat = seq

	var events []Event
	if !c.loading {
		c.loading = true
		events = append(events, LoadingChanged{Loading: true})
	}
	return append(events, SendRequest{Seq: seq, Origin: OriginChat, Text: text})
}

func (c *Controller) handleUserCommand(e UserCommand) []Event {
	fields := strings.Fields(e.Command)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "/quit", "/exit":
		return []Event{SessionStopped{}}
	case "/clear":
		return []Event{ConversationCleared{}}
	case "/surfaces":
		return []Event{SystemInfo{Text: c.describeSurfaces()}}
	case "/render":
		if len(fields) > 1 {
			switch fields[1] {
			case "on":
				c.RenderSurfaces = true
			case "off":
				c.RenderSurfaces = false
			}
		}
		state := "off"
		if c.RenderSurfaces {
			state = "on"
		}
		return []Event{SystemInfo{Text: "Surface rendering " + state}}
	default:
		return []Event{SystemInfo{Text: fmt.Sprintf("Unknown command: %s", e.Command)}}
	}
}

func (c *Controller) describeSurfaces() string {
	reg := c.Registry()
	if reg.Len() == 0 {
		return "No live surfaces."
	}
	var lines []string
	for _, id := range reg.IDs() {
		s, _ := reg.Get(id)
		lines = append(lines, fmt.Sprintf("%s (%s)", id, s.Type))
	}
	return "Live surfaces: " + strings.Join(lines, ", ")
}

// --- Outbound: client events ---

func (c *Controller) handleClientEvent(ev surface.ClientEvent) []Event {
	if ev.Type == surface.EventCardAction {
		switch ev.Field("action") {
		case surface.CardActionBook:
			c.beginBooking(ev)
			return nil
		case surface.CardActionCancelBooking:
			c.cancelBooking(ev)
			return nil
		}
		if ev.Has("email") {
			c.debug("relabel cardAction with email as %s (surface %s)", surface.EventFormSubmit, ev.SurfaceID())
			ev.Type = surface.EventFormSubmit
		}
	}

	seq := c.nextSeq()
	c.debug("forward %s from %s as request %d", ev.Type, ev.SurfaceID(), seq)
	return []Event{SendRequest{
		Seq:       seq,
		Origin:    OriginEvent,
		EventType: ev.Type,
		Text:      agent.FormatEvent(ev),
	}}
}

// beginBooking marks the clicked car as the booking target of its surface.
// Nothing goes over the network.
func (c *Controller) beginBooking(ev surface.ClientEvent) {
	id := ev.SurfaceID()
	s, ok := c.Registry().Get(id)
	if !ok {
		c.debug("book: surface %s not found, dropped", id)
		return
	}
	carID := ev.Field("carId")
	data, err := surface.WithBookingContext(s.Data, carID)
	if errors.Is(err, surface.ErrCarNotFound) {
		c.debug("book: car %s not in surface %s, dropped", carID, id)
		return
	}
	if err != nil {
		c.debug("book: %v", err)
		return
	}
	c.applyLocal(surface.Envelope{Action: surface.SurfaceUpdate, SurfaceID: id, SurfaceType: s.Type, Data: data})
}

// cancelBooking drops the booking target of a surface, locally.
func (c *Controller) cancelBooking(ev surface.ClientEvent) {
	id := ev.SurfaceID()
	s, ok := c.Registry().Get(id)
	if !ok {
		c.debug("cancelBooking: surface %s not found, dropped", id)
		return
	}
	data, err := surface.WithoutBookingContext(s.Data)
	if err != nil {
		c.debug("cancelBooking: %v", err)
		return
	}
	c.applyLocal(surface.Envelope{Action: surface.SurfaceUpdate, SurfaceID: id, SurfaceType: s.Type, Data: data})
}

func (c *Controller) applyLocal(env surface.Envelope) {
	if err := c.processor.Process(env); err != nil {
		c.debug("local %s on %s: %v", env.Action, env.SurfaceID, err)
	}
}

// --- Inbound: agent replies ---

func (c *Controller) handleReply(e AgentReplied) []Event {
	if e.Seq < c.applied {
		c.debug("dropping stale reply %d (already applied %d)", e.Seq, c.applied)
		return append([]Event{SystemInfo{Text: MsgStaleReply}}, c.settle(e.Seq)...)
	}
	c.applied = e.Seq

	var events []Event
	text := strings.TrimSpace(e.Text)
	switch {
	case text == "":
		if e.Origin == OriginChat {
			events = append(events, ShowText{Sender: AgentSender, Text: MsgEmptyResponse})
		} else {
			c.debug("empty reply to %s event %d", e.EventType, e.Seq)
		}
	default:
		if env, ok := surface.Detect(text); ok {
			events = append(events, c.applyInbound(env)...)
			break
		}
		if e.Origin == OriginEvent && e.EventType == surface.EventFormSubmit {
			events = append(events, BookingCompleted{})
		}
		events = append(events, ShowText{Sender: AgentSender, Text: text})
	}
	return append(events, c.settle(e.Seq)...)
}

func (c *Controller) applyInbound(env surface.Envelope) []Event {
	if err := c.processor.Process(env); err != nil {
		c.debug("envelope rejected: %v", err)
		return nil
	}
	if env.Action != surface.BeginRendering {
		return nil
	}
	if c.RenderSurfaces {
		return []Event{ShowSurface{SurfaceID: env.SurfaceID, Type: env.SurfaceType}}
	}
	return []Event{ShowText{Sender: AgentSender, Text: surface.FormatText(env.SurfaceType, env.Data)}}
}

func (c *Controller) handleFailure(e AgentFailed) []Event {
	c.debug("request %d (%s) failed: %v", e.Seq, e.Origin, e.Err)
	events := []Event{ShowText{Sender: AgentSender, Text: MsgTransportError}}
	return append(events, c.settle(e.Seq)...)
}

// settle clears the loading indicator when seq answers the pending chat.
func (c *Controller) settle(seq int) []Event {
	if seq != c.pendingChat || c.pendingChat == 0 {
		return nil
	}
	c.pendingChat = 0
	if !c.loading {
		return []Event{WaitingForUser{}}
	}
	c.loading = false
	return []Event{LoadingChanged{Loading: false}, WaitingForUser{}}
}

func (c *Controller) nextSeq() int {
	c.lastSeq++
	return c.lastSeq
}

func (c *Controller) debug(format string, args ...any) {
	if c.DebugFunc != nil {
		c.DebugFunc(fmt.Sprintf(format, args...))
	}
}
