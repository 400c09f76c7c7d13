package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/openfloorcontrol/showroom/agent"
	"github.com/openfloorcontrol/showroom/blueprint"
	"github.com/openfloorcontrol/showroom/surface"
	"github.com/sirupsen/logrus"
)

// inboxSize bounds events waiting for the loop.
const inboxSize = 64

// userInput wraps an event read from the frontend so the loop knows to
// hand the turn back once its requests settle.
type userInput struct{ ev Event }

// inputClosed ends the interactive loop.
type inputClosed struct{ err error }

func (userInput) eventMarker()   {}
func (inputClosed) eventMarker() {}

// Coordinator wires the controller, the agent transport, and the frontend
// together. It owns the session lifecycle and the single event loop: the
// surface registry is only touched from that loop.
type Coordinator struct {
	ctrl      *Controller
	proc      *surface.Processor
	frontend  Frontend
	transport agent.Transport
	bp        *blueprint.Blueprint
	log       *logrus.Logger

	inbox chan Event
	turn  chan struct{}
	done  chan struct{}
	ctx   context.Context
	stop  context.CancelFunc

	inflight    int  // requests sent and not yet answered
	userWaiting bool // the input pump waits for its turn
	requests    sync.WaitGroup
	closeOnce   sync.Once
}

// NewCoordinator creates a coordinator over a fresh surface registry.
func NewCoordinator(bp *blueprint.Blueprint, frontend Frontend, transport agent.Transport) *Coordinator {
	log := frontend.Logger()
	proc := surface.NewProcessor(surface.NewRegistry())
	proc.DebugFunc = func(msg string) { log.WithField("component", "processor").Debug(msg) }

	ctrl := NewController(proc, bp.SurfacesEnabled())
	ctrl.DebugFunc = func(msg string) { log.WithField("component", "controller").Debug(msg) }

	ctx, stop := context.WithCancel(context.Background())
	return &Coordinator{
		ctrl:      ctrl,
		proc:      proc,
		frontend:  frontend,
		transport: transport,
		bp:        bp,
		log:       log,
		inbox:     make(chan Event, inboxSize),
		turn:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		ctx:       ctx,
		stop:      stop,
	}
}

// Controller returns the session controller.
func (co *Coordinator) Controller() *Controller { return co.ctrl }

// Run is the main loop. With an initial prompt it sends that prompt, waits
// for every outstanding request, and returns.
func (co *Coordinator) Run(initialPrompt string) error {
	defer co.frontend.Close()
	defer co.shutdown()

	unsubSurfaces := co.proc.OnSurfacesChanged(func(snap surface.Snapshot) {
		co.frontend.Render(SurfacesChanged{Snapshot: snap})
	})
	defer unsubSurfaces()
	unsubEvents := co.proc.OnClientEvent(func(ev surface.ClientEvent) {
		co.post(ClientEventRaised{Event: ev})
	})
	defer unsubEvents()
	co.frontend.Bind(co.proc.SendClientEvent)

	co.renderHeader()

	// One-shot mode
	if initialPrompt != "" {
		co.frontend.Render(ShowText{Sender: UserSender, Text: initialPrompt})
		if co.dispatch(UserMessage{Content: initialPrompt}) {
			return nil
		}
		for co.inflight > 0 {
			if co.dispatch(<-co.inbox) {
				break
			}
		}
		return nil
	}

	go co.pumpInput()
	for {
		ev := <-co.inbox
		if c, ok := ev.(inputClosed); ok {
			co.log.WithError(c.err).Debug("input closed")
			return nil
		}
		if co.dispatch(ev) {
			return nil
		}
	}
}

// dispatch feeds one event through the controller. Returns true if the
// session should stop.
func (co *Coordinator) dispatch(ev Event) bool {
	fromUser := false
	if u, ok := ev.(userInput); ok {
		ev, fromUser = u.ev, true
	}
	switch ev.(type) {
	case AgentReplied, AgentFailed:
		co.inflight--
	}

	stopped := co.processEvents(co.ctrl.HandleEvent(ev))

	if fromUser {
		co.userWaiting = true
	}
	if co.userWaiting && co.inflight == 0 {
		co.userWaiting = false
		select {
		case co.turn <- struct{}{}:
		default:
		}
	}
	return stopped
}

// processEvents renders controller output and acts on requests.
// Returns true if the session should stop.
func (co *Coordinator) processEvents(events []Event) bool {
	for _, ev := range events {
		co.frontend.Render(ev)

		switch e := ev.(type) {
		case SendRequest:
			co.send(e)
		case SessionStopped:
			return true
		}
	}
	return false
}

// send runs one request on its own goroutine and posts the outcome back.
func (co *Coordinator) send(req SendRequest) {
	co.inflight++
	co.requests.Add(1)
	log := co.log.WithFields(logrus.Fields{"seq": req.Seq, "origin": req.Origin.String()})
	if req.EventType != "" {
		log = log.WithField("event", req.EventType)
	}
	log.Debug("request sent")

	go func() {
		defer co.requests.Done()
		ctx, cancel := context.WithTimeout(co.ctx, co.bp.Agent.Timeout)
		defer cancel()

		reply, err := co.transport.Send(ctx, req.Text)
		if err != nil {
			log.WithError(err).Warn("request failed")
			co.post(AgentFailed{Seq: req.Seq, Origin: req.Origin, EventType: req.EventType, Err: err})
			return
		}
		log.WithField("bytes", len(reply.Text)).Debug("reply received")
		co.post(AgentReplied{Seq: req.Seq, Origin: req.Origin, EventType: req.EventType, Text: reply.Text})
	}()
}

// pumpInput reads the frontend on its own goroutine. After each input it
// waits until the loop hands the turn back.
func (co *Coordinator) pumpInput() {
	for {
		ev, err := co.frontend.ReadInput()
		if err != nil {
			co.post(inputClosed{err: err})
			return
		}
		if !co.post(userInput{ev: ev}) {
			return
		}
		select {
		case <-co.turn:
		case <-co.done:
			return
		}
	}
}

// post queues an event for the loop. It returns false once the session is over.
func (co *Coordinator) post(ev Event) bool {
	select {
	case co.inbox <- ev:
		return true
	case <-co.done:
		return false
	}
}

// shutdown cancels outstanding requests and closes the transport.
func (co *Coordinator) shutdown() {
	co.closeOnce.Do(func() {
		close(co.done)
		co.stop()
		co.requests.Wait()
		if err := co.transport.Close(); err != nil {
			co.log.WithError(err).Warn("closing transport")
		}
	})
}

// renderHeader prints the session header.
func (co *Coordinator) renderHeader() {
	rule := fmt.Sprintf("%s%s%s", Bold, strings.Repeat("=", 50), Reset)
	co.frontend.Render(SystemInfo{Text: rule})
	co.frontend.Render(SystemInfo{Text: fmt.Sprintf("%sSHOWROOM - %s%s", Bold, co.bp.Name, Reset)})
	if co.bp.Description != "" {
		co.frontend.Render(SystemInfo{Text: co.bp.Description})
	}

	target := co.bp.Agent.Endpoint
	if co.bp.Agent.Transport == blueprint.TransportACP {
		target = co.bp.Agent.Command
	}
	mode := "on"
	if !co.ctrl.RenderSurfaces {
		mode = "off (text fallback)"
	}
	co.frontend.Render(SystemInfo{Text: fmt.Sprintf("Agent: %s%s%s via %s, surfaces %s", Cyan, target, Reset, co.bp.Agent.Transport, mode)})
	co.frontend.Render(SystemInfo{Text: fmt.Sprintf("Type %s/quit%s to exit, %s/surfaces%s to list surfaces", Bold, Reset, Bold, Reset)})
	co.frontend.Render(SystemInfo{Text: rule})
}
