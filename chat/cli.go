package chat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/openfloorcontrol/showroom/render"
	"github.com/openfloorcontrol/showroom/surface"
	"github.com/sirupsen/logrus"
)

// cliWidth is the width surfaces are drawn at in the line-oriented frontend.
const cliWidth = 80

// CLIFrontend implements Frontend for terminal-based interaction. Surfaces
// are printed inline and driven by slash commands (/select, /book, ...).
type CLIFrontend struct {
	out    *Output
	reader *bufio.Reader

	mu       sync.Mutex // guards everything below
	board    *render.Board
	sink     func(surface.ClientEvent)
	pending  []surface.ClientEvent
	thinking bool
}

// NewCLIFrontend creates a CLI frontend reading in and printing to w, with
// an optional log file.
func NewCLIFrontend(in io.Reader, w io.Writer, logPath, level string, debug bool) *CLIFrontend {
	f := &CLIFrontend{
		out:    NewOutput(w, logPath, level, debug),
		reader: bufio.NewReader(in),
	}
	f.board = render.NewBoard(f.collect, render.NewBookingSignal())
	return f
}

// collect queues interactions raised while the board lock is held; they
// are delivered once it is released.
func (f *CLIFrontend) collect(ev surface.ClientEvent) {
	f.pending = append(f.pending, ev)
}

func (f *CLIFrontend) flush() {
	f.mu.Lock()
	events, sink := f.pending, f.sink
	f.pending = nil
	f.mu.Unlock()
	if sink == nil {
		return
	}
	for _, ev := range events {
		sink(ev)
	}
}

// Bind sets where surface interactions go.
func (f *CLIFrontend) Bind(sink func(surface.ClientEvent)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sink = sink
}

func senderColor(sender string) string {
	if sender == UserSender {
		return Cyan
	}
	return Purple
}

// Render displays a chat event in the terminal.
func (f *CLIFrontend) Render(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch e := ev.(type) {
	case SystemInfo:
		f.clearThinking()
		f.out.Print("%s[System]: %s%s\n", Dim, e.Text, Reset)
	case ShowText:
		f.clearThinking()
		f.out.Label(e.Sender, senderColor(e.Sender))
		f.out.Print("%s\n", e.Text)
	case ShowSurface:
		f.clearThinking()
		h, slot := f.board.Add(e.SurfaceID)
		f.out.Label(AgentSender, senderColor(AgentSender))
		f.out.Print("%s[surface #%d: %s]%s\n", Dim, h, e.Type, Reset)
		f.out.Print("%s\n", slot.View(cliWidth, false))
	case SurfacesChanged:
		for _, h := range f.board.Sync(e.Snapshot) {
			slot, _ := f.board.Slot(h)
			f.clearThinking()
			f.out.Print("%s[surface #%d updated]%s\n%s\n", Dim, h, Reset, slot.View(cliWidth, false))
		}
	case LoadingChanged:
		if e.Loading {
			f.out.Print("\n")
			f.out.Terminal("%s%s[%s]:%s %sthinking...%s", Bold, Purple, AgentSender, Reset, Dim, Reset)
			f.thinking = true
		} else {
			f.clearThinking()
		}
	case BookingCompleted:
		f.board.Booking().Raise()
		f.out.Print("%s[Booking completed]%s\n", Green, Reset)
	case ConversationCleared:
		f.board.Reset()
		f.out.Print("%s[Conversation cleared]%s\n", Dim, Reset)
	case SessionStopped:
		f.out.Print("\n%sGoodbye!%s\n", Dim, Reset)
	}
}

func (f *CLIFrontend) clearThinking() {
	if f.thinking {
		f.out.Terminal("\r\033[K")
		f.thinking = false
	}
}

// ReadInput prompts the user and reads a line.
// Returns UserMessage, UserCommand or SurfaceCommand, or error on EOF/interrupt.
func (f *CLIFrontend) ReadInput() (Event, error) {
	for {
		f.out.Print("\n")
		f.out.Label(UserSender, Cyan)

		input, err := f.reader.ReadString('\n')
		if err != nil {
			f.out.Print("%s[Interrupted]%s\n", Dim, Reset)
			return nil, err
		}

		text := strings.TrimSpace(input)
		f.out.Log("%s\n", text)
		if text == "" {
			continue
		}

		if !strings.HasPrefix(text, "/") {
			return UserMessage{Content: text}, nil
		}
		if f.surfaceCommand(text) {
			f.flush()
			return SurfaceCommand{Command: text}, nil
		}
		return UserCommand{Command: text}, nil
	}
}

// surfaceCommand carries out /select, /book, /fill, /submit, /cancel and
// /show against the board. It returns false for any other command.
func (f *CLIFrontend) surfaceCommand(text string) bool {
	fields := strings.Fields(text)
	name := fields[0]
	switch name {
	case "/select", "/book", "/fill", "/submit", "/cancel", "/show":
	default:
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	fail := func(format string, args ...any) bool {
		f.out.Print("%s%s%s\n", Red, fmt.Sprintf(format, args...), Reset)
		return true
	}

	if len(fields) < 2 {
		return fail("usage: %s <surface#> ...", name)
	}
	h, err := strconv.Atoi(fields[1])
	if err != nil {
		return fail("bad surface number %q", fields[1])
	}
	slot, ok := f.board.Slot(h)
	if !ok || slot.Renderer() == nil {
		return fail("no surface #%d", h)
	}
	args := fields[2:]
	log := f.out.Logger().WithFields(logrus.Fields{"command": name, "surfaceId": slot.SurfaceID()})

	switch name {
	case "/show":
		f.out.Print("%s\n", slot.View(cliWidth, false))

	case "/select":
		t, ok := slot.Renderer().(*render.Table)
		if !ok {
			return fail("surface #%d is not a table", h)
		}
		if len(args) != 1 {
			return fail("usage: /select <surface#> <row>")
		}
		row, err := strconv.Atoi(args[0])
		if err != nil || !t.Select(row-1) {
			return fail("no row %s (table has %d)", args[0], t.Rows())
		}

	case "/book":
		c, ok := slot.Renderer().(*render.Comparison)
		if !ok {
			return fail("surface #%d is not a comparison", h)
		}
		if len(args) != 1 {
			return fail("usage: /book <surface#> <carId>")
		}
		if !c.Book(args[0]) {
			return fail("cannot book car %s", args[0])
		}

	case "/fill", "/submit", "/cancel":
		form := formOf(slot.Renderer())
		if form == nil {
			return fail("surface #%d has no booking form", h)
		}
		switch name {
		case "/fill":
			if len(args) < 2 {
				return fail("usage: /fill <surface#> <field> <value...>")
			}
			if !form.SetField(args[0], strings.Join(args[1:], " ")) {
				return fail("cannot set field %q", args[0])
			}
		case "/submit":
			if !form.Submit() {
				return fail("form is incomplete or disabled")
			}
		case "/cancel":
			if !form.Cancel() {
				return fail("form is disabled")
			}
		}
	}
	log.Debug("surface command")
	return true
}

// formOf finds the booking form a renderer exposes, standalone or embedded.
func formOf(r render.Renderer) *render.BookingForm {
	switch v := r.(type) {
	case *render.BookingForm:
		return v
	case *render.Comparison:
		return v.Form()
	}
	return nil
}

// Logger returns the structured logger.
func (f *CLIFrontend) Logger() *logrus.Logger { return f.out.Logger() }

// LogWriter returns the log file writer.
func (f *CLIFrontend) LogWriter() io.Writer { return f.out.LogWriter() }

// Close closes the log file.
func (f *CLIFrontend) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.board.Reset()
	f.out.Close()
}
