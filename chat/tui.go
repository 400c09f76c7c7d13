package chat

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/openfloorcontrol/showroom/render"
	"github.com/openfloorcontrol/showroom/surface"
	"github.com/sirupsen/logrus"
)

const (
	textareaHeight = 3
	statusHeight   = 1
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// --- TUIFrontend: implements Frontend ---

// TUIFrontend bridges the coordinator (background goroutine) with the
// Bubble Tea event loop (main thread) via channels and p.Send().
type TUIFrontend struct {
	program *tea.Program
	inputCh chan Event
	out     *Output // for log file only

	mu   sync.Mutex
	sink func(surface.ClientEvent)
}

// NewTUIFrontend creates a TUI frontend and its Bubble Tea model.
// Call SetProgram() after creating the tea.Program.
func NewTUIFrontend(logPath, level string, debug bool) (*TUIFrontend, *tuiModel) {
	inputCh := make(chan Event, 16)

	frontend := &TUIFrontend{
		inputCh: inputCh,
		out:     NewOutput(io.Discard, logPath, level, debug),
	}

	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}
	model := &tuiModel{
		inputCh:    inputCh,
		log:        frontend.out.Logger(),
		board:      render.NewBoard(frontend.deliver, render.NewBookingSignal()),
		proseStyle: style,
	}
	return frontend, model
}

// SetProgram sets the Bubble Tea program reference. Must be called before Run().
func (t *TUIFrontend) SetProgram(p *tea.Program) {
	t.program = p
}

// Bind sets where surface interactions go.
func (t *TUIFrontend) Bind(sink func(surface.ClientEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}

// deliver runs on the Bubble Tea goroutine.
func (t *TUIFrontend) deliver(ev surface.ClientEvent) {
	t.mu.Lock()
	sink := t.sink
	t.mu.Unlock()
	t.out.Logger().WithFields(logrus.Fields{"type": ev.Type, "surfaceId": ev.SurfaceID()}).Debug("surface interaction")
	if sink != nil {
		sink(ev)
	}
}

// Render sends an event to the Bubble Tea UI and logs it.
func (t *TUIFrontend) Render(ev Event) {
	if t.program != nil {
		t.program.Send(ev)
	}
	t.logEvent(ev)
}

// ReadInput blocks until the user submits input from the TUI textarea.
func (t *TUIFrontend) ReadInput() (Event, error) {
	ev, ok := <-t.inputCh
	if !ok {
		return nil, io.EOF
	}
	return ev, nil
}

// Logger returns the structured logger.
func (t *TUIFrontend) Logger() *logrus.Logger { return t.out.Logger() }

// LogWriter returns the log file writer for subsystems.
func (t *TUIFrontend) LogWriter() io.Writer {
	return t.out.LogWriter()
}

// Close closes the log file.
func (t *TUIFrontend) Close() {
	t.out.Close()
}

// logEvent writes event details to the log file (no terminal output).
func (t *TUIFrontend) logEvent(ev Event) {
	switch e := ev.(type) {
	case SystemInfo:
		t.out.Log("[System]: %s\n", e.Text)
	case ShowText:
		t.out.Log("[%s]: %s\n", e.Sender, e.Text)
	case ShowSurface:
		t.out.Log("[%s]: [surface %s: %s]\n", AgentSender, e.SurfaceID, e.Type)
	case BookingCompleted:
		t.out.Log("[Booking completed]\n")
	case ConversationCleared:
		t.out.Log("[Conversation cleared]\n")
	}
}

// --- tuiModel: Bubble Tea Model ---

// entry is one transcript item: prerendered text, or a board slot.
type entry struct {
	text string
	slot int
}

type tuiModel struct {
	viewport   viewport.Model
	textarea   textarea.Model
	spinner    spinner.Model
	prose      *glamour.TermRenderer
	proseStyle string

	entries []entry
	board   *render.Board
	focus   int // board handle with keyboard focus; 0 is the input
	loading bool

	inputCh chan<- Event
	log     *logrus.Logger
	ready   bool
	width   int
	height  int
}

func (m *tuiModel) Init() tea.Cmd {
	ta := textarea.New()
	ta.Placeholder = "Ask about cars... (tab: surfaces)"
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.SetHeight(textareaHeight)
	ta.ShowLineNumbers = false
	ta.Focus()
	m.textarea = ta

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m.spinner = sp

	return textarea.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - textareaHeight - statusHeight - 1
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(m.width)
		m.prose, _ = glamour.NewTermRenderer(
			glamour.WithStylePath(m.proseStyle),
			glamour.WithWordWrap(m.width-4),
		)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// --- Chat events (injected via p.Send()) ---

	case SystemInfo:
		m.appendText(fmt.Sprintf("%s%s%s", Dim, msg.Text, Reset))
		return m, nil

	case ShowText:
		m.appendText(m.renderText(msg))
		return m, nil

	case ShowSurface:
		h, _ := m.board.Add(msg.SurfaceID)
		m.entries = append(m.entries, entry{slot: h})
		m.refresh()
		return m, nil

	case SurfacesChanged:
		m.board.Sync(msg.Snapshot)
		if slot, ok := m.board.Slot(m.focus); ok && !slot.Focusable() {
			m.setFocus(0)
		}
		m.refresh()
		return m, nil

	case LoadingChanged:
		m.loading = msg.Loading
		if m.loading {
			return m, m.spinner.Tick
		}
		return m, nil

	case BookingCompleted:
		m.board.Booking().Raise()
		m.appendText(fmt.Sprintf("%s[Booking completed]%s", Green, Reset))
		return m, nil

	case ConversationCleared:
		m.board.Reset()
		m.entries = nil
		m.setFocus(0)
		m.appendText(fmt.Sprintf("%s[Conversation cleared]%s", Dim, Reset))
		return m, nil

	case SessionStopped:
		return m, tea.Quit
	}

	// Pass other messages to viewport (mouse wheel, etc.)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *tuiModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.send(UserCommand{Command: "/quit"})
		return tea.Quit
	case tea.KeyCtrlL:
		return tea.ClearScreen
	}

	if m.focus != 0 {
		switch msg.Type {
		case tea.KeyEsc:
			m.setFocus(0)
			return nil
		case tea.KeyCtrlN:
			m.cycleFocus(1)
			return nil
		case tea.KeyCtrlP:
			m.cycleFocus(-1)
			return nil
		}
		slot, ok := m.board.Slot(m.focus)
		if !ok {
			m.setFocus(0)
			return nil
		}
		cmd := slot.Update(msg)
		m.refresh()
		return cmd
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.send(UserCommand{Command: "/quit"})
		return tea.Quit

	case tea.KeyTab:
		if f := m.board.Focusable(); len(f) > 0 {
			m.setFocus(f[len(f)-1])
		}
		return nil

	case tea.KeyEnter:
		text := strings.TrimSpace(m.textarea.Value())
		if text == "" {
			return nil
		}
		m.textarea.Reset()
		m.appendText(m.renderText(ShowText{Sender: UserSender, Text: text}))

		if strings.HasPrefix(text, "/") {
			m.send(UserCommand{Command: text})
		} else {
			m.send(UserMessage{Content: text})
		}
		return nil
	}

	// All other keys go to textarea
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return cmd
}

// MsgInputDropped is shown when the input queue is full.
const MsgInputDropped = "Input not sent: still waiting on earlier messages."

// send queues input for the coordinator without blocking the UI. A full
// queue drops the input with a logged warning and a transcript notice.
func (m *tuiModel) send(ev Event) bool {
	select {
	case m.inputCh <- ev:
		return true
	default:
	}
	m.log.WithField("input", fmt.Sprintf("%T", ev)).Warn("input queue full, dropped")
	m.appendText(fmt.Sprintf("%s%s%s", Red, MsgInputDropped, Reset))
	return false
}

// cycleFocus moves focus to the next (dir 1) or previous (dir -1)
// focusable surface, wrapping around.
func (m *tuiModel) cycleFocus(dir int) {
	handles := m.board.Focusable()
	if len(handles) == 0 {
		m.setFocus(0)
		return
	}
	idx := 0
	for i, h := range handles {
		if h == m.focus {
			idx = (i + dir + len(handles)) % len(handles)
			break
		}
	}
	m.setFocus(handles[idx])
}

func (m *tuiModel) setFocus(handle int) {
	m.focus = handle
	if handle == 0 {
		m.textarea.Focus()
	} else {
		m.textarea.Blur()
	}
	m.refresh()
}

func (m *tuiModel) renderText(e ShowText) string {
	if e.Sender == UserSender {
		return fmt.Sprintf("%s%s[%s]:%s %s", Bold, Cyan, e.Sender, Reset, e.Text)
	}
	label := fmt.Sprintf("%s%s[%s]:%s", Bold, Purple, e.Sender, Reset)
	if m.prose != nil {
		if out, err := m.prose.Render(e.Text); err == nil {
			return label + "\n" + strings.Trim(out, "\n")
		}
	}
	return label + " " + e.Text
}

func (m *tuiModel) appendText(text string) {
	m.entries = append(m.entries, entry{text: text})
	m.refresh()
}

// refresh redraws the transcript. Surfaces are drawn fresh on every pass;
// the viewport follows the focused surface, or the bottom.
func (m *tuiModel) refresh() {
	if !m.ready {
		return
	}
	var b strings.Builder
	focusLine := -1
	for _, e := range m.entries {
		b.WriteString("\n")
		if e.slot == 0 {
			b.WriteString(e.text)
			b.WriteString("\n")
			continue
		}
		slot, ok := m.board.Slot(e.slot)
		if !ok {
			continue
		}
		if e.slot == m.focus {
			focusLine = strings.Count(b.String(), "\n")
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("surface #%d", e.slot)))
		b.WriteString("\n")
		b.WriteString(slot.View(m.width-2, e.slot == m.focus))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
	if focusLine >= 0 {
		m.viewport.SetYOffset(focusLine)
	} else {
		m.viewport.GotoBottom()
	}
}

func (m *tuiModel) status() string {
	switch {
	case m.loading:
		return m.spinner.View() + statusStyle.Render(" waiting for agent…")
	case m.focus != 0:
		return statusStyle.Render(fmt.Sprintf("surface #%d · esc: input · ctrl+n/ctrl+p: next/prev surface · ctrl+c: quit", m.focus))
	default:
		return statusStyle.Render("tab: surfaces · /surfaces · /render on|off · /clear · esc: quit")
	}
}

func (m *tuiModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	separator := statusStyle.Render(strings.Repeat("─", m.width))
	return m.viewport.View() + "\n" + m.status() + "\n" + separator + "\n" + m.textarea.View()
}
