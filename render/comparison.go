package render

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/openfloorcontrol/showroom/surface"
)

// Comparison shows one card per car. While the data carries a booking
// context, the matching card is highlighted, every Book action is disabled,
// and an embedded booking form is shown. The form exists iff the booking
// context does.
type Comparison struct {
	emitter
	surfaceID string
	data      surface.ComparisonData
	err       error
	form      *BookingForm
	completed bool
	cursor    int
	unsub     func()
}

// NewComparison builds a comparison renderer. It latches completion when
// opts.Booking is raised.
func NewComparison(opts Options) *Comparison {
	c := &Comparison{surfaceID: opts.SurfaceID}
	c.data, c.err = surface.DecodeComparison(opts.Data)
	if c.err == nil && c.data.BookingContext != nil {
		c.form = newEmbeddedForm(c.surfaceID, *c.data.BookingContext)
		c.form.Subscribe(c.onFormInteraction)
	}
	if opts.Booking != nil {
		c.unsub = opts.Booking.Subscribe(c.markCompleted)
	}
	return c
}

func (c *Comparison) EventType() string { return surface.EventCardAction }

func (c *Comparison) Focusable() bool {
	if c.err != nil || c.completed {
		return false
	}
	return c.form != nil || len(c.data.Cars) > 0
}

func (c *Comparison) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	if c.form != nil {
		c.form.Close()
	}
	c.closeEmitter()
}

// Cars returns the compared cars.
func (c *Comparison) Cars() []surface.Car { return c.data.Cars }

// Form returns the embedded booking form, or nil without a booking context.
func (c *Comparison) Form() *BookingForm { return c.form }

// Completed reports whether a booking has completed on this instance.
func (c *Comparison) Completed() bool { return c.completed }

// CanBook reports whether Book actions are enabled.
func (c *Comparison) CanBook() bool {
	return c.err == nil && c.data.BookingContext == nil && !c.completed
}

// Book emits a book card action for carID. It is a no-op while a booking
// context is set, after completion, or for an unknown car.
func (c *Comparison) Book(carID string) bool {
	if !c.CanBook() {
		return false
	}
	for _, car := range c.data.Cars {
		if string(car.ID) == carID {
			c.emit(Interaction{Payload: map[string]any{
				"action":    surface.CardActionBook,
				"carId":     carID,
				"surfaceId": c.surfaceID,
			}})
			return true
		}
	}
	return false
}

// onFormInteraction re-emits the embedded form's submit upward without a
// type and turns its cancel into a cancelBooking card action.
func (c *Comparison) onFormInteraction(i Interaction) {
	switch i.Type {
	case surface.EventCancel:
		c.emit(Interaction{Payload: map[string]any{
			"action":    surface.CardActionCancelBooking,
			"surfaceId": c.surfaceID,
		}})
	default:
		c.emit(Interaction{Payload: i.Payload})
	}
}

func (c *Comparison) markCompleted() {
	c.completed = true
	if c.form != nil {
		c.form.SetDisabled(true)
	}
}

func (c *Comparison) Update(msg tea.KeyMsg) tea.Cmd {
	if c.form != nil && !c.form.Disabled() {
		return c.form.Update(msg)
	}
	switch msg.String() {
	case "left", "h", "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "right", "l", "down", "j":
		if c.cursor < len(c.data.Cars)-1 {
			c.cursor++
		}
	case "enter", "b":
		if c.cursor < len(c.data.Cars) {
			c.Book(string(c.data.Cars[c.cursor].ID))
		}
	}
	return nil
}

func (c *Comparison) View(width int, focused bool) string {
	if c.err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not render comparison: %v", c.err))
	}

	var sections []string
	if c.data.Verdict != "" {
		verdict := titleStyle.Render("Verdict: ") + c.data.Verdict
		if width > 8 {
			verdict = lipgloss.NewStyle().Width(width - 6).Render(verdict)
		}
		sections = append(sections, verdict)
	}

	cards := make([]string, len(c.data.Cars))
	for i, car := range c.data.Cars {
		cards[i] = c.card(i, car, focused)
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, cards...))

	if c.form != nil {
		sections = append(sections, c.form.View(width, focused))
	}
	return frame(strings.Join(sections, "\n"), width, focused)
}

func (c *Comparison) card(i int, car surface.Car, focused bool) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", car.Make, car.Model)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s · %s\n", car.Year, car.Type)
	fmt.Fprintf(&sb, "%s\n", car.Price)
	if car.Color != "" {
		fmt.Fprintf(&sb, "%s\n", car.Color)
	}
	for _, feat := range car.Features {
		fmt.Fprintf(&sb, "• %s\n", feat)
	}

	if c.CanBook() {
		sb.WriteString(buttonStyle.Render("[ Book ]"))
	} else {
		sb.WriteString(disabledButtonStyle.Render("[ Book ]"))
	}

	bc := c.data.BookingContext
	switch {
	case bc != nil && bc.CarID == car.ID:
		return highlightCardStyle.Render(sb.String())
	case bc != nil || c.completed:
		return fadedCardStyle.Render(sb.String())
	case focused && i == c.cursor:
		return cursorCardStyle.Render(sb.String())
	}
	return cardStyle.Render(sb.String())
}
