package render

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/openfloorcontrol/showroom/surface"
)

// Table presents columns and rows. Selecting a row emits rowSelect.
type Table struct {
	emitter
	surfaceID string
	data      surface.TableData
	err       error
	cursor    int
}

// NewTable builds a table renderer. Undecodable data renders as an error line.
func NewTable(opts Options) *Table {
	t := &Table{surfaceID: opts.SurfaceID}
	t.data, t.err = surface.DecodeTable(opts.Data)
	return t
}

func (t *Table) EventType() string { return surface.EventRowSelect }

func (t *Table) Focusable() bool { return t.err == nil && len(t.data.Rows) > 0 }

func (t *Table) Close() { t.closeEmitter() }

// Rows returns the number of rows.
func (t *Table) Rows() int { return len(t.data.Rows) }

// Select emits a rowSelect for row i. Out-of-range rows are ignored.
func (t *Table) Select(i int) bool {
	if i < 0 || i >= len(t.data.Rows) {
		return false
	}
	t.cursor = i
	t.emit(Interaction{Payload: map[string]any{
		"carId":     t.data.Rows[i]["id"],
		"surfaceId": t.surfaceID,
	}})
	return true
}

func (t *Table) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.data.Rows)-1 {
			t.cursor++
		}
	case "enter", " ":
		t.Select(t.cursor)
	}
	return nil
}

func (t *Table) View(width int, focused bool) string {
	if t.err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not render table: %v", t.err))
	}

	rows := make([][]string, len(t.data.Rows))
	for i, r := range t.data.Rows {
		cells := make([]string, len(t.data.Columns))
		for j, c := range t.data.Columns {
			cells[j] = surface.CellValue(r, c)
		}
		rows[i] = cells
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(t.data.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return st.Bold(true).Foreground(accent)
			case focused && row == t.cursor:
				return st.Reverse(true)
			}
			return st
		})
	if width > 4 {
		tbl = tbl.Width(width - 4)
	}

	hint := dimStyle.Render("↑/↓ move · enter select")
	if len(t.data.Rows) == 0 {
		hint = dimStyle.Render("No results.")
	}
	return frame(tbl.Render()+"\n"+hint, width, focused)
}
