package surface

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormatText renders surface data as plain text for transcripts where
// surfaces are not rendered. It is deterministic and never fails.
func FormatText(typ Type, data json.RawMessage) string {
	switch typ {
	case TypeTable:
		return formatTable(data)
	case TypeCardComparison:
		return formatComparison(data)
	default:
		return dump(data, true)
	}
}

func formatTable(data json.RawMessage) string {
	var shape struct {
		Columns json.RawMessage `json:"columns"`
		Rows    json.RawMessage `json:"rows"`
	}
	if json.Unmarshal(data, &shape) != nil || isAbsent(shape.Columns) || isAbsent(shape.Rows) {
		return dump(data, false)
	}
	t, err := DecodeTable(data)
	if err != nil {
		return dump(data, false)
	}

	seps := make([]string, len(t.Columns))
	for i := range seps {
		seps[i] = "---"
	}

	lines := []string{
		"Here are the results:",
		strings.Join(t.Columns, " | "),
		strings.Join(seps, "|"),
	}
	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = CellValue(row, col)
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return strings.Join(lines, "\n")
}

func formatComparison(data json.RawMessage) string {
	c, err := DecodeComparison(data)
	if err != nil {
		return dump(data, true)
	}

	var sb strings.Builder
	if c.Verdict != "" {
		fmt.Fprintf(&sb, "**Verdict:** %s\n\n", c.Verdict)
	}
	for _, car := range c.Cars {
		fmt.Fprintf(&sb, "### %s %s (%s)\n", car.Make, car.Model, car.Year)
		fmt.Fprintf(&sb, "Price: %s\n", car.Price)
		fmt.Fprintf(&sb, "Type: %s\n", car.Type)
		fmt.Fprintf(&sb, "Color: %s\n", car.Color)
		if len(car.Features) > 0 {
			fmt.Fprintf(&sb, "Features: %s\n", strings.Join(car.Features, ", "))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// dump writes data as JSON, indented by two spaces when indent is set.
func dump(data json.RawMessage, indent bool) string {
	if isAbsent(data) {
		return "null"
	}
	var buf bytes.Buffer
	if indent {
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return string(data)
		}
		return buf.String()
	}
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}
