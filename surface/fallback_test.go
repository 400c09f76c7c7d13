package surface

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFormatTextTable(t *testing.T) {
	data := json.RawMessage(`{"columns":["ID","Make"],"rows":[{"id":1,"make":"Toyota"}]}`)
	got := FormatText(TypeTable, data)
	want := "Here are the results:\nID | Make\n---|---\n1 | Toyota"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatTextTableMissingCells(t *testing.T) {
	data := json.RawMessage(`{"columns":["ID","Make","Price"],"rows":[{"id":"2","Make":"Honda","price":null}]}`)
	got := FormatText(TypeTable, data)
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), got)
	}
	if lines[2] != "---|---|---" {
		t.Errorf("unexpected separator %q", lines[2])
	}
	if lines[3] != "2 | Honda | " {
		t.Errorf("unexpected row %q", lines[3])
	}
}

func TestFormatTextTableWithoutRowsDumpsData(t *testing.T) {
	data := json.RawMessage(`{"columns": ["ID"]}`)
	if got := FormatText(TypeTable, data); got != `{"columns":["ID"]}` {
		t.Errorf("expected raw dump, got %q", got)
	}
}

func TestFormatTextComparison(t *testing.T) {
	data := json.RawMessage(`{
		"verdict": "The Camry wins on value.",
		"cars": [
			{"id":1,"make":"Toyota","model":"Camry","year":2024,"price":"$26,420","color":"Silver","type":"Sedan","features":["Apple CarPlay","Lane Assist"]},
			{"id":2,"make":"Honda","model":"Civic","year":2023,"price":"$24,650","color":"Blue","type":"Sedan","features":[]}
		]}`)
	got := FormatText(TypeCardComparison, data)
	want := strings.Join([]string{
		"**Verdict:** The Camry wins on value.",
		"",
		"### Toyota Camry (2024)",
		"Price: $26,420",
		"Type: Sedan",
		"Color: Silver",
		"Features: Apple CarPlay, Lane Assist",
		"",
		"### Honda Civic (2023)",
		"Price: $24,650",
		"Type: Sedan",
		"Color: Blue",
	}, "\n")
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatTextComparisonWithoutVerdict(t *testing.T) {
	data := json.RawMessage(`{"cars":[{"id":"x","make":"Ford","model":"F-150","year":"2022"}]}`)
	got := FormatText(TypeCardComparison, data)
	if strings.Contains(got, "Verdict") {
		t.Errorf("unexpected verdict line in %q", got)
	}
	if !strings.HasPrefix(got, "### Ford F-150 (2022)\n") {
		t.Errorf("unexpected heading in %q", got)
	}
	if strings.Contains(got, "Features:") {
		t.Errorf("features line should be omitted: %q", got)
	}
}

func TestFormatTextUnknownTypeDumpsIndented(t *testing.T) {
	data := json.RawMessage(`{"a":1,"b":[true]}`)
	got := FormatText("chart", data)
	want := "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatTextNeverFails(t *testing.T) {
	for _, typ := range []Type{TypeTable, TypeCardComparison, TypeBookingForm, "other"} {
		for _, data := range []string{"", "null", "not json", "[1,2]", `{"cars":"nope"}`} {
			_ = FormatText(typ, json.RawMessage(data))
		}
	}
}
