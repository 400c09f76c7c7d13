package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/openfloorcontrol/showroom/surface"
)

const twoCars = `{"verdict":"Both are solid.","cars":[
	{"id":1,"make":"Toyota","model":"Camry","year":2024,"price":"$26,420","color":"Silver","type":"Sedan","features":["CarPlay"]},
	{"id":2,"make":"Honda","model":"Civic","year":2023,"price":"$24,650","color":"Blue","type":"Sedan","features":[]}
]}`

func snapshot(id string, typ surface.Type, data string) surface.Snapshot {
	return surface.Snapshot{id: {ID: id, Type: typ, Data: json.RawMessage(data)}}
}

type recorder struct {
	events []surface.ClientEvent
}

func (r *recorder) sink(ev surface.ClientEvent) { r.events = append(r.events, ev) }

func TestResolveKinds(t *testing.T) {
	cases := map[surface.Type]Kind{
		surface.TypeTable:          KindTable,
		surface.TypeCardComparison: KindComparison,
		surface.TypeBookingForm:    KindBookingForm,
		"chart":                    KindUnsupported,
		"":                         KindUnsupported,
	}
	for typ, want := range cases {
		if got := Resolve(typ); got != want {
			t.Errorf("Resolve(%q) = %s, want %s", typ, got, want)
		}
	}
}

func TestSlotDeepEqualityGuard(t *testing.T) {
	s := NewSlot("s1", nil, NewBookingSignal())

	if !s.Sync(snapshot("s1", surface.TypeTable, `{"columns":["ID","Make"],"rows":[{"id":1,"make":"Toyota"}]}`)) {
		t.Fatal("first sync should build a renderer")
	}
	first := s.Renderer()

	// Same data, different key order and whitespace.
	if s.Sync(snapshot("s1", surface.TypeTable, `{ "rows": [{"make":"Toyota","id":1}], "columns": ["ID","Make"] }`)) {
		t.Error("structurally equal data must not rebuild the renderer")
	}
	if s.Renderer() != first || s.Generation() != 1 {
		t.Errorf("renderer was replaced (generation %d)", s.Generation())
	}

	if !s.Sync(snapshot("s1", surface.TypeTable, `{"columns":["ID","Make"],"rows":[{"id":2,"make":"Honda"}]}`)) {
		t.Error("changed data should rebuild the renderer")
	}
	if !s.Sync(snapshot("s1", "chart", `{"columns":["ID","Make"],"rows":[{"id":2,"make":"Honda"}]}`)) {
		t.Error("changed type should rebuild the renderer")
	}
	if s.Generation() != 3 {
		t.Errorf("expected generation 3, got %d", s.Generation())
	}
}

func TestSlotUnknownTypeRendersPlaceholder(t *testing.T) {
	s := NewSlot("s1", nil, nil)
	s.Sync(snapshot("s1", "chart", `{"points":[1,2,3]}`))

	if _, ok := s.Renderer().(*Unsupported); !ok {
		t.Fatalf("expected Unsupported, got %T", s.Renderer())
	}
	if view := s.View(80, false); !strings.Contains(view, "Unsupported surface type: chart") {
		t.Errorf("placeholder missing from view: %q", view)
	}
	if s.Focusable() {
		t.Error("placeholder should not take focus")
	}
}

func TestSlotRemovedSurface(t *testing.T) {
	s := NewSlot("s1", nil, nil)
	s.Sync(snapshot("s1", surface.TypeTable, `{"columns":[],"rows":[]}`))
	s.Sync(surface.Snapshot{})

	if !s.Removed() || s.Renderer() != nil {
		t.Fatal("slot should drop its renderer when the surface is deleted")
	}
	if !strings.Contains(s.View(80, false), "surface removed") {
		t.Error("expected removed marker")
	}

	if !s.Sync(snapshot("s1", surface.TypeTable, `{"columns":[],"rows":[]}`)) {
		t.Error("a re-created surface should rebuild even with identical data")
	}
}

func TestSlotLabelsUntypedInteractions(t *testing.T) {
	rec := &recorder{}
	s := NewSlot("s1", rec.sink, NewBookingSignal())
	s.Sync(snapshot("s1", surface.TypeTable, `{"columns":["ID"],"rows":[{"id":7}]}`))

	s.Renderer().(*Table).Select(0)

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Type != surface.EventRowSelect {
		t.Errorf("expected %s, got %s", surface.EventRowSelect, ev.Type)
	}
	if ev.SurfaceID() != "s1" || ev.Field("carId") != "7" {
		t.Errorf("unexpected payload %v", ev.Payload)
	}
}

func TestSlotDefaultLabelIsUnknown(t *testing.T) {
	rec := &recorder{}
	s := NewSlot("s1", rec.sink, nil)
	s.Sync(snapshot("s1", "chart", `{}`))

	s.forward(&Unsupported{}, Interaction{Payload: map[string]any{"x": 1}})
	s.forward(&blankRenderer{}, Interaction{})

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}
	for _, ev := range rec.events {
		if ev.Type != surface.EventUnknown {
			t.Errorf("expected unknown, got %s", ev.Type)
		}
		if ev.SurfaceID() != "s1" {
			t.Errorf("surfaceId not filled in: %v", ev.Payload)
		}
	}
}

type blankRenderer struct{ Unsupported }

func (blankRenderer) EventType() string { return "" }

func TestSlotClosedRendererStopsEmitting(t *testing.T) {
	rec := &recorder{}
	s := NewSlot("s1", rec.sink, nil)
	s.Sync(snapshot("s1", surface.TypeTable, `{"columns":["ID"],"rows":[{"id":1}]}`))
	old := s.Renderer().(*Table)

	s.Sync(snapshot("s1", surface.TypeTable, `{"columns":["ID"],"rows":[{"id":2}]}`))
	old.Select(0)

	if len(rec.events) != 0 {
		t.Errorf("replaced renderer still emitted %v", rec.events)
	}
}

func TestBoardHandlesAndSync(t *testing.T) {
	b := NewBoard(nil, nil)
	b.Sync(snapshot("a", surface.TypeTable, `{"columns":["ID"],"rows":[{"id":1}]}`))

	h, slot := b.Add("a")
	if h != 1 || slot.Renderer() == nil {
		t.Fatal("slot added after a snapshot should render immediately")
	}
	h2, pending := b.Add("b")
	if h2 != 2 || pending.Renderer() != nil {
		t.Fatal("slot for an unknown surface should wait for a snapshot")
	}

	snap := snapshot("a", surface.TypeTable, `{"columns":["ID"],"rows":[{"id":1}]}`)
	snap["b"] = surface.Surface{ID: "b", Type: surface.TypeBookingForm, Data: json.RawMessage(`{"carId":1}`)}
	changed := b.Sync(snap)
	if len(changed) != 1 || changed[0] != 2 {
		t.Errorf("expected only slot 2 to change, got %v", changed)
	}

	if got := b.Focusable(); len(got) != 2 {
		t.Errorf("expected 2 focusable slots, got %v", got)
	}
	if _, ok := b.Slot(3); ok {
		t.Error("handle 3 should not exist")
	}

	b.Reset()
	if b.Len() != 0 {
		t.Error("reset should drop every slot")
	}
}
