package surface

import (
	"encoding/json"
	"errors"
	"testing"
)

func env(action Action, id string, typ Type, data string) Envelope {
	var raw json.RawMessage
	if data != "" {
		raw = json.RawMessage(data)
	}
	return Envelope{Action: action, SurfaceID: id, SurfaceType: typ, Data: raw}
}

func TestProcessReplayMatchesOrderedApplication(t *testing.T) {
	seq := []Envelope{
		env(BeginRendering, "a", TypeTable, `{"v":1}`),
		env(BeginRendering, "b", TypeCardComparison, `{"v":2}`),
		env(SurfaceUpdate, "a", TypeTable, `{"v":3}`),
		env(DeleteSurface, "b", "", ""),
		env(SurfaceUpdate, "c", TypeBookingForm, `{"v":4}`),
		env(SurfaceUpdate, "a", "weird", `{"v":5}`),
	}

	p := NewProcessor(NewRegistry())
	for _, e := range seq {
		if err := p.Process(e); err != nil {
			t.Fatalf("Process(%+v): %v", e, err)
		}
	}

	want := map[string]Surface{
		"a": {ID: "a", Type: "weird", Data: json.RawMessage(`{"v":5}`)},
		"c": {ID: "c", Type: TypeBookingForm, Data: json.RawMessage(`{"v":4}`)},
	}
	snap := p.Registry().Snapshot()
	if len(snap) != len(want) {
		t.Fatalf("expected %d surfaces, got %d: %v", len(want), len(snap), snap)
	}
	for id, w := range want {
		got, ok := snap[id]
		if !ok {
			t.Fatalf("missing surface %s", id)
		}
		if got.Type != w.Type || string(got.Data) != string(w.Data) {
			t.Errorf("surface %s: expected %+v, got %+v", id, w, got)
		}
	}
}

func TestProcessDeleteUnknownIsNoop(t *testing.T) {
	p := NewProcessor(NewRegistry())
	notified := false
	p.OnSurfacesChanged(func(Snapshot) { notified = true })

	if err := p.Process(env(DeleteSurface, "ghost", "", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notified {
		t.Error("deleting an unknown surface must not notify")
	}
}

func TestProcessDataModelUpdateIsReserved(t *testing.T) {
	p := NewProcessor(NewRegistry())
	p.Process(env(BeginRendering, "a", TypeTable, `{"v":1}`))

	notified := false
	p.OnSurfacesChanged(func(Snapshot) { notified = true })

	if err := p.Process(env(DataModelUpdate, "a", TypeTable, `{"v":2}`)); err != nil {
		t.Fatalf("dataModelUpdate should be accepted: %v", err)
	}
	if notified {
		t.Error("dataModelUpdate must not mutate the registry")
	}
	s, _ := p.Registry().Get("a")
	if string(s.Data) != `{"v":1}` {
		t.Errorf("data changed: %s", s.Data)
	}
}

func TestProcessRejectsIncompleteEnvelopes(t *testing.T) {
	p := NewProcessor(NewRegistry())
	for _, e := range []Envelope{
		{SurfaceID: "a", SurfaceType: TypeTable},
		{Action: BeginRendering, SurfaceType: TypeTable},
	} {
		if err := p.Process(e); !errors.Is(err, ErrNotEnvelope) {
			t.Errorf("Process(%+v): expected ErrNotEnvelope, got %v", e, err)
		}
	}
	if p.Registry().Len() != 0 {
		t.Error("rejected envelopes reached the registry")
	}
}

func TestProcessUnknownActionIgnored(t *testing.T) {
	p := NewProcessor(NewRegistry())
	if err := p.Process(env("explode", "a", TypeTable, `{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Registry().Len() != 0 {
		t.Error("unknown action mutated the registry")
	}
}

func TestClientEventFanOut(t *testing.T) {
	p := NewProcessor(NewRegistry())
	var a, b []ClientEvent
	p.OnClientEvent(func(ev ClientEvent) { a = append(a, ev) })
	unsub := p.OnClientEvent(func(ev ClientEvent) { b = append(b, ev) })

	p.SendClientEvent(ClientEvent{Type: EventRowSelect, Payload: map[string]any{"surfaceId": "s1", "carId": "3"}})
	unsub()
	p.SendClientEvent(ClientEvent{Type: EventCancel, Payload: map[string]any{"surfaceId": "s1"}})

	if len(a) != 2 || len(b) != 1 {
		t.Fatalf("expected 2 and 1 events, got %d and %d", len(a), len(b))
	}
	if a[0].SurfaceID() != "s1" || a[0].Field("carId") != "3" {
		t.Errorf("unexpected event: %+v", a[0])
	}
}
