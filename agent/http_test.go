package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openfloorcontrol/showroom/surface"
)

func TestClientSendsQueryAndSession(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(ChatResponse{Text: "hello there"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "sess-1")
	reply, err := c.Send(context.Background(), "find me a sedan")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Text != "hello there" {
		t.Errorf("unexpected reply %q", reply.Text)
	}
	if got.Query != "find me a sedan" || got.SessionID != "sess-1" {
		t.Errorf("unexpected request body %+v", got)
	}
}

func TestClientFallsBackToOutputAndData(t *testing.T) {
	bodies := []string{
		`{"output":"from output"}`,
		`{"data":{"action":"deleteSurface","surfaceId":"s1"}}`,
		``,
		`{"text":""}`,
	}
	want := []string{
		"from output",
		`{"action":"deleteSurface","surfaceId":"s1"}`,
		"",
		"",
	}
	for i, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		reply, err := NewClient(srv.URL, "s").Send(context.Background(), "x")
		srv.Close()
		if err != nil {
			t.Fatalf("body %d: %v", i, err)
		}
		if reply.Text != want[i] {
			t.Errorf("body %d: expected %q, got %q", i, want[i], reply.Text)
		}
	}
}

func TestClientReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "s").Send(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "agent error 500") {
		t.Errorf("expected agent error 500, got %v", err)
	}
}

func TestFormatAndParseEvent(t *testing.T) {
	ev := surface.ClientEvent{Type: surface.EventRowSelect, Payload: map[string]any{"carId": "3", "surfaceId": "s1"}}
	text := FormatEvent(ev)
	want := `EVENT: {"type":"rowSelect","payload":{"carId":"3","surfaceId":"s1"}}`
	if text != want {
		t.Errorf("expected %q, got %q", want, text)
	}

	back, ok := ParseEvent(text)
	if !ok {
		t.Fatal("ParseEvent failed")
	}
	if back.Type != ev.Type || back.SurfaceID() != "s1" || back.Field("carId") != "3" {
		t.Errorf("round trip lost data: %+v", back)
	}

	if _, ok := ParseEvent("just chatting"); ok {
		t.Error("plain text is not an event")
	}
}
