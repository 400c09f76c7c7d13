package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the body the agent returns. Text wins over Output; Data
// may carry an envelope object when both are empty.
type ChatResponse struct {
	Text   string          `json:"text,omitempty"`
	Output string          `json:"output,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Client talks to an agent over HTTP.
type Client struct {
	Endpoint   string
	SessionID  string
	HTTPClient *http.Client
}

var _ Transport = (*Client)(nil)

// NewClient creates an HTTP agent client for one session.
func NewClient(endpoint, sessionID string) *Client {
	return &Client{
		Endpoint:   strings.TrimSuffix(endpoint, "/"),
		SessionID:  sessionID,
		HTTPClient: http.DefaultClient,
	}
}

// Send posts text to /chat and returns the reply text.
func (c *Client) Send(ctx context.Context, text string) (Reply, error) {
	body, err := json.Marshal(ChatRequest{Query: text, SessionID: c.SessionID})
	if err != nil {
		return Reply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"/chat", bytes.NewReader(body))
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Reply{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Reply{}, fmt.Errorf("agent error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read agent response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Reply{}, nil
	}

	var cr ChatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return Reply{}, fmt.Errorf("decode agent response: %w", err)
	}
	return Reply{Text: cr.text()}, nil
}

func (r ChatResponse) text() string {
	if r.Text != "" {
		return r.Text
	}
	if r.Output != "" {
		return r.Output
	}
	data := bytes.TrimSpace(r.Data)
	if len(data) > 0 && data[0] == '{' {
		return string(data)
	}
	return ""
}

// Close is a no-op; HTTP connections are pooled by the client.
func (c *Client) Close() error { return nil }
