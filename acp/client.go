// Package acp runs an Agent Client Protocol agent as a subprocess and
// collects the text of each prompt turn.
package acp

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	acpsdk "github.com/coder/acp-go-sdk"
	"github.com/sirupsen/logrus"
)

// ErrUnsupported is returned for file system and terminal callbacks. The
// client does not advertise either capability.
var ErrUnsupported = errors.New("acp: capability not offered by showroom")

// TextClient implements the acp.Client interface. It accumulates agent
// message chunks for the prompt in flight and approves permission requests.
type TextClient struct {
	Log *logrus.Logger

	// OnChunk, when set, is called for every streamed text chunk.
	OnChunk func(string)

	mu   sync.Mutex
	text strings.Builder
}

var _ acpsdk.Client = (*TextClient)(nil)

// NewTextClient creates a client that logs to log (nil discards).
func NewTextClient(log *logrus.Logger) *TextClient {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &TextClient{Log: log}
}

// Reset clears the collected text before a new prompt.
func (c *TextClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.Reset()
}

// Text returns the text collected since the last Reset.
func (c *TextClient) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text.String()
}

func (c *TextClient) SessionUpdate(ctx context.Context, params acpsdk.SessionNotification) error {
	u := params.Update

	switch {
	case u.AgentMessageChunk != nil:
		if u.AgentMessageChunk.Content.Text != nil {
			chunk := u.AgentMessageChunk.Content.Text.Text
			c.mu.Lock()
			c.text.WriteString(chunk)
			onChunk := c.OnChunk
			c.mu.Unlock()
			if onChunk != nil {
				onChunk(chunk)
			}
		}

	case u.ToolCall != nil:
		c.Log.WithFields(logrus.Fields{"title": u.ToolCall.Title, "status": u.ToolCall.Status}).Debug("acp tool call")

	case u.ToolCallUpdate != nil:
		status := ""
		if u.ToolCallUpdate.Status != nil {
			status = string(*u.ToolCallUpdate.Status)
		}
		c.Log.WithFields(logrus.Fields{"id": u.ToolCallUpdate.ToolCallId, "status": status}).Debug("acp tool call update")
	}

	return nil
}

func (c *TextClient) RequestPermission(ctx context.Context, params acpsdk.RequestPermissionRequest) (acpsdk.RequestPermissionResponse, error) {
	if len(params.Options) == 0 {
		return acpsdk.RequestPermissionResponse{}, nil
	}
	chosen := params.Options[0].OptionId
	for _, opt := range params.Options {
		if opt.Kind == acpsdk.PermissionOptionKindAllowOnce || opt.Kind == acpsdk.PermissionOptionKindAllowAlways {
			chosen = opt.OptionId
			break
		}
	}
	c.Log.WithField("option", chosen).Debug("acp permission approved")
	return acpsdk.RequestPermissionResponse{
		Outcome: acpsdk.RequestPermissionOutcome{
			Selected: &acpsdk.RequestPermissionOutcomeSelected{
				OptionId: chosen,
				Outcome:  "selected",
			},
		},
	}, nil
}

func (c *TextClient) ReadTextFile(ctx context.Context, params acpsdk.ReadTextFileRequest) (acpsdk.ReadTextFileResponse, error) {
	return acpsdk.ReadTextFileResponse{}, ErrUnsupported
}

func (c *TextClient) WriteTextFile(ctx context.Context, params acpsdk.WriteTextFileRequest) (acpsdk.WriteTextFileResponse, error) {
	return acpsdk.WriteTextFileResponse{}, ErrUnsupported
}

func (c *TextClient) CreateTerminal(ctx context.Context, params acpsdk.CreateTerminalRequest) (acpsdk.CreateTerminalResponse, error) {
	return acpsdk.CreateTerminalResponse{}, ErrUnsupported
}

func (c *TextClient) TerminalOutput(ctx context.Context, params acpsdk.TerminalOutputRequest) (acpsdk.TerminalOutputResponse, error) {
	return acpsdk.TerminalOutputResponse{}, ErrUnsupported
}

func (c *TextClient) WaitForTerminalExit(ctx context.Context, params acpsdk.WaitForTerminalExitRequest) (acpsdk.WaitForTerminalExitResponse, error) {
	return acpsdk.WaitForTerminalExitResponse{}, ErrUnsupported
}

func (c *TextClient) KillTerminalCommand(ctx context.Context, params acpsdk.KillTerminalCommandRequest) (acpsdk.KillTerminalCommandResponse, error) {
	return acpsdk.KillTerminalCommandResponse{}, ErrUnsupported
}

func (c *TextClient) ReleaseTerminal(ctx context.Context, params acpsdk.ReleaseTerminalRequest) (acpsdk.ReleaseTerminalResponse, error) {
	return acpsdk.ReleaseTerminalResponse{}, ErrUnsupported
}
