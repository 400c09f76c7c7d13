package acp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	acpsdk "github.com/coder/acp-go-sdk"
)

// Session manages the lifecycle of one ACP agent subprocess.
type Session struct {
	Conn      *acpsdk.ClientSideConnection
	SessionID acpsdk.SessionId
	Cmd       *exec.Cmd
	Client    *TextClient
}

// Start launches an ACP agent process and connects to it over stdio.
// stderr receives the agent's stderr; nil means os.Stderr.
func Start(command string, args []string, env map[string]string, client *TextClient, stderr io.Writer) (*Session, error) {
	cmd := exec.Command(command, args...)
	if stderr == nil {
		stderr = os.Stderr
	}
	cmd.Stderr = stderr

	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+os.ExpandEnv(v))
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start agent %q: %w", command, err)
	}

	return &Session{
		Conn:   acpsdk.NewClientSideConnection(client, stdin, stdout),
		Cmd:    cmd,
		Client: client,
	}, nil
}

// Initialize performs the ACP handshake. No file system or terminal
// capability is offered.
func (s *Session) Initialize(ctx context.Context, version string) error {
	resp, err := s.Conn.Initialize(ctx, acpsdk.InitializeRequest{
		ProtocolVersion:    acpsdk.ProtocolVersionNumber,
		ClientCapabilities: acpsdk.ClientCapabilities{},
		ClientInfo: &acpsdk.Implementation{
			Name:    "showroom",
			Version: version,
		},
	})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	s.Client.Log.WithField("protocol", resp.ProtocolVersion).Debug("acp initialized")
	return nil
}

// Open creates the ACP session used for every prompt.
func (s *Session) Open(ctx context.Context, cwd string) error {
	resp, err := s.Conn.NewSession(ctx, acpsdk.NewSessionRequest{
		Cwd:        cwd,
		McpServers: []acpsdk.McpServer{},
	})
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}
	s.SessionID = resp.SessionId
	s.Client.Log.WithField("session", s.SessionID).Debug("acp session created")
	return nil
}

// Prompt sends text as one turn and returns the agent's collected reply.
func (s *Session) Prompt(ctx context.Context, text string) (string, error) {
	s.Client.Reset()
	resp, err := s.Conn.Prompt(ctx, acpsdk.PromptRequest{
		SessionId: s.SessionID,
		Prompt:    []acpsdk.ContentBlock{acpsdk.TextBlock(text)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	s.Client.Log.WithField("stop", resp.StopReason).Debug("acp turn finished")
	return s.Client.Text(), nil
}

// Close kills the agent process and waits for it.
func (s *Session) Close() error {
	if s.Cmd != nil && s.Cmd.Process != nil {
		_ = s.Cmd.Process.Kill()
		_ = s.Cmd.Wait()
	}
	return nil
}
