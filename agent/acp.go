package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/openfloorcontrol/showroom/acp"
	"github.com/sirupsen/logrus"
)

// ACPConfig describes the agent subprocess.
type ACPConfig struct {
	Command string
	Args    []string
	Env     map[string]string
	Cwd     string
	Version string
	Stderr  io.Writer
	Log     *logrus.Logger
}

// ACPTransport sends each request as one prompt turn to an ACP agent.
// Turns are serialised: ACP sessions process one prompt at a time.
type ACPTransport struct {
	mu      sync.Mutex
	session *acp.Session
}

var _ Transport = (*ACPTransport)(nil)

// DialACP starts the agent, performs the handshake and opens a session.
func DialACP(ctx context.Context, cfg ACPConfig) (*ACPTransport, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("acp transport: no agent command configured")
	}
	cwd := cfg.Cwd
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("acp transport: %w", err)
		}
	}

	client := acp.NewTextClient(cfg.Log)
	session, err := acp.Start(cfg.Command, cfg.Args, cfg.Env, client, cfg.Stderr)
	if err != nil {
		return nil, err
	}
	if err := session.Initialize(ctx, cfg.Version); err != nil {
		session.Close()
		return nil, err
	}
	if err := session.Open(ctx, cwd); err != nil {
		session.Close()
		return nil, err
	}
	return &ACPTransport{session: session}, nil
}

// Send runs one prompt turn and returns the agent's text.
func (t *ACPTransport) Send(ctx context.Context, text string) (Reply, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out, err := t.session.Prompt(ctx, text)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: out}, nil
}

// Close stops the agent process.
func (t *ACPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session.Close()
}
