package chat

import (
	"io"

	"github.com/openfloorcontrol/showroom/surface"
	"github.com/sirupsen/logrus"
)

// Frontend renders chat events and produces user input.
// The CLI terminal is one implementation; the Bubble Tea TUI is another.
type Frontend interface {
	// Render displays an event to the user. It may be called from the
	// coordinator goroutine at any time.
	Render(event Event)

	// ReadInput blocks until the user provides input.
	// Returns a UserMessage, UserCommand or SurfaceCommand, or an error on
	// EOF/interrupt.
	ReadInput() (Event, error)

	// Bind sets where surface interactions are delivered.
	Bind(sink func(surface.ClientEvent))

	// Logger returns the session's structured logger.
	Logger() *logrus.Logger

	// LogWriter returns an io.Writer for the log file, or nil if no log is
	// active. Used to route ACP agent stderr.
	LogWriter() io.Writer

	// Close cleans up resources (close log file, etc.).
	Close()
}
