package chat

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/sirupsen/logrus"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// NewLogger builds the structured logger for a session. Entries go to w
// without colors; a nil w discards them. debug forces the debug level.
func NewLogger(w io.Writer, level string, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	if w == nil {
		w = io.Discard
	}
	log.SetOutput(w)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if debug {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	return log
}

// Output handles transcript output to the terminal and the optional log
// file. ANSI codes are stripped when writing to the log file. Structured
// entries go through Logger, into the same file.
type Output struct {
	w       io.Writer
	debug   bool
	logFile *os.File
	log     *logrus.Logger
}

// NewOutput creates an Output writing to w. If logPath is non-empty, a log
// file is opened.
func NewOutput(w io.Writer, logPath, level string, debug bool) *Output {
	o := &Output{w: w, debug: debug}
	if logPath != "" {
		lf, err := os.Create(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", logPath, err)
		} else {
			o.logFile = lf
		}
	}
	o.log = NewLogger(o.LogWriter(), level, debug)
	return o
}

// Print writes to both terminal (with ANSI) and log file (ANSI stripped).
func (o *Output) Print(format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	fmt.Fprint(o.w, s)
	o.writeLog(s)
}

// Debug writes a structured debug entry, and a grey line on the terminal
// when debug mode is on.
func (o *Output) Debug(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	o.log.Debug(msg)
	if o.debug {
		fmt.Fprintf(o.w, "  %s[debug] %s%s\n", Gray, msg, Reset)
	}
}

// Terminal writes only to the terminal.
func (o *Output) Terminal(format string, args ...any) {
	fmt.Fprintf(o.w, format, args...)
}

// Label prints a colored sender label.
func (o *Output) Label(id string, color string) {
	o.Print("%s%s[%s]:%s ", Bold, color, id, Reset)
}

// Logger returns the structured logger.
func (o *Output) Logger() *logrus.Logger { return o.log }

// IsDebug reports whether debug output is on.
func (o *Output) IsDebug() bool { return o.debug }

// LogWriter returns the log file, or nil if no log is open.
func (o *Output) LogWriter() io.Writer {
	if o.logFile != nil {
		return o.logFile
	}
	return nil
}

// Log writes plain text to the log file only.
func (o *Output) Log(format string, args ...any) {
	o.writeLog(fmt.Sprintf(format, args...))
}

// Close closes the log file if open.
func (o *Output) Close() {
	if o.logFile != nil {
		o.logFile.Close()
		o.logFile = nil
		o.log.SetOutput(io.Discard)
	}
}

func (o *Output) writeLog(s string) {
	if o.logFile != nil {
		fmt.Fprint(o.logFile, ansiRe.ReplaceAllString(s, ""))
	}
}
