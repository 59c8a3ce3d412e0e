// File: internal/diag/diag.go
// Package diag emits single-line, prefixed diagnostics ("INFO:"/"WARN:"/
// "ERROR:" to stderr), matching the log.Printf idiom used throughout this
// repo and the original C++/C sources' identical std::cerr/fprintf prefix
// convention (server.cpp, dvsource-alsa.c).
// License: Apache-2.0

package diag

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
)

// Logger writes INFO/WARN/ERROR lines. Construct one with New or Default;
// the zero value has no underlying log.Logger and cannot be used.
type Logger struct {
	l *log.Logger
}

// New creates a Logger writing to w with no extra decoration (no
// timestamp, no file/line -- the original tools write bare prefixed
// lines and nothing else).
func New(w io.Writer) *Logger {
	return &Logger{l: log.New(w, "", 0)}
}

// Default writes to os.Stderr.
func Default() *Logger { return New(os.Stderr) }

func (d *Logger) Infof(format string, args ...any) {
	d.l.Print("INFO: " + fmt.Sprintf(format, args...))
}

func (d *Logger) Warnf(format string, args ...any) {
	d.l.Print("WARN: " + fmt.Sprintf(format, args...))
}

func (d *Logger) Errorf(format string, args ...any) {
	d.l.Print("ERROR: " + fmt.Sprintf(format, args...))
}

// Dump writes a structural dump of v after an ERROR line, for the cases
// (connection panics, protocol-state anomalies) where the message alone
// does not give enough to reproduce the failure offline.
func (d *Logger) Dump(v any) {
	d.l.Print("ERROR: " + spew.Sdump(v))
}
