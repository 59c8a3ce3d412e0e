// File: internal/netio/connection.go
// Package netio implements the connection multiplexer: the per-connection
// protocol state machines (Unknown/Source/Sink) and the single-threaded
// poll-table server loop that drives them. The event dispatch loop is
// non-blocking and readiness-driven, with a panic-isolated per-callback
// boundary, adapted from edge-triggered callback dispatch to the explicit
// poll(2) table the rest of this package's invariants are phrased in
// terms of.
// License: Apache-2.0

package netio

import "fmt"

// SendStatus is the result of one DoSend call, mirroring the original
// connection::send_status enum.
type SendStatus int

const (
	SendFailed SendStatus = iota
	SentSome
	SentAll
)

// ReceiveResult tells the server loop what to do with a connection slot
// after a DoReceive call, modeling the original's "replace self" transition
// as an explicit discriminated result instead of a polymorphic return.
type ReceiveResult int

const (
	// ReceiveKeep means the connection did not change identity; leave the
	// slot alone.
	ReceiveKeep ReceiveResult = iota
	// ReceiveDrop means the connection must be closed and removed.
	ReceiveDrop
	// ReceiveReplace means the slot's connection must be swapped for a new
	// one (the old one closed without its socket being touched, since the
	// new connection owns the same fd).
	ReceiveReplace
)

// Connection is the uniform interface the server loop drives. Exactly one
// of Unknown, Source, or Sink implements it for any given socket at a time.
type Connection interface {
	// FD returns the underlying socket file descriptor. Stable for the
	// connection's lifetime.
	FD() int
	// Identity renders a diagnostic label, e.g. "source 3" or "sink 1".
	Identity() string
	// DoReceive services one readable event.
	DoReceive() (ReceiveResult, Connection, error)
	// DoSend services one writable event. Connections that never register
	// for writable interest (Unknown, Source) need not override the
	// default failing behavior; callers never invoke DoSend on them.
	DoSend() (SendStatus, error)
	// Close releases any resources the connection holds other than the
	// socket itself (which the server loop owns and closes).
	Close()
}

// errEmptyWindow is a programming-error guard: a subclass handed back a
// zero-size receive window from refill, which the original implementation
// asserts against.
func errEmptyWindow(identity string) error {
	return fmt.Errorf("netio: %s: refill produced an empty receive window", identity)
}
