// File: internal/netio/recv.go
// Shared non-blocking receive-window state machine used by all three
// connection variants, matching connection::do_receive in the original:
// refill the window on exhaustion, read once, advance, and hand off to the
// variant's completion hook only once the window is fully consumed.
// License: Apache-2.0

package netio

import (
	"golang.org/x/sys/unix"
)

// receiveWindow tracks the next contiguous region a connection expects to
// read into. Its size is zero exactly when the state machine must refill
// before the next read.
type receiveWindow struct {
	buf []byte
}

// doReceive runs one non-blocking read against fd, refilling win via refill
// when exhausted and invoking onFull once a refill is itself fully
// consumed. identity is used only to label the empty-window programming
// error.
func doReceive(fd int, win *receiveWindow, identity string, refill func() []byte, onFull func() (ReceiveResult, Connection, error)) (ReceiveResult, Connection, error) {
	if len(win.buf) == 0 {
		w := refill()
		if len(w) == 0 {
			return ReceiveDrop, nil, errEmptyWindow(identity)
		}
		win.buf = w
	}

	n, err := unix.Read(fd, win.buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return ReceiveKeep, nil, nil
		}
		return ReceiveDrop, nil, err
	}
	if n == 0 {
		return ReceiveDrop, nil, nil // peer closed
	}

	win.buf = win.buf[n:]
	if len(win.buf) == 0 {
		return onFull()
	}
	return ReceiveKeep, nil, nil
}
