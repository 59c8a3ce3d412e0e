// File: internal/wakeup/pipe.go
// Package wakeup implements the self-pipe trick the server core uses to let
// any goroutine ask the single poll loop to re-arm writable interest on a
// connection, or to shut the loop down, without the loop itself blocking on
// anything but poll(2). Grounded on the original server::server
// constructor/do_wake_up in server.cpp, which uses exactly this
// non-blocking pipe-of-ints protocol: each word is either a file
// descriptor to re-arm for writing, or -1 to request shutdown.
// License: Apache-2.0

package wakeup

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// quitToken is the sentinel word meaning "stop the server loop".
const quitToken int32 = -1

// wordSize is the width of each value written to the pipe.
const wordSize = 4

// maxDrainWords bounds how many words Drain reads in one call, matching the
// original implementation's fixed-size read-and-loop behavior so a runaway
// writer cannot make Drain block the caller indefinitely.
const maxDrainWords = 1024

// Pipe is a non-blocking, process-local notification channel: writers
// enqueue a 32-bit word describing what the loop should do when it next
// wakes on the read end.
type Pipe struct {
	readFD  int
	writeFD int
}

// New creates a fresh pipe with both ends non-blocking.
func New() (*Pipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK); err != nil {
		return nil, fmt.Errorf("pipe2: %w", err)
	}
	return &Pipe{readFD: fds[0], writeFD: fds[1]}, nil
}

// ReaderFD is the file descriptor to register for POLLIN in the poll table.
func (p *Pipe) ReaderFD() int { return p.readFD }

// WriteWakeFD asks the loop to re-arm POLLOUT on fd's slot. Safe to call
// from any goroutine; a write that loses the race with the pipe filling up
// is logged nowhere and simply dropped, matching the original's
// best-effort, non-blocking write() with EAGAIN ignored. A dropped word is
// not re-sent.
func (p *Pipe) WriteWakeFD(fd int32) error {
	return p.writeWord(fd)
}

// WriteQuit asks the loop to stop at its next iteration.
func (p *Pipe) WriteQuit() error {
	return p.writeWord(quitToken)
}

func (p *Pipe) writeWord(v int32) error {
	var buf [wordSize]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	_, err := unix.Write(p.writeFD, buf[:])
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return nil
	}
	return err
}

// Drain reads every pending word (up to maxDrainWords), returning the set
// of file descriptors to re-arm and whether a quit token was seen among
// them. It must only be called from the poll loop goroutine.
func (p *Pipe) Drain() (fds []int32, quit bool, err error) {
	var buf [wordSize * maxDrainWords]byte
	n, err := unix.Read(p.readFD, buf[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, false, nil
		}
		return nil, false, err
	}
	words := n / wordSize
	fds = make([]int32, 0, words)
	for i := 0; i < words; i++ {
		v := int32(binary.LittleEndian.Uint32(buf[i*wordSize:]))
		if v == quitToken {
			quit = true
			continue
		}
		fds = append(fds, v)
	}
	return fds, quit, nil
}

// Close closes both ends of the pipe.
func (p *Pipe) Close() {
	unix.Close(p.readFD)
	unix.Close(p.writeFD)
}
