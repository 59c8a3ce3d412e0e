// File: internal/netio/server.go
// The I/O multiplexer: a single-threaded, readiness-based poll loop owning
// the listen socket, the wake-up pipe, and every connection's socket. Its
// non-blocking accept/read path and panic-isolated per-event dispatch
// follow the same readiness-driven event loop style used elsewhere in this
// repo, and its explicit poll-table layout (row i+2 <-> connections[i],
// slots 0/1 reserved for the wake pipe and listener) reproduces the
// original server::serve in server.cpp with golang.org/x/sys/unix.Poll in
// place of C's poll(2).
// License: Apache-2.0

package netio

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/dvswitch/mixer-core/internal/diag"
	"github.com/dvswitch/mixer-core/internal/mixer"
	"github.com/dvswitch/mixer-core/internal/wakeup"
)

// slotPipe, slotListen are the two reserved poll-table rows; live
// connections start at slotFirstConn.
const (
	slotPipe      = 0
	slotListen    = 1
	slotFirstConn = 2
)

// Server is the connection multiplexer. Construct with NewServer, then call
// Run (typically in its own goroutine); call Close to request an orderly
// shutdown and wait for Run to return.
type Server struct {
	mix     mixer.Mixer
	log     *diag.Logger
	metrics *diag.Metrics

	listenFD int
	wake     *wakeup.Pipe

	// Owned exclusively by the Run goroutine from here down.
	pollfds []unix.PollFd
	conns   []Connection
	fdSlot  map[int]int // fd -> index into conns, kept in lockstep with pollfds

	doneCh chan struct{}
	once   sync.Once
}

// NewServer binds addr and prepares the server loop. It does not start
// accepting connections until Run is called.
func NewServer(addr string, mix mixer.Mixer, log *diag.Logger) (*Server, error) {
	if log == nil {
		log = diag.Default()
	}
	listenFD, err := listenTCP(addr)
	if err != nil {
		return nil, err
	}
	wake, err := wakeup.New()
	if err != nil {
		unix.Close(listenFD)
		return nil, fmt.Errorf("wake-up pipe: %w", err)
	}

	s := &Server{
		mix:      mix,
		log:      log,
		metrics:  diag.NewMetrics(),
		listenFD: listenFD,
		wake:     wake,
		fdSlot:   make(map[int]int),
		doneCh:   make(chan struct{}),
	}
	s.pollfds = []unix.PollFd{
		{Fd: int32(wake.ReaderFD()), Events: unix.POLLIN},
		{Fd: int32(listenFD), Events: unix.POLLIN},
	}
	return s, nil
}

// Metrics exposes the running counters for diagnostics/tests.
func (s *Server) Metrics() *diag.Metrics { return s.metrics }

// WakeWritable implements wakeNotifier: ask the loop to re-arm writable
// interest on fd's poll row, from any goroutine.
func (s *Server) WakeWritable(fd int) {
	s.wake.WriteWakeFD(int32(fd))
}

// Close requests an orderly shutdown and blocks until Run returns.
func (s *Server) Close() {
	s.once.Do(func() {
		s.wake.WriteQuit()
	})
	<-s.doneCh
}

// Run executes the poll loop until Close is called or an unrecoverable
// poll error occurs. It always cleans up every connection and the
// listening/wake-up sockets before returning.
func (s *Server) Run() {
	defer close(s.doneCh)
	defer s.teardown()

	for {
		_, err := unix.Poll(s.pollfds, -1)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			s.log.Errorf("poll: %v", err)
			return
		}

		if s.pollfds[slotPipe].Revents&unix.POLLIN != 0 {
			if s.drainWakePipe() {
				return // quit token seen
			}
		}

		if s.pollfds[slotListen].Revents&unix.POLLIN != 0 {
			s.acceptOne()
		}

		s.serviceConnections()
	}
}

// drainWakePipe processes pending wake-up words. It returns true if the
// quit token was seen.
func (s *Server) drainWakePipe() bool {
	fds, quit, err := s.wake.Drain()
	if err != nil {
		s.log.Errorf("wake-up pipe read: %v", err)
		return false
	}
	for _, fd := range fds {
		if idx, ok := s.fdSlot[int(fd)]; ok {
			s.pollfds[slotFirstConn+idx].Events |= unix.POLLOUT
		}
		// Unknown fd: either already dropped or stale; safely ignored.
	}
	return quit
}

// acceptOne accepts at most one pending connection, a best-effort policy
// that simply ignores EAGAIN/EWOULDBLOCK.
func (s *Server) acceptOne() {
	fd, _, err := unix.Accept(s.listenFD)
	if err != nil {
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			s.log.Warnf("accept: %v", err)
		}
		return
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		s.log.Warnf("accept: set non-blocking: %v", err)
		unix.Close(fd)
		return
	}
	s.addConnection(NewUnknown(fd, s.mix))
	s.metrics.Inc("connections_accepted", 1)
}

// addConnection appends a new connection slot, keeping conns, pollfds, and
// fdSlot in lockstep with the poll-table layout.
func (s *Server) addConnection(c Connection) {
	idx := len(s.conns)
	s.conns = append(s.conns, c)
	s.pollfds = append(s.pollfds, unix.PollFd{Fd: int32(c.FD()), Events: unix.POLLIN})
	s.fdSlot[c.FD()] = idx
	if sink, ok := c.(*Sink); ok {
		sink.bindWake(s)
	}
}

// serviceConnections inspects each connection's returned events and
// dispatches do_receive/do_send, isolating one peer's failure from the
// others and from the loop itself.
func (s *Server) serviceConnections() {
	for i := 0; i < len(s.conns); {
		row := &s.pollfds[slotFirstConn+i]
		revents := row.Revents
		c := s.conns[i]

		drop := false
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Errorf("%s: panic: %v", c.Identity(), r)
					s.log.Dump(c)
					drop = true
				}
			}()

			switch {
			case revents&(unix.POLLHUP|unix.POLLERR) != 0:
				drop = true
			case revents&unix.POLLIN != 0:
				result, next, err := c.DoReceive()
				switch result {
				case ReceiveDrop:
					if err != nil {
						s.log.Warnf("dropping connection from %s: %v", c.Identity(), err)
					} else {
						s.log.Warnf("dropping connection from %s", c.Identity())
					}
					drop = true
				case ReceiveReplace:
					c.Close()
					s.conns[i] = next
					c = next
					if sink, ok := next.(*Sink); ok {
						sink.bindWake(s)
					}
				case ReceiveKeep:
				}
			case revents&unix.POLLOUT != 0:
				switch status, err := c.DoSend(); status {
				case SendFailed:
					if err != nil {
						s.log.Warnf("dropping connection from %s: %v", c.Identity(), err)
					}
					drop = true
				case SentSome:
				case SentAll:
					row.Events &^= unix.POLLOUT
				}
			}
		}()

		if drop {
			s.dropAt(i)
		} else {
			i++
		}
	}
}

// dropAt destroys the connection at index i and erases its row from conns,
// pollfds, and fdSlot in lockstep.
func (s *Server) dropAt(i int) {
	c := s.conns[i]
	delete(s.fdSlot, c.FD())
	c.Close()
	unix.Close(c.FD())

	s.conns = append(s.conns[:i], s.conns[i+1:]...)
	s.pollfds = append(s.pollfds[:slotFirstConn+i], s.pollfds[slotFirstConn+i+1:]...)
	for fd, idx := range s.fdSlot {
		if idx > i {
			s.fdSlot[fd] = idx - 1
		}
	}
	s.metrics.Inc("connections_dropped", 1)
}

// teardown destroys every remaining connection and closes the listener and
// wake-up pipe, on every exit path from Run.
func (s *Server) teardown() {
	for _, c := range s.conns {
		c.Close()
		unix.Close(c.FD())
	}
	s.conns = nil
	s.pollfds = nil
	s.fdSlot = nil
	unix.Close(s.listenFD)
	s.wake.Close()
}
