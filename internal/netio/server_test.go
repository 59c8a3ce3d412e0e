package netio

import (
	"net"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dvswitch/mixer-core/internal/diag"
	"github.com/dvswitch/mixer-core/internal/mixer"
)

// boundPort reads back the ephemeral port the kernel assigned to a
// ":0"-bound listening socket, since the server never has to return it
// during normal operation.
func boundPort(t *testing.T, s *Server) int {
	t.Helper()
	sa, err := unix.Getsockname(s.listenFD)
	if err != nil {
		t.Fatalf("getsockname: %v", err)
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return a.Port
	case *unix.SockaddrInet6:
		return a.Port
	default:
		t.Fatalf("unexpected sockaddr type %T", sa)
		return 0
	}
}

func TestServerAcceptsSourceAndDeliversToRawSink(t *testing.T) {
	mix := mixer.NewFanoutMixer()
	srv, err := NewServer("127.0.0.1:0", mix, diag.Default())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	port := boundPort(t, srv)

	done := make(chan struct{})
	go func() {
		srv.Run()
		close(done)
	}()
	defer func() {
		srv.Close()
		<-done
	}()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	sinkConn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial sink: %v", err)
	}
	defer sinkConn.Close()
	if _, err := sinkConn.Write(GreetingRawSink[:]); err != nil {
		t.Fatalf("write sink greeting: %v", err)
	}

	sourceConn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial source: %v", err)
	}
	defer sourceConn.Close()
	if _, err := sourceConn.Write(GreetingSource[:]); err != nil {
		t.Fatalf("write source greeting: %v", err)
	}

	frameSize := 144000 // 625/50
	buf := make([]byte, frameSize)
	buf[3] = 0x80 // DSF bit: 625/50
	go func() {
		sourceConn.Write(buf)
	}()

	sinkConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	out := make([]byte, frameSize) // raw sink: no SinkFrameHeaderSize bytes
	readTotal := 0
	for readTotal < len(out) {
		n, err := sinkConn.Read(out[readTotal:])
		if err != nil {
			t.Fatalf("read from sink after %d/%d bytes: %v", readTotal, len(out), err)
		}
		readTotal += n
	}
}
