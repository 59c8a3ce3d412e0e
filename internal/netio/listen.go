// File: internal/netio/listen.go
// Raw non-blocking listening socket setup. The server core talks to every
// socket -- listener, accepted connections, and the wake-up pipe -- through
// raw file descriptors and golang.org/x/sys/unix, rather than through
// net.Conn: the per-connection state machines need direct, non-blocking
// read/write/writev control that net.Conn's deadline-based API does not
// expose as directly.
// License: Apache-2.0

package netio

import (
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// listenTCP resolves addr (host:port) and returns a bound, listening,
// non-blocking socket file descriptor.
func listenTCP(addr string) (int, error) {
	resolved, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return -1, errors.Wrapf(err, "resolve %s", addr)
	}

	family := unix.AF_INET
	if resolved.IP != nil && resolved.IP.To4() == nil {
		family = unix.AF_INET6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, errors.Wrap(err, "socket")
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, errors.Wrap(err, "setsockopt SO_REUSEADDR")
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, errors.Wrap(err, "set non-blocking")
	}

	var sa unix.Sockaddr
	if family == unix.AF_INET6 {
		var addr6 [16]byte
		copy(addr6[:], resolved.IP.To16())
		sa = &unix.SockaddrInet6{Port: resolved.Port, Addr: addr6}
	} else {
		var addr4 [4]byte
		ip4 := resolved.IP.To4()
		if ip4 != nil {
			copy(addr4[:], ip4)
		}
		sa = &unix.SockaddrInet4{Port: resolved.Port, Addr: addr4}
	}

	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, errors.Wrapf(err, "bind %s", addr)
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return -1, errors.Wrapf(err, "listen %s", addr)
	}
	return fd, nil
}
