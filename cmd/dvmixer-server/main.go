// File: cmd/dvmixer-server/main.go
// Entry point for the mixer's network core: binds the listening socket,
// starts the poll loop, and waits for a termination signal to shut it down
// in an orderly fashion. Grounded on main() in server.cpp, which parses a
// bind address, constructs a server, and calls server::serve() until
// SIGTERM/SIGINT.
// License: Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/dvswitch/mixer-core/internal/diag"
	"github.com/dvswitch/mixer-core/internal/mixer"
	"github.com/dvswitch/mixer-core/internal/netio"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		addr string
		help bool
	)
	flag.StringVarP(&addr, "listen", "l", ":7890", "address to listen on")
	flag.BoolVarP(&help, "help", "H", false, "print usage and exit")
	flag.Parse()

	if help {
		fmt.Println("dvmixer-server: mix DV video streams from sources and distribute to sinks")
		fmt.Println("Usage: dvmixer-server [-l HOST:PORT]")
		return 0
	}

	log := diag.Default()
	mix := mixer.NewFanoutMixer()

	srv, err := netio.NewServer(addr, mix, log)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}

	log.Infof("Listening on %s", addr)

	done := make(chan struct{})
	go func() {
		srv.Run()
		close(done)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
		log.Infof("Shutting down.")
		srv.Close()
	case <-done:
	}
	<-done
	return 0
}
