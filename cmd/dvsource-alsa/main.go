// File: cmd/dvsource-alsa/main.go
// Entry point for the ALSA capture adapter: negotiates a PCM capture
// stream, connects to a mixer as a DV source, and runs transfer_frames'
// capture-fill-send loop indefinitely. Grounded directly on main() and
// transfer_frames() in dvsource-alsa.c, with CLI parsing translated from
// getopt_long into spf13/pflag and the config-file fallback from
// internal/config.
// License: Apache-2.0

package main

import (
	"fmt"
	"net"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/dvswitch/mixer-core/internal/alsa"
	"github.com/dvswitch/mixer-core/internal/config"
	"github.com/dvswitch/mixer-core/internal/diag"
	"github.com/dvswitch/mixer-core/internal/dv"
	"github.com/dvswitch/mixer-core/internal/frame"
	"github.com/dvswitch/mixer-core/internal/netio"
)

var errOut = os.Stderr

func main() {
	os.Exit(run())
}

func run() int {
	var (
		host    string
		port    string
		system  string
		rate    int
		delay   float64
		help    bool
	)

	flag.StringVarP(&host, "host", "h", "", "mixer hostname")
	flag.StringVarP(&port, "port", "p", "", "mixer port")
	flag.StringVarP(&system, "system", "s", "pal", "video system: ntsc or pal")
	flag.IntVarP(&rate, "rate", "r", 48000, "audio sample rate")
	flag.Float64VarP(&delay, "delay", "d", 0.2, "capture buffering delay in seconds")
	flag.BoolVarP(&help, "help", "H", false, "print usage and exit")
	flag.Parse()

	if help {
		printHelp()
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		printUsageError("dvsource-alsa", fmt.Errorf("reading config: %w", err))
		return 2
	}
	if host == "" {
		host = cfg.MixerHost
	}
	if port == "" {
		port = cfg.MixerPort
	}
	if host == "" || port == "" {
		printUsageError("dvsource-alsa", fmt.Errorf("mixer hostname and port not defined"))
		return 2
	}

	var sys frame.System
	switch system {
	case "", "pal":
		sys = frame.System625_50
	case "ntsc":
		sys = frame.System525_60
	default:
		printUsageError("dvsource-alsa", fmt.Errorf("invalid system name %q", system))
		return 2
	}

	sampleRate, err := dv.ParseSampleRate(rate)
	if err != nil {
		printUsageError("dvsource-alsa", err)
		return 2
	}

	if delay < 0.0 {
		printUsageError("dvsource-alsa", fmt.Errorf("delays do not work that way"))
		return 2
	}
	delaySamples := int(delay * float64(rate))

	device := "default"
	if args := flag.Args(); len(args) > 0 {
		if len(args) > 1 {
			printUsageError("dvsource-alsa", fmt.Errorf("excess argument %q", args[1]))
			return 2
		}
		device = args[0]
	}

	log := diag.Default()

	log.Infof("Capturing from %s", device)
	capture, err := alsa.Open(device, sys, sampleRate)
	if err != nil {
		log.Errorf("%v", err)
		return 1
	}
	defer capture.Close()

	log.Infof("Connecting to %s:%s", host, port)
	conn, err := net.Dial("tcp", net.JoinHostPort(host, port))
	if err != nil {
		log.Errorf("connect: %v", err)
		return 1
	}
	defer conn.Close()

	if _, err := conn.Write(netio.GreetingSource[:]); err != nil {
		log.Errorf("write greeting: %v", err)
		return 1
	}
	log.Infof("Connected.")

	if err := transferFrames(conn, sys, sampleRate, capture, delaySamples, log); err != nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}
