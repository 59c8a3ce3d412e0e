// File: cmd/dvsource-alsa/help.go
// Colored usage banner, grounded on cmd/alohartcd/help.go's
// color.New(color.FgX).Printf banner pattern.
// License: Apache-2.0

package main

import (
	"fmt"

	"github.com/fatih/color"
)

const usageBody = `Capture audio from an ALSA device and send it to a mixer as a DV source,
filled in with black video.

Usage: dvsource-alsa [OPTION]... [DEVICE]

  -h, --host=HOST      Mixer hostname (default: from config file)
  -p, --port=PORT       Mixer port (default: from config file)
  -s, --system=ntsc|pal Video system (default: pal)
  -r, --rate=RATE       Audio sample rate: 32000, 44100, or 48000 (default: 48000)
  -d, --delay=SECONDS   Target capture buffering delay (default: 0.2)
  -H, --help            Print this message and exit

DEVICE defaults to "default".`

func printHelp() {
	title := color.New(color.FgCyan, color.Bold)
	title.Println("dvsource-alsa")
	fmt.Println(usageBody)
}

func printUsageError(progname string, err error) {
	red := color.New(color.FgRed)
	red.Fprintf(errOut, "%s: %v\n", progname, err)
	fmt.Fprintln(errOut, usageBody)
}
