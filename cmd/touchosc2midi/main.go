// Command touchosc2midi bridges a TouchOSC surface and local MIDI ports.
package main

import (
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/chabad360/touchosc2midi/internal/cli"
)

func main() {
	drv, err := rtmididrv.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: rtmidi:", err)
		os.Exit(1)
	}

	code := cli.Execute(drv)
	drv.Close()
	os.Exit(code)
}
