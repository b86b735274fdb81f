// Package cli implements the touchosc2midi command line.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"

	"github.com/chabad360/touchosc2midi/internal/bridge"
	"github.com/chabad360/touchosc2midi/internal/config"
	"github.com/chabad360/touchosc2midi/internal/logging"
	"github.com/chabad360/touchosc2midi/internal/midiport"
)

// Version is set at build time.
var Version = "dev"

// Execute runs the command line with drv as the MIDI backend and returns the
// process exit code.
func Execute(drv drivers.Driver) int {
	if err := NewRootCommand(drv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCommand returns the root command. Without a subcommand it runs the
// bridge until interrupted.
func NewRootCommand(drv drivers.Driver) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "touchosc2midi",
		Short: "TouchOSC to MIDI bridge",
		Long: `touchosc2midi relays MIDI between a TouchOSC surface and local MIDI ports.

Messages the surface sends to /midi are written to the MIDI output. Events
from the MIDI input are sent to the surface, by default to the broadcast
address of the local network on the listen port + 1. Without --midi-in and
--midi-out, virtual ports are created.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridge(cmd, v, drv)
		},
	}

	flags := root.Flags()
	flags.String("midi-in", "", "full name or number of the MIDI input port")
	flags.String("midi-out", "", "full name or number of the MIDI output port")
	flags.String("ip", "", "address to send to (default: broadcast address of the local network)")
	flags.Int("port", 12345, "UDP port to listen on; messages are sent to port+1")
	flags.Int("prefix-len", 16, "network prefix length used to guess the broadcast address")
	_ = v.BindPFlag("midi.in", flags.Lookup("midi-in"))
	_ = v.BindPFlag("midi.out", flags.Lookup("midi-out"))
	_ = v.BindPFlag("osc.peer", flags.Lookup("ip"))
	_ = v.BindPFlag("osc.port", flags.Lookup("port"))
	_ = v.BindPFlag("osc.prefix_len", flags.Lookup("prefix-len"))

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/touchosc2midi/config.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	root.AddCommand(newListCommand(drv))
	return root
}

func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, path)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func runBridge(cmd *cobra.Command, v *viper.Viper, drv drivers.Driver) error {
	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}

	log, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer log.Sync()
	log.Debug("configuration", zap.Any("config", cfg))

	in, out, err := midiport.Open(drv, cfg.MIDI.In, cfg.MIDI.Out, cfg.MIDI.VirtualName, log.Named("midi"))
	if err != nil {
		return &bridge.StartupError{Op: "open MIDI ports", Err: err}
	}

	b := bridge.New(bridge.Options{
		Port:      cfg.OSC.Port,
		PeerHost:  cfg.OSC.Peer,
		PeerPort:  cfg.OSC.PeerPort,
		PrefixLen: cfg.OSC.PrefixLen,
		ProbeAddr: cfg.OSC.ProbeAddr,
	}, in, out, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	return nil
}
