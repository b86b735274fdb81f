// Package config loads the bridge configuration from defaults, an optional
// YAML file, TOUCHOSC2MIDI_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TOUCHOSC2MIDI_OSC_PORT.
const EnvPrefix = "TOUCHOSC2MIDI"

// Config is the complete bridge configuration.
type Config struct {
	OSC  OSCConfig  `mapstructure:"osc"`
	MIDI MIDIConfig `mapstructure:"midi"`
	Log  LogConfig  `mapstructure:"log"`
}

// OSCConfig controls the network side.
type OSCConfig struct {
	// Port is the UDP port the bridge listens on.
	Port int `mapstructure:"port"`
	// Peer is the host outbound messages go to. Empty means the broadcast
	// address of the main interface's network.
	Peer string `mapstructure:"peer"`
	// PeerPort is the outbound port (0 = Port+1).
	PeerPort int `mapstructure:"peer_port"`
	// PrefixLen is the network prefix assumed when inferring the peer.
	PrefixLen int `mapstructure:"prefix_len"`
	// ProbeAddr selects the main interface when inferring the peer.
	ProbeAddr string `mapstructure:"probe_addr"`
}

// MIDIConfig selects the instrument ports.
type MIDIConfig struct {
	// In and Out are port names or numbers. When both are empty virtual
	// ports named VirtualName are created.
	In          string `mapstructure:"in"`
	Out         string `mapstructure:"out"`
	VirtualName string `mapstructure:"virtual_name"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is console or json.
	Format string `mapstructure:"format"`
	// Outputs are stdout, stderr or file paths.
	Outputs     []string       `mapstructure:"outputs"`
	Rotation    RotationConfig `mapstructure:"rotation"`
	Development bool           `mapstructure:"development"`
}

// RotationConfig controls rotation of file outputs.
type RotationConfig struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		OSC: OSCConfig{
			Port:      12345,
			PrefixLen: 16,
			ProbeAddr: "192.0.2.0",
		},
		MIDI: MIDIConfig{
			VirtualName: "TouchOSC Bridge",
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
			Rotation: RotationConfig{
				Filename:   "touchosc2midi.log",
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
	}
}

// SetDefaults registers the defaults with v so that environment-only
// overrides are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("osc.port", defaults.OSC.Port)
	v.SetDefault("osc.peer", defaults.OSC.Peer)
	v.SetDefault("osc.peer_port", defaults.OSC.PeerPort)
	v.SetDefault("osc.prefix_len", defaults.OSC.PrefixLen)
	v.SetDefault("osc.probe_addr", defaults.OSC.ProbeAddr)

	v.SetDefault("midi.in", defaults.MIDI.In)
	v.SetDefault("midi.out", defaults.MIDI.Out)
	v.SetDefault("midi.virtual_name", defaults.MIDI.VirtualName)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.outputs", defaults.Log.Outputs)
	v.SetDefault("log.development", defaults.Log.Development)
	v.SetDefault("log.rotation.enable", defaults.Log.Rotation.Enable)
	v.SetDefault("log.rotation.filename", defaults.Log.Rotation.Filename)
	v.SetDefault("log.rotation.max_size_mb", defaults.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", defaults.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)
}

// Dir returns the per-user configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "touchosc2midi")
}

// Load reads the configuration into v and decodes it. path names a config
// file; when empty, config.yaml is searched in Dir() and the working
// directory and a missing file is not an error. Flags bound to v before Load
// take precedence over the file and the environment.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir := Dir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and normalizes the log settings.
func (c *Config) Validate() error {
	if c.OSC.Port < 1 || c.OSC.Port > 65535 {
		return fmt.Errorf("invalid osc.port: %d", c.OSC.Port)
	}
	if c.OSC.PeerPort < 0 || c.OSC.PeerPort > 65535 {
		return fmt.Errorf("invalid osc.peer_port: %d", c.OSC.PeerPort)
	}
	if c.OSC.PeerPort == 0 && c.OSC.Port == 65535 {
		return fmt.Errorf("osc.peer_port must be set when osc.port is 65535")
	}
	if c.OSC.PrefixLen < 0 || c.OSC.PrefixLen > 32 {
		return fmt.Errorf("invalid osc.prefix_len: %d", c.OSC.PrefixLen)
	}
	if _, err := netip.ParseAddr(c.OSC.ProbeAddr); err != nil {
		return fmt.Errorf("invalid osc.probe_addr: %w", err)
	}
	if (c.MIDI.In == "") != (c.MIDI.Out == "") {
		return fmt.Errorf("midi.in and midi.out must be given together")
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "":
		c.Log.Format = "console"
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format: %q", c.Log.Format)
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	return nil
}
