// Package config holds the settings recognized per spec §6.4, sourced
// from a YAML file at startup and overlaid by the LSP
// workspace/configuration mechanism at runtime.
package config

import "time"

// ConnectionTiming mirrors matlabConnectionTiming: when the interpreter
// process manager should first attempt a connection.
type ConnectionTiming string

const (
	// TimingOnStart schedules ensureConnection() right after the LSP
	// "initialized" notification.
	TimingOnStart ConnectionTiming = "on-start"
	// TimingOnDemand connects lazily, the first time a feature needs it.
	TimingOnDemand ConnectionTiming = "on-demand"
	// TimingNever disables interpreter connections entirely.
	TimingNever ConnectionTiming = "never"
)

// DefaultConfigFile is the file name looked up relative to the
// workspace root when no --config flag is given.
const DefaultConfigFile = "matlab-language-server.yaml"

// Config is the full set of server settings.
type Config struct {
	// MatlabLaunchCommandArgs are extra argv appended to the interpreter
	// launch command line, ahead of the bootstrap instruction the
	// process manager always appends.
	MatlabLaunchCommandArgs []string `yaml:"matlabLaunchCommandArgs,omitempty" json:"matlabLaunchCommandArgs,omitempty"`

	// MatlabInstallPath is the base directory the interpreter binary
	// path is derived from. Mutually informative with MatlabURL: when
	// MatlabURL is set the server attaches instead of spawning.
	MatlabInstallPath string `yaml:"matlabInstallPath,omitempty" json:"matlabInstallPath,omitempty"`

	// MatlabConnectionTiming selects when ensureConnection() first runs.
	MatlabConnectionTiming ConnectionTiming `yaml:"matlabConnectionTiming,omitempty" json:"matlabConnectionTiming,omitempty"`

	// IndexWorkspace enables the bulk workspace indexer on startup.
	IndexWorkspace bool `yaml:"indexWorkspace" json:"indexWorkspace"`

	// MatlabURL, when non-empty, selects the attached-process flavor of
	// the interpreter manager: the server connects to this URL instead
	// of spawning a child process.
	MatlabURL string `yaml:"matlabUrl,omitempty" json:"matlabUrl,omitempty"`

	// HandshakeTimeout bounds how long the process manager waits for the
	// handshake file to appear after spawning the interpreter.
	HandshakeTimeout time.Duration `yaml:"handshakeTimeout,omitempty" json:"handshakeTimeout,omitempty"`

	// RequestTimeout bounds how long a feature provider waits for a bus
	// reply before giving up locally, per spec §5 ("recommended >= 10s").
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty" json:"requestTimeout,omitempty"`

	// DocumentIndexDebounce is the queueIndex debounce window, spec §4.4
	// fixes this at 500ms; exposed here only so tests can shrink it.
	DocumentIndexDebounce time.Duration `yaml:"documentIndexDebounce,omitempty" json:"documentIndexDebounce,omitempty"`

	// Verbose raises every SafeLogger to Debug level.
	Verbose bool `yaml:"verbose,omitempty" json:"verbose,omitempty"`
}

// Defaults returns a Config with every field set to its documented
// default, the way a fresh matlab-language-server.yaml would read.
func Defaults() Config {
	return Config{
		MatlabConnectionTiming: TimingOnStart,
		HandshakeTimeout:       30 * time.Second,
		RequestTimeout:         10 * time.Second,
		DocumentIndexDebounce:  500 * time.Millisecond,
	}
}

// IsAttached reports whether the configuration selects the
// attached-process interpreter flavor (spec §4.2).
func (c Config) IsAttached() bool {
	return c.MatlabURL != ""
}

// ApplyDefaults fills zero-valued fields of c with Defaults(), without
// disturbing fields the caller already set.
func (c *Config) ApplyDefaults() {
	d := Defaults()
	if c.MatlabConnectionTiming == "" {
		c.MatlabConnectionTiming = d.MatlabConnectionTiming
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.DocumentIndexDebounce == 0 {
		c.DocumentIndexDebounce = d.DocumentIndexDebounce
	}
}
