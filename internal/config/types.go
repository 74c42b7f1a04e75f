package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// DisplayMode selects which throughput directions appear in the summary.
type DisplayMode string

const (
	DisplayBoth     DisplayMode = "both"
	DisplayDownload DisplayMode = "download"
	DisplayUpload   DisplayMode = "upload"
)

// UnitType selects bytes or bits for rendered rates.
type UnitType string

const (
	UnitBytes UnitType = "bytes"
	UnitBits  UnitType = "bits"
)

// FixedUnit pins rendered rates to one magnitude instead of auto-scaling.
type FixedUnit string

const (
	FixedAuto FixedUnit = "auto"
	FixedKB   FixedUnit = "kb"
	FixedMB   FixedUnit = "mb"
)

// TCPMethod selects how the TCP-connect fallback probe connects.
type TCPMethod string

const (
	// TCPMethodNetcat shells out to nc, matching the other probe utilities.
	TCPMethodNetcat TCPMethod = "nc"
	// TCPMethodDial connects in-process with net.Dialer.
	TCPMethodDial TCPMethod = "dial"
)

// Config represents the complete netbar configuration file.
type Config struct {
	Version     int             `yaml:"version" mapstructure:"version"`
	Interval    time.Duration   `yaml:"interval" mapstructure:"interval"`
	HistorySize int             `yaml:"history_size" mapstructure:"history_size"`
	StateFile   string          `yaml:"state_file" mapstructure:"state_file"`
	Display     DisplayConfig   `yaml:"display" mapstructure:"display"`
	Menu        MenuConfig      `yaml:"menu" mapstructure:"menu"`
	Probe       ProbeConfig     `yaml:"probe" mapstructure:"probe"`
	SpeedTest   SpeedTestConfig `yaml:"speedtest" mapstructure:"speedtest"`
}

// DisplayConfig controls how rates are rendered.
type DisplayConfig struct {
	Mode      DisplayMode `yaml:"mode" mapstructure:"mode"`
	UnitType  UnitType    `yaml:"unit_type" mapstructure:"unit_type"`
	FixedUnit FixedUnit   `yaml:"fixed_unit" mapstructure:"fixed_unit"`

	// Arrows prefixes upload/download values with ↑/↓.
	Arrows bool `yaml:"arrows" mapstructure:"arrows"`

	// Unstack puts upload and download on one line instead of two.
	Unstack bool `yaml:"unstack" mapstructure:"unstack"`
}

// MenuConfig toggles the pinned stats in the summary line.
// When every toggle is off the summary shows throughput only.
type MenuConfig struct {
	Speed        bool `yaml:"speed" mapstructure:"speed"`
	RSSI         bool `yaml:"rssi" mapstructure:"rssi"`
	RouterPing   bool `yaml:"router_ping" mapstructure:"router_ping"`
	DNSPing      bool `yaml:"dns_ping" mapstructure:"dns_ping"`
	InternetPing bool `yaml:"internet_ping" mapstructure:"internet_ping"`
}

// ProbeConfig controls reachability probing.
type ProbeConfig struct {
	// InternetHost is the fixed public target.
	InternetHost string `yaml:"internet_host" mapstructure:"internet_host"`

	// Count is the number of ICMP echo requests per probe.
	Count int `yaml:"count" mapstructure:"count"`

	// Timeout bounds the wait for each echo reply.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	TCPAttempts int           `yaml:"tcp_attempts" mapstructure:"tcp_attempts"`
	TCPTimeout  time.Duration `yaml:"tcp_timeout" mapstructure:"tcp_timeout"`
	TCPDelay    time.Duration `yaml:"tcp_delay" mapstructure:"tcp_delay"`
	TCPMethod   TCPMethod     `yaml:"tcp_method" mapstructure:"tcp_method"`

	// PublicResolvers are probed on port 53 by the TCP fallback; everything
	// else is probed on port 80.
	PublicResolvers []string `yaml:"public_resolvers" mapstructure:"public_resolvers"`
}

// SpeedTestConfig controls the on-demand bandwidth test.
type SpeedTestConfig struct {
	Command   string        `yaml:"command" mapstructure:"command"`
	Countdown time.Duration `yaml:"countdown" mapstructure:"countdown"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:     CurrentConfigVersion,
		Interval:    time.Second,
		HistorySize: 60,
		StateFile:   DefaultStatePath(),
		Display: DisplayConfig{
			Mode:      DisplayBoth,
			UnitType:  UnitBytes,
			FixedUnit: FixedAuto,
			Arrows:    true,
			Unstack:   false,
		},
		Menu: MenuConfig{
			Speed: true,
		},
		Probe: ProbeConfig{
			InternetHost:    "1.1.1.1",
			Count:           5,
			Timeout:         time.Second,
			TCPAttempts:     5,
			TCPTimeout:      time.Second,
			TCPDelay:        100 * time.Millisecond,
			TCPMethod:       TCPMethodNetcat,
			PublicResolvers: []string{"1.1.1.1", "8.8.8.8", "1.0.0.1", "8.8.4.4", "9.9.9.9"},
		},
		SpeedTest: SpeedTestConfig{
			Command:   "networkQuality",
			Countdown: 50 * time.Second,
		},
	}
}
