package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".netbar.yaml"
	// GlobalConfigDir is the directory for global config and state.
	GlobalConfigDir = ".config/netbar"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// StateFileName is the default traffic totals file name.
	StateFileName = "state.yaml"
	// EnvPrefix is the prefix for environment overrides (NETBAR_INTERVAL=2s).
	EnvPrefix = "NETBAR"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'netbar configure' to create one, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .netbar.yaml in current directory
// 3. ~/.config/netbar/config.yaml (global)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults
// (with environment overrides applied) if no file exists.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// GlobalConfigPath returns ~/.config/netbar/config.yaml, or "" without a home directory.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// DefaultStatePath returns ~/.config/netbar/state.yaml, falling back to the
// working directory without a home directory.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return StateFileName
	}
	return filepath.Join(home, GlobalConfigDir, StateFileName)
}

// Keys lists every dotted config key, sorted.
func Keys() []string {
	keys := newViper().AllKeys()
	sort.Strings(keys)
	return keys
}

// newViper returns a viper instance with defaults and NETBAR_* overrides.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.StateFile = expandHome(cfg.StateFile)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so environment overrides resolve even
// when the file omits them.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("version", d.Version)
	v.SetDefault("interval", d.Interval.String())
	v.SetDefault("history_size", d.HistorySize)
	v.SetDefault("state_file", d.StateFile)

	v.SetDefault("display.mode", string(d.Display.Mode))
	v.SetDefault("display.unit_type", string(d.Display.UnitType))
	v.SetDefault("display.fixed_unit", string(d.Display.FixedUnit))
	v.SetDefault("display.arrows", d.Display.Arrows)
	v.SetDefault("display.unstack", d.Display.Unstack)

	v.SetDefault("menu.speed", d.Menu.Speed)
	v.SetDefault("menu.rssi", d.Menu.RSSI)
	v.SetDefault("menu.router_ping", d.Menu.RouterPing)
	v.SetDefault("menu.dns_ping", d.Menu.DNSPing)
	v.SetDefault("menu.internet_ping", d.Menu.InternetPing)

	v.SetDefault("probe.internet_host", d.Probe.InternetHost)
	v.SetDefault("probe.count", d.Probe.Count)
	v.SetDefault("probe.timeout", d.Probe.Timeout.String())
	v.SetDefault("probe.tcp_attempts", d.Probe.TCPAttempts)
	v.SetDefault("probe.tcp_timeout", d.Probe.TCPTimeout.String())
	v.SetDefault("probe.tcp_delay", d.Probe.TCPDelay.String())
	v.SetDefault("probe.tcp_method", string(d.Probe.TCPMethod))
	v.SetDefault("probe.public_resolvers", d.Probe.PublicResolvers)

	v.SetDefault("speedtest.command", d.SpeedTest.Command)
	v.SetDefault("speedtest.countdown", d.SpeedTest.Countdown.String())
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
