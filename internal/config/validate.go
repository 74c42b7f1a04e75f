package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rileyhilliard/netbar/internal/errors"
)

// MinInterval is the shortest sampling interval accepted.
const MinInterval = 500 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but netbar only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest netbar release")
	}

	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("interval %s is too short", cfg.Interval),
			fmt.Sprintf("Use at least %s", MinInterval))
	}

	if cfg.HistorySize < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history_size must be positive, got %d", cfg.HistorySize),
			"60 keeps one minute of samples at the default interval")
	}

	if err := validateDisplay(cfg.Display); err != nil {
		return err
	}

	if err := validateProbe(cfg.Probe); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.SpeedTest.Command) == "" {
		return errors.New(errors.ErrConfig,
			"speedtest.command is empty",
			"Set it to networkQuality (macOS) or another compatible utility")
	}
	if cfg.SpeedTest.Countdown <= 0 {
		return errors.New(errors.ErrConfig,
			"speedtest.countdown must be positive",
			"50s matches how long networkQuality usually takes")
	}

	return nil
}

func validateDisplay(d DisplayConfig) error {
	switch d.Mode {
	case DisplayBoth, DisplayDownload, DisplayUpload:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown display.mode '%s'", d.Mode),
			"Use one of: both, download, upload")
	}

	switch d.UnitType {
	case UnitBytes, UnitBits:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown display.unit_type '%s'", d.UnitType),
			"Use one of: bytes, bits")
	}

	switch d.FixedUnit {
	case FixedAuto, FixedKB, FixedMB:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown display.fixed_unit '%s'", d.FixedUnit),
			"Use one of: auto, kb, mb")
	}

	return nil
}

func validateProbe(p ProbeConfig) error {
	if strings.TrimSpace(p.InternetHost) == "" {
		return errors.New(errors.ErrConfig,
			"probe.internet_host is empty",
			"Set it to a stable public address like 1.1.1.1")
	}

	if p.Count < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("probe.count must be at least 1, got %d", p.Count),
			"5 echo requests is the usual choice")
	}
	if p.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"probe.timeout must be positive",
			"Try 1s")
	}

	if p.TCPAttempts < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("probe.tcp_attempts must be at least 1, got %d", p.TCPAttempts),
			"5 attempts is the usual choice")
	}
	if p.TCPTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"probe.tcp_timeout must be positive",
			"Try 1s")
	}
	if p.TCPDelay < 0 {
		return errors.New(errors.ErrConfig,
			"probe.tcp_delay can't be negative",
			"Try 100ms")
	}

	switch p.TCPMethod {
	case TCPMethodNetcat, TCPMethodDial:
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown probe.tcp_method '%s'", p.TCPMethod),
			"Use one of: nc, dial")
	}

	for _, r := range p.PublicResolvers {
		if net.ParseIP(r) == nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("probe.public_resolvers entry '%s' is not an IP address", r),
				"List resolver addresses like 1.1.1.1")
		}
	}

	return nil
}
