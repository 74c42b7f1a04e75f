package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/errors"
	"golang.org/x/term"
)

// Pinned stat names used by the menu multi-select.
const (
	pinSpeed    = "speed"
	pinRSSI     = "rssi"
	pinRouter   = "router_ping"
	pinDNS      = "dns_ping"
	pinInternet = "internet_ping"
)

// settingsForm holds the values the interactive form edits.
type settingsForm struct {
	Interval     string
	Mode         string
	UnitType     string
	FixedUnit    string
	Arrows       bool
	Unstack      bool
	Pinned       []string
	InternetHost string
}

func newSettingsForm(cfg *config.Config) settingsForm {
	f := settingsForm{
		Interval:     cfg.Interval.String(),
		Mode:         string(cfg.Display.Mode),
		UnitType:     string(cfg.Display.UnitType),
		FixedUnit:    string(cfg.Display.FixedUnit),
		Arrows:       cfg.Display.Arrows,
		Unstack:      cfg.Display.Unstack,
		InternetHost: cfg.Probe.InternetHost,
	}
	for name, on := range map[string]bool{
		pinSpeed:    cfg.Menu.Speed,
		pinRSSI:     cfg.Menu.RSSI,
		pinRouter:   cfg.Menu.RouterPing,
		pinDNS:      cfg.Menu.DNSPing,
		pinInternet: cfg.Menu.InternetPing,
	} {
		if on {
			f.Pinned = append(f.Pinned, name)
		}
	}
	slices.Sort(f.Pinned)
	return f
}

// apply writes the form values into cfg and validates the result.
func (f settingsForm) apply(cfg *config.Config) error {
	interval, err := ParseInterval(f.Interval)
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.Interval = interval
	}

	cfg.Display.Mode = config.DisplayMode(f.Mode)
	cfg.Display.UnitType = config.UnitType(f.UnitType)
	cfg.Display.FixedUnit = config.FixedUnit(f.FixedUnit)
	cfg.Display.Arrows = f.Arrows
	cfg.Display.Unstack = f.Unstack

	cfg.Menu = config.MenuConfig{
		Speed:        slices.Contains(f.Pinned, pinSpeed),
		RSSI:         slices.Contains(f.Pinned, pinRSSI),
		RouterPing:   slices.Contains(f.Pinned, pinRouter),
		DNSPing:      slices.Contains(f.Pinned, pinDNS),
		InternetPing: slices.Contains(f.Pinned, pinInternet),
	}
	cfg.Probe.InternetHost = strings.TrimSpace(f.InternetHost)

	return config.Validate(cfg)
}

func (f *settingsForm) build() *huh.Form {
	intervals := []string{"500ms", "1s", "2s", "5s", "10s"}
	if !slices.Contains(intervals, f.Interval) {
		intervals = append(intervals, f.Interval)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sampling interval").
				Options(huh.NewOptions(intervals...)...).
				Value(&f.Interval),
			huh.NewInput().
				Title("Internet probe host").
				Description("Fixed public address used for the internet ping").
				Value(&f.InternetHost).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("internet host is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Show").
				Options(
					huh.NewOption("Upload and download", string(config.DisplayBoth)),
					huh.NewOption("Download only", string(config.DisplayDownload)),
					huh.NewOption("Upload only", string(config.DisplayUpload)),
				).
				Value(&f.Mode),
			huh.NewSelect[string]().
				Title("Units").
				Options(
					huh.NewOption("Bytes (KB/s)", string(config.UnitBytes)),
					huh.NewOption("Bits (Kbps)", string(config.UnitBits)),
				).
				Value(&f.UnitType),
			huh.NewSelect[string]().
				Title("Scale").
				Options(
					huh.NewOption("Automatic", string(config.FixedAuto)),
					huh.NewOption("Always KB", string(config.FixedKB)),
					huh.NewOption("Always MB", string(config.FixedMB)),
				).
				Value(&f.FixedUnit),
			huh.NewConfirm().
				Title("Show ↑/↓ arrows?").
				Value(&f.Arrows),
			huh.NewConfirm().
				Title("Put upload and download on one line?").
				Value(&f.Unstack),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Pinned stats").
				Description("Shown in the status line, joined with |").
				Options(
					huh.NewOption("Speed", pinSpeed),
					huh.NewOption("Wi-Fi RSSI", pinRSSI),
					huh.NewOption("Router ping", pinRouter),
					huh.NewOption("DNS ping", pinDNS),
					huh.NewOption("Internet ping", pinInternet),
				).
				Value(&f.Pinned),
		),
	)
}

// configureCommand edits the config file: one --set per key, or the
// interactive form when no --set is given.
func configureCommand(w io.Writer, assignments []string) error {
	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		path = config.GlobalConfigPath()
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config location available",
			"Pass --config with a file path")
	}

	if len(assignments) > 0 {
		if err := setValues(path, assignments); err != nil {
			return err
		}
		fmt.Fprintf(w, "Updated %s\n", path)
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New(errors.ErrConfig,
			"The settings form needs a terminal",
			"Use --set key=value, e.g. netbar configure --set menu.rssi=true")
	}

	form := newSettingsForm(cfg)
	if err := form.build().Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --set")
	}
	if err := form.apply(cfg); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't save config", "Check that "+path+" is writable")
	}

	fmt.Fprintf(w, "Saved %s\n", path)
	return nil
}

// setValues applies each key=value to the file at path. When the result
// doesn't load, the previous file is restored.
func setValues(path string, assignments []string) error {
	known := config.Keys()
	for _, a := range assignments {
		key, _, err := parseAssignment(a)
		if err != nil {
			return err
		}
		if !slices.Contains(known, key) {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown setting '%s'", key),
				"Known settings: "+strings.Join(known, ", "))
		}
	}

	previous, readErr := os.ReadFile(path)
	existed := readErr == nil

	restore := func() {
		if existed {
			os.WriteFile(path, previous, 0644) //nolint:errcheck // best effort rollback
		} else {
			os.Remove(path) //nolint:errcheck // best effort rollback
		}
	}

	for _, a := range assignments {
		key, value, _ := parseAssignment(a)
		if err := config.SetValue(path, key, value); err != nil {
			restore()
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't set %s", key),
				"Check that "+path+" is valid YAML")
		}
	}

	if _, err := config.Load(path); err != nil {
		restore()
		return err
	}
	return nil
}
