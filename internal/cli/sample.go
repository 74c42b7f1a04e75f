package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/format"
	"github.com/rileyhilliard/netbar/internal/logger"
	"github.com/rileyhilliard/netbar/internal/monitor"
	"github.com/rileyhilliard/netbar/internal/state"
	"github.com/rileyhilliard/netbar/internal/telemetry"
	"golang.org/x/term"
)

// sampleReport is the --json shape of one sample.
type sampleReport struct {
	Interface    string                      `json:"interface"`
	Connected    bool                        `json:"connected"`
	SampledAt    time.Time                   `json:"sampled_at"`
	Wifi         *wifiReport                 `json:"wifi,omitempty"`
	Gateway      string                      `json:"gateway,omitempty"`
	DNSServer    string                      `json:"dns_server,omitempty"`
	Download     float64                     `json:"download_bytes_per_sec"`
	Upload       float64                     `json:"upload_bytes_per_sec"`
	Totals       telemetry.TrafficTotals     `json:"totals"`
	Reachability map[string]reachabilityJSON `json:"reachability"`
	Summary      string                      `json:"summary"`
}

type wifiReport struct {
	SSID    string  `json:"ssid"`
	BSSID   string  `json:"bssid,omitempty"`
	Band    string  `json:"band,omitempty"`
	Channel int     `json:"channel,omitempty"`
	TxRate  float64 `json:"tx_rate_mbps"`
	RSSI    int     `json:"rssi_dbm"`
	Noise   int     `json:"noise_dbm"`
}

type reachabilityJSON struct {
	Host   string   `json:"host,omitempty"`
	Ping   *float64 `json:"ping_ms"`
	Jitter float64  `json:"jitter_ms"`
	Loss   float64  `json:"loss_percent"`
}

var targetNames = map[telemetry.Target]string{
	telemetry.TargetInternet: "Internet",
	telemetry.TargetRouter:   "Router",
	telemetry.TargetDNS:      "DNS",
}

// newSampleReport flattens a snapshot. A fully lost probe has a null ping.
func newSampleReport(snap telemetry.Snapshot, internetHost string) sampleReport {
	stats := snap.Stats
	r := sampleReport{
		Interface:    snap.Interface,
		Connected:    snap.Connected,
		SampledAt:    snap.UpdatedAt,
		Gateway:      stats.Gateway,
		DNSServer:    stats.DNSServer,
		Download:     snap.Speed.Download,
		Upload:       snap.Speed.Upload,
		Totals:       snap.Totals,
		Reachability: make(map[string]reachabilityJSON, len(telemetry.Targets)),
		Summary:      snap.Summary,
	}

	if stats.SSID != "" {
		r.Wifi = &wifiReport{
			SSID:    stats.SSID,
			BSSID:   stats.BSSID,
			Band:    stats.Band,
			Channel: stats.Channel,
			TxRate:  stats.TxRate,
			RSSI:    stats.RSSI,
			Noise:   stats.Noise,
		}
	}

	for _, target := range telemetry.Targets {
		reach := stats.Reachability(target)
		entry := reachabilityJSON{
			Host:   probeHost(stats, target, internetHost),
			Jitter: reach.Jitter,
			Loss:   reach.Loss,
		}
		if !reach.Lost() {
			ping := reach.Ping
			entry.Ping = &ping
		}
		r.Reachability[string(target)] = entry
	}
	return r
}

func probeHost(stats telemetry.NetworkStats, target telemetry.Target, internetHost string) string {
	switch target {
	case telemetry.TargetRouter:
		return stats.Gateway
	case telemetry.TargetDNS:
		return stats.DNSServer
	default:
		return internetHost
	}
}

// sampleCommand runs two cycles one interval apart, so throughput has a
// baseline, and prints the second. Persisted totals are read, never written.
func sampleCommand(w io.Writer, asJSON bool) error {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}

	sched := telemetry.NewScheduler(cfg, telemetry.Options{
		Logger: logger.NewEnvLogger("[sched]"),
		Store:  state.ReadOnly(state.NewFileStore(cfg.StateFile)),
	})
	defer sched.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sched.Sample(ctx)
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(cfg.Interval):
	}
	snap := sched.Sample(ctx)

	if asJSON {
		return WriteJSONSuccess(w, newSampleReport(snap, cfg.Probe.InternetHost))
	}

	out := termenv.NewOutput(w, termenv.WithProfile(colorProfile(w)))
	renderSample(out, snap, cfg)
	return nil
}

// colorProfile disables color for pipes, files and --no-color.
func colorProfile(w io.Writer) termenv.Profile {
	if noColorFlag {
		return termenv.Ascii
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// renderSample prints the summary line followed by one field per line.
func renderSample(out *termenv.Output, snap telemetry.Snapshot, cfg *config.Config) {
	label := func(s string) string {
		return out.String(fmt.Sprintf("%-12s", s)).Faint().String()
	}
	colored := func(s, hex string) string {
		return out.String(s).Foreground(out.Color(hex)).String()
	}
	line := func(name, value string) {
		fmt.Fprintf(out, "%s%s\n", label(name), value)
	}

	for _, l := range strings.Split(snap.Summary, "\n") {
		fmt.Fprintln(out, out.String(l).Bold())
	}
	fmt.Fprintln(out)

	if !snap.Connected {
		line("Interface", colored("no default route", string(monitor.ColorCritical)))
	} else {
		line("Interface", snap.Interface)
	}

	display := cfg.Display
	line("Download", format.SpeedString(snap.Speed.Download, display.UnitType, display.FixedUnit))
	line("Upload", format.SpeedString(snap.Speed.Upload, display.UnitType, display.FixedUnit))
	line("Totals", fmt.Sprintf("↓ %s  ↑ %s", format.BytesString(snap.Totals.Download), format.BytesString(snap.Totals.Upload)))

	stats := snap.Stats
	if stats.SSID != "" {
		line("SSID", stats.SSID)
		line("BSSID", stats.BSSID)
		line("Channel", fmt.Sprintf("%d (%s)", stats.Channel, stats.Band))
		line("Tx rate", fmt.Sprintf("%.0f Mbps", stats.TxRate))
		line("RSSI", colored(fmt.Sprintf("%d dBm", stats.RSSI), string(monitor.SignalColor(stats.RSSI))))
		line("Noise", fmt.Sprintf("%d dBm", stats.Noise))
	}

	for _, target := range telemetry.Targets {
		host := probeHost(stats, target, cfg.Probe.InternetHost)
		name := targetNames[target]
		if host == "" {
			line(name, out.String("not found").Faint().String())
			continue
		}
		r := stats.Reachability(target)
		ping := format.Ping(format.Reading{Ping: r.Ping, Loss: r.Loss})
		line(name, fmt.Sprintf("%-16s %s  jitter %.1fms  loss %s",
			host,
			colored(fmt.Sprintf("%-6s", ping), string(monitor.LatencyColor(r.Ping, r.Loss))),
			r.Jitter,
			colored(fmt.Sprintf("%.0f%%", r.Loss), string(monitor.LossColor(r.Loss)))))
	}
}
