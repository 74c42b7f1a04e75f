// Package metrics exports engine snapshots in the Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rileyhilliard/netbar/internal/speedtest"
	"github.com/rileyhilliard/netbar/internal/telemetry"
)

const (
	namespace = "netbar"
	mbit      = 1e6
)

// SnapshotSource supplies the engine state to export.
type SnapshotSource interface {
	Snapshot() telemetry.Snapshot
}

// ResultSource supplies the latest speed test result.
type ResultSource interface {
	Result() speedtest.Result
}

// Collector reads a fresh snapshot on every scrape. It keeps no state of
// its own, so a scrape never sees values older than the engine's.
type Collector struct {
	snapshots SnapshotSource
	results   ResultSource

	up          *prometheus.Desc
	interval    *prometheus.Desc
	throughput  *prometheus.Desc
	traffic     *prometheus.Desc
	trafficFrom *prometheus.Desc
	ping        *prometheus.Desc
	jitter      *prometheus.Desc
	loss        *prometheus.Desc
	rssi        *prometheus.Desc
	noise       *prometheus.Desc
	txRate      *prometheus.Desc
	channel     *prometheus.Desc
	speedTest   *prometheus.Desc
	testing     *prometheus.Desc
}

// NewCollector builds a collector over snapshots. results may be nil.
func NewCollector(snapshots SnapshotSource, results ResultSource) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}

	return &Collector{
		snapshots: snapshots,
		results:   results,

		up:          desc("connected", "1 when a default route exists.", "interface"),
		interval:    desc("sample_interval_seconds", "Sampling interval."),
		throughput:  desc("throughput_bytes_per_second", "Rate measured over the last interval.", "direction"),
		traffic:     desc("traffic_bytes", "Bytes transferred since the last totals reset.", "direction"),
		trafficFrom: desc("traffic_since_timestamp_seconds", "Unix time of the last totals reset."),
		ping:        desc("ping_seconds", "Mean round-trip time of the last probe.", "target", "host"),
		jitter:      desc("jitter_seconds", "Mean absolute change between consecutive probes.", "target", "host"),
		loss:        desc("packet_loss_ratio", "Fraction of the last probe's packets lost.", "target", "host"),
		rssi:        desc("wifi_rssi_dbm", "Received signal strength.", "ssid"),
		noise:       desc("wifi_noise_dbm", "Noise floor.", "ssid"),
		txRate:      desc("wifi_tx_rate_bits_per_second", "Last transmit rate.", "ssid"),
		channel:     desc("wifi_channel", "Wireless channel number.", "ssid", "band"),
		speedTest:   desc("speedtest_bits_per_second", "Latest speed test result.", "direction"),
		testing:     desc("speedtest_running", "1 while a speed test runs."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.up, c.interval, c.throughput, c.traffic, c.trafficFrom,
		c.ping, c.jitter, c.loss,
		c.rssi, c.noise, c.txRate, c.channel,
		c.speedTest, c.testing,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.snapshots.Snapshot()
	stats := snap.Stats

	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, boolValue(snap.Connected), snap.Interface)
	ch <- prometheus.MustNewConstMetric(c.interval, prometheus.GaugeValue, snap.Interval.Seconds())

	ch <- prometheus.MustNewConstMetric(c.throughput, prometheus.GaugeValue, snap.Speed.Download, "download")
	ch <- prometheus.MustNewConstMetric(c.throughput, prometheus.GaugeValue, snap.Speed.Upload, "upload")

	// Totals reset on demand, so they are gauges rather than counters.
	ch <- prometheus.MustNewConstMetric(c.traffic, prometheus.GaugeValue, snap.Totals.Download, "download")
	ch <- prometheus.MustNewConstMetric(c.traffic, prometheus.GaugeValue, snap.Totals.Upload, "upload")
	if !snap.Totals.Since.IsZero() {
		ch <- prometheus.MustNewConstMetric(c.trafficFrom, prometheus.GaugeValue, float64(snap.Totals.Since.Unix()))
	}

	for _, target := range telemetry.Targets {
		host := targetHost(stats, target)
		if host == "" && target != telemetry.TargetInternet {
			continue
		}
		r := stats.Reachability(target)
		ch <- prometheus.MustNewConstMetric(c.loss, prometheus.GaugeValue, r.Loss/100, string(target), host)
		ch <- prometheus.MustNewConstMetric(c.jitter, prometheus.GaugeValue, r.Jitter/1000, string(target), host)
		if !r.Lost() {
			ch <- prometheus.MustNewConstMetric(c.ping, prometheus.GaugeValue, r.Ping/1000, string(target), host)
		}
	}

	if stats.SSID != "" {
		ch <- prometheus.MustNewConstMetric(c.rssi, prometheus.GaugeValue, float64(stats.RSSI), stats.SSID)
		ch <- prometheus.MustNewConstMetric(c.noise, prometheus.GaugeValue, float64(stats.Noise), stats.SSID)
		ch <- prometheus.MustNewConstMetric(c.txRate, prometheus.GaugeValue, stats.TxRate*mbit, stats.SSID)
		ch <- prometheus.MustNewConstMetric(c.channel, prometheus.GaugeValue, float64(stats.Channel), stats.SSID, stats.Band)
	}

	if c.results == nil {
		return
	}
	res := c.results.Result()
	ch <- prometheus.MustNewConstMetric(c.testing, prometheus.GaugeValue, boolValue(res.Testing))
	if res.HasDownload {
		ch <- prometheus.MustNewConstMetric(c.speedTest, prometheus.GaugeValue, res.Download*mbit, "download")
	}
	if res.HasUpload {
		ch <- prometheus.MustNewConstMetric(c.speedTest, prometheus.GaugeValue, res.Upload*mbit, "upload")
	}
}

// targetHost names the probed address. The internet host is not part of
// the stats, so it is labelled by target alone.
func targetHost(stats telemetry.NetworkStats, target telemetry.Target) string {
	switch target {
	case telemetry.TargetRouter:
		return stats.Gateway
	case telemetry.TargetDNS:
		return stats.DNSServer
	default:
		return ""
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
