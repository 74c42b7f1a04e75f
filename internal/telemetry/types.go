package telemetry

import "time"

// Target names one of the three reachability probe destinations.
type Target string

const (
	TargetInternet Target = "internet"
	TargetRouter   Target = "router"
	TargetDNS      Target = "dns"
)

// Targets lists every probe target in display order.
var Targets = []Target{TargetInternet, TargetRouter, TargetDNS}

// Reachability is the latest probe outcome for one target.
// When Loss is 100 the Ping value carries no meaning and is reported as 0.
type Reachability struct {
	Ping   float64 // ms
	Jitter float64 // ms
	Loss   float64 // percent, 0-100
}

// Lost reports whether the last probe got no reply at all.
func (r Reachability) Lost() bool {
	return r.Loss >= 100
}

// NetworkStats is the latest measured state of the network link.
type NetworkStats struct {
	SSID    string
	BSSID   string
	Band    string
	Channel int
	TxRate  float64 // Mbps
	RSSI    int     // dBm
	Noise   int     // dBm

	Internet Reachability
	Router   Reachability
	DNS      Reachability

	Gateway   string
	DNSServer string
}

// Reachability returns the slice of stats owned by target.
func (s NetworkStats) Reachability(target Target) Reachability {
	switch target {
	case TargetRouter:
		return s.Router
	case TargetDNS:
		return s.DNS
	default:
		return s.Internet
	}
}

// Throughput is an instantaneous transfer rate in bytes per second.
type Throughput struct {
	Download float64
	Upload   float64
}

// TrafficTotals are cumulative transfer counts since the last reset.
type TrafficTotals struct {
	Upload   float64   `yaml:"upload" json:"upload"`
	Download float64   `yaml:"download" json:"download"`
	Since    time.Time `yaml:"since" json:"since"`
}

// HistorySnapshot is a copy of every history buffer, oldest value first.
type HistorySnapshot struct {
	Signal       []int
	Noise        []int
	InternetPing []float64
	RouterPing   []float64
	DNSPing      []float64
	Download     []float64
	Upload       []float64
	Total        []float64
}

// Ping returns the latency history for target.
func (h HistorySnapshot) Ping(target Target) []float64 {
	switch target {
	case TargetRouter:
		return h.RouterPing
	case TargetDNS:
		return h.DNSPing
	default:
		return h.InternetPing
	}
}

// Snapshot is a read-only copy of the scheduler's state.
type Snapshot struct {
	Running   bool
	Connected bool
	Interface string
	Interval  time.Duration

	Stats  NetworkStats
	Speed  Throughput
	Totals TrafficTotals

	History HistorySnapshot
	Summary string

	UpdatedAt time.Time
}
