package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rileyhilliard/netbar/internal/config"
	exectest "github.com/rileyhilliard/netbar/internal/exec/testing"
)

const (
	darwinRouteEn0 = `   route to: default
destination: default
       mask: default
    gateway: 192.168.1.1
  interface: en0
      flags: <UP,GATEWAY,DONE,STATIC,PRCLONING,GLOBAL>`

	darwinRouteNoGateway = `   route to: default
destination: default
  interface: en0
      flags: <UP,DONE,STATIC,PRCLONING,GLOBAL>`

	linuxRouteWlan0 = "default via 10.0.0.1 dev wlan0 proto dhcp metric 600\n"

	hardwarePortsEn0 = `Hardware Port: Wi-Fi
Device: en0
Ethernet Address: a4:83:e7:00:00:01

Hardware Port: Thunderbolt Bridge
Device: bridge0
Ethernet Address: N/A`

	airportAssociated = `     agrCtlRSSI: -58
    agrCtlNoise: -92
          state: running
     lastTxRate: 573
          BSSID: a4:2b:b0:c1:d2:e3
           SSID: HomeNet
        channel: 44,80`

	airportRedacted = `     agrCtlRSSI: -61
    agrCtlNoise: -90
          state: running
     lastTxRate: 286
          BSSID: <redacted>
           SSID: <redacted>
        channel: 11`

	airportIdle = `     agrCtlRSSI: 0
    agrCtlNoise: 0
          state: init
        channel: 1`

	airportWithheld = "WARNING: The airport command line tool is deprecated and will be removed in a future release.\n"

	scutilDNS = `DNS configuration

resolver #1
  nameserver[0] : 9.9.9.9
  nameserver[1] : 149.112.112.112
  if_index : 14 (en0)`

	pingLost = `--- 203.0.113.9 ping statistics ---
5 packets transmitted, 0 packets received, 100.0% packet loss`
)

var (
	routeLine   = "route -n get default"
	portsLine   = "networksetup -listallhardwareports"
	airportLine = AirportPath + " -I"
	scutilLine  = "scutil --dns"
)

func netstatLine(iface string) string {
	return "netstat -ib -I " + iface
}

func pingLine(host string) string {
	return "ping -c 5 -W 1000 " + host
}

func ncLine(host, port string) string {
	return "nc -z -G 1 " + host + " " + port
}

// netstatOutput renders netstat -ib for one interface with the given byte counters.
func netstatOutput(iface string, in, out uint64) string {
	return fmt.Sprintf(`Name       Mtu   Network       Address            Ipkts Ierrs     Ibytes    Opkts Oerrs     Obytes  Coll
%s        1500  <Link#6>    a4:83:e7:12:34:56     1000     0 %10d      800     0 %10d     0
`, iface, in, out)
}

// pingOutput renders a darwin ping summary with no loss and the given average.
func pingOutput(host string, avg float64) string {
	return fmt.Sprintf(`PING %s (%s): 56 data bytes
64 bytes from %s: icmp_seq=0 ttl=57 time=%.3f ms

--- %s ping statistics ---
5 packets transmitted, 5 packets received, 0.0%% packet loss
round-trip min/avg/max/stddev = %.3f/%.3f/%.3f/0.000 ms
`, host, host, host, avg, host, avg, avg, avg)
}

// testProbeConfig is the default probe config without the inter-attempt
// delay, so mock clocks never block a fallback pass.
func testProbeConfig() config.ProbeConfig {
	cfg := config.DefaultConfig().Probe
	cfg.TCPDelay = 0
	return cfg
}

// healthyRunner scripts a darwin host on Wi-Fi with every target answering.
func healthyRunner() *exectest.FakeRunner {
	return exectest.NewFakeRunner().
		On(routeLine, exectest.Response{Output: darwinRouteEn0}).
		On(netstatLine("en0"), exectest.Response{Output: netstatOutput("en0", 1000, 2000)}).
		On(portsLine, exectest.Response{Output: hardwarePortsEn0}).
		On(airportLine, exectest.Response{Output: airportAssociated}).
		On(scutilLine, exectest.Response{Output: scutilDNS}).
		On(pingLine("1.1.1.1"), exectest.Response{Output: pingOutput("1.1.1.1", 12.5)}).
		On(pingLine("192.168.1.1"), exectest.Response{Output: pingOutput("192.168.1.1", 2.25)}).
		On(pingLine("9.9.9.9"), exectest.Response{Output: pingOutput("9.9.9.9", 18)})
}

func noGateway() (net.IP, error) {
	return nil, errors.New("no gateway found")
}

// memStore is an in-memory TotalsStore.
type memStore struct {
	mu      sync.Mutex
	totals  TrafficTotals
	loadErr error
	saves   int
}

func (m *memStore) Load() (TrafficTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals, m.loadErr
}

func (m *memStore) Save(t TrafficTotals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals = t
	m.saves++
	return nil
}

func (m *memStore) saved() (TrafficTotals, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals, m.saves
}

// scriptedDialer answers connect attempts in order; true connects.
type scriptedDialer struct {
	mu      sync.Mutex
	results []bool
	addrs   []string
	onDial  func()
}

func (d *scriptedDialer) DialContext(_ context.Context, _, address string) (net.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.addrs = append(d.addrs, address)
	if d.onDial != nil {
		d.onDial()
	}

	ok := false
	if len(d.results) > 0 {
		ok = d.results[0]
		d.results = d.results[1:]
	}
	if !ok {
		return nil, errors.New("connection refused")
	}

	client, server := net.Pipe()
	_ = server.Close()
	return client, nil
}
