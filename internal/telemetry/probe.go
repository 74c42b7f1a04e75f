package telemetry

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/logger"
	"github.com/rileyhilliard/netbar/internal/telemetry/parsers"
)

// ProbeMethod records which mechanism produced a probe result.
type ProbeMethod string

const (
	ProbeICMP ProbeMethod = "icmp"
	ProbeTCP  ProbeMethod = "tcp"
	ProbeNone ProbeMethod = "none"
)

const (
	dnsPort = "53"
	webPort = "80"
)

// ProbeResult is the latency and loss measured against one host.
// LatencyMs is 0 whenever nothing answered.
type ProbeResult struct {
	LatencyMs   float64
	LossPercent float64
	Method      ProbeMethod
}

// Dialer opens TCP connections for the in-process connect fallback.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Prober measures reachability of a host.
//
// It runs the system ping first. When every echo request goes unanswered,
// which is common where ICMP is filtered, it makes one pass of TCP connect
// attempts and derives loss from the failures instead.
type Prober struct {
	runner    exec.Runner
	platform  Platform
	cfg       config.ProbeConfig
	clock     clock.Clock
	dialer    Dialer
	log       logger.Logger
	resolvers map[string]bool
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeClock sets the clock used for connect timing and attempt spacing.
func WithProbeClock(c clock.Clock) ProberOption {
	return func(p *Prober) { p.clock = c }
}

// WithDialer sets the dialer used by the "dial" connect method.
func WithDialer(d Dialer) ProberOption {
	return func(p *Prober) { p.dialer = d }
}

// WithProbeLogger sets the logger.
func WithProbeLogger(l logger.Logger) ProberOption {
	return func(p *Prober) { p.log = l }
}

// NewProber creates a prober using cfg's counts, timeouts and connect method.
func NewProber(runner exec.Runner, platform Platform, cfg config.ProbeConfig, opts ...ProberOption) *Prober {
	p := &Prober{
		runner:    runner,
		platform:  platform,
		cfg:       cfg,
		clock:     clock.New(),
		dialer:    &net.Dialer{},
		log:       logger.Noop(),
		resolvers: make(map[string]bool, len(cfg.PublicResolvers)),
	}
	for _, r := range cfg.PublicResolvers {
		p.resolvers[r] = true
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe measures latency and loss to host. It never fails: every error
// degrades to 100% loss.
func (p *Prober) Probe(ctx context.Context, host string) ProbeResult {
	host = strings.TrimSpace(host)
	if host == "" {
		return ProbeResult{LossPercent: 100, Method: ProbeNone}
	}

	if result, ok := p.icmp(ctx, host); ok {
		return result
	}

	return p.tcp(ctx, host)
}

// icmp runs ping against host. It returns false when the TCP fallback
// should run instead: ping couldn't be launched or nothing replied.
func (p *Prober) icmp(ctx context.Context, host string) (ProbeResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.pingDeadline())
	defer cancel()

	c := PingCommand(p.platform, host, p.cfg.Count, p.cfg.Timeout)
	res, err := run(ctx, p.runner, c)
	if err != nil {
		p.log.Debug("%s %s: %v", c.Name, host, err)
		return ProbeResult{}, false
	}

	report := parsers.ParsePing(string(res.Output))

	switch {
	case report.HasAvg:
		return ProbeResult{LatencyMs: report.AvgMs, LossPercent: report.LossPercent, Method: ProbeICMP}, true
	case report.LossPercent < 100 && report.HasRTT:
		return ProbeResult{LatencyMs: report.RTTMs, LossPercent: report.LossPercent, Method: ProbeICMP}, true
	case report.LossPercent < 100:
		return ProbeResult{LossPercent: report.LossPercent, Method: ProbeICMP}, true
	default:
		return ProbeResult{}, false
	}
}

// pingDeadline bounds a whole ping run: one request per second, each waiting
// up to the configured timeout, plus a second of slack.
func (p *Prober) pingDeadline() time.Duration {
	return time.Duration(p.cfg.Count)*(time.Second+p.cfg.Timeout) + time.Second
}

// tcp makes exactly one pass of connect attempts to host.
func (p *Prober) tcp(ctx context.Context, host string) ProbeResult {
	attempts := p.cfg.TCPAttempts
	port := p.port(host)

	var (
		successes int
		total     time.Duration
	)
	for i := 0; i < attempts; i++ {
		if i > 0 && !p.pause(ctx) {
			break
		}

		start := p.clock.Now()
		if p.connect(ctx, host, port) {
			total += p.clock.Since(start)
			successes++
		}
	}

	result := ProbeResult{
		LossPercent: float64(attempts-successes) / float64(attempts) * 100,
		Method:      ProbeTCP,
	}
	if successes > 0 {
		result.LatencyMs = float64(total) / float64(successes) / float64(time.Millisecond)
	}

	p.log.Debug("tcp fallback %s:%s: %d/%d connected", host, port, successes, attempts)
	return result
}

// port picks the DNS port for known public resolvers and the web port otherwise.
func (p *Prober) port(host string) string {
	if p.resolvers[host] {
		return dnsPort
	}
	return webPort
}

// connect makes one bounded connection attempt.
func (p *Prober) connect(ctx context.Context, host, port string) bool {
	if p.cfg.TCPMethod == config.TCPMethodDial {
		ctx, cancel := context.WithTimeout(ctx, p.cfg.TCPTimeout)
		defer cancel()

		conn, err := p.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}

	// nc enforces its own connect timeout; the context is a backstop.
	ctx, cancel := context.WithTimeout(ctx, p.cfg.TCPTimeout+time.Second)
	defer cancel()

	res, err := run(ctx, p.runner, NetcatCommand(p.platform, host, port, p.cfg.TCPTimeout))
	return err == nil && res.ExitCode == 0
}

// pause waits out the inter-attempt delay. Returns false if ctx ended first.
func (p *Prober) pause(ctx context.Context) bool {
	if p.cfg.TCPDelay <= 0 {
		return ctx.Err() == nil
	}

	t := p.clock.Timer(p.cfg.TCPDelay)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
