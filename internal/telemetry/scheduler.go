package telemetry

import (
	"context"
	stderrors "errors"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/format"
	"github.com/rileyhilliard/netbar/internal/logger"
)

// TotalsStore persists traffic totals between runs.
type TotalsStore interface {
	Load() (TrafficTotals, error)
	Save(TrafficTotals) error
}

// Options wires a Scheduler to its collaborators. Zero values select the
// real implementations.
type Options struct {
	Runner   exec.Runner
	Platform Platform
	Clock    clock.Clock
	Logger   logger.Logger
	Store    TotalsStore

	// Dialer is used when the probe connect method is "dial".
	Dialer Dialer

	// DiscoverGateway replaces the routing-table gateway lookup.
	DiscoverGateway func() (net.IP, error)

	// ResolvConf replaces /etc/resolv.conf.
	ResolvConf string

	// CommandTimeout bounds each route, counter, Wi-Fi and DNS lookup.
	// Zero selects DefaultCommandTimeout. Probes keep their own deadlines.
	CommandTimeout time.Duration
}

// DefaultCommandTimeout bounds a single system utility call in a cycle.
const DefaultCommandTimeout = 3 * time.Second

// subscriberBuffer holds the latest undelivered snapshot per subscriber.
const subscriberBuffer = 1

// Scheduler owns all sampled state and drives the measurement cycle.
//
// Every mutation goes through update, which holds s.mu, recomputes the
// summary, persists totals when they changed and publishes a snapshot. Slow
// work (subprocesses, connects) never runs under the lock or on the ticker
// goroutine.
type Scheduler struct {
	clock    clock.Clock
	log      logger.Logger
	store    TotalsStore
	runner   exec.Runner
	platform Platform
	dialer   Dialer
	timeout  time.Duration

	resolver *RouteResolver
	link     *LinkReader
	wifi     *WifiReader
	targets  *TargetFinder

	// ctx is cancelled by Close, killing in-flight subprocesses.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	cfg     config.Config
	prober  *Prober
	running bool
	closed  bool
	ticker  *clock.Ticker
	done    chan struct{}

	connected bool
	iface     string
	stats     NetworkStats
	speed     Throughput
	totals    TrafficTotals
	jitter    *Jitter
	history   histories
	summary   string
	updatedAt time.Time

	subs    map[int]chan Snapshot
	nextSub int
}

// histories holds every history buffer.
type histories struct {
	signal   *History[int]
	noise    *History[int]
	ping     map[Target]*History[float64]
	download *History[float64]
	upload   *History[float64]
	total    *History[float64]
}

func newHistories(size int) histories {
	h := histories{
		signal:   NewHistory[int](size),
		noise:    NewHistory[int](size),
		ping:     make(map[Target]*History[float64], len(Targets)),
		download: NewHistory[float64](size),
		upload:   NewHistory[float64](size),
		total:    NewHistory[float64](size),
	}
	for _, t := range Targets {
		h.ping[t] = NewHistory[float64](size)
	}
	return h
}

// NewScheduler creates a stopped scheduler. Persisted totals are loaded from
// opts.Store; a load failure starts from zero.
func NewScheduler(cfg *config.Config, opts Options) *Scheduler {
	if opts.Runner == nil {
		opts.Runner = exec.NewLocal()
	}
	if opts.Platform == "" {
		opts.Platform = CurrentPlatform()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Dialer == nil {
		opts.Dialer = &net.Dialer{}
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}

	var targetOpts []TargetFinderOption
	if opts.DiscoverGateway != nil {
		targetOpts = append(targetOpts, WithGatewayDiscovery(opts.DiscoverGateway))
	}
	if opts.ResolvConf != "" {
		targetOpts = append(targetOpts, WithResolvConf(opts.ResolvConf))
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		clock:    opts.Clock,
		log:      opts.Logger,
		store:    opts.Store,
		runner:   opts.Runner,
		platform: opts.Platform,
		dialer:   opts.Dialer,
		timeout:  opts.CommandTimeout,
		resolver: NewRouteResolver(opts.Runner, opts.Platform, opts.Logger),
		link:     NewLinkReader(opts.Runner, opts.Platform, opts.Clock),
		wifi:     NewWifiReader(opts.Runner, opts.Platform, opts.Logger),
		targets:  NewTargetFinder(opts.Runner, opts.Platform, opts.Logger, targetOpts...),
		ctx:      ctx,
		cancel:   cancel,
		cfg:      *cfg,
		jitter:   NewJitter(),
		history:  newHistories(cfg.HistorySize),
		subs:     make(map[int]chan Snapshot),
	}
	s.prober = s.newProber(cfg.Probe)
	s.totals = s.loadTotals()
	s.summary = s.composeSummary()

	return s
}

func (s *Scheduler) newProber(cfg config.ProbeConfig) *Prober {
	return NewProber(s.runner, s.platform, cfg,
		WithProbeClock(s.clock),
		WithDialer(s.dialer),
		WithProbeLogger(s.log),
	)
}

func (s *Scheduler) loadTotals() TrafficTotals {
	now := s.clock.Now()
	if s.store == nil {
		return TrafficTotals{Since: now}
	}

	totals, err := s.store.Load()
	if err != nil {
		s.log.Warn("load traffic totals: %v", err)
		return TrafficTotals{Since: now}
	}
	if totals.Since.IsZero() {
		totals.Since = now
	}
	return totals
}

// Start begins sampling at the configured interval. It is a no-op when
// already running or closed.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

// Stop cancels the ticker. Cycles already in flight still apply their results.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Running reports whether the ticker is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SetInterval changes the sampling interval. A running scheduler is stopped
// and restarted, so the new interval starts counting from now.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if d < config.MinInterval {
		return errors.New(errors.ErrConfig,
			"interval "+d.String()+" is too short",
			"Use at least "+config.MinInterval.String())
	}

	s.update(func() {
		s.cfg.Interval = d
		if s.running {
			s.stopLocked()
			s.startLocked()
		}
	})
	return nil
}

// UpdateSettings replaces the configuration. Display changes take effect on
// the summary immediately; probe changes apply from the next cycle.
// History capacity is fixed at construction.
func (s *Scheduler) UpdateSettings(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}

	prober := s.newProber(cfg.Probe)

	s.update(func() {
		restart := s.running && s.cfg.Interval != cfg.Interval
		s.cfg = *cfg
		s.prober = prober
		if restart {
			s.stopLocked()
			s.startLocked()
		}
	})
	return nil
}

// Settings returns a copy of the active configuration.
func (s *Scheduler) Settings() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Close stops sampling, cancels in-flight work and closes subscriber
// channels. Results arriving afterwards are dropped.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()

	s.cancel()
}

// Sample runs one full cycle and waits for all three probes.
func (s *Scheduler) Sample(ctx context.Context) Snapshot {
	s.cycle(ctx, true)
	return s.Snapshot()
}

// Refresh starts one cycle in the background, outside the tick cadence.
func (s *Scheduler) Refresh() {
	go s.cycle(s.ctx, false)
}

// ResetTotals zeroes the traffic totals and moves Since to now.
func (s *Scheduler) ResetTotals() {
	s.update(func() {
		s.totals = TrafficTotals{Since: s.clock.Now()}
		s.history.total.Clear()
		s.persistLocked()
	})
}

// Snapshot returns a copy of the current state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every update, and a
// function to unsubscribe. Slow subscribers only ever see the latest snapshot.
func (s *Scheduler) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

// startLocked must be called with s.mu held.
func (s *Scheduler) startLocked() {
	if s.closed || s.running {
		return
	}

	s.running = true
	s.ticker = s.clock.Ticker(s.cfg.Interval)
	s.done = make(chan struct{})

	go s.loop(s.ticker, s.done)
	s.log.Debug("started, interval %s", s.cfg.Interval)
}

// stopLocked must be called with s.mu held.
func (s *Scheduler) stopLocked() {
	if !s.running {
		return
	}

	s.running = false
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	s.done = nil
	s.log.Debug("stopped")
}

// loop fires a cycle per tick. Cycles run in their own goroutines so a slow
// one never delays the next tick.
func (s *Scheduler) loop(ticker *clock.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			go s.cycle(s.ctx, false)
		}
	}
}

// cycle performs one measurement pass. Interface resolution happens before
// the throughput read, which happens before probe dispatch. Each utility
// call gets its own deadline so a hung one cannot hold back the probes.
// With wait set it returns only after every probe has reported.
func (s *Scheduler) cycle(ctx context.Context, wait bool) {
	cfg := s.Settings()
	prober := s.currentProber()

	var (
		route Route
		ok    bool
	)
	s.bounded(ctx, func(ctx context.Context) {
		route, ok = s.resolver.Resolve(ctx)
	})
	if !ok {
		s.update(func() {
			s.connected = false
			s.iface = ""
		})
		return
	}

	s.update(func() {
		s.connected = true
		s.iface = route.Interface
	})

	s.bounded(ctx, func(ctx context.Context) {
		s.readThroughput(ctx, route.Interface)
	})
	s.bounded(ctx, func(ctx context.Context) {
		s.readWifi(ctx, route.Interface)
	})

	var gateway, dnsServer string
	s.bounded(ctx, func(ctx context.Context) {
		gateway, dnsServer = s.targets.Discover(ctx, route)
	})
	s.update(func() {
		s.stats.Gateway = gateway
		s.stats.DNSServer = dnsServer
	})

	hosts := map[Target]string{
		TargetInternet: cfg.Probe.InternetHost,
		TargetRouter:   gateway,
		TargetDNS:      dnsServer,
	}

	var wg sync.WaitGroup
	for _, target := range Targets {
		host := hosts[target]
		if host == "" {
			// Probe reports total loss for an empty host.
			s.log.Debug("no %s address", target)
		}

		wg.Add(1)
		go func(target Target, host string) {
			defer wg.Done()
			result := prober.Probe(ctx, host)
			s.applyProbe(target, result)
		}(target, host)
	}

	if wait {
		wg.Wait()
	}
}

// bounded runs fn with ctx limited to the command timeout.
func (s *Scheduler) bounded(ctx context.Context, fn func(context.Context)) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	fn(ctx)
}

func (s *Scheduler) currentProber() *Prober {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prober
}

// readThroughput records the rate and adds the bytes actually moved since the
// last reading to the totals, whatever the time between cycles.
func (s *Scheduler) readThroughput(ctx context.Context, iface string) {
	tp, moved, err := s.link.ReadDelta(ctx, iface)
	if err != nil {
		s.log.Debug("throughput on %s: %v", iface, err)
	}

	s.update(func() {
		s.speed = tp
		s.totals.Download += float64(moved.Download)
		s.totals.Upload += float64(moved.Upload)
		s.history.download.Push(tp.Download)
		s.history.upload.Push(tp.Upload)
		s.history.total.Push(tp.Download + tp.Upload)
		s.persistLocked()
	})
}

func (s *Scheduler) readWifi(ctx context.Context, iface string) {
	snap, err := s.wifi.Read(ctx, iface)
	switch {
	case err == nil:
		s.update(func() {
			s.stats.SSID = snap.SSID
			s.stats.BSSID = snap.BSSID
			s.stats.Band = snap.Band
			s.stats.Channel = snap.Channel
			s.stats.TxRate = snap.TxRate
			s.stats.RSSI = snap.RSSI
			s.stats.Noise = snap.Noise
			s.history.signal.Push(snap.RSSI)
			s.history.noise.Push(snap.Noise)
		})
	case stderrors.Is(err, ErrNotAuthorized):
		// Leave whatever is there until access is granted.
	case IsSkippable(err):
		s.update(func() {
			s.stats.SSID = ""
			s.stats.BSSID = ""
			s.stats.Band = ""
			s.stats.Channel = 0
			s.stats.TxRate = 0
			s.stats.RSSI = 0
			s.stats.Noise = 0
		})
	default:
		s.log.Debug("wifi on %s: %v", iface, err)
	}
}

// applyProbe records a probe result for target. Loss of 100% reports a
// latency of 0.
func (s *Scheduler) applyProbe(target Target, r ProbeResult) {
	latency := r.LatencyMs
	if r.LossPercent >= 100 {
		latency = 0
	}

	s.update(func() {
		reach := Reachability{
			Ping:   latency,
			Jitter: s.jitter.Observe(target, latency),
			Loss:   r.LossPercent,
		}

		switch target {
		case TargetRouter:
			s.stats.Router = reach
		case TargetDNS:
			s.stats.DNS = reach
		default:
			s.stats.Internet = reach
		}
		s.history.ping[target].Push(latency)
	})
}

// update is the single mutation path. fn runs under s.mu; afterwards the
// summary is recomputed and a snapshot is published. Updates after Close
// are dropped.
func (s *Scheduler) update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	fn()
	s.updatedAt = s.clock.Now()
	s.summary = s.composeSummary()

	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		publish(ch, snap)
	}
}

// publish delivers snap, replacing an undelivered older snapshot.
func publish(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// persistLocked writes totals through the store. Must be called with s.mu held.
func (s *Scheduler) persistLocked() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.totals); err != nil {
		s.log.Warn("save traffic totals: %v", err)
	}
}

// composeSummary must be called with s.mu held.
func (s *Scheduler) composeSummary() string {
	return format.Summary(s.cfg.Display, s.cfg.Menu, format.View{
		Download: s.speed.Download,
		Upload:   s.speed.Upload,
		RSSI:     s.stats.RSSI,
		Router:   format.Reading{Ping: s.stats.Router.Ping, Loss: s.stats.Router.Loss},
		DNS:      format.Reading{Ping: s.stats.DNS.Ping, Loss: s.stats.DNS.Loss},
		Internet: format.Reading{Ping: s.stats.Internet.Ping, Loss: s.stats.Internet.Loss},
	})
}

// snapshotLocked must be called with s.mu held.
func (s *Scheduler) snapshotLocked() Snapshot {
	return Snapshot{
		Running:   s.running,
		Connected: s.connected,
		Interface: s.iface,
		Interval:  s.cfg.Interval,
		Stats:     s.stats,
		Speed:     s.speed,
		Totals:    s.totals,
		History: HistorySnapshot{
			Signal:       s.history.signal.Values(),
			Noise:        s.history.noise.Values(),
			InternetPing: s.history.ping[TargetInternet].Values(),
			RouterPing:   s.history.ping[TargetRouter].Values(),
			DNSPing:      s.history.ping[TargetDNS].Values(),
			Download:     s.history.download.Values(),
			Upload:       s.history.upload.Values(),
			Total:        s.history.total.Values(),
		},
		Summary:   s.summary,
		UpdatedAt: s.updatedAt,
	}
}
