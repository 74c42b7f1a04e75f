package telemetry

import (
	"context"
	"net"

	"github.com/jackpal/gateway"
	"github.com/miekg/dns"
	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/logger"
	"github.com/rileyhilliard/netbar/internal/telemetry/parsers"
	"golang.org/x/sync/errgroup"
)

// DefaultResolvConf is the resolver configuration read when the platform
// has no richer source.
const DefaultResolvConf = "/etc/resolv.conf"

// TargetFinder discovers the router and DNS resolver to probe.
type TargetFinder struct {
	runner     exec.Runner
	platform   Platform
	log        logger.Logger
	resolvConf string
	discoverGW func() (net.IP, error)
}

// TargetFinderOption configures a TargetFinder.
type TargetFinderOption func(*TargetFinder)

// WithResolvConf overrides the resolv.conf path.
func WithResolvConf(path string) TargetFinderOption {
	return func(f *TargetFinder) { f.resolvConf = path }
}

// WithGatewayDiscovery overrides the routing-table gateway lookup.
func WithGatewayDiscovery(fn func() (net.IP, error)) TargetFinderOption {
	return func(f *TargetFinder) { f.discoverGW = fn }
}

// NewTargetFinder creates a finder for platform.
func NewTargetFinder(runner exec.Runner, platform Platform, log logger.Logger, opts ...TargetFinderOption) *TargetFinder {
	if log == nil {
		log = logger.Noop()
	}
	f := &TargetFinder{
		runner:     runner,
		platform:   platform,
		log:        log,
		resolvConf: DefaultResolvConf,
		discoverGW: gateway.DiscoverGateway,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Discover returns the gateway and DNS resolver addresses, looked up
// concurrently. Either may be empty when it can't be found.
func (f *TargetFinder) Discover(ctx context.Context, route Route) (gatewayAddr, dnsServer string) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		gatewayAddr = f.Gateway(route)
		return nil
	})
	g.Go(func() error {
		dnsServer = f.DNSServer(gctx)
		return nil
	})

	_ = g.Wait()
	return gatewayAddr, dnsServer
}

// Gateway returns the route's gateway when it is an address, otherwise the
// default gateway from the routing table.
func (f *TargetFinder) Gateway(route Route) string {
	if net.ParseIP(route.Gateway) != nil {
		return route.Gateway
	}

	ip, err := f.discoverGW()
	if err != nil || ip == nil {
		f.log.Debug("gateway discovery: %v", err)
		return ""
	}
	return ip.String()
}

// DNSServer returns the first configured resolver. macOS asks scutil first;
// every platform falls back to resolv.conf.
func (f *TargetFinder) DNSServer(ctx context.Context) string {
	if f.platform == PlatformDarwin {
		c := DNSConfigCommand()
		res, err := run(ctx, f.runner, c)
		if err == nil && res.ExitCode == 0 {
			if server := parsers.ParseScutilDNS(string(res.Output)); server != "" {
				return server
			}
		} else {
			f.log.Debug("%s failed: %v", c.Name, err)
		}
	}

	cfg, err := dns.ClientConfigFromFile(f.resolvConf)
	if err != nil {
		f.log.Debug("read %s: %v", f.resolvConf, err)
		return ""
	}
	if len(cfg.Servers) == 0 {
		return ""
	}
	return cfg.Servers[0]
}
