package telemetry

import (
	"context"

	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/logger"
	"github.com/rileyhilliard/netbar/internal/telemetry/parsers"
)

// Route is the host's current default route.
type Route struct {
	Interface string
	Gateway   string // may be empty or a non-address such as "link#14"
}

// RouteResolver finds the primary interface from the default route.
// It keeps no state; the active interface can change between any two calls.
type RouteResolver struct {
	runner   exec.Runner
	platform Platform
	log      logger.Logger
}

// NewRouteResolver creates a resolver for platform.
func NewRouteResolver(runner exec.Runner, platform Platform, log logger.Logger) *RouteResolver {
	if log == nil {
		log = logger.Noop()
	}
	return &RouteResolver{runner: runner, platform: platform, log: log}
}

// Resolve returns the default route, or false when there is none
// (offline, or the route utility failed).
func (r *RouteResolver) Resolve(ctx context.Context) (Route, bool) {
	c := DefaultRouteCommand(r.platform)

	res, err := run(ctx, r.runner, c)
	if err != nil {
		r.log.Warn("%s failed: %v", c.Name, err)
		return Route{}, false
	}
	if res.ExitCode != 0 {
		r.log.Debug("%s exited %d: no default route", c.Name, res.ExitCode)
		return Route{}, false
	}

	var info parsers.RouteInfo
	if r.platform == PlatformDarwin {
		info, err = parsers.ParseDarwinRoute(string(res.Output))
	} else {
		info, err = parsers.ParseLinuxRoute(string(res.Output))
	}
	if err != nil {
		r.log.Warn("parse %s output: %v", c.Name, err)
		return Route{}, false
	}

	if info.Interface == "" {
		return Route{}, false
	}

	return Route{Interface: info.Interface, Gateway: info.Gateway}, true
}

// run invokes c through runner.
func run(ctx context.Context, runner exec.Runner, c Command) (exec.Result, error) {
	return runner.Run(ctx, c.Name, c.Args...)
}
