package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/telemetry/parsers"
)

// LinkReader derives throughput from cumulative interface byte counters.
//
// Each Read compares against the previous reading. The first reading for an
// interface, and any reading where a counter went backwards (the interface
// was reset), becomes a fresh baseline and reports zero.
type LinkReader struct {
	runner   exec.Runner
	platform Platform
	clock    clock.Clock

	mu     sync.Mutex
	iface  string
	prev   parsers.Counters
	prevAt time.Time
	primed bool
}

// NewLinkReader creates a reader with no baseline.
func NewLinkReader(runner exec.Runner, platform Platform, clk clock.Clock) *LinkReader {
	if clk == nil {
		clk = clock.New()
	}
	return &LinkReader{runner: runner, platform: platform, clock: clk}
}

// Transfer is the byte count moved between two counter readings.
type Transfer struct {
	Download uint64
	Upload   uint64
}

// Read returns the rate on iface since the previous Read.
func (l *LinkReader) Read(ctx context.Context, iface string) (Throughput, error) {
	rate, _, err := l.ReadDelta(ctx, iface)
	return rate, err
}

// ReadDelta is Read that also returns the bytes moved since the previous
// reading. A baseline reading moves nothing.
func (l *LinkReader) ReadDelta(ctx context.Context, iface string) (Throughput, Transfer, error) {
	counters, err := l.counters(ctx, iface)
	if err != nil {
		return Throughput{}, Transfer{}, err
	}

	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rate, moved := l.observe(iface, counters, now)
	return rate, moved, nil
}

// Reset forgets the baseline so the next Read starts fresh.
func (l *LinkReader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.primed = false
	l.iface = ""
}

// observe folds a reading into the baseline and returns the rate and the
// bytes moved. Must be called with l.mu held.
func (l *LinkReader) observe(iface string, now parsers.Counters, at time.Time) (Throughput, Transfer) {
	prev, prevAt := l.prev, l.prevAt
	fresh := !l.primed || l.iface != iface

	l.iface = iface
	l.prev = now
	l.prevAt = at
	l.primed = true

	if fresh {
		return Throughput{}, Transfer{}
	}

	if now.BytesIn < prev.BytesIn || now.BytesOut < prev.BytesOut {
		return Throughput{}, Transfer{}
	}

	moved := Transfer{
		Download: now.BytesIn - prev.BytesIn,
		Upload:   now.BytesOut - prev.BytesOut,
	}

	elapsed := at.Sub(prevAt).Seconds()
	if elapsed <= 0 {
		return Throughput{}, moved
	}

	return Throughput{
		Download: float64(moved.Download) / elapsed,
		Upload:   float64(moved.Upload) / elapsed,
	}, moved
}

// counters reads the cumulative counters for iface.
func (l *LinkReader) counters(ctx context.Context, iface string) (parsers.Counters, error) {
	c := CountersCommand(l.platform, iface)

	res, err := run(ctx, l.runner, c)
	if err != nil {
		return parsers.Counters{}, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't read counters for %s", iface),
			"Check that "+c.Name+" is installed")
	}
	if res.ExitCode != 0 {
		return parsers.Counters{}, errors.New(errors.ErrExec,
			fmt.Sprintf("%s exited %d reading counters for %s", c.Name, res.ExitCode, iface), "")
	}

	var all []parsers.Counters
	if l.platform == PlatformDarwin {
		all, err = parsers.ParseNetstat(string(res.Output))
	} else {
		all, err = parsers.ParseProcNetDev(string(res.Output))
	}
	if err != nil {
		return parsers.Counters{}, errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't parse interface counters", "")
	}

	counters, ok := parsers.FindCounters(all, iface)
	if !ok {
		return parsers.Counters{}, errors.New(errors.ErrExec,
			fmt.Sprintf("No counters for interface %s", iface), "")
	}
	return counters, nil
}
