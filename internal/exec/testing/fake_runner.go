// Package testing provides test doubles for the exec package.
package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/netbar/internal/exec"
)

// Response is a scripted result for one command line.
type Response struct {
	Output   string
	ExitCode int
	Err      error
	Delay    time.Duration // Simulated run time, interrupted by ctx
}

// FakeRunner returns scripted responses keyed by the full command line
// ("ping -c 5 -W 1000 1.1.1.1"). Unknown command lines fail like a missing
// executable. Responses registered with Queue are consumed in order before
// falling back to the fixed response for that line.
type FakeRunner struct {
	mu      sync.Mutex
	fixed   map[string]Response
	queued  map[string][]Response
	Handler func(line string) (Response, bool)
	Calls   []string
}

// NewFakeRunner creates an empty fake runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		fixed:  make(map[string]Response),
		queued: make(map[string][]Response),
	}
}

// On registers the response for every invocation of line.
func (f *FakeRunner) On(line string, resp Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fixed[line] = resp
	return f
}

// Queue appends one-shot responses for line.
func (f *FakeRunner) Queue(line string, resps ...Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued[line] = append(f.queued[line], resps...)
	return f
}

// Run implements exec.Runner.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (exec.Result, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))

	f.mu.Lock()
	f.Calls = append(f.Calls, line)
	resp, ok := f.lookup(line)
	f.mu.Unlock()

	if !ok {
		return exec.Result{ExitCode: -1}, fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return exec.Result{ExitCode: -1}, ctx.Err()
		}
	}

	return exec.Result{Output: []byte(resp.Output), ExitCode: resp.ExitCode, Duration: resp.Delay}, resp.Err
}

// lookup must be called with f.mu held.
func (f *FakeRunner) lookup(line string) (Response, bool) {
	if q := f.queued[line]; len(q) > 0 {
		f.queued[line] = q[1:]
		return q[0], true
	}
	if resp, ok := f.fixed[line]; ok {
		return resp, true
	}
	if f.Handler != nil {
		return f.Handler(line)
	}
	return Response{}, false
}

// CallCount returns how many times line was run.
func (f *FakeRunner) CallCount(line string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == line {
			n++
		}
	}
	return n
}

// CallsWithPrefix returns the recorded command lines starting with prefix.
func (f *FakeRunner) CallsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
