package speedtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/logger"
)

// User-visible failure messages.
const (
	MsgNoOutput     = "No output from system utility."
	MsgNoSpeeds     = "Could not find speed values in output."
	MsgLaunchFailed = "Failed to run speed test utility."
)

// Result is the observable state of the bandwidth test.
type Result struct {
	Testing bool

	// Report holds whatever has been recognized so far.
	Report

	// Remaining is the cosmetic countdown, floored at 0.
	Remaining time.Duration

	// Err is set when a finished run produced no speeds.
	Err string
}

// Runner runs one bandwidth test at a time.
//
// Every run gets a generation number. Cancel and Start bump it, so output
// and countdown ticks from an abandoned run are discarded. A run launches the
// utility only after the previous run's process has exited, so two never
// overlap even when Start follows Cancel immediately.
type Runner struct {
	streamer  exec.Streamer
	clock     clock.Clock
	log       logger.Logger
	name      string
	args      []string
	countdown time.Duration

	mu      sync.Mutex
	gen     uint64
	result  Result
	stop    context.CancelFunc
	exited  chan struct{} // closed when the latest run returns
	subs    map[int]chan Result
	nextSub int
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the countdown clock.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// New creates an idle runner for cfg's command and countdown.
func New(streamer exec.Streamer, cfg config.SpeedTestConfig, opts ...Option) *Runner {
	fields := strings.Fields(cfg.Command)
	if len(fields) == 0 {
		fields = []string{"networkQuality"}
	}

	r := &Runner{
		streamer:  streamer,
		clock:     clock.New(),
		log:       logger.Noop(),
		name:      fields[0],
		args:      fields[1:],
		countdown: cfg.Countdown,
		subs:      make(map[int]chan Result),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.result.Remaining = r.countdown
	return r
}

// Start launches a test. It returns false, doing nothing, when one is
// already running. Cancelling ctx cancels the test.
func (r *Runner) Start(ctx context.Context) bool {
	r.mu.Lock()
	if r.result.Testing {
		r.mu.Unlock()
		return false
	}

	r.gen++
	gen := r.gen
	runCtx, stop := context.WithCancel(ctx)
	r.stop = stop
	prev, exited := r.exited, make(chan struct{})
	r.exited = exited
	r.result = Result{Testing: true, Remaining: r.countdown}
	r.publishLocked()

	// The ticker must exist before Start returns.
	ticker := r.clock.Ticker(time.Second)
	r.mu.Unlock()

	go r.tick(runCtx, gen, ticker)
	go r.run(runCtx, stop, gen, prev, exited)

	r.log.Debug("started %s", r.name)
	return true
}

// Cancel kills a running test and stops the countdown. Partial results stay
// visible; anything the abandoned run produces afterwards is dropped.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.result.Testing {
		return
	}

	r.gen++
	r.stop()
	r.result.Testing = false
	r.publishLocked()
	r.log.Debug("cancelled")
}

// Result returns the current state.
func (r *Runner) Result() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Subscribe returns a channel receiving the state after every change, and a
// function to unsubscribe. Only the latest undelivered state is kept.
func (r *Runner) Subscribe() (<-chan Result, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSub
	r.nextSub++
	ch := make(chan Result, 1)
	r.subs[id] = ch

	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			close(c)
			delete(r.subs, id)
		}
	}
}

// run waits for prev, the previous run, to finish before streaming, and
// closes exited on return.
func (r *Runner) run(ctx context.Context, stop context.CancelFunc, gen uint64, prev, exited chan struct{}) {
	defer close(exited)
	defer stop()

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			r.update(gen, func(res *Result) { res.Testing = false })
			return
		}
	}

	var output strings.Builder
	code, err := r.streamer.Stream(ctx, func(chunk []byte) {
		output.Write(chunk)
		report := Parse(output.String())
		r.update(gen, func(res *Result) { merge(&res.Report, report) })
	}, r.name, r.args...)

	if ctx.Err() != nil {
		// Cancel already settled its own run; this covers the parent
		// context ending.
		r.update(gen, func(res *Result) { res.Testing = false })
		return
	}

	text := output.String()
	report := Parse(text)

	r.update(gen, func(res *Result) {
		merge(&res.Report, report)
		res.Testing = false

		switch {
		case err != nil && text == "":
			r.log.Warn("%s: %v", r.name, err)
			res.Err = MsgLaunchFailed
		case res.HasSpeed():
		case strings.TrimSpace(text) == "":
			res.Err = MsgNoOutput
		default:
			r.log.Debug("%s exited %d without speeds", r.name, code)
			res.Err = MsgNoSpeeds
		}
	})
}

// tick decrements the countdown once per second until it reaches zero or
// the run ends.
func (r *Runner) tick(ctx context.Context, gen uint64, ticker *clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done := false
			r.update(gen, func(res *Result) {
				res.Remaining -= time.Second
				if res.Remaining <= 0 {
					res.Remaining = 0
					done = true
				}
			})
			if done {
				return
			}
		}
	}
}

// update applies fn when gen is still the current run.
func (r *Runner) update(gen uint64, fn func(*Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen || !r.result.Testing {
		return
	}
	fn(&r.result)
	r.publishLocked()
}

// publishLocked must be called with r.mu held.
func (r *Runner) publishLocked() {
	for _, ch := range r.subs {
		publish(ch, r.result)
	}
}

// publish delivers res, replacing an undelivered older state.
func publish(ch chan Result, res Result) {
	for {
		select {
		case ch <- res:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// merge copies recognized values only, so a value seen once stays visible.
func merge(dst *Report, src Report) {
	if src.HasDownload {
		dst.Download, dst.HasDownload = src.Download, true
	}
	if src.HasUpload {
		dst.Upload, dst.HasUpload = src.Upload, true
	}
	if src.Responsiveness != "" {
		dst.Responsiveness = src.Responsiveness
	}
}
