package speedtest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rileyhilliard/netbar/internal/config"
	exectest "github.com/rileyhilliard/netbar/internal/exec/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(countdown time.Duration) config.SpeedTestConfig {
	cfg := config.DefaultConfig().SpeedTest
	if countdown > 0 {
		cfg.Countdown = countdown
	}
	return cfg
}

func waitIdle(t *testing.T, r *Runner) Result {
	t.Helper()
	require.Eventually(t, func() bool { return !r.Result().Testing }, time.Second, time.Millisecond)
	return r.Result()
}

func TestRunnerProgressiveResults(t *testing.T) {
	streamer := exectest.NewFakeStreamer(
		"==== SUMMARY ====\nUplink capacity: 25.123 Mbps\n",
		"Downlink capacity: 312.456 Mbps\nResponsiveness: Medium (452 RPM)\n",
	)
	r := New(streamer, testConfig(0), WithClock(clock.NewMock()))

	require.True(t, r.Start(context.Background()))
	<-streamer.Started()

	// Everything printed so far is visible before the utility exits.
	got := r.Result()
	assert.True(t, got.Testing)
	assert.Equal(t, 25.123, got.Upload)
	assert.Equal(t, 312.456, got.Download)
	assert.Equal(t, "Medium", got.Responsiveness)
	assert.Equal(t, 50*time.Second, got.Remaining)

	streamer.Finish(0)
	final := waitIdle(t, r)
	assert.Empty(t, final.Err)
	assert.True(t, final.HasSpeed())
}

func TestRunnerSingleFlight(t *testing.T) {
	streamer := exectest.NewFakeStreamer()
	r := New(streamer, testConfig(0), WithClock(clock.NewMock()))

	require.True(t, r.Start(context.Background()))
	assert.False(t, r.Start(context.Background()))
	<-streamer.Started()
	assert.False(t, r.Start(context.Background()))

	assert.Equal(t, 1, streamer.Starts())
	assert.Equal(t, 1, streamer.Active())

	streamer.Finish(0)
	waitIdle(t, r)
}

func TestRunnerFailureMessages(t *testing.T) {
	tests := []struct {
		name     string
		streamer *exectest.FakeStreamer
		want     string
	}{
		{"no output", exectest.NewFakeStreamer(), MsgNoOutput},
		{"whitespace only", exectest.NewFakeStreamer("\n\n"), MsgNoOutput},
		{"unparsable output", exectest.NewFakeStreamer("Error: could not connect to the server\n"), MsgNoSpeeds},
		{"launch failure", exectest.NewFakeStreamer().FailStart(errors.New("executable file not found")), MsgLaunchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.streamer, testConfig(0), WithClock(clock.NewMock()))
			require.True(t, r.Start(context.Background()))
			tt.streamer.Finish(1)

			got := waitIdle(t, r)
			assert.Equal(t, tt.want, got.Err)
			assert.False(t, got.HasSpeed())
		})
	}
}

func TestRunnerCountdown(t *testing.T) {
	clk := clock.NewMock()
	streamer := exectest.NewFakeStreamer()
	r := New(streamer, testConfig(2*time.Second), WithClock(clk))

	require.True(t, r.Start(context.Background()))
	<-streamer.Started()
	assert.Equal(t, 2*time.Second, r.Result().Remaining)

	for _, want := range []time.Duration{time.Second, 0} {
		clk.Add(time.Second)
		require.Eventually(t, func() bool { return r.Result().Remaining == want },
			time.Second, time.Millisecond, "want %s", want)
	}

	clk.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, time.Duration(0), r.Result().Remaining, "floored at zero")
	assert.True(t, r.Result().Testing, "countdown is cosmetic")

	streamer.Finish(0)
	waitIdle(t, r)
}

func TestRunnerCancel(t *testing.T) {
	clk := clock.NewMock()
	streamer := exectest.NewFakeStreamer("Uplink capacity: 25 Mbps\n")
	r := New(streamer, testConfig(0), WithClock(clk))

	require.True(t, r.Start(context.Background()))
	<-streamer.Started()

	r.Cancel()
	got := r.Result()
	assert.False(t, got.Testing)
	assert.Equal(t, 25.0, got.Upload, "partial results stay visible")
	assert.Empty(t, got.Err)

	require.Eventually(t, func() bool { return streamer.Active() == 0 }, time.Second, time.Millisecond)

	// The countdown stopped with the run.
	clk.Add(5 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 50*time.Second, r.Result().Remaining)

	r.Cancel()

	require.True(t, r.Start(context.Background()), "a new run may start after cancel")
	require.Eventually(t, func() bool { return streamer.Starts() == 2 }, time.Second, time.Millisecond)
	r.Cancel()
}

// slowExitStreamer keeps running after its context is cancelled until
// released, like a utility that takes a moment to die.
type slowExitStreamer struct {
	mu      sync.Mutex
	starts  int
	active  int
	peak    int
	started chan struct{}
	release chan struct{}
}

func newSlowExitStreamer() *slowExitStreamer {
	return &slowExitStreamer{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (s *slowExitStreamer) Stream(ctx context.Context, _ func([]byte), _ string, _ ...string) (int, error) {
	s.mu.Lock()
	s.starts++
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	s.started <- struct{}{}
	<-ctx.Done()
	<-s.release
	return -1, ctx.Err()
}

func (s *slowExitStreamer) counts() (starts, peak int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.peak
}

func TestRunnerRestartWaitsForExit(t *testing.T) {
	streamer := newSlowExitStreamer()
	r := New(streamer, testConfig(0), WithClock(clock.NewMock()))

	require.True(t, r.Start(context.Background()))
	<-streamer.started
	r.Cancel()

	// The first utility is still exiting.
	require.True(t, r.Start(context.Background()))
	assert.True(t, r.Result().Testing)
	time.Sleep(20 * time.Millisecond)
	starts, _ := streamer.counts()
	assert.Equal(t, 1, starts, "second run waits for the first to exit")

	close(streamer.release)
	<-streamer.started

	starts, peak := streamer.counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, peak, "runs never overlap")

	r.Cancel()
	waitIdle(t, r)
}

func TestRunnerCancelWhileWaiting(t *testing.T) {
	streamer := newSlowExitStreamer()
	r := New(streamer, testConfig(0), WithClock(clock.NewMock()))

	require.True(t, r.Start(context.Background()))
	<-streamer.started
	r.Cancel()

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, r.Start(ctx))
	cancel()

	got := waitIdle(t, r)
	assert.Empty(t, got.Err)

	close(streamer.release)
	time.Sleep(20 * time.Millisecond)
	starts, _ := streamer.counts()
	assert.Equal(t, 1, starts, "abandoned run never launched")
}

func TestRunnerParentContext(t *testing.T) {
	streamer := exectest.NewFakeStreamer()
	r := New(streamer, testConfig(0), WithClock(clock.NewMock()))

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, r.Start(ctx))
	<-streamer.Started()

	cancel()
	got := waitIdle(t, r)
	assert.Empty(t, got.Err)
}

// lateStreamer writes speed output only after its context is cancelled,
// like a utility flushing its buffer while being killed.
type lateStreamer struct {
	started chan struct{}
	done    chan struct{}
	once    sync.Once
}

func (s *lateStreamer) Stream(ctx context.Context, onChunk func([]byte), _ string, _ ...string) (int, error) {
	defer close(s.done)
	s.once.Do(func() { close(s.started) })
	<-ctx.Done()
	onChunk([]byte("Downlink capacity: 999 Mbps\n"))
	return -1, ctx.Err()
}

func TestRunnerDropsOutputAfterCancel(t *testing.T) {
	streamer := &lateStreamer{started: make(chan struct{}), done: make(chan struct{})}
	r := New(streamer, testConfig(0), WithClock(clock.NewMock()))

	require.True(t, r.Start(context.Background()))
	<-streamer.started
	r.Cancel()
	<-streamer.done

	time.Sleep(10 * time.Millisecond)
	got := r.Result()
	assert.False(t, got.HasDownload)
	assert.False(t, got.Testing)
}

func TestRunnerSubscribe(t *testing.T) {
	streamer := exectest.NewFakeStreamer("Downlink capacity: 100 Mbps\n")
	r := New(streamer, testConfig(0), WithClock(clock.NewMock()))

	ch, unsubscribe := r.Subscribe()

	require.True(t, r.Start(context.Background()))
	<-streamer.Started()
	streamer.Finish(0)

	var last Result
	timeout := time.After(time.Second)
	for done := false; !done; {
		select {
		case last = <-ch:
			done = !last.Testing
		case <-timeout:
			t.Fatal("no final result published")
		}
	}
	assert.Equal(t, 100.0, last.Download)

	unsubscribe()
	unsubscribe()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestNewCommandLine(t *testing.T) {
	r := New(exectest.NewFakeStreamer(), config.SpeedTestConfig{Command: "networkQuality -s", Countdown: time.Second})
	assert.Equal(t, "networkQuality", r.name)
	assert.Equal(t, []string{"-s"}, r.args)
	assert.Equal(t, time.Second, r.Result().Remaining)

	r = New(exectest.NewFakeStreamer(), config.SpeedTestConfig{})
	assert.Equal(t, "networkQuality", r.name)
}
