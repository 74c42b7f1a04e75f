package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/speedtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTester replays scripted results through its subscription.
type fakeTester struct {
	started   bool
	busy      bool
	cancelled bool
	current   speedtest.Result
	updates   chan speedtest.Result
}

func newFakeTester(results ...speedtest.Result) *fakeTester {
	ch := make(chan speedtest.Result, len(results)+1)
	for _, r := range results {
		ch <- r
	}
	return &fakeTester{
		current: speedtest.Result{Testing: true, Remaining: 50 * time.Second},
		updates: ch,
	}
}

func (f *fakeTester) Start(context.Context) bool {
	if f.busy {
		return false
	}
	f.started = true
	return true
}

func (f *fakeTester) Cancel() {
	f.cancelled = true
	f.current.Testing = false
}

func (f *fakeTester) Result() speedtest.Result { return f.current }

func (f *fakeTester) Subscribe() (<-chan speedtest.Result, func()) {
	return f.updates, func() {}
}

func report(down, up float64, resp string) speedtest.Report {
	return speedtest.Report{
		Download:       down,
		HasDownload:    down > 0,
		Upload:         up,
		HasUpload:      up > 0,
		Responsiveness: resp,
	}
}

func TestRunSpeedTest(t *testing.T) {
	tester := newFakeTester(
		speedtest.Result{Testing: true, Report: report(100, 0, ""), Remaining: 40 * time.Second},
		speedtest.Result{Testing: true, Report: report(100, 10, ""), Remaining: 20 * time.Second},
		speedtest.Result{Testing: false, Report: report(250, 20, "High")},
	)

	var buf bytes.Buffer
	err := runSpeedTest(context.Background(), &buf, tester)
	require.NoError(t, err)
	assert.True(t, tester.started)

	want := "Running speed test (about 50s)...\n" +
		"Download        100.00 Mbps\n" +
		"Upload          10.00 Mbps\n" +
		"Download        250.00 Mbps\n" +
		"Upload          20.00 Mbps\n" +
		"Responsiveness  High\n"
	assert.Equal(t, want, buf.String())
}

func TestRunSpeedTestNoSpeeds(t *testing.T) {
	tester := newFakeTester(speedtest.Result{Err: speedtest.MsgNoSpeeds})

	var buf bytes.Buffer
	err := runSpeedTest(context.Background(), &buf, tester)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpeedTest))
	assert.Contains(t, err.Error(), speedtest.MsgNoSpeeds)
}

func TestRunSpeedTestAlreadyRunning(t *testing.T) {
	tester := newFakeTester()
	tester.busy = true

	var buf bytes.Buffer
	err := runSpeedTest(context.Background(), &buf, tester)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSpeedTest))
	assert.Empty(t, buf.String())
}

func TestRunSpeedTestCancelKeepsPartialResult(t *testing.T) {
	tester := newFakeTester()
	tester.current = speedtest.Result{Testing: true, Report: report(80, 0, ""), Remaining: 30 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := runSpeedTest(ctx, &buf, tester)
	require.NoError(t, err)
	assert.True(t, tester.cancelled)
	assert.Equal(t, "Running speed test (about 30s)...\nDownload        80.00 Mbps\nCancelled.\n", buf.String())
}

func TestRunSpeedTestSubscriptionClosed(t *testing.T) {
	tester := newFakeTester()
	close(tester.updates)

	var buf bytes.Buffer
	assert.NoError(t, runSpeedTest(context.Background(), &buf, tester))
}

func TestProgressPrinterSkipsUnchanged(t *testing.T) {
	var buf bytes.Buffer
	p := &progressPrinter{w: &buf}

	p.update(speedtest.Result{Testing: true, Report: report(5, 0, "")})
	p.update(speedtest.Result{Testing: true, Report: report(5, 0, "")})
	p.update(speedtest.Result{Testing: true, Report: report(5, 0, "Low")})
	p.update(speedtest.Result{Testing: true, Report: report(5, 0, "Low")})

	assert.Equal(t, "Download        5.00 Mbps\nResponsiveness  Low\n", buf.String())
}
