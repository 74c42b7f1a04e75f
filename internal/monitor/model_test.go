package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/speedtest"
	"github.com/rileyhilliard/netbar/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	mu           sync.Mutex
	snap         telemetry.Snapshot
	cfg          config.Config
	ch           chan telemetry.Snapshot
	refreshes    int
	resets       int
	intervals    []time.Duration
	updates      []config.Config
	unsubscribed bool
}

func newFakeEngine() *fakeEngine {
	cfg := *config.DefaultConfig()
	return &fakeEngine{
		cfg:  cfg,
		snap: telemetry.Snapshot{Interval: cfg.Interval},
		ch:   make(chan telemetry.Snapshot, 1),
	}
}

func (f *fakeEngine) Snapshot() telemetry.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeEngine) Subscribe() (<-chan telemetry.Snapshot, func()) {
	return f.ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribed = true
	}
}

func (f *fakeEngine) Refresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
}

func (f *fakeEngine) SetInterval(d time.Duration) error {
	if d < config.MinInterval {
		return errors.New(errors.ErrConfig, "interval "+d.String()+" is too short", "")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intervals = append(f.intervals, d)
	f.cfg.Interval = d
	return nil
}

func (f *fakeEngine) Settings() config.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeEngine) UpdateSettings(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = *cfg
	f.updates = append(f.updates, *cfg)
	return nil
}

func (f *fakeEngine) ResetTotals() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
}

type fakeTester struct {
	mu      sync.Mutex
	res     speedtest.Result
	ch      chan speedtest.Result
	starts  int
	cancels int
}

func newFakeTester() *fakeTester {
	return &fakeTester{ch: make(chan speedtest.Result, 1)}
}

func (f *fakeTester) Start(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return true
}

func (f *fakeTester) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeTester) Result() speedtest.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res
}

func (f *fakeTester) Subscribe() (<-chan speedtest.Result, func()) {
	return f.ch, func() {}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestNewModelSubscribes(t *testing.T) {
	engine := newFakeEngine()
	engine.snap.Interface = "en0"
	tester := newFakeTester()
	tester.res = speedtest.Result{Remaining: 50 * time.Second}

	m := NewModel(context.Background(), engine, tester)

	assert.Equal(t, "en0", m.Snapshot().Interface)
	assert.Equal(t, 50*time.Second, m.speed.Remaining)
	assert.NotNil(t, m.Init())

	m.Close()
	assert.True(t, engine.unsubscribed)
}

func TestModelReceivesSnapshots(t *testing.T) {
	engine := newFakeEngine()
	m := NewModel(context.Background(), engine, nil)

	engine.ch <- telemetry.Snapshot{Interface: "en1", Connected: true}
	msg := waitForSnapshot(m.snapCh)()
	m, cmd := update(t, m, msg)

	assert.Equal(t, "en1", m.Snapshot().Interface)
	assert.True(t, m.Snapshot().Connected)
	assert.NotNil(t, cmd, "model keeps reading the subscription")
}

func TestModelQuitsWhenEngineCloses(t *testing.T) {
	engine := newFakeEngine()
	m := NewModel(context.Background(), engine, nil)

	close(engine.ch)
	msg := waitForSnapshot(m.snapCh)()
	require.IsType(t, engineClosedMsg{}, msg)

	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModelReceivesSpeedResults(t *testing.T) {
	tester := newFakeTester()
	m := NewModel(context.Background(), newFakeEngine(), tester)

	tester.ch <- speedtest.Result{Testing: true, Remaining: 42 * time.Second}
	m, _ = update(t, m, waitForSpeed(m.speedCh)())
	assert.True(t, m.speed.Testing)

	close(tester.ch)
	assert.Nil(t, waitForSpeed(m.speedCh)())
}

func TestSpinnerAdvancesOnlyWhileTesting(t *testing.T) {
	m := NewModel(context.Background(), newFakeEngine(), newFakeTester())

	m, _ = update(t, m, spinnerTickMsg(time.Now()))
	assert.Equal(t, 0, m.spinnerFrame)

	m.speed.Testing = true
	m, _ = update(t, m, spinnerTickMsg(time.Now()))
	assert.Equal(t, 1, m.spinnerFrame)
}

func TestSecondsSinceUpdate(t *testing.T) {
	clk := clock.NewMock()
	clk.Add(time.Hour)
	engine := newFakeEngine()
	m := NewModel(context.Background(), engine, nil, WithClock(clk))

	assert.Equal(t, -1, m.SecondsSinceUpdate())

	m.snap.UpdatedAt = clk.Now().Add(-3500 * time.Millisecond)
	assert.Equal(t, 3, m.SecondsSinceUpdate())

	m.snap.UpdatedAt = clk.Now().Add(time.Second)
	assert.Equal(t, 0, m.SecondsSinceUpdate())
}

func TestWindowSize(t *testing.T) {
	m := NewModel(context.Background(), newFakeEngine(), nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 40, m.height)
	assert.Equal(t, 100, m.contentWidth())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.Equal(t, minWidth, m.contentWidth())
}
