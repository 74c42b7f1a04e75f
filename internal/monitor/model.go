package monitor

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/speedtest"
	"github.com/rileyhilliard/netbar/internal/telemetry"
)

// Engine is the sampling engine the dashboard renders.
// *telemetry.Scheduler satisfies it.
type Engine interface {
	Snapshot() telemetry.Snapshot
	Subscribe() (<-chan telemetry.Snapshot, func())
	Refresh()
	SetInterval(d time.Duration) error
	Settings() config.Config
	UpdateSettings(cfg *config.Config) error
	ResetTotals()
}

// SpeedTester runs the on-demand bandwidth test.
// *speedtest.Runner satisfies it.
type SpeedTester interface {
	Start(ctx context.Context) bool
	Cancel()
	Result() speedtest.Result
	Subscribe() (<-chan speedtest.Result, func())
}

// Model is the Bubble Tea model for the monitoring dashboard.
type Model struct {
	ctx    context.Context
	engine Engine
	tester SpeedTester
	clock  clock.Clock

	snapCh     <-chan telemetry.Snapshot
	unsubSnap  func()
	speedCh    <-chan speedtest.Result
	unsubSpeed func()

	snap     telemetry.Snapshot
	settings config.Config
	speed    speedtest.Result
	notice   string // last rejected setting change

	width    int
	height   int
	quitting bool
	showHelp bool

	// Animation state
	spinnerFrame int
}

// tickMsg redraws relative timestamps.
type tickMsg time.Time

// spinnerTickMsg signals a spinner animation frame update.
type spinnerTickMsg time.Time

// snapshotMsg carries a published engine snapshot.
type snapshotMsg telemetry.Snapshot

// speedMsg carries a published speed test result.
type speedMsg speedtest.Result

// engineClosedMsg means the engine closed its subscription.
type engineClosedMsg struct{}

const (
	spinnerInterval = 150 * time.Millisecond
	redrawInterval  = time.Second
)

// Option configures a Model.
type Option func(*Model)

// WithClock sets the clock used for relative timestamps.
func WithClock(c clock.Clock) Option {
	return func(m *Model) { m.clock = c }
}

// NewModel subscribes to engine and tester. tester may be nil, which hides
// the speed test section. Call Close when the program exits.
func NewModel(ctx context.Context, engine Engine, tester SpeedTester, opts ...Option) Model {
	m := Model{
		ctx:      ctx,
		engine:   engine,
		tester:   tester,
		clock:    clock.New(),
		snap:     engine.Snapshot(),
		settings: engine.Settings(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.snapCh, m.unsubSnap = engine.Subscribe()
	if tester != nil {
		m.speed = tester.Result()
		m.speedCh, m.unsubSpeed = tester.Subscribe()
	}
	return m
}

// Close drops the model's subscriptions.
func (m Model) Close() {
	if m.unsubSnap != nil {
		m.unsubSnap()
	}
	if m.unsubSpeed != nil {
		m.unsubSpeed()
	}
}

// Init starts the redraw timers and the subscription readers.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.tickCmd(),
		m.spinnerTickCmd(),
		waitForSnapshot(m.snapCh),
	}
	if m.speedCh != nil {
		cmds = append(cmds, waitForSpeed(m.speedCh))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg:
		m.snap = telemetry.Snapshot(msg)
		return m, waitForSnapshot(m.snapCh)

	case speedMsg:
		m.speed = speedtest.Result(msg)
		return m, waitForSpeed(m.speedCh)

	case engineClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case tickMsg:
		return m, m.tickCmd()

	case spinnerTickMsg:
		if m.speed.Testing {
			m.spinnerFrame = (m.spinnerFrame + 1) % len(SpinnerFrames)
		}
		return m, m.spinnerTickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Snapshot returns the last snapshot the model received.
func (m Model) Snapshot() telemetry.Snapshot {
	return m.snap
}

// SecondsSinceUpdate returns whole seconds since the last sample, or -1
// before the first one.
func (m Model) SecondsSinceUpdate() int {
	if m.snap.UpdatedAt.IsZero() {
		return -1
	}
	d := m.clock.Now().Sub(m.snap.UpdatedAt)
	if d < 0 {
		return 0
	}
	return int(d.Seconds())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(redrawInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) spinnerTickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// waitForSnapshot blocks on the next published snapshot.
func waitForSnapshot(ch <-chan telemetry.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return engineClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// waitForSpeed blocks on the next published speed test result. A closed
// channel ends the reader without a message.
func waitForSpeed(ch <-chan speedtest.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return speedMsg(res)
	}
}

func (m *Model) setInterval(d time.Duration) {
	if err := m.engine.SetInterval(d); err != nil {
		m.notice = errors.Message(err)
		return
	}
	m.notice = ""
	m.snap.Interval = d
	m.settings.Interval = d
}

// changeSettings applies fn to a copy of the current settings and hands the
// result to the engine. A rejected change leaves the settings untouched.
func (m *Model) changeSettings(fn func(cfg *config.Config)) {
	cfg := m.settings
	fn(&cfg)
	if err := m.engine.UpdateSettings(&cfg); err != nil {
		m.notice = errors.Message(err)
		return
	}
	m.notice = ""
	m.settings = cfg
}
