package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/netbar/internal/config"
)

// keyMap holds every dashboard binding. Order in ShortHelp/FullHelp is the
// order shown to the user.
type keyMap struct {
	Quit          key.Binding
	Refresh       key.Binding
	Faster        key.Binding
	Slower        key.Binding
	Units         key.Binding
	Mode          key.Binding
	Stack         key.Binding
	SpeedTest     key.Binding
	CancelTest    key.Binding
	ResetTotals   key.Binding
	ToggleHelp    key.Binding
	CloseOverlays key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh now"),
	),
	Faster: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "sample faster"),
	),
	Slower: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "sample slower"),
	),
	Units: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "bytes / bits"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "cycle display mode"),
	),
	Stack: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "stack / unstack"),
	),
	SpeedTest: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "run speed test"),
	),
	CancelTest: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "cancel speed test"),
	),
	ResetTotals: key.NewBinding(
		key.WithKeys("Z"),
		key.WithHelp("Z", "reset traffic totals"),
	),
	ToggleHelp: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	CloseOverlays: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close help"),
	),
}

// ShortHelp is shown in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Refresh, k.SpeedTest, k.ToggleHelp}
}

// FullHelp is shown in the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Refresh, k.Faster, k.Slower},
		{k.Units, k.Mode, k.Stack},
		{k.SpeedTest, k.CancelTest, k.ResetTotals},
		{k.ToggleHelp, k.CloseOverlays},
	}
}

// intervalSteps are the sampling intervals +/- move between.
var intervalSteps = []time.Duration{
	500 * time.Millisecond,
	time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
}

// stepInterval returns the next interval up (dir > 0) or down from current.
// An interval between steps moves to the nearest step in that direction.
func stepInterval(current time.Duration, dir int) time.Duration {
	if dir > 0 {
		for _, s := range intervalSteps {
			if s > current {
				return s
			}
		}
		return intervalSteps[len(intervalSteps)-1]
	}
	for i := len(intervalSteps) - 1; i >= 0; i-- {
		if intervalSteps[i] < current {
			return intervalSteps[i]
		}
	}
	return intervalSteps[0]
}

// nextMode cycles both → download → upload → both.
func nextMode(m config.DisplayMode) config.DisplayMode {
	switch m {
	case config.DisplayBoth:
		return config.DisplayDownload
	case config.DisplayDownload:
		return config.DisplayUpload
	default:
		return config.DisplayBoth
	}
}

// HandleKeyMsg processes keyboard input. Returns true if the key was handled.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	// Help toggle takes priority
	if key.Matches(msg, keys.ToggleHelp) {
		m.showHelp = !m.showHelp
		return true, nil
	}
	if m.showHelp && key.Matches(msg, keys.CloseOverlays) {
		m.showHelp = false
		return true, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, keys.Refresh):
		m.engine.Refresh()
		return true, nil

	case key.Matches(msg, keys.Faster):
		m.setInterval(stepInterval(m.snap.Interval, -1))
		return true, nil

	case key.Matches(msg, keys.Slower):
		m.setInterval(stepInterval(m.snap.Interval, 1))
		return true, nil

	case key.Matches(msg, keys.Units):
		m.changeSettings(func(cfg *config.Config) {
			if cfg.Display.UnitType == config.UnitBits {
				cfg.Display.UnitType = config.UnitBytes
			} else {
				cfg.Display.UnitType = config.UnitBits
			}
		})
		return true, nil

	case key.Matches(msg, keys.Mode):
		m.changeSettings(func(cfg *config.Config) {
			cfg.Display.Mode = nextMode(cfg.Display.Mode)
		})
		return true, nil

	case key.Matches(msg, keys.Stack):
		m.changeSettings(func(cfg *config.Config) {
			cfg.Display.Unstack = !cfg.Display.Unstack
		})
		return true, nil

	case key.Matches(msg, keys.SpeedTest):
		if m.tester != nil {
			m.tester.Start(m.ctx)
		}
		return true, nil

	case key.Matches(msg, keys.CancelTest):
		if m.tester != nil {
			m.tester.Cancel()
		}
		return true, nil

	case key.Matches(msg, keys.ResetTotals):
		m.engine.ResetTotals()
		return true, nil
	}

	return false, nil
}
