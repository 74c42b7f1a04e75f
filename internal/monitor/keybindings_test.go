package monitor

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepInterval(t *testing.T) {
	tests := []struct {
		name    string
		current time.Duration
		dir     int
		want    time.Duration
	}{
		{"up from 1s", time.Second, 1, 2 * time.Second},
		{"down from 1s", time.Second, -1, 500 * time.Millisecond},
		{"floor", 500 * time.Millisecond, -1, 500 * time.Millisecond},
		{"ceiling", 10 * time.Second, 1, 10 * time.Second},
		{"between steps up", 3 * time.Second, 1, 5 * time.Second},
		{"between steps down", 3 * time.Second, -1, 2 * time.Second},
		{"above ladder down", 30 * time.Second, -1, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stepInterval(tt.current, tt.dir))
		})
	}
}

func TestNextMode(t *testing.T) {
	assert.Equal(t, config.DisplayDownload, nextMode(config.DisplayBoth))
	assert.Equal(t, config.DisplayUpload, nextMode(config.DisplayDownload))
	assert.Equal(t, config.DisplayBoth, nextMode(config.DisplayUpload))
	assert.Equal(t, config.DisplayBoth, nextMode(""))
}

func TestHandleKeyQuit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m := NewModel(context.Background(), newFakeEngine(), nil)
		handled, cmd := m.HandleKeyMsg(msg)
		require.True(t, handled)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, m.quitting)
	}
}

func TestHandleKeyEngineActions(t *testing.T) {
	engine := newFakeEngine()
	m := NewModel(context.Background(), engine, nil)

	handled, _ := m.HandleKeyMsg(runes("r"))
	assert.True(t, handled)
	assert.Equal(t, 1, engine.refreshes)

	handled, _ = m.HandleKeyMsg(runes("Z"))
	assert.True(t, handled)
	assert.Equal(t, 1, engine.resets)

	handled, _ = m.HandleKeyMsg(runes("w"))
	assert.False(t, handled)
}

func TestHandleKeyInterval(t *testing.T) {
	engine := newFakeEngine()
	m := NewModel(context.Background(), engine, nil)

	m.HandleKeyMsg(runes("+"))
	assert.Equal(t, 2*time.Second, m.snap.Interval)
	assert.Equal(t, 2*time.Second, m.settings.Interval)

	m.HandleKeyMsg(runes("-"))
	m.HandleKeyMsg(runes("-"))
	m.HandleKeyMsg(runes("-"))
	assert.Equal(t, 500*time.Millisecond, m.snap.Interval)

	assert.Equal(t, []time.Duration{
		2 * time.Second, time.Second, 500 * time.Millisecond, 500 * time.Millisecond,
	}, engine.intervals)
	assert.Empty(t, m.notice)
}

func TestHandleKeyIntervalRejected(t *testing.T) {
	engine := newFakeEngine()
	engine.snap.Interval = 200 * time.Millisecond
	m := NewModel(context.Background(), engine, nil)

	// below the ladder, so "-" lands on the shortest step which is accepted
	m.HandleKeyMsg(runes("-"))
	assert.Equal(t, 500*time.Millisecond, m.snap.Interval)

	m.setInterval(100 * time.Millisecond)
	assert.Equal(t, "interval 100ms is too short", m.notice)
}

func TestHandleKeyDisplaySettings(t *testing.T) {
	engine := newFakeEngine()
	m := NewModel(context.Background(), engine, nil)

	m.HandleKeyMsg(runes("u"))
	assert.Equal(t, config.UnitBits, m.settings.Display.UnitType)
	assert.Equal(t, config.UnitBits, engine.cfg.Display.UnitType)

	m.HandleKeyMsg(runes("u"))
	assert.Equal(t, config.UnitBytes, m.settings.Display.UnitType)

	m.HandleKeyMsg(runes("m"))
	assert.Equal(t, config.DisplayDownload, m.settings.Display.Mode)

	m.HandleKeyMsg(runes("l"))
	assert.True(t, m.settings.Display.Unstack)

	assert.Len(t, engine.updates, 4)
}

func TestHandleKeyRejectedSettings(t *testing.T) {
	engine := newFakeEngine()
	m := NewModel(context.Background(), engine, nil)
	m.settings.Probe.Count = 0

	m.HandleKeyMsg(runes("u"))

	assert.Equal(t, config.UnitBytes, m.settings.Display.UnitType)
	assert.NotEmpty(t, m.notice)
	assert.Empty(t, engine.updates)
	assert.Contains(t, m.View(), m.notice)
}

func TestHandleKeySpeedTest(t *testing.T) {
	tester := newFakeTester()
	m := NewModel(context.Background(), newFakeEngine(), tester)

	handled, _ := m.HandleKeyMsg(runes("t"))
	assert.True(t, handled)
	handled, _ = m.HandleKeyMsg(runes("x"))
	assert.True(t, handled)

	assert.Equal(t, 1, tester.starts)
	assert.Equal(t, 1, tester.cancels)
}

func TestHandleKeySpeedTestWithoutTester(t *testing.T) {
	m := NewModel(context.Background(), newFakeEngine(), nil)
	assert.NotPanics(t, func() {
		m.HandleKeyMsg(runes("t"))
		m.HandleKeyMsg(runes("x"))
	})
}

func TestHandleKeyHelp(t *testing.T) {
	m := NewModel(context.Background(), newFakeEngine(), nil)

	m, _ = update(t, m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	assert.Contains(t, m.View(), "run speed test")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)

	m, _ = update(t, m, runes("?"))
	m, _ = update(t, m, runes("?"))
	assert.False(t, m.showHelp)
}
