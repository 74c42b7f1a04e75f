package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/metrics"
	"github.com/rileyhilliard/netbar/internal/monitor"
	"github.com/rileyhilliard/netbar/internal/speedtest"
	"github.com/rileyhilliard/netbar/internal/state"
	"github.com/rileyhilliard/netbar/internal/telemetry"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// monitorOptions holds the monitor command's flags.
type monitorOptions struct {
	Interval    string
	MetricsAddr string
	LogFile     string
}

// monitorCommand runs the sampling engine under the TUI dashboard until the
// user quits or a signal arrives.
func monitorCommand(opts monitorOptions) (err error) {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	interval, err := ParseInterval(opts.Interval)
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.Interval = interval
	}

	// The TUI owns the terminal, so logs go to a file or nowhere.
	logs, syncLogs, err := newLogFactory(opts.LogFile, noopLogs)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, syncLogs()) }()

	lock, err := state.TryLock(cfg.StateFile, "netbar monitor", state.DefaultStaleAfter)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, lock.Release()) }()

	sched := telemetry.NewScheduler(cfg, telemetry.Options{
		Logger: logs("[sched]"),
		Store:  state.NewFileStore(cfg.StateFile),
	})
	defer sched.Close()

	tester := speedtest.New(exec.NewLocal(), cfg.SpeedTest, speedtest.WithLogger(logs("[speedtest]")))
	defer tester.Cancel()

	if opts.MetricsAddr != "" {
		var srv *metrics.Server
		srv, err = metrics.NewServer(opts.MetricsAddr, metrics.NewCollector(sched, tester), logs("[metrics]"))
		if err != nil {
			return err
		}
		if err = srv.Start(); err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, srv.Stop()) }()
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	model := monitor.NewModel(ctx, sched, tester)
	defer model.Close()

	sched.Start()
	sched.Refresh()

	p := tea.NewProgram(model, tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	return g.Wait()
}
