package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/exec"
	"github.com/rileyhilliard/netbar/internal/logger"
	"github.com/rileyhilliard/netbar/internal/speedtest"
)

// progressPrinter prints each speed test value once, as it first appears
// or changes.
type progressPrinter struct {
	w    io.Writer
	last speedtest.Report
}

func (p *progressPrinter) update(res speedtest.Result) {
	if res.HasDownload && (!p.last.HasDownload || res.Download != p.last.Download) {
		fmt.Fprintf(p.w, "Download        %.2f Mbps\n", res.Download)
	}
	if res.HasUpload && (!p.last.HasUpload || res.Upload != p.last.Upload) {
		fmt.Fprintf(p.w, "Upload          %.2f Mbps\n", res.Upload)
	}
	if res.Responsiveness != "" && res.Responsiveness != p.last.Responsiveness {
		fmt.Fprintf(p.w, "Responsiveness  %s\n", res.Responsiveness)
	}
	p.last = res.Report
}

// finish reports the outcome of a completed run.
func (p *progressPrinter) finish(res speedtest.Result) error {
	p.update(res)
	if res.Err != "" {
		return errors.New(errors.ErrSpeedTest, res.Err,
			"netbar runs 'networkQuality' (macOS 12+); set speedtest.command to use another tool")
	}
	return nil
}

// speedtestCommand runs one bandwidth test in the foreground. Ctrl-C cancels
// it and keeps whatever was measured.
func speedtestCommand(w io.Writer) error {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}

	runner := speedtest.New(exec.NewLocal(), cfg.SpeedTest, speedtest.WithLogger(logger.NewEnvLogger("[speedtest]")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return runSpeedTest(ctx, w, runner)
}

// tester is the part of speedtest.Runner the command drives.
type tester interface {
	Start(ctx context.Context) bool
	Cancel()
	Result() speedtest.Result
	Subscribe() (<-chan speedtest.Result, func())
}

func runSpeedTest(ctx context.Context, w io.Writer, t tester) error {
	updates, unsubscribe := t.Subscribe()
	defer unsubscribe()

	if !t.Start(context.Background()) {
		return errors.New(errors.ErrSpeedTest, "A speed test is already running", "Wait for it to finish")
	}
	fmt.Fprintf(w, "Running speed test (about %ds)...\n", int(t.Result().Remaining.Seconds()))

	p := &progressPrinter{w: w}
	for {
		select {
		case <-ctx.Done():
			t.Cancel()
			p.update(t.Result())
			fmt.Fprintln(w, "Cancelled.")
			return nil
		case res, ok := <-updates:
			if !ok {
				return nil
			}
			if !res.Testing {
				return p.finish(res)
			}
			p.update(res)
		}
	}
}
