package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/format"
	"github.com/rileyhilliard/netbar/internal/state"
	"github.com/rileyhilliard/netbar/internal/telemetry"
	"go.uber.org/multierr"
)

// totalsCommand prints the persisted traffic totals, or resets them.
func totalsCommand(w io.Writer, reset, asJSON bool) error {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if reset {
		return resetTotals(w, cfg.StateFile, time.Now())
	}
	return showTotals(w, cfg.StateFile, asJSON, time.Now())
}

func showTotals(w io.Writer, statePath string, asJSON bool, now time.Time) error {
	totals, err := state.NewFileStore(statePath).Load()
	if err != nil {
		return err
	}

	if asJSON {
		return WriteJSONSuccess(w, totals)
	}

	fmt.Fprintf(w, "Download  %s\n", format.BytesString(totals.Download))
	fmt.Fprintf(w, "Upload    %s\n", format.BytesString(totals.Upload))
	if totals.Since.IsZero() {
		fmt.Fprintln(w, "Since     never recorded")
	} else {
		fmt.Fprintf(w, "Since     %s (%s)\n",
			totals.Since.Local().Format("2006-01-02 15:04"),
			humanize.RelTime(totals.Since, now, "ago", "from now"))
	}
	if holder := state.Holder(statePath); holder != "" {
		fmt.Fprintf(w, "Live      %s\n", holder)
	}
	return nil
}

// resetTotals zeroes the totals. It refuses while a monitor holds the state
// file, since the monitor would overwrite the reset on its next save.
func resetTotals(w io.Writer, statePath string, now time.Time) (err error) {
	lock, err := state.TryLock(statePath, "netbar totals --reset", state.DefaultStaleAfter)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, lock.Release()) }()

	if err := state.NewFileStore(statePath).Save(telemetry.TrafficTotals{Since: now}); err != nil {
		return err
	}
	fmt.Fprintln(w, "Traffic totals reset.")
	return nil
}
