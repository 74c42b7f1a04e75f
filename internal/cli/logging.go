package cli

import (
	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/logger"
)

// logFactory returns a component logger for a bracketed prefix like "[sched]".
type logFactory func(prefix string) logger.Logger

func noopLogs(string) logger.Logger { return logger.Noop() }

// newLogFactory logs to path as JSON when set, and through fallback
// otherwise. The returned func flushes the file logger.
func newLogFactory(path string, fallback logFactory) (logFactory, func() error, error) {
	if path == "" {
		return fallback, func() error { return nil }, nil
	}

	z, err := logger.NewFileZap(path, verboseFlag)
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open log file "+path,
			"Check that the directory exists and is writable")
	}

	return func(prefix string) logger.Logger {
		return logger.NewZapLogger(z, prefix)
	}, z.Sync, nil
}
