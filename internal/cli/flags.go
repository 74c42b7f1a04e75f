package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/netbar/internal/config"
	"github.com/rileyhilliard/netbar/internal/errors"
)

// ParseInterval parses a sampling interval flag. Returns zero duration if
// the flag is empty.
func ParseInterval(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 1s, 2s, or 500ms.")
	}
	if duration < config.MinInterval {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", duration),
			"Use at least "+config.MinInterval.String())
	}
	return duration, nil
}

// parseAssignment splits a --set argument of the form key=value.
func parseAssignment(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a key=value pair", arg),
			"Use --set menu.rssi=true")
	}
	return key, strings.TrimSpace(value), nil
}
