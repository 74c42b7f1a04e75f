package exec

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"

	nberrors "github.com/rileyhilliard/netbar/internal/errors"
)

// toolHints maps the utilities the sampler drives to what to do when one
// is missing.
var toolHints = map[string]string{
	"networkQuality": "networkQuality ships with macOS 12 and later. Set speedtest.command to another tool on older systems.",
	"airport":        "The airport utility was removed in recent macOS releases. Wi-Fi details stay empty without it.",
	"nc":             "Install netcat, or set probe.tcp_method: dial to connect in-process.",
	"ping":           "Install iputils-ping (Linux) so reachability can be probed.",
	"netstat":        "netstat is part of macOS. Check that /usr/sbin is on PATH.",
	"route":          "route is part of macOS. Check that /sbin is on PATH.",
	"ip":             "Install iproute2 (Linux) so the default route can be found.",
	"scutil":         "scutil is part of macOS. Check that /usr/sbin is on PATH.",
}

// IsCommandNotFound reports whether err means the program doesn't exist
// or isn't on PATH.
func IsCommandNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// ToolHint returns the hint for a missing program, matched by base name.
func ToolHint(name string) (string, bool) {
	hint, ok := toolHints[filepath.Base(name)]
	return hint, ok
}

// launchError wraps a failure to start name. Missing programs get a
// tool-specific suggestion when one is known.
func launchError(err error, name, verb string) error {
	if IsCommandNotFound(err) {
		suggestion, ok := ToolHint(name)
		if !ok {
			suggestion = fmt.Sprintf("Install '%s' or check that it is on PATH.", filepath.Base(name))
		}
		return nberrors.WrapWithCode(err, nberrors.ErrExec,
			fmt.Sprintf("'%s' not found", filepath.Base(name)),
			suggestion)
	}
	return nberrors.WrapWithCode(err, nberrors.ErrExec,
		fmt.Sprintf("Couldn't %s '%s'", verb, name),
		"Make sure the command exists and is executable.")
}
