package state

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rileyhilliard/netbar/internal/errors"
)

// ErrLocked is returned by TryLock when another live process holds the lock.
// Check for it with errors.Is.
var ErrLocked = stderrors.New("state file is in use by another process")

// DefaultStaleAfter is how old a lock held from another host must be before
// it is taken over.
const DefaultStaleAfter = 24 * time.Hour

// LockInfo describes the process holding a lock.
type LockInfo struct {
	User     string    `json:"user"`
	Hostname string    `json:"hostname"`
	Started  time.Time `json:"started"`
	PID      int       `json:"pid"`
	Command  string    `json:"command,omitempty"`
}

// NewLockInfo describes the current process.
func NewLockInfo(command string) *LockInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}

	return &LockInfo{
		User:     user,
		Hostname: hostname,
		Started:  time.Now(),
		PID:      os.Getpid(),
		Command:  command,
	}
}

// Age returns how long ago the lock was taken.
func (i *LockInfo) Age() time.Duration {
	return time.Since(i.Started)
}

// Marshal serializes the info to JSON.
func (i *LockInfo) Marshal() ([]byte, error) {
	return json.Marshal(i)
}

// ParseLockInfo deserializes JSON lock info.
func ParseLockInfo(data []byte) (*LockInfo, error) {
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// String describes the holder, e.g. "riley@mbp (pid 4242)".
func (i *LockInfo) String() string {
	s := i.User + "@" + i.Hostname + " (pid " + strconv.Itoa(i.PID) + ")"
	if i.Command != "" {
		s += " running " + i.Command
	}
	return s
}

// Lock is a held state file lock.
type Lock struct {
	Path string
	Info *LockInfo
}

// processAlive reports whether pid names a running process on this host.
var processAlive = func(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || stderrors.Is(err, syscall.EPERM)
}

// LockPath returns the lock file guarding statePath.
func LockPath(statePath string) string {
	return statePath + ".lock"
}

// TryLock takes the lock for statePath without waiting. A lock left by a dead
// process on this host, or one older than staleAfter from another host, is
// removed and taken over. Otherwise the error wraps ErrLocked.
func TryLock(statePath, command string, staleAfter time.Duration) (*Lock, error) {
	path := LockPath(statePath)
	info := NewLockInfo(command)

	data, err := info.Marshal()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrState, "Failed to serialize lock info", "")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Couldn't create state directory for %s", path),
			"Check the directory permissions")
	}

	// One retry after removing a stale lock.
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := f.Write(data)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path) //nolint:errcheck // Cleanup
				return nil, errors.New(errors.ErrState,
					fmt.Sprintf("Failed to write lock file %s", path),
					"Check free disk space")
			}
			return &Lock{Path: path, Info: info}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrState,
				fmt.Sprintf("Couldn't create lock file %s", path),
				"Check the directory permissions")
		}

		holder, stale := inspect(path, staleAfter)
		if !stale {
			return nil, errors.WrapWithCode(ErrLocked, errors.ErrState,
				fmt.Sprintf("State file is in use by %s", holder),
				fmt.Sprintf("Stop the other netbar, or remove %s if it is not running", path))
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrState,
				fmt.Sprintf("Couldn't remove stale lock %s", path), "")
		}
	}

	return nil, errors.WrapWithCode(ErrLocked, errors.ErrState,
		"Another netbar took the state file lock", "Try again")
}

// Release removes the lock. Releasing a nil lock is a no-op.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Couldn't remove lock file %s", l.Path), "")
	}
	return nil
}

// Holder describes who holds the lock for statePath, or "" when unlocked.
func Holder(statePath string) string {
	holder, stale := inspect(LockPath(statePath), DefaultStaleAfter)
	if stale {
		return ""
	}
	return holder
}

// inspect reads a lock file and decides whether it may be taken over.
func inspect(path string, staleAfter time.Duration) (holder string, stale bool) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", true
	}
	if err != nil {
		return "unknown", false
	}

	info, err := ParseLockInfo(data)
	if err != nil {
		// Unreadable content can't name a live holder.
		return strings.TrimSpace(string(data)), true
	}

	hostname, _ := os.Hostname()
	if info.Hostname == hostname {
		return info.String(), !processAlive(info.PID)
	}
	return info.String(), staleAfter > 0 && info.Age() > staleAfter
}
