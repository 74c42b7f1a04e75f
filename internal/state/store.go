package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rileyhilliard/netbar/internal/errors"
	"github.com/rileyhilliard/netbar/internal/telemetry"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the state file format version.
const CurrentVersion = 1

// document is the on-disk layout of the state file.
type document struct {
	Version   int                     `yaml:"version"`
	Totals    telemetry.TrafficTotals `yaml:"totals"`
	UpdatedAt time.Time               `yaml:"updated_at,omitempty"`
}

// FileStore keeps traffic totals in a YAML file. It implements
// telemetry.TotalsStore.
type FileStore struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted totals. A missing file yields zero totals and no
// error.
func (s *FileStore) Load() (telemetry.TrafficTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return telemetry.TrafficTotals{}, nil
	}
	if err != nil {
		return telemetry.TrafficTotals{}, errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Couldn't read state file %s", s.path),
			"Check the file permissions")
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return telemetry.TrafficTotals{}, errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("State file %s is corrupt", s.path),
			"Delete it or run 'netbar totals --reset'")
	}
	if doc.Version > CurrentVersion {
		return telemetry.TrafficTotals{}, errors.New(errors.ErrState,
			fmt.Sprintf("State file version %d is newer than this netbar supports (%d)", doc.Version, CurrentVersion),
			"Upgrade netbar")
	}

	return doc.Totals, nil
}

// Save writes totals through a temp file and rename.
func (s *FileStore) Save(totals telemetry.TrafficTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(document{
		Version:   CurrentVersion,
		Totals:    totals,
		UpdatedAt: s.now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrState, "Couldn't encode traffic totals", "")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Couldn't create state directory %s", dir),
			"Check the directory permissions")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Couldn't write state file %s", s.path),
			"Check the directory permissions")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck // Already failing
		os.Remove(tmpName) //nolint:errcheck // Best-effort cleanup
		return errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Couldn't write state file %s", s.path), "Check free disk space")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // Best-effort cleanup
		return errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Couldn't write state file %s", s.path), "Check free disk space")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck // Best-effort cleanup
		return errors.WrapWithCode(err, errors.ErrState,
			fmt.Sprintf("Couldn't replace state file %s", s.path), "")
	}
	return nil
}

// ReadOnly wraps a store so Save is discarded.
func ReadOnly(s telemetry.TotalsStore) telemetry.TotalsStore {
	return readOnly{s}
}

type readOnly struct {
	telemetry.TotalsStore
}

func (readOnly) Save(telemetry.TrafficTotals) error { return nil }
