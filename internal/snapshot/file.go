package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMalformed marks a snapshot artifact that failed to parse
// or is missing required top-level fields. Callers surface it
// to the user whole; there is no partial rendering of a broken
// snapshot.
var ErrMalformed = errors.New("malformed snapshot")

// Load reads and validates a snapshot artifact. Parse failures
// and missing required fields wrap ErrMalformed; a missing file
// returns the underlying fs error untouched so callers can
// treat "not fetched yet" separately.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := snap.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &snap, nil
}

// validate checks the required top-level fields. Projects and
// userDaily are optional: the project source is allowed to be
// unavailable, and older artifacts predate the per-user series.
func (s *Snapshot) validate() error {
	switch {
	case s.FetchedAt.IsZero():
		return errors.New("missing fetchedAt")
	case s.DateRange.Start == "" || s.DateRange.End == "":
		return errors.New("missing dateRange")
	case s.Daily == nil:
		return errors.New("missing daily")
	case s.Users == nil:
		return errors.New("missing users")
	case s.Tools == nil:
		return errors.New("missing tools")
	}
	return nil
}

// Write serializes the snapshot to path via a temp file and
// rename, so readers never observe a half-written artifact.
func Write(path string, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
