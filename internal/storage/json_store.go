package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
)

// JSONStore keeps schedules as a JSON array of ISO-8601 timestamps.
// Writes are not atomic and there is no locking: the last writer wins.
type JSONStore struct {
	fs   afero.Fs
	path string
}

func NewJSONStore(path string) *JSONStore {
	return NewJSONStoreWithFs(afero.NewOsFs(), path)
}

func NewJSONStoreWithFs(fs afero.Fs, path string) *JSONStore {
	return &JSONStore{
		fs:   fs,
		path: path,
	}
}

func (s *JSONStore) Load() ([]time.Time, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []time.Time{}, nil
		}
		return []time.Time{}, errors.Wrap(err, "failed to read schedules")
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("Ignoring malformed schedule file", "path", s.path, "error", err)
		return []time.Time{}, nil
	}

	times := make([]time.Time, 0, len(raw))
	for _, entry := range raw {
		t, err := ParseTimestamp(entry)
		if err != nil {
			logger.Warn("Ignoring malformed schedule file", "path", s.path, "error", err)
			return []time.Time{}, nil
		}
		times = append(times, t)
	}

	return times, nil
}

func (s *JSONStore) Save(times []time.Time) error {
	raw := make([]string, len(times))
	for i, t := range times {
		raw[i] = FormatTimestamp(t)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "failed to serialize schedules")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0700); err != nil {
			return errors.Wrap(err, "failed to create schedule directory")
		}
	}

	if err := afero.WriteFile(s.fs, s.path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write schedules")
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Path() string {
	return s.path
}
