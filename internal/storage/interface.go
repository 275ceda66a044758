package storage

import (
	"path/filepath"
	"strings"
	"time"
)

// Provider persists the ordered list of pending shutdown times.
//
// Load treats a missing or malformed store as empty and returns a nil error in
// both cases; only unexpected I/O failures are reported. Save overwrites the
// whole store in list order.
type Provider interface {
	Load() ([]time.Time, error)
	Save([]time.Time) error
	Close() error
	Path() string
}

// New picks the backend from the path extension: SQLite for .db/.sqlite
// files, JSON for everything else.
func New(path string) Provider {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewJSONStore(path)
	}
}
