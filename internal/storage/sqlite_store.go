package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
)

const createSchedulesTable = `CREATE TABLE IF NOT EXISTS schedules (
	position INTEGER PRIMARY KEY,
	at       TEXT NOT NULL
)`

// SQLiteStore keeps the same ordered timestamp list in a single table
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) open() error {
	if s.db != nil {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return errors.Wrap(err, "failed to create database directory")
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}

	if _, err := db.Exec(createSchedulesTable); err != nil {
		db.Close()
		return errors.Wrap(err, "failed to create schedules table")
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) Load() ([]time.Time, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return []time.Time{}, nil
	}

	// A file that is not a usable database is treated like malformed JSON
	if err := s.open(); err != nil {
		logger.Warn("Ignoring unreadable schedule database", "path", s.path, "error", err)
		return []time.Time{}, nil
	}

	rows, err := s.db.Query("SELECT at FROM schedules ORDER BY position")
	if err != nil {
		logger.Warn("Ignoring unreadable schedule database", "path", s.path, "error", err)
		return []time.Time{}, nil
	}
	defer rows.Close()

	times := []time.Time{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return []time.Time{}, errors.Wrap(err, "failed to scan schedule")
		}
		t, err := ParseTimestamp(raw)
		if err != nil {
			logger.Warn("Ignoring malformed schedule database", "path", s.path, "error", err)
			return []time.Time{}, nil
		}
		times = append(times, t)
	}
	if err := rows.Err(); err != nil {
		return []time.Time{}, errors.Wrap(err, "failed to read schedules")
	}

	return times, nil
}

func (s *SQLiteStore) Save(times []time.Time) error {
	if err := s.open(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM schedules"); err != nil {
		return errors.Wrap(err, "failed to clear schedules")
	}

	stmt, err := tx.Prepare("INSERT INTO schedules (position, at) VALUES (?, ?)")
	if err != nil {
		return errors.Wrap(err, "failed to prepare insert")
	}
	defer stmt.Close()

	for i, t := range times {
		if _, err := stmt.Exec(i, FormatTimestamp(t)); err != nil {
			return errors.Wrap(err, "failed to insert schedule")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit schedules")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}
