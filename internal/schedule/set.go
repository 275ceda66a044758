// Package schedule holds the in-memory, index-addressable list of pending
// shutdowns and keeps the backing store in sync after every mutation.
//
// A Set is not safe for concurrent use. Every caller drives it from a single
// event loop (the TUI update loop or the watch runner).
package schedule

import (
	"time"

	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
	"github.com/julianstephens/sundown/internal/models"
	"github.com/julianstephens/sundown/internal/storage"
)

// Entry pairs an upcoming schedule with its position in the full list
type Entry struct {
	Index    int
	Schedule models.Schedule
}

type Set struct {
	store      storage.Provider
	items      []models.Schedule
	beforeSave func()
}

// Open loads the persisted schedules. A load failure is logged and the set
// starts empty.
func Open(store storage.Provider) *Set {
	s := &Set{store: store}

	times, err := store.Load()
	if err != nil {
		logger.Warn("Failed to load schedules, starting empty", "path", store.Path(), "error", err)
	}
	for _, t := range times {
		s.items = append(s.items, models.NewSchedule(t))
	}

	logger.Debug("Schedules loaded", "path", store.Path(), "count", len(s.items))
	return s
}

// OnBeforeSave registers a hook that runs right before each write
func (s *Set) OnBeforeSave(fn func()) {
	s.beforeSave = fn
}

// Save persists the current list. Mutations call it automatically; it is
// exported so a failed write can be retried.
func (s *Set) Save() error {
	if s.beforeSave != nil {
		s.beforeSave()
	}

	times := make([]time.Time, len(s.items))
	for i, item := range s.items {
		times[i] = item.At
	}

	if err := s.store.Save(times); err != nil {
		logger.Error("Failed to save schedules", "path", s.store.Path(), "error", err)
		return errors.WithHint(
			errors.Wrap(err, "error saving schedules"),
			"the change is kept in memory; it will be written again on the next change",
		)
	}
	return nil
}

// Add appends a schedule and persists. The schedule stays in memory even when
// the write fails, in which case the error is returned alongside it.
func (s *Set) Add(at time.Time) (models.Schedule, error) {
	sched := models.NewSchedule(at)
	s.items = append(s.items, sched)
	logger.Info("Shutdown scheduled", "id", sched.ID, "at", sched.At)
	return sched, s.Save()
}

// AddClock schedules the next occurrence of hour:minute. Invalid input is
// rejected before anything is touched.
func (s *Set) AddClock(hour, minute int, now time.Time) (models.Schedule, error) {
	at, err := models.NextOccurrence(hour, minute, now)
	if err != nil {
		return models.Schedule{}, err
	}
	return s.Add(at)
}

// Remove deletes the schedule at index and persists
func (s *Set) Remove(index int) (models.Schedule, error) {
	if index < 0 || index >= len(s.items) {
		logger.Error("Schedule index out of range", "index", index, "len", len(s.items))
		return models.Schedule{}, errors.WithHint(
			errors.Wrapf(errors.ErrIndexOutOfRange, "index %d (have %d)", index, len(s.items)),
			"run 'sundown list' to see current indices",
		)
	}

	removed := s.items[index]
	s.items = append(s.items[:index:index], s.items[index+1:]...)
	logger.Info("Shutdown cancelled", "id", removed.ID, "at", removed.At)
	return removed, s.Save()
}

// RemoveByID deletes the schedule with the given ID and persists
func (s *Set) RemoveByID(id string) (models.Schedule, error) {
	index := s.indexOf(id)
	if index < 0 {
		return models.Schedule{}, errors.Wrapf(errors.ErrScheduleNotFound, "id %s", id)
	}
	return s.Remove(index)
}

// Prune drops every schedule at or before now, keeps the rest in their
// original order and persists. It returns how many were dropped.
func (s *Set) Prune(now time.Time) (int, error) {
	kept := make([]models.Schedule, 0, len(s.items))
	for _, item := range s.items {
		if !item.IsPast(now) {
			kept = append(kept, item)
		}
	}

	pruned := len(s.items) - len(kept)
	s.items = kept
	if pruned > 0 {
		logger.Info("Pruned past schedules", "count", pruned)
	}
	return pruned, s.Save()
}

// Upcoming lists schedules strictly after now, keeping each one's index in
// the full list.
func (s *Set) Upcoming(now time.Time) []Entry {
	var entries []Entry
	for i, item := range s.items {
		if item.At.After(now) {
			entries = append(entries, Entry{Index: i, Schedule: item})
		}
	}
	return entries
}

// MarkWarned records fired warnings on the schedule. Flags are never cleared.
func (s *Set) MarkWarned(id string, tenMin, fiveMin bool) {
	index := s.indexOf(id)
	if index < 0 {
		return
	}
	s.items[index].TenMinWarned = s.items[index].TenMinWarned || tenMin
	s.items[index].FiveMinWarned = s.items[index].FiveMinWarned || fiveMin
}

// Reload re-reads the store after an external change. Schedules whose
// timestamp is still present keep their ID and warning flags.
func (s *Set) Reload() (added, removed []models.Schedule, err error) {
	times, err := s.store.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to reload schedules")
	}

	used := make([]bool, len(s.items))
	next := make([]models.Schedule, 0, len(times))
	for _, t := range times {
		matched := false
		for i, old := range s.items {
			if !used[i] && old.At.Equal(t) {
				used[i] = true
				next = append(next, old)
				matched = true
				break
			}
		}
		if !matched {
			sched := models.NewSchedule(t)
			next = append(next, sched)
			added = append(added, sched)
		}
	}
	for i, old := range s.items {
		if !used[i] {
			removed = append(removed, old)
		}
	}

	s.items = next
	logger.Debug("Schedules reloaded", "added", len(added), "removed", len(removed))
	return added, removed, nil
}

// Get returns the schedule with the given ID
func (s *Set) Get(id string) (models.Schedule, bool) {
	index := s.indexOf(id)
	if index < 0 {
		return models.Schedule{}, false
	}
	return s.items[index], true
}

// At returns the schedule at index in list order
func (s *Set) At(index int) (models.Schedule, bool) {
	if index < 0 || index >= len(s.items) {
		return models.Schedule{}, false
	}
	return s.items[index], true
}

// All returns a copy of every schedule in list order
func (s *Set) All() []models.Schedule {
	out := make([]models.Schedule, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Len() int {
	return len(s.items)
}

func (s *Set) Path() string {
	return s.store.Path()
}

func (s *Set) indexOf(id string) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
