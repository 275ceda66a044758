package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/countdown"
	"github.com/julianstephens/sundown/internal/notify"
	"github.com/julianstephens/sundown/internal/schedule"
	"github.com/julianstephens/sundown/internal/storage"
	"github.com/julianstephens/sundown/internal/tui/components/schedulelist"
)

var now = time.Date(2026, 10, 15, 21, 0, 0, 0, time.Local)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type countingShutdowner struct{ calls int }

func (s *countingShutdowner) Shutdown(ctx context.Context) error {
	s.calls++
	return nil
}

func setupTestModel(t *testing.T, times ...time.Time) (Model, *schedule.Set, *countingShutdowner) {
	t.Helper()
	m, set, shutdowner, _ := setupTestModelWithStore(t, times...)
	return m, set, shutdowner
}

func setupTestModelWithStore(t *testing.T, times ...time.Time) (Model, *schedule.Set, *countingShutdowner, storage.Provider) {
	t.Helper()
	store := storage.NewJSONStoreWithFs(afero.NewMemMapFs(), "/work/shutdown_schedules.json")
	if len(times) > 0 {
		require.NoError(t, store.Save(times))
	}
	set := schedule.Open(store)
	popups := notify.NewQueue()
	shutdowner := &countingShutdowner{}
	engine := countdown.New(set, popups, shutdowner)

	m := NewModel(context.Background(), Options{
		Set:          set,
		Engine:       engine,
		Popups:       popups,
		Clock:        fixedClock{now},
		PopupTimeout: time.Minute,
	})
	return m, set, shutdowner, store
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitTracksUpcomingOnly(t *testing.T) {
	m, _, _ := setupTestModel(t, now.Add(-time.Minute), now.Add(time.Hour), now.Add(2*time.Hour))

	cmd := m.Init()
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, m.engine.Len())
}

func TestViewEmpty(t *testing.T) {
	m, _, _ := setupTestModel(t)

	assert.Contains(t, m.View(), "No upcoming shutdowns")
}

func TestViewListsCountdownLabels(t *testing.T) {
	m, _, _ := setupTestModel(t, now.Add(90*time.Minute))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Contains(t, m.View(), "Shutdown at 22:30 | Time Remaining: 1:30:00")
}

func TestTickRaisesWarningPopup(t *testing.T) {
	m, set, _ := setupTestModel(t, now.Add(10*time.Minute))
	s := set.All()[0]
	token := m.engine.Track(s)

	m, cmd := update(t, m, tickMsg{ID: s.ID, Token: token, Time: now})
	assert.NotNil(t, cmd)
	require.NotNil(t, m.popup)
	assert.Equal(t, constants.TitleReminder, m.popup.Title)
	assert.Equal(t, constants.MessageTenMinutesLeft, m.popup.Message)
	assert.Contains(t, m.View(), constants.MessageTenMinutesLeft)
}

func TestTickFiresShutdownOnce(t *testing.T) {
	m, set, shutdowner := setupTestModel(t, now.Add(time.Second))
	s := set.All()[0]
	token := m.engine.Track(s)

	m, _ = update(t, m, tickMsg{ID: s.ID, Token: token, Time: now})
	assert.Equal(t, 1, shutdowner.calls)
	assert.Equal(t, 0, set.Len())

	m, cmd := update(t, m, tickMsg{ID: s.ID, Token: token, Time: now.Add(500 * time.Millisecond)})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, shutdowner.calls)
	assert.Contains(t, m.View(), "No upcoming shutdowns")
}

func TestPopupDismissAndStaleExpiry(t *testing.T) {
	m, _, _ := setupTestModel(t)
	m.popups.Show("First", "one", time.Minute)
	m.popups.Show("Second", "two", time.Minute)

	cmd := m.showNextPopup()
	require.NotNil(t, cmd)
	firstID := m.popup.id

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.popup)
	assert.Equal(t, "Second", m.popup.Title)

	// The dismissed popup's timer must not close the new one
	m, _ = update(t, m, popupExpiredMsg{ID: firstID})
	require.NotNil(t, m.popup)
	assert.Equal(t, "Second", m.popup.Title)

	m, _ = update(t, m, popupExpiredMsg{ID: m.popup.id})
	assert.Nil(t, m.popup)
}

func TestCancelSelectedSchedule(t *testing.T) {
	m, set, shutdowner := setupTestModel(t, now.Add(time.Second), now.Add(time.Hour))
	first := set.All()[0]
	token := m.engine.Track(first)

	m, cmd := update(t, m, keyRunes("c"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, schedulelist.CancelScheduleMsg{ID: first.ID}, msg)

	m, _ = update(t, m, msg)
	assert.Equal(t, 1, set.Len())
	assert.False(t, m.engine.IsTracked(first.ID))

	// The cancelled chain dies without firing
	_, cmd = update(t, m, tickMsg{ID: first.ID, Token: token, Time: now})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, shutdowner.calls)
}

func TestTabOpensAddFormAndEscReturns(t *testing.T) {
	m, _, _ := setupTestModel(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, constants.StateAdd, m.state)
	require.NotNil(t, m.form)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, constants.StateSchedules, m.state)
}

func TestSubmitAddForm(t *testing.T) {
	m, set, _ := setupTestModel(t)
	m.openAddForm()
	m.addForm.Hour = "23"
	m.addForm.Minute = "5"

	cmd := m.submitAddForm()
	assert.NotNil(t, cmd)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, time.Date(2026, 10, 15, 23, 5, 0, 0, time.Local), set.All()[0].At)
	assert.True(t, m.engine.IsTracked(set.All()[0].ID))
	assert.Empty(t, m.formError)

	require.NotNil(t, m.popup)
	assert.Equal(t, constants.TitleSuccess, m.popup.Title)
	assert.Equal(t, "Shutdown scheduled for 23:05", m.popup.Message)

	// The form is reset for the next entry
	assert.Equal(t, constants.StateAdd, m.state)
	assert.Empty(t, m.addForm.Hour)
}

func TestSubmitAddFormRollsOverToTomorrow(t *testing.T) {
	m, set, _ := setupTestModel(t)
	m.openAddForm()
	m.addForm.Hour = "20"
	m.addForm.Minute = "0"

	m.submitAddForm()
	require.Equal(t, 1, set.Len())
	assert.Equal(t, time.Date(2026, 10, 16, 20, 0, 0, 0, time.Local), set.All()[0].At)
}

func TestSubmitAddFormInvalidKeepsUserInForm(t *testing.T) {
	m, set, _ := setupTestModel(t)
	m.openAddForm()
	m.addForm.Hour = "24"
	m.addForm.Minute = "00"

	m.submitAddForm()
	assert.Equal(t, 0, set.Len())
	assert.Equal(t, constants.StateAdd, m.state)
	assert.Contains(t, m.formError, "hour must be between 0 and 23")
	assert.Equal(t, "24", m.addForm.Hour)
	assert.Nil(t, m.popup)
}

func TestRangeValidator(t *testing.T) {
	validate := rangeValidator("minute", 0, 59)

	assert.NoError(t, validate("0"))
	assert.NoError(t, validate(" 59 "))
	assert.Error(t, validate("60"))
	assert.Error(t, validate("-1"))
	assert.Error(t, validate("ab"))
}

func TestQuit(t *testing.T) {
	m, _, _ := setupTestModel(t)

	m, cmd := update(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestStoreChangedFollowsExternalEdits(t *testing.T) {
	keep, dropped := now.Add(time.Hour), now.Add(2*time.Hour)
	m, set, shutdowner, store := setupTestModelWithStore(t, keep, dropped)
	m.Init()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	droppedID := set.All()[1].ID
	require.True(t, m.engine.IsTracked(droppedID))

	// Another shell cancels 23:00 and adds 21:10
	added := now.Add(10 * time.Minute)
	require.NoError(t, store.Save([]time.Time{keep, added, now.Add(-time.Minute)}))

	m, cmd := update(t, m, StoreChangedMsg{})
	assert.NotNil(t, cmd)

	assert.False(t, m.engine.IsTracked(droppedID))
	assert.Equal(t, 2, m.engine.Len())
	require.Equal(t, 3, set.Len())
	assert.True(t, m.engine.IsTracked(set.All()[1].ID))
	assert.False(t, m.engine.IsTracked(set.All()[2].ID), "past entries are not tracked")
	assert.NotContains(t, m.View(), "Shutdown at 23:00")
	assert.Contains(t, m.View(), "Shutdown at 21:10")

	// The dropped schedule's chain stops instead of firing later
	for _, tick := range []time.Time{dropped.Add(-10 * time.Minute), dropped} {
		m, cmd = update(t, m, tickMsg{ID: droppedID, Token: 2, Time: tick})
		assert.Nil(t, cmd)
	}
	assert.Zero(t, shutdowner.calls)
}

type failingStore struct{}

func (failingStore) Load() ([]time.Time, error) { return nil, errors.New("disk gone") }
func (failingStore) Save([]time.Time) error { return errors.New("disk gone") }
func (failingStore) Close() error { return nil }
func (failingStore) Path() string { return "/work/shutdown_schedules.json" }

func TestStoreChangedReloadFailureIsShown(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := storage.NewJSONStoreWithFs(fs, "/work/shutdown_schedules.json")
	set := schedule.Open(store)
	engine := countdown.New(set, notify.NewQueue(), &countingShutdowner{})
	m := NewModel(context.Background(), Options{Set: set, Engine: engine, Clock: fixedClock{now}})

	m.set = schedule.Open(failingStore{})
	m, cmd := update(t, m, StoreChangedMsg{})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "failed to reload schedules")
}

func TestNoticeShown(t *testing.T) {
	store := storage.NewJSONStoreWithFs(afero.NewMemMapFs(), "/work/shutdown_schedules.json")
	set := schedule.Open(store)
	engine := countdown.New(set, notify.NewQueue(), &countingShutdowner{})
	m := NewModel(context.Background(), Options{
		Set:    set,
		Engine: engine,
		Clock:  fixedClock{now},
		Notice: "Shutdowns are handled by the watcher (pid 4242)",
	})

	assert.Contains(t, m.View(), "pid 4242")
}
