package storage

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestJSONStore(t *testing.T) (*JSONStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewJSONStoreWithFs(fs, "/data/shutdown_schedules.json"), fs
}

func TestJSONStoreLoadMissingFile(t *testing.T) {
	store, _ := setupTestJSONStore(t)

	times, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestJSONStoreLoadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "not json", content: "shutdown at nine"},
		{name: "wrong shape", content: `{"schedules": []}`},
		{name: "bad timestamp", content: `["2026-10-15T23:59:00", "tomorrow"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, fs := setupTestJSONStore(t)
			require.NoError(t, afero.WriteFile(fs, store.Path(), []byte(tt.content), 0600))

			times, err := store.Load()
			require.NoError(t, err)
			assert.Empty(t, times)
		})
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	store, _ := setupTestJSONStore(t)

	want := []time.Time{
		time.Date(2026, 10, 16, 0, 1, 0, 0, time.Local),
		time.Date(2026, 10, 15, 23, 59, 0, 0, time.Local),
		time.Date(2026, 10, 17, 6, 30, 15, 0, time.Local),
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "entry %d: expected %v, got %v", i, want[i], got[i])
	}
}

func TestJSONStoreWritesISOArray(t *testing.T) {
	store, fs := setupTestJSONStore(t)

	require.NoError(t, store.Save([]time.Time{
		time.Date(2026, 10, 15, 23, 59, 0, 0, time.Local),
		time.Date(2026, 10, 16, 0, 1, 0, 0, time.Local),
	}))

	data, err := afero.ReadFile(fs, store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `["2026-10-15T23:59:00", "2026-10-16T00:01:00"]`, string(data))
}

func TestJSONStoreSaveEmptyWritesEmptyArray(t *testing.T) {
	store, fs := setupTestJSONStore(t)
	require.NoError(t, store.Save(nil))

	data, err := afero.ReadFile(fs, store.Path())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONStoreSaveFailure(t *testing.T) {
	store := NewJSONStoreWithFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), "shutdown_schedules.json")

	err := store.Save([]time.Time{time.Now()})
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	expected := time.Date(2026, 10, 15, 23, 59, 0, 0, time.Local)

	for _, raw := range []string{
		"2026-10-15T23:59:00",
		"2026-10-15T23:59:00.250000",
		"2026-10-15 23:59:00",
		expected.Format(time.RFC3339),
	} {
		got, err := ParseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, expected.Equal(got), "%s: expected %v, got %v", raw, expected, got)
	}

	_, err := ParseTimestamp("23:59")
	assert.Error(t, err)
}

func TestNewPicksBackendByExtension(t *testing.T) {
	assert.IsType(t, &JSONStore{}, New("shutdown_schedules.json"))
	assert.IsType(t, &JSONStore{}, New("schedules"))
	assert.IsType(t, &SQLiteStore{}, New("/tmp/sundown.db"))
	assert.IsType(t, &SQLiteStore{}, New("/tmp/sundown.SQLITE"))
}
