package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	_, err := os.Stat(dbPath)
	require.True(t, os.IsNotExist(err))

	s, err := New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	assert.Equal(t, dbPath, s.Path())
}

func TestNew_Migrates(t *testing.T) {
	s := newTestStore(t)

	v, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion(), v)

	for _, table := range []string{"sessions", "session_frames", "frame_hands", "frame_landmarks"} {
		var name string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}

	for _, index := range []string{
		"idx_sessions_started_at",
		"idx_frame_hands_frame_id",
		"idx_frame_landmarks_hand_id",
	} {
		var name string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, index).Scan(&name)
		assert.NoError(t, err, "index %s", index)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Sessions().Create(&Session{ID: "keep", Source: "camera:0"}))
	require.NoError(t, s.Close())

	s, err = New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Sessions().GetByID("keep")
	assert.NoError(t, err)
}

func TestNew_RejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	require.NoError(t, err)
	_, err = s.DB().Exec(`PRAGMA user_version = 99`)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = New(dbPath)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestNew_ForeignKeysEnabled(t *testing.T) {
	s := newTestStore(t)

	// Check on several pooled connections.
	for i := 0; i < 3; i++ {
		var fk int
		require.NoError(t, s.DB().QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
		assert.Equal(t, 1, fk)
	}
}

func TestClose(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.DB().Ping(), "database should be closed")
}
