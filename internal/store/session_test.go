package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/betterkle/internal/detector"
)

// newTestStore creates a new Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{Source: "camera:0", Threshold: 0.005}
	require.NoError(t, repo.Create(sess))

	_, err := uuid.Parse(sess.ID)
	assert.NoError(t, err, "generated ID should be a UUID")
	assert.False(t, sess.StartedAt.IsZero())

	got, err := repo.GetByID(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "camera:0", got.Source)
	assert.Equal(t, 0.005, got.Threshold)
	assert.Nil(t, got.EndedAt)
	assert.WithinDuration(t, sess.StartedAt, got.StartedAt, time.Second)
}

func TestSessionRepository_End(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{ID: "fixed-id", Source: "file:demo.mp4", Threshold: 0.01}
	require.NoError(t, repo.Create(sess))

	end := time.Now()
	require.NoError(t, repo.End(sess.ID, end))

	got, err := repo.GetByID(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EndedAt)
	assert.WithinDuration(t, end, *got.EndedAt, time.Second)

	assert.ErrorIs(t, repo.End("missing", end), ErrNotFound)
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(&Session{
			ID:        id,
			Source:    "camera:0",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	sessions, err := repo.List()
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "c", sessions[0].ID, "newest first")
	assert.Equal(t, "a", sessions[2].ID)
}

func TestSessionRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{Source: "camera:0"}
	require.NoError(t, s.Sessions().Create(sess))
	require.NoError(t, s.Frames().Append(sess.ID, 0, time.Now(), detector.Batch{detector.OpenPalm()}))

	require.NoError(t, s.Sessions().Delete(sess.ID))
	assert.ErrorIs(t, s.Sessions().Delete(sess.ID), ErrNotFound)

	var landmarks int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM frame_landmarks`).Scan(&landmarks))
	assert.Zero(t, landmarks, "landmarks should be removed with their session")
}

func TestFrameRepository_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{Source: "camera:0"}
	require.NoError(t, s.Sessions().Create(sess))

	short := detector.Hand{
		Handedness: "Left",
		Score:      0.5,
		Landmarks:  []detector.Landmark{{X: 0.1, Y: 0.2, Z: -0.3, Visibility: -1, Presence: 0.4}},
	}
	batches := []detector.Batch{
		{detector.OpenPalm(), detector.ThumbsUp()},
		{},
		{short, {Landmarks: []detector.Landmark{}}},
	}

	now := time.Now()
	for i, b := range batches {
		require.NoError(t, s.Frames().Append(sess.ID, i, now.Add(time.Duration(i)*time.Millisecond), b))
	}

	n, err := s.Frames().Count(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	frames, err := s.Frames().Load(sess.ID)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	for i, f := range frames {
		assert.Equal(t, i, f.Sequence)
		if diff := cmp.Diff(batches[i], f.Batch); diff != "" {
			t.Errorf("frame %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestFrameRepository_DuplicateSequence(t *testing.T) {
	s := newTestStore(t)

	sess := &Session{Source: "camera:0"}
	require.NoError(t, s.Sessions().Create(sess))
	require.NoError(t, s.Frames().Append(sess.ID, 7, time.Now(), nil))

	assert.Error(t, s.Frames().Append(sess.ID, 7, time.Now(), nil))
}

func TestFrameRepository_UnknownSession(t *testing.T) {
	s := newTestStore(t)

	assert.Error(t, s.Frames().Append("missing", 0, time.Now(), nil), "foreign key should reject unknown session")

	frames, err := s.Frames().Load("missing")
	require.NoError(t, err)
	assert.Empty(t, frames)
}
