package store

import "fmt"

// migrations are applied in order; the schema version stored in
// PRAGMA user_version is the number already applied.
var migrations = []string{
	`CREATE TABLE sessions (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		threshold REAL NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	);
	CREATE INDEX idx_sessions_started_at ON sessions(started_at)`,

	// Frames without hands get a row so playback keeps its timing.
	`CREATE TABLE session_frames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL,
		captured_at DATETIME NOT NULL,
		UNIQUE(session_id, sequence)
	);
	CREATE TABLE frame_hands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		frame_id INTEGER NOT NULL REFERENCES session_frames(id) ON DELETE CASCADE,
		hand_index INTEGER NOT NULL,
		handedness TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL DEFAULT 0
	);
	CREATE TABLE frame_landmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hand_id INTEGER NOT NULL REFERENCES frame_hands(id) ON DELETE CASCADE,
		landmark_index INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		visibility REAL NOT NULL,
		presence REAL NOT NULL
	);
	CREATE INDEX idx_frame_hands_frame_id ON frame_hands(frame_id);
	CREATE INDEX idx_frame_landmarks_hand_id ON frame_landmarks(hand_id)`,
}

// SchemaVersion is the schema version of a fully migrated database.
func SchemaVersion() int {
	return len(migrations)
}

// Version returns the schema version of the open database.
func (s *Store) Version() (int, error) {
	var v int
	err := s.db.QueryRow(`PRAGMA user_version`).Scan(&v)
	return v, err
}

func (s *Store) migrate() error {
	current, err := s.Version()
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported %d", current, len(migrations))
	}

	for v := current; v < len(migrations); v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
