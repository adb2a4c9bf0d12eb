package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ayusman/betterkle/internal/detector"
)

// Frame is one recorded detection batch.
type Frame struct {
	Sequence   int            `json:"sequence"`
	CapturedAt time.Time      `json:"captured_at"`
	Batch      detector.Batch `json:"hands"`
}

// FrameRepository stores per-frame landmark batches for a session.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Append records a frame's batch in a single transaction.
// Frames without hands are recorded too so that playback keeps timing.
func (r *FrameRepository) Append(sessionID string, seq int, at time.Time, batch detector.Batch) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO session_frames (session_id, sequence, captured_at) VALUES (?, ?, ?)`,
		sessionID, seq, at,
	)
	if err != nil {
		return fmt.Errorf("insert frame %d: %w", seq, err)
	}
	frameID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		lmStmt, err := tx.Prepare(
			`INSERT INTO frame_landmarks (hand_id, landmark_index, x, y, z, visibility, presence)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer lmStmt.Close()

		for h, hand := range batch {
			res, err := tx.Exec(
				`INSERT INTO frame_hands (frame_id, hand_index, handedness, score) VALUES (?, ?, ?, ?)`,
				frameID, h, hand.Handedness, hand.Score,
			)
			if err != nil {
				return fmt.Errorf("insert hand %d: %w", h, err)
			}
			handID, err := res.LastInsertId()
			if err != nil {
				return err
			}

			for i, lm := range hand.Landmarks {
				if _, err := lmStmt.Exec(handID, i, lm.X, lm.Y, lm.Z, lm.Visibility, lm.Presence); err != nil {
					return fmt.Errorf("insert landmark %d/%d: %w", h, i, err)
				}
			}
		}
	}

	return tx.Commit()
}

// Load returns every recorded frame of a session in sequence order.
func (r *FrameRepository) Load(sessionID string) ([]Frame, error) {
	rows, err := r.db.Query(
		`SELECT f.sequence, f.captured_at,
		        h.hand_index, h.handedness, h.score,
		        l.landmark_index, l.x, l.y, l.z, l.visibility, l.presence
		 FROM session_frames f
		 LEFT JOIN frame_hands h ON h.frame_id = f.id
		 LEFT JOIN frame_landmarks l ON l.hand_id = h.id
		 WHERE f.session_id = ?
		 ORDER BY f.sequence, h.hand_index, l.landmark_index`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var (
			seq        int
			capturedAt time.Time
			handIndex  sql.NullInt64
			handedness sql.NullString
			score      sql.NullFloat64
			lmIndex    sql.NullInt64
			x, y, z    sql.NullFloat64
			vis, pres  sql.NullFloat64
		)
		if err := rows.Scan(&seq, &capturedAt, &handIndex, &handedness, &score,
			&lmIndex, &x, &y, &z, &vis, &pres); err != nil {
			return nil, err
		}

		if len(frames) == 0 || frames[len(frames)-1].Sequence != seq {
			frames = append(frames, Frame{Sequence: seq, CapturedAt: capturedAt, Batch: detector.Batch{}})
		}
		frame := &frames[len(frames)-1]

		if !handIndex.Valid {
			continue
		}
		if int(handIndex.Int64) >= len(frame.Batch) {
			frame.Batch = append(frame.Batch, detector.Hand{
				Handedness: handedness.String,
				Score:      score.Float64,
				Landmarks:  []detector.Landmark{},
			})
		}
		hand := &frame.Batch[len(frame.Batch)-1]

		if !lmIndex.Valid {
			continue
		}
		hand.Landmarks = append(hand.Landmarks, detector.Landmark{
			X:          x.Float64,
			Y:          y.Float64,
			Z:          z.Float64,
			Visibility: vis.Float64,
			Presence:   pres.Float64,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// Count returns the number of frames recorded for a session.
func (r *FrameRepository) Count(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM session_frames WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
