// Package stabilizer suppresses frame-to-frame jitter in detected hand landmarks.
package stabilizer

import (
	"sync"

	"github.com/ayusman/betterkle/internal/detector"
)

// Movement thresholds in normalized image coordinates.
const (
	// DefaultThreshold is used by the capture session unless configured otherwise.
	DefaultThreshold = 0.005
	// LegacyThreshold is the looser setting some deployments run with.
	LegacyThreshold = 0.01
)

// Key identifies a tracked landmark by its position in the batch.
// Hands are keyed by slot, not identity, so a new hand taking over a slot
// starts from the previous occupant's positions.
type Key struct {
	Hand     int
	Landmark int
}

// Stabilizer holds each landmark at its last accepted position until it
// moves further than the threshold.
//
// State grows as new keys are seen and is only cleared by Reset. The zero
// value is not usable; construct with New.
type Stabilizer struct {
	threshold float64
	mu        sync.Mutex
	prev      map[Key]detector.Landmark
}

// New creates a Stabilizer. Negative thresholds are treated as 0.
func New(threshold float64) *Stabilizer {
	if threshold < 0 {
		threshold = 0
	}
	return &Stabilizer{
		threshold: threshold,
		prev:      make(map[Key]detector.Landmark),
	}
}

// Threshold returns the configured movement threshold.
func (s *Stabilizer) Threshold() float64 {
	return s.threshold
}

// Filter returns a batch of the same shape as batch where every landmark
// that moved no more than the threshold since it was last accepted is
// replaced by that accepted position. Hand metadata is taken from batch.
func (s *Stabilizer) Filter(batch detector.Batch) detector.Batch {
	out := make(detector.Batch, len(batch))
	if len(batch) == 0 {
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for h, hand := range batch {
		filtered := detector.Hand{
			Handedness: hand.Handedness,
			Score:      hand.Score,
			Landmarks:  make([]detector.Landmark, len(hand.Landmarks)),
		}

		for i, lm := range hand.Landmarks {
			key := Key{Hand: h, Landmark: i}

			held, ok := s.prev[key]
			if !ok || detector.Distance(lm, held) > s.threshold {
				s.prev[key] = lm
				filtered.Landmarks[i] = lm
				continue
			}
			filtered.Landmarks[i] = held
		}

		out[h] = filtered
	}

	return out
}

// Held returns the last accepted landmark for key.
func (s *Stabilizer) Held(key Key) (detector.Landmark, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lm, ok := s.prev[key]
	return lm, ok
}

// Len returns the number of tracked landmark keys.
func (s *Stabilizer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prev)
}

// Reset forgets every tracked landmark.
func (s *Stabilizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prev = make(map[Key]detector.Landmark)
}
