package motion

import (
	"sync"

	"github.com/ayusman/betterkle/internal/detector"
)

// PressEvent reports a finger going down on one hand slot.
type PressEvent struct {
	Hand       int             `json:"hand"`
	Handedness string          `json:"handedness,omitempty"`
	Finger     detector.Finger `json:"finger"`
}

type pressKey struct {
	hand   int
	finger detector.Finger
}

// PressDetector turns per-frame press state into edge-triggered events, so a
// finger held down is reported once.
type PressDetector struct {
	zThreshold float64
	mu         sync.Mutex
	down       map[pressKey]bool
}

// NewPressDetector creates a PressDetector. Non-positive thresholds fall
// back to DefaultPressThreshold.
func NewPressDetector(zThreshold float64) *PressDetector {
	if zThreshold <= 0 {
		zThreshold = DefaultPressThreshold
	}
	return &PressDetector{
		zThreshold: zThreshold,
		down:       make(map[pressKey]bool),
	}
}

// Update consumes one frame and returns the presses that started in it.
// Hands that disappear release all their fingers.
func (p *PressDetector) Update(batch detector.Batch) []PressEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var events []PressEvent
	seen := make(map[pressKey]bool)

	for h, hand := range batch {
		for f := detector.Thumb; f < detector.NumFingers; f++ {
			key := pressKey{hand: h, finger: f}
			if !handPressed(hand, f, p.zThreshold) {
				continue
			}
			seen[key] = true
			if !p.down[key] {
				events = append(events, PressEvent{Hand: h, Handedness: hand.Handedness, Finger: f})
			}
		}
	}

	p.down = seen
	return events
}

// Pressed returns the fingers currently held down on hand slot h.
func (p *PressDetector) Pressed(h int) []detector.Finger {
	p.mu.Lock()
	defer p.mu.Unlock()

	var fingers []detector.Finger
	for f := detector.Thumb; f < detector.NumFingers; f++ {
		if p.down[pressKey{hand: h, finger: f}] {
			fingers = append(fingers, f)
		}
	}
	return fingers
}
