package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    Batch
	sequence []Batch
	next     int
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the batch returned by every call to Detect.
func (m *MockDetector) SetHands(hands Batch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence makes Detect return each batch in turn.
// Once the sequence is exhausted the last batch is repeated.
func (m *MockDetector) SetSequence(batches []Batch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = batches
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		b := m.sequence[m.next]
		if m.next < len(m.sequence)-1 {
			m.next++
		}
		return b.Clone(), nil
	}
	return m.hands.Clone(), nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

func fixture(handedness string, points [NumLandmarks][3]float64) Hand {
	hand := Hand{
		Handedness: handedness,
		Score:      0.95,
		Landmarks:  make([]Landmark, NumLandmarks),
	}
	for i, p := range points {
		hand.Landmarks[i] = Landmark{X: p[0], Y: p[1], Z: p[2], Visibility: 0.9, Presence: 0.9}
	}
	return hand
}

// ThumbsUp returns a right hand with the thumb extended upward and the other
// fingers curled.
func ThumbsUp() Hand {
	return fixture("Right", [NumLandmarks][3]float64{
		Wrist: {0.5, 0.8, 0.0},

		ThumbCMC: {0.55, 0.75, 0.0},
		ThumbMCP: {0.58, 0.65, 0.0},
		ThumbIP:  {0.58, 0.50, 0.0},
		ThumbTip: {0.58, 0.35, 0.0},

		IndexMCP: {0.55, 0.70, -0.02},
		IndexPIP: {0.55, 0.68, -0.05},
		IndexDIP: {0.52, 0.70, -0.04},
		IndexTip: {0.50, 0.72, -0.02},

		MiddleMCP: {0.50, 0.68, -0.02},
		MiddlePIP: {0.50, 0.66, -0.05},
		MiddleDIP: {0.47, 0.68, -0.04},
		MiddleTip: {0.45, 0.70, -0.02},

		RingMCP: {0.45, 0.70, -0.02},
		RingPIP: {0.45, 0.68, -0.05},
		RingDIP: {0.42, 0.70, -0.04},
		RingTip: {0.40, 0.72, -0.02},

		PinkyMCP: {0.40, 0.72, -0.02},
		PinkyPIP: {0.40, 0.70, -0.05},
		PinkyDIP: {0.37, 0.72, -0.04},
		PinkyTip: {0.35, 0.74, -0.02},
	})
}

// OpenPalm returns a right hand with every finger extended.
func OpenPalm() Hand {
	return fixture("Right", [NumLandmarks][3]float64{
		Wrist: {0.5, 0.8, 0.0},

		ThumbCMC: {0.55, 0.75, 0.02},
		ThumbMCP: {0.62, 0.70, 0.03},
		ThumbIP:  {0.68, 0.65, 0.03},
		ThumbTip: {0.73, 0.60, 0.03},

		IndexMCP: {0.55, 0.68, 0.0},
		IndexPIP: {0.57, 0.55, 0.0},
		IndexDIP: {0.58, 0.45, 0.0},
		IndexTip: {0.58, 0.35, 0.0},

		MiddleMCP: {0.50, 0.66, 0.0},
		MiddlePIP: {0.50, 0.52, 0.0},
		MiddleDIP: {0.50, 0.40, 0.0},
		MiddleTip: {0.50, 0.28, 0.0},

		RingMCP: {0.45, 0.68, 0.0},
		RingPIP: {0.43, 0.55, 0.0},
		RingDIP: {0.42, 0.45, 0.0},
		RingTip: {0.42, 0.35, 0.0},

		PinkyMCP: {0.40, 0.70, 0.0},
		PinkyPIP: {0.37, 0.60, 0.0},
		PinkyDIP: {0.35, 0.50, 0.0},
		PinkyTip: {0.34, 0.42, 0.0},
	})
}
