// Package detector provides hand detection interfaces and landmark types.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// HandConnections lists the landmark pairs drawn as the hand skeleton.
var HandConnections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{Wrist, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{Wrist, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Landmark is a single detected hand point.
// X and Y are normalized image coordinates and are not clamped to [0,1].
// Visibility and Presence are detector confidence scores; negative values
// mean the detector did not report them.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
	Presence   float64 `json:"presence"`
}

// Hand is the ordered landmark sequence of one detected hand.
// A well-formed hand has NumLandmarks entries.
type Hand struct {
	Landmarks  []Landmark `json:"landmarks"`
	Handedness string     `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64    `json:"score"`
}

// Batch holds every hand detected in one frame, in detector order.
type Batch []Hand

// Distance returns the Euclidean distance between two landmarks over x, y and z.
func Distance(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Landmark returns the landmark at index i and whether it exists.
func (h Hand) Landmark(i int) (Landmark, bool) {
	if i < 0 || i >= len(h.Landmarks) {
		return Landmark{}, false
	}
	return h.Landmarks[i], true
}

// Clone returns a copy of the hand that shares no memory with h.
func (h Hand) Clone() Hand {
	out := h
	if h.Landmarks != nil {
		out.Landmarks = make([]Landmark, len(h.Landmarks))
		copy(out.Landmarks, h.Landmarks)
	}
	return out
}

// Clone returns a deep copy of the batch.
func (b Batch) Clone() Batch {
	if b == nil {
		return nil
	}
	out := make(Batch, len(b))
	for i, h := range b {
		out[i] = h.Clone()
	}
	return out
}

// Finger identifies one of the five fingers.
type Finger int

// Fingers in landmark order.
const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

var fingerNames = [...]string{"thumb", "index", "middle", "ring", "pinky"}

func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return "unknown"
	}
	return fingerNames[f]
}

// ParseFinger returns the finger with the given name.
func ParseFinger(name string) (Finger, bool) {
	for i, n := range fingerNames {
		if n == name {
			return Finger(i), true
		}
	}
	return 0, false
}

// Base returns the landmark index of the finger's base joint.
func (f Finger) Base() int { return int(f)*4 + 1 }

// Tip returns the landmark index of the finger's tip.
func (f Finger) Tip() int { return int(f)*4 + 4 }
