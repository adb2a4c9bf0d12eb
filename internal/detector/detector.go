package detector

import "gocv.io/x/gocv"

// Detector finds hands in video frames.
type Detector interface {
	// Detect returns the hands found in frame, in detector order. A frame
	// without hands yields an empty batch.
	Detect(frame *gocv.Mat) (Batch, error)
	Close() error
}

// Config tunes the hand landmarker.
type Config struct {
	MaxHands        int
	ModelComplexity int     // 0 (lite) or 1 (full)
	MinConfidence   float64 // detection, 0-1
	MinTrackingConf float64 // tracking, 0-1

	// ModelPath is the hand landmarker .task file passed to the service.
	ModelPath string
}

// DefaultConfig returns the landmarker settings of the stock demo.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		ModelComplexity: 1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
