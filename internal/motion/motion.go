// Package motion derives hand and finger movement from landmark batches.
//
// Finger movement is measured relative to the palm: the mean of the wrist
// and finger base landmarks gives the hand's overall position, which can be
// subtracted so that only finger motion remains.
package motion

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/betterkle/internal/detector"
)

// DefaultPressThreshold is the z-depth difference between a fingertip and
// its base that counts as a press.
const DefaultPressThreshold = 0.02

// BaseLandmarks are the landmarks that move with the palm rather than the fingers.
var BaseLandmarks = []int{
	detector.Wrist,
	detector.ThumbCMC,
	detector.IndexMCP,
	detector.MiddleMCP,
	detector.RingMCP,
	detector.PinkyMCP,
}

// Vec3 is a displacement in normalized landmark space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// GeneralMovement returns, per hand, the mean position of its base landmarks.
// Base landmarks missing from a short hand are left out of the mean; a hand
// with none of them yields the zero vector. Returns nil for an empty batch.
func GeneralMovement(batch detector.Batch) []Vec3 {
	if len(batch) == 0 {
		return nil
	}

	movements := make([]Vec3, len(batch))
	xs := make([]float64, 0, len(BaseLandmarks))
	ys := make([]float64, 0, len(BaseLandmarks))
	zs := make([]float64, 0, len(BaseLandmarks))

	for h, hand := range batch {
		xs, ys, zs = xs[:0], ys[:0], zs[:0]
		for _, idx := range BaseLandmarks {
			lm, ok := hand.Landmark(idx)
			if !ok {
				continue
			}
			xs = append(xs, lm.X)
			ys = append(ys, lm.Y)
			zs = append(zs, lm.Z)
		}
		if len(xs) == 0 {
			continue
		}
		movements[h] = Vec3{
			X: stat.Mean(xs, nil),
			Y: stat.Mean(ys, nil),
			Z: stat.Mean(zs, nil),
		}
	}

	return movements
}

// RotationMovement returns, per hand, the vector from the wrist to the index
// finger base. Its direction tracks the rotation of the palm.
// Returns nil for an empty batch.
func RotationMovement(batch detector.Batch) []Vec3 {
	if len(batch) == 0 {
		return nil
	}

	movements := make([]Vec3, len(batch))
	for h, hand := range batch {
		wrist, ok1 := hand.Landmark(detector.Wrist)
		base, ok2 := hand.Landmark(detector.IndexMCP)
		if !ok1 || !ok2 {
			continue
		}
		movements[h] = Vec3{
			X: base.X - wrist.X,
			Y: base.Y - wrist.Y,
			Z: base.Z - wrist.Z,
		}
	}
	return movements
}

// FixFingerMovement subtracts each hand's movement from all of its landmarks.
// Confidence scores are kept. The input batch is returned untouched if either
// argument is empty; hands beyond the end of movements are copied unchanged.
func FixFingerMovement(batch detector.Batch, movements []Vec3) detector.Batch {
	if len(batch) == 0 || len(movements) == 0 {
		return batch
	}

	fixed := make(detector.Batch, len(batch))
	for h, hand := range batch {
		out := hand.Clone()
		if h < len(movements) {
			m := movements[h]
			for i := range out.Landmarks {
				out.Landmarks[i].X -= m.X
				out.Landmarks[i].Y -= m.Y
				out.Landmarks[i].Z -= m.Z
			}
		}
		fixed[h] = out
	}
	return fixed
}

// IsFingerPressed reports whether, on any hand, the finger's tip is closer
// to the camera than its base by more than zThreshold.
func IsFingerPressed(batch detector.Batch, finger detector.Finger, zThreshold float64) bool {
	for _, hand := range batch {
		if handPressed(hand, finger, zThreshold) {
			return true
		}
	}
	return false
}

func handPressed(hand detector.Hand, finger detector.Finger, zThreshold float64) bool {
	if finger < 0 || finger >= detector.NumFingers {
		return false
	}
	base, ok1 := hand.Landmark(finger.Base())
	tip, ok2 := hand.Landmark(finger.Tip())
	if !ok1 || !ok2 {
		return false
	}
	return tip.Z-base.Z < -zThreshold
}
