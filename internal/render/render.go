// Package render draws landmark overlays onto video frames.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/betterkle/internal/detector"
)

// Overlay style.
var (
	PointColor   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	EdgeColor    = color.RGBA{R: 220, G: 220, B: 220, A: 0}
	TextColor    = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	PressedColor = color.RGBA{R: 255, G: 64, B: 0, A: 0}
)

const (
	PointRadius   = 5
	PressedRadius = 12
	EdgeThickness = 2
)

// ToPixel maps a normalized landmark to pixel coordinates of a width x height
// image. Coordinates are truncated toward zero and not clamped.
func ToPixel(l detector.Landmark, width, height int) image.Point {
	return image.Point{
		X: int(l.X * float64(width)),
		Y: int(l.Y * float64(height)),
	}
}

// Visible reports whether the detector considered the landmark drawable.
func Visible(l detector.Landmark) bool {
	return l.Visibility >= 0 && l.Presence >= 0
}

// DrawHands draws every hand's landmarks and skeleton onto img.
// Edges referring to landmarks a hand does not have are skipped.
func DrawHands(img *gocv.Mat, batch detector.Batch) {
	if img == nil || img.Empty() {
		return
	}
	w, h := img.Cols(), img.Rows()

	for _, hand := range batch {
		for _, lm := range hand.Landmarks {
			if !Visible(lm) {
				continue
			}
			gocv.Circle(img, ToPixel(lm, w, h), PointRadius, PointColor, -1)
		}

		for _, c := range detector.HandConnections {
			a, ok1 := hand.Landmark(c[0])
			b, ok2 := hand.Landmark(c[1])
			if !ok1 || !ok2 {
				continue
			}
			gocv.Line(img, ToPixel(a, w, h), ToPixel(b, w, h), EdgeColor, EdgeThickness)
		}
	}
}

// DrawPressed rings the fingertip of every pressed finger on hand slot h.
func DrawPressed(img *gocv.Mat, batch detector.Batch, h int, fingers []detector.Finger) {
	if img == nil || img.Empty() || h < 0 || h >= len(batch) {
		return
	}
	w, ht := img.Cols(), img.Rows()

	for _, f := range fingers {
		tip, ok := batch[h].Landmark(f.Tip())
		if !ok {
			continue
		}
		gocv.Circle(img, ToPixel(tip, w, ht), PressedRadius, PressedColor, EdgeThickness)
	}
}

// FPSLabel formats the frame rate readout.
func FPSLabel(fps float64) string {
	return fmt.Sprintf("FPS: %.2f", fps)
}

// DrawFPS writes the frame rate in the top left corner.
func DrawFPS(img *gocv.Mat, fps float64) {
	if img == nil || img.Empty() {
		return
	}
	gocv.PutTextWithParams(img, FPSLabel(fps), image.Point{X: 10, Y: 30},
		gocv.FontHersheySimplex, 1.0, TextColor, 2, gocv.LineAA, false)
}
