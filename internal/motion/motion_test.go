package motion

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ayusman/betterkle/internal/detector"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func pressedHand(f detector.Finger, depth float64) detector.Hand {
	h := detector.OpenPalm()
	h.Landmarks[f.Tip()].Z = h.Landmarks[f.Base()].Z - depth
	return h
}

func TestGeneralMovement(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		if got := GeneralMovement(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("mean of base landmarks", func(t *testing.T) {
		hand := detector.Hand{Landmarks: make([]detector.Landmark, detector.NumLandmarks)}
		for i, idx := range BaseLandmarks {
			hand.Landmarks[idx] = detector.Landmark{X: float64(i), Y: 2 * float64(i), Z: -float64(i)}
		}
		// Fingertips must not affect the mean.
		hand.Landmarks[detector.IndexTip] = detector.Landmark{X: 100, Y: 100, Z: 100}

		got := GeneralMovement(detector.Batch{hand})

		want := []Vec3{{X: 2.5, Y: 5, Z: -2.5}}
		if diff := cmp.Diff(want, got, approx); diff != "" {
			t.Errorf("GeneralMovement() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("one entry per hand", func(t *testing.T) {
		got := GeneralMovement(detector.Batch{detector.OpenPalm(), detector.ThumbsUp(), {}})
		if len(got) != 3 {
			t.Fatalf("expected 3 movements, got %d", len(got))
		}
		if got[2] != (Vec3{}) {
			t.Errorf("hand without landmarks should yield zero vector, got %+v", got[2])
		}
	})

	t.Run("short hand averages what exists", func(t *testing.T) {
		hand := detector.Hand{Landmarks: []detector.Landmark{{X: 1}, {X: 3}}}
		got := GeneralMovement(detector.Batch{hand})
		if math.Abs(got[0].X-2) > 1e-9 {
			t.Errorf("X = %f, want 2", got[0].X)
		}
	})
}

func TestRotationMovement(t *testing.T) {
	if got := RotationMovement(detector.Batch{}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}

	hand := detector.OpenPalm()
	got := RotationMovement(detector.Batch{hand, {}})

	want := []Vec3{
		{
			X: hand.Landmarks[detector.IndexMCP].X - hand.Landmarks[detector.Wrist].X,
			Y: hand.Landmarks[detector.IndexMCP].Y - hand.Landmarks[detector.Wrist].Y,
			Z: hand.Landmarks[detector.IndexMCP].Z - hand.Landmarks[detector.Wrist].Z,
		},
		{},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("RotationMovement() mismatch (-want +got):\n%s", diff)
	}
}

func TestFixFingerMovement(t *testing.T) {
	t.Run("returns input when empty", func(t *testing.T) {
		batch := detector.Batch{detector.OpenPalm()}
		got := FixFingerMovement(batch, nil)
		if diff := cmp.Diff(batch, got); diff != "" {
			t.Errorf("expected untouched batch (-want +got):\n%s", diff)
		}
		if got := FixFingerMovement(nil, []Vec3{{X: 1}}); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("subtracts movement and keeps confidence", func(t *testing.T) {
		hand := detector.Hand{Landmarks: []detector.Landmark{
			{X: 0.5, Y: 0.6, Z: 0.1, Visibility: 0.7, Presence: 0.8},
		}}
		got := FixFingerMovement(detector.Batch{hand}, []Vec3{{X: 0.1, Y: 0.2, Z: 0.3}})

		want := detector.Landmark{X: 0.4, Y: 0.4, Z: -0.2, Visibility: 0.7, Presence: 0.8}
		if diff := cmp.Diff(want, got[0].Landmarks[0], approx); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if hand.Landmarks[0].X != 0.5 {
			t.Error("input hand was modified")
		}
	})

	t.Run("centers the palm", func(t *testing.T) {
		batch := detector.Batch{detector.ThumbsUp()}
		fixed := FixFingerMovement(batch, GeneralMovement(batch))

		center := GeneralMovement(fixed)[0]
		if diff := cmp.Diff(Vec3{}, center, approx); diff != "" {
			t.Errorf("expected palm centered at origin (-want +got):\n%s", diff)
		}
	})

	t.Run("hands without movement pass through", func(t *testing.T) {
		batch := detector.Batch{detector.OpenPalm(), detector.ThumbsUp()}
		got := FixFingerMovement(batch, []Vec3{{X: 1}})
		if diff := cmp.Diff(batch[1], got[1]); diff != "" {
			t.Errorf("second hand should be unchanged (-want +got):\n%s", diff)
		}
	})
}

func TestIsFingerPressed(t *testing.T) {
	tests := []struct {
		name   string
		batch  detector.Batch
		finger detector.Finger
		want   bool
	}{
		{"no hands", nil, detector.Index, false},
		{"open palm is not pressed", detector.Batch{detector.OpenPalm()}, detector.Index, false},
		{"index pressed", detector.Batch{pressedHand(detector.Index, 0.05)}, detector.Index, true},
		{"other finger not pressed", detector.Batch{pressedHand(detector.Index, 0.05)}, detector.Ring, false},
		{"exactly at threshold is not pressed", detector.Batch{pressedHand(detector.Middle, 0.02)}, detector.Middle, false},
		{"any hand counts", detector.Batch{detector.OpenPalm(), pressedHand(detector.Pinky, 0.1)}, detector.Pinky, true},
		{"tip further away is not pressed", detector.Batch{pressedHand(detector.Thumb, -0.1)}, detector.Thumb, false},
		{"invalid finger", detector.Batch{pressedHand(detector.Index, 0.05)}, detector.Finger(9), false},
		{"short hand", detector.Batch{{Landmarks: make([]detector.Landmark, 3)}}, detector.Index, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFingerPressed(tt.batch, tt.finger, DefaultPressThreshold); got != tt.want {
				t.Errorf("IsFingerPressed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPressDetector(t *testing.T) {
	p := NewPressDetector(0)
	pressed := detector.Batch{pressedHand(detector.Index, 0.05)}
	released := detector.Batch{detector.OpenPalm()}

	events := p.Update(pressed)
	if len(events) != 1 || events[0].Finger != detector.Index || events[0].Hand != 0 {
		t.Fatalf("expected one index press, got %+v", events)
	}
	if events[0].Handedness != "Right" {
		t.Errorf("expected handedness Right, got %q", events[0].Handedness)
	}

	if events := p.Update(pressed); len(events) != 0 {
		t.Errorf("held press should not repeat, got %+v", events)
	}
	if got := p.Pressed(0); len(got) != 1 || got[0] != detector.Index {
		t.Errorf("Pressed(0) = %v", got)
	}

	p.Update(released)
	if got := p.Pressed(0); len(got) != 0 {
		t.Errorf("expected release, Pressed(0) = %v", got)
	}

	if events := p.Update(pressed); len(events) != 1 {
		t.Errorf("press after release should fire again, got %+v", events)
	}

	p.Update(nil)
	if events := p.Update(pressed); len(events) != 1 {
		t.Errorf("hand leaving should release its fingers, got %+v", events)
	}
}
