package styleextract

import (
	"math"
	"testing"
)

func TestBoundingBoxTracker_CenteredFaceIsNeutral(t *testing.T) {
	w, h := 10, 10
	pixels := make([]byte, w*h)
	// Bright blob centered in the frame.
	for y := 4; y <= 5; y++ {
		for x := 4; x <= 5; x++ {
			pixels[y*w+x] = 255
		}
	}
	f := Frame{Pixels: pixels, Width: w, Height: h}

	p, ok := BoundingBoxTracker{}.Detect(f)
	if !ok {
		t.Fatal("expected a valid detection")
	}
	if math.Abs(p.yaw) > 0.2 || math.Abs(p.pitch) > 0.2 {
		t.Errorf("expected near-neutral pose for centered blob, got yaw=%f pitch=%f", p.yaw, p.pitch)
	}
	if p.roll != 0 {
		t.Errorf("bounding-box fallback must report roll=0, got %f", p.roll)
	}
}

func TestBoundingBoxTracker_OffsetFaceYawsRight(t *testing.T) {
	w, h := 10, 10
	pixels := make([]byte, w*h)
	for y := 4; y <= 5; y++ {
		for x := 8; x <= 9; x++ {
			pixels[y*w+x] = 255
		}
	}
	f := Frame{Pixels: pixels, Width: w, Height: h}

	p, ok := BoundingBoxTracker{}.Detect(f)
	if !ok {
		t.Fatal("expected a valid detection")
	}
	if p.yaw <= 0 {
		t.Errorf("expected positive yaw for a face offset to the right, got %f", p.yaw)
	}
}

func TestBoundingBoxTracker_BlankFrameInvalid(t *testing.T) {
	f := Frame{Pixels: make([]byte, 100), Width: 10, Height: 10}
	_, ok := BoundingBoxTracker{}.Detect(f)
	if ok {
		t.Error("expected blank frame to be rejected as invalid")
	}
}

func TestDeriveProfile_LowMotionUsesCalmBranch(t *testing.T) {
	poses := make([]pose, 20)
	for i := range poses {
		poses[i] = pose{yaw: 0.01, pitch: 0.01, roll: 0.0}
	}

	p := deriveProfile("test", poses, 10.0)
	if p.Smoothing != 0.85 || p.StillnessOnPause != 0.90 || p.ExprStrength != 0.6 {
		t.Errorf("expected low-motion branch values, got smoothing=%f stillness=%f expr=%f",
			p.Smoothing, p.StillnessOnPause, p.ExprStrength)
	}
}

func TestDeriveProfile_HighMotionUsesEnergeticBranch(t *testing.T) {
	poses := make([]pose, 20)
	for i := range poses {
		if i%2 == 0 {
			poses[i] = pose{yaw: 0.5, pitch: 0.4, roll: 0.3}
		} else {
			poses[i] = pose{yaw: -0.5, pitch: -0.4, roll: -0.3}
		}
	}

	p := deriveProfile("test", poses, 10.0)
	if p.Smoothing != 0.60 || p.StillnessOnPause != 0.60 || p.ExprStrength != 1.0 {
		t.Errorf("expected high-motion branch values, got smoothing=%f stillness=%f expr=%f",
			p.Smoothing, p.StillnessOnPause, p.ExprStrength)
	}
	if p.NodRate <= 0 {
		t.Error("expected positive nod_rate from oscillating pitch series")
	}
}

func TestSignChanges(t *testing.T) {
	got := signChanges([]float64{1, -1, 1, -1, 1})
	if got != 4 {
		t.Errorf("signChanges() = %d, want 4", got)
	}
}
