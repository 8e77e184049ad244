package coeffs

import "testing"

func makeBundle(t, d int) *Bundle {
	frames := make([][]float64, t)
	for i := range frames {
		frames[i] = make([]float64, d)
	}
	return &Bundle{Frames: frames}
}

func TestIsCompact(t *testing.T) {
	compact := makeBundle(10, 70)
	if !compact.IsCompact() {
		t.Error("expected D=70 to be compact")
	}

	explicit := makeBundle(10, 257)
	if explicit.IsCompact() {
		t.Error("expected D=257 to be explicit")
	}
}

func TestCloneIndependence(t *testing.T) {
	b := makeBundle(2, 3)
	b.Frames[0][0] = 1.0
	b.LipChannels = map[int]bool{0: true}

	clone := b.Clone()
	clone.Frames[0][0] = 99.0
	clone.LipChannels[1] = true

	if b.Frames[0][0] != 1.0 {
		t.Errorf("clone mutation leaked into original: %f", b.Frames[0][0])
	}
	if b.LipChannels[1] {
		t.Error("clone lip-channel mutation leaked into original")
	}
}

func TestSameShape(t *testing.T) {
	a := makeBundle(5, 10)
	b := makeBundle(5, 10)
	if !SameShape(a, b) {
		t.Error("expected same shape")
	}

	c := makeBundle(5, 11)
	if SameShape(a, c) {
		t.Error("expected different shape to be detected")
	}
}
