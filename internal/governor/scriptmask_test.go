package governor

import (
	"testing"

	"github.com/relayframe/personagen/internal/intent"
)

func TestSegmentMaskValue_NoEmphasis(t *testing.T) {
	seg := intent.TimingSegment{TokenCount: 5}
	if got := segmentMaskValue(seg); got != 1.0 {
		t.Errorf("segmentMaskValue() = %f, want 1.0", got)
	}
}

func TestSegmentMaskValue_EmphasisBoost(t *testing.T) {
	seg := intent.TimingSegment{Emphasis: []string{"loud"}, TokenCount: 10}
	got := segmentMaskValue(seg)
	want := 1.0 + 0.3*(1.0/10.0)
	if got != want {
		t.Errorf("segmentMaskValue() = %f, want %f", got, want)
	}
}

func TestSegmentMaskValue_EmphasisCappedAt1_3(t *testing.T) {
	seg := intent.TimingSegment{Emphasis: []string{"a", "b", "c"}, TokenCount: 1}
	if got := segmentMaskValue(seg); got != 1.3 {
		t.Errorf("segmentMaskValue() = %f, want 1.3 (capped)", got)
	}
}

func TestSegmentMaskValue_ZeroTokenCountFloorsAt1(t *testing.T) {
	seg := intent.TimingSegment{Emphasis: []string{"a"}, TokenCount: 0}
	got := segmentMaskValue(seg)
	want := 1.0 + 0.3*(1.0/1.0)
	if got != want {
		t.Errorf("segmentMaskValue() = %f, want %f (tokenCount floored to 1)", got, want)
	}
}

func TestScriptMask_EmphasisAndPause(t *testing.T) {
	timing := intent.IntentTimingMap{
		Segments: []intent.TimingSegment{
			{SegmentIdx: 0, StartTime: 0, EndTime: 1.0, PauseAfter: 1.0, Emphasis: []string{"x"}, TokenCount: 4},
		},
		TotalDuration: 2.0,
		FPS:           1,
	}
	mask := scriptMask(timing, 2, 1)
	if want := 1.0 + 0.3*(1.0/4.0); mask[0] != want {
		t.Errorf("mask[0] = %f, want %f", mask[0], want)
	}
	if mask[1] != 0.0 {
		t.Errorf("mask[1] = %f, want 0.0 (pause window)", mask[1])
	}
}
