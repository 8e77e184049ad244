package governor

import (
	"github.com/relayframe/personagen/internal/intent"
)

// scriptMask computes the per-frame script mask s[t]: 0 during pause_after
// windows, 1 within a segment, boosted (capped 1.3)
// when the segment carries emphasis.
func scriptMask(timing intent.IntentTimingMap, frameCount, fps int) []float64 {
	mask := make([]float64, frameCount)
	fpsF := float64(fps)

	for t := 0; t < frameCount; t++ {
		frameTime := float64(t) / fpsF
		seg, inSegment := timing.SegmentAt(frameTime)
		if !inSegment {
			mask[t] = 0.0
			continue
		}
		mask[t] = segmentMaskValue(seg)
	}
	return mask
}

func segmentMaskValue(seg intent.TimingSegment) float64 {
	if len(seg.Emphasis) == 0 {
		return 1.0
	}
	tokenCount := seg.TokenCount
	if tokenCount < 1 {
		tokenCount = 1
	}
	boost := 1.0 + 0.3*(float64(len(seg.Emphasis))/float64(tokenCount))
	if boost > 1.3 {
		boost = 1.3
	}
	return boost
}
