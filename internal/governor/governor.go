// Package governor implements the deterministic constraint and
// intent-fusion layer that turns a raw coefficient bundle into bounded,
// intent-respecting motion.
package governor

import (
	"log"
	"math"

	"github.com/relayframe/personagen/internal/coeffs"
	"github.com/relayframe/personagen/internal/intent"
	"github.com/relayframe/personagen/internal/style"
)

const (
	exprSafetyEnvelope = 3.0

	// compactGateBase and compactGateSpan define the scalar-gate formula for
	// compact/latent bundles: out = in * (base + span*clamp(intent,0,1)).
	// The 0.7 lower bound is an empirical, renderer-specific constant —
	// callers targeting a different renderer may need to retune it; it is
	// intentionally not exported as a universal const.
	compactGateBase = 0.7
	compactGateSpan = 0.25
)

// Govern is a pure function: it never returns an error. On any internal
// anomaly (shape mismatch, unreadable audio, NaN in input) it logs a single
// warning and returns the input bundle unchanged, so the render stage can
// still proceed (errs.KindGovernorNoOp).
func Govern(bundle *coeffs.Bundle, audioPath string, timing intent.IntentTimingMap, prof style.Profile) *coeffs.Bundle {
	if bundle == nil || bundle.T() == 0 {
		log.Printf("[governor] empty bundle, returning unchanged (GovernorNoOp)")
		return bundle
	}
	if containsNaNOrInf(bundle) {
		log.Printf("[governor] input contains NaN/Inf, returning unchanged (GovernorNoOp)")
		return bundle
	}
	if err := timing.Validate(); err != nil {
		log.Printf("[governor] invalid timing map (%v), returning unchanged (GovernorNoOp)", err)
		return bundle
	}

	frameCount := timing.FrameCount()
	if frameCount != bundle.T() {
		log.Printf("[governor] shape mismatch: bundle has %d frames, timing map implies %d, returning unchanged (GovernorNoOp)", bundle.T(), frameCount)
		return bundle
	}

	a, err := audioMask(audioPath, frameCount, timing.FPS)
	if err != nil {
		log.Printf("[governor] failed to compute audio mask (%v), returning unchanged (GovernorNoOp)", err)
		return bundle
	}
	s := scriptMask(timing, frameCount, timing.FPS)

	fused := make(intent.IntentMask, frameCount)
	for t := range fused {
		fused[t] = a[t] * s[t]
	}
	fused.Clamp()

	if bundle.IsCompact() {
		return governCompact(bundle, fused)
	}
	return governExplicit(bundle, a, s, fused, timing, prof)
}

func containsNaNOrInf(b *coeffs.Bundle) bool {
	for _, frame := range b.Frames {
		for _, v := range frame {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

// governCompact applies the scalar-gate-only path for latent bundles:
// out[t] = in[t] * (0.7 + 0.25*clamp(intent[t], 0, 1)).
func governCompact(bundle *coeffs.Bundle, fused []float64) *coeffs.Bundle {
	out := bundle.Clone()
	for t, frame := range out.Frames {
		m := clamp(fused[t], 0, 1)
		gate := compactGateBase + compactGateSpan*m
		for i := range frame {
			frame[i] *= gate
		}
	}
	return out
}

func governExplicit(bundle *coeffs.Bundle, a, s, fused []float64, timing intent.IntentTimingMap, prof style.Profile) *coeffs.Bundle {
	if bundle.PoseRange.Len() != 3 {
		log.Printf("[governor] pose range has %d channels, expected 3 (yaw,pitch,roll), returning unchanged (GovernorNoOp)", bundle.PoseRange.Len())
		return bundle
	}

	out := bundle.Clone()
	poseMax := [3]float64{prof.PoseMax.Yaw, prof.PoseMax.Pitch, prof.PoseMax.Roll}
	poseScale := [3]float64{prof.PoseScale.Yaw, prof.PoseScale.Pitch, prof.PoseScale.Roll}

	// Step 1: clamp.
	for _, frame := range out.Frames {
		for k := 0; k < 3; k++ {
			idx := out.PoseRange.Start + k
			if out.LipChannels[idx] {
				continue
			}
			frame[idx] = clamp(frame[idx], -poseMax[k], poseMax[k])
		}
		for idx := out.ExpRange.Start; idx < out.ExpRange.End; idx++ {
			if out.LipChannels[idx] {
				continue
			}
			frame[idx] = clamp(frame[idx], -exprSafetyEnvelope, exprSafetyEnvelope)
		}
	}

	// Steps 3-4: intent gate + style scale, combined per frame.
	for t, frame := range out.Frames {
		m := fused[t]
		for k := 0; k < 3; k++ {
			idx := out.PoseRange.Start + k
			if out.LipChannels[idx] {
				continue
			}
			frame[idx] = frame[idx] * m * poseScale[k]
		}
		for idx := out.ExpRange.Start; idx < out.ExpRange.End; idx++ {
			if out.LipChannels[idx] {
				continue
			}
			frame[idx] = frame[idx] * m * prof.ExprStrength
		}
	}

	// Step 5: IIR temporal smoothing on pose + expression channels only.
	smoothChannels(out, prof.Smoothing)

	// Step 6: pause-frame override.
	for t, frame := range out.Frames {
		if a[t] != 0.05 || s[t] != 0.0 {
			continue
		}
		for k := 0; k < 3; k++ {
			idx := out.PoseRange.Start + k
			if out.LipChannels[idx] {
				continue
			}
			frame[idx] *= 1 - prof.StillnessOnPause
		}
		for idx := out.ExpRange.Start; idx < out.ExpRange.End; idx++ {
			if out.LipChannels[idx] {
				continue
			}
			frame[idx] *= 1 - prof.StillnessExprOnPause
		}
	}

	// Step 7: sentence-end nod, globally rate-limited.
	applyNods(out, timing, prof)

	return out
}

func smoothChannels(b *coeffs.Bundle, smoothing float64) {
	if len(b.Frames) == 0 {
		return
	}
	alpha := 1 - smoothing
	channels := make([]int, 0, b.PoseRange.Len()+b.ExpRange.Len())
	for idx := b.PoseRange.Start; idx < b.PoseRange.End; idx++ {
		if !b.LipChannels[idx] {
			channels = append(channels, idx)
		}
	}
	for idx := b.ExpRange.Start; idx < b.ExpRange.End; idx++ {
		if !b.LipChannels[idx] {
			channels = append(channels, idx)
		}
	}

	prev := make([]float64, len(channels))
	for i, idx := range channels {
		prev[i] = b.Frames[0][idx]
	}

	for t := 1; t < len(b.Frames); t++ {
		for i, idx := range channels {
			x := b.Frames[t][idx]
			y := alpha*x + (1-alpha)*prev[i]
			b.Frames[t][idx] = y
			prev[i] = y
		}
	}
}

// applyNods adds style.NodAmplitude to the pitch channel at the frame
// closest to each sentence_end segment's boundary, skipping triggers that
// would fire sooner than 1/nod_rate after the previous accepted nod. A
// nod_rate of 0 disables nods entirely.
func applyNods(b *coeffs.Bundle, timing intent.IntentTimingMap, prof style.Profile) {
	if prof.NodRate <= 0 {
		return
	}
	pitchIdx := b.PoseRange.Start + 1
	if b.LipChannels[pitchIdx] {
		return
	}

	minInterval := 1.0 / prof.NodRate
	lastAccepted := math.Inf(-1)

	for _, seg := range timing.Segments {
		if !seg.SentenceEnd {
			continue
		}
		boundaryTime := seg.EndTime
		if boundaryTime-lastAccepted < minInterval {
			continue
		}
		frameIdx := int(boundaryTime*float64(timing.FPS) + 0.5)
		if frameIdx < 0 || frameIdx >= len(b.Frames) {
			continue
		}
		b.Frames[frameIdx][pitchIdx] += prof.NodAmplitude
		lastAccepted = boundaryTime
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
