// Package coeffs defines the coefficient bundle data model and the adapter
// contract over the face-animation model's audio-to-motion stage.
package coeffs

import (
	"context"
	"fmt"
)

// compactThreshold is the dimension below which a bundle is treated as a
// compact/latent model rather than an explicit 3DMM-like layout: compact
// (D < 200, latent mode) or explicit (D >= 200, classical 3DMM-like
// layout).
const compactThreshold = 200

// ChannelRange names a contiguous half-open [Start, End) slice of a frame's
// channel dimension. The exact split is model-specific, so callers must
// parameterize it rather than hard-code any particular layout.
type ChannelRange struct {
	Start int
	End   int
}

func (r ChannelRange) Len() int { return r.End - r.Start }

// Bundle is a [T, D] table of per-frame real numbers plus the format
// metadata needed to interpret it: expression range, pose range, and the
// set of lip-owned (pass-through) channels.
type Bundle struct {
	// Frames[t] is the length-D coefficient vector for frame t.
	Frames [][]float64

	// ExpRange and PoseRange are only meaningful when !Compact.
	ExpRange  ChannelRange
	PoseRange ChannelRange

	// LipChannels is the bitset of channel indices the governor must never
	// touch, represented as a lookup set for O(1) membership tests.
	LipChannels map[int]bool
}

// T returns the frame count.
func (b *Bundle) T() int { return len(b.Frames) }

// D returns the per-frame channel dimension, or 0 for an empty bundle.
func (b *Bundle) D() int {
	if len(b.Frames) == 0 {
		return 0
	}
	return len(b.Frames[0])
}

// IsCompact reports whether this bundle is a compact/latent model
// (D < 200).
func (b *Bundle) IsCompact() bool {
	return b.D() < compactThreshold
}

// Clone returns a deep copy of the bundle, used by the governor so its
// output never aliases the input.
func (b *Bundle) Clone() *Bundle {
	frames := make([][]float64, len(b.Frames))
	for i, f := range b.Frames {
		cp := make([]float64, len(f))
		copy(cp, f)
		frames[i] = cp
	}
	lips := make(map[int]bool, len(b.LipChannels))
	for k, v := range b.LipChannels {
		lips[k] = v
	}
	return &Bundle{
		Frames:      frames,
		ExpRange:    b.ExpRange,
		PoseRange:   b.PoseRange,
		LipChannels: lips,
	}
}

// SameShape reports whether a and b have identical T and per-frame D.
func SameShape(a, b *Bundle) bool {
	if a.T() != b.T() {
		return false
	}
	for t := range a.Frames {
		if len(a.Frames[t]) != len(b.Frames[t]) {
			return false
		}
	}
	return true
}

// Source is the thin adapter over the face-animation model's motion
// proposal stage. It is a pure adapter: it runs the external model and
// returns whatever it produces, including its format metadata. It does not
// attempt to seed or otherwise control the model's determinism — that's
// restored downstream by the governor.
type Source interface {
	GenerateCoeffs(ctx context.Context, audioPath, referenceImagePath string) (*Bundle, error)
}

// ErrGenerationFailed wraps a hard failure from the underlying animation
// model; the orchestrator maps this to errs.KindUpstreamUnavailable and
// aborts, since there is no fallback coefficient source.
type ErrGenerationFailed struct {
	Cause error
}

func (e *ErrGenerationFailed) Error() string {
	return fmt.Sprintf("coeffs: generation failed: %v", e.Cause)
}

func (e *ErrGenerationFailed) Unwrap() error { return e.Cause }
