// Package synth turns a ScriptIntent into a single waveform plus the
// IntentTimingMap that records where each segment and pause landed in the
// rendered audio.
package synth

import "context"

// SamplingParams are the deterministic decoding parameters passed to every
// Model.Synthesize call, fixed rather than left to the model's own
// defaults so repeated runs of the same segment text stay comparable.
type SamplingParams struct {
	Temperature       float64
	RepetitionPenalty float64
	TopP              float64
}

// DefaultSamplingParams are the values this package uses by default.
var DefaultSamplingParams = SamplingParams{
	Temperature:       0.65,
	RepetitionPenalty: 2.5,
	TopP:              0.85,
}

// Model is the TTS acoustic model boundary. Model internals are out of
// scope — it runs as an external service; synth only consumes this
// contract.
type Model interface {
	// Synthesize renders text to mono PCM samples in [-1, 1] at the
	// returned sample rate, cloning the voice found in referenceAudioPath.
	Synthesize(ctx context.Context, text, referenceAudioPath, language string, params SamplingParams) (samples []float64, sampleRate int, err error)
}
