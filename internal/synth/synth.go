package synth

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/sync/errgroup"

	"github.com/relayframe/personagen/internal/errs"
	"github.com/relayframe/personagen/internal/intent"
)

const (
	defaultMaxConcurrency = 4
	outputSampleRate      = 24000
)

// Synthesizer renders a ScriptIntent to a single waveform, one TTS call per
// segment, bounding concurrency the way worker.go bounds its provider calls
// with a semaphore channel.
type Synthesizer struct {
	Model          Model
	MaxConcurrency int
}

// New returns a Synthesizer with the default concurrency bound.
func New(model Model) *Synthesizer {
	return &Synthesizer{Model: model, MaxConcurrency: defaultMaxConcurrency}
}

type segmentResult struct {
	samples    []float64
	sampleRate int
}

// SynthesizeWithIntent runs per-segment synthesis with emphasis shaping,
// silence insertion between segments, concatenation into one
// waveform written to outputPath, and the IntentTimingMap recording where
// every segment and pause landed. On any per-segment synthesis failure it
// falls back to a single whole-script synthesis call with a one-segment
// timing map, rather than failing the whole request.
func (s *Synthesizer) SynthesizeWithIntent(ctx context.Context, si intent.ScriptIntent, referenceAudioPath, outputPath string, fps int, language string) (string, intent.IntentTimingMap, error) {
	if err := si.Validate(); err != nil {
		return "", intent.IntentTimingMap{}, errs.Wrap(errs.KindInvalidInput, "synth: invalid script intent", err)
	}

	results, sampleRate, err := s.synthesizeSegments(ctx, si, referenceAudioPath, language)
	if err != nil {
		log.Printf("[synth] per-segment synthesis failed (%v), falling back to single-shot synthesis", err)
		return s.synthesizeFallback(ctx, si, referenceAudioPath, outputPath, fps, language)
	}

	samples, timing := assemble(si, results, sampleRate, fps)
	if err := writeWAV(outputPath, samples, sampleRate); err != nil {
		return "", intent.IntentTimingMap{}, errs.Wrap(errs.KindUpstreamUnavailable, "synth: failed to write waveform", err)
	}
	return outputPath, timing, nil
}

func (s *Synthesizer) synthesizeSegments(ctx context.Context, si intent.ScriptIntent, referenceAudioPath, language string) ([]segmentResult, int, error) {
	maxConcurrency := s.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	sem := make(chan struct{}, maxConcurrency)

	results := make([]segmentResult, len(si.Segments))
	g, gctx := errgroup.WithContext(ctx)

	for i, seg := range si.Segments {
		i, seg := i, seg
		g.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			text := shapeEmphasis(seg.Text, seg.Emphasis)
			samples, sampleRate, err := s.Model.Synthesize(gctx, text, referenceAudioPath, language, DefaultSamplingParams)
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			results[i] = segmentResult{samples: samples, sampleRate: sampleRate}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	sampleRate := outputSampleRate
	if len(results) > 0 && results[0].sampleRate > 0 {
		sampleRate = results[0].sampleRate
	}
	return results, sampleRate, nil
}

// assemble concatenates per-segment samples with literal-zero-sample
// silence for each pause_after, and derives the IntentTimingMap from the
// actual rendered sample counts (not estimated durations).
func assemble(si intent.ScriptIntent, results []segmentResult, sampleRate, fps int) ([]float64, intent.IntentTimingMap) {
	var samples []float64
	segments := make([]intent.TimingSegment, len(si.Segments))

	cursor := 0.0
	for i, seg := range si.Segments {
		start := cursor
		samples = append(samples, results[i].samples...)
		duration := float64(len(results[i].samples)) / float64(sampleRate)
		end := start + duration

		segments[i] = intent.TimingSegment{
			SegmentIdx:  i,
			StartTime:   start,
			EndTime:     end,
			PauseAfter:  seg.PauseAfter,
			Emphasis:    seg.Emphasis,
			TokenCount:  tokenCount(seg.Text),
			SentenceEnd: seg.SentenceEnd,
		}

		silenceSamples := int(seg.PauseAfter*float64(sampleRate) + 0.5)
		if silenceSamples > 0 {
			samples = append(samples, make([]float64, silenceSamples)...)
		}
		cursor = end + float64(silenceSamples)/float64(sampleRate)
	}

	timing := intent.IntentTimingMap{
		Segments:      segments,
		TotalDuration: cursor,
		FPS:           fps,
	}
	return samples, timing
}

// synthesizeFallback renders the whole script as one segment when
// per-segment synthesis fails, so a single flaky segment cannot sink the
// entire request.
func (s *Synthesizer) synthesizeFallback(ctx context.Context, si intent.ScriptIntent, referenceAudioPath, outputPath string, fps int, language string) (string, intent.IntentTimingMap, error) {
	text := si.PlainText()
	samples, sampleRate, err := s.Model.Synthesize(ctx, text, referenceAudioPath, language, DefaultSamplingParams)
	if err != nil {
		return "", intent.IntentTimingMap{}, errs.Wrap(errs.KindUpstreamUnavailable, "synth: fallback synthesis failed", err)
	}
	if sampleRate <= 0 {
		sampleRate = outputSampleRate
	}
	if err := writeWAV(outputPath, samples, sampleRate); err != nil {
		return "", intent.IntentTimingMap{}, errs.Wrap(errs.KindUpstreamUnavailable, "synth: failed to write fallback waveform", err)
	}

	duration := float64(len(samples)) / float64(sampleRate)
	timing := intent.IntentTimingMap{
		Segments: []intent.TimingSegment{
			{SegmentIdx: 0, StartTime: 0, EndTime: duration, PauseAfter: 0, TokenCount: tokenCount(text), SentenceEnd: true},
		},
		TotalDuration: duration,
		FPS:           fps,
	}
	return outputPath, timing, nil
}

// tokenCount returns the word count of text, never less than 1 so it's
// always safe as a mask-formula divisor.
func tokenCount(text string) int {
	n := len(strings.Fields(text))
	if n < 1 {
		return 1
	}
	return n
}

// writeWAV encodes mono float64 samples in [-1, 1] as 16-bit PCM.
func writeWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("synth: create output file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	ints := make([]int, len(samples))
	for i, v := range samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		ints[i] = int(v * 32767)
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   ints,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("synth: write pcm: %w", err)
	}
	return enc.Close()
}
