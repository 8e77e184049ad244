package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/relayframe/personagen/internal/intent"
)

// stubModel returns silence of a fixed length per call, or an error on
// calls matching failOn (by call index, 0-based).
type stubModel struct {
	samplesPerCall int
	sampleRate     int
	calls          int
	failOn         map[int]bool
}

func (m *stubModel) Synthesize(ctx context.Context, text, referenceAudioPath, language string, params SamplingParams) ([]float64, int, error) {
	idx := m.calls
	m.calls++
	if m.failOn[idx] {
		return nil, 0, errors.New("synthesis failed")
	}
	return make([]float64, m.samplesPerCall), m.sampleRate, nil
}

func twoSegmentIntent() intent.ScriptIntent {
	return intent.ScriptIntent{
		Segments: []intent.SegmentIntent{
			{Text: "Hello there.", PauseAfter: 0.5, SentenceEnd: true},
			{Text: "World.", PauseAfter: 0, Emphasis: []string{"World"}, SentenceEnd: true},
		},
	}
}

func TestSynthesizeWithIntent_Success(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.wav")
	model := &stubModel{samplesPerCall: 8000, sampleRate: 8000}
	s := New(model)

	path, timing, err := s.SynthesizeWithIntent(context.Background(), twoSegmentIntent(), "", out, 25, "en")
	if err != nil {
		t.Fatalf("SynthesizeWithIntent() error = %v", err)
	}
	if path != out {
		t.Errorf("path = %q, want %q", path, out)
	}
	if len(timing.Segments) != 2 {
		t.Fatalf("expected 2 timing segments, got %d", len(timing.Segments))
	}
	if timing.Segments[0].EndTime != 1.0 {
		t.Errorf("segment 0 end_time = %f, want 1.0", timing.Segments[0].EndTime)
	}
	// Segment 1 starts after segment 0's 1.0s audio plus its 0.5s pause.
	if timing.Segments[1].StartTime != 1.5 {
		t.Errorf("segment 1 start_time = %f, want 1.5", timing.Segments[1].StartTime)
	}
	if timing.Segments[0].TokenCount != 2 {
		t.Errorf("segment 0 token_count = %d, want 2 (\"Hello there.\")", timing.Segments[0].TokenCount)
	}
	if timing.Segments[1].TokenCount != 1 {
		t.Errorf("segment 1 token_count = %d, want 1 (\"World.\")", timing.Segments[1].TokenCount)
	}
	if err := timing.Validate(); err != nil {
		t.Errorf("timing map invalid: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open output wav: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Error("output is not a valid wav file")
	}
}

func TestSynthesizeWithIntent_FallsBackOnSegmentFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.wav")
	model := &stubModel{samplesPerCall: 8000, sampleRate: 8000, failOn: map[int]bool{0: true, 1: true}}
	s := New(model)

	_, timing, err := s.SynthesizeWithIntent(context.Background(), twoSegmentIntent(), "", out, 25, "en")
	if err != nil {
		t.Fatalf("SynthesizeWithIntent() error = %v", err)
	}
	if len(timing.Segments) != 1 {
		t.Errorf("expected single fallback segment, got %d", len(timing.Segments))
	}
	if !timing.Segments[0].SentenceEnd {
		t.Error("fallback segment should be marked sentence_end")
	}
	// PlainText() joins "Hello there." and "World." with a space: 3 words.
	if timing.Segments[0].TokenCount != 3 {
		t.Errorf("fallback segment token_count = %d, want 3", timing.Segments[0].TokenCount)
	}
}

func TestSynthesizeWithIntent_InvalidIntent(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.wav")
	model := &stubModel{samplesPerCall: 8000, sampleRate: 8000}
	s := New(model)

	_, _, err := s.SynthesizeWithIntent(context.Background(), intent.ScriptIntent{}, "", out, 25, "en")
	if err == nil {
		t.Fatal("expected error for empty script intent")
	}
}
