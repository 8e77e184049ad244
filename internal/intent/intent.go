// Package intent defines the typed script-intent contract that flows through
// the generation pipeline: segments, timing maps, and the per-frame masks
// derived from them.
package intent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SegmentIntent is a single script unit carrying semantic annotations used
// downstream to govern motion.
type SegmentIntent struct {
	Text        string   `json:"text"`
	PauseAfter  float64  `json:"pause_after"`
	Emphasis    []string `json:"emphasis"`
	SentenceEnd bool     `json:"sentence_end"`
}

// Validate enforces the per-segment invariants from the data model: text
// must be non-empty and pause_after must not be negative.
func (s SegmentIntent) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return fmt.Errorf("intent: segment text must not be empty")
	}
	if s.PauseAfter < 0 {
		return fmt.Errorf("intent: pause_after must be >= 0, got %f", s.PauseAfter)
	}
	return nil
}

// ScriptIntent is the ordered sequence of segments produced by the LLM
// client and consumed, read-only, by every later stage.
type ScriptIntent struct {
	Segments       []SegmentIntent `json:"segments"`
	TotalDuration  *float64        `json:"total_duration,omitempty"`
}

// Validate checks the ScriptIntent-level invariants: non-empty, and every
// segment individually valid.
func (si ScriptIntent) Validate() error {
	if len(si.Segments) == 0 {
		return fmt.Errorf("intent: script intent must contain at least one segment")
	}
	for i, seg := range si.Segments {
		if err := seg.Validate(); err != nil {
			return fmt.Errorf("intent: segment %d: %w", i, err)
		}
	}
	return nil
}

// PlainText returns the canonical plain-text script: the concatenation of
// every segment's text field, space-joined.
func (si ScriptIntent) PlainText() string {
	parts := make([]string, len(si.Segments))
	for i, seg := range si.Segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

// Serialize round-trips a ScriptIntent to JSON bytes.
func (si ScriptIntent) Serialize() ([]byte, error) {
	return json.Marshal(si)
}

// ParseScriptIntent is the inverse of Serialize.
func ParseScriptIntent(data []byte) (ScriptIntent, error) {
	var si ScriptIntent
	if err := json.Unmarshal(data, &si); err != nil {
		return ScriptIntent{}, fmt.Errorf("intent: parse script intent: %w", err)
	}
	return si, nil
}

// TimingSegment is a SegmentIntent's temporal placement after synthesis.
type TimingSegment struct {
	SegmentIdx int      `json:"segment_idx"`
	StartTime  float64  `json:"start_time"`
	EndTime    float64  `json:"end_time"`
	PauseAfter float64  `json:"pause_after"`
	Emphasis   []string `json:"emphasis"`
	// TokenCount is the word count of the segment's source text, carried
	// forward from SegmentIntent.Text since the timing map itself never
	// stores the text. The emphasis-boost mask needs it and has no other
	// way to recover it downstream.
	TokenCount  int  `json:"token_count"`
	SentenceEnd bool `json:"sentence_end"`
}

// IntentTimingMap is the projection of a ScriptIntent onto the time axis,
// emitted by the synthesizer and read-only downstream.
type IntentTimingMap struct {
	Segments      []TimingSegment `json:"segments"`
	TotalDuration float64         `json:"total_duration"`
	FPS           int             `json:"fps"`
}

// Validate checks the timing invariants: end_time never precedes
// start_time, segments never overlap (accounting for the pause that
// follows each one), and total_duration covers the last segment plus its
// trailing pause.
func (m IntentTimingMap) Validate() error {
	if len(m.Segments) == 0 {
		return fmt.Errorf("intent: timing map must contain at least one segment")
	}
	for i, seg := range m.Segments {
		if seg.EndTime < seg.StartTime {
			return fmt.Errorf("intent: segment %d: end_time %f < start_time %f", i, seg.EndTime, seg.StartTime)
		}
		if i+1 < len(m.Segments) {
			next := m.Segments[i+1]
			minNextStart := seg.EndTime + seg.PauseAfter
			if next.StartTime < minNextStart-1e-9 {
				return fmt.Errorf("intent: segment %d starts at %f, before previous end+pause %f", i+1, next.StartTime, minNextStart)
			}
		}
	}
	last := m.Segments[len(m.Segments)-1]
	minTotal := last.EndTime + last.PauseAfter
	if m.TotalDuration < minTotal-1e-9 {
		return fmt.Errorf("intent: total_duration %f shorter than last segment end+pause %f", m.TotalDuration, minTotal)
	}
	return nil
}

// FrameCount returns the dense per-frame length implied by TotalDuration and
// FPS: round(total_duration * fps).
func (m IntentTimingMap) FrameCount() int {
	return int(m.TotalDuration*float64(m.FPS) + 0.5)
}

// SegmentAt returns the TimingSegment whose [start_time, end_time) span
// contains frameTime (in seconds), with inSegment=true. Returns
// inSegment=false if the time is in a pause window or past the end.
func (m IntentTimingMap) SegmentAt(frameTime float64) (seg TimingSegment, inSegment bool) {
	for _, s := range m.Segments {
		if frameTime >= s.StartTime && frameTime < s.EndTime {
			return s, true
		}
	}
	return TimingSegment{}, false
}

// IntentMask is a dense per-frame vector of non-negative motion-authority
// values: 0 forces stillness, 1 is nominal speech, >1 (capped at 1.3) is
// emphasis boost.
type IntentMask []float64

// Clamp bounds every element of the mask to [0, 1.3] in place.
func (m IntentMask) Clamp() {
	for i, v := range m {
		if v < 0 {
			m[i] = 0
		} else if v > 1.3 {
			m[i] = 1.3
		}
	}
}
