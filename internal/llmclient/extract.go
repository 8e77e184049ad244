package llmclient

import (
	"encoding/json"
	"strings"

	"github.com/relayframe/personagen/internal/intent"
)

// wireScriptIntent is the JSON shape requested from the LLM: required
// non-empty segments array, optional total_duration.
type wireScriptIntent struct {
	Segments []struct {
		Text        string   `json:"text"`
		PauseAfter  float64  `json:"pause_after"`
		Emphasis    []string `json:"emphasis"`
		SentenceEnd bool     `json:"sentence_end"`
	} `json:"segments"`
	TotalDuration *float64 `json:"total_duration"`
}

const fenceMarker = "```"

// extractScriptIntent performs robust JSON extraction: accepts bare
// objects, fenced objects, and objects with preamble/trailing text.
// Returns ok=false when the response should be rejected so the caller can
// fall through to the next cascade stage.
func extractScriptIntent(raw string) (intent.ScriptIntent, bool) {
	trimmed := strings.TrimSpace(raw)

	if len(trimmed) < 20 && strings.Contains(trimmed, fenceMarker) {
		return intent.ScriptIntent{}, false
	}

	first := strings.IndexByte(trimmed, '{')
	last := strings.LastIndexByte(trimmed, '}')
	if first < 0 || last < 0 || last < first {
		return intent.ScriptIntent{}, false
	}

	slice := trimmed[first : last+1]

	var wire wireScriptIntent
	if err := json.Unmarshal([]byte(slice), &wire); err != nil {
		return intent.ScriptIntent{}, false
	}
	if len(wire.Segments) == 0 {
		return intent.ScriptIntent{}, false
	}

	si := intent.ScriptIntent{
		Segments:      make([]intent.SegmentIntent, len(wire.Segments)),
		TotalDuration: wire.TotalDuration,
	}
	for i, s := range wire.Segments {
		si.Segments[i] = intent.SegmentIntent{
			Text:        s.Text,
			PauseAfter:  s.PauseAfter,
			Emphasis:    s.Emphasis,
			SentenceEnd: s.SentenceEnd,
		}
	}

	if err := si.Validate(); err != nil {
		return intent.ScriptIntent{}, false
	}

	return si, true
}

// sentenceSplitFallback builds a deterministic synthetic ScriptIntent from
// plain text by splitting on sentence-terminal punctuation: one segment per
// sentence, pause_after=0.3, no emphasis, sentence_end=true on terminal
// punctuation.
func sentenceSplitFallback(text string) intent.ScriptIntent {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}

	segments := make([]intent.SegmentIntent, 0, len(sentences))
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		segments = append(segments, intent.SegmentIntent{
			Text:        s,
			PauseAfter:  0.3,
			Emphasis:    nil,
			SentenceEnd: true,
		})
	}

	if len(segments) == 0 {
		segments = []intent.SegmentIntent{{Text: "...", PauseAfter: 0.3, SentenceEnd: true}}
	}

	return intent.ScriptIntent{Segments: segments}
}

// splitSentences splits on '.', '!', '?' while keeping the terminal
// punctuation attached to the preceding sentence.
func splitSentences(text string) []string {
	var out []string
	var buf strings.Builder

	for _, r := range text {
		buf.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			out = append(out, buf.String())
			buf.Reset()
		}
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}
