// Package llmclient implements structured-JSON request/retry/fallback
// logic that turns a free-form prompt into a ScriptIntent, never failing
// for content reasons.
package llmclient

import (
	"context"
	"fmt"
	"log"

	"github.com/relayframe/personagen/internal/errs"
	"github.com/relayframe/personagen/internal/intent"
)

// Provenance tags how a Result's ScriptIntent was produced, so callers can
// branch on it without re-parsing.
type Provenance string

const (
	ProvenanceStrictOk     Provenance = "StrictOk"
	ProvenancePermissiveOk Provenance = "PermissiveOk"
	ProvenanceFallback     Provenance = "Fallback"
)

// Result is the outcome of GenerateWithIntent.
type Result struct {
	Text       string
	Intent     intent.ScriptIntent
	Provenance Provenance
}

// Client drives the two-attempt cascade against a Backend.
type Client struct {
	backend Backend
}

// New constructs a Client bound to the given backend.
func New(backend Backend) *Client {
	return &Client{backend: backend}
}

// GenerateWithIntent turns a prompt and persona into narration text plus a
// structured ScriptIntent. It never returns an error for content reasons —
// only transport/authentication failures surface as
// errs.KindUpstreamUnavailable.
func (c *Client) GenerateWithIntent(ctx context.Context, prompt string, persona Persona, temperature float64, maxTokens int) (Result, error) {
	profile, err := ResolvePersona(persona)
	if err != nil {
		return Result{}, err
	}

	effectiveTemp := temperature + profile.TemperatureDelta
	if effectiveTemp < 0 {
		effectiveTemp = 0
	}

	systemPrompt := buildSystemPrompt(profile)
	userPrompt := buildUserPrompt(prompt)

	// Attempt 1: strict JSON.
	strictText, err := c.backend.Call(ctx, systemPrompt, userPrompt, effectiveTemp, maxTokens, true)
	if err != nil {
		return Result{}, errs.Wrap(errs.KindUpstreamUnavailable, fmt.Sprintf("%s strict attempt transport failure", c.backend.Name()), err)
	}
	logAttempt(c.backend.Name(), 1, true, strictText, 0)

	if si, ok := extractScriptIntent(strictText); ok {
		logAttempt(c.backend.Name(), 1, true, strictText, len(si.Segments))
		return Result{Text: strictText, Intent: si, Provenance: ProvenanceStrictOk}, nil
	}
	log.Printf("[llmclient] %s attempt 1 (strict) failed extraction — falling through to permissive retry (%s)", c.backend.Name(), errs.KindIntentParseFallback)

	// Attempt 2: permissive retry with a simplified natural-language prompt.
	permissivePrompt := buildPermissivePrompt(prompt)
	permissiveText, err := c.backend.Call(ctx, systemPrompt, permissivePrompt, effectiveTemp, maxTokens, false)
	if err != nil {
		return Result{}, errs.Wrap(errs.KindUpstreamUnavailable, fmt.Sprintf("%s permissive attempt transport failure", c.backend.Name()), err)
	}
	logAttempt(c.backend.Name(), 2, false, permissiveText, 0)

	bestText := strictText
	if permissiveText != "" {
		bestText = permissiveText
	}

	if si, ok := extractScriptIntent(permissiveText); ok {
		logAttempt(c.backend.Name(), 2, false, permissiveText, len(si.Segments))
		return Result{Text: permissiveText, Intent: si, Provenance: ProvenancePermissiveOk}, nil
	}
	log.Printf("[llmclient] %s attempt 2 (permissive) failed extraction — falling back to sentence split (%s)", c.backend.Name(), errs.KindIntentParseFallback)

	// Attempt 3: deterministic fallback.
	si := sentenceSplitFallback(bestText)
	log.Printf("[llmclient] fallback produced %d segments from %d chars of best-effort text", len(si.Segments), len(bestText))
	return Result{Text: bestText, Intent: si, Provenance: ProvenanceFallback}, nil
}

func logAttempt(backend string, attempt int, jsonMode bool, response string, segmentCount int) {
	preview := response
	if len(preview) > 120 {
		preview = preview[:120]
	}
	log.Printf("[llmclient] backend=%s attempt=%d json_mode=%v response_len=%d preview=%q segments=%d",
		backend, attempt, jsonMode, len(response), preview, segmentCount)
}

func buildSystemPrompt(profile Profile) string {
	return fmt.Sprintf(`You write short spoken-narration scripts and return them as JSON matching this schema:
{"segments":[{"text":string,"pause_after":number,"emphasis":[string],"sentence_end":bool}],"total_duration":number|null}

%s
Emphasis tokens must appear verbatim inside their segment's text (%s).
pause_after is the silence in seconds to insert after the segment.
sentence_end marks the end of a complete thought.
Return ONLY the JSON object, no commentary.`, profile.StyleHint, profile.EmphasisDensity)
}

func buildUserPrompt(prompt string) string {
	return fmt.Sprintf("Write a short narration script for this prompt, segmented for a talking-head video:\n\n%s", prompt)
}

func buildPermissivePrompt(prompt string) string {
	return fmt.Sprintf(`Write a short narration for this prompt: %q

Describe it as a JSON object with a "segments" array. Each segment has "text" (what is said), "pause_after" (seconds of silence afterward), "emphasis" (words to stress), and "sentence_end" (true at the end of a thought). It's fine to include a short explanation before or after the JSON.`, prompt)
}
