package llmclient

import "github.com/relayframe/personagen/internal/errs"

// Persona is a tag from a closed set selecting LLM style instructions,
// reference voice/portrait, and a default style profile downstream.
type Persona string

const (
	PersonaMKBHD    Persona = "mkbhd"
	PersonaIJustine Persona = "ijustine"
)

// Profile is the persona-specific generation bias: a style hint and an
// emphasis-density hint folded into the system prompt, plus a temperature
// offset added to the caller's temperature. It carries no pause_after
// setting; pause lengths are not varied per persona.
type Profile struct {
	StyleHint        string
	TemperatureDelta float64
	EmphasisDensity  string // natural-language hint, folded into the prompt
}

var personaProfiles = map[Persona]Profile{
	PersonaMKBHD: {
		StyleHint:        "Write in the voice of a meticulous tech reviewer: precise, measured, a little dry, building an argument point by point before landing a verdict.",
		TemperatureDelta: -0.1,
		EmphasisDensity:  "sparing — emphasize only the one or two words that carry the verdict",
	},
	PersonaIJustine: {
		StyleHint:        "Write in the voice of an upbeat, warm tech enthusiast talking directly to a friend: conversational, quick, genuinely excited about the subject.",
		TemperatureDelta: 0.15,
		EmphasisDensity:  "frequent — emphasize the words that carry enthusiasm",
	},
}

// ResolvePersona validates persona against the closed set and returns its
// generation profile.
func ResolvePersona(p Persona) (Profile, error) {
	profile, ok := personaProfiles[p]
	if !ok {
		return Profile{}, errs.Wrap(errs.KindInvalidInput, "unknown persona: "+string(p), errs.ErrInvalidPersona)
	}
	return profile, nil
}
