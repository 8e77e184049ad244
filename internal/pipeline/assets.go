package pipeline

import (
	"path/filepath"

	"github.com/relayframe/personagen/internal/errs"
	"github.com/relayframe/personagen/internal/llmclient"
	"github.com/relayframe/personagen/internal/style"
)

// PersonaAssets is the full persona→asset/style resolution: reference
// voice and portrait plus the default style profile to govern with when
// the caller doesn't override it.
type PersonaAssets struct {
	ReferenceAudioPath  string
	ReferenceImagePath  string
	DefaultStyleProfile style.Profile
}

// resolvePersonaAssets maps a persona tag to its reference assets under
// assetDir/personas/<persona>/. llmclient.ResolvePersona independently
// validates the persona against the same closed set for the LLM-prompt
// side of this resolution; either check rejects an unknown persona, so
// this walks the same set to keep the two in agreement.
func resolvePersonaAssets(persona llmclient.Persona, assetDir string) (PersonaAssets, error) {
	var defaultProfile style.Profile
	switch persona {
	case llmclient.PersonaMKBHD:
		defaultProfile = style.CalmTech
	case llmclient.PersonaIJustine:
		defaultProfile = style.Energetic
	default:
		return PersonaAssets{}, errs.Wrap(errs.KindInvalidInput, "unknown persona: "+string(persona), errs.ErrInvalidPersona)
	}

	personaDir := filepath.Join(assetDir, "personas", string(persona))
	return PersonaAssets{
		ReferenceAudioPath:  filepath.Join(personaDir, "reference.wav"),
		ReferenceImagePath:  filepath.Join(personaDir, "reference.png"),
		DefaultStyleProfile: defaultProfile,
	}, nil
}
