// Package style defines StyleProfile, the governor's motion recipe, its
// built-in presets, and JSON round-trip serialization.
package style

import (
	"encoding/json"
	"fmt"
)

// Triple is a (yaw, pitch, roll) vector, used for per-axis pose bounds and
// scaling factors throughout the governor.
type Triple struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// Profile is a named motion recipe: the constants the governor applies at
// each pipeline step.
type Profile struct {
	Name        string  `json:"name"`
	PoseMax     Triple  `json:"pose_max"`
	PoseScale   Triple  `json:"pose_scale"`
	ExprStrength float64 `json:"expr_strength"`

	// Smoothing is the IIR retention factor in [0,1): higher keeps more of
	// the previous frame.
	Smoothing float64 `json:"smoothing"`

	StillnessOnPause     float64 `json:"stillness_on_pause"`
	StillnessExprOnPause float64 `json:"stillness_expr_on_pause"`

	// NodRate is nods/s; 0 disables sentence-end nodding entirely.
	NodRate      float64 `json:"nod_rate"`
	NodAmplitude float64 `json:"nod_amplitude"`
}

// Validate checks each field's declared bounds.
func (p Profile) Validate() error {
	if p.Smoothing < 0 || p.Smoothing >= 1 {
		return fmt.Errorf("style: smoothing must be in [0,1), got %f", p.Smoothing)
	}
	if p.StillnessOnPause < 0 || p.StillnessOnPause > 1 {
		return fmt.Errorf("style: stillness_on_pause must be in [0,1], got %f", p.StillnessOnPause)
	}
	if p.StillnessExprOnPause < 0 || p.StillnessExprOnPause > 1 {
		return fmt.Errorf("style: stillness_expr_on_pause must be in [0,1], got %f", p.StillnessExprOnPause)
	}
	if p.NodRate < 0 {
		return fmt.Errorf("style: nod_rate must be >= 0, got %f", p.NodRate)
	}
	for _, v := range []float64{p.PoseScale.Yaw, p.PoseScale.Pitch, p.PoseScale.Roll} {
		if v < 0 || v > 1 {
			return fmt.Errorf("style: pose_scale components must be in [0,1], got %f", v)
		}
	}
	return nil
}

// Save serializes the profile to JSON.
func (p Profile) Save() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Load is the inverse of Save; round-tripping must be bit-exact for
// numeric fields.
func Load(data []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("style: failed to load profile: %w", err)
	}
	return p, nil
}

// Built-in presets.
var (
	CalmTech = Profile{
		Name:                 "calm_tech",
		PoseMax:              Triple{Yaw: 0.35, Pitch: 0.25, Roll: 0.20},
		PoseScale:            Triple{Yaw: 0.5, Pitch: 0.4, Roll: 0.3},
		ExprStrength:         0.6,
		Smoothing:            0.80,
		StillnessOnPause:     0.90,
		StillnessExprOnPause: 0.90,
		NodRate:              0.0,
		NodAmplitude:         0.0,
	}

	Energetic = Profile{
		Name:                 "energetic",
		PoseMax:              Triple{Yaw: 0.55, Pitch: 0.45, Roll: 0.35},
		PoseScale:            Triple{Yaw: 0.9, Pitch: 0.8, Roll: 0.7},
		ExprStrength:         1.1,
		Smoothing:            0.60,
		StillnessOnPause:     0.60,
		StillnessExprOnPause: 0.60,
		NodRate:              0.5,
		NodAmplitude:         0.06,
	}

	Lecturer = Profile{
		Name:                 "lecturer",
		PoseMax:              Triple{Yaw: 0.45, Pitch: 0.35, Roll: 0.25},
		PoseScale:            Triple{Yaw: 0.7, Pitch: 0.6, Roll: 0.5},
		ExprStrength:         0.8,
		Smoothing:            0.70,
		StillnessOnPause:     0.75,
		StillnessExprOnPause: 0.75,
		NodRate:              0.3,
		NodAmplitude:         0.04,
	}
)

var presetsByName = map[string]Profile{
	CalmTech.Name:  CalmTech,
	Energetic.Name: Energetic,
	Lecturer.Name:  Lecturer,
}

// Preset looks up a built-in profile by name.
func Preset(name string) (Profile, bool) {
	p, ok := presetsByName[name]
	return p, ok
}
