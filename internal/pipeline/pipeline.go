// Package pipeline sequences script intent, synthesis, coefficient
// generation, motion governing, and rendering with persona selection and
// artifact persistence, the way worker.go sequences image/TTS/render stages
// for a clip, but single-threaded within one request.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/relayframe/personagen/internal/coeffs"
	"github.com/relayframe/personagen/internal/config"
	"github.com/relayframe/personagen/internal/errs"
	"github.com/relayframe/personagen/internal/governor"
	"github.com/relayframe/personagen/internal/intent"
	"github.com/relayframe/personagen/internal/llmclient"
	"github.com/relayframe/personagen/internal/render"
	"github.com/relayframe/personagen/internal/runstore"
	"github.com/relayframe/personagen/internal/style"
	"github.com/relayframe/personagen/internal/synth"
)

const (
	modelKeyLLM     = "llm"
	modelKeySynth   = "synth"
	modelKeyCoeffs  = "coeffs"
	modelKeyRender  = "render"
	defaultLanguage = "en"
)

// Request is the orchestrator's input.
type Request struct {
	Prompt         string
	Persona        llmclient.Persona
	Temperature    float64
	MaxTokens      int
	EnableIntent   bool
	EnableGovernor bool
	Style          *style.Profile // nil uses the persona's default
}

// Result is the orchestrator's output: every artifact path plus the
// structured data produced along the way.
type Result struct {
	RequestID      string
	Text           string
	ScriptIntent   intent.ScriptIntent
	AudioPath      string
	TimingMap      intent.IntentTimingMap
	VideoPath      string
	Timestamp      time.Time
	ProcessingTime time.Duration
}

// Orchestrator holds the process-wide model cache and optional run ledger.
type Orchestrator struct {
	Models *ModelRegistry
	Config *config.Config
	Store  *runstore.Store
}

// New wires an Orchestrator's model registry from the given constructors.
// Each factory runs on first use; once it succeeds its model is reused,
// and a factory that fails is run again on the next use.
func New(cfg *config.Config, store *runstore.Store,
	newLLM func() (*llmclient.Client, error),
	newSynth func() (*synth.Synthesizer, error),
	newCoeffs func() (coeffs.Source, error),
	newRenderer func() (render.Renderer, error),
) *Orchestrator {
	registry := NewModelRegistry()
	registry.Register(modelKeyLLM, func() (any, error) { return newLLM() })
	registry.Register(modelKeySynth, func() (any, error) { return newSynth() })
	registry.Register(modelKeyCoeffs, func() (any, error) { return newCoeffs() })
	registry.Register(modelKeyRender, func() (any, error) { return newRenderer() })
	return &Orchestrator{Models: registry, Config: cfg, Store: store}
}

// Generate runs the full pipeline for one request: LLM intent → segmented
// synthesis → coefficient generation → motion governing → rendering,
// persisting artifacts under outputDir/<request_id>/.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	requestIDObj := uuid.New()
	requestID := requestIDObj.String()

	assets, err := resolvePersonaAssets(req.Persona, o.Config.AssetDir)
	if err != nil {
		return nil, err
	}
	styleProfile := assets.DefaultStyleProfile
	if req.Style != nil {
		styleProfile = *req.Style
	}

	outputDir := filepath.Join(o.Config.OutputDir, requestID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errs.Wrap(errs.KindUpstreamUnavailable, "pipeline: failed to create output directory", err)
	}

	if o.Store != nil {
		_ = o.Store.Start(ctx, &runstore.Run{
			ID: requestIDObj, Persona: string(req.Persona), Prompt: req.Prompt,
			Status: "running", OutputDir: outputDir, StartedAt: started,
		})
	}

	result, err := o.runStages(ctx, req, assets, styleProfile, outputDir)
	if err != nil {
		if o.Store != nil {
			kind, _ := errs.KindOf(err)
			_ = o.Store.Finish(ctx, requestIDObj, "failed", string(kind))
		}
		return nil, err
	}

	result.RequestID = requestID
	result.Timestamp = started
	result.ProcessingTime = time.Since(started)

	if o.Store != nil {
		_ = o.Store.Finish(ctx, requestIDObj, "ok", "")
	}
	return result, nil
}

func (o *Orchestrator) runStages(ctx context.Context, req Request, assets PersonaAssets, styleProfile style.Profile, outputDir string) (*Result, error) {
	scriptIntent, text, err := o.stageIntent(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(outputDir, "script.json"), scriptIntent); err != nil {
		log.Printf("[pipeline] failed to persist script.json: %v", err)
	}

	audioPath := filepath.Join(outputDir, "audio.wav")
	timing, err := o.stageSynth(ctx, scriptIntent, assets, audioPath, req.Prompt)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(filepath.Join(outputDir, "timing.json"), timing); err != nil {
		log.Printf("[pipeline] failed to persist timing.json: %v", err)
	}

	bundle, err := o.stageCoeffs(ctx, audioPath, assets.ReferenceImagePath)
	if err != nil {
		return nil, err
	}

	governed := bundle
	if req.EnableGovernor {
		governed = governor.Govern(bundle, audioPath, timing, styleProfile)
	}

	videoPath := filepath.Join(outputDir, "video.mp4")
	videoPath, err = o.stageRender(ctx, governed, assets.ReferenceImagePath, audioPath, videoPath)
	if err != nil {
		return nil, err
	}

	return &Result{
		Text:         text,
		ScriptIntent: scriptIntent,
		AudioPath:    audioPath,
		TimingMap:    timing,
		VideoPath:    videoPath,
	}, nil
}

// stageIntent calls the LLM client for structured script intent, or builds
// a single-segment plain-text ScriptIntent directly when the caller
// disables intent parsing.
func (o *Orchestrator) stageIntent(ctx context.Context, req Request) (intent.ScriptIntent, string, error) {
	if !req.EnableIntent {
		return intent.ScriptIntent{
			Segments: []intent.SegmentIntent{{Text: req.Prompt, PauseAfter: 0, SentenceEnd: true}},
		}, req.Prompt, nil
	}

	llmAny, release, err := o.Models.Acquire(modelKeyLLM)
	if err != nil {
		return intent.ScriptIntent{}, "", errs.Wrap(errs.KindUpstreamUnavailable, "pipeline: failed to acquire llm client", err)
	}
	defer release()
	client := llmAny.(*llmclient.Client)

	result, err := client.GenerateWithIntent(ctx, req.Prompt, req.Persona, req.Temperature, req.MaxTokens)
	if err != nil {
		// Abort on any LLM client failure (UpstreamUnavailable or InvalidPersona).
		return intent.ScriptIntent{}, "", err
	}
	return result.Intent, result.Text, nil
}

// stageSynth runs segmented synthesis, retrying once with a plain-text
// single-segment script if the segmented attempt fails.
func (o *Orchestrator) stageSynth(ctx context.Context, si intent.ScriptIntent, assets PersonaAssets, audioPath, prompt string) (intent.IntentTimingMap, error) {
	synthAny, release, err := o.Models.Acquire(modelKeySynth)
	if err != nil {
		return intent.IntentTimingMap{}, errs.Wrap(errs.KindUpstreamUnavailable, "pipeline: failed to acquire synthesizer", err)
	}
	defer release()
	synthesizer := synthAny.(*synth.Synthesizer)

	fps := o.Config.DefaultFPS
	_, timing, err := synthesizer.SynthesizeWithIntent(ctx, si, assets.ReferenceAudioPath, audioPath, fps, defaultLanguage)
	if err == nil {
		return timing, nil
	}
	log.Printf("[pipeline] segmented synthesis failed (%v), falling through to plain-text path", err)

	plainIntent := intent.ScriptIntent{
		Segments: []intent.SegmentIntent{{Text: prompt, PauseAfter: 0, SentenceEnd: true}},
	}
	_, timing, err = synthesizer.SynthesizeWithIntent(ctx, plainIntent, assets.ReferenceAudioPath, audioPath, fps, defaultLanguage)
	if err != nil {
		return intent.IntentTimingMap{}, errs.Wrap(errs.KindUpstreamUnavailable, "pipeline: synthesis failed on plain-text fallback", err)
	}
	return timing, nil
}

// stageCoeffs generates coefficients from the synthesized audio. It fails
// hard: there is no fallback.
func (o *Orchestrator) stageCoeffs(ctx context.Context, audioPath, referenceImagePath string) (*coeffs.Bundle, error) {
	coeffsAny, release, err := o.Models.Acquire(modelKeyCoeffs)
	if err != nil {
		return nil, errs.Wrap(errs.KindUpstreamUnavailable, "pipeline: failed to acquire coefficient source", err)
	}
	defer release()
	source := coeffsAny.(coeffs.Source)

	bundle, err := source.GenerateCoeffs(ctx, audioPath, referenceImagePath)
	if err != nil {
		return nil, errs.Wrap(errs.KindUpstreamUnavailable, "pipeline: coefficient generation failed", err)
	}
	return bundle, nil
}

// stageRender renders the final video. It also fails hard: no fallback
// renderer.
func (o *Orchestrator) stageRender(ctx context.Context, bundle *coeffs.Bundle, referenceImagePath, audioPath, outputPath string) (string, error) {
	rendererAny, release, err := o.Models.Acquire(modelKeyRender)
	if err != nil {
		return "", errs.Wrap(errs.KindUpstreamUnavailable, "pipeline: failed to acquire renderer", err)
	}
	defer release()
	renderer := rendererAny.(render.Renderer)

	videoPath, err := renderer.Render(ctx, bundle, referenceImagePath, audioPath, outputPath, render.Options{
		FPS:        o.Config.DefaultFPS,
		Resolution: o.Config.DefaultResolution,
	})
	if err != nil {
		return "", errs.Wrap(errs.KindUpstreamUnavailable, "pipeline: render failed", err)
	}
	return videoPath, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
