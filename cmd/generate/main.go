package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relayframe/personagen/internal/coeffs"
	"github.com/relayframe/personagen/internal/config"
	"github.com/relayframe/personagen/internal/llmclient"
	"github.com/relayframe/personagen/internal/pipeline"
	"github.com/relayframe/personagen/internal/render"
	"github.com/relayframe/personagen/internal/runstore"
	"github.com/relayframe/personagen/internal/style"
	"github.com/relayframe/personagen/internal/synth"
)

func main() {
	prompt := flag.String("prompt", "", "free-form prompt describing the video to generate")
	persona := flag.String("persona", "mkbhd", "persona tag: mkbhd or ijustine")
	temperature := flag.Float64("temperature", 0.7, "LLM sampling temperature")
	maxTokens := flag.Int("max-tokens", 800, "LLM max output tokens")
	enableIntent := flag.Bool("enable-intent", true, "use the LLM to produce structured script intent")
	enableGovernor := flag.Bool("enable-governor", true, "run the motion governor over raw coefficients")
	stylePreset := flag.String("style", "", "style preset name overriding the persona default (calm_tech, energetic, lecturer)")
	flag.Parse()

	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "generate: --prompt is required")
		os.Exit(2)
	}

	log.Println("Starting personagen generate...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := runstore.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to run ledger: %v", err)
	}
	defer store.Close()

	orch := pipeline.New(cfg, store,
		func() (*llmclient.Client, error) { return newLLMClient(cfg) },
		func() (*synth.Synthesizer, error) { return newSynthesizer(cfg) },
		func() (coeffs.Source, error) { return coeffs.NewSubprocessSource(cfg.AnimationBinaryPath), nil },
		func() (render.Renderer, error) { return newRenderer(cfg), nil },
	)

	req := pipeline.Request{
		Prompt:         *prompt,
		Persona:        llmclient.Persona(*persona),
		Temperature:    *temperature,
		MaxTokens:      *maxTokens,
		EnableIntent:   *enableIntent,
		EnableGovernor: *enableGovernor,
	}
	if *stylePreset != "" {
		p, ok := style.Preset(*stylePreset)
		if !ok {
			log.Fatalf("unknown style preset %q", *stylePreset)
		}
		req.Style = &p
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	result, err := orch.Generate(ctx, req)
	if err != nil {
		log.Fatalf("generate failed: %v", err)
	}

	log.Printf("done in %s: request_id=%s video=%s", time.Since(start), result.RequestID, result.VideoPath)
	fmt.Println(result.VideoPath)
}

func newLLMClient(cfg *config.Config) (*llmclient.Client, error) {
	var backend llmclient.Backend
	switch cfg.LLMProvider {
	case "gemini":
		backend = llmclient.NewGeminiBackend(cfg.GeminiKey, cfg.GeminiModel)
	default:
		backend = llmclient.NewOpenAIBackend(cfg.OpenAIKey, cfg.OpenAIModel)
	}
	return llmclient.New(backend), nil
}

func newSynthesizer(cfg *config.Config) (*synth.Synthesizer, error) {
	if cfg.TTSModelEndpoint == "" {
		return nil, fmt.Errorf("TTS_MODEL_ENDPOINT is not configured")
	}
	return synth.New(synth.NewHTTPModel(cfg.TTSModelEndpoint)), nil
}

func newRenderer(cfg *config.Config) render.Renderer {
	r := render.NewSubprocessRenderer(cfg.AnimationBinaryPath)
	r.FFmpegPath = cfg.FFmpegPath
	return r
}
