// Package render is a thin wrapper around the face-animation model and the
// final audio mux. The animation model's internals are out of scope — it
// runs as an external service; this package only shells out to it and
// assembles its output with the narration track. It must never touch the
// coefficient bundle's values — governance happens upstream in the
// governor package.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/relayframe/personagen/internal/coeffs"
	"github.com/relayframe/personagen/internal/errs"
)

// Options configures a render call. Resolution is the output's square (or
// native) frame size in pixels; Enhance turns on the renderer's own face
// restoration pass, if it has one.
type Options struct {
	FPS        int
	Resolution int
	Enhance    bool
}

// Renderer is the animation-model boundary: given a coefficient bundle, a
// reference image, and a narration track, produce a finished video file.
type Renderer interface {
	Render(ctx context.Context, bundle *coeffs.Bundle, referenceImagePath, audioPath, outputPath string, opts Options) (string, error)
}

// SubprocessRenderer shells out to an external animation binary the same
// way coeffs.SubprocessSource does, then muxes the silent frame sequence
// it produces with the narration audio via ffmpeg.
type SubprocessRenderer struct {
	BinaryPath string
	FFmpegPath string
}

// NewSubprocessRenderer returns a SubprocessRenderer using the system ffmpeg.
func NewSubprocessRenderer(binaryPath string) *SubprocessRenderer {
	return &SubprocessRenderer{BinaryPath: binaryPath, FFmpegPath: "ffmpeg"}
}

type wireBundle struct {
	Frames      [][]float64 `json:"frames"`
	ExpRange    [2]int      `json:"exp_range"`
	PoseRange   [2]int      `json:"pose_range"`
	LipChannels []int       `json:"lip_channels"`
}

// Render writes the bundle to a temp JSON file, invokes the animation
// binary to produce a silent video, then muxes in the narration audio.
// Any failure here is a hard failure for the request — there is no
// fallback renderer.
func (r *SubprocessRenderer) Render(ctx context.Context, bundle *coeffs.Bundle, referenceImagePath, audioPath, outputPath string, opts Options) (string, error) {
	if bundle == nil || bundle.T() == 0 {
		return "", errs.New(errs.KindInvalidInput, "render: empty coefficient bundle")
	}

	coeffsFile, err := r.writeCoeffsJSON(bundle)
	if err != nil {
		return "", errs.Wrap(errs.KindUpstreamUnavailable, "render: failed to stage coefficients", err)
	}
	defer os.Remove(coeffsFile)

	silentVideo, err := os.CreateTemp("", "personagen-render-*.mp4")
	if err != nil {
		return "", errs.Wrap(errs.KindUpstreamUnavailable, "render: failed to create temp video", err)
	}
	silentVideo.Close()
	defer os.Remove(silentVideo.Name())

	if err := r.runAnimationModel(ctx, coeffsFile, referenceImagePath, silentVideo.Name(), opts); err != nil {
		return "", errs.Wrap(errs.KindUpstreamUnavailable, "render: animation model failed", err)
	}

	if err := r.muxAudio(ctx, silentVideo.Name(), audioPath, outputPath); err != nil {
		return "", errs.Wrap(errs.KindUpstreamUnavailable, "render: audio mux failed", err)
	}

	return outputPath, nil
}

func (r *SubprocessRenderer) writeCoeffsJSON(bundle *coeffs.Bundle) (string, error) {
	lip := make([]int, 0, len(bundle.LipChannels))
	for idx := range bundle.LipChannels {
		lip = append(lip, idx)
	}
	wire := wireBundle{
		Frames:      bundle.Frames,
		ExpRange:    [2]int{bundle.ExpRange.Start, bundle.ExpRange.End},
		PoseRange:   [2]int{bundle.PoseRange.Start, bundle.PoseRange.End},
		LipChannels: lip,
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("marshal coefficients: %w", err)
	}

	f, err := os.CreateTemp("", "personagen-coeffs-*.json")
	if err != nil {
		return "", fmt.Errorf("create coeffs file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("write coeffs file: %w", err)
	}
	return f.Name(), nil
}

func (r *SubprocessRenderer) runAnimationModel(ctx context.Context, coeffsFile, referenceImagePath, outputPath string, opts Options) error {
	args := []string{
		"render",
		"--coeffs", coeffsFile,
		"--image", referenceImagePath,
		"--output", outputPath,
		"--fps", fmt.Sprintf("%d", opts.FPS),
		"--resolution", fmt.Sprintf("%d", opts.Resolution),
	}
	if opts.Enhance {
		args = append(args, "--enhance")
	}

	cmd := exec.CommandContext(ctx, r.BinaryPath, args...)
	stderr, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("animation model exited: %w: %s", err, string(stderr))
	}
	return nil
}

// muxAudio combines the silent animated video with the narration track,
// the same way services/ffmpeg.go's RenderClipFromVideo discards a
// generated video's own audio track in favor of the narration.
func (r *SubprocessRenderer) muxAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	ffmpegPath := r.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-b:a", "192k",
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-y",
		outputPath,
	}
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg mux failed: %w: %s", err, string(out))
	}
	return nil
}
