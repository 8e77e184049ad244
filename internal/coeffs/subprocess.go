package coeffs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// SubprocessSource is a thin adapter over an external face-animation binary
// that exposes an audio-to-coefficients stage, invoked the same way the
// rest of this codebase shells out to ffmpeg/ffprobe: one exec.CommandContext
// per call, stdout captured and parsed.
//
// The binary is expected to accept `<bin> coeffs --audio <path> --image
// <path>` and print a JSON document on stdout shaped like wireBundle below.
// This keeps the face-animation model's internals fully external.
type SubprocessSource struct {
	BinaryPath string
}

// NewSubprocessSource constructs a Source that shells out to binaryPath.
func NewSubprocessSource(binaryPath string) *SubprocessSource {
	return &SubprocessSource{BinaryPath: binaryPath}
}

type wireBundle struct {
	Frames      [][]float64 `json:"frames"`
	ExpRange    [2]int      `json:"exp_range"`
	PoseRange   [2]int      `json:"pose_range"`
	LipChannels []int       `json:"lip_channels"`
}

func (s *SubprocessSource) GenerateCoeffs(ctx context.Context, audioPath, referenceImagePath string) (*Bundle, error) {
	cmd := exec.CommandContext(ctx, s.BinaryPath, "coeffs", "--audio", audioPath, "--image", referenceImagePath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &ErrGenerationFailed{Cause: fmt.Errorf("%w (stderr: %s)", err, stderr.String())}
	}

	var wire wireBundle
	if err := json.Unmarshal(stdout.Bytes(), &wire); err != nil {
		return nil, &ErrGenerationFailed{Cause: fmt.Errorf("failed to parse coefficient output: %w", err)}
	}
	if len(wire.Frames) == 0 {
		return nil, &ErrGenerationFailed{Cause: fmt.Errorf("animation model returned zero frames")}
	}

	lips := make(map[int]bool, len(wire.LipChannels))
	for _, idx := range wire.LipChannels {
		lips[idx] = true
	}

	return &Bundle{
		Frames:      wire.Frames,
		ExpRange:    ChannelRange{Start: wire.ExpRange[0], End: wire.ExpRange[1]},
		PoseRange:   ChannelRange{Start: wire.PoseRange[0], End: wire.PoseRange[1]},
		LipChannels: lips,
	}, nil
}
