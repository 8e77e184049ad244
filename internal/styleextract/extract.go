package styleextract

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/relayframe/personagen/internal/errs"
	"github.com/relayframe/personagen/internal/style"
)

const (
	minValidFrames = 10

	// sampleStride keeps one frame every 3-5 decoded frames; 4 sits in the
	// middle of that range.
	sampleStride = 4
)

// Options configures an extraction run.
type Options struct {
	Detector LandmarkDetector // nil uses BoundingBoxTracker
}

// BuildStyleFromReference samples frames from videoPath, estimates head
// pose per sampled frame, and derives a named StyleProfile from the
// aggregate statistics.
func BuildStyleFromReference(ctx context.Context, videoPath, name string, opts Options) (style.Profile, error) {
	duration, err := probeDuration(ctx, videoPath)
	if err != nil {
		return style.Profile{}, errs.Wrap(errs.KindUpstreamUnavailable, "styleextract: failed to probe video duration", err)
	}

	detector := opts.Detector
	if detector == nil {
		detector = BoundingBoxTracker{}
	}

	poses, err := collectPoses(ctx, videoPath, detector)
	if err != nil {
		return style.Profile{}, errs.Wrap(errs.KindUpstreamUnavailable, "styleextract: frame decoding failed", err)
	}
	if len(poses) < minValidFrames {
		return style.Profile{}, errs.New(errs.KindInsufficientReferenceData,
			fmt.Sprintf("styleextract: only %d valid frames, need at least %d", len(poses), minValidFrames))
	}

	return deriveProfile(name, poses, duration), nil
}

func collectPoses(ctx context.Context, videoPath string, detector LandmarkDetector) ([]pose, error) {
	src, err := newFFmpegFrameSource(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var poses []pose
	count := 0
	for {
		frame, ok, err := src.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if count%sampleStride == 0 {
			if p, valid := detector.Detect(frame); valid {
				poses = append(poses, p)
			}
		}
		count++
	}
	return poses, nil
}

// deriveProfile turns aggregate pose statistics into a concrete motion
// recipe.
func deriveProfile(name string, poses []pose, duration float64) style.Profile {
	yaw := make([]float64, len(poses))
	pitch := make([]float64, len(poses))
	roll := make([]float64, len(poses))
	for i, p := range poses {
		yaw[i] = p.yaw
		pitch[i] = p.pitch
		roll[i] = p.roll
	}

	poseMax := style.Triple{
		Yaw:   p95Abs(yaw),
		Pitch: p95Abs(pitch),
		Roll:  p95Abs(roll),
	}

	stdYaw := stat.StdDev(yaw, nil)
	stdPitch := stat.StdDev(pitch, nil)
	stdRoll := stat.StdDev(roll, nil)

	poseScale := style.Triple{
		Yaw:   clampUnit(stdYaw / 0.3 * 0.8),
		Pitch: clampUnit(stdPitch / 0.2 * 0.7),
		Roll:  clampUnit(stdRoll / 0.15 * 0.6),
	}

	e := stdYaw + stdPitch + stdRoll
	var smoothing, stillness, exprStrength float64
	switch {
	case e < 0.3:
		smoothing, stillness, exprStrength = 0.85, 0.90, 0.6
	case e < 0.6:
		smoothing, stillness, exprStrength = 0.70, 0.75, 0.8
	default:
		smoothing, stillness, exprStrength = 0.60, 0.60, 1.0
	}

	nodRate := 0.0
	if duration > 0 {
		nodRate = float64(signChanges(pitch)) / duration
	}
	nodAmplitude := stdPitch * 0.5

	return style.Profile{
		Name:                 name,
		PoseMax:              poseMax,
		PoseScale:            poseScale,
		ExprStrength:         exprStrength,
		Smoothing:            smoothing,
		StillnessOnPause:     stillness,
		StillnessExprOnPause: stillness,
		NodRate:              nodRate,
		NodAmplitude:         nodAmplitude,
	}
}

// p95Abs returns the 95th percentile of the absolute values in xs.
func p95Abs(xs []float64) float64 {
	abs := make([]float64, len(xs))
	for i, v := range xs {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	return stat.Quantile(0.95, stat.Empirical, abs, nil)
}

func clampUnit(v float64) float64 {
	if v < 0.3 {
		return 0.3
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// signChanges counts the number of sign flips in a series, the proxy for
// "number of nods" in a pitch trace.
func signChanges(xs []float64) int {
	count := 0
	for i := 1; i < len(xs); i++ {
		if (xs[i-1] > 0 && xs[i] < 0) || (xs[i-1] < 0 && xs[i] > 0) {
			count++
		}
	}
	return count
}

func probeDuration(ctx context.Context, videoPath string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	}
	cmd := exec.CommandContext(ctx, "ffprobe", args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return seconds, nil
}
