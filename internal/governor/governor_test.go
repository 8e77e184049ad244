package governor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/relayframe/personagen/internal/coeffs"
	"github.com/relayframe/personagen/internal/intent"
	"github.com/relayframe/personagen/internal/style"
)

// writeTestWAV writes a 16-bit PCM mono WAV file with the given int16
// samples at sampleRate, returning its path.
func writeTestWAV(t *testing.T, dir string, samples []int, sampleRate int) string {
	t.Helper()
	path := filepath.Join(dir, "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   samples,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write test wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close test wav: %v", err)
	}
	return path
}

// loudSamples returns n samples oscillating near full scale (loud speech).
func loudSamples(n int) []int {
	out := make([]int, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = 20000
		} else {
			out[i] = -20000
		}
	}
	return out
}

func explicitBundle(frames int) *coeffs.Bundle {
	// Layout: [0:3)=pose(yaw,pitch,roll), [3:6)=exp, [6:8)=lip.
	data := make([][]float64, frames)
	for t := range data {
		data[t] = []float64{0.2, 0.1, 0.05, 1.0, 1.0, 1.0, 0.42, 0.43}
	}
	return &coeffs.Bundle{
		Frames:      data,
		PoseRange:   coeffs.ChannelRange{Start: 0, End: 3},
		ExpRange:    coeffs.ChannelRange{Start: 3, End: 6},
		LipChannels: map[int]bool{6: true, 7: true},
	}
}

func oneSegmentTiming(totalDuration float64, fps int) intent.IntentTimingMap {
	return intent.IntentTimingMap{
		Segments: []intent.TimingSegment{
			{SegmentIdx: 0, StartTime: 0, EndTime: totalDuration, PauseAfter: 0, SentenceEnd: true},
		},
		TotalDuration: totalDuration,
		FPS:           fps,
	}
}

func TestGovern_PreservesShape(t *testing.T) {
	dir := t.TempDir()
	fps := 25
	frames := 25
	audioPath := writeTestWAV(t, dir, loudSamples(24000), 24000)

	bundle := explicitBundle(frames)
	timing := oneSegmentTiming(float64(frames)/float64(fps), fps)

	out := Govern(bundle, audioPath, timing, style.CalmTech)
	if !coeffs.SameShape(bundle, out) {
		t.Errorf("shape changed: in T=%d D=%d, out T=%d D=%d", bundle.T(), bundle.D(), out.T(), out.D())
	}
}

func TestGovern_LipChannelsBitExact(t *testing.T) {
	dir := t.TempDir()
	fps := 25
	frames := 25
	audioPath := writeTestWAV(t, dir, loudSamples(24000), 24000)

	bundle := explicitBundle(frames)
	timing := oneSegmentTiming(float64(frames)/float64(fps), fps)

	out := Govern(bundle, audioPath, timing, style.Energetic)
	for t2 := range bundle.Frames {
		for _, idx := range []int{6, 7} {
			if out.Frames[t2][idx] != bundle.Frames[t2][idx] {
				t.Fatalf("lip channel %d at frame %d mutated: %f != %f", idx, t2, out.Frames[t2][idx], bundle.Frames[t2][idx])
			}
		}
	}
}

func TestGovern_PoseBounds(t *testing.T) {
	dir := t.TempDir()
	fps := 25
	frames := 25
	audioPath := writeTestWAV(t, dir, loudSamples(24000), 24000)

	bundle := explicitBundle(frames)
	// Push pose values above the ceiling to verify clamping.
	for _, f := range bundle.Frames {
		f[0], f[1], f[2] = 5.0, 5.0, 5.0
	}
	timing := oneSegmentTiming(float64(frames)/float64(fps), fps)

	out := Govern(bundle, audioPath, timing, style.CalmTech)
	poseMax := [3]float64{style.CalmTech.PoseMax.Yaw, style.CalmTech.PoseMax.Pitch, style.CalmTech.PoseMax.Roll}
	for _, f := range out.Frames {
		for k := 0; k < 3; k++ {
			if abs(f[k]) > poseMax[k]+1e-9 {
				t.Errorf("pose channel %d = %f exceeds pose_max %f", k, f[k], poseMax[k])
			}
		}
	}
}

func TestGovern_CompactModeScalarGate(t *testing.T) {
	dir := t.TempDir()
	fps := 25
	frames := 25
	audioPath := writeTestWAV(t, dir, loudSamples(24000), 24000)

	data := make([][]float64, frames)
	for t2 := range data {
		data[t2] = make([]float64, 70)
		for i := range data[t2] {
			data[t2][i] = 1.0
		}
	}
	bundle := &coeffs.Bundle{Frames: data}
	timing := oneSegmentTiming(float64(frames)/float64(fps), fps)

	out := Govern(bundle, audioPath, timing, style.CalmTech)
	if !coeffs.SameShape(bundle, out) {
		t.Fatal("compact mode changed shape")
	}
	for _, f := range out.Frames {
		for _, v := range f {
			ratio := v / 1.0
			if ratio < 0.7-1e-9 || ratio > 0.95+1e-9 {
				t.Errorf("compact scalar gate ratio %f outside [0.7, 0.95]", ratio)
			}
		}
	}
}

func TestGovern_PauseStillness(t *testing.T) {
	dir := t.TempDir()
	fps := 25
	frames := 75 // 3 seconds
	// Silence throughout the audio so the audio mask alone won't force the
	// "loud" branch; this isolates the script-mask pause window.
	silentSamples := make([]int, 24000*3)
	audioPath := writeTestWAV(t, dir, silentSamples, 24000)

	bundle := explicitBundle(frames)
	for _, f := range bundle.Frames {
		f[0], f[1], f[2] = 0.3, 0.2, 0.1
	}

	// One segment [0,2.0) then a pause until total_duration=3.0.
	timing := intent.IntentTimingMap{
		Segments: []intent.TimingSegment{
			{SegmentIdx: 0, StartTime: 0, EndTime: 2.0, PauseAfter: 1.0},
		},
		TotalDuration: 3.0,
		FPS:           fps,
	}

	out := Govern(bundle, audioPath, timing, style.CalmTech)
	// Frames 50..74 (2.0s..3.0s) fall in the pause window; the intent gate
	// already drives them toward zero and the pause override shrinks
	// further, so by the last pause frame the residual should be tiny
	// relative to the pre-governance input magnitude (0.3).
	last := out.Frames[74]
	for k := 0; k < 3; k++ {
		if abs(last[k]) > 0.05 {
			t.Errorf("pose channel %d at last pause frame = %f, expected near-zero", k, last[k])
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
