package governor

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-audio/wav"
	"gonum.org/v1/gonum/stat"
)

// audioMask computes the per-frame audio mask a[t]: short time RMS energy
// with hop = sample_rate/fps, thresholded against
// max(1e-4, 1.5*P20(rms)). Frames below threshold get 0.05, at/above get
// 1.0.
func audioMask(audioPath string, frameCount, fps int) ([]float64, error) {
	samples, sampleRate, err := readPCM(audioPath)
	if err != nil {
		return nil, fmt.Errorf("governor: failed to read audio: %w", err)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("governor: fps must be positive, got %d", fps)
	}

	hop := sampleRate / fps
	if hop <= 0 {
		hop = 1
	}

	rms := make([]float64, frameCount)
	for t := 0; t < frameCount; t++ {
		start := t * hop
		end := start + hop
		if start >= len(samples) {
			rms[t] = 0
			continue
		}
		if end > len(samples) {
			end = len(samples)
		}
		rms[t] = rmsOf(samples[start:end])
	}

	threshold := computeThreshold(rms)

	mask := make([]float64, frameCount)
	for t, v := range rms {
		if v >= threshold {
			mask[t] = 1.0
		} else {
			mask[t] = 0.05
		}
	}
	return mask, nil
}

func rmsOf(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range window {
		sumSq += s * s
	}
	return math.Sqrt(sumSq / float64(len(window)))
}

// computeThreshold applies threshold = max(1e-4, 1.5 * P20(rms)).
func computeThreshold(rms []float64) float64 {
	if len(rms) == 0 {
		return 1e-4
	}
	sorted := append([]float64(nil), rms...)
	sort.Float64s(sorted)
	p20 := stat.Quantile(0.20, stat.Empirical, sorted, nil)
	threshold := 1.5 * p20
	if threshold < 1e-4 {
		threshold = 1e-4
	}
	return threshold
}

// readPCM decodes a 16-bit PCM WAV file into mono float64 samples in
// [-1, 1], downmixing multi-channel audio by averaging channels.
func readPCM(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate == 0 {
		return nil, 0, fmt.Errorf("wav file missing format/sample rate")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	numFrames := len(buf.Data) / channels
	samples := make([]float64, numFrames)
	const maxAmplitude = 32768.0

	for i := 0; i < numFrames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			idx := i*channels + c
			if idx >= len(buf.Data) {
				continue
			}
			sum += float64(buf.Data[idx]) / maxAmplitude
		}
		samples[i] = sum / float64(channels)
	}

	return samples, buf.Format.SampleRate, nil
}
