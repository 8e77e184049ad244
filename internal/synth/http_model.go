package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPModel is a Model that calls an external TTS HTTP endpoint, in the
// request style services/elevenlabs.go uses against ElevenLabs: JSON
// request body in. The endpoint is expected to answer with a JSON object
// holding a "samples" array of PCM values and a "sample_rate" field, since
// the acoustic model itself runs as an external service with no fixed
// vendor.
type HTTPModel struct {
	Endpoint string
	client   *http.Client
}

func NewHTTPModel(endpoint string) *HTTPModel {
	return &HTTPModel{Endpoint: endpoint, client: &http.Client{Timeout: 120 * time.Second}}
}

type httpModelRequest struct {
	Text               string  `json:"text"`
	ReferenceAudioPath string  `json:"reference_audio_path"`
	Language           string  `json:"language"`
	Temperature        float64 `json:"temperature"`
	RepetitionPenalty  float64 `json:"repetition_penalty"`
	TopP               float64 `json:"top_p"`
}

type httpModelResponse struct {
	Samples    []float64 `json:"samples"`
	SampleRate int       `json:"sample_rate"`
}

func (m *HTTPModel) Synthesize(ctx context.Context, text, referenceAudioPath, language string, params SamplingParams) ([]float64, int, error) {
	body, err := json.Marshal(httpModelRequest{
		Text:               text,
		ReferenceAudioPath: referenceAudioPath,
		Language:           language,
		Temperature:        params.Temperature,
		RepetitionPenalty:  params.RepetitionPenalty,
		TopP:               params.TopP,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("synth: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("synth: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("synth: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("synth: model returned %d: %s", resp.StatusCode, string(data))
	}

	var out httpModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("synth: decode response: %w", err)
	}
	if out.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("synth: model response missing sample_rate")
	}
	return out.Samples, out.SampleRate, nil
}
