package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const ttsEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// TTSClient synthesizes speech through the Google Text-to-Speech REST API.
type TTSClient struct {
	apiKey string
	http   *http.Client
}

func NewTTSClient() *TTSClient {
	return &TTSClient{
		apiKey: os.Getenv("GOOGLE_TTS_API_KEY"),
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

type ttsRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
		SsmlGender   string `json:"ssmlGender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate,omitempty"`
		Pitch         float64 `json:"pitch"`
		VolumeGainDb  float64 `json:"volumeGainDb"`
	} `json:"audioConfig"`
}

type ttsResponse struct {
	AudioContent string `json:"audioContent"`
}

// Synthesize renders text to MP3 and returns the base64 audio content.
func (t *TTSClient) Synthesize(ctx context.Context, text string) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("GOOGLE_TTS_API_KEY environment variable is required")
	}

	ttsReq := ttsRequest{}
	ttsReq.Input.Text = text
	ttsReq.Voice.LanguageCode = "en-US"
	ttsReq.Voice.Name = "en-US-Neural2-D"
	ttsReq.Voice.SsmlGender = "MALE"
	ttsReq.AudioConfig.AudioEncoding = "MP3"
	ttsReq.AudioConfig.SpeakingRate = 1.0

	payload, err := json.Marshal(ttsReq)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ttsEndpoint+"?key="+t.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("TTS API returned %s: %s", resp.Status, string(body))
	}

	var ttsResp ttsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ttsResp); err != nil {
		return "", fmt.Errorf("decoding TTS response: %w", err)
	}
	if ttsResp.AudioContent == "" {
		return "", fmt.Errorf("no audio content in TTS response")
	}
	return ttsResp.AudioContent, nil
}
