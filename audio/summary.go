package audio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"

	"go-siren/geo"
	"go-siren/types"
)

// ErrNoSignals means no signal is within the requested radius.
var ErrNoSignals = errors.New("no signals nearby")

const (
	summaryModel      = "gemini-2.5-flash"
	maxSummarySignals = 5
)

const summaryPromptTemplate = "You are a navigation assistant. Generate a natural, conversational audio alert (2-3 sentences) for a driver based on these nearby civic signals: %s. Focus on the most relevant information and safety. Be concise and clear."

// Summary is a spoken proximity alert for the driver.
type Summary struct {
	Text         string  `json:"summary"`
	AudioContent string  `json:"audioContent,omitempty"`
	SignalCount  int     `json:"signalCount"`
	NearestKm    float64 `json:"nearestDistance"`
}

// Summarizer turns nearby signals into a short spoken alert.
type Summarizer struct {
	gemini *genai.Client
	tts    *TTSClient
	cache  *SignalCache
}

func NewSummarizer(ctx context.Context, cache *SignalCache) (*Summarizer, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	return &Summarizer{
		gemini: client,
		tts:    NewTTSClient(),
		cache:  cache,
	}, nil
}

type nearbySignal struct {
	signal     types.Signal
	distanceKm float64
}

// nearbySignals filters the cached set to the signals within radiusKm of the
// listener, sorted nearest first.
func nearbySignals(signals []types.Signal, lat, lon, radiusKm float64) []nearbySignal {
	var nearby []nearbySignal
	for _, signal := range signals {
		dist := geo.Distance(lat, lon, signal.Lat, signal.Lon)
		if dist <= radiusKm {
			nearby = append(nearby, nearbySignal{signal: signal, distanceKm: dist})
		}
	}
	sort.Slice(nearby, func(i, j int) bool { return nearby[i].distanceKm < nearby[j].distanceKm })
	return nearby
}

// describeSignals renders the closest signals as "label at distance" phrases
// for the alert prompt.
func describeSignals(nearby []nearbySignal) string {
	top := nearby
	if len(top) > maxSummarySignals {
		top = top[:maxSummarySignals]
	}
	descriptions := make([]string, 0, len(top))
	for _, item := range top {
		descriptions = append(descriptions, fmt.Sprintf("%s at %s", item.signal.SignalType.Label(), geo.FormatDistance(item.distanceKm)))
	}
	return strings.Join(descriptions, ", ")
}

// SummarizeNearby builds a conversational alert for the signals within
// radiusKm of the listener and synthesizes it to MP3. TTS failure still
// returns the text summary alongside the error.
func (s *Summarizer) SummarizeNearby(ctx context.Context, lat, lon, radiusKm float64) (*Summary, error) {
	nearby := nearbySignals(s.cache.Signals(), lat, lon, radiusKm)
	if len(nearby) == 0 {
		return nil, ErrNoSignals
	}

	text := s.generateText(ctx, describeSignals(nearby), len(nearby))

	summary := &Summary{
		Text:        text,
		SignalCount: len(nearby),
		NearestKm:   nearby[0].distanceKm,
	}

	audioContent, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return summary, err
	}
	summary.AudioContent = audioContent
	return summary, nil
}

// generateText asks Gemini for the alert, falling back to a plain sentence
// when the model is unavailable.
func (s *Summarizer) generateText(ctx context.Context, signalSummary string, count int) string {
	prompt := fmt.Sprintf(summaryPromptTemplate, signalSummary)
	userContent := genai.NewContentFromText(prompt, genai.RoleUser)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.7)),
		MaxOutputTokens: int32(200),
	}

	resp, err := s.gemini.Models.GenerateContent(ctx, summaryModel, []*genai.Content{userContent}, config)
	if err == nil && resp.Text() != "" {
		return strings.TrimSpace(resp.Text())
	}
	if err != nil {
		log.Printf("Gemini summary error: %v", err)
	}

	plural := ""
	if count > 1 {
		plural = "s"
	}
	return fmt.Sprintf("You have %d signal%s nearby: %s", count, plural, signalSummary)
}
