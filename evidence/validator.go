package evidence

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"go-siren/types"
)

// ErrUnavailable means the remote classifier could not be reached at all
// (transport or auth failure). Everything else produces a Verdict.
var ErrUnavailable = errors.New("evidence classifier unavailable")

// Validator classifies captured evidence as supporting a signal report.
type Validator interface {
	ValidateNoise(ctx context.Context, m types.NoiseMeasurement, loc types.GeoPoint) (types.Verdict, error)
	ValidateImage(ctx context.Context, img types.CheckpointImage, sigType types.SignalType, loc types.GeoPoint) (types.Verdict, error)
}

const noisePromptTemplate = `Analyze this noise measurement data and determine if it represents significant noise pollution:

Measurement Data:
- Maximum: %.1f dB
- Minimum: %.1f dB
- Average: %.1f dB
- Duration: %.0f seconds
- Sample count: %d

Context:
- 0-50 dB: Quiet (library, whisper)
- 51-65 dB: Moderate (normal conversation)
- 66-80 dB: Moderately Loud (busy traffic, TV)
- 81-95 dB: Loud (lawnmower, loud music)
- 96+ dB: Very Loud (power tools, concerts) - noise pollution

Consider:
- Is the average noise level sustained above normal ambient levels (>70 dB)?
- Are the peak values indicative of noise pollution (>85 dB)?
- Does the duration suggest persistent noise pollution?

Respond with a JSON object:
{
  "isNoisePollution": boolean,
  "confidence": number (0-100),
  "severity": string ("low", "moderate", "high", or "extreme"),
  "details": string (brief description of the noise characteristics)
}`

const checkpointPrompt = `Analyze this image and determine if there is a police checkpoint, security checkpoint, or law enforcement presence visible.

Consider:
- Police vehicles (marked or unmarked)
- Police officers in uniform
- Checkpoint barriers or signs
- Security personnel
- Law enforcement equipment

Respond with a JSON object:
{
  "hasCheckpoint": boolean,
  "confidence": number (0-100),
  "details": string (brief description of what you see)
}`

const hazardPrompt = `Analyze this image and determine if there is a road hazard, obstacle, or dangerous condition visible.

Respond with a JSON object:
{
  "hasHazard": boolean,
  "confidence": number (0-100),
  "details": string (brief description of the hazard)
}`

// OpenAIValidator sends evidence to an OpenAI vision/chat model and parses
// the free-form response with the two-stage parser.
type OpenAIValidator struct {
	client *openai.Client
	model  string
}

func NewOpenAIValidator() *OpenAIValidator {
	return &OpenAIValidator{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  openai.GPT4oMini,
	}
}

func (v *OpenAIValidator) ValidateNoise(ctx context.Context, m types.NoiseMeasurement, loc types.GeoPoint) (types.Verdict, error) {
	prompt := fmt.Sprintf(noisePromptTemplate, m.Max, m.Min, m.Avg, m.Duration, len(m.Samples))

	resp, err := v.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: v.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an assistant that evaluates environmental noise measurements for noise pollution reports.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   300,
			Temperature: 0.2,
		},
	)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return types.Verdict{}, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	text := resp.Choices[0].Message.Content
	log.Printf("Noise classifier response: %s", text)
	return ParseNoiseVerdict(text, m), nil
}

func (v *OpenAIValidator) ValidateImage(ctx context.Context, img types.CheckpointImage, sigType types.SignalType, loc types.GeoPoint) (types.Verdict, error) {
	var prompt string
	switch sigType {
	case types.Checkpoint:
		prompt = checkpointPrompt
	case types.Hazard:
		prompt = hazardPrompt
	default:
		return types.Verdict{}, fmt.Errorf("signal type %s does not take image evidence", sigType)
	}

	resp, err := v.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: v.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: prompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    imageDataURL(img.ImageData),
								Detail: openai.ImageURLDetailAuto,
							},
						},
					},
				},
			},
			MaxTokens:   300,
			Temperature: 0.2,
		},
	)
	if err != nil {
		return types.Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return types.Verdict{}, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	text := resp.Choices[0].Message.Content
	log.Printf("Image classifier response: %s", text)
	return ParseImageVerdict(text, sigType), nil
}

// imageDataURL normalizes captured image data to a data URL the vision API
// accepts, whether the client sent raw base64 or a full data URL.
func imageDataURL(imageData string) string {
	if strings.HasPrefix(imageData, "data:") {
		return imageData
	}
	return "data:image/jpeg;base64," + imageData
}
