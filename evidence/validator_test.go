package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"go-siren/types"
)

// newChatServer serves the chat-completions endpoint with a fixed assistant
// reply.
func newChatServer(t *testing.T, status int, content string) *openai.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "test",
			Object: "chat.completion",
			Model:  openai.GPT4oMini,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		})
	}))
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	return openai.NewClientWithConfig(config)
}

func TestValidateNoiseParsesModelResponse(t *testing.T) {
	t.Parallel()

	content := "```json\n{\"isNoisePollution\": true, \"confidence\": 90, \"severity\": \"high\", \"details\": \"Jackhammer nearby\"}\n```"
	v := &OpenAIValidator{client: newChatServer(t, http.StatusOK, content), model: openai.GPT4oMini}

	verdict, err := v.ValidateNoise(context.Background(), types.NoiseMeasurement{Avg: 95, Max: 110}, types.GeoPoint{})
	if err != nil {
		t.Fatalf("ValidateNoise returned error: %v", err)
	}
	if !verdict.Accepted || verdict.Confidence != 90 || verdict.Severity != "high" {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestValidateNoiseUnavailable(t *testing.T) {
	t.Parallel()

	v := &OpenAIValidator{client: newChatServer(t, http.StatusBadGateway, ""), model: openai.GPT4oMini}

	_, err := v.ValidateNoise(context.Background(), types.NoiseMeasurement{}, types.GeoPoint{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestValidateImageRejectsNonImageTypes(t *testing.T) {
	t.Parallel()

	v := &OpenAIValidator{client: newChatServer(t, http.StatusOK, "{}"), model: openai.GPT4oMini}

	_, err := v.ValidateImage(context.Background(), types.CheckpointImage{}, types.NoiseLevel, types.GeoPoint{})
	if err == nil {
		t.Fatal("noise signals do not take image evidence")
	}
}

func TestImageDataURL(t *testing.T) {
	t.Parallel()

	if got := imageDataURL("abc123"); got != "data:image/jpeg;base64,abc123" {
		t.Errorf("imageDataURL = %q", got)
	}
	full := "data:image/png;base64,abc123"
	if got := imageDataURL(full); got != full {
		t.Errorf("existing data URL was rewritten: %q", got)
	}
}
