package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/providers"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI is a provider for OpenAI and OpenAI-compatible servers (vLLM, LM Studio, ...)
type OpenAI struct {
	client openai.Client
}

// New returns a new OpenAI provider. Empty arguments fall back to OPENAI_API_KEY and
// OPENAI_BASE_URL.
func New(apiKey, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	// self-hosted compatible servers usually ignore the key
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...)}, nil
}

func (o *OpenAI) Name() string {
	return "openai"
}

// Describe sends the payload as one user message with the media as data URLs
func (o *OpenAI) Describe(ctx context.Context, config providers.Config, payload providers.Payload) (string, error) {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(payload.Media)+1)
	for _, part := range payload.Media {
		dataURL := "data:" + part.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(part.Data)
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}))
	}
	parts = append(parts, openai.TextContentPart(payload.Instruction))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(config.Model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
		MaxTokens:   openai.Int(int64(config.MaxTokens)),
		Temperature: openai.Float(config.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", providers.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) Close(ctx context.Context) error {
	return nil
}
