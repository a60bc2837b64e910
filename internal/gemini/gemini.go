package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/providers"
	"google.golang.org/api/option"
)

// Inline requests are capped at 20MB in total. A whole video is sent alone with the
// instruction, never alongside frames, and transports that base64 the body grow it by 4/3,
// so the raw video must stay under 3/4 of the cap minus room for the instruction.
const (
	maxRequestBytes     = 20 * 1024 * 1024
	instructionHeadroom = 64 * 1024
	maxInlineVideoBytes = maxRequestBytes*3/4 - instructionHeadroom
)

// Gemini is a provider for Google Gemini
type Gemini struct {
	client *genai.Client
}

// New returns a new Gemini provider holding one client for the whole run
func New(ctx context.Context, apiKey string) (*Gemini, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

// AcceptsVideo reports whether a video can be sent inline instead of as frames
func (g *Gemini) AcceptsVideo(mimeType string, size int64) bool {
	return strings.HasPrefix(mimeType, "video/") && size <= maxInlineVideoBytes
}

// Describe sends the media followed by the instruction text
func (g *Gemini) Describe(ctx context.Context, config providers.Config, payload providers.Payload) (string, error) {
	model := g.client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))
	model.SetMaxOutputTokens(int32(config.MaxTokens))

	parts := make([]genai.Part, 0, len(payload.Media)+1)
	for _, part := range payload.Media {
		parts = append(parts, genai.Blob{MIMEType: part.MIMEType, Data: part.Data})
	}
	parts = append(parts, genai.Text(payload.Instruction))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", providers.ErrEmptyResponse
	}

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		if txt, ok := p.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return text.String(), nil
}

func (g *Gemini) Close(ctx context.Context) error {
	return g.client.Close()
}
