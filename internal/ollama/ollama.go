package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/providers"
	"github.com/ollama/ollama/api"
)

const defaultHost = "http://localhost:11434"

// Ollama is a provider for a local or remote Ollama server
type Ollama struct {
	client *api.Client
	host   string
	model  string // last model loaded, unloaded on Close
}

// New returns a new Ollama provider. An empty host falls back to OLLAMA_URL, then
// OLLAMA_HOST, then the local default.
func New(host string) (*Ollama, error) {
	if host == "" {
		host = os.Getenv("OLLAMA_URL")
	}
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	return &Ollama{
		client: api.NewClient(base, &http.Client{Timeout: 10 * time.Minute}),
		host:   host,
	}, nil
}

func (o *Ollama) Name() string {
	return "ollama"
}

// CheckHealth verifies the server is reachable and the model is available
func (o *Ollama) CheckHealth(ctx context.Context, model string) error {
	if err := o.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama not reachable at %s: %w", o.host, err)
	}
	if _, err := o.client.Show(ctx, &api.ShowRequest{Model: model}); err != nil {
		return fmt.Errorf("ollama model %q not available (try `ollama pull %s`): %w", model, model, err)
	}
	o.model = model
	return nil
}

// Describe sends the payload as a single chat message with images attached
func (o *Ollama) Describe(ctx context.Context, config providers.Config, payload providers.Payload) (string, error) {
	images := make([]api.ImageData, 0, len(payload.Media))
	for _, part := range payload.Media {
		if !strings.HasPrefix(part.MIMEType, "image/") {
			return "", fmt.Errorf("ollama accepts images only, got %s", part.MIMEType)
		}
		images = append(images, api.ImageData(part.Data))
	}

	stream := false
	req := &api.ChatRequest{
		Model: config.Model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: payload.Instruction,
				Images:  images,
			},
		},
		Stream: &stream,
		Options: map[string]any{
			"num_predict": config.MaxTokens,
			"temperature": config.Temperature,
		},
	}

	// the server may load the model even when the chat itself fails
	o.model = config.Model

	var response strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Ollama API: %w", err)
	}

	if response.Len() == 0 {
		return "", providers.ErrEmptyResponse
	}
	return response.String(), nil
}

// Close asks the server to unload the model used during the run
func (o *Ollama) Close(ctx context.Context) error {
	if o.model == "" {
		return nil
	}
	stream := false
	req := &api.GenerateRequest{
		Model:     o.model,
		Stream:    &stream,
		KeepAlive: &api.Duration{Duration: 0},
	}
	err := o.client.Generate(ctx, req, func(api.GenerateResponse) error { return nil })
	if err != nil {
		return fmt.Errorf("failed to unload ollama model %s: %w", o.model, err)
	}
	slog.Debug("Unloaded model", "provider", "ollama", "model", o.model)
	return nil
}
