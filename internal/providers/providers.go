package providers

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a provider answers without any text
var ErrEmptyResponse = errors.New("empty response from model")

// Config represents the generation parameters sent with every request
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Part is a single media attachment of a prompt
type Part struct {
	MIMEType string
	Data     []byte
}

// Payload is a single user-role message: the media plus the instruction text
type Payload struct {
	Instruction string
	Media       []Part
}

// Provider defines the interface for a vision-language inference backend
type Provider interface {
	// Name returns the backend name, e.g. "ollama"
	Name() string

	// Describe sends the payload and returns the raw generated text.
	Describe(ctx context.Context, config Config, payload Payload) (string, error)

	// Close releases whatever the provider holds for the run.
	Close(ctx context.Context) error
}

// HealthChecker is implemented by providers that can verify the backend before a run
type HealthChecker interface {
	CheckHealth(ctx context.Context, model string) error
}

// VideoAccepter is implemented by providers that take a whole video file as input
// instead of sampled frames.
type VideoAccepter interface {
	AcceptsVideo(mimeType string, size int64) bool
}
