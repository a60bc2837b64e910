package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/config"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/gemini"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/ollama"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/openai"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/providers"
)

// newProvider creates the provider for a run and checks it can serve the model before any
// file is touched. The caller owns the provider and must Close it.
func newProvider(ctx context.Context, cfg config.Config) (providers.Provider, error) {
	var (
		p   providers.Provider
		err error
	)
	switch cfg.Provider {
	case "ollama":
		p, err = ollama.New(cfg.OllamaHost)
	case "openai":
		p, err = openai.New("", cfg.OpenAIBaseURL)
	case "gemini":
		p, err = gemini.New(ctx, "")
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	model := cfg.ResolvedModel()
	if hc, ok := p.(providers.HealthChecker); ok {
		if err := hc.CheckHealth(ctx, model); err != nil {
			_ = p.Close(ctx)
			return nil, fmt.Errorf("failed to load model: %w", err)
		}
	}
	slog.Info("Model ready", "provider", p.Name(), "model", model)

	return providers.NewLimited(p, cfg.RequestsPerMinute), nil
}
