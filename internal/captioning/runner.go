package captioning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/media"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
)

// Runner captions every supported file of a directory, one after another
type Runner struct {
	Service  *Service
	Kinds    []models.MediaKind
	Provider string
	Model    string
}

// Run enumerates dir and captions each item in directory order. A failing item is logged
// and counted; it never stops the remaining items. Run only returns an error when the
// directory cannot be listed or ctx is cancelled between items.
func (r *Runner) Run(ctx context.Context, dir string) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		Dir:       dir,
		Provider:  r.Provider,
		Model:     r.Model,
		Prompt:    r.Service.opts.Instruction,
		StartedAt: time.Now(),
	}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
	}()

	items, err := media.Enumerate(dir, r.Kinds...)
	if err != nil {
		return summary, err
	}
	if len(items) == 0 {
		slog.Info("No supported files found", "dir", dir, "kinds", r.Kinds)
		return summary, nil
	}

	slog.Info("Starting captioning run", "dir", dir, "files", len(items), "provider", r.Provider, "model", r.Model)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			slog.Warn("Run interrupted", "processed", i, "total", len(items))
			return summary, err
		}

		slog.Info("Processing "+string(item.Kind), "file", item.Name, "progress", fmt.Sprintf("%d/%d", i+1, len(items)))

		result := r.Service.Caption(ctx, item)
		summary.Add(result)

		switch {
		case result.Error != "":
			slog.Error("Failed to process", "file", item.Name, "error", result.Error)
		case result.Outcome == "skipped":
			slog.Info("Sidecar already has a caption, skipping", "file", item.Name, "sidecar", result.SidecarPath)
		case result.Outcome == "dry_run":
			slog.Info("Generated caption (dry run)", "file", item.Name, "caption", result.Caption)
		default:
			slog.Info("Saved prompt", "file", item.Name, "sidecar", result.SidecarPath, "outcome", result.Outcome, "duration", result.ProcessingTime.Round(time.Millisecond))
		}
	}

	slog.Info("Captioning run complete",
		"captioned", summary.Captioned,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary, nil
}
