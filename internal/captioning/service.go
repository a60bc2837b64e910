package captioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/media"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/providers"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/sidecar"
)

// Options holds the per-run settings shared by every item
type Options struct {
	Instruction   string
	Generation    providers.Config
	MaxPixels     int  // images above this are scaled down before inference
	ResizeInPlace bool // also replace the source file with the scaled image
	Frames        media.FrameSampler
	Policy        sidecar.Policy
	DryRun        bool
}

// Service captions one MediaItem at a time with a run-scoped provider
type Service struct {
	provider providers.Provider
	opts     Options
}

func NewService(provider providers.Provider, opts Options) *Service {
	if opts.Policy == "" {
		opts.Policy = sidecar.PolicyAppend
	}
	return &Service{
		provider: provider,
		opts:     opts,
	}
}

// Caption runs load, infer, clean and persist for a single item. Failures are captured
// in the returned result instead of being returned, so a batch can continue.
func (s *Service) Caption(ctx context.Context, item models.MediaItem) (result models.ItemResult) {
	start := time.Now()
	result = models.ItemResult{
		Item:        item,
		SidecarPath: sidecar.PathFor(item),
	}
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		result.ProcessingTime = time.Since(start)
		// payload buffers are out of scope by now; hand the memory back before the next item
		debug.FreeOSMemory()
	}()

	skip, err := sidecar.ShouldSkip(result.SidecarPath, s.opts.Policy)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if skip {
		result.Outcome = string(sidecar.Skipped)
		return result
	}

	caption, resized, err := s.describe(ctx, item)
	result.Resized = resized
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Caption = caption

	if s.opts.DryRun {
		result.Outcome = "dry_run"
		return result
	}

	outcome, err := sidecar.Merge(result.SidecarPath, caption, s.opts.Policy)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Outcome = string(outcome)
	return result
}

func (s *Service) describe(ctx context.Context, item models.MediaItem) (string, bool, error) {
	payload, resized, err := s.buildPayload(ctx, item)
	if err != nil {
		return "", resized, err
	}

	raw, err := s.provider.Describe(ctx, s.opts.Generation, payload)
	if err != nil {
		return "", resized, err
	}

	caption := CleanCaption(raw, s.opts.Instruction)
	if caption == "" {
		return "", resized, providers.ErrEmptyResponse
	}
	slog.Debug("Raw model output", "file", item.Name, "length", len(raw))
	return caption, resized, nil
}

func (s *Service) buildPayload(ctx context.Context, item models.MediaItem) (providers.Payload, bool, error) {
	payload := providers.Payload{Instruction: s.opts.Instruction}

	switch item.Kind {
	case models.KindImage:
		img, err := media.LoadImage(item.Path, s.opts.MaxPixels)
		if err != nil {
			return payload, false, err
		}
		if img.Resized {
			slog.Info("Resized image", "file", item.Name, "width", img.Width, "height", img.Height)
			if s.opts.ResizeInPlace {
				if err := media.ReplaceSource(item.Path, img); err != nil {
					return payload, true, fmt.Errorf("failed to replace source image: %w", err)
				}
			}
		}
		payload.Media = []providers.Part{{MIMEType: img.MIMEType, Data: img.Data}}
		return payload, img.Resized, nil

	case models.KindVideo:
		mimeType := media.MIMEType(item.Name)
		if va, ok := s.provider.(providers.VideoAccepter); ok {
			info, err := os.Stat(item.Path)
			if err != nil {
				return payload, false, fmt.Errorf("failed to stat video: %w", err)
			}
			if va.AcceptsVideo(mimeType, info.Size()) {
				data, err := os.ReadFile(item.Path)
				if err != nil {
					return payload, false, fmt.Errorf("failed to read video: %w", err)
				}
				payload.Media = []providers.Part{{MIMEType: mimeType, Data: data}}
				return payload, false, nil
			}
		}

		frames, err := s.opts.Frames.Sample(ctx, item.Path)
		if err != nil {
			return payload, false, err
		}
		for _, frame := range frames {
			payload.Media = append(payload.Media, providers.Part{MIMEType: "image/jpeg", Data: frame})
		}
		return payload, false, nil

	default:
		return payload, false, errors.New("unsupported media kind: " + string(item.Kind))
	}
}
