package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/captioning"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/picker"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/providers"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/report"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/sidecar"
	"github.com/spf13/cobra"
)

// releaseTimeout bounds provider cleanup, which also runs after Ctrl-C
const releaseTimeout = 30 * time.Second

// pickDir returns the folder named on the command line or asks for one. ok is false when
// the user cancelled the prompt.
func pickDir(args []string, title string) (string, bool, error) {
	if len(args) > 0 {
		dir, err := picker.Resolve(args[0])
		if errors.Is(err, picker.ErrCancelled) {
			return "", false, nil
		}
		return dir, err == nil, err
	}

	var p picker.Picker = &picker.Prompt{}
	dir, err := p.PickDirectory(title)
	if errors.Is(err, picker.ErrCancelled) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return dir, true, nil
}

// policyFor returns the configured sidecar policy or the default for kind
func (a *app) policyFor(kind models.MediaKind) (sidecar.Policy, error) {
	if a.cfg.Policy != "" {
		return sidecar.ParsePolicy(a.cfg.Policy)
	}
	if kind == models.KindVideo {
		return sidecar.PolicyOverwrite, nil
	}
	return sidecar.PolicyAppend, nil
}

// runCaptioning drives one folder run: pick the folder, bring up the provider, caption
// every file, release the provider and optionally write a report.
func (a *app) runCaptioning(cmd *cobra.Command, args []string, kind models.MediaKind, opts captioning.Options, preflight func(providers.Provider) error) error {
	ctx := cmd.Context()

	dir, ok, err := pickDir(args, fmt.Sprintf("Select folder with %ss", kind))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No folder selected. Exiting.")
		return nil
	}

	opts.Policy, err = a.policyFor(kind)
	if err != nil {
		return err
	}
	opts.DryRun = a.dryRun
	opts.Generation = providers.Config{
		Model:       a.cfg.ResolvedModel(),
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	}

	provider, err := newProvider(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := provider.Close(releaseCtx); err != nil {
			slog.Warn("Failed to release provider", "provider", provider.Name(), "error", err)
		}
	}()

	if preflight != nil {
		if err := preflight(provider); err != nil {
			return err
		}
	}

	runner := &captioning.Runner{
		Service:  captioning.NewService(provider, opts),
		Kinds:    []models.MediaKind{kind},
		Provider: provider.Name(),
		Model:    opts.Generation.Model,
	}

	summary, runErr := runner.Run(ctx, dir)
	if a.reportPath != "" && summary != nil {
		path, err := report.SaveToYAML(a.reportPath, summary)
		if err != nil {
			slog.Error("Failed to save report", "error", err)
		} else {
			slog.Info("Run report saved", "path", path)
		}
	}
	return runErr
}
