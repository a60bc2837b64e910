package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
	"gopkg.in/yaml.v3"
)

// RunConfig represents the configuration section of the report
type RunConfig struct {
	RunID     string `yaml:"runid"`
	Dir       string `yaml:"dir"`
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Prompt    string `yaml:"prompt"`
	Timestamp string `yaml:"timestamp"`
	Duration  string `yaml:"duration"`
}

// Totals counts the outcomes of a run
type Totals struct {
	Captioned int `yaml:"captioned"`
	Skipped   int `yaml:"skipped"`
	Failed    int `yaml:"failed"`
}

// ItemReport represents a single processed file
type ItemReport struct {
	File    string  `yaml:"file"`
	Kind    string  `yaml:"kind"`
	Sidecar string  `yaml:"sidecar,omitempty"`
	Outcome string  `yaml:"outcome,omitempty"`
	Resized bool    `yaml:"resized,omitempty"`
	Caption string  `yaml:"caption,omitempty"`
	Error   string  `yaml:"error,omitempty"`
	Seconds float64 `yaml:"seconds"`
}

// Report represents the complete run report
type Report struct {
	Config  RunConfig    `yaml:"config"`
	Totals  Totals       `yaml:"totals"`
	Results []ItemReport `yaml:"results"`
}

// FromSummary converts a run summary into a report with a fresh run id
func FromSummary(summary *models.RunSummary) Report {
	r := Report{
		Config: RunConfig{
			RunID:     uuid.NewString(),
			Dir:       summary.Dir,
			Provider:  summary.Provider,
			Model:     summary.Model,
			Prompt:    summary.Prompt,
			Timestamp: summary.StartedAt.Format(time.RFC3339),
			Duration:  summary.Duration.Round(time.Millisecond).String(),
		},
		Totals: Totals{
			Captioned: summary.Captioned,
			Skipped:   summary.Skipped,
			Failed:    summary.Failed,
		},
		Results: make([]ItemReport, 0, len(summary.Results)),
	}

	for _, res := range summary.Results {
		r.Results = append(r.Results, ItemReport{
			File:    res.Item.Name,
			Kind:    string(res.Item.Kind),
			Sidecar: res.SidecarPath,
			Outcome: res.Outcome,
			Resized: res.Resized,
			Caption: res.Caption,
			Error:   res.Error,
			Seconds: res.ProcessingTime.Seconds(),
		})
	}
	return r
}

// SaveToYAML writes the report for summary to path and returns the absolute path
func SaveToYAML(path string, summary *models.RunSummary) (string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	report := FromSummary(summary)
	data, err := yaml.Marshal(&report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(path)
	return absPath, nil
}
