package sidecar

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/media"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/utils"
)

// Separator joins a new caption onto existing sidecar content
const Separator = ", "

// VideoDir is the subdirectory that holds sidecars for videos
const VideoDir = "video_prompts"

// Policy decides what happens when a sidecar already has content
type Policy string

const (
	PolicyAppend    Policy = "append"
	PolicyOverwrite Policy = "overwrite"
	PolicySkip      Policy = "skip"
)

// ParsePolicy validates a policy name
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAppend, PolicyOverwrite, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("invalid sidecar policy %q. Must be 'append', 'overwrite', or 'skip'", s)
	}
}

// Outcome reports what Merge did to the sidecar
type Outcome string

const (
	Created     Outcome = "created"
	Appended    Outcome = "appended"
	Overwritten Outcome = "overwritten"
	Skipped     Outcome = "skipped"
)

// PathFor returns the sidecar location for an item: next to images, and under
// video_prompts/ for videos.
func PathFor(item models.MediaItem) string {
	dir := filepath.Dir(item.Path)
	if item.Kind == models.KindVideo {
		dir = filepath.Join(dir, VideoDir)
	}
	return filepath.Join(dir, media.BaseName(item.Name)+".txt")
}

// Existing returns the trimmed content of the sidecar, or "" when it is absent
func Existing(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read sidecar: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ShouldSkip reports whether the item can be skipped before any inference happens
func ShouldSkip(path string, policy Policy) (bool, error) {
	if policy != PolicySkip {
		return false, nil
	}
	existing, err := Existing(path)
	if err != nil {
		return false, err
	}
	return existing != "", nil
}

// Merge commits caption to the sidecar at path according to policy. The file is
// replaced atomically; a crash leaves either the old or the new content.
func Merge(path, caption string, policy Policy) (Outcome, error) {
	caption = strings.TrimSpace(caption)

	existing, err := Existing(path)
	if err != nil {
		return "", err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil

	content := caption
	outcome := Created
	switch {
	case existing == "" && exists:
		outcome = Overwritten
	case existing == "":
		outcome = Created
	case policy == PolicySkip:
		return Skipped, nil
	case policy == PolicyOverwrite:
		outcome = Overwritten
	default:
		content = existing + Separator + caption
		outcome = Appended
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create sidecar directory: %w", err)
	}
	if err := utils.WriteFileAtomic(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write sidecar: %w", err)
	}
	return outcome, nil
}
