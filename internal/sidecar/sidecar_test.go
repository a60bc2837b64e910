package sidecar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		existing *string
		caption  string
		policy   Policy
		expected string
		outcome  Outcome
	}{
		{
			name:     "absent file gets the trimmed caption",
			existing: nil,
			caption:  "  B \n",
			policy:   PolicyAppend,
			expected: "B",
			outcome:  Created,
		},
		{
			name:     "existing content is joined with comma",
			existing: ptr("A"),
			caption:  "B",
			policy:   PolicyAppend,
			expected: "A, B",
			outcome:  Appended,
		},
		{
			name:     "existing content is trimmed before joining",
			existing: ptr("  A\n\n"),
			caption:  "B",
			policy:   PolicyAppend,
			expected: "A, B",
			outcome:  Appended,
		},
		{
			name:     "empty file gets no leading separator",
			existing: ptr(""),
			caption:  "B",
			policy:   PolicyAppend,
			expected: "B",
			outcome:  Overwritten,
		},
		{
			name:     "whitespace-only file counts as empty",
			existing: ptr(" \n\t"),
			caption:  "B",
			policy:   PolicyAppend,
			expected: "B",
			outcome:  Overwritten,
		},
		{
			name:     "overwrite replaces content",
			existing: ptr("A"),
			caption:  "B",
			policy:   PolicyOverwrite,
			expected: "B",
			outcome:  Overwritten,
		},
		{
			name:     "skip leaves content alone",
			existing: ptr("A"),
			caption:  "B",
			policy:   PolicySkip,
			expected: "A",
			outcome:  Skipped,
		},
		{
			name:     "skip still writes an empty file",
			existing: ptr(""),
			caption:  "B",
			policy:   PolicySkip,
			expected: "B",
			outcome:  Overwritten,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "a.txt")
			if tt.existing != nil {
				if err := os.WriteFile(path, []byte(*tt.existing), 0644); err != nil {
					t.Fatal(err)
				}
			}

			outcome, err := Merge(path, tt.caption, tt.policy)
			if err != nil {
				t.Fatalf("Merge failed: %v", err)
			}
			if outcome != tt.outcome {
				t.Errorf("Expected outcome %s, got %s", tt.outcome, outcome)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read sidecar: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, string(data))
			}
		})
	}
}

func TestMergeRepeatedRunsAccumulate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	for _, caption := range []string{"one", "two", "three"} {
		if _, err := Merge(path, caption, PolicyAppend); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
	}
	data, _ := os.ReadFile(path)
	if string(data) != "one, two, three" {
		t.Errorf("Expected accumulated captions, got %q", string(data))
	}
}

func TestMergeCreatesVideoDir(t *testing.T) {
	dir := t.TempDir()
	item := models.MediaItem{Path: filepath.Join(dir, "clip.mp4"), Name: "clip.mp4", Kind: models.KindVideo}
	path := PathFor(item)

	if _, err := Merge(path, "walking", PolicyOverwrite); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, VideoDir, "clip.txt")); err != nil {
		t.Errorf("Expected sidecar under %s: %v", VideoDir, err)
	}
}

func TestPathFor(t *testing.T) {
	tests := []struct {
		item     models.MediaItem
		expected string
	}{
		{
			item:     models.MediaItem{Path: "/data/a.jpg", Name: "a.jpg", Kind: models.KindImage},
			expected: "/data/a.txt",
		},
		{
			item:     models.MediaItem{Path: "/data/b.final.PNG", Name: "b.final.PNG", Kind: models.KindImage},
			expected: "/data/b.final.txt",
		},
		{
			item:     models.MediaItem{Path: "/data/c.mp4", Name: "c.mp4", Kind: models.KindVideo},
			expected: "/data/video_prompts/c.txt",
		},
	}

	for _, tt := range tests {
		if got := PathFor(tt.item); got != tt.expected {
			t.Errorf("PathFor(%s): expected %s, got %s", tt.item.Name, tt.expected, got)
		}
	}
}

func TestShouldSkip(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.txt")
	empty := filepath.Join(dir, "empty.txt")
	_ = os.WriteFile(full, []byte("A"), 0644)
	_ = os.WriteFile(empty, []byte(""), 0644)

	tests := []struct {
		path     string
		policy   Policy
		expected bool
	}{
		{full, PolicySkip, true},
		{empty, PolicySkip, false},
		{filepath.Join(dir, "missing.txt"), PolicySkip, false},
		{full, PolicyAppend, false},
		{full, PolicyOverwrite, false},
	}

	for _, tt := range tests {
		got, err := ShouldSkip(tt.path, tt.policy)
		if err != nil {
			t.Fatalf("ShouldSkip failed: %v", err)
		}
		if got != tt.expected {
			t.Errorf("ShouldSkip(%s, %s): expected %v, got %v", filepath.Base(tt.path), tt.policy, tt.expected, got)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	for _, s := range []string{"append", "OVERWRITE", " skip "} {
		if _, err := ParsePolicy(s); err != nil {
			t.Errorf("Expected %q to parse, got %v", s, err)
		}
	}
	if _, err := ParsePolicy("merge"); err == nil {
		t.Error("Expected error for unknown policy, got nil")
	}
}

func ptr(s string) *string {
	return &s
}
