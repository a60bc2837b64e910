package models

import "time"

// MediaKind is the kind of media a file holds
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

// MediaItem represents one enumerated file selected for captioning
type MediaItem struct {
	Path string    `json:"path"`
	Name string    `json:"name"`
	Kind MediaKind `json:"kind"`
}

// ItemResult records what happened to a single MediaItem during a run
type ItemResult struct {
	Item           MediaItem     `json:"item"`
	Caption        string        `json:"caption,omitempty"`
	SidecarPath    string        `json:"sidecar_path,omitempty"`
	Outcome        string        `json:"outcome,omitempty"` // "created", "appended", "overwritten", "skipped", "dry_run"
	Resized        bool          `json:"resized,omitempty"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// RunSummary aggregates the results of one captioning run
type RunSummary struct {
	Dir       string        `json:"dir"`
	Provider  string        `json:"provider"`
	Model     string        `json:"model"`
	Prompt    string        `json:"prompt"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Captioned int           `json:"captioned"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Results   []ItemResult  `json:"results"`
}

// Add appends a result and updates the counters
func (s *RunSummary) Add(r ItemResult) {
	switch {
	case r.Error != "":
		s.Failed++
	case r.Outcome == "skipped":
		s.Skipped++
	default:
		s.Captioned++
	}
	s.Results = append(s.Results, r)
}
