package dataset

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/media"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/sidecar"
	"github.com/parquet-go/parquet-go"
)

// Record is one captioned media file in an exported dataset
type Record struct {
	File    string `parquet:"file"`
	Kind    string `parquet:"kind"`
	Caption string `parquet:"caption"` // sidecar content as written, appended runs included
}

// Collect pairs every image and video in dir with its sidecar caption. Files without a
// caption are left out.
func Collect(dir string) ([]Record, error) {
	items, err := media.Enumerate(dir, models.KindImage, models.KindVideo)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, item := range items {
		caption, err := sidecar.Existing(sidecar.PathFor(item))
		if err != nil {
			return nil, fmt.Errorf("failed to read caption for %s: %w", item.Name, err)
		}
		if caption == "" {
			slog.Debug("No caption, leaving out of dataset", "file", item.Name)
			continue
		}
		records = append(records, Record{
			File:    item.Name,
			Kind:    string(item.Kind),
			Caption: caption,
		})
	}

	slog.Debug("Collected dataset records", "dir", dir, "files", len(items), "records", len(records))
	return records, nil
}

// Write stores records as a Parquet file at path
func Write(path string, records []Record) error {
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// Load reads an exported dataset back
func Load(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	records := make([]Record, 0, pf.NumRows())
	rows := make([]Record, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if err != nil {
			break
		}
	}
	return records, nil
}
