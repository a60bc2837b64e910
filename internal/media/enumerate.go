package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
)

var (
	imageExtensions = []string{".png", ".jpg", ".jpeg"}
	videoExtensions = []string{".mp4", ".mov", ".avi", ".webm", ".mkv"}
)

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
}

// Extensions returns the allow-list for the given kind
func Extensions(kind models.MediaKind) []string {
	switch kind {
	case models.KindImage:
		return imageExtensions
	case models.KindVideo:
		return videoExtensions
	default:
		return nil
	}
}

// KindOf infers the media kind from the file extension
func KindOf(name string) (models.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, kind := range []models.MediaKind{models.KindImage, models.KindVideo} {
		for _, e := range Extensions(kind) {
			if ext == e {
				return kind, true
			}
		}
	}
	return "", false
}

// MIMEType returns the MIME type for a supported file, or application/octet-stream
func MIMEType(name string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Enumerate lists dir without recursing and returns the files whose extension matches one
// of kinds. Entries come back in the order the directory yields them.
func Enumerate(dir string, kinds ...models.MediaKind) ([]models.MediaItem, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}
	defer f.Close()

	// f.ReadDir keeps directory order; os.ReadDir would sort by name
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var items []models.MediaItem
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		kind, ok := KindOf(entry.Name())
		if !ok || !wanted(kind, kinds) {
			continue
		}
		items = append(items, models.MediaItem{
			Path: filepath.Join(dir, entry.Name()),
			Name: entry.Name(),
			Kind: kind,
		})
	}
	return items, nil
}

func wanted(kind models.MediaKind, kinds []models.MediaKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// BaseName strips the extension from a file name
func BaseName(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}
