package media

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}

func names(items []models.MediaItem) []string {
	var out []string
	for _, item := range items {
		out = append(out, item.Name)
	}
	sort.Strings(out)
	return out
}

func TestEnumerate(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "c.jpeg", "d.gif", "e.txt", "f.mp4", "g.MKV", "h.webm", "noext"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.jpg"), 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "nested.jpg", "inner.jpg"))

	tests := []struct {
		name     string
		kinds    []models.MediaKind
		expected []string
	}{
		{
			name:     "images only",
			kinds:    []models.MediaKind{models.KindImage},
			expected: []string{"a.jpg", "b.PNG", "c.jpeg"},
		},
		{
			name:     "videos only",
			kinds:    []models.MediaKind{models.KindVideo},
			expected: []string{"f.mp4", "g.MKV", "h.webm"},
		},
		{
			name:     "both kinds",
			kinds:    []models.MediaKind{models.KindImage, models.KindVideo},
			expected: []string{"a.jpg", "b.PNG", "c.jpeg", "f.mp4", "g.MKV", "h.webm"},
		},
		{
			name:     "no kinds",
			kinds:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Enumerate(dir, tt.kinds...)
			if err != nil {
				t.Fatalf("Enumerate failed: %v", err)
			}
			got := names(items)
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			for _, item := range items {
				if item.Path != filepath.Join(dir, item.Name) {
					t.Errorf("Expected path in %s, got %s", dir, item.Path)
				}
			}
		})
	}
}

func TestEnumerateKeepsDirectoryOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.jpg", "alpha.png", "notes.txt", "mid.jpeg", "beta.JPG", "clip.mp4", "omega.png"} {
		touch(t, filepath.Join(dir, name))
	}

	f, err := os.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	var expected []string
	for _, entry := range entries {
		if kind, ok := KindOf(entry.Name()); ok && kind == models.KindImage {
			expected = append(expected, entry.Name())
		}
	}

	items, err := Enumerate(dir, models.KindImage)
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	var got []string
	for _, item := range items {
		got = append(got, item.Name)
	}

	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected directory order %v, got %v", expected, got)
	}
}

func TestEnumerateKinds(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "clip.MOV"))
	touch(t, filepath.Join(dir, "still.JPG"))

	items, err := Enumerate(dir, models.KindImage, models.KindVideo)
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	for _, item := range items {
		switch item.Name {
		case "clip.MOV":
			if item.Kind != models.KindVideo {
				t.Errorf("Expected video kind for %s, got %s", item.Name, item.Kind)
			}
		case "still.JPG":
			if item.Kind != models.KindImage {
				t.Errorf("Expected image kind for %s, got %s", item.Name, item.Kind)
			}
		}
	}
}

func TestEnumerateEmptyAndMissing(t *testing.T) {
	items, err := Enumerate(t.TempDir(), models.KindImage)
	if err != nil {
		t.Fatalf("Enumerate failed on empty dir: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}

	if _, err := Enumerate("/nonexistent/path", models.KindImage); err == nil {
		t.Error("Expected error for missing directory, got nil")
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"a.JPG":  "image/jpeg",
		"a.png":  "image/png",
		"a.mov":  "video/quicktime",
		"a.mkv":  "video/x-matroska",
		"a.webm": "video/webm",
		"a.bin":  "application/octet-stream",
	}
	for name, expected := range tests {
		if got := MIMEType(name); got != expected {
			t.Errorf("MIMEType(%s): expected %s, got %s", name, expected, got)
		}
	}
}

func TestBaseName(t *testing.T) {
	if got := BaseName("/tmp/dir/clip.final.mp4"); got != "clip.final" {
		t.Errorf("Expected clip.final, got %s", got)
	}
}

func TestFitWithin(t *testing.T) {
	const ceiling = 1280 * 720

	tests := []struct {
		name   string
		w, h   int
		resize bool
	}{
		{name: "under ceiling", w: 900, h: 900, resize: false},
		{name: "exactly at ceiling", w: 1280, h: 720, resize: false},
		{name: "square over ceiling", w: 2000, h: 2000, resize: true},
		{name: "wide over ceiling", w: 4000, h: 1000, resize: true},
		{name: "tall over ceiling", w: 1080, h: 1920, resize: true},
		{name: "odd sizes", w: 3001, h: 1999, resize: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nw, nh, resized := FitWithin(tt.w, tt.h, ceiling)
			if resized != tt.resize {
				t.Fatalf("Expected resize=%v, got %v", tt.resize, resized)
			}
			if !resized {
				if nw != tt.w || nh != tt.h {
					t.Errorf("Expected unchanged %dx%d, got %dx%d", tt.w, tt.h, nw, nh)
				}
				return
			}
			if nw*nh > ceiling {
				t.Errorf("Expected at most %d pixels, got %d (%dx%d)", ceiling, nw*nh, nw, nh)
			}
			orig := float64(tt.w) / float64(tt.h)
			got := float64(nw) / float64(nh)
			if math.Abs(orig-got)/orig > 0.01 {
				t.Errorf("Aspect ratio drifted: expected %.4f, got %.4f", orig, got)
			}
		})
	}
}

func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, h/2, color.RGBA{R: 255, A: 255})
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	defer f.Close()
	if strings.HasSuffix(path, ".png") {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, nil)
	}
	if err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "a.jpg")
	large := filepath.Join(dir, "b.png")
	writeTestImage(t, small, 900, 900)
	writeTestImage(t, large, 2000, 2000)

	smallBefore, _ := os.ReadFile(small)
	largeBefore, _ := os.ReadFile(large)

	img, err := LoadImage(small, 1280*720)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if img.Resized {
		t.Error("Expected 900x900 image to be left alone")
	}
	if string(img.Data) != string(smallBefore) {
		t.Error("Expected original bytes for image under the ceiling")
	}
	if img.MIMEType != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", img.MIMEType)
	}

	img, err = LoadImage(large, 1280*720)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if !img.Resized {
		t.Fatal("Expected 2000x2000 image to be resized")
	}
	if img.Width*img.Height > 1280*720 {
		t.Errorf("Expected at most %d pixels, got %dx%d", 1280*720, img.Width, img.Height)
	}
	if img.Width != img.Height {
		t.Errorf("Expected square result, got %dx%d", img.Width, img.Height)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("Expected image/png, got %s", img.MIMEType)
	}

	cfg, _, err := image.DecodeConfig(strings.NewReader(string(img.Data)))
	if err != nil {
		t.Fatalf("Resized data does not decode: %v", err)
	}
	if cfg.Width != img.Width || cfg.Height != img.Height {
		t.Errorf("Encoded size %dx%d does not match %dx%d", cfg.Width, cfg.Height, img.Width, img.Height)
	}

	largeAfter, _ := os.ReadFile(large)
	if string(largeAfter) != string(largeBefore) {
		t.Error("Expected source file to be untouched")
	}
}

func TestReplaceSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.jpg")
	writeTestImage(t, path, 1600, 1200)

	img, err := LoadImage(path, 640*480)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if err := ReplaceSource(path, img); err != nil {
		t.Fatalf("ReplaceSource failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Replaced file does not decode: %v", err)
	}
	if cfg.Width*cfg.Height > 640*480 {
		t.Errorf("Expected replaced file within ceiling, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestLoadImageCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(path, 100); err == nil {
		t.Error("Expected error for corrupt image, got nil")
	}
}

func TestFrameSamplerArgs(t *testing.T) {
	s := FrameSampler{FPS: 1.0, MaxPixels: 360 * 420, MaxFrames: 8}
	args := s.Args("/in/clip.mp4", "/out")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-i /in/clip.mp4",
		"fps=1,scale=",
		"sqrt(151200/(iw*ih))",
		"scale='max(2,trunc(iw*",
		":'max(2,trunc(ih*",
		"-frames:v 8",
		"/out/frame_%04d.jpg",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected args to contain %q, got %s", want, joined)
		}
	}

	args = FrameSampler{}.Args("v.mkv", "o")
	joined = strings.Join(args, " ")
	if strings.Contains(joined, "scale=") || strings.Contains(joined, "-frames:v") {
		t.Errorf("Expected no scale or frame cap by default, got %s", joined)
	}
	if !strings.Contains(joined, "fps=1 ") {
		t.Errorf("Expected default fps=1, got %s", joined)
	}
}

func TestFrameSamplerMissingVideo(t *testing.T) {
	_, err := FrameSampler{}.Sample(t.Context(), "/nonexistent/clip.mp4")
	if err == nil {
		t.Error("Expected error for missing video, got nil")
	}
}
