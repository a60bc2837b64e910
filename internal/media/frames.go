package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FrameSampler extracts still frames from a video with ffmpeg
type FrameSampler struct {
	FFmpegPath string
	FPS        float64
	MaxPixels  int // per frame, 0 keeps the source resolution
	MaxFrames  int // 0 keeps every sampled frame
}

// Args builds the ffmpeg command line writing JPEG frames into outDir
func (s FrameSampler) Args(videoPath, outDir string) []string {
	fps := s.FPS
	if fps <= 0 {
		fps = 1.0
	}

	filters := []string{"fps=" + strconv.FormatFloat(fps, 'f', -1, 64)}
	if s.MaxPixels > 0 {
		// scale down by sqrt(max/area), never up; keep even dimensions of at least 2 for mjpeg
		filters = append(filters, fmt.Sprintf(
			"scale='max(2,trunc(iw*min(1,sqrt(%d/(iw*ih)))/2)*2)':'max(2,trunc(ih*min(1,sqrt(%d/(iw*ih)))/2)*2)'",
			s.MaxPixels, s.MaxPixels))
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", strings.Join(filters, ","),
	}
	if s.MaxFrames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(s.MaxFrames))
	}
	args = append(args, "-q:v", "2", filepath.Join(outDir, "frame_%04d.jpg"))
	return args
}

// Sample runs ffmpeg and returns the encoded frames in playback order. Frames are
// written to a temporary directory that is removed before returning.
func (s FrameSampler) Sample(ctx context.Context, videoPath string) ([][]byte, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file does not exist at path: '%s'", videoPath)
	}

	ffmpeg := s.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	outDir, err := os.MkdirTemp("", "promptcaptioner-frames-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, ffmpeg, s.Args(videoPath, outDir)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, strings.TrimSpace(string(output)))
	}

	files, err := filepath.Glob(filepath.Join(outDir, "frame_*.jpg"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frames extracted from '%s'", videoPath)
	}
	sort.Strings(files)

	frames := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read frame %s: %w", filepath.Base(f), err)
		}
		frames = append(frames, data)
	}

	slog.Debug("Extracted frames", "video", filepath.Base(videoPath), "frames", len(frames))
	return frames, nil
}
