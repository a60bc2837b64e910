package cmd

import (
	"fmt"
	"os/exec"

	"github.com/lehigh-university-libraries/promptcaptioner/internal/captioning"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/config"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/media"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/providers"
	"github.com/spf13/cobra"
)

func newVideosCmd(a *app) *cobra.Command {
	var prompt string
	var character string
	var sampler media.FrameSampler

	cmd := &cobra.Command{
		Use:   "videos [DIR]",
		Short: "Caption every video in a folder",
		Long: `Caption every .mp4, .mov, .avi, .webm and .mkv file directly inside DIR. Captions are
saved to DIR/video_prompts/<name>.txt and replace any earlier caption unless --policy
says otherwise.

Frames are sampled with ffmpeg at --fps and scaled to at most --frame-max-pixels each.
Gemini receives small videos whole instead.`,
		Example: `  # Caption clips, naming the subject in every prompt
  promptcaptioner videos ./clips --character owkiriko

  # Two frames per second, at most 32 frames per clip
  promptcaptioner videos ./clips --fps 2 --max-frames 32`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("prompt") {
				prompt = a.cfg.VideoPrompt
			}
			if !flags.Changed("character") {
				character = a.cfg.Video.Character
			}
			if !flags.Changed("fps") {
				sampler.FPS = a.cfg.Video.FPS
			}
			if !flags.Changed("frame-max-pixels") {
				sampler.MaxPixels = a.cfg.Video.MaxPixels
			}
			if !flags.Changed("max-frames") {
				sampler.MaxFrames = a.cfg.Video.MaxFrames
			}
			if !flags.Changed("ffmpeg") {
				sampler.FFmpegPath = a.cfg.Video.FFmpeg
			}

			opts := captioning.Options{
				Instruction: captioning.BuildPrompt(models.KindVideo, prompt, character),
				Frames:      sampler,
			}
			return a.runCaptioning(cmd, args, models.KindVideo, opts, func(p providers.Provider) error {
				return checkFFmpeg(p, sampler.FFmpegPath)
			})
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Instruction sent with every video (defaults to the built-in prompt)")
	cmd.Flags().StringVar(&character, "character", "", "Character name appended to the prompt")
	cmd.Flags().Float64Var(&sampler.FPS, "fps", config.DefaultVideoFPS, "Frames sampled per second of video")
	cmd.Flags().IntVar(&sampler.MaxPixels, "frame-max-pixels", config.DefaultFrameMaxPix, "Pixel ceiling for each sampled frame")
	cmd.Flags().IntVar(&sampler.MaxFrames, "max-frames", 0, "Maximum frames per video (0 for all)")
	cmd.Flags().StringVar(&sampler.FFmpegPath, "ffmpeg", config.DefaultFFmpegBinary, "Path to the ffmpeg binary")

	return cmd
}

// checkFFmpeg fails early when the provider needs sampled frames and ffmpeg is missing
func checkFFmpeg(p providers.Provider, ffmpeg string) error {
	if va, ok := p.(providers.VideoAccepter); ok && va.AcceptsVideo("video/mp4", 0) {
		return nil
	}
	if _, err := exec.LookPath(ffmpeg); err != nil {
		return fmt.Errorf("ffmpeg is required to sample video frames: %w", err)
	}
	return nil
}
