package cmd

import (
	"github.com/lehigh-university-libraries/promptcaptioner/internal/captioning"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/config"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/models"
	"github.com/spf13/cobra"
)

func newImagesCmd(a *app) *cobra.Command {
	var prompt string
	var maxPixels int
	var resizeInPlace bool

	cmd := &cobra.Command{
		Use:   "images [DIR]",
		Short: "Caption every .png, .jpg and .jpeg file in a folder",
		Long: `Caption every image directly inside DIR and save each caption to a .txt file with the
same base name next to the image. Existing captions are appended to with ", " unless
--policy says otherwise.

Images larger than --max-pixels are scaled down before being sent to the model. The file
on disk is only replaced when --resize-in-place is set.`,
		Example: `  # Caption with a local Ollama model
  promptcaptioner images ./shots

  # Ask for the folder interactively, use a vLLM server hosting Qwen2.5-VL
  OPENAI_BASE_URL=http://gpu-box:8000/v1 promptcaptioner images --provider openai --model Qwen/Qwen2.5-VL-7B-Instruct`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("prompt") {
				prompt = a.cfg.ImagePrompt
			}
			if !cmd.Flags().Changed("max-pixels") {
				maxPixels = a.cfg.MaxPixels
			}

			opts := captioning.Options{
				Instruction:   captioning.BuildPrompt(models.KindImage, prompt, ""),
				MaxPixels:     maxPixels,
				ResizeInPlace: resizeInPlace,
			}
			return a.runCaptioning(cmd, args, models.KindImage, opts, nil)
		},
	}

	cmd.Flags().StringVar(&prompt, "prompt", "", "Instruction sent with every image (defaults to the built-in prompt)")
	cmd.Flags().IntVar(&maxPixels, "max-pixels", config.DefaultMaxPixels, "Scale images above this many pixels down before inference")
	cmd.Flags().BoolVar(&resizeInPlace, "resize-in-place", false, "Also replace oversized source images with the scaled copy")

	return cmd
}
