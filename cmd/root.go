package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/promptcaptioner/internal/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

// app carries the merged configuration from the root command to its subcommands
type app struct {
	configPath string
	verbose    bool
	dryRun     bool
	reportPath string
	cfg        config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "promptcaptioner",
		Short: "Caption folders of images and videos with a vision-language model",
		Long: `Promptcaptioner walks a folder of images or videos, asks a vision-language model to
describe each file as a generation prompt, and saves the caption to a sidecar .txt file.

Models are served by Ollama, any OpenAI-compatible endpoint (vLLM, LM Studio) or Gemini.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: "15:04:05",
			})))

			return a.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultConfigFile, "Path to YAML config file")
	flags.BoolVar(&a.verbose, "verbose", false, "Verbose logging")
	flags.String("provider", config.DefaultProvider, "Model provider (ollama, openai, or gemini)")
	flags.String("model", "", "Model name (defaults to provider's default)")
	flags.Int("max-tokens", config.DefaultMaxTokens, "Maximum tokens to generate per caption")
	flags.Float64("temperature", config.DefaultTemperature, "Sampling temperature")
	flags.Int("rpm", 0, "Maximum model requests per minute (0 for unlimited)")
	flags.String("policy", "", "Existing sidecar handling: append, overwrite, or skip")
	flags.BoolVar(&a.dryRun, "dry-run", false, "Generate captions without writing sidecar files")
	flags.StringVar(&a.reportPath, "report", "", "Write a YAML run report to this path")

	cmd.AddCommand(newImagesCmd(a))
	cmd.AddCommand(newVideosCmd(a))
	cmd.AddCommand(newExportCmd())

	return cmd
}

// loadConfig layers defaults, environment and the config file, then applies any flag the
// user set explicitly.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.Model, _ = flags.GetString("model")
	}
	if flags.Changed("max-tokens") {
		cfg.MaxTokens, _ = flags.GetInt("max-tokens")
	}
	if flags.Changed("temperature") {
		cfg.Temperature, _ = flags.GetFloat64("temperature")
	}
	if flags.Changed("rpm") {
		cfg.RequestsPerMinute, _ = flags.GetInt("rpm")
	}
	if flags.Changed("policy") {
		cfg.Policy, _ = flags.GetString("policy")
	}

	a.cfg = cfg
	slog.Debug("Loaded configuration", "provider", cfg.Provider, "model", cfg.ResolvedModel(), "config", a.configPath)
	return nil
}
