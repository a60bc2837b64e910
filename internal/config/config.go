package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProvider     = "ollama"
	DefaultOllamaModel  = "qwen2.5vl"
	DefaultOpenAIModel  = "gpt-4o"
	DefaultGeminiModel  = "gemini-1.5-flash"
	DefaultMaxTokens    = 128
	DefaultTemperature  = 0.1
	DefaultMaxPixels    = 1280 * 720
	DefaultVideoFPS     = 1.0
	DefaultFrameMaxPix  = 360 * 420
	DefaultConfigFile   = "promptcaptioner.yaml"
	DefaultFFmpegBinary = "ffmpeg"
)

// Video holds the frame sampling settings
type Video struct {
	FPS       float64 `yaml:"fps"`
	MaxPixels int     `yaml:"max_pixels"`
	MaxFrames int     `yaml:"max_frames"`
	Character string  `yaml:"character"`
	FFmpeg    string  `yaml:"ffmpeg"`
}

// Config is the merged run configuration
type Config struct {
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	OllamaHost        string  `yaml:"ollama_host"`
	OpenAIBaseURL     string  `yaml:"openai_base_url"`
	ImagePrompt       string  `yaml:"image_prompt"`
	VideoPrompt       string  `yaml:"video_prompt"`
	MaxTokens         int     `yaml:"max_tokens"`
	Temperature       float64 `yaml:"temperature"`
	MaxPixels         int     `yaml:"max_pixels"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
	Policy            string  `yaml:"policy"`
	Video             Video   `yaml:"video"`
}

// fileConfig mirrors Config as read from YAML. Pointers tell an explicit 0 apart from a
// key that is absent, so the file can turn off an environment setting.
type fileConfig struct {
	Provider          string   `yaml:"provider"`
	Model             string   `yaml:"model"`
	OllamaHost        string   `yaml:"ollama_host"`
	OpenAIBaseURL     string   `yaml:"openai_base_url"`
	ImagePrompt       string   `yaml:"image_prompt"`
	VideoPrompt       string   `yaml:"video_prompt"`
	MaxTokens         *int     `yaml:"max_tokens"`
	Temperature       *float64 `yaml:"temperature"`
	MaxPixels         *int     `yaml:"max_pixels"`
	RequestsPerMinute *int     `yaml:"requests_per_minute"`
	Policy            string   `yaml:"policy"`
	Video             struct {
		FPS       *float64 `yaml:"fps"`
		MaxPixels *int     `yaml:"max_pixels"`
		MaxFrames *int     `yaml:"max_frames"`
		Character string   `yaml:"character"`
		FFmpeg    string   `yaml:"ffmpeg"`
	} `yaml:"video"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Provider:    DefaultProvider,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		MaxPixels:   DefaultMaxPixels,
		Video: Video{
			FPS:       DefaultVideoFPS,
			MaxPixels: DefaultFrameMaxPix,
			FFmpeg:    DefaultFFmpegBinary,
		},
	}
}

// Load builds the configuration from defaults, then the environment, then the YAML file
// at path. A missing file is only an error when required is set, so the default file
// name can be probed silently. Flags are applied on top by the caller.
func Load(path string, required bool) (Config, error) {
	cfg := Defaults()
	cfg.applyEnv()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.merge(file)
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CAPTIONING_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.OllamaHost = v
	} else if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.OllamaHost = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = v
	}
	if v := os.Getenv("CAPTIONING_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestsPerMinute = n
		}
	}
}

func (c *Config) merge(o fileConfig) {
	setString(&c.Provider, o.Provider)
	setString(&c.Model, o.Model)
	setString(&c.OllamaHost, o.OllamaHost)
	setString(&c.OpenAIBaseURL, o.OpenAIBaseURL)
	setString(&c.ImagePrompt, o.ImagePrompt)
	setString(&c.VideoPrompt, o.VideoPrompt)
	setString(&c.Policy, o.Policy)
	setString(&c.Video.Character, o.Video.Character)
	setString(&c.Video.FFmpeg, o.Video.FFmpeg)

	if o.MaxTokens != nil {
		c.MaxTokens = *o.MaxTokens
	}
	if o.Temperature != nil {
		c.Temperature = *o.Temperature
	}
	if o.MaxPixels != nil {
		c.MaxPixels = *o.MaxPixels
	}
	if o.RequestsPerMinute != nil {
		c.RequestsPerMinute = *o.RequestsPerMinute
	}
	if o.Video.FPS != nil {
		c.Video.FPS = *o.Video.FPS
	}
	if o.Video.MaxPixels != nil {
		c.Video.MaxPixels = *o.Video.MaxPixels
	}
	if o.Video.MaxFrames != nil {
		c.Video.MaxFrames = *o.Video.MaxFrames
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ResolvedModel returns the configured model, or the provider's model from the
// environment, or the provider default.
func (c Config) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}

// DefaultModel returns the model for a provider when none was configured
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		if m := os.Getenv("OPENAI_MODEL"); m != "" {
			return m
		}
		return DefaultOpenAIModel
	case "gemini":
		if m := os.Getenv("GEMINI_MODEL"); m != "" {
			return m
		}
		return DefaultGeminiModel
	default:
		if m := os.Getenv("OLLAMA_MODEL"); m != "" {
			return m
		}
		return DefaultOllamaModel
	}
}
