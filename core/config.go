// Package core provides process-level configuration for the studio:
// environment parsing, data directory bootstrap, and configuration errors
// with actionable messages. Configuration is read once at startup.
package core

import (
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultPort           = 7860
	DefaultHost           = "127.0.0.1"
	DefaultSteps          = 30
	DefaultGuidanceScale  = 7.5
	DefaultImageSize      = 512
	DefaultTimeoutSeconds = 180
	DefaultPrimaryModel   = "SD1.5"
	DefaultSecondaryModel = "Turbo"
)

// PipelineConfig describes one named local pipeline to load.
type PipelineConfig struct {
	Name      string // Display name, e.g. "SD1.5"
	ModelPath string // Path to the model file (.safetensors, .ckpt, .gguf)
}

// Config holds all configuration values for the studio process.
type Config struct {
	// Local engine
	SDBinaryPath string           // SD_BIN: stable-diffusion.cpp binary (PATH lookup if empty)
	Pipelines    []PipelineConfig // SD_MODEL_PATH / SD_MODEL_PATH2 with SD_MODEL_NAME / SD_MODEL_NAME2
	Device       string           // DEVICE: informational device identifier
	Warmup       bool             // WARMUP: run a throwaway generation at startup

	// Generation defaults
	DefaultSteps          int           // SD_INFERENCE_STEPS
	DefaultGuidanceScale  float64       // SD_GUIDANCE_SCALE
	DefaultImageSize      int           // SD_IMAGE_SIZE
	DefaultNegativePrompt string        // SD_NEGATIVE_PROMPT
	GenerationTimeout     time.Duration // SD_TIMEOUT_SECONDS

	// Upscaler
	UpscalerBinaryPath string // UPSCALER_BIN: RealESRGAN NCNN binary

	// Cloud fallback
	OpenAIAPIKey     string // OPENAI_API_KEY
	OpenAIBaseURL    string // OPENAI_BASE_URL
	OpenAIImageModel string // OPENAI_IMAGE_MODEL

	// Server
	Host string // HOST
	Port int    // PORT

	// Storage and logging
	HistoryRoot string // HISTORY_ROOT: defaults to <data dir>/history
	LogFilePath string // LOG_FILE: defaults to <data dir>/sdstudio.log
	DevMode     bool   // DEV_MODE
}

// LoadConfig reads the configuration from environment variables, applying
// defaults, and validates it.
func LoadConfig() (*Config, error) {
	dataDir := GetDataDirectory()

	cfg := &Config{
		SDBinaryPath: GetEnvOrDefault("SD_BIN", ""),
		Device:       GetEnvOrDefault("DEVICE", "cuda"),
		Warmup:       ParseBoolEnv("WARMUP", true),

		DefaultSteps:          ParseIntEnv("SD_INFERENCE_STEPS", DefaultSteps),
		DefaultGuidanceScale:  ParseFloat64Env("SD_GUIDANCE_SCALE", DefaultGuidanceScale),
		DefaultImageSize:      ParseIntEnv("SD_IMAGE_SIZE", DefaultImageSize),
		DefaultNegativePrompt: GetEnvOrDefault("SD_NEGATIVE_PROMPT", ""),
		GenerationTimeout:     ParseDurationEnv("SD_TIMEOUT_SECONDS", DefaultTimeoutSeconds),

		UpscalerBinaryPath: GetEnvOrDefault("UPSCALER_BIN", ""),

		OpenAIAPIKey:     GetEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    GetEnvOrDefault("OPENAI_BASE_URL", ""),
		OpenAIImageModel: GetEnvOrDefault("OPENAI_IMAGE_MODEL", ""),

		Host: GetEnvOrDefault("HOST", DefaultHost),
		Port: ParseIntEnv("PORT", DefaultPort),

		HistoryRoot: GetEnvOrDefault("HISTORY_ROOT", filepath.Join(dataDir, "history")),
		LogFilePath: GetEnvOrDefault("LOG_FILE", filepath.Join(dataDir, AppName+".log")),
		DevMode:     ParseBoolEnv("DEV_MODE", false),
	}

	if path := GetEnvOrDefault("SD_MODEL_PATH", ""); path != "" {
		cfg.Pipelines = append(cfg.Pipelines, PipelineConfig{
			Name:      GetEnvOrDefault("SD_MODEL_NAME", DefaultPrimaryModel),
			ModelPath: path,
		})
	}
	if path := GetEnvOrDefault("SD_MODEL_PATH2", ""); path != "" {
		cfg.Pipelines = append(cfg.Pipelines, PipelineConfig{
			Name:      GetEnvOrDefault("SD_MODEL_NAME2", DefaultSecondaryModel),
			ModelPath: path,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints on the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort(c.Port)
	}
	if len(c.Pipelines) == 0 && c.OpenAIAPIKey == "" {
		return ErrNoPipeline()
	}
	return nil
}
