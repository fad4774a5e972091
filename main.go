package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"sdstudio/core"
	"sdstudio/engine"
	"sdstudio/executor"
	"sdstudio/history"
	"sdstudio/logging"
	"sdstudio/shutdown"
	"sdstudio/webui"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Version metadata, overridable at build time with -ldflags.
var (
	version   = "1.0.0"
	buildDate = ""
	gitCommit = ""
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Warning: could not load .env file: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	if _, err := core.EnsureDataDirectory(); err != nil {
		fmt.Printf("Failed to create data directory: %v\n", err)
		os.Exit(core.ExitCodeError)
	}

	config, err := core.LoadConfig()
	if err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		os.Exit(core.ExitCodeConfigError)
	}

	logger := logging.New(logging.Options{
		Level:       logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Development: isDevelopment,
		FilePath:    config.LogFilePath,
	})
	defer logger.Sync()

	checks := core.NewStartupChecks(config)
	if result := checks.Run(); !result.Success {
		for _, checkErr := range result.Errors() {
			logger.Error("startup check failed", zap.Error(checkErr))
		}
		os.Exit(core.ExitCodeConfigError)
	}

	logger.Info("configuration loaded",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.Int("pipelines", len(config.Pipelines)),
		zap.String("history_root", config.HistoryRoot),
		zap.Bool("cloud_fallback", config.OpenAIAPIKey != ""),
		zap.Bool("dev_mode", isDevelopment),
	)

	store, err := history.NewStore(config.HistoryRoot, logger.Named("history"))
	if err != nil {
		logger.Fatal("initializing history store", zap.Error(err))
	}

	engines, err := buildRegistry(config, logger)
	if err != nil {
		logger.Fatal("initializing generation pipelines", zap.Error(err))
	}

	if config.Warmup {
		warmup(engines, logger)
	}

	api := webui.NewStudioAPI(
		executor.New(logger.Named("executor")),
		store,
		engines,
		upscalerFactory(config, logger),
		webui.StudioAPIConfig{
			Defaults: webui.GenerationDefaults{
				Steps:          config.DefaultSteps,
				GuidanceScale:  config.DefaultGuidanceScale,
				ImageSize:      config.DefaultImageSize,
				NegativePrompt: config.DefaultNegativePrompt,
			},
			VersionInfo: webui.VersionInfo{
				Version:   version,
				BuildDate: buildDate,
				GitCommit: gitCommit,
			},
		},
		logger.Named("api"),
	)

	serverConfig := webui.DefaultServerConfig()
	serverConfig.Host = config.Host
	serverConfig.Port = config.Port
	server := webui.NewServer(serverConfig, api, logger.Named("webui"))

	// Shut down cleanly on interrupt
	manager := shutdown.NewManager(logger.Named("shutdown"))
	manager.Register("http server", 10, func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})
	manager.Register("history temp files", 50, shutdown.CleanupTempFiles(logger.Named("history"), config.HistoryRoot))
	manager.Start()

	go func() {
		<-manager.Context().Done()
		if err := manager.Shutdown(); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("studio ready", zap.String("addr", server.Addr()))
	if err := server.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("goodbye")
}

// buildRegistry constructs the named pipelines from the configuration: one
// local pipeline per configured model, plus the cloud fallback when an API
// key is present.
func buildRegistry(config *core.Config, logger *zap.Logger) (*engine.Registry, error) {
	registry := engine.NewRegistry()

	for _, p := range config.Pipelines {
		pipe, err := engine.NewSDCppPipeline(
			config.SDBinaryPath,
			p.ModelPath,
			config.Device,
			config.GenerationTimeout,
			logger.Named("sdcpp"),
		)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", p.Name, err)
		}
		if err := registry.Add(p.Name, pipe, pipe); err != nil {
			return nil, err
		}
		logger.Info("pipeline registered",
			zap.String("name", p.Name),
			zap.String("model", p.ModelPath),
		)
	}

	if config.OpenAIAPIKey != "" {
		cloud, err := engine.NewOpenAIEngine(
			config.OpenAIAPIKey,
			config.OpenAIBaseURL,
			config.OpenAIImageModel,
			logger.Named("openai"),
		)
		if err != nil {
			return nil, fmt.Errorf("cloud fallback: %w", err)
		}
		if err := registry.Add("Cloud", cloud, nil); err != nil {
			return nil, err
		}
		logger.Info("cloud fallback registered")
	}

	return registry, nil
}

// upscalerFactory returns the factory the API uses to build an upscaler per
// request.
func upscalerFactory(config *core.Config, logger *zap.Logger) webui.UpscalerFactory {
	log := logger.Named("upscaler")
	return func(scale int) (engine.Upscaler, error) {
		return engine.NewRealESRGAN(config.UpscalerBinaryPath, scale, log)
	}
}

// warmup runs a small throwaway generation on the default pipeline so the
// first real request does not pay the model load cost.
func warmup(engines *engine.Registry, logger *zap.Logger) {
	entry, err := engines.Get("")
	if err != nil {
		return
	}

	logger.Info("warming up default pipeline", zap.String("name", entry.Name))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	_, err = entry.Txt2Img.Generate(ctx, engine.Params{
		Prompt: "a photo of a cat",
		Steps:  1,
		Width:  256,
		Height: 256,
		Seed:   42,
	})
	if err != nil {
		logger.Warn("warmup generation failed", zap.Error(err))
		return
	}
	logger.Info("warmup complete", zap.Duration("elapsed", time.Since(start)))
}
