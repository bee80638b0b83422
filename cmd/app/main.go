// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hiktan44/Adgeniusfashion/internal/config"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/model"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/adapter"
	"github.com/hiktan44/Adgeniusfashion/internal/domain/ports/repository"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/adapters/ai"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/api"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/logging"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/metrics"
	red "github.com/hiktan44/Adgeniusfashion/internal/infra/redis"
	"github.com/hiktan44/Adgeniusfashion/internal/infra/security"
	"github.com/hiktan44/Adgeniusfashion/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

// offlineKey satisfies the credential gate when the offline gateway serves dev runs.
const offlineKey = "offline-dev"

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, offline gateway when no key is set")
	once := flag.String("once", "", "generate for one product image and exit instead of serving HTTP")
	outDir := flag.String("out", "out", "output directory for -once")
	mode := flag.String("mode", "", "campaign|ecommerce for -once (default from config)")
	video := flag.Bool("video", false, "also generate videos in -once mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Redis (optional) ----
	var (
		mirror   repository.SnapshotRepository
		keyStore security.KeyStore
		limiter  api.SubmitLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		mirror = red.NewSnapshotRepo(redisClient, cfg.Redis.TTL)
		keyStore = red.NewCredentialStore(redisClient)
		limiter = red.NewRateLimiter(redisClient)
		logger.Info().Msg("redis snapshot mirror enabled")
	}

	// ---- Credential gate ----
	var sealer *security.EncryptionService
	if cfg.Security.CredentialSecret != "" {
		sealer, err = security.NewEncryptionService(cfg.Security.CredentialSecret)
		if err != nil {
			logger.Fatal().Err(err).Msg("encryption")
		}
	} else if keyStore != nil {
		logger.Warn().Msg("security.credential_secret not set; selected keys stay in memory")
	}

	offline := cfg.Runtime.Dev && cfg.AI.GeminiKey == ""
	envKey := cfg.AI.GeminiKey
	if offline {
		envKey = offlineKey
	}
	gate := security.NewKeyGate(envKey, keyStore, sealer, logger)
	if err := gate.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not restore selected credential")
	}

	// ---- AI gateway ----
	gw := buildGateway(cfg, gate, offline, logger)

	// ---- Orchestrator ----
	orch := usecase.NewOrchestrator(gw, gate, usecase.OrchestratorOptions{
		Defaults: usecase.RunDefaults{
			Mode:           model.Mode(cfg.Run.DefaultMode),
			Style:          cfg.Run.DefaultStyle,
			AspectRatio:    cfg.Run.DefaultAspectRatio,
			ImageModel:     cfg.AI.ImageModel,
			VideoModel:     cfg.AI.VideoModel,
			CampaignCount:  cfg.Run.CampaignCount,
			EcommerceCount: cfg.Run.EcommerceCount,
		},
		ConcurrentLimit: cfg.AI.ConcurrentLimit,
		Mirror:          mirror,
		Logger:          logger,
	})
	defer orch.Close()

	if *once != "" {
		job := oneShot{
			imagePath: *once,
			outDir:    *outDir,
			mode:      model.Mode(*mode),
			video:     *video,
			maxBytes:  int64(cfg.HTTP.MaxUploadMB) << 20,
		}
		if err := job.run(ctx, orch, logger); err != nil {
			logger.Error().Err(err).Msg("one-shot run failed")
			orch.Close()
			os.Exit(1)
		}
		return
	}

	// ---- HTTP ----
	opts := api.OptionsFromConfig(cfg.HTTP)
	opts.Limiter = limiter
	opts.Logger = logger
	srv := api.NewServer(orch, gate, opts)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
}

// buildGateway picks Gemini (plus OpenAI for gpt-image models when a key is set), or the
// offline gateway, and bounds provider concurrency.
func buildGateway(cfg *config.Config, keys ai.KeySource, offline bool, logger *zerolog.Logger) adapter.Gateway {
	if offline {
		logger.Warn().Msg("no gemini key in dev mode; using the offline gateway")
		return ai.NewLimitedGateway(ai.NewNoopGateway(300*time.Millisecond, logger), cfg.AI.ConcurrentLimit)
	}

	gemini := ai.NewGeminiGateway(keys, ai.GeminiOptions{
		BaseURL:           cfg.AI.GeminiURL,
		AnalysisModel:     cfg.AI.AnalysisModel,
		ImageModel:        cfg.AI.ImageModel,
		VideoModel:        cfg.AI.VideoModel,
		VideoPollInterval: cfg.AI.VideoPollInterval,
		VideoMaxPolls:     cfg.AI.VideoMaxPolls,
		CallTimeout:       cfg.AI.CallTimeout,
		Logger:            logger,
	})
	images := map[string]adapter.ImageGenerator{"gemini": gemini}
	if cfg.AI.OpenAIKey != "" {
		oa, err := ai.NewOpenAIImageAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL, "", cfg.AI.CallTimeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		images["openai"] = oa
		logger.Info().Msg("openai image adapter enabled")
	}
	logger.Info().
		Str("analysis_model", cfg.AI.AnalysisModel).
		Str("image_model", cfg.AI.ImageModel).
		Str("video_model", cfg.AI.VideoModel).
		Str("default_provider", cfg.AI.DefaultProvider).
		Msg("ai gateway ready")

	multi := ai.NewMultiGateway(gemini, cfg.AI.DefaultProvider, images, nil)
	return ai.NewLimitedGateway(multi, cfg.AI.ConcurrentLimit)
}
