package main

import (
	"context"
	"time"

	"creatorcoach/internal/agent"
	"creatorcoach/internal/api"
	coachconfig "creatorcoach/internal/config"
	"creatorcoach/internal/embed"
	"creatorcoach/internal/pipeline"
	"creatorcoach/internal/prompt"
	"creatorcoach/internal/source"
	"creatorcoach/internal/vectorstore"
	"creatorcoach/internal/voice"
	"creatorcoach/pkg/config"
	"creatorcoach/pkg/llm"
	"creatorcoach/pkg/logging"
	"creatorcoach/pkg/monitoring"
	"creatorcoach/pkg/server"
	"creatorcoach/pkg/tts"
	"creatorcoach/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("coach")

	// Load environment variables
	config.LoadEnv(logger)

	buildInfo := version.GetInfo()
	logger.WithFields(logging.Fields{
		"version":    buildInfo.Version,
		"git_commit": buildInfo.GitCommit,
		"build_date": buildInfo.BuildDate,
	}).Info("Starting Creator Coach (Instagram RAG API)")

	cfg := coachconfig.LoadConfig()
	llmCfg := llm.LoadConfig()

	// The embedding dimension is whatever the configured model produces;
	// probe it once instead of hardcoding per-model constants.
	embeddingClient, err := llm.NewEmbeddingClient(llm.LoadEmbeddingConfig())
	if err != nil {
		logger.WithError(err).Fatal("Failed to create embedding client")
	}
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	dims, err := llm.ProbeEmbeddingDimensions(probeCtx, embeddingClient)
	probeCancel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to probe embedding dimensions")
	}
	logger.WithField("dimensions", dims).Info("Probed embedding model")

	store, err := vectorstore.Open(vectorstore.Config{
		Dir:        cfg.VectorDir,
		Collection: cfg.Collection,
		Dimensions: dims,
		Rebuild:    cfg.ForceReload,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open vector store")
	}
	defer func() { _ = store.Close() }()

	embedder, err := embed.New(embeddingClient, dims)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create embedder")
	}
	pipe := pipeline.New(store, embedder, logger)

	posts, err := source.LoadPosts(cfg.PostsPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load posts")
	}
	profile, err := source.LoadProfile(cfg.ProfilePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load creator profile")
	}
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	err = pipe.LoadData(loadCtx, posts, profile, cfg.ForceReload)
	loadCancel()
	if err != nil {
		logger.WithError(err).Fatal("Failed to index posts")
	}

	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create LLM provider")
	}

	manager := prompt.NewManager(cfg.TemplateDir)
	assembler := prompt.NewAssembler(manager)
	dispatcher := agent.NewDispatcher(pipe, assembler, provider, logger)

	// Voice summaries are optional: without a TTS key the rest of the
	// service keeps running.
	var voiceAgent *voice.Agent
	ttsCfg := tts.LoadConfig()
	if ttsCfg.APIKey == "" {
		logger.Warn("GOOGLE_TTS_API_KEY not set - voice summaries disabled")
	} else {
		synth, synthErr := tts.NewClient(ttsCfg)
		if synthErr != nil {
			logger.WithError(synthErr).Warn("Failed to create TTS client - voice summaries disabled")
		} else {
			voiceAgent, err = voice.NewAgent(pipe, assembler, provider, synth, voice.Config{
				OutputDir:    cfg.VoiceOutputDir,
				VoiceName:    ttsCfg.VoiceName,
				SpeakingRate: ttsCfg.SpeakingRate,
				Pitch:        ttsCfg.Pitch,
			}, logger)
			if err != nil {
				logger.WithError(err).Warn("Failed to initialize voice agent - voice summaries disabled")
				voiceAgent = nil
			}
		}
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("coach", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("coach", version.Version, version.GitCommit)

	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"LLM_API_KEY": llmCfg.APIKey,
	}))
	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(store.DB()))
	healthChecker.AddCheck("index", monitoring.IndexHealthCheck(pipe.Count))

	router := server.SetupServiceRouter(logger, "coach", healthChecker, metricsCollector)
	api.RegisterRoutes(router, &api.Handler{
		Dispatcher:  dispatcher,
		Pipeline:    pipe,
		Voice:       voiceAgent,
		Logger:      logger,
		PostsPath:   cfg.PostsPath,
		ProfilePath: cfg.ProfilePath,

		DefaultTemperature: cfg.DefaultTemperature,
		DefaultMaxTokens:   cfg.DefaultMaxTokens,
	})

	if err := server.Start(server.DefaultConfig("coach", cfg.Port), router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
