package bootstrap

import (
	"context"
	"log"

	"ai-answer-be/internal/config"
	"ai-answer-be/internal/controller"
	"ai-answer-be/internal/pkg/logger"
	"ai-answer-be/internal/service"
	"ai-answer-be/internal/websocket"
	"ai-answer-be/pkg/agent/checkpoint"
	"ai-answer-be/pkg/agent/executor"
	"ai-answer-be/pkg/agent/progress"
	"ai-answer-be/pkg/agent/stage"
	"ai-answer-be/pkg/llm/factory"
	"ai-answer-be/pkg/serp"

	pktNats "ai-answer-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	AskController   controller.IAskController
	AdminController controller.IAdminController

	// WebSockets
	ProgressHandler *websocket.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Agent Infrastructure
	progressLog, err := progress.NewLog(cfg.Agent.ProgressDir, pubSub, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize progress log: %v", err)
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
		cfg.Ai.LLMTimeout,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// SERP clients: one per timeout budget. Web search gets a longer
	// deadline than the per-citation image lookups.
	searchClient := serp.NewClient(cfg.SerpAPIKey(), cfg.Serp.Zone, cfg.Serp.SearchTimeout)
	imageClient := serp.NewClient(cfg.SerpAPIKey(), cfg.Serp.Zone, cfg.Serp.ImageTimeout)
	if !searchClient.Configured() {
		log.Printf("[WARN] SERP credentials missing: search will run degraded")
	}

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// Checkpoint store
	var backing checkpoint.Store
	if cfg.Agent.CheckpointBackend == "redis" && rdb != nil {
		backing = checkpoint.NewRedisStore(rdb, sysLogger)
		log.Printf("[INFO] Using Checkpoint Backend: REDIS")
	} else {
		fileStore, err := checkpoint.NewFileStore(cfg.Agent.CheckpointDir, sysLogger)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize checkpoint store: %v", err)
		}
		backing = fileStore
		log.Printf("[INFO] Using Checkpoint Backend: FILE (%s)", cfg.Agent.CheckpointDir)
	}
	store := checkpoint.NewCachedStore(backing)

	// 4. Pipeline
	stages := []executor.Stage{
		stage.NewSearchStage(searchClient, sysLogger),
	}
	if cfg.Agent.EnablePrioritize {
		stages = append(stages, stage.NewPrioritizeStage(llmProvider, sysLogger))
	}
	stages = append(stages,
		stage.NewSynthesizeStage(llmProvider, cfg.Ai.Temperature, sysLogger),
		stage.NewEnrichImagesStage(imageClient, cfg.Agent.EnrichImages, sysLogger),
		stage.NewFormatOutputStage(sysLogger),
	)
	pipelineExecutor := executor.NewPipelineExecutor(stages, progressLog, sysLogger)

	// 5. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress_ws.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()
	go func() {
		if err := wsHub.ConsumeProgress(context.Background(), pubSub); err != nil {
			log.Printf("[WARN] Progress consumer stopped: %v", err)
		}
	}()

	// 6. Services
	askService := service.NewAskService(
		store,
		pipelineExecutor,
		progressLog,
		llmProvider,
		cfg.Ai.Temperature,
		natsPub,
		sysLogger,
	)
	adminService := service.NewAdminService(sysLogger)

	// 7. Controllers
	return &Container{
		AskController:   controller.NewAskController(askService),
		AdminController: controller.NewAdminController(adminService),
		ProgressHandler: websocket.NewProgressHandler(wsHub, wsLogger),
		WebSocketHub:    wsHub,
	}
}
