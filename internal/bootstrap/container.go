package bootstrap

import (
	"context"
	"log"

	"maintenance-qa-be/internal/config"
	"maintenance-qa-be/internal/controller"
	"maintenance-qa-be/internal/pkg/logger"
	"maintenance-qa-be/internal/repository/implementation"
	"maintenance-qa-be/internal/service"
	"maintenance-qa-be/pkg/embedding"
	"maintenance-qa-be/pkg/llm/factory"
	"maintenance-qa-be/pkg/pipeline/composer"
	"maintenance-qa-be/pkg/pipeline/executor"
	"maintenance-qa-be/pkg/pipeline/fallback"
	"maintenance-qa-be/pkg/pipeline/generator"
	"maintenance-qa-be/pkg/pipeline/qcache"
	"maintenance-qa-be/pkg/pipeline/retriever"
	"maintenance-qa-be/pkg/pipeline/router"
	"maintenance-qa-be/pkg/pipeline/rules"
	"maintenance-qa-be/pkg/pipeline/validator"
	"maintenance-qa-be/pkg/schema"

	pktNats "maintenance-qa-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AskController controller.IAskController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	Retriever       *retriever.Retriever

	// Shared pipeline state
	Catalog *schema.Catalog

	cfg *config.Config
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Schema catalog
	catalog := schema.NewCatalog(schema.MaintenanceTables())

	// Embedding provider; "none" keeps the keyword-overlap retriever path
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		log.Printf("[INFO] Embedding disabled, retriever falls back to keyword overlap")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GenerationTimeout,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// NATS is optional; without it feedback records stay in process.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// Pipeline stages
	registry := rules.Maintenance()

	pipelineRouter := router.New(registry, router.Config{
		ComplexityThreshold: cfg.Pipeline.ComplexityThreshold,
		PatternThreshold:    cfg.Pipeline.PatternThreshold,
	})

	documentRepo := implementation.NewDocumentRepository(db)
	loader := service.NewDocumentLoader(documentRepo, catalog)
	contextRetriever := retriever.New(loader, embeddingProvider, cfg.Pipeline.RetrievalK, sysLogger)
	if err := contextRetriever.Rebuild(context.Background()); err != nil {
		log.Printf("[WARN] Initial retriever index build failed: %v", err)
	}

	ruleBased := generator.NewRuleBased(registry)

	auditLogger := logger.NewIsolatedLogger("logs/generation.log")
	modelBased := generator.NewModelBased(llmProvider, catalog, generator.ModelBasedConfig{
		Policy: generator.RetryPolicy{
			MaxAttempts: cfg.Ai.MaxAttempts,
			BaseDelay:   cfg.Ai.BackoffBase,
			Multiplier:  cfg.Ai.BackoffMultiplier,
		},
		Timeout:     cfg.Ai.GenerationTimeout,
		Temperature: cfg.Ai.Temperature,
		MaxTokens:   cfg.Ai.MaxTokens,
	}, auditLogger)

	queryValidator := validator.New(catalog, validator.Config{
		Tier:          validator.ParseTier(cfg.Validator.SecurityTier),
		MaxJoins:      cfg.Validator.MaxJoins,
		MaxSubqueries: cfg.Validator.MaxSubqueries,
		MaxRows:       cfg.Validator.MaxRows,
	}, sysLogger)

	cache := qcache.NewManager(catalog.Version, qcache.Config{
		MinTTL:      cfg.Cache.MinTTL,
		MaxTTL:      cfg.Cache.MaxTTL,
		NegativeTTL: cfg.Cache.NegativeTTL,
		Capacity:    cfg.Cache.Capacity,
	}, sysLogger)

	execAdapter := executor.New(db, executor.Config{
		MaxRows: cfg.Validator.MaxRows,
		Timeout: cfg.Validator.ExecTimeout,
	}, sysLogger)

	fallbackResponder := fallback.NewResponder()
	responseComposer := composer.New(pubSub, sysLogger)

	// Services
	askService := service.NewAskService(
		pipelineRouter,
		contextRetriever,
		ruleBased,
		modelBased,
		queryValidator,
		cache,
		execAdapter,
		fallbackResponder,
		responseComposer,
		cfg.Pipeline.HybridThreshold,
		sysLogger,
	)

	consumerService := service.NewConsumerService(pubSub, composer.FeedbackTopic, natsPub)

	// Controllers
	askController := controller.NewAskController(askService, catalog)

	return &Container{
		AskController:   askController,
		ConsumerService: consumerService,
		Retriever:       contextRetriever,
		Catalog:         catalog,
		cfg:             cfg,
	}
}
