package bootstrap

import (
	"context"
	stdlog "log"

	"legal-research-be/internal/config"
	"legal-research-be/internal/controller"
	"legal-research-be/internal/pkg/logger"
	"legal-research-be/internal/repository/implementation"
	"legal-research-be/internal/service"
	"legal-research-be/pkg/agents"
	"legal-research-be/pkg/cache"
	"legal-research-be/pkg/citation"
	"legal-research-be/pkg/embedding"
	"legal-research-be/pkg/legal"
	"legal-research-be/pkg/llm/factory"
	pktNats "legal-research-be/pkg/nats"
	"legal-research-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ResearchController controller.IResearchController
	DocumentController controller.IDocumentController
	CitationController controller.ICitationController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := stdlog.Default()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis. The cache manager degrades to local-only when Redis is down, so
	// connection failures are warnings, not fatals.
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		stdlog.Printf("[WARN] Failed to connect to Redis: %v. Cache is local-only", err)
		rdb = nil
	}
	cacheManager := cache.NewManager(rdb, pipelineLogger)

	// 3. AI Providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Keys.GoogleGemini,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaModel,
	)
	if err != nil {
		stdlog.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	stdlog.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		stdlog.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	stdlog.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Repositories
	docRepo := implementation.NewDocumentRepository(db)
	runRepo := implementation.NewPipelineRunRepository(db)
	citationStore := implementation.NewCitationStore(db)

	// 5. Domain Core
	refParser := legal.NewParser()
	citationGraph := citation.NewGraph(refParser, citationStore, pipelineLogger)

	searcher := service.NewDocumentSearcher(docRepo, pipelineLogger)
	embedder := service.NewQueryEmbedder(embeddingProvider, cacheManager)
	engine := retrieval.NewEngine(searcher, nil, embedder, pipelineLogger)
	engine.RerankTopN = cfg.Research.RerankTopN
	researcher := retrieval.NewResearcher(engine, cacheManager, pipelineLogger)

	workflow, err := agents.NewWorkflow(
		agents.NewRouter(llmProvider, pipelineLogger),
		agents.NewPlanner(llmProvider, pipelineLogger),
		researcher,
		agents.NewAnalyst(llmProvider, refParser, citationGraph, pipelineLogger),
		agents.NewSynthesizer(llmProvider, pipelineLogger),
		agents.NewAuditor(llmProvider, refParser, pipelineLogger),
		pipelineLogger,
	)
	if err != nil {
		stdlog.Fatalf("[FATAL] Failed to assemble research workflow: %v", err)
	}
	workflow.MaxReplans = cfg.Research.MaxReplans
	workflow.RetrievalLimit = cfg.Research.RetrievalLimit

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		docRepo,
		embeddingProvider,
		citationGraph,
		cacheManager,
		natsPub,
	)

	// Event audit trail (worker)
	if natsSub != nil {
		eventLogService := service.NewEventLogService(natsSub, sysLogger)
		if err := eventLogService.Start(); err != nil {
			stdlog.Printf("[WARN] Failed to start event log worker: %v", err)
		}
	}

	researchService := service.NewResearchService(workflow, runRepo, natsPub, sysLogger)
	documentService := service.NewDocumentService(docRepo, publisherService)
	citationService := service.NewCitationService(citationGraph)

	// 7. Controllers
	return &Container{
		ResearchController: controller.NewResearchController(researchService),
		DocumentController: controller.NewDocumentController(documentService),
		CitationController: controller.NewCitationController(citationService),

		ConsumerService: consumerService,
	}
}
