package bootstrap

import (
	"log"

	"textcards-be/internal/config"
	"textcards-be/internal/controller"
	"textcards-be/internal/pkg/logger"
	"textcards-be/internal/repository/contract"
	"textcards-be/internal/repository/implementation"
	"textcards-be/internal/repository/memory"
	"textcards-be/internal/service"
	"textcards-be/pkg/imagegen"
	"textcards-be/pkg/llm"
	"textcards-be/pkg/llm/factory"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	CardController    controller.ICardController
	SessionController controller.ISessionController

	Logger logger.ILogger
}

// NewContainer wires the dependency graph. db may be nil: batches then live in
// the in-memory repository and survive only as long as the process.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. AI Providers
	// The LLM is an enhancement; when it cannot be built the analysis service
	// runs its local segmentation path instead.
	var llmProvider llm.LLMProvider
	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.LLMBaseURL, cfg.Ai.LLMAPIKey)
	if err != nil {
		log.Printf("[WARN] LLM provider unavailable (%v), analysis falls back to local segmentation", err)
	} else {
		llmProvider = provider
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	imageProvider, err := imagegen.New(cfg.Ai.ImageProvider, cfg.Ai.ImageBaseURL, cfg.Ai.ImageAPIKey, cfg.Ai.ImageModel, cfg.Ai.ImageSize)
	if err != nil {
		log.Printf("[WARN] Image provider unavailable (%v), using placeholder images", err)
		imageProvider = imagegen.NewPlaceholderProvider()
	} else {
		log.Printf("[INFO] Using Image Provider: %s", cfg.Ai.ImageProvider)
	}

	// 3. Repositories
	var batchRepository contract.IBatchRepository
	if db != nil {
		batchRepository = implementation.NewBatchRepository(db)
	} else {
		batchRepository = memory.NewBatchRepository()
	}
	sessionRepository := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.CleanupInterval)

	// 4. Services
	analysisService := service.NewAnalysisService(llmProvider, sysLogger)
	generationService := service.NewGenerationService(imageProvider, batchRepository, sysLogger)
	sessionService := service.NewSessionService(
		sessionRepository,
		service.NewLocalAnalyzer(analysisService),
		service.NewLocalGenerator(generationService),
		sysLogger,
	)

	// 5. Controllers
	cardController := controller.NewCardController(analysisService, generationService)
	sessionController := controller.NewSessionController(sessionService)

	return &Container{
		CardController:    cardController,
		SessionController: sessionController,
		Logger:            sysLogger,
	}
}
