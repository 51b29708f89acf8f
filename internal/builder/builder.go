package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pseudolawyer/negotiation-backend/internal/api"
	contractapi "github.com/pseudolawyer/negotiation-backend/internal/api/contract"
	negotiationapi "github.com/pseudolawyer/negotiation-backend/internal/api/negotiation"
	"github.com/pseudolawyer/negotiation-backend/internal/config"
	"github.com/pseudolawyer/negotiation-backend/internal/integration/llm"
	"github.com/pseudolawyer/negotiation-backend/internal/integration/notify"
	"github.com/pseudolawyer/negotiation-backend/internal/pkg/validator"
	"github.com/pseudolawyer/negotiation-backend/internal/repository"
	"github.com/pseudolawyer/negotiation-backend/internal/usecase/negotiation"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	negotiationRepo := repository.NewNegotiationPostgres(db)
	participantRepo := repository.NewParticipantPostgres(db)
	messageRepo := repository.NewMessagePostgres(db)
	contractRepo := repository.NewContractPostgres(db)
	templateRepo := repository.NewTemplatePostgres(db)
	profileRepo := repository.NewCachedProfileRepository(
		repository.NewProfilePostgres(db),
		cfg.ProfileCacheTTL,
	)
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var llmConnector negotiation.LLMConnector
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the model gateway")
		llmConnector = llm.NewMockConnector(logger)
	} else {
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	var notifier negotiation.MessageNotifier
	if cfg.NotifyConnectorCfg.Endpoint != "" {
		notifier = notify.NewConnector(cfg.NotifyConnectorCfg, logger)
	} else {
		logger.Info("No notify endpoint configured, message events disabled")
		notifier = notify.NewNoopConnector()
	}

	// Initialize validators
	requestValidator := validator.NewValidator()
	logger.Info("Validators initialized")

	// Initialize use cases
	negotiationUC := negotiation.NewUsecase(
		negotiationRepo,
		participantRepo,
		messageRepo,
		contractRepo,
		profileRepo,
		templateRepo,
		requestValidator,
		llmConnector,
		notifier,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	negotiationHandler := negotiationapi.NewHandler(negotiationUC, negotiationUC)
	contractHandler := contractapi.NewHandler(negotiationUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(negotiationHandler, contractHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}
