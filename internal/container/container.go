package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/tabmind/tabmind-server/app/db"
	"github.com/tabmind/tabmind-server/config"
	"github.com/tabmind/tabmind-server/internal/api/assistant"
	"github.com/tabmind/tabmind-server/internal/api/auth"
)

// Container holds all application dependencies.
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	TokenIssuer      *auth.TokenIssuer
	AuthHandler      *auth.AuthHandlerImpl
	AssistantHandler *assistant.AssistantHandlerImpl
}

// NewContainer initializes and returns a new dependency container.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	tokenIssuer := auth.NewTokenIssuer(cfg.JWT)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, tokenIssuer, logger)
	authHandler := auth.NewAuthHandlerImpl(authService, logger)

	geminiClient, err := assistant.NewGeminiClient(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Failed to initialize Gemini client", slog.Any("error", err))
		return nil, err
	}
	assistantService := assistant.NewAssistantService(geminiClient, cfg.Gemini, logger)
	assistantHandler := assistant.NewAssistantHandlerImpl(assistantService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		TokenIssuer:      tokenIssuer,
		AuthHandler:      authHandler,
		AssistantHandler: assistantHandler,
	}, nil
}

// Close releases resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
