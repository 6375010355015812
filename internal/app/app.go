package app

import (
	"context"
	"time"

	"github.com/videa-app/videa/internal/auth"
	"github.com/videa-app/videa/internal/cache"
	"github.com/videa-app/videa/internal/config"
	"github.com/videa-app/videa/internal/database"
	"github.com/videa-app/videa/internal/httpapi"
	"github.com/videa-app/videa/internal/ideas"
	"github.com/videa-app/videa/internal/llm"
	"github.com/videa-app/videa/internal/logging"
	"github.com/videa-app/videa/internal/models"
	"github.com/videa-app/videa/internal/ratelimit"
	"github.com/videa-app/videa/internal/trends"
	"github.com/videa-app/videa/internal/youtube"
)

// App holds all application dependencies
type App struct {
	Config         *config.Config
	Logger         *logging.Logger
	Cache          cache.Cache
	YouTube        *youtube.Client
	Trends         *trends.Aggregator
	IdeasSvc       *ideas.Service
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	HTTPServer     *httpapi.Server
	db             *database.DB
}

// New creates and initializes a new App instance
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// Initialize logger
	app.Logger = app.initLogger()

	// Initialize cache
	app.Cache = app.initCache()

	// Initialize the YouTube client with an RSS fallback for channel uploads
	limiter := ratelimit.New(cfg.Server.RateLimitDur)
	yt, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, limiter, app.Logger)
	if err != nil {
		return nil, err
	}
	yt.SetFallbackLister(youtube.NewRSSLister("", limiter, 15*time.Second))
	app.YouTube = yt

	// Initialize the multi-region aggregator
	app.Trends = trends.NewAggregator(yt, app.Cache, app.Logger)

	// Initialize the LLM client, summarizer, and idea synthesizer
	llmClient := llm.NewClient(llm.Config{
		APIKey:          cfg.LLM.APIKey,
		CompletionModel: cfg.LLM.CompletionModel,
		AssistantModel:  cfg.LLM.AssistantModel,
		AssistantID:     cfg.LLM.AssistantID,
		PollInterval:    cfg.LLM.PollInterval,
		RunTimeout:      cfg.LLM.RunTimeout,
	}, app.Logger)
	summarizer := trends.NewSummarizer(llmClient, app.Cache, app.Logger)
	synth := ideas.NewSynthesizer(app.Trends, yt, summarizer, llmClient, app.Logger)

	// Initialize persistence and the ideas service
	app.IdeasSvc = ideas.NewService(synth, app.initIdeaStore(), app.Logger)

	// Initialize auth
	app.AuthService = auth.NewService(cfg.Auth, app.Logger)
	app.AuthMiddleware = auth.NewMiddleware(app.AuthService)

	// Initialize HTTP server
	app.HTTPServer = httpapi.New(app.YouTube, app.Trends, app.IdeasSvc, app.AuthMiddleware, app.Logger)

	return app, nil
}

// Run starts the HTTP server after warming the trending cache in the
// background.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("Starting HTTP server", logging.WithField("addr", a.Config.Server.HTTPAddr))

	go func() {
		a.Logger.Info("Warming trending cache in background...")
		if _, err := a.Trends.TopVideos(ctx, models.RegionGlobal); err != nil {
			a.Logger.Warn("Initial trending fetch had errors", logging.WithField("error", err.Error()))
		} else {
			a.Logger.Info("Initial trending fetch complete")
		}
	}()

	return a.HTTPServer.Start(a.Config.Server.HTTPAddr)
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
		}
	}

	return nil
}

func (a *App) initLogger() *logging.Logger {
	level := logging.LevelInfo
	switch a.Config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(level)
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr:   a.Config.Cache.RedisAddr,
			Prefix: "videa:",
		}, a.Config.Cache.TTL)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
			return cache.NewMemory(a.Config.Cache.TTL)
		}
		return redisCache
	default:
		a.Logger.Info("Using in-memory cache backend")
		return cache.NewMemory(a.Config.Cache.TTL)
	}
}

// initIdeaStore connects to Postgres and runs migrations. The server still
// serves generation when the database is unreachable; saved ideas report
// maintenance until it returns.
func (a *App) initIdeaStore() ideas.Store {
	dbConfig := database.Config{
		Host:     a.Config.Database.Host,
		Port:     a.Config.Database.Port,
		User:     a.Config.Database.User,
		Password: a.Config.Database.Password,
		Database: a.Config.Database.Database,
		SSLMode:  a.Config.Database.SSLMode,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		a.Logger.Warn("Failed to connect to PostgreSQL, saved ideas disabled", logging.WithField("error", err.Error()))
		return nil
	}

	a.Logger.Info("Connected to PostgreSQL")
	if err := db.Migrate(context.Background()); err != nil {
		a.Logger.Warn("Failed to run migrations, saved ideas disabled", logging.WithField("error", err.Error()))
		db.Close()
		return nil
	}

	a.db = db
	return database.NewIdeaStore(db)
}
