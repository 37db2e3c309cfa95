package factory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/teamscore/internal/api"
	"github.com/mcoot/teamscore/internal/api/handler"
	"github.com/mcoot/teamscore/internal/api/middleware"
	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/metrics"
	"github.com/mcoot/teamscore/internal/realtime"
	"github.com/mcoot/teamscore/internal/seed"
	"github.com/mcoot/teamscore/internal/services/auth"
	"github.com/mcoot/teamscore/internal/services/competition"
	"github.com/mcoot/teamscore/internal/services/guard"
	"github.com/mcoot/teamscore/internal/services/panel"
	"github.com/mcoot/teamscore/internal/services/scorecard"
	"github.com/mcoot/teamscore/internal/storage"
	"github.com/mcoot/teamscore/internal/storage/memory"
	redisstorage "github.com/mcoot/teamscore/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Write rate limit defaults
const (
	DefaultWriteRate  = 10
	DefaultWriteBurst = 20
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock   clock.Clock
	Metrics *metrics.Recorder
	Logger  *slog.Logger

	// Services
	AuthService        *auth.Service
	Tracker            *guard.Tracker
	Guard              *guard.Guard
	ScoreController    *scorecard.Controller
	PanelService       *panel.Service
	CompetitionService *competition.Service
	SeedLoader         *seed.Loader

	// Real-time fan-out
	HubManager  *realtime.HubManager
	Broadcaster *realtime.Broadcaster

	RateLimiter *middleware.SubjectRateLimiter
	pinger      handler.Pinger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service. Secret is required.
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// WriteRate and WriteBurst bound each caller's write requests.
	// Zero values use the defaults.
	WriteRate  float64
	WriteBurst int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.AuthConfig.Secret == "" {
		return nil, errors.New("AuthConfig.Secret is required")
	}

	// Create storage based on type
	var (
		store  storage.Storage
		pinger handler.Pinger
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store, pinger = redisStore, redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	rate, burst := cfg.WriteRate, cfg.WriteBurst
	if rate <= 0 {
		rate = DefaultWriteRate
	}
	if burst <= 0 {
		burst = DefaultWriteBurst
	}

	app := newWithDependencies(store, clock.New(), metrics.New(), cfg.AuthConfig, rate, burst, logger)
	app.pinger = pinger
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	recorder *metrics.Recorder,
	authCfg auth.Config,
	writeRate float64,
	writeBurst int,
	logger *slog.Logger,
) *App {
	authService := auth.New(store, clk, authCfg, logger)
	// Assignment changes must outlive every token issued before them
	tracker := guard.NewTracker(store, clk, authService.TokenTTL())
	g := guard.New(store, tracker, logger, recorder)

	hubManager := realtime.NewHubManager(logger, recorder)
	broadcaster := realtime.NewBroadcaster(hubManager, clk, logger, recorder)

	return &App{
		Storage:            store,
		Clock:              clk,
		Metrics:            recorder,
		Logger:             logger,
		AuthService:        authService,
		Tracker:            tracker,
		Guard:              g,
		ScoreController:    scorecard.NewController(store, g, broadcaster, clk, logger, recorder),
		PanelService:       panel.New(store, g, clk, logger),
		CompetitionService: competition.New(store, g, tracker, clk, logger),
		SeedLoader:         seed.NewLoader(store, clk, logger),
		HubManager:         hubManager,
		Broadcaster:        broadcaster,
		RateLimiter:        middleware.NewSubjectRateLimiter(clk, writeRate, writeBurst),
	}
}

// Handler builds the HTTP handler serving the API, health and metrics
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:             a.Logger,
		AuthService:        a.AuthService,
		Guard:              a.Guard,
		ScoreController:    a.ScoreController,
		PanelService:       a.PanelService,
		CompetitionService: a.CompetitionService,
		HubManager:         a.HubManager,
		Metrics:            a.Metrics,
		RateLimiter:        a.RateLimiter,
		Pinger:             a.pinger,
	})
}

// Close stops real-time hubs and releases the storage connection
func (a *App) Close() error {
	a.HubManager.Shutdown()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
