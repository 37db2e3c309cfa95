package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamscore/internal/api/apierr"
	"github.com/mcoot/teamscore/internal/api/handler"
	"github.com/mcoot/teamscore/internal/api/middleware"
	"github.com/mcoot/teamscore/internal/metrics"
	commonmw "github.com/mcoot/teamscore/internal/middleware"
	"github.com/mcoot/teamscore/internal/realtime"
	"github.com/mcoot/teamscore/internal/services/auth"
	"github.com/mcoot/teamscore/internal/services/competition"
	"github.com/mcoot/teamscore/internal/services/guard"
	"github.com/mcoot/teamscore/internal/services/panel"
	"github.com/mcoot/teamscore/internal/services/scorecard"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	AuthService        *auth.Service
	Guard              *guard.Guard
	ScoreController    *scorecard.Controller
	PanelService       *panel.Service
	CompetitionService *competition.Service
	HubManager         *realtime.HubManager
	Metrics            *metrics.Recorder
	RateLimiter        *middleware.SubjectRateLimiter
	// Pinger is nil for in-memory storage
	Pinger handler.Pinger
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	scoreHandler := handler.NewScoreHandler(cfg.ScoreController, cfg.Logger)
	rankingHandler := handler.NewRankingHandler(cfg.ScoreController, cfg.Logger)
	panelHandler := handler.NewPanelHandler(cfg.PanelService, cfg.Logger)
	competitionHandler := handler.NewCompetitionHandler(cfg.CompetitionService, cfg.Logger)
	realtimeHandler := handler.NewRealtimeHandler(cfg.HubManager, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Pinger, cfg.Logger)

	// Create middleware
	competitionMiddleware := middleware.Competition(cfg.Guard)
	rateLimitMiddleware := middleware.RateLimit(cfg.RateLimiter)

	r.Use(middleware.Recovery(cfg.Logger, cfg.Metrics))
	r.Use(commonmw.Logging(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))

	// Operational endpoints (no auth)
	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Authenticate(cfg.AuthService))

	// Sign-in routes (no auth, no competition)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/judge/login", authHandler.JudgeLogin).Methods(http.MethodPost)

	// Public reads: anyone may follow a competition
	reads := api.NewRoute().Subrouter()
	reads.Use(competitionMiddleware)
	reads.HandleFunc("/scores", scoreHandler.List).Methods(http.MethodGet)
	reads.HandleFunc("/scores/{scoreId}", scoreHandler.Get).Methods(http.MethodGet)
	reads.HandleFunc("/rankings/individual", rankingHandler.Individual).Methods(http.MethodGet)
	reads.HandleFunc("/rankings/team", rankingHandler.Team).Methods(http.MethodGet)
	reads.HandleFunc("/rooms/{roomId}/events", realtimeHandler.Events).Methods(http.MethodGet)
	reads.HandleFunc("/ws", realtimeHandler.WebSocket).Methods(http.MethodGet)

	// Authenticated reads
	private := api.NewRoute().Subrouter()
	private.Use(middleware.RequireAuth, competitionMiddleware)
	private.HandleFunc("/panels", panelHandler.List).Methods(http.MethodGet)

	// Writes: authenticated and rate limited per caller
	writes := api.NewRoute().Subrouter()
	writes.Use(middleware.RequireAuth, rateLimitMiddleware, competitionMiddleware)
	writes.HandleFunc("/scores/marks", scoreHandler.SubmitMark).Methods(http.MethodPost)
	writes.HandleFunc("/scores", scoreHandler.BulkSave).Methods(http.MethodPost)
	writes.HandleFunc("/scores/{scoreId}/unlock", scoreHandler.Unlock).Methods(http.MethodPost)
	writes.HandleFunc("/panels", panelHandler.Ensure).Methods(http.MethodPost)
	writes.HandleFunc("/judges/{judgeId}", panelHandler.Assign).Methods(http.MethodPut)
	writes.HandleFunc("/judges/{judgeId}/deactivate", panelHandler.Deactivate).Methods(http.MethodPost)
	writes.HandleFunc("/competition/admins", competitionHandler.SetAdmins).Methods(http.MethodPut)

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}
