package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"incident-tracker/api/handlers"
	"incident-tracker/config"
	"incident-tracker/core/files"
	"incident-tracker/core/store"
	"incident-tracker/core/utils"
)

// Server wires configuration, stores and the upload service into one HTTP
// surface. Everything is injected; the server owns no global state.
type Server struct {
	cfg       *config.AppConfig
	logger    *utils.Logger
	startedAt time.Time

	incidentsStore  store.IncidentsStore
	usersStore      store.UsersStore
	playbooksStore  store.PlaybooksStore
	artifactsStore  store.ArtifactsStore
	referencesStore store.ReferencesStore
	filesSvc        *files.Service

	httpServer *http.Server
}

type Deps struct {
	Incidents  store.IncidentsStore
	Users      store.UsersStore
	Playbooks  store.PlaybooksStore
	Artifacts  store.ArtifactsStore
	References store.ReferencesStore
	Files      *files.Service
}

func NewServer(cfg *config.AppConfig, deps Deps, logger *utils.Logger) *Server {
	return &Server{
		cfg:             cfg,
		logger:          logger,
		startedAt:       time.Now(),
		incidentsStore:  deps.Incidents,
		usersStore:      deps.Users,
		playbooksStore:  deps.Playbooks,
		artifactsStore:  deps.Artifacts,
		referencesStore: deps.References,
		filesSvc:        deps.Files,
	}
}

type routeHandlers struct {
	health     *handlers.HealthHandler
	incidents  *handlers.IncidentsHandler
	users      *handlers.UsersHandler
	playbooks  *handlers.PlaybooksHandler
	artifacts  *handlers.ArtifactsHandler
	references *handlers.ReferencesHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		health:     handlers.NewHealthHandler(s.cfg, s.startedAt),
		incidents:  handlers.NewIncidentsHandler(s.cfg, s.incidentsStore, s.filesSvc, s.logger),
		users:      handlers.NewUsersHandler(s.cfg, s.usersStore, s.logger),
		playbooks:  handlers.NewPlaybooksHandler(s.cfg, s.playbooksStore, s.filesSvc, s.logger),
		artifacts:  handlers.NewArtifactsHandler(s.cfg, s.artifactsStore, s.logger),
		references: handlers.NewReferencesHandler(s.cfg, s.referencesStore, s.logger),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.corsMiddleware)

	h := s.newRouteHandlers()

	r.MethodFunc(http.MethodGet, "/", h.health.Index)
	r.MethodFunc(http.MethodGet, "/health", h.health.Health)

	r.Route("/api", func(apiRouter chi.Router) {
		s.registerIncidentsRoutes(apiRouter, h)
		s.registerUsersRoutes(apiRouter, h)
		s.registerPlaybooksRoutes(apiRouter, h)
		s.registerArtifactsRoutes(apiRouter, h)
		s.registerReferencesRoutes(apiRouter, h)
	})

	r.NotFound(s.notFoundHandler)
	r.MethodNotAllowed(s.notFoundHandler)
	return r
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Infof("Server running on %s", s.cfg.ListenAddr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
