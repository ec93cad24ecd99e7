package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vbonduro/homeclean/internal/metrics"
	"github.com/vbonduro/homeclean/internal/service"
	"github.com/vbonduro/homeclean/internal/store"
)

const maxBodyBytes = 10 << 20

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the repositories and the maintenance service as a JSON API.
type Server struct {
	service *service.MaintenanceService
	repos   *store.Repositories
	metrics *metrics.Metrics
	db      Pinger
	router  chi.Router
	logger  *slog.Logger
}

func NewServer(svc *service.MaintenanceService, repos *store.Repositories, m *metrics.Metrics, db Pinger, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		repos:   repos,
		metrics: m,
		db:      db,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
		securityHeaders,
		bodyLimit(maxBodyBytes),
	)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/area-types", func(r chi.Router) {
			r.Get("/", s.handleListAreaTypes)
			r.Post("/", s.handleCreateAreaType)
			r.Get("/{id}", s.handleGetAreaType)
			r.Put("/{id}", s.handleUpdateAreaType)
			r.Delete("/{id}", s.handleDeleteAreaType)
			r.Get("/{id}/areas", s.handleListAreaTypeAreas)
		})
		r.Route("/areas", func(r chi.Router) {
			r.Get("/", s.handleListAreas)
			r.Post("/", s.handleCreateArea)
			r.Get("/{id}", s.handleGetArea)
			r.Put("/{id}", s.handleUpdateArea)
			r.Delete("/{id}", s.handleDeleteArea)
			r.Get("/{id}/items", s.handleListAreaItems)
			r.Get("/{id}/groups", s.handleListAreaGroupsForArea)
		})
		r.Route("/area-groups", func(r chi.Router) {
			r.Get("/", s.handleListAreaGroups)
			r.Post("/", s.handleCreateAreaGroup)
			r.Get("/{id}", s.handleGetAreaGroup)
			r.Put("/{id}", s.handleUpdateAreaGroup)
			r.Delete("/{id}", s.handleDeleteAreaGroup)
			r.Get("/{id}/areas", s.handleListGroupAreas)
			r.Post("/{id}/areas", s.handleAddGroupArea)
			r.Delete("/{id}/areas/{areaID}", s.handleRemoveGroupArea)
			r.Get("/{id}/available-areas", s.handleListAreasNotInGroup)
		})
		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Get("/{id}", s.handleGetItem)
			r.Put("/{id}", s.handleUpdateItem)
			r.Delete("/{id}", s.handleDeleteItem)
			r.Get("/{id}/parts", s.handleListItemParts)
		})
		r.Route("/parts", func(r chi.Router) {
			r.Get("/", s.handleListParts)
			r.Post("/", s.handleCreatePart)
			r.Get("/due", s.handleListDueParts)
			r.Get("/{id}", s.handleGetPart)
			r.Put("/{id}", s.handleUpdatePart)
			r.Delete("/{id}", s.handleDeletePart)
			r.Post("/{id}/done", s.handleMarkDone)
		})
		r.Post("/export", s.handleExport)
		r.Post("/import", s.handleImport)
		r.Route("/backups", func(r chi.Router) {
			r.Get("/", s.handleListBackups)
			r.Post("/", s.handleCreateBackup)
			r.Post("/{key}/restore", s.handleRestoreBackup)
			r.Delete("/{key}", s.handleDeleteBackup)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

func bodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
