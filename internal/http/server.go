package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/explorecali/tours-api/internal/auth"
	"github.com/explorecali/tours-api/internal/config"
	"github.com/explorecali/tours-api/internal/feature"
	"github.com/explorecali/tours-api/internal/repository"
	"github.com/explorecali/tours-api/internal/service"
	"github.com/explorecali/tours-api/internal/store"
)

// featureTourRatings gates the whole ratings subtree.
const featureTourRatings = "tour-ratings"

// Server carries the router, its collaborators, and the running http.Server.
type Server struct {
	cfg     config.Config
	store   *store.Store
	repo    *repository.Repository
	ratings *service.TourRatings
	flags   *feature.Service
	users   *auth.UserStore
	policy  auth.Policy
	logger  *log.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New assembles the router with its base middleware and the full route tree.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, ratings *service.TourRatings, flags *feature.Service, users *auth.UserStore, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:     cfg,
		store:   st,
		repo:    repo,
		ratings: ratings,
		flags:   flags,
		users:   users,
		policy:  auth.DefaultPolicy(),
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Use(auth.Middleware(s.users, s.policy, s.logger))

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/tours", func(r chi.Router) {
		r.Get("/", s.handleListTours)
		r.Route("/{tourID}", func(r chi.Router) {
			r.Get("/", s.handleGetTour)
			r.Route("/ratings", func(r chi.Router) {
				r.Use(s.requireRatingsEnabled)
				r.Get("/", s.handleListRatings)
				r.Post("/", s.handleCreateRating)
				r.Get("/average", s.handleGetAverage)
				r.Put("/", s.handlePutRating)
				r.Patch("/", s.handlePatchRating)
				r.Delete("/{customerID}", s.handleDeleteRating)
				r.Post("/batch", s.handleBatchRatings)
			})
		})
	})
}

// requireRatingsEnabled hides the ratings subtree while the tour-ratings
// flag is off: callers get the same 404 an unknown resource produces, no
// matter which role they hold.
func (s *Server) requireRatingsEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.flags.IsEnabled(featureTourRatings) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until the context is cancelled or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	s.logger.Printf("http: listening on %s", s.httpSrv.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unreachable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
