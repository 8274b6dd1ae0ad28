package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"veloce/internal/cache"
	"veloce/internal/config"
	"veloce/internal/events"
	"veloce/internal/models"
	"veloce/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SyncEnqueuer schedules a booking for background register sync.
type SyncEnqueuer interface {
	Enqueue(ctx context.Context, booking models.Booking, carName string) error
}

// HTTPServer exposes the rental marketplace JSON API.
type HTTPServer struct {
	cfg     config.Config
	store   *store.Store
	catalog cache.Catalog
	bus     *events.EventBus
	syncer  SyncEnqueuer
	redis   *redis.Client
	logger  *zerolog.Logger
	server  *http.Server
}

// Options carries the optional collaborators. Any of them may be nil; the
// server degrades to serving straight from the store.
type Options struct {
	Catalog cache.Catalog
	Bus     *events.EventBus
	Syncer  SyncEnqueuer
	Redis   *redis.Client
}

func NewHTTPServer(cfg config.Config, st *store.Store, logger *zerolog.Logger, opts Options) *HTTPServer {
	srv := &HTTPServer{
		cfg:     cfg,
		store:   st,
		catalog: opts.Catalog,
		bus:     opts.Bus,
		syncer:  opts.Syncer,
		redis:   opts.Redis,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/cars", srv.handleListCars)
	mux.HandleFunc("/api/cars/", srv.handleCarsSubtree)
	mux.HandleFunc("/api/bookings", srv.handleCreateBooking)
	mux.HandleFunc("/api/contact", srv.handleCreateContactMessage)
	mux.HandleFunc("/api/admin/bookings/export", srv.handleBookingsExport)
	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.HandleFunc("/readyz", srv.handleReadyz)

	limiter := newRateLimiter(cfg.RateLimit)
	handler := recoverMiddleware(logger, loggingMiddleware(logger, limiter.Wrap(mux)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the full middleware-wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports not-ready only when a configured redis stops
// answering; the store itself is always ready.
func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := cache.Ping(ctx, s.redis); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
