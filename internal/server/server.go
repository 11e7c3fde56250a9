package server

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"busyisland/internal/config"
	"busyisland/internal/handler"
)

// Server is the HTTP server for Busy Island.
type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	logger *slog.Logger
	ready  chan struct{} // closed once datasets are warm

	loading http.Handler
}

// New creates a new Server with all routes registered. static is the
// embedded static asset tree.
func New(cfg *config.Config, h *handler.Handler, static fs.FS, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:     mux,
		cfg:     cfg,
		logger:  logger,
		ready:   make(chan struct{}),
		loading: http.HandlerFunc(h.Loading),
	}
	if !cfg.Warm {
		close(s.ready)
	}

	// Static files, versioned URLs get immutable caching
	fileServer := http.FileServer(http.FS(static))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticCacheHandler(fileServer)))

	// Pages
	mux.HandleFunc("GET /", h.Home)
	mux.HandleFunc("GET /game", h.Game)
	mux.HandleFunc("GET /browse", h.Browse)
	mux.HandleFunc("GET /healthz", h.Healthz)

	// Game actions
	limit := rateLimit(cfg.RateLimit, logger)
	mux.Handle("POST /game/start", limit(http.HandlerFunc(h.StartGame)))
	mux.Handle("POST /game/answer", limit(http.HandlerFunc(h.Answer)))
	mux.Handle("POST /game/next", limit(http.HandlerFunc(h.Next)))
	mux.Handle("POST /game/reset", limit(http.HandlerFunc(h.Reset)))

	return s
}

// rateLimit caps game actions per client IP per minute. A limit of zero
// disables it.
func rateLimit(perMinute int, logger *slog.Logger) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate limit exceeded", "path", r.URL.Path, "remote", r.RemoteAddr)
			http.Error(w, "Too many requests, slow down.", http.StatusTooManyRequests)
		}),
	)
}

// SetReady signals that the datasets are loaded and pages can be served.
func (s *Server) SetReady() {
	select {
	case <-s.ready:
		// already closed
	default:
		close(s.ready)
	}
}

// Handler returns the routes wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		securityHeaders,
		requestLogger(s.logger),
		waitForData(s.ready, s.loading),
	)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("server starting", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}
