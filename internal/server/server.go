// Package server exposes the categorization pipeline over HTTP. Rate
// limiters are owned by the server instance and their expired windows are
// swept by a background ticker for as long as the server runs.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fjacquet/statement-categorizer/internal/categorizer"
	"fjacquet/statement-categorizer/internal/factory"
	"fjacquet/statement-categorizer/internal/logging"
	"fjacquet/statement-categorizer/internal/ratelimit"
	"fjacquet/statement-categorizer/internal/session"
)

const (
	defaultMaxUploadBytes = 10 << 20
	shutdownTimeout       = 10 * time.Second
)

// Config holds the listener settings and the limiters to enforce. Nil
// limiters get the default API and upload limits.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	APILimiter     *ratelimit.FixedWindow
	UploadLimiter  *ratelimit.FixedWindow
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	State       *session.State
	Categorizer *categorizer.Categorizer
	Escalator   *categorizer.Escalator
	Parsers     factory.Options
	Logger      logging.Logger
}

// Server routes API requests to the session and the categorizers.
type Server struct {
	cfg       Config
	state     *session.State
	cat       *categorizer.Categorizer
	escalator *categorizer.Escalator
	parsers   factory.Options
	heuristic categorizer.MerchantLookup
	logger    logging.Logger
	handler   http.Handler
}

// New wires the routes. State and Categorizer are required.
func New(cfg Config, deps Deps) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.APILimiter == nil {
		cfg.APILimiter = ratelimit.NewAPILimiter()
	}
	if cfg.UploadLimiter == nil {
		cfg.UploadLimiter = ratelimit.NewUploadLimiter()
	}

	logger := logging.OrDefault(deps.Logger)
	parsers := deps.Parsers
	if parsers.Logger == nil {
		parsers.Logger = logger
	}

	s := &Server{
		cfg:       cfg,
		state:     deps.State,
		cat:       deps.Categorizer,
		escalator: deps.Escalator,
		parsers:   parsers,
		heuristic: categorizer.NewHeuristicLookup(),
		logger:    logger,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	api := s.limit(s.cfg.APILimiter)
	upload := s.limit(s.cfg.UploadLimiter)

	mux := http.NewServeMux()
	mux.Handle("POST /api/convert", upload(http.HandlerFunc(s.handleConvert)))
	mux.Handle("POST /api/categorize", api(http.HandlerFunc(s.handleCategorize)))
	mux.Handle("POST /api/batch-categorize", api(http.HandlerFunc(s.handleBatchCategorize)))
	mux.Handle("POST /api/search-merchant", api(http.HandlerFunc(s.handleSearchMerchant)))
	mux.Handle("POST /api/report", api(http.HandlerFunc(s.handleReport)))
	mux.Handle("GET /api/transactions", api(http.HandlerFunc(s.handleListTransactions)))
	mux.Handle("DELETE /api/transactions", api(http.HandlerFunc(s.handleClearTransactions)))
	mux.Handle("PATCH /api/transactions/{id}", api(http.HandlerFunc(s.handleUpdateTransaction)))
	mux.Handle("POST /api/transactions/{id}/approve", api(http.HandlerFunc(s.handleApprove)))
	mux.Handle("POST /api/recategorize", api(http.HandlerFunc(s.handleRecategorize)))
	mux.Handle("GET /api/review", api(http.HandlerFunc(s.handleReviewQueue)))
	mux.Handle("GET /api/rules", api(http.HandlerFunc(s.handleListRules)))
	mux.Handle("POST /api/rules", api(http.HandlerFunc(s.handleAddRule)))
	mux.Handle("DELETE /api/rules/{merchant}", api(http.HandlerFunc(s.handleDeleteRule)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s.logRequests(mux)
}

// Handler returns the routed handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", logging.F("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
