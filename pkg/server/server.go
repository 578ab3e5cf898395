// Package server exposes the tariff store and calculation engines over an
// HTTP JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/levenlabs/go-lflag"
	"github.com/rs/cors"

	"github.com/tariffkit/tariffkit/pkg/log"
	"github.com/tariffkit/tariffkit/pkg/storage"
)

// Server handles the HTTP API for tariff management, billing, and
// load-factor analysis.
type Server struct {
	storage storage.Store

	listenAddr     string
	allowedOrigins []string
	httpServer     *http.Server
}

// Configured initializes the Server with dependencies. It uses lflag to
// register command-line flags for configuration.
func Configured(s storage.Store) *Server {
	srv := &Server{
		storage: s,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	listenAddr := lflag.String("http-listen", ":"+port, "HTTP server listen address")
	allowedOrigins := lflag.String("allowed-origins", "", "comma-delimited list of CORS origins allowed to call the API")

	lflag.Do(func() {
		srv.listenAddr = *listenAddr
		if *allowedOrigins != "" {
			srv.allowedOrigins = strings.Split(*allowedOrigins, ",")
			for i, origin := range srv.allowedOrigins {
				srv.allowedOrigins[i] = strings.TrimSpace(origin)
			}
		}
	})

	return srv
}

// NewServer returns a server without flag wiring, for tests.
func NewServer(s storage.Store, listenAddr string) *Server {
	return &Server{storage: s, listenAddr: listenAddr}
}

func (s *Server) setupHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tariffs", s.handleListTariffs)
	mux.HandleFunc("GET /api/tariffs/{id}", s.handleGetTariff)
	mux.HandleFunc("GET /api/tariffs/{id}/summary", s.handleTariffSummary)
	mux.HandleFunc("GET /api/tariffs/{id}/grid", s.handleRateGrid)
	mux.HandleFunc("POST /api/tariffs/{id}/rates", s.handleUpdateRates)
	mux.HandleFunc("POST /api/tariffs/translate", s.handleTranslate)
	mux.HandleFunc("GET /api/profiles", s.handleListProfiles)
	mux.HandleFunc("POST /api/calculate/bill", s.handleCalculateBill)
	mux.HandleFunc("POST /api/loadfactor/monthly", s.handleLoadFactorMonthly)
	mux.HandleFunc("POST /api/loadfactor/annual", s.handleLoadFactorAnnual)
	mux.HandleFunc("/healthz", s.handleHealthz)

	handler := http.Handler(mux)
	if len(s.allowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler(handler)
	}
	return gziphandler.GzipHandler(handler)
}

// Run starts the HTTP server and blocks until the context is canceled or
// an error occurs. It also handles graceful shutdown when the context is
// done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.setupHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}
