package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/grdmnt/upbank-actual/pkg/actual"
	"github.com/grdmnt/upbank-actual/pkg/config"
	"github.com/grdmnt/upbank-actual/pkg/up"
)

// UpGateway is the slice of the Up client the server uses.
type UpGateway interface {
	FetchTransaction(id string) (*up.Transaction, error)
	Accounts() ([]up.Account, error)
}

// LedgerGateway is the slice of the Actual client the server uses.
type LedgerGateway interface {
	ImportTransactions(accountID string, transactions []actual.ImportTransaction) (*actual.ImportResult, error)
	Accounts() ([]actual.Account, error)
}

// Server relays Up webhook deliveries into Actual. Handlers share only the
// read-only config and the two gateways, so concurrent deliveries need no
// locking; redelivery safety comes from Actual's dedup on imported_id.
type Server struct {
	config *config.Config
	logger *log.Logger
	mux    *http.ServeMux
	up     UpGateway
	actual LedgerGateway

	httpServer *http.Server
}

// New creates a server wired to the given gateways.
func New(cfg *config.Config, logger *log.Logger, upClient UpGateway, actualClient LedgerGateway) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		up:     upClient,
		actual: actualClient,
	}
	s.setupRoutes()
	return s
}

// Start listens on addr and serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.mux}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/webhook/up", s.withLogging(s.handleWebhook))
	s.mux.HandleFunc("/health", s.withLogging(s.handleHealth))
	s.mux.HandleFunc("/actual/accounts", s.withLogging(s.handleActualAccounts))
	s.mux.HandleFunc("/up/accounts", s.withLogging(s.handleUpAccounts))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleActualAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	accounts, err := s.actual.Accounts()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list accounts", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleUpAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	accounts, err := s.up.Accounts()
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list Up accounts", err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{"error": message})
}

// withLogging wraps a handler to log request start and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "Internal error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
