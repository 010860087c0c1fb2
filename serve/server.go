// Package serve hosts many conversations over one shared script behind an
// HTTP API, with an optional Telegram front end.
package serve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/everydev1618/parley"
	"github.com/everydev1618/parley/dsl"
	"github.com/everydev1618/parley/intent"
)

// Defaults for Config fields left zero.
const (
	DefaultAddr         = ":3001"
	DefaultSessionTTL   = 30 * time.Minute
	DefaultReapSchedule = "@every 1m"
)

// Config holds server configuration.
type Config struct {
	Addr   string
	DBPath string

	// SessionTTL is how long a session may sit idle before the reaper
	// ends it. Negative disables expiry.
	SessionTTL   time.Duration
	ReapSchedule string

	// TelegramToken enables the Telegram front end when set.
	TelegramToken string
}

// Option configures a Server.
type Option func(*Server)

// WithStore uses st instead of opening a SQLite database at Config.DBPath.
// The server does not close a store it did not open.
func WithStore(st Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithConversationOptions applies opts to every session the server creates.
func WithConversationOptions(opts ...parley.ConversationOption) Option {
	return func(s *Server) {
		s.convOpts = append(s.convOpts, opts...)
	}
}

// Server is the HTTP front end that hosts many concurrent conversations
// over one shared program.
type Server struct {
	src       parley.ProgramSource
	sessions  *SessionManager
	broker    *EventBroker
	scheduler *Scheduler
	store     Store
	convOpts  []parley.ConversationOption
	cfg       Config
	startedAt time.Time
}

// New creates a new Server. src supplies the program for every turn;
// router classifies utterances for all sessions.
func New(src parley.ProgramSource, router intent.Router, cfg Config, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.ReapSchedule == "" {
		cfg.ReapSchedule = DefaultReapSchedule
	}

	s := &Server{
		src:       src,
		broker:    NewEventBroker(),
		scheduler: NewScheduler(),
		cfg:       cfg,
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = NewSessionManager(src, router, s.convOpts...)
	return s
}

// Sessions returns the server's session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Handler returns the API handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return corsMiddleware(mux)
}

// Start initializes the store, starts the reaper and optional Telegram bot,
// and listens for HTTP requests. It blocks until ctx is cancelled or the
// listener fails; either way background workers are stopped and a store the
// server opened itself is closed before it returns.
func (s *Server) Start(ctx context.Context) error {
	s.startedAt = time.Now()

	if s.store == nil {
		store, err := NewSQLiteStore(s.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		s.store = store
		defer func() {
			if err := store.Close(); err != nil {
				slog.Error("store close error", "error", err)
			}
		}()
	}
	if err := s.store.Init(); err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	if s.cfg.SessionTTL > 0 {
		if err := s.scheduler.AddJob("reap-sessions", s.cfg.ReapSchedule, s.reap); err != nil {
			return err
		}
	}

	// Workers stop when Start returns, whatever the reason.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	schedulerDone := make(chan struct{})
	go func() {
		s.scheduler.Start(workerCtx)
		close(schedulerDone)
	}()
	defer func() {
		stopWorkers()
		<-schedulerDone
	}()

	if s.cfg.TelegramToken != "" {
		bot, err := NewTelegramBot(s.cfg.TelegramToken, s)
		if err != nil {
			slog.Warn("telegram bot disabled", "error", err)
		} else {
			go bot.Start(workerCtx)
			slog.Info("telegram bot started", "user", bot.Username())
		}
	}

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	// Start server in goroutine.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("parley serve started", "addr", s.cfg.Addr)
		fmt.Printf("API: http://localhost%s/api/health\n", s.cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error.
	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errCh:
		s.broker.Close()
		return err
	}

	// Close broker first so SSE handlers return and the server can drain.
	s.broker.Close()

	// Graceful shutdown with 5s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	return nil
}

// registerRoutes adds all API routes to the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Sessions
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/messages", s.handleMessage)
	mux.HandleFunc("GET /api/sessions/{id}/transcript", s.handleTranscript)

	// Program and status
	mux.HandleFunc("GET /api/intents", s.handleListIntents)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/audit", s.handleAudit)

	// SSE
	mux.HandleFunc("GET /api/events", s.handleSSE)
}

// NotifyReload records a script reload. It has the signature of
// dsl.Loader.OnReload.
func (s *Server) NotifyReload(p *dsl.Program) {
	s.emit(EventScriptReloaded, "", map[string]int{
		"intents": len(p.Intents),
		"rules":   p.RuleCount(),
	})
}

// reap ends sessions idle past the TTL.
func (s *Server) reap() {
	for _, id := range s.sessions.Reap(s.cfg.SessionTTL) {
		slog.Info("session expired", "session", id)
		s.emit(EventSessionExpired, id, nil)
	}
}

// emit publishes an event to SSE subscribers and records it in the store.
func (s *Server) emit(typ, sessionID string, data any) {
	now := time.Now()
	s.broker.Publish(BrokerEvent{
		Type:      typ,
		SessionID: sessionID,
		Timestamp: now,
		Data:      data,
	})
	if s.store == nil || typ == EventTurn {
		return
	}

	var payload string
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}
	if err := s.store.InsertEvent(StoreEvent{
		Type:      typ,
		SessionID: sessionID,
		Timestamp: now,
		Data:      payload,
	}); err != nil {
		slog.Warn("failed to record event", "type", typ, "error", err)
	}
}

// corsMiddleware adds permissive CORS headers for development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
