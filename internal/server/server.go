// Package server provides the HTTP REST API that exposes editing sessions to
// the display layer: the four workflow commands, document updates, and an
// SSE stream of state changes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jordan/content-optimizer/internal/oracle"
	"github.com/jordan/content-optimizer/internal/store"
	"github.com/jordan/content-optimizer/internal/suggest"
	"github.com/jordan/content-optimizer/internal/workflow"
)

// Config holds server configuration.
type Config struct {
	Port         int
	OracleURL    string
	OracleAPIKey string
	SiteID       string
	Location     string
	Language     string
	RescoreDelay time.Duration
	// DatabaseURL enables post persistence when set.
	DatabaseURL string
	// GeminiAPIKey enables the local suggestion backend when set.
	GeminiAPIKey string
	GeminiModel  string
	Logger       *zap.Logger
}

// editingSession pairs a session id with its workflow controller.
type editingSession struct {
	ID         uuid.UUID
	PostID     *uuid.UUID
	Controller *workflow.Controller
}

// Server represents the HTTP server.
type Server struct {
	cfg      Config
	log      *zap.Logger
	validate *validator.Validate
	posts    store.Store
	gen      *suggest.Generator

	// newOracle builds the oracle client for one editing session. Tests
	// override it to inject fakes.
	newOracle func(postID string) (oracle.Client, error)

	mu       sync.Mutex
	sessions map[uuid.UUID]*editingSession

	httpServer *http.Server
}

// New creates a new server instance.
func New(cfg Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
		sessions: make(map[uuid.UUID]*editingSession),
	}

	if cfg.DatabaseURL != "" {
		posts, err := store.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.posts = posts
	}

	if cfg.GeminiAPIKey != "" {
		gen, err := suggest.NewGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create suggestion generator: %w", err)
		}
		s.gen = gen
	}

	s.newOracle = func(postID string) (oracle.Client, error) {
		remote, err := oracle.NewRemote(oracle.RemoteConfig{
			BaseURL: cfg.OracleURL,
			APIKey:  cfg.OracleAPIKey,
			SiteID:  cfg.SiteID,
			PostID:  postID,
		})
		if err != nil {
			return nil, err
		}
		if s.gen != nil {
			return suggest.WithGenerator(remote, s.gen), nil
		}
		return remote, nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("PUT /sessions/{id}/document", s.handleUpdateDocument)
	mux.HandleFunc("POST /sessions/{id}/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /sessions/{id}/rescore", s.handleRescore)
	mux.HandleFunc("POST /sessions/{id}/suggestions", s.handleSuggestions)
	mux.HandleFunc("POST /sessions/{id}/apply", s.handleApply)
	mux.HandleFunc("POST /sessions/{id}/undo", s.handleUndo)
	mux.HandleFunc("POST /sessions/{id}/save", s.handleSave)
	mux.HandleFunc("GET /sessions/{id}/events", s.handleEvents)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the server's HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		s.log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.Controller.Close()
	}
	s.sessions = make(map[uuid.UUID]*editingSession)
	s.mu.Unlock()

	if s.posts != nil {
		if pg, ok := s.posts.(*store.Postgres); ok {
			defer pg.Close()
		}
	}
	if s.gen != nil {
		defer func() { _ = s.gen.Close() }()
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) lookup(id uuid.UUID) (*editingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
