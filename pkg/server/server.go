// Package server exposes the search bar engine over HTTP. Every endpoint is
// stateless: the client sends the query text and cursor with each request.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/config"
)

// Server represents the API server instance.
type Server struct {
	router      *http.ServeMux
	httpServer  *http.Server
	logger      *slog.Logger
	port        string
	host        string
	openapiSpec []byte
	configPath  string
	eventBroker *EventBroker

	mu     sync.RWMutex
	config *config.Config
	engine *config.Engine
}

// NewServer creates a new API server instance. configPath may be empty, the
// config is then never reloaded.
func NewServer(host, port string, cfg *config.Config, configPath string, logger *slog.Logger, openapiSpec []byte) (*Server, error) {
	s := &Server{
		router:      http.NewServeMux(),
		logger:      logger,
		port:        port,
		host:        host,
		openapiSpec: openapiSpec,
		configPath:  configPath,
		eventBroker: NewEventBroker(logger),
	}
	if err := s.applyConfig(cfg); err != nil {
		return nil, err
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.healthHandler)
	s.router.HandleFunc("/tags", s.tagsHandler)
	s.router.HandleFunc("/parse", s.parseHandler)
	s.router.HandleFunc("/autocomplete", s.autocompleteHandler)
	s.router.HandleFunc("/edit", s.editHandler)
	s.router.HandleFunc("/search", s.searchHandler)
	s.router.HandleFunc("/recent", s.recentHandler)
	s.router.HandleFunc("/events", s.eventsHandler)
	s.router.HandleFunc("/openapi.yaml", s.openapiHandler)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.chainMiddleware(s.router, s.recoveryMiddleware, s.corsMiddleware, s.requestIDMiddleware, s.loggingMiddleware)
}

func (s *Server) applyConfig(cfg *config.Config) error {
	reporter := autocomplete.ReporterFunc(func(err error, context string) {
		s.logger.Warn("suggestion source failed", "context", context, "err", err)
	})

	engine, err := cfg.NewEngine(config.EngineOptions{Reporter: reporter})
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	s.mu.Lock()
	s.config = cfg
	s.engine = engine
	s.mu.Unlock()
	return nil
}

func (s *Server) current() (*config.Config, *config.Engine) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.engine
}

// ReloadConfig reads the config file again and swaps the engine.
func (s *Server) ReloadConfig(ctx context.Context) error {
	if s.configPath == "" {
		return errors.New("server was started without a config file")
	}
	cfg, _, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.applyConfig(cfg)
}

func (s *Server) onConfigReloaded(cfg *config.Config) {
	if err := s.applyConfig(cfg); err != nil {
		s.onConfigError(err)
		return
	}
	s.eventBroker.Broadcast(Event{
		Type: EventConfigReloaded,
		Data: map[string]interface{}{
			"timestamp": time.Now().Unix(),
			"tags":      len(cfg.Tags),
		},
	})
}

func (s *Server) onConfigError(err error) {
	s.eventBroker.Broadcast(Event{
		Type: EventServerError,
		Data: map[string]interface{}{
			"message": fmt.Sprintf("Failed to reload config: %v", err),
		},
	})
}

// Start runs the HTTP server and blocks until a signal is received.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	// Create listener first to get the actual assigned port (important when port=0)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.configPath != "" {
		watcher, err := config.NewWatcher(s.configPath, config.WatcherOptions{
			Logger:   s.logger,
			OnReload: s.onConfigReloaded,
			OnError:  s.onConfigError,
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			s.logger.Warn("config hot reload disabled", "err", err)
		}
		defer watcher.Stop()
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", listener.Addr().String())
		fmt.Printf("Server listening on port %d\n", actualPort)
		serverErrors <- s.httpServer.Serve(listener)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		s.logger.Info("shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("graceful shutdown failed", "err", err)
			return s.httpServer.Close()
		}
		s.logger.Info("server shutdown gracefully")
	}

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.httpServer.Shutdown(ctx)
}
