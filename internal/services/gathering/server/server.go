// Package server wires the gathering runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mirefield/gatherspace/internal/platform/config"
	"github.com/mirefield/gatherspace/internal/platform/timeouts"
	httpapi "github.com/mirefield/gatherspace/internal/services/gathering/api/http"
	"github.com/mirefield/gatherspace/internal/services/gathering/app"
	gatheringsqlite "github.com/mirefield/gatherspace/internal/services/gathering/storage/sqlite"
)

type serverEnv struct {
	DBPath    string `env:"GATHERSPACE_GATHERING_DB_PATH"`
	JWTSecret string `env:"GATHERSPACE_JWT_SECRET"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "gathering.db")
	}
	return cfg
}

// Server hosts the gathering HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *gatheringsqlite.Store
}

// New creates a configured gathering server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured gathering server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	env := loadServerEnv()
	if strings.TrimSpace(env.JWTSecret) == "" {
		return nil, fmt.Errorf("GATHERSPACE_JWT_SECRET is required")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	store, err := openGatheringStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	service, err := app.NewService(store, store)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}
	handler, err := httpapi.New(service, []byte(env.JWTSecret))
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store: store,
	}, nil
}

// openGatheringStore ensures the parent directory exists and opens the store.
func openGatheringStore(path string) (*gatheringsqlite.Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}
	store, err := gatheringsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gathering store: %w", err)
	}
	return store, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a gathering server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation, then shuts down
// gracefully within the shared shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("gathering server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown gathering server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve gathering server: %w", err)
	}
}

// Close releases the listener and storage resources.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.httpServer != nil {
		if err := s.httpServer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
