// Package app wires the arena runtime: stats store, persistence gateway,
// kit store, session registry and the gRPC health listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/ffa-arena/internal/arena/item"
	"github.com/louisbranch/ffa-arena/internal/arena/kit"
	"github.com/louisbranch/ffa-arena/internal/arena/session"
	"github.com/louisbranch/ffa-arena/internal/arena/storage"
	arenabbolt "github.com/louisbranch/ffa-arena/internal/arena/storage/bbolt"
	"github.com/louisbranch/ffa-arena/internal/arena/storage/gateway"
	arenasqlite "github.com/louisbranch/ffa-arena/internal/arena/storage/sqlite"
	"github.com/louisbranch/ffa-arena/internal/platform/logging"
	"github.com/louisbranch/ffa-arena/internal/platform/timeouts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBBolt  = "bbolt"
)

// HealthService is the health check name reported for the stats pipeline.
const HealthService = "arena.Stats"

// Config describes one arena runtime.
type Config struct {
	Addr         string
	StoreDriver  string
	StorePath    string
	KitPath      string
	FlushTimeout time.Duration
	Logger       zerolog.Logger
}

// Server owns the arena runtime and its gRPC lifecycle.
type Server struct {
	logger       zerolog.Logger
	flushTimeout time.Duration

	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	gateway    *gateway.Gateway
	kits       *kit.Store
	sessions   *session.Manager
}

// New opens the stats store, loads the kit and binds the listener. A kit
// entry that fails validation aborts startup.
func New(cfg Config) (*Server, error) {
	logger := cfg.Logger
	flushTimeout := cfg.FlushTimeout
	if flushTimeout <= 0 {
		flushTimeout = timeouts.StoreFlush
	}

	engine, err := OpenEngine(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return nil, err
	}
	gw := gateway.New(engine, gateway.WithLogger(logging.Component(logger, "gateway")))

	doc, err := kit.OpenFile(cfg.KitPath, kit.DefaultKit())
	if err != nil {
		_ = gw.Close()
		return nil, err
	}
	registry := item.DefaultRegistry()
	kits := kit.NewStore(doc, item.NewCodec(registry, registry), kit.WithLogger(logging.Component(logger, "kit")))
	if err := kits.Load(); err != nil {
		_ = gw.Close()
		return nil, fmt.Errorf("load kit %s: %w", doc.Path(), err)
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = gw.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		logger:       logger,
		flushTimeout: flushTimeout,
		listener:     listener,
		grpcServer:   grpcServer,
		health:       healthServer,
		gateway:      gw,
		kits:         kits,
		sessions:     session.NewManager(gw, session.WithLogger(logging.Component(logger, "session"))),
	}, nil
}

// OpenEngine opens the stats engine for driver at path, creating the parent
// directory when needed.
func OpenEngine(driver, path string) (storage.Engine, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	switch driver {
	case DriverSQLite:
		store, err := arenasqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite stats store: %w", err)
		}
		return store, nil
	case DriverBBolt:
		store, err := arenabbolt.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open bbolt stats store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Kits returns the loaded kit store.
func (s *Server) Kits() *kit.Store {
	return s.kits
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Gateway returns the persistence gateway.
func (s *Server) Gateway() *gateway.Gateway {
	return s.gateway
}

// Serve runs the gRPC server until ctx is canceled, then stops accepting
// calls and flushes pending stats writes within the flush timeout.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.logger.Info().Str("addr", s.Addr()).Msg("arena listening")
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	var err error
	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err = <-serveErr
	case err = <-serveErr:
	}
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		err = fmt.Errorf("serve gRPC: %w", err)
	} else {
		err = nil
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
	defer cancel()
	if flushErr := s.shutdownGateway(flushCtx); flushErr != nil {
		return errors.Join(err, flushErr)
	}
	return err
}

func (s *Server) shutdownGateway(ctx context.Context) error {
	pending := s.gateway.Pending()
	if err := s.gateway.Shutdown(ctx); err != nil {
		s.logger.Error().Err(err).Int("pending", pending).Msg("flush stats store")
		return fmt.Errorf("flush stats store: %w", err)
	}
	s.logger.Info().Int("flushed", pending).Msg("stats store closed")
	return nil
}

// Close releases server resources without waiting for a graceful stop.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.gateway != nil {
		if err := s.gateway.Close(); err != nil {
			s.logger.Error().Err(err).Msg("close stats store")
		}
	}
}
