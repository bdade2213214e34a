// Package app assembles and runs the gateway process: the HTTP surface the
// game client talks to and a gRPC health endpoint for orchestration probes.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/lunargate/lunargate/internal/platform/random"
	"github.com/lunargate/lunargate/internal/services/gateway/api/rest"
	"github.com/lunargate/lunargate/internal/services/gateway/auth"
	"github.com/lunargate/lunargate/internal/services/gateway/dispatch"
	"github.com/lunargate/lunargate/internal/services/gateway/session"
	gatewaysqlite "github.com/lunargate/lunargate/internal/services/gateway/storage/sqlite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const secretKeyBytes = 32

// Config carries everything needed to assemble a gateway.
type Config struct {
	// HTTPAddr is the client-facing listen address, e.g. ":8080".
	HTTPAddr string
	// HealthPort hosts the gRPC health endpoint. Zero disables it.
	HealthPort int
	// DBPath locates the account database file.
	DBPath string

	// SDKVersion is the accepted login client version fragment.
	SDKVersion string
	// GameVersion is the gameplay version enforced on region queries.
	GameVersion string
	// MaxPlayers caps logins; -1 or lower means unlimited.
	MaxPlayers int
	// AutoCreate lets password logins register unknown usernames.
	AutoCreate bool

	// Dispatch configures the region registry.
	Dispatch dispatch.Config
	// PayloadHook optionally rewrites outgoing region payloads.
	PayloadHook dispatch.PayloadHook

	Log *slog.Logger
}

// Server hosts the gateway service.
type Server struct {
	httpListener net.Listener
	httpServer   *http.Server
	grpcListener net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	store        *gatewaysqlite.Store
	counter      *session.Counter
	log          *slog.Logger
}

// New creates a configured gateway server with its listeners bound and its
// routing table built. Registry construction is the one fatal path: a
// deployment with no resolvable regions cannot serve anyone.
func New(cfg Config) (*Server, error) {
	logger := cfg.Log
	if logger == nil {
		logger = slog.Default()
	}

	if len(cfg.Dispatch.SecretKey) == 0 {
		key, err := random.NewKeyBlock(secretKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("generate secret key: %w", err)
		}
		cfg.Dispatch.SecretKey = key
		logger.Warn("no secret key configured, generated an ephemeral one")
	}

	registry, err := dispatch.NewRegistry(cfg.Dispatch, logger)
	if err != nil {
		return nil, fmt.Errorf("build region registry: %w", err)
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}

	counter := &session.Counter{}
	deps := auth.Deps{
		Gate:       auth.VersionGate{Accepted: cfg.SDKVersion},
		Guard:      auth.CapacityGuard{MaxPlayers: cfg.MaxPlayers, Counter: counter},
		Directory:  store,
		AutoCreate: cfg.AutoCreate,
		Log:        logger,
	}

	handler := rest.New(rest.Deps{
		Password: auth.NewPasswordAuthenticator(deps),
		Token:    auth.NewTokenAuthenticator(deps),
		Combo:    auth.NewComboKeyAuthenticator(deps),
		Regions:  dispatch.NewRouter(registry, cfg.GameVersion, cfg.PayloadHook, logger),
		Counter:  counter,
		Version:  cfg.GameVersion,
		Log:      logger,
	})

	var grpcListener net.Listener
	var grpcServer *grpc.Server
	var healthServer *health.Server
	if cfg.HealthPort > 0 {
		grpcListener, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
		if err != nil {
			_ = httpListener.Close()
			_ = store.Close()
			return nil, fmt.Errorf("listen on health port %d: %w", cfg.HealthPort, err)
		}
		grpcServer = grpc.NewServer()
		healthServer = health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus("gateway.v1.Gateway", grpc_health_v1.HealthCheckResponse_SERVING)
	}

	return &Server{
		httpListener: httpListener,
		httpServer:   &http.Server{Handler: handler.Routes()},
		grpcListener: grpcListener,
		grpcServer:   grpcServer,
		health:       healthServer,
		store:        store,
		counter:      counter,
		log:          logger,
	}, nil
}

// Addr returns the bound client-facing address.
func (s *Server) Addr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Counter exposes the online tally for the hosting session manager.
func (s *Server) Counter() *session.Counter {
	return s.counter
}

// Run creates and serves a gateway until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gateway and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("gateway listening at %v", s.httpListener.Addr())
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- s.httpServer.Serve(s.httpListener)
	}()

	grpcErr := make(chan error, 1)
	if s.grpcServer != nil && s.grpcListener != nil {
		log.Printf("gateway health endpoint listening at %v", s.grpcListener.Addr())
		go func() {
			grpcErr <- s.grpcServer.Serve(s.grpcListener)
		}()
	}

	shutdownHTTP := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}
	shutdownGRPC := func() {
		if s.grpcServer == nil {
			return
		}
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
	}
	handleHTTP := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownHTTP()
		shutdownGRPC()
		return handleHTTP(<-httpErr)
	case err := <-httpErr:
		shutdownGRPC()
		return handleHTTP(err)
	case err := <-grpcErr:
		shutdownHTTP()
		if handled := handleHTTP(<-httpErr); handled != nil {
			return handled
		}
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve health endpoint: %w", err)
	}
}

func openStore(path string) (*gatewaysqlite.Store, error) {
	if path == "" {
		path = filepath.Join("data", "gateway.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := gatewaysqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gateway sqlite store: %w", err)
	}
	return store, nil
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close gateway store: %v", err)
	}
}
