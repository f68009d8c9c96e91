package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/louisbranch/emojifeedback/internal/platform/timeouts"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/service"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage"
	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/backend"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the health status name reported for the feedback desk.
const HealthService = "feedback.v1.FeedbackDesk"

const (
	defaultDatabaseURL    = "data/feedback.db"
	defaultHealthInterval = 10 * time.Second
)

// Config controls runtime startup.
type Config struct {
	// Port is the gRPC listen port; 0 picks a free port.
	Port          int
	DatabaseURL   string
	SessionTTL    time.Duration
	TokenSecret   string
	TokenIssuer   string
	SeedCatalog   bool
	AdminEmail    string
	AdminPassword string
	// HealthInterval is how often the store is pinged to refresh the
	// health status.
	HealthInterval time.Duration
	// Clock overrides time.Now for the store and desk.
	Clock func() time.Time
}

// Server hosts the feedback desk runtime.
type Server struct {
	listener       net.Listener
	grpcServer     *grpc.Server
	health         *health.Server
	store          storage.Store
	desk           *service.Service
	healthInterval time.Duration
}

// New opens the store, bootstraps startup data and prepares the gRPC server.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port < 0 {
		return nil, fmt.Errorf("port must not be negative")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = defaultHealthInterval
	}

	store, err := backend.Open(ctx, cfg.DatabaseURL, cfg.Clock)
	if err != nil {
		return nil, err
	}
	desk := service.New(store, service.Config{
		SessionTTL:  cfg.SessionTTL,
		TokenSecret: cfg.TokenSecret,
		TokenIssuer: cfg.TokenIssuer,
	}, cfg.Clock)

	result, err := Bootstrap(ctx, desk, BootstrapOptions{
		SeedCatalog:   cfg.SeedCatalog,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if result.EmojisAdded > 0 {
		log.Printf("seeded %d emojis", result.EmojisAdded)
	}
	if result.AdminCreated {
		log.Printf("created admin account %s", strings.TrimSpace(cfg.AdminEmail))
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:       listener,
		grpcServer:     grpcServer,
		health:         healthServer,
		store:          store,
		desk:           desk,
		healthInterval: cfg.HealthInterval,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Desk returns the feedback desk served by this runtime.
func (s *Server) Desk() *service.Service {
	if s == nil {
		return nil
	}
	return s.desk
}

// Run creates and serves a runtime until the context ends.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve blocks until the context ends or the gRPC server fails, then stops
// gracefully and closes the store.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.closeStore()

	log.Printf("feedback server listening at %v", s.listener.Addr())
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		err := s.grpcServer.Serve(s.listener)
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	})
	group.Go(func() error {
		s.watchStore(groupCtx)
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		s.stop()
		return nil
	})
	return group.Wait()
}

// watchStore pings the store and mirrors its readiness into the health
// status until ctx ends.
func (s *Server) watchStore(ctx context.Context) {
	ticker := time.NewTicker(s.healthInterval)
	defer ticker.Stop()
	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		pingCtx, cancel := context.WithTimeout(ctx, s.healthInterval)
		err := s.store.Ping(pingCtx)
		cancel()
		switch {
		case err != nil && serving:
			log.Printf("store ping failed: %v", err)
			s.health.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			log.Printf("store reachable again")
			s.health.SetServingStatus(HealthService, grpc_health_v1.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}

func (s *Server) stop() {
	s.health.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeouts.Shutdown):
		log.Printf("graceful stop timed out after %v", timeouts.Shutdown)
		s.grpcServer.Stop()
	}
}

func (s *Server) closeStore() {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		log.Printf("close feedback store: %v", err)
	}
}
