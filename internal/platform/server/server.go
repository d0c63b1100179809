package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ogurasousui/workforce-api/internal/platform/config"
)

const (
	shutdownTimeout    = 15 * time.Second
	healthPollInterval = 10 * time.Second
)

// Pinger はヘルスチェックで疎通を確認する依存先です。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server は HTTP API サーバーとヘルスチェック用 gRPC サーバーのライフサイクルを管理します。
type Server struct {
	httpServer *http.Server
	healthAddr string
	grpcServer *grpc.Server
	health     *health.Server
	db         Pinger
	logger     *zap.Logger
}

// New は HTTP ハンドラと gRPC Health サービスを持つサーバーを構築します。
func New(cfg config.ServerConfig, handler http.Handler, db Pinger, logger *zap.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	grpcServer := grpc.NewServer(opts...)
	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			ErrorLog:          zap.NewStdLog(logger),
		},
		healthAddr: cfg.HealthAddr,
		grpcServer: grpcServer,
		health:     healthSrv,
		db:         db,
		logger:     logger,
	}
}

// Run は両サーバーを起動し、コンテキストがキャンセルされると安全に停止します。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	healthLis, err := net.Listen("tcp", s.healthAddr)
	if err != nil {
		httpLis.Close()
		return fmt.Errorf("listen on %s: %w", s.healthAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", httpLis.Addr().String()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.logger.Info("grpc health server listening", zap.String("addr", healthLis.Addr().String()))
		if err := s.grpcServer.Serve(healthLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.watchHealth(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err := s.httpServer.Shutdown(shutdownCtx)
		s.grpcServer.GracefulStop()
		if err != nil {
			return fmt.Errorf("shutdown HTTP: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// watchHealth は DB の疎通に応じて gRPC のヘルス状態を更新します。
func (s *Server) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		s.health.SetServingStatus("", s.pingStatus(ctx))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) pingStatus(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if s.db == nil {
		return healthpb.HealthCheckResponse_SERVING
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.Ping(pingCtx); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("database ping failed", zap.Error(err))
		}
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
