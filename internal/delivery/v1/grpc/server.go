package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	cfg    *cfg.GRPCConfig
	logger logger.Logger
	authUC usecase.AuthUC
}

func NewGRPCServer(cfg *cfg.GRPCConfig, authUC usecase.AuthUC, logger logger.Logger) *GRPCServer {
	s := &GRPCServer{
		health: health.NewServer(),
		cfg:    cfg,
		logger: logger,
		authUC: authUC,
	}
	s.server = grpc.NewServer(grpc.UnaryInterceptor(s.authInterceptor))
	grpc_health_v1.RegisterHealthServer(s.server, s.health)

	return s
}

func (s *GRPCServer) RegisterServices(cmdUC usecase.CommandUC) {
	s.server.RegisterService(&commandServiceDesc, NewCommandService(cmdUC, s.logger))
	s.health.SetServingStatus(commandServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
}

// authInterceptor проверяет токен сессии из метаданных authorization. Health-check открыт всегда.
func (s *GRPCServer) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if s.authUC == nil || !s.authUC.Enabled() || strings.HasPrefix(info.FullMethod, healthServicePrefix) {
		return handler(ctx, req)
	}

	if err := s.authUC.Verify(tokenFromMetadata(ctx)); err != nil {
		return nil, GRPCErrorResponse(err)
	}

	return handler(ctx, req)
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}

	token, _ := strings.CutPrefix(values[0], "Bearer ")
	return strings.TrimSpace(token)
}

func (s *GRPCServer) Start() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	lis, err := net.Listen(s.cfg.NetworkMode, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(lis)
}

// Serve обслуживает уже открытый listener.
func (s *GRPCServer) Serve(lis net.Listener) error {
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return e.Wrap("GRPCServer.Serve", err)
	}

	return nil
}

func (s *GRPCServer) Stop(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Infof("gRPC server stopped gracefully")
		return nil
	case <-ctx.Done():
		s.server.Stop()
		s.logger.Warnf("gRPC server forced to stop after timeout")
		return ctx.Err()
	}
}
