package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/oggyb/spark-core/internal/config"
	"github.com/oggyb/spark-core/internal/logger"
	pb "github.com/oggyb/spark-core/internal/proto/spark"
)

// Server is the gRPC front of the core: the registered services plus the
// standard health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	addr   string
	log    *slog.Logger
}

// NewServer builds a gRPC server and registers all provided services.
// Every registered service is reported SERVING by the health service.
func NewServer(cfg *config.Config, log *slog.Logger, registrars ...Registrar) *Server {
	s := &Server{
		health: health.NewServer(),
		addr:   fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port),
		log:    log,
	}
	s.grpc = grpc.NewServer(
		grpc.ForceServerCodec(pb.Codec{}),
		grpc.ChainUnaryInterceptor(s.unaryLogger),
		grpc.ChainStreamInterceptor(s.streamLogger),
	)

	for _, r := range registrars {
		r.Register(s.grpc)
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	for name := range s.grpc.GetServiceInfo() {
		s.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.addr }

// ListenAndServe listens on the configured address and serves until Stop.
func (s *Server) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC server listening", "addr", lis.Addr().String())
	if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// Stop marks the server NOT_SERVING and drains in-flight calls. Open
// streams are cut once ctx is done.
func (s *Server) Stop(ctx context.Context) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("graceful stop timed out, closing streams")
		s.grpc.Stop()
		<-done
	}
}

func (s *Server) unaryLogger(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	log := s.log.With("method", info.FullMethod)
	resp, err := handler(logger.NewContext(ctx, log), req)
	if err != nil {
		log.Debug("call failed", "code", status.Code(err).String(), "err", err, logger.Since(start))
	} else {
		log.Debug("call done", logger.Since(start))
	}
	return resp, err
}

func (s *Server) streamLogger(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	log := s.log.With("method", info.FullMethod)
	log.Debug("stream opened")
	err := handler(srv, ss)
	log.Debug("stream closed", "code", status.Code(err).String(), logger.Since(start))
	return err
}
