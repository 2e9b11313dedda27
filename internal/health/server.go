// Package health exposes the running client's component status over a
// gRPC health endpoint on the session's unix socket.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Component names reported by the client. Overall is the server-wide
// status queried with an empty service name.
const (
	Overall   = ""
	Auth      = "auth"
	Directory = "directory"
)

// Server serves grpc.health.v1 on a unix socket.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
	socketPath string
	logger     *zap.Logger
}

// NewServer binds socketPath, replacing a stale socket left by a crashed
// process. The socket is only accessible to its owner.
func NewServer(socketPath string, logger *zap.Logger) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		return nil, fmt.Errorf("create socket dir: %w", err)
	}
	if _, err := os.Stat(socketPath); err == nil {
		_ = os.Remove(socketPath)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}

	hs := health.NewServer()
	for _, svc := range []string{Auth, Directory} {
		hs.SetServingStatus(svc, healthpb.HealthCheckResponse_NOT_SERVING)
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{
		grpcServer: srv,
		health:     hs,
		listener:   listener,
		socketPath: socketPath,
		logger:     logger.Named("health"),
	}, nil
}

// SocketPath returns the bound socket.
func (s *Server) SocketPath() string { return s.socketPath }

// SetServing records the status of one component.
func (s *Server) SetServing(service string, serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, st)
}

// Start serves requests until Stop. It blocks.
func (s *Server) Start() error {
	s.logger.Info("health endpoint starting", zap.String("socket", s.socketPath))
	err := s.grpcServer.Serve(s.listener)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Stop marks every component not serving, drains open calls and removes
// the socket file.
func (s *Server) Stop(_ context.Context) {
	s.logger.Info("health endpoint stopping")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
	_ = os.Remove(s.socketPath)
}
