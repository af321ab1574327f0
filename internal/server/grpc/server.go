package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/ratelimit"
	"github.com/dmitrijs2005/vaultx/internal/rpc"
	"github.com/dmitrijs2005/vaultx/internal/server/services"
	"google.golang.org/grpc"
)

// Services bundles what the gRPC handlers call into.
type Services struct {
	Auth   *services.AuthService
	Users  *services.UserService
	Vault  *services.VaultService
	Backup *services.BackupService
}

type GRPCServer struct {
	address string
	auth    *services.AuthService
	users   *services.UserService
	vault   *services.VaultService
	backup  *services.BackupService
	limiter *ratelimit.KeyedLimiter
	logger  logging.Logger
}

type Option func(*GRPCServer)

// WithLimiter throttles every call per peer IP. Share it with the HTTP API so
// both transports draw from one budget.
func WithLimiter(l *ratelimit.KeyedLimiter) Option {
	return func(s *GRPCServer) { s.limiter = l }
}

func NewGRPCServer(a string, l logging.Logger, s Services, opts ...Option) *GRPCServer {
	srv := &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    s.Auth,
		users:   s.Users,
		vault:   s.Vault,
		backup:  s.Backup,
	}
	for _, o := range opts {
		o(srv)
	}
	return srv
}

// NewServer returns a grpc.Server with the interceptors and the vault service
// registered, not yet serving.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoveryInterceptor, s.rateLimitInterceptor, s.accessTokenInterceptor))
	rpc.RegisterVaultServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
