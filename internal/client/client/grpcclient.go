package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// vaultAPI is the subset of rpc.VaultServiceClient used here.
type vaultAPI interface {
	Ping(ctx context.Context, in *rpc.PingRequest, opts ...grpc.CallOption) (*rpc.PingResponse, error)
	Signup(ctx context.Context, in *rpc.SignupRequest, opts ...grpc.CallOption) (*rpc.SignupResponse, error)
	Login(ctx context.Context, in *rpc.LoginRequest, opts ...grpc.CallOption) (*rpc.LoginResponse, error)
	CompleteSecondFactor(ctx context.Context, in *rpc.CompleteSecondFactorRequest, opts ...grpc.CallOption) (*rpc.LoginResponse, error)
	ListSecrets(ctx context.Context, in *rpc.ListSecretsRequest, opts ...grpc.CallOption) (*rpc.ListSecretsResponse, error)
	GetSecret(ctx context.Context, in *rpc.GetSecretRequest, opts ...grpc.CallOption) (*rpc.SecretResponse, error)
	CreateSecret(ctx context.Context, in *rpc.CreateSecretRequest, opts ...grpc.CallOption) (*rpc.SecretResponse, error)
	DeleteSecret(ctx context.Context, in *rpc.DeleteSecretRequest, opts ...grpc.CallOption) (*rpc.DeleteSecretResponse, error)
	ExportBackup(ctx context.Context, in *rpc.ExportBackupRequest, opts ...grpc.CallOption) (*rpc.ExportBackupResponse, error)
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      vaultAPI

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewVaultClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewVaultServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Signup(ctx context.Context, username, email, password string) (*rpc.User, error) {
	resp, err := s.client.Signup(ctx, &rpc.SignupRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.User, nil
}

// Login keeps the returned token for later calls. When the account has
// two-factor enabled the response only carries the user id to pass to
// CompleteSecondFactor.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*rpc.LoginResponse, error) {
	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Token != "" {
		s.SetToken(resp.Token)
	}
	return resp, nil
}

func (s *GRPCClient) CompleteSecondFactor(ctx context.Context, userID, code string) (*rpc.LoginResponse, error) {
	resp, err := s.client.CompleteSecondFactor(ctx, &rpc.CompleteSecondFactorRequest{UserID: userID, Code: code})
	if err != nil {
		return nil, s.mapError(err)
	}
	s.SetToken(resp.Token)
	return resp, nil
}

func (s *GRPCClient) ListSecrets(ctx context.Context, secretType string) ([]*rpc.Secret, error) {
	resp, err := s.client.ListSecrets(ctx, &rpc.ListSecretsRequest{Type: secretType})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Secrets, nil
}

func (s *GRPCClient) GetSecret(ctx context.Context, id string) (*rpc.Secret, error) {
	resp, err := s.client.GetSecret(ctx, &rpc.GetSecretRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Secret, nil
}

func (s *GRPCClient) CreateSecret(ctx context.Context, req *rpc.CreateSecretRequest) (*rpc.Secret, error) {
	resp, err := s.client.CreateSecret(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Secret, nil
}

func (s *GRPCClient) DeleteSecret(ctx context.Context, id string) error {
	if _, err := s.client.DeleteSecret(ctx, &rpc.DeleteSecretRequest{ID: id}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ExportBackup(ctx context.Context) (*rpc.ExportBackupResponse, error) {
	resp, err := s.client.ExportBackup(ctx, &rpc.ExportBackupRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument, codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
