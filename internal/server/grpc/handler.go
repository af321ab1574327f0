package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/rpc"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrTwoFactorNotPending),
		errors.Is(err, common.ErrTwoFactorAlreadyEnabled):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidCode),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrAuthorization),
		errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrBackupDisabled):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

func toUser(u *models.PublicUser) *rpc.User {
	if u == nil {
		return nil
	}
	return &rpc.User{ID: u.ID, Username: u.UserName, Email: u.Email, TwoFactorEnabled: u.TwoFactorEnabled}
}

func toSecret(s *models.Secret) *rpc.Secret {
	return &rpc.Secret{
		ID:          s.ID,
		Title:       s.Title,
		Type:        string(s.Type),
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toLoginResponse(res *services.LoginResult) *rpc.LoginResponse {
	if res.Step == services.StepSecondFactorRequired {
		return &rpc.LoginResponse{TwoFactorRequired: true, UserID: res.UserID}
	}
	return &rpc.LoginResponse{Token: res.Token, User: toUser(res.User)}
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {
	return &rpc.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Signup(ctx context.Context, req *rpc.SignupRequest) (*rpc.SignupResponse, error) {
	u, err := s.users.Signup(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", u.UserName)
	return &rpc.SignupResponse{User: toUser(u)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {
	res, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return toLoginResponse(res), nil
}

func (s *GRPCServer) CompleteSecondFactor(ctx context.Context, req *rpc.CompleteSecondFactorRequest) (*rpc.LoginResponse, error) {
	res, err := s.auth.CompleteSecondFactor(ctx, req.UserID, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}
	return toLoginResponse(res), nil
}

func (s *GRPCServer) ListSecrets(ctx context.Context, req *rpc.ListSecretsRequest) (*rpc.ListSecretsResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.vault.List(ctx, userID, req.Type)
	if err != nil {
		return nil, toStatus(err)
	}

	out := make([]*rpc.Secret, 0, len(list))
	for _, sec := range list {
		out = append(out, toSecret(sec))
	}
	return &rpc.ListSecretsResponse{Secrets: out}, nil
}

func (s *GRPCServer) GetSecret(ctx context.Context, req *rpc.GetSecretRequest) (*rpc.SecretResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	sec, err := s.vault.Get(ctx, userID, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	out := toSecret(&sec.Secret)
	out.Data = sec.Data
	return &rpc.SecretResponse{Secret: out}, nil
}

func (s *GRPCServer) CreateSecret(ctx context.Context, req *rpc.CreateSecretRequest) (*rpc.SecretResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	sec, err := s.vault.Create(ctx, userID, services.NewSecret{
		Title:       req.Title,
		Data:        req.Data,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.SecretResponse{Secret: toSecret(sec)}, nil
}

func (s *GRPCServer) UpdateSecret(ctx context.Context, req *rpc.UpdateSecretRequest) (*rpc.SecretResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	sec, err := s.vault.Update(ctx, userID, req.ID, services.SecretPatch{
		Title:       req.Title,
		Data:        req.Data,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.SecretResponse{Secret: toSecret(sec)}, nil
}

func (s *GRPCServer) DeleteSecret(ctx context.Context, req *rpc.DeleteSecretRequest) (*rpc.DeleteSecretResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.vault.Delete(ctx, userID, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &rpc.DeleteSecretResponse{}, nil
}

func (s *GRPCServer) ExportBackup(ctx context.Context, req *rpc.ExportBackupRequest) (*rpc.ExportBackupResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.backup.Export(ctx, userID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &rpc.ExportBackupResponse{Key: b.Key, URL: b.URL, ExpiresAt: b.ExpiresAt}, nil
}
