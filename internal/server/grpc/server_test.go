package grpc

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/cryptox"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/ratelimit"
	"github.com/dmitrijs2005/vaultx/internal/rpc"
	"github.com/dmitrijs2005/vaultx/internal/server/auth"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/memory"
	"github.com/dmitrijs2005/vaultx/internal/server/services"
	"github.com/dmitrijs2005/vaultx/internal/server/twofactor"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type fixture struct {
	server *GRPCServer
	client *rpc.VaultServiceClient
	tf     *services.TwoFactorService
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	logger := logging.Discard()
	store := memory.NewStore()

	box, err := cryptox.NewBox(strings.Repeat("cd", cryptox.KeySize))
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer([]byte(strings.Repeat("k", auth.MinSecretLength)), time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordHasher(auth.MinBcryptCost)
	engine := twofactor.NewEngine("VaultX", passwords)

	activity := services.NewActivityService(store, store, logger)
	t.Cleanup(activity.Wait)

	s := NewGRPCServer("bufnet", logger, Services{
		Auth:   services.NewAuthService(store, store, passwords, tokens, engine, activity, logger),
		Users:  services.NewUserService(store, store, passwords, activity, logger),
		Vault:  services.NewVaultService(store, store, box, activity, logger),
		Backup: services.NewBackupService(store, store, services.BackupConfig{}, activity, logger),
	}, opts...)

	lis := bufconn.Listen(1 << 20)
	srv := s.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{
		server: s,
		client: rpc.NewVaultServiceClient(conn),
		tf:     services.NewTwoFactorService(store, store, engine, activity, logger),
	}
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, token)
}

func (f *fixture) login(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()

	su, err := f.client.Signup(ctx, &rpc.SignupRequest{Username: "alice", Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	res, err := f.client.Login(ctx, &rpc.LoginRequest{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	require.False(t, res.TwoFactorRequired)
	require.NotEmpty(t, res.Token)
	return su.User.ID, res.Token
}

func TestPing_IsPublic(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.Ping(context.Background(), &rpc.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
}

func TestProtectedMethods_RequireToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.client.ListSecrets(context.Background(), &rpc.ListSecretsRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = f.client.ListSecrets(withToken("garbage"), &rpc.ListSecretsRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestSignupAndLogin_Errors(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	_, err := f.client.Signup(ctx, &rpc.SignupRequest{Username: "alice", Email: "a@x.com", Password: "pw1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = f.client.Signup(ctx, &rpc.SignupRequest{Username: "bob"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.client.Login(ctx, &rpc.LoginRequest{Email: "a@x.com", Password: "bad"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestSecretLifecycle(t *testing.T) {
	f := newFixture(t)
	_, token := f.login(t)
	ctx := withToken(token)

	created, err := f.client.CreateSecret(ctx, &rpc.CreateSecretRequest{Title: "api-key", Data: "sk-123", Description: "prod"})
	require.NoError(t, err)
	assert.Equal(t, "secret", created.Secret.Type)
	assert.Empty(t, created.Secret.Data)

	got, err := f.client.GetSecret(ctx, &rpc.GetSecretRequest{ID: created.Secret.ID})
	require.NoError(t, err)
	assert.Equal(t, "sk-123", got.Secret.Data)

	empty, data := "", "sk-456"
	upd, err := f.client.UpdateSecret(ctx, &rpc.UpdateSecretRequest{ID: created.Secret.ID, Data: &data, Description: &empty})
	require.NoError(t, err)
	assert.Empty(t, upd.Secret.Description)
	assert.Equal(t, "api-key", upd.Secret.Title)

	list, err := f.client.ListSecrets(ctx, &rpc.ListSecretsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Secrets, 1)

	_, err = f.client.ListSecrets(ctx, &rpc.ListSecretsRequest{Type: "bogus"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.client.DeleteSecret(ctx, &rpc.DeleteSecretRequest{ID: created.Secret.ID})
	require.NoError(t, err)

	_, err = f.client.GetSecret(ctx, &rpc.GetSecretRequest{ID: created.Secret.ID})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestExportBackup_Disabled(t *testing.T) {
	f := newFixture(t)
	_, token := f.login(t)

	_, err := f.client.ExportBackup(withToken(token), &rpc.ExportBackupRequest{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestLogin_SecondFactor(t *testing.T) {
	f := newFixture(t)
	userID, _ := f.login(t)
	ctx := context.Background()

	enr, err := f.tf.Generate(ctx, userID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(enr.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.tf.Verify(ctx, userID, code))

	res, err := f.client.Login(ctx, &rpc.LoginRequest{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.True(t, res.TwoFactorRequired)
	assert.Equal(t, userID, res.UserID)
	assert.Empty(t, res.Token)

	_, err = f.client.CompleteSecondFactor(ctx, &rpc.CompleteSecondFactorRequest{UserID: userID, Code: "12"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	done, err := f.client.CompleteSecondFactor(ctx, &rpc.CompleteSecondFactorRequest{UserID: userID, Code: code})
	require.NoError(t, err)
	assert.NotEmpty(t, done.Token)
	assert.True(t, done.User.TwoFactorEnabled)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:0", logging.Discard(), Services{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:99999", logging.Discard(), Services{})
	assert.Error(t, s.Run(context.Background()))
}

func TestRateLimit_CompleteSecondFactor(t *testing.T) {
	f := newFixture(t, WithLimiter(ratelimit.New(3, time.Hour)))
	ctx := context.Background()
	req := &rpc.CompleteSecondFactorRequest{UserID: "7f0c6d2e-3b7a-4a59-9d1e-2f1b8c0a4e11", Code: "000000"}

	for i := 0; i < 3; i++ {
		_, err := f.client.CompleteSecondFactor(ctx, req)
		require.Equal(t, codes.Unauthenticated, status.Code(err), "guess %d", i)
	}

	_, err := f.client.CompleteSecondFactor(ctx, req)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	_, err = f.client.Ping(ctx, &rpc.PingRequest{})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}
