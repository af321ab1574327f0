package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/vaultx/internal/client/client"
	"github.com/dmitrijs2005/vaultx/internal/client/config"
	"github.com/dmitrijs2005/vaultx/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vaultx/internal/rpc"
)

// API is what the commands need from the server connection.
type API interface {
	Ping(ctx context.Context) error
	Signup(ctx context.Context, username, email, password string) (*rpc.User, error)
	Login(ctx context.Context, email, password string) (*rpc.LoginResponse, error)
	CompleteSecondFactor(ctx context.Context, userID, code string) (*rpc.LoginResponse, error)
	ListSecrets(ctx context.Context, secretType string) ([]*rpc.Secret, error)
	GetSecret(ctx context.Context, id string) (*rpc.Secret, error)
	CreateSecret(ctx context.Context, req *rpc.CreateSecretRequest) (*rpc.Secret, error)
	DeleteSecret(ctx context.Context, id string) error
	ExportBackup(ctx context.Context) (*rpc.ExportBackupResponse, error)
	SetToken(token string)
	Token() string
}

type App struct {
	config *config.Config
	api    API
	meta   metadata.Repository
	reader *bufio.Reader
	out    io.Writer
	close  func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	state, err := client.InitState(ctx, c.StatePath)
	if err != nil {
		return nil, err
	}

	api, err := client.NewVaultClient(c.ServerEndpointAddr)
	if err != nil {
		_ = state.Close()
		return nil, err
	}

	a := newApp(c, api, state.Metadata, os.Stdin, os.Stdout)
	a.close = func() error {
		return errors.Join(api.Close(), state.Close())
	}

	if err := a.restoreSession(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func newApp(c *config.Config, api API, meta metadata.Repository, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		api:    api,
		meta:   meta,
		reader: bufio.NewReader(in),
		out:    out,
		close:  func() error { return nil },
	}
}

func (a *App) Close() error {
	return a.close()
}

// restoreSession loads the stored token if it was issued by the configured
// server.
func (a *App) restoreSession(ctx context.Context) error {
	server, ok, err := a.meta.Get(ctx, metadata.KeyServer)
	if err != nil || !ok || server != a.config.ServerEndpointAddr {
		return err
	}
	token, ok, err := a.meta.Get(ctx, metadata.KeyAccessToken)
	if err != nil {
		return err
	}
	if ok {
		a.api.SetToken(token)
	}
	return nil
}

func (a *App) saveSession(ctx context.Context, email string) error {
	if err := a.meta.Set(ctx, metadata.KeyAccessToken, a.api.Token()); err != nil {
		return err
	}
	if err := a.meta.Set(ctx, metadata.KeyServer, a.config.ServerEndpointAddr); err != nil {
		return err
	}
	return a.meta.Set(ctx, metadata.KeyUserEmail, email)
}

func (a *App) clearSession(ctx context.Context) error {
	a.api.SetToken("")
	return a.meta.Delete(ctx, metadata.KeyAccessToken, metadata.KeyServer, metadata.KeyUserEmail)
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

func (a *App) status(ctx context.Context) string {
	email, ok, _ := a.meta.Get(ctx, metadata.KeyUserEmail)
	if !ok || !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s)", email)
}

// requestContext bounds a single server call by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

// Run executes args as one command, or starts the prompt when args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "vaultctl (type 'help' for commands)")
		runREPL(ctx, a, func() string { return a.status(ctx) }, a.reader, a.out)
		return nil
	}
	return a.Exec(ctx, args)
}
