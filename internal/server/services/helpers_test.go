package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultx/internal/cryptox"
	"github.com/dmitrijs2005/vaultx/internal/dbx"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/server/auth"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/activities"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/memory"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/secrets"
	"github.com/dmitrijs2005/vaultx/internal/server/repositories/users"
	"github.com/dmitrijs2005/vaultx/internal/server/twofactor"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const (
	testMasterKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testJWTSecret = "0123456789abcdef0123456789abcdef"
)

var testEpoch = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	store    *memory.Store
	clock    *testClock
	box      *cryptox.Box
	tokens   *auth.TokenIssuer
	engine   *twofactor.Engine
	activity *ActivityService
	auth     *AuthService
	users    *UserService
	tf       *TwoFactorService
	vault    *VaultService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	clock := &testClock{t: testEpoch}
	logger := logging.Discard()

	box, err := cryptox.NewBox(testMasterKey)
	require.NoError(t, err)

	tokens, err := auth.NewTokenIssuer([]byte(testJWTSecret), time.Hour, auth.WithClock(clock.Now))
	require.NoError(t, err)

	passwords := auth.NewPasswordHasher(auth.MinBcryptCost)
	engine := twofactor.NewEngine("VaultX", passwords, twofactor.WithClock(clock.Now))
	activity := NewActivityService(store, store, logger)
	t.Cleanup(activity.Wait)

	return &harness{
		store:    store,
		clock:    clock,
		box:      box,
		tokens:   tokens,
		engine:   engine,
		activity: activity,
		auth:     NewAuthService(store, store, passwords, tokens, engine, activity, logger),
		users:    NewUserService(store, store, passwords, activity, logger),
		tf:       NewTwoFactorService(store, store, engine, activity, logger),
		vault:    NewVaultService(store, store, box, activity, logger),
	}
}

func (h *harness) signup(t *testing.T, name, email, password string) string {
	t.Helper()
	u, err := h.users.Signup(context.Background(), name, email, password)
	require.NoError(t, err)
	return u.ID
}

func (h *harness) code(t *testing.T, secret string) string {
	t.Helper()
	c, err := totp.GenerateCodeCustom(secret, h.clock.Now(), totp.ValidateOpts{
		Period:    twofactor.Period,
		Digits:    twofactor.Digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return c
}

// actions returns the recorded activity for userID, oldest first. Records
// written concurrently may share a timestamp, so compare unordered unless the
// test waits between steps.
func (h *harness) actions(t *testing.T, userID string) []string {
	t.Helper()
	h.activity.Wait()
	list, err := h.activity.List(context.Background(), userID)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i].Action)
	}
	return out
}

var errStore = errors.New("connection reset by peer")

// brokenStore fails every repository call with errStore.
type brokenStore struct{}

func (brokenStore) DB() dbx.DBTX { return nil }
func (brokenStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}
func (brokenStore) RunMigrations(context.Context, *sql.DB) error { return nil }
func (brokenStore) Users(dbx.DBTX) users.Repository              { return brokenUsers{} }
func (brokenStore) Secrets(dbx.DBTX) secrets.Repository          { return brokenSecrets{} }
func (brokenStore) Activities(dbx.DBTX) activities.Repository    { return brokenActivities{} }

type brokenUsers struct{ users.Repository }

func (brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, errStore }
func (brokenUsers) GetByEmail(context.Context, string) (*models.User, error)   { return nil, errStore }
func (brokenUsers) GetByID(context.Context, string) (*models.User, error)      { return nil, errStore }
func (brokenUsers) GetByIDForUpdate(context.Context, string) (*models.User, error) {
	return nil, errStore
}

type brokenSecrets struct{ secrets.Repository }

func (brokenSecrets) Create(context.Context, *models.Secret) (*models.Secret, error) {
	return nil, errStore
}
func (brokenSecrets) List(context.Context, string, models.SecretType) ([]*models.Secret, error) {
	return nil, errStore
}
func (brokenSecrets) GetByID(context.Context, string, string) (*models.Secret, error) {
	return nil, errStore
}

type brokenActivities struct{}

func (brokenActivities) Create(context.Context, *models.Activity) error { return errStore }
func (brokenActivities) ListRecent(context.Context, string, int) ([]*models.Activity, error) {
	return nil, errStore
}

// noActivity discards records.
type noActivity struct{}

func (noActivity) Record(context.Context, string, string) {}
