package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/dmitrijs2005/vaultx/internal/cryptox"
	"github.com/dmitrijs2005/vaultx/internal/logging"
	"github.com/dmitrijs2005/vaultx/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestVault_EndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.users.Signup(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	res, err := h.auth.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, StepAuthenticated, res.Step)
	require.NotEmpty(t, res.Token)

	userID, err := h.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)

	created, err := h.vault.Create(ctx, userID, NewSecret{Title: "api-key", Data: "sk-123"})
	require.NoError(t, err)
	assert.Equal(t, models.SecretTypeSecret, created.Type)
	assert.NotContains(t, created.EncryptedData, "sk-123")

	got, err := h.vault.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "sk-123", got.Data)
	firstIV := got.IV

	_, err = h.vault.Update(ctx, userID, created.ID, SecretPatch{Data: ptr("sk-456")})
	require.NoError(t, err)

	got, err = h.vault.Get(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "sk-456", got.Data)
	assert.NotEqual(t, firstIV, got.IV)
	assert.Equal(t, "api-key", got.Title)

	require.NoError(t, h.vault.Delete(ctx, userID, created.ID))

	_, err = h.vault.Get(ctx, userID, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ElementsMatch(t, []string{
		"Signed up",
		"Logged in",
		`Created new secret: "api-key"`,
		`Viewed secret: "api-key"`,
		`Updated secret: "api-key"`,
		`Viewed secret: "api-key"`,
		`Deleted secret: "api-key"`,
	}, h.actions(t, userID))
}

func TestVault_Isolation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.signup(t, "alice", "a@x.com", "pw1")
	bob := h.signup(t, "bob", "b@x.com", "pw2")

	sec, err := h.vault.Create(ctx, alice, NewSecret{Title: "mine", Data: "d"})
	require.NoError(t, err)

	missing := "2b1d7a4e-52f3-4d0a-9a53-0d5f1e1c9a11"

	for _, id := range []string{sec.ID, missing} {
		_, err = h.vault.Get(ctx, bob, id)
		assert.ErrorIs(t, err, common.ErrorNotFound)

		_, err = h.vault.Update(ctx, bob, id, SecretPatch{Title: ptr("stolen")})
		assert.ErrorIs(t, err, common.ErrorNotFound)

		assert.ErrorIs(t, h.vault.Delete(ctx, bob, id), common.ErrorNotFound)
	}

	list, err := h.vault.List(ctx, bob, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := h.vault.Get(ctx, alice, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title)
}

func TestVault_CreateValidation(t *testing.T) {
	h := newHarness(t)
	id := h.signup(t, "alice", "a@x.com", "pw1")

	tests := []struct {
		name string
		in   NewSecret
	}{
		{name: "no title", in: NewSecret{Title: " ", Data: "d"}},
		{name: "no data", in: NewSecret{Title: "t"}},
		{name: "unknown type", in: NewSecret{Title: "t", Data: "d", Type: "note"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.vault.Create(context.Background(), id, tt.in)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestVault_ListFilterAndOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.signup(t, "alice", "a@x.com", "pw1")

	for _, in := range []NewSecret{
		{Title: "one", Data: "1", Type: "password"},
		{Title: "two", Data: "2", Type: "key"},
		{Title: "three", Data: "3", Type: "password"},
	} {
		_, err := h.vault.Create(ctx, id, in)
		require.NoError(t, err)
	}

	all, err := h.vault.List(ctx, id, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Title)
	assert.Equal(t, "one", all[2].Title)

	pw, err := h.vault.List(ctx, id, "password")
	require.NoError(t, err)
	require.Len(t, pw, 2)
	for _, s := range pw {
		assert.Equal(t, models.SecretTypePassword, s.Type)
	}

	_, err = h.vault.List(ctx, id, "note")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestVault_UpdatePatchSemantics(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.signup(t, "alice", "a@x.com", "pw1")

	sec, err := h.vault.Create(ctx, id, NewSecret{Title: "t", Data: "d", Type: "key", Description: "desc"})
	require.NoError(t, err)

	t.Run("absent fields are kept", func(t *testing.T) {
		up, err := h.vault.Update(ctx, id, sec.ID, SecretPatch{Title: ptr("t2")})
		require.NoError(t, err)
		assert.Equal(t, "t2", up.Title)
		assert.Equal(t, models.SecretTypeKey, up.Type)
		assert.Equal(t, "desc", up.Description)
		assert.Equal(t, sec.IV, up.IV)
		assert.Equal(t, sec.EncryptedData, up.EncryptedData)
	})

	t.Run("empty description clears it", func(t *testing.T) {
		up, err := h.vault.Update(ctx, id, sec.ID, SecretPatch{Description: ptr("")})
		require.NoError(t, err)
		assert.Empty(t, up.Description)
	})

	t.Run("empty title data or type rejected", func(t *testing.T) {
		for _, p := range []SecretPatch{{Title: ptr("")}, {Data: ptr("")}, {Type: ptr("")}, {Type: ptr("note")}} {
			_, err := h.vault.Update(ctx, id, sec.ID, p)
			assert.ErrorIs(t, err, common.ErrorValidation)
		}
	})

	t.Run("type change", func(t *testing.T) {
		up, err := h.vault.Update(ctx, id, sec.ID, SecretPatch{Type: ptr("password")})
		require.NoError(t, err)
		assert.Equal(t, models.SecretTypePassword, up.Type)
	})
}

func TestVault_MalformedIDIsNotFound(t *testing.T) {
	h := newHarness(t)
	id := h.signup(t, "alice", "a@x.com", "pw1")

	_, err := h.vault.Get(context.Background(), id, "../etc")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = h.vault.Update(context.Background(), id, "", SecretPatch{})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, h.vault.Delete(context.Background(), id, "1"), common.ErrorNotFound)
}

func TestVault_DecryptFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.signup(t, "alice", "a@x.com", "pw1")

	sec, err := h.vault.Create(ctx, id, NewSecret{Title: "t", Data: "d"})
	require.NoError(t, err)

	sec.IV = strings.Repeat("00", cryptox.IVSize)
	require.NoError(t, h.store.Secrets(h.store.DB()).Update(ctx, sec))

	_, err = h.vault.Get(ctx, id, sec.ID)
	assert.ErrorIs(t, err, common.ErrDecryption)
}

type failingCipher struct{}

func (failingCipher) Encrypt(string) (string, string, error) { return "", "", errors.New("no entropy") }
func (failingCipher) Decrypt(string, string) (string, error) { return "", errors.New("bad") }

func TestVault_InternalErrors(t *testing.T) {
	h := newHarness(t)
	id := h.signup(t, "alice", "a@x.com", "pw1")

	v := NewVaultService(h.store, h.store, failingCipher{}, noActivity{}, logging.Discard())
	_, err := v.Create(context.Background(), id, NewSecret{Title: "t", Data: "d"})
	assert.ErrorIs(t, err, common.ErrorInternal)

	broken := NewVaultService(brokenStore{}, brokenStore{}, h.box, noActivity{}, logging.Discard())
	_, err = broken.List(context.Background(), id, "")
	assert.ErrorIs(t, err, common.ErrorInternal)
	_, err = broken.Create(context.Background(), id, NewSecret{Title: "t", Data: "d"})
	assert.ErrorIs(t, err, common.ErrorInternal)
}
