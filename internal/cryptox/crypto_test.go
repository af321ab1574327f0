package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestBox(t *testing.T) *Box {
	t.Helper()
	b, err := NewBox(testKeyHex)
	require.NoError(t, err)
	return b
}

func TestNewBox_KeyValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "blank", key: "   "},
		{name: "not hex", key: strings.Repeat("zz", 32)},
		{name: "too short", key: strings.Repeat("ab", 16)},
		{name: "too long", key: strings.Repeat("ab", 33)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBox(tt.key)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, common.ErrConfiguration)
		})
	}
}

func TestNewBox_ErrorDoesNotEchoKey(t *testing.T) {
	key := strings.Repeat("ab", 31)
	_, err := NewBox(key)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), key)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	b := newTestBox(t)

	for _, p := range []string{"", "sk-123", "pässwörd ✓", strings.Repeat("x", 4096)} {
		iv, ct, err := b.Encrypt(p)
		require.NoError(t, err)

		rawIV, err := hex.DecodeString(iv)
		require.NoError(t, err)
		assert.Len(t, rawIV, IVSize)

		got, err := b.Decrypt(ct, iv)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestEncrypt_FreshIVEachCall(t *testing.T) {
	b := newTestBox(t)

	iv1, ct1, err := b.Encrypt("same plaintext")
	require.NoError(t, err)
	iv2, ct2, err := b.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)
}

func TestEncrypt_RandomSourceFailure(t *testing.T) {
	orig := randReader
	randReader = bytes.NewReader(nil)
	t.Cleanup(func() { randReader = orig })

	_, _, err := newTestBox(t).Encrypt("x")
	assert.Error(t, err)
}

func flipBit(t *testing.T, s string, i int) string {
	t.Helper()
	raw, err := hex.DecodeString(s)
	require.NoError(t, err)
	raw[i] ^= 0x01
	return hex.EncodeToString(raw)
}

func TestDecrypt_DetectsTampering(t *testing.T) {
	b := newTestBox(t)
	iv, ct, err := b.Encrypt("api-key-value")
	require.NoError(t, err)

	ctLen := len(ct) / 2
	for i := 0; i < ctLen; i++ {
		_, err := b.Decrypt(flipBit(t, ct, i), iv)
		require.ErrorIs(t, err, common.ErrDecryption, "ciphertext byte %d", i)
	}

	for i := 0; i < IVSize; i++ {
		_, err := b.Decrypt(ct, flipBit(t, iv, i))
		require.ErrorIs(t, err, common.ErrDecryption, "iv byte %d", i)
	}
}

func TestDecrypt_MalformedInput(t *testing.T) {
	b := newTestBox(t)
	iv, ct, err := b.Encrypt("payload")
	require.NoError(t, err)

	tests := []struct {
		name string
		ct   string
		iv   string
	}{
		{name: "iv not hex", ct: ct, iv: "not-hex"},
		{name: "iv wrong length", ct: ct, iv: iv[:24]},
		{name: "ciphertext not hex", ct: "xyz", iv: iv},
		{name: "ciphertext truncated", ct: ct[:8], iv: iv},
		{name: "empty ciphertext", ct: "", iv: iv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Decrypt(tt.ct, tt.iv)
			assert.True(t, errors.Is(err, common.ErrDecryption), "got %v", err)
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	iv, ct, err := newTestBox(t).Encrypt("payload")
	require.NoError(t, err)

	other, err := NewBox(strings.Repeat("11", KeySize))
	require.NoError(t, err)

	_, err = other.Decrypt(ct, iv)
	assert.ErrorIs(t, err, common.ErrDecryption)
}
