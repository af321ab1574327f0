// Package cryptox implements the at-rest encryption used for vault secrets.
//
// A Box is keyed once at startup with the process-wide 256-bit master key and
// then encrypts each payload with AES-256-GCM under a fresh random 16-byte IV.
// Both the IV and the ciphertext (with the GCM tag appended) are hex encoded so
// they can be stored as text columns next to the secret's metadata.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/vaultx/internal/common"
)

const (
	// KeySize is the master key length in bytes (AES-256).
	KeySize = 32
	// IVSize is the per-message IV length in bytes.
	IVSize = 16
)

// randReader is a test seam for the IV source.
var randReader io.Reader = rand.Reader

// Box encrypts and decrypts secret payloads under a single master key.
// It is safe for concurrent use.
type Box struct {
	aead cipher.AEAD
}

// NewBox builds a Box from the hex-encoded master key. The key must decode to
// exactly KeySize bytes; anything else is reported as a configuration error so
// the process can refuse to start.
func NewBox(masterKeyHex string) (*Box, error) {
	masterKeyHex = strings.TrimSpace(masterKeyHex)
	if masterKeyHex == "" {
		return nil, fmt.Errorf("%w: master key is not set", common.ErrConfiguration)
	}

	key, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: master key must be hex encoded", common.ErrConfiguration)
	}
	defer common.WipeByteArray(key)

	return NewBoxFromKey(key)
}

// NewBoxFromKey builds a Box from raw key bytes. The caller keeps ownership of key.
func NewBoxFromKey(key []byte) (*Box, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", common.ErrConfiguration, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}

	return &Box{aead: aead}, nil
}

// Encrypt seals plaintext under a newly generated IV and returns the IV and
// ciphertext, both hex encoded. An IV is never reused across calls.
func (b *Box) Encrypt(plaintext string) (iv string, ciphertext string, err error) {
	nonce := make([]byte, IVSize)
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return "", "", fmt.Errorf("generate iv: %w", err)
	}

	sealed := b.aead.Seal(nil, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(nonce), hex.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Malformed input, a wrong IV
// length and any tampering with either value yield common.ErrDecryption.
func (b *Box) Decrypt(ciphertext, iv string) (string, error) {
	nonce, err := hex.DecodeString(iv)
	if err != nil || len(nonce) != IVSize {
		return "", common.ErrDecryption
	}

	sealed, err := hex.DecodeString(ciphertext)
	if err != nil || len(sealed) < b.aead.Overhead() {
		return "", common.ErrDecryption
	}

	plaintext, err := b.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", common.ErrDecryption
	}

	return string(plaintext), nil
}
