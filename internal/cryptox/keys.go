package cryptox

import (
	"encoding/hex"

	"github.com/dmitrijs2005/vaultx/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of the salt generated for passphrase-derived keys.
const SaltSize = 16

// GenerateMasterKey returns a new random master key, hex encoded, suitable for
// the server's MASTER_KEY setting.
func GenerateMasterKey() string {
	key := common.GenerateRandByteArray(KeySize)
	defer common.WipeByteArray(key)
	return hex.EncodeToString(key)
}

// DeriveMasterKey stretches a passphrase into a KeySize key with Argon2id.
// The same password and salt always produce the same key.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}
