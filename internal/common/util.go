package common

import (
	"crypto/rand"
)

// GenerateRandByteArray returns size bytes from crypto/rand.
// It panics if the system random source fails, which crypto/rand
// documents as unrecoverable.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites b with zeros. Used for passwords read from the
// terminal and decoded key material. Nil-safe.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
