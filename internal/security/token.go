package security

import (
	"crypto/rand"
	"encoding/hex"
)

// refreshTokenBytes gives 512 bits of entropy, hex-encoded to 128 chars.
const refreshTokenBytes = 64

// NewRefreshTokenValue generates an opaque refresh-token value. The value is
// pure CSPRNG output and never derived from user-controllable input.
func NewRefreshTokenValue() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
