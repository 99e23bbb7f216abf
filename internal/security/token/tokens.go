// Package tokens genera material opaco para refresh tokens.
package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// MinEntropyBytes es la entropía mínima aceptada para un token opaco.
const MinEntropyBytes = 32

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
// nBytes < MinEntropyBytes es un error: un refresh token corto es adivinable.
func GenerateOpaqueToken(nBytes int) (string, error) {
	if nBytes < MinEntropyBytes {
		return "", fmt.Errorf("opaque token requires at least %d bytes, got %d", MinEntropyBytes, nBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
