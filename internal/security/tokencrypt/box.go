// Package tokencrypt cifra refresh tokens en reposo.
//
// El cifrado es AES-256-GCM con nonce DERIVADO del plaintext
// (HMAC-SHA-256 de la clave, estilo SIV): el mismo plaintext produce
// siempre el mismo ciphertext, lo que permite buscar un token por
// igualdad de ciphertext sin guardar nunca el plaintext. El costo es
// que dos registros con el mismo secreto son distinguibles; los
// secretos primarios llevan 32 bytes de entropía, así que no se repiten.
package tokencrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	nonceSizeGCM      = 12  // AES-GCM nonce (96 bits)
	requiredKeyLength = 32  // 32 bytes => AES-256
	sep               = "|" // nonce|ciphertext (ambos en base64)
)

// ErrDecrypt se retorna ante ciphertext corrupto o clave incorrecta.
var ErrDecrypt = errors.New("tokencrypt: decrypt failed")

// Box cifra y descifra con una clave fija inyectada por configuración.
// Es inmutable y seguro para uso concurrente.
type Box struct {
	key []byte
}

// New crea un Box a partir de la clave configurada.
// Acepta base64 (std o raw), hex (64 chars) o 32 bytes crudos.
func New(key string) (*Box, error) {
	kb, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	return &Box{key: kb}, nil
}

func decodeKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if len(key) == 64 {
		if h, err := hex.DecodeString(key); err == nil {
			return h, nil
		}
	}
	if len(key) == requiredKeyLength {
		return []byte(key), nil
	}
	return nil, fmt.Errorf("tokencrypt: clave inválida, se requieren %d bytes (base64, hex o raw)", requiredKeyLength)
}

// deriveNonce deriva un nonce determinístico del plaintext.
// Mismo plaintext + misma clave => mismo nonce => mismo ciphertext.
func (b *Box) deriveNonce(plain []byte) []byte {
	mac := hmac.New(sha256.New, b.key)
	mac.Write([]byte("nonce"))
	mac.Write(plain)
	return mac.Sum(nil)[:nonceSizeGCM]
}

// Encrypt cifra plainText y devuelve base64(nonce)|base64(ciphertext).
func (b *Box) Encrypt(plainText string) (string, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonce := b.deriveNonce([]byte(plainText))
	ct := aesgcm.Seal(nil, nonce, []byte(plainText), nil)

	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt recibe base64(nonce)|base64(ciphertext) y devuelve el texto plano.
func (b *Box) Decrypt(cipherText string) (string, error) {
	parts := strings.Split(cipherText, sep)
	if len(parts) != 2 {
		return "", ErrDecrypt
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSizeGCM {
		return "", ErrDecrypt
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrDecrypt
	}

	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	pt, err := aesgcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(pt), nil
}
