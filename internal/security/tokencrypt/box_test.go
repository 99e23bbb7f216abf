package tokencrypt

import (
	"encoding/base64"
	"strings"
	"testing"
)

func testBox(t *testing.T) *Box {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	b, err := New(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	return b
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	box := testBox(t)

	cases := []string{
		"x",
		"hola mundo ✓ — secreto",
		"日本語トークン",
		strings.Repeat("a", 1),
		strings.Repeat("b", 4096),
	}
	for _, msg := range cases {
		ct, err := box.Encrypt(msg)
		if err != nil {
			t.Fatalf("Encrypt err: %v", err)
		}
		pt, err := box.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt err: %v", err)
		}
		if pt != msg {
			t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
		}
	}
}

func TestEncrypt_Deterministic(t *testing.T) {
	t.Parallel()
	box := testBox(t)

	ct1, err := box.Encrypt("lookup-key")
	if err != nil {
		t.Fatal(err)
	}
	ct2, err := box.Encrypt("lookup-key")
	if err != nil {
		t.Fatal(err)
	}
	// Igualdad de ciphertext es el contrato de lookup del vault.
	if ct1 != ct2 {
		t.Fatalf("same plaintext must produce same ciphertext: %q vs %q", ct1, ct2)
	}

	ct3, err := box.Encrypt("lookup-kez")
	if err != nil {
		t.Fatal(err)
	}
	if ct3 == ct1 {
		t.Fatalf("different plaintexts must not collide")
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	t.Parallel()
	box := testBox(t)

	ct, err := box.Encrypt("top secret")
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(ct, "|")
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	bs[0] ^= 0x01 // flip
	corrupted := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	if _, err := box.Decrypt(corrupted); err == nil {
		t.Fatalf("expected auth error, got nil")
	}
}

func TestDecrypt_BadFormat(t *testing.T) {
	t.Parallel()
	box := testBox(t)
	for _, ct := range []string{"", "no-sep", "a|b|c", "!!!|???"} {
		if _, err := box.Decrypt(ct); err == nil {
			t.Fatalf("expected error for %q", ct)
		}
	}
}

func TestNew_KeyFormats(t *testing.T) {
	t.Parallel()
	raw := strings.Repeat("k", 32)

	if _, err := New(raw); err != nil {
		t.Fatalf("raw 32-byte key rejected: %v", err)
	}
	if _, err := New(base64.StdEncoding.EncodeToString([]byte(raw))); err != nil {
		t.Fatalf("base64 key rejected: %v", err)
	}
	if _, err := New("too-short"); err == nil {
		t.Fatalf("expected error for short key")
	}
}
