package tokens

import (
	"encoding/base64"
	"testing"
)

func TestGenerateOpaqueToken_LengthAndUniqueness(t *testing.T) {
	t.Parallel()
	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		tk, err := GenerateOpaqueToken(32)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		b, err := base64.RawURLEncoding.DecodeString(tk)
		if err != nil {
			t.Fatalf("token is not base64url: %v", err)
		}
		if len(b) != 32 {
			t.Fatalf("expected 32 bytes of entropy, got %d", len(b))
		}
		if _, dup := seen[tk]; dup {
			t.Fatalf("duplicate token generated")
		}
		seen[tk] = struct{}{}
	}
}

func TestGenerateOpaqueToken_RejectsLowEntropy(t *testing.T) {
	t.Parallel()
	if _, err := GenerateOpaqueToken(16); err == nil {
		t.Fatalf("expected error for <32 bytes")
	}
}
