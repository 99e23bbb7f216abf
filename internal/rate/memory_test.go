package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	t.Parallel()
	l := NewMemoryLimiter(3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "alice@mail.com")
		if err != nil {
			t.Fatalf("Allow err: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	res, err := l.Allow(ctx, "alice@mail.com")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatalf("4th hit should be blocked")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("blocked result must carry RetryAfter")
	}

	// Otra key no comparte ventana.
	other, err := l.Allow(ctx, "bob@mail.com")
	if err != nil {
		t.Fatal(err)
	}
	if !other.Allowed {
		t.Fatalf("different key must have its own window")
	}
}
