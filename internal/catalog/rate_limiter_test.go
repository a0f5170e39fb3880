package catalog

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterFirstTurnImmediate(t *testing.T) {
	r := NewRateLimiter(1)
	start := time.Now()
	if err := r.WaitTurn(context.Background()); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("first turn should not wait")
	}
}

func TestRateLimiterStopsOnCancelledContext(t *testing.T) {
	r := NewRateLimiter(1)
	ctx, cancel := context.WithCancel(context.Background())
	if err := r.WaitTurn(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	start := time.Now()
	if err := r.WaitTurn(ctx); err == nil {
		t.Fatal("second turn should fail once the context is cancelled")
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("cancelled wait should return promptly")
	}
}
