package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRateLimiterStartsFull(t *testing.T) {
	rl := NewRateLimiter(1.0, 10.0, nil)
	if tokens := rl.Tokens(); tokens < 9.9 {
		t.Errorf("expected ~10 tokens, got %.2f", tokens)
	}
}

func TestNewRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 10, nil)
	if rl != nil {
		t.Fatal("expected nil limiter for zero rate")
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("nil limiter Wait() = %v", err)
	}
}

func TestTryAcquireConsumesToken(t *testing.T) {
	rl := NewRateLimiter(0.001, 5.0, nil)

	for i := 0; i < 5; i++ {
		if !rl.tryAcquire() {
			t.Fatalf("tryAcquire() failed on attempt %d", i+1)
		}
	}
	if rl.tryAcquire() {
		t.Error("tryAcquire() should fail when bucket is empty")
	}
}

func TestTokenRefill(t *testing.T) {
	rl := NewRateLimiter(10.0, 10.0, nil)
	for i := 0; i < 10; i++ {
		rl.tryAcquire()
	}

	time.Sleep(200 * time.Millisecond)

	if tokens := rl.Tokens(); tokens < 1.5 || tokens > 3.0 {
		t.Errorf("expected ~2 tokens after 200ms at 10/sec, got %.2f", tokens)
	}
}

func TestTokenRefillCapsAtMax(t *testing.T) {
	rl := NewRateLimiter(100.0, 5.0, nil)
	time.Sleep(100 * time.Millisecond)

	if tokens := rl.Tokens(); tokens > 5.0 {
		t.Errorf("tokens exceeded max: got %.2f, max 5.0", tokens)
	}
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	rl := NewRateLimiter(20.0, 1.0, nil)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("second Wait() returned after %v, expected ~50ms", elapsed)
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	rl := NewRateLimiter(0.01, 1.0, nil)
	rl.tryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want deadline exceeded", err)
	}
}
