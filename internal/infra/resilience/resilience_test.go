package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/auditlens/auditlens-go/internal/infra/resilience"
)

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond}

	attempts := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}

	attempts := 0
	err := resilience.RetryWithBackoff(context.Background(), cfg, func() error {
		attempts++
		return errors.New("permanent")
	})

	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 { // initial attempt + 2 retries
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	cfg := resilience.Config{MaxRetries: 5, InitialBackoff: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.RetryWithBackoff(ctx, cfg, func() error {
		return errors.New("should not matter")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := resilience.NewBulkhead(1)

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := b.Acquire(ctx); err == nil {
		t.Fatal("expected second acquire to block until timeout")
	}

	b.Release()
	if err := b.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}
