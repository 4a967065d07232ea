package cache_test

import (
	"testing"
	"time"

	"github.com/auditlens/auditlens-go/internal/infra/cache"
)

func TestSetGet(t *testing.T) {
	c := cache.New[string](time.Minute)

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "v" {
		t.Errorf("expected 'v', got '%s'", got)
	}
}

func TestGet_Miss(t *testing.T) {
	c := cache.New[int](time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestExpiry(t *testing.T) {
	c := cache.New[string](10 * time.Millisecond)

	c.Set("k", "v")
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestDelete(t *testing.T) {
	c := cache.New[string](time.Minute)

	c.Set("k", "v")
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to be deleted")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}
