// Package storage implements the Store port: postgres for real
// deployments, in-memory for tests and local development.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/auditlens/auditlens-go/internal/domain"
)

// UsageCap is the ceiling on the finalized-report counter.
const UsageCap = 99

// Memory is a thread-safe in-memory Store.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]*domain.ClientProfile
	reviews  map[string]*domain.ReviewResult
	usage    int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles: make(map[string]*domain.ClientProfile),
		reviews:  make(map[string]*domain.ReviewResult),
	}
}

// SaveProfile stores the profile and discards any held review result,
// starting a fresh cycle for the client.
func (m *Memory) SaveProfile(_ context.Context, profile *domain.ClientProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[profile.ClientID] = profile
	delete(m.reviews, profile.ClientID)
	return nil
}

func (m *Memory) GetProfile(_ context.Context, clientID string) (*domain.ClientProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.profiles[clientID], nil
}

func (m *Memory) SaveReview(_ context.Context, result *domain.ReviewResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reviews[result.ClientID] = result
	return nil
}

func (m *Memory) GetLatestReview(_ context.Context, clientID string) (*domain.ReviewResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reviews[clientID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "review", ID: clientID}
	}
	return r, nil
}

func (m *Memory) IncrementUsage(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.usage < UsageCap {
		m.usage++
	}
	return m.usage, nil
}

func (m *Memory) GetUsage(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.usage, nil
}

func (m *Memory) PurgeStaleReviews(_ context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	purged := 0
	for clientID, r := range m.reviews {
		if r.CreatedAt.Before(cutoff) {
			delete(m.reviews, clientID)
			purged++
		}
	}
	return purged, nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }
