// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the rule core
// from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/refdata"
)

// ReferenceTable is the injected statutory threshold table. Implementations
// must fail closed on misses (ErrReferenceDataMissing), never default.
type ReferenceTable interface {
	Lookup(category, key string) (refdata.Value, error)
	Amount(category, key string) (decimal.Decimal, error)
	Text(category, key string) (string, error)
}

// SummaryExtractor retrieves the structured numeric summary of one
// uploaded document from the upstream extraction service. The original
// file never passes through this service.
type SummaryExtractor interface {
	ExtractSummary(ctx context.Context, clientID string, kind domain.DocumentKind) (*domain.StatementSummary, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// Store defines all persistence operations owned by the shell: client
// profiles, finished review results, and the usage counter. The rule core
// never touches it.
type Store interface {
	// Profiles. Saving a profile starts a new review cycle: any review
	// result held for the client is discarded.
	SaveProfile(ctx context.Context, profile *domain.ClientProfile) error
	GetProfile(ctx context.Context, clientID string) (*domain.ClientProfile, error)

	// Review results.
	SaveReview(ctx context.Context, result *domain.ReviewResult) error
	GetLatestReview(ctx context.Context, clientID string) (*domain.ReviewResult, error)

	// UsageCount is incremented by exactly one per finalized report,
	// capped at 99. It persists across sessions.
	IncrementUsage(ctx context.Context) (int, error)
	GetUsage(ctx context.Context) (int, error)

	// PurgeStaleReviews removes review results older than the retention
	// window and reports how many were dropped. Housekeeping policy, not
	// core behavior.
	PurgeStaleReviews(ctx context.Context, olderThan time.Duration) (int, error)

	Ping(ctx context.Context) error
}
