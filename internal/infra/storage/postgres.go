package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/auditlens/auditlens-go/internal/domain"
)

// Postgres is a pgx-backed Store. Profiles and review results are stored
// as JSONB documents keyed by client; the usage counter is a single row.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pooled connection and ensures the schema exists.
func Connect(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Close releases the pool.
func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS client_profiles (
			client_id  TEXT PRIMARY KEY,
			profile    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS review_results (
			client_id  TEXT PRIMARY KEY,
			result     JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS usage_counter (
			id    INT PRIMARY KEY CHECK (id = 1),
			count INT NOT NULL DEFAULT 0
		)`,
		`INSERT INTO usage_counter (id, count) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveProfile upserts the profile and drops any held review result for the
// client in one transaction, starting a fresh review cycle.
func (p *Postgres) SaveProfile(ctx context.Context, profile *domain.ClientProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO client_profiles (client_id, profile)
		VALUES ($1, $2)
		ON CONFLICT (client_id) DO UPDATE SET profile = EXCLUDED.profile, created_at = now()
	`, profile.ClientID, payload)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM review_results WHERE client_id = $1`, profile.ClientID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) GetProfile(ctx context.Context, clientID string) (*domain.ClientProfile, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT profile FROM client_profiles WHERE client_id = $1`, clientID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var profile domain.ClientProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *Postgres) SaveReview(ctx context.Context, result *domain.ReviewResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO review_results (client_id, result, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id) DO UPDATE SET result = EXCLUDED.result, created_at = EXCLUDED.created_at
	`, result.ClientID, payload, result.CreatedAt)
	return err
}

func (p *Postgres) GetLatestReview(ctx context.Context, clientID string) (*domain.ReviewResult, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx,
		`SELECT result FROM review_results WHERE client_id = $1`, clientID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "review", ID: clientID}
	}
	if err != nil {
		return nil, err
	}

	var result domain.ReviewResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (p *Postgres) IncrementUsage(ctx context.Context) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `
		UPDATE usage_counter SET count = LEAST(count + 1, $1) WHERE id = 1
		RETURNING count
	`, UsageCap).Scan(&count)
	return count, err
}

func (p *Postgres) GetUsage(ctx context.Context) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `SELECT count FROM usage_counter WHERE id = 1`).Scan(&count)
	return count, err
}

func (p *Postgres) PurgeStaleReviews(ctx context.Context, olderThan time.Duration) (int, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM review_results WHERE created_at < $1`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
