// Package client implements HTTP clients for upstream collaborators.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/infra/resilience"
)

var tracer = otel.Tracer("client")

// ExtractorClient fetches structured statement summaries from the document
// extraction service. Only numeric summaries and upload metadata cross
// this boundary; original files stay upstream.
type ExtractorClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
}

// NewExtractorClient creates an ExtractorClient.
func NewExtractorClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *ExtractorClient {
	return &ExtractorClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
	}
}

// ExtractSummary fetches one document's summary with retry, circuit
// breaker, bulkhead, and tracing.
func (c *ExtractorClient) ExtractSummary(ctx context.Context, clientID string, kind domain.DocumentKind) (*domain.StatementSummary, error) {
	ctx, span := tracer.Start(ctx, "ExtractorClient.ExtractSummary")
	defer span.End()
	span.SetAttributes(
		attribute.String("client.id", clientID),
		attribute.String("document.kind", string(kind)),
	)

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var summary domain.StatementSummary

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/v1/clients/%s/summaries/%s", c.baseURL, clientID, kind)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: "summary", ID: string(kind)}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("extractor API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&summary)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &summary, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "extractor", Err: err}
	}

	return result.(*domain.StatementSummary), nil
}
