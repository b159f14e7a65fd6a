package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

// OrderClient implements repository.OrderSource over HTTP. Each endpoint
// has its own Doer so a failing endpoint cannot trip the other's breaker.
type OrderClient struct {
	primaryURL   string
	secondaryURL string
	primary      httpclient.Doer
	secondary    httpclient.Doer
	logger       *slog.Logger
}

var _ repository.OrderSource = (*OrderClient)(nil)

// NewOrderClient creates a client for the two order listing endpoints.
// The Doers must not retry: every fetch is a single attempt.
func NewOrderClient(primaryURL string, primary httpclient.Doer, secondaryURL string, secondary httpclient.Doer, logger *slog.Logger) *OrderClient {
	return &OrderClient{
		primaryURL:   strings.TrimRight(primaryURL, "/"),
		secondaryURL: strings.TrimRight(secondaryURL, "/"),
		primary:      primary,
		secondary:    secondary,
		logger:       logger,
	}
}

type ordersEnvelope struct {
	Data []domain.Order `json:"data"`
}

// FetchPrimary lists orders filtered by user_id.
func (c *OrderClient) FetchPrimary(ctx context.Context, userID string) (repository.OrderFetch, error) {
	endpoint := c.primaryURL + "/api/v1/orders?" + url.Values{"user_id": {userID}}.Encode()
	return c.fetch(ctx, c.primary, "primary", endpoint)
}

// FetchSecondary lists orders filtered by customer_id.
func (c *OrderClient) FetchSecondary(ctx context.Context, userID string) (repository.OrderFetch, error) {
	endpoint := c.secondaryURL + "/api/v1/orders?" + url.Values{"customer_id": {userID}}.Encode()
	return c.fetch(ctx, c.secondary, "secondary", endpoint)
}

// fetch maps a non-2xx answer to OK=false and keeps errors for transport
// failures, open breakers and undecodable bodies.
func (c *OrderClient) fetch(ctx context.Context, doer httpclient.Doer, source, endpoint string) (repository.OrderFetch, error) {
	resp, err := doer.Get(ctx, endpoint)
	if err != nil {
		var serverErr *httpclient.ServerError
		if errors.As(err, &serverErr) {
			c.logger.WarnContext(ctx, "order endpoint returned server error",
				slog.String("source", source),
				slog.Int("status", serverErr.StatusCode),
			)
			return repository.OrderFetch{OK: false}, nil
		}
		return repository.OrderFetch{}, fmt.Errorf("fetch %s orders: %w", source, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.logger.WarnContext(ctx, "order endpoint returned non-success status",
			slog.String("source", source),
			slog.Int("status", resp.StatusCode),
		)
		return repository.OrderFetch{OK: false}, nil
	}

	var envelope ordersEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&envelope); err != nil {
		return repository.OrderFetch{}, fmt.Errorf("decode %s orders: %w", source, err)
	}
	if envelope.Data == nil {
		envelope.Data = []domain.Order{}
	}

	return repository.OrderFetch{OK: true, Orders: envelope.Data}, nil
}

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
