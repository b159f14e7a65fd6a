package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// CatalogClient looks up product name and price from the product service.
type CatalogClient struct {
	baseURL string
	http    httpclient.Doer
}

// NewCatalogClient creates a client for GET {baseURL}/api/v1/products/{id}.
func NewCatalogClient(baseURL string, doer httpclient.Doer) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
	}
}

type productEnvelope struct {
	Data *domain.ProductQuote `json:"data"`
}

// LookupProduct returns the current quote for productID. Non-2xx answers are
// mapped to AppErrors by httpclient.ParseResponseError.
func (c *CatalogClient) LookupProduct(ctx context.Context, productID int64) (domain.ProductQuote, error) {
	endpoint := c.baseURL + "/api/v1/products/" + strconv.FormatInt(productID, 10)

	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return domain.ProductQuote{}, fmt.Errorf("lookup product %d: %w", productID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.ProductQuote{}, httpclient.ParseResponseError(resp, "catalog")
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope productEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.ProductQuote{}, fmt.Errorf("decode product %d: %w", productID, err)
	}
	if envelope.Data == nil {
		return domain.ProductQuote{}, fmt.Errorf("decode product %d: empty data", productID)
	}

	quote := *envelope.Data
	if quote.ProductID == 0 {
		quote.ProductID = productID
	}
	if quote.UnitPrice.IsNegative() {
		return domain.ProductQuote{}, fmt.Errorf("product %d: negative price %s", productID, quote.UnitPrice)
	}
	return quote, nil
}
