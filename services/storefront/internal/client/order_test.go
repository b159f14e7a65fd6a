package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func singleAttemptClient() *httpclient.Client {
	cfg := httpclient.DefaultConfig().SingleAttempt()
	cfg.Timeout = 2 * time.Second
	return httpclient.New(cfg)
}

func breakerClient(name string) *httpclient.CircuitBreakerClient {
	return httpclient.NewCircuitBreakerClient(singleAttemptClient(), httpclient.DefaultCircuitBreakerConfig(name), testLogger())
}

const ordersBody = `{"data":[
	{"id":"1001","status":"completed","total":"59.80","created_at":"2025-02-01T10:00:00Z",
	 "shipping_address":{"first_name":"Ana","address_line1":"1 Rue X","city":"Paris","country":"FR"},
	 "billing_address":null,
	 "line_items":[{"product_id":42,"name":"Linen Shirt","quantity":2,"unit_price":"29.90"}]}
]}`

func TestOrderClient_FetchPrimary(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(ordersBody))
	}))
	defer server.Close()

	c := NewOrderClient(server.URL+"/", breakerClient("orders-primary-ok"), server.URL, breakerClient("orders-secondary-ok"), testLogger())

	fetch, err := c.FetchPrimary(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, "user_id=42", gotQuery)
	assert.True(t, fetch.OK)
	require.Len(t, fetch.Orders, 1)
	o := fetch.Orders[0]
	assert.Equal(t, "1001", o.ID)
	assert.Equal(t, "59.8", o.Total.String())
	require.NotNil(t, o.ShippingAddress)
	assert.Equal(t, "1 Rue X", o.ShippingAddress.AddressLine1)
	assert.Nil(t, o.BillingAddress)
	require.Len(t, o.LineItems, 1)
}

func TestOrderClient_FetchSecondaryUsesCustomerID(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := NewOrderClient(server.URL, singleAttemptClient(), server.URL, singleAttemptClient(), testLogger())

	fetch, err := c.FetchSecondary(context.Background(), "a b")

	require.NoError(t, err)
	assert.Equal(t, "customer_id=a+b", gotQuery)
	assert.True(t, fetch.OK)
	assert.NotNil(t, fetch.Orders)
	assert.Empty(t, fetch.Orders)
}

func TestOrderClient_NonSuccessStatusIsNotOK(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusBadGateway, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(status)
			}))
			defer server.Close()

			c := NewOrderClient(server.URL, breakerClient("orders-status-"+http.StatusText(status)), server.URL, singleAttemptClient(), testLogger())

			fetch, err := c.FetchPrimary(context.Background(), "42")

			require.NoError(t, err)
			assert.False(t, fetch.OK)
			assert.Empty(t, fetch.Orders)
			assert.Equal(t, int32(1), calls.Load(), "endpoint must be attempted exactly once")
		})
	}
}

func TestOrderClient_TransportErrorIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewOrderClient(url, singleAttemptClient(), url, singleAttemptClient(), testLogger())

	_, err := c.FetchPrimary(context.Background(), "42")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch primary orders")
}

func TestOrderClient_OpenBreakerIsReturned(t *testing.T) {
	doer := doerFunc(func(ctx context.Context, url string) (*http.Response, error) {
		return nil, httpclient.ErrCircuitOpen
	})
	c := NewOrderClient("http://orders", doer, "http://orders", doer, testLogger())

	_, err := c.FetchSecondary(context.Background(), "42")

	require.Error(t, err)
	assert.True(t, errors.Is(err, httpclient.ErrCircuitOpen))
}

func TestOrderClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": "nope"}`))
	}))
	defer server.Close()

	c := NewOrderClient(server.URL, singleAttemptClient(), server.URL, singleAttemptClient(), testLogger())

	_, err := c.FetchPrimary(context.Background(), "42")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode primary orders")
}

type doerFunc func(ctx context.Context, url string) (*http.Response, error)

func (f doerFunc) Get(ctx context.Context, url string) (*http.Response, error) {
	return f(ctx, url)
}
