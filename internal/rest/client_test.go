package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy-299/TomatoMall/internal/rest"
)

func TestDoSingleUnwrap(t *testing.T) {
	var gotToken, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("token")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"200","msg":"ok","data":{"status":"PENDING"}}`))
	}))
	defer server.Close()

	client := rest.NewClient(server.URL, rest.WithTokenProvider(rest.StaticToken("tok-123")))

	var out struct {
		Status string `json:"status"`
	}
	err := client.Do(context.Background(), "GET", "/api/orders/1/status", nil, nil, &out, rest.UnwrapData)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", out.Status)
	assert.Equal(t, "tok-123", gotToken)
	assert.NotEmpty(t, gotRequestID)
}

func TestDoDoubleUnwrap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":"200","msg":"ok","data":{"data":{"orderId":42,"totalAmount":19.9}}}`))
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	var out struct {
		OrderID     json.RawMessage `json:"orderId"`
		TotalAmount float64         `json:"totalAmount"`
	}
	err := client.Do(context.Background(), "POST", "/api/cart/checkout", nil, nil, &out, rest.UnwrapDataData)
	require.NoError(t, err)
	assert.Equal(t, "42", string(out.OrderID))
	assert.Equal(t, 19.9, out.TotalAmount)
}

func TestDoUnwrapNone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"healthy":true}`))
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	var out struct {
		Healthy bool `json:"healthy"`
	}
	err := client.Do(context.Background(), "GET", "/healthz", nil, nil, &out, rest.UnwrapNone)
	require.NoError(t, err)
	assert.True(t, out.Healthy)
}

func TestDoAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"400","msg":"insufficient stock","data":null}`))
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	err := client.Do(context.Background(), "POST", "/api/cart", nil, nil, nil, rest.UnwrapData)
	require.Error(t, err)

	var apiErr *rest.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "400", apiErr.Code)
	assert.Equal(t, "insufficient stock", apiErr.Msg)
}

func TestDoStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"401","msg":"invalid or expired token"}`))
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	err := client.Do(context.Background(), "GET", "/api/orders", nil, nil, nil, rest.UnwrapData)
	require.Error(t, err)

	var statusErr *rest.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "invalid or expired token", statusErr.Msg)
}

func TestDoMissingPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"null data", `{"code":"200","msg":"ok","data":null}`},
		{"null inner data", `{"code":"200","msg":"ok","data":{"data":null}}`},
		{"absent inner data", `{"code":"200","msg":"ok","data":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := rest.NewClient(server.URL)

			var out map[string]interface{}
			err := client.Do(context.Background(), "POST", "/api/orders/7/pay", nil, nil, &out, rest.UnwrapDataData)
			require.Error(t, err)
			assert.True(t, rest.IsMalformed(err))
		})
	}
}

func TestDoMissingPayloadIgnoredWithoutOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"200","msg":"ok","data":null}`))
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)
	err := client.Do(context.Background(), "DELETE", "/api/orders/7", nil, nil, nil, rest.UnwrapData)
	assert.NoError(t, err)
}

func TestDoEmptySessionSendsNoToken(t *testing.T) {
	var sawToken bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawToken = r.Header["Token"]
		w.Write([]byte(`{"code":"200","msg":"ok","data":[]}`))
	}))
	defer server.Close()

	session := &rest.SessionStore{}
	client := rest.NewClient(server.URL, rest.WithTokenProvider(session))

	var out []struct{}
	err := client.Do(context.Background(), "GET", "/api/products", nil, nil, &out, rest.UnwrapData)
	require.NoError(t, err)
	assert.False(t, sawToken)
}

func TestDoQueryParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"code":"200","msg":"ok","data":"tok"}`))
	}))
	defer server.Close()

	client := rest.NewClient(server.URL)

	query := url.Values{}
	query.Set("username", "alice")
	query.Set("password", "secret")

	var token string
	err := client.Do(context.Background(), "POST", "/api/accounts/login", query, nil, &token, rest.UnwrapData)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "alice", gotQuery.Get("username"))
	assert.Equal(t, "secret", gotQuery.Get("password"))
}

func TestSessionStore(t *testing.T) {
	store := &rest.SessionStore{}

	_, err := store.Token()
	assert.ErrorIs(t, err, rest.ErrNoToken)

	store.Set("abc")
	token, err := store.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	store.Clear()
	_, err = store.Token()
	assert.ErrorIs(t, err, rest.ErrNoToken)
}
