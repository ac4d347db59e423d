package robinhood

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rustyeddy/stocktrader/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	t            *testing.T
	orderStatus  int
	orderBody    map[string]any
	lastOrder    map[string]any
	lookups      atomic.Int32
	mfaRequired  bool
	loginFailure bool
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	asJSON := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			h(w, r)
		}
	}

	mux.HandleFunc("/oauth2/token/", asJSON(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(f.t, r.ParseForm())
		assert.Equal(f.t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(f.t, "alan", r.PostForm.Get("username"))
		assert.Equal(f.t, DefaultClientID, r.PostForm.Get("client_id"))

		switch {
		case f.loginFailure:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Unable to log in with provided credentials."})
		case f.mfaRequired:
			_ = json.NewEncoder(w).Encode(map[string]any{"mfa_required": true})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "token_type": "Bearer", "expires_in": 86400})
		}
	}))

	mux.HandleFunc("/accounts/", asJSON(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{{"url": "https://rh/accounts/1/"}}})
	}))

	mux.HandleFunc("/instruments/", asJSON(func(w http.ResponseWriter, r *http.Request) {
		f.lookups.Add(1)
		if r.URL.Query().Get("symbol") == "NOPE" {
			_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{{
			"url": "https://rh/instruments/aapl/", "id": "aapl", "symbol": "AAPL",
		}}})
	}))

	mux.HandleFunc("/orders/", asJSON(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, http.MethodPost, r.Method)
		assert.Equal(f.t, "Bearer tok", r.Header.Get("Authorization"))
		f.lastOrder = map[string]any{}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&f.lastOrder))

		if f.orderStatus != 0 {
			w.WriteHeader(f.orderStatus)
		}
		_ = json.NewEncoder(w).Encode(f.orderBody)
	}))

	return mux
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL, Username: "alan", Password: "secret"})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Username: "alan"})
	assert.ErrorContains(t, err, "missing username or password")
}

func TestLoginAndPlaceOrder(t *testing.T) {
	t.Parallel()

	f := &fakeAPI{orderBody: map[string]any{
		"id": "order-1", "state": "queued", "average_price": "101.25", "created_at": "2020-08-28T14:30:00.000000Z",
	}}
	c := newTestClient(t, f)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx))

	fill, err := c.PlaceOrder(ctx, broker.OrderRequest{Ticker: "aapl", Quantity: 1, Side: broker.Buy})
	require.NoError(t, err)
	assert.Equal(t, "order-1", fill.OrderID)
	assert.Equal(t, "queued", fill.State)
	assert.Equal(t, "AAPL", fill.Ticker)
	assert.Equal(t, 101.25, fill.Price)
	assert.Equal(t, 2020, fill.Time.Year())

	assert.Equal(t, "buy", f.lastOrder["side"])
	assert.Equal(t, "market", f.lastOrder["type"])
	assert.Equal(t, "gfd", f.lastOrder["time_in_force"])
	assert.Equal(t, "1", f.lastOrder["quantity"])
	assert.Equal(t, "https://rh/accounts/1/", f.lastOrder["account"])
	assert.Equal(t, "https://rh/instruments/aapl/", f.lastOrder["instrument"])
	assert.NotEmpty(t, f.lastOrder["ref_id"])

	// instrument lookups are cached
	_, err = c.PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Quantity: 1, Side: broker.Sell})
	require.NoError(t, err)
	assert.Equal(t, "sell", f.lastOrder["side"])
	assert.Equal(t, int32(1), f.lookups.Load())
}

func TestPlaceOrder_Rejected(t *testing.T) {
	t.Parallel()

	f := &fakeAPI{orderStatus: http.StatusBadRequest, orderBody: map[string]any{"detail": "Not enough buying power."}}
	c := newTestClient(t, f)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx))

	_, err := c.PlaceOrder(ctx, broker.OrderRequest{Ticker: "AAPL", Quantity: 1, Side: broker.Buy})
	require.Error(t, err)
	assert.True(t, errors.Is(err, broker.ErrOrder))
	assert.Contains(t, err.Error(), "Not enough buying power.")

	_, err = c.PlaceOrder(ctx, broker.OrderRequest{Ticker: "NOPE", Quantity: 1, Side: broker.Buy})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `instrument "NOPE" not found`)
}

func TestPlaceOrder_NotLoggedIn(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeAPI{})
	_, err := c.PlaceOrder(context.Background(), broker.OrderRequest{Ticker: "AAPL", Quantity: 1, Side: broker.Buy})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotLoggedIn))
	assert.True(t, errors.Is(err, broker.ErrOrder))
}

func TestLogin_Failures(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, &fakeAPI{loginFailure: true})
	err := c.Login(context.Background())
	assert.ErrorContains(t, err, "Unable to log in")

	c = newTestClient(t, &fakeAPI{mfaRequired: true})
	assert.ErrorIs(t, c.Login(context.Background()), ErrMFARequired)
}
