package billing_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	billingmod "github.com/nextweekend/nextweekend/modules/billing"
	"github.com/nextweekend/nextweekend/pkg/billing"
	"github.com/nextweekend/nextweekend/pkg/profile"
	"github.com/nextweekend/nextweekend/pkg/ratelimiter"
)

const secret = "whsec_module_test"

type directory map[string]string

func (d directory) CustomerEmail(_ context.Context, id string) (string, error) {
	return d[id], nil
}

// unavailableStore fails every subscription write.
type unavailableStore struct {
	profile.Store
}

func (unavailableStore) UpdateSubscription(context.Context, string, profile.SubscriptionFields) (*profile.Profile, error) {
	return nil, errors.Join(profile.ErrStoreUnavailable, errors.New("connection refused"))
}

type fakeCheckout struct {
	calls int
	err   error
}

func (f *fakeCheckout) CreateCheckout(_ context.Context, priceID string) (billing.CheckoutSession, error) {
	f.calls++
	if f.err != nil {
		return billing.CheckoutSession{}, f.err
	}
	if priceID == "" {
		return billing.CheckoutSession{}, billing.ErrInvalidRequest
	}
	return billing.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil
}

type fixture struct {
	store    *profile.MemoryStore
	checkout *fakeCheckout
	handler  http.Handler
}

func newFixture(t *testing.T, opts ...billingmod.Option) fixture {
	t.Helper()
	store := profile.NewMemoryStore(profile.New("u1", "a@x.io", "Alex", time.Now()))
	verifier, err := billing.NewVerifier(secret)
	require.NoError(t, err)
	router := billing.NewRouter(billing.NewReconciler(store, directory{"cus_A": "a@x.io"}), nil)
	checkout := &fakeCheckout{}
	m := billingmod.New(verifier, router, checkout, opts...)
	return fixture{store: store, checkout: checkout, handler: m.Handle()}
}

func signedEvent(t *testing.T, typ, customer string, items []any) (string, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   typ,
		"data": map[string]any{"object": map[string]any{
			"id":                 "sub_1",
			"customer":           customer,
			"status":             "active",
			"current_period_end": 1700000000,
			"items":              map[string]any{"data": items},
		}},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload, Secret: secret, Timestamp: time.Now(),
	})
	return string(payload), signed.Header
}

func basicItems() []any {
	return []any{map[string]any{"price": map[string]any{"id": "price_b", "lookup_key": "basic"}}}
}

func postWebhook(h http.Handler, body, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	if sig != "" {
		req.Header.Set("Stripe-Signature", sig)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhook(t *testing.T) {
	t.Parallel()

	t.Run("reconciles subscription", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		body, sig := signedEvent(t, billing.TypeSubscriptionCreated, "cus_A", basicItems())

		rec := postWebhook(f.handler, body, sig)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t,
			`{"received":true,"type":"customer.subscription.created","message":"Subscription reconciled"}`,
			rec.Body.String())

		p, err := f.store.Get(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "basic", *p.SubscriptionTier)
		assert.Equal(t, time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC), *p.SubscriptionPeriodEnd)
	})

	t.Run("unknown type acknowledged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		body, sig := signedEvent(t, "invoice.paid", "cus_A", basicItems())

		rec := postWebhook(f.handler, body, sig)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"received":true`)
		assert.Zero(t, f.store.Writes())
	})

	tests := []struct {
		name   string
		typ    string
		cust   string
		items  []any
		sig    func(sig string) string
		status int
	}{
		{name: "missing signature", typ: billing.TypeSubscriptionCreated, cust: "cus_A", items: basicItems(),
			sig: func(string) string { return "" }, status: http.StatusBadRequest},
		{name: "bad signature", typ: billing.TypeSubscriptionCreated, cust: "cus_A", items: basicItems(),
			sig: func(s string) string { return s + "0" }, status: http.StatusBadRequest},
		{name: "malformed", typ: billing.TypeSubscriptionCreated, cust: "cus_A", items: []any{},
			status: http.StatusBadRequest},
		{name: "no profile", typ: billing.TypeSubscriptionUpdated, cust: "cus_unknown", items: basicItems(),
			status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			body, sig := signedEvent(t, tt.typ, tt.cust, tt.items)
			if tt.sig != nil {
				sig = tt.sig(sig)
			}
			rec := postWebhook(f.handler, body, sig)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), secret)
			assert.Zero(t, f.store.Writes())
		})
	}

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		mem := profile.NewMemoryStore(profile.New("u1", "a@x.io", "Alex", time.Now()))
		verifier, err := billing.NewVerifier(secret)
		require.NoError(t, err)
		router := billing.NewRouter(billing.NewReconciler(unavailableStore{mem}, directory{"cus_A": "a@x.io"}), nil)
		h := billingmod.New(verifier, router, &fakeCheckout{}).Handle()

		body, sig := signedEvent(t, billing.TypeSubscriptionCreated, "cus_A", basicItems())
		rec := postWebhook(h, body, sig)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Webhook processing failed"}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "connection refused")
		assert.Zero(t, mem.Writes())
	})

	t.Run("body too large", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rec := postWebhook(f.handler, strings.Repeat("a", int(billingmod.MaxWebhookBytes)+1), "t=1,v1=abc")
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	do := func(h http.Handler, method, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/checkout", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rec := do(f.handler, http.MethodOptions, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Zero(t, f.checkout.calls)
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rec := do(f.handler, http.MethodGet, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.JSONEq(t, `{"error":"Method Not Allowed"}`, rec.Body.String())
	})

	t.Run("creates session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rec := do(f.handler, http.MethodPost, `{"priceId":"price_b"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"url":"https://checkout.stripe.com/c/cs_1"}`, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty price id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rec := do(f.handler, http.MethodPost, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"priceId is required"}`, rec.Body.String())
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		rec := do(f.handler, http.MethodPost, `{"priceId":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, f.checkout.calls)
	})

	t.Run("provider failure hides details", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.checkout.err = errors.Join(billing.ErrProvider, errors.New("sk_live_leaky"))
		rec := do(f.handler, http.MethodPost, `{"priceId":"price_b"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "sk_live")
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()
		store := ratelimiter.NewMemoryStore(ratelimiter.WithIdleTTL(0))
		t.Cleanup(store.Close)
		limiter, err := ratelimiter.New(store, ratelimiter.Config{Limit: 1, Window: time.Hour})
		require.NoError(t, err)
		f := newFixture(t, billingmod.WithCheckoutLimiter(limiter))

		assert.Equal(t, http.StatusOK, do(f.handler, http.MethodPost, `{"priceId":"price_b"}`).Code)
		rec := do(f.handler, http.MethodPost, `{"priceId":"price_b"}`)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.JSONEq(t, `{"error":"Too Many Requests"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})
}

func TestPlans(t *testing.T) {
	t.Parallel()
	f := newFixture(t, billingmod.WithPlans(billing.Plans{Basic: "price_b", Pro: "price_p", Annual: "price_a"}))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"plans":[{"name":"basic","priceId":"price_b"},{"name":"pro","priceId":"price_p"},{"name":"annual","priceId":"price_a"}]}`,
		rec.Body.String())
}
