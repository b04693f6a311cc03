package profile_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextweekend/nextweekend/pkg/profile"
)

type recordedRequest struct {
	Method string
	Query  string
	Prefer string
	APIKey string
	Auth   string
	Body   map[string]any
}

type fakePostgREST struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	rec := recordedRequest{
		Method: r.Method,
		Query:  r.URL.RawQuery,
		Prefer: r.Header.Get("Prefer"),
		APIKey: r.Header.Get("apikey"),
		Auth:   r.Header.Get("Authorization"),
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	status, body := f.status, f.body
	f.mu.Unlock()

	if r.URL.Path != "/rest/v1/profiles" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakePostgREST) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newSupabase(t *testing.T, status int, body string) (*profile.SupabaseStore, *fakePostgREST) {
	t.Helper()
	fake := &fakePostgREST{status: status, body: body}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := profile.NewSupabaseStore(srv.URL+"/", "service-role-key", profile.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return s, fake
}

const profileRow = `[{
	"id": "u1",
	"email": "a@b.com",
	"full_name": "Ann",
	"stripe_customer_id": "cus_1",
	"subscription_id": "sub_1",
	"subscription_status": "active",
	"subscription_tier": "pro",
	"subscription_period_end": "2023-11-14T22:13:20+00:00",
	"preferences": {"location": "Austin", "radius": 10, "budget": "low", "timePreference": "both", "activityTypes": ["Food & Dining"], "specialConsiderations": []},
	"created_at": "2025-01-01T00:00:00.123456+00:00",
	"updated_at": "2025-01-02T00:00:00+00:00"
}]`

func TestNewSupabaseStoreValidation(t *testing.T) {
	t.Parallel()
	_, err := profile.NewSupabaseStore("not a url", "k")
	assert.ErrorIs(t, err, profile.ErrStoreUnavailable)

	_, err = profile.NewSupabaseStore("https://x.supabase.co", "")
	assert.ErrorIs(t, err, profile.ErrStoreUnavailable)
}

func TestSupabaseStoreLookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("get by customer id", func(t *testing.T) {
		t.Parallel()
		s, fake := newSupabase(t, http.StatusOK, profileRow)

		p, err := s.GetByCustomerID(ctx, "cus_1")
		require.NoError(t, err)
		assert.Equal(t, "u1", p.ID)
		assert.Equal(t, "pro", *p.SubscriptionTier)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), p.SubscriptionPeriodEnd.UTC())
		assert.Equal(t, []string{"Food & Dining"}, p.Preferences.ActivityTypes)

		req := fake.last()
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Contains(t, req.Query, "stripe_customer_id=eq.cus_1")
		assert.Equal(t, "service-role-key", req.APIKey)
		assert.Equal(t, "Bearer service-role-key", req.Auth)
	})

	t.Run("get by email lowercases", func(t *testing.T) {
		t.Parallel()
		s, fake := newSupabase(t, http.StatusOK, profileRow)

		_, err := s.GetByEmail(ctx, "A@B.com")
		require.NoError(t, err)
		assert.Contains(t, fake.last().Query, "email=eq.a%40b.com")
	})

	t.Run("empty result is not found", func(t *testing.T) {
		t.Parallel()
		s, _ := newSupabase(t, http.StatusOK, `[]`)

		_, err := s.Get(ctx, "u404")
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})

	t.Run("empty key short circuits", func(t *testing.T) {
		t.Parallel()
		s, fake := newSupabase(t, http.StatusOK, profileRow)

		_, err := s.GetByCustomerID(ctx, "")
		assert.ErrorIs(t, err, profile.ErrNotFound)
		assert.Empty(t, fake.requests)
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		t.Parallel()
		s, _ := newSupabase(t, http.StatusInternalServerError, `{"message":"boom"}`)

		_, err := s.Get(ctx, "u1")
		assert.ErrorIs(t, err, profile.ErrStoreUnavailable)
	})
}

func TestSupabaseStoreWrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("update subscription sends full field set", func(t *testing.T) {
		t.Parallel()
		s, fake := newSupabase(t, http.StatusOK, profileRow)

		p, err := s.UpdateSubscription(ctx, "u1", profile.SubscriptionFields{
			CustomerID: "cus_1", SubscriptionID: "sub_1", Status: "active", Tier: "pro",
			PeriodEnd: time.Unix(1700000000, 0), UpdatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, "u1", p.ID)

		req := fake.last()
		assert.Equal(t, http.MethodPatch, req.Method)
		assert.Contains(t, req.Query, "id=eq.u1")
		assert.Equal(t, "return=representation", req.Prefer)
		assert.Equal(t, map[string]any{
			"stripe_customer_id":      "cus_1",
			"subscription_id":         "sub_1",
			"subscription_status":     "active",
			"subscription_tier":       "pro",
			"subscription_period_end": "2023-11-14T22:13:20Z",
			"updated_at":              "2025-01-02T00:00:00Z",
		}, req.Body)
	})

	t.Run("update with no matching row", func(t *testing.T) {
		t.Parallel()
		s, _ := newSupabase(t, http.StatusOK, `[]`)

		_, err := s.UpdateSubscription(ctx, "gone", profile.SubscriptionFields{})
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})

	t.Run("insert conflict", func(t *testing.T) {
		t.Parallel()
		s, _ := newSupabase(t, http.StatusConflict, `{"code":"23505"}`)

		_, err := s.Insert(ctx, profile.New("u1", "a@b.com", "Ann", time.Now()))
		assert.ErrorIs(t, err, profile.ErrAlreadyExists)
	})

	t.Run("insert", func(t *testing.T) {
		t.Parallel()
		s, fake := newSupabase(t, http.StatusCreated, profileRow)

		_, err := s.Insert(ctx, profile.New("u1", "A@b.com", "Ann", time.Now()))
		require.NoError(t, err)
		req := fake.last()
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "a@b.com", req.Body["email"])
		assert.Equal(t, "return=representation", req.Prefer)
	})
}
