package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/nextweekend/nextweekend/pkg/breaker"
	"github.com/nextweekend/nextweekend/pkg/logger"
)

const profilesTable = "profiles"

// errClientStatus marks 4xx responses, which must not trip the breaker.
var errClientStatus = errors.New("postgrest client error")

// SupabaseStore is a Store backed by the Supabase PostgREST API.
type SupabaseStore struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	log     *slog.Logger
}

type SupabaseOption func(*SupabaseStore)

func WithHTTPClient(c *http.Client) SupabaseOption {
	return func(s *SupabaseStore) {
		if c != nil {
			s.client = c
		}
	}
}

func WithLogger(l *slog.Logger) SupabaseOption {
	return func(s *SupabaseStore) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSupabaseStore builds a store for the project at baseURL using the
// service-role key. The key is sent as both apikey and bearer token.
func NewSupabaseStore(baseURL, serviceRoleKey string, opts ...SupabaseOption) (*SupabaseStore, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid supabase url", ErrStoreUnavailable)
	}
	if serviceRoleKey == "" {
		return nil, fmt.Errorf("%w: empty service role key", ErrStoreUnavailable)
	}

	s := &SupabaseStore{
		baseURL: u,
		apiKey:  serviceRoleKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cb = breaker.New[[]byte](breaker.Config{Name: "supabase"}, s.log,
		breaker.WithIsSuccessful(func(err error) bool {
			return err == nil || errors.Is(err, errClientStatus)
		}),
	)
	return s, nil
}

func (s *SupabaseStore) Get(ctx context.Context, id string) (*Profile, error) {
	return s.selectOne(ctx, "id", id)
}

func (s *SupabaseStore) GetByCustomerID(ctx context.Context, customerID string) (*Profile, error) {
	return s.selectOne(ctx, "stripe_customer_id", customerID)
}

func (s *SupabaseStore) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return s.selectOne(ctx, "email", NormalizeEmail(email))
}

func (s *SupabaseStore) Insert(ctx context.Context, p Profile) (*Profile, error) {
	p.Email = NormalizeEmail(p.Email)
	if err := p.validate(); err != nil {
		return nil, err
	}
	body := map[string]any{
		"id":          p.ID,
		"email":       p.Email,
		"full_name":   p.FullName,
		"preferences": p.Preferences,
		"created_at":  p.CreatedAt.UTC(),
		"updated_at":  p.UpdatedAt.UTC(),
	}
	rows, err := s.do(ctx, http.MethodPost, nil, body)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusConflict {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return first(rows)
}

func (s *SupabaseStore) UpdateSubscription(ctx context.Context, id string, f SubscriptionFields) (*Profile, error) {
	body := map[string]any{
		"stripe_customer_id":      f.CustomerID,
		"subscription_id":         f.SubscriptionID,
		"subscription_status":     f.Status,
		"subscription_tier":       f.Tier,
		"subscription_period_end": f.PeriodEnd.UTC(),
		"updated_at":              f.UpdatedAt.UTC(),
	}
	rows, err := s.do(ctx, http.MethodPatch, eq("id", id), body)
	if err != nil {
		return nil, err
	}
	return first(rows)
}

func (s *SupabaseStore) UpdatePreferences(ctx context.Context, id string, prefs Preferences, now time.Time) (*Profile, error) {
	rows, err := s.do(ctx, http.MethodPatch, eq("id", id), map[string]any{
		"preferences": prefs,
		"updated_at":  now.UTC(),
	})
	if err != nil {
		return nil, err
	}
	return first(rows)
}

// Ping issues a minimal select to confirm the API and key are usable.
func (s *SupabaseStore) Ping(ctx context.Context) error {
	q := url.Values{"select": {"id"}, "limit": {"1"}}
	_, err := s.do(ctx, http.MethodGet, q, nil)
	return err
}

func (s *SupabaseStore) selectOne(ctx context.Context, column, value string) (*Profile, error) {
	if value == "" {
		return nil, ErrNotFound
	}
	q := eq(column, value)
	q.Set("limit", "1")
	rows, err := s.do(ctx, http.MethodGet, q, nil)
	if err != nil {
		return nil, err
	}
	return first(rows)
}

func eq(column, value string) url.Values {
	return url.Values{
		"select": {"*"},
		column:   {"eq." + value},
	}
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("postgrest returned %d: %s", e.code, e.body)
}

func (e *statusError) Unwrap() error {
	if e.code >= 400 && e.code < 500 {
		return errClientStatus
	}
	return nil
}

// do sends one PostgREST request and decodes the returned rows.
func (s *SupabaseStore) do(ctx context.Context, method string, query url.Values, body any) ([]Profile, error) {
	endpoint := s.baseURL.JoinPath("rest", "v1", profilesTable)
	endpoint.RawQuery = query.Encode()

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	raw, err := breaker.Execute(s.cb, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if method != http.MethodGet {
			req.Header.Set("Prefer", "return=representation")
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &statusError{code: resp.StatusCode, body: truncate(string(data), 256)}
		}
		return data, nil
	})
	if err != nil {
		s.log.WarnContext(ctx, "supabase request failed",
			logger.Component("profile.supabase"),
			slog.String("method", method),
			logger.Error(err),
		)
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusConflict {
			return nil, err
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var rows []Profile
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, fmt.Errorf("decode response: %w", err))
	}
	return rows, nil
}

func first(rows []Profile) (*Profile, error) {
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	p := rows[0]
	p.Email = NormalizeEmail(p.Email)
	return &p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
