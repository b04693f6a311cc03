package billing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/nextweekend/nextweekend/pkg/profile"
)

const (
	testSecret    = "whsec_test_secret"
	periodEndUnix = int64(1700000000)
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeDirectory struct {
	mu     sync.Mutex
	emails map[string]string
	err    error
	calls  int
}

func (f *fakeDirectory) CustomerEmail(_ context.Context, customerID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.emails[customerID], nil
}

func (f *fakeDirectory) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func subscriptionObject(customer any, items ...map[string]any) map[string]any {
	data := make([]any, 0, len(items))
	for _, it := range items {
		data = append(data, it)
	}
	return map[string]any{
		"id":                 "sub_1",
		"object":             "subscription",
		"customer":           customer,
		"status":             "active",
		"current_period_end": periodEndUnix,
		"items":              map[string]any{"object": "list", "data": data},
	}
}

func priceItem(lookupKey string) map[string]any {
	return map[string]any{
		"id":    "si_1",
		"price": map[string]any{"id": "price_basic", "lookup_key": lookupKey},
	}
}

func eventPayload(t *testing.T, id, typ string, object map[string]any) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        typ,
		"api_version": "2020-08-27",
		"created":     fixedNow.Unix(),
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)
	return b
}

func sign(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func seedProfile(id, email string) profile.Profile {
	return profile.New(id, email, fmt.Sprintf("User %s", id), fixedNow.Add(-24*time.Hour))
}

// failingStore wraps a store and fails the lookup or write paths.
type failingStore struct {
	profile.Store
	failLookup bool
	failWrite  bool
}

func (s failingStore) GetByCustomerID(ctx context.Context, customerID string) (*profile.Profile, error) {
	if s.failLookup {
		return nil, fmt.Errorf("%w: connection refused", profile.ErrStoreUnavailable)
	}
	return s.Store.GetByCustomerID(ctx, customerID)
}

func (s failingStore) UpdateSubscription(ctx context.Context, id string, f profile.SubscriptionFields) (*profile.Profile, error) {
	if s.failWrite {
		return nil, fmt.Errorf("%w: connection refused", profile.ErrStoreUnavailable)
	}
	return s.Store.UpdateSubscription(ctx, id, f)
}
