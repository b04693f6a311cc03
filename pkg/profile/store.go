package profile

import (
	"context"
	"time"
)

// Store persists profiles. Lookups return ErrNotFound when no row matches.
// UpdateSubscription and UpdatePreferences are single-row atomic writes.
type Store interface {
	Get(ctx context.Context, id string) (*Profile, error)
	GetByCustomerID(ctx context.Context, customerID string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Insert(ctx context.Context, p Profile) (*Profile, error)
	UpdateSubscription(ctx context.Context, id string, f SubscriptionFields) (*Profile, error)
	UpdatePreferences(ctx context.Context, id string, prefs Preferences, now time.Time) (*Profile, error)
	Ping(ctx context.Context) error
}
