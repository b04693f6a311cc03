package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nextweekend/nextweekend/pkg/logger"
	"github.com/nextweekend/nextweekend/pkg/profile"
)

// CustomerDirectory resolves a provider customer to its email address.
// A deleted or unknown customer yields an empty email and no error.
type CustomerDirectory interface {
	CustomerEmail(ctx context.Context, customerID string) (string, error)
}

// Reconciler writes subscription state from events onto profiles.
type Reconciler struct {
	store     profile.Store
	customers CustomerDirectory
	now       func() time.Time
	log       *slog.Logger
}

type ReconcilerOption func(*Reconciler)

func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

func WithReconcilerLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.log = l
		}
	}
}

func NewReconciler(store profile.Store, customers CustomerDirectory, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		store:     store,
		customers: customers,
		now:       time.Now,
		log:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile applies ev to the matching profile and returns the updated row.
// All input validation happens before any lookup, so a malformed event never
// causes a write.
func (r *Reconciler) Reconcile(ctx context.Context, ev SubscriptionEvent) (*profile.Profile, error) {
	fields, err := r.fieldsFrom(ev.Subscription)
	if err != nil {
		return nil, err
	}

	p, err := r.resolve(ctx, fields.CustomerID)
	if err != nil {
		return nil, err
	}
	if p.LinkedToOther(fields.CustomerID) {
		return nil, fmt.Errorf("%w: profile %s", ErrCustomerConflict, p.ID)
	}

	updated, err := r.store.UpdateSubscription(ctx, p.ID, fields)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return nil, errors.Join(ErrProfileNotFound, err)
	case err != nil:
		return nil, errors.Join(ErrStore, err)
	}

	r.log.InfoContext(ctx, "subscription reconciled",
		logger.EventID(ev.ID),
		logger.EventType(ev.Type),
		logger.ProfileID(updated.ID),
		logger.CustomerID(fields.CustomerID),
		logger.SubscriptionID(fields.SubscriptionID),
		slog.String("status", fields.Status),
		slog.String("tier", fields.Tier),
	)
	return updated, nil
}

func (r *Reconciler) fieldsFrom(sub Subscription) (profile.SubscriptionFields, error) {
	var missing []string
	if sub.CustomerID == "" {
		missing = append(missing, "customer")
	}
	if sub.ID == "" {
		missing = append(missing, "id")
	}
	if sub.Status == "" {
		missing = append(missing, "status")
	}
	if len(sub.Items) == 0 {
		missing = append(missing, "items")
	} else if sub.Items[0].LookupKey == "" {
		missing = append(missing, "items[0].price.lookup_key")
	}
	if sub.PeriodEnd() <= 0 {
		missing = append(missing, "current_period_end")
	}
	if len(missing) > 0 {
		return profile.SubscriptionFields{}, fmt.Errorf("%w: missing %s", ErrMalformedEvent, strings.Join(missing, ", "))
	}

	return profile.SubscriptionFields{
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		Status:         sub.Status,
		Tier:           sub.Items[0].LookupKey,
		PeriodEnd:      time.Unix(sub.PeriodEnd(), 0).UTC(),
		UpdatedAt:      r.now().UTC(),
	}, nil
}

// resolve finds the profile by stored customer id, then by the customer's
// email for the first link.
func (r *Reconciler) resolve(ctx context.Context, customerID string) (*profile.Profile, error) {
	p, err := r.store.GetByCustomerID(ctx, customerID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, profile.ErrNotFound) {
		return nil, errors.Join(ErrStore, err)
	}

	email, err := r.customers.CustomerEmail(ctx, customerID)
	if err != nil {
		return nil, errors.Join(ErrProvider, err)
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: customer %s has no email", ErrProfileNotFound, customerID)
	}

	p, err = r.store.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return nil, fmt.Errorf("%w: customer %s", ErrProfileNotFound, customerID)
	case err != nil:
		return nil, errors.Join(ErrStore, err)
	}
	return p, nil
}
