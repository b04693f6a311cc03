package profile

import (
	"strings"
	"time"
)

// Subscription statuses that grant access to recommendations.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
)

// Profile is a user's row in the profiles table: identity, the Stripe
// subscription mirror written by webhooks, and activity preferences.
type Profile struct {
	ID                    string      `json:"id"`
	Email                 string      `json:"email"`
	FullName              string      `json:"full_name"`
	StripeCustomerID      *string     `json:"stripe_customer_id"`
	SubscriptionID        *string     `json:"subscription_id"`
	SubscriptionStatus    *string     `json:"subscription_status"`
	SubscriptionTier      *string     `json:"subscription_tier"`
	SubscriptionPeriodEnd *time.Time  `json:"subscription_period_end"`
	Preferences           Preferences `json:"preferences"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// SubscriptionFields is the full set written on every reconciliation.
type SubscriptionFields struct {
	CustomerID     string
	SubscriptionID string
	Status         string
	Tier           string
	PeriodEnd      time.Time
	UpdatedAt      time.Time
}

// New returns a signup profile with empty preferences.
func New(id, email, fullName string, now time.Time) Profile {
	now = now.UTC()
	return Profile{
		ID:        id,
		Email:     NormalizeEmail(email),
		FullName:  strings.TrimSpace(fullName),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasAccess reports whether the subscription currently grants access.
func (p Profile) HasAccess(now time.Time) bool {
	if p.SubscriptionStatus == nil || p.SubscriptionPeriodEnd == nil {
		return false
	}
	switch *p.SubscriptionStatus {
	case StatusActive, StatusTrialing:
		return p.SubscriptionPeriodEnd.After(now)
	default:
		return false
	}
}

// LinkedToOther reports whether the profile is already linked to a different customer.
func (p Profile) LinkedToOther(customerID string) bool {
	return p.StripeCustomerID != nil && *p.StripeCustomerID != "" && *p.StripeCustomerID != customerID
}

// Apply overwrites the subscription fields in place.
func (p *Profile) Apply(f SubscriptionFields) {
	periodEnd := f.PeriodEnd.UTC()
	p.StripeCustomerID = &f.CustomerID
	p.SubscriptionID = &f.SubscriptionID
	p.SubscriptionStatus = &f.Status
	p.SubscriptionTier = &f.Tier
	p.SubscriptionPeriodEnd = &periodEnd
	p.UpdatedAt = f.UpdatedAt.UTC()
}

func (p Profile) validate() error {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Email) == "" {
		return ErrInvalidProfile
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
