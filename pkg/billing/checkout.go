package billing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Checkout session policy.
const (
	CheckoutMode             = "subscription"
	BillingAddressCollection = "required"
	CustomerCreation         = "always"

	successPath = "/signup/complete?session_id={CHECKOUT_SESSION_ID}"
	cancelPath  = "/subscription"
)

// CheckoutParams is the provider-neutral checkout session request.
type CheckoutParams struct {
	PriceID                  string
	Quantity                 int64
	Mode                     string
	PaymentMethodTypes       []string
	AllowPromotionCodes      bool
	BillingAddressCollection string
	CustomerCreation         string
	SuccessURL               string
	CancelURL                string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionCreator creates hosted checkout sessions.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
}

// CheckoutInitiator builds checkout sessions with the fixed subscription policy.
type CheckoutInitiator struct {
	sessions   SessionCreator
	successURL string
	cancelURL  string
}

// NewCheckoutInitiator derives the success and cancel URLs from siteURL.
func NewCheckoutInitiator(sessions SessionCreator, siteURL string) (*CheckoutInitiator, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(siteURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("billing: invalid site url %q", siteURL)
	}
	base := u.String()
	return &CheckoutInitiator{
		sessions:   sessions,
		successURL: base + successPath,
		cancelURL:  base + cancelPath,
	}, nil
}

// Params returns the session request for priceID.
func (c *CheckoutInitiator) Params(priceID string) CheckoutParams {
	return CheckoutParams{
		PriceID:                  priceID,
		Quantity:                 1,
		Mode:                     CheckoutMode,
		PaymentMethodTypes:       []string{"card"},
		AllowPromotionCodes:      true,
		BillingAddressCollection: BillingAddressCollection,
		CustomerCreation:         CustomerCreation,
		SuccessURL:               c.successURL,
		CancelURL:                c.cancelURL,
	}
}

// CreateCheckout starts a session for priceID. A blank price id is rejected
// without calling the provider.
func (c *CheckoutInitiator) CreateCheckout(ctx context.Context, priceID string) (CheckoutSession, error) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return CheckoutSession{}, fmt.Errorf("%w: priceId is required", ErrInvalidRequest)
	}

	sess, err := c.sessions.CreateCheckoutSession(ctx, c.Params(priceID))
	if err != nil {
		return CheckoutSession{}, errors.Join(ErrProvider, err)
	}
	if sess.URL == "" {
		return CheckoutSession{}, fmt.Errorf("%w: checkout session %s has no url", ErrProvider, sess.ID)
	}
	return sess, nil
}
