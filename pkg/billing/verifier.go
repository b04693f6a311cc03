package billing

import (
	"errors"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Verifier authenticates Stripe webhook payloads with the endpoint signing secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

type VerifierOption func(*Verifier)

// WithTolerance sets the accepted timestamp skew. Defaults to webhook.DefaultTolerance.
func WithTolerance(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.tolerance = d
		}
	}
}

// NewVerifier returns a Verifier bound to the webhook signing secret.
// An empty secret is rejected.
func NewVerifier(secret string, opts ...VerifierOption) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("billing: empty webhook secret")
	}
	v := &Verifier{secret: secret, tolerance: webhook.DefaultTolerance}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify checks header against the exact payload bytes and decodes the event.
func (v *Verifier) Verify(payload []byte, header string) (Event, error) {
	return verify(payload, header, v.secret, v.tolerance)
}

// Verify is the stateless form of Verifier.Verify using the default tolerance.
func Verify(payload []byte, header, secret string) (Event, error) {
	return verify(payload, header, secret, webhook.DefaultTolerance)
}

func verify(payload []byte, header, secret string, tolerance time.Duration) (Event, error) {
	if strings.TrimSpace(header) == "" {
		return nil, errors.Join(ErrVerification, errors.New("missing signature header"))
	}
	if secret == "" {
		return nil, errors.Join(ErrVerification, errors.New("no signing secret configured"))
	}

	evt, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, errors.Join(ErrVerification, err)
	}
	return decodeEvent(evt)
}

func decodeEvent(evt stripe.Event) (Event, error) {
	typ := string(evt.Type)
	if typ == "" {
		return nil, errors.Join(ErrVerification, errors.New("event has no type"))
	}
	if !isSubscriptionType(typ) {
		return UnhandledEvent{ID: evt.ID, Type: typ}, nil
	}
	if evt.Data == nil || len(evt.Data.Raw) == 0 {
		return nil, errors.Join(ErrVerification, errors.New("event has no data object"))
	}
	sub, err := decodeSubscription(evt.Data.Raw)
	if err != nil {
		return nil, errors.Join(ErrVerification, err)
	}
	return SubscriptionEvent{ID: evt.ID, Type: typ, Subscription: sub}, nil
}
