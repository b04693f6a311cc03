package billing

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v82"

	"github.com/nextweekend/nextweekend/pkg/breaker"
	"github.com/nextweekend/nextweekend/pkg/logger"
)

// Config holds Stripe credentials.
type Config struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`
	Plans         Plans
}

type customerAPI interface {
	Retrieve(ctx context.Context, id string, params *stripe.CustomerRetrieveParams) (*stripe.Customer, error)
}

type checkoutAPI interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
}

// StripeProvider implements Provider with the Stripe API. Both calls run
// through a circuit breaker; 4xx responses do not count as failures.
type StripeProvider struct {
	customers customerAPI
	sessions  checkoutAPI
	cb        *gobreaker.CircuitBreaker[any]
	log       *slog.Logger
}

func NewStripeProvider(sc *stripe.Client, log *slog.Logger) *StripeProvider {
	return newStripeProvider(sc.V1Customers, sc.V1CheckoutSessions, log)
}

func newStripeProvider(customers customerAPI, sessions checkoutAPI, log *slog.Logger) *StripeProvider {
	if log == nil {
		log = logger.Discard()
	}
	return &StripeProvider{
		customers: customers,
		sessions:  sessions,
		log:       log,
		cb: breaker.New[any](breaker.Config{Name: "stripe"}, log,
			breaker.WithIsSuccessful(func(err error) bool {
				return err == nil || isClientError(err)
			}),
		),
	}
}

// CustomerEmail returns the customer's email, or "" when the customer is
// deleted, unknown or has no email on file.
func (p *StripeProvider) CustomerEmail(ctx context.Context, customerID string) (string, error) {
	res, err := breaker.Execute(p.cb, func() (any, error) {
		return p.customers.Retrieve(ctx, customerID, nil)
	})
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Code == stripe.ErrorCodeResourceMissing {
			return "", nil
		}
		return "", err
	}
	cust, _ := res.(*stripe.Customer)
	if cust == nil || cust.Deleted {
		return "", nil
	}
	return strings.TrimSpace(cust.Email), nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error) {
	req := &stripe.CheckoutSessionCreateParams{
		Mode:                     stripe.String(params.Mode),
		PaymentMethodTypes:       stripe.StringSlice(params.PaymentMethodTypes),
		AllowPromotionCodes:      stripe.Bool(params.AllowPromotionCodes),
		BillingAddressCollection: stripe.String(params.BillingAddressCollection),
		CustomerCreation:         stripe.String(params.CustomerCreation),
		SuccessURL:               stripe.String(params.SuccessURL),
		CancelURL:                stripe.String(params.CancelURL),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{{
			Price:    stripe.String(params.PriceID),
			Quantity: stripe.Int64(params.Quantity),
		}},
	}

	res, err := breaker.Execute(p.cb, func() (any, error) {
		return p.sessions.Create(ctx, req)
	})
	if err != nil {
		p.log.ErrorContext(ctx, "create checkout session", logger.Error(err))
		return CheckoutSession{}, err
	}
	sess, _ := res.(*stripe.CheckoutSession)
	if sess == nil {
		return CheckoutSession{}, errors.New("stripe returned no checkout session")
	}
	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func isClientError(err error) bool {
	var serr *stripe.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.HTTPStatusCode >= 400 && serr.HTTPStatusCode < 500 && serr.HTTPStatusCode != 429
}
