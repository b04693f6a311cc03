// Package billing mounts the Stripe webhook, checkout and plans endpoints.
package billing

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextweekend/nextweekend/pkg/billing"
	"github.com/nextweekend/nextweekend/pkg/logger"
	"github.com/nextweekend/nextweekend/pkg/ratelimiter"
)

// EventVerifier is implemented by *billing.Verifier.
type EventVerifier interface {
	Verify(payload []byte, header string) (billing.Event, error)
}

// EventRouter is implemented by *billing.Router.
type EventRouter interface {
	Route(ctx context.Context, ev billing.Event) (billing.Outcome, error)
}

// CheckoutCreator is implemented by *billing.CheckoutInitiator.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, priceID string) (billing.CheckoutSession, error)
}

type Module struct {
	verifier EventVerifier
	router   EventRouter
	checkout CheckoutCreator
	plans    []billing.Plan
	limiter  *ratelimiter.Limiter
	log      *slog.Logger
}

type Option func(*Module)

// WithCheckoutLimiter rate limits /checkout per client IP.
func WithCheckoutLimiter(l *ratelimiter.Limiter) Option {
	return func(m *Module) { m.limiter = l }
}

func WithPlans(plans billing.Plans) Option {
	return func(m *Module) { m.plans = plans.List() }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.log = l
		}
	}
}

func New(verifier EventVerifier, router EventRouter, checkout CheckoutCreator, opts ...Option) *Module {
	m := &Module{
		verifier: verifier,
		router:   router,
		checkout: checkout,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("billing"))
	return m
}

// Handle returns the module router:
//
//	POST /webhooks/stripe
//	POST /checkout (OPTIONS preflight, CORS)
//	GET  /plans
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Post("/webhooks/stripe", m.webhook)

	r.Group(func(r chi.Router) {
		r.Use(cors)
		if m.limiter != nil {
			r.Use(ratelimiter.Middleware(m.limiter,
				ratelimiter.Prefixed("checkout", ratelimiter.ByClientIP),
				ratelimiter.WithLogger(m.log),
				ratelimiter.WithLimitedHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Too Many Requests"})
				}),
			))
		}
		r.HandleFunc("/checkout", m.checkoutHandler())
	})

	r.Get("/plans", m.listPlans)
	return r
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (m *Module) listPlans(w http.ResponseWriter, _ *http.Request) {
	plans := m.plans
	if plans == nil {
		plans = []billing.Plan{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}
