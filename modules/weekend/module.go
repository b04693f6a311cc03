// Package weekend serves the signed-in user's profile, preferences and
// weekend recommendations. Every route requires a Supabase access token.
package weekend

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nextweekend/nextweekend/binder"
	"github.com/nextweekend/nextweekend/handler"
	"github.com/nextweekend/nextweekend/pkg/auth"
	"github.com/nextweekend/nextweekend/pkg/logger"
	"github.com/nextweekend/nextweekend/pkg/profile"
)

type Module struct {
	store    profile.Store
	verifier *auth.Verifier
	validate *validator.Validate
	now      func() time.Time
	newRand  func() *rand.Rand
	log      *slog.Logger
}

type Option func(*Module)

func WithClock(now func() time.Time) Option {
	return func(m *Module) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRand sets the per-request random source for recommendations.
func WithRand(fn func() *rand.Rand) Option {
	return func(m *Module) { m.newRand = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.log = l
		}
	}
}

func New(store profile.Store, verifier *auth.Verifier, opts ...Option) (*Module, error) {
	v := handler.NewValidator()
	if err := profile.RegisterValidations(v); err != nil {
		return nil, err
	}
	m := &Module{
		store:    store,
		verifier: verifier,
		validate: v,
		now:      time.Now,
		newRand:  func() *rand.Rand { return nil },
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("weekend"))
	return m, nil
}

// Handle returns the module router:
//
//	POST /profile
//	GET  /profile
//	GET  /preferences
//	PUT  /preferences
//	GET  /recommendations
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware(m.verifier, auth.WithLogger(m.log)))

	errs := handler.NewErrorHandler(m.log)

	r.Post("/profile", wrapJSON(m, m.createProfile, errs))
	r.Get("/profile", handler.Wrap(m.getProfile, handler.WithErrorHandler[handler.Context, struct{}](errs)))
	r.Get("/preferences", handler.Wrap(m.getPreferences, handler.WithErrorHandler[handler.Context, struct{}](errs)))
	r.Put("/preferences", handler.Wrap(m.updatePreferences,
		handler.WithBinder[handler.Context, profile.Preferences](binder.JSON(binder.WithMaxBytes(64<<10), binder.Strict())),
		handler.WithBinder[handler.Context, profile.Preferences](withPreferenceDefaults),
		handler.WithValidator[handler.Context, profile.Preferences](m.validate),
		handler.WithErrorHandler[handler.Context, profile.Preferences](errs),
	))
	r.Get("/recommendations", handler.Wrap(m.recommendations, handler.WithErrorHandler[handler.Context, struct{}](errs)))
	return r
}

// storeError maps profile store errors onto HTTP errors, keeping the cause for logs.
func storeError(err error) error {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return errors.Join(handler.ErrNotFound, err)
	case errors.Is(err, profile.ErrAlreadyExists):
		return errors.Join(handler.ErrConflict, err)
	case errors.Is(err, profile.ErrInvalidProfile):
		return errors.Join(handler.ErrBadRequest, err)
	default:
		return err
	}
}

// withPreferenceDefaults fills fields the client left unset before validation.
func withPreferenceDefaults(_ *http.Request, v any) error {
	if p, ok := v.(*profile.Preferences); ok {
		*p = p.WithDefaults()
	}
	return nil
}

func identity(ctx handler.Context) (auth.Identity, error) {
	id, err := auth.MustFromContext(ctx)
	if err != nil {
		return auth.Identity{}, errors.Join(handler.ErrUnauthorized, err)
	}
	return id, nil
}
