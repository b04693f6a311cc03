package weekend

import (
	"errors"
	"net/http"

	"github.com/nextweekend/nextweekend/binder"
	"github.com/nextweekend/nextweekend/handler"
	"github.com/nextweekend/nextweekend/pkg/logger"
	"github.com/nextweekend/nextweekend/pkg/profile"
	"github.com/nextweekend/nextweekend/pkg/recommend"
)

var (
	errNoEmail             = handler.NewHTTPError(http.StatusBadRequest, "email_required")
	errPreferencesRequired = handler.NewHTTPError(http.StatusUnprocessableEntity, "preferences_required")
)

func wrapJSON[R any](m *Module, h handler.HandlerFunc[handler.Context, R], errs handler.ErrorHandler[handler.Context]) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinder[handler.Context, R](binder.JSON(binder.WithMaxBytes(64<<10), binder.Strict())),
		handler.WithValidator[handler.Context, R](m.validate),
		handler.WithErrorHandler[handler.Context, R](errs),
	)
}

type signupRequest struct {
	FullName string `json:"fullName" validate:"max=200"`
}

func (m *Module) createProfile(ctx handler.Context, req signupRequest) handler.Response {
	id, err := identity(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if id.Email == "" {
		return handler.Error(errNoEmail)
	}

	p, err := m.store.Insert(ctx, profile.New(id.UserID, id.Email, req.FullName, m.now()))
	if err != nil {
		return handler.Error(storeError(err))
	}
	m.log.InfoContext(ctx, "profile created", logger.ProfileID(p.ID))
	return handler.JSON(p, handler.WithStatus(http.StatusCreated))
}

func (m *Module) current(ctx handler.Context) (*profile.Profile, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	p, err := m.store.Get(ctx, id.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

func (m *Module) getProfile(ctx handler.Context, _ struct{}) handler.Response {
	p, err := m.current(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(p, handler.WithMeta(map[string]any{
		"hasAccess": p.HasAccess(m.now()),
	}))
}

func (m *Module) getPreferences(ctx handler.Context, _ struct{}) handler.Response {
	p, err := m.current(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(p.Preferences.WithDefaults())
}

func (m *Module) updatePreferences(ctx handler.Context, prefs profile.Preferences) handler.Response {
	id, err := identity(ctx)
	if err != nil {
		return handler.Error(err)
	}
	p, err := m.store.UpdatePreferences(ctx, id.UserID, prefs, m.now())
	if err != nil {
		return handler.Error(storeError(err))
	}
	return handler.JSON(p.Preferences)
}

func (m *Module) recommendations(ctx handler.Context, _ struct{}) handler.Response {
	p, err := m.current(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if !p.HasAccess(m.now()) {
		return handler.Error(handler.ErrPaymentRequired)
	}

	recs, err := recommend.Generate(p.Preferences, m.newRand(), recommend.DefaultCount)
	if errors.Is(err, recommend.ErrNoPreferences) {
		return handler.Error(errPreferencesRequired)
	}
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(recs)
}
