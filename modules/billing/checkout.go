package billing

import (
	"errors"
	"net/http"

	"github.com/nextweekend/nextweekend/binder"
	"github.com/nextweekend/nextweekend/handler"
	"github.com/nextweekend/nextweekend/pkg/billing"
	"github.com/nextweekend/nextweekend/pkg/logger"
)

type checkoutRequest struct {
	PriceID string `json:"priceId"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// cors answers the browser preflight and tags every response for any origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")

		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			next.ServeHTTP(w, r)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method Not Allowed"})
		}
	})
}

func (m *Module) checkoutHandler() http.HandlerFunc {
	return handler.Wrap(m.createCheckout,
		handler.WithBinder[handler.Context, checkoutRequest](binder.JSON(binder.WithMaxBytes(16<<10))),
		handler.WithErrorHandler[handler.Context, checkoutRequest](m.checkoutError),
	)
}

func (m *Module) createCheckout(ctx handler.Context, req checkoutRequest) handler.Response {
	sess, err := m.checkout.CreateCheckout(ctx, req.PriceID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Body(http.StatusOK, checkoutResponse{URL: sess.URL})
}

func (m *Module) checkoutError(ctx handler.Context, err error) {
	status, msg := http.StatusInternalServerError, "Failed to create checkout session"
	switch {
	case errors.Is(err, billing.ErrInvalidRequest):
		status, msg = http.StatusBadRequest, "priceId is required"
	case errors.Is(err, binder.ErrBodyTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrUnsupportedMediaType):
		status, msg = http.StatusBadRequest, "Invalid request body"
	}

	lvl := m.log.WarnContext
	if status >= http.StatusInternalServerError {
		lvl = m.log.ErrorContext
	}
	lvl(ctx, "checkout failed", logger.Status(status), logger.Error(err))
	writeJSON(ctx.ResponseWriter(), status, errorBody{Error: msg})
}
