package billing

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/nextweekend/nextweekend/pkg/billing"
	"github.com/nextweekend/nextweekend/pkg/logger"
)

// MaxWebhookBytes caps webhook request bodies.
const MaxWebhookBytes int64 = 1 << 20

const signatureHeader = "Stripe-Signature"

type webhookResponse struct {
	Received bool   `json:"received"`
	Type     string `json:"type"`
	Message  string `json:"message"`
}

func (m *Module) webhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Unable to read request body"})
		return
	}

	ev, err := m.verifier.Verify(payload, r.Header.Get(signatureHeader))
	if err != nil {
		m.log.WarnContext(ctx, "webhook verification failed", logger.Error(err))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Webhook verification failed"})
		return
	}

	outcome, err := m.router.Route(ctx, ev)
	if err != nil {
		status, msg := webhookError(err)
		level := m.log.WarnContext
		if status >= http.StatusInternalServerError {
			level = m.log.ErrorContext
		}
		level(ctx, "webhook processing failed",
			logger.EventID(ev.EventID()),
			logger.EventType(ev.EventType()),
			logger.Status(status),
			logger.Error(err),
		)
		writeJSON(w, status, errorBody{Error: msg})
		return
	}

	m.log.InfoContext(ctx, "webhook processed",
		logger.EventID(outcome.EventID),
		logger.EventType(outcome.EventType),
		logger.Duration(time.Since(start)),
	)
	writeJSON(w, http.StatusOK, webhookResponse{
		Received: true,
		Type:     outcome.EventType,
		Message:  outcome.Message(),
	})
}

// webhookError maps reconciliation failures to a status and a client-safe message.
// Store and provider failures fall through to 500.
func webhookError(err error) (int, string) {
	switch {
	case errors.Is(err, billing.ErrMalformedEvent):
		return http.StatusBadRequest, "Malformed event"
	case errors.Is(err, billing.ErrProfileNotFound):
		return http.StatusNotFound, "No profile for customer"
	case errors.Is(err, billing.ErrCustomerConflict):
		return http.StatusConflict, "Profile linked to a different customer"
	default:
		return http.StatusInternalServerError, "Webhook processing failed"
	}
}
