package billing

import (
	"context"
	"log/slog"

	"github.com/nextweekend/nextweekend/pkg/logger"
	"github.com/nextweekend/nextweekend/pkg/profile"
)

type OutcomeKind string

const (
	OutcomeUpdated      OutcomeKind = "updated"
	OutcomeAcknowledged OutcomeKind = "acknowledged"
)

// Outcome describes what routing did with a verified event.
type Outcome struct {
	Kind      OutcomeKind
	EventID   string
	EventType string
	Profile   *profile.Profile
}

// Message is a short human-readable summary, safe to return to the provider.
func (o Outcome) Message() string {
	if o.Kind == OutcomeUpdated {
		return "Subscription reconciled"
	}
	return "Event acknowledged"
}

// SubscriptionReconciler is implemented by *Reconciler.
type SubscriptionReconciler interface {
	Reconcile(ctx context.Context, ev SubscriptionEvent) (*profile.Profile, error)
}

// Router dispatches verified events by type.
type Router struct {
	reconciler SubscriptionReconciler
	log        *slog.Logger
}

func NewRouter(reconciler SubscriptionReconciler, log *slog.Logger) *Router {
	if log == nil {
		log = logger.Discard()
	}
	return &Router{reconciler: reconciler, log: log}
}

// Route reconciles subscription events and acknowledges every other type
// without touching the store.
func (r *Router) Route(ctx context.Context, ev Event) (Outcome, error) {
	out := Outcome{
		Kind:      OutcomeAcknowledged,
		EventID:   ev.EventID(),
		EventType: ev.EventType(),
	}

	switch e := ev.(type) {
	case SubscriptionEvent:
		p, err := r.reconciler.Reconcile(ctx, e)
		if err != nil {
			return out, err
		}
		out.Kind = OutcomeUpdated
		out.Profile = p
	default:
		r.log.DebugContext(ctx, "event acknowledged without action",
			logger.EventID(out.EventID),
			logger.EventType(out.EventType),
		)
	}
	return out, nil
}
