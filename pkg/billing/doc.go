// Package billing reconciles Stripe subscription events with NextWeekend
// profiles and starts hosted checkout sessions.
//
// The webhook path is Verify, then Router.Route, then Reconciler.Reconcile:
//
//	ev, err := verifier.Verify(body, r.Header.Get("Stripe-Signature"))
//	if err != nil {
//		// 400, nothing was written
//	}
//	outcome, err := router.Route(ctx, ev)
//
// Verify checks the signature over the exact request bytes and decodes the
// payload once into a tagged Event: a SubscriptionEvent for the handled
// subscription lifecycle types, or an UnhandledEvent for everything else.
// Unhandled events are acknowledged without touching the store.
//
// The reconciler resolves the profile by stored Stripe customer id first and
// falls back to the customer's email for the first link. Every write is a full
// overwrite of the subscription fields taken from the event, so redelivery is
// idempotent. Events carry no sequence number, so out-of-order delivery of two
// updates for the same customer resolves as last write wins.
//
// A profile already linked to one customer is never relinked to another. Checkout
// always creates a new customer, so a user who resubscribes after cancelling is
// refused with ErrCustomerConflict until an operator clears the stored link.
//
// Errors wrap the package sentinels declared in errors.go.
package billing
