package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextweekend/nextweekend/pkg/billing"
	"github.com/nextweekend/nextweekend/pkg/profile"
)

func TestRouteUnknownTypeWritesNothing(t *testing.T) {
	t.Parallel()
	store := profile.NewMemoryStore(seedProfile("u1", "a@x.io"))
	dir := &fakeDirectory{}
	router := billing.NewRouter(newReconciler(store, dir), nil)

	out, err := router.Route(context.Background(), billing.UnhandledEvent{ID: "evt_9", Type: "invoice.paid"})
	require.NoError(t, err)
	assert.Equal(t, billing.OutcomeAcknowledged, out.Kind)
	assert.Equal(t, "evt_9", out.EventID)
	assert.Equal(t, "invoice.paid", out.EventType)
	assert.Nil(t, out.Profile)
	assert.Equal(t, "Event acknowledged", out.Message())
	assert.Zero(t, store.Writes())
	assert.Zero(t, dir.Calls())
}

func TestRouteSubscriptionEvent(t *testing.T) {
	t.Parallel()
	store := profile.NewMemoryStore(seedProfile("u1", "a@x.io"))
	dir := &fakeDirectory{emails: map[string]string{"cus_A": "a@x.io"}}
	router := billing.NewRouter(newReconciler(store, dir), nil)

	out, err := router.Route(context.Background(), subscriptionEvent("cus_A", "active", "basic"))
	require.NoError(t, err)
	assert.Equal(t, billing.OutcomeUpdated, out.Kind)
	require.NotNil(t, out.Profile)
	assert.Equal(t, "u1", out.Profile.ID)
	assert.Equal(t, 1, store.Writes())
}

func TestRoutePropagatesReconcileError(t *testing.T) {
	t.Parallel()
	store := profile.NewMemoryStore()
	router := billing.NewRouter(newReconciler(store, &fakeDirectory{}), nil)

	_, err := router.Route(context.Background(), subscriptionEvent("cus_A", "active", "basic"))
	assert.ErrorIs(t, err, billing.ErrProfileNotFound)
}
