package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nextweekend/nextweekend/pkg/billing"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (billing.CheckoutSession, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(billing.CheckoutSession), args.Error(1)
}

func TestCreateCheckout(t *testing.T) {
	t.Parallel()

	t.Run("builds subscription session", func(t *testing.T) {
		t.Parallel()
		sessions := &mockSessions{}
		c, err := billing.NewCheckoutInitiator(sessions, "https://nextweekend.app/")
		require.NoError(t, err)

		want := billing.CheckoutParams{
			PriceID:                  "price_basic",
			Quantity:                 1,
			Mode:                     "subscription",
			PaymentMethodTypes:       []string{"card"},
			AllowPromotionCodes:      true,
			BillingAddressCollection: "required",
			CustomerCreation:         "always",
			SuccessURL:               "https://nextweekend.app/signup/complete?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:                "https://nextweekend.app/subscription",
		}
		sessions.On("CreateCheckoutSession", mock.Anything, want).
			Return(billing.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil).Once()

		sess, err := c.CreateCheckout(context.Background(), " price_basic ")
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.stripe.com/c/cs_1", sess.URL)
		sessions.AssertExpectations(t)
	})

	t.Run("blank price id skips provider", func(t *testing.T) {
		t.Parallel()
		sessions := &mockSessions{}
		c, err := billing.NewCheckoutInitiator(sessions, "https://nextweekend.app")
		require.NoError(t, err)

		_, err = c.CreateCheckout(context.Background(), "  ")
		assert.ErrorIs(t, err, billing.ErrInvalidRequest)
		sessions.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("provider failure", func(t *testing.T) {
		t.Parallel()
		sessions := &mockSessions{}
		sessions.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(billing.CheckoutSession{}, errors.New("no such price")).Once()
		c, err := billing.NewCheckoutInitiator(sessions, "https://nextweekend.app")
		require.NoError(t, err)

		_, err = c.CreateCheckout(context.Background(), "price_missing")
		assert.ErrorIs(t, err, billing.ErrProvider)
	})

	t.Run("session without url", func(t *testing.T) {
		t.Parallel()
		sessions := &mockSessions{}
		sessions.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(billing.CheckoutSession{ID: "cs_2"}, nil).Once()
		c, err := billing.NewCheckoutInitiator(sessions, "https://nextweekend.app")
		require.NoError(t, err)

		_, err = c.CreateCheckout(context.Background(), "price_basic")
		assert.ErrorIs(t, err, billing.ErrProvider)
	})
}

func TestNewCheckoutInitiatorRejectsBadSiteURL(t *testing.T) {
	t.Parallel()
	_, err := billing.NewCheckoutInitiator(&mockSessions{}, "not a url")
	assert.Error(t, err)
}

func TestPlansList(t *testing.T) {
	t.Parallel()
	plans := billing.Plans{Basic: "price_b", Pro: "price_p", Annual: "price_a"}.List()
	require.Len(t, plans, 3)
	assert.Equal(t, billing.Plan{Name: "pro", PriceID: "price_p"}, plans[1])
}
