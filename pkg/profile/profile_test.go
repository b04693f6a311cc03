package profile_test

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextweekend/nextweekend/pkg/profile"
)

func strPtr(s string) *string { return &s }

func TestHasAccess(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		status    *string
		periodEnd *time.Time
		want      bool
	}{
		{"never subscribed", nil, nil, false},
		{"active future", strPtr("active"), &future, true},
		{"trialing future", strPtr("trialing"), &future, true},
		{"active expired", strPtr("active"), &past, false},
		{"past due", strPtr("past_due"), &future, false},
		{"canceled", strPtr("canceled"), &future, false},
		{"status without period", strPtr("active"), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := profile.Profile{SubscriptionStatus: tt.status, SubscriptionPeriodEnd: tt.periodEnd}
			assert.Equal(t, tt.want, p.HasAccess(now))
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	p := profile.New("u1", "  Alice@Example.COM ", " Alice ", now)

	assert.Equal(t, "alice@example.com", p.Email)
	assert.Equal(t, "Alice", p.FullName)
	assert.Equal(t, now.UTC(), p.CreatedAt)
	assert.Nil(t, p.StripeCustomerID)
	assert.True(t, p.Preferences.IsEmpty())
}

func TestApplyAndLinkedToOther(t *testing.T) {
	t.Parallel()
	var p profile.Profile
	assert.False(t, p.LinkedToOther("cus_1"))

	end := time.Unix(1700000000, 0)
	p.Apply(profile.SubscriptionFields{
		CustomerID: "cus_1", SubscriptionID: "sub_1", Status: "active", Tier: "pro",
		PeriodEnd: end, UpdatedAt: end,
	})
	require.NotNil(t, p.StripeCustomerID)
	assert.Equal(t, "cus_1", *p.StripeCustomerID)
	assert.Equal(t, "2023-11-14T22:13:20Z", p.SubscriptionPeriodEnd.Format(time.RFC3339))
	assert.False(t, p.LinkedToOther("cus_1"))
	assert.True(t, p.LinkedToOther("cus_2"))
}

func TestPreferences(t *testing.T) {
	t.Parallel()

	v := validator.New()
	require.NoError(t, profile.RegisterValidations(v))

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		p := profile.Preferences{}.WithDefaults()
		assert.Equal(t, 10, p.Radius)
		assert.Equal(t, profile.BudgetMedium, p.Budget)
		assert.Equal(t, profile.TimeBoth, p.TimePreference)
		assert.NotNil(t, p.ActivityTypes)
		require.NoError(t, v.Struct(p))
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		p := profile.Preferences{
			Location:              "Austin, TX",
			Radius:                25,
			Budget:                profile.BudgetLow,
			TimePreference:        profile.TimeEvening,
			ActivityTypes:         []string{"Food & Dining", "Cultural Events"},
			SpecialConsiderations: []string{"Pet Friendly"},
		}
		assert.NoError(t, v.Struct(p))
		assert.False(t, p.IsEmpty())
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		tests := []profile.Preferences{
			{Radius: 0, Budget: "low", TimePreference: "both"},
			{Radius: 10, Budget: "lavish", TimePreference: "both"},
			{Radius: 10, Budget: "low", TimePreference: "night"},
			{Radius: 10, Budget: "low", TimePreference: "both", ActivityTypes: []string{"Skydiving"}},
			{Radius: 10, Budget: "low", TimePreference: "both", ActivityTypes: []string{"Food & Dining", "Food & Dining"}},
			{Radius: 10, Budget: "low", TimePreference: "both", SpecialConsiderations: []string{"Valet"}},
		}
		for _, p := range tests {
			assert.Error(t, v.Struct(p), "%+v", p)
		}
	})
}
