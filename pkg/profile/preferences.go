package profile

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

type TimePreference string

const (
	TimeMorning   TimePreference = "morning"
	TimeAfternoon TimePreference = "afternoon"
	TimeEvening   TimePreference = "evening"
	TimeBoth      TimePreference = "both"
)

const DefaultRadius = 10

// ActivityTypes lists the selectable activity categories.
var ActivityTypes = []string{
	"Outdoor Adventures",
	"Cultural Events",
	"Food & Dining",
	"Sports & Recreation",
	"Arts & Crafts",
	"Music & Entertainment",
	"Relaxation & Wellness",
	"Shopping & Markets",
}

// SpecialConsiderations lists the selectable accessibility and comfort needs.
var SpecialConsiderations = []string{
	"Wheelchair Accessible",
	"Pet Friendly",
	"Vegetarian/Vegan Options",
	"Family Friendly",
	"Quiet Environment",
	"Indoor Activities",
	"Public Transport Access",
}

// Preferences is stored as a JSON document on the profile.
type Preferences struct {
	Location              string         `json:"location" validate:"max=200"`
	Radius                int            `json:"radius" validate:"gte=1,lte=200"`
	Budget                Budget         `json:"budget" validate:"oneof=low medium high"`
	TimePreference        TimePreference `json:"timePreference" validate:"oneof=morning afternoon evening both"`
	ActivityTypes         []string       `json:"activityTypes" validate:"max=8,unique,dive,activity_type"`
	SpecialConsiderations []string       `json:"specialConsiderations" validate:"max=7,unique,dive,consideration"`
}

// IsEmpty reports whether the user never saved preferences.
func (p Preferences) IsEmpty() bool {
	return p.Location == "" && len(p.ActivityTypes) == 0
}

// WithDefaults fills unset scalar fields with the form defaults.
func (p Preferences) WithDefaults() Preferences {
	if p.Radius == 0 {
		p.Radius = DefaultRadius
	}
	if p.Budget == "" {
		p.Budget = BudgetMedium
	}
	if p.TimePreference == "" {
		p.TimePreference = TimeBoth
	}
	if p.ActivityTypes == nil {
		p.ActivityTypes = []string{}
	}
	if p.SpecialConsiderations == nil {
		p.SpecialConsiderations = []string{}
	}
	return p
}

// RegisterValidations adds the activity_type and consideration tags used by Preferences.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("activity_type", func(fl validator.FieldLevel) bool {
		return slices.Contains(ActivityTypes, fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("consideration", func(fl validator.FieldLevel) bool {
		return slices.Contains(SpecialConsiderations, fl.Field().String())
	})
}
