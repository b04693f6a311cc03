// Package recommend filters the activity catalog against saved preferences.
package recommend

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/nextweekend/nextweekend/pkg/profile"
)

// DefaultCount is the number of recommendations returned when n <= 0.
const DefaultCount = 3

var ErrNoPreferences = errors.New("no preferences saved")

// Recommendation is an activity suggestion for a user.
type Recommendation struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	TimeOfDay     string `json:"timeOfDay"`
	EstimatedCost string `json:"estimatedCost"`
	Location      string `json:"location"`
	ImageURL      string `json:"imageUrl"`
}

var digits = regexp.MustCompile(`\d+`)

// budgetCeiling is the highest upper cost bound allowed per budget; -1 means unlimited.
var budgetCeiling = map[profile.Budget]int{
	profile.BudgetLow:    50,
	profile.BudgetMedium: 150,
	profile.BudgetHigh:   -1,
}

// Filter keeps activities in the preferred categories that match the time
// preference and fit the budget.
func Filter(catalog []Category, prefs profile.Preferences) []Recommendation {
	prefs = prefs.WithDefaults()
	var out []Recommendation
	for _, cat := range catalog {
		if !slices.Contains(prefs.ActivityTypes, cat.Type) {
			continue
		}
		for _, a := range cat.Activities {
			if !matchesTime(a.TimeOfDay, prefs.TimePreference) || !withinBudget(a.EstimatedCost, prefs.Budget) {
				continue
			}
			out = append(out, Recommendation{
				Title:         a.Title,
				Description:   a.Description,
				Type:          cat.Type,
				TimeOfDay:     a.TimeOfDay,
				EstimatedCost: a.EstimatedCost,
				Location:      prefs.Location,
				ImageURL:      a.ImageURL,
			})
		}
	}
	return out
}

// Generate returns up to n shuffled matches from DefaultCatalog, or the
// fallback list when nothing matches. A nil rng uses the global source.
func Generate(prefs profile.Preferences, rng *rand.Rand, n int) ([]Recommendation, error) {
	if prefs.IsEmpty() {
		return nil, ErrNoPreferences
	}
	if n <= 0 {
		n = DefaultCount
	}

	recs := Filter(DefaultCatalog, prefs)
	if len(recs) == 0 {
		recs = slices.Clone(fallback)
		for i := range recs {
			recs[i].Location = prefs.Location
		}
	}

	swap := func(i, j int) { recs[i], recs[j] = recs[j], recs[i] }
	if rng != nil {
		rng.Shuffle(len(recs), swap)
	} else {
		rand.Shuffle(len(recs), swap)
	}
	return recs[:min(n, len(recs))], nil
}

func matchesTime(timeOfDay string, pref profile.TimePreference) bool {
	if pref == profile.TimeBoth {
		return true
	}
	return strings.Contains(strings.ToLower(timeOfDay), strings.ToLower(string(pref)))
}

func withinBudget(cost string, budget profile.Budget) bool {
	ceiling, ok := budgetCeiling[budget]
	if !ok {
		return false
	}
	return ceiling < 0 || upperBound(cost) <= ceiling
}

// upperBound returns the last number in a cost label; "Free" is 0.
func upperBound(cost string) int {
	nums := digits.FindAllString(cost, -1)
	if len(nums) == 0 {
		return 0
	}
	n, err := strconv.Atoi(nums[len(nums)-1])
	if err != nil {
		return 0
	}
	return n
}
