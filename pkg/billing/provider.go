package billing

// Provider is the payment provider surface the service depends on.
type Provider interface {
	CustomerDirectory
	SessionCreator
}

// Plans maps the public plan names to provider price ids.
type Plans struct {
	Basic  string `env:"STRIPE_PRICE_BASIC" envDefault:"price_1QhlU1GHxkoB2DhKxeC4PI7F"`
	Pro    string `env:"STRIPE_PRICE_PRO" envDefault:"price_1Qhm9AGHxkoB2DhKyS9zFkeL"`
	Annual string `env:"STRIPE_PRICE_ANNUAL" envDefault:"price_1Qhm9AGHxkoB2DhKMrXakpbl"`
}

// Plan is a purchasable subscription offer.
type Plan struct {
	Name    string `json:"name"`
	PriceID string `json:"priceId"`
}

func (p Plans) List() []Plan {
	return []Plan{
		{Name: "basic", PriceID: p.Basic},
		{Name: "pro", PriceID: p.Pro},
		{Name: "annual", PriceID: p.Annual},
	}
}
