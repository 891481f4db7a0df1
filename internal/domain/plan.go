package domain

// BillingCycle is the cadence at which a plan is charged.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "MONTHLY"
	BillingCycleYearly  BillingCycle = "YEARLY"
)

// Valid reports whether the cycle is one of the two known cadences.
func (b BillingCycle) Valid() bool {
	return b == BillingCycleMonthly || b == BillingCycleYearly
}

// Plan is an immutable catalog entry fetched from the backend.
type Plan struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	PriceMonthly         float64  `json:"priceMonthly"`
	PriceYearly          float64  `json:"priceYearly"`
	Features             []string `json:"features"`
	StripePriceIDMonthly string   `json:"stripePriceIdMonthly,omitempty"`
	StripePriceIDYearly  string   `json:"stripePriceIdYearly,omitempty"`
	IsPopular            bool     `json:"isPopular"`
}

// Price returns the plan price for the given cycle.
func (p *Plan) Price(cycle BillingCycle) float64 {
	if cycle == BillingCycleYearly {
		return p.PriceYearly
	}
	return p.PriceMonthly
}

// SelectedPlan is the user's in-progress plan choice. It is created when a
// pricing card is clicked and must survive the signup/verification detour,
// so it is persisted per browser session. It carries a plan snapshot so the
// checkout page can render even when the catalog cache is cold.
type SelectedPlan struct {
	PlanID       string       `json:"planId"`
	BillingCycle BillingCycle `json:"billingCycle"`
	Plan         *Plan        `json:"plan,omitempty"`
}
