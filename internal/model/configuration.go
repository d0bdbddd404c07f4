package model

import "github.com/shopspring/decimal"

// FilterConfiguration is one named, user-authored rule set. A nil threshold
// means "no constraint" for the filter that reads it. Owned by the external
// user store; the core only evaluates it.
type FilterConfiguration struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	MinimumScore             *decimal.Decimal `json:"minimum_score,omitempty"`
	MinimumIRR               *decimal.Decimal `json:"minimum_irr,omitempty"`
	MinimumMonthlyProfitRate *decimal.Decimal `json:"minimum_monthly_profit_rate,omitempty"`

	// Duration bounds are day-denominated; month-denominated record durations
	// are compared via their day-equivalents.
	MinimumDuration *int `json:"minimum_duration,omitempty"`
	MaximumDuration *int `json:"maximum_duration,omitempty"`

	IgnoreDicom bool `json:"ignore_dicom"`

	MinimumRequestedCredits      *int             `json:"minimum_requested_credits,omitempty"`
	MinimumRequestedAmount       *int64           `json:"minimum_requested_amount,omitempty"`
	MaximumAverageDaysDelinquent *int             `json:"maximum_average_days_delinquent,omitempty"`
	MinimumPaidInTimePercentage  *decimal.Decimal `json:"minimum_paid_in_time_percentage,omitempty"`

	TargetCreditTypes       []CreditType `json:"target_credit_types,omitempty"`
	MinimumInvestableAmount *int64       `json:"minimum_investable_amount,omitempty"`
}

// Valid reports whether the configuration's bounds are internally consistent.
// An invalid configuration matches zero records instead of raising.
func (c FilterConfiguration) Valid() bool {
	if c.MinimumDuration != nil && c.MaximumDuration != nil && *c.MinimumDuration > *c.MaximumDuration {
		return false
	}
	return true
}

// User is a consumer of the spotter, owning zero or more named filter
// configurations keyed by an opaque id.
type User struct {
	ID             string                         `json:"id"`
	Name           string                         `json:"name"`
	APIKey         string                         `json:"api_key"`
	Configurations map[string]FilterConfiguration `json:"configurations"`
}
