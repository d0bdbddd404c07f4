package model

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// FundingRequest is one published, investable debt instrument, assembled from
// the listing, detail and supplemental sources. Immutable once exported.
type FundingRequest struct {
	ID                  int64           `json:"id"`
	Score               decimal.Decimal `json:"score"`
	IRR                 decimal.Decimal `json:"irr"`
	Currency            string          `json:"currency"`
	Amount              int64           `json:"amount"`
	CreditType          CreditType      `json:"credit_type"`
	Duration            Duration        `json:"duration"`
	RaisedPercentage    decimal.Decimal `json:"raised_percentage"`
	MaximumInvestment   int64           `json:"maximum_investment"`
	SupportingDocuments []string        `json:"supporting_documents"`
	Simulation          Simulation      `json:"simulation"`
	Borrower            Borrower        `json:"borrower"`
	Debtors             []Debtor        `json:"debtors"`
}

// IsCompleted reports whether the request is fully funded and therefore no
// longer investable.
func (f FundingRequest) IsCompleted() bool {
	return f.RaisedPercentage.Equal(decimal.NewFromInt(1))
}

// ProfitRate is the profit over the full duration implied by the annualized
// IRR: (1 + irr/100) ^ (days/365) - 1.
func (f FundingRequest) ProfitRate() decimal.Decimal {
	days := f.Duration.Days()
	if days <= 0 {
		return decimal.Zero
	}
	irr, _ := f.IRR.Float64()
	rate := math.Pow(1+irr/100, float64(days)/365) - 1
	return decimal.NewFromFloat(rate)
}

// MonthlyProfitRate is the canonical ranking key: the duration profit rate
// scaled to a 30-day month, rounded to 4 places.
func (f FundingRequest) MonthlyProfitRate() decimal.Decimal {
	days := f.Duration.Days()
	if days <= 0 {
		return decimal.Zero
	}
	return f.ProfitRate().
		Mul(decimal.NewFromInt(daysPerMonth)).
		Div(decimal.NewFromInt(int64(days))).
		Round(4)
}

// SortByMonthlyProfitRate stably sorts requests by monthly profit rate,
// highest first. This ordering is user-visible.
func SortByMonthlyProfitRate(requests []FundingRequest) {
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].MonthlyProfitRate().GreaterThan(requests[j].MonthlyProfitRate())
	})
}
