package filters

import (
	"github.com/shopspring/decimal"

	"github.com/mfigueroa/spotter/internal/model"
)

// Filter is one evaluatable criterion. Apply reports whether the request
// passes; filters never mutate the request.
type Filter interface {
	Name() string
	Apply(request model.FundingRequest) bool
}

// MinimumScore rejects requests scored below the threshold.
type MinimumScore struct {
	threshold *decimal.Decimal
}

func (f MinimumScore) Name() string { return "minimum_score" }

func (f MinimumScore) Apply(request model.FundingRequest) bool {
	if f.threshold == nil {
		return true
	}
	return request.Score.GreaterThanOrEqual(*f.threshold)
}

// MinimumIRR rejects requests with an annualized return below the threshold.
type MinimumIRR struct {
	threshold *decimal.Decimal
}

func (f MinimumIRR) Name() string { return "minimum_irr" }

func (f MinimumIRR) Apply(request model.FundingRequest) bool {
	if f.threshold == nil {
		return true
	}
	return request.IRR.GreaterThanOrEqual(*f.threshold)
}

// MinimumMonthlyProfit rejects requests whose monthly profit rate falls below
// the threshold.
type MinimumMonthlyProfit struct {
	threshold *decimal.Decimal
}

func (f MinimumMonthlyProfit) Name() string { return "minimum_monthly_profit_rate" }

func (f MinimumMonthlyProfit) Apply(request model.FundingRequest) bool {
	if f.threshold == nil {
		return true
	}
	return request.MonthlyProfitRate().GreaterThanOrEqual(*f.threshold)
}

// MinimumDuration rejects requests shorter than the given number of days.
// Month-denominated durations are compared via their day-equivalents.
type MinimumDuration struct {
	days *int
}

func (f MinimumDuration) Name() string { return "minimum_duration" }

func (f MinimumDuration) Apply(request model.FundingRequest) bool {
	if f.days == nil {
		return true
	}
	return request.Duration.Days() >= *f.days
}

// MaximumDuration rejects requests longer than the given number of days.
type MaximumDuration struct {
	days *int
}

func (f MaximumDuration) Name() string { return "maximum_duration" }

func (f MaximumDuration) Apply(request model.FundingRequest) bool {
	if f.days == nil {
		return true
	}
	return request.Duration.Days() <= *f.days
}

// Dicom rejects requests where the borrower or any debtor has a known DICOM
// blemish. An unknown DICOM status passes.
type Dicom struct {
	ignore bool
}

func (f Dicom) Name() string { return "dicom" }

func (f Dicom) Apply(request model.FundingRequest) bool {
	if f.ignore {
		return true
	}
	if request.Borrower.Dicom != nil && *request.Borrower.Dicom {
		return false
	}
	for _, debtor := range request.Debtors {
		if debtor.Dicom != nil && *debtor.Dicom {
			return false
		}
	}
	return true
}

// MinimumCreditsRequested rejects borrowers with too short a track record.
type MinimumCreditsRequested struct {
	threshold *int
}

func (f MinimumCreditsRequested) Name() string { return "minimum_requested_credits" }

func (f MinimumCreditsRequested) Apply(request model.FundingRequest) bool {
	if f.threshold == nil {
		return true
	}
	return request.Borrower.Portfolio.TotalRequests() >= *f.threshold
}

// MinimumAmountRequested rejects borrowers whose historical requested amount
// falls below the threshold.
type MinimumAmountRequested struct {
	threshold *int64
}

func (f MinimumAmountRequested) Name() string { return "minimum_requested_amount" }

func (f MinimumAmountRequested) Apply(request model.FundingRequest) bool {
	if f.threshold == nil {
		return true
	}
	return request.Borrower.Portfolio.TotalAmount().
		GreaterThanOrEqual(decimal.NewFromInt(*f.threshold))
}

// MaximumAverageDaysDelinquent rejects borrowers with too long an average
// delinquency. Requests without the figure pass.
type MaximumAverageDaysDelinquent struct {
	threshold *int
}

func (f MaximumAverageDaysDelinquent) Name() string { return "maximum_average_days_delinquent" }

func (f MaximumAverageDaysDelinquent) Apply(request model.FundingRequest) bool {
	if f.threshold == nil || request.Borrower.AverageDaysDelinquent == nil {
		return true
	}
	return *request.Borrower.AverageDaysDelinquent <= *f.threshold
}

// MinimumPaidInTime rejects borrowers whose on-time repayment share falls
// below the threshold. Borrowers without history pass.
type MinimumPaidInTime struct {
	threshold *decimal.Decimal
}

func (f MinimumPaidInTime) Name() string { return "minimum_paid_in_time_percentage" }

func (f MinimumPaidInTime) Apply(request model.FundingRequest) bool {
	if f.threshold == nil {
		return true
	}
	if request.Borrower.Portfolio.TotalRequests() == 0 {
		return true
	}
	paidInTime := request.Borrower.Portfolio.PaidInTimePercentage()
	if paidInTime.IsZero() {
		return true
	}
	return paidInTime.GreaterThanOrEqual(*f.threshold)
}

// CreditTypes rejects requests whose credit type is outside the allow-list.
// An empty list allows everything.
type CreditTypes struct {
	allowed []model.CreditType
}

func (f CreditTypes) Name() string { return "target_credit_types" }

func (f CreditTypes) Apply(request model.FundingRequest) bool {
	if len(f.allowed) == 0 {
		return true
	}
	for _, creditType := range f.allowed {
		if request.CreditType == creditType {
			return true
		}
	}
	return false
}

// MinimumInvestable rejects requests without enough room left to invest.
type MinimumInvestable struct {
	threshold *int64
}

func (f MinimumInvestable) Name() string { return "minimum_investable_amount" }

func (f MinimumInvestable) Apply(request model.FundingRequest) bool {
	if f.threshold == nil {
		return true
	}
	return request.MaximumInvestment >= *f.threshold
}

// NewChain assembles the full criterion chain for one configuration, in a
// fixed evaluation order. Filters with nil thresholds pass everything, so the
// chain is always complete.
func NewChain(configuration model.FilterConfiguration) []Filter {
	return []Filter{
		MinimumScore{configuration.MinimumScore},
		MinimumIRR{configuration.MinimumIRR},
		MinimumMonthlyProfit{configuration.MinimumMonthlyProfitRate},
		MinimumDuration{configuration.MinimumDuration},
		MaximumDuration{configuration.MaximumDuration},
		Dicom{configuration.IgnoreDicom},
		MinimumCreditsRequested{configuration.MinimumRequestedCredits},
		MinimumAmountRequested{configuration.MinimumRequestedAmount},
		MaximumAverageDaysDelinquent{configuration.MaximumAverageDaysDelinquent},
		MinimumPaidInTime{configuration.MinimumPaidInTimePercentage},
		CreditTypes{configuration.TargetCreditTypes},
		MinimumInvestable{configuration.MinimumInvestableAmount},
	}
}
