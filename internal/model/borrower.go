package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfigueroa/spotter/utils"
)

// Borrower is the credit-seeking party behind a funding request.
type Borrower struct {
	ID                    *int64          `json:"id,omitempty"`
	Name                  *string         `json:"name,omitempty"`
	EconomicSector        *string         `json:"economic_sector,omitempty"`
	Description           *string         `json:"description,omitempty"`
	Dicom                 *bool           `json:"dicom,omitempty"`
	AverageDaysDelinquent *int            `json:"average_days_delinquent,omitempty"`
	FirstAppearance       *time.Time      `json:"first_appearance,omitempty"`
	Portfolio             Portfolio       `json:"portfolio"`
}

// Debtor is a downstream party ultimately obligated to pay the receivable
// backing a funding request.
type Debtor struct {
	Name            *string         `json:"name,omitempty"`
	Sector          *string         `json:"sector,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Dicom           *bool           `json:"dicom,omitempty"`
	Amount          int64           `json:"amount"`
	Share           decimal.Decimal `json:"share"`
	FirstAppearance *time.Time      `json:"first_appearance,omitempty"`
	Portfolio       Portfolio       `json:"portfolio"`
}

// CleanTextField cleans a free-text source value; an empty result is absent.
func CleanTextField(value string) *string {
	cleaned := utils.CleanText(value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// CleanSectorField cleans an economic-sector value; the literal "NULL" the
// upstream uses for unknown sectors is treated as absent.
func CleanSectorField(value string) *string {
	cleaned := utils.CleanText(value)
	if cleaned == "" || cleaned == "NULL" {
		return nil
	}
	return &cleaned
}
