package model

import (
	"fmt"
	"strings"
)

// CreditType is the canonical credit category a funding request belongs to.
type CreditType string

const (
	WorkingCapital  CreditType = "WORKING_CAPITAL"
	Factoring       CreditType = "FACTORING"
	BulletLoan      CreditType = "BULLET_LOAN"
	TreasurySubsidy CreditType = "TREASURY_SUBSIDY"
	HUDSubsidy      CreditType = "HUD_SUBSIDY"
)

// MappingError signals that a source-provided enumerated code has no entry in
// a canonical translation table. It is a data-integrity defect: the affected
// record must be excluded, never silently defaulted.
type MappingError struct {
	Table string
	Code  string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("no %s mapping for source code %q", e.Table, e.Code)
}

// creditTypeTranslations maps every known source-specific code, across the
// historical vocabularies the marketplace has used, to one canonical type.
var creditTypeTranslations = map[string]CreditType{
	"simple":               WorkingCapital,
	"one_shot":             WorkingCapital,
	"capital_trabajo":      WorkingCapital,
	"credito_contrato":     WorkingCapital,
	"short_term_capital":   WorkingCapital,
	"credito_orden_compra": WorkingCapital,
	"bullet":               BulletLoan,
	"balloon":              BulletLoan,
	"invoice":              Factoring,
	"factura_futura":       Factoring,
	"anticipo_factura":     Factoring,
	"irrigation":           TreasurySubsidy,
	"anticipo_riego":       TreasurySubsidy,
	"anticipo_serviu":      HUDSubsidy,
}

// TranslateCreditType resolves a source credit-type code to its canonical
// category. Unknown codes fail with a MappingError.
func TranslateCreditType(code string) (CreditType, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	creditType, ok := creditTypeTranslations[normalized]
	if !ok {
		return "", &MappingError{Table: "credit type", Code: code}
	}
	return creditType, nil
}
