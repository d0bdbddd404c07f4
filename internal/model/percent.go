package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Percent decodes upstream percentage fields, which arrive either as numbers
// scaled by 100 (e.g. 87 meaning 87%) or as strings with a trailing "%".
// The decoded value is the fraction in [0,1], unrounded; callers round to the
// field's canonical precision.
type Percent struct {
	decimal.Decimal
}

// UnmarshalJSON detects the upstream format and normalizes to a fraction.
func (p *Percent) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(strings.Trim(string(data), `"`))
	if raw == "" || raw == "null" {
		p.Decimal = decimal.Zero
		return nil
	}

	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid percentage %q: %w", raw, err)
	}

	p.Decimal = value.Div(decimal.NewFromInt(100))
	return nil
}

// MarshalJSON emits the normalized fraction.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}
