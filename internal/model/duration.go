package model

import (
	"fmt"
	"strings"
)

// DurationUnit is the unit a funding request duration is denominated in.
type DurationUnit string

const (
	Day   DurationUnit = "DAY"
	Month DurationUnit = "MONTH"
)

// daysPerMonth is the fixed day-equivalence used when comparing month-denominated
// durations against day-denominated thresholds.
const daysPerMonth = 30

// Duration is the term of a funding request.
type Duration struct {
	Unit  DurationUnit `json:"unit"`
	Value int          `json:"value"`
}

// NewDuration builds a Duration from a source unit code and value.
// Unknown units fail with a MappingError; non-positive values are invalid.
func NewDuration(unit string, value int) (Duration, error) {
	var parsed DurationUnit
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "DAY", "DAYS":
		parsed = Day
	case "MONTH", "MONTHS":
		parsed = Month
	default:
		return Duration{}, &MappingError{Table: "duration unit", Code: unit}
	}

	if value <= 0 {
		return Duration{}, fmt.Errorf("invalid duration value %d", value)
	}

	return Duration{Unit: parsed, Value: value}, nil
}

// Days returns the duration expressed in day-equivalents.
func (d Duration) Days() int {
	if d.Unit == Month {
		return d.Value * daysPerMonth
	}
	return d.Value
}

func (d Duration) String() string {
	return fmt.Sprintf("%d %s", d.Value, d.Unit)
}
