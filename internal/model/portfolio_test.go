package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func item(field, value string) PortfolioItem {
	return PortfolioItem{Field: field, Value: json.RawMessage(value)}
}

func TestNewBorrowerPortfolioDerivesPercentages(t *testing.T) {
	portfolio := NewBorrowerPortfolio([]PortfolioItem{
		item("cantidad_pagadas_plazo_normal_solicitante", "8"),
		item("cantidad_pagadas_en_mora_solicitante", "1"),
		item("cantidad_operaciones_activas_solicitante", "1"),
		item("cantidad_total_solicitante", "10"),
	})

	if got := portfolio[OnTime].Percentage; !got.Equal(decimal.NewFromFloat(0.8)) {
		t.Errorf("OnTime percentage = %v, want 0.8", got)
	}
	if got := portfolio[Cured].Percentage; !got.Equal(decimal.NewFromFloat(0.1)) {
		t.Errorf("Cured percentage = %v, want 0.1", got)
	}

	sum := decimal.Zero
	for _, status := range []PortfolioStatus{OnTime, Cured, Active, Overdue, Delinquent} {
		sum = sum.Add(portfolio[status].Percentage)
	}
	if !sum.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Derived percentages sum to %v, want 1", sum)
	}
}

func TestNewBorrowerPortfolioSuppliedPercentagesKept(t *testing.T) {
	portfolio := NewBorrowerPortfolio([]PortfolioItem{
		item("cantidad_pagadas_plazo_normal_solicitante", "8"),
		item("porcentaje_pagado_plazo_normal", "87"),
	})

	if got := portfolio[OnTime].Percentage; !got.Equal(decimal.NewFromFloat(0.87)) {
		t.Errorf("OnTime percentage = %v, want 0.87", got)
	}
}

func TestNewBorrowerPortfolioZeroTotal(t *testing.T) {
	portfolio := NewBorrowerPortfolio(nil)

	for _, status := range []PortfolioStatus{OnTime, Cured, Active, Overdue, Delinquent} {
		if !portfolio[status].Percentage.IsZero() {
			t.Errorf("Expected zero percentage for %s on empty history", status)
		}
	}
	if portfolio.TotalRequests() != 0 {
		t.Errorf("Expected zero total requests, got %d", portfolio.TotalRequests())
	}
}

func TestNewBorrowerPortfolioUnrecognizedFieldDropped(t *testing.T) {
	portfolio := NewBorrowerPortfolio([]PortfolioItem{
		item("campo_desconocido", "42"),
		item("cantidad_total_solicitante", "3"),
	})

	if portfolio.TotalRequests() != 3 {
		t.Errorf("Expected total of 3, got %d", portfolio.TotalRequests())
	}
}

func TestNewDebtorPortfolio(t *testing.T) {
	portfolio := NewDebtorPortfolio([]PortfolioItem{
		item("total_operaciones", "12"),
		item("monto_total", "5000000"),
		item("pagadas_tiempo", `"92%"`),
	})

	if portfolio.TotalRequests() != 12 {
		t.Errorf("TotalRequests = %d, want 12", portfolio.TotalRequests())
	}
	if !portfolio.TotalAmount().Equal(decimal.NewFromInt(5000000)) {
		t.Errorf("TotalAmount = %v, want 5000000", portfolio.TotalAmount())
	}
	if !portfolio.PaidInTimePercentage().Equal(decimal.NewFromFloat(0.92)) {
		t.Errorf("PaidInTimePercentage = %v, want 0.92", portfolio.PaidInTimePercentage())
	}
}
