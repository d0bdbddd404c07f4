package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// PortfolioStatus is one of the closed set of repayment-history categories.
type PortfolioStatus string

const (
	OnTime      PortfolioStatus = "ON_TIME"
	Cured       PortfolioStatus = "CURED"
	Active      PortfolioStatus = "ACTIVE"
	Overdue     PortfolioStatus = "OVERDUE"
	Delinquent  PortfolioStatus = "DELINQUENT"
	Paid        PortfolioStatus = "PAID"
	Total       PortfolioStatus = "TOTAL"
	Outstanding PortfolioStatus = "OUTSTANDING"
)

// performanceStatuses are the categories whose percentages describe repayment
// performance and must sum to 1 when derived from counts.
var performanceStatuses = []PortfolioStatus{OnTime, Cured, Active, Overdue, Delinquent}

// PortfolioEntry carries the figures for one portfolio category.
// Zero values keep arithmetic defined when a source omits a category.
type PortfolioEntry struct {
	Count      int             `json:"count"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Portfolio is a borrower's or debtor's repayment history broken into the
// fixed category set. Lookups of absent categories yield zeroed entries.
type Portfolio map[PortfolioStatus]PortfolioEntry

// PortfolioItem is the upstream wire shape of one portfolio figure: a
// source-specific field name plus a value whose meaning depends on the field.
type PortfolioItem struct {
	Field string          `json:"tipo"`
	Value json.RawMessage `json:"cantidad"`
}

type portfolioKind int

const (
	kindCount portfolioKind = iota
	kindAmount
	kindPercentage
)

type portfolioAlias struct {
	status PortfolioStatus
	kind   portfolioKind
}

// borrowerPortfolioAliases resolves the borrower-scheme source field names.
// Unrecognized fields are dropped; the category set is closed.
var borrowerPortfolioAliases = map[string]portfolioAlias{
	"cantidad_pagadas_plazo_normal_solicitante":       {OnTime, kindCount},
	"monto_pagadas_plazo_normal_solicitante":          {OnTime, kindAmount},
	"porcentaje_pagado_plazo_normal":                  {OnTime, kindPercentage},
	"cantidad_pagadas_en_mora_solicitante":            {Cured, kindCount},
	"monto_pagadas_en_mora_solicitante":               {Cured, kindAmount},
	"porcentaje_pagado_mora":                          {Cured, kindPercentage},
	"cantidad_operaciones_activas_solicitante":        {Active, kindCount},
	"monto_operaciones_activas_solicitante":           {Active, kindAmount},
	"porcentaje_monto_activo":                         {Active, kindPercentage},
	"cantidad_operaciones_mora_menor_30_solicitante":  {Overdue, kindCount},
	"monto_operaciones_mora_menor_30_solicitante":     {Overdue, kindAmount},
	"porcentaje_en_mora_menor_30":                     {Overdue, kindPercentage},
	"cantidad_operaciones_mora_mayor_30_solicitante":  {Delinquent, kindCount},
	"monto_operaciones_mora_mayor_30_solicitante":     {Delinquent, kindAmount},
	"porcentaje_en_mora_mayor_30":                     {Delinquent, kindPercentage},
	"cantidad_pagadas_solicitante":                    {Paid, kindCount},
	"monto_pagadas_solicitante":                       {Paid, kindAmount},
	"cantidad_total_solicitante":                      {Total, kindCount},
	"monto_total_solicitante":                         {Total, kindAmount},
	"cantidad_vigentes_solicitante":                   {Outstanding, kindCount},
	"monto_vigentes_solicitante":                      {Outstanding, kindAmount},
}

// debtorPortfolioAliases resolves the debtor-scheme source field names.
var debtorPortfolioAliases = map[string]portfolioAlias{
	"activas":           {Active, kindCount},
	"mora":              {Delinquent, kindCount},
	"completadas":       {Paid, kindCount},
	"pagadas_tiempo":    {OnTime, kindPercentage},
	"monto_total":       {Total, kindAmount},
	"total_operaciones": {Total, kindCount},
}

// NewBorrowerPortfolio builds a Portfolio from borrower-scheme source items.
func NewBorrowerPortfolio(items []PortfolioItem) Portfolio {
	return newPortfolio(items, borrowerPortfolioAliases)
}

// NewDebtorPortfolio builds a Portfolio from debtor-scheme source items.
func NewDebtorPortfolio(items []PortfolioItem) Portfolio {
	return newPortfolio(items, debtorPortfolioAliases)
}

func newPortfolio(items []PortfolioItem, aliases map[string]portfolioAlias) Portfolio {
	portfolio := make(Portfolio, len(performanceStatuses)+3)

	for _, item := range items {
		alias, ok := aliases[strings.TrimSpace(item.Field)]
		if !ok {
			continue
		}

		entry := portfolio[alias.status]
		switch alias.kind {
		case kindCount:
			entry.Count = int(parseRawNumber(item.Value).IntPart())
		case kindAmount:
			entry.Amount = parseRawNumber(item.Value)
		case kindPercentage:
			entry.Percentage = parseRawPercent(item.Value)
		}
		portfolio[alias.status] = entry
	}

	portfolio.derivePercentages()
	return portfolio
}

// derivePercentages fills performance-category percentages from counts when
// the source supplied none: count divided by the summed performance count,
// rounded to 3 places. A zero total leaves all percentages at zero.
func (p Portfolio) derivePercentages() {
	total := 0
	for _, status := range performanceStatuses {
		entry := p[status]
		if !entry.Percentage.IsZero() {
			return
		}
		total += entry.Count
	}
	if total == 0 {
		return
	}

	totalDec := decimal.NewFromInt(int64(total))
	for _, status := range performanceStatuses {
		entry := p[status]
		entry.Percentage = decimal.NewFromInt(int64(entry.Count)).Div(totalDec).Round(3)
		p[status] = entry
	}
}

// TotalRequests is the total number of credits the party has requested.
func (p Portfolio) TotalRequests() int {
	return p[Total].Count
}

// TotalAmount is the total amount of money the party has requested.
func (p Portfolio) TotalAmount() decimal.Decimal {
	return p[Total].Amount
}

// PaidInTimePercentage is the share of requests the party paid on time.
func (p Portfolio) PaidInTimePercentage() decimal.Decimal {
	return p[OnTime].Percentage
}

// parseRawNumber parses a raw JSON scalar (number or quoted number) into a
// decimal, treating malformed or absent values as zero.
func parseRawNumber(raw json.RawMessage) decimal.Decimal {
	text := strings.TrimSpace(strings.Trim(string(raw), `"`))
	if text == "" || text == "null" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return value
}

// parseRawPercent parses a supplied percentage ("12%" or 12) into a fraction
// rounded to 3 places.
func parseRawPercent(raw json.RawMessage) decimal.Decimal {
	text := strings.TrimSpace(strings.Trim(string(raw), `"`))
	text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
	if text == "" || text == "null" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return value.Div(decimal.NewFromInt(100)).Round(3)
}
