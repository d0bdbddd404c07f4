package cumplo

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mfigueroa/spotter/internal/model"
	"github.com/mfigueroa/spotter/utils"
)

// errNotInvestable marks merged records without room for new investment.
var errNotInvestable = errors.New("funding request has no investable amount")

// buildFundingRequest merges the three per-item payloads into one canonical
// record. Listing fields are authoritative for the summary terms; the detail
// payload wins for portfolio and simulation data; supplemental values fill
// borrower DICOM, delinquency and sector fields the canonical source lacks.
func buildFundingRequest(
	item ListingItem,
	detail *DetailPayload,
	sim *SimulationPayload,
	supp *SupplementalData,
) (*model.FundingRequest, error) {
	creditCode := detail.CreditTypeCode
	if creditCode == "" {
		creditCode = item.CreditTypeCode
	}
	creditType, err := model.TranslateCreditType(creditCode)
	if err != nil {
		return nil, err
	}

	duration, err := model.NewDuration(item.DurationUnit, item.DurationValue)
	if err != nil {
		return nil, err
	}

	if detail.MaximumInvestment == 0 {
		return nil, errNotInvestable
	}

	borrowerDicom, debtorDicom := model.InferDicom(detail.BorrowerDescription, detail.DebtorDescription)

	borrower := model.Borrower{
		ID:             item.BorrowerID,
		Name:           model.CleanTextField(detail.Borrower.Name),
		EconomicSector: model.CleanSectorField(detail.Borrower.EconomicSector),
		Description:    model.CleanTextField(detail.Borrower.Description),
		Dicom:          borrowerDicom,
		Portfolio:      model.NewBorrowerPortfolio(detail.Borrower.History),
	}
	if first := parseUpstreamTime(detail.Borrower.FirstOperation); !first.IsZero() {
		borrower.FirstAppearance = &first
	}

	applySupplemental(&borrower, supp)

	debtors := make([]model.Debtor, 0, len(detail.Debtors))
	for _, raw := range detail.Debtors {
		debtor := model.Debtor{
			Name:        model.CleanTextField(raw.Name),
			Sector:      model.CleanSectorField(raw.Sector),
			Description: model.CleanTextField(raw.Description),
			Dicom:       debtorDicom,
			Amount:      raw.Amount,
			Share:       raw.Share.Decimal,
			Portfolio:   model.NewDebtorPortfolio(raw.History),
		}
		if first := parseUpstreamTime(raw.FirstOperation); !first.IsZero() {
			debtor.FirstAppearance = &first
		}
		debtors = append(debtors, debtor)
	}

	documents := make([]string, 0, len(detail.SupportingDocuments))
	for _, document := range detail.SupportingDocuments {
		if cleaned := utils.CleanText(document); cleaned != "" {
			documents = append(documents, cleaned)
		}
	}
	if len(documents) == 0 {
		documents = supp.SupportingDocuments
	}

	return &model.FundingRequest{
		ID:                  item.ID,
		Score:               item.Score,
		IRR:                 item.IRR,
		Currency:            item.Currency,
		Amount:              detail.Amount,
		CreditType:          creditType,
		Duration:            duration,
		RaisedPercentage:    item.RaisedPercentage,
		MaximumInvestment:   detail.MaximumInvestment,
		SupportingDocuments: documents,
		Simulation:          sim.ToModel(),
		Borrower:            borrower,
		Debtors:             debtors,
	}, nil
}

// applySupplemental fills borrower fields the canonical source left empty
// with values scraped from the rendered page.
func applySupplemental(borrower *model.Borrower, supp *SupplementalData) {
	borrower.AverageDaysDelinquent = supp.AverageDaysDelinquent

	if borrower.Dicom == nil && supp.Dicom {
		dicom := true
		borrower.Dicom = &dicom
	}
	if borrower.EconomicSector == nil {
		borrower.EconomicSector = supp.EconomicSector
	}

	// The scraped credit-history figures only matter when the detail payload
	// carried no portfolio at all.
	if borrower.Portfolio.TotalRequests() > 0 {
		return
	}
	if supp.PaidRequestsCount != nil {
		entry := borrower.Portfolio[model.Paid]
		entry.Count = *supp.PaidRequestsCount
		borrower.Portfolio[model.Paid] = entry

		total := borrower.Portfolio[model.Total]
		total.Count = *supp.PaidRequestsCount
		borrower.Portfolio[model.Total] = total
	}
	if supp.PaidInTimePercentage != nil {
		entry := borrower.Portfolio[model.OnTime]
		entry.Percentage = *supp.PaidInTimePercentage
		borrower.Portfolio[model.OnTime] = entry
	}
	if supp.TotalAmountRequested != nil {
		entry := borrower.Portfolio[model.Total]
		entry.Amount = decimal.NewFromInt(*supp.TotalAmountRequested)
		borrower.Portfolio[model.Total] = entry
	}
}
