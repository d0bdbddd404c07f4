package cumplo

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mfigueroa/spotter/internal/model"
)

func TestBuildFundingRequestPrefersDetailCreditCode(t *testing.T) {
	item := listingItem(7, 20)
	item.CreditTypeCode = "leasing"
	detail := &DetailPayload{ID: 7, Amount: 5_000_000, CreditTypeCode: "anticipo_factura", MaximumInvestment: 100_000}

	request, err := buildFundingRequest(item, detail, &SimulationPayload{}, &SupplementalData{})
	if err != nil {
		t.Fatalf("buildFundingRequest returned error: %v", err)
	}

	if request.CreditType != model.Factoring {
		t.Errorf("Expected FACTORING from detail code, got %v", request.CreditType)
	}
	if request.ID != 7 || request.Amount != 5_000_000 {
		t.Errorf("Listing id or detail amount lost: %+v", request)
	}
}

func TestBuildFundingRequestSupplementalFillsEmptyHistory(t *testing.T) {
	paid := 12
	paidInTime := decimal.NewFromFloat(0.92)
	totalAmount := int64(9_000_000)
	delinquent := 3
	sector := "CONSTRUCCION"

	supp := &SupplementalData{
		AverageDaysDelinquent: &delinquent,
		EconomicSector:        &sector,
		PaidRequestsCount:     &paid,
		PaidInTimePercentage:  &paidInTime,
		TotalAmountRequested:  &totalAmount,
	}
	detail := &DetailPayload{ID: 1, MaximumInvestment: 100_000}

	request, err := buildFundingRequest(listingItem(1, 20), detail, &SimulationPayload{}, supp)
	if err != nil {
		t.Fatalf("buildFundingRequest returned error: %v", err)
	}

	borrower := request.Borrower
	if borrower.AverageDaysDelinquent == nil || *borrower.AverageDaysDelinquent != 3 {
		t.Errorf("Expected average days delinquent filled, got %v", borrower.AverageDaysDelinquent)
	}
	if borrower.EconomicSector == nil || *borrower.EconomicSector != "CONSTRUCCION" {
		t.Errorf("Expected sector filled, got %v", borrower.EconomicSector)
	}
	if borrower.Portfolio.TotalRequests() != 12 {
		t.Errorf("Expected scraped paid count in portfolio, got %d", borrower.Portfolio.TotalRequests())
	}
	if !borrower.Portfolio.PaidInTimePercentage().Equal(paidInTime) {
		t.Errorf("Expected scraped paid-in-time share, got %v", borrower.Portfolio.PaidInTimePercentage())
	}
	if !borrower.Portfolio.TotalAmount().Equal(decimal.NewFromInt(totalAmount)) {
		t.Errorf("Expected scraped total amount, got %v", borrower.Portfolio.TotalAmount())
	}
}

func TestBuildFundingRequestSupplementalDicomFallback(t *testing.T) {
	detail := &DetailPayload{ID: 1, MaximumInvestment: 100_000}

	request, err := buildFundingRequest(listingItem(1, 20), detail, &SimulationPayload{}, &SupplementalData{Dicom: true})
	if err != nil {
		t.Fatalf("buildFundingRequest returned error: %v", err)
	}
	if request.Borrower.Dicom == nil || !*request.Borrower.Dicom {
		t.Error("Expected scraped DICOM flag when descriptions carry no marker")
	}
}

func TestBuildFundingRequestDescriptionMarkerWinsOverSupplemental(t *testing.T) {
	detail := &DetailPayload{
		ID:                  1,
		MaximumInvestment:   100_000,
		BorrowerDescription: "Solicitante sin DICOM",
	}

	request, err := buildFundingRequest(listingItem(1, 20), detail, &SimulationPayload{}, &SupplementalData{Dicom: true})
	if err != nil {
		t.Fatalf("buildFundingRequest returned error: %v", err)
	}
	if request.Borrower.Dicom == nil || *request.Borrower.Dicom {
		t.Error("Inferred negative flag must not be overridden by the scraped page")
	}
}

func TestSimulationToModelMatchesCostsByCleanedName(t *testing.T) {
	payload := &SimulationPayload{NetReturns: 15_000}
	payload.Costs.Values = []rawCost{
		{Name: "Puntos Cumplo ($)", Value: 2_000},
		{Name: "Comisión de servicio", Value: 1_500},
		{Name: "Otro cargo", Value: 999},
	}

	simulation := payload.ToModel()
	if simulation.CumploPoints != 2_000 {
		t.Errorf("CumploPoints = %d, want 2000", simulation.CumploPoints)
	}
	if simulation.PlatformFee != 1_500 {
		t.Errorf("PlatformFee = %d, want 1500", simulation.PlatformFee)
	}
	if simulation.NetReturns != 15_000 {
		t.Errorf("NetReturns = %d, want 15000", simulation.NetReturns)
	}
}
