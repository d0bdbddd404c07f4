package cumplo

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mfigueroa/spotter/configs"
)

type fakeListing struct {
	calls   atomic.Int32
	listing *Listing
	err     error
}

func (f *fakeListing) FundingRequests(ctx context.Context, page, limit int) (*Listing, error) {
	f.calls.Add(1)
	return f.listing, f.err
}

type fakeDetail struct {
	detailCalls atomic.Int32
	simCalls    atomic.Int32
	details     map[int64]*DetailPayload
	errs        map[int64]error
}

func (f *fakeDetail) FundingRequest(ctx context.Context, id int64) (*DetailPayload, error) {
	f.detailCalls.Add(1)
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	if detail, ok := f.details[id]; ok {
		return detail, nil
	}
	return &DetailPayload{ID: id, MaximumInvestment: 100_000}, nil
}

func (f *fakeDetail) Simulate(ctx context.Context, item ListingItem) (*SimulationPayload, error) {
	f.simCalls.Add(1)
	return &SimulationPayload{NetReturns: 10_000}, nil
}

type fakeSupplemental struct {
	calls atomic.Int32
	errs  map[int64]error
}

func (f *fakeSupplemental) FundingRequest(ctx context.Context, id int64) (*SupplementalData, error) {
	f.calls.Add(1)
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	return &SupplementalData{}, nil
}

func listingItem(id int64, irr int64) ListingItem {
	return ListingItem{
		ID:             id,
		IRR:            decimal.NewFromInt(irr),
		Currency:       "CLP",
		CreditTypeCode: "simple",
		DurationUnit:   "day",
		DurationValue:  30,
	}
}

func newTestAggregator(listing *fakeListing, detail *fakeDetail, supplemental *fakeSupplemental) *Aggregator {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := configs.AggregatorConfig{MaxWorkers: 4, CacheTTL: time.Minute}
	return NewAggregator(listing, detail, supplemental, cfg, logger)
}

func TestGetAvailableCachesResults(t *testing.T) {
	listing := &fakeListing{listing: &Listing{Items: []ListingItem{listingItem(1, 20)}}}
	detail := &fakeDetail{}
	supplemental := &fakeSupplemental{}
	aggregator := newTestAggregator(listing, detail, supplemental)

	for range 3 {
		requests, err := aggregator.GetAvailable(context.Background())
		if err != nil {
			t.Fatalf("GetAvailable returned error: %v", err)
		}
		if len(requests) != 1 {
			t.Fatalf("Expected 1 request, got %d", len(requests))
		}
	}

	if got := listing.calls.Load(); got != 1 {
		t.Errorf("Expected 1 listing call within the TTL, got %d", got)
	}
}

func TestGetAvailableListingFailureIsFatal(t *testing.T) {
	listing := &fakeListing{err: errors.New("upstream down")}
	aggregator := newTestAggregator(listing, &fakeDetail{}, &fakeSupplemental{})

	_, err := aggregator.GetAvailable(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestGetAvailableAllCompletedShortCircuits(t *testing.T) {
	listing := &fakeListing{listing: &Listing{
		AllCompleted: true,
		Items:        []ListingItem{listingItem(1, 20)},
	}}
	detail := &fakeDetail{}
	aggregator := newTestAggregator(listing, detail, &fakeSupplemental{})

	requests, err := aggregator.GetAvailable(context.Background())
	if err != nil {
		t.Fatalf("GetAvailable returned error: %v", err)
	}
	if len(requests) != 0 {
		t.Errorf("Expected empty result, got %d requests", len(requests))
	}
	if detail.detailCalls.Load() != 0 {
		t.Error("Completed listing should trigger no enrichment calls")
	}
}

func TestGetAvailableSkipsCompletedItems(t *testing.T) {
	completed := listingItem(1, 20)
	completed.RaisedPercentage = decimal.NewFromInt(1)
	listing := &fakeListing{listing: &Listing{Items: []ListingItem{completed, listingItem(2, 20)}}}
	detail := &fakeDetail{}
	aggregator := newTestAggregator(listing, detail, &fakeSupplemental{})

	requests, err := aggregator.GetAvailable(context.Background())
	if err != nil {
		t.Fatalf("GetAvailable returned error: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != 2 {
		t.Errorf("Expected only request 2, got %v", requests)
	}
	if got := detail.detailCalls.Load(); got != 1 {
		t.Errorf("Expected 1 detail call, got %d", got)
	}
}

func TestGetAvailableDropsNotFoundItems(t *testing.T) {
	listing := &fakeListing{listing: &Listing{Items: []ListingItem{listingItem(1, 20), listingItem(2, 20)}}}
	supplemental := &fakeSupplemental{errs: map[int64]error{1: ErrNotFound}}
	aggregator := newTestAggregator(listing, &fakeDetail{}, supplemental)

	requests, err := aggregator.GetAvailable(context.Background())
	if err != nil {
		t.Fatalf("GetAvailable returned error: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != 2 {
		t.Errorf("Expected only request 2 to survive, got %v", requests)
	}
}

func TestGetAvailablePerItemDetailFailureShrinksResult(t *testing.T) {
	listing := &fakeListing{listing: &Listing{Items: []ListingItem{listingItem(1, 20), listingItem(2, 20)}}}
	detail := &fakeDetail{errs: map[int64]error{2: errors.New("detail API returned status 500")}}
	aggregator := newTestAggregator(listing, detail, &fakeSupplemental{})

	requests, err := aggregator.GetAvailable(context.Background())
	if err != nil {
		t.Fatalf("Per-item failure must not be fatal, got %v", err)
	}
	if len(requests) != 1 || requests[0].ID != 1 {
		t.Errorf("Expected only request 1 to survive, got %v", requests)
	}
}

func TestGetAvailableDropsUnmappedCreditType(t *testing.T) {
	unmapped := listingItem(1, 20)
	unmapped.CreditTypeCode = "leasing"
	listing := &fakeListing{listing: &Listing{Items: []ListingItem{unmapped, listingItem(2, 20)}}}
	aggregator := newTestAggregator(listing, &fakeDetail{}, &fakeSupplemental{})

	requests, err := aggregator.GetAvailable(context.Background())
	if err != nil {
		t.Fatalf("GetAvailable returned error: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != 2 {
		t.Errorf("Expected unmapped item excluded, got %v", requests)
	}
}

func TestGetAvailableDropsNonInvestableItems(t *testing.T) {
	listing := &fakeListing{listing: &Listing{Items: []ListingItem{listingItem(1, 20), listingItem(2, 20)}}}
	detail := &fakeDetail{details: map[int64]*DetailPayload{1: {ID: 1, MaximumInvestment: 0}}}
	aggregator := newTestAggregator(listing, detail, &fakeSupplemental{})

	requests, err := aggregator.GetAvailable(context.Background())
	if err != nil {
		t.Fatalf("GetAvailable returned error: %v", err)
	}
	if len(requests) != 1 || requests[0].ID != 2 {
		t.Errorf("Expected fully subscribed item excluded, got %v", requests)
	}
}

func TestGetAvailableSortsByMonthlyProfitRate(t *testing.T) {
	listing := &fakeListing{listing: &Listing{Items: []ListingItem{
		listingItem(1, 10),
		listingItem(2, 30),
		listingItem(3, 20),
	}}}
	aggregator := newTestAggregator(listing, &fakeDetail{}, &fakeSupplemental{})

	requests, err := aggregator.GetAvailable(context.Background())
	if err != nil {
		t.Fatalf("GetAvailable returned error: %v", err)
	}

	wantOrder := []int64{2, 3, 1}
	for i, want := range wantOrder {
		if requests[i].ID != want {
			t.Fatalf("Expected order %v, got %v", wantOrder, requests)
		}
	}
}

func TestInvalidateForcesRefresh(t *testing.T) {
	listing := &fakeListing{listing: &Listing{Items: []ListingItem{listingItem(1, 20)}}}
	aggregator := newTestAggregator(listing, &fakeDetail{}, &fakeSupplemental{})

	if _, err := aggregator.GetAvailable(context.Background()); err != nil {
		t.Fatalf("GetAvailable returned error: %v", err)
	}
	aggregator.Invalidate()
	if _, err := aggregator.GetAvailable(context.Background()); err != nil {
		t.Fatalf("GetAvailable returned error: %v", err)
	}

	if got := listing.calls.Load(); got != 2 {
		t.Errorf("Expected a second listing call after invalidation, got %d", got)
	}
}
