package cumplo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mfigueroa/spotter/configs"
	"github.com/mfigueroa/spotter/internal/model"
)

// ListingSource supplies the bulk page of funding-request summaries.
type ListingSource interface {
	FundingRequests(ctx context.Context, page, limit int) (*Listing, error)
}

// DetailSource supplies the per-item credit history and payment simulation.
type DetailSource interface {
	FundingRequest(ctx context.Context, id int64) (*DetailPayload, error)
	Simulate(ctx context.Context, item ListingItem) (*SimulationPayload, error)
}

// SupplementalSource supplies the scraped fields from the rendered page.
type SupplementalSource interface {
	FundingRequest(ctx context.Context, id int64) (*SupplementalData, error)
}

// Aggregator owns the fetch/merge/cache lifecycle: it fans per-item
// enrichment out across the detail and supplemental sources, merges the
// payloads into canonical funding requests, and caches the assembled set.
type Aggregator struct {
	listing      ListingSource
	detail       DetailSource
	supplemental SupplementalSource
	cache        *resultCache
	workers      int
	logger       *logrus.Logger

	// refreshMu serializes refreshes so a cache miss under concurrent callers
	// triggers exactly one upstream sweep.
	refreshMu sync.Mutex
}

// NewAggregator wires the three sources into one merge engine.
func NewAggregator(
	listing ListingSource,
	detail DetailSource,
	supplemental SupplementalSource,
	cfg configs.AggregatorConfig,
	logger *logrus.Logger,
) *Aggregator {
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 20
	}
	return &Aggregator{
		listing:      listing,
		detail:       detail,
		supplemental: supplemental,
		cache:        newResultCache(cfg.CacheTTL),
		workers:      workers,
		logger:       logger,
	}
}

// GetAvailable returns the assembled, enriched, de-duplicated funding-request
// set sorted by monthly profit rate descending. Calls within the cache TTL
// reuse the previous sweep. Listing failure is fatal; per-item failures only
// shrink the result set.
func (a *Aggregator) GetAvailable(ctx context.Context) ([]model.FundingRequest, error) {
	if items, ok := a.cache.Get(); ok {
		return items, nil
	}

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	// Another caller may have completed the refresh while we waited.
	if items, ok := a.cache.Get(); ok {
		return items, nil
	}

	a.logger.Info("Getting funding requests from Cumplo API")

	listing, err := a.listing.FundingRequests(ctx, 1, listingPageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if listing.AllCompleted {
		a.logger.Info("All funding requests are completed. Ignoring them")
		a.cache.Set(nil)
		return []model.FundingRequest{}, nil
	}

	pending := make([]ListingItem, 0, len(listing.Items))
	for _, item := range listing.Items {
		if item.IsCompleted() {
			continue
		}
		pending = append(pending, item)
	}

	assembled := a.enrichAll(ctx, pending)
	model.SortByMonthlyProfitRate(assembled)
	a.cache.Set(assembled)

	a.logger.Infof("Got %d funding requests", len(assembled))
	return assembled, nil
}

// Invalidate drops the cached set so the next call re-fetches upstream.
func (a *Aggregator) Invalidate() {
	a.cache.Invalidate()
}

// enrichAll fans the per-item enrichment out over a bounded worker pool.
// Results pair back to their items by id; arrival order is irrelevant.
func (a *Aggregator) enrichAll(ctx context.Context, items []ListingItem) []model.FundingRequest {
	jobs := make(chan ListingItem)
	results := make(chan model.FundingRequest, len(items))

	workers := a.workers
	if len(items) < workers {
		workers = len(items)
	}

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				request, err := a.enrich(ctx, item)
				if err != nil {
					a.observeItemFailure(item, err)
					continue
				}
				results <- *request
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
	close(results)

	assembled := make([]model.FundingRequest, 0, len(items))
	for request := range results {
		assembled = append(assembled, request)
	}
	return assembled
}

// enrich issues the three per-item fetches concurrently and merges the
// payloads into one canonical funding request.
func (a *Aggregator) enrich(ctx context.Context, item ListingItem) (*model.FundingRequest, error) {
	var (
		detail  *DetailPayload
		sim     *SimulationPayload
		supp    *SupplementalData
		detailErr, simErr, suppErr error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		detail, detailErr = a.detail.FundingRequest(ctx, item.ID)
	}()
	go func() {
		defer wg.Done()
		sim, simErr = a.detail.Simulate(ctx, item)
	}()
	go func() {
		defer wg.Done()
		supp, suppErr = a.supplemental.FundingRequest(ctx, item.ID)
	}()
	wg.Wait()

	if suppErr != nil {
		if errors.Is(suppErr, ErrNotFound) {
			return nil, suppErr
		}
		return nil, &EnrichmentError{ID: item.ID, Err: suppErr}
	}
	if detailErr != nil {
		return nil, &EnrichmentError{ID: item.ID, Err: detailErr}
	}
	if simErr != nil {
		return nil, &EnrichmentError{ID: item.ID, Err: simErr}
	}

	return buildFundingRequest(item, detail, sim, supp)
}

// observeItemFailure logs one dropped item with the severity its cause
// deserves. Item failures never propagate past the aggregator.
func (a *Aggregator) observeItemFailure(item ListingItem, err error) {
	var mappingErr *model.MappingError
	switch {
	case errors.Is(err, ErrNotFound):
		a.logger.Infof("Funding request %d has no detail page, skipping", item.ID)
	case errors.As(err, &mappingErr):
		a.logger.Errorf("Funding request %d excluded: %v", item.ID, err)
	case errors.Is(err, errNotInvestable):
		a.logger.Debugf("Funding request %d has no investable amount, skipping", item.ID)
	default:
		a.logger.Warnf("Dropping funding request %d: %v", item.ID, err)
	}
}
