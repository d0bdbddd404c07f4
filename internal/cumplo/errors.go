// Package cumplo contains the clients for the three upstream marketplace
// surfaces and the aggregator that merges their payloads into canonical
// funding requests.
package cumplo

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable is returned when the bulk listing fetch cannot be
// completed after retries. It is fatal for the whole aggregation cycle.
var ErrSourceUnavailable = errors.New("listing source unavailable")

// ErrNotFound signals the supplemental source has no detail page for an item.
// This is an expected condition, not a failure: the item is skipped, never
// retried.
var ErrNotFound = errors.New("funding request detail page not found")

// EnrichmentError wraps a per-item enrichment failure. The item is dropped
// from the batch; the batch continues.
type EnrichmentError struct {
	ID  int64
	Err error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("enrichment of funding request %d failed: %v", e.ID, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }
