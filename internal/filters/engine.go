package filters

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mfigueroa/spotter/internal/model"
)

// Engine evaluates user filter configurations over assembled funding-request
// sets. Stateless; one engine serves all users.
type Engine struct {
	logger *logrus.Logger
}

func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{logger: logger}
}

// Filter returns the requests matching one configuration, preserving input
// order. An internally inconsistent configuration matches nothing.
func (e *Engine) Filter(requests []model.FundingRequest, configuration model.FilterConfiguration) []model.FundingRequest {
	if !configuration.Valid() {
		e.logger.Warnf("Configuration %s has inconsistent bounds, matching nothing", configuration.ID)
		return []model.FundingRequest{}
	}

	chain := NewChain(configuration)
	matched := make([]model.FundingRequest, 0, len(requests))

	for _, request := range requests {
		if e.passes(request, chain, configuration.ID) {
			matched = append(matched, request)
		}
	}
	return matched
}

// Promising returns the union of the matches across all of a user's
// configurations, de-duplicated by id and sorted by monthly profit rate
// descending. Configurations are evaluated in sorted key order so repeated
// calls walk them identically.
func (e *Engine) Promising(requests []model.FundingRequest, user model.User) []model.FundingRequest {
	keys := make([]string, 0, len(user.Configurations))
	for key := range user.Configurations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[int64]bool, len(requests))
	promising := make([]model.FundingRequest, 0, len(requests))

	for _, key := range keys {
		for _, request := range e.Filter(requests, user.Configurations[key]) {
			if seen[request.ID] {
				continue
			}
			seen[request.ID] = true
			promising = append(promising, request)
		}
	}

	model.SortByMonthlyProfitRate(promising)
	return promising
}

func (e *Engine) passes(request model.FundingRequest, chain []Filter, configurationID string) bool {
	for _, filter := range chain {
		if !filter.Apply(request) {
			e.logger.Debugf("Configuration %s: filter %s rejected funding request %d",
				configurationID, filter.Name(), request.ID)
			return false
		}
	}
	return true
}
