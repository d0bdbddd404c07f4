package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mfigueroa/spotter/internal/filters"
	"github.com/mfigueroa/spotter/internal/model"
	"github.com/mfigueroa/spotter/internal/repository"
	"github.com/mfigueroa/spotter/internal/store"
)

// Aggregator is the upstream fetch/merge/cache engine.
type Aggregator interface {
	GetAvailable(ctx context.Context) ([]model.FundingRequest, error)
	Invalidate()
}

// Notifier publishes one promising-request notification per user/request pair.
type Notifier interface {
	PublishPromising(ctx context.Context, userID string, request model.FundingRequest) error
}

// FundingRequestsService coordinates the aggregator, the filter engine, the
// notifier and the snapshot history behind the HTTP surface.
type FundingRequestsService struct {
	aggregator Aggregator
	engine     *filters.Engine
	users      store.UserStore
	notifier   Notifier
	snapshots  repository.SnapshotRepository
	logger     *logrus.Logger
}

func NewFundingRequestsService(
	aggregator Aggregator,
	engine *filters.Engine,
	users store.UserStore,
	notifier Notifier,
	snapshots repository.SnapshotRepository,
	logger *logrus.Logger,
) *FundingRequestsService {
	return &FundingRequestsService{
		aggregator: aggregator,
		engine:     engine,
		users:      users,
		notifier:   notifier,
		snapshots:  snapshots,
		logger:     logger,
	}
}

// GetAvailable returns every investable funding request currently published.
func (s *FundingRequestsService) GetAvailable(ctx context.Context) ([]model.FundingRequest, error) {
	return s.aggregator.GetAvailable(ctx)
}

// GetPromising returns the requests matching any of the user's
// configurations, best first.
func (s *FundingRequestsService) GetPromising(ctx context.Context, user model.User) ([]model.FundingRequest, error) {
	available, err := s.aggregator.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Promising(available, user), nil
}

// Fetch forces a fresh upstream sweep, then notifies every user of their
// promising requests and records the notification history. Notification and
// history failures are logged and skipped; the sweep itself is the only
// fatal step.
func (s *FundingRequestsService) Fetch(ctx context.Context) (int, error) {
	s.aggregator.Invalidate()

	available, err := s.aggregator.GetAvailable(ctx)
	if err != nil {
		return 0, err
	}

	notifiedAt := time.Now().UTC()
	notified := 0

	for _, user := range s.users.Users() {
		promising := s.engine.Promising(available, user)
		if len(promising) == 0 {
			continue
		}

		snapshots := make([]*repository.PromisingSnapshot, 0, len(promising))
		for _, request := range promising {
			if err := s.notifier.PublishPromising(ctx, user.ID, request); err != nil {
				s.logger.Errorf("Failed to notify user %s about funding request %d: %v",
					user.ID, request.ID, err)
				continue
			}
			snapshots = append(snapshots, repository.NewPromisingSnapshot(user.ID, request, notifiedAt))
			notified++
		}

		if err := s.snapshots.CreateSnapshots(snapshots); err != nil {
			s.logger.Errorf("Failed to record snapshots for user %s: %v", user.ID, err)
		}
	}

	s.logger.Infof("Fetch complete: %d funding requests available, %d notifications sent",
		len(available), notified)
	return notified, nil
}

// InvalidateCache drops the cached request set.
func (s *FundingRequestsService) InvalidateCache() {
	s.aggregator.Invalidate()
}

// UserByAPIKey resolves the user owning the given credential.
func (s *FundingRequestsService) UserByAPIKey(apiKey string) (*model.User, error) {
	return s.users.UserByAPIKey(apiKey)
}
