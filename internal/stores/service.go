package stores

import (
	"context"

	"shopnotify_backend/internal/events"
	"shopnotify_backend/platform/logger"
)

// Service owns store onboarding.
type Service struct {
	repo *Repository
	bus  events.Bus
	log  *logger.Logger
}

// NewService creates a new stores service.
func NewService(repo *Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Provision creates the store row and announces it so the workflows module
// can seed the default automation catalog.
func (s *Service) Provision(ctx context.Context, store Store) (Store, error) {
	created, err := s.repo.Create(ctx, store)
	if err != nil {
		return Store{}, err
	}

	s.log.Info("store provisioned", "store_id", created.ID, "shop_domain", created.ShopDomain)

	if s.bus != nil {
		if err := s.bus.PublishSync(ctx, events.StoreProvisioned{
			BaseEvent:   events.NewBaseEvent(),
			StoreID:     created.ID,
			PhoneNumber: created.PhoneNumber,
		}); err != nil {
			// Seeding is idempotent and re-runs on the next settings sync,
			// so a failure here must not fail onboarding.
			s.log.Warn("store provisioned handlers failed", "store_id", created.ID, "error", err)
		}
	}

	return created, nil
}
