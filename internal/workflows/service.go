package workflows

import (
	"context"

	"shopnotify_backend/platform/logger"

	"github.com/google/uuid"
)

// Service owns the workflow catalog lifecycle.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

// NewService creates a new workflows service.
func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SeedDefaults idempotently installs the default catalog for a store+phone
// combination. Safe to run on every settings sync.
func (s *Service) SeedDefaults(ctx context.Context, storeID uuid.UUID, phoneNumber string) error {
	if err := s.repo.SeedCatalog(ctx, storeID, phoneNumber, DefaultCatalog()); err != nil {
		return err
	}
	s.log.Info("workflow catalog seeded", "store_id", storeID, "phone", phoneNumber)
	return nil
}

// List returns every stage for a store.
func (s *Service) List(ctx context.Context, storeID uuid.UUID) ([]WorkflowEvent, error) {
	return s.repo.ListByStore(ctx, storeID)
}

// SetEnabled toggles a stage on or off.
func (s *Service) SetEnabled(ctx context.Context, storeID, id uuid.UUID, enabled bool) error {
	return s.repo.SetEnabled(ctx, storeID, id, enabled)
}

// Update edits a stage's subtitle, delay expression, and template linkage.
func (s *Service) Update(ctx context.Context, storeID, id uuid.UUID, p UpdateParams) error {
	return s.repo.Update(ctx, storeID, id, p)
}

// Delete removes a stage entirely.
func (s *Service) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	return s.repo.Delete(ctx, storeID, id)
}

// ClearTemplateDataLinks detaches stages from a snapshot being deleted.
// Satisfies templates.WorkflowUnlinker.
func (s *Service) ClearTemplateDataLinks(ctx context.Context, templateDataID uuid.UUID) error {
	return s.repo.ClearTemplateDataLinks(ctx, templateDataID)
}

// ClearTemplateLinks detaches stages from a template being deleted.
// Satisfies templates.WorkflowUnlinker.
func (s *Service) ClearTemplateLinks(ctx context.Context, templateID uuid.UUID) error {
	return s.repo.ClearTemplateLinks(ctx, templateID)
}
