package templates

import (
	"context"

	"shopnotify_backend/platform/logger"

	"github.com/google/uuid"
)

// WorkflowUnlinker clears workflow rows pointing at template state that is
// being removed. Implemented by the workflows module; wired at composition.
type WorkflowUnlinker interface {
	ClearTemplateDataLinks(ctx context.Context, templateDataID uuid.UUID) error
	ClearTemplateLinks(ctx context.Context, templateID uuid.UUID) error
}

// Service owns template sync and configuration edits.
type Service struct {
	repo     *Repository
	unlinker WorkflowUnlinker
	log      *logger.Logger
}

// NewService creates a new templates service.
func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetWorkflowUnlinker wires the workflows module in. Optional; without it,
// deletes leave dangling linkage for the matcher to treat as missing config.
func (s *Service) SetWorkflowUnlinker(unlinker WorkflowUnlinker) {
	s.unlinker = unlinker
}

// SyncedTemplate is one template as reported by the provider sync.
type SyncedTemplate struct {
	Name       string
	Language   string
	Status     string
	ProviderID string
	Components []Component
}

// Sync records the provider's current template structures for a store. Each
// synced template produces a fresh snapshot; mapping configuration carries
// over for slots that still exist.
func (s *Service) Sync(ctx context.Context, storeID uuid.UUID, synced []SyncedTemplate) (int, error) {
	count := 0
	for _, t := range synced {
		slots := DeriveSlots(t.Components)
		if _, err := s.repo.UpsertFromSync(ctx, storeID, t.Name, t.Language, t.Status, t.ProviderID, t.Components, slots); err != nil {
			return count, err
		}
		count++
	}
	s.log.Info("templates synced", "store_id", storeID, "count", count)
	return count, nil
}

// UpdateVariableMapping edits the dynamic source and fallback text of a slot
// owned by the store. The mapping field is an open string key: unknown values
// degrade to a neutral placeholder at dispatch time instead of being rejected
// here.
func (s *Service) UpdateVariableMapping(ctx context.Context, storeID, variableID uuid.UUID, mappingField, fallbackValue *string) error {
	return s.repo.UpdateVariableMapping(ctx, storeID, variableID, mappingField, fallbackValue)
}

// DeleteData removes one snapshot owned by the store and clears workflow
// linkage to it. The template itself is kept; this is the "clear linkage"
// destructive path, distinct from DeleteTemplate. Ownership is checked before
// the unlink so a foreign snapshot id cannot detach another store's workflows.
func (s *Service) DeleteData(ctx context.Context, storeID, dataID uuid.UUID) error {
	if _, err := s.repo.GetData(ctx, storeID, dataID); err != nil {
		return err
	}
	if s.unlinker != nil {
		if err := s.unlinker.ClearTemplateDataLinks(ctx, dataID); err != nil {
			return err
		}
	}
	return s.repo.DeleteData(ctx, storeID, dataID)
}

// DeleteTemplate removes the whole template, its snapshots, and any workflow
// linkage to it.
func (s *Service) DeleteTemplate(ctx context.Context, storeID, templateID uuid.UUID) error {
	if s.unlinker != nil {
		if err := s.unlinker.ClearTemplateLinks(ctx, templateID); err != nil {
			return err
		}
	}
	return s.repo.DeleteTemplate(ctx, storeID, templateID)
}

// DeriveSlots extracts the placeholder slots from snapshot components:
// {{name}} occurrences in header and body text. Button URL placeholders are
// not slots; the builder substitutes the destination link into them directly.
func DeriveSlots(components []Component) []Variable {
	var slots []Variable
	seen := map[slotKey]bool{}

	add := func(name string, component ComponentType) {
		key := slotKey{name, component}
		if seen[key] {
			return
		}
		seen[key] = true
		slots = append(slots, Variable{Name: name, Component: component})
	}

	for _, component := range components {
		switch component.Type {
		case ComponentHeader, ComponentBody:
			for _, match := range placeholderPattern.FindAllStringSubmatch(component.Text, -1) {
				add(match[1], component.Type)
			}
		case ComponentFooter, ComponentButtons:
			// Footer is static text; button placeholders are link targets.
		}
	}
	return slots
}
