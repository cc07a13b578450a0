package templates

import (
	"time"

	"github.com/google/uuid"
)

// Template is a provider-approved message structure owned by one store.
type Template struct {
	ID         uuid.UUID
	StoreID    uuid.UUID
	Name       string
	Language   string
	Status     string // APPROVED, PENDING, REJECTED
	ProviderID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TemplateData is one structural snapshot of a template: the ordered list of
// components captured during sync. A template keeps its latest snapshot plus
// any snapshot still linked from a workflow.
type TemplateData struct {
	ID         uuid.UUID
	TemplateID uuid.UUID
	Components []Component
	SyncedAt   time.Time
}

// Variable is one placeholder slot inside a template snapshot.
// variable name + component type uniquely identify the slot.
type Variable struct {
	ID             uuid.UUID
	TemplateDataID uuid.UUID
	Name           string
	Component      ComponentType
	MappingField   *string // dynamic source, e.g. "Order id"; nil when unmapped
	FallbackValue  *string // literal used when no mapping applies
}

// MappingOrFallback reports the configured mapping field, or empty when the
// slot relies on its fallback value.
func (v Variable) MappingOrFallback() (mapping string, fallback string) {
	if v.MappingField != nil {
		mapping = *v.MappingField
	}
	if v.FallbackValue != nil {
		fallback = *v.FallbackValue
	}
	return mapping, fallback
}
