package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopnotify_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	templateNotFoundMessage     = "template not found"
	templateDataNotFoundMessage = "template snapshot not found"
	variableNotFoundMessage     = "template variable not found"
)

// Repository provides PostgreSQL access to templates, snapshots, and variables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new templates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByStore returns all templates for a store ordered by name.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, store_id, name, language, status, provider_id, created_at, updated_at
		FROM templates
		WHERE store_id = $1
		ORDER BY name ASC`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var result []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.StoreID, &t.Name, &t.Language, &t.Status, &t.ProviderID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetByID retrieves a template scoped to its owning store.
func (r *Repository) GetByID(ctx context.Context, storeID, id uuid.UUID) (Template, error) {
	var t Template
	err := r.pool.QueryRow(ctx, `
		SELECT id, store_id, name, language, status, provider_id, created_at, updated_at
		FROM templates
		WHERE id = $1 AND store_id = $2`, id, storeID).
		Scan(&t.ID, &t.StoreID, &t.Name, &t.Language, &t.Status, &t.ProviderID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, apperr.NotFound(templateNotFoundMessage)
		}
		return Template{}, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// UpsertFromSync inserts or refreshes a template during provider sync and
// records a new structural snapshot with its variables. Variables carry over
// mapping_field/fallback_value from the previous snapshot when the slot
// (variable name + component type) still exists.
func (r *Repository) UpsertFromSync(ctx context.Context, storeID uuid.UUID, name, language, status, providerID string, components []Component, slots []Variable) (TemplateData, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TemplateData{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var templateID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO templates (store_id, name, language, status, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (store_id, name, language)
		DO UPDATE SET status = EXCLUDED.status, provider_id = EXCLUDED.provider_id, updated_at = now()
		RETURNING id`,
		storeID, name, language, status, providerID,
	).Scan(&templateID)
	if err != nil {
		return TemplateData{}, fmt.Errorf("upsert template: %w", err)
	}

	previous, err := r.latestVariableConfig(ctx, tx, templateID)
	if err != nil {
		return TemplateData{}, err
	}

	componentsJSON, err := json.Marshal(components)
	if err != nil {
		return TemplateData{}, fmt.Errorf("marshal components: %w", err)
	}

	data := TemplateData{TemplateID: templateID, Components: components}
	err = tx.QueryRow(ctx, `
		INSERT INTO template_data (template_id, components)
		VALUES ($1, $2)
		RETURNING id, synced_at`,
		templateID, componentsJSON,
	).Scan(&data.ID, &data.SyncedAt)
	if err != nil {
		return TemplateData{}, fmt.Errorf("insert template snapshot: %w", err)
	}

	for _, slot := range slots {
		mapping := slot.MappingField
		fallback := slot.FallbackValue
		if prev, ok := previous[slotKey{slot.Name, slot.Component}]; ok {
			mapping = prev.MappingField
			fallback = prev.FallbackValue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO template_variables (template_data_id, variable_name, component_type, mapping_field, fallback_value)
			VALUES ($1, $2, $3, $4, $5)`,
			data.ID, slot.Name, slot.Component.String(), mapping, fallback)
		if err != nil {
			return TemplateData{}, fmt.Errorf("insert template variable: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return TemplateData{}, err
	}
	return data, nil
}

type slotKey struct {
	name      string
	component ComponentType
}

func (r *Repository) latestVariableConfig(ctx context.Context, tx pgx.Tx, templateID uuid.UUID) (map[slotKey]Variable, error) {
	rows, err := tx.Query(ctx, `
		SELECT v.variable_name, v.component_type, v.mapping_field, v.fallback_value
		FROM template_variables v
		JOIN template_data d ON d.id = v.template_data_id
		WHERE d.template_id = $1
		ORDER BY d.synced_at DESC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("load previous variable config: %w", err)
	}
	defer rows.Close()

	result := make(map[slotKey]Variable)
	for rows.Next() {
		var v Variable
		var componentRaw string
		if err := rows.Scan(&v.Name, &componentRaw, &v.MappingField, &v.FallbackValue); err != nil {
			return nil, fmt.Errorf("scan previous variable: %w", err)
		}
		component, err := ParseComponentType(componentRaw)
		if err != nil {
			continue
		}
		v.Component = component
		key := slotKey{v.Name, v.Component}
		// Rows are newest-first; keep the first occurrence per slot.
		if _, seen := result[key]; !seen {
			result[key] = v
		}
	}
	return result, rows.Err()
}

// GetData retrieves a template snapshot scoped to its owning store. Snapshots
// of other stores are indistinguishable from missing ones.
func (r *Repository) GetData(ctx context.Context, storeID, dataID uuid.UUID) (TemplateData, error) {
	var data TemplateData
	var componentsJSON []byte
	var syncedAt time.Time

	err := r.pool.QueryRow(ctx, `
		SELECT d.id, d.template_id, d.components, d.synced_at
		FROM template_data d
		JOIN templates t ON t.id = d.template_id
		WHERE d.id = $1 AND t.store_id = $2`, dataID, storeID).
		Scan(&data.ID, &data.TemplateID, &componentsJSON, &syncedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TemplateData{}, apperr.NotFound(templateDataNotFoundMessage)
		}
		return TemplateData{}, fmt.Errorf("get template snapshot: %w", err)
	}

	if err := json.Unmarshal(componentsJSON, &data.Components); err != nil {
		return TemplateData{}, fmt.Errorf("decode template components: %w", err)
	}
	data.SyncedAt = syncedAt
	return data, nil
}

// ListVariables returns the placeholder slots of one snapshot, scoped to the
// owning store. A foreign or unknown snapshot is NotFound, never an empty list.
func (r *Repository) ListVariables(ctx context.Context, storeID, dataID uuid.UUID) ([]Variable, error) {
	var owned bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM template_data d
			JOIN templates t ON t.id = d.template_id
			WHERE d.id = $1 AND t.store_id = $2)`, dataID, storeID).Scan(&owned)
	if err != nil {
		return nil, fmt.Errorf("check snapshot ownership: %w", err)
	}
	if !owned {
		return nil, apperr.NotFound(templateDataNotFoundMessage)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, template_data_id, variable_name, component_type, mapping_field, fallback_value
		FROM template_variables
		WHERE template_data_id = $1
		ORDER BY component_type ASC, variable_name ASC`, dataID)
	if err != nil {
		return nil, fmt.Errorf("list template variables: %w", err)
	}
	defer rows.Close()

	var result []Variable
	for rows.Next() {
		var v Variable
		var componentRaw string
		if err := rows.Scan(&v.ID, &v.TemplateDataID, &v.Name, &componentRaw, &v.MappingField, &v.FallbackValue); err != nil {
			return nil, fmt.Errorf("scan template variable: %w", err)
		}
		component, err := ParseComponentType(componentRaw)
		if err != nil {
			return nil, err
		}
		v.Component = component
		result = append(result, v)
	}
	return result, rows.Err()
}

// UpdateVariableMapping edits the mapping field and fallback value of a slot.
// The update only reaches slots whose snapshot belongs to the store.
func (r *Repository) UpdateVariableMapping(ctx context.Context, storeID, variableID uuid.UUID, mappingField, fallbackValue *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE template_variables v
		SET mapping_field = $3, fallback_value = $4
		FROM template_data d
		JOIN templates t ON t.id = d.template_id
		WHERE v.id = $1 AND d.id = v.template_data_id AND t.store_id = $2`,
		variableID, storeID, mappingField, fallbackValue)
	if err != nil {
		return fmt.Errorf("update variable mapping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(variableNotFoundMessage)
	}
	return nil
}

// DeleteData removes one snapshot and its variables, scoped to the owning
// store. Workflow linkage to the snapshot is cleared by the caller, not here;
// the template itself survives.
func (r *Repository) DeleteData(ctx context.Context, storeID, dataID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM template_data d
		USING templates t
		WHERE d.id = $1 AND t.id = d.template_id AND t.store_id = $2`,
		dataID, storeID)
	if err != nil {
		return fmt.Errorf("delete template snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(templateDataNotFoundMessage)
	}
	return nil
}

// DeleteTemplate removes a template with all snapshots and variables.
func (r *Repository) DeleteTemplate(ctx context.Context, storeID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM templates WHERE id = $1 AND store_id = $2`, id, storeID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(templateNotFoundMessage)
	}
	return nil
}
