package workflows

import (
	"context"
	"errors"
	"fmt"

	"shopnotify_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workflowNotFoundMessage = "workflow not found"

const workflowColumns = `id, store_id, phone_number, category, title, subtitle, delay, enabled,
	trigger_topic, template_id, template_data_id, created_at, updated_at`

// Repository provides PostgreSQL access to workflow event rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new workflows repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SeedCatalog upserts the default catalog for a store+phone combination.
// Existing rows keep their configuration; only missing stages are inserted.
func (r *Repository) SeedCatalog(ctx context.Context, storeID uuid.UUID, phoneNumber string, entries []CatalogEntry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, entry := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO workflow_events (store_id, phone_number, category, title, subtitle, delay, enabled, trigger_topic)
			VALUES ($1, $2, $3, $4, $5, $6, false, $7)
			ON CONFLICT (store_id, phone_number, category, title) DO NOTHING`,
			storeID, phoneNumber, entry.Category, entry.Title, entry.Subtitle, entry.Delay, entry.TriggerTopic.String())
		if err != nil {
			return fmt.Errorf("seed workflow %q: %w", entry.Title, err)
		}
	}

	return tx.Commit(ctx)
}

// ListByStore returns every stage for a store ordered for the dashboard.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]WorkflowEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflow_events
		 WHERE store_id = $1
		 ORDER BY category ASC, title ASC`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()
	return scanWorkflows(rows)
}

// GetByID retrieves one stage scoped to its owning store.
func (r *Repository) GetByID(ctx context.Context, storeID, id uuid.UUID) (WorkflowEvent, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflow_events WHERE id = $1 AND store_id = $2`, id, storeID)
	return scanWorkflow(row)
}

// FindEnabledByTitles returns the enabled stages matching any of the given
// titles for a store. Disabled stages never fire, so they are filtered here.
func (r *Repository) FindEnabledByTitles(ctx context.Context, storeID uuid.UUID, titles []string) ([]WorkflowEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+workflowColumns+` FROM workflow_events
		 WHERE store_id = $1 AND enabled = true AND title = ANY($2)
		 ORDER BY title ASC`, storeID, titles)
	if err != nil {
		return nil, fmt.Errorf("find workflows by titles: %w", err)
	}
	defer rows.Close()
	return scanWorkflows(rows)
}

// FindByTitle returns one stage by title regardless of enabled state.
// The reminder scan uses this to read stage delays.
func (r *Repository) FindByTitle(ctx context.Context, storeID uuid.UUID, title string) (WorkflowEvent, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflow_events WHERE store_id = $1 AND title = $2`, storeID, title)
	return scanWorkflow(row)
}

// SetEnabled toggles a stage.
func (r *Repository) SetEnabled(ctx context.Context, storeID, id uuid.UUID, enabled bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workflow_events SET enabled = $3, updated_at = now()
		WHERE id = $1 AND store_id = $2`, id, storeID, enabled)
	if err != nil {
		return fmt.Errorf("toggle workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(workflowNotFoundMessage)
	}
	return nil
}

// UpdateParams carries the editable fields of a stage.
type UpdateParams struct {
	Subtitle       *string
	Delay          *string
	TemplateID     *uuid.UUID
	TemplateDataID *uuid.UUID
}

// Update edits a stage's subtitle, delay, and template linkage.
func (r *Repository) Update(ctx context.Context, storeID, id uuid.UUID, p UpdateParams) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workflow_events
		SET subtitle = COALESCE($3, subtitle),
		    delay = COALESCE($4, delay),
		    template_id = $5,
		    template_data_id = $6,
		    updated_at = now()
		WHERE id = $1 AND store_id = $2`,
		id, storeID, p.Subtitle, p.Delay, p.TemplateID, p.TemplateDataID)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(workflowNotFoundMessage)
	}
	return nil
}

// ClearTemplateDataLinks nulls the linkage of every stage pointing at a
// snapshot that is being deleted. The stages themselves survive.
func (r *Repository) ClearTemplateDataLinks(ctx context.Context, templateDataID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE workflow_events
		SET template_data_id = NULL, updated_at = now()
		WHERE template_data_id = $1`, templateDataID)
	if err != nil {
		return fmt.Errorf("clear template data links: %w", err)
	}
	return nil
}

// ClearTemplateLinks nulls the linkage of every stage pointing at a template
// that is being deleted.
func (r *Repository) ClearTemplateLinks(ctx context.Context, templateID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE workflow_events
		SET template_id = NULL, template_data_id = NULL, updated_at = now()
		WHERE template_id = $1`, templateID)
	if err != nil {
		return fmt.Errorf("clear template links: %w", err)
	}
	return nil
}

// Delete removes a stage entirely. Distinct from clearing template linkage.
func (r *Repository) Delete(ctx context.Context, storeID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM workflow_events WHERE id = $1 AND store_id = $2`, id, storeID)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(workflowNotFoundMessage)
	}
	return nil
}

func scanWorkflows(rows pgx.Rows) ([]WorkflowEvent, error) {
	var result []WorkflowEvent
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func scanWorkflow(row pgx.Row) (WorkflowEvent, error) {
	var w WorkflowEvent
	err := row.Scan(
		&w.ID, &w.StoreID, &w.PhoneNumber, &w.Category, &w.Title, &w.Subtitle, &w.Delay,
		&w.Enabled, &w.TriggerTopic, &w.TemplateID, &w.TemplateDataID, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WorkflowEvent{}, apperr.NotFound(workflowNotFoundMessage)
		}
		return WorkflowEvent{}, fmt.Errorf("scan workflow: %w", err)
	}
	return w, nil
}
