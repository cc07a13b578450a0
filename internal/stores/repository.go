package stores

import (
	"context"
	"errors"
	"fmt"

	"shopnotify_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const storeNotFoundMessage = "store not found"

const storeColumns = `id, shop_domain, brand_name, online_shop_url, phone_number, country_code,
	api_key, company_id, phone_number_id, webhook_secret, active, created_at, updated_at`

// Repository provides PostgreSQL access to store rows.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new stores repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID retrieves a store by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Store, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
	return scanStore(row)
}

// GetByShopDomain retrieves a store by its myshopify domain.
// Used by webhook ingestion to resolve the tenant from the request.
func (r *Repository) GetByShopDomain(ctx context.Context, shopDomain string) (Store, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE shop_domain = $1 AND active = true`, shopDomain)
	return scanStore(row)
}

// ListActive returns every active store. The reminder scan joins these to
// pending records for credentials.
func (r *Repository) ListActive(ctx context.Context) ([]Store, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+storeColumns+` FROM stores WHERE active = true ORDER BY shop_domain ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active stores: %w", err)
	}
	defer rows.Close()

	var result []Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Create inserts a new store row during onboarding.
func (r *Repository) Create(ctx context.Context, s Store) (Store, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO stores (shop_domain, brand_name, online_shop_url, phone_number, country_code,
			api_key, company_id, phone_number_id, webhook_secret, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		RETURNING id, created_at, updated_at`,
		s.ShopDomain, s.BrandName, s.OnlineShopURL, s.PhoneNumber, s.CountryCode,
		s.APIKey, s.CompanyID, s.PhoneNumberID, s.WebhookSecret,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Store{}, fmt.Errorf("create store: %w", err)
	}
	s.Active = true
	return s, nil
}

// UpdateCredentials replaces the messaging provider credentials for a store.
func (r *Repository) UpdateCredentials(ctx context.Context, id uuid.UUID, apiKey, companyID, phoneNumberID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stores
		SET api_key = $2, company_id = $3, phone_number_id = $4, updated_at = now()
		WHERE id = $1`,
		id, apiKey, companyID, phoneNumberID)
	if err != nil {
		return fmt.Errorf("update store credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(storeNotFoundMessage)
	}
	return nil
}

// UpdateBrand replaces the brand fields used by variable mapping.
func (r *Repository) UpdateBrand(ctx context.Context, id uuid.UUID, brandName, onlineShopURL string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stores
		SET brand_name = $2, online_shop_url = $3, updated_at = now()
		WHERE id = $1`,
		id, brandName, onlineShopURL)
	if err != nil {
		return fmt.Errorf("update store brand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(storeNotFoundMessage)
	}
	return nil
}

func scanStore(row pgx.Row) (Store, error) {
	var s Store
	err := row.Scan(
		&s.ID, &s.ShopDomain, &s.BrandName, &s.OnlineShopURL, &s.PhoneNumber, &s.CountryCode,
		&s.APIKey, &s.CompanyID, &s.PhoneNumberID, &s.WebhookSecret, &s.Active,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Store{}, apperr.NotFound(storeNotFoundMessage)
		}
		return Store{}, fmt.Errorf("scan store: %w", err)
	}
	return s, nil
}
