package commerce

import (
	"context"
	"errors"
	"fmt"

	"shopnotify_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const checkoutColumns = `id, store_id, checkout_token, customer_name, phone, country_code, email,
	total_price, currency, line_items, recovery_url,
	reminder_1_sent, reminder_2_sent, reminder_3_sent, created_at, updated_at`

const deliveredColumns = `id, store_id, order_id, order_number, customer_name, phone, country_code,
	total_price, currency, line_items, tracking_url,
	order_feedback_sent, reorder_reminder_sent, delivered_at, created_at, updated_at`

// Repository provides PostgreSQL access to commerce state records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new commerce repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertCheckoutParams carries the fields written on checkouts/create and
// checkouts/update.
type UpsertCheckoutParams struct {
	StoreID       uuid.UUID
	CheckoutToken string
	CustomerName  string
	Phone         string
	CountryCode   string
	Email         *string
	TotalPrice    string
	Currency      string
	LineItems     []byte
	RecoveryURL   string
}

// UpsertCheckout inserts or refreshes an abandoned cart. A refresh moves the
// updated_at anchor forward; reminder flags are preserved so a stage never
// fires twice for the same cart.
func (r *Repository) UpsertCheckout(ctx context.Context, p UpsertCheckoutParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO checkout_sessions
			(store_id, checkout_token, customer_name, phone, country_code, email,
			 total_price, currency, line_items, recovery_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (store_id, checkout_token) DO UPDATE SET
			customer_name = EXCLUDED.customer_name,
			phone = EXCLUDED.phone,
			country_code = EXCLUDED.country_code,
			email = EXCLUDED.email,
			total_price = EXCLUDED.total_price,
			currency = EXCLUDED.currency,
			line_items = EXCLUDED.line_items,
			recovery_url = EXCLUDED.recovery_url,
			updated_at = now()`,
		p.StoreID, p.CheckoutToken, p.CustomerName, p.Phone, p.CountryCode, p.Email,
		p.TotalPrice, p.Currency, p.LineItems, p.RecoveryURL)
	if err != nil {
		return fmt.Errorf("upsert checkout: %w", err)
	}
	return nil
}

// DeleteCheckout removes a cart once the shopper completed the order.
// Missing rows are fine; not every order starts from a tracked checkout.
func (r *Repository) DeleteCheckout(ctx context.Context, storeID uuid.UUID, checkoutToken string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM checkout_sessions WHERE store_id = $1 AND checkout_token = $2`,
		storeID, checkoutToken)
	if err != nil {
		return fmt.Errorf("delete checkout: %w", err)
	}
	return nil
}

// ListPendingCheckouts returns carts with at least one reminder still unsent,
// oldest anchor first, capped at limit for one scan pass.
func (r *Repository) ListPendingCheckouts(ctx context.Context, limit int) ([]CheckoutSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+checkoutColumns+` FROM checkout_sessions
		 WHERE NOT (reminder_1_sent AND reminder_2_sent AND reminder_3_sent)
		 ORDER BY updated_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending checkouts: %w", err)
	}
	defer rows.Close()

	var result []CheckoutSession
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// MarkReminderSent flips one abandoned cart flag with a compare-and-set.
// Returns false when the flag was already set, so concurrent scan ticks
// resolve to exactly one send per stage.
func (r *Repository) MarkReminderSent(ctx context.Context, id uuid.UUID, stage ReminderStage) (bool, error) {
	column, ok := reminderStageColumns[stage]
	if !ok {
		return false, apperr.BadRequest(fmt.Sprintf("unknown reminder stage %d", stage))
	}
	// updated_at is the delay anchor for the remaining stages, so it is
	// deliberately not touched here.
	tag, err := r.pool.Exec(ctx,
		`UPDATE checkout_sessions SET `+column+` = true
		 WHERE id = $1 AND `+column+` = false`, id)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteFullyProcessedCheckouts removes carts whose every reminder fired.
// Returns the number of rows removed.
func (r *Repository) DeleteFullyProcessedCheckouts(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM checkout_sessions
		 WHERE reminder_1_sent AND reminder_2_sent AND reminder_3_sent`)
	if err != nil {
		return 0, fmt.Errorf("cleanup checkouts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertDeliveredOrderParams carries the fields written when a fulfillment
// event reports delivery.
type UpsertDeliveredOrderParams struct {
	StoreID      uuid.UUID
	OrderID      int64
	OrderNumber  string
	CustomerName string
	Phone        string
	CountryCode  string
	TotalPrice   string
	Currency     string
	LineItems    []byte
	TrackingURL  string
}

// UpsertDeliveredOrder records a delivery for post-purchase messaging. A
// repeated delivery event refreshes details but keeps flags and the original
// delivered_at anchor.
func (r *Repository) UpsertDeliveredOrder(ctx context.Context, p UpsertDeliveredOrderParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO delivered_orders
			(store_id, order_id, order_number, customer_name, phone, country_code,
			 total_price, currency, line_items, tracking_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (store_id, order_id) DO UPDATE SET
			order_number = EXCLUDED.order_number,
			customer_name = EXCLUDED.customer_name,
			phone = EXCLUDED.phone,
			country_code = EXCLUDED.country_code,
			total_price = EXCLUDED.total_price,
			currency = EXCLUDED.currency,
			line_items = EXCLUDED.line_items,
			tracking_url = EXCLUDED.tracking_url,
			updated_at = now()`,
		p.StoreID, p.OrderID, p.OrderNumber, p.CustomerName, p.Phone, p.CountryCode,
		p.TotalPrice, p.Currency, p.LineItems, p.TrackingURL)
	if err != nil {
		return fmt.Errorf("upsert delivered order: %w", err)
	}
	return nil
}

// ListPendingDeliveredOrders returns delivered orders with at least one
// post-purchase flag still unsent.
func (r *Repository) ListPendingDeliveredOrders(ctx context.Context, limit int) ([]DeliveredOrder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+deliveredColumns+` FROM delivered_orders
		 WHERE NOT (order_feedback_sent AND reorder_reminder_sent)
		 ORDER BY delivered_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending delivered orders: %w", err)
	}
	defer rows.Close()

	var result []DeliveredOrder
	for rows.Next() {
		d, err := scanDelivered(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// MarkDeliveredFlagSent flips one post-purchase flag with a compare-and-set.
func (r *Repository) MarkDeliveredFlagSent(ctx context.Context, id uuid.UUID, flag DeliveredFlag) (bool, error) {
	column, ok := deliveredFlagColumns[flag]
	if !ok {
		return false, apperr.BadRequest(fmt.Sprintf("unknown delivered flag %d", flag))
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE delivered_orders SET `+column+` = true, updated_at = now()
		 WHERE id = $1 AND `+column+` = false`, id)
	if err != nil {
		return false, fmt.Errorf("mark delivered flag sent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteFullyProcessedDeliveredOrders removes delivered orders whose every
// post-purchase flag fired.
func (r *Repository) DeleteFullyProcessedDeliveredOrders(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM delivered_orders
		 WHERE order_feedback_sent AND reorder_reminder_sent`)
	if err != nil {
		return 0, fmt.Errorf("cleanup delivered orders: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetCheckout retrieves one cart for debugging and tests.
func (r *Repository) GetCheckout(ctx context.Context, storeID uuid.UUID, checkoutToken string) (CheckoutSession, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+checkoutColumns+` FROM checkout_sessions
		 WHERE store_id = $1 AND checkout_token = $2`, storeID, checkoutToken)
	c, err := scanCheckout(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CheckoutSession{}, apperr.NotFound("checkout not found")
		}
		return CheckoutSession{}, err
	}
	return c, nil
}

func scanCheckout(row pgx.Row) (CheckoutSession, error) {
	var c CheckoutSession
	err := row.Scan(
		&c.ID, &c.StoreID, &c.CheckoutToken, &c.CustomerName, &c.Phone, &c.CountryCode, &c.Email,
		&c.TotalPrice, &c.Currency, &c.LineItems, &c.RecoveryURL,
		&c.Reminder1Sent, &c.Reminder2Sent, &c.Reminder3Sent, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CheckoutSession{}, err
		}
		return CheckoutSession{}, fmt.Errorf("scan checkout: %w", err)
	}
	return c, nil
}

func scanDelivered(row pgx.Row) (DeliveredOrder, error) {
	var d DeliveredOrder
	err := row.Scan(
		&d.ID, &d.StoreID, &d.OrderID, &d.OrderNumber, &d.CustomerName, &d.Phone, &d.CountryCode,
		&d.TotalPrice, &d.Currency, &d.LineItems, &d.TrackingURL,
		&d.OrderFeedbackSent, &d.ReorderReminderSent, &d.DeliveredAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return DeliveredOrder{}, fmt.Errorf("scan delivered order: %w", err)
	}
	return d, nil
}
