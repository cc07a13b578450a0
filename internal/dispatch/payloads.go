package dispatch

import "strings"

// LineItem is one purchased line in an order or checkout payload.
// current_quantity reflects post-edit state and wins over quantity when set.
type LineItem struct {
	Title           string `json:"title"`
	Quantity        int    `json:"quantity"`
	CurrentQuantity *int   `json:"current_quantity"`
	Price           string `json:"price"`
}

// TotalQuantity sums line item quantities, preferring current_quantity.
func TotalQuantity(items []LineItem) int {
	total := 0
	for _, item := range items {
		if item.CurrentQuantity != nil {
			total += *item.CurrentQuantity
			continue
		}
		total += item.Quantity
	}
	return total
}

// CustomerPayload is the customer block embedded in commerce payloads.
type CustomerPayload struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// FullName joins first and last name, trimming either being absent.
func (c CustomerPayload) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// OrderPayload is the order webhook body for orders/* topics.
type OrderPayload struct {
	ID                  int64           `json:"id"`
	OrderNumber         int             `json:"order_number"`
	Name                string          `json:"name"`
	Phone               string          `json:"phone"`
	Currency            string          `json:"currency"`
	TotalPrice          string          `json:"total_price"`
	Gateway             string          `json:"gateway"`
	PaymentGatewayNames []string        `json:"payment_gateway_names"`
	OrderStatusURL      string          `json:"order_status_url"`
	CheckoutToken       string          `json:"checkout_token"`
	Customer            CustomerPayload `json:"customer"`
	LineItems           []LineItem      `json:"line_items"`
}

// GatewayName returns the payment gateway, falling back to the first entry of
// payment_gateway_names on newer payload versions.
func (o OrderPayload) GatewayName() string {
	if o.Gateway != "" {
		return o.Gateway
	}
	if len(o.PaymentGatewayNames) > 0 {
		return o.PaymentGatewayNames[0]
	}
	return ""
}

// ContactPhone returns the order-level phone, falling back to the customer's.
func (o OrderPayload) ContactPhone() string {
	if o.Phone != "" {
		return o.Phone
	}
	return o.Customer.Phone
}

// CheckoutPayload is the checkout webhook body for checkouts/* topics.
type CheckoutPayload struct {
	Token                string          `json:"token"`
	AbandonedCheckoutURL string          `json:"abandoned_checkout_url"`
	Phone                string          `json:"phone"`
	Email                *string         `json:"email"`
	Currency             string          `json:"currency"`
	TotalPrice           string          `json:"total_price"`
	Customer             CustomerPayload `json:"customer"`
	LineItems            []LineItem      `json:"line_items"`
}

// ContactPhone returns the checkout-level phone, falling back to the customer's.
func (c CheckoutPayload) ContactPhone() string {
	if c.Phone != "" {
		return c.Phone
	}
	return c.Customer.Phone
}

// RefundPayload is the refund webhook body. The embedded order is present on
// payloads that include it; without it there is no customer contact to notify.
type RefundPayload struct {
	ID      int64         `json:"id"`
	OrderID int64         `json:"order_id"`
	Note    string        `json:"note"`
	Order   *OrderPayload `json:"order"`
}

// FulfillmentEventPayload is the fulfillment event webhook body. The raw topic
// header is just "fulfillment_events"; the status field refines it to
// out_for_delivery or delivered during webhook parsing.
type FulfillmentEventPayload struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	Status       string          `json:"status"`
	OrderName    string          `json:"name"`
	TrackingURL  string          `json:"tracking_url"`
	TrackingURLs []string        `json:"tracking_urls"`
	Destination  CustomerPayload `json:"destination"`
	LineItems    []LineItem      `json:"line_items"`
}

// PrimaryTrackingURL returns the single tracking link, preferring the scalar
// field over the list form.
func (f FulfillmentEventPayload) PrimaryTrackingURL() string {
	if f.TrackingURL != "" {
		return f.TrackingURL
	}
	if len(f.TrackingURLs) > 0 {
		return f.TrackingURLs[0]
	}
	return ""
}
