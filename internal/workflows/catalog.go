package workflows

import "shopnotify_backend/internal/commerce"

// Workflow titles. The event matcher resolves inbound topics to these, so
// they are constants rather than free text.
const (
	TitleReminder1         = "Reminder 1"
	TitleReminder2         = "Reminder 2"
	TitleReminder3         = "Reminder 3"
	TitleOrderPlaced       = "Order Placed"
	TitleOrderCancelled    = "Order Cancelled"
	TitlePaymentReceived   = "Payment Received"
	TitleOrderShipped      = "Order Shipped"
	TitleOutForDelivery    = "Out for Delivery"
	TitleOrderDelivered    = "Order Delivered"
	TitleRefundCreated     = "Refund Created"
	TitleCODConfirmation   = "COD Order Confirmation or Cancel"
	TitleCODCancelled      = "COD Order Cancelled"
	TitleWelcomeMessage    = "Welcome Message"
	TitleReorderReminder   = "Reorder Reminder"
	TitleOrderFeedback     = "Order Feedback"
)

// Workflow categories group stages on the dashboard.
const (
	CategoryAbandonedCart  = "Abandoned Cart Recovery"
	CategoryOrderLifecycle = "Order Lifecycle"
	CategoryCOD            = "Cash on Delivery"
	CategoryCustomer       = "Customer"
	CategoryPostPurchase   = "Post-purchase"
)

// CatalogEntry describes one stage of the default automation catalog.
type CatalogEntry struct {
	Category     string
	Title        string
	Subtitle     string
	Delay        *string // nil means the stage fires immediately
	TriggerTopic commerce.Topic
}

// DefaultCatalog returns the fixed set of stages seeded for every new
// store+phone combination. Seeding is an idempotent upsert; existing rows
// keep their configuration.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{CategoryAbandonedCart, TitleReminder1, "First nudge after a cart is left behind", delay("30 minutes"), commerce.TopicCheckoutUpdated},
		{CategoryAbandonedCart, TitleReminder2, "Second nudge for a still-open cart", delay("24 hours"), commerce.TopicCheckoutUpdated},
		{CategoryAbandonedCart, TitleReminder3, "Final nudge before the cart is dropped", delay("3 days"), commerce.TopicCheckoutUpdated},

		{CategoryOrderLifecycle, TitleOrderPlaced, "Confirmation right after checkout", nil, commerce.TopicOrderCreated},
		{CategoryOrderLifecycle, TitleOrderCancelled, "Sent when an order is cancelled", nil, commerce.TopicOrderCancelled},
		{CategoryOrderLifecycle, TitlePaymentReceived, "Sent when payment is captured", nil, commerce.TopicOrderPaid},
		{CategoryOrderLifecycle, TitleOrderShipped, "Sent when the order is fulfilled", nil, commerce.TopicOrderFulfilled},
		{CategoryOrderLifecycle, TitleOutForDelivery, "Sent when the parcel leaves the depot", nil, commerce.TopicOutForDelivery},
		{CategoryOrderLifecycle, TitleOrderDelivered, "Sent when delivery is confirmed", nil, commerce.TopicOrderDelivered},
		{CategoryOrderLifecycle, TitleRefundCreated, "Sent when a refund is issued", nil, commerce.TopicRefundCreated},

		{CategoryCOD, TitleCODConfirmation, "Ask the buyer to confirm or cancel a COD order", nil, commerce.TopicOrderCreated},
		{CategoryCOD, TitleCODCancelled, "Sent when a COD order is cancelled", nil, commerce.TopicOrderCancelled},

		{CategoryCustomer, TitleWelcomeMessage, "Greets a newly registered customer", nil, commerce.TopicCustomerCreated},

		{CategoryPostPurchase, TitleReorderReminder, "Invite a repeat purchase after delivery", delay("30 days"), commerce.TopicOrderDelivered},
		{CategoryPostPurchase, TitleOrderFeedback, "Ask for a review after delivery", delay("3 days"), commerce.TopicOrderDelivered},
	}
}

func delay(value string) *string {
	return &value
}
