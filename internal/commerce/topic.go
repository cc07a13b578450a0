package commerce

// Topic is a normalized commerce webhook topic.
type Topic string

// Inbound topics recognized by the dispatch core. Fulfillment event topics
// are flattened to topic/status form during webhook parsing.
const (
	TopicOrderCreated    Topic = "orders/create"
	TopicOrderCancelled  Topic = "orders/cancelled"
	TopicOrderPaid       Topic = "orders/paid"
	TopicOrderFulfilled  Topic = "orders/fulfilled"
	TopicOutForDelivery  Topic = "fulfillment_events/out_for_delivery"
	TopicOrderDelivered  Topic = "fulfillment_events/delivered"
	TopicRefundCreated   Topic = "refunds/create"
	TopicCustomerCreated Topic = "customers/create"
	TopicCheckoutCreated Topic = "checkouts/create"
	TopicCheckoutUpdated Topic = "checkouts/update"
)

// String returns the wire form of the topic.
func (t Topic) String() string { return string(t) }
