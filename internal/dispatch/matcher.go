package dispatch

import (
	"strings"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/workflows"
)

// topicTitles maps each inbound topic to the workflow titles it can trigger
// immediately. Checkout topics are absent on purpose: abandoned cart stages
// fire from the reminder scan, never from the webhook itself.
var topicTitles = map[commerce.Topic][]string{
	commerce.TopicOrderCreated:    {workflows.TitleOrderPlaced},
	commerce.TopicOrderCancelled:  {workflows.TitleOrderCancelled},
	commerce.TopicOrderPaid:       {workflows.TitlePaymentReceived},
	commerce.TopicOrderFulfilled:  {workflows.TitleOrderShipped},
	commerce.TopicOutForDelivery:  {workflows.TitleOutForDelivery},
	commerce.TopicOrderDelivered:  {workflows.TitleOrderDelivered},
	commerce.TopicRefundCreated:   {workflows.TitleRefundCreated},
	commerce.TopicCustomerCreated: {workflows.TitleWelcomeMessage},
}

// CandidateTitles resolves an inbound topic to the workflow titles to attempt.
// Cash on delivery orders additionally trigger the COD confirmation stage on
// creation and the COD cancellation stage on cancellation.
func CandidateTitles(topic commerce.Topic, gateway string) []string {
	base := topicTitles[topic]
	titles := make([]string, len(base))
	copy(titles, base)

	if isCODGateway(gateway) {
		switch topic {
		case commerce.TopicOrderCreated:
			titles = append(titles, workflows.TitleCODConfirmation)
		case commerce.TopicOrderCancelled:
			titles = append(titles, workflows.TitleCODCancelled)
		}
	}

	return titles
}

func isCODGateway(gateway string) bool {
	normalized := strings.ToLower(strings.TrimSpace(gateway))
	if normalized == "" {
		return false
	}
	return normalized == "cod" ||
		strings.Contains(normalized, "cash on delivery") ||
		strings.Contains(normalized, "cash_on_delivery")
}
