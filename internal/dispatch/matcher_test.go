package dispatch

import (
	"reflect"
	"testing"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/workflows"
)

func TestCandidateTitles(t *testing.T) {
	tests := []struct {
		name    string
		topic   commerce.Topic
		gateway string
		want    []string
	}{
		{"order created", commerce.TopicOrderCreated, "shopify_payments", []string{workflows.TitleOrderPlaced}},
		{"order created COD adds confirmation", commerce.TopicOrderCreated, "Cash on Delivery (COD)", []string{workflows.TitleOrderPlaced, workflows.TitleCODConfirmation}},
		{"order created cod shorthand", commerce.TopicOrderCreated, "cod", []string{workflows.TitleOrderPlaced, workflows.TitleCODConfirmation}},
		{"order created cash_on_delivery", commerce.TopicOrderCreated, "cash_on_delivery", []string{workflows.TitleOrderPlaced, workflows.TitleCODConfirmation}},
		{"order cancelled", commerce.TopicOrderCancelled, "card", []string{workflows.TitleOrderCancelled}},
		{"order cancelled COD adds cancellation", commerce.TopicOrderCancelled, "cash on delivery", []string{workflows.TitleOrderCancelled, workflows.TitleCODCancelled}},
		{"paid never gets COD titles", commerce.TopicOrderPaid, "cod", []string{workflows.TitlePaymentReceived}},
		{"fulfilled", commerce.TopicOrderFulfilled, "", []string{workflows.TitleOrderShipped}},
		{"out for delivery", commerce.TopicOutForDelivery, "", []string{workflows.TitleOutForDelivery}},
		{"delivered", commerce.TopicOrderDelivered, "", []string{workflows.TitleOrderDelivered}},
		{"refund", commerce.TopicRefundCreated, "", []string{workflows.TitleRefundCreated}},
		{"customer created", commerce.TopicCustomerCreated, "", []string{workflows.TitleWelcomeMessage}},
		{"checkout topics have no immediate titles", commerce.TopicCheckoutUpdated, "", []string{}},
		{"unknown topic", commerce.Topic("products/create"), "cod", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CandidateTitles(tt.topic, tt.gateway)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("CandidateTitles(%q, %q) = %v, want %v", tt.topic, tt.gateway, got, tt.want)
			}
		})
	}
}
