package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/dispatch"
	"shopnotify_backend/internal/events"
	"shopnotify_backend/internal/stores"
	"shopnotify_backend/platform/apperr"
	"shopnotify_backend/platform/logger"
	"shopnotify_backend/platform/phone"

	"github.com/google/uuid"
)

// StoreResolver finds the receiving store for an inbound webhook.
type StoreResolver interface {
	GetByShopDomain(ctx context.Context, shopDomain string) (stores.Store, error)
}

// CommerceWriter persists the checkout and delivery state some topics carry.
type CommerceWriter interface {
	UpsertCheckout(ctx context.Context, p commerce.UpsertCheckoutParams) error
	DeleteCheckout(ctx context.Context, storeID uuid.UUID, checkoutToken string) error
	UpsertDeliveredOrder(ctx context.Context, p commerce.UpsertDeliveredOrderParams) error
}

// Dispatcher resolves and sends the immediate workflow stages for an event.
type Dispatcher interface {
	Dispatch(ctx context.Context, store stores.Store, topic commerce.Topic, gateway string, rec dispatch.RecordView) dispatch.Summary
}

// Service turns verified Shopify webhooks into persisted state and dispatches.
type Service struct {
	commerce   CommerceWriter
	dispatcher Dispatcher
	bus        events.Bus
	log        *logger.Logger
}

// NewService creates the webhook processing service.
func NewService(cw CommerceWriter, dispatcher Dispatcher, bus events.Bus, log *logger.Logger) *Service {
	return &Service{commerce: cw, dispatcher: dispatcher, bus: bus, log: log}
}

// Process handles one verified webhook. It persists checkout and delivery
// state where the topic requires it, dispatches the immediate stages, and
// publishes the event for observers. Unknown topics are acknowledged with an
// empty summary so the sender does not retry them forever.
func (s *Service) Process(ctx context.Context, store stores.Store, rawTopic string, body []byte) (dispatch.Summary, error) {
	topic, payloadErr := s.normalizeTopic(rawTopic, body)
	if payloadErr != nil {
		return dispatch.Summary{}, payloadErr
	}

	s.log.WebhookReceived(topic.String(), store.ShopDomain)

	summary, err := s.process(ctx, store, topic, body)
	if err != nil {
		return dispatch.Summary{}, err
	}

	s.bus.Publish(ctx, events.CommerceEventReceived{
		BaseEvent: events.NewBaseEvent(),
		StoreID:   store.ID,
		Topic:     topic.String(),
		Payload:   json.RawMessage(body),
	})

	return summary, nil
}

// normalizeTopic flattens raw fulfillment event topics to topic/status form.
func (s *Service) normalizeTopic(rawTopic string, body []byte) (commerce.Topic, error) {
	if !strings.HasPrefix(rawTopic, "fulfillment_events") {
		return commerce.Topic(rawTopic), nil
	}

	var payload dispatch.FulfillmentEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apperr.BadRequest("malformed fulfillment event payload")
	}
	return commerce.Topic("fulfillment_events/" + payload.Status), nil
}

func (s *Service) process(ctx context.Context, store stores.Store, topic commerce.Topic, body []byte) (dispatch.Summary, error) {
	switch topic {
	case commerce.TopicCheckoutCreated, commerce.TopicCheckoutUpdated:
		return s.processCheckout(ctx, store, topic, body)
	case commerce.TopicOrderCreated, commerce.TopicOrderCancelled, commerce.TopicOrderPaid, commerce.TopicOrderFulfilled:
		return s.processOrder(ctx, store, topic, body)
	case commerce.TopicOutForDelivery, commerce.TopicOrderDelivered:
		return s.processFulfillment(ctx, store, topic, body)
	case commerce.TopicRefundCreated:
		return s.processRefund(ctx, store, body)
	case commerce.TopicCustomerCreated:
		return s.processCustomer(ctx, store, body)
	default:
		s.log.Warn("ignoring unhandled webhook topic", "topic", topic.String(), "shop", store.ShopDomain)
		return dispatch.Summary{Topic: topic.String()}, nil
	}
}

// processCheckout records or refreshes an abandoned cart. Reminder stages
// fire later from the scan; nothing is dispatched here.
func (s *Service) processCheckout(ctx context.Context, store stores.Store, topic commerce.Topic, body []byte) (dispatch.Summary, error) {
	var payload dispatch.CheckoutPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return dispatch.Summary{}, apperr.BadRequest("malformed checkout payload")
	}

	summary := dispatch.Summary{Topic: topic.String()}

	contact := payload.ContactPhone()
	if payload.Token == "" || contact == "" {
		// Nothing to remind without a token or a reachable customer.
		return summary, nil
	}

	countryCode, _ := phone.Split(contact)
	lineItems, err := json.Marshal(payload.LineItems)
	if err != nil {
		return dispatch.Summary{}, fmt.Errorf("encode line items: %w", err)
	}

	err = s.commerce.UpsertCheckout(ctx, commerce.UpsertCheckoutParams{
		StoreID:       store.ID,
		CheckoutToken: payload.Token,
		CustomerName:  payload.Customer.FullName(),
		Phone:         phone.NormalizeE164(contact),
		CountryCode:   countryCode,
		Email:         payload.Email,
		TotalPrice:    payload.TotalPrice,
		Currency:      payload.Currency,
		LineItems:     lineItems,
		RecoveryURL:   payload.AbandonedCheckoutURL,
	})
	if err != nil {
		return dispatch.Summary{}, err
	}

	return summary, nil
}

func (s *Service) processOrder(ctx context.Context, store stores.Store, topic commerce.Topic, body []byte) (dispatch.Summary, error) {
	var payload dispatch.OrderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return dispatch.Summary{}, apperr.BadRequest("malformed order payload")
	}

	// An order completes its checkout; pending cart reminders must stop.
	if topic == commerce.TopicOrderCreated && payload.CheckoutToken != "" {
		if err := s.commerce.DeleteCheckout(ctx, store.ID, payload.CheckoutToken); err != nil {
			s.log.DatabaseError("delete recovered checkout", err)
		}
	}

	return s.dispatcher.Dispatch(ctx, store, topic, payload.GatewayName(), dispatch.ViewFromOrder(payload)), nil
}

func (s *Service) processFulfillment(ctx context.Context, store stores.Store, topic commerce.Topic, body []byte) (dispatch.Summary, error) {
	var payload dispatch.FulfillmentEventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return dispatch.Summary{}, apperr.BadRequest("malformed fulfillment event payload")
	}

	// Delivery starts the post-purchase clock: record the order so the scan
	// can fire feedback and reorder stages later.
	if topic == commerce.TopicOrderDelivered && payload.Destination.Phone != "" {
		countryCode, _ := phone.Split(payload.Destination.Phone)
		lineItems, err := json.Marshal(payload.LineItems)
		if err != nil {
			return dispatch.Summary{}, fmt.Errorf("encode line items: %w", err)
		}

		err = s.commerce.UpsertDeliveredOrder(ctx, commerce.UpsertDeliveredOrderParams{
			StoreID:      store.ID,
			OrderID:      payload.OrderID,
			OrderNumber:  orderRef(payload),
			CustomerName: payload.Destination.FullName(),
			Phone:        phone.NormalizeE164(payload.Destination.Phone),
			CountryCode:  countryCode,
			LineItems:    lineItems,
			TrackingURL:  payload.PrimaryTrackingURL(),
		})
		if err != nil {
			return dispatch.Summary{}, err
		}
	}

	return s.dispatcher.Dispatch(ctx, store, topic, "", dispatch.ViewFromFulfillment(payload)), nil
}

func (s *Service) processRefund(ctx context.Context, store stores.Store, body []byte) (dispatch.Summary, error) {
	var payload dispatch.RefundPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return dispatch.Summary{}, apperr.BadRequest("malformed refund payload")
	}

	if payload.Order == nil {
		s.log.Warn("refund payload carries no order, skipping dispatch",
			"shop", store.ShopDomain, "order_id", payload.OrderID)
		return dispatch.Summary{Topic: commerce.TopicRefundCreated.String()}, nil
	}

	return s.dispatcher.Dispatch(ctx, store, commerce.TopicRefundCreated, "", dispatch.ViewFromOrder(*payload.Order)), nil
}

func (s *Service) processCustomer(ctx context.Context, store stores.Store, body []byte) (dispatch.Summary, error) {
	var payload dispatch.CustomerPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return dispatch.Summary{}, apperr.BadRequest("malformed customer payload")
	}

	return s.dispatcher.Dispatch(ctx, store, commerce.TopicCustomerCreated, "", dispatch.ViewFromCustomer(payload)), nil
}

func orderRef(p dispatch.FulfillmentEventPayload) string {
	if p.OrderName != "" {
		return p.OrderName
	}
	return strconv.FormatInt(p.OrderID, 10)
}
