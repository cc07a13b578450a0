package dispatch

import (
	"encoding/json"
	"strconv"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/templates"
)

// MappingField is a configured dynamic value source for a template slot.
// The key space is open: dashboards may configure fields this build does not
// know, so lookup is total and unknown fields resolve to a neutral value.
type MappingField string

const (
	FieldName          MappingField = "Name"
	FieldOrderID       MappingField = "Order id"
	FieldPhoneNumber   MappingField = "Phone number"
	FieldQuantity      MappingField = "Quantity"
	FieldTotalPrice    MappingField = "Total price"
	FieldPaymentURL    MappingField = "Payment Url"
	FieldTrackingURL   MappingField = "Tracking Url"
	FieldCheckoutURL   MappingField = "Checkout Url"
	FieldBrandName     MappingField = "Brand Name"
	FieldOnlineShopURL MappingField = "Online Shop Url"
)

// neutralValue stands in for fields this build cannot resolve. A reader sees
// a generic word instead of a template crash.
const neutralValue = "Here"

// RecordView is the normalized event shape the mapper reads from. Each call
// site builds the view from its own payload; fields that do not apply to the
// shape stay empty.
type RecordView struct {
	CustomerName string
	OrderRef     string
	Phone        string
	Quantity     int
	TotalPrice   string
	Currency     string
	PaymentURL   string
	TrackingURL  string
	CheckoutURL  string
	// ButtonLink is the record-specific destination substituted into dynamic
	// button URLs: recovery link for carts, tracking link for fulfillments.
	ButtonLink string
}

var mappingTable = map[MappingField]func(RecordView, stores.Store) string{
	FieldName:          func(r RecordView, _ stores.Store) string { return r.CustomerName },
	FieldOrderID:       func(r RecordView, _ stores.Store) string { return r.OrderRef },
	FieldPhoneNumber:   func(r RecordView, _ stores.Store) string { return r.Phone },
	FieldQuantity:      func(r RecordView, _ stores.Store) string { return strconv.Itoa(r.Quantity) },
	FieldTotalPrice:    func(r RecordView, _ stores.Store) string { return r.TotalPrice },
	FieldPaymentURL:    func(r RecordView, _ stores.Store) string { return r.PaymentURL },
	FieldTrackingURL:   func(r RecordView, _ stores.Store) string { return r.TrackingURL },
	FieldCheckoutURL:   func(r RecordView, _ stores.Store) string { return r.CheckoutURL },
	FieldBrandName:     func(_ RecordView, s stores.Store) string { return s.BrandName },
	FieldOnlineShopURL: func(_ RecordView, s stores.Store) string { return s.OnlineShopURL },
}

// MapValue resolves one mapping field against a record and its store.
// Total over the open field key space: unknown fields yield a neutral value,
// never an error.
func MapValue(field string, rec RecordView, store stores.Store) string {
	fn, ok := mappingTable[MappingField(field)]
	if !ok {
		return neutralValue
	}
	return fn(rec, store)
}

// liveSource feeds the content builder from the variable mapper. Unlike the
// literal test-send source it always resolves: mapped value first, fallback
// value when the mapping yields nothing.
type liveSource struct {
	rec   RecordView
	store stores.Store
}

// NewLiveSource creates a builder value source over a live event record.
func NewLiveSource(rec RecordView, store stores.Store) templates.ValueSource {
	return liveSource{rec: rec, store: store}
}

func (s liveSource) Resolve(v templates.Variable) (string, bool) {
	mapping, fallback := v.MappingOrFallback()
	if mapping == "" {
		return fallback, true
	}
	value := MapValue(mapping, s.rec, s.store)
	if value == "" {
		return fallback, true
	}
	return value, true
}

// ViewFromOrder builds the mapper view for an order payload.
func ViewFromOrder(p OrderPayload) RecordView {
	return RecordView{
		CustomerName: p.Customer.FullName(),
		OrderRef:     p.Name,
		Phone:        p.ContactPhone(),
		Quantity:     TotalQuantity(p.LineItems),
		TotalPrice:   p.TotalPrice,
		Currency:     p.Currency,
		PaymentURL:   p.OrderStatusURL,
		ButtonLink:   p.OrderStatusURL,
	}
}

// ViewFromCheckout builds the mapper view for a checkout payload.
func ViewFromCheckout(p CheckoutPayload) RecordView {
	return RecordView{
		CustomerName: p.Customer.FullName(),
		Phone:        p.ContactPhone(),
		Quantity:     TotalQuantity(p.LineItems),
		TotalPrice:   p.TotalPrice,
		Currency:     p.Currency,
		CheckoutURL:  p.AbandonedCheckoutURL,
		ButtonLink:   p.AbandonedCheckoutURL,
	}
}

// ViewFromCustomer builds the mapper view for a customer payload. Welcome
// messages have no order context.
func ViewFromCustomer(p CustomerPayload) RecordView {
	return RecordView{
		CustomerName: p.FullName(),
		Phone:        p.Phone,
	}
}

// ViewFromFulfillment builds the mapper view for a fulfillment event payload.
func ViewFromFulfillment(p FulfillmentEventPayload) RecordView {
	tracking := p.PrimaryTrackingURL()
	return RecordView{
		CustomerName: p.Destination.FullName(),
		OrderRef:     p.OrderName,
		Phone:        p.Destination.Phone,
		Quantity:     TotalQuantity(p.LineItems),
		TrackingURL:  tracking,
		ButtonLink:   tracking,
	}
}

// ViewFromCheckoutSession builds the mapper view for a persisted abandoned
// cart. The reminder scan uses this path.
func ViewFromCheckoutSession(c commerce.CheckoutSession) RecordView {
	return RecordView{
		CustomerName: c.CustomerName,
		Phone:        c.Phone,
		Quantity:     TotalQuantity(decodeLineItems(c.LineItems)),
		TotalPrice:   c.TotalPrice,
		Currency:     c.Currency,
		CheckoutURL:  c.RecoveryURL,
		ButtonLink:   c.RecoveryURL,
	}
}

// ViewFromDeliveredOrder builds the mapper view for a persisted delivered
// order. The post-purchase reminder scan uses this path.
func ViewFromDeliveredOrder(d commerce.DeliveredOrder) RecordView {
	return RecordView{
		CustomerName: d.CustomerName,
		OrderRef:     d.OrderNumber,
		Phone:        d.Phone,
		Quantity:     TotalQuantity(decodeLineItems(d.LineItems)),
		TotalPrice:   d.TotalPrice,
		Currency:     d.Currency,
		TrackingURL:  d.TrackingURL,
		ButtonLink:   d.TrackingURL,
	}
}

func decodeLineItems(raw json.RawMessage) []LineItem {
	if len(raw) == 0 {
		return nil
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
