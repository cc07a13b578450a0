package dispatch

import (
	"testing"

	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/templates"
)

func intPtr(n int) *int { return &n }

func TestTotalQuantityPrefersCurrentQuantity(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, CurrentQuantity: intPtr(2)},
		{Quantity: 1},
		{Quantity: 5, CurrentQuantity: intPtr(0)},
	}
	if got := TotalQuantity(items); got != 3 {
		t.Fatalf("TotalQuantity = %d, want 3", got)
	}
}

func TestMapValueKnownFields(t *testing.T) {
	rec := RecordView{
		CustomerName: "Asha Rao",
		OrderRef:     "#1001",
		Phone:        "+919876543210",
		Quantity:     4,
		TotalPrice:   "2499.00",
		PaymentURL:   "https://shop.example/pay",
		TrackingURL:  "https://ship.example/t/9",
		CheckoutURL:  "https://shop.example/cart/abc",
	}
	store := stores.Store{BrandName: "Acme Tea", OnlineShopURL: "https://acmetea.example"}

	tests := []struct {
		field string
		want  string
	}{
		{"Name", "Asha Rao"},
		{"Order id", "#1001"},
		{"Phone number", "+919876543210"},
		{"Quantity", "4"},
		{"Total price", "2499.00"},
		{"Payment Url", "https://shop.example/pay"},
		{"Tracking Url", "https://ship.example/t/9"},
		{"Checkout Url", "https://shop.example/cart/abc"},
		{"Brand Name", "Acme Tea"},
		{"Online Shop Url", "https://acmetea.example"},
	}

	for _, tt := range tests {
		if got := MapValue(tt.field, rec, store); got != tt.want {
			t.Fatalf("MapValue(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestMapValueUnknownFieldIsNeutralNeverPanics(t *testing.T) {
	got := MapValue("Favorite Color", RecordView{}, stores.Store{})
	if got != "Here" {
		t.Fatalf("unknown field = %q, want neutral placeholder", got)
	}
	if got := MapValue("", RecordView{}, stores.Store{}); got != "Here" {
		t.Fatalf("empty field = %q, want neutral placeholder", got)
	}
}

func TestLiveSourceAlwaysResolves(t *testing.T) {
	rec := RecordView{CustomerName: "Asha"}
	src := NewLiveSource(rec, stores.Store{})

	mapping := "Name"
	fallback := "friend"

	value, ok := src.Resolve(templates.Variable{Name: "name", MappingField: &mapping})
	if !ok || value != "Asha" {
		t.Fatalf("mapped resolve = %q/%v", value, ok)
	}

	// Mapping yields nothing: fall back to the configured literal.
	orderMapping := "Order id"
	value, ok = src.Resolve(templates.Variable{Name: "order", MappingField: &orderMapping, FallbackValue: &fallback})
	if !ok || value != "friend" {
		t.Fatalf("fallback resolve = %q/%v", value, ok)
	}

	// No mapping at all: the fallback value is the answer, even when empty.
	value, ok = src.Resolve(templates.Variable{Name: "unmapped"})
	if !ok || value != "" {
		t.Fatalf("unmapped resolve = %q/%v, want empty but resolved", value, ok)
	}
}

func TestViewFromOrder(t *testing.T) {
	order := OrderPayload{
		Name:           "#1001",
		Phone:          "",
		TotalPrice:     "120.00",
		Currency:       "INR",
		OrderStatusURL: "https://shop.example/status/1",
		Customer:       CustomerPayload{FirstName: "Asha", LastName: "Rao", Phone: "+919876543210"},
		LineItems:      []LineItem{{Quantity: 2}},
	}

	view := ViewFromOrder(order)
	if view.CustomerName != "Asha Rao" {
		t.Fatalf("customer name = %q", view.CustomerName)
	}
	if view.Phone != "+919876543210" {
		t.Fatalf("phone should fall back to customer phone, got %q", view.Phone)
	}
	if view.Quantity != 2 || view.OrderRef != "#1001" {
		t.Fatalf("view = %+v", view)
	}
	if view.ButtonLink != "https://shop.example/status/1" {
		t.Fatalf("button link = %q", view.ButtonLink)
	}
}
