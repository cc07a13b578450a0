package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/templates"
	"shopnotify_backend/platform/logger"
)

type testConfig struct {
	baseURL string
	timeout time.Duration
}

func (c testConfig) GetWhatsAppAPIBaseURL() string         { return c.baseURL }
func (c testConfig) GetWhatsAppSendTimeout() time.Duration { return c.timeout }
func (c testConfig) GetWhatsAppDefaultLanguage() string    { return "en" }

func testCreds() stores.Credentials {
	return stores.Credentials{APIKey: "secret-key", CompanyID: "co-1", PhoneNumberID: "pn-1"}
}

func testContent() templates.Content {
	return templates.Content{Body: templates.BodyContent{Example: map[string]string{"name": "Asha"}}}
}

func TestSendTemplateSuccess(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-key" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Company-ID") != "co-1" {
			t.Errorf("missing company header, got %q", r.Header.Get("X-Company-ID"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message_id": "wamid.123"})
	}))
	defer server.Close()

	client := NewClient(testConfig{baseURL: server.URL, timeout: 5 * time.Second}, logger.New("test"))
	result, err := client.SendTemplate(context.Background(), testCreds(), "91", "9876543210", "order_placed", "", testContent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MessageID != "wamid.123" {
		t.Fatalf("message id = %q", result.MessageID)
	}
	if got.PhoneNumberID != "pn-1" || got.CustomerCountryCode != "91" || got.CustomerNumber != "9876543210" {
		t.Fatalf("request addressing wrong: %+v", got)
	}
	if got.Data.Type != "template" || got.Data.Language != "en" {
		t.Fatalf("default language not applied: %+v", got.Data)
	}
	if got.Data.Context.TemplateName != "order_placed" {
		t.Fatalf("template name = %q", got.Data.Context.TemplateName)
	}
}

func TestSendTemplateRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"template not approved"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig{baseURL: server.URL, timeout: 5 * time.Second}, logger.New("test"))
	_, err := client.SendTemplate(context.Background(), testCreds(), "91", "9876543210", "t", "en", testContent())

	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if dispatchErr.Kind != KindRejected {
		t.Fatalf("kind = %q, want rejected", dispatchErr.Kind)
	}
	if dispatchErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", dispatchErr.StatusCode)
	}
	if dispatchErr.Body == "" {
		t.Fatal("rejection body should be captured")
	}
}

func TestSendTemplateTimeout(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer func() {
		close(block)
		server.Close()
	}()

	client := NewClient(testConfig{baseURL: server.URL, timeout: 50 * time.Millisecond}, logger.New("test"))
	_, err := client.SendTemplate(context.Background(), testCreds(), "91", "9876543210", "t", "en", testContent())

	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if dispatchErr.Kind != KindTimeout {
		t.Fatalf("kind = %q, want timeout", dispatchErr.Kind)
	}
}

func TestSendTemplateMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(testConfig{baseURL: server.URL, timeout: 5 * time.Second}, logger.New("test"))
	_, err := client.SendTemplate(context.Background(), testCreds(), "91", "9876543210", "t", "en", testContent())

	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if dispatchErr.Kind != KindMalformed {
		t.Fatalf("kind = %q, want malformed", dispatchErr.Kind)
	}
}
