// Package whatsapp is the outbound provider client. It speaks the template
// send API of the WhatsApp Business provider and classifies failures so
// callers can tell a timeout from a rejection.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/templates"
	"shopnotify_backend/platform/config"
	"shopnotify_backend/platform/logger"
)

// ErrorKind classifies a failed send.
type ErrorKind string

const (
	// KindTimeout means the provider did not answer within the client timeout.
	KindTimeout ErrorKind = "timeout"
	// KindRejected means the provider answered with a non-2xx status.
	KindRejected ErrorKind = "rejected"
	// KindMalformed means the provider answered 2xx with an unreadable body.
	KindMalformed ErrorKind = "malformed"
)

// DispatchError is a classified send failure.
type DispatchError struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *DispatchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("whatsapp send %s (status %d): %s", e.Kind, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("whatsapp send %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("whatsapp send %s", e.Kind)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// Result is a successful send acknowledgement.
type Result struct {
	MessageID  string
	StatusCode int
}

// Client sends template messages through the provider API.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	defaultLanguage string
	log             *logger.Logger
}

// NewClient creates a provider client. The HTTP timeout bounds each send
// individually, never a whole reminder batch.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient:      &http.Client{Timeout: cfg.GetWhatsAppSendTimeout()},
		baseURL:         cfg.GetWhatsAppAPIBaseURL(),
		defaultLanguage: cfg.GetWhatsAppDefaultLanguage(),
		log:             log,
	}
}

type sendRequest struct {
	PhoneNumberID       string   `json:"phone_number_id"`
	CustomerCountryCode string   `json:"customer_country_code"`
	CustomerNumber      string   `json:"customer_number"`
	Data                sendData `json:"data"`
}

type sendData struct {
	Type     string      `json:"type"`
	Language string      `json:"language"`
	Context  sendContext `json:"context"`
}

type sendContext struct {
	TemplateName string                    `json:"template_name"`
	Language     string                    `json:"language"`
	Header       *templates.HeaderContent  `json:"header,omitempty"`
	Body         templates.BodyContent     `json:"body"`
	Buttons      []templates.ButtonContent `json:"buttons,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
}

// SendTemplate delivers one template message. countryCode and number are the
// customer's dialing code and national number. language falls back to the
// client default when empty.
func (c *Client) SendTemplate(ctx context.Context, creds stores.Credentials, countryCode, number, templateName, language string, content templates.Content) (Result, error) {
	if language == "" {
		language = c.defaultLanguage
	}

	payload := sendRequest{
		PhoneNumberID:       creds.PhoneNumberID,
		CustomerCountryCode: countryCode,
		CustomerNumber:      number,
		Data: sendData{
			Type:     "template",
			Language: language,
			Context: sendContext{
				TemplateName: templateName,
				Language:     language,
				Header:       content.Header,
				Body:         content.Body,
				Buttons:      content.Buttons,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages/send-template", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	req.Header.Set("X-Company-ID", creds.CompanyID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Result{}, &DispatchError{Kind: KindTimeout, Err: err}
		}
		return Result{}, &DispatchError{Kind: KindRejected, Err: err}
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &DispatchError{
			Kind:       KindRejected,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if readErr != nil {
		return Result{}, &DispatchError{Kind: KindMalformed, StatusCode: resp.StatusCode, Err: readErr}
	}

	var parsed sendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, &DispatchError{
			Kind:       KindMalformed,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        err,
		}
	}

	return Result{MessageID: parsed.MessageID, StatusCode: resp.StatusCode}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
