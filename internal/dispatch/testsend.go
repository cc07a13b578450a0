package dispatch

import (
	"context"

	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/templates"
	"shopnotify_backend/platform/apperr"
	"shopnotify_backend/platform/phone"

	"github.com/google/uuid"
)

// TestSendParams carries a manual template test-send from the dashboard.
// Values are literal slot fills; there is no live record on this path.
type TestSendParams struct {
	TemplateID     uuid.UUID
	TemplateDataID uuid.UUID
	Phone          string
	Values         map[string]string
	HeaderMediaID  string
	ButtonLink     string
}

// TestSend builds a template from literal values and sends it to one number.
// Every header and body slot must have a non-blank literal; the request is
// rejected with the full list of blank names before the provider is called.
func (s *Service) TestSend(ctx context.Context, store stores.Store, p TestSendParams) error {
	tmpl, err := s.templates.GetByID(ctx, store.ID, p.TemplateID)
	if err != nil {
		return err
	}
	data, err := s.templates.GetData(ctx, store.ID, p.TemplateDataID)
	if err != nil {
		return err
	}
	vars, err := s.templates.ListVariables(ctx, store.ID, p.TemplateDataID)
	if err != nil {
		return err
	}

	content, err := templates.BuildContent(data.Components, vars, templates.LiteralValues(p.Values), templates.BuildOptions{
		HeaderMediaID: p.HeaderMediaID,
		ButtonLink:    p.ButtonLink,
		FallbackLink:  store.OnlineShopURL,
	})
	if err != nil {
		return err
	}

	countryCode, national := phone.Split(p.Phone)
	if national == "" {
		return apperr.Validation("phone number is not usable")
	}
	if countryCode == "" {
		countryCode = store.CountryCode
	}

	if _, err := s.sender.SendTemplate(ctx, store.Credentials(), countryCode, national, tmpl.Name, tmpl.Language, content); err != nil {
		s.log.DispatchAttempt(tmpl.Name, p.Phone, false, "test send: "+err.Error())
		return apperr.Wrap(apperr.KindUnavailable, "provider rejected the test send", err)
	}

	s.log.DispatchAttempt(tmpl.Name, p.Phone, true, "test send")
	return nil
}
