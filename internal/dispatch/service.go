package dispatch

import (
	"context"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/templates"
	"shopnotify_backend/internal/whatsapp"
	"shopnotify_backend/internal/workflows"
	"shopnotify_backend/platform/logger"
	"shopnotify_backend/platform/phone"

	"github.com/google/uuid"
)

// Status is the outcome of one workflow title attempt.
type Status string

const (
	StatusSent    Status = "sent"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// TitleResult is the outcome of one candidate workflow title.
type TitleResult struct {
	Title  string `json:"title"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates per-title outcomes of one dispatch pass. A failed title
// never fails the pass; partial success is the normal case.
type Summary struct {
	Topic   string        `json:"topic"`
	Results []TitleResult `json:"results"`
}

// Sent counts titles that actually went out.
func (s Summary) Sent() int {
	count := 0
	for _, r := range s.Results {
		if r.Status == StatusSent {
			count++
		}
	}
	return count
}

// WorkflowFinder resolves enabled workflow stages by title.
type WorkflowFinder interface {
	FindEnabledByTitles(ctx context.Context, storeID uuid.UUID, titles []string) ([]workflows.WorkflowEvent, error)
}

// TemplateStore reads template snapshots and their variable slots. Every read
// is store-scoped, so a stage linked to a foreign snapshot fails as missing
// instead of sending another store's content.
type TemplateStore interface {
	GetByID(ctx context.Context, storeID, id uuid.UUID) (templates.Template, error)
	GetData(ctx context.Context, storeID, dataID uuid.UUID) (templates.TemplateData, error)
	ListVariables(ctx context.Context, storeID, dataID uuid.UUID) ([]templates.Variable, error)
}

// Sender delivers one built template message to the provider.
type Sender interface {
	SendTemplate(ctx context.Context, creds stores.Credentials, countryCode, number, templateName, language string, content templates.Content) (whatsapp.Result, error)
}

// Service resolves inbound commerce events to workflow sends.
type Service struct {
	workflows WorkflowFinder
	templates TemplateStore
	sender    Sender
	ring      *Ring
	log       *logger.Logger
}

// NewService creates the dispatch orchestrator.
func NewService(wf WorkflowFinder, ts TemplateStore, sender Sender, ring *Ring, log *logger.Logger) *Service {
	return &Service{workflows: wf, templates: ts, sender: sender, ring: ring, log: log}
}

// Ring exposes the recent-event buffer for the debug endpoint.
func (s *Service) Ring() *Ring { return s.ring }

// Dispatch resolves a topic to its candidate workflow titles and sends each
// enabled, template-linked stage immediately. Delayed stages (abandoned cart,
// post-purchase) are not handled here; the reminder scan owns those.
func (s *Service) Dispatch(ctx context.Context, store stores.Store, topic commerce.Topic, gateway string, rec RecordView) Summary {
	summary := Summary{Topic: topic.String()}

	titles := CandidateTitles(topic, gateway)
	if len(titles) == 0 {
		return summary
	}

	enabled, err := s.workflows.FindEnabledByTitles(ctx, store.ID, titles)
	if err != nil {
		s.log.DatabaseError("find workflows", err)
		for _, title := range titles {
			summary.Results = append(summary.Results, TitleResult{
				Title: title, Status: StatusFailed, Error: err.Error(),
			})
		}
		return summary
	}

	byTitle := make(map[string]workflows.WorkflowEvent, len(enabled))
	for _, wf := range enabled {
		byTitle[wf.Title] = wf
	}

	for _, title := range titles {
		wf, ok := byTitle[title]
		if !ok {
			summary.Results = append(summary.Results, TitleResult{
				Title: title, Status: StatusSkipped, Reason: "workflow disabled or missing",
			})
			continue
		}
		summary.Results = append(summary.Results, s.SendWorkflow(ctx, store, wf, rec))
	}

	return summary
}

// SendWorkflow builds and sends one workflow stage for a record. The reminder
// scan calls this directly for due delayed stages.
func (s *Service) SendWorkflow(ctx context.Context, store stores.Store, wf workflows.WorkflowEvent, rec RecordView) TitleResult {
	if !wf.HasTemplate() {
		return TitleResult{Title: wf.Title, Status: StatusSkipped, Reason: "no template linked"}
	}
	if rec.Phone == "" {
		return TitleResult{Title: wf.Title, Status: StatusSkipped, Reason: "no customer phone"}
	}

	tmpl, err := s.templates.GetByID(ctx, store.ID, *wf.TemplateID)
	if err != nil {
		return s.failed(wf.Title, rec.Phone, "load template", err)
	}
	data, err := s.templates.GetData(ctx, store.ID, *wf.TemplateDataID)
	if err != nil {
		return s.failed(wf.Title, rec.Phone, "load template snapshot", err)
	}
	vars, err := s.templates.ListVariables(ctx, store.ID, *wf.TemplateDataID)
	if err != nil {
		return s.failed(wf.Title, rec.Phone, "load template variables", err)
	}

	content, err := templates.BuildContent(data.Components, vars, NewLiveSource(rec, store), templates.BuildOptions{
		ButtonLink:   rec.ButtonLink,
		FallbackLink: store.OnlineShopURL,
	})
	if err != nil {
		return s.failed(wf.Title, rec.Phone, "build content", err)
	}

	countryCode, national := phone.Split(rec.Phone)
	if national == "" {
		return TitleResult{Title: wf.Title, Status: StatusSkipped, Reason: "unusable phone number"}
	}
	if countryCode == "" {
		countryCode = store.CountryCode
	}

	if _, err := s.sender.SendTemplate(ctx, store.Credentials(), countryCode, national, tmpl.Name, tmpl.Language, content); err != nil {
		return s.failed(wf.Title, rec.Phone, "provider send", err)
	}

	s.log.DispatchAttempt(wf.Title, rec.Phone, true, "")
	return TitleResult{Title: wf.Title, Status: StatusSent}
}

func (s *Service) failed(title, phoneNumber, reason string, err error) TitleResult {
	s.log.DispatchAttempt(title, phoneNumber, false, reason+": "+err.Error())
	return TitleResult{Title: title, Status: StatusFailed, Reason: reason, Error: err.Error()}
}
