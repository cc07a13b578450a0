package reminders

import (
	"context"
	"sync"
	"testing"
	"time"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/dispatch"
	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/workflows"
	"shopnotify_backend/platform/apperr"
	"shopnotify_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeCommerce keeps records in memory and implements the compare-and-set
// semantics of the real repository.
type fakeCommerce struct {
	mu        sync.Mutex
	checkouts map[uuid.UUID]*commerce.CheckoutSession
	delivered map[uuid.UUID]*commerce.DeliveredOrder
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		checkouts: map[uuid.UUID]*commerce.CheckoutSession{},
		delivered: map[uuid.UUID]*commerce.DeliveredOrder{},
	}
}

func (f *fakeCommerce) ListPendingCheckouts(_ context.Context, limit int) ([]commerce.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []commerce.CheckoutSession
	for _, c := range f.checkouts {
		if !(c.Reminder1Sent && c.Reminder2Sent && c.Reminder3Sent) {
			result = append(result, *c)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (f *fakeCommerce) MarkReminderSent(_ context.Context, id uuid.UUID, stage commerce.ReminderStage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.checkouts[id]
	if !ok {
		return false, nil
	}
	switch stage {
	case commerce.StageReminder1:
		if c.Reminder1Sent {
			return false, nil
		}
		c.Reminder1Sent = true
	case commerce.StageReminder2:
		if c.Reminder2Sent {
			return false, nil
		}
		c.Reminder2Sent = true
	case commerce.StageReminder3:
		if c.Reminder3Sent {
			return false, nil
		}
		c.Reminder3Sent = true
	}
	return true, nil
}

func (f *fakeCommerce) DeleteFullyProcessedCheckouts(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, c := range f.checkouts {
		if c.Reminder1Sent && c.Reminder2Sent && c.Reminder3Sent {
			delete(f.checkouts, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeCommerce) ListPendingDeliveredOrders(_ context.Context, limit int) ([]commerce.DeliveredOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []commerce.DeliveredOrder
	for _, d := range f.delivered {
		if !(d.OrderFeedbackSent && d.ReorderReminderSent) {
			result = append(result, *d)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (f *fakeCommerce) MarkDeliveredFlagSent(_ context.Context, id uuid.UUID, flag commerce.DeliveredFlag) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.delivered[id]
	if !ok {
		return false, nil
	}
	switch flag {
	case commerce.FlagOrderFeedback:
		if d.OrderFeedbackSent {
			return false, nil
		}
		d.OrderFeedbackSent = true
	case commerce.FlagReorderReminder:
		if d.ReorderReminderSent {
			return false, nil
		}
		d.ReorderReminderSent = true
	}
	return true, nil
}

func (f *fakeCommerce) DeleteFullyProcessedDeliveredOrders(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, d := range f.delivered {
		if d.OrderFeedbackSent && d.ReorderReminderSent {
			delete(f.delivered, id)
			removed++
		}
	}
	return removed, nil
}

type fakeStores struct {
	store stores.Store
}

func (f *fakeStores) GetByID(context.Context, uuid.UUID) (stores.Store, error) {
	return f.store, nil
}

type fakeWorkflows struct {
	byTitle map[string]workflows.WorkflowEvent
}

func (f *fakeWorkflows) FindByTitle(_ context.Context, _ uuid.UUID, title string) (workflows.WorkflowEvent, error) {
	wf, ok := f.byTitle[title]
	if !ok {
		return workflows.WorkflowEvent{}, apperr.NotFound("workflow not found")
	}
	return wf, nil
}

type fakeWorkflowSender struct {
	mu     sync.Mutex
	sent   []string
	result dispatch.TitleResult
	fail   map[string]bool
}

func (f *fakeWorkflowSender) SendWorkflow(_ context.Context, _ stores.Store, wf workflows.WorkflowEvent, _ dispatch.RecordView) dispatch.TitleResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil && f.fail[wf.Title] {
		return dispatch.TitleResult{Title: wf.Title, Status: dispatch.StatusFailed, Error: "provider down"}
	}
	f.sent = append(f.sent, wf.Title)
	return dispatch.TitleResult{Title: wf.Title, Status: dispatch.StatusSent}
}

func (f *fakeWorkflowSender) sentTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func enabledStage(title, delay string) workflows.WorkflowEvent {
	templateID := uuid.New()
	dataID := uuid.New()
	return workflows.WorkflowEvent{
		ID:             uuid.New(),
		Title:          title,
		Delay:          &delay,
		Enabled:        true,
		TemplateID:     &templateID,
		TemplateDataID: &dataID,
	}
}

func reminderWorkflows() *fakeWorkflows {
	return &fakeWorkflows{byTitle: map[string]workflows.WorkflowEvent{
		workflows.TitleReminder1:       enabledStage(workflows.TitleReminder1, "30 minutes"),
		workflows.TitleReminder2:       enabledStage(workflows.TitleReminder2, "24 hours"),
		workflows.TitleReminder3:       enabledStage(workflows.TitleReminder3, "3 days"),
		workflows.TitleOrderFeedback:   enabledStage(workflows.TitleOrderFeedback, "3 days"),
		workflows.TitleReorderReminder: enabledStage(workflows.TitleReorderReminder, "30 days"),
	}}
}

func newTestService(fc *fakeCommerce, fw *fakeWorkflows, sender *fakeWorkflowSender) *Service {
	return NewService(fc, &fakeStores{store: stores.Store{ID: uuid.New()}}, fw, sender, 100, logger.New("test"))
}

func addCheckout(fc *fakeCommerce, age time.Duration) uuid.UUID {
	id := uuid.New()
	fc.checkouts[id] = &commerce.CheckoutSession{
		ID:        id,
		StoreID:   uuid.New(),
		Phone:     "+919876543210",
		UpdatedAt: time.Now().UTC().Add(-age),
	}
	return id
}

func TestScanFiresDueStagesOnly(t *testing.T) {
	fc := newFakeCommerce()
	// Old enough for reminder 1 (30m) but not reminder 2 (24h).
	addCheckout(fc, 2*time.Hour)
	sender := &fakeWorkflowSender{}
	svc := newTestService(fc, reminderWorkflows(), sender)

	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("sent = %d, want 1: %+v", result.Sent, result.Outcomes)
	}
	if got := sender.sentTitles(); len(got) != 1 || got[0] != workflows.TitleReminder1 {
		t.Fatalf("sent titles = %v", got)
	}
}

func TestScanSecondPassSendsNothing(t *testing.T) {
	fc := newFakeCommerce()
	addCheckout(fc, 2*time.Hour)
	sender := &fakeWorkflowSender{}
	svc := newTestService(fc, reminderWorkflows(), sender)

	if _, err := svc.Scan(context.Background()); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	if result.Sent != 0 {
		t.Fatalf("second pass sent %d, want 0", result.Sent)
	}
	if got := sender.sentTitles(); len(got) != 1 {
		t.Fatalf("total sends = %v, want exactly one", got)
	}
}

func TestScanFlagsStayMonotonic(t *testing.T) {
	fc := newFakeCommerce()
	id := addCheckout(fc, 10*24*time.Hour) // all three stages due
	sender := &fakeWorkflowSender{}
	svc := newTestService(fc, reminderWorkflows(), sender)

	if _, err := svc.Scan(context.Background()); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	c := fc.checkouts[id]
	if !(c.Reminder1Sent && c.Reminder2Sent && c.Reminder3Sent) {
		t.Fatalf("all flags should be set, got %+v", c)
	}
	if len(sender.sentTitles()) != 3 {
		t.Fatalf("sends = %v, want all three stages once", sender.sentTitles())
	}
}

func TestScanStageFailureDoesNotBlockSiblings(t *testing.T) {
	fc := newFakeCommerce()
	id := addCheckout(fc, 10*24*time.Hour)
	sender := &fakeWorkflowSender{fail: map[string]bool{workflows.TitleReminder2: true}}
	svc := newTestService(fc, reminderWorkflows(), sender)

	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.Sent != 2 {
		t.Fatalf("sent = %d, want 2 despite reminder 2 failing", result.Sent)
	}

	c := fc.checkouts[id]
	if c.Reminder2Sent {
		t.Fatal("failed stage must not flip its flag")
	}
	if !c.Reminder1Sent || !c.Reminder3Sent {
		t.Fatalf("sibling stages should have fired: %+v", c)
	}
}

func TestScanDisabledStageSkipped(t *testing.T) {
	fc := newFakeCommerce()
	addCheckout(fc, 2*time.Hour)
	fw := reminderWorkflows()
	disabled := fw.byTitle[workflows.TitleReminder1]
	disabled.Enabled = false
	fw.byTitle[workflows.TitleReminder1] = disabled

	sender := &fakeWorkflowSender{}
	svc := newTestService(fc, fw, sender)

	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.Sent != 0 {
		t.Fatalf("disabled stage sent %d, want 0", result.Sent)
	}
}

func TestScanDeliveredOrders(t *testing.T) {
	fc := newFakeCommerce()
	id := uuid.New()
	fc.delivered[id] = &commerce.DeliveredOrder{
		ID:          id,
		StoreID:     uuid.New(),
		Phone:       "+919876543210",
		DeliveredAt: time.Now().UTC().Add(-4 * 24 * time.Hour),
	}

	sender := &fakeWorkflowSender{}
	svc := newTestService(fc, reminderWorkflows(), sender)

	result, err := svc.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	// Feedback (3 days) is due, reorder (30 days) is not.
	if result.Sent != 1 {
		t.Fatalf("sent = %d, want 1", result.Sent)
	}
	if !fc.delivered[id].OrderFeedbackSent || fc.delivered[id].ReorderReminderSent {
		t.Fatalf("flags wrong: %+v", fc.delivered[id])
	}
}

func TestCleanupRemovesOnlyFullyProcessed(t *testing.T) {
	fc := newFakeCommerce()
	done := uuid.New()
	fc.checkouts[done] = &commerce.CheckoutSession{
		ID: done, Reminder1Sent: true, Reminder2Sent: true, Reminder3Sent: true,
	}
	pending := addCheckout(fc, time.Hour)

	partial := uuid.New()
	fc.delivered[partial] = &commerce.DeliveredOrder{ID: partial, OrderFeedbackSent: true}
	finished := uuid.New()
	fc.delivered[finished] = &commerce.DeliveredOrder{ID: finished, OrderFeedbackSent: true, ReorderReminderSent: true}

	svc := newTestService(fc, reminderWorkflows(), &fakeWorkflowSender{})
	result, err := svc.Cleanup(context.Background())
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if result.Checkouts != 1 || result.Delivered != 1 {
		t.Fatalf("cleanup = %+v, want one of each", result)
	}
	if _, ok := fc.checkouts[pending]; !ok {
		t.Fatal("pending checkout must survive cleanup")
	}
	if _, ok := fc.delivered[partial]; !ok {
		t.Fatal("partially processed delivered order must survive cleanup")
	}
}
