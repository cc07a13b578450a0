package reminders

import (
	"context"
	"sync"
	"time"

	"shopnotify_backend/internal/commerce"
	"shopnotify_backend/internal/dispatch"
	"shopnotify_backend/internal/stores"
	"shopnotify_backend/internal/workflows"
	"shopnotify_backend/platform/apperr"
	"shopnotify_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// scanConcurrency bounds the record fan-out of one scan pass. Stages within
// one record always run sequentially so a (store, phone, stage) pair is never
// processed twice concurrently by the same pass.
const scanConcurrency = 8

// checkoutStages is the fixed firing order of abandoned cart reminders.
var checkoutStages = []struct {
	Stage commerce.ReminderStage
	Title string
}{
	{commerce.StageReminder1, workflows.TitleReminder1},
	{commerce.StageReminder2, workflows.TitleReminder2},
	{commerce.StageReminder3, workflows.TitleReminder3},
}

// deliveredStages is the firing order of post-purchase flags.
var deliveredStages = []struct {
	Flag  commerce.DeliveredFlag
	Title string
}{
	{commerce.FlagOrderFeedback, workflows.TitleOrderFeedback},
	{commerce.FlagReorderReminder, workflows.TitleReorderReminder},
}

// CommerceStore is the commerce state access the scan needs.
type CommerceStore interface {
	ListPendingCheckouts(ctx context.Context, limit int) ([]commerce.CheckoutSession, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID, stage commerce.ReminderStage) (bool, error)
	DeleteFullyProcessedCheckouts(ctx context.Context) (int64, error)
	ListPendingDeliveredOrders(ctx context.Context, limit int) ([]commerce.DeliveredOrder, error)
	MarkDeliveredFlagSent(ctx context.Context, id uuid.UUID, flag commerce.DeliveredFlag) (bool, error)
	DeleteFullyProcessedDeliveredOrders(ctx context.Context) (int64, error)
}

// StoreReader loads the owning store of a record.
type StoreReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (stores.Store, error)
}

// WorkflowReader reads one stage's configuration by title.
type WorkflowReader interface {
	FindByTitle(ctx context.Context, storeID uuid.UUID, title string) (workflows.WorkflowEvent, error)
}

// WorkflowSender builds and sends one workflow stage for a record.
type WorkflowSender interface {
	SendWorkflow(ctx context.Context, store stores.Store, wf workflows.WorkflowEvent, rec dispatch.RecordView) dispatch.TitleResult
}

// StageOutcome is the result of one stage attempt during a scan.
type StageOutcome struct {
	Title  string          `json:"title"`
	Status dispatch.Status `json:"status"`
	Reason string          `json:"reason,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RecordOutcome groups the stage outcomes of one scanned record.
type RecordOutcome struct {
	RecordID uuid.UUID      `json:"recordId"`
	Kind     string         `json:"kind"`
	Phone    string         `json:"phone"`
	Stages   []StageOutcome `json:"stages"`
}

// ScanResult aggregates one scan pass. A stage failure is recorded here and
// never aborts sibling stages or records.
type ScanResult struct {
	CheckoutsScanned int             `json:"checkoutsScanned"`
	DeliveredScanned int             `json:"deliveredScanned"`
	Sent             int             `json:"sent"`
	Outcomes         []RecordOutcome `json:"outcomes"`
}

// Service runs the periodic reminder scan and cleanup.
type Service struct {
	commerce  CommerceStore
	stores    StoreReader
	workflows WorkflowReader
	sender    WorkflowSender
	batchSize int
	log       *logger.Logger
}

// NewService creates the reminder scan service.
func NewService(cs CommerceStore, sr StoreReader, wr WorkflowReader, sender WorkflowSender, batchSize int, log *logger.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Service{
		commerce:  cs,
		stores:    sr,
		workflows: wr,
		sender:    sender,
		batchSize: batchSize,
		log:       log,
	}
}

// Scan walks every pending record and fires each enabled, due, unsent stage.
// Records fan out across a bounded group; stages within one record run in
// order. Sends happen before the flag flip, so delivery is at-least-once and
// the compare-and-set resolves concurrent ticks to a single flip.
func (s *Service) Scan(ctx context.Context) (ScanResult, error) {
	now := time.Now().UTC()
	var result ScanResult

	checkouts, err := s.commerce.ListPendingCheckouts(ctx, s.batchSize)
	if err != nil {
		return result, err
	}
	delivered, err := s.commerce.ListPendingDeliveredOrders(ctx, s.batchSize)
	if err != nil {
		return result, err
	}
	result.CheckoutsScanned = len(checkouts)
	result.DeliveredScanned = len(delivered)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	for _, c := range checkouts {
		g.Go(func() error {
			outcome := s.scanCheckout(gctx, c, now)
			mu.Lock()
			result.Outcomes = append(result.Outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	for _, d := range delivered {
		g.Go(func() error {
			outcome := s.scanDelivered(gctx, d, now)
			mu.Lock()
			result.Outcomes = append(result.Outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}

	// Workers report failures through outcomes, never through the group.
	_ = g.Wait()

	for _, o := range result.Outcomes {
		for _, st := range o.Stages {
			if st.Status == dispatch.StatusSent {
				result.Sent++
			}
		}
	}

	s.log.Info("reminder scan finished",
		"checkouts", result.CheckoutsScanned,
		"delivered", result.DeliveredScanned,
		"sent", result.Sent)
	return result, nil
}

func (s *Service) scanCheckout(ctx context.Context, c commerce.CheckoutSession, now time.Time) RecordOutcome {
	outcome := RecordOutcome{RecordID: c.ID, Kind: "checkout", Phone: c.Phone}

	store, err := s.stores.GetByID(ctx, c.StoreID)
	if err != nil {
		outcome.Stages = append(outcome.Stages, StageOutcome{
			Status: dispatch.StatusFailed, Reason: "load store", Error: err.Error(),
		})
		return outcome
	}

	rec := dispatch.ViewFromCheckoutSession(c)
	for _, stage := range checkoutStages {
		if c.ReminderSent(stage.Stage) {
			continue
		}
		st := s.runStage(ctx, store, stage.Title, c.UpdatedAt, now, rec, func() (bool, error) {
			return s.commerce.MarkReminderSent(ctx, c.ID, stage.Stage)
		})
		outcome.Stages = append(outcome.Stages, st)
	}
	return outcome
}

func (s *Service) scanDelivered(ctx context.Context, d commerce.DeliveredOrder, now time.Time) RecordOutcome {
	outcome := RecordOutcome{RecordID: d.ID, Kind: "delivered", Phone: d.Phone}

	store, err := s.stores.GetByID(ctx, d.StoreID)
	if err != nil {
		outcome.Stages = append(outcome.Stages, StageOutcome{
			Status: dispatch.StatusFailed, Reason: "load store", Error: err.Error(),
		})
		return outcome
	}

	rec := dispatch.ViewFromDeliveredOrder(d)
	for _, stage := range deliveredStages {
		if d.FlagSent(stage.Flag) {
			continue
		}
		st := s.runStage(ctx, store, stage.Title, d.DeliveredAt, now, rec, func() (bool, error) {
			return s.commerce.MarkDeliveredFlagSent(ctx, d.ID, stage.Flag)
		})
		outcome.Stages = append(outcome.Stages, st)
	}
	return outcome
}

// runStage fires one stage when it is configured, enabled and due, then flips
// its flag. markSent is the record-specific compare-and-set.
func (s *Service) runStage(ctx context.Context, store stores.Store, title string, anchor, now time.Time, rec dispatch.RecordView, markSent func() (bool, error)) StageOutcome {
	wf, err := s.workflows.FindByTitle(ctx, store.ID, title)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return StageOutcome{Title: title, Status: dispatch.StatusSkipped, Reason: "stage not configured"}
		}
		return StageOutcome{Title: title, Status: dispatch.StatusFailed, Reason: "load workflow", Error: err.Error()}
	}
	if !wf.Enabled {
		return StageOutcome{Title: title, Status: dispatch.StatusSkipped, Reason: "workflow disabled"}
	}
	if !IsDue(anchor, wf.DelayMinutes(), now) {
		return StageOutcome{Title: title, Status: dispatch.StatusSkipped, Reason: "not due"}
	}

	result := s.sender.SendWorkflow(ctx, store, wf, rec)
	if result.Status != dispatch.StatusSent {
		return StageOutcome{Title: title, Status: result.Status, Reason: result.Reason, Error: result.Error}
	}

	flipped, err := markSent()
	if err != nil {
		return StageOutcome{Title: title, Status: dispatch.StatusFailed, Reason: "mark sent", Error: err.Error()}
	}
	if !flipped {
		// A concurrent tick won the flip after both sent. The flag stays
		// monotonic either way.
		s.log.Warn("reminder flag already set after send", "title", title, "store_id", store.ID)
	}
	return StageOutcome{Title: title, Status: dispatch.StatusSent}
}

// CleanupResult reports how many fully processed records were removed.
type CleanupResult struct {
	Checkouts int64 `json:"checkouts"`
	Delivered int64 `json:"delivered"`
}

// Cleanup deletes records whose every applicable flag has fired. Run after a
// scan pass; kept separate so it is independently testable and schedulable.
func (s *Service) Cleanup(ctx context.Context) (CleanupResult, error) {
	checkouts, err := s.commerce.DeleteFullyProcessedCheckouts(ctx)
	if err != nil {
		return CleanupResult{}, err
	}
	delivered, err := s.commerce.DeleteFullyProcessedDeliveredOrders(ctx)
	if err != nil {
		return CleanupResult{Checkouts: checkouts}, err
	}

	if checkouts > 0 || delivered > 0 {
		s.log.Info("reminder cleanup removed records", "checkouts", checkouts, "delivered", delivered)
	}
	return CleanupResult{Checkouts: checkouts, Delivered: delivered}, nil
}
