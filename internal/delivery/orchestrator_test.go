package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/coachmail/internal/config"
	"github.com/example/coachmail/internal/database"
	"github.com/example/coachmail/pkg/models"
)

// windowInstant is Monday 2024-01-08 09:30 UTC, inside the default
// Monday hour-9 window for UTC recipients.
var windowInstant = time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC)

type fakeStore struct {
	mu         sync.Mutex
	recipients map[string]*models.Recipient
	records    []models.DeliveryRecord
	historyErr error
}

func newFakeStore(recipients ...*models.Recipient) *fakeStore {
	s := &fakeStore{recipients: make(map[string]*models.Recipient)}
	for _, r := range recipients {
		s.recipients[r.ID] = r
	}
	return s
}

func (s *fakeStore) GetActiveRecipients(_ context.Context) ([]models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Recipient
	for _, r := range s.recipients {
		if r.Active {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) GetRecipient(_ context.Context, id string) (*models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[id]
	if !ok {
		return nil, fmt.Errorf("recipient %s not found", id)
	}
	snapshot := *r
	return &snapshot, nil
}

func (s *fakeStore) GetDeliveryHistory(_ context.Context, recipientID string) ([]models.DeliveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	var out []models.DeliveryRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].RecipientID == recipientID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

// CompleteDelivery mirrors the real store: record insert first with
// recipient+week uniqueness, then a guarded week advance.
func (s *fakeStore) CompleteDelivery(_ context.Context, rec *models.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	duplicate := false
	for _, existing := range s.records {
		if existing.RecipientID == rec.RecipientID && existing.WeekNumber == rec.WeekNumber {
			duplicate = true
			break
		}
	}
	if !duplicate {
		s.records = append(s.records, *rec)
	}

	r, ok := s.recipients[rec.RecipientID]
	if !ok || r.CurrentWeek != rec.WeekNumber-1 {
		return database.ErrAdvanceConflict
	}
	r.CurrentWeek = rec.WeekNumber
	sentAt := rec.SentAt
	r.LastDeliveryAt = &sentAt
	return nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, week int, _ models.ProgressionContext) models.WeeklyContent {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return models.WeeklyContent{
		Encouragement:  "Keep at it.",
		ActionItem:     fmt.Sprintf("Concrete task for week %d.", week),
		GoalConnection: "This moves you forward.",
		Source:         models.SourceGenerated,
	}
}

type fakeSender struct {
	mu      sync.Mutex
	rejects map[string]bool
	sent    []string
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejects[to] {
		return errors.New("rejected")
	}
	f.sent = append(f.sent, to)
	return nil
}

func newTestOrchestrator(store Store, sender *fakeSender) *Orchestrator {
	o := New(store, &fakeGenerator{}, sender, config.Default())
	o.now = func() time.Time { return windowInstant }
	return o
}

func activeRecipient(id string, week int) *models.Recipient {
	return &models.Recipient{
		ID:          id,
		Email:       id + "@example.com",
		Timezone:    "UTC",
		GoalsText:   "finish the program",
		CurrentWeek: week,
		Active:      true,
	}
}

// TestSweepDeliversDueRecipient covers one full pass: eligible recipient
// gets content, mail, a delivery record and a week advance.
func TestSweepDeliversDueRecipient(t *testing.T) {
	store := newFakeStore(activeRecipient("r1", 0))
	sender := &fakeSender{}
	o := newTestOrchestrator(store, sender)

	summary, err := o.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if summary.Attempted != 1 || summary.Sent != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	r := store.recipients["r1"]
	if r.CurrentWeek != 1 {
		t.Fatalf("expected week advanced to 1, got %d", r.CurrentWeek)
	}
	if r.LastDeliveryAt == nil || !r.LastDeliveryAt.Equal(windowInstant) {
		t.Fatalf("expected last delivery at %v, got %v", windowInstant, r.LastDeliveryAt)
	}
	if len(store.records) != 1 || store.records[0].WeekNumber != 1 {
		t.Fatalf("expected one week-1 record, got %+v", store.records)
	}
	if store.records[0].DeliveryStatus != models.DeliveryStatusSent {
		t.Fatalf("expected sent status, got %s", store.records[0].DeliveryStatus)
	}
}

// TestSweepIdempotentWithinWindow ensures a second sweep inside the same
// eligible window produces no second record and no second advance.
func TestSweepIdempotentWithinWindow(t *testing.T) {
	store := newFakeStore(activeRecipient("r1", 0))
	sender := &fakeSender{}
	o := newTestOrchestrator(store, sender)

	if _, err := o.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	summary, err := o.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	if summary.Attempted != 0 {
		t.Fatalf("expected no attempts on second sweep, got %+v", summary)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(store.records))
	}
	if store.recipients["r1"].CurrentWeek != 1 {
		t.Fatalf("expected exactly one advance, got week %d", store.recipients["r1"].CurrentWeek)
	}
}

// TestSweepIsolatesFailures ensures one recipient's transport rejection
// neither blocks others nor mutates the failed recipient's state.
func TestSweepIsolatesFailures(t *testing.T) {
	store := newFakeStore(activeRecipient("r1", 2), activeRecipient("r2", 3))
	sender := &fakeSender{rejects: map[string]bool{"r1@example.com": true}}
	o := newTestOrchestrator(store, sender)

	summary, err := o.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if summary.Attempted != 2 || summary.Sent != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if store.recipients["r1"].CurrentWeek != 2 {
		t.Fatalf("expected failed recipient state untouched, got week %d", store.recipients["r1"].CurrentWeek)
	}
	if store.recipients["r2"].CurrentWeek != 4 {
		t.Fatalf("expected successful recipient advanced, got week %d", store.recipients["r2"].CurrentWeek)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected one record, got %d", len(store.records))
	}
}

// TestSweepSkipsCompletedAndInactive ensures terminal and inactive
// recipients never enter the state machine.
func TestSweepSkipsCompletedAndInactive(t *testing.T) {
	done := activeRecipient("done", models.ProgramLengthWeeks)
	inactive := activeRecipient("inactive", 3)
	inactive.Active = false

	store := newFakeStore(done, inactive)
	o := newTestOrchestrator(store, &fakeSender{})

	summary, err := o.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if summary.Attempted != 0 {
		t.Fatalf("expected no attempts, got %+v", summary)
	}
}

// TestAdvanceConflictTreatedAsDelivered ensures a concurrent-advance
// conflict is a success no-op, not a failure.
func TestAdvanceConflictTreatedAsDelivered(t *testing.T) {
	r := activeRecipient("r1", 1)
	store := newFakeStore(r)
	// Another invocation already recorded and advanced week 2
	store.records = append(store.records, models.DeliveryRecord{RecipientID: "r1", WeekNumber: 2})
	store.recipients["r1"].CurrentWeek = 2

	o := newTestOrchestrator(store, &fakeSender{})
	// Bypass the gate so the state machine runs against the stale
	// week-1 snapshot
	stale := *r
	stale.CurrentWeek = 1
	if err := o.deliver(context.Background(), &stale, windowInstant); err != nil {
		t.Fatalf("expected conflict to be a no-op, got %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected no extra record, got %d", len(store.records))
	}
}

// TestDeliverNowBypassesWindow ensures the manual trigger delivers
// outside the weekday/hour gate.
func TestDeliverNowBypassesWindow(t *testing.T) {
	store := newFakeStore(activeRecipient("r1", 4))
	sender := &fakeSender{}
	o := newTestOrchestrator(store, sender)
	// Saturday midnight, far outside the window
	o.now = func() time.Time { return time.Date(2024, 1, 6, 0, 5, 0, 0, time.UTC) }

	if err := o.DeliverNow(context.Background(), "r1"); err != nil {
		t.Fatalf("DeliverNow returned error: %v", err)
	}
	if store.recipients["r1"].CurrentWeek != 5 {
		t.Fatalf("expected week 5, got %d", store.recipients["r1"].CurrentWeek)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
}

// TestDeliverNowHonorsTerminalWeek ensures the manual trigger still
// refuses completed programs.
func TestDeliverNowHonorsTerminalWeek(t *testing.T) {
	store := newFakeStore(activeRecipient("r1", models.ProgramLengthWeeks))
	o := newTestOrchestrator(store, &fakeSender{})

	if err := o.DeliverNow(context.Background(), "r1"); err == nil {
		t.Fatal("expected error for completed recipient")
	}
	if len(store.records) != 0 {
		t.Fatalf("expected no records, got %d", len(store.records))
	}
}

// TestDeliverNowAllowsInactiveRecipient ensures the manual trigger is
// an explicit admin path: it delivers to recipients the sweep skips.
func TestDeliverNowAllowsInactiveRecipient(t *testing.T) {
	paused := activeRecipient("r1", 2)
	paused.Active = false

	store := newFakeStore(paused)
	sender := &fakeSender{}
	o := newTestOrchestrator(store, sender)

	if err := o.DeliverNow(context.Background(), "r1"); err != nil {
		t.Fatalf("DeliverNow returned error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
	if store.recipients["r1"].CurrentWeek != 3 {
		t.Fatalf("expected week 3, got %d", store.recipients["r1"].CurrentWeek)
	}
}

// TestSweepContinuesPastHistoryFailure ensures a persistence failure for
// one recipient is contained to that recipient.
func TestSweepContinuesPastHistoryFailure(t *testing.T) {
	store := newFakeStore(activeRecipient("r1", 1))
	store.historyErr = errors.New("connection reset")

	o := newTestOrchestrator(store, &fakeSender{})
	o.retry = database.RetryPolicy{MaxAttempts: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}

	summary, err := o.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if summary.Failed != 1 || summary.Sent != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if store.recipients["r1"].CurrentWeek != 1 {
		t.Fatal("expected state untouched after history failure")
	}
}
