// Package delivery drives the weekly sweep: for each eligible recipient
// it builds progression context, generates content, hands it to the mail
// transport and advances program state on a confirmed send.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/coachmail/internal/config"
	"github.com/example/coachmail/internal/database"
	"github.com/example/coachmail/internal/mail"
	"github.com/example/coachmail/internal/progression"
	"github.com/example/coachmail/internal/schedule"
	"github.com/example/coachmail/pkg/models"
)

// Store is the persistence collaborator surface the orchestrator needs
type Store interface {
	GetActiveRecipients(ctx context.Context) ([]models.Recipient, error)
	GetRecipient(ctx context.Context, id string) (*models.Recipient, error)
	GetDeliveryHistory(ctx context.Context, recipientID string) ([]models.DeliveryRecord, error)
	CompleteDelivery(ctx context.Context, rec *models.DeliveryRecord) error
}

// ContentGenerator produces the weekly content payload; it always
// succeeds, falling back to pre-authored content internally
type ContentGenerator interface {
	Generate(ctx context.Context, goalsText string, week int, pc models.ProgressionContext) models.WeeklyContent
}

// Summary reports one sweep cycle
type Summary struct {
	Attempted int
	Sent      int
	Failed    int
}

// Orchestrator is the top-level delivery driver
type Orchestrator struct {
	store     Store
	generator ContentGenerator
	sender    mail.Sender
	cfg       *config.Config
	retry     database.RetryPolicy
	now       func() time.Time
}

// New creates an orchestrator with the default retry policy
func New(store Store, generator ContentGenerator, sender mail.Sender, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		store:     store,
		generator: generator,
		sender:    sender,
		cfg:       cfg,
		retry:     database.DefaultRetryPolicy(),
		now:       time.Now,
	}
}

// Sweep runs one full pass over all active recipients. Per-recipient
// work runs on a bounded worker pool; one recipient's failure or slow
// external call never blocks the others. Cancellation is cooperative:
// dispatch stops between recipients, in-flight deliveries finish or hit
// their own timeout.
func (o *Orchestrator) Sweep(ctx context.Context) (Summary, error) {
	var summary Summary

	var recipients []models.Recipient
	err := database.WithRetry(ctx, o.retry, func() error {
		var err error
		recipients, err = o.store.GetActiveRecipients(ctx)
		return err
	})
	if err != nil {
		return summary, fmt.Errorf("failed to load recipients: %v", err)
	}

	nowUTC := o.now().UTC()
	window := schedule.Window{Weekday: o.cfg.DeliveryWeekday, Hour: o.cfg.DeliveryHour}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, o.cfg.SweepConcurrency)
	)

dispatch:
	for i := range recipients {
		recipient := recipients[i]
		if !schedule.IsDeliveryDue(&recipient, nowUTC, window) {
			continue
		}

		select {
		case <-ctx.Done():
			log.Printf("Sweep canceled, stopping dispatch: %v", ctx.Err())
			break dispatch
		case sem <- struct{}{}:
		}

		mu.Lock()
		summary.Attempted++
		mu.Unlock()

		wg.Add(1)
		go func(r models.Recipient) {
			defer wg.Done()
			defer func() { <-sem }()

			rctx, cancel := context.WithTimeout(ctx, o.cfg.RecipientTimeout)
			defer cancel()

			if err := o.deliver(rctx, &r, nowUTC); err != nil {
				log.Printf("Delivery failed for recipient %s: %v", r.ID, err)
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				return
			}

			mu.Lock()
			summary.Sent++
			mu.Unlock()
		}(recipient)
	}

	wg.Wait()
	log.Printf("Sweep complete: attempted=%d sent=%d failed=%d", summary.Attempted, summary.Sent, summary.Failed)
	return summary, nil
}

// DeliverNow re-enters the delivery state machine for one recipient
// outside the normal cadence. The weekday/hour gate is bypassed; the
// terminal week check and the atomic state advance still apply.
func (o *Orchestrator) DeliverNow(ctx context.Context, recipientID string) error {
	recipient, err := o.store.GetRecipient(ctx, recipientID)
	if err != nil {
		return err
	}
	if recipient.Completed() {
		return fmt.Errorf("recipient %s has completed the program", recipientID)
	}
	if !recipient.Active {
		// Inactive recipients are skipped by the sweep, not by the
		// manual trigger
		log.Printf("Recipient %s is inactive, delivering on manual trigger anyway", recipientID)
	}

	rctx, cancel := context.WithTimeout(ctx, o.cfg.RecipientTimeout)
	defer cancel()

	return o.deliver(rctx, recipient, o.now().UTC())
}

// deliver runs the per-recipient state machine: generating -> sending ->
// advancing. A transport rejection leaves state untouched so the next
// cycle retries; an advance conflict means this week was already
// delivered and is a no-op.
func (o *Orchestrator) deliver(ctx context.Context, r *models.Recipient, nowUTC time.Time) error {
	var history []models.DeliveryRecord
	err := database.WithRetry(ctx, o.retry, func() error {
		var err error
		history, err = o.store.GetDeliveryHistory(ctx, r.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load delivery history: %v", err)
	}

	pc := progression.BuildContext(history, r.CurrentWeek, r.GoalsText)
	week := r.CurrentWeek + 1

	content := o.generator.Generate(ctx, r.GoalsText, week, pc)
	if content.Source == models.SourceFallback {
		log.Printf("Using fallback content for recipient %s week %d", r.ID, week)
	}

	subject, body := composeMail(week, content)
	if err := o.sender.Send(ctx, r.Email, subject, body); err != nil {
		return fmt.Errorf("mail transport rejected send: %v", err)
	}

	record := &models.DeliveryRecord{
		RecipientID:    r.ID,
		WeekNumber:     week,
		ActionContent:  content.ActionItem,
		SentAt:         nowUTC,
		DeliveryStatus: models.DeliveryStatusSent,
	}
	if err := o.store.CompleteDelivery(ctx, record); err != nil {
		if errors.Is(err, database.ErrAdvanceConflict) {
			log.Printf("Recipient %s week %d already delivered, no-op", r.ID, week)
			return nil
		}
		return fmt.Errorf("failed to advance recipient state: %v", err)
	}

	return nil
}

// composeMail renders the structured content into the plain subject and
// body handed to the transport
func composeMail(week int, content models.WeeklyContent) (subject, body string) {
	subject = fmt.Sprintf("Your week %d coaching check-in", week)
	body = fmt.Sprintf("%s\n\nThis week's action:\n%s\n\n%s\n",
		content.Encouragement, content.ActionItem, content.GoalConnection)
	return subject, body
}
