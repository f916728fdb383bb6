// Package scheduler wires the recurring trigger to the delivery sweep.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/example/coachmail/internal/delivery"
	"github.com/go-co-op/gocron"
)

// Scheduler fires the delivery sweep on a fixed hourly cadence. It holds
// no state of its own; overlap between a slow sweep and the next tick is
// safe because delivery is idempotent per recipient.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	orchestrator *delivery.Orchestrator
}

// New creates a new scheduler instance
func New(orchestrator *delivery.Orchestrator) *Scheduler {
	return &Scheduler{
		scheduler:    gocron.NewScheduler(time.UTC),
		orchestrator: orchestrator,
	}
}

// Start begins the hourly sweep cycle in a non-blocking manner
func (s *Scheduler) Start(ctx context.Context) {
	if _, err := s.scheduler.Every(1).Hour().Do(func() { s.runSweep(ctx) }); err != nil {
		log.Printf("Error scheduling hourly sweep: %v", err)
		return
	}
	s.scheduler.StartAsync()
}

// Stop terminates future sweep cycles
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// runSweep executes one cycle. The orchestrator logs its own per-cycle
// summary; nothing here may terminate future cycles.
func (s *Scheduler) runSweep(ctx context.Context) {
	if _, err := s.orchestrator.Sweep(ctx); err != nil {
		log.Printf("Error running delivery sweep: %v", err)
	}
}
