// Package scheduler wires up the cron job that periodically evaluates the
// persisted alert digests.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"lmia/compare-service/internal/alerts"
)

// Scheduler wraps robfig/cron and manages the digest loop.
type Scheduler struct {
	cron   *cron.Cron
	digest *alerts.Digest
	spec   string // cron spec, e.g. "@every 24h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(digest *alerts.Digest, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		digest: digest,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one digest
// cycle immediately so a restart does not postpone pending alerts by a full
// interval.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runDigest(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started (spec %s)", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runDigest(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

func (s *Scheduler) runDigest(ctx context.Context) {
	if err := s.digest.Run(ctx); err != nil {
		log.Printf("[scheduler] Digest cycle error: %v", err)
	}
}
