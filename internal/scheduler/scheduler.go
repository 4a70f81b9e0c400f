package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mafia-stats/gomafia-sync/internal/models"
	"github.com/mafia-stats/gomafia-sync/internal/verify"
)

// Scheduler runs the verification service on a cron schedule.
// Verification only reads local entity rows and appends reports, so it
// does not contend for the import advisory lock.
type Scheduler struct {
	cron     *cron.Cron
	verifier *verify.Service
	logger   *logrus.Logger
}

// New creates a scheduler with the given cron spec for verification runs
func New(cronSpec string, verifier *verify.Service, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		verifier: verifier,
		logger:   logger,
	}

	_, err := s.cron.AddFunc(cronSpec, s.runVerification)
	if err != nil {
		return nil, fmt.Errorf("invalid verification cron spec %q: %w", cronSpec, err)
	}

	return s, nil
}

func (s *Scheduler) runVerification() {
	s.logger.Info("Starting scheduled data verification")
	if _, err := s.verifier.Run(context.Background(), models.TriggerScheduled); err != nil {
		s.logger.WithError(err).Error("Scheduled data verification failed")
	}
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
