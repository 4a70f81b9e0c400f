package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mafia-stats/gomafia-sync/internal/alert"
	"github.com/mafia-stats/gomafia-sync/internal/config"
	"github.com/mafia-stats/gomafia-sync/internal/db"
	apperrors "github.com/mafia-stats/gomafia-sync/internal/errors"
	"github.com/mafia-stats/gomafia-sync/internal/gomafia"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// Result summarizes one import run
type Result struct {
	RunID            string   `json:"run_id"`
	Success          bool     `json:"success"`
	RecordsProcessed int      `json:"records_processed"`
	Errors           []string `json:"errors,omitempty"`
}

// Orchestrator sequences the import phases under the cluster-wide
// advisory lock. At most one run is in flight globally; a concurrent
// Execute observes lock contention and returns a conflict error without
// touching the active run's state.
type Orchestrator struct {
	store   db.Store
	fetcher gomafia.Fetcher
	lock    db.LockManager
	sink    alert.Sink
	config  *config.SyncConfig
	logger  *logrus.Logger

	cancelRequested atomic.Bool
	running         atomic.Bool
}

// NewOrchestrator creates a new import orchestrator
func NewOrchestrator(store db.Store, fetcher gomafia.Fetcher, lock db.LockManager, sink alert.Sink, cfg *config.SyncConfig, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		fetcher: fetcher,
		lock:    lock,
		sink:    sink,
		config:  cfg,
		logger:  logger,
	}
}

// Execute runs a full import pass. Phases run in their fixed order; a
// phase's validation failures accumulate into the result's error list
// while transport failures abort the run. The advisory lock is held for
// the run's whole lifetime and released on every exit path.
func (o *Orchestrator) Execute(ctx context.Context, syncType models.SyncType, forceRestart bool) (*Result, error) {
	runID := uuid.NewString()
	result := &Result{RunID: runID}

	logger := o.logger.WithFields(logrus.Fields{
		"run_id":    runID,
		"sync_type": syncType,
	})

	err := o.lock.WithLock(ctx, func(ctx context.Context) error {
		o.cancelRequested.Store(false)
		o.running.Store(true)
		defer o.running.Store(false)

		logger.Info("Starting import run")
		return o.run(ctx, logger, runID, syncType, forceRestart, result)
	})

	if err != nil {
		if apperrors.IsConflict(err) {
			logger.Warn("Import already in progress, refusing to start")
			return nil, err
		}
		result.Success = false
		return result, err
	}

	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, logger *logrus.Entry, runID string, syncType models.SyncType, forceRestart bool, result *Result) error {
	startTime := time.Now().UTC()

	if forceRestart {
		logger.Info("Force restart requested, clearing stored checkpoint")
		if err := o.store.ClearCheckpoint(ctx); err != nil {
			return err
		}
	}

	checkpoint, err := o.store.GetCheckpoint(ctx)
	if err != nil {
		return err
	}

	status := &models.SyncStatus{
		State:     models.SyncStateRunning,
		IsRunning: true,
		Progress:  0,
		RunID:     runID,
		StartTime: &startTime,
	}
	if err := o.store.SaveSyncStatus(ctx, status); err != nil {
		return fmt.Errorf("failed to mark import as running: %w", err)
	}

	env := &phaseEnv{
		store:      o.store,
		logger:     o.logger,
		checkpoint: checkpoint,
		cancelled:  o.cancelRequested.Load,
	}
	phaseByName := map[models.PhaseName]Phase{
		models.PhaseClubs:       &clubsPhase{env: env, fetcher: o.fetcher},
		models.PhasePlayers:     &playersPhase{env: env, fetcher: o.fetcher},
		models.PhaseTournaments: &tournamentsPhase{env: env, fetcher: o.fetcher},
		models.PhaseGames:       &gamesPhase{env: env, fetcher: o.fetcher},
		models.PhaseJudges:      &judgesPhase{env: env, fetcher: o.fetcher},
	}
	phases := make([]Phase, 0, len(models.PhaseOrder))
	for _, name := range models.PhaseOrder {
		phases = append(phases, phaseByName[name])
	}

	resumeFrom := 0
	if checkpoint != nil {
		for i, phase := range phases {
			if phase.Name() == checkpoint.Phase {
				resumeFrom = i
				break
			}
		}
		logger.WithField("phase", checkpoint.Phase).Info("Resuming from checkpointed phase")
	}

	for i, phase := range phases {
		if i < resumeFrom {
			// Committed in full by the interrupted run.
			continue
		}

		status.CurrentOperation = fmt.Sprintf("Importing %s", phase.Name())
		status.Progress = i * 100 / len(phases)
		if err := o.store.SaveSyncStatus(ctx, status); err != nil {
			return err
		}

		phaseResult, phaseErr := phase.Execute(ctx)
		if phaseResult != nil {
			result.RecordsProcessed += phaseResult.Inserted
			result.Errors = append(result.Errors, phaseResult.Errors...)
		}

		if phaseErr != nil {
			if errors.Is(phaseErr, ErrCancelled) {
				logger.Info("Import run cancelled")
				o.finishRun(ctx, status, models.SyncStateCancelled, syncType, "")
				result.Success = false
				result.Errors = append(result.Errors, "import cancelled")
				return nil
			}
			// Transport failures (and anything unexpected) are fatal to
			// the run; the last good checkpoint stays for resume.
			logger.WithError(phaseErr).WithField("phase", phase.Name()).Error("Phase failed, aborting run")
			o.finishRun(ctx, status, models.SyncStateFailed, syncType, phaseErr.Error())
			o.alertFailure(ctx, runID, phase.Name(), phaseErr)
			result.Success = false
			return phaseErr
		}
	}

	// A completed run leaves no checkpoint behind; the next run starts
	// from scratch.
	if err := o.store.ClearCheckpoint(ctx); err != nil {
		logger.WithError(err).Error("Failed to clear checkpoint after completed run")
	}

	o.finishRun(ctx, status, models.SyncStateCompleted, syncType, "")
	result.Success = true

	logger.WithFields(logrus.Fields{
		"records_processed": result.RecordsProcessed,
		"errors":            len(result.Errors),
		"duration":          time.Since(startTime),
	}).Info("Import run finished")

	return nil
}

// finishRun records the run's terminal state. Status writes on the way
// out must not be lost to the caller's cancellation.
func (o *Orchestrator) finishRun(ctx context.Context, status *models.SyncStatus, state models.SyncState, syncType models.SyncType, lastError string) {
	now := time.Now().UTC()

	status.State = state
	status.IsRunning = false
	status.CurrentOperation = ""
	status.LastSyncTime = &now
	status.LastSyncType = syncType
	status.LastError = lastError
	if state == models.SyncStateCompleted {
		status.Progress = 100
	}

	if err := o.store.SaveSyncStatus(context.WithoutCancel(ctx), status); err != nil {
		o.logger.WithError(err).Error("Failed to record terminal sync status")
	}
}

// alertFailure notifies the sink about an aborted run. Fire-and-forget,
// same as the verification service's alerting.
func (o *Orchestrator) alertFailure(ctx context.Context, runID string, phase models.PhaseName, cause error) {
	err := o.sink.Send(context.WithoutCancel(ctx), alert.KindSyncFailure,
		"Import run failed",
		fmt.Sprintf("Import aborted during the %s phase: %v", phase, cause),
		map[string]interface{}{"run_id": runID, "phase": string(phase)})
	if err != nil {
		o.logger.WithError(err).Error("Failed to send sync failure alert")
	}
}

// Start launches an import run in the background. The lock is acquired
// synchronously so a conflicting trigger gets its conflict outcome
// immediately; the phases then run detached from the caller's request.
func (o *Orchestrator) Start(syncType models.SyncType, forceRestart bool) (string, error) {
	acquired, err := o.lock.Acquire(context.Background())
	if err != nil {
		return "", err
	}
	if !acquired {
		return "", apperrors.NewSyncInProgressError()
	}

	runID := uuid.NewString()
	o.cancelRequested.Store(false)
	o.running.Store(true)

	logger := o.logger.WithFields(logrus.Fields{
		"run_id":    runID,
		"sync_type": syncType,
	})
	logger.Info("Starting background import run")

	go func() {
		defer o.running.Store(false)
		defer func() {
			if err := o.lock.Release(context.Background()); err != nil {
				o.logger.WithError(err).Error("Failed to release advisory lock")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), o.config.RunTimeout)
		defer cancel()

		result := &Result{RunID: runID}
		if err := o.run(ctx, logger, runID, syncType, forceRestart, result); err != nil {
			logger.WithError(err).Error("Import run failed")
		}
	}()

	return runID, nil
}

// Cancel requests cooperative cancellation of the active run. The run
// finishes its current batch, checkpoints it and stops. Returns false
// when no run is active in this process.
func (o *Orchestrator) Cancel() bool {
	if !o.running.Load() {
		return false
	}
	o.cancelRequested.Store(true)
	o.logger.Info("Cancellation requested for active import run")
	return true
}

// Status reads the current sync status. A service that has never run an
// import reports an idle status.
func (o *Orchestrator) Status(ctx context.Context) (*models.SyncStatus, error) {
	status, err := o.store.GetSyncStatus(ctx)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return &models.SyncStatus{State: models.SyncStateIdle}, nil
	}
	return status, nil
}
