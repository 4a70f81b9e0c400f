package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mafia-stats/gomafia-sync/internal/db"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// ErrCancelled is returned by a phase when a cooperative cancellation
// request is observed at a batch boundary. The batch in flight at the
// time of the request is finished and checkpointed first.
var ErrCancelled = errors.New("import cancelled")

// Phase is one entity-kind-scoped unit of the import pipeline
type Phase interface {
	Name() models.PhaseName
	Execute(ctx context.Context) (*PhaseResult, error)
}

// PhaseResult summarizes one phase's execution
type PhaseResult struct {
	Phase             models.PhaseName `json:"phase"`
	Inserted          int              `json:"inserted"`
	SkippedInvalid    int              `json:"skipped_invalid"`
	SkippedDuplicates int              `json:"skipped_duplicates"`
	Errors            []string         `json:"errors,omitempty"`
}

// phaseEnv carries the run-scoped collaborators shared by all phases
type phaseEnv struct {
	store      db.Store
	logger     *logrus.Logger
	checkpoint *models.SyncCheckpoint
	cancelled  func() bool
}

// phaseSpec parameterizes the shared batch loop for one entity kind.
// Candidates stay fully typed end to end; there is one spec per kind
// rather than a shape-checked any.
type phaseSpec[T any] struct {
	name     models.PhaseName
	fetch    func(ctx context.Context, page int) ([]T, int, error)
	validate func(T) bool
	exists   func(ctx context.Context, gomafiaID string) (bool, error)
	insert   func(ctx context.Context, tx *sql.Tx, item T) error
	idOf     func(T) string
}

// runPhase drives fetch, validate, deduplicate, persist and checkpoint
// for one entity kind. Batches map one-to-one onto listing pages and are
// processed strictly in order; each batch's inserts commit in the same
// transaction as its checkpoint, so a resumed run can replay the
// checkpoint to skip completed batches without ever re-inserting them.
func runPhase[T any](ctx context.Context, env *phaseEnv, spec phaseSpec[T]) (*PhaseResult, error) {
	logger := env.logger.WithField("phase", spec.name)
	result := &PhaseResult{Phase: spec.name}

	// The resume checkpoint only speaks for its own phase.
	checkpoint := env.checkpoint
	if checkpoint != nil && checkpoint.Phase != spec.name {
		checkpoint = nil
	}

	startBatch := 0
	for checkpoint.Covers(spec.name, startBatch) {
		startBatch++
	}

	var processedIDs []string
	totalBatches := 0
	if startBatch > 0 {
		totalBatches = checkpoint.TotalBatches
		processedIDs = append(processedIDs, checkpoint.ProcessedIDs...)
		logger.WithFields(logrus.Fields{
			"resume_batch":  startBatch,
			"total_batches": totalBatches,
		}).Info("Resuming phase from checkpoint")
		if totalBatches > 0 && startBatch >= totalBatches {
			logger.Info("Phase already completed by previous run")
			return result, nil
		}
	}

	// IDs staged or committed by this run; the checkpoint covers prior runs.
	staged := make(map[string]bool)

	for batchIndex := startBatch; ; batchIndex++ {
		// Cancellation is cooperative and only observed here, never
		// mid-batch.
		if env.cancelled() {
			logger.WithField("batch", batchIndex).Info("Cancellation requested, stopping at batch boundary")
			return result, ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return result, ErrCancelled
		}

		// Listing pages are one-indexed; batch indices are not.
		items, totalPages, err := spec.fetch(ctx, batchIndex+1)
		if err != nil {
			return result, fmt.Errorf("failed to fetch %s batch %d: %w", spec.name, batchIndex, err)
		}
		if totalBatches == 0 {
			totalBatches = totalPages
		}

		toInsert, err := stageBatch(ctx, logger, spec, checkpoint, staged, items, result)
		if err != nil {
			return result, err
		}

		tx, err := env.store.BeginTx(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to begin %s batch transaction: %w", spec.name, err)
		}

		committed, err := commitBatch(ctx, env, spec, tx, toInsert, batchIndex, totalBatches, processedIDs)
		if err != nil {
			return result, err
		}
		processedIDs = committed
		result.Inserted += len(toInsert)

		logger.WithFields(logrus.Fields{
			"batch":         batchIndex,
			"total_batches": totalBatches,
			"inserted":      len(toInsert),
		}).Info("Committed batch")

		if batchIndex+1 >= totalBatches {
			break
		}
	}

	logger.WithFields(logrus.Fields{
		"inserted":           result.Inserted,
		"skipped_invalid":    result.SkippedInvalid,
		"skipped_duplicates": result.SkippedDuplicates,
	}).Info("Phase completed")

	return result, nil
}

// stageBatch filters one fetched batch down to the records to insert.
// Invalid records are counted and reported; a record already committed
// by a prior run, already staged by this run or already stored locally
// is a skipped duplicate. A listing page can repeat an entity across
// pages or even within one page; only the first occurrence is kept.
func stageBatch[T any](ctx context.Context, logger *logrus.Entry, spec phaseSpec[T], checkpoint *models.SyncCheckpoint, staged map[string]bool, items []T, result *PhaseResult) ([]T, error) {
	var toInsert []T
	for _, item := range items {
		id := spec.idOf(item)
		if !spec.validate(item) {
			result.SkippedInvalid++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: invalid record %s skipped", spec.name, id))
			logger.WithField("gomafia_id", id).Warn("Skipping invalid record")
			continue
		}
		if checkpoint.HasProcessed(id) || staged[id] {
			result.SkippedDuplicates++
			continue
		}
		exists, err := spec.exists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s duplicate %s: %w", spec.name, id, err)
		}
		if exists {
			// Already stored locally; the import never modifies
			// existing rows. Drift is the verification service's job.
			result.SkippedDuplicates++
			continue
		}
		staged[id] = true
		toInsert = append(toInsert, item)
	}
	return toInsert, nil
}

// commitBatch inserts the batch's rows and its checkpoint in a single
// transaction. The checkpoint is durable if and only if the rows are.
func commitBatch[T any](ctx context.Context, env *phaseEnv, spec phaseSpec[T], tx *sql.Tx, toInsert []T, batchIndex, totalBatches int, processedIDs []string) ([]string, error) {
	defer tx.Rollback()

	for _, item := range toInsert {
		if err := spec.insert(ctx, tx, item); err != nil {
			return nil, fmt.Errorf("failed to insert %s record: %w", spec.name, err)
		}
		processedIDs = append(processedIDs, spec.idOf(item))
	}

	checkpoint := models.NewSyncCheckpoint(spec.name, batchIndex, totalBatches, processedIDs)
	if err := env.store.SaveCheckpointTx(ctx, tx, checkpoint); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit %s batch %d: %w", spec.name, batchIndex, err)
	}
	return processedIDs, nil
}
