package models

import (
	"fmt"
	"time"
)

// PhaseName identifies one entity-kind-scoped unit of the import pipeline
type PhaseName string

const (
	PhaseClubs       PhaseName = "clubs"
	PhasePlayers     PhaseName = "players"
	PhaseTournaments PhaseName = "tournaments"
	PhaseGames       PhaseName = "games"
	PhaseJudges      PhaseName = "judges"
)

// PhaseOrder is the fixed execution order of import phases. Clubs and
// players must exist before the games that reference them.
var PhaseOrder = []PhaseName{
	PhaseClubs,
	PhasePlayers,
	PhaseTournaments,
	PhaseGames,
	PhaseJudges,
}

// SyncCheckpoint marks how far a phase has progressed. One checkpoint is
// live per import run, superseded after every committed batch; it is
// written in the same transaction as the batch's rows so a crash can
// never separate the two.
type SyncCheckpoint struct {
	Phase          PhaseName `json:"phase"`
	LastBatchIndex int       `json:"last_batch_index"`
	TotalBatches   int       `json:"total_batches"`
	ProcessedIDs   []string  `json:"processed_ids"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewSyncCheckpoint constructs a checkpoint value. Pure; no side effects.
// The message displays the batch counter one-indexed.
func NewSyncCheckpoint(phase PhaseName, lastBatchIndex, totalBatches int, processedIDs []string) *SyncCheckpoint {
	return &SyncCheckpoint{
		Phase:          phase,
		LastBatchIndex: lastBatchIndex,
		TotalBatches:   totalBatches,
		ProcessedIDs:   processedIDs,
		Message:        fmt.Sprintf("Processed batch %d/%d of %s", lastBatchIndex+1, totalBatches, phase),
		Timestamp:      time.Now().UTC(),
	}
}

// Covers reports whether the checkpoint already accounts for the given
// batch of the given phase.
func (c *SyncCheckpoint) Covers(phase PhaseName, batchIndex int) bool {
	return c != nil && c.Phase == phase && batchIndex <= c.LastBatchIndex
}

// HasProcessed reports whether the external ID was committed in this
// phase already.
func (c *SyncCheckpoint) HasProcessed(gomafiaID string) bool {
	if c == nil {
		return false
	}
	for _, id := range c.ProcessedIDs {
		if id == gomafiaID {
			return true
		}
	}
	return false
}
