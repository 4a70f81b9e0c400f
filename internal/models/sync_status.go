package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncState is the run-level state machine position
type SyncState string

const (
	SyncStateIdle      SyncState = "idle"
	SyncStateRunning   SyncState = "running"
	SyncStateCompleted SyncState = "completed"
	SyncStateFailed    SyncState = "failed"
	SyncStateCancelled SyncState = "cancelled"
)

// SyncStatus tracks the state of the import pipeline. A single row
// (id = "current") exists; it is mutated only by the orchestrator and
// read by the status API.
type SyncStatus struct {
	State            SyncState  `json:"state"`
	IsRunning        bool       `json:"is_running"`
	Progress         int        `json:"progress"`
	CurrentOperation string     `json:"current_operation,omitempty"`
	LastSyncTime     *time.Time `json:"last_sync_time,omitempty"`
	LastSyncType     SyncType   `json:"last_sync_type,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
	RunID            string     `json:"run_id,omitempty"`
	StartTime        *time.Time `json:"start_time,omitempty"`
}

// String returns the JSON representation of the sync status
func (s *SyncStatus) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal sync status: %v"}`, err)
	}
	return string(data)
}
