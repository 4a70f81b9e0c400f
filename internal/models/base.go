package models

import "time"

// BaseModel contains common fields for all database models
type BaseModel struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncType identifies the kind of import run
type SyncType string

const (
	SyncTypeFull        SyncType = "FULL"
	SyncTypeIncremental SyncType = "INCREMENTAL"
)

// VerificationTrigger identifies what started a verification run
type VerificationTrigger string

const (
	TriggerManual    VerificationTrigger = "MANUAL"
	TriggerScheduled VerificationTrigger = "SCHEDULED"
)
