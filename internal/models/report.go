package models

import "time"

// Report statuses derived from overall accuracy
const (
	ReportStatusOK       = "OK"
	ReportStatusWarning  = "WARNING"
	ReportStatusCritical = "CRITICAL"
)

// EntityAccuracy holds the verification outcome for one entity kind
type EntityAccuracy struct {
	Sampled    int     `json:"sampled"`
	Mismatched int     `json:"mismatched"`
	Accuracy   float64 `json:"accuracy"`
}

// DataIntegrityReport is the immutable outcome of one verification run.
// Reports are append-only; status displays query the latest by timestamp.
type DataIntegrityReport struct {
	ID              int64                     `json:"id"`
	Timestamp       time.Time                 `json:"timestamp"`
	Trigger         VerificationTrigger       `json:"trigger"`
	OverallAccuracy float64                   `json:"overall_accuracy"`
	Status          string                    `json:"status"`
	Results         map[string]EntityAccuracy `json:"results"`
}
