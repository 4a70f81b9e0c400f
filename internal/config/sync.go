package config

import "time"

// SyncConfig holds import pipeline configuration
type SyncConfig struct {
	BatchSize              int
	RunTimeout             time.Duration
	VerificationSampleSize int
	AccuracyThreshold      float64
	WarningThreshold       float64
}

// DefaultSyncConfig returns the default sync configuration
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		BatchSize:              50,
		RunTimeout:             30 * time.Minute,
		VerificationSampleSize: 100,
		AccuracyThreshold:      95.0,
		WarningThreshold:       85.0,
	}
}
