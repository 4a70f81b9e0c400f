package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mafia-stats/gomafia-sync/internal/alert"
	"github.com/mafia-stats/gomafia-sync/internal/config"
	apperrors "github.com/mafia-stats/gomafia-sync/internal/errors"
	"github.com/mafia-stats/gomafia-sync/internal/gomafia"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// Store is the slice of the persistence layer the verification service
// reads from
type Store interface {
	SamplePlayers(ctx context.Context, limit int) ([]*models.Player, error)
	SampleClubs(ctx context.Context, limit int) ([]*models.Club, error)
	SampleTournaments(ctx context.Context, limit int) ([]*models.Tournament, error)
	SaveIntegrityReport(ctx context.Context, report *models.DataIntegrityReport) error
	GetLatestIntegrityReport(ctx context.Context) (*models.DataIntegrityReport, error)
}

// Service re-samples stored records against the live source and scores
// how closely the local store still matches it. Verification never
// mutates entity rows; reconciling drift is reported, not applied.
type Service struct {
	store   Store
	fetcher gomafia.Fetcher
	sink    alert.Sink
	config  *config.SyncConfig
	logger  *logrus.Logger
}

// NewService creates a new verification service
func NewService(store Store, fetcher gomafia.Fetcher, sink alert.Sink, cfg *config.SyncConfig, logger *logrus.Logger) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		sink:    sink,
		config:  cfg,
		logger:  logger,
	}
}

// Run executes one verification pass and persists its report. A single
// record that fails to re-fetch counts as a mismatch; a source that is
// unreachable outright aborts the run, leaving the previous report as
// latest.
func (s *Service) Run(ctx context.Context, trigger models.VerificationTrigger) (*models.DataIntegrityReport, error) {
	logger := s.logger.WithField("trigger", trigger)
	logger.Info("Starting data verification run")

	results := make(map[string]models.EntityAccuracy, 3)

	playersAccuracy, err := s.verifyPlayers(ctx)
	if err != nil {
		return nil, err
	}
	results["players"] = playersAccuracy

	clubsAccuracy, err := s.verifyClubs(ctx)
	if err != nil {
		return nil, err
	}
	results["clubs"] = clubsAccuracy

	tournamentsAccuracy, err := s.verifyTournaments(ctx)
	if err != nil {
		return nil, err
	}
	results["tournaments"] = tournamentsAccuracy

	report := buildReport(trigger, results, s.config.AccuracyThreshold, s.config.WarningThreshold)

	if err := s.store.SaveIntegrityReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist integrity report: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"overall_accuracy": report.OverallAccuracy,
		"status":           report.Status,
	}).Info("Data verification run finished")

	if report.OverallAccuracy < s.config.AccuracyThreshold {
		s.sendAlert(ctx, report)
	}

	return report, nil
}

// Latest returns the most recent report, or nil if none exists yet
func (s *Service) Latest(ctx context.Context) (*models.DataIntegrityReport, error) {
	return s.store.GetLatestIntegrityReport(ctx)
}

// buildReport aggregates per-kind accuracies into a report. Overall
// accuracy is the mean weighted by sample sizes; an empty store verifies
// as fully accurate.
func buildReport(trigger models.VerificationTrigger, results map[string]models.EntityAccuracy, warningBelow, criticalBelow float64) *models.DataIntegrityReport {
	totalSampled := 0
	totalMismatched := 0
	for _, r := range results {
		totalSampled += r.Sampled
		totalMismatched += r.Mismatched
	}

	overall := 100.0
	if totalSampled > 0 {
		overall = float64(totalSampled-totalMismatched) / float64(totalSampled) * 100
	}

	status := models.ReportStatusOK
	switch {
	case overall < criticalBelow:
		status = models.ReportStatusCritical
	case overall < warningBelow:
		status = models.ReportStatusWarning
	}

	return &models.DataIntegrityReport{
		Timestamp:       time.Now().UTC(),
		Trigger:         trigger,
		OverallAccuracy: overall,
		Status:          status,
		Results:         results,
	}
}

func accuracyOf(sampled, mismatched int) models.EntityAccuracy {
	accuracy := 100.0
	if sampled > 0 {
		accuracy = float64(sampled-mismatched) / float64(sampled) * 100
	}
	return models.EntityAccuracy{Sampled: sampled, Mismatched: mismatched, Accuracy: accuracy}
}

// recheck classifies one record's re-fetch outcome. A transport error on
// the very first record is indistinguishable from an unreachable source,
// so transport errors abort; not-found and parse failures count as
// mismatches.
func recheck(err error, matched bool) (mismatch bool, fatal error) {
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Deleted upstream but still stored locally.
			return true, nil
		}
		if apperrors.IsTransport(err) {
			return false, err
		}
		return true, nil
	}
	return !matched, nil
}

func (s *Service) verifyPlayers(ctx context.Context) (models.EntityAccuracy, error) {
	players, err := s.store.SamplePlayers(ctx, s.config.VerificationSampleSize)
	if err != nil {
		return models.EntityAccuracy{}, err
	}

	mismatched := 0
	for _, player := range players {
		remote, err := s.fetcher.FetchPlayer(ctx, player.GomafiaID)
		mismatch, fatal := recheck(err, err == nil && playerMatches(player, remote))
		if fatal != nil {
			return models.EntityAccuracy{}, fmt.Errorf("verification aborted, source unreachable: %w", fatal)
		}
		if mismatch {
			mismatched++
			s.logger.WithField("gomafia_id", player.GomafiaID).Debug("Player record drifted from source")
		}
	}
	return accuracyOf(len(players), mismatched), nil
}

func (s *Service) verifyClubs(ctx context.Context) (models.EntityAccuracy, error) {
	clubs, err := s.store.SampleClubs(ctx, s.config.VerificationSampleSize)
	if err != nil {
		return models.EntityAccuracy{}, err
	}

	mismatched := 0
	for _, club := range clubs {
		remote, err := s.fetcher.FetchClub(ctx, club.GomafiaID)
		mismatch, fatal := recheck(err, err == nil && clubMatches(club, remote))
		if fatal != nil {
			return models.EntityAccuracy{}, fmt.Errorf("verification aborted, source unreachable: %w", fatal)
		}
		if mismatch {
			mismatched++
			s.logger.WithField("gomafia_id", club.GomafiaID).Debug("Club record drifted from source")
		}
	}
	return accuracyOf(len(clubs), mismatched), nil
}

func (s *Service) verifyTournaments(ctx context.Context) (models.EntityAccuracy, error) {
	tournaments, err := s.store.SampleTournaments(ctx, s.config.VerificationSampleSize)
	if err != nil {
		return models.EntityAccuracy{}, err
	}

	mismatched := 0
	for _, tournament := range tournaments {
		remote, err := s.fetcher.FetchTournament(ctx, tournament.GomafiaID)
		mismatch, fatal := recheck(err, err == nil && tournamentMatches(tournament, remote))
		if fatal != nil {
			return models.EntityAccuracy{}, fmt.Errorf("verification aborted, source unreachable: %w", fatal)
		}
		if mismatch {
			mismatched++
			s.logger.WithField("gomafia_id", tournament.GomafiaID).Debug("Tournament record drifted from source")
		}
	}
	return accuracyOf(len(tournaments), mismatched), nil
}

// sendAlert notifies the external sink about a degraded report. Alerting
// is fire-and-forget: its failure is logged, never propagated.
func (s *Service) sendAlert(ctx context.Context, report *models.DataIntegrityReport) {
	details := make(map[string]interface{}, len(report.Results)+1)
	details["overall_accuracy"] = report.OverallAccuracy
	for kind, result := range report.Results {
		details[kind+"_accuracy"] = result.Accuracy
	}

	err := s.sink.Send(ctx, alert.KindDataIntegrity,
		"Data accuracy degraded",
		fmt.Sprintf("Overall accuracy %.1f%% is below the %.0f%% threshold (status %s)",
			report.OverallAccuracy, s.config.AccuracyThreshold, report.Status),
		details)
	if err != nil {
		s.logger.WithError(err).Error("Failed to send data integrity alert")
	}
}
