package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mafia-stats/gomafia-sync/internal/errors"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

func parseDecimal(s string) (*decimal.Decimal, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// statusRowID keys the singleton sync status and checkpoint rows
const statusRowID = "current"

func (s *PostgresStore) exists(ctx context.Context, table, gomafiaID string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE gomafia_id = $1)`, table)
	if err := s.db.QueryRowContext(ctx, query, gomafiaID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return exists, nil
}

// ClubExists checks whether a club with the given external ID is already stored
func (s *PostgresStore) ClubExists(ctx context.Context, gomafiaID string) (bool, error) {
	return s.exists(ctx, "clubs", gomafiaID)
}

// InsertClubTx inserts a club within a transaction
func (s *PostgresStore) InsertClubTx(ctx context.Context, tx *sql.Tx, club *models.Club) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO clubs (gomafia_id, name, city, members_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id
	`, club.GomafiaID, club.Name, club.City, club.MembersCount).Scan(&club.ID)
	if err != nil {
		return fmt.Errorf("failed to insert club %s: %w", club.GomafiaID, err)
	}
	return nil
}

// SampleClubs retrieves a random sample of stored clubs for verification
func (s *PostgresStore) SampleClubs(ctx context.Context, limit int) ([]*models.Club, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, gomafia_id, name, city, members_count, created_at, updated_at
		FROM clubs ORDER BY random() LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample clubs: %w", err)
	}
	defer rows.Close()

	var clubs []*models.Club
	for rows.Next() {
		var club models.Club
		if err := rows.Scan(&club.ID, &club.GomafiaID, &club.Name, &club.City,
			&club.MembersCount, &club.CreatedAt, &club.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan club row: %w", err)
		}
		clubs = append(clubs, &club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating club rows: %w", err)
	}
	return clubs, nil
}

// PlayerExists checks whether a player with the given external ID is already stored
func (s *PostgresStore) PlayerExists(ctx context.Context, gomafiaID string) (bool, error) {
	return s.exists(ctx, "players", gomafiaID)
}

// InsertPlayerTx inserts a player within a transaction
func (s *PostgresStore) InsertPlayerTx(ctx context.Context, tx *sql.Tx, player *models.Player) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO players (
			gomafia_id, nickname, real_name, region, club_gomafia_id,
			total_games, wins, losses, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id
	`, player.GomafiaID, player.Nickname, player.RealName, player.Region,
		player.ClubGomafiaID, player.TotalGames, player.Wins, player.Losses).Scan(&player.ID)
	if err != nil {
		return fmt.Errorf("failed to insert player %s: %w", player.GomafiaID, err)
	}
	return nil
}

// SamplePlayers retrieves a random sample of stored players for verification
func (s *PostgresStore) SamplePlayers(ctx context.Context, limit int) ([]*models.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, gomafia_id, nickname, real_name, region, club_gomafia_id,
			total_games, wins, losses, created_at, updated_at
		FROM players ORDER BY random() LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var player models.Player
		if err := rows.Scan(&player.ID, &player.GomafiaID, &player.Nickname, &player.RealName,
			&player.Region, &player.ClubGomafiaID, &player.TotalGames, &player.Wins,
			&player.Losses, &player.CreatedAt, &player.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, &player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

// TournamentExists checks whether a tournament with the given external ID is already stored
func (s *PostgresStore) TournamentExists(ctx context.Context, gomafiaID string) (bool, error) {
	return s.exists(ctx, "tournaments", gomafiaID)
}

// InsertTournamentTx inserts a tournament within a transaction
func (s *PostgresStore) InsertTournamentTx(ctx context.Context, tx *sql.Tx, tournament *models.Tournament) error {
	var prizeFund sql.NullString
	if tournament.PrizeFund != nil {
		prizeFund = sql.NullString{String: tournament.PrizeFund.String(), Valid: true}
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO tournaments (
			gomafia_id, name, city, start_date, end_date, prize_fund,
			players_count, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id
	`, tournament.GomafiaID, tournament.Name, tournament.City, tournament.StartDate,
		tournament.EndDate, prizeFund, tournament.PlayersCount, tournament.Status).Scan(&tournament.ID)
	if err != nil {
		return fmt.Errorf("failed to insert tournament %s: %w", tournament.GomafiaID, err)
	}
	return nil
}

func scanTournament(scan func(dest ...interface{}) error) (*models.Tournament, error) {
	var tournament models.Tournament
	var prizeFund sql.NullString
	if err := scan(&tournament.ID, &tournament.GomafiaID, &tournament.Name, &tournament.City,
		&tournament.StartDate, &tournament.EndDate, &prizeFund, &tournament.PlayersCount,
		&tournament.Status, &tournament.CreatedAt, &tournament.UpdatedAt); err != nil {
		return nil, err
	}
	if prizeFund.Valid {
		value, err := parseDecimal(prizeFund.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored prize fund: %w", err)
		}
		tournament.PrizeFund = value
	}
	return &tournament, nil
}

// SampleTournaments retrieves a random sample of stored tournaments for verification
func (s *PostgresStore) SampleTournaments(ctx context.Context, limit int) ([]*models.Tournament, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, gomafia_id, name, city, start_date, end_date, prize_fund,
			players_count, status, created_at, updated_at
		FROM tournaments ORDER BY random() LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		tournament, err := scanTournament(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, tournament)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

// GameExists checks whether a game with the given external ID is already stored
func (s *PostgresStore) GameExists(ctx context.Context, gomafiaID string) (bool, error) {
	return s.exists(ctx, "games", gomafiaID)
}

// InsertGameTx inserts a game within a transaction
func (s *PostgresStore) InsertGameTx(ctx context.Context, tx *sql.Tx, game *models.Game) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO games (
			gomafia_id, tournament_gomafia_id, table_number, game_number,
			winner_side, played_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`, game.GomafiaID, game.TournamentGomafiaID, game.TableNumber, game.GameNumber,
		game.WinnerSide, game.PlayedAt).Scan(&game.ID)
	if err != nil {
		return fmt.Errorf("failed to insert game %s: %w", game.GomafiaID, err)
	}
	return nil
}

// JudgeExists checks whether a judge with the given external ID is already stored
func (s *PostgresStore) JudgeExists(ctx context.Context, gomafiaID string) (bool, error) {
	return s.exists(ctx, "judges", gomafiaID)
}

// InsertJudgeTx inserts a judge within a transaction
func (s *PostgresStore) InsertJudgeTx(ctx context.Context, tx *sql.Tx, judge *models.Judge) error {
	err := tx.QueryRowContext(ctx, `
		INSERT INTO judges (
			gomafia_id, nickname, region, category, tournaments_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`, judge.GomafiaID, judge.Nickname, judge.Region, judge.Category,
		judge.TournamentsCount).Scan(&judge.ID)
	if err != nil {
		return fmt.Errorf("failed to insert judge %s: %w", judge.GomafiaID, err)
	}
	return nil
}

// GetSyncStatus retrieves the singleton sync status row. Returns nil
// when no import has ever run.
func (s *PostgresStore) GetSyncStatus(ctx context.Context) (*models.SyncStatus, error) {
	var statusJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT status_json FROM sync_status WHERE id = $1
	`, statusRowID).Scan(&statusJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get sync status: %w", err)
	}

	var status models.SyncStatus
	if err := json.Unmarshal(statusJSON, &status); err != nil {
		return nil, errors.NewInternalError("corrupt sync status row", err)
	}
	return &status, nil
}

// SaveSyncStatus replaces the singleton sync status row
func (s *PostgresStore) SaveSyncStatus(ctx context.Context, status *models.SyncStatus) error {
	if status == nil {
		return fmt.Errorf("status cannot be nil")
	}

	statusJSON, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal sync status: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sync_status (id, status_json, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			status_json = EXCLUDED.status_json,
			updated_at = NOW()
	`, statusRowID, statusJSON)
	if err != nil {
		return fmt.Errorf("failed to save sync status: %w", err)
	}
	return nil
}

// GetCheckpoint retrieves the live checkpoint for the in-progress run.
// Returns nil when no checkpoint is stored.
func (s *PostgresStore) GetCheckpoint(ctx context.Context) (*models.SyncCheckpoint, error) {
	var checkpointJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT checkpoint_json FROM sync_checkpoint WHERE id = $1
	`, statusRowID).Scan(&checkpointJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	var checkpoint models.SyncCheckpoint
	if err := json.Unmarshal(checkpointJSON, &checkpoint); err != nil {
		return nil, errors.NewInternalError("corrupt checkpoint row", err)
	}
	return &checkpoint, nil
}

// SaveCheckpointTx replaces the checkpoint within the same transaction
// as the batch's row inserts, so the two commit or roll back together.
func (s *PostgresStore) SaveCheckpointTx(ctx context.Context, tx *sql.Tx, checkpoint *models.SyncCheckpoint) error {
	if checkpoint == nil {
		return fmt.Errorf("checkpoint cannot be nil")
	}

	checkpointJSON, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_checkpoint (id, checkpoint_json, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			checkpoint_json = EXCLUDED.checkpoint_json,
			updated_at = NOW()
	`, statusRowID, checkpointJSON)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// ClearCheckpoint removes the stored checkpoint after a completed run
// or a forced restart
func (s *PostgresStore) ClearCheckpoint(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sync_checkpoint WHERE id = $1`, statusRowID)
	if err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	return nil
}

// SaveIntegrityReport appends a verification report
func (s *PostgresStore) SaveIntegrityReport(ctx context.Context, report *models.DataIntegrityReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}

	resultsJSON, err := json.Marshal(report.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal report results: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO data_integrity_reports (
			run_at, trigger_type, overall_accuracy, status, results_json, created_at
		) VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`, report.Timestamp, report.Trigger, report.OverallAccuracy, report.Status,
		resultsJSON).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("failed to save integrity report: %w", err)
	}
	return nil
}

// GetLatestIntegrityReport retrieves the most recent verification report.
// Returns nil when no verification has ever run.
func (s *PostgresStore) GetLatestIntegrityReport(ctx context.Context) (*models.DataIntegrityReport, error) {
	var report models.DataIntegrityReport
	var resultsJSON []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, run_at, trigger_type, overall_accuracy, status, results_json
		FROM data_integrity_reports
		ORDER BY run_at DESC
		LIMIT 1
	`).Scan(&report.ID, &report.Timestamp, &report.Trigger, &report.OverallAccuracy,
		&report.Status, &resultsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get latest integrity report: %w", err)
	}

	if err := json.Unmarshal(resultsJSON, &report.Results); err != nil {
		return nil, errors.NewInternalError("corrupt integrity report row", err)
	}
	return &report, nil
}
