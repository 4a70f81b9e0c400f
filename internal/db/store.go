package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/mafia-stats/gomafia-sync/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type PostgresStore struct {
	db *sql.DB
}

// Store defines the interface for database operations
type Store interface {
	// Club operations
	ClubExists(ctx context.Context, gomafiaID string) (bool, error)
	InsertClubTx(ctx context.Context, tx *sql.Tx, club *models.Club) error
	SampleClubs(ctx context.Context, limit int) ([]*models.Club, error)

	// Player operations
	PlayerExists(ctx context.Context, gomafiaID string) (bool, error)
	InsertPlayerTx(ctx context.Context, tx *sql.Tx, player *models.Player) error
	SamplePlayers(ctx context.Context, limit int) ([]*models.Player, error)

	// Tournament operations
	TournamentExists(ctx context.Context, gomafiaID string) (bool, error)
	InsertTournamentTx(ctx context.Context, tx *sql.Tx, tournament *models.Tournament) error
	SampleTournaments(ctx context.Context, limit int) ([]*models.Tournament, error)

	// Game operations
	GameExists(ctx context.Context, gomafiaID string) (bool, error)
	InsertGameTx(ctx context.Context, tx *sql.Tx, game *models.Game) error

	// Judge operations
	JudgeExists(ctx context.Context, gomafiaID string) (bool, error)
	InsertJudgeTx(ctx context.Context, tx *sql.Tx, judge *models.Judge) error

	// Sync state operations
	GetSyncStatus(ctx context.Context) (*models.SyncStatus, error)
	SaveSyncStatus(ctx context.Context, status *models.SyncStatus) error
	GetCheckpoint(ctx context.Context) (*models.SyncCheckpoint, error)
	SaveCheckpointTx(ctx context.Context, tx *sql.Tx, checkpoint *models.SyncCheckpoint) error
	ClearCheckpoint(ctx context.Context) error

	// Verification report operations
	SaveIntegrityReport(ctx context.Context, report *models.DataIntegrityReport) error
	GetLatestIntegrityReport(ctx context.Context) (*models.DataIntegrityReport, error)

	// Transaction operations
	BeginTx(ctx context.Context) (*sql.Tx, error)
}

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// DB exposes the underlying connection pool for collaborators that need
// session-scoped connections, such as the advisory lock.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Migrate() error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// BeginTx starts a new transaction
func (s *PostgresStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
		ReadOnly:  false,
	})
}
