package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// MatchRepository — граница с матчевой подсистемой: ядру жизненного цикла
// нужны только счётчики для предикатов disbandable/destroyable.
type MatchRepository interface {
	CountByRosterID(ctx context.Context, rosterID int) (int, error)
	CountUnplayedByRosterID(ctx context.Context, rosterID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) CountByRosterID(ctx context.Context, rosterID int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE home_roster_id = $1 OR away_roster_id = $1`

	var count int
	err := r.db.QueryRowContext(ctx, query, rosterID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for roster %d: %w", rosterID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) CountUnplayedByRosterID(ctx context.Context, rosterID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM matches
		WHERE (home_roster_id = $1 OR away_roster_id = $1) AND status <> 'played'`

	var count int
	err := r.db.QueryRowContext(ctx, query, rosterID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unplayed matches for roster %d: %w", rosterID, err)
	}
	return count, nil
}
