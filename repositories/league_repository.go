package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Respawn-League/citadel/models"
	"github.com/lib/pq"
)

var (
	ErrLeagueNotFound     = errors.New("league not found")
	ErrLeagueNameConflict = errors.New("league name conflict")
	ErrDivisionNotFound   = errors.New("division not found")
)

type LeagueRepository interface {
	Create(ctx context.Context, league *models.League) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context, limit, offset int) ([]models.League, error)
	Update(ctx context.Context, league *models.League) error
	CreateDivision(ctx context.Context, division *models.Division) error
	GetDivision(ctx context.Context, id int) (*models.Division, error)
	ListDivisions(ctx context.Context, leagueID int) ([]models.Division, error)
	// FirstDivision возвращает дивизион по умолчанию для новых заявок.
	FirstDivision(ctx context.Context, leagueID int) (*models.Division, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) Create(ctx context.Context, league *models.League) error {
	query := `
		INSERT INTO leagues (name, description, signuppable, schedule_locked)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		league.Name,
		league.Description,
		league.Signuppable,
		league.ScheduleLocked,
	).Scan(&league.ID, &league.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "leagues_name_key" {
				return ErrLeagueNameConflict
			}
		}
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `
		SELECT id, name, description, signuppable, schedule_locked, created_at
		FROM leagues WHERE id = $1`

	league := &models.League{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&league.ID,
		&league.Name,
		&league.Description,
		&league.Signuppable,
		&league.ScheduleLocked,
		&league.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league by id %d: %w", id, err)
	}
	return league, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context, limit, offset int) ([]models.League, error) {
	query := `
		SELECT id, name, description, signuppable, schedule_locked, created_at
		FROM leagues ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	defer rows.Close()

	leagues := make([]models.League, 0)
	for rows.Next() {
		var league models.League
		if err := rows.Scan(
			&league.ID,
			&league.Name,
			&league.Description,
			&league.Signuppable,
			&league.ScheduleLocked,
			&league.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan league: %w", err)
		}
		leagues = append(leagues, league)
	}
	return leagues, rows.Err()
}

func (r *postgresLeagueRepository) Update(ctx context.Context, league *models.League) error {
	query := `
		UPDATE leagues
		SET name = $1, description = $2, signuppable = $3, schedule_locked = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		league.Name,
		league.Description,
		league.Signuppable,
		league.ScheduleLocked,
		league.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "leagues_name_key" {
				return ErrLeagueNameConflict
			}
		}
		return fmt.Errorf("failed to update league %d: %w", league.ID, err)
	}
	return checkAffectedRows(result, ErrLeagueNotFound)
}

func (r *postgresLeagueRepository) CreateDivision(ctx context.Context, division *models.Division) error {
	query := `
		INSERT INTO divisions (league_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, division.LeagueID, division.Name).
		Scan(&division.ID, &division.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "divisions_league_id_fkey" {
				return ErrLeagueNotFound
			}
		}
		return fmt.Errorf("failed to create division: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) GetDivision(ctx context.Context, id int) (*models.Division, error) {
	query := `SELECT id, league_id, name, created_at FROM divisions WHERE id = $1`

	division := &models.Division{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&division.ID,
		&division.LeagueID,
		&division.Name,
		&division.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to get division by id %d: %w", id, err)
	}
	return division, nil
}

func (r *postgresLeagueRepository) ListDivisions(ctx context.Context, leagueID int) ([]models.Division, error) {
	query := `SELECT id, league_id, name, created_at FROM divisions WHERE league_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list divisions for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	divisions := make([]models.Division, 0)
	for rows.Next() {
		var division models.Division
		if err := rows.Scan(
			&division.ID,
			&division.LeagueID,
			&division.Name,
			&division.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan division: %w", err)
		}
		divisions = append(divisions, division)
	}
	return divisions, rows.Err()
}

func (r *postgresLeagueRepository) FirstDivision(ctx context.Context, leagueID int) (*models.Division, error) {
	query := `SELECT id, league_id, name, created_at FROM divisions WHERE league_id = $1 ORDER BY id LIMIT 1`

	division := &models.Division{}
	err := r.db.QueryRowContext(ctx, query, leagueID).Scan(
		&division.ID,
		&division.LeagueID,
		&division.Name,
		&division.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to get first division for league %d: %w", leagueID, err)
	}
	return division, nil
}
