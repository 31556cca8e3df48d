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
	ErrRosterNotFound = errors.New("roster not found")
	// ErrRosterEntryConflict — команда уже имеет активную заявку в этой лиге.
	// Срабатывает на частичном уникальном индексе (team_id, league_id)
	// WHERE status <> 'disbanded', поэтому гонка двух одновременных create
	// разрешается на стороне БД.
	ErrRosterEntryConflict   = errors.New("team already has an active roster in this league")
	ErrRosterDivisionInvalid = errors.New("roster division conflict or invalid")
	ErrRosterTeamInvalid     = errors.New("roster team conflict or invalid")
	// ErrRosterStatusConflict — условное обновление статуса не нашло строку
	// в ожидаемом исходном статусе.
	ErrRosterStatusConflict = errors.New("roster is not in the expected status")
)

type RosterRepository interface {
	// CreateWithPlayers атомарно создаёт заявку и её игроков: либо всё, либо ничего.
	CreateWithPlayers(ctx context.Context, roster *models.Roster, players []*models.Player) error
	GetByID(ctx context.Context, id int) (*models.Roster, error)
	FindActiveByTeamAndLeague(ctx context.Context, teamID, leagueID int) (*models.Roster, error)
	Update(ctx context.Context, roster *models.Roster) error
	// UpdateStatusFrom меняет статус только из ожидаемого исходного.
	UpdateStatusFrom(ctx context.Context, id int, from, to models.RosterStatus) error
	// Approve одним запросом переводит pending-заявку в approved и применяет
	// поля approval-скоупа. Вторая конкурентная попытка не находит строку.
	Approve(ctx context.Context, roster *models.Roster) error
	ListByDivision(ctx context.Context, divisionID int) ([]models.Roster, error)
	Delete(ctx context.Context, id int) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func mapRosterWriteError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "rosters_team_id_league_id_active_key" {
				return ErrRosterEntryConflict
			}
		case "23503": // foreign_key_violation
			switch pqErr.Constraint {
			case "rosters_division_id_fkey":
				return ErrRosterDivisionInvalid
			case "rosters_team_id_fkey":
				return ErrRosterTeamInvalid
			}
		}
	}
	return nil
}

func (r *postgresRosterRepository) CreateWithPlayers(ctx context.Context, roster *models.Roster, players []*models.Player) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("CreateWithPlayers failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	query := `
		INSERT INTO rosters (team_id, league_id, division_id, name, description, schedule_data, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = tx.QueryRowContext(ctx, query,
		roster.TeamID,
		roster.LeagueID,
		roster.DivisionID,
		roster.Name,
		roster.Description,
		roster.ScheduleData,
		roster.Status,
	).Scan(&roster.ID, &roster.CreatedAt)
	if err != nil {
		if mapped := mapRosterWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create roster: %w", err)
	}

	if err = insertRosterPlayers(ctx, tx, roster.ID, players); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("CreateWithPlayers failed to commit: %w", err)
	}
	return nil
}

// insertRosterPlayers добавляет игроков в заявку. Работает как внутри
// транзакции, так и на голом *sql.DB.
func insertRosterPlayers(ctx context.Context, exec SQLExecutor, rosterID int, players []*models.Player) error {
	query := `INSERT INTO players (roster_id, user_id) VALUES ($1, $2) RETURNING id, created_at`

	for _, player := range players {
		player.RosterID = rosterID
		err := exec.QueryRowContext(ctx, query, player.RosterID, player.UserID).
			Scan(&player.ID, &player.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create player for user %d: %w", player.UserID, err)
		}
	}
	return nil
}

const rosterColumns = `id, team_id, league_id, division_id, name, description, ranking, seeding, schedule_data, status, created_at`

func scanRoster(rowScanner interface {
	Scan(dest ...interface{}) error
}, roster *models.Roster) error {
	return rowScanner.Scan(
		&roster.ID,
		&roster.TeamID,
		&roster.LeagueID,
		&roster.DivisionID,
		&roster.Name,
		&roster.Description,
		&roster.Ranking,
		&roster.Seeding,
		&roster.ScheduleData,
		&roster.Status,
		&roster.CreatedAt,
	)
}

func (r *postgresRosterRepository) GetByID(ctx context.Context, id int) (*models.Roster, error) {
	query := `SELECT ` + rosterColumns + ` FROM rosters WHERE id = $1`

	roster := &models.Roster{}
	err := scanRoster(r.db.QueryRowContext(ctx, query, id), roster)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRosterNotFound
		}
		return nil, fmt.Errorf("failed to get roster by id %d: %w", id, err)
	}
	return roster, nil
}

func (r *postgresRosterRepository) FindActiveByTeamAndLeague(ctx context.Context, teamID, leagueID int) (*models.Roster, error) {
	query := `
		SELECT ` + rosterColumns + `
		FROM rosters
		WHERE team_id = $1 AND league_id = $2 AND status <> 'disbanded'`

	roster := &models.Roster{}
	err := scanRoster(r.db.QueryRowContext(ctx, query, teamID, leagueID), roster)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRosterNotFound
		}
		return nil, fmt.Errorf("failed to find active roster for team %d in league %d: %w", teamID, leagueID, err)
	}
	return roster, nil
}

func (r *postgresRosterRepository) Update(ctx context.Context, roster *models.Roster) error {
	query := `
		UPDATE rosters
		SET name = $1, description = $2, ranking = $3, seeding = $4,
		    division_id = $5, schedule_data = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		roster.Name,
		roster.Description,
		roster.Ranking,
		roster.Seeding,
		roster.DivisionID,
		roster.ScheduleData,
		roster.ID,
	)
	if err != nil {
		if mapped := mapRosterWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update roster %d: %w", roster.ID, err)
	}
	return checkAffectedRows(result, ErrRosterNotFound)
}

func (r *postgresRosterRepository) UpdateStatusFrom(ctx context.Context, id int, from, to models.RosterStatus) error {
	query := `UPDATE rosters SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update roster %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrRosterStatusConflict)
}

func (r *postgresRosterRepository) Approve(ctx context.Context, roster *models.Roster) error {
	query := `
		UPDATE rosters
		SET status = $1, name = $2, division_id = $3, seeding = $4
		WHERE id = $5 AND status = $6`

	result, err := r.db.ExecContext(ctx, query,
		models.RosterStatusApproved,
		roster.Name,
		roster.DivisionID,
		roster.Seeding,
		roster.ID,
		models.RosterStatusPending,
	)
	if err != nil {
		if mapped := mapRosterWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to approve roster %d: %w", roster.ID, err)
	}
	return checkAffectedRows(result, ErrRosterStatusConflict)
}

func (r *postgresRosterRepository) ListByDivision(ctx context.Context, divisionID int) ([]models.Roster, error) {
	query := `SELECT ` + rosterColumns + ` FROM rosters WHERE division_id = $1 ORDER BY ranking NULLS LAST, id`

	rows, err := r.db.QueryContext(ctx, query, divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rosters for division %d: %w", divisionID, err)
	}
	defer rows.Close()

	rosters := make([]models.Roster, 0)
	for rows.Next() {
		var roster models.Roster
		if err := scanRoster(rows, &roster); err != nil {
			return nil, fmt.Errorf("failed to scan roster: %w", err)
		}
		rosters = append(rosters, roster)
	}
	return rosters, rows.Err()
}

func (r *postgresRosterRepository) Delete(ctx context.Context, id int) error {
	// Игроки удаляются каскадно (players_roster_id_fkey ON DELETE CASCADE).
	query := `DELETE FROM rosters WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete roster %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRosterNotFound)
}
