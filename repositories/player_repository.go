package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Respawn-League/citadel/models"
)

type PlayerRepository interface {
	ListByRosterID(ctx context.Context, rosterID int) ([]models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) ListByRosterID(ctx context.Context, rosterID int) ([]models.Player, error) {
	query := `
		SELECT p.id, p.roster_id, p.user_id, p.created_at,
		       u.id, u.first_name, u.last_name, u.nickname, u.email, u.team_id, u.created_at
		FROM players p
		JOIN users u ON p.user_id = u.id
		WHERE p.roster_id = $1
		ORDER BY p.id`

	rows, err := r.db.QueryContext(ctx, query, rosterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for roster %d: %w", rosterID, err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var player models.Player
		var user models.User
		if err := rows.Scan(
			&player.ID,
			&player.RosterID,
			&player.UserID,
			&player.CreatedAt,
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Nickname,
			&user.Email,
			&user.TeamID,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		player.User = &user
		players = append(players, player)
	}
	return players, rows.Err()
}
