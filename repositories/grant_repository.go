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
	ErrGrantNotFound = errors.New("capability grant not found")
	ErrGrantConflict = errors.New("capability grant already exists")
)

type GrantRepository interface {
	Create(ctx context.Context, grant *models.CapabilityGrant) error
	Delete(ctx context.Context, id int) error
	ListByUser(ctx context.Context, userID int) ([]models.CapabilityGrant, error)
	// HasGlobal проверяет глобальный грант (team_id IS NULL).
	HasGlobal(ctx context.Context, userID int, action models.CapabilityAction, subject models.SubjectKind) (bool, error)
	// HasTeamScoped проверяет грант, ограниченный командой.
	HasTeamScoped(ctx context.Context, userID int, action models.CapabilityAction, teamID int) (bool, error)
}

type postgresGrantRepository struct {
	db *sql.DB
}

func NewPostgresGrantRepository(db *sql.DB) GrantRepository {
	return &postgresGrantRepository{db: db}
}

func (r *postgresGrantRepository) Create(ctx context.Context, grant *models.CapabilityGrant) error {
	query := `
		INSERT INTO capability_grants (user_id, action, subject, team_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		grant.UserID,
		grant.Action,
		grant.Subject,
		grant.TeamID,
	).Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrGrantConflict
		}
		return fmt.Errorf("failed to create capability grant: %w", err)
	}
	return nil
}

func (r *postgresGrantRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM capability_grants WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete capability grant %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGrantNotFound)
}

func (r *postgresGrantRepository) ListByUser(ctx context.Context, userID int) ([]models.CapabilityGrant, error) {
	query := `
		SELECT id, user_id, action, subject, team_id, created_at
		FROM capability_grants WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants for user %d: %w", userID, err)
	}
	defer rows.Close()

	grants := make([]models.CapabilityGrant, 0)
	for rows.Next() {
		var grant models.CapabilityGrant
		if err := rows.Scan(
			&grant.ID,
			&grant.UserID,
			&grant.Action,
			&grant.Subject,
			&grant.TeamID,
			&grant.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan capability grant: %w", err)
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}

func (r *postgresGrantRepository) HasGlobal(ctx context.Context, userID int, action models.CapabilityAction, subject models.SubjectKind) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM capability_grants
			WHERE user_id = $1 AND action = $2 AND subject = $3 AND team_id IS NULL
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, action, subject).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check global grant for user %d: %w", userID, err)
	}
	return exists, nil
}

func (r *postgresGrantRepository) HasTeamScoped(ctx context.Context, userID int, action models.CapabilityAction, teamID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM capability_grants
			WHERE user_id = $1 AND action = $2 AND team_id = $3
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, action, teamID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check team grant for user %d: %w", userID, err)
	}
	return exists, nil
}
