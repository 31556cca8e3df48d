package services

import (
	"context"
	"errors"

	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
)

type GrantInput struct {
	UserID  int                     `json:"user_id"`
	Action  models.CapabilityAction `json:"action"`
	Subject models.SubjectKind      `json:"subject"`
	TeamID  *int                    `json:"team_id,omitempty"`
}

// GrantService — администрирование грантов. Раздавать и отзывать права
// может только обладатель глобального edit game.
type GrantService struct {
	grantRepo repositories.GrantRepository
	userRepo  repositories.UserRepository
	oracle    *PermissionOracle
}

func NewGrantService(
	grantRepo repositories.GrantRepository,
	userRepo repositories.UserRepository,
	oracle *PermissionOracle,
) *GrantService {
	return &GrantService{
		grantRepo: grantRepo,
		userRepo:  userRepo,
		oracle:    oracle,
	}
}

func (s *GrantService) requireAdmin(ctx context.Context, actor *models.User) error {
	granted, err := s.oracle.Grants(ctx, actor, models.ActionEdit, models.SubjectGame, GlobalScope)
	if err != nil {
		return err
	}
	if !granted {
		return ErrForbidden
	}
	return nil
}

func (s *GrantService) Grant(ctx context.Context, input GrantInput, actor *models.User) (*models.CapabilityGrant, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	grant := &models.CapabilityGrant{
		UserID:  input.UserID,
		Action:  input.Action,
		Subject: input.Subject,
		TeamID:  input.TeamID,
	}
	if err := s.grantRepo.Create(ctx, grant); err != nil {
		if errors.Is(err, repositories.ErrGrantConflict) {
			return nil, ErrGrantConflict
		}
		return nil, err
	}
	return grant, nil
}

func (s *GrantService) Revoke(ctx context.Context, grantID int, actor *models.User) error {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return err
	}
	if err := s.grantRepo.Delete(ctx, grantID); err != nil {
		if errors.Is(err, repositories.ErrGrantNotFound) {
			return ErrGrantNotFound
		}
		return err
	}
	return nil
}

func (s *GrantService) ListByUser(ctx context.Context, userID int, actor *models.User) ([]models.CapabilityGrant, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	return s.grantRepo.ListByUser(ctx, userID)
}
