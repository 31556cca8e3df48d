package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
)

// Scope сужает проверку права до команды или заявки. Пустой Scope означает
// глобальную проверку. Roster-скоуп сводится к команде-владельцу заявки.
type Scope struct {
	Team   *models.Team
	Roster *models.Roster
}

// GlobalScope — проверка без привязки к команде или заявке.
var GlobalScope = Scope{}

func TeamScope(team *models.Team) Scope {
	return Scope{Team: team}
}

func RosterScope(roster *models.Roster) Scope {
	return Scope{Roster: roster}
}

// PermissionOracle отвечает на один вопрос: даёт ли actor право action над
// subject в данном скоупе. Только чтение, безопасен для конкурентных вызовов.
type PermissionOracle struct {
	grantRepo repositories.GrantRepository
	teamRepo  repositories.TeamRepository
}

func NewPermissionOracle(grantRepo repositories.GrantRepository, teamRepo repositories.TeamRepository) *PermissionOracle {
	return &PermissionOracle{
		grantRepo: grantRepo,
		teamRepo:  teamRepo,
	}
}

// Grants вычисляет решение каскадом: глобальный грант, затем грант в рамках
// команды (явный или капитанство), затем roster-скоуп через команду-владельца.
// Неаутентифицированный actor (nil) всегда получает отказ.
func (o *PermissionOracle) Grants(ctx context.Context, actor *models.User, action models.CapabilityAction, subject models.SubjectKind, scope Scope) (bool, error) {
	if actor == nil {
		return false, nil
	}

	granted, err := o.grantRepo.HasGlobal(ctx, actor.ID, action, subject)
	if err != nil {
		return false, fmt.Errorf("failed to check global grant: %w", err)
	}
	if granted {
		return true, nil
	}

	team := scope.Team
	if team == nil && scope.Roster != nil {
		team, err = o.teamRepo.GetByID(ctx, scope.Roster.TeamID)
		if err != nil {
			return false, fmt.Errorf("failed to resolve roster owning team: %w", err)
		}
	}
	if team == nil {
		return false, nil
	}

	if team.CaptainID == actor.ID {
		return true, nil
	}

	granted, err = o.grantRepo.HasTeamScoped(ctx, actor.ID, action, team.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check team grant: %w", err)
	}
	return granted, nil
}

// GrantsAnyTeam — аналог "can edit any team": глобальный грант, капитанство
// любой команды или хотя бы один командный грант.
func (o *PermissionOracle) GrantsAnyTeam(ctx context.Context, actor *models.User, action models.CapabilityAction) (bool, error) {
	if actor == nil {
		return false, nil
	}

	granted, err := o.grantRepo.HasGlobal(ctx, actor.ID, action, models.SubjectTeam)
	if err != nil {
		return false, fmt.Errorf("failed to check global grant: %w", err)
	}
	if granted {
		return true, nil
	}

	if actor.TeamID != nil {
		team, err := o.teamRepo.GetByID(ctx, *actor.TeamID)
		if err != nil && !errors.Is(err, repositories.ErrTeamNotFound) {
			return false, fmt.Errorf("failed to resolve actor team: %w", err)
		}
		if team != nil && team.CaptainID == actor.ID {
			return true, nil
		}
	}

	grants, err := o.grantRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list actor grants: %w", err)
	}
	for _, grant := range grants {
		if grant.Action == action && grant.TeamID != nil {
			return true, nil
		}
	}
	return false, nil
}
