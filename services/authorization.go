package services

import (
	"context"
	"errors"

	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
)

// RosterAction — действие над заявкой, проходящее через AuthorizationGate.
type RosterAction string

const (
	ActionRosterIndex   RosterAction = "roster.index"
	ActionRosterShow    RosterAction = "roster.show"
	ActionRosterCreate  RosterAction = "roster.create"
	ActionRosterEdit    RosterAction = "roster.edit"
	ActionRosterReview  RosterAction = "roster.review"
	ActionRosterApprove RosterAction = "roster.approve"
	ActionRosterDisband RosterAction = "roster.disband"
	ActionRosterDestroy RosterAction = "roster.destroy"
)

// AuthRequest — контекст одного действия: actor и уже загруженные сущности.
// Team заполняется для create, Roster — для остальных действий.
type AuthRequest struct {
	Actor  *models.User
	League *models.League
	Team   *models.Team
	Roster *models.Roster
}

type authCheck func(ctx context.Context, g *AuthorizationGate, req *AuthRequest) error

// rosterActionChecks — вся матрица правил в одном месте: действие ->
// упорядоченный список проверок. Проверки обрываются на первой неудаче,
// что логически эквивалентно конъюнкции всех.
var rosterActionChecks = map[RosterAction][]authCheck{
	// Чтение заявок закрыто так же, как модерация: состав и schedule_data
	// не предназначены для посторонних глаз.
	ActionRosterIndex:   {requireLeagueEdit},
	ActionRosterShow:    {requireLeagueEdit},
	ActionRosterCreate:  {requireSignuppable, requireNotEntered, requireAnyTeamEdit, requireTeamEdit},
	ActionRosterEdit:    {requireRosterEdit},
	ActionRosterReview:  {requireLeagueEdit, requireNotApproved},
	ActionRosterApprove: {requireLeagueEdit, requireNotApproved},
	ActionRosterDisband: {requireRosterEdit, requireDisbandable},
	ActionRosterDestroy: {requireLeagueEdit, requireDestroyable},
}

// AuthorizationGate — корень композиции проверок: оракул прав,
// бизнес-политика disbandable/destroyable и поиск существующего входа
// команды в лигу. Ни одна проверка ничего не мутирует.
type AuthorizationGate struct {
	oracle     *PermissionOracle
	policy     RosterPolicy
	rosterRepo repositories.RosterRepository
}

func NewAuthorizationGate(oracle *PermissionOracle, policy RosterPolicy, rosterRepo repositories.RosterRepository) *AuthorizationGate {
	return &AuthorizationGate{
		oracle:     oracle,
		policy:     policy,
		rosterRepo: rosterRepo,
	}
}

// Authorize прогоняет запрос через проверки действия. nil означает
// "можно выполнять".
func (g *AuthorizationGate) Authorize(ctx context.Context, action RosterAction, req *AuthRequest) error {
	checks, ok := rosterActionChecks[action]
	if !ok {
		return ErrForbidden
	}
	for _, check := range checks {
		if err := check(ctx, g, req); err != nil {
			return err
		}
	}
	return nil
}

func requireSignuppable(_ context.Context, _ *AuthorizationGate, req *AuthRequest) error {
	if !req.League.Signuppable {
		return ErrLeagueNotSignuppable
	}
	return nil
}

// requireNotEntered — дружелюбная проверка уникальности входа до записи.
// Гонку двух одновременных create всё равно разрешает частичный уникальный
// индекс в БД, см. repositories.ErrRosterEntryConflict.
func requireNotEntered(ctx context.Context, g *AuthorizationGate, req *AuthRequest) error {
	_, err := g.rosterRepo.FindActiveByTeamAndLeague(ctx, req.Team.ID, req.League.ID)
	if err == nil {
		return ErrTeamAlreadyEntered
	}
	if errors.Is(err, repositories.ErrRosterNotFound) {
		return nil
	}
	return err
}

func requireAnyTeamEdit(ctx context.Context, g *AuthorizationGate, req *AuthRequest) error {
	granted, err := g.oracle.GrantsAnyTeam(ctx, req.Actor, models.ActionEdit)
	if err != nil {
		return err
	}
	if !granted {
		return ErrForbidden
	}
	return nil
}

func requireTeamEdit(ctx context.Context, g *AuthorizationGate, req *AuthRequest) error {
	granted, err := g.oracle.Grants(ctx, req.Actor, models.ActionEdit, models.SubjectTeam, TeamScope(req.Team))
	if err != nil {
		return err
	}
	if !granted {
		return ErrForbidden
	}
	return nil
}

func requireLeagueEdit(ctx context.Context, g *AuthorizationGate, req *AuthRequest) error {
	granted, err := g.oracle.Grants(ctx, req.Actor, models.ActionEdit, models.SubjectLeague, GlobalScope)
	if err != nil {
		return err
	}
	if !granted {
		return ErrForbidden
	}
	return nil
}

// requireRosterEdit — право league-edit либо право команды-владельца.
func requireRosterEdit(ctx context.Context, g *AuthorizationGate, req *AuthRequest) error {
	granted, err := g.oracle.Grants(ctx, req.Actor, models.ActionEdit, models.SubjectLeague, GlobalScope)
	if err != nil {
		return err
	}
	if granted {
		return nil
	}

	granted, err = g.oracle.Grants(ctx, req.Actor, models.ActionEdit, models.SubjectTeam, RosterScope(req.Roster))
	if err != nil {
		return err
	}
	if !granted {
		return ErrForbidden
	}
	return nil
}

// requireNotApproved — review и approve доступны только для ещё не
// одобренной заявки.
func requireNotApproved(_ context.Context, _ *AuthorizationGate, req *AuthRequest) error {
	if req.Roster.Approved() {
		return ErrRosterStateConflict
	}
	return nil
}

func requireDisbandable(ctx context.Context, g *AuthorizationGate, req *AuthRequest) error {
	ok, err := g.policy.Disbandable(ctx, req.Roster)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRosterNotDisbandable
	}
	return nil
}

func requireDestroyable(ctx context.Context, g *AuthorizationGate, req *AuthRequest) error {
	ok, err := g.policy.Destroyable(ctx, req.Roster)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRosterNotDestroyable
	}
	return nil
}
