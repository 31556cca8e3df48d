package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
)

// LiveBroadcaster рассылает событие всем подписчикам комнаты лиги.
type LiveBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Типы live-событий по заявкам.
const (
	eventRosterSubmitted = "ROSTER_SUBMITTED"
	eventRosterApproved  = "ROSTER_APPROVED"
	eventRosterDisbanded = "ROSTER_DISBANDED"
	eventRosterDestroyed = "ROSTER_DESTROYED"
)

type rosterEvent struct {
	Type     string         `json:"type"`
	Roster   *models.Roster `json:"roster,omitempty"`
	RosterID int            `json:"roster_id,omitempty"`
}

func leagueRoom(leagueID int) string {
	return fmt.Sprintf("league_%d", leagueID)
}

// RosterService инкапсулирует создание заявок и все переходы их жизненного
// цикла. Каждое действие сначала проходит AuthorizationGate, затем таблицу
// переходов и только потом пишет в БД.
type RosterService struct {
	rosterRepo repositories.RosterRepository
	playerRepo repositories.PlayerRepository
	userRepo   repositories.UserRepository
	teamRepo   repositories.TeamRepository
	leagueRepo repositories.LeagueRepository
	gate       *AuthorizationGate
	fields     *FieldScopeResolver
	hub        LiveBroadcaster
	logger     *slog.Logger
}

func NewRosterService(
	rosterRepo repositories.RosterRepository,
	playerRepo repositories.PlayerRepository,
	userRepo repositories.UserRepository,
	teamRepo repositories.TeamRepository,
	leagueRepo repositories.LeagueRepository,
	gate *AuthorizationGate,
	fields *FieldScopeResolver,
	hub LiveBroadcaster,
	logger *slog.Logger,
) *RosterService {
	return &RosterService{
		rosterRepo: rosterRepo,
		playerRepo: playerRepo,
		userRepo:   userRepo,
		teamRepo:   teamRepo,
		leagueRepo: leagueRepo,
		gate:       gate,
		fields:     fields,
		hub:        hub,
		logger:     logger,
	}
}

type CreateRosterInput struct {
	LeagueID int
	TeamID   int
	Payload  RosterPayload
}

// Create проводит заявку через submit: проверки гейта, раскладка payload по
// скоупу создания, выбор дивизиона, посев состава из членов команды и
// атомарная запись. Новая заявка сразу persisted в статусе pending.
func (s *RosterService) Create(ctx context.Context, input CreateRosterInput, actor *models.User) (*models.Roster, error) {
	league, err := s.getLeague(ctx, input.LeagueID)
	if err != nil {
		return nil, err
	}
	team, err := s.getTeam(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, ActionRosterCreate, &AuthRequest{
		Actor:  actor,
		League: league,
		Team:   team,
	})
	if err != nil {
		return nil, err
	}

	restricted := input.Payload.Restrict(s.fields.CreationFields(league))

	roster := &models.Roster{
		TeamID:   team.ID,
		LeagueID: league.ID,
		Name:     team.Name,
		Status:   models.RosterStatusPending,
	}
	if err := applyRosterPayload(roster, restricted); err != nil {
		return nil, err
	}
	if roster.Name == "" {
		return nil, ErrRosterNameRequired
	}

	if roster.DivisionID != 0 {
		division, err := s.leagueRepo.GetDivision(ctx, roster.DivisionID)
		if err != nil {
			return nil, mapLeagueRepoError(err)
		}
		if division.LeagueID != league.ID {
			return nil, ErrDivisionNotFound
		}
	} else {
		// Дивизион по умолчанию — первый дивизион лиги.
		division, err := s.leagueRepo.FirstDivision(ctx, league.ID)
		if err != nil {
			return nil, mapLeagueRepoError(err)
		}
		roster.DivisionID = division.ID
	}

	players, err := s.seedPlayers(ctx, team, restricted)
	if err != nil {
		return nil, err
	}

	if err := s.rosterRepo.CreateWithPlayers(ctx, roster, players); err != nil {
		return nil, mapRosterRepoError(err)
	}

	roster.Players = make([]models.Player, 0, len(players))
	for _, player := range players {
		roster.Players = append(roster.Players, *player)
	}

	s.logger.InfoContext(ctx, "roster submitted",
		slog.Int("roster_id", roster.ID),
		slog.Int("team_id", team.ID),
		slog.Int("league_id", league.ID),
		slog.Int("players", len(players)),
	)
	s.hub.BroadcastToRoom(leagueRoom(league.ID), rosterEvent{Type: eventRosterSubmitted, Roster: roster})

	return roster, nil
}

// seedPlayers строит состав заявки: из payload, если там перечислены
// user id, иначе из всех текущих членов команды.
func (s *RosterService) seedPlayers(ctx context.Context, team *models.Team, payload RosterPayload) ([]*models.Player, error) {
	members, err := s.userRepo.ListByTeamID(ctx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}

	if raw, ok := payload[FieldPlayers]; ok {
		userIDs, err := payloadUserIDs(raw)
		if err != nil {
			return nil, err
		}
		memberSet := make(map[int]bool, len(members))
		for _, member := range members {
			memberSet[member.ID] = true
		}
		players := make([]*models.Player, 0, len(userIDs))
		for _, userID := range userIDs {
			if !memberSet[userID] {
				return nil, fmt.Errorf("%w: user %d is not a member of team %d", ErrValidationFailed, userID, team.ID)
			}
			players = append(players, &models.Player{UserID: userID})
		}
		if len(players) > 0 {
			return players, nil
		}
	}

	if len(members) == 0 {
		return nil, ErrTeamHasNoMembers
	}
	players := make([]*models.Player, 0, len(members))
	for _, member := range members {
		players = append(players, &models.Player{UserID: member.ID})
	}
	return players, nil
}

// GetByID возвращает заявку лиги вместе с составом. Просмотр заявки
// закрыт правом league edit: состав и schedule_data не публичны.
func (s *RosterService) GetByID(ctx context.Context, leagueID, rosterID int, actor *models.User) (*models.Roster, error) {
	league, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	roster, err := s.getRoster(ctx, leagueID, rosterID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, ActionRosterShow, &AuthRequest{
		Actor:  actor,
		League: league,
		Roster: roster,
	})
	if err != nil {
		return nil, err
	}

	players, err := s.playerRepo.ListByRosterID(ctx, rosterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster players: %w", err)
	}
	roster.Players = players
	return roster, nil
}

// Update применяет к заявке поля, разрешённые скоупом actor-а. Поля вне
// скоупа молча отбрасываются; schedule_data дополнительно гейтится
// заморозкой расписания лиги.
func (s *RosterService) Update(ctx context.Context, leagueID, rosterID int, payload RosterPayload, actor *models.User) (*models.Roster, error) {
	league, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	roster, err := s.getRoster(ctx, leagueID, rosterID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, ActionRosterEdit, &AuthRequest{
		Actor:  actor,
		League: league,
		Roster: roster,
	})
	if err != nil {
		return nil, err
	}
	if _, err := NextRosterStatus(roster.Status, EventEdit); err != nil {
		return nil, err
	}

	allowed, err := s.fields.MutableFields(ctx, actor, league)
	if err != nil {
		return nil, err
	}
	if err := applyRosterPayload(roster, payload.Restrict(allowed)); err != nil {
		return nil, err
	}
	if roster.Name == "" {
		return nil, ErrRosterNameRequired
	}
	if err := s.checkDivision(ctx, league, roster.DivisionID); err != nil {
		return nil, err
	}

	if err := s.rosterRepo.Update(ctx, roster); err != nil {
		return nil, mapRosterRepoError(err)
	}
	return roster, nil
}

// Review — рендер-действие ревью: те же проверки, что у approve, но без
// какой-либо мутации состояния.
func (s *RosterService) Review(ctx context.Context, leagueID, rosterID int, actor *models.User) (*models.Roster, error) {
	league, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	roster, err := s.getRoster(ctx, leagueID, rosterID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, ActionRosterReview, &AuthRequest{
		Actor:  actor,
		League: league,
		Roster: roster,
	})
	if err != nil {
		return nil, err
	}

	players, err := s.playerRepo.ListByRosterID(ctx, rosterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster players: %w", err)
	}
	roster.Players = players
	return roster, nil
}

// Approve переводит pending-заявку в approved и применяет поля
// approval-скоупа одним условным UPDATE: конкурентный второй approve
// не находит строку и получает конфликт состояния.
func (s *RosterService) Approve(ctx context.Context, leagueID, rosterID int, payload RosterPayload, actor *models.User) (*models.Roster, error) {
	league, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	roster, err := s.getRoster(ctx, leagueID, rosterID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, ActionRosterApprove, &AuthRequest{
		Actor:  actor,
		League: league,
		Roster: roster,
	})
	if err != nil {
		return nil, err
	}
	if _, err := NextRosterStatus(roster.Status, EventApprove); err != nil {
		return nil, err
	}

	if err := applyRosterPayload(roster, payload.Restrict(s.fields.ApprovalFields())); err != nil {
		return nil, err
	}
	if roster.Name == "" {
		return nil, ErrRosterNameRequired
	}
	if err := s.checkDivision(ctx, league, roster.DivisionID); err != nil {
		return nil, err
	}

	if err := s.rosterRepo.Approve(ctx, roster); err != nil {
		return nil, mapRosterRepoError(err)
	}
	roster.Status = models.RosterStatusApproved

	s.logger.InfoContext(ctx, "roster approved",
		slog.Int("roster_id", roster.ID),
		slog.Int("league_id", league.ID),
	)
	s.hub.BroadcastToRoom(leagueRoom(league.ID), rosterEvent{Type: eventRosterApproved, Roster: roster})

	return roster, nil
}

// Disband мягко снимает заявку: команда перестаёт считаться вошедшей в лигу
// и может подать заявку заново.
func (s *RosterService) Disband(ctx context.Context, leagueID, rosterID int, actor *models.User) (*models.Roster, error) {
	league, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	roster, err := s.getRoster(ctx, leagueID, rosterID)
	if err != nil {
		return nil, err
	}

	err = s.gate.Authorize(ctx, ActionRosterDisband, &AuthRequest{
		Actor:  actor,
		League: league,
		Roster: roster,
	})
	if err != nil {
		return nil, err
	}
	next, err := NextRosterStatus(roster.Status, EventDisband)
	if err != nil {
		return nil, err
	}

	if err := s.rosterRepo.UpdateStatusFrom(ctx, roster.ID, roster.Status, next); err != nil {
		return nil, mapRosterRepoError(err)
	}
	roster.Status = next

	s.logger.InfoContext(ctx, "roster disbanded",
		slog.Int("roster_id", roster.ID),
		slog.Int("league_id", league.ID),
	)
	s.hub.BroadcastToRoom(leagueRoom(league.ID), rosterEvent{Type: eventRosterDisbanded, Roster: roster})

	return roster, nil
}

// Destroy жёстко удаляет заявку; игроки удаляются каскадно вместе с ней.
func (s *RosterService) Destroy(ctx context.Context, leagueID, rosterID int, actor *models.User) error {
	league, err := s.getLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	roster, err := s.getRoster(ctx, leagueID, rosterID)
	if err != nil {
		return err
	}

	err = s.gate.Authorize(ctx, ActionRosterDestroy, &AuthRequest{
		Actor:  actor,
		League: league,
		Roster: roster,
	})
	if err != nil {
		return err
	}
	if _, err := NextRosterStatus(roster.Status, EventDestroy); err != nil {
		return err
	}

	if err := s.rosterRepo.Delete(ctx, roster.ID); err != nil {
		return mapRosterRepoError(err)
	}

	s.logger.InfoContext(ctx, "roster destroyed",
		slog.Int("roster_id", roster.ID),
		slog.Int("league_id", league.ID),
	)
	s.hub.BroadcastToRoom(leagueRoom(league.ID), rosterEvent{Type: eventRosterDestroyed, RosterID: roster.ID})

	return nil
}

func (s *RosterService) getLeague(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLeagueRepoError(err)
	}
	return league, nil
}

func (s *RosterService) getTeam(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

// getRoster загружает заявку и сверяет принадлежность лиге из URL.
func (s *RosterService) getRoster(ctx context.Context, leagueID, rosterID int) (*models.Roster, error) {
	roster, err := s.rosterRepo.GetByID(ctx, rosterID)
	if err != nil {
		return nil, mapRosterRepoError(err)
	}
	if roster.LeagueID != leagueID {
		return nil, ErrRosterNotFound
	}
	return roster, nil
}

func (s *RosterService) checkDivision(ctx context.Context, league *models.League, divisionID int) error {
	division, err := s.leagueRepo.GetDivision(ctx, divisionID)
	if err != nil {
		return mapLeagueRepoError(err)
	}
	if division.LeagueID != league.ID {
		return ErrDivisionNotFound
	}
	return nil
}

func mapRosterRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrRosterNotFound):
		return ErrRosterNotFound
	case errors.Is(err, repositories.ErrRosterEntryConflict):
		return ErrTeamAlreadyEntered
	case errors.Is(err, repositories.ErrRosterStatusConflict):
		return ErrRosterStateConflict
	case errors.Is(err, repositories.ErrRosterDivisionInvalid):
		return ErrDivisionNotFound
	case errors.Is(err, repositories.ErrRosterTeamInvalid):
		return ErrTeamNotFound
	default:
		return err
	}
}

func mapLeagueRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrLeagueNotFound):
		return ErrLeagueNotFound
	case errors.Is(err, repositories.ErrDivisionNotFound):
		return ErrDivisionNotFound
	case errors.Is(err, repositories.ErrLeagueNameConflict):
		return ErrLeagueNameConflict
	default:
		return err
	}
}
