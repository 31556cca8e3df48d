package services

import (
	"context"
	"strings"

	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateLeagueInput struct {
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Signuppable bool     `json:"signuppable"`
	Divisions   []string `json:"divisions,omitempty"`
}

type UpdateLeagueInput struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	Signuppable    *bool   `json:"signuppable,omitempty"`
	ScheduleLocked *bool   `json:"schedule_locked,omitempty"`
}

// LeagueService управляет лигами и их дивизионами. Создание и изменение
// лиги требует глобального права edit league.
type LeagueService struct {
	leagueRepo repositories.LeagueRepository
	rosterRepo repositories.RosterRepository
	oracle     *PermissionOracle
	gate       *AuthorizationGate
}

func NewLeagueService(
	leagueRepo repositories.LeagueRepository,
	rosterRepo repositories.RosterRepository,
	oracle *PermissionOracle,
	gate *AuthorizationGate,
) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		rosterRepo: rosterRepo,
		oracle:     oracle,
		gate:       gate,
	}
}

func (s *LeagueService) requireLeagueEdit(ctx context.Context, actor *models.User) error {
	granted, err := s.oracle.Grants(ctx, actor, models.ActionEdit, models.SubjectLeague, GlobalScope)
	if err != nil {
		return err
	}
	if !granted {
		return ErrForbidden
	}
	return nil
}

func (s *LeagueService) CreateLeague(ctx context.Context, input CreateLeagueInput, actor *models.User) (*models.League, error) {
	if err := s.requireLeagueEdit(ctx, actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrLeagueNameRequired
	}

	league := &models.League{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Signuppable: input.Signuppable,
	}
	if err := s.leagueRepo.Create(ctx, league); err != nil {
		return nil, mapLeagueRepoError(err)
	}

	// Лига без дивизионов не может принимать заявки, поэтому всегда
	// создаётся хотя бы один.
	names := input.Divisions
	if len(names) == 0 {
		names = []string{"Open"}
	}
	for _, name := range names {
		division := &models.Division{LeagueID: league.ID, Name: name}
		if err := s.leagueRepo.CreateDivision(ctx, division); err != nil {
			return nil, mapLeagueRepoError(err)
		}
		league.Divisions = append(league.Divisions, *division)
	}
	return league, nil
}

func (s *LeagueService) GetLeagueByID(ctx context.Context, id int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLeagueRepoError(err)
	}
	return league, nil
}

func (s *LeagueService) ListLeagues(ctx context.Context, limit, offset int) ([]models.League, error) {
	return s.leagueRepo.List(ctx, limit, offset)
}

func (s *LeagueService) UpdateLeague(ctx context.Context, id int, input UpdateLeagueInput, actor *models.User) (*models.League, error) {
	if err := s.requireLeagueEdit(ctx, actor); err != nil {
		return nil, err
	}

	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLeagueRepoError(err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrLeagueNameRequired
		}
		league.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		league.Description = input.Description
	}
	if input.Signuppable != nil {
		league.Signuppable = *input.Signuppable
	}
	if input.ScheduleLocked != nil {
		league.ScheduleLocked = *input.ScheduleLocked
	}

	if err := s.leagueRepo.Update(ctx, league); err != nil {
		return nil, mapLeagueRepoError(err)
	}
	return league, nil
}

// Overview возвращает лигу с дивизионами и заявками каждого дивизиона.
// Список заявок закрыт правом league edit; сами заявки дивизионов
// загружаются параллельно.
func (s *LeagueService) Overview(ctx context.Context, id int, actor *models.User) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapLeagueRepoError(err)
	}

	err = s.gate.Authorize(ctx, ActionRosterIndex, &AuthRequest{Actor: actor, League: league})
	if err != nil {
		return nil, err
	}

	divisions, err := s.leagueRepo.ListDivisions(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range divisions {
		division := &divisions[i]
		g.Go(func() error {
			rosters, err := s.rosterRepo.ListByDivision(gctx, division.ID)
			if err != nil {
				return err
			}
			division.Rosters = rosters
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	league.Divisions = divisions
	return league, nil
}
