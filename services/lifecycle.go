package services

import (
	"context"

	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
)

// RosterEvent — событие жизненного цикла заявки.
type RosterEvent string

const (
	EventSubmit  RosterEvent = "submit"
	EventApprove RosterEvent = "approve"
	EventReject  RosterEvent = "reject"
	EventEdit    RosterEvent = "edit"
	EventDisband RosterEvent = "disband"
	EventDestroy RosterEvent = "destroy"
)

// rosterTransitions задаёт допустимые переходы статусов. Disbanded и
// Destroyed — терминальные: из них переходов нет.
var rosterTransitions = map[models.RosterStatus]map[RosterEvent]models.RosterStatus{
	models.RosterStatusDraft: {
		EventSubmit:  models.RosterStatusPending,
		EventEdit:    models.RosterStatusDraft,
		EventDisband: models.RosterStatusDisbanded,
		EventDestroy: models.RosterStatusDestroyed,
	},
	models.RosterStatusPending: {
		EventApprove: models.RosterStatusApproved,
		EventReject:  models.RosterStatusPending,
		EventEdit:    models.RosterStatusPending,
		EventDisband: models.RosterStatusDisbanded,
		EventDestroy: models.RosterStatusDestroyed,
	},
	models.RosterStatusApproved: {
		EventEdit:    models.RosterStatusApproved,
		EventDisband: models.RosterStatusDisbanded,
		EventDestroy: models.RosterStatusDestroyed,
	},
}

// NextRosterStatus валидирует переход и возвращает целевой статус.
// Недопустимое событие из текущего статуса — ErrRosterStateConflict,
// состояние при этом не меняется.
func NextRosterStatus(current models.RosterStatus, event RosterEvent) (models.RosterStatus, error) {
	events, ok := rosterTransitions[current]
	if !ok {
		return current, ErrRosterStateConflict
	}
	next, ok := events[event]
	if !ok {
		return current, ErrRosterStateConflict
	}
	return next, nil
}

// RosterPolicy — бизнес-предикаты disbandable/destroyable, внедряемые
// вызывающей стороной и проверяемые атомарно с переходом.
type RosterPolicy interface {
	Disbandable(ctx context.Context, roster *models.Roster) (bool, error)
	Destroyable(ctx context.Context, roster *models.Roster) (bool, error)
}

// matchCountPolicy — политика по умолчанию: заявку нельзя распустить, пока у
// неё остаются несыгранные матчи, и нельзя уничтожить, если матчи вообще есть.
type matchCountPolicy struct {
	matchRepo repositories.MatchRepository
}

func NewMatchCountPolicy(matchRepo repositories.MatchRepository) RosterPolicy {
	return &matchCountPolicy{matchRepo: matchRepo}
}

func (p *matchCountPolicy) Disbandable(ctx context.Context, roster *models.Roster) (bool, error) {
	count, err := p.matchRepo.CountUnplayedByRosterID(ctx, roster.ID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (p *matchCountPolicy) Destroyable(ctx context.Context, roster *models.Roster) (bool, error) {
	count, err := p.matchRepo.CountByRosterID(ctx, roster.ID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
