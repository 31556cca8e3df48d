package services

import (
	"errors"
	"fmt"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки авторизации
	ErrForbidden              = errors.New("operation not allowed for the current user")
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")

	// Ошибки жизненного цикла заявок
	ErrRosterStateConflict  = errors.New("roster state does not allow this transition")
	ErrLeagueNotSignuppable = errors.New("league is not accepting new signups")
	ErrTeamAlreadyEntered   = errors.New("team has already entered this league")
	// Отказ предиката — частный случай конфликта состояния,
	// поэтому оборачиваем ErrRosterStateConflict.
	ErrRosterNotDisbandable = fmt.Errorf("%w: roster has unplayed matches", ErrRosterStateConflict)
	ErrRosterNotDestroyable = fmt.Errorf("%w: roster has recorded matches", ErrRosterStateConflict)

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrRosterNameRequired = errors.New("roster name is required")
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrLeagueNameRequired = errors.New("league name is required")
	ErrTeamHasNoMembers   = errors.New("team has no members to seed the roster")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrUserAlreadyInTeam  = errors.New("user is already in a team")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound     = errors.New("user not found")
	ErrTeamNotFound     = errors.New("team not found")
	ErrLeagueNotFound   = errors.New("league not found")
	ErrDivisionNotFound = errors.New("division not found")
	ErrRosterNotFound   = errors.New("roster not found")
	ErrGrantNotFound    = errors.New("capability grant not found")
	ErrGrantConflict    = errors.New("capability grant already exists")

	// Конфликты имён
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrLeagueNameConflict = errors.New("league name is already in use")
)
