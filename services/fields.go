package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Respawn-League/citadel/models"
)

// RosterPayload — недоверенные поля запроса (имя поля -> значение),
// уже раскодированные из JSON. Сервисный слой — граница доверия:
// поля вне разрешённого скоупа молча отбрасываются, а не отклоняют запрос.
type RosterPayload map[string]interface{}

// Имена полей заявки, управляемые скоупами записи.
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldRanking      = "ranking"
	FieldSeeding      = "seeding"
	FieldDivisionID   = "division_id"
	FieldScheduleData = "schedule_data"
	FieldPlayers      = "players"
)

// FieldSet — разрешённый набор имён полей.
type FieldSet map[string]bool

var (
	// Полный набор для обладателя права league-edit.
	leagueEditorFields = FieldSet{
		FieldName:        true,
		FieldDescription: true,
		FieldRanking:     true,
		FieldSeeding:     true,
		FieldDivisionID:  true,
	}
	// Минимальный набор для владельца заявки без права league-edit.
	baseRosterFields = FieldSet{
		FieldDescription: true,
	}
	// Скоуп создания заявки.
	creationFields = FieldSet{
		FieldName:        true,
		FieldDescription: true,
		FieldDivisionID:  true,
		FieldPlayers:     true,
	}
	// Скоуп, применяемый вместе с переходом approve.
	approvalFields = FieldSet{
		FieldName:       true,
		FieldSeeding:    true,
		FieldDivisionID: true,
	}
)

// CanWriteSchedule — ScheduleDataGate: schedule_data можно писать, только
// пока лига не заморозила расписание, независимо от прав actor-а.
func CanWriteSchedule(league *models.League) bool {
	return !league.ScheduleLocked
}

// FieldScopeResolver вычисляет множество полей заявки, доступных actor-у
// для записи в текущем запросе.
type FieldScopeResolver struct {
	oracle *PermissionOracle
}

func NewFieldScopeResolver(oracle *PermissionOracle) *FieldScopeResolver {
	return &FieldScopeResolver{oracle: oracle}
}

// MutableFields возвращает allow-set для обновления заявки. schedule_data
// добавляется отдельным гейтом и не зависит от прав actor-а.
func (r *FieldScopeResolver) MutableFields(ctx context.Context, actor *models.User, league *models.League) (FieldSet, error) {
	canEditLeague, err := r.oracle.Grants(ctx, actor, models.ActionEdit, models.SubjectLeague, GlobalScope)
	if err != nil {
		return nil, err
	}

	fields := make(FieldSet)
	if canEditLeague {
		for name := range leagueEditorFields {
			fields[name] = true
		}
	} else {
		for name := range baseRosterFields {
			fields[name] = true
		}
	}

	if CanWriteSchedule(league) {
		fields[FieldScheduleData] = true
	}
	return fields, nil
}

// CreationFields возвращает allow-set для создания заявки.
func (r *FieldScopeResolver) CreationFields(league *models.League) FieldSet {
	fields := make(FieldSet)
	for name := range creationFields {
		fields[name] = true
	}
	if CanWriteSchedule(league) {
		fields[FieldScheduleData] = true
	}
	return fields
}

// ApprovalFields возвращает allow-set, применяемый при approve.
func (r *FieldScopeResolver) ApprovalFields() FieldSet {
	fields := make(FieldSet)
	for name := range approvalFields {
		fields[name] = true
	}
	return fields
}

// Restrict отбрасывает из payload всё, чего нет в allow-set.
func (p RosterPayload) Restrict(allowed FieldSet) RosterPayload {
	restricted := make(RosterPayload, len(p))
	for name, value := range p {
		if allowed[name] {
			restricted[name] = value
		}
	}
	return restricted
}

// applyRosterPayload переносит уже отфильтрованные поля на модель.
// Ошибки типов — ErrValidationFailed: скоупы решают "можно ли",
// а не "корректно ли".
func applyRosterPayload(roster *models.Roster, payload RosterPayload) error {
	for name, value := range payload {
		switch name {
		case FieldName:
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: name must be a string", ErrValidationFailed)
			}
			roster.Name = s
		case FieldDescription:
			if value == nil {
				roster.Description = nil
				continue
			}
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: description must be a string", ErrValidationFailed)
			}
			roster.Description = &s
		case FieldRanking:
			n, err := payloadInt(value)
			if err != nil {
				return fmt.Errorf("%w: ranking must be an integer", ErrValidationFailed)
			}
			roster.Ranking = n
		case FieldSeeding:
			n, err := payloadInt(value)
			if err != nil {
				return fmt.Errorf("%w: seeding must be an integer", ErrValidationFailed)
			}
			roster.Seeding = n
		case FieldDivisionID:
			n, err := payloadInt(value)
			if err != nil || n == nil {
				return fmt.Errorf("%w: division_id must be an integer", ErrValidationFailed)
			}
			roster.DivisionID = *n
		case FieldScheduleData:
			if value == nil {
				roster.ScheduleData = nil
				continue
			}
			raw, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("%w: schedule_data is not serializable", ErrValidationFailed)
			}
			roster.ScheduleData = raw
		}
	}
	return nil
}

// payloadInt приводит JSON-число к *int. nil остаётся nil (сброс поля).
func payloadInt(value interface{}) (*int, error) {
	if value == nil {
		return nil, nil
	}
	f, ok := value.(float64)
	if !ok || f != float64(int(f)) {
		return nil, ErrValidationFailed
	}
	n := int(f)
	return &n, nil
}

// payloadUserIDs извлекает список user id из поля players.
func payloadUserIDs(value interface{}) ([]int, error) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: players must be a list of user ids", ErrValidationFailed)
	}
	ids := make([]int, 0, len(list))
	for _, item := range list {
		n, err := payloadInt(item)
		if err != nil || n == nil {
			return nil, fmt.Errorf("%w: players must be a list of user ids", ErrValidationFailed)
		}
		ids = append(ids, *n)
	}
	return ids, nil
}
