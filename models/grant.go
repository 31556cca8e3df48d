package models

import "time"

// CapabilityAction — именованное действие ("edit"), SubjectKind — вид ресурса.
type CapabilityAction string

type SubjectKind string

const (
	ActionEdit CapabilityAction = "edit"

	SubjectTeam   SubjectKind = "team"
	SubjectLeague SubjectKind = "league"
	SubjectGame   SubjectKind = "game"
)

// CapabilityGrant выдаёт пользователю действие над видом ресурса.
// TeamID == nil означает глобальный грант; заполненный TeamID ограничивает
// грант одной командой (subject у таких грантов всегда team).
type CapabilityGrant struct {
	ID        int              `json:"id" db:"id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Action    CapabilityAction `json:"action" db:"action"`
	Subject   SubjectKind      `json:"subject" db:"subject"`
	TeamID    *int             `json:"team_id,omitempty" db:"team_id"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

func (g *CapabilityGrant) Global() bool {
	return g.TeamID == nil
}
