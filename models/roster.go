package models

import (
	"encoding/json"
	"time"
)

// RosterStatus представляет статусы заявки команды, соответствующие ENUM в БД.
// Destroyed хранимого значения не имеет: уничтоженный ростер удаляется из БД.
type RosterStatus string

const (
	RosterStatusDraft     RosterStatus = "draft"
	RosterStatusPending   RosterStatus = "pending"
	RosterStatusApproved  RosterStatus = "approved"
	RosterStatusDisbanded RosterStatus = "disbanded"
	RosterStatusDestroyed RosterStatus = "destroyed"
)

// Roster — заявка команды на участие в лиге.
type Roster struct {
	ID           int             `json:"id" db:"id"`
	TeamID       int             `json:"team_id" db:"team_id"`
	LeagueID     int             `json:"league_id" db:"league_id"`
	DivisionID   int             `json:"division_id" db:"division_id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Ranking      *int            `json:"ranking,omitempty" db:"ranking"`
	Seeding      *int            `json:"seeding,omitempty" db:"seeding"`
	ScheduleData json.RawMessage `json:"schedule_data,omitempty" db:"schedule_data"`
	Status       RosterStatus    `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`

	Team     *Team     `json:"team,omitempty" db:"-"`
	Division *Division `json:"division,omitempty" db:"-"`
	Players  []Player  `json:"players,omitempty" db:"-"`
}

// Approved истинно только после перехода approve; прямой записью поля
// добиться этого нельзя.
func (r *Roster) Approved() bool {
	return r.Status == RosterStatusApproved
}

// Active — ростер считается "входом" команды в лигу.
func (r *Roster) Active() bool {
	return r.Status != RosterStatusDisbanded && r.Status != RosterStatusDestroyed
}

type Player struct {
	ID        int       `json:"id" db:"id"`
	RosterID  int       `json:"roster_id" db:"roster_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
