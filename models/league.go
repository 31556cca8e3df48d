package models

import "time"

// League представляет лигу (сезон). Флаги signuppable и schedule_locked
// управляют приёмом новых заявок и заморозкой расписания соответственно.
type League struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description,omitempty" db:"description"`
	Signuppable    bool      `json:"signuppable" db:"signuppable"`
	ScheduleLocked bool      `json:"schedule_locked" db:"schedule_locked"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Divisions []Division `json:"divisions,omitempty" db:"-"`
}

type Division struct {
	ID        int       `json:"id" db:"id"`
	LeagueID  int       `json:"league_id" db:"league_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Rosters []Roster `json:"rosters,omitempty" db:"-"`
}
