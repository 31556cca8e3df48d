package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Respawn-League/citadel/models"
)

type rosterServiceFixture struct {
	service *RosterService
	rosters *fakeRosterRepo
	leagues *fakeLeagueRepo
	matches *fakeMatchRepo
	hub     *fakeHub

	league   *models.League
	division *models.Division
	team     *models.Team
	captain  *models.User
	members  []*models.User
	admin    *models.User
}

func newRosterServiceFixture(t *testing.T) *rosterServiceFixture {
	t.Helper()
	ctx := context.Background()

	users := newFakeUserRepo()
	teams := newFakeTeamRepo()
	leagues := newFakeLeagueRepo()
	rosters := newFakeRosterRepo()
	grants := &fakeGrantRepo{}
	matches := newFakeMatchRepo()
	hub := &fakeHub{}

	league := &models.League{Name: "Season 12", Signuppable: true}
	require.NoError(t, leagues.Create(ctx, league))
	division := &models.Division{LeagueID: league.ID, Name: "Open"}
	require.NoError(t, leagues.CreateDivision(ctx, division))

	captain := &models.User{FirstName: "Alice", Email: "alice@example.com"}
	require.NoError(t, users.Create(ctx, captain))

	team := &models.Team{Name: "Iron Wolves", CaptainID: captain.ID}
	require.NoError(t, teams.Create(ctx, team))
	captain.TeamID = intPtr(team.ID)
	require.NoError(t, users.Update(ctx, captain))

	members := []*models.User{captain}
	for _, email := range []string{"bob@example.com", "carol@example.com"} {
		member := &models.User{Email: email, TeamID: intPtr(team.ID)}
		require.NoError(t, users.Create(ctx, member))
		members = append(members, member)
	}

	admin := &models.User{Email: "admin@example.com"}
	require.NoError(t, users.Create(ctx, admin))
	require.NoError(t, grants.Create(ctx, &models.CapabilityGrant{
		UserID:  admin.ID,
		Action:  models.ActionEdit,
		Subject: models.SubjectLeague,
	}))

	oracle := NewPermissionOracle(grants, teams)
	gate := NewAuthorizationGate(oracle, NewMatchCountPolicy(matches), rosters)
	fields := NewFieldScopeResolver(oracle)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewRosterService(
		rosters,
		&fakePlayerRepo{rosters: rosters},
		users,
		teams,
		leagues,
		gate,
		fields,
		hub,
		logger,
	)

	return &rosterServiceFixture{
		service:  service,
		rosters:  rosters,
		leagues:  leagues,
		matches:  matches,
		hub:      hub,
		league:   league,
		division: division,
		team:     team,
		captain:  captain,
		members:  members,
		admin:    admin,
	}
}

func (f *rosterServiceFixture) create(t *testing.T, payload RosterPayload) *models.Roster {
	t.Helper()
	roster, err := f.service.Create(context.Background(), CreateRosterInput{
		LeagueID: f.league.ID,
		TeamID:   f.team.ID,
		Payload:  payload,
	}, f.captain)
	require.NoError(t, err)
	return roster
}

func TestRosterServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to team name, first division and full squad", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		assert.Equal(t, f.team.Name, roster.Name)
		assert.Equal(t, f.division.ID, roster.DivisionID)
		assert.Equal(t, models.RosterStatusPending, roster.Status)
		assert.Len(t, roster.Players, 3)

		require.Len(t, f.hub.broadcasts, 1)
		assert.Equal(t, "league_1", f.hub.broadcasts[0].Room)
	})

	t.Run("explicit player subset", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, RosterPayload{
			"name":    "Wolves Black",
			"players": []interface{}{float64(f.members[0].ID), float64(f.members[1].ID)},
		})

		assert.Equal(t, "Wolves Black", roster.Name)
		require.Len(t, roster.Players, 2)
		assert.Equal(t, f.members[0].ID, roster.Players[0].UserID)
		assert.Equal(t, f.members[1].ID, roster.Players[1].UserID)
	})

	t.Run("non-member in players is rejected", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		_, err := f.service.Create(ctx, CreateRosterInput{
			LeagueID: f.league.ID,
			TeamID:   f.team.ID,
			Payload:  RosterPayload{"players": []interface{}{float64(f.admin.ID)}},
		}, f.captain)
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("ranking and seeding are dropped at creation", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, RosterPayload{
			"ranking": float64(1),
			"seeding": float64(2),
		})
		assert.Nil(t, roster.Ranking)
		assert.Nil(t, roster.Seeding)
	})

	t.Run("closed league", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		f.league.Signuppable = false
		require.NoError(t, f.leagues.Update(ctx, f.league))

		_, err := f.service.Create(ctx, CreateRosterInput{
			LeagueID: f.league.ID,
			TeamID:   f.team.ID,
		}, f.captain)
		assert.ErrorIs(t, err, ErrLeagueNotSignuppable)
	})

	t.Run("second entry for the same league", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		f.create(t, nil)

		_, err := f.service.Create(ctx, CreateRosterInput{
			LeagueID: f.league.ID,
			TeamID:   f.team.ID,
		}, f.captain)
		assert.ErrorIs(t, err, ErrTeamAlreadyEntered)
	})

	t.Run("re-entry after disband", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)
		_, err := f.service.Disband(ctx, f.league.ID, roster.ID, f.captain)
		require.NoError(t, err)

		again := f.create(t, nil)
		assert.NotEqual(t, roster.ID, again.ID)
	})
}

func TestRosterServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("owner scope keeps description, drops privileged fields", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		updated, err := f.service.Update(ctx, f.league.ID, roster.ID, RosterPayload{
			"name":        "Hijacked",
			"description": "we play on wednesdays",
			"seeding":     float64(1),
		}, f.captain)
		require.NoError(t, err)

		assert.Equal(t, f.team.Name, updated.Name)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "we play on wednesdays", *updated.Description)
		assert.Nil(t, updated.Seeding)
	})

	t.Run("league editor can rename and seed", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		updated, err := f.service.Update(ctx, f.league.ID, roster.ID, RosterPayload{
			"name":    "Division Favorites",
			"seeding": float64(1),
		}, f.admin)
		require.NoError(t, err)

		assert.Equal(t, "Division Favorites", updated.Name)
		require.NotNil(t, updated.Seeding)
		assert.Equal(t, 1, *updated.Seeding)
	})

	t.Run("schedule data respects league lock", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		updated, err := f.service.Update(ctx, f.league.ID, roster.ID, RosterPayload{
			"schedule_data": map[string]interface{}{"preferred_day": "friday"},
		}, f.captain)
		require.NoError(t, err)
		assert.JSONEq(t, `{"preferred_day":"friday"}`, string(updated.ScheduleData))

		f.league.ScheduleLocked = true
		require.NoError(t, f.leagues.Update(ctx, f.league))

		updated, err = f.service.Update(ctx, f.league.ID, roster.ID, RosterPayload{
			"schedule_data": map[string]interface{}{"preferred_day": "sunday"},
		}, f.captain)
		require.NoError(t, err)
		assert.JSONEq(t, `{"preferred_day":"friday"}`, string(updated.ScheduleData))
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		_, err := f.service.Update(ctx, f.league.ID, roster.ID, RosterPayload{
			"description": "anything",
		}, &models.User{ID: 99})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("roster from another league is not found", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		other := &models.League{Name: "Season 13", Signuppable: true}
		require.NoError(t, f.leagues.Create(ctx, other))

		_, err := f.service.Update(ctx, other.ID, roster.ID, nil, f.admin)
		assert.ErrorIs(t, err, ErrRosterNotFound)
	})
}

func TestRosterServiceApprove(t *testing.T) {
	ctx := context.Background()

	t.Run("applies approval fields and flips status", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		approved, err := f.service.Approve(ctx, f.league.ID, roster.ID, RosterPayload{
			"seeding":       float64(4),
			"schedule_data": map[string]interface{}{"dropped": true},
		}, f.admin)
		require.NoError(t, err)

		assert.Equal(t, models.RosterStatusApproved, approved.Status)
		require.NotNil(t, approved.Seeding)
		assert.Equal(t, 4, *approved.Seeding)
		// schedule_data вне approval-скоупа.
		assert.Empty(t, approved.ScheduleData)
		// Обновление реально записано.
		stored, err := f.rosters.GetByID(ctx, roster.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RosterStatusApproved, stored.Status)
	})

	t.Run("second approve conflicts", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		_, err := f.service.Approve(ctx, f.league.ID, roster.ID, nil, f.admin)
		require.NoError(t, err)

		_, err = f.service.Approve(ctx, f.league.ID, roster.ID, nil, f.admin)
		assert.ErrorIs(t, err, ErrRosterStateConflict)
	})

	t.Run("captain cannot approve", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		_, err := f.service.Approve(ctx, f.league.ID, roster.ID, nil, f.captain)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestRosterServiceReview(t *testing.T) {
	ctx := context.Background()
	f := newRosterServiceFixture(t)
	roster := f.create(t, nil)
	f.hub.broadcasts = nil

	reviewed, err := f.service.Review(ctx, f.league.ID, roster.ID, f.admin)
	require.NoError(t, err)
	assert.Len(t, reviewed.Players, 3)

	// Review ничего не мутирует и не рассылает событий.
	stored, err := f.rosters.GetByID(ctx, roster.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RosterStatusPending, stored.Status)
	assert.Empty(t, f.hub.broadcasts)

	_, err = f.service.Review(ctx, f.league.ID, roster.ID, f.captain)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRosterServiceDisband(t *testing.T) {
	ctx := context.Background()

	t.Run("captain disbands own roster", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		disbanded, err := f.service.Disband(ctx, f.league.ID, roster.ID, f.captain)
		require.NoError(t, err)
		assert.Equal(t, models.RosterStatusDisbanded, disbanded.Status)

		_, err = f.service.Disband(ctx, f.league.ID, roster.ID, f.captain)
		assert.ErrorIs(t, err, ErrRosterStateConflict)
	})

	t.Run("unplayed matches block disband", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)
		f.matches.unplayed[roster.ID] = 1

		_, err := f.service.Disband(ctx, f.league.ID, roster.ID, f.captain)
		assert.ErrorIs(t, err, ErrRosterStateConflict)
	})
}

func TestRosterServiceGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("league editor reads full roster", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, RosterPayload{
			"schedule_data": map[string]interface{}{"availability": "secret"},
		})

		got, err := f.service.GetByID(ctx, f.league.ID, roster.ID, f.admin)
		require.NoError(t, err)
		assert.Equal(t, roster.ID, got.ID)
		assert.JSONEq(t, `{"availability":"secret"}`, string(got.ScheduleData))
		assert.Len(t, got.Players, 3)
	})

	t.Run("anonymous reader is rejected", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, RosterPayload{
			"schedule_data": map[string]interface{}{"availability": "secret"},
		})

		_, err := f.service.GetByID(ctx, f.league.ID, roster.ID, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("captain without league rights is rejected", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		_, err := f.service.GetByID(ctx, f.league.ID, roster.ID, f.captain)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("roster from another league is not found", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		other := &models.League{Name: "Season 13", Signuppable: true}
		require.NoError(t, f.leagues.Create(ctx, other))

		_, err := f.service.GetByID(ctx, other.ID, roster.ID, f.admin)
		assert.ErrorIs(t, err, ErrRosterNotFound)
	})
}

func TestRosterServiceDestroy(t *testing.T) {
	ctx := context.Background()

	t.Run("league editor removes roster and players", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		require.NoError(t, f.service.Destroy(ctx, f.league.ID, roster.ID, f.admin))

		_, err := f.service.GetByID(ctx, f.league.ID, roster.ID, f.admin)
		assert.ErrorIs(t, err, ErrRosterNotFound)
	})

	t.Run("captain cannot destroy", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)

		err := f.service.Destroy(ctx, f.league.ID, roster.ID, f.captain)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("recorded match blocks destroy", func(t *testing.T) {
		f := newRosterServiceFixture(t)
		roster := f.create(t, nil)
		f.matches.total[roster.ID] = 2

		err := f.service.Destroy(ctx, f.league.ID, roster.ID, f.admin)
		assert.ErrorIs(t, err, ErrRosterStateConflict)
	})
}
