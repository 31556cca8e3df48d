package services

import (
	"context"
	"sort"

	"github.com/Respawn-League/citadel/models"
	"github.com/Respawn-League/citadel/repositories"
)

// In-memory реализации репозиториев для тестов сервисного слоя.

type fakeGrantRepo struct {
	grants []models.CapabilityGrant
	nextID int
}

func (f *fakeGrantRepo) Create(_ context.Context, grant *models.CapabilityGrant) error {
	f.nextID++
	grant.ID = f.nextID
	f.grants = append(f.grants, *grant)
	return nil
}

func (f *fakeGrantRepo) Delete(_ context.Context, id int) error {
	for i, grant := range f.grants {
		if grant.ID == id {
			f.grants = append(f.grants[:i], f.grants[i+1:]...)
			return nil
		}
	}
	return repositories.ErrGrantNotFound
}

func (f *fakeGrantRepo) ListByUser(_ context.Context, userID int) ([]models.CapabilityGrant, error) {
	var out []models.CapabilityGrant
	for _, grant := range f.grants {
		if grant.UserID == userID {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (f *fakeGrantRepo) HasGlobal(_ context.Context, userID int, action models.CapabilityAction, subject models.SubjectKind) (bool, error) {
	for _, grant := range f.grants {
		if grant.UserID == userID && grant.Action == action && grant.Subject == subject && grant.TeamID == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGrantRepo) HasTeamScoped(_ context.Context, userID int, action models.CapabilityAction, teamID int) (bool, error) {
	for _, grant := range f.grants {
		if grant.UserID == userID && grant.Action == action && grant.TeamID != nil && *grant.TeamID == teamID {
			return true, nil
		}
	}
	return false, nil
}

type fakeTeamRepo struct {
	teams  map[int]models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[int]models.Team)}
}

func (f *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	f.nextID++
	team.ID = f.nextID
	f.teams[team.ID] = *team
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &team, nil
}

func (f *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	if _, ok := f.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	f.teams[team.ID] = *team
	return nil
}

func (f *fakeTeamRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	team, ok := f.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	f.teams[id] = team
	return nil
}

type fakeUserRepo struct {
	users  map[int]models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) ListByTeamID(_ context.Context, teamID int) ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		if user.TeamID != nil && *user.TeamID == teamID {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeLeagueRepo struct {
	leagues   map[int]models.League
	divisions map[int]models.Division
	nextID    int
	nextDivID int
}

func newFakeLeagueRepo() *fakeLeagueRepo {
	return &fakeLeagueRepo{
		leagues:   make(map[int]models.League),
		divisions: make(map[int]models.Division),
	}
}

func (f *fakeLeagueRepo) Create(_ context.Context, league *models.League) error {
	f.nextID++
	league.ID = f.nextID
	f.leagues[league.ID] = *league
	return nil
}

func (f *fakeLeagueRepo) GetByID(_ context.Context, id int) (*models.League, error) {
	league, ok := f.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	return &league, nil
}

func (f *fakeLeagueRepo) List(_ context.Context, limit, offset int) ([]models.League, error) {
	var out []models.League
	for _, league := range f.leagues {
		out = append(out, league)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLeagueRepo) Update(_ context.Context, league *models.League) error {
	if _, ok := f.leagues[league.ID]; !ok {
		return repositories.ErrLeagueNotFound
	}
	f.leagues[league.ID] = *league
	return nil
}

func (f *fakeLeagueRepo) CreateDivision(_ context.Context, division *models.Division) error {
	f.nextDivID++
	division.ID = f.nextDivID
	f.divisions[division.ID] = *division
	return nil
}

func (f *fakeLeagueRepo) GetDivision(_ context.Context, id int) (*models.Division, error) {
	division, ok := f.divisions[id]
	if !ok {
		return nil, repositories.ErrDivisionNotFound
	}
	return &division, nil
}

func (f *fakeLeagueRepo) ListDivisions(_ context.Context, leagueID int) ([]models.Division, error) {
	var out []models.Division
	for _, division := range f.divisions {
		if division.LeagueID == leagueID {
			out = append(out, division)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLeagueRepo) FirstDivision(_ context.Context, leagueID int) (*models.Division, error) {
	divisions, _ := f.ListDivisions(context.Background(), leagueID)
	if len(divisions) == 0 {
		return nil, repositories.ErrDivisionNotFound
	}
	return &divisions[0], nil
}

type fakeRosterRepo struct {
	rosters map[int]models.Roster
	players map[int][]models.Player
	nextID  int
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{
		rosters: make(map[int]models.Roster),
		players: make(map[int][]models.Player),
	}
}

func (f *fakeRosterRepo) CreateWithPlayers(_ context.Context, roster *models.Roster, players []*models.Player) error {
	for _, existing := range f.rosters {
		if existing.TeamID == roster.TeamID && existing.LeagueID == roster.LeagueID &&
			existing.Status != models.RosterStatusDisbanded {
			return repositories.ErrRosterEntryConflict
		}
	}
	f.nextID++
	roster.ID = f.nextID
	stored := make([]models.Player, 0, len(players))
	for i, player := range players {
		player.ID = f.nextID*100 + i
		player.RosterID = roster.ID
		stored = append(stored, *player)
	}
	f.rosters[roster.ID] = *roster
	f.players[roster.ID] = stored
	return nil
}

func (f *fakeRosterRepo) GetByID(_ context.Context, id int) (*models.Roster, error) {
	roster, ok := f.rosters[id]
	if !ok {
		return nil, repositories.ErrRosterNotFound
	}
	return &roster, nil
}

func (f *fakeRosterRepo) FindActiveByTeamAndLeague(_ context.Context, teamID, leagueID int) (*models.Roster, error) {
	for _, roster := range f.rosters {
		if roster.TeamID == teamID && roster.LeagueID == leagueID &&
			roster.Status != models.RosterStatusDisbanded {
			r := roster
			return &r, nil
		}
	}
	return nil, repositories.ErrRosterNotFound
}

func (f *fakeRosterRepo) Update(_ context.Context, roster *models.Roster) error {
	if _, ok := f.rosters[roster.ID]; !ok {
		return repositories.ErrRosterNotFound
	}
	f.rosters[roster.ID] = *roster
	return nil
}

func (f *fakeRosterRepo) UpdateStatusFrom(_ context.Context, id int, from, to models.RosterStatus) error {
	roster, ok := f.rosters[id]
	if !ok {
		return repositories.ErrRosterNotFound
	}
	if roster.Status != from {
		return repositories.ErrRosterStatusConflict
	}
	roster.Status = to
	f.rosters[id] = roster
	return nil
}

func (f *fakeRosterRepo) Approve(_ context.Context, roster *models.Roster) error {
	stored, ok := f.rosters[roster.ID]
	if !ok {
		return repositories.ErrRosterNotFound
	}
	if stored.Status != models.RosterStatusPending {
		return repositories.ErrRosterStatusConflict
	}
	stored.Status = models.RosterStatusApproved
	stored.Name = roster.Name
	stored.DivisionID = roster.DivisionID
	stored.Seeding = roster.Seeding
	f.rosters[roster.ID] = stored
	return nil
}

func (f *fakeRosterRepo) ListByDivision(_ context.Context, divisionID int) ([]models.Roster, error) {
	var out []models.Roster
	for _, roster := range f.rosters {
		if roster.DivisionID == divisionID {
			out = append(out, roster)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRosterRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.rosters[id]; !ok {
		return repositories.ErrRosterNotFound
	}
	delete(f.rosters, id)
	delete(f.players, id)
	return nil
}

type fakePlayerRepo struct {
	rosters *fakeRosterRepo
}

func (f *fakePlayerRepo) ListByRosterID(_ context.Context, rosterID int) ([]models.Player, error) {
	return f.rosters.players[rosterID], nil
}

type fakeMatchRepo struct {
	total    map[int]int
	unplayed map[int]int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{total: make(map[int]int), unplayed: make(map[int]int)}
}

func (f *fakeMatchRepo) CountByRosterID(_ context.Context, rosterID int) (int, error) {
	return f.total[rosterID], nil
}

func (f *fakeMatchRepo) CountUnplayedByRosterID(_ context.Context, rosterID int) (int, error) {
	return f.unplayed[rosterID], nil
}

type broadcastRecord struct {
	Room    string
	Message interface{}
}

type fakeHub struct {
	broadcasts []broadcastRecord
}

func (f *fakeHub) BroadcastToRoom(roomID string, message interface{}) {
	f.broadcasts = append(f.broadcasts, broadcastRecord{Room: roomID, Message: message})
}
