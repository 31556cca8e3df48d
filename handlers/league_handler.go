package handlers

import (
	"net/http"
	"strconv"

	"github.com/Respawn-League/citadel/repositories"
	"github.com/Respawn-League/citadel/services"
)

type LeagueHandler struct {
	leagueService *services.LeagueService
	users         repositories.UserRepository
}

func NewLeagueHandler(leagueService *services.LeagueService, users repositories.UserRepository) *LeagueHandler {
	return &LeagueHandler{
		leagueService: leagueService,
		users:         users,
	}
}

func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	league, err := h.leagueService.CreateLeague(r.Context(), input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	leagues, err := h.leagueService.ListLeagues(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leagues": leagues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get отдаёт лигу вместе с дивизионами и их заявками.
func (h *LeagueHandler) Get(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	league, err := h.leagueService.Overview(r.Context(), leagueID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LeagueHandler) Update(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateLeagueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	league, err := h.leagueService.UpdateLeague(r.Context(), leagueID, input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
