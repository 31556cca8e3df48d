package handlers

import (
	"errors"
	"net/http"

	"github.com/Respawn-League/citadel/repositories"
	"github.com/Respawn-League/citadel/services"
)

type RosterHandler struct {
	rosterService *services.RosterService
	users         repositories.UserRepository
}

func NewRosterHandler(rosterService *services.RosterService, users repositories.UserRepository) *RosterHandler {
	return &RosterHandler{
		rosterService: rosterService,
		users:         users,
	}
}

// Create godoc
// @Summary Подать заявку команды в лигу
// @Tags rosters
// @Router /leagues/{leagueID}/rosters [post]
func (h *RosterHandler) Create(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var body struct {
		TeamID int                    `json:"team_id"`
		Roster services.RosterPayload `json:"roster"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if body.TeamID < 1 {
		badRequestResponse(w, r, errors.New("team_id is required"))
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	roster, err := h.rosterService.Create(r.Context(), services.CreateRosterInput{
		LeagueID: leagueID,
		TeamID:   body.TeamID,
		Payload:  body.Roster,
	}, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) Get(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rosterID, err := idFromURL(r, "rosterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	roster, err := h.rosterService.GetByID(r.Context(), leagueID, rosterID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) Update(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rosterID, err := idFromURL(r, "rosterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var body struct {
		Roster services.RosterPayload `json:"roster"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	roster, err := h.rosterService.Update(r.Context(), leagueID, rosterID, body.Roster, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Review отдаёт заявку со составом для страницы модерации лиги.
func (h *RosterHandler) Review(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rosterID, err := idFromURL(r, "rosterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	roster, err := h.rosterService.Review(r.Context(), leagueID, rosterID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) Approve(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rosterID, err := idFromURL(r, "rosterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var body struct {
		Roster services.RosterPayload `json:"roster"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	roster, err := h.rosterService.Approve(r.Context(), leagueID, rosterID, body.Roster, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) Disband(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rosterID, err := idFromURL(r, "rosterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	roster, err := h.rosterService.Disband(r.Context(), leagueID, rosterID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"roster": roster}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	leagueID, err := idFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	rosterID, err := idFromURL(r, "rosterID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	if err := h.rosterService.Destroy(r.Context(), leagueID, rosterID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
