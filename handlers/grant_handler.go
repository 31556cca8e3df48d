package handlers

import (
	"net/http"

	"github.com/Respawn-League/citadel/repositories"
	"github.com/Respawn-League/citadel/services"
)

type GrantHandler struct {
	grantService *services.GrantService
	users        repositories.UserRepository
}

func NewGrantHandler(grantService *services.GrantService, users repositories.UserRepository) *GrantHandler {
	return &GrantHandler{
		grantService: grantService,
		users:        users,
	}
}

func (h *GrantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.GrantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	grant, err := h.grantService.Grant(r.Context(), input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"grant": grant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *GrantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	grantID, err := idFromURL(r, "grantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	if err := h.grantService.Revoke(r.Context(), grantID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GrantHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := idFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, ok := currentActor(w, r, h.users)
	if !ok {
		return
	}

	grants, err := h.grantService.ListByUser(r.Context(), userID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"grants": grants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
