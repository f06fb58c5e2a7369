package handlers

import (
	"net/http"

	"github.com/bracketforge/tournament-engine/services"
)

type StandingsHandler struct {
	standings services.StandingsService
}

func NewStandingsHandler(standings services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standings: standings}
}

// Get handles GET /tournaments/{tournamentID}/standings.
func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.standings.Standings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
