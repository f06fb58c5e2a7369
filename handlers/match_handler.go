package handlers

import (
	"net/http"

	"github.com/bracketforge/tournament-engine/services"
)

type MatchHandler struct {
	advancement services.AdvancementService
}

func NewMatchHandler(advancement services.AdvancementService) *MatchHandler {
	return &MatchHandler{advancement: advancement}
}

// ReportResult handles POST /tournaments/{tournamentID}/matches/{matchID}/result.
func (h *MatchHandler) ReportResult(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ReportResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.advancement.ReportResult(r.Context(), tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Start handles POST /tournaments/{tournamentID}/matches/{matchID}/start,
// claiming a ready match for one scorekeeper.
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Version int `json:"version"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.advancement.MarkInProgress(r.Context(), tournamentID, matchID, input.Version); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "in_progress"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Challenge handles POST /tournaments/{tournamentID}/challenges for
// ladder and pyramid tournaments.
func (h *MatchHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ChallengeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.advancement.Challenge(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
