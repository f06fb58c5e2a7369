package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/services"
)

type TournamentHandler struct {
	structures services.StructureService
}

func NewTournamentHandler(structures services.StructureService) *TournamentHandler {
	return &TournamentHandler{structures: structures}
}

// Create handles POST /tournaments: roster in, full generated
// structure out.
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.structures.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.structures.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.structures.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatches returns the flat ledger, optionally narrowed by the
// round, status and section query parameters.
func (h *TournamentHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlParamInt(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.structures.ListMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	filtered, err := filterMatches(matches, r.URL.Query())
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": filtered}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func filterMatches(matches []models.Match, query url.Values) ([]models.Match, error) {
	round := 0
	if raw := query.Get("round"); raw != "" {
		var err error
		if round, err = strconv.Atoi(raw); err != nil || round < 1 {
			return nil, errors.New("invalid round parameter")
		}
	}
	status := models.MatchStatus(query.Get("status"))
	section := query.Get("section")

	if round == 0 && status == "" && section == "" {
		return matches, nil
	}
	filtered := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if round != 0 && m.Round != round {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		if section != "" && m.Section != section {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered, nil
}
