package models

// StandingsEntry is one row of the derived ranking. Standings are
// recomputed from the match ledger on every read and never persisted;
// the ledger stays the single source of truth.
type StandingsEntry struct {
	ParticipantID int    `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	Rank          int    `json:"rank"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
	Points int `json:"points"`

	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`

	// Score aggregates solo entries (total score, or total elapsed time
	// for time trials); Secondary aggregates the configured tie-break
	// metric.
	Score     int `json:"score"`
	Secondary int `json:"secondary"`

	Eliminated bool `json:"eliminated"`

	// TiebreakKey records the comparison key the rank was derived from,
	// so callers can explain an ordering without re-running it.
	TiebreakKey string `json:"tiebreak_key"`
}
