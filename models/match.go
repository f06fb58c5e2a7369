package models

import "time"

type MatchStatus string

const (
	MatchStatusPending    MatchStatus = "pending"
	MatchStatusReady      MatchStatus = "ready"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusBye        MatchStatus = "bye"
)

// Bracket section labels. Pool sections are "pool-1", "pool-2", ….
const (
	SectionMain           = "main"
	SectionWinners        = "winners"
	SectionLosers         = "losers"
	SectionLastChance     = "last_chance"
	SectionFinal          = "final"
	SectionConsolation    = "consolation"
	SectionClassification = "classification"
	SectionPlayoffs       = "playoffs"
	SectionEast           = "east"
	SectionWest           = "west"
	SectionNorth          = "north"
	SectionSouth          = "south"
	SectionLadder         = "ladder"
	SectionPyramid        = "pyramid"
	SectionField          = "field"
	SectionScoresheet     = "scoresheet"
)

// Match is one entry in the ledger. Matches live in a flat arena and
// reference each other by integer id through NextMatchID/LoserMatchID,
// never through nested pointers.
//
// A Solo match is a single-slot score entry (score-only formats and
// battle royale rounds): only ParticipantA is set, ScoreA carries the
// primary value and ScoreB the secondary tie-break metric.
type Match struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Round        int    `json:"round" db:"round"`
	SlotIndex    int    `json:"slot_index" db:"slot_index"`
	Section      string `json:"section" db:"section"`

	ParticipantA *int `json:"participant_a,omitempty" db:"participant_a"`
	ParticipantB *int `json:"participant_b,omitempty" db:"participant_b"`

	ScoreA *int `json:"score_a,omitempty" db:"score_a"`
	ScoreB *int `json:"score_b,omitempty" db:"score_b"`

	Status   MatchStatus `json:"status" db:"status"`
	WinnerID *int        `json:"winner_id,omitempty" db:"winner_id"`

	NextMatchID    *int `json:"next_match_id,omitempty" db:"next_match_id"`
	NextMatchSlot  *int `json:"next_match_slot,omitempty" db:"next_match_slot"`
	LoserMatchID   *int `json:"loser_match_id,omitempty" db:"loser_match_id"`
	LoserMatchSlot *int `json:"loser_match_slot,omitempty" db:"loser_match_slot"`

	Solo          bool `json:"solo,omitempty" db:"solo"`
	RepeatPairing bool `json:"repeat_pairing,omitempty" db:"repeat_pairing"`

	// Version is the optimistic concurrency counter; every committed
	// mutation increments it. CompletedSeq is a per-tournament monotonic
	// sequence assigned at completion time, used to replay ladder ranks
	// and break submission-time ties deterministically.
	Version      int `json:"version" db:"version"`
	CompletedSeq int `json:"completed_seq,omitempty" db:"completed_seq"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Finished reports whether the match holds a committed result.
func (m *Match) Finished() bool {
	return m.Status == MatchStatusCompleted || m.Status == MatchStatusBye
}

// Draw reports a completed match with no winner.
func (m *Match) Draw() bool {
	return m.Status == MatchStatusCompleted && m.WinnerID == nil && !m.Solo
}

// LoserID returns the losing participant, or nil for draws, byes and
// solo entries.
func (m *Match) LoserID() *int {
	if !m.Finished() || m.WinnerID == nil || m.Solo || m.ParticipantA == nil || m.ParticipantB == nil {
		return nil
	}
	if *m.WinnerID == *m.ParticipantA {
		return m.ParticipantB
	}
	return m.ParticipantA
}

// HasParticipant reports whether the given participant occupies a slot.
func (m *Match) HasParticipant(id int) bool {
	return (m.ParticipantA != nil && *m.ParticipantA == id) ||
		(m.ParticipantB != nil && *m.ParticipantB == id)
}
