package models

import "time"

// Participant is one competing entity (player or team). The roster is
// immutable once a structure has been generated; matches reference
// participants by id and never copy them.
type Participant struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Seed         *int      `json:"seed,omitempty" db:"seed"` // nil means unseeded placement
	// Placement is the 0-based slot assigned by the generator after
	// seeding and the reproducible shuffle. It fixes initial ladder and
	// pyramid ranks and the swiss seed order.
	Placement int       `json:"placement" db:"placement"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
