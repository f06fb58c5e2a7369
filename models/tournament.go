package models

import "time"

type TournamentStatus string

const (
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
)

// Tournament is the owning entity of one competition structure.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Format    FormatKind       `json:"format" db:"format"`
	Status    TournamentStatus `json:"status" db:"status"`
	WinnerID  *int             `json:"winner_id,omitempty" db:"winner_id"`
	Config    GenerateConfig   `json:"config" db:"-"` // persisted as JSON in config_json
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
