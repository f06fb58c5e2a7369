package models

// Structure is the in-memory view of one tournament's ledger: the flat
// match arena plus the format and config it was generated under. It is
// rebuilt from the store per call; the engine never keeps one around.
type Structure struct {
	TournamentID int            `json:"tournament_id"`
	Format       FormatKind     `json:"format"`
	Config       GenerateConfig `json:"config"`
	Matches      []*Match       `json:"matches"`
}

// MatchByID looks a match up in the arena. Returns nil when absent.
func (s *Structure) MatchByID(id int) *Match {
	for _, m := range s.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// MaxRound returns the highest round number in the given section, or in
// the whole arena when section is empty.
func (s *Structure) MaxRound(section string) int {
	max := 0
	for _, m := range s.Matches {
		if section != "" && m.Section != section {
			continue
		}
		if m.Round > max {
			max = m.Round
		}
	}
	return max
}

// NextCompletedSeq returns the next value of the per-tournament
// completion sequence.
func (s *Structure) NextCompletedSeq() int {
	max := 0
	for _, m := range s.Matches {
		if m.CompletedSeq > max {
			max = m.CompletedSeq
		}
	}
	return max + 1
}
