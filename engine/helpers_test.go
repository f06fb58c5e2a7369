package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bracketforge/tournament-engine/models"
)

// seededRoster returns n participants with ids 1..n and seeds 1..n, so
// placement order equals id order and structures are fully predictable.
func seededRoster(n int) []*models.Participant {
	roster := make([]*models.Participant, 0, n)
	for i := 1; i <= n; i++ {
		seed := i
		roster = append(roster, &models.Participant{
			ID:          i,
			DisplayName: fmt.Sprintf("P%d", i),
			Seed:        &seed,
		})
	}
	return roster
}

func mustGenerate(t *testing.T, format models.FormatKind, roster []*models.Participant, cfg models.GenerateConfig) *models.Structure {
	t.Helper()
	s, err := Generate(format, GenerateParams{TournamentID: 1, Roster: roster, Config: cfg})
	require.NoError(t, err)
	return s
}

func mustReport(t *testing.T, s *models.Structure, roster []*models.Participant, matchID, scoreA, scoreB int) *ReportOutcome {
	t.Helper()
	out, err := ReportResult(s, roster, ReportInput{MatchID: matchID, ScoreA: scoreA, ScoreB: scoreB})
	require.NoError(t, err, "reporting match %d", matchID)
	return out
}

func mustCorrect(t *testing.T, s *models.Structure, roster []*models.Participant, matchID, scoreA, scoreB int) *ReportOutcome {
	t.Helper()
	out, err := ReportResult(s, roster, ReportInput{MatchID: matchID, ScoreA: scoreA, ScoreB: scoreB, Correction: true})
	require.NoError(t, err, "correcting match %d", matchID)
	return out
}

// drainOpen plays every remaining open match the same way playOut does.
// Useful after the title is decided but side draws are still running.
func drainOpen(t *testing.T, s *models.Structure, roster []*models.Participant) {
	t.Helper()
	for rounds := 0; rounds < 10_000; rounds++ {
		ready := readyMatches(s)
		if len(ready) == 0 {
			return
		}
		m := ready[0]
		if m.Solo {
			mustReport(t, s, roster, m.ID, *m.ParticipantA, 0)
		} else if *m.ParticipantA < *m.ParticipantB {
			mustReport(t, s, roster, m.ID, 2, 1)
		} else {
			mustReport(t, s, roster, m.ID, 1, 2)
		}
	}
	t.Fatal("open matches never drained")
}

func readyMatches(s *models.Structure) []*models.Match {
	var ready []*models.Match
	for _, m := range s.Matches {
		if m.Status == models.MatchStatusReady {
			ready = append(ready, m)
		}
	}
	return ready
}

func nonByeMatches(s *models.Structure) []*models.Match {
	var ms []*models.Match
	for _, m := range s.Matches {
		if m.Status != models.MatchStatusBye {
			ms = append(ms, m)
		}
	}
	return ms
}

func sectionMatches(s *models.Structure, section string) []*models.Match {
	var ms []*models.Match
	for _, m := range s.Matches {
		if m.Section == section {
			ms = append(ms, m)
		}
	}
	return ms
}

// playOut reports every playable match until a champion emerges or
// nothing is left to play. Two-sided matches go to the lower id 2-1;
// solo entries score the participant's own id. Returns the champion.
func playOut(t *testing.T, s *models.Structure, roster []*models.Participant) *int {
	t.Helper()
	for rounds := 0; rounds < 10_000; rounds++ {
		ready := readyMatches(s)
		if len(ready) == 0 {
			return nil
		}
		m := ready[0]
		var out *ReportOutcome
		if m.Solo {
			out = mustReport(t, s, roster, m.ID, *m.ParticipantA, 0)
		} else if *m.ParticipantA < *m.ParticipantB {
			out = mustReport(t, s, roster, m.ID, 2, 1)
		} else {
			out = mustReport(t, s, roster, m.ID, 1, 2)
		}
		if out.ChampionID != nil {
			return out.ChampionID
		}
	}
	t.Fatal("structure never resolved")
	return nil
}
