package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketforge/tournament-engine/models"
)

// reportPair reports the match between a and b so that winner wins 1-0.
// A draw is reported when winner is 0.
func reportPair(t *testing.T, s *models.Structure, roster []*models.Participant, a, b, winner int) {
	t.Helper()
	for _, m := range s.Matches {
		if !m.HasParticipant(a) || !m.HasParticipant(b) {
			continue
		}
		switch {
		case winner == 0:
			mustReport(t, s, roster, m.ID, 1, 1)
		case *m.ParticipantA == winner:
			mustReport(t, s, roster, m.ID, 1, 0)
		default:
			mustReport(t, s, roster, m.ID, 0, 1)
		}
		return
	}
	t.Fatalf("no match between %d and %d", a, b)
}

func TestRoundRobin_EveryPairMeetsOnce(t *testing.T) {
	roster := seededRoster(5)
	s := mustGenerate(t, models.FormatRoundRobin, roster, models.GenerateConfig{})

	// C(5,2) pairings over 5 rounds, all playable immediately.
	require.Len(t, s.Matches, 10)
	assert.Len(t, readyMatches(s), 10)

	seen := map[[2]int]int{}
	perRound := map[int]map[int]int{}
	for _, m := range s.Matches {
		seen[pairKey(*m.ParticipantA, *m.ParticipantB)]++
		if perRound[m.Round] == nil {
			perRound[m.Round] = map[int]int{}
		}
		perRound[m.Round][*m.ParticipantA]++
		perRound[m.Round][*m.ParticipantB]++
	}
	assert.Len(t, seen, 10)
	for pair, n := range seen {
		assert.Equal(t, 1, n, "pair %v scheduled %d times", pair, n)
	}
	for round, counts := range perRound {
		for id, n := range counts {
			assert.Equal(t, 1, n, "participant %d plays %d times in round %d", id, n, round)
		}
	}
}

func TestRoundRobin_DrawNeedsOptIn(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatRoundRobin, roster, models.GenerateConfig{})

	_, err := ReportResult(s, roster, ReportInput{MatchID: s.Matches[0].ID, ScoreA: 1, ScoreB: 1})
	assert.ErrorIs(t, err, ErrTieNotAllowed)

	s = mustGenerate(t, models.FormatRoundRobin, roster, models.GenerateConfig{AllowDraws: true})
	out := mustReport(t, s, roster, s.Matches[0].ID, 1, 1)
	assert.Nil(t, out.Match.WinnerID)
	assert.True(t, out.Match.Draw())
}

func TestRoundRobin_StandingsByPoints(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatRoundRobin, roster, models.GenerateConfig{})

	champion := playOut(t, s, roster)
	require.NotNil(t, champion)
	assert.Equal(t, 1, *champion)

	entries := Standings(s, roster)
	require.Len(t, entries, 4)
	for i, want := range []int{1, 2, 3, 4} {
		assert.Equal(t, want, entries[i].ParticipantID)
		assert.Equal(t, i+1, entries[i].Rank)
	}
	assert.Equal(t, 6, entries[0].Points)
	assert.Equal(t, 3, entries[0].Wins)
	assert.Equal(t, 0, entries[3].Points)
	assert.Equal(t, 3, entries[3].Losses)
}

func TestRoundRobin_HeadToHeadBreaksTwoWayTie(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatRoundRobin, roster, models.GenerateConfig{})

	// 1 and 2 finish on equal points and difference; 2 won the mutual
	// match and must rank above the better seed.
	reportPair(t, s, roster, 1, 2, 2)
	reportPair(t, s, roster, 1, 3, 1)
	reportPair(t, s, roster, 1, 4, 1)
	reportPair(t, s, roster, 2, 3, 2)
	reportPair(t, s, roster, 2, 4, 4)
	reportPair(t, s, roster, 3, 4, 3)

	entries := Standings(s, roster)
	require.Len(t, entries, 4)
	assert.Equal(t, 2, entries[0].ParticipantID)
	assert.Equal(t, 1, entries[1].ParticipantID)
}

func TestRoundRobin_StandingsBeforeAnyResult(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatRoundRobin, roster, models.GenerateConfig{})

	entries := Standings(s, roster)
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.Zero(t, e.Points)
		assert.Zero(t, e.Wins)
	}
	// Scoreless field falls back to seed order.
	assert.Equal(t, 1, entries[0].ParticipantID)
}
