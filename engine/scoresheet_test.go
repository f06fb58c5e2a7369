package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketforge/tournament-engine/models"
)

func soloEntry(t *testing.T, s *models.Structure, round, participantID int) *models.Match {
	t.Helper()
	for _, m := range s.Matches {
		if m.Round == round && m.ParticipantA != nil && *m.ParticipantA == participantID {
			return m
		}
	}
	t.Fatalf("no entry for participant %d in round %d", participantID, round)
	return nil
}

func TestLeaderboard_HighestTotalWins(t *testing.T) {
	roster := seededRoster(3)
	s := mustGenerate(t, models.FormatLeaderboard, roster, models.GenerateConfig{})

	// One entry per participant under the default single event.
	require.Len(t, s.Matches, 3)

	mustReport(t, s, roster, soloEntry(t, s, 1, 1).ID, 50, 0)
	mustReport(t, s, roster, soloEntry(t, s, 1, 2).ID, 90, 0)
	out := mustReport(t, s, roster, soloEntry(t, s, 1, 3).ID, 70, 0)

	require.NotNil(t, out.ChampionID)
	assert.Equal(t, 2, *out.ChampionID)

	entries := Standings(s, roster)
	for i, want := range []int{2, 3, 1} {
		assert.Equal(t, want, entries[i].ParticipantID)
	}
	assert.Equal(t, 90, entries[0].Score)
}

func TestTimeTrial_LowestTotalWins(t *testing.T) {
	roster := seededRoster(3)
	s := mustGenerate(t, models.FormatTimeTrial, roster, models.GenerateConfig{})

	mustReport(t, s, roster, soloEntry(t, s, 1, 1).ID, 83, 0)
	mustReport(t, s, roster, soloEntry(t, s, 1, 2).ID, 75, 0)
	out := mustReport(t, s, roster, soloEntry(t, s, 1, 3).ID, 91, 0)

	require.NotNil(t, out.ChampionID)
	assert.Equal(t, 2, *out.ChampionID)

	entries := Standings(s, roster)
	for i, want := range []int{2, 1, 3} {
		assert.Equal(t, want, entries[i].ParticipantID)
	}
}

func TestMultiEvent_OneEntryPerEvent(t *testing.T) {
	roster := seededRoster(3)
	s := mustGenerate(t, models.FormatMultiEvent, roster, models.GenerateConfig{
		Events: []string{"vault", "floor"},
	})

	// Each event is a round with the full field.
	require.Len(t, s.Matches, 6)
	assert.Len(t, readyMatches(s), 6)

	// Participant 3 dominates vault, 1 takes floor; totals decide.
	mustReport(t, s, roster, soloEntry(t, s, 1, 1).ID, 10, 0)
	mustReport(t, s, roster, soloEntry(t, s, 1, 2).ID, 20, 0)
	mustReport(t, s, roster, soloEntry(t, s, 1, 3).ID, 40, 0)
	mustReport(t, s, roster, soloEntry(t, s, 2, 1).ID, 35, 0)
	mustReport(t, s, roster, soloEntry(t, s, 2, 2).ID, 20, 0)
	out := mustReport(t, s, roster, soloEntry(t, s, 2, 3).ID, 15, 0)

	require.NotNil(t, out.ChampionID)
	assert.Equal(t, 3, *out.ChampionID)

	entries := Standings(s, roster)
	assert.Equal(t, 3, entries[0].ParticipantID)
	assert.Equal(t, 55, entries[0].Score)
	assert.Equal(t, 1, entries[1].ParticipantID)
	assert.Equal(t, 2, entries[2].ParticipantID)
}

func TestScoresheet_UnfinishedSheetsRankBelow(t *testing.T) {
	roster := seededRoster(3)
	s := mustGenerate(t, models.FormatSkillsCompetition, roster, models.GenerateConfig{
		Events: []string{"a", "b"},
	})

	// Participant 3 posts a huge single score but has only completed one
	// of two events; finished sheets rank above it regardless of total.
	mustReport(t, s, roster, soloEntry(t, s, 1, 1).ID, 10, 0)
	mustReport(t, s, roster, soloEntry(t, s, 2, 1).ID, 10, 0)
	mustReport(t, s, roster, soloEntry(t, s, 1, 3).ID, 500, 0)

	entries := Standings(s, roster)
	assert.Equal(t, 1, entries[0].ParticipantID)
	assert.Equal(t, 3, entries[1].ParticipantID)
	assert.Equal(t, 2, entries[2].ParticipantID)

	// No champion until every entry is in.
	assert.Nil(t, decideChampion(s, roster))
}

func TestScoresheet_SecondaryMetricBreaksTies(t *testing.T) {
	roster := seededRoster(2)
	s := mustGenerate(t, models.FormatSkillsCompetition, roster, models.GenerateConfig{
		SecondaryMetric: "style",
	})

	mustReport(t, s, roster, soloEntry(t, s, 1, 1).ID, 50, 7)
	out := mustReport(t, s, roster, soloEntry(t, s, 1, 2).ID, 50, 9)

	require.NotNil(t, out.ChampionID)
	assert.Equal(t, 2, *out.ChampionID)

	entries := Standings(s, roster)
	assert.Equal(t, 2, entries[0].ParticipantID)
	assert.Equal(t, 9, entries[0].Secondary)
}
