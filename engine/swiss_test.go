package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketforge/tournament-engine/models"
)

func TestSwiss_RoundOnePairsBySeed(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatSwiss, roster, models.GenerateConfig{})

	// Only round 1 exists at generation time.
	require.Len(t, s.Matches, 4)
	assert.Equal(t, 1, s.MaxRound(models.SectionMain))

	pairs := map[[2]int]bool{}
	for _, m := range s.Matches {
		pairs[pairKey(*m.ParticipantA, *m.ParticipantB)] = true
	}
	assert.True(t, pairs[[2]int{1, 2}])
	assert.True(t, pairs[[2]int{3, 4}])
	assert.True(t, pairs[[2]int{5, 6}])
	assert.True(t, pairs[[2]int{7, 8}])
}

func TestSwiss_NextRoundSpawnsOnCompletion(t *testing.T) {
	roster := seededRoster(5)
	s := mustGenerate(t, models.FormatSwiss, roster, models.GenerateConfig{})

	// Odd field: two pairs plus a bye for the lowest seed.
	require.Len(t, s.Matches, 3)
	bye := s.Matches[0]
	require.Equal(t, models.MatchStatusBye, bye.Status)
	assert.Equal(t, 5, *bye.ParticipantA)

	ready := readyMatches(s)
	require.Len(t, ready, 2)
	mustReport(t, s, roster, ready[0].ID, 2, 1)
	out := mustReport(t, s, roster, ready[1].ID, 2, 1)

	// Closing the round pairs the next one: winners meet winners, the
	// bye rotates to someone who has not had one.
	require.Len(t, out.Created, 3)
	var nextBye *models.Match
	for _, m := range out.Created {
		assert.Equal(t, 2, m.Round)
		assert.False(t, m.RepeatPairing)
		if m.Status == models.MatchStatusBye {
			nextBye = m
		}
	}
	require.NotNil(t, nextBye)
	assert.Equal(t, 4, *nextBye.ParticipantA)
}

func TestSwiss_RunsDefaultRoundCount(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatSwiss, roster, models.GenerateConfig{})

	champion := playOut(t, s, roster)
	require.NotNil(t, champion)
	assert.Equal(t, 1, *champion)

	// ceil(log2(8)) rounds, no fourth round spawned.
	assert.Equal(t, 3, s.MaxRound(models.SectionMain))

	// Nobody met twice unless the pairing was flagged as forced.
	seen := map[[2]int]bool{}
	for _, m := range s.Matches {
		if m.ParticipantA == nil || m.ParticipantB == nil {
			continue
		}
		key := pairKey(*m.ParticipantA, *m.ParticipantB)
		if seen[key] {
			assert.True(t, m.RepeatPairing, "unflagged rematch %v", key)
		}
		seen[key] = true
	}
}

func TestSwiss_ConfiguredRoundCount(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatSwiss, roster, models.GenerateConfig{SwissRounds: 2})

	champion := playOut(t, s, roster)
	require.NotNil(t, champion)
	assert.Equal(t, 2, s.MaxRound(models.SectionMain))
}

func TestSwiss_CorrectionRepairsUnplayedRound(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSwiss, roster, models.GenerateConfig{})

	m1, m2 := s.Matches[0], s.Matches[1]
	mustReport(t, s, roster, m1.ID, 2, 1)
	out := mustReport(t, s, roster, m2.ID, 2, 1)
	require.Len(t, out.Created, 2)
	oldRound2 := []int{out.Created[0].ID, out.Created[1].ID}

	// Round 2 is paired but unplayed, so flipping a round 1 result
	// discards it and pairs the round again from the corrected record.
	out = mustCorrect(t, s, roster, m1.ID, 0, 2)
	assert.ElementsMatch(t, oldRound2, out.RemovedIDs)
	require.Len(t, out.Created, 2)
	for _, m := range out.Created {
		assert.Equal(t, 2, m.Round)
	}

	// The corrected winners now meet each other.
	found := false
	for _, m := range out.Created {
		if m.HasParticipant(2) && m.HasParticipant(3) {
			found = true
		}
	}
	assert.True(t, found, "corrected round 2 does not pair the two winners")
}

func TestSwiss_CorrectionBlockedByPlayedLaterRound(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSwiss, roster, models.GenerateConfig{})

	m1, m2 := s.Matches[0], s.Matches[1]
	mustReport(t, s, roster, m1.ID, 2, 1)
	out := mustReport(t, s, roster, m2.ID, 2, 1)
	require.Len(t, out.Created, 2)
	mustReport(t, s, roster, out.Created[0].ID, 2, 1)

	_, err := ReportResult(s, roster, ReportInput{MatchID: m1.ID, ScoreA: 0, ScoreB: 2, Correction: true})
	assert.ErrorIs(t, err, ErrCorrectionNotPossible)
}

func TestSwiss_ScoreOnlyCorrectionAllowedAfterLaterRound(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSwiss, roster, models.GenerateConfig{})

	m1, m2 := s.Matches[0], s.Matches[1]
	mustReport(t, s, roster, m1.ID, 2, 1)
	out := mustReport(t, s, roster, m2.ID, 2, 1)
	require.Len(t, out.Created, 2)
	round2 := out.Created[0]
	mustReport(t, s, roster, round2.ID, 2, 1)

	// Pairing reads only the win/loss record, so fixing a typo'd score
	// without changing the winner leaves the played round alone.
	out = mustCorrect(t, s, roster, m1.ID, 5, 1)
	assert.Empty(t, out.RemovedIDs)
	assert.Empty(t, out.Created)
	assert.Equal(t, 5, *m1.ScoreA)
	assert.Equal(t, models.MatchStatusCompleted, round2.Status)
}
