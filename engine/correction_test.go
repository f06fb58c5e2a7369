package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketforge/tournament-engine/models"
)

func TestCorrection_FlipReopensDownstream(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	// Seeded round 1 is (1 v 4) and (2 v 3); play the whole bracket.
	m1, m2 := s.Matches[0], s.Matches[1]
	final := s.Matches[2]
	mustReport(t, s, roster, m1.ID, 2, 1)
	mustReport(t, s, roster, m2.ID, 2, 1)
	out := mustReport(t, s, roster, final.ID, 2, 1)
	require.NotNil(t, out.ChampionID)
	require.Equal(t, 1, *out.ChampionID)

	seqBefore := m1.CompletedSeq
	require.NotZero(t, seqBefore)

	// Flipping the opening match hands the final to participant 4 and
	// discards the final's result.
	out = mustCorrect(t, s, roster, m1.ID, 1, 2)
	assert.Nil(t, out.ChampionID)
	assert.Equal(t, 4, *m1.WinnerID)
	assert.Equal(t, seqBefore, m1.CompletedSeq)

	assert.Equal(t, models.MatchStatusReady, final.Status)
	assert.Equal(t, 4, *final.ParticipantA)
	assert.Equal(t, 2, *final.ParticipantB)
	assert.Nil(t, final.WinnerID)
	assert.Nil(t, final.ScoreA)
	assert.Zero(t, final.CompletedSeq)
}

func TestCorrection_ScoreOnlyKeepsDownstream(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	m1, m2, final := s.Matches[0], s.Matches[1], s.Matches[2]
	mustReport(t, s, roster, m1.ID, 2, 1)
	mustReport(t, s, roster, m2.ID, 2, 1)
	mustReport(t, s, roster, final.ID, 2, 1)

	// Same winner, fixed score: nothing downstream moves.
	out := mustCorrect(t, s, roster, m2.ID, 5, 0)
	require.NotNil(t, out.ChampionID)
	assert.Equal(t, 1, *out.ChampionID)
	assert.Equal(t, 5, *m2.ScoreA)
	assert.Equal(t, models.MatchStatusCompleted, final.Status)
	assert.Equal(t, 1, *final.WinnerID)
}

func TestCorrection_CascadeClearsDeeperRounds(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	champion := playOut(t, s, roster)
	require.NotNil(t, champion)
	require.Equal(t, 1, *champion)

	// Round 1 opens with (1 v 8); its semifinal and the final both hang
	// off that result.
	m1 := s.Matches[0]
	require.Equal(t, 1, *m1.ParticipantA)
	require.Equal(t, 8, *m1.ParticipantB)
	semi := s.MatchByID(*m1.NextMatchID)
	final := s.MatchByID(*semi.NextMatchID)

	out := mustCorrect(t, s, roster, m1.ID, 0, 2)
	assert.Nil(t, out.ChampionID)

	// The semifinal reopens with the new winner seated.
	assert.Equal(t, models.MatchStatusReady, semi.Status)
	assert.Equal(t, 8, *semi.ParticipantA)
	assert.Nil(t, semi.WinnerID)

	// The final loses its first slot entirely and waits again.
	assert.Equal(t, models.MatchStatusPending, final.Status)
	assert.Nil(t, final.ParticipantA)
	assert.NotNil(t, final.ParticipantB)
	assert.Nil(t, final.WinnerID)

	// The untouched half of the draw keeps its results.
	other := s.Matches[2]
	assert.Equal(t, models.MatchStatusCompleted, other.Status)
}

func TestCorrection_UncompletedMatchNotCorrectable(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	_, err := ReportResult(s, roster, ReportInput{MatchID: s.Matches[0].ID, ScoreA: 2, ScoreB: 1, Correction: true})
	require.NoError(t, err)
	// A correction against an open match behaves as a first report.
	assert.Equal(t, models.MatchStatusCompleted, s.Matches[0].Status)
}
