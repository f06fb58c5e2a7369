package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketforge/tournament-engine/models"
)

func TestLadder_ChallengeWinSwapsPositions(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatLadder, roster, models.GenerateConfig{})

	// Ladders start empty; matches only exist once challenged.
	require.Empty(t, s.Matches)

	m, err := CreateChallenge(s, roster, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SectionLadder, m.Section)
	assert.Equal(t, models.MatchStatusReady, m.Status)
	assert.Equal(t, 3, *m.ParticipantA)
	assert.Equal(t, 1, *m.ParticipantB)

	out := mustReport(t, s, roster, m.ID, 2, 1)
	assert.Nil(t, out.ChampionID, "ladders never decide a champion")

	entries := Standings(s, roster)
	require.Len(t, entries, 4)
	for i, want := range []int{3, 2, 1, 4} {
		assert.Equal(t, want, entries[i].ParticipantID, "rank %d", i+1)
	}
	assert.Equal(t, 1, entries[0].Wins)
}

func TestLadder_ChallengeLossKeepsOrder(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatLadder, roster, models.GenerateConfig{})

	m, err := CreateChallenge(s, roster, 2, 1)
	require.NoError(t, err)
	mustReport(t, s, roster, m.ID, 0, 2)

	entries := Standings(s, roster)
	for i, want := range []int{1, 2, 3, 4} {
		assert.Equal(t, want, entries[i].ParticipantID)
	}
}

func TestLadder_ChallengeValidation(t *testing.T) {
	roster := seededRoster(5)
	s := mustGenerate(t, models.FormatLadder, roster, models.GenerateConfig{})

	_, err := CreateChallenge(s, roster, 2, 2)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)

	// The defender must stand above the challenger.
	_, err = CreateChallenge(s, roster, 1, 3)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)

	// Default reach is two ranks.
	_, err = CreateChallenge(s, roster, 4, 1)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)

	_, err = CreateChallenge(s, roster, 9, 1)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)
}

func TestLadder_OpenChallengeBlocksAnother(t *testing.T) {
	roster := seededRoster(5)
	s := mustGenerate(t, models.FormatLadder, roster, models.GenerateConfig{})

	_, err := CreateChallenge(s, roster, 2, 1)
	require.NoError(t, err)

	// Both participants of the open match are locked.
	_, err = CreateChallenge(s, roster, 3, 1)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)
	_, err = CreateChallenge(s, roster, 2, 1)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)

	// Unrelated participants may still challenge.
	_, err = CreateChallenge(s, roster, 5, 4)
	assert.NoError(t, err)
}

func TestLadder_ConfiguredChallengeDistance(t *testing.T) {
	roster := seededRoster(5)
	s := mustGenerate(t, models.FormatLadder, roster, models.GenerateConfig{MaxChallengeDistance: 4})

	_, err := CreateChallenge(s, roster, 5, 1)
	assert.NoError(t, err)
}

func TestChallenge_RejectedOutsideChallengeFormats(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	_, err := CreateChallenge(s, roster, 3, 1)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)
}

func TestPyramid_ChallengeOneTierUpOnly(t *testing.T) {
	roster := seededRoster(6)
	s := mustGenerate(t, models.FormatPyramid, roster, models.GenerateConfig{})

	// Positions 1 / 2-3 / 4-6 form the three tiers.
	m, err := CreateChallenge(s, roster, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, models.SectionPyramid, m.Section)

	// Skipping a tier is out of reach.
	_, err = CreateChallenge(s, roster, 6, 1)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)

	// Same tier is not above.
	_, err = CreateChallenge(s, roster, 6, 5)
	assert.ErrorIs(t, err, ErrChallengeNotAllowed)

	mustReport(t, s, roster, m.ID, 2, 0)
	entries := Standings(s, roster)
	for i, want := range []int{1, 4, 3, 2, 5, 6} {
		assert.Equal(t, want, entries[i].ParticipantID, "rank %d", i+1)
	}
}

func TestLadder_ReplayFollowsCompletionOrder(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatLadder, roster, models.GenerateConfig{})

	// 2 takes 1's spot, then 3 takes 2's new top spot.
	m1, err := CreateChallenge(s, roster, 2, 1)
	require.NoError(t, err)
	mustReport(t, s, roster, m1.ID, 2, 1)

	m2, err := CreateChallenge(s, roster, 3, 2)
	require.NoError(t, err)
	mustReport(t, s, roster, m2.ID, 2, 1)

	entries := Standings(s, roster)
	for i, want := range []int{3, 1, 2, 4} {
		assert.Equal(t, want, entries[i].ParticipantID, "rank %d", i+1)
	}
}
