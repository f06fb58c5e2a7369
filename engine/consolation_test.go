package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketforge/tournament-engine/models"
)

func TestConsolation_FirstRoundLosersGetSecondDraw(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatConsolation, roster, models.GenerateConfig{})

	// Main draw of 7 plus a 4-entrant consolation draw of 3.
	assert.Len(t, sectionMatches(s, models.SectionMain), 7)
	assert.Len(t, sectionMatches(s, models.SectionConsolation), 3)

	champion := playOut(t, s, roster)
	require.NotNil(t, champion)
	assert.Equal(t, 1, *champion)

	// The round 1 losers all resurface in the consolation draw.
	for _, id := range []int{5, 6, 7, 8} {
		found := false
		for _, m := range sectionMatches(s, models.SectionConsolation) {
			if m.HasParticipant(id) {
				found = true
			}
		}
		assert.True(t, found, "round 1 loser %d missing from consolation", id)
	}
}

func TestThreeGameGuarantee_EveryoneRunsThreeMatches(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatThreeGameGuarantee, roster, models.GenerateConfig{})

	champion := playOut(t, s, roster)
	require.NotNil(t, champion)
	drainOpen(t, s, roster)

	// A loss in either of the first two main rounds buys more bracket:
	// opening losers run consolation then classification, second-round
	// losers drop into consolation round 2. Nobody leaves before their
	// third match.
	appearances := map[int]int{}
	for _, m := range s.Matches {
		if m.Status == models.MatchStatusBye {
			continue
		}
		if m.ParticipantA != nil {
			appearances[*m.ParticipantA]++
		}
		if m.ParticipantB != nil {
			appearances[*m.ParticipantB]++
		}
	}
	for _, p := range roster {
		assert.GreaterOrEqual(t, appearances[p.ID], 3, "participant %d played fewer than 3 matches", p.ID)
	}
	assert.NotEmpty(t, sectionMatches(s, models.SectionClassification))
}

func TestThreeGameGuarantee_SecondRoundLossDropsToConsolation(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatThreeGameGuarantee, roster, models.GenerateConfig{})

	for _, m := range sectionMatches(s, models.SectionMain) {
		if m.Round != 2 {
			continue
		}
		require.NotNil(t, m.LoserMatchID)
		target := s.MatchByID(*m.LoserMatchID)
		assert.Equal(t, models.SectionConsolation, target.Section)
		assert.Equal(t, 2, target.Round)
	}
}

func TestCompassDraw_FourDirections(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatCompassDraw, roster, models.GenerateConfig{})

	assert.Len(t, sectionMatches(s, models.SectionEast), 7)
	assert.Len(t, sectionMatches(s, models.SectionWest), 3)
	assert.Len(t, sectionMatches(s, models.SectionNorth), 1)
	assert.Len(t, sectionMatches(s, models.SectionSouth), 1)

	champion := playOut(t, s, roster)
	require.NotNil(t, champion)
	assert.Equal(t, 1, *champion)
	drainOpen(t, s, roster)

	// The East final decides; winning West or North does not.
	for _, m := range sectionMatches(s, models.SectionWest) {
		assert.NotNil(t, m.WinnerID)
		assert.NotEqual(t, *champion, *m.WinnerID)
	}
}

func TestCompassDraw_SecondRoundEastLossGoesNorth(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatCompassDraw, roster, models.GenerateConfig{})

	for _, m := range sectionMatches(s, models.SectionEast) {
		if m.Round != 2 {
			continue
		}
		require.NotNil(t, m.LoserMatchID)
		target := s.MatchByID(*m.LoserMatchID)
		assert.Equal(t, models.SectionNorth, target.Section)
	}
}
