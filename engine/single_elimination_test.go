package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bracketforge/tournament-engine/models"
)

func TestSingleElimination_EightParticipants(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	// Full bracket: 4 quarterfinals, 2 semifinals, 1 final.
	require.Len(t, s.Matches, 7)
	assert.Len(t, readyMatches(s), 4)

	// Seeded placement: 1 meets 8, 2 meets 7.
	first := s.Matches[0]
	assert.Equal(t, 1, *first.ParticipantA)
	assert.Equal(t, 8, *first.ParticipantB)

	for _, m := range readyMatches(s) {
		mustReport(t, s, roster, m.ID, 2, 1)
	}
	// Finishing round 1 makes exactly the two semifinals playable.
	ready := readyMatches(s)
	require.Len(t, ready, 2)
	for _, m := range ready {
		assert.Equal(t, 2, m.Round)
	}
}

func TestSingleElimination_ChampionNeverLost(t *testing.T) {
	roster := seededRoster(8)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	champion := playOut(t, s, roster)
	require.NotNil(t, champion)

	for _, m := range s.Matches {
		if loser := m.LoserID(); loser != nil {
			assert.NotEqual(t, *champion, *loser, "champion lost match %d", m.ID)
		}
	}
}

func TestSingleElimination_ByesGoToTopSeeds(t *testing.T) {
	roster := seededRoster(6)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	var byes []int
	for _, m := range s.Matches {
		if m.Status == models.MatchStatusBye {
			require.NotNil(t, m.ParticipantA)
			require.NotNil(t, m.WinnerID)
			byes = append(byes, *m.ParticipantA)
		}
	}
	assert.ElementsMatch(t, []int{1, 2}, byes)

	// One playable match per entrant pair minus byes.
	assert.Len(t, nonByeMatches(s), 5)

	// Bye winners are already waiting in round 2.
	for _, m := range sectionMatches(s, models.SectionMain) {
		if m.Round != 2 {
			continue
		}
		if m.ParticipantA != nil {
			assert.Contains(t, []int{1, 2}, *m.ParticipantA)
		}
	}
}

func TestSingleElimination_TwoParticipants(t *testing.T) {
	roster := seededRoster(2)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	require.Len(t, s.Matches, 1)
	out := mustReport(t, s, roster, s.Matches[0].ID, 3, 1)
	require.NotNil(t, out.ChampionID)
	assert.Equal(t, 1, *out.ChampionID)
}

func TestSingleElimination_RejectsUndersizedRoster(t *testing.T) {
	_, err := Generate(models.FormatSingleElimination, GenerateParams{
		TournamentID: 1, Roster: seededRoster(1),
	})
	assert.ErrorIs(t, err, ErrInvalidRosterSize)
}

func TestGenerate_UnknownFormat(t *testing.T) {
	_, err := Generate(models.FormatKind("bingo"), GenerateParams{
		TournamentID: 1, Roster: seededRoster(4),
	})
	assert.ErrorIs(t, err, ErrFormatUnknown)
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := models.GenerateConfig{ShuffleSeed: 42}
	makeRoster := func() []*models.Participant {
		roster := make([]*models.Participant, 0, 8)
		for i := 1; i <= 8; i++ {
			roster = append(roster, &models.Participant{ID: i, DisplayName: "anon"})
		}
		return roster
	}

	a := mustGenerate(t, models.FormatSingleElimination, makeRoster(), cfg)
	b := mustGenerate(t, models.FormatSingleElimination, makeRoster(), cfg)

	require.Equal(t, len(a.Matches), len(b.Matches))
	for i := range a.Matches {
		assert.Equal(t, a.Matches[i].ParticipantA, b.Matches[i].ParticipantA, "match %d slot A", i)
		assert.Equal(t, a.Matches[i].ParticipantB, b.Matches[i].ParticipantB, "match %d slot B", i)
	}
}

func TestReportResult_MatchNotReady(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	final := sectionMatches(s, models.SectionMain)[2]
	require.Equal(t, models.MatchStatusPending, final.Status)

	_, err := ReportResult(s, roster, ReportInput{MatchID: final.ID, ScoreA: 1, ScoreB: 0})
	assert.ErrorIs(t, err, ErrMatchNotReady)
}

func TestReportResult_IdempotentResubmission(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	id := s.Matches[0].ID
	mustReport(t, s, roster, id, 2, 1)

	out, err := ReportResult(s, roster, ReportInput{MatchID: id, ScoreA: 2, ScoreB: 1})
	require.NoError(t, err)
	assert.True(t, out.NoOp)

	_, err = ReportResult(s, roster, ReportInput{MatchID: id, ScoreA: 5, ScoreB: 0})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestReportResult_TieRejectedInBracket(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{AllowDraws: true})

	_, err := ReportResult(s, roster, ReportInput{MatchID: s.Matches[0].ID, ScoreA: 1, ScoreB: 1})
	assert.ErrorIs(t, err, ErrTieNotAllowed)
}

func TestReportResult_NegativeScore(t *testing.T) {
	roster := seededRoster(4)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	_, err := ReportResult(s, roster, ReportInput{MatchID: s.Matches[0].ID, ScoreA: -1, ScoreB: 0})
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestReportResult_ByeCannotBeReported(t *testing.T) {
	roster := seededRoster(6)
	s := mustGenerate(t, models.FormatSingleElimination, roster, models.GenerateConfig{})

	for _, m := range s.Matches {
		if m.Status == models.MatchStatusBye {
			_, err := ReportResult(s, roster, ReportInput{MatchID: m.ID, ScoreA: 1, ScoreB: 0})
			assert.ErrorIs(t, err, ErrAlreadyCompleted)
			return
		}
	}
	t.Fatal("no bye found")
}
