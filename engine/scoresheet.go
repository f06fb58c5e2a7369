package engine

import "github.com/bracketforge/tournament-engine/models"

// Score-driven formats (leaderboard, multi-event, time trial, skills
// competition) have no head-to-head matches. The generator emits one
// solo score entry per participant per configured event; reporting a
// result records the primary value in score A and the configured
// secondary tie-break metric in score B. Ranking is total score
// descending, or ascending elapsed time for time trials.
type scoresheetGenerator struct {
	kind models.FormatKind
}

func (g *scoresheetGenerator) Kind() models.FormatKind { return g.kind }
func (g *scoresheetGenerator) MinParticipants() int    { return 2 }

func (g *scoresheetGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	b := newBuilder(params.TournamentID, g.kind, params.Config)
	for event := range params.Config.Events {
		for i, p := range byPlacement(params.Roster) {
			id := p.ID
			b.add(&models.Match{
				Round: event + 1, SlotIndex: i + 1, Section: models.SectionScoresheet,
				ParticipantA: &id,
				Solo:         true,
				Status:       models.MatchStatusReady,
			})
		}
	}
	return b.s, nil
}
