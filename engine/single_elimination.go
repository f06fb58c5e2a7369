package engine

import "github.com/bracketforge/tournament-engine/models"

// Single elimination: ceil(log2(N)) rounds over the next power-of-two
// bracket, byes granted to the highest seeds, 1-vs-N seeded placement.
type singleEliminationGenerator struct{}

func (g *singleEliminationGenerator) Kind() models.FormatKind { return models.FormatSingleElimination }
func (g *singleEliminationGenerator) MinParticipants() int    { return 2 }

func (g *singleEliminationGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	b := newBuilder(params.TournamentID, g.Kind(), params.Config)
	b.buildMainTree(entrantSlots(params.Roster), models.SectionMain)
	return b.s, nil
}
