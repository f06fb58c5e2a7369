package engine

import "github.com/bracketforge/tournament-engine/models"

// Consolation: a single-elimination main draw plus a secondary draw
// settling lower placements between the first-round losers.
type consolationGenerator struct{}

func (g *consolationGenerator) Kind() models.FormatKind { return models.FormatConsolation }
func (g *consolationGenerator) MinParticipants() int    { return 4 }

func (g *consolationGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	b := newBuilder(params.TournamentID, g.Kind(), params.Config)
	rounds, _ := b.buildMainTree(entrantSlots(params.Roster), models.SectionMain)
	b.buildDependentTree(loserRefs(rounds[0]), models.SectionConsolation)
	return b.s, nil
}

// Three-game guarantee: main draw plus a consolation draw that absorbs
// both first- and second-round main losers, plus a classification tier
// for first-round consolation losers, so nobody is out before their
// third match. Second-round losers drop into consolation round 2
// against the survivors of consolation round 1, the same weave the
// losers bracket uses.
type threeGameGuaranteeGenerator struct{}

func (g *threeGameGuaranteeGenerator) Kind() models.FormatKind {
	return models.FormatThreeGameGuarantee
}
func (g *threeGameGuaranteeGenerator) MinParticipants() int { return 4 }

func (g *threeGameGuaranteeGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	b := newBuilder(params.TournamentID, g.Kind(), params.Config)
	rounds, _ := b.buildMainTree(entrantSlots(params.Roster), models.SectionMain)

	cur := b.pairRound(loserRefs(rounds[0]), models.SectionConsolation, 1)
	dropped := reverseRefs(loserRefs(rounds[1]))
	cur = b.pairRound(interleaveRefs(cur, dropped), models.SectionConsolation, 2)
	for round := 3; len(cur) > 1; round++ {
		cur = b.pairRound(cur, models.SectionConsolation, round)
	}
	b.buildDependentTree(loserRefs(b.roundMatches(models.SectionConsolation, 1)), models.SectionClassification)
	return b.s, nil
}

// Compass draw: the main draw is East. A first loss in East routes into
// West, a second-round East loss into North, and a first-round West
// loss into South, so every path accumulates at least three matches.
type compassDrawGenerator struct{}

func (g *compassDrawGenerator) Kind() models.FormatKind { return models.FormatCompassDraw }
func (g *compassDrawGenerator) MinParticipants() int    { return 4 }

func (g *compassDrawGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	b := newBuilder(params.TournamentID, g.Kind(), params.Config)
	rounds, _ := b.buildMainTree(entrantSlots(params.Roster), models.SectionEast)
	b.buildDependentTree(loserRefs(rounds[0]), models.SectionWest)
	if len(rounds) > 1 {
		b.buildDependentTree(loserRefs(rounds[1]), models.SectionNorth)
	}
	b.buildDependentTree(loserRefs(b.roundMatches(models.SectionWest, 1)), models.SectionSouth)
	return b.s, nil
}
