package engine

import (
	"fmt"

	"github.com/bracketforge/tournament-engine/models"
)

// Double elimination: a winners bracket identical to single elimination
// plus a losers bracket fed by the standard drop pattern. Round 1
// winners-bracket losers fill losers round 1; losers of winners round k
// (k >= 2) enter losers round 2(k-1) against the survivors of the
// previous losers round, with the dropping group reversed so early
// rematches are pushed as late as possible. The winners and losers
// champions meet in a grand final; if the losers champion takes it, the
// advancement engine spawns the reset final.
type doubleEliminationGenerator struct{}

func (g *doubleEliminationGenerator) Kind() models.FormatKind { return models.FormatDoubleElimination }
func (g *doubleEliminationGenerator) MinParticipants() int    { return 2 }

func (g *doubleEliminationGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	if params.Config.DropPolicy != models.DropPolicyStandard {
		return nil, fmt.Errorf("%w: unknown drop policy %q", ErrUnsupportedConfiguration, params.Config.DropPolicy)
	}
	b := newBuilder(params.TournamentID, g.Kind(), params.Config)
	winnersRef, losersRef := buildDoubleElim(b, params.Roster)

	gf := b.add(&models.Match{Round: 1, SlotIndex: 1, Section: models.SectionFinal})
	link(winnersRef, gf, 1)
	link(losersRef, gf, 2)
	return b.s, nil
}

// buildDoubleElim builds the winners and losers brackets and returns
// the feeders for each champion.
func buildDoubleElim(b *builder, roster []*models.Participant) (winnersRef, losersRef srcRef) {
	wrounds, winnersRef := b.buildMainTree(entrantSlots(roster), models.SectionWinners)
	k := len(wrounds)

	if k == 1 {
		// Two entrants: the loser of the only winners match is the
		// losers champion outright.
		return winnersRef, loserRefs(wrounds[0])[0]
	}

	lr := 1
	cur := b.pairRound(loserRefs(wrounds[0]), models.SectionLosers, lr)
	for i := 1; i < k; i++ {
		dropped := reverseRefs(loserRefs(wrounds[i]))
		lr++
		cur = b.pairRound(interleaveRefs(cur, dropped), models.SectionLosers, lr)
		if len(cur) > 1 {
			lr++
			cur = b.pairRound(cur, models.SectionLosers, lr)
		}
	}
	return winnersRef, cur[0]
}

// Triple elimination layers a last-chance tier over double elimination:
// a second loss drops a participant into the last-chance draw, and only
// a loss there removes them. The finals ladder is fixed at three
// matches: grand final, decider (grand final loser against the
// last-chance champion), and the championship between their winners.
type tripleEliminationGenerator struct{}

func (g *tripleEliminationGenerator) Kind() models.FormatKind { return models.FormatTripleElimination }
func (g *tripleEliminationGenerator) MinParticipants() int    { return 4 }

func (g *tripleEliminationGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	if params.Config.DropPolicy != models.DropPolicyStandard {
		return nil, fmt.Errorf("%w: unknown drop policy %q", ErrUnsupportedConfiguration, params.Config.DropPolicy)
	}
	b := newBuilder(params.TournamentID, g.Kind(), params.Config)
	winnersRef, losersRef := buildDoubleElim(b, params.Roster)

	var lastChanceFeeders []srcRef
	for _, m := range b.s.Matches {
		if m.Section == models.SectionLosers {
			lastChanceFeeders = append(lastChanceFeeders, srcRef{m: m, loser: true})
		}
	}
	lastChanceRef := b.buildDependentTree(lastChanceFeeders, models.SectionLastChance)

	gf := b.add(&models.Match{Round: 1, SlotIndex: 1, Section: models.SectionFinal})
	link(winnersRef, gf, 1)
	link(losersRef, gf, 2)

	decider := b.add(&models.Match{Round: 2, SlotIndex: 1, Section: models.SectionFinal})
	link(srcRef{m: gf, loser: true}, decider, 1)
	link(lastChanceRef, decider, 2)

	championship := b.add(&models.Match{Round: 3, SlotIndex: 1, Section: models.SectionFinal})
	link(srcRef{m: gf}, championship, 1)
	link(srcRef{m: decider}, championship, 2)
	return b.s, nil
}
