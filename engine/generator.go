package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/bracketforge/tournament-engine/models"
)

// GenerateParams carries everything a structure generator needs. The
// roster is mutated in one way only: Generate assigns each participant
// its Placement slot.
type GenerateParams struct {
	TournamentID int
	Roster       []*models.Participant
	Config       models.GenerateConfig
}

// Generator builds the initial competition structure for one format.
type Generator interface {
	Kind() models.FormatKind
	MinParticipants() int
	Generate(params GenerateParams) (*models.Structure, error)
}

var generators = map[models.FormatKind]Generator{}

func register(g Generator) {
	if _, dup := generators[g.Kind()]; dup {
		panic(fmt.Sprintf("engine: duplicate generator for format %q", g.Kind()))
	}
	generators[g.Kind()] = g
}

func init() {
	register(&singleEliminationGenerator{})
	register(&doubleEliminationGenerator{})
	register(&tripleEliminationGenerator{})
	register(&consolationGenerator{})
	register(&roundRobinGenerator{})
	register(&swissGenerator{})
	register(&poolPlayGenerator{})
	register(&threeGameGuaranteeGenerator{})
	register(&compassDrawGenerator{})
	register(&ladderGenerator{})
	register(&pyramidGenerator{})
	register(&battleRoyaleGenerator{})
	register(&scoresheetGenerator{kind: models.FormatLeaderboard})
	register(&scoresheetGenerator{kind: models.FormatMultiEvent})
	register(&scoresheetGenerator{kind: models.FormatTimeTrial})
	register(&scoresheetGenerator{kind: models.FormatSkillsCompetition})
}

// Generate validates the roster against the format minimum and
// dispatches to the registered generator. It is a pure function of its
// inputs: identical roster, config and shuffle seed always produce an
// identical structure.
func Generate(format models.FormatKind, params GenerateParams) (*models.Structure, error) {
	g, ok := generators[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormatUnknown, format)
	}
	if n := len(params.Roster); n < g.MinParticipants() {
		return nil, fmt.Errorf("%w: format %s needs at least %d participants, got %d",
			ErrInvalidRosterSize, format, g.MinParticipants(), n)
	}
	params.Config = params.Config.Normalize()
	placeRoster(params.Roster, params.Config.ShuffleSeed)
	return g.Generate(params)
}

// placeRoster fixes the placement order: seeded participants first in
// seed order, unseeded participants after them in a reproducible
// shuffle driven by the caller-supplied seed value.
func placeRoster(roster []*models.Participant, shuffleSeed int64) {
	seeded := make([]*models.Participant, 0, len(roster))
	unseeded := make([]*models.Participant, 0, len(roster))
	for _, p := range roster {
		if p.Seed != nil {
			seeded = append(seeded, p)
		} else {
			unseeded = append(unseeded, p)
		}
	}
	sort.SliceStable(seeded, func(i, j int) bool { return *seeded[i].Seed < *seeded[j].Seed })

	rng := rand.New(rand.NewSource(shuffleSeed))
	rng.Shuffle(len(unseeded), func(i, j int) {
		unseeded[i], unseeded[j] = unseeded[j], unseeded[i]
	})

	placement := 0
	for _, p := range append(seeded, unseeded...) {
		p.Placement = placement
		placement++
	}
}

// byPlacement returns the roster ordered by placement slot.
func byPlacement(roster []*models.Participant) []*models.Participant {
	ordered := make([]*models.Participant, len(roster))
	copy(ordered, roster)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Placement < ordered[j].Placement })
	return ordered
}
