package engine

import (
	"fmt"

	"github.com/bracketforge/tournament-engine/models"
)

// Pool play + bracket: the roster is split into pools no more than one
// participant apart in size via snake seeding, each pool plays a round
// robin, and once every pool match is done the advancement engine
// spawns a single-elimination playoff over the top finishers, seeded by
// pool finish.
type poolPlayGenerator struct{}

func (g *poolPlayGenerator) Kind() models.FormatKind { return models.FormatPoolPlayBracket }
func (g *poolPlayGenerator) MinParticipants() int    { return 4 }

func (g *poolPlayGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	cfg := params.Config
	n := len(params.Roster)
	if cfg.PoolCount < 1 || cfg.PoolCount*2 > n {
		return nil, fmt.Errorf("%w: %d pools cannot hold %d participants at two or more each",
			ErrUnsupportedConfiguration, cfg.PoolCount, n)
	}
	if cfg.AdvancePerPool < 1 || cfg.AdvancePerPool > n/cfg.PoolCount {
		return nil, fmt.Errorf("%w: cannot advance %d per pool of at most %d",
			ErrUnsupportedConfiguration, cfg.AdvancePerPool, n/cfg.PoolCount)
	}

	b := newBuilder(params.TournamentID, g.Kind(), cfg)
	for i, pool := range splitPools(params.Roster, cfg.PoolCount) {
		ids := make([]*int, 0, len(pool))
		for _, p := range pool {
			id := p.ID
			ids = append(ids, &id)
		}
		scheduleRoundRobin(b, ids, poolSection(i), 0)
	}
	return b.s, nil
}

func poolSection(i int) string { return fmt.Sprintf("pool-%d", i+1) }

// splitPools deals the placed roster into pools snake-style (1..k then
// k..1), keeping pool strengths balanced and sizes within one.
func splitPools(roster []*models.Participant, k int) [][]*models.Participant {
	pools := make([][]*models.Participant, k)
	idx, step := 0, 1
	for _, p := range byPlacement(roster) {
		pools[idx] = append(pools[idx], p)
		next := idx + step
		if next == k || next == -1 {
			step = -step
		} else {
			idx = next
		}
	}
	return pools
}

// spawnPlayoffs builds the playoff bracket from final pool standings.
// Seeding is finish-major: all pool winners first, then all runners-up,
// and so on. The mirrored bracket placement then sends each winner
// against a runner-up from a different pool.
func spawnPlayoffs(s *models.Structure, roster []*models.Participant) []*models.Match {
	cfg := s.Config
	rosterByID := make(map[int]*models.Participant, len(roster))
	for _, p := range roster {
		rosterByID[p.ID] = p
	}

	var qualifiers []*models.Participant
	for finish := 0; finish < cfg.AdvancePerPool; finish++ {
		for pool := 0; pool < cfg.PoolCount; pool++ {
			ranked := scheduleStandings(s, roster, poolSection(pool))
			if finish < len(ranked) {
				qualifiers = append(qualifiers, rosterByID[ranked[finish].ParticipantID])
			}
		}
	}

	// Re-seed by playoff position, leaving original placements intact.
	seeded := make([]*models.Participant, len(qualifiers))
	for i, p := range qualifiers {
		clone := *p
		clone.Placement = i
		seeded[i] = &clone
	}

	b := continueBuilder(s)
	before := len(s.Matches)
	b.buildMainTree(entrantSlots(seeded), models.SectionPlayoffs)
	return s.Matches[before:]
}
