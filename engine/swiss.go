package engine

import (
	"math"
	"sort"

	"github.com/bracketforge/tournament-engine/models"
)

// Swiss: round 1 pairs by seed order (1v2, 3v4, …). Every later round
// is paired by the advancement engine once the previous one completes,
// matching participants on equal or closest record under a no-repeat
// constraint; when no legal pairing exists the smallest-difference
// repeat is used and flagged on the match.
type swissGenerator struct{}

func (g *swissGenerator) Kind() models.FormatKind { return models.FormatSwiss }
func (g *swissGenerator) MinParticipants() int    { return 3 }

func (g *swissGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	b := newBuilder(params.TournamentID, g.Kind(), params.Config)
	pairSwissRound(b, params.Roster, 1)
	return b.s, nil
}

func swissTotalRounds(cfg models.GenerateConfig, n int) int {
	if cfg.SwissRounds > 0 {
		return cfg.SwissRounds
	}
	r := int(math.Ceil(math.Log2(float64(n))))
	if r < 1 {
		r = 1
	}
	return r
}

type swissLine struct {
	id        int
	score     int // 2 per win (byes included), 1 per draw
	buchholz  int
	placement int
	hadBye    bool
}

// swissOrder ranks the field by record: score, then buchholz (sum of
// opponents' scores), then seed placement, then id. Round 1 reduces to
// pure seed order.
func swissOrder(s *models.Structure, roster []*models.Participant) []swissLine {
	lines := make(map[int]*swissLine, len(roster))
	opponents := make(map[int][]int)
	for _, p := range byPlacement(roster) {
		lines[p.ID] = &swissLine{id: p.ID, placement: p.Placement}
	}
	for _, m := range s.Matches {
		if !m.Finished() {
			continue
		}
		if m.Status == models.MatchStatusBye {
			if m.ParticipantA != nil {
				lines[*m.ParticipantA].score += 2
				lines[*m.ParticipantA].hadBye = true
			}
			continue
		}
		if m.ParticipantA == nil || m.ParticipantB == nil {
			continue
		}
		a, c := *m.ParticipantA, *m.ParticipantB
		opponents[a] = append(opponents[a], c)
		opponents[c] = append(opponents[c], a)
		switch {
		case m.WinnerID == nil:
			lines[a].score++
			lines[c].score++
		case *m.WinnerID == a:
			lines[a].score += 2
		default:
			lines[c].score += 2
		}
	}
	for id, opps := range opponents {
		for _, o := range opps {
			lines[id].buchholz += lines[o].score
		}
	}

	ordered := make([]swissLine, 0, len(lines))
	for _, l := range lines {
		ordered = append(ordered, *l)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, c := ordered[i], ordered[j]
		if a.score != c.score {
			return a.score > c.score
		}
		if a.buchholz != c.buchholz {
			return a.buchholz > c.buchholz
		}
		if a.placement != c.placement {
			return a.placement < c.placement
		}
		return a.id < c.id
	})
	return ordered
}

func playedPairs(s *models.Structure) map[[2]int]bool {
	pairs := make(map[[2]int]bool)
	for _, m := range s.Matches {
		if m.ParticipantA == nil || m.ParticipantB == nil {
			continue
		}
		pairs[pairKey(*m.ParticipantA, *m.ParticipantB)] = true
	}
	return pairs
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// pairSwissRound appends the matches of one swiss round to the arena.
// With an odd field the lowest-ranked participant without a previous
// bye sits out with a bye win.
func pairSwissRound(b *builder, roster []*models.Participant, round int) []*models.Match {
	ordered := swissOrder(b.s, roster)
	played := playedPairs(b.s)

	created := make([]*models.Match, 0, len(ordered)/2+1)
	var byeMatch *models.Match
	if len(ordered)%2 == 1 {
		byeIdx := len(ordered) - 1
		for i := len(ordered) - 1; i >= 0; i-- {
			if !ordered[i].hadBye {
				byeIdx = i
				break
			}
		}
		bye := ordered[byeIdx]
		ordered = append(ordered[:byeIdx], ordered[byeIdx+1:]...)
		id := bye.id
		byeMatch = b.add(&models.Match{
			Round: round, Section: models.SectionMain,
			ParticipantA: &id,
			Status:       models.MatchStatusBye,
			WinnerID:     &id,
		})
	}

	ids := make([]int, len(ordered))
	for i, l := range ordered {
		ids[i] = l.id
	}
	pairs, legal := pairNoRepeats(ids, played)
	if !legal {
		// No legal pairing exists: fall back to closest-record pairs
		// and flag the forced repeats.
		pairs = pairs[:0]
		for i := 0; i+1 < len(ids); i += 2 {
			pairs = append(pairs, [2]int{ids[i], ids[i+1]})
		}
	}

	for i, pair := range pairs {
		a, c := pair[0], pair[1]
		created = append(created, b.add(&models.Match{
			Round: round, SlotIndex: i + 1, Section: models.SectionMain,
			ParticipantA: &a, ParticipantB: &c,
			Status:        models.MatchStatusReady,
			RepeatPairing: played[pairKey(a, c)],
		}))
	}
	if byeMatch != nil {
		byeMatch.SlotIndex = len(pairs) + 1
		created = append(created, byeMatch)
	}
	return created
}

// pairNoRepeats pairs an ordered field so that nobody meets a previous
// opponent, preferring the closest-ranked legal partner. Backtracking
// keeps it total: it fails only when no legal pairing exists at all.
func pairNoRepeats(ids []int, played map[[2]int]bool) ([][2]int, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	a := ids[0]
	for i := 1; i < len(ids); i++ {
		c := ids[i]
		if played[pairKey(a, c)] {
			continue
		}
		rest := make([]int, 0, len(ids)-2)
		rest = append(rest, ids[1:i]...)
		rest = append(rest, ids[i+1:]...)
		tail, ok := pairNoRepeats(rest, played)
		if ok {
			return append([][2]int{{a, c}}, tail...), true
		}
	}
	return nil, false
}
