package engine

import (
	"sort"

	"github.com/bracketforge/tournament-engine/models"
)

// builder accumulates matches for one structure. Match ids are assigned
// sequentially and are scoped to the tournament: the arena is a flat
// slice addressed by id, and downstream links are id+slot pairs.
type builder struct {
	s      *models.Structure
	nextID int
}

func newBuilder(tournamentID int, format models.FormatKind, cfg models.GenerateConfig) *builder {
	return &builder{s: &models.Structure{
		TournamentID: tournamentID,
		Format:       format,
		Config:       cfg,
		Matches:      make([]*models.Match, 0),
	}}
}

// continueBuilder resumes id assignment on an existing arena, used when
// the advancement engine spawns a later phase (swiss rounds, playoff
// brackets, battle royale rounds, reset finals, challenges).
func continueBuilder(s *models.Structure) *builder {
	b := &builder{s: s}
	for _, m := range s.Matches {
		if m.ID > b.nextID {
			b.nextID = m.ID
		}
	}
	return b
}

func (b *builder) add(m *models.Match) *models.Match {
	b.nextID++
	m.ID = b.nextID
	m.TournamentID = b.s.TournamentID
	if m.Status == "" {
		m.Status = models.MatchStatusPending
	}
	b.s.Matches = append(b.s.Matches, m)
	return m
}

// srcRef is a feeder for a downstream slot: the winner or the loser of
// a match, or a dead end that can never produce a participant (the
// loser side of a bye, or padding in an uneven secondary draw).
type srcRef struct {
	m     *models.Match
	loser bool
	dead  bool
}

func deadRef() srcRef { return srcRef{dead: true} }

// link wires a feeder into slot (1 or 2) of a target match. Feeders
// already decided at generation time (byes) fill the slot immediately.
func link(f srcRef, to *models.Match, slot int) {
	if f.dead || f.m == nil {
		return
	}
	id, s := to.ID, slot
	if f.loser {
		f.m.LoserMatchID = &id
		f.m.LoserMatchSlot = &s
	} else {
		f.m.NextMatchID = &id
		f.m.NextMatchSlot = &s
	}
	if f.m.Finished() {
		var pid *int
		if f.loser {
			pid = f.m.LoserID()
		} else {
			pid = f.m.WinnerID
		}
		if pid != nil {
			fillSlot(to, slot, *pid)
		}
	}
}

// fillSlot places a participant into a slot and flips the match to
// ready once both slots are occupied. Solo entries are ready with one.
func fillSlot(m *models.Match, slot int, participantID int) {
	pid := participantID
	if slot == 1 {
		m.ParticipantA = &pid
	} else {
		m.ParticipantB = &pid
	}
	if m.Status != models.MatchStatusPending {
		return
	}
	if m.Solo {
		if m.ParticipantA != nil {
			m.Status = models.MatchStatusReady
		}
		return
	}
	if m.ParticipantA != nil && m.ParticipantB != nil {
		m.Status = models.MatchStatusReady
	}
}

// seedOrder returns the standard seeded placement for a bracket of the
// given power-of-two size: position i holds seed number seedOrder[i],
// arranged so 1 meets size, 2 meets size-1, and the top seeds cannot
// collide before the late rounds.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		grown := make([]int, 0, len(order)*2)
		mirror := len(order)*2 + 1
		for _, s := range order {
			grown = append(grown, s, mirror-s)
		}
		order = grown
	}
	return order
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// entrantSlots lays the placed roster out over a full bracket. Slots
// beyond the roster are byes (nil); since byes take the positions of
// the weakest seeds, the highest seeds receive them first and no pair
// can hold two byes while the roster has at least half the bracket.
func entrantSlots(roster []*models.Participant) []*int {
	ordered := byPlacement(roster)
	size := nextPowerOfTwo(len(ordered))
	slots := make([]*int, size)
	for i, pos := range seedOrder(size) {
		if pos-1 < len(ordered) {
			id := ordered[pos-1].ID
			slots[i] = &id
		}
	}
	return slots
}

// buildMainTree builds a full single-elimination tree over the given
// entrant slots. Round 1 byes become auto-completed bye matches whose
// winners are pre-filled downstream; deeper rounds are pending until
// the advancement engine fills their slots. Returns the matches of each
// round and the feeder for the tree's champion.
func (b *builder) buildMainTree(slots []*int, section string) ([][]*models.Match, srcRef) {
	var rounds [][]*models.Match
	cur := make([]srcRef, 0, len(slots)/2)

	round1 := make([]*models.Match, 0, len(slots)/2)
	for i := 0; i < len(slots); i += 2 {
		a, slotB := slots[i], slots[i+1]
		switch {
		case a != nil && slotB != nil:
			m := b.add(&models.Match{
				Round: 1, SlotIndex: len(round1) + 1, Section: section,
				ParticipantA: a, ParticipantB: slotB,
				Status: models.MatchStatusReady,
			})
			round1 = append(round1, m)
			cur = append(cur, srcRef{m: m})
		case a != nil || slotB != nil:
			p := a
			if p == nil {
				p = slotB
			}
			m := b.add(&models.Match{
				Round: 1, SlotIndex: len(round1) + 1, Section: section,
				ParticipantA: p,
				Status:       models.MatchStatusBye,
				WinnerID:     p,
			})
			round1 = append(round1, m)
			cur = append(cur, srcRef{m: m})
		default:
			cur = append(cur, deadRef())
		}
	}
	rounds = append(rounds, round1)

	round := 2
	for len(cur) > 1 {
		cur = b.pairRound(cur, section, round)
		rounds = append(rounds, b.roundMatches(section, round))
		round++
	}
	return rounds, cur[0]
}

// pairRound pairs adjacent feeders into the matches of one round.
// A live feeder paired with a dead one passes through without a match,
// which collapses the holes that byes punch into secondary draws.
func (b *builder) pairRound(refs []srcRef, section string, round int) []srcRef {
	if len(refs)%2 == 1 {
		refs = append(refs, deadRef())
	}
	out := make([]srcRef, 0, len(refs)/2)
	slot := 0
	for i := 0; i < len(refs); i += 2 {
		a, c := refs[i], refs[i+1]
		switch {
		case a.dead && c.dead:
			out = append(out, deadRef())
		case a.dead:
			out = append(out, c)
		case c.dead:
			out = append(out, a)
		default:
			slot++
			m := b.add(&models.Match{Round: round, SlotIndex: slot, Section: section})
			link(a, m, 1)
			link(c, m, 2)
			out = append(out, srcRef{m: m})
		}
	}
	return out
}

// buildDependentTree builds a single-elimination draw over feeders from
// another bracket (losers, consolation, compass directions). Feeder
// counts need not be a power of two; dead padding collapses away.
func (b *builder) buildDependentTree(refs []srcRef, section string) srcRef {
	live := 0
	for _, r := range refs {
		if !r.dead {
			live++
		}
	}
	if live == 0 {
		return deadRef()
	}
	for len(refs) < nextPowerOfTwo(len(refs)) {
		refs = append(refs, deadRef())
	}
	round := 1
	for len(refs) > 1 {
		refs = b.pairRound(refs, section, round)
		round++
	}
	return refs[0]
}

func (b *builder) roundMatches(section string, round int) []*models.Match {
	var ms []*models.Match
	for _, m := range b.s.Matches {
		if m.Section == section && m.Round == round {
			ms = append(ms, m)
		}
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].SlotIndex < ms[j].SlotIndex })
	return ms
}

// loserRefs returns the loser feeders of a round; byes yield dead refs
// since nobody ever loses them.
func loserRefs(ms []*models.Match) []srcRef {
	refs := make([]srcRef, 0, len(ms))
	for _, m := range ms {
		if m.Status == models.MatchStatusBye {
			refs = append(refs, deadRef())
		} else {
			refs = append(refs, srcRef{m: m, loser: true})
		}
	}
	return refs
}

func reverseRefs(refs []srcRef) []srcRef {
	out := make([]srcRef, len(refs))
	for i, r := range refs {
		out[len(refs)-1-i] = r
	}
	return out
}

func interleaveRefs(a, b []srcRef) []srcRef {
	out := make([]srcRef, 0, len(a)+len(b))
	for i := 0; i < len(a) || i < len(b); i++ {
		if i < len(a) {
			out = append(out, a[i])
		}
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}
