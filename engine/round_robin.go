package engine

import "github.com/bracketforge/tournament-engine/models"

// Round robin: every unordered pair meets exactly once. Rounds are
// scheduled with the circle method (fix the first participant, rotate
// the rest) so nobody plays twice in a round; with an odd field one
// participant rests each round and no match record is created for it.
type roundRobinGenerator struct{}

func (g *roundRobinGenerator) Kind() models.FormatKind { return models.FormatRoundRobin }
func (g *roundRobinGenerator) MinParticipants() int    { return 3 }

func (g *roundRobinGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	b := newBuilder(params.TournamentID, g.Kind(), params.Config)
	ids := make([]*int, 0, len(params.Roster)+1)
	for _, p := range byPlacement(params.Roster) {
		id := p.ID
		ids = append(ids, &id)
	}
	scheduleRoundRobin(b, ids, models.SectionMain, 0)
	return b.s, nil
}

// scheduleRoundRobin writes circle-method rounds into the builder,
// offsetting round numbers by roundBase. Shared with pool play.
func scheduleRoundRobin(b *builder, ids []*int, section string, roundBase int) {
	if len(ids)%2 == 1 {
		ids = append(ids, nil) // rest slot
	}
	n := len(ids)
	ring := make([]*int, n)
	copy(ring, ids)

	for r := 1; r <= n-1; r++ {
		slot := 0
		for i := 0; i < n/2; i++ {
			a, c := ring[i], ring[n-1-i]
			if a == nil || c == nil {
				continue
			}
			slot++
			b.add(&models.Match{
				Round: roundBase + r, SlotIndex: slot, Section: section,
				ParticipantA: a, ParticipantB: c,
				Status: models.MatchStatusReady,
			})
		}
		// rotate everything but the fixed first slot
		last := ring[n-1]
		copy(ring[2:], ring[1:n-1])
		ring[1] = last
	}
}
