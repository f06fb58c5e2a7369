package engine

import (
	"fmt"
	"sort"

	"github.com/bracketforge/tournament-engine/models"
)

// Battle royale: every round scores the whole remaining field at once
// through one solo entry per survivor. When a round completes, the
// bottom EliminationPercent of the field is cut (at least one, never
// the leader) and the next round is spawned, until one participant
// remains or the round cap is reached.
type battleRoyaleGenerator struct{}

func (g *battleRoyaleGenerator) Kind() models.FormatKind { return models.FormatBattleRoyale }
func (g *battleRoyaleGenerator) MinParticipants() int    { return 3 }

func (g *battleRoyaleGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	cfg := params.Config
	if cfg.EliminationPercent < 1 || cfg.EliminationPercent > 99 {
		return nil, fmt.Errorf("%w: elimination percent %d outside 1..99",
			ErrUnsupportedConfiguration, cfg.EliminationPercent)
	}
	b := newBuilder(params.TournamentID, g.Kind(), cfg)
	ids := make([]int, 0, len(params.Roster))
	for _, p := range byPlacement(params.Roster) {
		ids = append(ids, p.ID)
	}
	spawnFieldRound(b, ids, 1)
	return b.s, nil
}

func spawnFieldRound(b *builder, survivors []int, round int) []*models.Match {
	created := make([]*models.Match, 0, len(survivors))
	for i, id := range survivors {
		pid := id
		created = append(created, b.add(&models.Match{
			Round: round, SlotIndex: i + 1, Section: models.SectionField,
			ParticipantA: &pid,
			Solo:         true,
			Status:       models.MatchStatusReady,
		}))
	}
	return created
}

type fieldScore struct {
	id        int
	score     int
	secondary int
}

// fieldRoundScores returns the completed entries of one field round,
// best first. Ties break by the secondary metric, then by id.
func fieldRoundScores(s *models.Structure, round int) []fieldScore {
	var scores []fieldScore
	for _, m := range s.Matches {
		if m.Section != models.SectionField || m.Round != round || m.Status != models.MatchStatusCompleted {
			continue
		}
		fs := fieldScore{id: *m.ParticipantA}
		if m.ScoreA != nil {
			fs.score = *m.ScoreA
		}
		if m.ScoreB != nil {
			fs.secondary = *m.ScoreB
		}
		scores = append(scores, fs)
	}
	sort.Slice(scores, func(i, j int) bool {
		a, c := scores[i], scores[j]
		if a.score != c.score {
			return a.score > c.score
		}
		if a.secondary != c.secondary {
			return a.secondary > c.secondary
		}
		return a.id < c.id
	})
	return scores
}

// battleRoyaleCut decides who survives a completed round. Returns the
// survivors in rank order and whether the competition is decided.
func battleRoyaleCut(s *models.Structure, round int) (survivors []int, decided bool) {
	cfg := s.Config.Normalize()
	scores := fieldRoundScores(s, round)

	cut := (len(scores)*cfg.EliminationPercent + 99) / 100
	if cut < 1 {
		cut = 1
	}
	if cut >= len(scores) {
		cut = len(scores) - 1
	}
	for _, fs := range scores[:len(scores)-cut] {
		survivors = append(survivors, fs.id)
	}
	if len(survivors) == 1 {
		return survivors, true
	}
	if cfg.RoundCap > 0 && round >= cfg.RoundCap {
		return survivors, true
	}
	return survivors, false
}
