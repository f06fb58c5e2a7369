package engine

import (
	"fmt"
	"sort"

	"github.com/bracketforge/tournament-engine/models"
)

// Ladder and pyramid formats generate no matches up front. Matches are
// created on demand when a lower-ranked participant challenges someone
// above; the current order is never stored, it is replayed from the
// completed challenges in completion order.
type ladderGenerator struct{}

func (g *ladderGenerator) Kind() models.FormatKind { return models.FormatLadder }
func (g *ladderGenerator) MinParticipants() int    { return 2 }

func (g *ladderGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	return newBuilder(params.TournamentID, g.Kind(), params.Config).s, nil
}

type pyramidGenerator struct{}

func (g *pyramidGenerator) Kind() models.FormatKind { return models.FormatPyramid }
func (g *pyramidGenerator) MinParticipants() int    { return 3 }

func (g *pyramidGenerator) Generate(params GenerateParams) (*models.Structure, error) {
	return newBuilder(params.TournamentID, g.Kind(), params.Config).s, nil
}

// challengeOrder replays the ladder from its initial placement: each
// completed challenge won by the challenger swaps the two positions.
// Returns participant ids from rank 1 down.
func challengeOrder(s *models.Structure, roster []*models.Participant) []int {
	order := make([]int, 0, len(roster))
	for _, p := range byPlacement(roster) {
		order = append(order, p.ID)
	}
	pos := make(map[int]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	challenges := make([]*models.Match, 0)
	for _, m := range s.Matches {
		if m.Status == models.MatchStatusCompleted && (m.Section == models.SectionLadder || m.Section == models.SectionPyramid) {
			challenges = append(challenges, m)
		}
	}
	sort.Slice(challenges, func(i, j int) bool {
		return challenges[i].CompletedSeq < challenges[j].CompletedSeq
	})

	for _, m := range challenges {
		challenger, defender := *m.ParticipantA, *m.ParticipantB
		if m.WinnerID == nil || *m.WinnerID != challenger {
			continue
		}
		ci, di := pos[challenger], pos[defender]
		order[ci], order[di] = order[di], order[ci]
		pos[challenger], pos[defender] = di, ci
	}
	return order
}

// pyramidTier returns the 1-based tier of a 0-based position: tier t
// holds t positions, so the rows widen toward the bottom.
func pyramidTier(pos int) int {
	tier, capacity := 1, 1
	for pos >= capacity {
		pos -= capacity
		tier++
		capacity = tier
	}
	return tier
}

// CreateChallenge spawns a ready challenge match after validating the
// format's reach rules against the replayed current order. Ladder:
// the challenger may reach up to MaxChallengeDistance ranks above.
// Pyramid: the defender must stand exactly one tier higher.
func CreateChallenge(s *models.Structure, roster []*models.Participant, challengerID, defenderID int) (*models.Match, error) {
	if s.Format != models.FormatLadder && s.Format != models.FormatPyramid {
		return nil, fmt.Errorf("%w: format %s does not take challenges", ErrChallengeNotAllowed, s.Format)
	}
	if challengerID == defenderID {
		return nil, fmt.Errorf("%w: cannot challenge yourself", ErrChallengeNotAllowed)
	}

	order := challengeOrder(s, roster)
	cPos, dPos := -1, -1
	for i, id := range order {
		if id == challengerID {
			cPos = i
		}
		if id == defenderID {
			dPos = i
		}
	}
	if cPos < 0 || dPos < 0 {
		return nil, fmt.Errorf("%w: participant not on the ladder", ErrChallengeNotAllowed)
	}
	if dPos >= cPos {
		return nil, fmt.Errorf("%w: defender is not ranked above the challenger", ErrChallengeNotAllowed)
	}

	section := models.SectionLadder
	switch s.Format {
	case models.FormatLadder:
		if cfg := s.Config.Normalize(); cPos-dPos > cfg.MaxChallengeDistance {
			return nil, fmt.Errorf("%w: defender is %d ranks above, limit is %d",
				ErrChallengeNotAllowed, cPos-dPos, cfg.MaxChallengeDistance)
		}
	case models.FormatPyramid:
		section = models.SectionPyramid
		if pyramidTier(dPos) != pyramidTier(cPos)-1 {
			return nil, fmt.Errorf("%w: pyramid challenges must target the tier directly above", ErrChallengeNotAllowed)
		}
	}

	for _, m := range s.Matches {
		if m.Finished() {
			continue
		}
		if m.HasParticipant(challengerID) || m.HasParticipant(defenderID) {
			return nil, fmt.Errorf("%w: an open challenge already involves one of the participants", ErrChallengeNotAllowed)
		}
	}

	b := continueBuilder(s)
	challenger, defender := challengerID, defenderID
	round := 1
	for _, m := range s.Matches {
		if m.Round >= round {
			round = m.Round + 1
		}
	}
	return b.add(&models.Match{
		Round: round, SlotIndex: 1, Section: section,
		ParticipantA: &challenger, ParticipantB: &defender,
		Status: models.MatchStatusReady,
	}), nil
}
