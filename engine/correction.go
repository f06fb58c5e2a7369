package engine

import (
	"fmt"
	"strings"

	"github.com/bracketforge/tournament-engine/models"
)

// correct overwrites a completed match and re-derives everything
// reachable from it. Bracket formats cascade through the next/loser
// pointers: a downstream slot that changes hands resets its match and
// discards its result, recursively. Phase-spawning formats roll their
// later phase back first and regenerate it through the ordinary
// triggers; a completed match in that later phase blocks the
// correction instead of silently invalidating it. Swiss pairing reads
// only win/loss records, so a score fix that keeps the winner skips
// the rollback there; battle royale cuts and pool playoff seeding read
// the scores themselves and always roll back.
func (a *advancer) correct(m *models.Match, in ReportInput) error {
	winner, err := a.resolveWinner(m, in)
	if err != nil {
		return err
	}

	switch a.s.Format {
	case models.FormatSwiss:
		if !intPtrEq(m.WinnerID, winner) {
			if err := a.rollbackLaterRounds(models.SectionMain, m.Round); err != nil {
				return err
			}
		}
	case models.FormatBattleRoyale:
		if err := a.rollbackLaterRounds(models.SectionField, m.Round); err != nil {
			return err
		}
	case models.FormatPoolPlayBracket:
		if strings.HasPrefix(m.Section, "pool-") {
			if err := a.rollbackSection(models.SectionPlayoffs); err != nil {
				return err
			}
		}
	}

	oldWinner := m.WinnerID
	sa, sb := in.ScoreA, in.ScoreB
	m.ScoreA, m.ScoreB = &sa, &sb
	m.WinnerID = winner
	// CompletedSeq stays: the original submission order still anchors
	// ladder replay and submission tie-breaks.
	a.touch(m)

	if !intPtrEq(oldWinner, winner) {
		if m.NextMatchID != nil {
			a.refeed(*m.NextMatchID, *m.NextMatchSlot, winner)
		}
		if m.LoserMatchID != nil {
			a.refeed(*m.LoserMatchID, *m.LoserMatchSlot, m.LoserID())
		}
	}
	a.runPhaseTriggers(m)
	return nil
}

// rollbackLaterRounds removes every match of the section past the given
// round so the phase triggers can regenerate them from the corrected
// record. Reported results in those rounds block the rollback; byes and
// unplayed pairings do not.
func (a *advancer) rollbackLaterRounds(section string, round int) error {
	var doomed []*models.Match
	for _, m := range a.s.Matches {
		if m.Section != section || m.Round <= round {
			continue
		}
		if m.Status == models.MatchStatusCompleted {
			return fmt.Errorf("%w: round %d already has reported results", ErrCorrectionNotPossible, m.Round)
		}
		doomed = append(doomed, m)
	}
	for _, m := range doomed {
		a.remove(m)
	}
	return nil
}

func (a *advancer) rollbackSection(section string) error {
	var doomed []*models.Match
	for _, m := range a.s.Matches {
		if m.Section != section {
			continue
		}
		if m.Status == models.MatchStatusCompleted {
			return fmt.Errorf("%w: the %s bracket already has reported results", ErrCorrectionNotPossible, section)
		}
		doomed = append(doomed, m)
	}
	for _, m := range doomed {
		a.remove(m)
	}
	return nil
}

// refeed replaces the occupant of a downstream slot. If the target had
// a committed result it is discarded and the reset ripples onward with
// cleared slots until the cascade reaches matches the change cannot
// touch.
func (a *advancer) refeed(matchID, slot int, pid *int) {
	t := a.s.MatchByID(matchID)
	if t == nil {
		return
	}
	if intPtrEq(slotOf(t, slot), pid) {
		return
	}
	if t.Status == models.MatchStatusCompleted {
		if t.WinnerID != nil && t.NextMatchID != nil {
			a.refeed(*t.NextMatchID, *t.NextMatchSlot, nil)
		}
		if t.LoserID() != nil && t.LoserMatchID != nil {
			a.refeed(*t.LoserMatchID, *t.LoserMatchSlot, nil)
		}
		t.ScoreA, t.ScoreB, t.WinnerID = nil, nil, nil
		t.CompletedSeq = 0
		t.Status = models.MatchStatusPending
	}
	setSlotPtr(t, slot, pid)
	recomputeOpenStatus(t)
	a.touch(t)
}

func slotOf(m *models.Match, slot int) *int {
	if slot == 1 {
		return m.ParticipantA
	}
	return m.ParticipantB
}

func setSlotPtr(m *models.Match, slot int, pid *int) {
	var v *int
	if pid != nil {
		id := *pid
		v = &id
	}
	if slot == 1 {
		m.ParticipantA = v
	} else {
		m.ParticipantB = v
	}
}

// recomputeOpenStatus re-derives readiness from slot occupancy for a
// match without a committed result. A participant change drops any
// in_progress marker: the pairing the scorekeeper started no longer
// exists.
func recomputeOpenStatus(m *models.Match) {
	if m.Finished() {
		return
	}
	occupied := m.ParticipantA != nil && m.ParticipantB != nil
	if m.Solo {
		occupied = m.ParticipantA != nil
	}
	if occupied {
		m.Status = models.MatchStatusReady
	} else {
		m.Status = models.MatchStatusPending
	}
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
