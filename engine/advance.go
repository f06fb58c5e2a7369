package engine

import (
	"fmt"
	"strings"

	"github.com/bracketforge/tournament-engine/models"
)

// ReportInput is one externally reported result.
type ReportInput struct {
	MatchID    int
	ScoreA     int
	ScoreB     int
	Correction bool
}

// ReportOutcome lists every ledger mutation one report caused, so the
// caller can persist them in a single transaction.
type ReportOutcome struct {
	Match      *models.Match   // the reported match
	Updated    []*models.Match // mutated matches, reported one included
	Created    []*models.Match // spawned later-phase matches
	RemovedIDs []int           // invalidated later-phase matches
	ChampionID *int            // non-nil once the structure is decided
	NoOp       bool            // idempotent resubmission, nothing changed
}

type advancer struct {
	s       *models.Structure
	roster  []*models.Participant
	touched map[int]bool
	out     *ReportOutcome
}

// ReportResult applies one result to the structure in memory and
// returns everything that changed. The structure is rebuilt from the
// store per call, so on error the in-memory mutations are simply
// discarded by the caller.
func ReportResult(s *models.Structure, roster []*models.Participant, in ReportInput) (*ReportOutcome, error) {
	m := s.MatchByID(in.MatchID)
	if m == nil {
		return nil, fmt.Errorf("%w: id %d", ErrMatchNotFound, in.MatchID)
	}
	if in.ScoreA < 0 || in.ScoreB < 0 {
		return nil, ErrInvalidScore
	}

	a := &advancer{s: s, roster: roster, touched: map[int]bool{}, out: &ReportOutcome{Match: m}}

	switch m.Status {
	case models.MatchStatusBye:
		return nil, fmt.Errorf("%w: match %d is a bye", ErrAlreadyCompleted, m.ID)
	case models.MatchStatusPending:
		return nil, fmt.Errorf("%w: match %d", ErrMatchNotReady, m.ID)
	case models.MatchStatusCompleted:
		if !in.Correction {
			if m.ScoreA != nil && *m.ScoreA == in.ScoreA && m.ScoreB != nil && *m.ScoreB == in.ScoreB {
				a.out.NoOp = true
				return a.out, nil
			}
			return nil, fmt.Errorf("%w: match %d", ErrAlreadyCompleted, m.ID)
		}
		if err := a.correct(m, in); err != nil {
			return nil, err
		}
	default: // ready or in_progress
		if err := a.complete(m, in); err != nil {
			return nil, err
		}
	}

	if err := a.syncResetFinal(); err != nil {
		return nil, err
	}
	a.out.ChampionID = decideChampion(s, roster)
	a.collect()
	return a.out, nil
}

// complete commits a first-time result and propagates it downstream.
func (a *advancer) complete(m *models.Match, in ReportInput) error {
	winner, err := a.resolveWinner(m, in)
	if err != nil {
		return err
	}
	sa, sb := in.ScoreA, in.ScoreB
	m.ScoreA, m.ScoreB = &sa, &sb
	m.WinnerID = winner
	m.Status = models.MatchStatusCompleted
	m.CompletedSeq = a.s.NextCompletedSeq()
	a.touch(m)

	if winner != nil && m.NextMatchID != nil {
		a.fill(*m.NextMatchID, *m.NextMatchSlot, *winner)
	}
	if loser := m.LoserID(); loser != nil && m.LoserMatchID != nil {
		a.fill(*m.LoserMatchID, *m.LoserMatchSlot, *loser)
	}
	a.runPhaseTriggers(m)
	return nil
}

// resolveWinner applies the tie rules: solo entries have no winner,
// draws are only legal where the format explicitly permits them.
func (a *advancer) resolveWinner(m *models.Match, in ReportInput) (*int, error) {
	if m.Solo {
		return nil, nil
	}
	if in.ScoreA == in.ScoreB {
		if !a.drawsAllowed(m) {
			return nil, fmt.Errorf("%w: %d-%d in match %d", ErrTieNotAllowed, in.ScoreA, in.ScoreB, m.ID)
		}
		return nil, nil
	}
	if in.ScoreA > in.ScoreB {
		return m.ParticipantA, nil
	}
	return m.ParticipantB, nil
}

// drawsAllowed: only the schedule sections of round robin, swiss and
// pool play may record draws, and only when the config opts in.
// Elimination brackets always need a winner to advance.
func (a *advancer) drawsAllowed(m *models.Match) bool {
	if !a.s.Config.AllowDraws {
		return false
	}
	switch a.s.Format {
	case models.FormatRoundRobin, models.FormatSwiss:
		return true
	case models.FormatPoolPlayBracket:
		return strings.HasPrefix(m.Section, "pool-")
	}
	return false
}

// fill writes a participant into a downstream slot and flips the match
// ready once both sides are known.
func (a *advancer) fill(matchID, slot, participantID int) {
	t := a.s.MatchByID(matchID)
	if t == nil {
		return
	}
	fillSlot(t, slot, participantID)
	a.touch(t)
}

// runPhaseTriggers spawns whatever the completed match unlocks: the
// next swiss round, the playoff bracket, the next battle royale field,
// or the double-elimination reset final (handled in syncResetFinal).
func (a *advancer) runPhaseTriggers(m *models.Match) {
	switch a.s.Format {
	case models.FormatSwiss:
		total := swissTotalRounds(a.s.Config, len(a.roster))
		if m.Round < total && a.roundComplete(models.SectionMain, m.Round) && a.s.MaxRound(models.SectionMain) == m.Round {
			b := continueBuilder(a.s)
			a.out.Created = append(a.out.Created, pairSwissRound(b, a.roster, m.Round+1)...)
		}
	case models.FormatPoolPlayBracket:
		if strings.HasPrefix(m.Section, "pool-") && a.poolsComplete() && !a.hasSection(models.SectionPlayoffs) {
			a.out.Created = append(a.out.Created, spawnPlayoffs(a.s, a.roster)...)
		}
	case models.FormatBattleRoyale:
		if m.Section == models.SectionField && a.roundComplete(models.SectionField, m.Round) && a.s.MaxRound(models.SectionField) == m.Round {
			survivors, decided := battleRoyaleCut(a.s, m.Round)
			if !decided {
				b := continueBuilder(a.s)
				a.out.Created = append(a.out.Created, spawnFieldRound(b, survivors, m.Round+1)...)
			}
		}
	}
}

// syncResetFinal reconciles the double-elimination reset final with the
// grand final's current state: spawned when the losers-side champion
// takes the first grand final, removed again when a correction undoes
// that. A completed reset final blocks any correction that would
// invalidate it.
func (a *advancer) syncResetFinal() error {
	if a.s.Format != models.FormatDoubleElimination {
		return nil
	}
	var gf1, reset *models.Match
	for _, m := range a.s.Matches {
		if m.Section != models.SectionFinal {
			continue
		}
		switch m.Round {
		case 1:
			gf1 = m
		case 2:
			reset = m
		}
	}
	if gf1 == nil {
		return nil
	}

	needed := gf1.Status == models.MatchStatusCompleted &&
		gf1.WinnerID != nil && gf1.ParticipantB != nil && *gf1.WinnerID == *gf1.ParticipantB

	switch {
	case needed && reset == nil:
		b := continueBuilder(a.s)
		pa, pb := *gf1.ParticipantA, *gf1.ParticipantB
		reset = b.add(&models.Match{
			Round: 2, SlotIndex: 1, Section: models.SectionFinal,
			ParticipantA: &pa, ParticipantB: &pb,
			Status: models.MatchStatusReady,
		})
		a.out.Created = append(a.out.Created, reset)
	case !needed && reset != nil:
		if reset.Status == models.MatchStatusCompleted {
			return fmt.Errorf("%w: the reset final has already been played", ErrCorrectionNotPossible)
		}
		a.remove(reset)
	}
	return nil
}

func (a *advancer) roundComplete(section string, round int) bool {
	for _, m := range a.s.Matches {
		if m.Section == section && m.Round == round && !m.Finished() {
			return false
		}
	}
	return true
}

func (a *advancer) poolsComplete() bool {
	for _, m := range a.s.Matches {
		if strings.HasPrefix(m.Section, "pool-") && !m.Finished() {
			return false
		}
	}
	return true
}

func (a *advancer) hasSection(section string) bool {
	for _, m := range a.s.Matches {
		if m.Section == section {
			return true
		}
	}
	return false
}

func (a *advancer) touch(m *models.Match) {
	a.touched[m.ID] = true
}

func (a *advancer) remove(victim *models.Match) {
	delete(a.touched, victim.ID)
	a.out.RemovedIDs = append(a.out.RemovedIDs, victim.ID)
	for i, m := range a.s.Matches {
		if m.ID == victim.ID {
			a.s.Matches = append(a.s.Matches[:i], a.s.Matches[i+1:]...)
			break
		}
	}
}

// collect snapshots the touched set in arena order, skipping matches
// that were created in this same report (they are inserted, not
// updated).
func (a *advancer) collect() {
	created := make(map[int]bool, len(a.out.Created))
	for _, m := range a.out.Created {
		created[m.ID] = true
	}
	for _, m := range a.s.Matches {
		if a.touched[m.ID] && !created[m.ID] {
			a.out.Updated = append(a.out.Updated, m)
		}
	}
}
