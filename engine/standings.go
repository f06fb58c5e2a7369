package engine

import (
	"fmt"
	"sort"

	"github.com/bracketforge/tournament-engine/models"
)

// Standings derives the current ranking from the match ledger. Every
// roster participant gets a row even before playing; the ordering rules
// depend on the format family and always end on participant id, so two
// reads of the same ledger produce the same ranking.
func Standings(s *models.Structure, roster []*models.Participant) []models.StandingsEntry {
	var entries []models.StandingsEntry
	switch s.Format {
	case models.FormatRoundRobin, models.FormatSwiss:
		entries = scheduleStandings(s, roster, "")
	case models.FormatPoolPlayBracket:
		entries = poolPlayStandings(s, roster)
	case models.FormatLadder, models.FormatPyramid:
		entries = ladderStandings(s, roster)
	case models.FormatBattleRoyale:
		entries = battleRoyaleStandings(s, roster)
	case models.FormatLeaderboard, models.FormatMultiEvent, models.FormatTimeTrial, models.FormatSkillsCompetition:
		entries = scoresheetStandings(s, roster)
	default:
		entries = eliminationStandings(s, roster)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// decideChampion inspects the ledger and returns the champion once the
// structure is decided, nil before that. Pure inspection: corrections
// that reopen the deciding match make it nil again.
func decideChampion(s *models.Structure, roster []*models.Participant) *int {
	switch s.Format {
	case models.FormatSingleElimination, models.FormatConsolation, models.FormatThreeGameGuarantee:
		return finalWinner(s, models.SectionMain)
	case models.FormatCompassDraw:
		return finalWinner(s, models.SectionEast)
	case models.FormatPoolPlayBracket:
		return finalWinner(s, models.SectionPlayoffs)
	case models.FormatDoubleElimination:
		return doubleElimChampion(s)
	case models.FormatTripleElimination:
		if m := matchAt(s, models.SectionFinal, 3); m != nil && m.Status == models.MatchStatusCompleted {
			return m.WinnerID
		}
		return nil
	case models.FormatSwiss:
		if s.MaxRound(models.SectionMain) < swissTotalRounds(s.Config, len(roster)) || !allFinished(s) {
			return nil
		}
		return leaderOf(Standings(s, roster))
	case models.FormatRoundRobin,
		models.FormatLeaderboard, models.FormatMultiEvent,
		models.FormatTimeTrial, models.FormatSkillsCompetition:
		if len(s.Matches) == 0 || !allFinished(s) {
			return nil
		}
		return leaderOf(Standings(s, roster))
	case models.FormatBattleRoyale:
		last := s.MaxRound(models.SectionField)
		if last == 0 || !sectionRoundFinished(s, models.SectionField, last) {
			return nil
		}
		if survivors, decided := battleRoyaleCut(s, last); decided {
			return &survivors[0]
		}
		return nil
	}
	// Ladder and pyramid competitions run open-ended.
	return nil
}

// doubleElimChampion: the winners-side champion takes slot A of the
// grand final. Winning it ends the bracket; losing it forces the reset
// final, whose winner takes all.
func doubleElimChampion(s *models.Structure) *int {
	if reset := matchAt(s, models.SectionFinal, 2); reset != nil {
		if reset.Status == models.MatchStatusCompleted {
			return reset.WinnerID
		}
		return nil
	}
	gf := matchAt(s, models.SectionFinal, 1)
	if gf != nil && gf.Status == models.MatchStatusCompleted &&
		gf.WinnerID != nil && gf.ParticipantA != nil && *gf.WinnerID == *gf.ParticipantA {
		return gf.WinnerID
	}
	return nil
}

// finalWinner returns the winner of the match a section's tree roots
// in: its last round, no onward pointer.
func finalWinner(s *models.Structure, section string) *int {
	last := s.MaxRound(section)
	for _, m := range s.Matches {
		if m.Section == section && m.Round == last && m.NextMatchID == nil {
			if m.Status == models.MatchStatusCompleted {
				return m.WinnerID
			}
			return nil
		}
	}
	return nil
}

func matchAt(s *models.Structure, section string, round int) *models.Match {
	for _, m := range s.Matches {
		if m.Section == section && m.Round == round {
			return m
		}
	}
	return nil
}

func allFinished(s *models.Structure) bool {
	for _, m := range s.Matches {
		if !m.Finished() {
			return false
		}
	}
	return true
}

func sectionRoundFinished(s *models.Structure, section string, round int) bool {
	for _, m := range s.Matches {
		if m.Section == section && m.Round == round && !m.Finished() {
			return false
		}
	}
	return true
}

func leaderOf(entries []models.StandingsEntry) *int {
	if len(entries) == 0 {
		return nil
	}
	id := entries[0].ParticipantID
	return &id
}

// scheduleStandings ranks a round-robin style section by points, score
// difference, head-to-head between exact two-way ties, then seed
// placement and id. An empty section ranks the whole arena; byes count
// as wins without score exchange. Participants who never appear in the
// section are left out, which is how pool standings stay per-pool.
func scheduleStandings(s *models.Structure, roster []*models.Participant, section string) []models.StandingsEntry {
	cfg := s.Config.Normalize()

	type line struct {
		entry     models.StandingsEntry
		placement int
		appeared  bool
	}
	lines := make(map[int]*line, len(roster))
	for _, p := range roster {
		lines[p.ID] = &line{
			entry:     models.StandingsEntry{ParticipantID: p.ID, DisplayName: p.DisplayName},
			placement: p.Placement,
			appeared:  section == "",
		}
	}

	inSection := func(m *models.Match) bool { return section == "" || m.Section == section }
	for _, m := range s.Matches {
		if !inSection(m) {
			continue
		}
		if m.ParticipantA != nil {
			lines[*m.ParticipantA].appeared = true
		}
		if m.ParticipantB != nil {
			lines[*m.ParticipantB].appeared = true
		}
		if m.Status == models.MatchStatusBye && m.ParticipantA != nil {
			l := lines[*m.ParticipantA]
			l.entry.Wins++
			l.entry.Points += cfg.PointsPerWin
			continue
		}
		if m.Status != models.MatchStatusCompleted || m.ParticipantA == nil || m.ParticipantB == nil {
			continue
		}
		la, lb := lines[*m.ParticipantA], lines[*m.ParticipantB]
		if m.ScoreA != nil && m.ScoreB != nil {
			la.entry.PointsFor += *m.ScoreA
			la.entry.PointsAgainst += *m.ScoreB
			lb.entry.PointsFor += *m.ScoreB
			lb.entry.PointsAgainst += *m.ScoreA
		}
		switch {
		case m.WinnerID == nil:
			la.entry.Draws++
			lb.entry.Draws++
			la.entry.Points += cfg.PointsPerDraw
			lb.entry.Points += cfg.PointsPerDraw
		case *m.WinnerID == *m.ParticipantA:
			la.entry.Wins++
			lb.entry.Losses++
			la.entry.Points += cfg.PointsPerWin
		default:
			lb.entry.Wins++
			la.entry.Losses++
			lb.entry.Points += cfg.PointsPerWin
		}
	}

	ordered := make([]*line, 0, len(lines))
	for _, l := range lines {
		if l.appeared {
			ordered = append(ordered, l)
		}
	}
	diff := func(l *line) int { return l.entry.PointsFor - l.entry.PointsAgainst }
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.entry.Points != b.entry.Points {
			return a.entry.Points > b.entry.Points
		}
		if diff(a) != diff(b) {
			return diff(a) > diff(b)
		}
		if a.placement != b.placement {
			return a.placement < b.placement
		}
		return a.entry.ParticipantID < b.entry.ParticipantID
	})

	// Head-to-head applies only to exact two-way ties on points and
	// difference; larger tied groups stay on the seed order above.
	for i := 0; i+1 < len(ordered); i++ {
		a, b := ordered[i], ordered[i+1]
		if a.entry.Points != b.entry.Points || diff(a) != diff(b) {
			continue
		}
		if i > 0 && ordered[i-1].entry.Points == a.entry.Points && diff(ordered[i-1]) == diff(a) {
			continue
		}
		if i+2 < len(ordered) && ordered[i+2].entry.Points == a.entry.Points && diff(ordered[i+2]) == diff(a) {
			continue
		}
		if w := headToHeadWinner(s, inSection, a.entry.ParticipantID, b.entry.ParticipantID); w == b.entry.ParticipantID {
			ordered[i], ordered[i+1] = b, a
		}
	}

	entries := make([]models.StandingsEntry, 0, len(ordered))
	for _, l := range ordered {
		l.entry.TiebreakKey = fmt.Sprintf("points=%d;diff=%d;seed=%d", l.entry.Points, diff(l), l.placement)
		entries = append(entries, l.entry)
	}
	return entries
}

// headToHeadWinner returns the winner of the mutual completed match, or
// 0 when they drew, never met, or met more than once without a sweep.
func headToHeadWinner(s *models.Structure, inSection func(*models.Match) bool, a, b int) int {
	winner := 0
	for _, m := range s.Matches {
		if !inSection(m) || m.Status != models.MatchStatusCompleted {
			continue
		}
		if !m.HasParticipant(a) || !m.HasParticipant(b) {
			continue
		}
		if m.WinnerID == nil {
			return 0
		}
		if winner != 0 && winner != *m.WinnerID {
			return 0
		}
		winner = *m.WinnerID
	}
	return winner
}

// poolPlayStandings: the playoff bracket ranks everyone it contains;
// participants who did not qualify follow, ordered by their pool
// record.
func poolPlayStandings(s *models.Structure, roster []*models.Participant) []models.StandingsEntry {
	bracket := eliminationStandingsFor(s, roster, func(m *models.Match) bool {
		return m.Section == models.SectionPlayoffs
	})
	inBracket := make(map[int]bool, len(bracket))
	var entries []models.StandingsEntry
	for _, e := range bracket {
		if e.Wins == 0 && e.Losses == 0 && !e.Eliminated && !appearsIn(s, models.SectionPlayoffs, e.ParticipantID) {
			continue
		}
		inBracket[e.ParticipantID] = true
		entries = append(entries, e)
	}
	for _, e := range scheduleStandings(s, roster, "") {
		if !inBracket[e.ParticipantID] {
			entries = append(entries, e)
		}
	}
	return entries
}

func appearsIn(s *models.Structure, section string, id int) bool {
	for _, m := range s.Matches {
		if m.Section == section && m.HasParticipant(id) {
			return true
		}
	}
	return false
}

// eliminationStandings ranks a bracket: champion first, then everyone
// still alive by wins, then the eliminated from last knocked out to
// first.
func eliminationStandings(s *models.Structure, roster []*models.Participant) []models.StandingsEntry {
	return eliminationStandingsFor(s, roster, func(*models.Match) bool { return true })
}

func eliminationStandingsFor(s *models.Structure, roster []*models.Participant, in func(*models.Match) bool) []models.StandingsEntry {
	champion := decideChampion(s, roster)

	type line struct {
		entry     models.StandingsEntry
		placement int
		elimRound int
		elimSeq   int
	}
	lines := make(map[int]*line, len(roster))
	order := make([]int, 0, len(roster))
	for _, p := range roster {
		lines[p.ID] = &line{
			entry:     models.StandingsEntry{ParticipantID: p.ID, DisplayName: p.DisplayName},
			placement: p.Placement,
		}
		order = append(order, p.ID)
	}

	for _, m := range s.Matches {
		if !in(m) || m.Status != models.MatchStatusCompleted {
			continue
		}
		if m.WinnerID != nil {
			lines[*m.WinnerID].entry.Wins++
		}
		loser := m.LoserID()
		if loser == nil {
			continue
		}
		l := lines[*loser]
		l.entry.Losses++
		// A loss with no onward slot knocks the participant out.
		if m.LoserMatchID == nil {
			l.entry.Eliminated = true
			if m.CompletedSeq > l.elimSeq {
				l.elimSeq = m.CompletedSeq
				l.elimRound = m.Round
			}
		}
	}
	// Anyone holding a slot in an unfinished match is still playing,
	// whatever an earlier terminal loss said (the reset final re-seats
	// the grand final loser).
	for _, m := range s.Matches {
		if !in(m) || m.Finished() {
			continue
		}
		if m.ParticipantA != nil {
			lines[*m.ParticipantA].entry.Eliminated = false
		}
		if m.ParticipantB != nil {
			lines[*m.ParticipantB].entry.Eliminated = false
		}
	}
	if champion != nil {
		lines[*champion].entry.Eliminated = false
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := lines[order[i]], lines[order[j]]
		ac := champion != nil && a.entry.ParticipantID == *champion
		bc := champion != nil && b.entry.ParticipantID == *champion
		if ac != bc {
			return ac
		}
		if a.entry.Eliminated != b.entry.Eliminated {
			return !a.entry.Eliminated
		}
		if !a.entry.Eliminated {
			if a.entry.Wins != b.entry.Wins {
				return a.entry.Wins > b.entry.Wins
			}
		} else {
			if a.elimRound != b.elimRound {
				return a.elimRound > b.elimRound
			}
			if a.elimSeq != b.elimSeq {
				return a.elimSeq > b.elimSeq
			}
		}
		if a.placement != b.placement {
			return a.placement < b.placement
		}
		return a.entry.ParticipantID < b.entry.ParticipantID
	})

	entries := make([]models.StandingsEntry, 0, len(order))
	for _, id := range order {
		l := lines[id]
		if l.entry.Eliminated {
			l.entry.TiebreakKey = fmt.Sprintf("out;round=%d;seq=%d", l.elimRound, l.elimSeq)
		} else {
			l.entry.TiebreakKey = fmt.Sprintf("alive;wins=%d;seed=%d", l.entry.Wins, l.placement)
		}
		entries = append(entries, l.entry)
	}
	return entries
}

// ladderStandings: the replayed challenge order is the ranking.
func ladderStandings(s *models.Structure, roster []*models.Participant) []models.StandingsEntry {
	names := make(map[int]string, len(roster))
	for _, p := range roster {
		names[p.ID] = p.DisplayName
	}
	wins, losses := make(map[int]int), make(map[int]int)
	for _, m := range s.Matches {
		if m.Status != models.MatchStatusCompleted || m.WinnerID == nil {
			continue
		}
		wins[*m.WinnerID]++
		if l := m.LoserID(); l != nil {
			losses[*l]++
		}
	}

	order := challengeOrder(s, roster)
	entries := make([]models.StandingsEntry, 0, len(order))
	for i, id := range order {
		entries = append(entries, models.StandingsEntry{
			ParticipantID: id,
			DisplayName:   names[id],
			Wins:          wins[id],
			Losses:        losses[id],
			TiebreakKey:   fmt.Sprintf("position=%d", i+1),
		})
	}
	return entries
}

// battleRoyaleStandings ranks by how long each participant lasted; ties
// within a round break on that round's score, then the secondary
// metric, then id.
func battleRoyaleStandings(s *models.Structure, roster []*models.Participant) []models.StandingsEntry {
	names := make(map[int]string, len(roster))
	for _, p := range roster {
		names[p.ID] = p.DisplayName
	}
	maxRound := s.MaxRound(models.SectionField)

	type line struct {
		id        int
		lastRound int
		score     int
		secondary int
	}
	lines := make(map[int]*line, len(roster))
	order := make([]int, 0, len(roster))
	for _, p := range roster {
		lines[p.ID] = &line{id: p.ID}
		order = append(order, p.ID)
	}
	for _, m := range s.Matches {
		if m.Section != models.SectionField || m.ParticipantA == nil {
			continue
		}
		l := lines[*m.ParticipantA]
		if m.Round < l.lastRound {
			continue
		}
		l.lastRound = m.Round
		l.score, l.secondary = 0, 0
		if m.Status == models.MatchStatusCompleted {
			if m.ScoreA != nil {
				l.score = *m.ScoreA
			}
			if m.ScoreB != nil {
				l.secondary = *m.ScoreB
			}
		}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := lines[order[i]], lines[order[j]]
		if a.lastRound != b.lastRound {
			return a.lastRound > b.lastRound
		}
		if a.score != b.score {
			return a.score > b.score
		}
		if a.secondary != b.secondary {
			return a.secondary > b.secondary
		}
		return a.id < b.id
	})

	entries := make([]models.StandingsEntry, 0, len(order))
	for _, id := range order {
		l := lines[id]
		entries = append(entries, models.StandingsEntry{
			ParticipantID: id,
			DisplayName:   names[id],
			Score:         l.score,
			Secondary:     l.secondary,
			Eliminated:    l.lastRound < maxRound,
			TiebreakKey:   fmt.Sprintf("round=%d;score=%d", l.lastRound, l.score),
		})
	}
	return entries
}

// scoresheetStandings totals every completed solo entry. Participants
// with more completed entries rank above those still mid-sheet; among
// equals the total decides, ascending for time trials, descending
// otherwise, then the secondary metric and earliest completion.
func scoresheetStandings(s *models.Structure, roster []*models.Participant) []models.StandingsEntry {
	type line struct {
		id        int
		done      int
		total     int
		secondary int
		firstSeq  int
	}
	names := make(map[int]string, len(roster))
	lines := make(map[int]*line, len(roster))
	order := make([]int, 0, len(roster))
	for _, p := range roster {
		names[p.ID] = p.DisplayName
		lines[p.ID] = &line{id: p.ID}
		order = append(order, p.ID)
	}
	for _, m := range s.Matches {
		if !m.Solo || m.Status != models.MatchStatusCompleted || m.ParticipantA == nil {
			continue
		}
		l := lines[*m.ParticipantA]
		l.done++
		if m.ScoreA != nil {
			l.total += *m.ScoreA
		}
		if m.ScoreB != nil {
			l.secondary += *m.ScoreB
		}
		if l.firstSeq == 0 || m.CompletedSeq < l.firstSeq {
			l.firstSeq = m.CompletedSeq
		}
	}

	ascending := s.Format == models.FormatTimeTrial
	sort.Slice(order, func(i, j int) bool {
		a, b := lines[order[i]], lines[order[j]]
		if a.done != b.done {
			return a.done > b.done
		}
		if a.total != b.total {
			if ascending {
				return a.total < b.total
			}
			return a.total > b.total
		}
		if a.secondary != b.secondary {
			return a.secondary > b.secondary
		}
		if a.firstSeq != b.firstSeq {
			if a.firstSeq == 0 || b.firstSeq == 0 {
				return b.firstSeq == 0
			}
			return a.firstSeq < b.firstSeq
		}
		return a.id < b.id
	})

	entries := make([]models.StandingsEntry, 0, len(order))
	for _, id := range order {
		l := lines[id]
		entries = append(entries, models.StandingsEntry{
			ParticipantID: id,
			DisplayName:   names[id],
			Score:         l.total,
			Secondary:     l.secondary,
			TiebreakKey:   fmt.Sprintf("events=%d;total=%d", l.done, l.total),
		})
	}
	return entries
}
