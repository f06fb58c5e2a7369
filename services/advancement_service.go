package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bracketforge/tournament-engine/engine"
	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/realtime"
	"github.com/bracketforge/tournament-engine/repositories"
	"github.com/bracketforge/tournament-engine/storage"
)

type ReportResultInput struct {
	ScoreA     int  `json:"score_a"`
	ScoreB     int  `json:"score_b"`
	Correction bool `json:"correction,omitempty"`

	// ExpectedVersion guards against reporting over a state the caller
	// has not seen. Zero skips the check; the database version check
	// still applies.
	ExpectedVersion int `json:"expected_version,omitempty"`
}

type ChallengeInput struct {
	ChallengerID int `json:"challenger_id"`
	DefenderID   int `json:"defender_id"`
}

// ReportResultView is what one report changed, exactly as persisted.
type ReportResultView struct {
	Match      models.Match   `json:"match"`
	Updated    []models.Match `json:"updated,omitempty"`
	Created    []models.Match `json:"created,omitempty"`
	RemovedIDs []int          `json:"removed_ids,omitempty"`
	ChampionID *int           `json:"champion_id,omitempty"`
	NoOp       bool           `json:"no_op,omitempty"`
}

type AdvancementService interface {
	ReportResult(ctx context.Context, tournamentID, matchID int, input ReportResultInput) (*ReportResultView, error)
	Challenge(ctx context.Context, tournamentID int, input ChallengeInput) (*models.Match, error)
	MarkInProgress(ctx context.Context, tournamentID, matchID, version int) error
	ReleaseStaleInProgress(ctx context.Context, olderThan time.Duration) error
}

type advancementService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	hub             *realtime.Hub
	archive         storage.FileUploader
	logger          *slog.Logger
}

func NewAdvancementService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	hub *realtime.Hub,
	archive storage.FileUploader,
	logger *slog.Logger,
) AdvancementService {
	return &advancementService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		hub:             hub,
		archive:         archive,
		logger:          logger,
	}
}

// ReportResult rebuilds the structure from the store, applies the
// result through the engine and persists every mutation it caused in
// one transaction.
func (s *advancementService) ReportResult(ctx context.Context, tournamentID, matchID int, input ReportResultInput) (*ReportResultView, error) {
	tournament, roster, matches, err := s.loadState(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	structure := buildStructure(tournament, matches)
	reported := structure.MatchByID(matchID)
	if reported == nil {
		return nil, fmt.Errorf("%w: match %d in tournament %d", ErrMatchNotFound, matchID, tournamentID)
	}
	if input.ExpectedVersion > 0 && reported.Version != input.ExpectedVersion {
		return nil, fmt.Errorf("%w: match %d is at version %d, caller expected %d",
			ErrConcurrentModification, matchID, reported.Version, input.ExpectedVersion)
	}

	outcome, err := engine.ReportResult(structure, roster, engine.ReportInput{
		MatchID:    matchID,
		ScoreA:     input.ScoreA,
		ScoreB:     input.ScoreB,
		Correction: input.Correction,
	})
	if err != nil {
		return nil, err
	}
	if outcome.NoOp {
		return &ReportResultView{Match: *outcome.Match, NoOp: true}, nil
	}

	err = runInTransaction(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		for _, m := range outcome.Updated {
			if err := s.matchRepo.UpdateResult(ctx, tx, m); err != nil {
				if errors.Is(err, repositories.ErrMatchVersionConflict) {
					return fmt.Errorf("%w: match %d", ErrConcurrentModification, m.ID)
				}
				return err
			}
		}
		if err := s.matchRepo.DeleteBatch(ctx, tx, tournamentID, outcome.RemovedIDs); err != nil {
			return err
		}
		if err := s.matchRepo.CreateBatch(ctx, tx, outcome.Created); err != nil {
			return err
		}
		return s.syncTournamentOutcome(ctx, tx, tournament, outcome.ChampionID)
	})
	if err != nil {
		return nil, err
	}

	view := &ReportResultView{
		Match:      *outcome.Match,
		Updated:    dereferenceMatches(outcome.Updated),
		Created:    dereferenceMatches(outcome.Created),
		RemovedIDs: outcome.RemovedIDs,
		ChampionID: outcome.ChampionID,
	}
	s.publish(ctx, tournamentID, view)
	if outcome.ChampionID != nil {
		s.archiveFinalStructure(ctx, tournament, roster, structure)
	}
	return view, nil
}

// Challenge creates a ladder or pyramid challenge match.
func (s *advancementService) Challenge(ctx context.Context, tournamentID int, input ChallengeInput) (*models.Match, error) {
	tournament, roster, matches, err := s.loadState(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.TournamentStatusCompleted {
		return nil, ErrTournamentCompleted
	}

	structure := buildStructure(tournament, matches)
	match, err := engine.CreateChallenge(structure, roster, input.ChallengerID, input.DefenderID)
	if err != nil {
		return nil, err
	}

	err = runInTransaction(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		return s.matchRepo.CreateBatch(ctx, tx, []*models.Match{match})
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToRoom(realtime.RoomForTournament(tournamentID), realtime.Event{
		Type:    realtime.EventStructureExtended,
		Payload: match,
	})
	return match, nil
}

func (s *advancementService) MarkInProgress(ctx context.Context, tournamentID, matchID, version int) error {
	err := s.matchRepo.MarkInProgress(ctx, tournamentID, matchID, version)
	if errors.Is(err, repositories.ErrMatchVersionConflict) {
		return fmt.Errorf("%w: match %d", ErrConcurrentModification, matchID)
	}
	return err
}

// ReleaseStaleInProgress is the scheduler entry point: abandoned
// in_progress matches go back to ready.
func (s *advancementService) ReleaseStaleInProgress(ctx context.Context, olderThan time.Duration) error {
	released, err := s.matchRepo.ReleaseStaleInProgress(ctx, olderThan)
	if err != nil {
		return err
	}
	if released > 0 {
		s.logger.InfoContext(ctx, "released stale in-progress matches", slog.Int64("count", released))
	}
	return nil
}

func (s *advancementService) loadState(ctx context.Context, tournamentID int) (*models.Tournament, []*models.Participant, []*models.Match, error) {
	var (
		tournament *models.Tournament
		roster     []*models.Participant
		matches    []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		p, err := s.participantRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load participants of tournament %d: %w", tournamentID, err)
		}
		roster = p
		return nil
	})
	g.Go(func() error {
		m, err := s.matchRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load matches of tournament %d: %w", tournamentID, err)
		}
		matches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return tournament, roster, matches, nil
}

// syncTournamentOutcome keeps the tournament row in step with the
// ledger: a decided champion completes it, a correction that reopens
// the deciding match reactivates it.
func (s *advancementService) syncTournamentOutcome(ctx context.Context, tx *sql.Tx, t *models.Tournament, championID *int) error {
	switch {
	case championID != nil:
		if t.WinnerID != nil && *t.WinnerID == *championID && t.Status == models.TournamentStatusCompleted {
			return nil
		}
		return s.tournamentRepo.SetOutcome(ctx, tx, t.ID, championID, models.TournamentStatusCompleted)
	case t.Status == models.TournamentStatusCompleted:
		return s.tournamentRepo.SetOutcome(ctx, tx, t.ID, nil, models.TournamentStatusActive)
	}
	return nil
}

func (s *advancementService) publish(ctx context.Context, tournamentID int, view *ReportResultView) {
	room := realtime.RoomForTournament(tournamentID)
	s.hub.BroadcastToRoom(room, realtime.Event{Type: realtime.EventResultReported, Payload: view})
	if view.ChampionID != nil {
		s.hub.BroadcastToRoom(room, realtime.Event{
			Type:    realtime.EventChampionDecided,
			Payload: map[string]interface{}{"tournament_id": tournamentID, "champion_id": *view.ChampionID},
		})
	}
}

// archiveFinalStructure uploads a JSON snapshot of the decided
// tournament. Best effort: a failed upload is logged, never surfaced,
// the ledger in the database stays authoritative.
func (s *advancementService) archiveFinalStructure(ctx context.Context, t *models.Tournament, roster []*models.Participant, structure *models.Structure) {
	if s.archive == nil {
		return
	}
	snapshot := struct {
		Tournament *models.Tournament      `json:"tournament"`
		Roster     []models.Participant    `json:"roster"`
		Matches    []models.Match          `json:"matches"`
		Standings  []models.StandingsEntry `json:"standings"`
	}{
		Tournament: t,
		Roster:     dereferenceParticipants(roster),
		Matches:    dereferenceMatches(structure.Matches),
		Standings:  engine.Standings(structure, roster),
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal final snapshot",
			slog.Int("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	key := fmt.Sprintf("tournaments/%d/final-structure.json", t.ID)
	if _, err := s.archive.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		s.logger.ErrorContext(ctx, "failed to archive final snapshot",
			slog.Int("tournament_id", t.ID), slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "final structure archived",
		slog.Int("tournament_id", t.ID), slog.String("key", key))
}
