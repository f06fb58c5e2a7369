package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bracketforge/tournament-engine/engine"
	"github.com/bracketforge/tournament-engine/models"
	"github.com/bracketforge/tournament-engine/repositories"
)

type ParticipantInput struct {
	DisplayName string `json:"display_name"`
	Seed        *int   `json:"seed,omitempty"`
}

type CreateTournamentInput struct {
	Name         string                `json:"name"`
	Format       models.FormatKind     `json:"format"`
	Participants []ParticipantInput    `json:"participants"`
	Config       models.GenerateConfig `json:"config"`
}

// TournamentView is the full read model of one tournament: the owning
// row, the roster and the entire match ledger.
type TournamentView struct {
	Tournament   *models.Tournament   `json:"tournament"`
	Participants []models.Participant `json:"participants"`
	Matches      []models.Match       `json:"matches"`
}

type StructureService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*TournamentView, error)
	Get(ctx context.Context, tournamentID int) (*TournamentView, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	ListMatches(ctx context.Context, tournamentID int) ([]models.Match, error)
}

type structureService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	logger          *slog.Logger
}

func NewStructureService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) StructureService {
	return &structureService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		logger:          logger,
	}
}

// Create persists the tournament, its roster and the generated
// structure in one transaction: either the whole tournament exists or
// none of it does.
func (s *structureService) Create(ctx context.Context, input CreateTournamentInput) (*TournamentView, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:   strings.TrimSpace(input.Name),
		Format: input.Format,
		Status: models.TournamentStatusActive,
		Config: input.Config,
	}

	var view *TournamentView
	err := runInTransaction(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.tournamentRepo.Create(ctx, tx, tournament); err != nil {
			if errors.Is(err, repositories.ErrTournamentNameTaken) {
				return ErrTournamentNameConflict
			}
			return fmt.Errorf("failed to create tournament: %w", err)
		}

		roster := make([]*models.Participant, 0, len(input.Participants))
		for _, in := range input.Participants {
			roster = append(roster, &models.Participant{
				TournamentID: tournament.ID,
				DisplayName:  strings.TrimSpace(in.DisplayName),
				Seed:         in.Seed,
			})
		}
		if err := s.participantRepo.CreateBatch(ctx, tx, roster); err != nil {
			return fmt.Errorf("failed to create participants: %w", err)
		}

		structure, err := engine.Generate(input.Format, engine.GenerateParams{
			TournamentID: tournament.ID,
			Roster:       roster,
			Config:       input.Config,
		})
		if err != nil {
			return err
		}
		if err := s.participantRepo.UpdatePlacements(ctx, tx, roster); err != nil {
			return err
		}
		if err := s.matchRepo.CreateBatch(ctx, tx, structure.Matches); err != nil {
			return fmt.Errorf("failed to persist structure: %w", err)
		}

		view = &TournamentView{
			Tournament:   tournament,
			Participants: dereferenceParticipants(roster),
			Matches:      dereferenceMatches(structure.Matches),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", tournament.ID),
		slog.String("format", string(tournament.Format)),
		slog.Int("participants", len(view.Participants)),
		slog.Int("matches", len(view.Matches)))
	return view, nil
}

// Get loads the full view; the three reads are independent and run in
// parallel.
func (s *structureService) Get(ctx context.Context, tournamentID int) (*TournamentView, error) {
	view := &TournamentView{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
		}
		view.Tournament = t
		return nil
	})
	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load participants of tournament %d: %w", tournamentID, err)
		}
		view.Participants = dereferenceParticipants(participants)
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load matches of tournament %d: %w", tournamentID, err)
		}
		view.Matches = dereferenceMatches(matches)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *structureService) List(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *structureService) ListMatches(ctx context.Context, tournamentID int) ([]models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	return dereferenceMatches(matches), nil
}

func validateCreateInput(input CreateTournamentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if !input.Format.Valid() {
		return fmt.Errorf("%w: %q", engine.ErrFormatUnknown, input.Format)
	}
	seen := make(map[string]bool, len(input.Participants))
	for _, p := range input.Participants {
		name := strings.TrimSpace(p.DisplayName)
		if name == "" {
			return fmt.Errorf("%w: every participant needs a display name", ErrValidationFailed)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate participant name %q", ErrValidationFailed, name)
		}
		seen[name] = true
		if p.Seed != nil && *p.Seed < 1 {
			return fmt.Errorf("%w: seed of %q must be positive", ErrValidationFailed, name)
		}
	}
	return nil
}

func dereferenceParticipants(slice []*models.Participant) []models.Participant {
	result := make([]models.Participant, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}
