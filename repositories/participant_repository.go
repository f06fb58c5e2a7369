package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bracketforge/tournament-engine/models"
)

var (
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantTournamentInvalid = errors.New("participant references an unknown tournament")
	ErrParticipantNameTaken         = errors.New("participant display name already taken in this tournament")
)

type ParticipantRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, participants []*models.Participant) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	UpdatePlacements(ctx context.Context, exec SQLExecutor, participants []*models.Participant) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) CreateBatch(ctx context.Context, exec SQLExecutor, participants []*models.Participant) error {
	query := `
		INSERT INTO participants (tournament_id, display_name, seed, placement)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	for _, p := range participants {
		err := exec.QueryRowContext(ctx, query, p.TournamentID, p.DisplayName, p.Seed, p.Placement).
			Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return r.handleParticipantError(err)
		}
	}
	return nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `
		SELECT id, tournament_id, display_name, seed, placement, created_at
		FROM participants
		WHERE tournament_id = $1
		ORDER BY placement, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(&p.ID, &p.TournamentID, &p.DisplayName, &p.Seed, &p.Placement, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

// UpdatePlacements persists the placement slots the generator assigned.
func (r *postgresParticipantRepository) UpdatePlacements(ctx context.Context, exec SQLExecutor, participants []*models.Participant) error {
	query := `UPDATE participants SET placement = $1 WHERE id = $2`
	for _, p := range participants {
		result, err := exec.ExecContext(ctx, query, p.Placement, p.ID)
		if err != nil {
			return fmt.Errorf("failed to update placement of participant %d: %w", p.ID, err)
		}
		if err := checkAffectedRows(result, ErrParticipantNotFound); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresParticipantRepository) handleParticipantError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "participants_tournament_id_fkey":
			return ErrParticipantTournamentInvalid
		case "participants_tournament_id_display_name_key":
			return ErrParticipantNameTaken
		}
	}
	return err
}
