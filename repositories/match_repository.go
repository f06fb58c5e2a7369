package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/bracketforge/tournament-engine/models"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchVersionConflict    = errors.New("match was modified concurrently")
	ErrMatchTournamentInvalid  = errors.New("match references an unknown tournament")
	ErrMatchParticipantInvalid = errors.New("match references an unknown participant")
)

// MatchRepository persists the ledger. Match ids are scoped to their
// tournament (composite primary key), so the engine can assign them at
// generation time and downstream links survive unchanged.
type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)

	// UpdateResult writes every mutable column under an optimistic
	// version check and bumps the version. Zero rows means the caller's
	// snapshot is stale.
	UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error

	MarkInProgress(ctx context.Context, tournamentID, id, version int) error
	ReleaseStaleInProgress(ctx context.Context, olderThan time.Duration) (int64, error)

	DeleteBatch(ctx context.Context, exec SQLExecutor, tournamentID int, ids []int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	tournament_id, id, round, slot_index, section,
	participant_a, participant_b, score_a, score_b,
	status, winner_id,
	next_match_id, next_match_slot, loser_match_id, loser_match_slot,
	solo, repeat_pairing, version, completed_seq, created_at, updated_at`

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, id, round, slot_index, section,
			 participant_a, participant_b, score_a, score_b,
			 status, winner_id,
			 next_match_id, next_match_slot, loser_match_id, loser_match_slot,
			 solo, repeat_pairing, completed_seq)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING version, created_at, updated_at`

	for _, m := range matches {
		err := exec.QueryRowContext(ctx, query,
			m.TournamentID, m.ID, m.Round, m.SlotIndex, m.Section,
			m.ParticipantA, m.ParticipantB, m.ScoreA, m.ScoreB,
			m.Status, m.WinnerID,
			m.NextMatchID, m.NextMatchSlot, m.LoserMatchID, m.LoserMatchSlot,
			m.Solo, m.RepeatPairing, m.CompletedSeq,
		).Scan(&m.Version, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
			return r.handleMatchError(err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.TournamentID, &m.ID, &m.Round, &m.SlotIndex, &m.Section,
			&m.ParticipantA, &m.ParticipantB, &m.ScoreA, &m.ScoreB,
			&m.Status, &m.WinnerID,
			&m.NextMatchID, &m.NextMatchSlot, &m.LoserMatchID, &m.LoserMatchSlot,
			&m.Solo, &m.RepeatPairing, &m.Version, &m.CompletedSeq, &m.CreatedAt, &m.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches
		SET participant_a = $1, participant_b = $2,
		    score_a = $3, score_b = $4,
		    status = $5, winner_id = $6,
		    repeat_pairing = $7, completed_seq = $8,
		    version = version + 1, updated_at = now()
		WHERE tournament_id = $9 AND id = $10 AND version = $11
		RETURNING version, updated_at`

	err := exec.QueryRowContext(ctx, query,
		m.ParticipantA, m.ParticipantB,
		m.ScoreA, m.ScoreB,
		m.Status, m.WinnerID,
		m.RepeatPairing, m.CompletedSeq,
		m.TournamentID, m.ID, m.Version,
	).Scan(&m.Version, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchVersionConflict
		}
		return r.handleMatchError(err)
	}
	return nil
}

// MarkInProgress flips a ready match to in_progress so two scorekeepers
// cannot both open the same match. The version check makes it a CAS.
func (r *postgresMatchRepository) MarkInProgress(ctx context.Context, tournamentID, id, version int) error {
	query := `
		UPDATE matches
		SET status = $1, version = version + 1, updated_at = now()
		WHERE tournament_id = $2 AND id = $3 AND version = $4 AND status = $5`

	result, err := r.db.ExecContext(ctx, query,
		models.MatchStatusInProgress, tournamentID, id, version, models.MatchStatusReady)
	if err != nil {
		return fmt.Errorf("failed to mark match %d in progress: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchVersionConflict)
}

// ReleaseStaleInProgress returns abandoned in_progress matches to ready
// so the scheduler can hand them out again.
func (r *postgresMatchRepository) ReleaseStaleInProgress(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE matches
		SET status = $1, version = version + 1, updated_at = now()
		WHERE status = $2 AND updated_at < now() - $3::interval`

	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	result, err := r.db.ExecContext(ctx, query, models.MatchStatusReady, models.MatchStatusInProgress, interval)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale matches: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresMatchRepository) DeleteBatch(ctx context.Context, exec SQLExecutor, tournamentID int, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM matches WHERE tournament_id = $1 AND id = ANY($2)`
	result, err := exec.ExecContext(ctx, query, tournamentID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to delete matches of tournament %d: %w", tournamentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected != int64(len(ids)) {
		return ErrMatchNotFound
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_participant_a_fkey", "matches_participant_b_fkey", "matches_winner_id_fkey":
			return ErrMatchParticipantInvalid
		}
	}
	return err
}
