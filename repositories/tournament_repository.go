package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/bracketforge/tournament-engine/models"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentNameTaken     = errors.New("tournament name already taken")
	ErrTournamentWinnerInvalid = errors.New("tournament winner references an unknown participant")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	SetOutcome(ctx context.Context, exec SQLExecutor, id int, winnerID *int, status models.TournamentStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	cfg, err := json.Marshal(t.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal tournament config: %w", err)
	}

	query := `
		INSERT INTO tournaments (name, format, status, config_json)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err = exec.QueryRowContext(ctx, query, t.Name, t.Format, t.Status, cfg).
		Scan(&t.ID, &t.CreatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, format, status, winner_id, config_json, created_at
		FROM tournaments
		WHERE id = $1`

	return r.scanTournament(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, format, status, winner_id, config_json, created_at
		FROM tournaments
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := r.scanTournamentRows(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) SetOutcome(ctx context.Context, exec SQLExecutor, id int, winnerID *int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET winner_id = $1, status = $2 WHERE id = $3`
	result, err := exec.ExecContext(ctx, query, winnerID, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresTournamentRepository) scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	var cfg []byte
	err := row.Scan(&t.ID, &t.Name, &t.Format, &t.Status, &t.WinnerID, &cfg, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament: %w", err)
	}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &t.Config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config of tournament %d: %w", t.ID, err)
		}
	}
	return t, nil
}

func (r *postgresTournamentRepository) scanTournamentRows(rows *sql.Rows) (*models.Tournament, error) {
	return r.scanTournament(rows)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "tournaments_name_key":
			return ErrTournamentNameTaken
		case "tournaments_winner_id_fkey":
			return ErrTournamentWinnerInvalid
		}
	}
	return err
}
