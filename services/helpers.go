package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bracketforge/tournament-engine/models"
)

// runInTransaction wraps fn in a transaction with rollback on error or
// panic. Every write path that touches more than one row goes through
// here so a half-applied report can never reach the ledger.
func runInTransaction(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", err))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// buildStructure assembles the in-memory structure from persisted rows.
func buildStructure(t *models.Tournament, matches []*models.Match) *models.Structure {
	return &models.Structure{
		TournamentID: t.ID,
		Format:       t.Format,
		Config:       t.Config,
		Matches:      matches,
	}
}

func dereferenceMatches(slice []*models.Match) []models.Match {
	result := make([]models.Match, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}
