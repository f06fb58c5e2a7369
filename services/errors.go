package services

import "errors"

// Errors shared across services and the HTTP error mapping. Engine
// sentinels pass through services unchanged; these cover what only the
// service layer can detect.
var (
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTournamentCompleted    = errors.New("tournament is already completed")
	ErrMatchNotFound          = errors.New("match not found")

	// ErrConcurrentModification means the caller acted on a stale
	// snapshot: re-fetch the structure and retry.
	ErrConcurrentModification = errors.New("the match was modified concurrently, refresh and retry")
)
