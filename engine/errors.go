package engine

import "errors"

// Engine errors are sentinels so callers can branch with errors.Is and
// surface the specific reason to the scorekeeper. All of them are
// recoverable: fix the input or re-fetch state and retry.
var (
	ErrFormatUnknown            = errors.New("unknown competition format")
	ErrInvalidRosterSize        = errors.New("roster size below the format minimum")
	ErrUnsupportedConfiguration = errors.New("configuration cannot be satisfied by this format")

	ErrMatchNotFound         = errors.New("match not found in structure")
	ErrInvalidScore          = errors.New("scores must be non-negative")
	ErrMatchNotReady         = errors.New("match is not ready: its participants are not decided yet")
	ErrAlreadyCompleted      = errors.New("match already completed; resubmit with the correction flag")
	ErrTieNotAllowed         = errors.New("tie scores are not allowed in this format")
	ErrCorrectionNotPossible = errors.New("correction would invalidate completed matches in a later phase")

	ErrChallengeNotAllowed = errors.New("challenge is not allowed")
)
