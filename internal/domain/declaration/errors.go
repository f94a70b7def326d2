package declaration

import "errors"

var (
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrInvalidCorrectionCode = errors.New("correction code must be 0, 1 or 8")
	ErrNothingToSubmit       = errors.New("no closed snapshots to submit")
)
