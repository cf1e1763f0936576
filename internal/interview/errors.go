package interview

import "errors"

// Operation-boundary errors. Handlers map these onto HTTP responses; nothing
// below the boundary mutates state once one of these is returned.
var (
	ErrInvalidConfig           = errors.New("invalid interview config")
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionAlreadyCompleted = errors.New("session already completed")
	ErrSessionNotCompleted     = errors.New("session not completed")
	ErrEmptyAnswer             = errors.New("answer is empty")
	ErrSessionBusy             = errors.New("session has an operation in flight")
)
