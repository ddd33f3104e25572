package domain

import "errors"

// Domain errors
var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrNoParticipants     = errors.New("match needs at least one participant")
	ErrDuplicateID        = errors.New("duplicate participant id")
	ErrInvalidTransition  = errors.New("invalid phase transition")
	ErrMatchEnded         = errors.New("match already ended")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrRestoreFailed      = errors.New("snapshot restore failed")
)
