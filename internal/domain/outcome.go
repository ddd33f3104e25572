package domain

import "fmt"

// ChainViolation enumerates the closed set of reasons a word sequence is not
// a legal chain.
type ChainViolation int

const (
	ChainOK ChainViolation = iota
	ChainEmptyInput
	ChainDuplicateWord
	ChainUnacceptableWord
	ChainForbiddenTerminal
	ChainBrokenConnection
)

// ChainVerdict is the result of validating a word sequence. Word carries the
// offending word for per-word violations; Prev/Next carry the pair for a
// broken connection.
type ChainVerdict struct {
	Violation ChainViolation `json:"violation"`
	Word      string         `json:"word,omitempty"`
	Prev      string         `json:"prev,omitempty"`
	Next      string         `json:"next,omitempty"`
}

// Valid reports whether the chain passed every check
func (v ChainVerdict) Valid() bool {
	return v.Violation == ChainOK
}

// Message renders a player-facing description of the verdict
func (v ChainVerdict) Message() string {
	switch v.Violation {
	case ChainOK:
		return ""
	case ChainEmptyInput:
		return "no words to validate"
	case ChainDuplicateWord:
		return fmt.Sprintf("%q has already been used", v.Word)
	case ChainUnacceptableWord:
		return fmt.Sprintf("%q is not an acceptable word", v.Word)
	case ChainForbiddenTerminal:
		return fmt.Sprintf("%q ends with the forbidden sound %c", v.Word, ForbiddenTerminal)
	case ChainBrokenConnection:
		return fmt.Sprintf("%q does not follow %q", v.Next, v.Prev)
	}
	return "invalid chain"
}

// OutcomeKind enumerates the closed set of results a word submission can
// produce. Rejections leave the match untouched; Eliminated is a successful
// state transition, not an error.
type OutcomeKind int

const (
	OutcomeAccepted OutcomeKind = iota
	OutcomeEliminated
	OutcomeWrongTurn
	OutcomeGameNotActive
	OutcomeInvalidWord
	OutcomeDuplicateWord
)

// String returns a wire-friendly name for the outcome kind
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeEliminated:
		return "eliminated"
	case OutcomeWrongTurn:
		return "wrong_turn"
	case OutcomeGameNotActive:
		return "game_not_active"
	case OutcomeInvalidWord:
		return "invalid_word"
	case OutcomeDuplicateWord:
		return "duplicate_word"
	}
	return "unknown"
}

// SubmissionOutcome is returned by Match.SubmitWord for every submission
type SubmissionOutcome struct {
	Kind    OutcomeKind `json:"kind"`
	Message string      `json:"message,omitempty"`
	Word    string      `json:"word,omitempty"`
}

func accepted(word string) SubmissionOutcome {
	return SubmissionOutcome{Kind: OutcomeAccepted, Word: word}
}

func rejected(kind OutcomeKind, message string) SubmissionOutcome {
	return SubmissionOutcome{Kind: kind, Message: message}
}
