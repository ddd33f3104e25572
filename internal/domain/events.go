package domain

import "time"

// WordAttribution records who played a word, parallel to the used-word
// list.
type WordAttribution struct {
	Word          string `json:"word"`
	ParticipantID string `json:"participantId"`
}

// Elimination is one entry of the elimination log. Rank is 1 for the first
// player eliminated, 2 for the second, and so on.
type Elimination struct {
	ParticipantID string `json:"participantId"`
	Reason        string `json:"reason"`
	Rank          int    `json:"rank"`
}

// MatchSummary is delivered to match-end observers exactly once, when the
// match reaches its terminal phase.
type MatchSummary struct {
	Winner          *Participant  `json:"winner,omitempty"` // nil = draw
	EndReason       string        `json:"endReason"`
	UsedWords       []string      `json:"usedWords"`
	EliminationLog  []Elimination `json:"eliminationLog"`
	DurationSeconds int           `json:"durationSeconds"`
}

// TurnChangeObserver is notified with the new turn-holder whenever the turn
// advances (including the initial holder on start), so a presentation layer
// can render transitions and schedule automated moves.
type TurnChangeObserver func(holder Participant)

// MatchEndObserver is notified once when the match ends
type MatchEndObserver func(summary MatchSummary)

// EventType represents the type of match event broadcast to clients
type EventType string

const (
	EventMatchStarted     EventType = "MATCH_STARTED"
	EventTurnChanged      EventType = "TURN_CHANGED"
	EventWordAccepted     EventType = "WORD_ACCEPTED"
	EventPlayerEliminated EventType = "PLAYER_ELIMINATED"
	EventMatchPaused      EventType = "MATCH_PAUSED"
	EventMatchResumed     EventType = "MATCH_RESUMED"
	EventMatchEnded       EventType = "MATCH_ENDED"
	EventCountdown        EventType = "COUNTDOWN"
	EventError            EventType = "ERROR"
)

// MatchEvent represents an event that occurred in a match
type MatchEvent struct {
	Type      EventType   `json:"type"`
	MatchCode string      `json:"matchCode"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new match event
func NewEvent(eventType EventType, matchCode string, payload interface{}) *MatchEvent {
	return &MatchEvent{
		Type:      eventType,
		MatchCode: matchCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for broadcast events

// TurnChangedPayload is sent whenever the turn moves to a new holder
type TurnChangedPayload struct {
	Holder               Participant `json:"holder"`
	TurnCounter          int         `json:"turnCounter"`
	TimeRemainingSeconds int         `json:"timeRemainingSeconds"`
}

// WordAcceptedPayload is sent when a submission enters the chain
type WordAcceptedPayload struct {
	Word          string `json:"word"`
	ParticipantID string `json:"participantId"`
	ChainLength   int    `json:"chainLength"`
}

// PlayerEliminatedPayload is sent when a participant is eliminated
type PlayerEliminatedPayload struct {
	Participant Participant `json:"participant"`
	Reason      string      `json:"reason"`
	Rank        int         `json:"rank"`
}

// CountdownPayload is sent on every clock tick while a limit is configured
type CountdownPayload struct {
	RemainingSeconds int `json:"remainingSeconds"`
}

// MatchEndedPayload is sent once when the match ends
type MatchEndedPayload struct {
	Summary MatchSummary `json:"summary"`
}

// ErrorPayload is sent when an error occurs
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
