package domain

import (
	"math/rand"
	"strings"
	"time"
)

// Match owns all mutable state of one shiritori match: turn order,
// submissions, eliminations, clock and win resolution. It is not safe for
// concurrent use; exactly one caller (see app.MatchSession) must serialize
// every operation, including clock ticks.
type Match struct {
	config       MatchConfig
	participants map[string]Participant
	order        []string // resolved turn order, never mutated after creation

	// Turn ownership is an explicit index into the current active order,
	// advanced only when a turn completes. turnCounter counts completed
	// turns and never decreases.
	turnIndex   int
	turnCounter int

	usedWords      []string
	attributions   []WordAttribution
	eliminated     map[string]struct{}
	eliminationLog []Elimination

	winner        *Participant
	timeRemaining int
	phase         Phase
	endReason     string

	startedAt time.Time
	endedAt   time.Time

	rng *rand.Rand

	turnObservers []TurnChangeObserver
	endObservers  []MatchEndObserver
}

// NewMatch creates a match in the Idle phase. The random source drives
// winner selection under the FirstElimination rule; pass a seeded generator
// in tests for deterministic outcomes, or nil for a time-seeded one.
func NewMatch(cfg MatchConfig, rng *rand.Rand) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	participants := make(map[string]Participant, len(cfg.Participants))
	for _, p := range cfg.Participants {
		participants[p.ID] = p
	}

	return &Match{
		config:        cfg,
		participants:  participants,
		order:         cfg.resolveTurnOrder(),
		usedWords:     make([]string, 0),
		attributions:  make([]WordAttribution, 0),
		eliminated:    make(map[string]struct{}),
		timeRemaining: cfg.TimeLimitSeconds,
		phase:         PhaseIdle,
		rng:           rng,
	}, nil
}

// OnTurnChange registers an observer notified whenever the turn advances
func (m *Match) OnTurnChange(fn TurnChangeObserver) {
	m.turnObservers = append(m.turnObservers, fn)
}

// OnMatchEnd registers an observer notified once when the match ends
func (m *Match) OnMatchEnd(fn MatchEndObserver) {
	m.endObservers = append(m.endObservers, fn)
}

// Config returns the immutable match configuration
func (m *Match) Config() MatchConfig {
	return m.config
}

// Phase returns the current lifecycle phase
func (m *Match) Phase() Phase {
	return m.phase
}

// TurnCounter returns the number of completed turns
func (m *Match) TurnCounter() int {
	return m.turnCounter
}

// TimeRemaining returns the seconds left on the current turn's clock
func (m *Match) TimeRemaining() int {
	return m.timeRemaining
}

// Winner returns the winning participant, or nil for a draw or an
// unfinished match
func (m *Match) Winner() *Participant {
	if m.winner == nil {
		return nil
	}
	w := *m.winner
	return &w
}

// EndReason returns why the match ended, empty while it is running
func (m *Match) EndReason() string {
	return m.endReason
}

// UsedWords returns a copy of the accepted word chain in play order
func (m *Match) UsedWords() []string {
	return append([]string(nil), m.usedWords...)
}

// Attributions returns a copy of the (word, player) record in play order
func (m *Match) Attributions() []WordAttribution {
	return append([]WordAttribution(nil), m.attributions...)
}

// EliminationLog returns a copy of the eliminations in order of occurrence
func (m *Match) EliminationLog() []Elimination {
	return append([]Elimination(nil), m.eliminationLog...)
}

// IsEliminated reports whether the participant has been eliminated
func (m *Match) IsEliminated(id string) bool {
	_, out := m.eliminated[id]
	return out
}

// Participant looks up a participant by id
func (m *Match) Participant(id string) (Participant, bool) {
	p, ok := m.participants[id]
	return p, ok
}

// ActiveOrder returns the configured turn order with eliminated
// participants removed
func (m *Match) ActiveOrder() []string {
	active := make([]string, 0, len(m.order))
	for _, id := range m.order {
		if _, out := m.eliminated[id]; !out {
			active = append(active, id)
		}
	}
	return active
}

// CurrentTurnHolder returns the participant entitled to submit a word.
// The second return is false when no active participant remains.
func (m *Match) CurrentTurnHolder() (Participant, bool) {
	active := m.ActiveOrder()
	if len(active) == 0 {
		return Participant{}, false
	}
	return m.participants[active[m.turnIndex%len(active)]], true
}

// Start moves the match from Idle to Active and announces the first
// turn-holder.
func (m *Match) Start() error {
	if !m.phase.CanTransitionTo(PhaseActive) || m.phase != PhaseIdle {
		return ErrInvalidTransition
	}

	m.phase = PhaseActive
	m.startedAt = time.Now()
	m.timeRemaining = m.config.TimeLimitSeconds

	m.notifyTurnChange()
	return nil
}

// Pause stops play without touching any other state
func (m *Match) Pause() error {
	if m.phase != PhaseActive {
		return ErrInvalidTransition
	}
	m.phase = PhasePaused
	return nil
}

// Resume restarts a paused match
func (m *Match) Resume() error {
	if m.phase != PhasePaused {
		return ErrInvalidTransition
	}
	m.phase = PhaseActive
	return nil
}

// End forces the match into the terminal phase regardless of win-condition
// evaluation (user-initiated quit). The winner stays whatever it was, so a
// forfeit records as a draw. Calling End on an ended match is a no-op.
func (m *Match) End() {
	m.finish("aborted")
}

// SubmitWord processes a word submission by the given participant and
// returns a typed outcome. Rejections leave the match state untouched.
func (m *Match) SubmitWord(word, byParticipantID string) SubmissionOutcome {
	if m.phase != PhaseActive {
		return rejected(OutcomeGameNotActive, "the match is not active")
	}

	holder, ok := m.CurrentTurnHolder()
	if !ok {
		// Degenerate: active with nobody left. Resolve as a draw rather
		// than crash.
		m.winner = nil
		m.finish("all eliminated")
		return rejected(OutcomeGameNotActive, "no active participants remain")
	}

	if byParticipantID != holder.ID {
		return rejected(OutcomeWrongTurn, "it is not your turn")
	}

	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return rejected(OutcomeInvalidWord, "empty word")
	}

	chain := append(m.UsedWords(), trimmed)
	verdict := ValidateChain(chain)

	switch verdict.Violation {
	case ChainOK:
		m.usedWords = append(m.usedWords, trimmed)
		m.attributions = append(m.attributions, WordAttribution{
			Word:          trimmed,
			ParticipantID: holder.ID,
		})
		m.timeRemaining = m.config.TimeLimitSeconds
		m.advanceTurn()
		return accepted(trimmed)

	case ChainForbiddenTerminal:
		m.eliminateCurrent("forbidden terminal sound")
		return SubmissionOutcome{
			Kind:    OutcomeEliminated,
			Message: verdict.Message(),
			Word:    trimmed,
		}

	case ChainDuplicateWord:
		return rejected(OutcomeDuplicateWord, verdict.Message())

	case ChainUnacceptableWord, ChainBrokenConnection, ChainEmptyInput:
		return rejected(OutcomeInvalidWord, verdict.Message())
	}

	return rejected(OutcomeInvalidWord, verdict.Message())
}

// SkipTurn eliminates the current turn-holder for the given reason, used
// for timeouts and for computer players with no legal word. It is a no-op
// unless the match is active.
func (m *Match) SkipTurn(reason string) {
	if m.phase != PhaseActive {
		return
	}
	if _, ok := m.CurrentTurnHolder(); !ok {
		return
	}
	m.eliminateCurrent(reason)
}

// TickSecond applies one second of clock while the match is active and a
// limit is configured. Reaching zero eliminates the current turn-holder and
// resets the countdown for the next one. Returns true when the clock
// expired on this tick.
func (m *Match) TickSecond() bool {
	if m.phase != PhaseActive || m.config.TimeLimitSeconds == 0 {
		return false
	}

	m.timeRemaining--
	if m.timeRemaining > 0 {
		return false
	}

	m.SkipTurn("time limit exceeded")
	return true
}

// advanceTurn completes the current turn and announces the next holder
func (m *Match) advanceTurn() {
	active := m.ActiveOrder()
	if len(active) == 0 {
		return
	}

	m.turnCounter++
	m.turnIndex = (m.turnIndex + 1) % len(active)
	m.notifyTurnChange()
}

// eliminateCurrent removes the current turn-holder from play, re-evaluates
// the win condition, and when the match continues hands the turn slot to
// the holder's successor.
func (m *Match) eliminateCurrent(reason string) {
	holder, ok := m.CurrentTurnHolder()
	if !ok {
		return
	}

	// Pin the index to the holder's position before the active list shrinks
	active := m.ActiveOrder()
	m.turnIndex = m.turnIndex % len(active)

	m.eliminated[holder.ID] = struct{}{}
	m.eliminationLog = append(m.eliminationLog, Elimination{
		ParticipantID: holder.ID,
		Reason:        reason,
		Rank:          len(m.eliminationLog) + 1,
	})

	m.evaluateWinCondition()
	if m.phase == PhaseEnded {
		return
	}

	// Removing the holder already shifted their successor into this slot
	remaining := m.ActiveOrder()
	m.turnCounter++
	m.turnIndex = m.turnIndex % len(remaining)
	m.timeRemaining = m.config.TimeLimitSeconds
	m.notifyTurnChange()
}

// evaluateWinCondition runs after every elimination, never after a mere
// rejection.
func (m *Match) evaluateWinCondition() {
	active := m.ActiveOrder()

	switch {
	case len(active) == 1:
		winner := m.participants[active[0]]
		m.winner = &winner
		m.finish("last standing")

	case len(active) == 0:
		m.winner = nil
		m.finish("all eliminated")

	case m.config.WinCondition == WinFirstElimination && len(m.eliminationLog) > 0:
		m.winner = m.pickFirstEliminationWinner(active)
		m.finish("first-elimination rule")
	}
}

// pickFirstEliminationWinner chooses uniformly at random among the active
// participants excluding the current turn-holder, falling back to the full
// active set if that exclusion leaves nobody.
func (m *Match) pickFirstEliminationWinner(active []string) *Participant {
	holderID := active[m.turnIndex%len(active)]

	candidates := make([]string, 0, len(active))
	for _, id := range active {
		if id != holderID {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		candidates = active
	}

	winner := m.participants[candidates[m.rng.Intn(len(candidates))]]
	return &winner
}

// finish transitions to the terminal phase exactly once and notifies the
// match-end observers.
func (m *Match) finish(reason string) {
	if m.phase == PhaseEnded {
		return
	}

	m.phase = PhaseEnded
	m.endReason = reason
	m.endedAt = time.Now()

	summary := m.Summary()
	for _, fn := range m.endObservers {
		fn(summary)
	}
}

// Summary builds the match-end report
func (m *Match) Summary() MatchSummary {
	duration := 0
	if !m.startedAt.IsZero() {
		end := m.endedAt
		if end.IsZero() {
			end = time.Now()
		}
		duration = int(end.Sub(m.startedAt).Seconds())
	}

	return MatchSummary{
		Winner:          m.Winner(),
		EndReason:       m.endReason,
		UsedWords:       m.UsedWords(),
		EliminationLog:  m.EliminationLog(),
		DurationSeconds: duration,
	}
}

func (m *Match) notifyTurnChange() {
	holder, ok := m.CurrentTurnHolder()
	if !ok {
		return
	}
	for _, fn := range m.turnObservers {
		fn(holder)
	}
}
