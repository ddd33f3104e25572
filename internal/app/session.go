package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"shiritori/internal/domain"
)

const (
	// DefaultTickInterval is how often the match clock fires
	DefaultTickInterval = 1 * time.Second

	// DefaultThinkDelay is how long a computer player "thinks" before its
	// automated move is applied
	DefaultThinkDelay = 1500 * time.Millisecond

	// maxSuggestAttempts bounds how often a computer turn re-asks the word
	// source when a suggestion collides with an already-used word
	maxSuggestAttempts = 3
)

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetParticipantID() string
	Close() error
}

// SessionOptions tunes session timing; zero values pick the defaults
type SessionOptions struct {
	TickInterval time.Duration
	ThinkDelay   time.Duration
}

// MatchSession wraps a match with the single-writer serialization the
// engine requires: submissions, phase changes, clock ticks and automated
// moves all run under one mutex. It also owns the clock goroutine, the
// pending computer-move timer, and event fan-out to clients.
type MatchSession struct {
	code  string
	match *domain.Match
	words domain.WordSource
	mu    sync.RWMutex

	clients   map[string]ClientConnection // participantID -> client
	clientsMu sync.RWMutex
	logger    *zap.Logger

	tickInterval time.Duration
	thinkDelay   time.Duration

	// clockDone is non-nil while the clock goroutine runs; closing it under
	// mu stops the clock synchronously. A tick already waiting on mu
	// re-checks the channel before mutating, so a late tick never lands on
	// a paused or ended match.
	clockDone chan struct{}

	// botTimer is the pending automated move, nil when none is scheduled
	botTimer *time.Timer

	events chan *domain.MatchEvent
	done   chan struct{}

	createdAt time.Time
}

// NewMatchSession creates a session around a match and starts its event
// broadcaster. The word source feeds automated computer turns.
func NewMatchSession(code string, match *domain.Match, words domain.WordSource, logger *zap.Logger, opts SessionOptions) *MatchSession {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.ThinkDelay <= 0 {
		opts.ThinkDelay = DefaultThinkDelay
	}

	s := &MatchSession{
		code:         code,
		match:        match,
		words:        words,
		clients:      make(map[string]ClientConnection),
		logger:       logger,
		tickInterval: opts.TickInterval,
		thinkDelay:   opts.ThinkDelay,
		events:       make(chan *domain.MatchEvent, 100),
		done:         make(chan struct{}),
		createdAt:    time.Now(),
	}

	// Observers fire synchronously inside engine operations, which all run
	// under s.mu, so touching session state here is safe.
	match.OnTurnChange(s.handleTurnChange)
	match.OnMatchEnd(s.handleMatchEnd)

	go s.eventLoop()

	return s
}

// GetCode returns the join code of this match
func (s *MatchSession) GetCode() string {
	return s.code
}

// GetCreatedAt returns when the session was created
func (s *MatchSession) GetCreatedAt() time.Time {
	return s.createdAt
}

// GetPhase returns the current match phase
func (s *MatchSession) GetPhase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match.Phase()
}

// GetParticipant looks up a participant of this match
func (s *MatchSession) GetParticipant(id string) (domain.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match.Participant(id)
}

// GetClientCount returns the number of connected clients
func (s *MatchSession) GetClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// RegisterClient registers a client connection for a participant
func (s *MatchSession) RegisterClient(participantID string, client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[participantID] = client
}

// UnregisterClient removes a client connection
func (s *MatchSession) UnregisterClient(participantID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, participantID)
}

// Start activates the match and, when a time limit is configured, starts
// the countdown.
func (s *MatchSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.match.Start(); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventMatchStarted, s.code, s.stateLocked()))
	s.startClockLocked()

	return nil
}

// Pause stops the countdown and blocks submissions. The clock is stopped
// synchronously; a tick in flight is discarded.
func (s *MatchSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.match.Pause(); err != nil {
		return err
	}

	s.stopClockLocked()
	s.cancelBotLocked()
	s.queueEvent(domain.NewEvent(domain.EventMatchPaused, s.code, nil))

	return nil
}

// Resume restarts a paused match and its countdown
func (s *MatchSession) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.match.Resume(); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventMatchResumed, s.code, s.stateLocked()))
	s.startClockLocked()

	// The turn-holder did not change while paused, but a pending computer
	// move was cancelled; reschedule it.
	if holder, ok := s.match.CurrentTurnHolder(); ok && holder.IsComputer() {
		s.scheduleComputerMoveLocked(holder)
	}

	return nil
}

// ResumeClock restarts the countdown and any pending computer move for a
// match restored in the Active phase; a no-op otherwise.
func (s *MatchSession) ResumeClock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.match.Phase() != domain.PhaseActive {
		return
	}

	s.startClockLocked()
	if holder, ok := s.match.CurrentTurnHolder(); ok && holder.IsComputer() {
		s.scheduleComputerMoveLocked(holder)
	}
}

// Quit force-ends the match (user-initiated). The winner stays whatever it
// was, so a forfeit records as a draw.
func (s *MatchSession) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.match.End()
}

// SubmitWord applies a word submission and broadcasts its consequences
func (s *MatchSession) SubmitWord(participantID, word string) domain.SubmissionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked(participantID, word)
}

// PassTurn eliminates the caller when they hold the turn, used when a
// player declares they have no legal word.
func (s *MatchSession) PassTurn(participantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	holder, ok := s.match.CurrentTurnHolder()
	if !ok {
		return domain.ErrInvalidTransition
	}
	if holder.ID != participantID {
		return domain.ErrNotYourTurn
	}

	before := len(s.match.EliminationLog())
	s.match.SkipTurn("no word found")
	s.queueEliminationsLocked(before)
	return nil
}

// Snapshot captures the match state for an external store
func (s *MatchSession) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.match.Snapshot()
}

// GetState returns the full observable match state, used when a client
// connects or reconnects.
func (s *MatchSession) GetState() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *MatchSession) stateLocked() map[string]interface{} {
	state := map[string]interface{}{
		"phase":                s.match.Phase(),
		"participants":         s.match.Config().Participants,
		"usedWords":            s.match.UsedWords(),
		"attributions":         s.match.Attributions(),
		"eliminationLog":       s.match.EliminationLog(),
		"turnCounter":          s.match.TurnCounter(),
		"timeRemainingSeconds": s.match.TimeRemaining(),
	}

	if holder, ok := s.match.CurrentTurnHolder(); ok {
		state["currentTurnId"] = holder.ID
	}
	if winner := s.match.Winner(); winner != nil {
		state["winner"] = winner
	}
	if reason := s.match.EndReason(); reason != "" {
		state["endReason"] = reason
	}

	return state
}

func (s *MatchSession) submitLocked(participantID, word string) domain.SubmissionOutcome {
	before := len(s.match.EliminationLog())
	outcome := s.match.SubmitWord(word, participantID)

	switch outcome.Kind {
	case domain.OutcomeAccepted:
		s.queueEvent(domain.NewEvent(domain.EventWordAccepted, s.code, &domain.WordAcceptedPayload{
			Word:          outcome.Word,
			ParticipantID: participantID,
			ChainLength:   len(s.match.UsedWords()),
		}))
	case domain.OutcomeEliminated:
		s.queueEliminationsLocked(before)
	}

	return outcome
}

// handleTurnChange runs under s.mu as an engine observer
func (s *MatchSession) handleTurnChange(holder domain.Participant) {
	s.queueEvent(domain.NewEvent(domain.EventTurnChanged, s.code, &domain.TurnChangedPayload{
		Holder:               holder,
		TurnCounter:          s.match.TurnCounter(),
		TimeRemainingSeconds: s.match.TimeRemaining(),
	}))

	s.cancelBotLocked()
	if holder.IsComputer() {
		s.scheduleComputerMoveLocked(holder)
	}
}

// handleMatchEnd runs under s.mu as an engine observer
func (s *MatchSession) handleMatchEnd(summary domain.MatchSummary) {
	s.stopClockLocked()
	s.cancelBotLocked()

	s.queueEvent(domain.NewEvent(domain.EventMatchEnded, s.code, &domain.MatchEndedPayload{
		Summary: summary,
	}))

	s.logger.Info("match ended",
		zap.String("matchCode", s.code),
		zap.String("reason", summary.EndReason),
		zap.Int("words", len(summary.UsedWords)),
	)
}

// startClockLocked launches the countdown goroutine; idempotent
func (s *MatchSession) startClockLocked() {
	if s.match.Config().TimeLimitSeconds == 0 {
		return
	}
	if s.clockDone != nil {
		return
	}

	done := make(chan struct{})
	s.clockDone = done
	go s.clockLoop(done)
}

// stopClockLocked cancels the countdown; idempotent and synchronous
func (s *MatchSession) stopClockLocked() {
	if s.clockDone == nil {
		return
	}
	close(s.clockDone)
	s.clockDone = nil
}

func (s *MatchSession) clockLoop(done chan struct{}) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()

			// The clock may have been stopped while this tick waited on
			// the mutex; discard it instead of mutating.
			select {
			case <-done:
				s.mu.Unlock()
				return
			default:
			}

			if s.match.Phase() != domain.PhaseActive {
				s.mu.Unlock()
				continue
			}

			before := len(s.match.EliminationLog())
			if s.match.TickSecond() {
				s.queueEliminationsLocked(before)
			} else {
				s.queueEvent(domain.NewEvent(domain.EventCountdown, s.code, &domain.CountdownPayload{
					RemainingSeconds: s.match.TimeRemaining(),
				}))
			}

			s.mu.Unlock()
		}
	}
}

// scheduleComputerMoveLocked arms the thinking-delay timer for an automated
// move. The stale-move guard in playComputerTurn makes a superseded timer
// harmless even if cancellation races its firing.
func (s *MatchSession) scheduleComputerMoveLocked(holder domain.Participant) {
	expectedTurn := s.match.TurnCounter()
	s.botTimer = time.AfterFunc(s.thinkDelay, func() {
		s.playComputerTurn(holder.ID, expectedTurn)
	})
}

// cancelBotLocked drops any pending automated move; idempotent
func (s *MatchSession) cancelBotLocked() {
	if s.botTimer == nil {
		return
	}
	s.botTimer.Stop()
	s.botTimer = nil
}

// playComputerTurn fires after the thinking delay. The match may have ended
// or the turn may have moved on in the meantime, so everything is
// re-validated under the mutex before a word is submitted.
func (s *MatchSession) playComputerTurn(expectedID string, expectedTurn int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.match.Phase() != domain.PhaseActive {
		return
	}

	holder, ok := s.match.CurrentTurnHolder()
	if !ok || holder.ID != expectedID || s.match.TurnCounter() != expectedTurn {
		// Stale: this move was superseded while the timer was pending
		return
	}

	used := s.match.UsedWords()
	var start rune
	if len(used) > 0 {
		normalized := []rune(domain.Normalize(used[len(used)-1]))
		if len(normalized) > 0 {
			start = normalized[len(normalized)-1]
		}
	}

	usedSet := make(map[string]struct{}, len(used))
	for _, w := range used {
		usedSet[w] = struct{}{}
	}

	word := ""
	for attempt := 0; attempt < maxSuggestAttempts; attempt++ {
		candidate, ok := s.words.Suggest(start, holder.Difficulty)
		if !ok {
			break
		}
		if _, dup := usedSet[candidate]; dup {
			continue
		}
		word = candidate
		break
	}

	if word == "" {
		s.logger.Info("computer has no word",
			zap.String("matchCode", s.code),
			zap.String("participantID", holder.ID),
		)
		before := len(s.match.EliminationLog())
		s.match.SkipTurn("no word found")
		s.queueEliminationsLocked(before)
		return
	}

	outcome := s.submitLocked(holder.ID, word)
	if outcome.Kind != domain.OutcomeAccepted && outcome.Kind != domain.OutcomeEliminated {
		// The suggestion did not survive validation; treat it like having
		// no word rather than looping.
		s.logger.Warn("computer word rejected",
			zap.String("matchCode", s.code),
			zap.String("word", word),
			zap.String("outcome", outcome.Kind.String()),
		)
		before := len(s.match.EliminationLog())
		s.match.SkipTurn("no word found")
		s.queueEliminationsLocked(before)
	}
}

// queueEliminationsLocked broadcasts every elimination recorded after the
// given log position.
func (s *MatchSession) queueEliminationsLocked(since int) {
	log := s.match.EliminationLog()
	for _, e := range log[since:] {
		p, _ := s.match.Participant(e.ParticipantID)
		s.queueEvent(domain.NewEvent(domain.EventPlayerEliminated, s.code, &domain.PlayerEliminatedPayload{
			Participant: p,
			Reason:      e.Reason,
			Rank:        e.Rank,
		}))
	}
}

// queueEvent adds an event to the broadcast queue
func (s *MatchSession) queueEvent(event *domain.MatchEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event",
			zap.String("matchCode", s.code),
			zap.String("type", string(event.Type)),
		)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *MatchSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to all connected clients
func (s *MatchSession) broadcastEvent(event *domain.MatchEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for participantID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client",
				zap.String("participantID", participantID),
				zap.Error(err),
			)
		}
	}
}

// Close shuts down the session
func (s *MatchSession) Close() {
	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	s.mu.Lock()
	s.stopClockLocked()
	s.cancelBotLocked()
	s.mu.Unlock()

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
