package app

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shiritori/internal/domain"
)

// fakeClient records every event broadcast to it
type fakeClient struct {
	mu            sync.Mutex
	participantID string
	events        []*domain.MatchEvent
}

func (c *fakeClient) Send(message interface{}) error {
	event, ok := message.(*domain.MatchEvent)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *fakeClient) GetParticipantID() string { return c.participantID }
func (c *fakeClient) Close() error             { return nil }

func (c *fakeClient) eventTypes() []domain.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]domain.EventType, 0, len(c.events))
	for _, e := range c.events {
		types = append(types, e.Type)
	}
	return types
}

func (c *fakeClient) hasEvent(t domain.EventType) bool {
	for _, et := range c.eventTypes() {
		if et == t {
			return true
		}
	}
	return false
}

// scriptedWords returns its words in order, then reports exhaustion
type scriptedWords struct {
	mu    sync.Mutex
	words []string
}

func (s *scriptedWords) Suggest(startingChar rune, difficulty domain.Difficulty) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.words) == 0 {
		return "", false
	}
	word := s.words[0]
	s.words = s.words[1:]
	return word, true
}

func newTestSession(t *testing.T, cfg domain.MatchConfig, words domain.WordSource) *MatchSession {
	t.Helper()

	match, err := domain.NewMatch(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	session := NewMatchSession("TEST42", match, words, zap.NewNop(), SessionOptions{
		TickInterval: 5 * time.Millisecond,
		ThinkDelay:   5 * time.Millisecond,
	})
	t.Cleanup(session.Close)

	return session
}

func humansConfig(names ...string) domain.MatchConfig {
	participants := make([]domain.Participant, 0, len(names))
	for _, name := range names {
		participants = append(participants, domain.NewHuman(name, name))
	}
	return domain.MatchConfig{
		Participants: participants,
		WinCondition: domain.WinLastStanding,
	}
}

func TestSessionSubmitFlow(t *testing.T) {
	session := newTestSession(t, humansConfig("a", "b"), &scriptedWords{})

	client := &fakeClient{participantID: "a"}
	session.RegisterClient("a", client)

	require.NoError(t, session.Start())
	assert.Equal(t, domain.PhaseActive, session.GetPhase())

	outcome := session.SubmitWord("a", "さかな")
	assert.Equal(t, domain.OutcomeAccepted, outcome.Kind)

	outcome = session.SubmitWord("a", "なす")
	assert.Equal(t, domain.OutcomeWrongTurn, outcome.Kind)

	assert.Eventually(t, func() bool {
		return client.hasEvent(domain.EventMatchStarted) &&
			client.hasEvent(domain.EventTurnChanged) &&
			client.hasEvent(domain.EventWordAccepted)
	}, time.Second, 5*time.Millisecond)

	state := session.GetState()
	assert.Equal(t, []string{"さかな"}, state["usedWords"])
	assert.Equal(t, "b", state["currentTurnId"])
}

func TestSessionClockEliminatesOnTimeout(t *testing.T) {
	cfg := humansConfig("a", "b")
	cfg.TimeLimitSeconds = 2
	session := newTestSession(t, cfg, &scriptedWords{})

	client := &fakeClient{participantID: "b"}
	session.RegisterClient("b", client)

	require.NoError(t, session.Start())

	assert.Eventually(t, func() bool {
		return session.GetPhase() == domain.PhaseEnded
	}, time.Second, 5*time.Millisecond)

	snap := session.Snapshot()
	require.Len(t, snap.EliminationLog, 1)
	assert.Equal(t, "a", snap.EliminationLog[0].ParticipantID)
	assert.Equal(t, "time limit exceeded", snap.EliminationLog[0].Reason)
	assert.Equal(t, "b", snap.WinnerID)

	assert.Eventually(t, func() bool {
		return client.hasEvent(domain.EventPlayerEliminated) &&
			client.hasEvent(domain.EventMatchEnded)
	}, time.Second, 5*time.Millisecond)
}

func TestSessionPauseStopsClock(t *testing.T) {
	cfg := humansConfig("a", "b")
	cfg.TimeLimitSeconds = 1000
	session := newTestSession(t, cfg, &scriptedWords{})

	require.NoError(t, session.Start())
	require.NoError(t, session.Pause())

	frozen := session.Snapshot().TimeRemainingSeconds
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, frozen, session.Snapshot().TimeRemainingSeconds)

	require.NoError(t, session.Resume())
	assert.Eventually(t, func() bool {
		return session.Snapshot().TimeRemainingSeconds < frozen
	}, time.Second, 5*time.Millisecond)
}

func TestSessionComputerPlays(t *testing.T) {
	cfg := domain.MatchConfig{
		Participants: []domain.Participant{
			domain.NewHuman("h", "Hana"),
			domain.NewComputer("c", "Robo", domain.DifficultyNormal),
		},
		WinCondition: domain.WinLastStanding,
	}
	session := newTestSession(t, cfg, &scriptedWords{words: []string{"なす"}})

	require.NoError(t, session.Start())
	require.Equal(t, domain.OutcomeAccepted, session.SubmitWord("h", "さかな").Kind)

	assert.Eventually(t, func() bool {
		return len(session.Snapshot().UsedWords) == 2
	}, time.Second, 5*time.Millisecond)

	snap := session.Snapshot()
	assert.Equal(t, []string{"さかな", "なす"}, snap.UsedWords)
	assert.Equal(t, "c", snap.Attributions[1].ParticipantID)
}

func TestSessionComputerWithoutWordIsEliminated(t *testing.T) {
	cfg := domain.MatchConfig{
		Participants: []domain.Participant{
			domain.NewHuman("h", "Hana"),
			domain.NewComputer("c", "Robo", domain.DifficultyNormal),
		},
		WinCondition: domain.WinLastStanding,
	}
	session := newTestSession(t, cfg, &scriptedWords{})

	require.NoError(t, session.Start())
	require.Equal(t, domain.OutcomeAccepted, session.SubmitWord("h", "さかな").Kind)

	assert.Eventually(t, func() bool {
		return session.GetPhase() == domain.PhaseEnded
	}, time.Second, 5*time.Millisecond)

	snap := session.Snapshot()
	require.Len(t, snap.EliminationLog, 1)
	assert.Equal(t, "c", snap.EliminationLog[0].ParticipantID)
	assert.Equal(t, "no word found", snap.EliminationLog[0].Reason)
	assert.Equal(t, "h", snap.WinnerID)
}

func TestSessionPassTurn(t *testing.T) {
	session := newTestSession(t, humansConfig("a", "b", "c"), &scriptedWords{})
	require.NoError(t, session.Start())

	assert.ErrorIs(t, session.PassTurn("b"), domain.ErrNotYourTurn)

	require.NoError(t, session.PassTurn("a"))
	snap := session.Snapshot()
	require.Len(t, snap.EliminationLog, 1)
	assert.Equal(t, "a", snap.EliminationLog[0].ParticipantID)
	assert.Equal(t, domain.PhaseActive, session.GetPhase())
}

func TestSessionQuitEndsMatch(t *testing.T) {
	session := newTestSession(t, humansConfig("a", "b"), &scriptedWords{})
	require.NoError(t, session.Start())

	session.Quit()

	snap := session.Snapshot()
	assert.Equal(t, domain.PhaseEnded, snap.Phase)
	assert.Equal(t, "aborted", snap.EndReason)
	assert.Empty(t, snap.WinnerID)
}
