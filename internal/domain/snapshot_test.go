package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func midGameMatch(t *testing.T) *Match {
	t.Helper()
	cfg := testConfig(WinLastStanding, "a", "b", "c")
	cfg.TimeLimitSeconds = 30

	m := startedMatch(t, cfg)
	require.Equal(t, OutcomeAccepted, m.SubmitWord("さかな", "a").Kind)
	require.Equal(t, OutcomeEliminated, m.SubmitWord("なごん", "b").Kind)
	require.Equal(t, OutcomeAccepted, m.SubmitWord("なす", "c").Kind)
	return m
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := midGameMatch(t)
	snap := m.Snapshot()

	restored, err := RestoreMatch(snap, nil)
	require.NoError(t, err)

	assert.Equal(t, m.Phase(), restored.Phase())
	assert.Equal(t, m.TurnCounter(), restored.TurnCounter())
	assert.Equal(t, m.UsedWords(), restored.UsedWords())
	assert.Equal(t, m.Attributions(), restored.Attributions())
	assert.Equal(t, m.EliminationLog(), restored.EliminationLog())
	assert.Equal(t, m.TimeRemaining(), restored.TimeRemaining())
	assert.True(t, restored.IsEliminated("b"))

	holder, ok := restored.CurrentTurnHolder()
	require.True(t, ok)
	expected, _ := m.CurrentTurnHolder()
	assert.Equal(t, expected.ID, holder.ID)

	// The restored match keeps playing normally
	outcome := restored.SubmitWord("すいか", holder.ID)
	assert.Equal(t, OutcomeAccepted, outcome.Kind)
}

func TestSnapshotSurvivesJSON(t *testing.T) {
	snap := midGameMatch(t).Snapshot()

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := RestoreMatch(decoded, nil)
	require.NoError(t, err)
	assert.Equal(t, snap.UsedWords, restored.UsedWords())
	assert.Equal(t, snap.TurnCounter, restored.TurnCounter())
}

func TestSnapshotOfEndedMatch(t *testing.T) {
	m := startedMatch(t, testConfig(WinLastStanding, "a", "b"))
	require.Equal(t, OutcomeEliminated, m.SubmitWord("みかん", "a").Kind)
	require.Equal(t, PhaseEnded, m.Phase())

	restored, err := RestoreMatch(m.Snapshot(), nil)
	require.NoError(t, err)

	assert.Equal(t, PhaseEnded, restored.Phase())
	assert.Equal(t, "last standing", restored.EndReason())

	winner := restored.Winner()
	require.NotNil(t, winner)
	assert.Equal(t, "b", winner.ID)

	// Terminal after restore too
	assert.Equal(t, OutcomeGameNotActive, restored.SubmitWord("さかな", "b").Kind)
}

func TestRestoreRejectsCorruptSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"unknown phase", func(s *Snapshot) { s.Phase = "WAITING" }},
		{"negative turn counter", func(s *Snapshot) { s.TurnCounter = -1 }},
		{"negative time remaining", func(s *Snapshot) { s.TimeRemainingSeconds = -5 }},
		{"attribution count mismatch", func(s *Snapshot) { s.Attributions = s.Attributions[:1] }},
		{"attribution word mismatch", func(s *Snapshot) { s.Attributions[0].Word = "ちがう" }},
		{"attribution unknown participant", func(s *Snapshot) { s.Attributions[0].ParticipantID = "zz" }},
		{"duplicate used word", func(s *Snapshot) {
			s.UsedWords = append(s.UsedWords, s.UsedWords[0])
			s.Attributions = append(s.Attributions, s.Attributions[0])
		}},
		{"elimination of unknown participant", func(s *Snapshot) { s.EliminationLog[0].ParticipantID = "zz" }},
		{"elimination rank out of sequence", func(s *Snapshot) { s.EliminationLog[0].Rank = 9 }},
		{"turn index beyond active count", func(s *Snapshot) { s.TurnIndex = 5 }},
		{"winner on running match", func(s *Snapshot) { s.WinnerID = "a" }},
		{"unknown winner", func(s *Snapshot) {
			s.Phase = PhaseEnded
			s.WinnerID = "zz"
		}},
		{"everyone eliminated but still active", func(s *Snapshot) {
			s.EliminationLog = []Elimination{
				{ParticipantID: "a", Reason: "time limit exceeded", Rank: 1},
				{ParticipantID: "b", Reason: "time limit exceeded", Rank: 2},
				{ParticipantID: "c", Reason: "time limit exceeded", Rank: 3},
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := midGameMatch(t).Snapshot()
			tt.mutate(&snap)

			_, err := RestoreMatch(snap, nil)
			assert.ErrorIs(t, err, ErrRestoreFailed)
		})
	}
}

func TestRestoreRejectsInvalidConfig(t *testing.T) {
	_, err := RestoreMatch(Snapshot{Phase: PhaseIdle}, nil)
	assert.ErrorIs(t, err, ErrRestoreFailed)
}

func TestRestoreRejectsOversizedWordList(t *testing.T) {
	snap := midGameMatch(t).Snapshot()

	snap.UsedWords = make([]string, MaxSnapshotWords+1)
	snap.Attributions = make([]WordAttribution, MaxSnapshotWords+1)

	_, err := RestoreMatch(snap, nil)
	assert.ErrorIs(t, err, ErrRestoreFailed)
}
