package domain

import (
	"fmt"
	"math/rand"
)

// MaxSnapshotWords bounds how many used words a snapshot may carry before
// it is considered corrupt.
const MaxSnapshotWords = 10000

// Snapshot is a serializable image of a match that round-trips exactly back
// into an equivalent MatchState. It embeds the config so an external store
// can restore a match from the snapshot alone.
type Snapshot struct {
	Config               MatchConfig       `json:"config"`
	Phase                Phase             `json:"phase"`
	TurnCounter          int               `json:"turnCounter"`
	TurnIndex            int               `json:"turnIndex"`
	UsedWords            []string          `json:"usedWords"`
	Attributions         []WordAttribution `json:"attributions"`
	EliminationLog       []Elimination     `json:"eliminationLog"`
	WinnerID             string            `json:"winnerId,omitempty"`
	TimeRemainingSeconds int               `json:"timeRemainingSeconds"`
	EndReason            string            `json:"endReason,omitempty"`
}

// Snapshot captures the current match state
func (m *Match) Snapshot() Snapshot {
	winnerID := ""
	if m.winner != nil {
		winnerID = m.winner.ID
	}

	return Snapshot{
		Config:               m.config,
		Phase:                m.phase,
		TurnCounter:          m.turnCounter,
		TurnIndex:            m.turnIndex,
		UsedWords:            m.UsedWords(),
		Attributions:         m.Attributions(),
		EliminationLog:       m.EliminationLog(),
		WinnerID:             winnerID,
		TimeRemainingSeconds: m.timeRemaining,
		EndReason:            m.endReason,
	}
}

// RestoreMatch rebuilds a match from a snapshot. Every invariant is
// re-validated; an inconsistent snapshot is refused with an error wrapping
// ErrRestoreFailed, never silently patched up.
func RestoreMatch(snap Snapshot, rng *rand.Rand) (*Match, error) {
	m, err := NewMatch(snap.Config, rng)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRestoreFailed, err)
	}

	if err := validateSnapshot(m, snap); err != nil {
		return nil, err
	}

	m.phase = snap.Phase
	m.turnCounter = snap.TurnCounter
	m.turnIndex = snap.TurnIndex
	m.usedWords = append([]string(nil), snap.UsedWords...)
	m.attributions = append([]WordAttribution(nil), snap.Attributions...)
	m.timeRemaining = snap.TimeRemainingSeconds
	m.endReason = snap.EndReason

	for _, e := range snap.EliminationLog {
		m.eliminated[e.ParticipantID] = struct{}{}
		m.eliminationLog = append(m.eliminationLog, e)
	}

	if snap.WinnerID != "" {
		winner := m.participants[snap.WinnerID]
		m.winner = &winner
	}

	return m, nil
}

func validateSnapshot(m *Match, snap Snapshot) error {
	switch snap.Phase {
	case PhaseIdle, PhaseActive, PhasePaused, PhaseEnded:
	default:
		return restoreErr("unknown phase %q", snap.Phase)
	}

	if snap.TurnCounter < 0 || snap.TurnIndex < 0 {
		return restoreErr("negative turn counters")
	}

	if snap.TimeRemainingSeconds < 0 {
		return restoreErr("negative time remaining")
	}

	if len(snap.UsedWords) > MaxSnapshotWords {
		return restoreErr("used-word count %d exceeds limit", len(snap.UsedWords))
	}

	if len(snap.Attributions) != len(snap.UsedWords) {
		return restoreErr("attribution count does not match word count")
	}

	seen := make(map[string]struct{}, len(snap.UsedWords))
	for i, w := range snap.UsedWords {
		if _, dup := seen[w]; dup {
			return restoreErr("duplicate used word %q", w)
		}
		seen[w] = struct{}{}

		attr := snap.Attributions[i]
		if attr.Word != w {
			return restoreErr("attribution %d does not match word %q", i, w)
		}
		if _, ok := m.participants[attr.ParticipantID]; !ok {
			return restoreErr("attribution for unknown participant %q", attr.ParticipantID)
		}
	}

	elim := make(map[string]struct{}, len(snap.EliminationLog))
	for i, e := range snap.EliminationLog {
		if _, ok := m.participants[e.ParticipantID]; !ok {
			return restoreErr("elimination of unknown participant %q", e.ParticipantID)
		}
		if _, dup := elim[e.ParticipantID]; dup {
			return restoreErr("participant %q eliminated twice", e.ParticipantID)
		}
		elim[e.ParticipantID] = struct{}{}

		if e.Rank != i+1 {
			return restoreErr("elimination rank %d at position %d", e.Rank, i)
		}
	}

	activeCount := len(m.order) - len(elim)
	if activeCount <= 0 && snap.Phase != PhaseEnded {
		return restoreErr("no active participants in a non-ended match")
	}

	if snap.Phase != PhaseEnded && activeCount > 0 && snap.TurnIndex >= activeCount {
		return restoreErr("turn index %d has no holder among %d active participants",
			snap.TurnIndex, activeCount)
	}

	if snap.WinnerID != "" {
		if _, ok := m.participants[snap.WinnerID]; !ok {
			return restoreErr("unknown winner %q", snap.WinnerID)
		}
		if snap.Phase != PhaseEnded {
			return restoreErr("winner set on a non-ended match")
		}
	}

	return nil
}

func restoreErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrRestoreFailed, fmt.Sprintf(format, args...))
}
