package domain

// WinCondition selects how a match is decided
type WinCondition string

const (
	// WinLastStanding keeps playing until a single participant survives
	WinLastStanding WinCondition = "LAST_STANDING"
	// WinFirstElimination ends the match as soon as anyone is eliminated
	WinFirstElimination WinCondition = "FIRST_ELIMINATION"
)

// MatchConfig holds the immutable setup of a match. TurnOrder may disagree
// with Participants: unknown ids are dropped, unlisted participants are
// appended at the end in participant-list order.
type MatchConfig struct {
	Participants     []Participant `json:"participants"`
	TurnOrder        []string      `json:"turnOrder,omitempty"`
	TimeLimitSeconds int           `json:"timeLimitSeconds"` // 0 = no clock
	WinCondition     WinCondition  `json:"winCondition"`
}

// Validate checks the config for structural problems
func (c MatchConfig) Validate() error {
	if len(c.Participants) == 0 {
		return ErrNoParticipants
	}

	seen := make(map[string]struct{}, len(c.Participants))
	for _, p := range c.Participants {
		if _, dup := seen[p.ID]; dup {
			return ErrDuplicateID
		}
		seen[p.ID] = struct{}{}
	}

	return nil
}

// resolveTurnOrder reconciles the configured order with the participant
// list: listed ids that exist, in list order, deduplicated; then every
// unlisted participant appended in participant order.
func (c MatchConfig) resolveTurnOrder() []string {
	known := make(map[string]struct{}, len(c.Participants))
	for _, p := range c.Participants {
		known[p.ID] = struct{}{}
	}

	order := make([]string, 0, len(c.Participants))
	listed := make(map[string]struct{}, len(c.TurnOrder))

	for _, id := range c.TurnOrder {
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := listed[id]; dup {
			continue
		}
		listed[id] = struct{}{}
		order = append(order, id)
	}

	for _, p := range c.Participants {
		if _, ok := listed[p.ID]; !ok {
			order = append(order, p.ID)
		}
	}

	return order
}
