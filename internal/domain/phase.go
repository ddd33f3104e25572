package domain

// Phase represents the lifecycle phase of a match
type Phase string

const (
	PhaseIdle   Phase = "IDLE"   // Created, not yet started
	PhaseActive Phase = "ACTIVE" // Words being played, clock running
	PhasePaused Phase = "PAUSED" // Clock stopped, no submissions accepted
	PhaseEnded  Phase = "ENDED"  // Terminal; no further state mutation
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseIdle:   {PhaseActive, PhaseEnded},
		PhaseActive: {PhasePaused, PhaseEnded},
		PhasePaused: {PhaseActive, PhaseEnded},
		PhaseEnded:  {},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
