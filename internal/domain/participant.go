package domain

// Role distinguishes human-controlled participants from computer players
type Role string

const (
	RoleHuman    Role = "HUMAN"
	RoleComputer Role = "COMPUTER"
)

// Difficulty tunes how the word source picks candidates for computer players
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyNormal Difficulty = "NORMAL"
	DifficultyHard   Difficulty = "HARD"
)

// Participant is a player registered for a match. Identity is fixed for the
// lifetime of the match; all fields are set at match setup.
type Participant struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	Difficulty Difficulty `json:"difficulty,omitempty"` // computer players only
}

// NewHuman creates a human participant
func NewHuman(id, name string) Participant {
	return Participant{
		ID:   id,
		Name: name,
		Role: RoleHuman,
	}
}

// NewComputer creates a computer participant with the given difficulty
func NewComputer(id, name string, difficulty Difficulty) Participant {
	if difficulty == "" {
		difficulty = DifficultyNormal
	}
	return Participant{
		ID:         id,
		Name:       name,
		Role:       RoleComputer,
		Difficulty: difficulty,
	}
}

// IsComputer returns true if this participant is computer-controlled
func (p Participant) IsComputer() bool {
	return p.Role == RoleComputer
}
