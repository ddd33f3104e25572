package domain

// WordSource supplies candidate words for automated (computer) turns. A
// zero startingChar means any opening word is acceptable. Implementations
// return false when they have nothing to offer; the engine responds by
// eliminating the computer participant via SkipTurn.
type WordSource interface {
	Suggest(startingChar rune, difficulty Difficulty) (string, bool)
}
