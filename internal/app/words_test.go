package app

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiritori/internal/domain"
)

func TestBuiltinWordSourceSuggestsConnectingWords(t *testing.T) {
	source := NewBuiltinWordSource(rand.New(rand.NewSource(1)))

	for i := 0; i < 20; i++ {
		word, ok := source.Suggest('な', domain.DifficultyNormal)
		require.True(t, ok)

		normalized := []rune(domain.Normalize(word))
		require.NotEmpty(t, normalized)
		assert.Equal(t, 'な', normalized[0])
	}
}

func TestBuiltinWordSourceAnyStart(t *testing.T) {
	source := NewBuiltinWordSource(rand.New(rand.NewSource(1)))

	word, ok := source.Suggest(0, domain.DifficultyNormal)
	require.True(t, ok)
	assert.NotEmpty(t, word)
}

func TestBuiltinWordSourceNoCandidate(t *testing.T) {
	source := NewBuiltinWordSource(nil)

	// Nothing starts with the forbidden terminal
	_, ok := source.Suggest('ん', domain.DifficultyNormal)
	assert.False(t, ok)
}

func TestBuiltinWordSourceDifficulty(t *testing.T) {
	source := NewBuiltinWordSource(rand.New(rand.NewSource(1)))

	for i := 0; i < 20; i++ {
		word, ok := source.Suggest(0, domain.DifficultyEasy)
		require.True(t, ok)
		assert.LessOrEqual(t, len([]rune(word)), 3)
	}

	for i := 0; i < 20; i++ {
		word, ok := source.Suggest(0, domain.DifficultyHard)
		require.True(t, ok)
		assert.GreaterOrEqual(t, len([]rune(word)), 3)
	}
}

func TestBuiltinWordsAreAcceptable(t *testing.T) {
	for _, w := range BuiltinWords {
		assert.True(t, domain.IsAcceptableWord(w), "word %q", w)
		assert.False(t, domain.EndsWithForbiddenTerminal(w), "word %q", w)
	}
}
