package app

import (
	"math/rand"
	"sync"
	"time"

	"shiritori/internal/domain"
)

// BuiltinWords is a small curated hiragana vocabulary used for computer
// turns. It only exists to exercise the WordSource seam; a real deployment
// plugs in a dictionary-backed source.
var BuiltinWords = []string{
	// Food
	"さかな", "なす", "すいか", "かれー", "りんご", "ごま", "まめ",
	"めんつゆ", "とまと", "いちご", "たまご", "ごぼう", "こめ", "うなぎ",
	"そば", "ばなな", "なっとう", "うめ", "めんたいこ", "こんぶ",
	// Animals
	"ねこ", "こあら", "らくだ", "たぬき", "きつね", "いぬ", "ぬま",
	"うさぎ", "ぎんこう", "うし", "しか", "かめ", "めだか", "かえる",
	"るりかけす", "とら", "らっこ", "ねずみ", "みみず", "ずがいこつ",
	// Objects
	"つくえ", "えんぴつ", "つみき", "きもの", "のり", "りゅっく",
	"かさ", "さいふ", "ふね", "とけい", "いす", "すずめ", "くるま",
	"まくら", "らっぱ", "はさみ", "みかづき", "きって", "てがみ",
	// Places and nature
	"やま", "まち", "ちず", "ずけい", "いけ", "けむり", "りく",
	"くも", "もり", "りんどう", "うみ", "みなと", "とうだい", "いわ",
	"わに", "にじ", "じてんしゃ", "やね", "ねつ", "つき", "きのこ",
	"かわ", "わた", "たいよう", "うちゅう", "そら", "らんぷ",
}

// BuiltinWordSource picks random candidates from the builtin vocabulary.
// Difficulty controls word length: easy players only know short words, hard
// players prefer long ones.
type BuiltinWordSource struct {
	mu    sync.Mutex
	words []string
	rng   *rand.Rand
}

// NewBuiltinWordSource creates a word source over the builtin vocabulary.
// Pass a seeded generator for deterministic suggestions, or nil.
func NewBuiltinWordSource(rng *rand.Rand) *BuiltinWordSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &BuiltinWordSource{
		words: BuiltinWords,
		rng:   rng,
	}
}

// Suggest implements domain.WordSource
func (s *BuiltinWordSource) Suggest(startingChar rune, difficulty domain.Difficulty) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]string, 0, len(s.words))
	for _, w := range s.words {
		if !matchesDifficulty(w, difficulty) {
			continue
		}
		if startingChar != 0 {
			normalized := []rune(domain.Normalize(w))
			if len(normalized) == 0 || normalized[0] != startingChar {
				continue
			}
		}
		candidates = append(candidates, w)
	}

	if len(candidates) == 0 {
		return "", false
	}

	return candidates[s.rng.Intn(len(candidates))], true
}

func matchesDifficulty(word string, difficulty domain.Difficulty) bool {
	length := len([]rune(word))
	switch difficulty {
	case domain.DifficultyEasy:
		return length <= 3
	case domain.DifficultyHard:
		return length >= 3
	default:
		return true
	}
}
