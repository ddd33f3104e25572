package domain

import "strings"

// ForbiddenTerminal is the word-final sound that eliminates the player who
// submits it: no Japanese word starts with ん, so the chain cannot continue.
const ForbiddenTerminal = 'ん'

// Tunable acceptability heuristics. The repetition and digraph checks exist
// to filter garbled speech-to-text output, not to encode linguistic rules.
const (
	// A single kana repeated this many times in a row is rejected
	maxRuneRun = 4
	// A 2- or 3-kana group repeated this many times in a row is rejected
	maxGroupRepeat = 3
)

// foreignDigraphs are two-kana combinations that are rare in native words
// but common in transcription noise. A word more than half covered by them
// is rejected.
var foreignDigraphs = map[string]struct{}{
	"ふぁ": {}, "ふぃ": {}, "ふぇ": {}, "ふぉ": {},
	"てぃ": {}, "でぃ": {}, "でゅ": {}, "とぅ": {},
	"うぃ": {}, "うぇ": {}, "うぉ": {},
	"ゔぁ": {}, "ゔぃ": {}, "ゔぇ": {}, "ゔぉ": {},
	"しぇ": {}, "じぇ": {}, "ちぇ": {},
}

// smallKana maps small kana to the full vowel/consonant form used for
// connectivity comparison: a word ending in ゃ links as if it ended in や.
var smallKana = map[rune]rune{
	'ぁ': 'あ', 'ぃ': 'い', 'ぅ': 'う', 'ぇ': 'え', 'ぉ': 'お',
	'ゃ': 'や', 'ゅ': 'ゆ', 'ょ': 'よ',
	'っ': 'つ', 'ゎ': 'わ',
}

// kanaVowel maps each full hiragana to its vowel, used to resolve the
// long-vowel mark ー (e.g. りーぐ connects on い).
var kanaVowel = map[rune]rune{}

func init() {
	rows := map[rune]string{
		'あ': "あかがさざただなはばぱまやらわ",
		'い': "いきぎしじちぢにひびぴみり",
		'う': "うくぐすずつづぬふぶぷむゆるゔ",
		'え': "えけげせぜてでねへべぺめれ",
		'お': "おこごそぞとどのほぼぽもよろを",
	}
	for vowel, row := range rows {
		for _, r := range row {
			kanaVowel[r] = vowel
		}
	}
}

// Normalize maps a raw word to the canonical form used for connectivity and
// terminal-sound comparison: katakana folded to hiragana, small kana widened,
// and the long-vowel mark replaced by the vowel it lengthens. The stored and
// displayed word is never altered; this form exists only for comparisons.
func Normalize(word string) string {
	out := make([]rune, 0, len(word))

	for _, r := range strings.TrimSpace(word) {
		if r >= 'ァ' && r <= 'ヶ' {
			r -= 'ァ' - 'ぁ'
		}
		if full, ok := smallKana[r]; ok {
			r = full
		}
		if r == 'ー' {
			if len(out) == 0 {
				continue
			}
			if vowel, ok := kanaVowel[out[len(out)-1]]; ok {
				out = append(out, vowel)
			}
			continue
		}
		out = append(out, r)
	}

	return string(out)
}

// IsAcceptableWord checks whether a single word may enter the chain at all:
// non-empty, kana-only, and free of the repetition and foreign-digraph
// patterns that indicate misrecognized speech.
func IsAcceptableWord(word string) bool {
	runes := []rune(strings.TrimSpace(word))
	if len(runes) == 0 {
		return false
	}

	for _, r := range runes {
		if !isKana(r) {
			return false
		}
	}

	if hasExcessiveRepetition(runes) {
		return false
	}

	return !dominatedByForeignDigraphs(runes)
}

// CanFollow reports whether next is a legal successor of previous: the
// normalized final sound of previous must equal the normalized first sound
// of next. Empty inputs never connect.
func CanFollow(previous, next string) bool {
	prev := []rune(Normalize(previous))
	cand := []rune(Normalize(next))

	if len(prev) == 0 || len(cand) == 0 {
		return false
	}

	return prev[len(prev)-1] == cand[0]
}

// EndsWithForbiddenTerminal reports whether the word's normalized final
// sound is the forbidden terminal ん.
func EndsWithForbiddenTerminal(word string) bool {
	runes := []rune(Normalize(word))
	if len(runes) == 0 {
		return false
	}
	return runes[len(runes)-1] == ForbiddenTerminal
}

// ValidateChain judges the full word sequence: the already-accepted prefix
// plus the candidate appended at the end. The whole list is re-validated on
// every submission; the check is idempotent and stateless.
//
// Checks run in order and short-circuit: empty input, exact duplicates (raw
// comparison, not normalized), per-word acceptability and terminal sound,
// then pairwise connectivity.
func ValidateChain(words []string) ChainVerdict {
	if len(words) == 0 {
		return ChainVerdict{Violation: ChainEmptyInput}
	}

	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			return ChainVerdict{Violation: ChainDuplicateWord, Word: w}
		}
		seen[w] = struct{}{}
	}

	for _, w := range words {
		if !IsAcceptableWord(w) {
			return ChainVerdict{Violation: ChainUnacceptableWord, Word: w}
		}
		if EndsWithForbiddenTerminal(w) {
			return ChainVerdict{Violation: ChainForbiddenTerminal, Word: w}
		}
	}

	for i := 1; i < len(words); i++ {
		if !CanFollow(words[i-1], words[i]) {
			return ChainVerdict{
				Violation: ChainBrokenConnection,
				Prev:      words[i-1],
				Next:      words[i],
			}
		}
	}

	return ChainVerdict{Violation: ChainOK}
}

// isKana accepts hiragana, katakana and the long-vowel mark. Digits, Latin
// letters, control characters and everything else are rejected.
func isKana(r rune) bool {
	switch {
	case r >= 'ぁ' && r <= 'ゖ':
		return true
	case r >= 'ァ' && r <= 'ヶ':
		return true
	case r == 'ー':
		return true
	}
	return false
}

func hasExcessiveRepetition(runes []rune) bool {
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= maxRuneRun {
				return true
			}
		} else {
			run = 1
		}
	}

	for size := 2; size <= 3; size++ {
		for start := 0; start+size*maxGroupRepeat <= len(runes); start++ {
			if groupRepeats(runes, start, size) {
				return true
			}
		}
	}

	return false
}

func groupRepeats(runes []rune, start, size int) bool {
	for rep := 1; rep < maxGroupRepeat; rep++ {
		for i := 0; i < size; i++ {
			if runes[start+i] != runes[start+rep*size+i] {
				return false
			}
		}
	}
	return true
}

func dominatedByForeignDigraphs(runes []rune) bool {
	covered := 0
	for i := 0; i+1 < len(runes); i++ {
		if _, ok := foreignDigraphs[string(runes[i:i+2])]; ok {
			covered += 2
			i++
		}
	}
	return covered*2 > len(runes)
}
