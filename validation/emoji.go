package validation

import (
	"unicode"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

//go:generate go run gen_pictographic.go

// keycapCombiner turns a preceding digit, '#' or '*' into a keycap emoji.
const keycapCombiner = '⃣'

// isEmojiGrapheme reports whether one user-perceived character renders as an
// emoji: a pictograph (with or without modifiers and ZWJ joins), a flag made of
// regional indicators, or a keycap sequence.
func isEmojiGrapheme(g string) bool {
	for _, r := range g {
		if r == keycapCombiner || unicode.Is(pictographic, r) {
			return true
		}
	}
	return false
}

// ContainsEmoji reports whether s holds at least one emoji grapheme.
// Bare digits, '#' and '*' do not count unless they form a keycap.
func ContainsEmoji(s string) bool {
	iter := graphemes.FromString(s)
	for iter.Next() {
		if isEmojiGrapheme(iter.Value()) {
			return true
		}
	}
	return false
}
