package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

// Keyword tokens shorter than this or at least this long are discarded.
const (
	keywordMinLen = 4
	keywordMaxLen = 20
)

// Keywords returns up to max keywords from text, ordered by descending
// frequency. Ties keep first-encountered order. Tokens are lowercased,
// stripped of punctuation, and must be longer than 4 and shorter than 20
// characters.
func Keywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}

	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), "")

	counts := make(map[string]int)
	var order []string
	for _, tok := range strings.Fields(cleaned) {
		n := utf8.RuneCountInString(tok)
		if n <= keywordMinLen || n >= keywordMaxLen {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > max {
		order = order[:max]
	}
	return order
}
