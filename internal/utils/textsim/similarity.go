// Package textsim provides the text similarity measure used for merchant
// identity resolution and counterparty scoring. It combines token overlap
// (Jaccard over word sets) with a normalized edit distance over the whole
// string, taking the better of the two so that both reordered multi-word
// names ("ZH MIGROS" vs "MIGROS ZH") and single-token typos score well.
package textsim

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Similarity returns a score in [0,1] for two raw strings. Comparison is
// case-insensitive and ignores punctuation.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	token := tokenOverlap(a, b)
	edit := editSimilarity(a, b)
	if token > edit {
		return token
	}
	return edit
}

func tokenOverlap(a, b string) float64 {
	wa := wordPattern.FindAllString(a, -1)
	wb := wordPattern.FindAllString(b, -1)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(wa))
	for _, w := range wa {
		setA[w] = struct{}{}
	}
	setB := make(map[string]struct{}, len(wb))
	for _, w := range wb {
		setB[w] = struct{}{}
	}

	inter := 0
	for w := range setB {
		if _, ok := setA[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// editSimilarity is 1 - levenshtein(a,b)/max(len(a),len(b)), computed over
// runes with a two-row dynamic program.
func editSimilarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1 - float64(prev[lb])/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
