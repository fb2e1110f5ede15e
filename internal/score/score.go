// Package score measures pronunciation accuracy by aligning a transcribed
// attempt against the target phrase.
//
// Both strings are normalised to lowercase word sequences stripped of
// punctuation, then aligned with a longest-common-subsequence match over
// whole words (classic sequence matching, not character edit distance).
// The percentage is the share of target words the alignment matched; extra
// words in the transcript never reduce the score.
//
// Beyond the boolean per-word outcome, substituted word pairs are annotated
// with Jaro-Winkler similarity and a Double Metaphone overlap check so the
// presentation layer can tell "sounded close" from "completely different".
// These annotations are display hints only — they never affect the
// percentage.
package score

import (
	"math"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// closeSimilarity is the Jaro-Winkler score above which a substituted word
// counts as "close" even without phonetic overlap.
const closeSimilarity = 0.80

// WordMatch describes the alignment outcome for one word position.
type WordMatch struct {
	// Expected is the target word at this position. Empty for extra
	// transcript words that aligned to nothing.
	Expected string

	// Heard is the transcript word aligned here. Empty when the target word
	// had no counterpart in the transcript.
	Heard string

	// Matched reports whether Expected and Heard are the same word.
	Matched bool

	// Similarity is the Jaro-Winkler similarity between Expected and Heard
	// for substitutions, 1.0 for matches, and 0 when either side is absent.
	Similarity float64

	// Close reports whether a substitution sounded close to the target word:
	// the two share a Double Metaphone code, or Similarity is high.
	Close bool
}

// Result is the outcome of scoring one attempt. It is immutable once
// produced.
type Result struct {
	// Percentage is the pronunciation score in [0, 100].
	Percentage int

	// Words lists per-word feedback in target-phrase order, followed by any
	// unmatched extra transcript words.
	Words []WordMatch
}

// Score aligns transcript against target and returns the scored result.
//
// An empty transcript scores 0 with every target word unmatched. A
// transcript identical to the target (ignoring case and punctuation)
// scores 100.
func Score(target, transcript string) Result {
	want := tokenize(target)
	got := tokenize(transcript)

	if len(want) == 0 {
		// Nothing to score against. Identical (both empty) is a perfect
		// attempt; anything spoken over an empty target matches nothing.
		res := Result{}
		if len(got) == 0 {
			res.Percentage = 100
			return res
		}
		for _, w := range got {
			res.Words = append(res.Words, WordMatch{Heard: w})
		}
		return res
	}

	words := align(want, got)

	matched := 0
	for _, w := range words {
		if w.Matched {
			matched++
		}
	}

	pct := int(math.Round(float64(matched) / float64(len(want)) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return Result{Percentage: pct, Words: words}
}

// tokenize lowercases s and splits it into words, treating every rune that
// is not a letter, digit, or in-word apostrophe as a separator.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// align computes the leftmost longest-common-subsequence alignment between
// the target and transcript word sequences and expands it into per-word
// feedback: matches in order, substitution pairs between matches, then
// leftover words on either side.
func align(want, got []string) []WordMatch {
	// dp[i][j] holds the LCS length of want[i:] and got[j:].
	dp := make([][]int, len(want)+1)
	for i := range dp {
		dp[i] = make([]int, len(got)+1)
	}
	for i := len(want) - 1; i >= 0; i-- {
		for j := len(got) - 1; j >= 0; j-- {
			if want[i] == got[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	var (
		words        []WordMatch
		skippedWant  []string
		skippedGot   []string
		flushSkipped = func() {}
	)

	// Pair up the words skipped since the previous match: positionally as
	// substitutions, leftovers as one-sided entries. Extra transcript words
	// never displace a target entry.
	flushSkipped = func() {
		n := len(skippedWant)
		if len(skippedGot) < n {
			n = len(skippedGot)
		}
		for k := 0; k < n; k++ {
			words = append(words, substitution(skippedWant[k], skippedGot[k]))
		}
		for _, w := range skippedWant[n:] {
			words = append(words, WordMatch{Expected: w})
		}
		for _, w := range skippedGot[n:] {
			words = append(words, WordMatch{Heard: w})
		}
		skippedWant = skippedWant[:0]
		skippedGot = skippedGot[:0]
	}

	i, j := 0, 0
	for i < len(want) && j < len(got) {
		switch {
		case want[i] == got[j] && dp[i][j] == dp[i+1][j+1]+1:
			flushSkipped()
			words = append(words, WordMatch{
				Expected:   want[i],
				Heard:      got[j],
				Matched:    true,
				Similarity: 1.0,
			})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			skippedWant = append(skippedWant, want[i])
			i++
		default:
			skippedGot = append(skippedGot, got[j])
			j++
		}
	}
	skippedWant = append(skippedWant, want[i:]...)
	skippedGot = append(skippedGot, got[j:]...)
	flushSkipped()

	return words
}

// substitution builds the feedback entry for a target word that aligned to
// a different transcript word.
func substitution(expected, heard string) WordMatch {
	sim := matchr.JaroWinkler(expected, heard, false)
	return WordMatch{
		Expected:   expected,
		Heard:      heard,
		Similarity: sim,
		Close:      sim >= closeSimilarity || soundsAlike(expected, heard),
	}
}

// soundsAlike reports whether two words share a Double Metaphone code.
func soundsAlike(a, b string) bool {
	p1, s1 := matchr.DoubleMetaphone(a)
	p2, s2 := matchr.DoubleMetaphone(b)
	for _, x := range []string{p1, s1} {
		if x == "" {
			continue
		}
		if x == p2 || (s2 != "" && x == s2) {
			return true
		}
	}
	return false
}
