// ABOUTME: Word-level diff adapter over diffmatchpatch
// ABOUTME: Converts tagged diff runs into added/removed word counts

package wordiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// CountWords returns the number of whitespace-separated tokens in s.
// Runs of whitespace count as a single separator; empty input yields 0.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// Compare diffs two texts at word granularity and returns the number of
// words present only in newText (added) and only in oldText (removed).
// Unchanged runs contribute nothing. Pure function of its inputs.
func Compare(oldText, newText string) (added, removed int) {
	dmp := diffmatchpatch.New()

	// Line-mode diff over one-word-per-line rewrites keeps whole words
	// together, so every run boundary falls on a word boundary.
	c1, c2, words := dmp.DiffLinesToChars(wordsToLines(oldText), wordsToLines(newText))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), words)

	for _, d := range diffs {
		n := len(strings.Fields(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += n
		case diffmatchpatch.DiffDelete:
			removed += n
		}
	}
	return added, removed
}

func wordsToLines(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, "\n") + "\n"
}
