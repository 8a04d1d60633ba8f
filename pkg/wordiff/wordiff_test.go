// ABOUTME: Tests for the word-level diff adapter
// ABOUTME: Verifies word counting and added/removed accumulation

package wordiff

import "testing"

func TestCountWords(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"hello", 1},
		{"a  b   c", 3},
		{"  leading and trailing  ", 3},
		{"line\nbreaks\tand tabs", 4},
	}

	for _, c := range cases {
		if got := CountWords(c.in); got != c.want {
			t.Errorf("CountWords(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCompareAddition(t *testing.T) {
	added, removed := Compare("alpha beta", "alpha beta gamma")
	if added != 1 || removed != 0 {
		t.Errorf("expected 1 added, 0 removed; got %d, %d", added, removed)
	}
}

func TestCompareRemoval(t *testing.T) {
	added, removed := Compare("alpha beta gamma", "alpha gamma")
	if added != 0 || removed != 1 {
		t.Errorf("expected 0 added, 1 removed; got %d, %d", added, removed)
	}
}

func TestCompareReplacement(t *testing.T) {
	added, removed := Compare("the quick brown fox", "the slow brown fox")
	if added != 1 || removed != 1 {
		t.Errorf("expected 1 added, 1 removed; got %d, %d", added, removed)
	}
}

func TestCompareEmptyInputs(t *testing.T) {
	added, removed := Compare("", "")
	if added != 0 || removed != 0 {
		t.Errorf("empty inputs should contribute nothing; got %d, %d", added, removed)
	}

	added, removed = Compare("", "one two three")
	if added != 3 || removed != 0 {
		t.Errorf("expected 3 added against empty old text; got %d, %d", added, removed)
	}

	added, removed = Compare("one two three", "")
	if added != 0 || removed != 3 {
		t.Errorf("expected 3 removed against empty new text; got %d, %d", added, removed)
	}
}

func TestCompareIdentical(t *testing.T) {
	added, removed := Compare("same text here", "same text here")
	if added != 0 || removed != 0 {
		t.Errorf("identical texts should diff to nothing; got %d, %d", added, removed)
	}
}

func TestCompareIgnoresWhitespaceShape(t *testing.T) {
	// Only word identity matters; irregular spacing between the same
	// words is not a change.
	added, removed := Compare("a b c", "a   b \t c")
	if added != 0 || removed != 0 {
		t.Errorf("whitespace-only differences should not count; got %d, %d", added, removed)
	}
}
