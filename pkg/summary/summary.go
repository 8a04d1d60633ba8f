// ABOUTME: Human-readable phrases for diff stats and elapsed time
// ABOUTME: Pure formatting functions, no state

package summary

import (
	"fmt"
	"time"
)

// Diff maps added/removed word counts to a short descriptive phrase.
// A dominant direction wins; equal nonzero counts read as an edit.
func Diff(added, removed int) string {
	switch {
	case added > removed:
		return fmt.Sprintf("Added ~%d words", added)
	case removed > added:
		return fmt.Sprintf("Removed ~%d words", removed)
	case added > 0:
		return fmt.Sprintf("Edited content (~%d words changed)", added)
	default:
		return "Title updated or minor changes"
	}
}

// Creation describes a task's first version.
func Creation(wordCount int) string {
	if wordCount > 0 {
		return fmt.Sprintf("Created with %d words", wordCount)
	}
	return "Created new task"
}

// RelativeTime renders the elapsed time between past and now as a short
// phrase. Timestamps in the future clamp to "just now".
func RelativeTime(past, now time.Time) string {
	minutes := int(now.Sub(past).Minutes())
	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh ago", minutes/60)
	case minutes < 7*24*60:
		return fmt.Sprintf("%dd ago", minutes/(24*60))
	default:
		return past.Format("Jan 2, 2006")
	}
}
