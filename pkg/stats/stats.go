// ABOUTME: Cross-task summary metrics derived from the registry
// ABOUTME: Counts tasks/versions and identifies the most recently touched task

package stats

import (
	"strings"
	"time"

	"github.com/nainya/revlog/pkg/history"
	"github.com/nainya/revlog/pkg/registry"
	"github.com/nainya/revlog/pkg/summary"
)

// UntitledTask is the display fallback for tasks whose latest title is blank.
const UntitledTask = "Untitled Task"

// LatestTask describes the most recently updated task.
type LatestTask struct {
	Title   string `json:"title"`
	TimeAgo string `json:"timeAgo"`
}

// Overview is the cross-task aggregate. LatestTask is nil when no task has
// any versions.
type Overview struct {
	TotalTasks    int         `json:"totalTasks"`
	TotalVersions int         `json:"totalVersions"`
	LatestTask    *LatestTask `json:"latestTask"`
}

// Compute scans every history and derives the aggregate as of now.
// The most recent task is the one whose tail has the greatest CreatedAt;
// on equal timestamps the smallest taskId wins, so the result is stable.
func Compute(reg *registry.Registry, now time.Time) Overview {
	out := Overview{}

	var latest history.Version
	var found bool
	for _, h := range reg.ListAll() {
		// One snapshot per history so the count and the tail agree even
		// while appends are in flight.
		doc := h.Document()
		out.TotalTasks++
		out.TotalVersions += doc.Count

		if doc.Count == 0 {
			continue
		}
		tail := doc.Versions[doc.Count-1]
		// ListAll is sorted by taskId, so strictly-greater keeps the
		// first-seen task on ties.
		if !found || tail.CreatedAt.After(latest.CreatedAt) {
			latest = tail
			found = true
		}
	}

	if found {
		out.LatestTask = &LatestTask{
			Title:   displayTitle(latest.Data.Title),
			TimeAgo: summary.RelativeTime(latest.CreatedAt, now),
		}
	}
	return out
}

func displayTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return UntitledTask
	}
	return title
}
