// ABOUTME: Version history data model for tracked tasks
// ABOUTME: Defines Version records with diff stats and navigation pointers

package history

import "time"

// Payload is the tracked content of a version. Stored verbatim; only
// Content participates in diffing.
type Payload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DiffStats holds word-level change counts relative to the previous version.
// Changed is always Added + Removed.
type DiffStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// Version is one snapshot of a task's content. Every field is fixed at
// append time except Next, which is set exactly once when a successor is
// appended. Prev and Next are version numbers; 0 means none.
type Version struct {
	Number    int       `json:"versionNumber"`
	Data      Payload   `json:"data"`
	Diff      DiffStats `json:"diff"`
	Summary   string    `json:"summary"`
	Prev      int       `json:"prev"`
	Next      int       `json:"next"`
	CreatedAt time.Time `json:"createdAt"`
}

// Navigation pairs a version with its resolved neighbors. The values
// duplicate the version's own Prev/Next pointers; nil means none.
type Navigation struct {
	Prev *int `json:"prev"`
	Next *int `json:"next"`
}

// Document is the serialized form of a History, one per task. Head, Tail
// and Count are 0 for an empty history.
type Document struct {
	TaskID   string    `json:"taskId"`
	Head     int       `json:"head"`
	Tail     int       `json:"tail"`
	Count    int       `json:"count"`
	Versions []Version `json:"versions"`
}
