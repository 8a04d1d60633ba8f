// ABOUTME: Append-only version chain for a single task
// ABOUTME: Dense arena keyed by version number with prev/next links and diff computation

package history

import (
	"fmt"
	"sync"
	"time"

	"github.com/nainya/revlog/pkg/summary"
	"github.com/nainya/revlog/pkg/wordiff"
)

// History holds the append-only version chain for one task. Versions live
// in a dense slice indexed by versionNumber-1, so lookup by number is O(1)
// and Prev/Next are logical keys rather than ownership edges.
//
// Every method is atomic with respect to the internal lock: readers never
// observe a partially linked version. Appends on the same History must
// still be serialized externally across the whole stage-persist-commit
// sequence; Commit detects violations but does not prevent them.
type History struct {
	mu       sync.RWMutex
	taskID   string
	versions []*Version
}

// New creates an empty history for taskID.
func New(taskID string) *History {
	return &History{taskID: taskID}
}

// FromDocument rebuilds a history from its serialized form, validating the
// chain invariants before accepting it.
func FromDocument(doc Document) (*History, error) {
	if doc.Count != len(doc.Versions) {
		return nil, fmt.Errorf("%w: count %d does not match %d versions", ErrCorruptDocument, doc.Count, len(doc.Versions))
	}
	h := &History{taskID: doc.TaskID, versions: make([]*Version, 0, len(doc.Versions))}
	for i := range doc.Versions {
		v := doc.Versions[i]
		if v.Number != i+1 {
			return nil, fmt.Errorf("%w: version number %d at position %d", ErrCorruptDocument, v.Number, i)
		}
		wantPrev, wantNext := i, i+2
		if i == len(doc.Versions)-1 {
			wantNext = 0
		}
		if v.Prev != wantPrev || v.Next != wantNext {
			return nil, fmt.Errorf("%w: broken links on version %d", ErrCorruptDocument, v.Number)
		}
		if i > 0 && v.CreatedAt.Before(doc.Versions[i-1].CreatedAt) {
			return nil, fmt.Errorf("%w: timestamps regress at version %d", ErrCorruptDocument, v.Number)
		}
		h.versions = append(h.versions, &v)
	}
	return h, nil
}

// TaskID returns the owning task's identifier.
func (h *History) TaskID() string {
	return h.taskID
}

// Head returns the first version number, or 0 if the history is empty.
func (h *History) Head() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.versions) == 0 {
		return 0
	}
	return 1
}

// Tail returns the most recent version number, or 0 if the history is empty.
func (h *History) Tail() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.versions)
}

// Count returns the number of versions appended so far.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.versions)
}

// Stage builds the next version without linking it in. The diff and summary
// are computed against the current tail; for a first version the diff counts
// every content word as added. The staged version is invisible to readers
// until Commit.
//
// Timestamps are clamped to the tail's CreatedAt so the chain stays
// non-decreasing even under clock skew.
func (h *History) Stage(data Payload, now time.Time) *Version {
	h.mu.RLock()
	defer h.mu.RUnlock()

	v := &Version{
		Number:    len(h.versions) + 1,
		Data:      data,
		CreatedAt: now,
	}

	if len(h.versions) == 0 {
		wc := wordiff.CountWords(data.Content)
		v.Diff = DiffStats{Added: wc, Changed: wc}
		v.Summary = summary.Creation(wc)
		return v
	}

	tail := h.versions[len(h.versions)-1]
	added, removed := wordiff.Compare(tail.Data.Content, data.Content)
	v.Diff = DiffStats{Added: added, Removed: removed, Changed: added + removed}
	v.Summary = summary.Diff(added, removed)
	v.Prev = tail.Number
	if now.Before(tail.CreatedAt) {
		v.CreatedAt = tail.CreatedAt
	}
	return v
}

// Commit links a staged version into the chain: the old tail's Next is set
// to the new number (its single permitted mutation) and the version becomes
// the tail. Fails with ErrConcurrencyViolation if another append claimed
// the staged number first.
func (h *History) Commit(v *Version) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if v.Number != len(h.versions)+1 {
		return fmt.Errorf("%w: staged version %d, tail is %d", ErrConcurrencyViolation, v.Number, len(h.versions))
	}
	if v.Number > 1 {
		h.versions[v.Number-2].Next = v.Number
	}
	h.versions = append(h.versions, v)
	return nil
}

// Append stages and commits in one step. Callers appending concurrently to
// the same history must hold an external lock across the call.
func (h *History) Append(data Payload, now time.Time) (Version, error) {
	v := h.Stage(data, now)
	if err := h.Commit(v); err != nil {
		return Version{}, err
	}
	return *v, nil
}

// GetAll returns a snapshot of every version in ascending number order.
func (h *History) GetAll() []Version {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Version, len(h.versions))
	for i, v := range h.versions {
		out[i] = *v
	}
	return out
}

// GetVersion returns version n plus its resolved prev/next neighbors.
func (h *History) GetVersion(n int) (Version, Navigation, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n < 1 || n > len(h.versions) {
		return Version{}, Navigation{}, fmt.Errorf("%w: version %d of task %s", ErrVersionNotFound, n, h.taskID)
	}

	v := *h.versions[n-1]
	var nav Navigation
	if v.Prev != 0 {
		p := v.Prev
		nav.Prev = &p
	}
	if v.Next != 0 {
		nx := v.Next
		nav.Next = &nx
	}
	return v, nav, nil
}

// Latest returns the tail version, or false if the history is empty.
func (h *History) Latest() (Version, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.versions) == 0 {
		return Version{}, false
	}
	return *h.versions[len(h.versions)-1], true
}

// Document serializes the current state.
func (h *History) Document() Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.documentLocked(nil)
}

// DocumentWith serializes the state as it will be once staged is committed,
// without mutating the chain. Used to make the durable write precede the
// in-memory link.
func (h *History) DocumentWith(staged *Version) Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.documentLocked(staged)
}

func (h *History) documentLocked(staged *Version) Document {
	n := len(h.versions)
	if staged != nil {
		n++
	}
	doc := Document{
		TaskID:   h.taskID,
		Count:    n,
		Versions: make([]Version, 0, n),
	}
	if n > 0 {
		doc.Head = 1
		doc.Tail = n
	}
	for _, v := range h.versions {
		doc.Versions = append(doc.Versions, *v)
	}
	if staged != nil {
		if len(doc.Versions) > 0 {
			doc.Versions[len(doc.Versions)-1].Next = staged.Number
		}
		doc.Versions = append(doc.Versions, *staged)
	}
	return doc
}
