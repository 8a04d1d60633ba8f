// ABOUTME: Keyed collection of task histories with creation-on-first-write
// ABOUTME: Serializes appends per task and commits durably before linking

package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nainya/revlog/pkg/history"
)

// Store is the persistence collaborator. A Registry built with a nil Store
// keeps histories in memory only.
type Store interface {
	SaveHistory(ctx context.Context, doc history.Document) error
	LoadAll(ctx context.Context) ([]history.Document, error)
}

type entry struct {
	// appendMu serializes the whole stage-persist-commit sequence for one
	// task. Reads go straight to the history and never take it.
	appendMu sync.Mutex
	hist     *history.History
}

// Registry owns one History per task identifier. Different tasks are fully
// independent; appends to distinct tasks run concurrently.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*entry
	store Store
	clock func() time.Time
}

// New creates a registry backed by st. st may be nil for ephemeral use.
func New(st Store) *Registry {
	return &Registry{
		tasks: make(map[string]*entry),
		store: st,
		clock: time.Now,
	}
}

// Restore loads every persisted history into the registry. Called once at
// startup, before the registry is shared.
func (r *Registry) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	docs, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("restore registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range docs {
		h, err := history.FromDocument(doc)
		if err != nil {
			return fmt.Errorf("restore task %s: %w", doc.TaskID, err)
		}
		r.tasks[doc.TaskID] = &entry{hist: h}
	}
	return nil
}

// GetOrCreate returns the history for taskID, creating an empty one on
// first sight.
func (r *Registry) GetOrCreate(taskID string) *history.History {
	return r.entryFor(taskID).hist
}

// Find returns the history for taskID without creating it.
func (r *Registry) Find(taskID string) (*history.History, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tasks[taskID]
	if !ok {
		return nil, false
	}
	return e.hist, true
}

// ListAll returns every history, sorted by task identifier.
func (r *Registry) ListAll() []*history.History {
	r.mu.RLock()
	out := make([]*history.History, 0, len(r.tasks))
	for _, e := range r.tasks {
		out = append(out, e.hist)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].TaskID() < out[j].TaskID() })
	return out
}

// Append stages the next version for taskID, persists the updated document,
// and only then links the version into the in-memory chain. A persistence
// failure leaves the history untouched. The per-task lock is held across
// the whole sequence, so concurrent appends to one task cannot race.
func (r *Registry) Append(ctx context.Context, taskID string, data history.Payload) (history.Version, error) {
	e := r.entryFor(taskID)
	e.appendMu.Lock()
	defer e.appendMu.Unlock()

	v := e.hist.Stage(data, r.clock())
	if r.store != nil {
		if err := r.store.SaveHistory(ctx, e.hist.DocumentWith(v)); err != nil {
			return history.Version{}, fmt.Errorf("persist version %d of task %s: %w", v.Number, taskID, err)
		}
	}
	if err := e.hist.Commit(v); err != nil {
		return history.Version{}, err
	}
	return *v, nil
}

// TotalVersions sums version counts across all tasks.
func (r *Registry) TotalVersions() int {
	total := 0
	for _, h := range r.ListAll() {
		total += h.Count()
	}
	return total
}

// TotalTasks returns the number of registered histories.
func (r *Registry) TotalTasks() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func (r *Registry) entryFor(taskID string) *entry {
	r.mu.RLock()
	e, ok := r.tasks[taskID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.tasks[taskID]; ok {
		return e
	}
	e = &entry{hist: history.New(taskID)}
	r.tasks[taskID] = e
	return e
}
