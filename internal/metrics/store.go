// Instrumented persistence wrapper recording operation counts and latencies
package metrics

import (
	"context"
	"time"

	"github.com/nainya/revlog/pkg/history"
)

// HistoryStore is the persistence surface the registry consumes.
type HistoryStore interface {
	SaveHistory(ctx context.Context, doc history.Document) error
	LoadAll(ctx context.Context) ([]history.Document, error)
}

// InstrumentStore wraps st so every persistence operation is recorded.
func (m *Metrics) InstrumentStore(st HistoryStore) HistoryStore {
	return &instrumentedStore{st: st, m: m}
}

type instrumentedStore struct {
	st HistoryStore
	m  *Metrics
}

func (s *instrumentedStore) SaveHistory(ctx context.Context, doc history.Document) error {
	start := time.Now()
	err := s.st.SaveHistory(ctx, doc)
	s.m.RecordStoreOperation("save_history", statusOf(err), time.Since(start))
	return err
}

func (s *instrumentedStore) LoadAll(ctx context.Context) ([]history.Document, error) {
	start := time.Now()
	docs, err := s.st.LoadAll(ctx)
	s.m.RecordStoreOperation("load_all", statusOf(err), time.Since(start))
	return docs, err
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
