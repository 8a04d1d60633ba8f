// ABOUTME: Tests for the append-only version chain
// ABOUTME: Verifies numbering, linking, diff computation and document round-trips

package history

import (
	"errors"
	"testing"
	"time"
)

func testTime(minute int) time.Time {
	return time.Date(2026, 1, 10, 9, minute, 0, 0, time.UTC)
}

func TestFirstAppend(t *testing.T) {
	h := New("t1")

	v, err := h.Append(Payload{Title: "T", Content: "one two three"}, testTime(0))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if v.Number != 1 {
		t.Errorf("expected version 1, got %d", v.Number)
	}
	if v.Diff.Added != 3 || v.Diff.Removed != 0 || v.Diff.Changed != 3 {
		t.Errorf("unexpected diff %+v", v.Diff)
	}
	if v.Summary != "Created with 3 words" {
		t.Errorf("unexpected summary %q", v.Summary)
	}
	if v.Prev != 0 || v.Next != 0 {
		t.Errorf("first version should have no links, got prev=%d next=%d", v.Prev, v.Next)
	}
}

func TestFirstAppendEmptyContent(t *testing.T) {
	h := New("t1")

	v, err := h.Append(Payload{Title: "T"}, testTime(0))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if v.Summary != "Created new task" {
		t.Errorf("unexpected summary %q", v.Summary)
	}
	if v.Diff != (DiffStats{}) {
		t.Errorf("expected zero diff, got %+v", v.Diff)
	}
}

func TestAppendLinksChain(t *testing.T) {
	h := New("t1")
	h.Append(Payload{Title: "T", Content: "alpha beta"}, testTime(0))

	v2, err := h.Append(Payload{Title: "T", Content: "alpha beta gamma"}, testTime(1))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if v2.Number != 2 {
		t.Errorf("expected version 2, got %d", v2.Number)
	}
	if v2.Diff.Added != 1 || v2.Diff.Removed != 0 {
		t.Errorf("unexpected diff %+v", v2.Diff)
	}
	if v2.Prev != 1 {
		t.Errorf("expected prev=1, got %d", v2.Prev)
	}

	v1, _, err := h.GetVersion(1)
	if err != nil {
		t.Fatalf("get version 1: %v", err)
	}
	if v1.Next != 2 {
		t.Errorf("version 1 next should become 2, got %d", v1.Next)
	}
}

func TestContiguityAfterManyAppends(t *testing.T) {
	h := New("t1")
	const n = 25
	for i := 0; i < n; i++ {
		if _, err := h.Append(Payload{Content: "word"}, testTime(i)); err != nil {
			t.Fatalf("append %d: %v", i+1, err)
		}
	}

	if h.Head() != 1 || h.Tail() != n || h.Count() != n {
		t.Fatalf("head/tail/count = %d/%d/%d, want 1/%d/%d", h.Head(), h.Tail(), h.Count(), n, n)
	}

	all := h.GetAll()
	if len(all) != n {
		t.Fatalf("expected %d versions, got %d", n, len(all))
	}
	for i, v := range all {
		if v.Number != i+1 {
			t.Errorf("position %d holds version %d", i, v.Number)
		}
		wantPrev, wantNext := i, i+2
		if i == n-1 {
			wantNext = 0
		}
		if v.Prev != wantPrev || v.Next != wantNext {
			t.Errorf("version %d links prev=%d next=%d, want %d/%d", v.Number, v.Prev, v.Next, wantPrev, wantNext)
		}
	}
}

func TestGetVersionNavigation(t *testing.T) {
	h := New("t1")
	for i := 0; i < 3; i++ {
		h.Append(Payload{Content: "w"}, testTime(i))
	}

	_, nav, err := h.GetVersion(2)
	if err != nil {
		t.Fatalf("get version 2: %v", err)
	}
	if nav.Prev == nil || *nav.Prev != 1 {
		t.Errorf("expected nav.Prev=1, got %v", nav.Prev)
	}
	if nav.Next == nil || *nav.Next != 3 {
		t.Errorf("expected nav.Next=3, got %v", nav.Next)
	}

	_, nav, _ = h.GetVersion(1)
	if nav.Prev != nil {
		t.Errorf("head should have nil prev")
	}
	_, nav, _ = h.GetVersion(3)
	if nav.Next != nil {
		t.Errorf("tail should have nil next")
	}
}

func TestGetVersionOutOfRange(t *testing.T) {
	h := New("t1")
	h.Append(Payload{Content: "w"}, testTime(0))

	for _, n := range []int{0, -1, 2, 99} {
		if _, _, err := h.GetVersion(n); !errors.Is(err, ErrVersionNotFound) {
			t.Errorf("GetVersion(%d) = %v, want ErrVersionNotFound", n, err)
		}
	}
}

func TestLatest(t *testing.T) {
	h := New("t1")
	if _, ok := h.Latest(); ok {
		t.Fatal("empty history should have no latest version")
	}

	h.Append(Payload{Title: "a"}, testTime(0))
	h.Append(Payload{Title: "b"}, testTime(1))

	v, ok := h.Latest()
	if !ok || v.Number != 2 || v.Data.Title != "b" {
		t.Errorf("unexpected latest %+v (ok=%v)", v, ok)
	}
}

func TestStageDoesNotMutate(t *testing.T) {
	h := New("t1")
	h.Append(Payload{Content: "a b"}, testTime(0))

	staged := h.Stage(Payload{Content: "a b c"}, testTime(1))
	if staged.Number != 2 {
		t.Fatalf("staged number %d", staged.Number)
	}
	if h.Count() != 1 {
		t.Errorf("stage must not change count, got %d", h.Count())
	}
	if v, _, _ := h.GetVersion(1); v.Next != 0 {
		t.Errorf("stage must not link the tail, next=%d", v.Next)
	}

	if err := h.Commit(staged); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if h.Count() != 2 {
		t.Errorf("commit should append, count=%d", h.Count())
	}
}

func TestCommitDetectsStaleStage(t *testing.T) {
	h := New("t1")
	h.Append(Payload{Content: "a"}, testTime(0))

	s1 := h.Stage(Payload{Content: "a b"}, testTime(1))
	s2 := h.Stage(Payload{Content: "a c"}, testTime(1))

	if err := h.Commit(s1); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := h.Commit(s2); !errors.Is(err, ErrConcurrencyViolation) {
		t.Errorf("second commit = %v, want ErrConcurrencyViolation", err)
	}
}

func TestTimestampsNeverRegress(t *testing.T) {
	h := New("t1")
	h.Append(Payload{Content: "a"}, testTime(5))
	v, _ := h.Append(Payload{Content: "a b"}, testTime(2))

	if v.CreatedAt.Before(testTime(5)) {
		t.Errorf("createdAt regressed to %v", v.CreatedAt)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	h := New("t1")
	h.Append(Payload{Title: "T", Content: "alpha beta"}, testTime(0))
	h.Append(Payload{Title: "T", Content: "alpha beta gamma"}, testTime(1))

	doc := h.Document()
	if doc.Head != 1 || doc.Tail != 2 || doc.Count != 2 {
		t.Fatalf("unexpected document header %+v", doc)
	}

	restored, err := FromDocument(doc)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Count() != 2 {
		t.Errorf("restored count %d", restored.Count())
	}
	v, _, err := restored.GetVersion(2)
	if err != nil || v.Diff.Added != 1 {
		t.Errorf("restored version 2 = %+v, err %v", v, err)
	}
}

func TestDocumentWithIncludesStagedLink(t *testing.T) {
	h := New("t1")
	h.Append(Payload{Content: "a"}, testTime(0))

	staged := h.Stage(Payload{Content: "a b"}, testTime(1))
	doc := h.DocumentWith(staged)

	if doc.Count != 2 || doc.Tail != 2 {
		t.Fatalf("unexpected document header %+v", doc)
	}
	if doc.Versions[0].Next != 2 {
		t.Errorf("serialized tail link not set, next=%d", doc.Versions[0].Next)
	}
	// The live chain is untouched.
	if v, _, _ := h.GetVersion(1); v.Next != 0 {
		t.Errorf("live chain mutated, next=%d", v.Next)
	}
}

func TestDocumentSnapshotConsistentUnderAppends(t *testing.T) {
	h := New("t1")
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			h.Append(Payload{Content: "some words"}, testTime(i%60))
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
		}
		doc := h.Document()
		if doc.Count != len(doc.Versions) {
			t.Fatalf("torn snapshot: count=%d with %d versions", doc.Count, len(doc.Versions))
		}
		if doc.Count > 0 {
			if doc.Tail != doc.Count || doc.Head != 1 {
				t.Fatalf("torn snapshot header: head=%d tail=%d count=%d", doc.Head, doc.Tail, doc.Count)
			}
			if doc.Versions[doc.Count-1].Next != 0 {
				t.Fatalf("snapshot tail has a successor: %d", doc.Versions[doc.Count-1].Next)
			}
		}
	}
}

func TestFromDocumentRejectsCorruption(t *testing.T) {
	h := New("t1")
	h.Append(Payload{Content: "a"}, testTime(0))
	h.Append(Payload{Content: "a b"}, testTime(1))

	cases := []func(*Document){
		func(d *Document) { d.Count = 5 },
		func(d *Document) { d.Versions[1].Number = 7 },
		func(d *Document) { d.Versions[0].Next = 0 },
		func(d *Document) { d.Versions[1].Prev = 0 },
		func(d *Document) { d.Versions[0].CreatedAt = testTime(9) },
	}

	for i, corrupt := range cases {
		doc := h.Document()
		corrupt(&doc)
		if _, err := FromDocument(doc); !errors.Is(err, ErrCorruptDocument) {
			t.Errorf("case %d: FromDocument = %v, want ErrCorruptDocument", i, err)
		}
	}
}
