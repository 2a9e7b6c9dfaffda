package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type failingStore struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *failingStore) Append(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *failingStore) Search(ctx context.Context, f Filter) ([]Record, error) {
	return nil, errors.New("not implemented")
}

func TestRecorderFillsIDAndTimestamp(t *testing.T) {
	store := NewMemory()
	rec := NewRecorder(store)

	rec.Record(context.Background(), Record{UserID: "u1", Resource: "GET /v1/test"})

	got, err := store.Search(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one record, got %d", len(got))
	}
	if got[0].ID == "" {
		t.Fatal("expected generated id")
	}
	if got[0].Timestamp.IsZero() {
		t.Fatal("expected timestamp")
	}
}

func TestRecorderSwallowsStoreFailure(t *testing.T) {
	store := &failingStore{err: errors.New("connection refused")}
	rec := NewRecorder(store)

	// Must not panic or propagate; the decision already stands.
	rec.Record(context.Background(), Record{UserID: "u1", AccessGranted: true})

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.calls != 1 {
		t.Fatalf("expected one attempted write, got %d", store.calls)
	}
}

func TestRecorderSurvivesCancelledRequestContext(t *testing.T) {
	store := NewMemory()
	rec := NewRecorder(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The caller decided before the client went away; the write still runs.
	rec.Record(ctx, Record{UserID: "u1"})

	if store.Len() != 1 {
		t.Fatalf("expected write despite cancelled request context, got %d", store.Len())
	}
}

func TestRecorderAsyncDrainsOnClose(t *testing.T) {
	store := NewMemory()
	rec := NewRecorder(store, WithAsync(8))

	for i := 0; i < 5; i++ {
		rec.Record(context.Background(), Record{UserID: "u1"})
	}
	rec.Close()

	if store.Len() != 5 {
		t.Fatalf("expected 5 records after drain, got %d", store.Len())
	}
}

func TestRecorderPublishesToStream(t *testing.T) {
	stream := NewStream()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := stream.Subscribe(ctx)

	rec := NewRecorder(NewMemory(), WithStream(stream))
	rec.Record(context.Background(), Record{UserID: "u-live", AccessGranted: true})

	select {
	case got := <-ch:
		if got.UserID != "u-live" || !got.AccessGranted {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("expected streamed record")
	}
}

func TestMemorySearchFilters(t *testing.T) {
	store := NewMemory()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	granted := true
	denied := false

	seed := []Record{
		{ID: "1", UserID: "u1", OrganizationID: "org-a", AccessGranted: true, Timestamp: base},
		{ID: "2", UserID: "u2", OrganizationID: "org-a", AccessGranted: false, Timestamp: base.Add(time.Minute)},
		{ID: "3", UserID: "u1", OrganizationID: "org-b", AccessGranted: true, Timestamp: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		if err := store.Append(context.Background(), &seed[i]); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.Search(context.Background(), Filter{UserID: "u1"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "1" {
		t.Fatalf("unexpected user filter result: %+v", got)
	}

	got, _ = store.Search(context.Background(), Filter{OrganizationID: "org-a", Granted: &granted})
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected org+granted result: %+v", got)
	}

	got, _ = store.Search(context.Background(), Filter{Granted: &denied})
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected denied result: %+v", got)
	}

	got, _ = store.Search(context.Background(), Filter{From: base.Add(30 * time.Second), To: base.Add(90 * time.Second)})
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected range result: %+v", got)
	}

	got, _ = store.Search(context.Background(), Filter{Limit: 2})
	if len(got) != 2 || got[0].ID != "3" {
		t.Fatalf("unexpected limit result: %+v", got)
	}
}
