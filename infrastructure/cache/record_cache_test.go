package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fleetcheck/models"
)

// countingSource answers with the records it held when the call started,
// after waiting on release when set.
type countingSource struct {
	calls   atomic.Int32
	release chan struct{}

	mu      sync.Mutex
	records []models.ChecklistRecord
	err     error
}

func (s *countingSource) ListChecklists(_ context.Context, _ int) ([]models.ChecklistRecord, error) {
	s.calls.Add(1)
	s.mu.Lock()
	records, err := s.records, s.err
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	return records, err
}

func (s *countingSource) CreateChecklist(_ context.Context, rec models.ChecklistRecord) (models.ChecklistRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.ChecklistRecord{}, s.err
	}
	rec.ID = "new"
	s.records = append([]models.ChecklistRecord{rec}, s.records...)
	return rec, nil
}

func (s *countingSource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func TestRecordCacheServesFreshEntries(t *testing.T) {
	src := &countingSource{records: []models.ChecklistRecord{{ID: "a"}}}
	c := NewRecordCache(src, time.Minute, nil)

	for i := 0; i < 3; i++ {
		got, err := c.ListChecklists(context.Background(), 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("unexpected records %+v", got)
		}
	}
	if n := src.calls.Load(); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}

func TestRecordCacheExpires(t *testing.T) {
	src := &countingSource{records: []models.ChecklistRecord{{ID: "a"}}}
	c := NewRecordCache(src, time.Minute, nil)
	mem := c.backend.(*memoryRecords)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mem.now = func() time.Time { return now }

	_, _ = c.ListChecklists(context.Background(), 0)
	now = now.Add(61 * time.Second)
	_, _ = c.ListChecklists(context.Background(), 0)

	if n := src.calls.Load(); n != 2 {
		t.Fatalf("expected refetch after ttl, got %d calls", n)
	}
}

func TestRecordCacheCollapsesConcurrentMisses(t *testing.T) {
	src := &countingSource{records: []models.ChecklistRecord{{ID: "a"}}, release: make(chan struct{})}
	c := NewRecordCache(src, time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.ListChecklists(context.Background(), 0); err != nil {
				t.Errorf("list: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	if n := src.calls.Load(); n != 1 {
		t.Fatalf("expected concurrent misses to share one fetch, got %d", n)
	}
}

func TestRecordCacheInvalidatesOnCreate(t *testing.T) {
	src := &countingSource{records: []models.ChecklistRecord{{ID: "a"}}}
	c := NewRecordCache(src, time.Minute, nil)

	_, _ = c.ListChecklists(context.Background(), 0)
	if _, err := c.CreateChecklist(context.Background(), models.ChecklistRecord{CheckType: models.CheckTypeRepairCompleted}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := c.ListChecklists(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected created record visible after invalidation, got %d", len(got))
	}
}

func TestRecordCacheDropsFetchThatSpansACreate(t *testing.T) {
	src := &countingSource{records: []models.ChecklistRecord{{ID: "a"}}, release: make(chan struct{})}
	c := NewRecordCache(src, time.Minute, nil)

	done := make(chan []models.ChecklistRecord)
	go func() {
		got, err := c.ListChecklists(context.Background(), 0)
		if err != nil {
			t.Errorf("list: %v", err)
		}
		done <- got
	}()
	for src.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	if _, err := c.CreateChecklist(context.Background(), models.ChecklistRecord{CheckType: models.CheckTypeRepairCompleted}); err != nil {
		t.Fatalf("create: %v", err)
	}
	close(src.release)
	if stale := <-done; len(stale) != 1 {
		t.Fatalf("in-flight fetch should return its own snapshot, got %d", len(stale))
	}

	got, err := c.ListChecklists(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("pre-create list was cached: got %d records", len(got))
	}
	if n := src.calls.Load(); n != 2 {
		t.Fatalf("expected a fresh fetch after the create, got %d calls", n)
	}
}

func TestRecordCacheInvalidateClearsListsFromOtherInstances(t *testing.T) {
	shared := newMemoryRecords()
	src := &countingSource{records: []models.ChecklistRecord{{ID: "a"}}}
	before := NewRecordCache(src, time.Minute, nil)
	before.backend = shared
	after := NewRecordCache(src, time.Minute, nil)
	after.backend = shared

	_, _ = before.ListChecklists(context.Background(), 0)
	_, _ = before.ListChecklists(context.Background(), 25)
	after.Invalidate(context.Background())

	for _, limit := range []int{0, 25} {
		if _, ok, _ := shared.get(context.Background(), recordKeyPrefix+strconv.Itoa(limit)); ok {
			t.Fatalf("limit %d still cached after invalidate", limit)
		}
	}
}

func TestRecordCacheDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("down")}
	c := NewRecordCache(src, time.Minute, nil)

	if _, err := c.ListChecklists(context.Background(), 0); err == nil {
		t.Fatalf("expected error")
	}
	src.setErr(nil)
	if _, err := c.ListChecklists(context.Background(), 0); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if n := src.calls.Load(); n != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", n)
	}
}

func TestRecordCacheZeroTTLPassesThrough(t *testing.T) {
	src := &countingSource{}
	c := NewRecordCache(src, 0, nil)
	_, _ = c.ListChecklists(context.Background(), 0)
	_, _ = c.ListChecklists(context.Background(), 0)
	if n := src.calls.Load(); n != 2 {
		t.Fatalf("expected pass-through, got %d calls", n)
	}
}

func TestNewRedisClientEmptyAddress(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "")
	if err != nil || client != nil {
		t.Fatalf("expected nil client for empty address, got %v %v", client, err)
	}
}
