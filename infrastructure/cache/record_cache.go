package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"fleetcheck/models"
)

const recordKeyPrefix = "fleetcheck:checklists:"

// RecordSource is the record store as seen by the cache.
type RecordSource interface {
	ListChecklists(ctx context.Context, limit int) ([]models.ChecklistRecord, error)
	CreateChecklist(ctx context.Context, record models.ChecklistRecord) (models.ChecklistRecord, error)
}

type recordBackend interface {
	get(ctx context.Context, key string) ([]models.ChecklistRecord, bool, error)
	set(ctx context.Context, key string, records []models.ChecklistRecord, ttl time.Duration) error
	// clear drops every record list under recordKeyPrefix, including lists
	// written by other processes sharing the backend.
	clear(ctx context.Context) error
}

// RecordCache keeps record list responses for a short TTL. Concurrent misses
// for the same limit share one upstream fetch. Writes made through the cache
// drop every cached list; a fetch that was in flight across a write is
// returned to its callers but not stored.
type RecordCache struct {
	source     RecordSource
	backend    recordBackend
	ttl        time.Duration
	group      singleflight.Group
	generation atomic.Uint64
}

// NewRecordCache caches in Redis when rdb is non-nil, otherwise in process.
// A zero ttl disables caching.
func NewRecordCache(source RecordSource, ttl time.Duration, rdb *redis.Client) *RecordCache {
	var backend recordBackend = newMemoryRecords()
	if rdb != nil {
		backend = &redisRecords{client: rdb}
	}
	return &RecordCache{
		source:  source,
		backend: backend,
		ttl:     ttl,
	}
}

// ListChecklists serves from cache when fresh.
func (c *RecordCache) ListChecklists(ctx context.Context, limit int) ([]models.ChecklistRecord, error) {
	if c.ttl <= 0 {
		return c.source.ListChecklists(ctx, limit)
	}
	key := recordKeyPrefix + strconv.Itoa(limit)
	records, ok, err := c.backend.get(ctx, key)
	if err != nil {
		slog.Warn("record cache read failed", slog.String("key", key), slog.Any("err", err))
	}
	if ok {
		return records, nil
	}

	// Callers arriving after an Invalidate start a new flight instead of
	// joining one that began before the write.
	gen := c.generation.Load()
	flight := key + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(flight, func() (any, error) {
		fresh, err := c.source.ListChecklists(ctx, limit)
		if err != nil {
			return nil, err
		}
		if c.generation.Load() != gen {
			return fresh, nil
		}
		if err := c.backend.set(ctx, key, fresh, c.ttl); err != nil {
			slog.Warn("record cache write failed", slog.String("key", key), slog.Any("err", err))
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ChecklistRecord), nil
}

// CreateChecklist writes through to the store and invalidates on success.
func (c *RecordCache) CreateChecklist(ctx context.Context, record models.ChecklistRecord) (models.ChecklistRecord, error) {
	created, err := c.source.CreateChecklist(ctx, record)
	if err != nil {
		return models.ChecklistRecord{}, err
	}
	c.Invalidate(ctx)
	return created, nil
}

// Invalidate drops every cached list and detaches in-flight fetches, so the
// next miss goes upstream again.
func (c *RecordCache) Invalidate(ctx context.Context) {
	c.generation.Add(1)
	if err := c.backend.clear(ctx); err != nil {
		slog.Warn("record cache invalidate failed", slog.Any("err", err))
	}
}

type memoryEntry struct {
	records   []models.ChecklistRecord
	expiresAt time.Time
}

type memoryRecords struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func newMemoryRecords() *memoryRecords {
	return &memoryRecords{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *memoryRecords) get(_ context.Context, key string) ([]models.ChecklistRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.records, true, nil
}

func (m *memoryRecords) set(_ context.Context, key string, records []models.ChecklistRecord, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{records: records, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *memoryRecords) clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

type redisRecords struct {
	client *redis.Client
}

func (r *redisRecords) get(ctx context.Context, key string) ([]models.ChecklistRecord, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var records []models.ChecklistRecord
	if err := json.Unmarshal(val, &records); err != nil {
		return nil, false, err
	}
	return records, true, nil
}

func (r *redisRecords) set(ctx context.Context, key string, records []models.ChecklistRecord, ttl time.Duration) error {
	b, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, b, ttl).Err()
}

func (r *redisRecords) clear(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, recordKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// NewRedisClient connects to addr and pings it. An empty addr returns nil,
// which keeps the record cache in process.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
