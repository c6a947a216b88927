package cache

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ETFBoard/internal/model"
)

const (
	DefaultKey = "topEtfDataCache"
	DefaultTTL = 60 * time.Second
)

// SnapshotCache holds the single most recent snapshot for the session.
// It never fetches; on a miss the caller runs a fetch cycle.
type SnapshotCache struct {
	store Storage
	key   string
	ttl   time.Duration
	now   func() time.Time
	log   *zap.Logger
}

// Option configures a SnapshotCache.
type Option func(*SnapshotCache)

func WithKey(key string) Option { return func(c *SnapshotCache) { c.key = key } }

func WithTTL(ttl time.Duration) Option { return func(c *SnapshotCache) { c.ttl = ttl } }

// WithClock replaces time.Now for TTL checks and timestamps.
func WithClock(now func() time.Time) Option { return func(c *SnapshotCache) { c.now = now } }

func WithLogger(l *zap.Logger) Option { return func(c *SnapshotCache) { c.log = l } }

// New creates a SnapshotCache backed by store.
func New(store Storage, opts ...Option) *SnapshotCache {
	c := &SnapshotCache{
		store: store,
		key:   DefaultKey,
		ttl:   DefaultTTL,
		now:   time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// entry is the serialized form: {timestamp: epoch-millis, data: [...]}.
type entry struct {
	Timestamp int64                  `json:"timestamp"`
	Data      []model.SecurityRecord `json:"data"`
}

// TTL returns the configured time-to-live.
func (c *SnapshotCache) TTL() time.Duration { return c.ttl }

// Now returns the cache clock's current time.
func (c *SnapshotCache) Now() time.Time { return c.now() }

// Get returns the cached snapshot if it is younger than the TTL. Storage and
// decode failures are reported as a miss.
func (c *SnapshotCache) Get() (*model.Snapshot, bool) {
	raw, ok, err := c.store.Get(c.key)
	if err != nil {
		c.log.Warn("read snapshot cache", zap.Error(err))
		return nil, false
	}
	if !ok {
		c.log.Debug("snapshot cache miss")
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.log.Warn("decode snapshot cache", zap.Error(err))
		return nil, false
	}

	fetchedAt := time.UnixMilli(e.Timestamp)
	age := c.now().Sub(fetchedAt)
	if age >= c.ttl {
		c.log.Debug("snapshot cache expired", zap.Duration("age", age))
		return nil, false
	}
	c.log.Debug("snapshot cache hit", zap.Duration("age", age), zap.Int("records", len(e.Data)))
	return &model.Snapshot{FetchedAt: fetchedAt, Records: e.Data}, true
}

// Put replaces the cached snapshot.
func (c *SnapshotCache) Put(snap *model.Snapshot) error {
	data := snap.Records
	if data == nil {
		data = []model.SecurityRecord{}
	}
	raw, err := json.Marshal(entry{Timestamp: snap.FetchedAt.UnixMilli(), Data: data})
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}
	return errors.Wrap(c.store.Set(c.key, raw), "store snapshot")
}

// Invalidate drops the cached snapshot so the next Get misses.
func (c *SnapshotCache) Invalidate() error {
	return errors.Wrap(c.store.Delete(c.key), "invalidate snapshot")
}
