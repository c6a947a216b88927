// Package board owns the dashboard's data lifecycle: the base dataset, the
// fetch cycle that replaces it, and the user's filter and sort selections.
package board

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ETFBoard/internal/cache"
	"ETFBoard/internal/calculator"
	"ETFBoard/internal/collector"
	"ETFBoard/internal/metadata"
	"ETFBoard/internal/model"
	"ETFBoard/internal/screener"
)

// ErrBusy is returned when a fetch cycle is requested while one is running.
var ErrBusy = errors.New("fetch already in progress")

// FetchFailedMessage is the user-visible text set when a fetch cycle fails.
const FetchFailedMessage = "ETF data could not be loaded. Please try again shortly."

var (
	DefaultFilters = model.FilterState{Market: model.MarketDomestic, HideLowValue: true}
	DefaultSort    = model.SortState{Field: model.SortByEstimatedTradingValue, Direction: model.Descending}
)

// State is a point-in-time copy of everything the page layer renders
// besides the records themselves.
type State struct {
	Loading     bool              `json:"loading"`
	Error       string            `json:"error,omitempty"`
	LastUpdated time.Time         `json:"lastUpdated"`
	IsLive      bool              `json:"isLive"`
	Total       int               `json:"total"`
	Filters     model.FilterState `json:"filters"`
	Sort        model.SortState   `json:"sort"`
	Summary     model.Summary     `json:"summary"`
}

// Board holds the base dataset. Only a completed fetch cycle replaces it.
type Board struct {
	collector *collector.Collector
	metadata  metadata.Source
	cache     *cache.SnapshotCache
	engine    *screener.Engine
	markers   []string
	sample    bool
	log       *zap.Logger

	busy atomic.Bool

	mu          sync.RWMutex
	records     []model.SecurityRecord
	summary     model.Summary
	filters     model.FilterState
	sort        model.SortState
	loading     bool
	errMsg      string
	lastErr     error
	lastUpdated time.Time
	live        bool
}

// Option configures a Board.
type Option func(*Board)

func WithLogger(l *zap.Logger) Option { return func(b *Board) { b.log = l } }

func WithFilters(f model.FilterState) Option { return func(b *Board) { b.filters = f } }

func WithSort(s model.SortState) Option { return func(b *Board) { b.sort = s } }

// WithExcludedMarkers sets the name markers of leveraged and inverse products.
func WithExcludedMarkers(markers []string) Option { return func(b *Board) { b.markers = markers } }

// WithSampleData marks every snapshot as not live.
func WithSampleData() Option { return func(b *Board) { b.sample = true } }

// New creates a Board. Call Load to populate it.
func New(col *collector.Collector, md metadata.Source, c *cache.SnapshotCache, e *screener.Engine, opts ...Option) *Board {
	b := &Board{
		collector: col,
		metadata:  md,
		cache:     c,
		engine:    e,
		markers:   calculator.DefaultExcludedMarkers,
		log:       zap.NewNop(),
		filters:   DefaultFilters,
		sort:      DefaultSort,
		loading:   true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load populates the board on first use. It is the same cycle as Refresh.
func (b *Board) Load(ctx context.Context) error {
	return b.run(ctx, false)
}

// Refresh serves a fresh cached snapshot if there is one, otherwise runs a
// fetch cycle. It never retries on its own.
func (b *Board) Refresh(ctx context.Context) error {
	return b.run(ctx, false)
}

// ForceRefresh drops the cached snapshot and runs a fetch cycle.
func (b *Board) ForceRefresh(ctx context.Context) error {
	return b.run(ctx, true)
}

// Busy reports whether a fetch cycle is in flight.
func (b *Board) Busy() bool { return b.busy.Load() }

// run executes one cycle. The cycle is detached from the caller's
// cancellation: once started it completes or fails on the upstream alone.
func (b *Board) run(ctx context.Context, force bool) error {
	if !b.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer b.busy.Store(false)
	ctx = context.WithoutCancel(ctx)

	if force {
		if err := b.cache.Invalidate(); err != nil {
			b.log.Warn("invalidate snapshot cache", zap.Error(err))
		}
	} else if snap, ok := b.cache.Get(); ok {
		b.install(snap)
		return nil
	}

	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	snap, err := b.fetch(ctx)
	if err != nil {
		b.log.Error("fetch cycle failed", zap.Error(err))
		b.mu.Lock()
		b.loading = false
		b.live = false
		b.errMsg = FetchFailedMessage
		b.lastErr = err
		b.lastUpdated = b.cache.Now()
		b.mu.Unlock()
		return err
	}

	if err := b.cache.Put(snap); err != nil {
		b.log.Warn("store snapshot", zap.Error(err))
	}
	b.install(snap)
	b.log.Info("snapshot replaced", zap.Int("records", len(snap.Records)))
	return nil
}

// fetch loads metadata and market records concurrently, then merges them.
func (b *Board) fetch(ctx context.Context) (*model.Snapshot, error) {
	var (
		lookup  metadata.Lookup
		records []model.SecurityRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := b.metadata.Load(gctx)
		if err != nil {
			return errors.Wrap(err, "load metadata")
		}
		lookup = l
		return nil
	})
	g.Go(func() error {
		r, err := b.collector.Collect(gctx)
		if err != nil {
			return err
		}
		records = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.Snapshot{
		FetchedAt: b.cache.Now(),
		Records:   metadata.Merge(records, lookup),
	}, nil
}

func (b *Board) install(snap *model.Snapshot) {
	summary := calculator.Summarize(snap.Records, b.markers)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = snap.Records
	b.summary = summary
	b.loading = false
	b.live = !b.sample
	b.errMsg = ""
	b.lastErr = nil
	b.lastUpdated = snap.FetchedAt
}

// Records returns a copy of the base dataset.
func (b *Board) Records() []model.SecurityRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.SecurityRecord(nil), b.records...)
}

// View returns the base dataset filtered and sorted by the current selections.
func (b *Board) View() ([]model.SecurityRecord, error) {
	b.mu.RLock()
	records, f, s := b.records, b.filters, b.sort
	b.mu.RUnlock()
	return b.engine.View(records, f, s)
}

// ViewWith returns the base dataset filtered and sorted by f and s without
// touching the current selections.
func (b *Board) ViewWith(f model.FilterState, s model.SortState) ([]model.SecurityRecord, error) {
	b.mu.RLock()
	records := b.records
	b.mu.RUnlock()
	return b.engine.View(records, f, s)
}

// Summary returns the statistics over the full dataset.
func (b *Board) Summary() model.Summary {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.summary
}

func (b *Board) Filters() model.FilterState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filters
}

func (b *Board) Sort() model.SortState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sort
}

// SetFilters replaces the filter selection.
func (b *Board) SetFilters(f model.FilterState) error {
	if f.Market == "" {
		f.Market = model.MarketAll
	}
	if !f.Market.Valid() {
		return errors.Errorf("unknown market %q", f.Market)
	}
	b.mu.Lock()
	b.filters = f
	b.mu.Unlock()
	return nil
}

// SetSort replaces the sort selection.
func (b *Board) SetSort(s model.SortState) error {
	if err := screener.ValidateSort(s); err != nil {
		return err
	}
	b.mu.Lock()
	b.sort = s
	b.mu.Unlock()
	return nil
}

// LastError returns the cause of the most recent failed cycle, if the board
// is still in the failed state.
func (b *Board) LastError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastErr
}

// State returns a copy of the board's flags, selections and summary.
func (b *Board) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return State{
		Loading:     b.loading,
		Error:       b.errMsg,
		LastUpdated: b.lastUpdated,
		IsLive:      b.live,
		Total:       len(b.records),
		Filters:     b.filters,
		Sort:        b.sort,
		Summary:     b.summary,
	}
}
