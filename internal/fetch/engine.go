// Package fetch orchestrates a full fetch cycle: retrieving
// per-day record batches from the analytics API (in bounded
// concurrent batches, consulting the local day cache first),
// folding them through the aggregation core, and assembling an
// immutable snapshot.
package fetch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usagedeck/usagedeck/internal/aggregate"
	"github.com/usagedeck/usagedeck/internal/analytics"
	"github.com/usagedeck/usagedeck/internal/snapshot"
)

// batchWidth is the number of day fetches in flight at once.
const batchWidth = 5

// Source retrieves raw data from the upstream analytics API.
type Source interface {
	FetchUsers(ctx context.Context, day string) ([]analytics.UserActivityRecord, error)
	FetchSummaries(ctx context.Context, startDay, endDay string) ([]analytics.DaySummary, error)
	FetchProjects(ctx context.Context, day string) ([]analytics.ProjectUsageRecord, error)
}

// DayCache stores completed day batches so later fetch cycles
// skip the API for days already seen.
type DayCache interface {
	GetDayRecords(ctx context.Context, day string) ([]analytics.UserActivityRecord, bool, error)
	PutDayRecords(ctx context.Context, day string, records []analytics.UserActivityRecord) error
}

// Engine runs fetch cycles. Each Run is independent; the
// resulting snapshot is a pure function of the upstream data
// and the lookback window.
type Engine struct {
	source Source
	cache  DayCache // nil disables caching
	days   int
	now    func() time.Time
}

// NewEngine creates an Engine fetching the last days calendar
// days. cache may be nil.
func NewEngine(source Source, cache DayCache, days int) *Engine {
	return &Engine{
		source: source,
		cache:  cache,
		days:   days,
		now:    time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

// dateRange returns the lookback days ascending, ending at
// yesterday: the API only serves completed days.
func (e *Engine) dateRange() []string {
	now := e.now().UTC()
	dates := make([]string, 0, e.days)
	for i := e.days; i >= 1; i-- {
		dates = append(dates, now.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}

// Run executes one fetch cycle and returns the snapshot. A
// failure fetching user records or summaries aborts the cycle;
// the project source alone is allowed to fail, degrading to an
// empty project list.
func (e *Engine) Run(ctx context.Context) (*snapshot.Snapshot, error) {
	dates := e.dateRange()
	if len(dates) == 0 {
		return nil, fmt.Errorf("empty lookback window (days=%d)", e.days)
	}
	start, end := dates[0], dates[len(dates)-1]

	recordsByDay, err := e.fetchUsers(ctx, dates)
	if err != nil {
		return nil, fmt.Errorf("fetching user records: %w", err)
	}

	summaries, err := e.source.FetchSummaries(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching day summaries: %w", err)
	}

	projectsByDay, err := e.fetchProjects(ctx, dates)
	if err != nil {
		log.Printf("skipping projects: %v", err)
		projectsByDay = nil
	}

	users := aggregate.SortBySessions(aggregate.ByUser(recordsByDay))

	return &snapshot.Snapshot{
		FetchedAt: e.now().UTC(),
		DateRange: snapshot.DateRange{Start: start, End: end},
		Daily:     aggregate.ByDay(recordsByDay, summaries),
		Users:     users,
		Tools:     aggregate.Tools(recordsByDay),
		Projects:  aggregate.Projects(projectsByDay),
		UserDaily: aggregate.ByUserDaily(recordsByDay),
	}, nil
}

// fetchUsers retrieves every day's record batch, batchWidth
// days at a time, consulting the cache first.
func (e *Engine) fetchUsers(
	ctx context.Context, dates []string,
) (map[string][]analytics.UserActivityRecord, error) {
	var mu sync.Mutex
	byDay := make(map[string][]analytics.UserActivityRecord, len(dates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWidth)

	for _, day := range dates {
		g.Go(func() error {
			records, cached, err := e.cachedDay(ctx, day)
			if err != nil {
				return err
			}
			if !cached {
				records, err = e.source.FetchUsers(ctx, day)
				if err != nil {
					return err
				}
				e.cacheDay(ctx, day, records)
			}

			mu.Lock()
			byDay[day] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return byDay, nil
}

// cachedDay looks up a day in the cache. Cache read errors are
// logged and treated as misses; the API remains authoritative.
func (e *Engine) cachedDay(
	ctx context.Context, day string,
) ([]analytics.UserActivityRecord, bool, error) {
	if e.cache == nil {
		return nil, false, nil
	}
	records, ok, err := e.cache.GetDayRecords(ctx, day)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		log.Printf("day cache read %s: %v", day, err)
		return nil, false, nil
	}
	return records, ok, nil
}

// cacheDay stores a fetched day. Write failures only cost a
// refetch next cycle, so they are logged, not returned.
func (e *Engine) cacheDay(
	ctx context.Context, day string,
	records []analytics.UserActivityRecord,
) {
	if e.cache == nil {
		return
	}
	if err := e.cache.PutDayRecords(ctx, day, records); err != nil {
		log.Printf("day cache write %s: %v", day, err)
	}
}

// fetchProjects retrieves per-project usage for every day in
// bounded batches. The first error cancels the remaining
// fetches and is returned whole; the caller degrades to an
// empty project list.
func (e *Engine) fetchProjects(
	ctx context.Context, dates []string,
) (map[string][]analytics.ProjectUsageRecord, error) {
	var mu sync.Mutex
	byDay := make(map[string][]analytics.ProjectUsageRecord, len(dates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWidth)

	for _, day := range dates {
		g.Go(func() error {
			records, err := e.source.FetchProjects(ctx, day)
			if err != nil {
				return err
			}
			mu.Lock()
			byDay[day] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return byDay, nil
}
