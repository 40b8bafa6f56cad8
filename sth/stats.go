package sth

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/docker/go-units"
)

// LagWindow is the number of most recent rows per log the average
// ingestion lag is computed over.
const LagWindow = 50

// Totals counts stored attestations overall and in trailing windows.
type Totals struct {
	Total    int64 `json:"total"`
	LastHour int64 `json:"last_hour"`
	Last24h  int64 `json:"last_24h"`
	Last7d   int64 `json:"last_7d"`
}

// MonitorActivity is a monitor's contribution to a single log.
type MonitorActivity struct {
	MonitorID string    `json:"monitor_id"`
	Count     int64     `json:"count"`
	LastSeen  time.Time `json:"last_seen"`
}

// LogStats describes ingestion activity of one log.
type LogStats struct {
	LogID             string             `json:"log_id"`
	Count             int64              `json:"count"`
	Last24h           int64              `json:"last_24h"`
	LatestTreeSize    uint64             `json:"latest_tree_size"`
	LatestTimestamp   uint64             `json:"latest_timestamp"`
	OldestTreeSize    uint64             `json:"oldest_tree_size"`
	OldestTimestamp   uint64             `json:"oldest_timestamp"`
	TreeGrowthTotal   uint64             `json:"tree_growth_total"`
	FirstSeen         *time.Time         `json:"first_seen"`
	LastSeen          *time.Time         `json:"last_seen"`
	StalenessSeconds  *int64             `json:"staleness_seconds"`
	StalenessHuman    string             `json:"staleness_human,omitempty"`
	AvgIngestionLagMs *int64             `json:"avg_ingestion_lag_ms"`
	Monitors          []*MonitorActivity `json:"monitors"`
}

// MonitorStats describes reporting activity of one monitor across logs.
type MonitorStats struct {
	MonitorID        string     `json:"monitor_id"`
	Count            int64      `json:"count"`
	LogCount         int        `json:"log_count"`
	FirstSeen        *time.Time `json:"first_seen"`
	LastSeen         *time.Time `json:"last_seen"`
	StalenessSeconds *int64     `json:"staleness_seconds"`
	StalenessHuman   string     `json:"staleness_human,omitempty"`
}

// DataRange spans the oldest and newest stored attestation.
type DataRange struct {
	Oldest    *time.Time `json:"oldest"`
	Newest    *time.Time `json:"newest"`
	SpanHours float64    `json:"span_hours"`
}

// IngestionRate is the average number of attestations stored per hour
// and per day over the data range.
type IngestionRate struct {
	PerHour float64 `json:"per_hour"`
	PerDay  float64 `json:"per_day"`
}

// ConsistencySummary embeds the consistency result of every log.
type ConsistencySummary struct {
	Logs         int                  `json:"logs"`
	Consistent   int                  `json:"consistent"`
	Inconsistent int                  `json:"inconsistent"`
	Results      []*ConsistencyResult `json:"results"`
}

// Report is a complete statistics snapshot taken at GeneratedAt.
type Report struct {
	GeneratedAt   time.Time           `json:"generated_at"`
	Totals        *Totals             `json:"totals"`
	Logs          []*LogStats         `json:"logs"`
	Monitors      []*MonitorStats     `json:"monitors"`
	Histograms    *Histograms         `json:"histograms"`
	DataRange     *DataRange          `json:"data_range"`
	IngestionRate *IngestionRate      `json:"ingestion_rate"`
	Consistency   *ConsistencySummary `json:"consistency"`
}

// Aggregator computes statistics snapshots over the attestation store.
type Aggregator struct {
	store   Store
	checker *Checker
}

// NewAggregator returns an aggregator reading from store. The checker
// provides the consistency section of every report.
func NewAggregator(store Store, checker *Checker) *Aggregator {
	return &Aggregator{
		store:   store,
		checker: checker,
	}
}

// Snapshot computes a report as of now. Every time window is derived from
// the single instant passed in.
func (a *Aggregator) Snapshot(ctx context.Context, now time.Time) (*Report, error) {
	now = now.UTC()
	totals, err := a.totals(ctx, now)
	if err != nil {
		return nil, err
	}

	logs, err := a.logs(ctx, now)
	if err != nil {
		return nil, err
	}

	monitors, err := a.monitors(ctx, now)
	if err != nil {
		return nil, err
	}

	hourly, err := a.histogram(ctx, now, HourlyBuckets, time.Hour)
	if err != nil {
		return nil, err
	}

	fiveMinute, err := a.histogram(ctx, now, FiveMinuteBuckets, 5*time.Minute)
	if err != nil {
		return nil, err
	}

	dr, span, err := a.dataRange(ctx)
	if err != nil {
		return nil, err
	}

	results, err := a.checker.CheckAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ConsistencySummary{
		Logs:    len(results),
		Results: results,
	}
	for _, r := range results {
		if r.Consistent {
			summary.Consistent++
		} else {
			summary.Inconsistent++
		}
	}

	return &Report{
		GeneratedAt: now,
		Totals:      totals,
		Logs:        logs,
		Monitors:    monitors,
		Histograms: &Histograms{
			Hourly:     hourly,
			FiveMinute: fiveMinute,
		},
		DataRange:     dr,
		IngestionRate: ingestionRate(totals.Total, span),
		Consistency:   summary,
	}, nil
}

func (a *Aggregator) totals(ctx context.Context, now time.Time) (*Totals, error) {
	t := &Totals{}
	counts := []struct {
		dst   *int64
		since time.Time
	}{
		{&t.Total, time.Time{}},
		{&t.LastHour, now.Add(-time.Hour)},
		{&t.Last24h, now.Add(-24 * time.Hour)},
		{&t.Last7d, now.Add(-7 * 24 * time.Hour)},
	}
	for _, c := range counts {
		n, err := a.store.Count(ctx, Filter{Since: c.since})
		if err != nil {
			return nil, storeErr("count", err)
		}
		*c.dst = n
	}

	return t, nil
}

func (a *Aggregator) logs(ctx context.Context, now time.Time) ([]*LogStats, error) {
	groups, err := a.store.Aggregate(ctx, GroupByLog, Filter{})
	if err != nil {
		return nil, storeErr("group logs", err)
	}

	recent, err := a.store.Aggregate(ctx, GroupByLog, Filter{Since: now.Add(-24 * time.Hour)})
	if err != nil {
		return nil, storeErr("group recent logs", err)
	}

	recentCounts := make(map[string]int64, len(recent))
	for _, g := range recent {
		recentCounts[g.Key] = g.Count
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	out := make([]*LogStats, 0, len(groups))
	for _, g := range groups {
		ls, err := a.logStats(ctx, now, g)
		if err != nil {
			return nil, err
		}
		ls.Last24h = recentCounts[g.Key]
		out = append(out, ls)
	}

	return out, nil
}

func (a *Aggregator) logStats(ctx context.Context, now time.Time, g *Group) (*LogStats, error) {
	ls := &LogStats{
		LogID:           g.Key,
		Count:           g.Count,
		TreeGrowthTotal: g.MaxTreeSize - g.MinTreeSize,
		Monitors:        make([]*MonitorActivity, 0),
	}
	if g.Count > 0 {
		ls.FirstSeen = timePtr(g.MinStoredAt)
		ls.LastSeen = timePtr(g.MaxStoredAt)
		ls.StalenessSeconds, ls.StalenessHuman = staleness(now, g.MaxStoredAt)
	}

	recent, err := a.store.Scan(ctx, ScanQuery{LogID: g.Key, Limit: LagWindow})
	if err != nil {
		return nil, storeErr("scan recent", err)
	}

	if len(recent) > 0 {
		ls.LatestTreeSize = recent[0].TreeSize
		ls.LatestTimestamp = recent[0].Timestamp
		ls.AvgIngestionLagMs = averageLag(recent)
	}

	oldest, err := a.store.Scan(ctx, ScanQuery{LogID: g.Key, Limit: 1, Ascending: true})
	if err != nil {
		return nil, storeErr("scan oldest", err)
	}

	if len(oldest) > 0 {
		ls.OldestTreeSize = oldest[0].TreeSize
		ls.OldestTimestamp = oldest[0].Timestamp
	}

	monitors, err := a.store.Aggregate(ctx, GroupByMonitor, Filter{LogID: g.Key})
	if err != nil {
		return nil, storeErr("group log monitors", err)
	}

	sort.Slice(monitors, func(i, j int) bool {
		return monitors[i].Key < monitors[j].Key
	})
	for _, m := range monitors {
		ls.Monitors = append(ls.Monitors, &MonitorActivity{
			MonitorID: m.Key,
			Count:     m.Count,
			LastSeen:  m.MaxStoredAt,
		})
	}

	return ls, nil
}

func (a *Aggregator) monitors(ctx context.Context, now time.Time) ([]*MonitorStats, error) {
	groups, err := a.store.Aggregate(ctx, GroupByMonitor, Filter{})
	if err != nil {
		return nil, storeErr("group monitors", err)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	out := make([]*MonitorStats, 0, len(groups))
	for _, g := range groups {
		logs, err := a.store.Aggregate(ctx, GroupByLog, Filter{MonitorID: g.Key})
		if err != nil {
			return nil, storeErr("group monitor logs", err)
		}

		ms := &MonitorStats{
			MonitorID: g.Key,
			Count:     g.Count,
			LogCount:  len(logs),
		}
		if g.Count > 0 {
			ms.FirstSeen = timePtr(g.MinStoredAt)
			ms.LastSeen = timePtr(g.MaxStoredAt)
			ms.StalenessSeconds, ms.StalenessHuman = staleness(now, g.MaxStoredAt)
		}
		out = append(out, ms)
	}

	return out, nil
}

// dataRange also returns the unrounded span in hours.
func (a *Aggregator) dataRange(ctx context.Context) (*DataRange, float64, error) {
	groups, err := a.store.Aggregate(ctx, GroupNone, Filter{})
	if err != nil {
		return nil, 0, storeErr("aggregate range", err)
	}

	dr := &DataRange{}
	if len(groups) == 0 || groups[0].Count == 0 {
		return dr, 0, nil
	}

	g := groups[0]
	span := g.MaxStoredAt.Sub(g.MinStoredAt).Hours()
	dr.Oldest = timePtr(g.MinStoredAt)
	dr.Newest = timePtr(g.MaxStoredAt)
	dr.SpanHours = round2(span)
	return dr, span, nil
}

func ingestionRate(total int64, spanHours float64) *IngestionRate {
	if spanHours <= 0 {
		return &IngestionRate{}
	}

	return &IngestionRate{
		PerHour: round2(float64(total) / spanHours),
		PerDay:  round2(float64(total) / (spanHours / 24)),
	}
}

func averageLag(rows []*Attestation) *int64 {
	if len(rows) == 0 {
		return nil
	}

	var sum float64
	for _, r := range rows {
		sum += float64(r.StoredAt.UnixMilli() - int64(r.Timestamp))
	}

	lag := int64(math.Round(sum / float64(len(rows))))
	return &lag
}

func staleness(now, last time.Time) (*int64, string) {
	d := now.Sub(last)
	if d < 0 {
		d = 0
	}

	secs := int64(d / time.Second)
	return &secs, units.HumanDuration(d)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func timePtr(t time.Time) *time.Time {
	t = t.UTC()
	return &t
}
