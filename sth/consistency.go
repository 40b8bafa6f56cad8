package sth

import (
	"context"
	"sort"
	"time"

	"github.com/photon-storage/go-common/log"
)

// MonitorView is the latest observation a single monitor reported for a
// log.
type MonitorView struct {
	MonitorID string    `json:"monitor_id"`
	TreeSize  uint64    `json:"tree_size"`
	RootHash  string    `json:"root_hash"`
	Timestamp uint64    `json:"timestamp"`
	StoredAt  time.Time `json:"stored_at"`
}

// Conflict lists the distinct root hashes monitors hold for the same tree
// size.
type Conflict struct {
	TreeSize   uint64   `json:"tree_size"`
	RootHashes []string `json:"root_hashes"`
	Monitors   []string `json:"monitors"`
}

// ConsistencyResult is the outcome of comparing every monitor's latest
// view of one log.
type ConsistencyResult struct {
	LogID            string         `json:"log_id"`
	MonitorCount     int            `json:"monitor_count"`
	Consistent       bool           `json:"consistent"`
	LatestPerMonitor []*MonitorView `json:"latest_per_monitor"`
	Conflicts        []*Conflict    `json:"conflicts"`
}

// Checker detects split views by comparing the latest tree head each
// monitor reported at equal tree sizes.
type Checker struct {
	store Store
}

// NewChecker returns a checker reading from store.
func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// Check compares the latest attestation of every monitor that reported on
// logID. Older observations are ignored, so a conflict superseded by
// newer agreeing reports is not flagged.
func (c *Checker) Check(ctx context.Context, logID string) (*ConsistencyResult, error) {
	logID = NormalizeLogID(logID)
	monitors, err := c.store.Aggregate(ctx, GroupByMonitor, Filter{LogID: logID})
	if err != nil {
		return nil, storeErr("group monitors", err)
	}

	sort.Slice(monitors, func(i, j int) bool {
		return monitors[i].Key < monitors[j].Key
	})

	res := &ConsistencyResult{
		LogID:            logID,
		MonitorCount:     len(monitors),
		Consistent:       true,
		LatestPerMonitor: make([]*MonitorView, 0, len(monitors)),
		Conflicts:        make([]*Conflict, 0),
	}

	latest := make([]*Attestation, 0, len(monitors))
	for _, m := range monitors {
		rows, err := c.store.Scan(ctx, ScanQuery{
			LogID:     logID,
			MonitorID: m.Key,
			Limit:     1,
		})
		if err != nil {
			return nil, storeErr("scan monitor latest", err)
		}

		if len(rows) == 0 {
			continue
		}

		a := rows[0]
		latest = append(latest, a)
		res.LatestPerMonitor = append(res.LatestPerMonitor, &MonitorView{
			MonitorID: m.Key,
			TreeSize:  a.TreeSize,
			RootHash:  a.RootHash,
			Timestamp: a.Timestamp,
			StoredAt:  a.StoredAt,
		})
	}

	res.Conflicts = conflicts(latest)
	res.Consistent = len(res.Conflicts) == 0
	if !res.Consistent {
		log.Warn("split view detected",
			"log_id", logID,
			"conflicts", len(res.Conflicts),
		)
	}

	return res, nil
}

// CheckAll runs Check for every log with stored attestations, ordered by
// log id.
func (c *Checker) CheckAll(ctx context.Context) ([]*ConsistencyResult, error) {
	logs, err := c.store.Aggregate(ctx, GroupByLog, Filter{})
	if err != nil {
		return nil, storeErr("group logs", err)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Key < logs[j].Key
	})

	results := make([]*ConsistencyResult, 0, len(logs))
	for _, l := range logs {
		r, err := c.Check(ctx, l.Key)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, nil
}

func conflicts(latest []*Attestation) []*Conflict {
	type sizeGroup struct {
		hashes   map[string]struct{}
		monitors []string
	}

	groups := make(map[uint64]*sizeGroup)
	for _, a := range latest {
		g, ok := groups[a.TreeSize]
		if !ok {
			g = &sizeGroup{hashes: make(map[string]struct{})}
			groups[a.TreeSize] = g
		}
		g.hashes[a.RootHash] = struct{}{}
		g.monitors = append(g.monitors, a.MonitorID)
	}

	out := make([]*Conflict, 0)
	for size, g := range groups {
		if len(g.hashes) < 2 {
			continue
		}

		hashes := make([]string, 0, len(g.hashes))
		for h := range g.hashes {
			hashes = append(hashes, h)
		}
		sort.Strings(hashes)
		sort.Strings(g.monitors)
		out = append(out, &Conflict{
			TreeSize:   size,
			RootHashes: hashes,
			Monitors:   g.monitors,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TreeSize < out[j].TreeSize
	})
	return out
}
