package sth

import (
	"context"
	"time"
)

// Attestation is a single tree head observation reported by a monitor.
type Attestation struct {
	ID        uint64    `json:"id"`
	LogID     string    `json:"log_id"`
	TreeSize  uint64    `json:"tree_size"`
	RootHash  string    `json:"root_hash"`
	Timestamp uint64    `json:"timestamp"`
	MonitorID string    `json:"monitor_id"`
	StoredAt  time.Time `json:"stored_at"`
}

// GroupKey selects the column rows are grouped by in an aggregate query.
type GroupKey int

const (
	// GroupNone aggregates all matching rows into a single group.
	GroupNone GroupKey = iota
	GroupByLog
	GroupByMonitor
)

// Filter restricts the rows an aggregate or count query covers. Zero
// values disable the corresponding condition. Since is inclusive and
// Until is exclusive.
type Filter struct {
	LogID     string
	MonitorID string
	Since     time.Time
	Until     time.Time
}

// Group is one result row of an aggregate query.
type Group struct {
	Key         string
	Count       int64
	MinStoredAt time.Time
	MaxStoredAt time.Time
	MinTreeSize uint64
	MaxTreeSize uint64
}

// ScanQuery selects rows ordered by stored_at, newest first unless
// Ascending is set. Ties are broken by id in the same direction.
type ScanQuery struct {
	LogID     string
	MonitorID string
	Offset    int
	Limit     int
	Ascending bool
}

// Store is the persistent attestation table. Implementations return
// (nil, nil) from FindByIdentity when no row matches.
type Store interface {
	Insert(ctx context.Context, a *Attestation) error
	FindByIdentity(ctx context.Context, logID string, treeSize uint64, rootHash string) (*Attestation, error)
	Scan(ctx context.Context, q ScanQuery) ([]*Attestation, error)
	Count(ctx context.Context, f Filter) (int64, error)
	Aggregate(ctx context.Context, key GroupKey, f Filter) ([]*Group, error)
}
