package sth

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store used by the package tests.
type memStore struct {
	mu     sync.Mutex
	rows   []*Attestation
	nextID uint64
	err    error
}

func newMemStore() *memStore {
	return &memStore{}
}

// add inserts a row with an explicit stored_at, bypassing the ingester.
func (m *memStore) add(logID, monitorID string, size uint64, hash string, ts uint64, storedAt time.Time) *Attestation {
	a := &Attestation{
		LogID:     logID,
		TreeSize:  size,
		RootHash:  hash,
		Timestamp: ts,
		MonitorID: monitorID,
		StoredAt:  storedAt.UTC(),
	}
	if err := m.Insert(context.Background(), a); err != nil {
		panic(err)
	}

	return a
}

func (m *memStore) Insert(_ context.Context, a *Attestation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memStore) FindByIdentity(
	_ context.Context,
	logID string,
	treeSize uint64,
	rootHash string,
) (*Attestation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	for _, r := range m.rows {
		if r.LogID == logID && r.TreeSize == treeSize && r.RootHash == rootHash {
			cp := *r
			return &cp, nil
		}
	}

	return nil, nil
}

func (m *memStore) Scan(_ context.Context, q ScanQuery) ([]*Attestation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	var out []*Attestation
	for _, r := range m.rows {
		if q.LogID != "" && r.LogID != q.LogID {
			continue
		}
		if q.MonitorID != "" && r.MonitorID != q.MonitorID {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StoredAt.Equal(out[j].StoredAt) {
			if q.Ascending {
				return out[i].StoredAt.Before(out[j].StoredAt)
			}
			return out[i].StoredAt.After(out[j].StoredAt)
		}
		if q.Ascending {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})

	if q.Offset >= len(out) {
		return nil, nil
	}
	out = out[q.Offset:]
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	return out, nil
}

func (m *memStore) match(r *Attestation, f Filter) bool {
	if f.LogID != "" && r.LogID != f.LogID {
		return false
	}
	if f.MonitorID != "" && r.MonitorID != f.MonitorID {
		return false
	}
	if !f.Since.IsZero() && r.StoredAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !r.StoredAt.Before(f.Until) {
		return false
	}

	return true
}

func (m *memStore) Count(_ context.Context, f Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}

	var n int64
	for _, r := range m.rows {
		if m.match(r, f) {
			n++
		}
	}

	return n, nil
}

func (m *memStore) Aggregate(_ context.Context, key GroupKey, f Filter) ([]*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	groups := make(map[string]*Group)
	var order []string
	for _, r := range m.rows {
		if !m.match(r, f) {
			continue
		}

		k := ""
		switch key {
		case GroupByLog:
			k = r.LogID
		case GroupByMonitor:
			k = r.MonitorID
		}

		g, ok := groups[k]
		if !ok {
			g = &Group{
				Key:         k,
				MinStoredAt: r.StoredAt,
				MaxStoredAt: r.StoredAt,
				MinTreeSize: r.TreeSize,
				MaxTreeSize: r.TreeSize,
			}
			groups[k] = g
			order = append(order, k)
		}

		g.Count++
		if r.StoredAt.Before(g.MinStoredAt) {
			g.MinStoredAt = r.StoredAt
		}
		if r.StoredAt.After(g.MaxStoredAt) {
			g.MaxStoredAt = r.StoredAt
		}
		if r.TreeSize < g.MinTreeSize {
			g.MinTreeSize = r.TreeSize
		}
		if r.TreeSize > g.MaxTreeSize {
			g.MaxTreeSize = r.TreeSize
		}
	}

	out := make([]*Group, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k])
	}

	return out, nil
}
