package sth

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCheckSplitView(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testCases := []struct {
		name       string
		rows       func(s *memStore)
		consistent bool
		monitors   int
		conflicts  int
	}{
		{
			name:       "no monitors",
			rows:       func(s *memStore) {},
			consistent: true,
			monitors:   0,
		},
		{
			name: "single monitor",
			rows: func(s *memStore) {
				s.add("L===", "A", 100, "h1", 1, base)
				s.add("L===", "A", 100, "h2", 1, base.Add(time.Second))
			},
			consistent: true,
			monitors:   1,
		},
		{
			name: "same size different hash",
			rows: func(s *memStore) {
				s.add("L===", "A", 100, "h1", 1, base)
				s.add("L===", "B", 100, "h2", 1, base.Add(time.Second))
			},
			consistent: false,
			monitors:   2,
			conflicts:  1,
		},
		{
			name: "different sizes never compared",
			rows: func(s *memStore) {
				s.add("L===", "A", 100, "h1", 1, base)
				s.add("L===", "B", 200, "h3", 1, base.Add(time.Second))
			},
			consistent: true,
			monitors:   2,
		},
		{
			name: "superseded conflict is not reported",
			rows: func(s *memStore) {
				s.add("L===", "A", 100, "h1", 1, base)
				s.add("L===", "B", 100, "h2", 1, base.Add(time.Second))
				s.add("L===", "B", 200, "h3", 1, base.Add(2*time.Second))
			},
			consistent: true,
			monitors:   2,
		},
		{
			name: "agreeing monitors",
			rows: func(s *memStore) {
				s.add("L===", "A", 100, "h1", 1, base)
				s.add("L===", "B", 150, "h4", 1, base)
				s.add("L===", "B", 100, "h1", 1, base.Add(time.Second))
				s.add("L===", "C", 100, "h1", 1, base.Add(time.Second))
			},
			consistent: true,
			monitors:   3,
		},
		{
			name: "other logs are ignored",
			rows: func(s *memStore) {
				s.add("L===", "A", 100, "h1", 1, base)
				s.add("M===", "B", 100, "h2", 1, base)
			},
			consistent: true,
			monitors:   1,
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			store := newMemStore()
			c.rows(store)

			res, err := NewChecker(store).Check(context.Background(), "L")
			require.NoError(t, err)
			require.Equal(t, "L===", res.LogID)
			require.Equal(t, c.consistent, res.Consistent)
			require.Equal(t, c.monitors, res.MonitorCount)
			require.Len(t, res.LatestPerMonitor, c.monitors)
			require.Len(t, res.Conflicts, c.conflicts)
		})
	}
}

func TestCheckConflictDetail(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.add("L===", "C", 100, "h1", 1, base)
	store.add("L===", "A", 100, "h2", 1, base)
	store.add("L===", "B", 100, "h1", 1, base)
	store.add("L===", "D", 50, "h0", 1, base)

	res, err := NewChecker(store).Check(context.Background(), "L===")
	require.NoError(t, err)
	require.False(t, res.Consistent)
	require.Len(t, res.Conflicts, 1)
	require.Equal(t, uint64(100), res.Conflicts[0].TreeSize)
	require.Equal(t, []string{"h1", "h2"}, res.Conflicts[0].RootHashes)
	require.Equal(t, []string{"A", "B", "C"}, res.Conflicts[0].Monitors)

	ids := make([]string, 0, len(res.LatestPerMonitor))
	for _, v := range res.LatestPerMonitor {
		ids = append(ids, v.MonitorID)
	}
	require.Equal(t, []string{"A", "B", "C", "D"}, ids)
}

func TestCheckAll(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	store.add("BBBB", "A", 100, "h1", 1, base)
	store.add("BBBB", "B", 100, "h2", 1, base)
	store.add("AAAA", "A", 100, "h1", 1, base)

	results, err := NewChecker(store).CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "AAAA", results[0].LogID)
	require.True(t, results[0].Consistent)
	require.Equal(t, "BBBB", results[1].LogID)
	require.False(t, results[1].Consistent)
}

func TestCheckStoreUnavailable(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("timeout")

	_, err := NewChecker(store).CheckAll(context.Background())
	require.True(t, errors.Is(err, ErrStoreUnavailable))
}
