// Package store implements the attestation store on top of gorm.
package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/photon-storage/sth-explorer/database/orm"
	"github.com/photon-storage/sth-explorer/sth"
)

const aggregateColumns = "count(*) AS cnt, " +
	"min(stored_at) AS min_stored_at, max(stored_at) AS max_stored_at, " +
	"min(tree_size) AS min_tree_size, max(tree_size) AS max_tree_size"

// Store persists attestations in the sths table.
type Store struct {
	db *gorm.DB
}

// New returns a store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Insert creates a row for a and sets a.ID.
func (s *Store) Insert(ctx context.Context, a *sth.Attestation) error {
	row := fromAttestation(a)
	if err := s.db.WithContext(ctx).
		Model(&orm.STH{}).
		Create(row).
		Error; err != nil {
		return errors.Wrap(err, "insert sth")
	}

	a.ID = row.ID
	return nil
}

// FindByIdentity looks up the first row with the given identity. The
// query always goes to the primary so a row written moments ago by
// another request is visible.
func (s *Store) FindByIdentity(
	ctx context.Context,
	logID string,
	treeSize uint64,
	rootHash string,
) (*sth.Attestation, error) {
	row := &orm.STH{}
	err := s.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Model(&orm.STH{}).
		Where("log_id = ? AND tree_size = ? AND root_hash = ?", logID, treeSize, rootHash).
		Order("id").
		First(row).
		Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil

	case err != nil:
		return nil, errors.Wrap(err, "find sth by identity")

	default:
		return toAttestation(row), nil
	}
}

// Scan returns rows ordered by stored_at, ties broken by id.
func (s *Store) Scan(ctx context.Context, q sth.ScanQuery) ([]*sth.Attestation, error) {
	query := s.db.WithContext(ctx).Model(&orm.STH{})
	if q.LogID != "" {
		query = query.Where("log_id = ?", q.LogID)
	}
	if q.MonitorID != "" {
		query = query.Where("monitor_id = ?", q.MonitorID)
	}

	if q.Ascending {
		query = query.Order("stored_at asc").Order("id asc")
	} else {
		query = query.Order("stored_at desc").Order("id desc")
	}

	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	rows := make([]*orm.STH, 0)
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "scan sths")
	}

	out := make([]*sth.Attestation, len(rows))
	for i, r := range rows {
		out[i] = toAttestation(r)
	}

	return out, nil
}

// Count returns the number of rows matching f.
func (s *Store) Count(ctx context.Context, f sth.Filter) (int64, error) {
	count := int64(0)
	if err := filter(s.db.WithContext(ctx).Model(&orm.STH{}), f).
		Count(&count).
		Error; err != nil {
		return 0, errors.Wrap(err, "count sths")
	}

	return count, nil
}

// Aggregate groups rows matching f by key. Groups with no rows are never
// returned.
func (s *Store) Aggregate(
	ctx context.Context,
	key sth.GroupKey,
	f sth.Filter,
) ([]*sth.Group, error) {
	query := filter(s.db.WithContext(ctx).Model(&orm.STH{}), f)
	switch key {
	case sth.GroupByLog:
		query = query.Select("log_id AS group_key, " + aggregateColumns).Group("log_id")

	case sth.GroupByMonitor:
		query = query.Select("monitor_id AS group_key, " + aggregateColumns).Group("monitor_id")

	default:
		query = query.Select("'' AS group_key, " + aggregateColumns)
	}

	rows, err := query.Rows()
	if err != nil {
		return nil, errors.Wrap(err, "aggregate sths")
	}
	defer rows.Close()

	groups := make([]*sth.Group, 0)
	for rows.Next() {
		var (
			g                sth.Group
			minAt, maxAt     scanTime
			minSize, maxSize *uint64
		)
		if err := rows.Scan(
			&g.Key,
			&g.Count,
			&minAt,
			&maxAt,
			&minSize,
			&maxSize,
		); err != nil {
			return nil, errors.Wrap(err, "scan aggregate row")
		}

		if g.Count == 0 {
			continue
		}

		g.MinStoredAt = minAt.Time
		g.MaxStoredAt = maxAt.Time
		if minSize != nil {
			g.MinTreeSize = *minSize
		}
		if maxSize != nil {
			g.MaxTreeSize = *maxSize
		}
		groups = append(groups, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate aggregate rows")
	}

	return groups, nil
}

func filter(query *gorm.DB, f sth.Filter) *gorm.DB {
	if f.LogID != "" {
		query = query.Where("log_id = ?", f.LogID)
	}
	if f.MonitorID != "" {
		query = query.Where("monitor_id = ?", f.MonitorID)
	}
	if !f.Since.IsZero() {
		query = query.Where("stored_at >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		query = query.Where("stored_at < ?", f.Until.UTC())
	}

	return query
}

func fromAttestation(a *sth.Attestation) *orm.STH {
	return &orm.STH{
		ID:        a.ID,
		LogID:     a.LogID,
		TreeSize:  a.TreeSize,
		RootHash:  a.RootHash,
		Timestamp: a.Timestamp,
		MonitorID: a.MonitorID,
		StoredAt:  a.StoredAt.UTC(),
	}
}

func toAttestation(r *orm.STH) *sth.Attestation {
	return &sth.Attestation{
		ID:        r.ID,
		LogID:     r.LogID,
		TreeSize:  r.TreeSize,
		RootHash:  r.RootHash,
		Timestamp: r.Timestamp,
		MonitorID: r.MonitorID,
		StoredAt:  r.StoredAt.UTC(),
	}
}
