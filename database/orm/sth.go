package orm

import "time"

// STH is a gorm table definition represents the signed tree head
// attestations reported by monitors.
type STH struct {
	ID        uint64    `gorm:"primary_key"`
	LogID     string    `gorm:"size:128;not null;index:idx_sth_identity,priority:1;index:idx_sth_log_stored,priority:1"`
	TreeSize  uint64    `gorm:"not null;index:idx_sth_identity,priority:2"`
	RootHash  string    `gorm:"size:128;not null;index:idx_sth_identity,priority:3"`
	Timestamp uint64    `gorm:"not null"`
	MonitorID string    `gorm:"size:255;not null;index:idx_sth_monitor_stored,priority:1"`
	StoredAt  time.Time `gorm:"not null;index:idx_sth_stored_at;index:idx_sth_log_stored,priority:2;index:idx_sth_monitor_stored,priority:2"`
}

// TableName change default table name
func (STH) TableName() string {
	return "sths"
}
