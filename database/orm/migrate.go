package orm

import "gorm.io/gorm"

// Migrate creates or updates the tables used by the explorer.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&STH{})
}
