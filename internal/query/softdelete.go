package query

import "gorm.io/gorm"

// NotDeleted excludes soft-deleted rows. Every read path for a
// soft-deletable resource goes through this scope, either directly or via
// Resource.Apply.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}
