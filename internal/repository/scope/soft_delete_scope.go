package scope

import "gorm.io/gorm"

// WithSoftDelete ensures soft deleted records are included.
func WithSoftDelete(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// ExcludeDetached hides rows whose ancestor was soft deleted.
func ExcludeDetached(db *gorm.DB) *gorm.DB {
	return db.Where("detached = ?", false)
}
