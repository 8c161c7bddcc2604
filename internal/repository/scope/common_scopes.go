package scope

import "gorm.io/gorm"

// OrderByPosition is the sibling order: position, ties broken by id.
func OrderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("id ASC")
}
