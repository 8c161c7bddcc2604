package specification

import "gorm.io/gorm"

type ByActivityID struct {
	ActivityID int64
}

func (s ByActivityID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("activity_id = ?", s.ActivityID)
}

type ByActivityIDs struct {
	ActivityIDs []int64
}

func (s ByActivityIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("activity_id IN ?", s.ActivityIDs)
}
