package model

import "time"

type ActivityStatus struct {
	Id          int64     `gorm:"primaryKey;autoIncrement"`
	ActivityId  int64     `gorm:"not null;index"`
	AssigneeId  *int64    `gorm:"index"`
	Status      string    `gorm:"type:varchar(255);not null"`
	Priority    int       `gorm:"not null"`
	Description string    `gorm:"type:text"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (ActivityStatus) TableName() string {
	return "activity_statuses"
}
