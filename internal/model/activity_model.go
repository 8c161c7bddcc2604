package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Activity struct {
	Id               int64          `gorm:"primaryKey;autoIncrement"`
	Uid              uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	RepositoryId     int64          `gorm:"not null;index"`
	ParentId         *int64         `gorm:"index"`
	Type             string         `gorm:"type:varchar(255);not null"`
	Position         float64        `gorm:"not null"`
	Data             datatypes.JSON `gorm:"type:jsonb"`
	Refs             datatypes.JSON `gorm:"type:jsonb"`
	Detached         bool           `gorm:"not null;default:false"`
	ModifiedAt       *time.Time
	PublishedAt      *time.Time
	IsLinkedCopy     bool           `gorm:"not null;default:false;index:idx_activities_is_linked_copy,where:is_linked_copy = true"`
	SourceId         *int64         `gorm:"index"`
	SourceModifiedAt *time.Time
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Activity) TableName() string {
	return "activities"
}
