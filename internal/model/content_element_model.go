package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentElement struct {
	Id               int64          `gorm:"primaryKey;autoIncrement"`
	Uid              uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	ActivityId       int64          `gorm:"not null;index"`
	RepositoryId     int64          `gorm:"not null;index"`
	Type             string         `gorm:"type:varchar(255);not null"`
	Position         float64        `gorm:"not null"`
	ContentId        uuid.UUID      `gorm:"type:uuid;not null;index"`
	ContentSignature string         `gorm:"type:varchar(64)"`
	Data             datatypes.JSON `gorm:"type:jsonb"`
	Meta             datatypes.JSON `gorm:"type:jsonb"`
	Refs             datatypes.JSON `gorm:"type:jsonb"`
	Detached         bool           `gorm:"not null;default:false"`
	IsLinkedCopy     bool           `gorm:"not null;default:false;index:idx_content_elements_is_linked_copy,where:is_linked_copy = true"`
	SourceId         *int64         `gorm:"index"`
	SourceModifiedAt *time.Time
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (ContentElement) TableName() string {
	return "content_elements"
}
