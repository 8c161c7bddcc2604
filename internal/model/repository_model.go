package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository struct {
	Id                    int64          `gorm:"primaryKey;autoIncrement"`
	Uid                   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	SchemaId              string         `gorm:"type:varchar(255);not null"`
	Name                  string         `gorm:"type:varchar(255);not null"`
	Description           string         `gorm:"type:text"`
	Data                  datatypes.JSON `gorm:"type:jsonb"`
	HasUnpublishedChanges bool           `gorm:"not null;default:false"`
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime"`
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

func (Repository) TableName() string {
	return "repositories"
}
