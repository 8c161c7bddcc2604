package entity

import (
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	Id                    int64
	Uid                   uuid.UUID
	SchemaId              string
	Name                  string
	Description           string
	Data                  map[string]interface{}
	HasUnpublishedChanges bool
	CreatedAt             time.Time
	UpdatedAt             *time.Time
	DeletedAt             *time.Time
	IsDeleted             bool
}
