package entity

import (
	"time"

	"github.com/google/uuid"
)

type ContentElement struct {
	Id               int64
	Uid              uuid.UUID
	ActivityId       int64
	RepositoryId     int64
	Type             string
	Position         float64
	ContentId        uuid.UUID // survives copies
	ContentSignature string
	Data             map[string]interface{}
	Meta             map[string]interface{}
	Refs             map[string][]int64
	Detached         bool
	IsLinkedCopy     bool
	SourceId         *int64
	SourceModifiedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}

type ContentElementChanges struct {
	Data     map[string]interface{}
	Meta     map[string]interface{}
	Refs     map[string][]int64
	Position *float64
}

// CloneMappings maps ids of a copied set to the ids of their copies.
type CloneMappings struct {
	ActivityIds map[int64]int64
	ElementIds  map[int64]int64
	ElementUids map[uuid.UUID]uuid.UUID
}

func NewCloneMappings() *CloneMappings {
	return &CloneMappings{
		ActivityIds: make(map[int64]int64),
		ElementIds:  make(map[int64]int64),
		ElementUids: make(map[uuid.UUID]uuid.UUID),
	}
}

// ContentElementBatch describes a bulk write over the elements of one
// activity subtree. Bulk writes bypass per-row hooks.
type ContentElementBatch struct {
	RepositoryId int64                  `json:"repositoryId"`
	ActivityIds  []int64                `json:"activityIds"`
	ElementIds   []int64                `json:"elementIds"`
	Changes      map[string]interface{} `json:"changes"`
}
