package entity

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a node of a repository outline. Outline levels and pure
// containers share this shape; the schema decides which is which.
type Activity struct {
	Id               int64
	Uid              uuid.UUID
	RepositoryId     int64
	ParentId         *int64
	Type             string
	Position         float64
	Data             map[string]interface{}
	Refs             map[string][]int64
	Detached         bool // set when an ancestor was soft deleted
	ModifiedAt       *time.Time
	PublishedAt      *time.Time
	IsLinkedCopy     bool
	SourceId         *int64
	SourceModifiedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool
}

func (a *Activity) HasUnpublishedChanges() bool {
	if a.ModifiedAt == nil {
		return false
	}
	return a.PublishedAt == nil || a.ModifiedAt.After(*a.PublishedAt)
}

// LastModified is the timestamp a linked copy records as sourceModifiedAt.
func (a *Activity) LastModified() *time.Time {
	if a.ModifiedAt != nil {
		return a.ModifiedAt
	}
	return a.UpdatedAt
}

// ActivityChanges describes a partial update. Nil fields are left untouched.
type ActivityChanges struct {
	Data     map[string]interface{}
	Refs     map[string][]int64
	Position *float64
}

// Descendants splits a subtree below a node into inner nodes and leaves.
type Descendants struct {
	Nodes  []*Activity
	Leaves []*Activity
}

func (d *Descendants) All() []*Activity {
	all := make([]*Activity, 0, len(d.Nodes)+len(d.Leaves))
	all = append(all, d.Nodes...)
	return append(all, d.Leaves...)
}

func (d *Descendants) Ids() []int64 {
	ids := make([]int64, 0, len(d.Nodes)+len(d.Leaves))
	for _, a := range d.All() {
		ids = append(ids, a.Id)
	}
	return ids
}

func (d *Descendants) NodeIds() []int64 {
	ids := make([]int64, 0, len(d.Nodes))
	for _, a := range d.Nodes {
		ids = append(ids, a.Id)
	}
	return ids
}
