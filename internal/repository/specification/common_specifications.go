package specification

import (
	"fmt"

	"author-be/internal/repository/scope"

	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID int64
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByIDs filters by a list of IDs
type ByIDs struct {
	IDs []int64
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

type ByRepositoryID struct {
	RepositoryID int64
}

func (s ByRepositoryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("repository_id = ?", s.RepositoryID)
}

type BySourceID struct {
	SourceID int64
}

func (s BySourceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_id = ?", s.SourceID)
}

// LinkedCopies keeps rows still receiving updates from their source.
type LinkedCopies struct{}

func (s LinkedCopies) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_linked_copy = ?", true)
}

type ByTypes struct {
	Types []string
}

func (s ByTypes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type IN ?", s.Types)
}

type ExcludeTypes struct {
	Types []string
}

func (s ExcludeTypes) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Types) == 0 {
		return db
	}
	return db.Where("type NOT IN ?", s.Types)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// ByPosition orders siblings.
type ByPosition struct{}

func (s ByPosition) Apply(db *gorm.DB) *gorm.DB {
	return scope.OrderByPosition(db)
}

// IncludeDeleted lifts the soft delete scope.
type IncludeDeleted struct{}

func (s IncludeDeleted) Apply(db *gorm.DB) *gorm.DB {
	return scope.WithSoftDelete(db)
}

type NotDetached struct{}

func (s NotDetached) Apply(db *gorm.DB) *gorm.DB {
	return scope.ExcludeDetached(db)
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}
