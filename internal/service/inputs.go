package service

import (
	"time"

	"github.com/google/uuid"
)

type CreateActivityInput struct {
	RepositoryId int64  `validate:"required"`
	ParentId     *int64
	Type         string `validate:"required"`
	Position     *float64
	Data         map[string]interface{}
	Refs         map[string][]int64

	IsLinkedCopy     bool
	SourceId         *int64
	SourceModifiedAt *time.Time
}

type ActivityFilter struct {
	RepositoryId    int64
	ParentId        *int64
	RootOnly        bool
	Types           []string
	IncludeDetached bool
}

type RemoveOptions struct {
	Recursive bool
	Soft      bool
}

type CloneActivityInput struct {
	TargetRepositoryId int64 `validate:"required"`
	TargetParentId     *int64
	Position           *float64
}

type UpdateStatusInput struct {
	Status      string `validate:"required"`
	Priority    *int
	AssigneeId  *int64
	Description string
	DueDate     *time.Time
}

type CreateElementInput struct {
	ActivityId int64  `validate:"required"`
	Type       string `validate:"required"`
	Position   *float64
	ContentId  *uuid.UUID
	Data       map[string]interface{}
	Meta       map[string]interface{}
	Refs       map[string][]int64

	IsLinkedCopy     bool
	SourceId         *int64
	SourceModifiedAt *time.Time
}

type ElementFilter struct {
	ActivityId      *int64
	RepositoryId    *int64
	Types           []string
	IncludeDetached bool
}

type LinkActivityInput struct {
	SourceId           int64 `validate:"required"`
	TargetRepositoryId int64 `validate:"required"`
	ParentId           *int64
	Position           *float64
}

type LinkElementInput struct {
	SourceElementId  int64 `validate:"required"`
	TargetActivityId int64 `validate:"required"`
	Position         *float64
}
