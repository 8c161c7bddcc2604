package dto

import (
	"time"

	"author-be/internal/entity"

	"github.com/google/uuid"
)

type CreateActivityRequest struct {
	ParentId *int64                 `json:"parent_id"`
	Type     string                 `json:"type" validate:"required"`
	Position *float64               `json:"position"`
	Data     map[string]interface{} `json:"data"`
	Refs     map[string][]int64     `json:"refs"`
}

type UpdateActivityRequest struct {
	Data     map[string]interface{} `json:"data"`
	Refs     map[string][]int64     `json:"refs"`
	Position *float64               `json:"position"`
}

type ReorderRequest struct {
	TargetIndex *int `json:"target_index" validate:"required"`
}

type CloneActivityRequest struct {
	TargetRepositoryId int64    `json:"target_repository_id" validate:"required"`
	TargetParentId     *int64   `json:"target_parent_id"`
	Position           *float64 `json:"position"`
}

type LinkActivityRequest struct {
	SourceId int64    `json:"source_id" validate:"required"`
	ParentId *int64   `json:"parent_id"`
	Position *float64 `json:"position"`
}

type UpdateStatusRequest struct {
	Status      string     `json:"status" validate:"required"`
	Priority    *int       `json:"priority"`
	AssigneeId  *int64     `json:"assignee_id"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
}

type ActivityResponse struct {
	Id                    int64                  `json:"id"`
	Uid                   uuid.UUID              `json:"uid"`
	RepositoryId          int64                  `json:"repository_id"`
	ParentId              *int64                 `json:"parent_id"`
	Type                  string                 `json:"type"`
	Position              float64                `json:"position"`
	Data                  map[string]interface{} `json:"data"`
	Refs                  map[string][]int64     `json:"refs"`
	Detached              bool                   `json:"detached"`
	IsLinkedCopy          bool                   `json:"is_linked_copy"`
	SourceId              *int64                 `json:"source_id"`
	SourceModifiedAt      *time.Time             `json:"source_modified_at"`
	ModifiedAt            *time.Time             `json:"modified_at"`
	PublishedAt           *time.Time             `json:"published_at"`
	HasUnpublishedChanges bool                   `json:"has_unpublished_changes"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             *time.Time             `json:"updated_at"`
	DeletedAt             *time.Time             `json:"deleted_at"`
}

type DescendantsResponse struct {
	Nodes  []ActivityResponse `json:"nodes"`
	Leaves []ActivityResponse `json:"leaves"`
}

type CloneMappingsResponse struct {
	Activities map[int64]int64 `json:"activities"`
	Elements   map[int64]int64 `json:"elements"`
}

type CloneActivityResponse struct {
	Activity ActivityResponse      `json:"activity"`
	Mappings CloneMappingsResponse `json:"mappings"`
}

type ActivityStatusResponse struct {
	ActivityId  int64      `json:"activity_id"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	AssigneeId  *int64     `json:"assignee_id"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewActivityResponse(a *entity.Activity) ActivityResponse {
	return ActivityResponse{
		Id:                    a.Id,
		Uid:                   a.Uid,
		RepositoryId:          a.RepositoryId,
		ParentId:              a.ParentId,
		Type:                  a.Type,
		Position:              a.Position,
		Data:                  a.Data,
		Refs:                  a.Refs,
		Detached:              a.Detached,
		IsLinkedCopy:          a.IsLinkedCopy,
		SourceId:              a.SourceId,
		SourceModifiedAt:      a.SourceModifiedAt,
		ModifiedAt:            a.ModifiedAt,
		PublishedAt:           a.PublishedAt,
		HasUnpublishedChanges: a.HasUnpublishedChanges(),
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
		DeletedAt:             a.DeletedAt,
	}
}

func NewActivityListResponse(list []*entity.Activity) []ActivityResponse {
	res := make([]ActivityResponse, 0, len(list))
	for _, a := range list {
		res = append(res, NewActivityResponse(a))
	}
	return res
}

func NewDescendantsResponse(d *entity.Descendants) DescendantsResponse {
	return DescendantsResponse{
		Nodes:  NewActivityListResponse(d.Nodes),
		Leaves: NewActivityListResponse(d.Leaves),
	}
}

func NewCloneMappingsResponse(m *entity.CloneMappings) CloneMappingsResponse {
	return CloneMappingsResponse{
		Activities: m.ActivityIds,
		Elements:   m.ElementIds,
	}
}

func NewActivityStatusResponse(s *entity.ActivityStatus) ActivityStatusResponse {
	return ActivityStatusResponse{
		ActivityId:  s.ActivityId,
		Status:      s.Status,
		Priority:    s.Priority,
		AssigneeId:  s.AssigneeId,
		Description: s.Description,
		DueDate:     s.DueDate,
		CreatedAt:   s.CreatedAt,
	}
}
