package dto

import (
	"time"

	"author-be/internal/entity"

	"github.com/google/uuid"
)

type CreateContentElementRequest struct {
	ActivityId int64                  `json:"activity_id" validate:"required"`
	Type       string                 `json:"type" validate:"required"`
	Position   *float64               `json:"position"`
	Data       map[string]interface{} `json:"data"`
	Meta       map[string]interface{} `json:"meta"`
	Refs       map[string][]int64     `json:"refs"`
}

type UpdateContentElementRequest struct {
	Data     map[string]interface{} `json:"data"`
	Meta     map[string]interface{} `json:"meta"`
	Refs     map[string][]int64     `json:"refs"`
	Position *float64               `json:"position"`
}

type LinkContentElementRequest struct {
	SourceElementId  int64    `json:"source_element_id" validate:"required"`
	TargetActivityId int64    `json:"target_activity_id" validate:"required"`
	Position         *float64 `json:"position"`
}

type CloneContentElementsRequest struct {
	ElementIds       []int64 `json:"element_ids" validate:"required,min=1"`
	TargetActivityId int64   `json:"target_activity_id" validate:"required"`
}

type ContentElementResponse struct {
	Id               int64                  `json:"id"`
	Uid              uuid.UUID              `json:"uid"`
	ActivityId       int64                  `json:"activity_id"`
	RepositoryId     int64                  `json:"repository_id"`
	Type             string                 `json:"type"`
	Position         float64                `json:"position"`
	ContentId        uuid.UUID              `json:"content_id"`
	ContentSignature string                 `json:"content_signature"`
	Data             map[string]interface{} `json:"data"`
	Meta             map[string]interface{} `json:"meta"`
	Refs             map[string][]int64     `json:"refs"`
	Detached         bool                   `json:"detached"`
	IsLinkedCopy     bool                   `json:"is_linked_copy"`
	SourceId         *int64                 `json:"source_id"`
	SourceModifiedAt *time.Time             `json:"source_modified_at"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        *time.Time             `json:"updated_at"`
}

type CloneContentElementsResponse struct {
	Elements []ContentElementResponse `json:"elements"`
	Mappings CloneMappingsResponse    `json:"mappings"`
}

func NewContentElementResponse(e *entity.ContentElement) ContentElementResponse {
	return ContentElementResponse{
		Id:               e.Id,
		Uid:              e.Uid,
		ActivityId:       e.ActivityId,
		RepositoryId:     e.RepositoryId,
		Type:             e.Type,
		Position:         e.Position,
		ContentId:        e.ContentId,
		ContentSignature: e.ContentSignature,
		Data:             e.Data,
		Meta:             e.Meta,
		Refs:             e.Refs,
		Detached:         e.Detached,
		IsLinkedCopy:     e.IsLinkedCopy,
		SourceId:         e.SourceId,
		SourceModifiedAt: e.SourceModifiedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func NewContentElementListResponse(list []*entity.ContentElement) []ContentElementResponse {
	res := make([]ContentElementResponse, 0, len(list))
	for _, e := range list {
		res = append(res, NewContentElementResponse(e))
	}
	return res
}
