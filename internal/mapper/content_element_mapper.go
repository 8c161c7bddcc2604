package mapper

import (
	"author-be/internal/entity"
	"author-be/internal/model"
)

type ContentElementMapper struct{}

func NewContentElementMapper() *ContentElementMapper {
	return &ContentElementMapper{}
}

func (m *ContentElementMapper) ToEntity(e *model.ContentElement) *entity.ContentElement {
	if e == nil {
		return nil
	}

	return &entity.ContentElement{
		Id:               e.Id,
		Uid:              e.Uid,
		ActivityId:       e.ActivityId,
		RepositoryId:     e.RepositoryId,
		Type:             e.Type,
		Position:         e.Position,
		ContentId:        e.ContentId,
		ContentSignature: e.ContentSignature,
		Data:             toMap(e.Data),
		Meta:             toMap(e.Meta),
		Refs:             toRefs(e.Refs),
		Detached:         e.Detached,
		IsLinkedCopy:     e.IsLinkedCopy,
		SourceId:         e.SourceId,
		SourceModifiedAt: e.SourceModifiedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        timeToPtr(e.UpdatedAt),
		DeletedAt:        deletedAtToPtr(e.DeletedAt),
		IsDeleted:        e.DeletedAt.Valid,
	}
}

func (m *ContentElementMapper) ToModel(e *entity.ContentElement) *model.ContentElement {
	if e == nil {
		return nil
	}

	return &model.ContentElement{
		Id:               e.Id,
		Uid:              e.Uid,
		ActivityId:       e.ActivityId,
		RepositoryId:     e.RepositoryId,
		Type:             e.Type,
		Position:         e.Position,
		ContentId:        e.ContentId,
		ContentSignature: e.ContentSignature,
		Data:             toJSON(e.Data),
		Meta:             toJSON(e.Meta),
		Refs:             toJSON(e.Refs),
		Detached:         e.Detached,
		IsLinkedCopy:     e.IsLinkedCopy,
		SourceId:         e.SourceId,
		SourceModifiedAt: e.SourceModifiedAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        ptrToTime(e.UpdatedAt),
		DeletedAt:        ptrToDeletedAt(e.DeletedAt, e.IsDeleted),
	}
}

func (m *ContentElementMapper) ToEntities(elements []*model.ContentElement) []*entity.ContentElement {
	entities := make([]*entity.ContentElement, len(elements))
	for i, e := range elements {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
