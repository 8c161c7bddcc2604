package mapper

import (
	"author-be/internal/entity"
	"author-be/internal/model"
)

type ActivityMapper struct{}

func NewActivityMapper() *ActivityMapper {
	return &ActivityMapper{}
}

func (m *ActivityMapper) ToEntity(a *model.Activity) *entity.Activity {
	if a == nil {
		return nil
	}

	return &entity.Activity{
		Id:               a.Id,
		Uid:              a.Uid,
		RepositoryId:     a.RepositoryId,
		ParentId:         a.ParentId,
		Type:             a.Type,
		Position:         a.Position,
		Data:             toMap(a.Data),
		Refs:             toRefs(a.Refs),
		Detached:         a.Detached,
		ModifiedAt:       a.ModifiedAt,
		PublishedAt:      a.PublishedAt,
		IsLinkedCopy:     a.IsLinkedCopy,
		SourceId:         a.SourceId,
		SourceModifiedAt: a.SourceModifiedAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        timeToPtr(a.UpdatedAt),
		DeletedAt:        deletedAtToPtr(a.DeletedAt),
		IsDeleted:        a.DeletedAt.Valid,
	}
}

func (m *ActivityMapper) ToModel(a *entity.Activity) *model.Activity {
	if a == nil {
		return nil
	}

	return &model.Activity{
		Id:               a.Id,
		Uid:              a.Uid,
		RepositoryId:     a.RepositoryId,
		ParentId:         a.ParentId,
		Type:             a.Type,
		Position:         a.Position,
		Data:             toJSON(a.Data),
		Refs:             toJSON(a.Refs),
		Detached:         a.Detached,
		ModifiedAt:       a.ModifiedAt,
		PublishedAt:      a.PublishedAt,
		IsLinkedCopy:     a.IsLinkedCopy,
		SourceId:         a.SourceId,
		SourceModifiedAt: a.SourceModifiedAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        ptrToTime(a.UpdatedAt),
		DeletedAt:        ptrToDeletedAt(a.DeletedAt, a.IsDeleted),
	}
}

func (m *ActivityMapper) ToEntities(activities []*model.Activity) []*entity.Activity {
	entities := make([]*entity.Activity, len(activities))
	for i, a := range activities {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
