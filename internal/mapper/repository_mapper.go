package mapper

import (
	"author-be/internal/entity"
	"author-be/internal/model"
)

type RepositoryMapper struct{}

func NewRepositoryMapper() *RepositoryMapper {
	return &RepositoryMapper{}
}

func (m *RepositoryMapper) ToEntity(r *model.Repository) *entity.Repository {
	if r == nil {
		return nil
	}
	return &entity.Repository{
		Id:                    r.Id,
		Uid:                   r.Uid,
		SchemaId:              r.SchemaId,
		Name:                  r.Name,
		Description:           r.Description,
		Data:                  toMap(r.Data),
		HasUnpublishedChanges: r.HasUnpublishedChanges,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             timeToPtr(r.UpdatedAt),
		DeletedAt:             deletedAtToPtr(r.DeletedAt),
		IsDeleted:             r.DeletedAt.Valid,
	}
}

func (m *RepositoryMapper) ToModel(r *entity.Repository) *model.Repository {
	if r == nil {
		return nil
	}
	return &model.Repository{
		Id:                    r.Id,
		Uid:                   r.Uid,
		SchemaId:              r.SchemaId,
		Name:                  r.Name,
		Description:           r.Description,
		Data:                  toJSON(r.Data),
		HasUnpublishedChanges: r.HasUnpublishedChanges,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             ptrToTime(r.UpdatedAt),
		DeletedAt:             ptrToDeletedAt(r.DeletedAt, r.IsDeleted),
	}
}
