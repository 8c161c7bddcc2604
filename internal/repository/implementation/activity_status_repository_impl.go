package implementation

import (
	"context"
	"errors"

	"author-be/internal/entity"
	"author-be/internal/mapper"
	"author-be/internal/model"
	"author-be/internal/repository/contract"
	"author-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ActivityStatusRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ActivityStatusMapper
}

func NewActivityStatusRepository(db *gorm.DB) contract.ActivityStatusRepository {
	return &ActivityStatusRepositoryImpl{
		db:     db,
		mapper: mapper.NewActivityStatusMapper(),
	}
}

func (r *ActivityStatusRepositoryImpl) Create(ctx context.Context, status *entity.ActivityStatus) error {
	m := r.mapper.ToModel(status)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*status = *r.mapper.ToEntity(m)
	return nil
}

// FindLatest returns the current status row; history is append only.
func (r *ActivityStatusRepositoryImpl) FindLatest(ctx context.Context, activityId int64) (*entity.ActivityStatus, error) {
	var m model.ActivityStatus
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityId).
		Order("id DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ActivityStatusRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ActivityStatus, error) {
	var models []*model.ActivityStatus
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*entity.ActivityStatus, 0, len(models))
	for _, m := range models {
		result = append(result, r.mapper.ToEntity(m))
	}
	return result, nil
}

func (r *ActivityStatusRepositoryImpl) DeleteByActivityIds(ctx context.Context, activityIds []int64) error {
	if len(activityIds) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("activity_id IN ?", activityIds).
		Delete(&model.ActivityStatus{}).Error
}
