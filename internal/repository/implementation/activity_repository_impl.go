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

type ActivityRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ActivityMapper
}

func NewActivityRepository(db *gorm.DB) contract.ActivityRepository {
	return &ActivityRepositoryImpl{
		db:     db,
		mapper: mapper.NewActivityMapper(),
	}
}

func (r *ActivityRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ActivityRepositoryImpl) Create(ctx context.Context, activity *entity.Activity) error {
	m := r.mapper.ToModel(activity)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*activity = *r.mapper.ToEntity(m)
	return nil
}

func (r *ActivityRepositoryImpl) Updates(ctx context.Context, id int64, changes map[string]interface{}) error {
	// Unscoped so that sync writes and restores can reach soft deleted rows.
	return r.db.WithContext(ctx).Unscoped().
		Model(&model.Activity{}).
		Where("id = ?", id).
		Updates(changes).Error
}

func (r *ActivityRepositoryImpl) UpdateWhere(ctx context.Context, changes map[string]interface{}, specs ...specification.Specification) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Activity{}), specs...)
	result := query.Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *ActivityRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Activity{}, id).Error
}

func (r *ActivityRepositoryImpl) DeleteUnscoped(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.Activity{}, id).Error
}

func (r *ActivityRepositoryImpl) DeleteWhere(ctx context.Context, unscoped bool, specs ...specification.Specification) (int64, error) {
	db := r.db.WithContext(ctx)
	if unscoped {
		db = db.Unscoped()
	}
	result := r.applySpecifications(db, specs...).Delete(&model.Activity{})
	return result.RowsAffected, result.Error
}

func (r *ActivityRepositoryImpl) Restore(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().
		Model(&model.Activity{}).
		Where("id = ?", id).
		Update("deleted_at", nil).Error
}

func (r *ActivityRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Activity, error) {
	var m model.Activity
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ActivityRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Activity, error) {
	var models []*model.Activity
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ActivityRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Activity{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
