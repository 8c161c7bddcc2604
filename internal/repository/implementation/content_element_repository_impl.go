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

type ContentElementRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContentElementMapper
}

func NewContentElementRepository(db *gorm.DB) contract.ContentElementRepository {
	return &ContentElementRepositoryImpl{
		db:     db,
		mapper: mapper.NewContentElementMapper(),
	}
}

func (r *ContentElementRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContentElementRepositoryImpl) Create(ctx context.Context, element *entity.ContentElement) error {
	m := r.mapper.ToModel(element)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*element = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContentElementRepositoryImpl) Updates(ctx context.Context, id int64, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).Unscoped().
		Model(&model.ContentElement{}).
		Where("id = ?", id).
		Updates(changes).Error
}

func (r *ContentElementRepositoryImpl) UpdateWhere(ctx context.Context, changes map[string]interface{}, specs ...specification.Specification) (int64, error) {
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ContentElement{}), specs...)
	result := query.Updates(changes)
	return result.RowsAffected, result.Error
}

func (r *ContentElementRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.ContentElement{}, id).Error
}

func (r *ContentElementRepositoryImpl) DeleteUnscoped(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.ContentElement{}, id).Error
}

func (r *ContentElementRepositoryImpl) DeleteWhere(ctx context.Context, unscoped bool, specs ...specification.Specification) (int64, error) {
	db := r.db.WithContext(ctx)
	if unscoped {
		db = db.Unscoped()
	}
	result := r.applySpecifications(db, specs...).Delete(&model.ContentElement{})
	return result.RowsAffected, result.Error
}

func (r *ContentElementRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentElement, error) {
	var m model.ContentElement
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContentElementRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentElement, error) {
	var models []*model.ContentElement
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContentElementRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ContentElement{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
