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

type RepositoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RepositoryMapper
}

func NewRepositoryRepository(db *gorm.DB) contract.RepositoryRepository {
	return &RepositoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewRepositoryMapper(),
	}
}

func (r *RepositoryRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RepositoryRepositoryImpl) Create(ctx context.Context, repository *entity.Repository) error {
	m := r.mapper.ToModel(repository)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*repository = *r.mapper.ToEntity(m)
	return nil
}

func (r *RepositoryRepositoryImpl) Updates(ctx context.Context, id int64, changes map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Repository{}).
		Where("id = ?", id).
		Updates(changes).Error
}

func (r *RepositoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Repository, error) {
	var m model.Repository
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RepositoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Repository, error) {
	var models []*model.Repository
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	var result []*entity.Repository
	for _, m := range models {
		result = append(result, r.mapper.ToEntity(m))
	}
	return result, nil
}
