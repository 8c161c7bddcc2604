package contract

import (
	"context"

	"author-be/internal/entity"
	"author-be/internal/repository/specification"
)

// RepositoryRepository persists the tenant repositories that own outlines.
type RepositoryRepository interface {
	Create(ctx context.Context, repository *entity.Repository) error
	Updates(ctx context.Context, id int64, changes map[string]interface{}) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Repository, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Repository, error)
}
