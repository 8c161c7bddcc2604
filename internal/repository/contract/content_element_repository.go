package contract

import (
	"context"

	"author-be/internal/entity"
	"author-be/internal/repository/specification"
)

type ContentElementRepository interface {
	Create(ctx context.Context, element *entity.ContentElement) error
	Updates(ctx context.Context, id int64, changes map[string]interface{}) error
	UpdateWhere(ctx context.Context, changes map[string]interface{}, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteUnscoped(ctx context.Context, id int64) error
	DeleteWhere(ctx context.Context, unscoped bool, specs ...specification.Specification) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentElement, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentElement, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
