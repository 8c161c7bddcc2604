package contract

import (
	"context"

	"author-be/internal/entity"
	"author-be/internal/repository/specification"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	// Updates writes only the given columns; it never runs lifecycle hooks.
	Updates(ctx context.Context, id int64, changes map[string]interface{}) error
	UpdateWhere(ctx context.Context, changes map[string]interface{}, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteUnscoped(ctx context.Context, id int64) error
	DeleteWhere(ctx context.Context, unscoped bool, specs ...specification.Specification) (int64, error)
	Restore(ctx context.Context, id int64) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Activity, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Activity, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
