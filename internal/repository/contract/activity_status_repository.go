package contract

import (
	"context"

	"author-be/internal/entity"
	"author-be/internal/repository/specification"
)

type ActivityStatusRepository interface {
	Create(ctx context.Context, status *entity.ActivityStatus) error
	FindLatest(ctx context.Context, activityId int64) (*entity.ActivityStatus, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ActivityStatus, error)
	DeleteByActivityIds(ctx context.Context, activityIds []int64) error
}
