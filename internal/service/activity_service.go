package service

import (
	"context"
	"time"

	"author-be/internal/entity"
	"author-be/internal/pkg/apperror"
	"author-be/internal/pkg/logger"
	"author-be/internal/pkg/validation"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"
	"author-be/pkg/events"
)

type IActivityService interface {
	Create(ctx context.Context, mctx entity.MutationContext, in CreateActivityInput) (*entity.Activity, error)
	Get(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error)
	List(ctx context.Context, mctx entity.MutationContext, filter ActivityFilter) ([]*entity.Activity, error)
	Update(ctx context.Context, mctx entity.MutationContext, id int64, changes entity.ActivityChanges) (*entity.Activity, error)
	Reorder(ctx context.Context, mctx entity.MutationContext, id int64, targetIndex int) (*entity.Activity, error)
	Remove(ctx context.Context, mctx entity.MutationContext, id int64, opts RemoveOptions) error
	Restore(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error)
	Clone(ctx context.Context, mctx entity.MutationContext, id int64, in CloneActivityInput) (*entity.Activity, *entity.CloneMappings, error)
	Publish(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error)
	UpdateStatus(ctx context.Context, mctx entity.MutationContext, id int64, in UpdateStatusInput) (*entity.ActivityStatus, error)
	GetStatus(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.ActivityStatus, error)
	Siblings(ctx context.Context, mctx entity.MutationContext, id int64) ([]*entity.Activity, error)
	Predecessors(ctx context.Context, mctx entity.MutationContext, id int64) ([]*entity.Activity, error)
	Descendants(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Descendants, error)
	GetFirstOutlineItem(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error)
	Touch(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error)
}

type activityService struct {
	uowFactory unitofwork.RepositoryFactory
	tree       *ContentTree
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewActivityService(
	uowFactory unitofwork.RepositoryFactory,
	tree *ContentTree,
	publisher events.Publisher,
	logger logger.ILogger,
) IActivityService {
	return &activityService{
		uowFactory: uowFactory,
		tree:       tree,
		publisher:  publisher,
		logger:     logger,
	}
}

// inTx runs fn in a fresh transaction and commits when it succeeds.
func inTx(ctx context.Context, factory unitofwork.RepositoryFactory, fn func(uow unitofwork.UnitOfWork) error) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *activityService) Create(ctx context.Context, mctx entity.MutationContext, in CreateActivityInput) (*entity.Activity, error) {
	var created *entity.Activity
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		created, err = s.tree.createActivityTx(ctx, uow, mctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *activityService) Get(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.tree.findActivity(ctx, uow, mctx, id)
}

func (s *activityService) List(ctx context.Context, mctx entity.MutationContext, filter ActivityFilter) ([]*entity.Activity, error) {
	if err := checkScope(mctx, filter.RepositoryId); err != nil {
		return nil, err
	}

	specs := []specification.Specification{specification.ByRepositoryID{RepositoryID: filter.RepositoryId}}
	if filter.ParentId != nil || filter.RootOnly {
		specs = append(specs, specification.ByParentID{ParentID: filter.ParentId})
	}
	if len(filter.Types) > 0 {
		specs = append(specs, specification.ByTypes{Types: filter.Types})
	}
	if !filter.IncludeDetached {
		specs = append(specs, specification.NotDetached{})
	}
	specs = append(specs, specification.ByPosition{})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ActivityRepository().FindAll(ctx, specs...)
}

func (s *activityService) Update(ctx context.Context, mctx entity.MutationContext, id int64, changes entity.ActivityChanges) (*entity.Activity, error) {
	fields := make(map[string]interface{})
	if changes.Data != nil {
		fields["data"] = changes.Data
	}
	if changes.Refs != nil {
		fields["refs"] = changes.Refs
	}
	if changes.Position != nil {
		fields["position"] = *changes.Position
	}

	var updated *entity.Activity
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		activity, err := s.tree.findActivity(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		updated, err = s.tree.updateActivityTx(ctx, uow, mctx, activity, fields)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *activityService) Reorder(ctx context.Context, mctx entity.MutationContext, id int64, targetIndex int) (*entity.Activity, error) {
	var updated *entity.Activity
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		activity, err := s.tree.findActivity(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		updated, err = s.tree.reorderActivityTx(ctx, uow, mctx, activity, targetIndex)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *activityService) Remove(ctx context.Context, mctx entity.MutationContext, id int64, opts RemoveOptions) error {
	ctx, span := s.tree.tracer.Start(ctx, "ActivityService.Remove")
	defer span.End()

	return inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		activity, err := s.tree.findActivity(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		return s.tree.removeActivityTx(ctx, uow, mctx, activity, opts)
	})
}

func (s *activityService) Restore(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error) {
	ctx, span := s.tree.tracer.Start(ctx, "ActivityService.Restore")
	defer span.End()

	var restored *entity.Activity
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		activity, err := s.tree.findActivity(ctx, uow, mctx, id, specification.IncludeDeleted{})
		if err != nil {
			return err
		}
		if !activity.IsDeleted {
			restored = activity
			return nil
		}
		restored, err = s.tree.restoreActivityTx(ctx, uow, mctx, activity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

func (s *activityService) Clone(ctx context.Context, mctx entity.MutationContext, id int64, in CloneActivityInput) (*entity.Activity, *entity.CloneMappings, error) {
	ctx, span := s.tree.tracer.Start(ctx, "ActivityService.Clone")
	defer span.End()

	if err := validation.Struct(in); err != nil {
		return nil, nil, err
	}

	var (
		root     *entity.Activity
		mappings *entity.CloneMappings
	)
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		source, err := s.tree.findActivity(ctx, uow, mctx, id, specification.NotDetached{})
		if err != nil {
			return err
		}
		root, mappings, err = s.tree.cloneSubtree(ctx, uow, mctx, source, CloneTarget{
			RepositoryId: in.TargetRepositoryId,
			ParentId:     in.TargetParentId,
			Position:     in.Position,
		}, CloneOptions{})
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return root, mappings, nil
}

// Publish stamps publishedAt and hands the activity to the external
// publishing pipeline once the transaction has committed.
func (s *activityService) Publish(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error) {
	var published *entity.Activity
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		activity, err := s.tree.findActivity(ctx, uow, mctx, id)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := uow.ActivityRepository().Updates(ctx, activity.Id, map[string]interface{}{"published_at": now}); err != nil {
			return err
		}
		activity.PublishedAt = &now
		published = activity

		snapshot := *activity
		s.tree.broadcastAfterCommit(ctx, uow, activity.RepositoryId, EventActivityUpdate, &snapshot)
		uow.AfterCommit(func() {
			if s.publisher == nil {
				return
			}
			event := events.New(events.ActivityPublished, map[string]interface{}{
				"activityId":   snapshot.Id,
				"activityUid":  snapshot.Uid.String(),
				"repositoryId": snapshot.RepositoryId,
				"type":         snapshot.Type,
				"publishedAt":  now,
			})
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.Error("ActivityService", "Failed to publish activity event", map[string]interface{}{
					"activity_id": snapshot.Id,
					"error":       err.Error(),
				})
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return published, nil
}

func (s *activityService) UpdateStatus(ctx context.Context, mctx entity.MutationContext, id int64, in UpdateStatusInput) (*entity.ActivityStatus, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var status *entity.ActivityStatus
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		activity, err := s.tree.findActivity(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		if !s.tree.schema.IsTrackedInWorkflow(activity.Type) {
			return apperror.BadRequest("ACTIVITY_NOT_TRACKED",
				"activity type is not tracked in a workflow",
				map[string]interface{}{"type": activity.Type})
		}

		current, err := uow.ActivityStatusRepository().FindLatest(ctx, activity.Id)
		if err != nil {
			return err
		}
		priority := 0
		if current != nil {
			priority = current.Priority
		}
		if in.Priority != nil {
			priority = *in.Priority
		}

		status = &entity.ActivityStatus{
			ActivityId:  activity.Id,
			AssigneeId:  in.AssigneeId,
			Status:      in.Status,
			Priority:    priority,
			Description: in.Description,
			DueDate:     in.DueDate,
		}
		if err := uow.ActivityStatusRepository().Create(ctx, status); err != nil {
			return err
		}
		return s.tree.touchRepository(ctx, uow, activity.RepositoryId)
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (s *activityService) GetStatus(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.ActivityStatus, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity, err := s.tree.findActivity(ctx, uow, mctx, id)
	if err != nil {
		return nil, err
	}
	status, err := uow.ActivityStatusRepository().FindLatest(ctx, activity.Id)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, apperror.NotFound("STATUS_NOT_FOUND", "activity has no workflow status")
	}
	return status, nil
}

func (s *activityService) Siblings(ctx context.Context, mctx entity.MutationContext, id int64) ([]*entity.Activity, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity, err := s.tree.findActivity(ctx, uow, mctx, id)
	if err != nil {
		return nil, err
	}
	return s.tree.siblings(ctx, uow, activity)
}

func (s *activityService) Predecessors(ctx context.Context, mctx entity.MutationContext, id int64) ([]*entity.Activity, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity, err := s.tree.findActivity(ctx, uow, mctx, id, specification.IncludeDeleted{})
	if err != nil {
		return nil, err
	}
	return s.tree.predecessors(ctx, uow, activity)
}

func (s *activityService) Descendants(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Descendants, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity, err := s.tree.findActivity(ctx, uow, mctx, id, specification.IncludeDeleted{})
	if err != nil {
		return nil, err
	}
	return s.tree.descendants(ctx, uow, activity.Id, false)
}

func (s *activityService) GetFirstOutlineItem(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity, err := s.tree.findActivity(ctx, uow, mctx, id)
	if err != nil {
		return nil, err
	}
	return s.tree.firstOutlineItem(ctx, uow, activity)
}

func (s *activityService) Touch(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error) {
	var touched *entity.Activity
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		activity, err := s.tree.findActivity(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		if err := s.tree.touchActivity(ctx, uow, activity); err != nil {
			return err
		}
		touched = activity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return touched, nil
}
