package service

import (
	"context"
	"fmt"

	"author-be/internal/entity"
	"author-be/internal/hook"
	"author-be/internal/pkg/apperror"
	"author-be/internal/repository/specification"
)

type activityOptions = hook.Options[*entity.Activity]

// newActivityPipeline fixes the handler order for activities. In
// afterUpdate the touches run before propagation, which reads the
// modifiedAt they set.
func (t *ContentTree) newActivityPipeline() *hook.Pipeline[*entity.Activity] {
	return hook.NewPipeline[*entity.Activity]().
		On(hook.BeforeCreate,
			hook.Named("validate-parent", t.validateParent),
		).
		On(hook.AfterCreate,
			hook.Named("touch-repository", t.activityTouchRepository),
			hook.Named("touch-outline", t.activityTouchOutline),
			hook.Named("broadcast-create", t.activityBroadcast(EventActivityCreate)),
		).
		On(hook.AfterUpdate,
			hook.Named("auto-detach", t.activityAutoDetach),
			hook.Named("touch-repository", t.activityTouchRepository),
			hook.Named("touch-outline", t.activityTouchOutline),
			hook.Named("propagate-to-copies", t.activityPropagate),
			hook.Named("broadcast-update", t.activityBroadcast(EventActivityUpdate)),
		).
		On(hook.BeforeDestroy,
			hook.Named("touch-repository", t.activityTouchRepository),
		).
		On(hook.AfterDestroy,
			hook.Named("touch-outline", t.activityTouchParentOutline),
			hook.Named("broadcast-delete", t.activityBroadcastDelete),
		).
		On(hook.AfterRestore,
			hook.Named("touch-repository", t.activityTouchRepository),
			hook.Named("broadcast-create", t.activityBroadcast(EventActivityCreate)),
		)
}

func (t *ContentTree) validateParent(ctx context.Context, stage hook.Stage, a *entity.Activity, opts activityOptions) error {
	if a.ParentId == nil {
		return nil
	}
	parent, err := opts.UoW.ActivityRepository().FindOne(ctx, specification.ByID{ID: *a.ParentId})
	if err != nil {
		return err
	}
	if parent == nil {
		return apperror.NotFound("PARENT_NOT_FOUND", fmt.Sprintf("parent activity %d not found", *a.ParentId))
	}
	if parent.RepositoryId != a.RepositoryId {
		return apperror.BadRequest("PARENT_REPOSITORY_MISMATCH",
			"parent activity belongs to another repository",
			map[string]interface{}{"parentId": parent.Id, "repositoryId": a.RepositoryId})
	}
	return nil
}

func (t *ContentTree) activityTouchRepository(ctx context.Context, stage hook.Stage, a *entity.Activity, opts activityOptions) error {
	return t.touchRepository(ctx, opts.UoW, a.RepositoryId)
}

func (t *ContentTree) activityTouchOutline(ctx context.Context, stage hook.Stage, a *entity.Activity, opts activityOptions) error {
	return t.touchOutline(ctx, opts.UoW, a)
}

// activityTouchParentOutline is used once the activity itself is gone.
func (t *ContentTree) activityTouchParentOutline(ctx context.Context, stage hook.Stage, a *entity.Activity, opts activityOptions) error {
	if a.ParentId == nil {
		return nil
	}
	parent, err := opts.UoW.ActivityRepository().FindOne(ctx,
		specification.ByID{ID: *a.ParentId},
		specification.IncludeDeleted{},
	)
	if err != nil || parent == nil {
		return err
	}
	return t.touchOutline(ctx, opts.UoW, parent)
}

func (t *ContentTree) activityAutoDetach(ctx context.Context, stage hook.Stage, a *entity.Activity, opts activityOptions) error {
	if !a.IsLinkedCopy || !opts.HasChanged("data") || opts.Context.IsLibrarySync() {
		return nil
	}
	err := opts.UoW.ActivityRepository().Updates(ctx, a.Id, map[string]interface{}{
		"is_linked_copy":     false,
		"source_modified_at": nil,
	})
	if err != nil {
		return err
	}
	a.IsLinkedCopy = false
	a.SourceModifiedAt = nil
	t.metrics.RecordAutoDetach("activity")
	return nil
}

func (t *ContentTree) activityBroadcast(event string) func(context.Context, hook.Stage, *entity.Activity, activityOptions) error {
	return func(ctx context.Context, stage hook.Stage, a *entity.Activity, opts activityOptions) error {
		snapshot := *a
		t.broadcastAfterCommit(ctx, opts.UoW, a.RepositoryId, event, &snapshot)
		return nil
	}
}

// activityBroadcastDelete reloads the row without the soft delete scope so
// the payload carries its deletion state. Hard deleted rows are sent as is.
func (t *ContentTree) activityBroadcastDelete(ctx context.Context, stage hook.Stage, a *entity.Activity, opts activityOptions) error {
	payload := *a
	reloaded, err := opts.UoW.ActivityRepository().FindOne(ctx,
		specification.ByID{ID: a.Id},
		specification.IncludeDeleted{},
	)
	if err != nil {
		return err
	}
	if reloaded != nil {
		payload = *reloaded
	}
	t.broadcastAfterCommit(ctx, opts.UoW, a.RepositoryId, EventActivityDelete, &payload)
	return nil
}
