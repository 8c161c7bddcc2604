package service

import (
	"context"

	"author-be/internal/entity"
	"author-be/internal/hook"
	"author-be/internal/pkg/apperror"
	"author-be/internal/pkg/validation"
	"author-be/internal/position"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

func (t *ContentTree) createActivityTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, in CreateActivityInput) (*entity.Activity, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.IsLinkedCopy && in.SourceId == nil {
		return nil, apperror.Validation("linked copy without source", map[string]interface{}{"SourceId": "required"})
	}
	if err := checkScope(mctx, in.RepositoryId); err != nil {
		return nil, err
	}

	activity := &entity.Activity{
		Uid:              uuid.New(),
		RepositoryId:     in.RepositoryId,
		ParentId:         in.ParentId,
		Type:             in.Type,
		Data:             in.Data,
		Refs:             in.Refs,
		IsLinkedCopy:     in.IsLinkedCopy,
		SourceId:         in.SourceId,
		SourceModifiedAt: in.SourceModifiedAt,
	}
	if activity.Data == nil {
		activity.Data = map[string]interface{}{}
	}

	opts := hook.Options[*entity.Activity]{Context: mctx, UoW: uow}
	if err := t.activityHooks.Run(ctx, hook.BeforeCreate, activity, opts); err != nil {
		return nil, err
	}

	if in.Position != nil {
		activity.Position = *in.Position
	} else {
		siblings, err := uow.ActivityRepository().FindAll(ctx,
			specification.ByRepositoryID{RepositoryID: activity.RepositoryId},
			specification.ByParentID{ParentID: activity.ParentId},
			specification.ByPosition{},
		)
		if err != nil {
			return nil, err
		}
		activity.Position = position.Append(activitySiblings(siblings))
	}

	if err := uow.ActivityRepository().Create(ctx, activity); err != nil {
		return nil, err
	}

	if t.schema.IsTrackedInWorkflow(activity.Type) {
		if status, ok := t.schema.GetDefaultActivityStatus(activity.Type); ok {
			err := uow.ActivityStatusRepository().Create(ctx, &entity.ActivityStatus{
				ActivityId: activity.Id,
				Status:     status.Status,
				Priority:   status.Priority,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if err := t.activityHooks.Run(ctx, hook.AfterCreate, activity, opts); err != nil {
		return nil, err
	}
	return activity, nil
}

func applyActivityFields(activity *entity.Activity, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "data":
			if data, ok := v.(map[string]interface{}); ok {
				activity.Data = data
			}
		case "refs":
			if refs, ok := v.(map[string][]int64); ok {
				activity.Refs = refs
			}
		case "position":
			if p, ok := v.(float64); ok {
				activity.Position = p
			}
		}
	}
}

// updateActivityTx writes fields (column name to Go value) and runs the
// update hooks. The returned activity reflects changes made by the hooks.
func (t *ContentTree) updateActivityTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, activity *entity.Activity, fields map[string]interface{}) (*entity.Activity, error) {
	if len(fields) == 0 {
		return activity, nil
	}

	previous := *activity
	working := *activity
	applyActivityFields(&working, fields)

	opts := hook.Options[*entity.Activity]{
		Context:  mctx,
		UoW:      uow,
		Changed:  changedColumns(fields),
		Previous: &previous,
	}
	if err := t.activityHooks.Run(ctx, hook.BeforeUpdate, &working, opts); err != nil {
		return nil, err
	}

	if err := uow.ActivityRepository().Updates(ctx, activity.Id, encodeColumns(fields)); err != nil {
		return nil, err
	}

	updated, err := uow.ActivityRepository().FindOne(ctx, specification.ByID{ID: activity.Id}, specification.IncludeDeleted{})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NotFound("ACTIVITY_NOT_FOUND", "activity disappeared during update")
	}

	if err := t.activityHooks.Run(ctx, hook.AfterUpdate, updated, opts); err != nil {
		return nil, err
	}
	return updated, nil
}

// destroyActivityTx deletes a single activity without touching its subtree.
func (t *ContentTree) destroyActivityTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, activity *entity.Activity, soft bool) error {
	opts := hook.Options[*entity.Activity]{Context: mctx, UoW: uow}
	if err := t.activityHooks.Run(ctx, hook.BeforeDestroy, activity, opts); err != nil {
		return err
	}

	repo := uow.ActivityRepository()
	if soft {
		if err := repo.Delete(ctx, activity.Id); err != nil {
			return err
		}
	} else {
		if err := uow.ActivityStatusRepository().DeleteByActivityIds(ctx, []int64{activity.Id}); err != nil {
			return err
		}
		if err := repo.DeleteUnscoped(ctx, activity.Id); err != nil {
			return err
		}
	}
	activity.IsDeleted = true

	return t.activityHooks.Run(ctx, hook.AfterDestroy, activity, opts)
}

// removeActivityTx deletes activity and, when recursive, cascades the same
// policy over its subtree in three phases: content elements, descendant
// activities, then the activity itself. A soft cascade only marks rows
// detached so the subtree can be restored.
func (t *ContentTree) removeActivityTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, activity *entity.Activity, opts RemoveOptions) error {
	if !opts.Recursive {
		return t.destroyActivityTx(ctx, uow, mctx, activity, opts.Soft)
	}

	desc, err := t.descendants(ctx, uow, activity.Id, true)
	if err != nil {
		return err
	}

	if err := t.cascadeElements(ctx, uow, mctx, activity, append(desc.Ids(), activity.Id), opts.Soft, true); err != nil {
		return err
	}
	if err := t.cascadeActivities(ctx, uow, desc, append(desc.NodeIds(), activity.Id), opts.Soft, true); err != nil {
		return err
	}
	return t.destroyActivityTx(ctx, uow, mctx, activity, opts.Soft)
}

// restoreActivityTx reverses a soft recursive remove.
func (t *ContentTree) restoreActivityTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, activity *entity.Activity) (*entity.Activity, error) {
	desc, err := t.descendants(ctx, uow, activity.Id, true)
	if err != nil {
		return nil, err
	}

	if err := t.cascadeElements(ctx, uow, mctx, activity, append(desc.Ids(), activity.Id), true, false); err != nil {
		return nil, err
	}
	if err := t.cascadeActivities(ctx, uow, desc, append(desc.NodeIds(), activity.Id), true, false); err != nil {
		return nil, err
	}

	if err := uow.ActivityRepository().Restore(ctx, activity.Id); err != nil {
		return nil, err
	}
	restored, err := uow.ActivityRepository().FindOne(ctx, specification.ByID{ID: activity.Id})
	if err != nil {
		return nil, err
	}
	if restored == nil {
		return nil, apperror.NotFound("ACTIVITY_NOT_FOUND", "activity disappeared during restore")
	}

	opts := hook.Options[*entity.Activity]{Context: mctx, UoW: uow}
	if err := t.activityHooks.Run(ctx, hook.AfterRestore, restored, opts); err != nil {
		return nil, err
	}
	return restored, nil
}

// cascadeElements is phase one: every element owned by activityIds.
func (t *ContentTree) cascadeElements(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, root *entity.Activity, activityIds []int64, soft, detached bool) error {
	repo := uow.ContentElementRepository()
	owned := specification.ByActivityIDs{ActivityIDs: activityIds}

	elements, err := repo.FindAll(ctx, owned, specification.IncludeDeleted{})
	if err != nil {
		return err
	}
	if len(elements) == 0 {
		return nil
	}

	var changes map[string]interface{}
	if soft {
		changes = map[string]interface{}{"detached": detached}
		if _, err := repo.UpdateWhere(ctx, changes, owned, specification.IncludeDeleted{}); err != nil {
			return err
		}
	} else {
		changes = map[string]interface{}{"deleted": true}
		if _, err := repo.DeleteWhere(ctx, true, owned); err != nil {
			return err
		}
	}

	batch := &entity.ContentElementBatch{
		RepositoryId: root.RepositoryId,
		ActivityIds:  activityIds,
		ElementIds:   idsOf(elements),
		Changes:      changes,
	}
	return t.batchHooks.Run(ctx, hook.AfterBulkUpdate, batch, hook.Options[*entity.ContentElementBatch]{Context: mctx, UoW: uow})
}

// cascadeActivities is phase two: every activity whose parent is in
// parentIds, which covers the whole subtree below the root.
func (t *ContentTree) cascadeActivities(ctx context.Context, uow unitofwork.UnitOfWork, desc *entity.Descendants, parentIds []int64, soft, detached bool) error {
	repo := uow.ActivityRepository()
	children := specification.ByParentIDs{ParentIDs: parentIds}

	if soft {
		_, err := repo.UpdateWhere(ctx, map[string]interface{}{"detached": detached}, children, specification.IncludeDeleted{})
		return err
	}

	if err := uow.ActivityStatusRepository().DeleteByActivityIds(ctx, desc.Ids()); err != nil {
		return err
	}
	_, err := repo.DeleteWhere(ctx, true, children)
	return err
}

// predecessors returns the ancestors of activity, root first. An activity
// below a soft deleted ancestor has no valid chain and gets none.
func (t *ContentTree) predecessors(ctx context.Context, uow unitofwork.UnitOfWork, activity *entity.Activity) ([]*entity.Activity, error) {
	var chain []*entity.Activity
	parentId := activity.ParentId
	for parentId != nil {
		parent, err := uow.ActivityRepository().FindOne(ctx,
			specification.ByID{ID: *parentId},
			specification.IncludeDeleted{},
		)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.IsDeleted {
			return []*entity.Activity{}, nil
		}
		chain = append(chain, parent)
		parentId = parent.ParentId
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	if chain == nil {
		chain = []*entity.Activity{}
	}
	return chain, nil
}

// siblings returns the activities sharing activity's ordering space,
// activity included.
func (t *ContentTree) siblings(ctx context.Context, uow unitofwork.UnitOfWork, activity *entity.Activity) ([]*entity.Activity, error) {
	return uow.ActivityRepository().FindAll(ctx,
		specification.ByRepositoryID{RepositoryID: activity.RepositoryId},
		specification.ByParentID{ParentID: activity.ParentId},
		specification.ByTypes{Types: t.schema.GetSiblingTypes(activity.Type)},
		specification.ByPosition{},
	)
}

func (t *ContentTree) reorderActivityTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, activity *entity.Activity, targetIndex int) (*entity.Activity, error) {
	siblings, err := t.siblings(ctx, uow, activity)
	if err != nil {
		return nil, err
	}
	p := position.Calculate(activity.Id, targetIndex, activitySiblings(siblings))
	if p == activity.Position {
		return activity, nil
	}
	return t.updateActivityTx(ctx, uow, mctx, activity, map[string]interface{}{"position": p})
}
