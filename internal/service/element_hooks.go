package service

import (
	"context"

	"author-be/internal/entity"
	"author-be/internal/hook"
	"author-be/internal/repository/specification"
)

type elementOptions = hook.Options[*entity.ContentElement]

func (t *ContentTree) newElementPipeline() *hook.Pipeline[*entity.ContentElement] {
	return hook.NewPipeline[*entity.ContentElement]().
		On(hook.BeforeCreate,
			hook.Named("sign-content", t.elementSign),
		).
		On(hook.AfterCreate,
			hook.Named("touch-repository", t.elementTouchRepository),
			hook.Named("touch-outline", t.elementTouchOutline),
			hook.Named("propagate-create", t.elementPropagateCreate),
			hook.Named("broadcast-create", t.elementBroadcast(EventElementCreate)),
		).
		On(hook.BeforeUpdate,
			hook.Named("sign-content", t.elementSign),
		).
		On(hook.AfterUpdate,
			hook.Named("auto-detach", t.elementAutoDetach),
			hook.Named("touch-repository", t.elementTouchRepository),
			hook.Named("touch-outline", t.elementTouchOutline),
			hook.Named("propagate-to-copies", t.elementPropagate),
			hook.Named("broadcast-update", t.elementBroadcast(EventElementUpdate)),
		).
		On(hook.AfterDestroy,
			hook.Named("touch-repository", t.elementTouchRepository),
			hook.Named("touch-outline", t.elementTouchOutline),
			hook.Named("propagate-destroy", t.elementPropagateDestroy),
			hook.Named("broadcast-delete", t.elementBroadcastDelete),
		)
}

func (t *ContentTree) newBatchPipeline() *hook.Pipeline[*entity.ContentElementBatch] {
	return hook.NewPipeline[*entity.ContentElementBatch]().
		On(hook.AfterBulkUpdate,
			hook.Named("broadcast-bulk-update", t.elementBroadcastBulk),
		)
}

func (t *ContentTree) elementSign(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
	if stage == hook.BeforeCreate || opts.HasChanged("data") {
		e.ContentSignature = ContentSignature(e.Data)
	}
	return nil
}

func (t *ContentTree) elementTouchRepository(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
	return t.touchRepository(ctx, opts.UoW, e.RepositoryId)
}

func (t *ContentTree) elementTouchOutline(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
	owner, err := opts.UoW.ActivityRepository().FindOne(ctx,
		specification.ByID{ID: e.ActivityId},
		specification.IncludeDeleted{},
	)
	if err != nil || owner == nil {
		return err
	}
	return t.touchOutline(ctx, opts.UoW, owner)
}

func (t *ContentTree) elementAutoDetach(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
	if !e.IsLinkedCopy || !opts.HasChanged("data") || opts.Context.IsLibrarySync() {
		return nil
	}
	err := opts.UoW.ContentElementRepository().Updates(ctx, e.Id, map[string]interface{}{
		"is_linked_copy":     false,
		"source_modified_at": nil,
	})
	if err != nil {
		return err
	}
	e.IsLinkedCopy = false
	e.SourceModifiedAt = nil
	t.metrics.RecordAutoDetach("element")
	return nil
}

func (t *ContentTree) elementBroadcast(event string) func(context.Context, hook.Stage, *entity.ContentElement, elementOptions) error {
	return func(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
		snapshot := *e
		t.broadcastAfterCommit(ctx, opts.UoW, e.RepositoryId, event, &snapshot)
		return nil
	}
}

func (t *ContentTree) elementBroadcastDelete(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
	payload := *e
	reloaded, err := opts.UoW.ContentElementRepository().FindOne(ctx,
		specification.ByID{ID: e.Id},
		specification.IncludeDeleted{},
	)
	if err != nil {
		return err
	}
	if reloaded != nil {
		payload = *reloaded
	}
	t.broadcastAfterCommit(ctx, opts.UoW, e.RepositoryId, EventElementDelete, &payload)
	return nil
}

func (t *ContentTree) elementBroadcastBulk(ctx context.Context, stage hook.Stage, b *entity.ContentElementBatch, opts hook.Options[*entity.ContentElementBatch]) error {
	t.broadcastAfterCommit(ctx, opts.UoW, b.RepositoryId, EventElementBulkUpdate, b)
	return nil
}
