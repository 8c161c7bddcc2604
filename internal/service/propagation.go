package service

import (
	"context"
	"fmt"

	"author-be/internal/entity"
	"author-be/internal/hook"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"
)

// shouldPropagate guards one hop propagation. Sync writes never cascade and
// a linked copy never acts as a source, checked before and after the write
// because auto-detach may have just cleared the flag.
func shouldPropagate(mctx entity.MutationContext, isLinkedCopy, wasLinkedCopy bool) bool {
	return !mctx.IsLibrarySync() && !isLinkedCopy && !wasLinkedCopy
}

// bestEffort runs fn in a savepoint. A failure rolls back only the
// propagated writes and is logged; the triggering edit goes on.
func (t *ContentTree) bestEffort(ctx context.Context, uow unitofwork.UnitOfWork, kind string, sourceId int64, fn func() (int, error)) error {
	count := 0
	err := uow.Savepoint(fmt.Sprintf("propagate_%s_%d", kind, sourceId), func() error {
		n, err := fn()
		count = n
		return err
	})
	if err != nil {
		t.logger.Error("Propagation", "Failed to propagate to linked copies", map[string]interface{}{
			"entity":    kind,
			"source_id": sourceId,
			"error":     err.Error(),
		})
		t.metrics.RecordPropagation(kind, "failure", 1)
		return nil
	}
	t.metrics.RecordPropagation(kind, "success", count)
	return nil
}

func (t *ContentTree) activityPropagate(ctx context.Context, stage hook.Stage, a *entity.Activity, opts activityOptions) error {
	wasLinkedCopy := opts.Previous != nil && opts.Previous.IsLinkedCopy
	if !shouldPropagate(opts.Context, a.IsLinkedCopy, wasLinkedCopy) || !opts.HasChanged("data") {
		return nil
	}

	uow := opts.UoW
	return t.bestEffort(ctx, uow, "activity", a.Id, func() (int, error) {
		repo := uow.ActivityRepository()
		copies, err := repo.FindAll(ctx,
			specification.BySourceID{SourceID: a.Id},
			specification.LinkedCopies{},
			specification.OrderBy{Field: "id"},
		)
		if err != nil {
			return 0, err
		}

		fields := encodeColumns(map[string]interface{}{
			"data":               a.Data,
			"source_modified_at": a.UpdatedAt,
		})
		for _, c := range copies {
			if err := repo.Updates(ctx, c.Id, fields); err != nil {
				return 0, err
			}
			updated, err := repo.FindOne(ctx, specification.ByID{ID: c.Id}, specification.IncludeDeleted{})
			if err != nil {
				return 0, err
			}
			t.broadcastAfterCommit(ctx, uow, updated.RepositoryId, EventActivityUpdate, updated)
		}
		return len(copies), nil
	})
}

var elementSyncedColumns = []string{"data", "meta", "position"}

func (t *ContentTree) elementPropagate(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
	wasLinkedCopy := opts.Previous != nil && opts.Previous.IsLinkedCopy
	if !shouldPropagate(opts.Context, e.IsLinkedCopy, wasLinkedCopy) {
		return nil
	}
	relevant := false
	for _, col := range elementSyncedColumns {
		relevant = relevant || opts.HasChanged(col)
	}
	if !relevant {
		return nil
	}

	uow := opts.UoW
	return t.bestEffort(ctx, uow, "element", e.Id, func() (int, error) {
		repo := uow.ContentElementRepository()
		copies, err := repo.FindAll(ctx,
			specification.BySourceID{SourceID: e.Id},
			specification.LinkedCopies{},
			specification.OrderBy{Field: "id"},
		)
		if err != nil {
			return 0, err
		}

		fields := encodeColumns(map[string]interface{}{
			"data":               e.Data,
			"meta":               e.Meta,
			"position":           e.Position,
			"content_signature":  e.ContentSignature,
			"source_modified_at": e.UpdatedAt,
		})
		for _, c := range copies {
			if err := repo.Updates(ctx, c.Id, fields); err != nil {
				return 0, err
			}
			updated, err := repo.FindOne(ctx, specification.ByID{ID: c.Id}, specification.IncludeDeleted{})
			if err != nil {
				return 0, err
			}
			t.broadcastAfterCommit(ctx, uow, updated.RepositoryId, EventElementUpdate, updated)
		}
		return len(copies), nil
	})
}

// elementPropagateCreate mirrors a new element under every linked copy of
// its owning activity.
func (t *ContentTree) elementPropagateCreate(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
	if !shouldPropagate(opts.Context, e.IsLinkedCopy, false) {
		return nil
	}

	uow := opts.UoW
	owner, err := uow.ActivityRepository().FindOne(ctx, specification.ByID{ID: e.ActivityId})
	if err != nil || owner == nil || owner.IsLinkedCopy {
		return err
	}

	syncCtx := opts.Context.AsLibrarySync().Unscoped()
	return t.bestEffort(ctx, uow, "element", e.Id, func() (int, error) {
		copies, err := uow.ActivityRepository().FindAll(ctx,
			specification.BySourceID{SourceID: owner.Id},
			specification.LinkedCopies{},
			specification.OrderBy{Field: "id"},
		)
		if err != nil {
			return 0, err
		}

		for _, c := range copies {
			sourceId := e.Id
			contentId := e.ContentId
			p := e.Position
			_, err := t.createElementTx(ctx, uow, syncCtx, CreateElementInput{
				ActivityId:       c.Id,
				Type:             e.Type,
				Position:         &p,
				ContentId:        &contentId,
				Data:             e.Data,
				Meta:             e.Meta,
				Refs:             e.Refs,
				IsLinkedCopy:     true,
				SourceId:         &sourceId,
				SourceModifiedAt: e.UpdatedAt,
			})
			if err != nil {
				return 0, err
			}
		}
		return len(copies), nil
	})
}

// elementPropagateDestroy removes the linked copies of a deleted element.
func (t *ContentTree) elementPropagateDestroy(ctx context.Context, stage hook.Stage, e *entity.ContentElement, opts elementOptions) error {
	if !shouldPropagate(opts.Context, e.IsLinkedCopy, false) {
		return nil
	}

	uow := opts.UoW
	syncCtx := opts.Context.AsLibrarySync().Unscoped()
	return t.bestEffort(ctx, uow, "element", e.Id, func() (int, error) {
		copies, err := uow.ContentElementRepository().FindAll(ctx,
			specification.BySourceID{SourceID: e.Id},
			specification.LinkedCopies{},
			specification.OrderBy{Field: "id"},
		)
		if err != nil {
			return 0, err
		}
		for _, c := range copies {
			if err := t.destroyElementTx(ctx, uow, syncCtx, c, true); err != nil {
				return 0, err
			}
		}
		return len(copies), nil
	})
}
