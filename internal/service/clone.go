package service

import (
	"context"

	"author-be/internal/entity"
	"author-be/internal/pkg/apperror"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"
)

// CloneTarget is where a cloned subtree root is placed. A nil Position
// appends the root after its new siblings.
type CloneTarget struct {
	RepositoryId int64
	ParentId     *int64
	Position     *float64
}

type CloneOptions struct {
	// Link marks every copy as a linked copy of its source.
	Link bool
	// ResolveType returns the type a source activity takes under a parent
	// of parentType ("" at the top level). Nil keeps the source type.
	ResolveType func(parentType string, source *entity.Activity) (string, error)
}

type cloneFrame struct {
	source     *entity.Activity
	parentId   *int64
	parentType string
	position   *float64
}

// cloneSubtree copies root and its live subtree depth first with an
// explicit stack. The elements of each activity are cloned before its
// children so the mappings are complete when refs are remapped at the end.
func (t *ContentTree) cloneSubtree(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, root *entity.Activity, target CloneTarget, opts CloneOptions) (*entity.Activity, *entity.CloneMappings, error) {
	ctx, span := t.tracer.Start(ctx, "ContentTree.cloneSubtree")
	defer span.End()

	parentType := ""
	if target.ParentId != nil {
		parent, err := t.findActivity(ctx, uow, mctx, *target.ParentId)
		if err != nil {
			return nil, nil, err
		}
		if parent.RepositoryId != target.RepositoryId {
			return nil, nil, apperror.BadRequest("PARENT_REPOSITORY_MISMATCH",
				"target parent belongs to another repository",
				map[string]interface{}{"parentId": parent.Id, "repositoryId": target.RepositoryId})
		}
		parentType = parent.Type
	}

	mappings := entity.NewCloneMappings()
	created := make(map[int64]bool)
	var rootCopy *entity.Activity
	var activities []*entity.Activity
	var elements []*entity.ContentElement

	stack := []cloneFrame{{source: root, parentId: target.ParentId, parentType: parentType, position: target.Position}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		src := frame.source

		activityType := src.Type
		if opts.ResolveType != nil {
			resolved, err := opts.ResolveType(frame.parentType, src)
			if err != nil {
				return nil, nil, err
			}
			activityType = resolved
		}

		in := CreateActivityInput{
			RepositoryId: target.RepositoryId,
			ParentId:     frame.parentId,
			Type:         activityType,
			Position:     frame.position,
			Data:         src.Data,
			Refs:         src.Refs,
		}
		if opts.Link {
			sourceId := src.Id
			in.IsLinkedCopy = true
			in.SourceId = &sourceId
			in.SourceModifiedAt = src.LastModified()
		}

		activity, err := t.createActivityTx(ctx, uow, mctx, in)
		if err != nil {
			return nil, nil, err
		}
		created[activity.Id] = true
		mappings.ActivityIds[src.Id] = activity.Id
		activities = append(activities, activity)
		if rootCopy == nil {
			rootCopy = activity
		}

		sourceElements, err := uow.ContentElementRepository().FindAll(ctx,
			specification.ByActivityID{ActivityID: src.Id},
			specification.NotDetached{},
			specification.ByPosition{},
		)
		if err != nil {
			return nil, nil, err
		}
		copies, err := t.cloneElementsTx(ctx, uow, mctx, sourceElements, activity, mappings, opts.Link)
		if err != nil {
			return nil, nil, err
		}
		elements = append(elements, copies...)

		children, err := uow.ActivityRepository().FindAll(ctx,
			specification.ByParentID{ParentID: &src.Id},
			specification.NotDetached{},
			specification.ByPosition{},
		)
		if err != nil {
			return nil, nil, err
		}
		// Pushed in reverse so the first child is cloned first.
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			if created[child.Id] {
				continue
			}
			p := child.Position
			stack = append(stack, cloneFrame{
				source:     child,
				parentId:   &activity.Id,
				parentType: activity.Type,
				position:   &p,
			})
		}
	}

	if err := t.remapActivityRefs(ctx, uow, activities, mappings); err != nil {
		return nil, nil, err
	}
	if err := t.remapElementRefs(ctx, uow, elements, mappings); err != nil {
		return nil, nil, err
	}
	t.metrics.RecordClone()
	return rootCopy, mappings, nil
}

// remapRefs rewrites every id through ids. Ids outside the copied set are
// dropped and returned.
func remapRefs(refs map[string][]int64, ids map[int64]int64) (map[string][]int64, []int64) {
	remapped := make(map[string][]int64, len(refs))
	var missing []int64
	for name, targets := range refs {
		list := make([]int64, 0, len(targets))
		for _, id := range targets {
			if mapped, ok := ids[id]; ok {
				list = append(list, mapped)
				continue
			}
			missing = append(missing, id)
		}
		remapped[name] = list
	}
	return remapped, missing
}

func (t *ContentTree) logUnresolved(kind string, id int64, missing []int64) {
	err := apperror.ReferenceResolution("references outside the cloned set were dropped", map[string]interface{}{
		"entity":  kind,
		"id":      id,
		"missing": missing,
	})
	t.logger.Warn("ContentTree", err.Error(), err.Details)
}

func (t *ContentTree) remapActivityRefs(ctx context.Context, uow unitofwork.UnitOfWork, activities []*entity.Activity, mappings *entity.CloneMappings) error {
	for _, a := range activities {
		if len(a.Refs) == 0 {
			continue
		}
		refs, missing := remapRefs(a.Refs, mappings.ActivityIds)
		if len(missing) > 0 {
			t.logUnresolved("activity", a.Id, missing)
		}
		if err := uow.ActivityRepository().Updates(ctx, a.Id, encodeColumns(map[string]interface{}{"refs": refs})); err != nil {
			return err
		}
		a.Refs = refs
	}
	return nil
}

func (t *ContentTree) remapElementRefs(ctx context.Context, uow unitofwork.UnitOfWork, elements []*entity.ContentElement, mappings *entity.CloneMappings) error {
	for _, e := range elements {
		if len(e.Refs) == 0 {
			continue
		}
		refs, missing := remapRefs(e.Refs, mappings.ElementIds)
		if len(missing) > 0 {
			t.logUnresolved("element", e.Id, missing)
		}
		if err := uow.ContentElementRepository().Updates(ctx, e.Id, encodeColumns(map[string]interface{}{"refs": refs})); err != nil {
			return err
		}
		e.Refs = refs
	}
	return nil
}
