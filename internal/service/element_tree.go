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

func (t *ContentTree) createElementTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, in CreateElementInput) (*entity.ContentElement, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.IsLinkedCopy && in.SourceId == nil {
		return nil, apperror.Validation("linked copy without source", map[string]interface{}{"SourceId": "required"})
	}

	owner, err := t.findActivity(ctx, uow, mctx, in.ActivityId)
	if err != nil {
		return nil, err
	}

	element := &entity.ContentElement{
		Uid:              uuid.New(),
		ActivityId:       owner.Id,
		RepositoryId:     owner.RepositoryId,
		Type:             in.Type,
		Data:             in.Data,
		Meta:             in.Meta,
		Refs:             in.Refs,
		IsLinkedCopy:     in.IsLinkedCopy,
		SourceId:         in.SourceId,
		SourceModifiedAt: in.SourceModifiedAt,
	}
	if element.Data == nil {
		element.Data = map[string]interface{}{}
	}
	if in.ContentId != nil {
		element.ContentId = *in.ContentId
	} else {
		element.ContentId = uuid.New()
	}

	if in.Position != nil {
		element.Position = *in.Position
	} else {
		siblings, err := uow.ContentElementRepository().FindAll(ctx,
			specification.ByActivityID{ActivityID: owner.Id},
			specification.ByPosition{},
		)
		if err != nil {
			return nil, err
		}
		element.Position = position.Append(elementSiblings(siblings))
	}

	opts := hook.Options[*entity.ContentElement]{Context: mctx, UoW: uow}
	if err := t.elementHooks.Run(ctx, hook.BeforeCreate, element, opts); err != nil {
		return nil, err
	}
	if err := uow.ContentElementRepository().Create(ctx, element); err != nil {
		return nil, err
	}
	if err := t.elementHooks.Run(ctx, hook.AfterCreate, element, opts); err != nil {
		return nil, err
	}
	return element, nil
}

func applyElementFields(element *entity.ContentElement, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "data":
			if data, ok := v.(map[string]interface{}); ok {
				element.Data = data
			}
		case "meta":
			if meta, ok := v.(map[string]interface{}); ok {
				element.Meta = meta
			}
		case "refs":
			if refs, ok := v.(map[string][]int64); ok {
				element.Refs = refs
			}
		case "position":
			if p, ok := v.(float64); ok {
				element.Position = p
			}
		}
	}
}

func elementChangeFields(changes entity.ContentElementChanges) map[string]interface{} {
	fields := make(map[string]interface{})
	if changes.Data != nil {
		fields["data"] = changes.Data
	}
	if changes.Meta != nil {
		fields["meta"] = changes.Meta
	}
	if changes.Refs != nil {
		fields["refs"] = changes.Refs
	}
	if changes.Position != nil {
		fields["position"] = *changes.Position
	}
	return fields
}

func (t *ContentTree) updateElementTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, element *entity.ContentElement, fields map[string]interface{}) (*entity.ContentElement, error) {
	if len(fields) == 0 {
		return element, nil
	}

	previous := *element
	working := *element
	applyElementFields(&working, fields)

	opts := hook.Options[*entity.ContentElement]{
		Context:  mctx,
		UoW:      uow,
		Changed:  changedColumns(fields),
		Previous: &previous,
	}
	if err := t.elementHooks.Run(ctx, hook.BeforeUpdate, &working, opts); err != nil {
		return nil, err
	}

	columns := encodeColumns(fields)
	if working.ContentSignature != previous.ContentSignature {
		columns["content_signature"] = working.ContentSignature
	}

	repo := uow.ContentElementRepository()
	if err := repo.Updates(ctx, element.Id, columns); err != nil {
		return nil, err
	}
	updated, err := repo.FindOne(ctx, specification.ByID{ID: element.Id}, specification.IncludeDeleted{})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperror.NotFound("ELEMENT_NOT_FOUND", "content element disappeared during update")
	}

	if err := t.elementHooks.Run(ctx, hook.AfterUpdate, updated, opts); err != nil {
		return nil, err
	}
	return updated, nil
}

func (t *ContentTree) destroyElementTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, element *entity.ContentElement, soft bool) error {
	opts := hook.Options[*entity.ContentElement]{Context: mctx, UoW: uow}
	if err := t.elementHooks.Run(ctx, hook.BeforeDestroy, element, opts); err != nil {
		return err
	}

	repo := uow.ContentElementRepository()
	if soft {
		if err := repo.Delete(ctx, element.Id); err != nil {
			return err
		}
	} else if err := repo.DeleteUnscoped(ctx, element.Id); err != nil {
		return err
	}
	element.IsDeleted = true

	return t.elementHooks.Run(ctx, hook.AfterDestroy, element, opts)
}

// elementReorderFilter narrows the ordering space of an element. Inside an
// assessment group graded and ungraded elements are ordered separately.
func (t *ContentTree) elementReorderFilter(ctx context.Context, uow unitofwork.UnitOfWork, element *entity.ContentElement) ([]specification.Specification, error) {
	specs := []specification.Specification{specification.ByActivityID{ActivityID: element.ActivityId}}

	owner, err := uow.ActivityRepository().FindOne(ctx,
		specification.ByID{ID: element.ActivityId},
		specification.IncludeDeleted{},
	)
	if err != nil {
		return nil, err
	}
	if owner != nil && t.schema.IsAssessmentGroup(owner.Type) {
		graded := t.schema.GradedElementTypes()
		if t.schema.IsGradedElement(element.Type) {
			specs = append(specs, specification.ByTypes{Types: graded})
		} else {
			specs = append(specs, specification.ExcludeTypes{Types: graded})
		}
	}
	return append(specs, specification.ByPosition{}), nil
}

func (t *ContentTree) reorderElementTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, element *entity.ContentElement, targetIndex int) (*entity.ContentElement, error) {
	specs, err := t.elementReorderFilter(ctx, uow, element)
	if err != nil {
		return nil, err
	}
	siblings, err := uow.ContentElementRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	p := position.Calculate(element.Id, targetIndex, elementSiblings(siblings))
	if p == element.Position {
		return element, nil
	}
	return t.updateElementTx(ctx, uow, mctx, element, map[string]interface{}{"position": p})
}

// cloneElementsTx copies sources under target in order and records the id
// and uid mappings. Refs are copied verbatim; remapping happens once the
// whole set is cloned.
func (t *ContentTree) cloneElementsTx(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, sources []*entity.ContentElement, target *entity.Activity, mappings *entity.CloneMappings, link bool) ([]*entity.ContentElement, error) {
	created := make([]*entity.ContentElement, 0, len(sources))
	for _, src := range sources {
		p := src.Position
		contentId := src.ContentId
		in := CreateElementInput{
			ActivityId: target.Id,
			Type:       src.Type,
			Position:   &p,
			ContentId:  &contentId,
			Data:       src.Data,
			Meta:       src.Meta,
			Refs:       src.Refs,
		}
		if link {
			sourceId := src.Id
			in.IsLinkedCopy = true
			in.SourceId = &sourceId
			in.SourceModifiedAt = src.UpdatedAt
		}

		element, err := t.createElementTx(ctx, uow, mctx, in)
		if err != nil {
			return nil, err
		}
		mappings.ElementIds[src.Id] = element.Id
		mappings.ElementUids[src.Uid] = element.Uid
		created = append(created, element)
	}
	return created, nil
}
