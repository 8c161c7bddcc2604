package service

import (
	"context"
	"fmt"

	"author-be/internal/entity"
	"author-be/internal/pkg/apperror"
	"author-be/internal/pkg/validation"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"
)

type IContentElementService interface {
	Create(ctx context.Context, mctx entity.MutationContext, in CreateElementInput) (*entity.ContentElement, error)
	Get(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.ContentElement, error)
	List(ctx context.Context, mctx entity.MutationContext, filter ElementFilter) ([]*entity.ContentElement, error)
	Update(ctx context.Context, mctx entity.MutationContext, id int64, changes entity.ContentElementChanges) (*entity.ContentElement, error)
	Reorder(ctx context.Context, mctx entity.MutationContext, id int64, targetIndex int) (*entity.ContentElement, error)
	Remove(ctx context.Context, mctx entity.MutationContext, id int64, soft bool) error
	Link(ctx context.Context, mctx entity.MutationContext, in LinkElementInput) (*entity.ContentElement, error)
	Unlink(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.ContentElement, error)
	GetSource(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.ContentElement, error)
	GetCopies(ctx context.Context, mctx entity.MutationContext, id int64) ([]*entity.ContentElement, error)
	CloneElements(ctx context.Context, mctx entity.MutationContext, ids []int64, targetActivityId int64) ([]*entity.ContentElement, *entity.CloneMappings, error)
}

type contentElementService struct {
	uowFactory unitofwork.RepositoryFactory
	tree       *ContentTree
}

func NewContentElementService(uowFactory unitofwork.RepositoryFactory, tree *ContentTree) IContentElementService {
	return &contentElementService{
		uowFactory: uowFactory,
		tree:       tree,
	}
}

func (s *contentElementService) Create(ctx context.Context, mctx entity.MutationContext, in CreateElementInput) (*entity.ContentElement, error) {
	var created *entity.ContentElement
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		var err error
		created, err = s.tree.createElementTx(ctx, uow, mctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *contentElementService) Get(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.ContentElement, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.tree.findElement(ctx, uow, mctx, id)
}

func (s *contentElementService) List(ctx context.Context, mctx entity.MutationContext, filter ElementFilter) ([]*entity.ContentElement, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var specs []specification.Specification
	switch {
	case filter.ActivityId != nil:
		owner, err := s.tree.findActivity(ctx, uow, mctx, *filter.ActivityId)
		if err != nil {
			return nil, err
		}
		specs = append(specs, specification.ByActivityID{ActivityID: owner.Id})
	case filter.RepositoryId != nil:
		if err := checkScope(mctx, *filter.RepositoryId); err != nil {
			return nil, err
		}
		specs = append(specs, specification.ByRepositoryID{RepositoryID: *filter.RepositoryId})
	default:
		return nil, apperror.Validation("activity or repository is required", map[string]interface{}{
			"ActivityId": "required_without",
		})
	}

	if len(filter.Types) > 0 {
		specs = append(specs, specification.ByTypes{Types: filter.Types})
	}
	if !filter.IncludeDetached {
		specs = append(specs, specification.NotDetached{})
	}
	specs = append(specs, specification.ByPosition{})
	return uow.ContentElementRepository().FindAll(ctx, specs...)
}

func (s *contentElementService) Update(ctx context.Context, mctx entity.MutationContext, id int64, changes entity.ContentElementChanges) (*entity.ContentElement, error) {
	var updated *entity.ContentElement
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		element, err := s.tree.findElement(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		updated, err = s.tree.updateElementTx(ctx, uow, mctx, element, elementChangeFields(changes))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *contentElementService) Reorder(ctx context.Context, mctx entity.MutationContext, id int64, targetIndex int) (*entity.ContentElement, error) {
	var updated *entity.ContentElement
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		element, err := s.tree.findElement(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		updated, err = s.tree.reorderElementTx(ctx, uow, mctx, element, targetIndex)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *contentElementService) Remove(ctx context.Context, mctx entity.MutationContext, id int64, soft bool) error {
	return inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		element, err := s.tree.findElement(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		return s.tree.destroyElementTx(ctx, uow, mctx, element, soft)
	})
}

// Link creates a linked copy of a single element under target activity.
// The source may live in any repository.
func (s *contentElementService) Link(ctx context.Context, mctx entity.MutationContext, in LinkElementInput) (*entity.ContentElement, error) {
	ctx, span := s.tree.tracer.Start(ctx, "ContentElementService.Link")
	defer span.End()

	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var linked *entity.ContentElement
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		source, err := s.tree.findElement(ctx, uow, mctx.Unscoped(), in.SourceElementId, specification.NotDetached{})
		if err != nil {
			return err
		}
		target, err := s.tree.findActivity(ctx, uow, mctx, in.TargetActivityId)
		if err != nil {
			return err
		}

		sourceId := source.Id
		contentId := source.ContentId
		linked, err = s.tree.createElementTx(ctx, uow, mctx, CreateElementInput{
			ActivityId:       target.Id,
			Type:             source.Type,
			Position:         in.Position,
			ContentId:        &contentId,
			Data:             source.Data,
			Meta:             source.Meta,
			Refs:             map[string][]int64{},
			IsLinkedCopy:     true,
			SourceId:         &sourceId,
			SourceModifiedAt: source.UpdatedAt,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.tree.metrics.RecordLink("element")
	return linked, nil
}

// Unlink stops source updates from reaching element. SourceId is kept.
func (s *contentElementService) Unlink(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.ContentElement, error) {
	var unlinked *entity.ContentElement
	changed := false
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		element, err := s.tree.findElement(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		if !element.IsLinkedCopy {
			unlinked = element
			return nil
		}
		changed = true
		unlinked, err = s.tree.updateElementTx(ctx, uow, mctx, element, map[string]interface{}{
			"is_linked_copy":     false,
			"source_modified_at": nil,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.tree.metrics.RecordUnlink("element")
	}
	return unlinked, nil
}

func (s *contentElementService) GetSource(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.ContentElement, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	element, err := s.tree.findElement(ctx, uow, mctx, id)
	if err != nil {
		return nil, err
	}
	if element.SourceId == nil {
		return nil, apperror.NotFound("SOURCE_NOT_FOUND", fmt.Sprintf("content element %d has no source", id))
	}
	source, err := uow.ContentElementRepository().FindOne(ctx, specification.ByID{ID: *element.SourceId})
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperror.NotFound("SOURCE_NOT_FOUND", fmt.Sprintf("source of content element %d is gone", id))
	}
	return source, nil
}

func (s *contentElementService) GetCopies(ctx context.Context, mctx entity.MutationContext, id int64) ([]*entity.ContentElement, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	element, err := s.tree.findElement(ctx, uow, mctx, id)
	if err != nil {
		return nil, err
	}
	return uow.ContentElementRepository().FindAll(ctx,
		specification.BySourceID{SourceID: element.Id},
		specification.OrderBy{Field: "id"},
	)
}

// CloneElements copies the given elements, in order, under target activity.
// Refs between the copied elements are rewritten to the copies.
func (s *contentElementService) CloneElements(ctx context.Context, mctx entity.MutationContext, ids []int64, targetActivityId int64) ([]*entity.ContentElement, *entity.CloneMappings, error) {
	ctx, span := s.tree.tracer.Start(ctx, "ContentElementService.CloneElements")
	defer span.End()

	var (
		copies   []*entity.ContentElement
		mappings = entity.NewCloneMappings()
	)
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		target, err := s.tree.findActivity(ctx, uow, mctx, targetActivityId)
		if err != nil {
			return err
		}

		sources := make([]*entity.ContentElement, 0, len(ids))
		for _, id := range ids {
			source, err := s.tree.findElement(ctx, uow, mctx, id)
			if err != nil {
				return err
			}
			sources = append(sources, source)
		}

		copies, err = s.tree.cloneElementsTx(ctx, uow, mctx, sources, target, mappings, false)
		if err != nil {
			return err
		}
		return s.tree.remapElementRefs(ctx, uow, copies, mappings)
	})
	if err != nil {
		return nil, nil, err
	}
	return copies, mappings, nil
}
