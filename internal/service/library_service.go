package service

import (
	"context"
	"fmt"

	"author-be/internal/entity"
	"author-be/internal/pkg/apperror"
	"author-be/internal/pkg/validation"
	"author-be/internal/repository/memory"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"
)

type ILibraryService interface {
	LinkActivity(ctx context.Context, mctx entity.MutationContext, in LinkActivityInput) (*entity.Activity, *entity.CloneMappings, error)
	UnlinkActivity(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error)
	GetSource(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error)
	GetCopies(ctx context.Context, mctx entity.MutationContext, id int64) ([]*entity.Activity, error)
}

type libraryService struct {
	uowFactory   unitofwork.RepositoryFactory
	tree         *ContentTree
	repositories *memory.RepositoryCache
}

func NewLibraryService(uowFactory unitofwork.RepositoryFactory, tree *ContentTree, repositories *memory.RepositoryCache) ILibraryService {
	return &libraryService{
		uowFactory:   uowFactory,
		tree:         tree,
		repositories: repositories,
	}
}

func (s *libraryService) findRepository(ctx context.Context, uow unitofwork.UnitOfWork, id int64) (*entity.Repository, error) {
	if repo, ok := s.repositories.Get(id); ok {
		return repo, nil
	}
	repo, err := uow.RepositoryRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, apperror.NotFound("REPOSITORY_NOT_FOUND", fmt.Sprintf("repository %d not found", id))
	}
	s.repositories.Save(repo)
	return repo, nil
}

// typeResolver decides the type of every copied activity. Within one schema
// types are kept and only the root placement is checked. Across schemas each
// activity is mapped through the target schema's link mappings.
func (s *libraryService) typeResolver(sourceSchema, targetSchema string, root *entity.Activity) func(string, *entity.Activity) (string, error) {
	provider := s.tree.schema
	return func(parentType string, source *entity.Activity) (string, error) {
		if sourceSchema == targetSchema {
			if source.Id == root.Id && !provider.IsTypeAllowedAtLevel(targetSchema, parentType, source.Type) {
				return "", apperror.BadRequest("TYPE_NOT_ALLOWED",
					fmt.Sprintf("%s is not allowed at this level", source.Type),
					map[string]interface{}{"type": source.Type, "parentType": parentType, "schemaId": targetSchema})
			}
			return source.Type, nil
		}

		target, ok := provider.GetCompatibleTargetType(targetSchema, parentType, source.Type)
		if !ok {
			return "", apperror.BadRequest("NO_COMPATIBLE_TYPE",
				fmt.Sprintf("no %s type maps from %s", targetSchema, source.Type),
				map[string]interface{}{"type": source.Type, "parentType": parentType, "schemaId": targetSchema})
		}
		return target, nil
	}
}

func (s *libraryService) LinkActivity(ctx context.Context, mctx entity.MutationContext, in LinkActivityInput) (*entity.Activity, *entity.CloneMappings, error) {
	ctx, span := s.tree.tracer.Start(ctx, "LibraryService.LinkActivity")
	defer span.End()

	if err := validation.Struct(in); err != nil {
		return nil, nil, err
	}
	if err := checkScope(mctx, in.TargetRepositoryId); err != nil {
		return nil, nil, err
	}

	var (
		root     *entity.Activity
		mappings *entity.CloneMappings
	)
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		source, err := s.tree.findActivity(ctx, uow, mctx.Unscoped(), in.SourceId, specification.NotDetached{})
		if err != nil {
			return err
		}
		sourceRepo, err := s.findRepository(ctx, uow, source.RepositoryId)
		if err != nil {
			return err
		}
		targetRepo, err := s.findRepository(ctx, uow, in.TargetRepositoryId)
		if err != nil {
			return err
		}

		root, mappings, err = s.tree.cloneSubtree(ctx, uow, mctx, source, CloneTarget{
			RepositoryId: targetRepo.Id,
			ParentId:     in.ParentId,
			Position:     in.Position,
		}, CloneOptions{
			Link:        true,
			ResolveType: s.typeResolver(sourceRepo.SchemaId, targetRepo.SchemaId, source),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.tree.metrics.RecordLink("activity")
	s.tree.logger.Info("LibraryService", "Linked activity", map[string]interface{}{
		"source_id":     in.SourceId,
		"copy_id":       root.Id,
		"repository_id": in.TargetRepositoryId,
		"activities":    len(mappings.ActivityIds),
		"elements":      len(mappings.ElementIds),
	})
	return root, mappings, nil
}

// UnlinkActivity detaches a linked copy and its whole subtree from their
// sources. Only the root goes through the update hooks; the subtree is
// rewritten in bulk. SourceId is kept on every row.
func (s *libraryService) UnlinkActivity(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error) {
	ctx, span := s.tree.tracer.Start(ctx, "LibraryService.UnlinkActivity")
	defer span.End()

	unlinkFields := map[string]interface{}{
		"is_linked_copy":     false,
		"source_modified_at": nil,
	}

	var unlinked *entity.Activity
	changed := false
	err := inTx(ctx, s.uowFactory, func(uow unitofwork.UnitOfWork) error {
		activity, err := s.tree.findActivity(ctx, uow, mctx, id)
		if err != nil {
			return err
		}
		if !activity.IsLinkedCopy {
			unlinked = activity
			return nil
		}
		changed = true

		unlinked, err = s.tree.updateActivityTx(ctx, uow, mctx, activity, unlinkFields)
		if err != nil {
			return err
		}

		desc, err := s.tree.descendants(ctx, uow, activity.Id, false)
		if err != nil {
			return err
		}
		if ids := desc.Ids(); len(ids) > 0 {
			if _, err := uow.ActivityRepository().UpdateWhere(ctx, unlinkFields,
				specification.ByIDs{IDs: ids},
				specification.LinkedCopies{},
			); err != nil {
				return err
			}
		}
		_, err = uow.ContentElementRepository().UpdateWhere(ctx, unlinkFields,
			specification.ByActivityIDs{ActivityIDs: append(desc.Ids(), activity.Id)},
			specification.LinkedCopies{},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.tree.metrics.RecordUnlink("activity")
	}
	return unlinked, nil
}

func (s *libraryService) GetSource(ctx context.Context, mctx entity.MutationContext, id int64) (*entity.Activity, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity, err := s.tree.findActivity(ctx, uow, mctx, id)
	if err != nil {
		return nil, err
	}
	if activity.SourceId == nil {
		return nil, apperror.NotFound("SOURCE_NOT_FOUND", fmt.Sprintf("activity %d has no source", id))
	}
	source, err := uow.ActivityRepository().FindOne(ctx, specification.ByID{ID: *activity.SourceId})
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, apperror.NotFound("SOURCE_NOT_FOUND", fmt.Sprintf("source of activity %d is gone", id))
	}
	return source, nil
}

func (s *libraryService) GetCopies(ctx context.Context, mctx entity.MutationContext, id int64) ([]*entity.Activity, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity, err := s.tree.findActivity(ctx, uow, mctx, id)
	if err != nil {
		return nil, err
	}
	return uow.ActivityRepository().FindAll(ctx,
		specification.BySourceID{SourceID: activity.Id},
		specification.OrderBy{Field: "id"},
	)
}
