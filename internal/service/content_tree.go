package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"author-be/internal/entity"
	"author-be/internal/hook"
	"author-be/internal/mapper"
	"author-be/internal/pkg/apperror"
	"author-be/internal/pkg/logger"
	"author-be/internal/position"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"
	"author-be/internal/schema"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ContentTree holds the transactional operations on activities and content
// elements together with their hook pipelines. Every method works inside
// the unit of work it is given; services own the transaction boundaries.
type ContentTree struct {
	schema      schema.Provider
	broadcaster IBroadcaster
	logger      logger.ILogger
	metrics     *SyncMetrics
	tracer      trace.Tracer

	activityHooks *hook.Pipeline[*entity.Activity]
	elementHooks  *hook.Pipeline[*entity.ContentElement]
	batchHooks    *hook.Pipeline[*entity.ContentElementBatch]
}

func NewContentTree(
	schemaProvider schema.Provider,
	broadcaster IBroadcaster,
	log logger.ILogger,
	metrics *SyncMetrics,
) *ContentTree {
	t := &ContentTree{
		schema:      schemaProvider,
		broadcaster: broadcaster,
		logger:      log,
		metrics:     metrics,
		tracer:      otel.Tracer("author-be/service"),
	}
	t.activityHooks = t.newActivityPipeline()
	t.elementHooks = t.newElementPipeline()
	t.batchHooks = t.newBatchPipeline()
	return t
}

func checkScope(mctx entity.MutationContext, repositoryId int64) error {
	if mctx.RepositoryId != nil && *mctx.RepositoryId != repositoryId {
		return apperror.Forbidden("REPOSITORY_MISMATCH",
			fmt.Sprintf("repository %d is outside the caller scope", repositoryId))
	}
	return nil
}

func (t *ContentTree) findActivity(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, id int64, specs ...specification.Specification) (*entity.Activity, error) {
	specs = append([]specification.Specification{specification.ByID{ID: id}}, specs...)
	activity, err := uow.ActivityRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, apperror.NotFound("ACTIVITY_NOT_FOUND", fmt.Sprintf("activity %d not found", id))
	}
	if err := checkScope(mctx, activity.RepositoryId); err != nil {
		return nil, err
	}
	return activity, nil
}

func (t *ContentTree) findElement(ctx context.Context, uow unitofwork.UnitOfWork, mctx entity.MutationContext, id int64, specs ...specification.Specification) (*entity.ContentElement, error) {
	specs = append([]specification.Specification{specification.ByID{ID: id}}, specs...)
	element, err := uow.ContentElementRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if element == nil {
		return nil, apperror.NotFound("ELEMENT_NOT_FOUND", fmt.Sprintf("content element %d not found", id))
	}
	if err := checkScope(mctx, element.RepositoryId); err != nil {
		return nil, err
	}
	return element, nil
}

// broadcastAfterCommit defers a realtime event until the enclosing
// transaction has committed.
func (t *ContentTree) broadcastAfterCommit(ctx context.Context, uow unitofwork.UnitOfWork, repositoryId int64, event string, payload interface{}) {
	uow.AfterCommit(func() {
		if err := t.broadcaster.Broadcast(ctx, repositoryId, event, payload); err != nil {
			t.logger.Error("ContentTree", "Failed to broadcast event", map[string]interface{}{
				"event":         event,
				"repository_id": repositoryId,
				"error":         err.Error(),
			})
		}
	})
}

func (t *ContentTree) touchRepository(ctx context.Context, uow unitofwork.UnitOfWork, repositoryId int64) error {
	return uow.RepositoryRepository().Updates(ctx, repositoryId, map[string]interface{}{
		"has_unpublished_changes": true,
	})
}

// touchActivity stamps modifiedAt on the row and on the given entity.
func (t *ContentTree) touchActivity(ctx context.Context, uow unitofwork.UnitOfWork, activity *entity.Activity) error {
	now := time.Now()
	if err := uow.ActivityRepository().Updates(ctx, activity.Id, map[string]interface{}{"modified_at": now}); err != nil {
		return err
	}
	activity.ModifiedAt = &now
	return nil
}

// firstOutlineItem walks up from activity until an outline activity is
// found. A parentless activity is its own outline item. The returned pointer
// is activity itself when no walk was needed.
func (t *ContentTree) firstOutlineItem(ctx context.Context, uow unitofwork.UnitOfWork, activity *entity.Activity) (*entity.Activity, error) {
	current := activity
	for !t.schema.IsOutlineActivity(current.Type) {
		if current.ParentId == nil {
			return current, nil
		}
		parent, err := uow.ActivityRepository().FindOne(ctx,
			specification.ByID{ID: *current.ParentId},
			specification.IncludeDeleted{},
		)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return current, nil
		}
		current = parent
	}
	return current, nil
}

func (t *ContentTree) touchOutline(ctx context.Context, uow unitofwork.UnitOfWork, activity *entity.Activity) error {
	outline, err := t.firstOutlineItem(ctx, uow, activity)
	if err != nil {
		return err
	}
	return t.touchActivity(ctx, uow, outline)
}

// descendants collects the subtree below root level by level, one query per
// level. Unless withDeleted is set, soft deleted activities and everything
// under them are skipped.
func (t *ContentTree) descendants(ctx context.Context, uow unitofwork.UnitOfWork, rootId int64, withDeleted bool) (*entity.Descendants, error) {
	var all []*entity.Activity
	hasChildren := make(map[int64]bool)

	frontier := []int64{rootId}
	for len(frontier) > 0 {
		specs := []specification.Specification{
			specification.ByParentIDs{ParentIDs: frontier},
			specification.ByPosition{},
		}
		if withDeleted {
			specs = append(specs, specification.IncludeDeleted{})
		}
		children, err := uow.ActivityRepository().FindAll(ctx, specs...)
		if err != nil {
			return nil, err
		}

		next := make([]int64, 0, len(children))
		for _, child := range children {
			hasChildren[*child.ParentId] = true
			all = append(all, child)
			next = append(next, child.Id)
		}
		frontier = next
	}

	result := &entity.Descendants{}
	for _, a := range all {
		if hasChildren[a.Id] {
			result.Nodes = append(result.Nodes, a)
		} else {
			result.Leaves = append(result.Leaves, a)
		}
	}
	return result, nil
}

func activitySiblings(list []*entity.Activity) []position.Sibling {
	siblings := make([]position.Sibling, len(list))
	for i, a := range list {
		siblings[i] = position.Sibling{Id: a.Id, Position: a.Position}
	}
	return siblings
}

func elementSiblings(list []*entity.ContentElement) []position.Sibling {
	siblings := make([]position.Sibling, len(list))
	for i, e := range list {
		siblings[i] = position.Sibling{Id: e.Id, Position: e.Position}
	}
	return siblings
}

var jsonColumns = map[string]bool{"data": true, "meta": true, "refs": true}

// encodeColumns turns map typed values into their JSON column encoding.
func encodeColumns(fields map[string]interface{}) map[string]interface{} {
	encoded := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if jsonColumns[k] {
			encoded[k] = mapper.ToJSON(v)
			continue
		}
		encoded[k] = v
	}
	return encoded
}

func changedColumns(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func idsOf(list []*entity.ContentElement) []int64 {
	ids := make([]int64, len(list))
	for i, e := range list {
		ids[i] = e.Id
	}
	return ids
}
