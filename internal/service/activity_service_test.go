package service

import (
	"errors"
	"testing"

	"author-be/internal/entity"
	"author-be/internal/pkg/apperror"
	"author-be/internal/repository/specification"
	"author-be/pkg/events"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityService_CreateAppendsAndTracksStatus(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")

	module := h.activity(course.Id, nil, "MODULE", data("m"))
	first := h.activity(course.Id, module, "PAGE", data("p1"))
	second := h.activity(course.Id, module, "PAGE", data("p2"))

	assert.Equal(t, 1.0, module.Position)
	assert.Equal(t, 1.0, first.Position)
	assert.Equal(t, 2.0, second.Position)

	status, err := h.activities.GetStatus(h.ctx, user, first.Id)
	require.NoError(t, err)
	assert.Equal(t, "TODO", status.Status)
	assert.Equal(t, 3, status.Priority)

	_, err = h.activities.GetStatus(h.ctx, user, module.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	assert.Equal(t, 3, h.broadcasts.count(course.Id, EventActivityCreate))
}

func TestActivityService_CreateErrors(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	other := h.repository("COURSE_SCHEMA")
	foreignParent := h.activity(other.Id, nil, "MODULE", data("m"))
	missing := int64(9999)
	sourceless := CreateActivityInput{RepositoryId: course.Id, Type: "MODULE", IsLinkedCopy: true}

	tests := []struct {
		name string
		mctx entity.MutationContext
		in   CreateActivityInput
		kind error
	}{
		{"missing type", user, CreateActivityInput{RepositoryId: course.Id}, apperror.ErrValidation},
		{"missing repository", user, CreateActivityInput{Type: "MODULE"}, apperror.ErrValidation},
		{"linked copy without source", user, sourceless, apperror.ErrValidation},
		{"outside caller scope", scoped(other.Id), CreateActivityInput{RepositoryId: course.Id, Type: "MODULE"}, apperror.ErrForbidden},
		{"missing parent", user, CreateActivityInput{RepositoryId: course.Id, Type: "PAGE", ParentId: &missing}, apperror.ErrNotFound},
		{"parent in another repository", user, CreateActivityInput{RepositoryId: course.Id, Type: "PAGE", ParentId: &foreignParent.Id}, apperror.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.activities.Create(h.ctx, tt.mctx, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), err.Error())
		})
	}
	assert.Equal(t, int64(0), h.countActivities(specification.ByRepositoryID{RepositoryID: course.Id}))
}

func TestActivityService_GetRespectsScope(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	other := h.repository("COURSE_SCHEMA")
	module := h.activity(course.Id, nil, "MODULE", data("m"))

	got, err := h.activities.Get(h.ctx, scoped(course.Id), module.Id)
	require.NoError(t, err)
	assert.Equal(t, module.Uid, got.Uid)

	_, err = h.activities.Get(h.ctx, scoped(other.Id), module.Id)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = h.activities.Get(h.ctx, user, 9999)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestActivityService_SoftRemoveAndRestore(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")

	b := h.activity(course.Id, nil, "MODULE", data("B"))
	c := h.activity(course.Id, b, "LESSON", data("C"))
	d := h.activity(course.Id, c, "PAGE", data("D"))
	el := h.element(d, "TEXT", map[string]interface{}{"body": "x"})

	require.NoError(t, h.activities.Remove(h.ctx, user, b.Id, RemoveOptions{Recursive: true, Soft: true}))

	removed := h.reload(b.Id)
	assert.True(t, removed.IsDeleted)
	assert.NotNil(t, removed.DeletedAt)
	for _, id := range []int64{c.Id, d.Id} {
		a := h.reload(id)
		assert.True(t, a.Detached, "activity %d", id)
		assert.False(t, a.IsDeleted, "activity %d", id)
		assert.Nil(t, a.DeletedAt)
	}
	assert.True(t, h.reloadElement(el.Id).Detached)
	assert.Equal(t, 1, h.broadcasts.count(course.Id, EventElementBulkUpdate))
	assert.Equal(t, 1, h.broadcasts.count(course.Id, EventActivityDelete))

	listed, err := h.activities.List(h.ctx, user, ActivityFilter{RepositoryId: course.Id})
	require.NoError(t, err)
	assert.Empty(t, listed)

	restored, err := h.activities.Restore(h.ctx, user, b.Id)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)
	for _, id := range []int64{c.Id, d.Id} {
		assert.False(t, h.reload(id).Detached, "activity %d", id)
	}
	assert.False(t, h.reloadElement(el.Id).Detached)
	assert.Equal(t, 2, h.broadcasts.count(course.Id, EventElementBulkUpdate))

	listed, err = h.activities.List(h.ctx, user, ActivityFilter{RepositoryId: course.Id})
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestActivityService_HardRemove(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")

	b := h.activity(course.Id, nil, "MODULE", data("B"))
	c := h.activity(course.Id, b, "LESSON", data("C"))
	d := h.activity(course.Id, c, "PAGE", data("D"))
	h.element(d, "TEXT", map[string]interface{}{"body": "x"})
	keep := h.activity(course.Id, nil, "MODULE", data("keep"))

	require.NoError(t, h.activities.Remove(h.ctx, user, b.Id, RemoveOptions{Recursive: true}))

	assert.Equal(t, int64(1), h.countActivities(
		specification.ByRepositoryID{RepositoryID: course.Id},
		specification.IncludeDeleted{},
	))
	_, err := h.activities.Get(h.ctx, user, keep.Id)
	require.NoError(t, err)

	statuses, err := h.factory.NewUnitOfWork(h.ctx).ActivityStatusRepository().FindAll(h.ctx,
		specification.Filter("activity_id", d.Id))
	require.NoError(t, err)
	assert.Empty(t, statuses)

	elements, err := h.factory.NewUnitOfWork(h.ctx).ContentElementRepository().FindAll(h.ctx,
		specification.ByRepositoryID{RepositoryID: course.Id},
		specification.IncludeDeleted{},
	)
	require.NoError(t, err)
	assert.Empty(t, elements)
}

func TestActivityService_RemoveSingleLeavesChildren(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	module := h.activity(course.Id, nil, "MODULE", data("m"))
	lesson := h.activity(course.Id, module, "LESSON", data("l"))

	require.NoError(t, h.activities.Remove(h.ctx, user, module.Id, RemoveOptions{Soft: true}))

	child := h.reload(lesson.Id)
	assert.False(t, child.IsDeleted)
	assert.False(t, child.Detached)

	preds, err := h.activities.Predecessors(h.ctx, user, lesson.Id)
	require.NoError(t, err)
	assert.Empty(t, preds)
}

func TestActivityService_CascadeReachesBelowRemovedChild(t *testing.T) {
	tests := []struct {
		name string
		soft bool
	}{
		{name: "soft", soft: true},
		{name: "hard", soft: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			course := h.repository("COURSE_SCHEMA")
			b := h.activity(course.Id, nil, "MODULE", data("B"))
			c := h.activity(course.Id, b, "LESSON", data("C"))
			g := h.activity(course.Id, c, "PAGE", data("G"))
			el := h.element(g, "TEXT", map[string]interface{}{"body": "x"})

			require.NoError(t, h.activities.Remove(h.ctx, user, c.Id, RemoveOptions{Soft: true}))
			require.False(t, h.reload(g.Id).Detached)

			require.NoError(t, h.activities.Remove(h.ctx, user, b.Id, RemoveOptions{Recursive: true, Soft: tt.soft}))

			if !tt.soft {
				assert.Equal(t, int64(0), h.countActivities(
					specification.ByIDs{IDs: []int64{b.Id, c.Id, g.Id}},
					specification.IncludeDeleted{},
				))
				return
			}

			assert.True(t, h.reload(c.Id).Detached)
			assert.True(t, h.reload(g.Id).Detached)
			assert.True(t, h.reloadElement(el.Id).Detached)

			_, err := h.activities.Restore(h.ctx, user, b.Id)
			require.NoError(t, err)

			assert.True(t, h.reload(c.Id).IsDeleted)
			assert.False(t, h.reload(g.Id).Detached)
			assert.False(t, h.reloadElement(el.Id).Detached)
		})
	}
}

func TestActivityService_ReorderMovesOnlyTarget(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	first := h.activity(course.Id, nil, "MODULE", data("1"))
	second := h.activity(course.Id, nil, "MODULE", data("2"))
	third := h.activity(course.Id, nil, "MODULE", data("3"))

	moved, err := h.activities.Reorder(h.ctx, user, third.Id, 0)
	require.NoError(t, err)
	assert.Less(t, moved.Position, 1.0)
	assert.Equal(t, 1.0, h.reload(first.Id).Position)
	assert.Equal(t, 2.0, h.reload(second.Id).Position)

	siblings, err := h.activities.Siblings(h.ctx, user, first.Id)
	require.NoError(t, err)
	require.Len(t, siblings, 3)
	assert.Equal(t, []int64{third.Id, first.Id, second.Id}, []int64{siblings[0].Id, siblings[1].Id, siblings[2].Id})

	moved, err = h.activities.Reorder(h.ctx, user, third.Id, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.5, moved.Position)
	assert.Equal(t, 1.0, h.reload(first.Id).Position)
	assert.Equal(t, 2.0, h.reload(second.Id).Position)
}

func TestActivityService_TraversalAndOutline(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	module := h.activity(course.Id, nil, "MODULE", data("m"))
	lesson := h.activity(course.Id, module, "LESSON", data("l"))
	page := h.activity(course.Id, lesson, "PAGE", data("p"))
	section := h.activity(course.Id, page, "SECTION", data("s"))

	preds, err := h.activities.Predecessors(h.ctx, user, section.Id)
	require.NoError(t, err)
	require.Len(t, preds, 3)
	assert.Equal(t, []int64{module.Id, lesson.Id, page.Id}, []int64{preds[0].Id, preds[1].Id, preds[2].Id})

	outline, err := h.activities.GetFirstOutlineItem(h.ctx, user, section.Id)
	require.NoError(t, err)
	assert.Equal(t, page.Id, outline.Id)

	desc, err := h.activities.Descendants(h.ctx, user, module.Id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{lesson.Id, page.Id}, desc.NodeIds())
	require.Len(t, desc.Leaves, 1)
	assert.Equal(t, section.Id, desc.Leaves[0].Id)

	// Element writes under a container bubble up to the outline page.
	before := h.reload(page.Id).ModifiedAt
	require.NotNil(t, before)
	h.element(section, "TEXT", map[string]interface{}{"body": "x"})
	after := h.reload(page.Id).ModifiedAt
	require.NotNil(t, after)
	assert.False(t, after.Before(*before))

	repo, err := h.factory.NewUnitOfWork(h.ctx).RepositoryRepository().FindOne(h.ctx, specification.ByID{ID: course.Id})
	require.NoError(t, err)
	assert.True(t, repo.HasUnpublishedChanges)
}

func TestActivityService_ListFilters(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	module := h.activity(course.Id, nil, "MODULE", data("m"))
	h.activity(course.Id, module, "LESSON", data("l"))
	h.activity(course.Id, module, "PAGE", data("p"))

	tests := []struct {
		name   string
		filter ActivityFilter
		want   int
	}{
		{"whole repository", ActivityFilter{RepositoryId: course.Id}, 3},
		{"root only", ActivityFilter{RepositoryId: course.Id, RootOnly: true}, 1},
		{"children", ActivityFilter{RepositoryId: course.Id, ParentId: &module.Id}, 2},
		{"by type", ActivityFilter{RepositoryId: course.Id, Types: []string{"PAGE"}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := h.activities.List(h.ctx, user, tt.filter)
			require.NoError(t, err)
			assert.Len(t, list, tt.want)
		})
	}
}

func TestActivityService_CloneIsIsomorphic(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	target := h.repository("COURSE_SCHEMA")

	outside := h.activity(course.Id, nil, "MODULE", data("outside"))
	module := h.activity(course.Id, nil, "MODULE", data("m"))
	lesson := h.activity(course.Id, module, "LESSON", data("l"))
	p1 := h.activity(course.Id, lesson, "PAGE", data("p1"))
	p2 := h.activity(course.Id, lesson, "PAGE", data("p2"))
	p3 := h.activity(course.Id, module, "PAGE", data("p3"))
	e1 := h.element(p1, "TEXT", map[string]interface{}{"body": "1"})
	e2 := h.element(p1, "TEXT", map[string]interface{}{"body": "2"})

	_, err := h.activities.Update(h.ctx, user, p3.Id, entity.ActivityChanges{
		Refs: map[string][]int64{"prerequisites": {p1.Id, outside.Id}},
	})
	require.NoError(t, err)
	_, err = h.elements.Update(h.ctx, user, e2.Id, entity.ContentElementChanges{
		Refs: map[string][]int64{"answers": {e1.Id}},
	})
	require.NoError(t, err)

	root, mappings, err := h.activities.Clone(h.ctx, user, module.Id, CloneActivityInput{TargetRepositoryId: target.Id})
	require.NoError(t, err)
	assert.Nil(t, root.ParentId)
	assert.False(t, root.IsLinkedCopy)

	for _, id := range []int64{module.Id, lesson.Id, p1.Id, p2.Id, p3.Id} {
		assert.Contains(t, mappings.ActivityIds, id)
	}
	for _, id := range []int64{e1.Id, e2.Id} {
		assert.Contains(t, mappings.ElementIds, id)
	}
	assert.Len(t, mappings.ActivityIds, 5)

	original, err := h.activities.Descendants(h.ctx, user, module.Id)
	require.NoError(t, err)
	cloned, err := h.activities.Descendants(h.ctx, user, root.Id)
	require.NoError(t, err)
	require.Len(t, cloned.All(), len(original.All()))
	for i, a := range original.All() {
		c := cloned.All()[i]
		assert.Equal(t, a.Type, c.Type)
		assert.Equal(t, a.Position, c.Position)
		assert.Equal(t, mappings.ActivityIds[*a.ParentId], *c.ParentId)
		assert.Equal(t, target.Id, c.RepositoryId)
	}

	p3Copy := h.reload(mappings.ActivityIds[p3.Id])
	assert.Equal(t, []int64{mappings.ActivityIds[p1.Id]}, p3Copy.Refs["prerequisites"])

	e2Copy := h.reloadElement(mappings.ElementIds[e2.Id])
	assert.Equal(t, []int64{mappings.ElementIds[e1.Id]}, e2Copy.Refs["answers"])
	assert.Equal(t, e2.ContentId, e2Copy.ContentId)

	assert.Equal(t, 1.0, promtest.ToFloat64(h.metrics.Clones))
}

func TestActivityService_CloneIntoOwnSubtree(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	module := h.activity(course.Id, nil, "MODULE", data("m"))
	lesson := h.activity(course.Id, module, "LESSON", data("l"))
	h.activity(course.Id, lesson, "PAGE", data("p"))

	before, err := h.activities.Descendants(h.ctx, user, module.Id)
	require.NoError(t, err)

	root, _, err := h.activities.Clone(h.ctx, user, module.Id, CloneActivityInput{
		TargetRepositoryId: course.Id,
		TargetParentId:     &lesson.Id,
	})
	require.NoError(t, err)
	assert.Equal(t, lesson.Id, *root.ParentId)

	cloned, err := h.activities.Descendants(h.ctx, user, root.Id)
	require.NoError(t, err)
	assert.Len(t, cloned.All(), len(before.All()))
}

func TestActivityService_StatusWorkflow(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	module := h.activity(course.Id, nil, "MODULE", data("m"))
	page := h.activity(course.Id, module, "PAGE", data("p"))

	_, err := h.activities.UpdateStatus(h.ctx, user, module.Id, UpdateStatusInput{Status: "DONE"})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "ACTIVITY_NOT_TRACKED", appErr.Code)

	_, err = h.activities.UpdateStatus(h.ctx, user, page.Id, UpdateStatusInput{})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	assignee := int64(42)
	_, err = h.activities.UpdateStatus(h.ctx, user, page.Id, UpdateStatusInput{Status: "REVIEW", AssigneeId: &assignee})
	require.NoError(t, err)

	current, err := h.activities.GetStatus(h.ctx, user, page.Id)
	require.NoError(t, err)
	assert.Equal(t, "REVIEW", current.Status)
	assert.Equal(t, 3, current.Priority)
	assert.Equal(t, assignee, *current.AssigneeId)

	history, err := h.factory.NewUnitOfWork(h.ctx).ActivityStatusRepository().FindAll(h.ctx,
		specification.Filter("activity_id", page.Id))
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestActivityService_Publish(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")
	module := h.activity(course.Id, nil, "MODULE", data("m"))
	assert.True(t, h.reload(module.Id).HasUnpublishedChanges())

	published, err := h.activities.Publish(h.ctx, user, module.Id)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	assert.False(t, h.reload(module.Id).HasUnpublishedChanges())
	assert.Equal(t, []string{events.ActivityPublished}, h.events.types())

	_, err = h.activities.Touch(h.ctx, user, module.Id)
	require.NoError(t, err)
	assert.True(t, h.reload(module.Id).HasUnpublishedChanges())
}

func TestContentTree_BroadcastsOnlyAfterCommit(t *testing.T) {
	h := newHarness(t)
	course := h.repository("COURSE_SCHEMA")

	uow := h.factory.NewUnitOfWork(h.ctx)
	require.NoError(t, uow.Begin(h.ctx))
	_, err := h.tree.createActivityTx(h.ctx, uow, user, CreateActivityInput{RepositoryId: course.Id, Type: "MODULE"})
	require.NoError(t, err)
	assert.Equal(t, 0, h.broadcasts.total())
	require.NoError(t, uow.Rollback())
	assert.Equal(t, 0, h.broadcasts.total())

	uow = h.factory.NewUnitOfWork(h.ctx)
	require.NoError(t, uow.Begin(h.ctx))
	_, err = h.tree.createActivityTx(h.ctx, uow, user, CreateActivityInput{RepositoryId: course.Id, Type: "MODULE"})
	require.NoError(t, err)
	assert.Equal(t, 0, h.broadcasts.total())
	require.NoError(t, uow.Commit())
	assert.Equal(t, 1, h.broadcasts.count(course.Id, EventActivityCreate))
}
