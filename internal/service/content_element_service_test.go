package service

import (
	"errors"
	"testing"

	"author-be/internal/entity"
	"author-be/internal/pkg/apperror"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(h *harness) (*entity.Repository, *entity.Activity) {
	course := h.repository("COURSE_SCHEMA")
	module := h.activity(course.Id, nil, "MODULE", data("m"))
	return course, h.activity(course.Id, module, "PAGE", data("p"))
}

func TestContentElementService_Signature(t *testing.T) {
	h := newHarness(t)
	_, p := page(h)
	body := map[string]interface{}{"body": "hello"}

	el := h.element(p, "TEXT", body)
	assert.Equal(t, ContentSignature(body), el.ContentSignature)
	assert.NotEqual(t, el.Uid, el.ContentId)

	updated, err := h.elements.Update(h.ctx, user, el.Id, entity.ContentElementChanges{
		Meta: map[string]interface{}{"hidden": true},
	})
	require.NoError(t, err)
	assert.Equal(t, el.ContentSignature, updated.ContentSignature)
	assert.Equal(t, true, updated.Meta["hidden"])

	changed := map[string]interface{}{"body": "bye"}
	updated, err = h.elements.Update(h.ctx, user, el.Id, entity.ContentElementChanges{Data: changed})
	require.NoError(t, err)
	assert.Equal(t, ContentSignature(changed), updated.ContentSignature)
	assert.Equal(t, ContentSignature(changed), h.reloadElement(el.Id).ContentSignature)
}

func TestContentElementService_ReorderInsideAssessment(t *testing.T) {
	h := newHarness(t)
	course, p := page(h)
	assessment := h.activity(course.Id, p, "ASSESSMENT", data("quiz"))

	mc := h.element(assessment, "MULTIPLE_CHOICE", nil)
	text := h.element(assessment, "TEXT", nil)
	sc := h.element(assessment, "SINGLE_CHOICE", nil)
	require.Equal(t, []float64{1, 2, 3}, []float64{mc.Position, text.Position, sc.Position})

	moved, err := h.elements.Reorder(h.ctx, user, sc.Id, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, moved.Position)
	assert.Equal(t, 1.0, h.reloadElement(mc.Id).Position)
	assert.Equal(t, 2.0, h.reloadElement(text.Id).Position)
}

func TestContentElementService_ReorderPlainContainer(t *testing.T) {
	h := newHarness(t)
	course, p := page(h)
	section := h.activity(course.Id, p, "SECTION", data("s"))

	first := h.element(section, "MULTIPLE_CHOICE", nil)
	h.element(section, "TEXT", nil)
	last := h.element(section, "SINGLE_CHOICE", nil)

	moved, err := h.elements.Reorder(h.ctx, user, last.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, first.Position/2, moved.Position)
}

func TestContentElementService_Remove(t *testing.T) {
	h := newHarness(t)
	course, p := page(h)
	soft := h.element(p, "TEXT", nil)
	hard := h.element(p, "TEXT", nil)

	require.NoError(t, h.elements.Remove(h.ctx, user, soft.Id, true))
	require.NoError(t, h.elements.Remove(h.ctx, user, hard.Id, false))

	assert.True(t, h.reloadElement(soft.Id).IsDeleted)
	_, err := h.elements.Get(h.ctx, user, soft.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	e, err := h.factory.NewUnitOfWork(h.ctx).ContentElementRepository().FindOne(h.ctx)
	require.NoError(t, err)
	assert.Nil(t, e)

	assert.Equal(t, 2, h.broadcasts.count(course.Id, EventElementDelete))
}

func TestContentElementService_CloneElementsRemapsRefs(t *testing.T) {
	h := newHarness(t)
	course, p := page(h)
	target := h.activity(course.Id, p, "SECTION", data("target"))

	a := h.element(p, "TEXT", map[string]interface{}{"body": "a"})
	b := h.element(p, "TEXT", map[string]interface{}{"body": "b"})
	_, err := h.elements.Update(h.ctx, user, b.Id, entity.ContentElementChanges{
		Refs: map[string][]int64{"related": {a.Id, 999}},
	})
	require.NoError(t, err)

	copies, mappings, err := h.elements.CloneElements(h.ctx, user, []int64{a.Id, b.Id}, target.Id)
	require.NoError(t, err)
	require.Len(t, copies, 2)

	assert.Equal(t, target.Id, copies[0].ActivityId)
	assert.Equal(t, a.ContentId, copies[0].ContentId)
	assert.NotEqual(t, a.Uid, copies[0].Uid)
	assert.Equal(t, copies[1].Uid, mappings.ElementUids[b.Uid])

	bCopy := h.reloadElement(mappings.ElementIds[b.Id])
	assert.Equal(t, []int64{mappings.ElementIds[a.Id]}, bCopy.Refs["related"])
}

func TestContentElementService_LinkAndUnlink(t *testing.T) {
	h := newHarness(t)
	library := h.repository("CONTENT_LIBRARY")
	item := h.activity(library.Id, nil, "ITEM", data("x"))
	source := h.element(item, "TEXT", map[string]interface{}{"body": "shared"})
	_, p := page(h)

	linked, err := h.elements.Link(h.ctx, scoped(p.RepositoryId), LinkElementInput{
		SourceElementId:  source.Id,
		TargetActivityId: p.Id,
	})
	require.NoError(t, err)
	assert.True(t, linked.IsLinkedCopy)
	assert.Equal(t, source.Id, *linked.SourceId)
	assert.Equal(t, source.ContentId, linked.ContentId)
	assert.Equal(t, p.RepositoryId, linked.RepositoryId)
	assert.Equal(t, 1.0, promtest.ToFloat64(h.metrics.Links.WithLabelValues("element")))

	got, err := h.elements.GetSource(h.ctx, user, linked.Id)
	require.NoError(t, err)
	assert.Equal(t, source.Id, got.Id)

	copies, err := h.elements.GetCopies(h.ctx, user, source.Id)
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Equal(t, linked.Id, copies[0].Id)

	_, err = h.elements.Update(h.ctx, user, source.Id, entity.ContentElementChanges{
		Data: map[string]interface{}{"body": "edited"},
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", h.reloadElement(linked.Id).Data["body"])

	unlinked, err := h.elements.Unlink(h.ctx, user, linked.Id)
	require.NoError(t, err)
	assert.False(t, unlinked.IsLinkedCopy)
	assert.Nil(t, unlinked.SourceModifiedAt)
	assert.Equal(t, source.Id, *unlinked.SourceId)

	_, err = h.elements.Unlink(h.ctx, user, linked.Id)
	require.NoError(t, err)
	assert.Equal(t, 1.0, promtest.ToFloat64(h.metrics.Unlinks.WithLabelValues("element")))

	_, err = h.elements.Update(h.ctx, user, source.Id, entity.ContentElementChanges{
		Data: map[string]interface{}{"body": "again"},
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", h.reloadElement(linked.Id).Data["body"])

	_, err = h.elements.GetSource(h.ctx, user, source.Id)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestContentElementService_List(t *testing.T) {
	h := newHarness(t)
	course, p := page(h)
	section := h.activity(course.Id, p, "SECTION", data("s"))
	h.element(p, "TEXT", nil)
	h.element(section, "TEXT", nil)
	h.element(section, "MULTIPLE_CHOICE", nil)

	_, err := h.elements.List(h.ctx, user, ElementFilter{})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	byActivity, err := h.elements.List(h.ctx, user, ElementFilter{ActivityId: &section.Id})
	require.NoError(t, err)
	assert.Len(t, byActivity, 2)

	byRepository, err := h.elements.List(h.ctx, user, ElementFilter{RepositoryId: &course.Id, Types: []string{"TEXT"}})
	require.NoError(t, err)
	assert.Len(t, byRepository, 2)

	other := h.repository("COURSE_SCHEMA")
	_, err = h.elements.List(h.ctx, scoped(other.Id), ElementFilter{RepositoryId: &course.Id})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}
