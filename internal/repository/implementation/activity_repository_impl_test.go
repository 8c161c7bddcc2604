package implementation_test

import (
	"context"
	"testing"

	"author-be/internal/entity"
	"author-be/internal/pkg/testutil"
	"author-be/internal/repository/implementation"
	"author-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActivity(repoId int64, parentId *int64, typ string, position float64) *entity.Activity {
	return &entity.Activity{
		Uid:          uuid.New(),
		RepositoryId: repoId,
		ParentId:     parentId,
		Type:         typ,
		Position:     position,
		Data:         map[string]interface{}{"name": typ},
	}
}

func TestActivityRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := implementation.NewActivityRepository(testutil.NewTestDB(t))

	root := newActivity(1, nil, "MODULE", 1)
	require.NoError(t, repo.Create(ctx, root))
	assert.NotZero(t, root.Id)
	assert.NotNil(t, root.UpdatedAt)

	child := newActivity(1, &root.Id, "PAGE", 1)
	child.Refs = map[string][]int64{"prerequisites": {root.Id}}
	require.NoError(t, repo.Create(ctx, child))

	found, err := repo.FindOne(ctx, specification.ByID{ID: child.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "PAGE", found.Type)
	assert.Equal(t, root.Id, *found.ParentId)
	assert.Equal(t, []int64{root.Id}, found.Refs["prerequisites"])
	assert.Equal(t, "PAGE", found.Data["name"])

	missing, err := repo.FindOne(ctx, specification.ByID{ID: 999})
	require.NoError(t, err)
	assert.Nil(t, missing)

	roots, err := repo.FindAll(ctx, specification.ByParentID{ParentID: nil})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, root.Id, roots[0].Id)
}

func TestActivityRepository_SoftDeleteAndRestore(t *testing.T) {
	ctx := context.Background()
	repo := implementation.NewActivityRepository(testutil.NewTestDB(t))

	a := newActivity(1, nil, "MODULE", 1)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Delete(ctx, a.Id))

	found, err := repo.FindOne(ctx, specification.ByID{ID: a.Id})
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.FindOne(ctx, specification.ByID{ID: a.Id}, specification.IncludeDeleted{})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsDeleted)

	require.NoError(t, repo.Restore(ctx, a.Id))
	found, err = repo.FindOne(ctx, specification.ByID{ID: a.Id})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.IsDeleted)
}

func TestActivityRepository_UpdateWhereAndCount(t *testing.T) {
	ctx := context.Background()
	repo := implementation.NewActivityRepository(testutil.NewTestDB(t))

	root := newActivity(1, nil, "MODULE", 1)
	require.NoError(t, repo.Create(ctx, root))
	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, newActivity(1, &root.Id, "PAGE", float64(i))))
	}

	affected, err := repo.UpdateWhere(ctx, map[string]interface{}{"detached": true},
		specification.ByParentIDs{ParentIDs: []int64{root.Id}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, affected)

	count, err := repo.Count(ctx, specification.NotDetached{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	deleted, err := repo.DeleteWhere(ctx, true, specification.ByParentIDs{ParentIDs: []int64{root.Id}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	count, err = repo.Count(ctx, specification.IncludeDeleted{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestActivityRepository_SiblingOrder(t *testing.T) {
	ctx := context.Background()
	repo := implementation.NewActivityRepository(testutil.NewTestDB(t))

	second := newActivity(1, nil, "MODULE", 2)
	first := newActivity(1, nil, "MODULE", 1)
	tie := newActivity(1, nil, "MODULE", 2)
	for _, a := range []*entity.Activity{second, first, tie} {
		require.NoError(t, repo.Create(ctx, a))
	}

	siblings, err := repo.FindAll(ctx,
		specification.ByRepositoryID{RepositoryID: 1},
		specification.ByParentID{},
		specification.ByPosition{})
	require.NoError(t, err)
	require.Len(t, siblings, 3)
	assert.Equal(t, []int64{first.Id, second.Id, tie.Id},
		[]int64{siblings[0].Id, siblings[1].Id, siblings[2].Id})
}
