package memory

import (
	"testing"

	"author-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCache(t *testing.T) {
	c := NewRepositoryCache()

	_, found := c.Get(1)
	assert.False(t, found)

	c.Save(&entity.Repository{Id: 1, SchemaId: "COURSE_SCHEMA"})
	repo, found := c.Get(1)
	require.True(t, found)
	assert.Equal(t, "COURSE_SCHEMA", repo.SchemaId)

	c.Delete(1)
	_, found = c.Get(1)
	assert.False(t, found)
}
