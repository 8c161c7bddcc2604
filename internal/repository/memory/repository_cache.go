package memory

import (
	"strconv"
	"time"

	"author-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// RepositoryCache keeps recently resolved repositories in memory. Linking
// looks up the schema of both ends on every call and repositories never
// change schema, so entries only expire to bound memory.
type RepositoryCache struct {
	cache *cache.Cache
}

func NewRepositoryCache() *RepositoryCache {
	// Entries live 30 minutes; expired items are purged every 10 minutes
	c := cache.New(30*time.Minute, 10*time.Minute)
	return &RepositoryCache{
		cache: c,
	}
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (r *RepositoryCache) Save(repository *entity.Repository) {
	r.cache.Set(key(repository.Id), repository, cache.DefaultExpiration)
}

func (r *RepositoryCache) Get(id int64) (*entity.Repository, bool) {
	if x, found := r.cache.Get(key(id)); found {
		return x.(*entity.Repository), true
	}
	return nil, false
}

func (r *RepositoryCache) Delete(id int64) {
	r.cache.Delete(key(id))
}
