package service

import (
	"context"
	"sync"
	"testing"

	"author-be/internal/entity"
	"author-be/internal/pkg/logger"
	"author-be/internal/pkg/testutil"
	"author-be/internal/repository/memory"
	"author-be/internal/repository/specification"
	"author-be/internal/repository/unitofwork"
	"author-be/internal/schema"
	"author-be/pkg/events"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type broadcastRecord struct {
	RepositoryId int64
	Event        string
	Payload      interface{}
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	records []broadcastRecord
}

func (f *fakeBroadcaster) Broadcast(_ context.Context, repositoryId int64, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, broadcastRecord{RepositoryId: repositoryId, Event: event, Payload: payload})
	return nil
}

func (f *fakeBroadcaster) count(repositoryId int64, event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.RepositoryId == repositoryId && r.Event == event {
			n++
		}
	}
	return n
}

func (f *fakeBroadcaster) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeEvents struct {
	mu        sync.Mutex
	published []events.Event
}

func (f *fakeEvents) Publish(_ context.Context, event events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
	return nil
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.published))
	for i, e := range f.published {
		types[i] = e.EventType()
	}
	return types
}

type harness struct {
	t          *testing.T
	ctx        context.Context
	db         *gorm.DB
	factory    unitofwork.RepositoryFactory
	tree       *ContentTree
	broadcasts *fakeBroadcaster
	events     *fakeEvents
	metrics    *SyncMetrics

	activities IActivityService
	elements   IContentElementService
	library    ILibraryService
}

var user = entity.MutationContext{UserId: 1}

func scoped(repositoryId int64) entity.MutationContext {
	return entity.MutationContext{UserId: 1, RepositoryId: &repositoryId}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	registry, err := schema.LoadFile("../schema/testdata/schemas.yaml")
	require.NoError(t, err)

	broadcasts := &fakeBroadcaster{}
	eventLog := &fakeEvents{}
	metrics := NewSyncMetrics(prometheus.NewRegistry())
	log := logger.NewNopLogger()

	db := testutil.NewTestDB(t)
	factory := unitofwork.NewRepositoryFactory(db)
	tree := NewContentTree(registry, broadcasts, log, metrics)

	return &harness{
		t:          t,
		ctx:        context.Background(),
		db:         db,
		factory:    factory,
		tree:       tree,
		broadcasts: broadcasts,
		events:     eventLog,
		metrics:    metrics,
		activities: NewActivityService(factory, tree, eventLog, log),
		elements:   NewContentElementService(factory, tree),
		library:    NewLibraryService(factory, tree, memory.NewRepositoryCache()),
	}
}

func (h *harness) repository(schemaId string) *entity.Repository {
	h.t.Helper()
	repo := &entity.Repository{Uid: uuid.New(), SchemaId: schemaId, Name: schemaId}
	require.NoError(h.t, h.factory.NewUnitOfWork(h.ctx).RepositoryRepository().Create(h.ctx, repo))
	return repo
}

func (h *harness) activity(repositoryId int64, parent *entity.Activity, activityType string, data map[string]interface{}) *entity.Activity {
	h.t.Helper()
	in := CreateActivityInput{RepositoryId: repositoryId, Type: activityType, Data: data}
	if parent != nil {
		in.ParentId = &parent.Id
	}
	a, err := h.activities.Create(h.ctx, user, in)
	require.NoError(h.t, err)
	return a
}

func (h *harness) element(owner *entity.Activity, elementType string, data map[string]interface{}) *entity.ContentElement {
	h.t.Helper()
	e, err := h.elements.Create(h.ctx, user, CreateElementInput{ActivityId: owner.Id, Type: elementType, Data: data})
	require.NoError(h.t, err)
	return e
}

// reload reads an activity regardless of its deletion state.
func (h *harness) reload(id int64) *entity.Activity {
	h.t.Helper()
	a, err := h.factory.NewUnitOfWork(h.ctx).ActivityRepository().FindOne(h.ctx,
		specification.ByID{ID: id},
		specification.IncludeDeleted{},
	)
	require.NoError(h.t, err)
	require.NotNil(h.t, a, "activity %d", id)
	return a
}

func (h *harness) reloadElement(id int64) *entity.ContentElement {
	h.t.Helper()
	e, err := h.factory.NewUnitOfWork(h.ctx).ContentElementRepository().FindOne(h.ctx,
		specification.ByID{ID: id},
		specification.IncludeDeleted{},
	)
	require.NoError(h.t, err)
	require.NotNil(h.t, e, "element %d", id)
	return e
}

func (h *harness) countActivities(specs ...specification.Specification) int64 {
	h.t.Helper()
	n, err := h.factory.NewUnitOfWork(h.ctx).ActivityRepository().Count(h.ctx, specs...)
	require.NoError(h.t, err)
	return n
}

func data(name string) map[string]interface{} {
	return map[string]interface{}{"name": name}
}
