package service

import (
	"testing"

	"author-be/internal/hook"
	"author-be/internal/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestContentTree_HandlerOrder(t *testing.T) {
	tree := NewContentTree(nil, &fakeBroadcaster{}, logger.NewNopLogger(), nil)

	activity := map[hook.Stage][]string{
		hook.BeforeCreate:  {"validate-parent"},
		hook.AfterCreate:   {"touch-repository", "touch-outline", "broadcast-create"},
		hook.BeforeUpdate:  {},
		hook.AfterUpdate:   {"auto-detach", "touch-repository", "touch-outline", "propagate-to-copies", "broadcast-update"},
		hook.BeforeDestroy: {"touch-repository"},
		hook.AfterDestroy:  {"touch-outline", "broadcast-delete"},
		hook.AfterRestore:  {"touch-repository", "broadcast-create"},
	}
	for stage, want := range activity {
		assert.Equal(t, want, tree.activityHooks.Names(stage), "activity %s", stage)
	}

	element := map[hook.Stage][]string{
		hook.BeforeCreate:  {"sign-content"},
		hook.AfterCreate:   {"touch-repository", "touch-outline", "propagate-create", "broadcast-create"},
		hook.BeforeUpdate:  {"sign-content"},
		hook.AfterUpdate:   {"auto-detach", "touch-repository", "touch-outline", "propagate-to-copies", "broadcast-update"},
		hook.BeforeDestroy: {},
		hook.AfterDestroy:  {"touch-repository", "touch-outline", "propagate-destroy", "broadcast-delete"},
	}
	for stage, want := range element {
		assert.Equal(t, want, tree.elementHooks.Names(stage), "element %s", stage)
	}

	assert.Equal(t, []string{"broadcast-bulk-update"}, tree.batchHooks.Names(hook.AfterBulkUpdate))
}

func TestShouldPropagate(t *testing.T) {
	tests := []struct {
		name          string
		sync          bool
		isLinkedCopy  bool
		wasLinkedCopy bool
		want          bool
	}{
		{"plain source", false, false, false, true},
		{"sync write", true, false, false, false},
		{"linked copy", false, true, false, false},
		{"copy detached by this write", false, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mctx := user
			if tt.sync {
				mctx = mctx.AsLibrarySync()
			}
			assert.Equal(t, tt.want, shouldPropagate(mctx, tt.isLinkedCopy, tt.wasLinkedCopy))
		})
	}
}

func TestSyncMetrics(t *testing.T) {
	var nilMetrics *SyncMetrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordLink("activity")
		nilMetrics.RecordUnlink("activity")
		nilMetrics.RecordPropagation("activity", "success", 2)
		nilMetrics.RecordAutoDetach("element")
		nilMetrics.RecordClone()
	})

	m := NewSyncMetrics(prometheus.NewRegistry())
	m.RecordPropagation("element", "success", 0)
	m.RecordPropagation("element", "success", 3)
	m.RecordAutoDetach("element")
	assert.Equal(t, 3.0, promtest.ToFloat64(m.Propagations.WithLabelValues("element", "success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.AutoDetaches.WithLabelValues("element")))
}

func TestContentSignatureIsStable(t *testing.T) {
	a := map[string]interface{}{"b": 1, "a": []interface{}{"x", "y"}}
	b := map[string]interface{}{"a": []interface{}{"x", "y"}, "b": 1}
	assert.Equal(t, ContentSignature(a), ContentSignature(b))
	assert.NotEqual(t, ContentSignature(a), ContentSignature(map[string]interface{}{"b": 2}))
	assert.Equal(t, ContentSignature(nil), ContentSignature(map[string]interface{}{}))
	assert.Len(t, ContentSignature(nil), 64)
}
