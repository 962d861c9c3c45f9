package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/taichu-system/rental-management/internal/notify"
	"github.com/taichu-system/rental-management/internal/utils"
)

type auditCall struct {
	Action       string
	ResourceType string
	ResourceID   string
	Old          interface{}
	New          interface{}
}

type recordingAudit struct {
	mu    sync.Mutex
	calls []auditCall
}

func (r *recordingAudit) Log(_ context.Context, action, resourceType, resourceID string, oldValues, newValues interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, auditCall{action, resourceType, resourceID, oldValues, newValues})
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Action)
	}
	return out
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

type memoryStatusCache struct {
	mu          sync.Mutex
	values      map[uuid.UUID]string
	invalidated []uuid.UUID
}

func newMemoryStatusCache() *memoryStatusCache {
	return &memoryStatusCache{values: map[uuid.UUID]string{}}
}

func (c *memoryStatusCache) Get(_ context.Context, id uuid.UUID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[id]
	return v, ok
}

func (c *memoryStatusCache) Set(_ context.Context, id uuid.UUID, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[id] = status
}

func (c *memoryStatusCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, id)
	c.invalidated = append(c.invalidated, id)
}

func assertDate(t *testing.T, expected, actual time.Time) {
	t.Helper()
	assert.Equal(t, expected.Format(utils.DateLayout), actual.UTC().Format(utils.DateLayout))
}

func assertReason(t *testing.T, err error, reason string) {
	t.Helper()
	appErr, ok := utils.AsError(err)
	if assert.True(t, ok, "expected *utils.Error, got %v", err) {
		assert.Equal(t, reason, appErr.Reason)
	}
}

func ptr[T any](v T) *T {
	return &v
}
