package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/logger"
	"github.com/taichu-system/rental-management/internal/tenancy"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	ctxs   []context.Context
	err    error
	panic  bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(ctx context.Context, event Event) error {
	if s.panic {
		panic("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	s.ctxs = append(s.ctxs, ctx)
	return s.err
}

func TestDispatchSurvivesCallerCancellation(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(logger.Discard(), time.Second, sink)

	tenantID := uuid.New()
	ctx, cancel := context.WithCancel(tenancy.WithContext(context.Background(), tenancy.System(tenantID)))
	d.Dispatch(ctx, Event{Type: EventPaymentCompleted, ResourceID: "p1"})
	cancel()
	d.Wait()

	require.Len(t, sink.events, 1)
	assert.Equal(t, "p1", sink.events[0].ResourceID)

	tc, err := tenancy.FromContext(sink.ctxs[0])
	require.NoError(t, err)
	assert.Equal(t, tenantID, *tc.TenantID)
}

func TestDispatchSwallowsSinkFailures(t *testing.T) {
	failing := &recordingSink{err: errors.New("smtp down")}
	panicking := &recordingSink{panic: true}
	d := NewDispatcher(logger.Discard(), time.Second, failing, panicking)

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), Event{Type: EventPaymentCompleted})
		d.Wait()
	})
	assert.Len(t, failing.events, 1)
}
