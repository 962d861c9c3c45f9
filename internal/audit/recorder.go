package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taichu-system/rental-management/internal/metrics"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/tenancy"
)

// Recorder persists audit records on their own unit of work, off the
// caller's goroutine. A failed write is logged and counted, never returned.
type Recorder struct {
	store *repository.Store
	log   *slog.Logger
	now   func() time.Time
	wg    sync.WaitGroup
}

func NewRecorder(store *repository.Store, log *slog.Logger) *Recorder {
	return &Recorder{store: store, log: log, now: time.Now}
}

// Log records action on the resource for the actor of ctx. Calls without a
// user in ctx are dropped; background work must run under a synthetic
// actor such as tenancy.SystemActor to be recorded.
func (r *Recorder) Log(ctx context.Context, action, resourceType, resourceID string, oldValues, newValues interface{}) {
	tc, err := tenancy.FromContext(ctx)
	if err != nil || tc.UserID == "" {
		r.log.Debug("audit skipped: no actor in context",
			slog.String("action", action),
			slog.String("resource_type", resourceType),
			slog.String("resource_id", resourceID),
		)
		return
	}

	entry := &model.AuditLog{
		TenantID:     tc.TenantID,
		UserID:       tc.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    model.ToJSONMap(oldValues),
		NewValues:    model.ToJSONMap(newValues),
		Timestamp:    r.now().UTC(),
	}

	detached := tenancy.Detach(ctx)
	r.wg.Add(1)
	go r.write(detached, entry)
}

func (r *Recorder) write(ctx context.Context, entry *model.AuditLog) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			metrics.IncAuditWriteFailure()
			r.log.Error("audit write panicked", slog.Any("panic", p), slog.String("action", entry.Action))
		}
	}()

	err := r.store.Transaction(ctx, func(tx *repository.Tx) error {
		return tx.Audit.Create(ctx, entry)
	})
	if err != nil {
		metrics.IncAuditWriteFailure()
		tenantID := ""
		if entry.TenantID != nil {
			tenantID = entry.TenantID.String()
		}
		r.log.Error("audit write failed",
			slog.String("tenant_id", tenantID),
			slog.String("user_id", entry.UserID),
			slog.String("action", entry.Action),
			slog.String("resource_type", entry.ResourceType),
			slog.String("resource_id", entry.ResourceID),
			slog.String("error", err.Error()),
		)
	}
}

// Wait blocks until queued writes finish. Called on shutdown and in tests.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
