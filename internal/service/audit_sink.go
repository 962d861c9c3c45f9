package service

import "context"

// AuditSink receives every mutating action. Implementations resolve the
// actor from ctx and must never fail the caller.
type AuditSink interface {
	Log(ctx context.Context, action, resourceType, resourceID string, oldValues, newValues interface{})
}

// NopAuditSink discards audit records.
type NopAuditSink struct{}

func (NopAuditSink) Log(context.Context, string, string, string, interface{}, interface{}) {}
