package service

import (
	"context"

	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
)

const maxAuditPageSize = 500

// AuditService is the read side of the audit trail.
type AuditService struct {
	store *repository.Store
}

func NewAuditService(store *repository.Store) *AuditService {
	return &AuditService{store: store}
}

// ListAuditLogs returns the caller's audit records, newest first.
func (s *AuditService) ListAuditLogs(ctx context.Context, params repository.AuditListParams) ([]*model.AuditLog, int64, error) {
	if params.Limit <= 0 || params.Limit > maxAuditPageSize {
		params.Limit = 50
	}

	var logs []*model.AuditLog
	var total int64
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		var err error
		logs, total, err = tx.Audit.List(ctx, params)
		return err
	})
	return logs, total, err
}
