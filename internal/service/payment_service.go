package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/notify"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
)

// EventDispatcher delivers notifications without reporting back. Failures
// are observability data only.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event notify.Event)
}

type PaymentService struct {
	store    *repository.Store
	audit    AuditSink
	notifier EventDispatcher
	log      *slog.Logger
	now      Clock
}

func NewPaymentService(store *repository.Store, audit AuditSink, notifier EventDispatcher, log *slog.Logger, now Clock) *PaymentService {
	return &PaymentService{store: store, audit: audit, notifier: notifier, log: log, now: now}
}

// CompletePayment marks a PENDING payment COMPLETED and then hands a
// notification to the dispatcher. The dispatch never affects the result.
func (s *PaymentService) CompletePayment(ctx context.Context, id uuid.UUID, method string) (*model.Payment, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, utils.Validation(utils.ReasonInvalidInput, "payment method is required")
	}

	var before, after model.Payment
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		payment, err := tx.Payments.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, constants.ResourceTypePayment, id.String())
		}
		if payment.Status != model.PaymentStatusPending {
			return utils.Validation(utils.ReasonInvalidState, "payment %s is %s, only PENDING payments can be completed", payment.ID, payment.Status)
		}
		before = *payment

		payment.Status = model.PaymentStatusCompleted
		payment.Method = method
		payment.PaymentDate = startOfDay(s.now())
		if err := tx.Payments.UpdateStatus(ctx, payment, model.PaymentStatusPending); err != nil {
			if errors.Is(err, repository.ErrStatusChanged) {
				return utils.Validation(utils.ReasonInvalidState, "payment %s is no longer PENDING", payment.ID)
			}
			return err
		}
		after = *payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, constants.ActionCompletePayment, constants.ResourceTypePayment, id.String(), &before, &after)

	tc, _ := tenancy.FromContext(ctx)
	s.notifier.Dispatch(ctx, notify.Event{
		Type:       notify.EventPaymentCompleted,
		TenantID:   tc.TenantIDString(),
		ResourceID: after.ID.String(),
		Payload: map[string]interface{}{
			"lease_id":     after.LeaseID.String(),
			"amount":       after.Amount,
			"method":       after.Method,
			"period_start": after.PeriodStart.Format(utils.DateLayout),
			"payment_date": after.PaymentDate.Format(utils.DateLayout),
		},
	})
	return &after, nil
}

func (s *PaymentService) ListLeasePayments(ctx context.Context, leaseID uuid.UUID) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := s.store.Transaction(ctx, func(tx *repository.Tx) error {
		if _, err := tx.Leases.GetByID(ctx, leaseID); err != nil {
			return notFound(err, constants.ResourceTypeLease, leaseID.String())
		}
		var err error
		payments, err = tx.Payments.ListByLease(ctx, leaseID)
		return err
	})
	return payments, err
}
