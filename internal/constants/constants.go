package constants

// Audit actions.
const (
	ActionCreate           = "create"
	ActionUpdate           = "update"
	ActionActivate         = "activate"
	ActionTerminate        = "terminate"
	ActionRenew            = "renew"
	ActionApplyIncrease    = "apply_increase"
	ActionCreateNotice     = "create_exit_notice"
	ActionConfirmNotice    = "confirm_exit_notice"
	ActionCancelNotice     = "cancel_exit_notice"
	ActionCompletePayment  = "complete_payment"
	ActionGeneratePayments = "generate_payments"
	ActionSuspend          = "suspend"
	ActionReactivate       = "reactivate"
	ActionSetIPC           = "set_ipc"
	ActionSetContract      = "set_contract"
	ActionClearContract    = "clear_contract"
)

// Resource types.
const (
	ResourceTypeTenant       = "tenant"
	ResourceTypeUnit         = "unit"
	ResourceTypeLease        = "lease"
	ResourceTypePayment      = "payment"
	ResourceTypeRentIncrease = "rent_increase"
	ResourceTypeExitNotice   = "exit_notice"
)

// Scheduled jobs.
const (
	JobLeaseRenewal    = "lease_renewal"
	JobPendingPayments = "pending_payments"
	JobResultSuccess   = "success"
	JobResultFailed    = "failed"
	JobResultPartial   = "partial"
)

// Keys stored on the gin context by the authentication middleware.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyRole     = "role"
	ContextKeyTenantID = "tenant_id"
)
